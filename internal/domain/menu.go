package domain

import (
	"time"

	"gorm.io/datatypes"
)

// MenuItem is one entry of a navigation menu ("header", "footer").
// Labels is a JSON object of locale -> link text.
type MenuItem struct {
	ID        int64             `json:"id,string" form:"id"`
	MenuCode  string            `gorm:"size:32;index" json:"menu_code" form:"menu_code"`
	Sort      int               `json:"sort" form:"sort"`
	Labels    datatypes.JSONMap `gorm:"type:json" json:"labels" form:"labels"`
	Path      string            `gorm:"size:512" json:"path" form:"path"`
	External  bool              `json:"external" form:"external"`
	Status    string            `gorm:"size:32" json:"status" form:"status"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

func (MenuItem) TableName() string {
	return "sys_menu_item"
}
