package domain

import (
	"time"

	"gorm.io/datatypes"
)

// Category groups products on the storefront. Names is a JSON object of
// locale -> display name.
type Category struct {
	ID        int64             `json:"id,string" form:"id"`
	Slug      string            `gorm:"uniqueIndex" json:"slug" form:"slug"`
	Names     datatypes.JSONMap `gorm:"type:json" json:"names" form:"names"`
	Image     string            `gorm:"size:1024" json:"image" form:"image"`
	Sort      int               `json:"sort" form:"sort"`
	Status    string            `gorm:"size:32;index" json:"status" form:"status"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

func (Category) TableName() string {
	return "cat_category"
}

// Product is a dish or menu item. Editorial favorite flags (featured,
// popular, trending) are authored by content editors; analytics scores
// live in ProductPopularity.
type Product struct {
	ID           int64             `json:"id,string" form:"id"`
	CategoryID   int64             `gorm:"index" json:"category_id,string" form:"category_id"`
	Slug         string            `gorm:"uniqueIndex" json:"slug" form:"slug"`
	Names        datatypes.JSONMap `gorm:"type:json" json:"names" form:"names"`
	Descriptions datatypes.JSONMap `gorm:"type:json" json:"descriptions" form:"descriptions"`
	Price        float64           `json:"price" form:"price"`
	Image        string            `gorm:"size:1024" json:"image" form:"image"`
	Status       string            `gorm:"size:32;index" json:"status" form:"status"`
	Featured     bool              `gorm:"index" json:"featured" form:"featured"`
	Popular      bool              `gorm:"index" json:"popular" form:"popular"`
	Trending     bool              `gorm:"index" json:"trending" form:"trending"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

func (Product) TableName() string {
	return "cat_product"
}

// Ingredient is referenced by products through ProductIngredient.
type Ingredient struct {
	ID        int64             `json:"id,string" form:"id"`
	Names     datatypes.JSONMap `gorm:"type:json" json:"names" form:"names"`
	Allergen  bool              `json:"allergen" form:"allergen"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

func (Ingredient) TableName() string {
	return "cat_ingredient"
}

// Extra is an optional paid addition to a product.
type Extra struct {
	ID        int64             `json:"id,string" form:"id"`
	Names     datatypes.JSONMap `gorm:"type:json" json:"names" form:"names"`
	Price     float64           `json:"price" form:"price"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

func (Extra) TableName() string {
	return "cat_extra"
}

type ProductIngredient struct {
	ProductID    int64 `gorm:"primaryKey;autoIncrement:false" json:"product_id,string"`
	IngredientID int64 `gorm:"primaryKey;autoIncrement:false" json:"ingredient_id,string"`
}

func (ProductIngredient) TableName() string {
	return "cat_product_ingredient"
}

type ProductExtra struct {
	ProductID int64 `gorm:"primaryKey;autoIncrement:false" json:"product_id,string"`
	ExtraID   int64 `gorm:"primaryKey;autoIncrement:false" json:"extra_id,string"`
}

func (ProductExtra) TableName() string {
	return "cat_product_extra"
}

// UserFavorite is the user-personal favorites join table.
type UserFavorite struct {
	UserID    int64     `gorm:"primaryKey;autoIncrement:false" json:"user_id,string"`
	ProductID int64     `gorm:"primaryKey;autoIncrement:false" json:"product_id,string"`
	CreatedAt time.Time `json:"created_at"`
}

func (UserFavorite) TableName() string {
	return "cat_user_favorite"
}
