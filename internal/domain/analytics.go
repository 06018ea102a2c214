package domain

import "time"

// ProductView is one row of the append-only view log. Rows are never
// mutated; retention pruning is the only delete path.
type ProductView struct {
	ID        int64     `json:"id,string"`
	ProductID int64     `gorm:"index" json:"product_id,string"`
	UserID    *int64    `gorm:"index" json:"user_id,string,omitempty"`
	SessionID string    `gorm:"size:128;index" json:"session_id,omitempty"`
	IPAddress string    `gorm:"size:64" json:"ip_address,omitempty"`
	UserAgent string    `gorm:"size:512" json:"user_agent,omitempty"`
	ViewedAt  time.Time `gorm:"index" json:"viewed_at"`
}

func (ProductView) TableName() string {
	return "ana_product_view"
}

// ProductPopularity carries the derived score cache for one product.
// PopularityScore and TrendScore are fully determined by the counters
// and LastUpdated; they are recomputed, never authored.
type ProductPopularity struct {
	ID              int64     `json:"id,string"`
	ProductID       int64     `gorm:"uniqueIndex" json:"product_id,string"`
	ViewCount       int64     `json:"view_count"`
	OrderCount      int64     `json:"order_count"`
	TotalRevenue    float64   `json:"total_revenue"`
	PopularityScore float64   `gorm:"index" json:"popularity_score"`
	TrendScore      float64   `gorm:"index" json:"trend_score"`
	LastUpdated     time.Time `json:"last_updated"`
}

func (ProductPopularity) TableName() string {
	return "ana_product_popularity"
}
