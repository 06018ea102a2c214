package analytics

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/lacarte-io/lacarte/internal/domain"
)

// Repository handles database operations for view logs and popularity rows.
type Repository interface {
	// CreateView appends one row to the view log
	CreateView(ctx context.Context, view *domain.ProductView) error

	// GetPopularity retrieves the popularity row for a product
	GetPopularity(ctx context.Context, productID int64) (*domain.ProductPopularity, error)

	// UpsertPopularity creates or replaces the popularity row for pop.ProductID
	UpsertPopularity(ctx context.Context, pop *domain.ProductPopularity) error

	// ViewCount counts log rows for a product
	ViewCount(ctx context.Context, productID int64) (int64, error)

	// CountViews counts log rows in [from, to)
	CountViews(ctx context.Context, from, to time.Time) (int64, error)

	// ListPopularity retrieves popularity rows ordered by trend score
	ListPopularity(ctx context.Context, limit int) ([]domain.ProductPopularity, error)

	// ListViews retrieves log rows in [from, to), newest first
	ListViews(ctx context.Context, from, to time.Time, limit int) ([]domain.ProductView, error)

	// PruneViews deletes log rows older than cutoff, returns rows removed
	PruneViews(ctx context.Context, cutoff time.Time) (int64, error)
}

// ProductFinder resolves whether a product exists; implemented by the
// catalog repository.
type ProductFinder interface {
	Exists(ctx context.Context, productID int64) (bool, error)
}

// GormRepository is the GORM implementation of Repository.
type GormRepository struct {
	db *gorm.DB
}

func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

func (r *GormRepository) CreateView(ctx context.Context, view *domain.ProductView) error {
	return errors.Wrap(r.db.WithContext(ctx).Create(view).Error, "create product view")
}

func (r *GormRepository) GetPopularity(ctx context.Context, productID int64) (*domain.ProductPopularity, error) {
	var pop domain.ProductPopularity
	err := r.db.WithContext(ctx).Where("product_id = ?", productID).First(&pop).Error
	if err != nil {
		return nil, err
	}
	return &pop, nil
}

// UpsertPopularity is a read-modify-write upsert keyed on product_id.
// Concurrent writers can lose an update; the score is a background
// signal, not a ledger, and recomputes for one product are serialized
// by the service.
func (r *GormRepository) UpsertPopularity(ctx context.Context, pop *domain.ProductPopularity) error {
	var existing domain.ProductPopularity
	err := r.db.WithContext(ctx).Where("product_id = ?", pop.ProductID).First(&existing).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return errors.Wrap(r.db.WithContext(ctx).Create(pop).Error, "create popularity")
	case err != nil:
		return errors.Wrap(err, "query popularity")
	}
	pop.ID = existing.ID
	return errors.Wrap(r.db.WithContext(ctx).
		Model(&domain.ProductPopularity{}).
		Where("id = ?", existing.ID).
		Updates(map[string]interface{}{
			"view_count":       pop.ViewCount,
			"order_count":      pop.OrderCount,
			"total_revenue":    pop.TotalRevenue,
			"popularity_score": pop.PopularityScore,
			"trend_score":      pop.TrendScore,
			"last_updated":     pop.LastUpdated,
		}).Error, "update popularity")
}

func (r *GormRepository) ViewCount(ctx context.Context, productID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.ProductView{}).
		Where("product_id = ?", productID).
		Count(&count).Error
	return count, errors.Wrap(err, "count views")
}

func (r *GormRepository) CountViews(ctx context.Context, from, to time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.ProductView{}).
		Where("viewed_at >= ? AND viewed_at < ?", from, to).
		Count(&count).Error
	return count, errors.Wrap(err, "count views")
}

func (r *GormRepository) ListPopularity(ctx context.Context, limit int) ([]domain.ProductPopularity, error) {
	var rows []domain.ProductPopularity
	q := r.db.WithContext(ctx).Order("trend_score DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&rows).Error
	return rows, errors.Wrap(err, "list popularity")
}

func (r *GormRepository) ListViews(ctx context.Context, from, to time.Time, limit int) ([]domain.ProductView, error) {
	var rows []domain.ProductView
	q := r.db.WithContext(ctx).
		Where("viewed_at >= ? AND viewed_at < ?", from, to).
		Order("viewed_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&rows).Error
	return rows, errors.Wrap(err, "list views")
}

func (r *GormRepository) PruneViews(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("viewed_at < ?", cutoff).
		Delete(&domain.ProductView{})
	return res.RowsAffected, errors.Wrap(res.Error, "prune views")
}
