package catalog

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/lacarte-io/lacarte/internal/domain"
)

// ProductFilter narrows storefront product queries.
type ProductFilter struct {
	CategoryID int64
	Query      string
	Status     string
	Featured   *bool
	Popular    *bool
	Trending   *bool
}

// Sort is a whitelisted column plus direction.
type Sort struct {
	Field string
	Order string
}

// allowed sort columns, mapped to real column names to keep user input
// out of the ORDER BY clause
var allowedSortColumns = map[string]string{
	"id":         "id",
	"slug":       "slug",
	"price":      "price",
	"sort":       "sort",
	"created_at": "created_at",
	"updated_at": "updated_at",
}

func (s Sort) orderClause() string {
	col, ok := allowedSortColumns[strings.TrimSpace(s.Field)]
	if !ok || col == "" {
		col = "id"
	}
	order := strings.ToUpper(strings.TrimSpace(s.Order))
	if order != "ASC" && order != "DESC" {
		order = "DESC"
	}
	return col + " " + order
}

// ProductRepository handles storefront reads over the catalog tables.
type ProductRepository interface {
	List(ctx context.Context, filter ProductFilter, sort Sort, page, pageSize int) ([]domain.Product, int64, error)
	GetByID(ctx context.Context, id int64) (*domain.Product, error)
	Exists(ctx context.Context, id int64) (bool, error)
	ListByIDs(ctx context.Context, ids []int64) ([]domain.Product, error)
	ListUserFavorites(ctx context.Context, userID int64, page, pageSize int) ([]domain.Product, int64, error)
	ListByPopularity(ctx context.Context, page, pageSize int) ([]domain.Product, int64, error)
	Categories(ctx context.Context) ([]domain.Category, error)
}

// GormProductRepository is the GORM implementation of ProductRepository.
type GormProductRepository struct {
	db *gorm.DB
}

func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

func (r *GormProductRepository) scope(ctx context.Context, filter ProductFilter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&domain.Product{})
	if filter.CategoryID > 0 {
		q = q.Where("category_id = ?", filter.CategoryID)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if s := strings.TrimSpace(filter.Query); s != "" {
		q = q.Where("slug ILIKE ? OR names::text ILIKE ?", "%"+s+"%", "%"+s+"%")
	}
	if filter.Featured != nil {
		q = q.Where("featured = ?", *filter.Featured)
	}
	if filter.Popular != nil {
		q = q.Where("popular = ?", *filter.Popular)
	}
	if filter.Trending != nil {
		q = q.Where("trending = ?", *filter.Trending)
	}
	return q
}

func (r *GormProductRepository) List(ctx context.Context, filter ProductFilter, sort Sort, page, pageSize int) ([]domain.Product, int64, error) {
	q := r.scope(ctx, filter)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(err, "count products")
	}

	var rows []domain.Product
	err := q.Order(sort.orderClause()).
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&rows).Error
	return rows, total, errors.Wrap(err, "list products")
}

func (r *GormProductRepository) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	var p domain.Product
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *GormProductRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.Product{}).
		Where("id = ?", id).
		Count(&count).Error
	return count > 0, errors.Wrap(err, "product exists")
}

func (r *GormProductRepository) ListByIDs(ctx context.Context, ids []int64) ([]domain.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var rows []domain.Product
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error
	return rows, errors.Wrap(err, "list products by ids")
}

func (r *GormProductRepository) ListUserFavorites(ctx context.Context, userID int64, page, pageSize int) ([]domain.Product, int64, error) {
	base := r.db.WithContext(ctx).
		Model(&domain.Product{}).
		Joins("JOIN cat_user_favorite uf ON uf.product_id = cat_product.id").
		Where("uf.user_id = ?", userID)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(err, "count user favorites")
	}

	var rows []domain.Product
	err := base.Order("uf.created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&rows).Error
	return rows, total, errors.Wrap(err, "list user favorites")
}

func (r *GormProductRepository) ListByPopularity(ctx context.Context, page, pageSize int) ([]domain.Product, int64, error) {
	base := r.db.WithContext(ctx).
		Model(&domain.Product{}).
		Joins("JOIN ana_product_popularity pp ON pp.product_id = cat_product.id")

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(err, "count popular products")
	}

	var rows []domain.Product
	err := base.Order("pp.popularity_score DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&rows).Error
	return rows, total, errors.Wrap(err, "list popular products")
}

func (r *GormProductRepository) Categories(ctx context.Context) ([]domain.Category, error) {
	var rows []domain.Category
	err := r.db.WithContext(ctx).
		Where("status = ?", "enabled").
		Order("sort ASC").
		Find(&rows).Error
	return rows, errors.Wrap(err, "list categories")
}
