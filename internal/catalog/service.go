package catalog

import (
	"context"

	"github.com/pkg/errors"

	"github.com/lacarte-io/lacarte/internal/domain"
)

// Favorite sources. Only the analytics source depends on the popularity
// pipeline; editorial flags are authored by content editors.
const (
	SourceEditorial     = "editorial"
	SourceUserFavorites = "user_favorites"
	SourceAnalytics     = "analytics"
)

var (
	// ErrUserRequired rejects user_favorites queries without a user,
	// instead of silently falling back to another source.
	ErrUserRequired   = errors.New("user id required for user_favorites source")
	ErrUnknownSource  = errors.New("unknown favorites source")
	ErrProductMissing = errors.New("product not found")
)

// ProductPage is one page of products with pagination arithmetic applied.
type ProductPage struct {
	Items      []domain.Product `json:"items"`
	Total      int64            `json:"total"`
	Page       int              `json:"page"`
	PageSize   int              `json:"page_size"`
	TotalPages int              `json:"total_pages"`
}

// ProductQuery carries filters, sort and pagination for GetProducts.
type ProductQuery struct {
	Filter   ProductFilter
	Sort     Sort
	Page     int
	PageSize int
}

// FavoritesQuery selects one favorites source with pagination.
type FavoritesQuery struct {
	Source   string
	UserID   *int64
	Page     int
	PageSize int
}

// Service implements the storefront read use cases. No caching, no
// business logic beyond source selection and pagination arithmetic.
type Service struct {
	repo ProductRepository
}

func NewService(repo ProductRepository) *Service {
	return &Service{repo: repo}
}

func normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 200 {
		pageSize = 200
	}
	return page, pageSize
}

// TotalPages is ceil(total/pageSize).
func TotalPages(total int64, pageSize int) int {
	if pageSize <= 0 {
		return 0
	}
	return int((total + int64(pageSize) - 1) / int64(pageSize))
}

func makePage(items []domain.Product, total int64, page, pageSize int) *ProductPage {
	if items == nil {
		items = []domain.Product{}
	}
	return &ProductPage{
		Items:      items,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: TotalPages(total, pageSize),
	}
}

// GetProducts delegates the filtered/sorted/paginated query to the store.
func (s *Service) GetProducts(ctx context.Context, q ProductQuery) (*ProductPage, error) {
	page, pageSize := normalizePage(q.Page, q.PageSize)
	items, total, err := s.repo.List(ctx, q.Filter, q.Sort, page, pageSize)
	if err != nil {
		return nil, err
	}
	return makePage(items, total, page, pageSize), nil
}

// GetProduct resolves one product by ID.
func (s *Service) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, ErrProductMissing
	}
	return p, nil
}

// GetFavoriteProducts serves one of the three interchangeable favorite
// sources, selected by q.Source.
func (s *Service) GetFavoriteProducts(ctx context.Context, q FavoritesQuery) (*ProductPage, error) {
	page, pageSize := normalizePage(q.Page, q.PageSize)

	switch q.Source {
	case SourceEditorial, "":
		flag := true
		filter := ProductFilter{Status: "enabled", Featured: &flag}
		items, total, err := s.repo.List(ctx, filter, Sort{Field: "sort", Order: "ASC"}, page, pageSize)
		if err != nil {
			return nil, err
		}
		return makePage(items, total, page, pageSize), nil

	case SourceUserFavorites:
		if q.UserID == nil || *q.UserID == 0 {
			return nil, ErrUserRequired
		}
		items, total, err := s.repo.ListUserFavorites(ctx, *q.UserID, page, pageSize)
		if err != nil {
			return nil, err
		}
		return makePage(items, total, page, pageSize), nil

	case SourceAnalytics:
		items, total, err := s.repo.ListByPopularity(ctx, page, pageSize)
		if err != nil {
			return nil, err
		}
		return makePage(items, total, page, pageSize), nil

	default:
		return nil, ErrUnknownSource
	}
}

// GetCategories lists enabled categories in display order.
func (s *Service) GetCategories(ctx context.Context) ([]domain.Category, error) {
	return s.repo.Categories(ctx)
}

// HydrateBoard resolves leaderboard product IDs to product rows, keeping
// the board order.
func (s *Service) HydrateBoard(ctx context.Context, ids []int64) ([]domain.Product, error) {
	rows, err := s.repo.ListByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]domain.Product, len(rows))
	for _, p := range rows {
		byID[p.ID] = p
	}
	out := make([]domain.Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}
