package catalog

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lacarte-io/lacarte/internal/domain"
)

type fakeProductRepository struct {
	products  []domain.Product
	favorites map[int64][]domain.Product
	popular   []domain.Product

	listCalls       int
	favoritesCalls  int
	popularityCalls int
	lastFilter      ProductFilter
}

func (r *fakeProductRepository) List(ctx context.Context, filter ProductFilter, sort Sort, page, pageSize int) ([]domain.Product, int64, error) {
	r.listCalls++
	r.lastFilter = filter
	out := r.products
	if filter.Featured != nil {
		out = nil
		for _, p := range r.products {
			if p.Featured == *filter.Featured {
				out = append(out, p)
			}
		}
	}
	total := int64(len(out))
	start := (page - 1) * pageSize
	if start >= len(out) {
		return nil, total, nil
	}
	end := start + pageSize
	if end > len(out) {
		end = len(out)
	}
	return out[start:end], total, nil
}

func (r *fakeProductRepository) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	for _, p := range r.products {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, errors.New("record not found")
}

func (r *fakeProductRepository) Exists(ctx context.Context, id int64) (bool, error) {
	for _, p := range r.products {
		if p.ID == id {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeProductRepository) ListByIDs(ctx context.Context, ids []int64) ([]domain.Product, error) {
	var out []domain.Product
	for _, p := range r.products {
		for _, id := range ids {
			if p.ID == id {
				out = append(out, p)
			}
		}
	}
	return out, nil
}

func (r *fakeProductRepository) ListUserFavorites(ctx context.Context, userID int64, page, pageSize int) ([]domain.Product, int64, error) {
	r.favoritesCalls++
	favs := r.favorites[userID]
	return favs, int64(len(favs)), nil
}

func (r *fakeProductRepository) ListByPopularity(ctx context.Context, page, pageSize int) ([]domain.Product, int64, error) {
	r.popularityCalls++
	return r.popular, int64(len(r.popular)), nil
}

func (r *fakeProductRepository) Categories(ctx context.Context) ([]domain.Category, error) {
	return []domain.Category{{ID: 1, Slug: "starters"}}, nil
}

func seedProducts(n int) []domain.Product {
	out := make([]domain.Product, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, domain.Product{ID: int64(i), Featured: i%2 == 0})
	}
	return out
}

func TestTotalPages(t *testing.T) {
	assert.Equal(t, 0, TotalPages(0, 20))
	assert.Equal(t, 1, TotalPages(1, 20))
	assert.Equal(t, 1, TotalPages(20, 20))
	assert.Equal(t, 2, TotalPages(21, 20))
	assert.Equal(t, 5, TotalPages(100, 20))
	assert.Equal(t, 0, TotalPages(100, 0))
}

func TestGetProductsPagination(t *testing.T) {
	repo := &fakeProductRepository{products: seedProducts(45)}
	svc := NewService(repo)

	page, err := svc.GetProducts(context.Background(), ProductQuery{Page: 2, PageSize: 20})
	require.NoError(t, err)
	assert.EqualValues(t, 45, page.Total)
	assert.Equal(t, 2, page.Page)
	assert.Equal(t, 20, page.PageSize)
	assert.Equal(t, 3, page.TotalPages)
	assert.Len(t, page.Items, 20)
}

func TestGetProductsIdempotentReads(t *testing.T) {
	repo := &fakeProductRepository{products: seedProducts(30)}
	svc := NewService(repo)
	q := ProductQuery{Page: 1, PageSize: 10}

	first, err := svc.GetProducts(context.Background(), q)
	require.NoError(t, err)
	second, err := svc.GetProducts(context.Background(), q)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestGetProductsNormalizesPagination(t *testing.T) {
	repo := &fakeProductRepository{products: seedProducts(5)}
	svc := NewService(repo)

	page, err := svc.GetProducts(context.Background(), ProductQuery{Page: -3, PageSize: 100000})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 200, page.PageSize)
}

func TestFavoritesEditorialSource(t *testing.T) {
	repo := &fakeProductRepository{products: seedProducts(10)}
	svc := NewService(repo)

	page, err := svc.GetFavoriteProducts(context.Background(), FavoritesQuery{Source: SourceEditorial})
	require.NoError(t, err)
	require.NotNil(t, repo.lastFilter.Featured)
	assert.True(t, *repo.lastFilter.Featured)
	for _, p := range page.Items {
		assert.True(t, p.Featured)
	}
}

func TestFavoritesUserSourceRequiresUser(t *testing.T) {
	repo := &fakeProductRepository{}
	svc := NewService(repo)

	_, err := svc.GetFavoriteProducts(context.Background(), FavoritesQuery{Source: SourceUserFavorites})
	require.ErrorIs(t, err, ErrUserRequired)

	zero := int64(0)
	_, err = svc.GetFavoriteProducts(context.Background(), FavoritesQuery{Source: SourceUserFavorites, UserID: &zero})
	require.ErrorIs(t, err, ErrUserRequired)

	// the error path must not fall through to another source
	assert.Zero(t, repo.listCalls)
	assert.Zero(t, repo.popularityCalls)
}

func TestFavoritesUserSource(t *testing.T) {
	repo := &fakeProductRepository{
		favorites: map[int64][]domain.Product{
			7: {{ID: 3}, {ID: 5}},
		},
	}
	svc := NewService(repo)

	userID := int64(7)
	page, err := svc.GetFavoriteProducts(context.Background(), FavoritesQuery{Source: SourceUserFavorites, UserID: &userID})
	require.NoError(t, err)
	assert.EqualValues(t, 2, page.Total)
	assert.Equal(t, 1, repo.favoritesCalls)
}

func TestFavoritesAnalyticsSource(t *testing.T) {
	repo := &fakeProductRepository{popular: []domain.Product{{ID: 9}, {ID: 4}}}
	svc := NewService(repo)

	page, err := svc.GetFavoriteProducts(context.Background(), FavoritesQuery{Source: SourceAnalytics})
	require.NoError(t, err)
	assert.EqualValues(t, 2, page.Total)
	assert.Equal(t, 1, repo.popularityCalls)
}

func TestFavoritesUnknownSource(t *testing.T) {
	svc := NewService(&fakeProductRepository{})

	_, err := svc.GetFavoriteProducts(context.Background(), FavoritesQuery{Source: "trending-ai"})
	require.ErrorIs(t, err, ErrUnknownSource)
}

func TestGetProductMissing(t *testing.T) {
	svc := NewService(&fakeProductRepository{})

	_, err := svc.GetProduct(context.Background(), 404)
	require.ErrorIs(t, err, ErrProductMissing)
}

func TestHydrateBoardKeepsOrder(t *testing.T) {
	repo := &fakeProductRepository{products: seedProducts(5)}
	svc := NewService(repo)

	out, err := svc.HydrateBoard(context.Background(), []int64{4, 1, 999, 3})
	require.NoError(t, err)
	require.Len(t, out, 3)
	assert.EqualValues(t, 4, out[0].ID)
	assert.EqualValues(t, 1, out[1].ID)
	assert.EqualValues(t, 3, out[2].ID)
}
