package analytics

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/lacarte-io/lacarte/internal/domain"
)

type memRepository struct {
	mu         sync.Mutex
	views      []domain.ProductView
	popularity map[int64]domain.ProductPopularity
}

func newMemRepository() *memRepository {
	return &memRepository{popularity: map[int64]domain.ProductPopularity{}}
}

func (r *memRepository) CreateView(ctx context.Context, view *domain.ProductView) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.views = append(r.views, *view)
	return nil
}

func (r *memRepository) GetPopularity(ctx context.Context, productID int64) (*domain.ProductPopularity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	pop, ok := r.popularity[productID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &pop, nil
}

func (r *memRepository) UpsertPopularity(ctx context.Context, pop *domain.ProductPopularity) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.popularity[pop.ProductID] = *pop
	return nil
}

func (r *memRepository) ViewCount(ctx context.Context, productID int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, v := range r.views {
		if v.ProductID == productID {
			count++
		}
	}
	return count, nil
}

func (r *memRepository) CountViews(ctx context.Context, from, to time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, v := range r.views {
		if !v.ViewedAt.Before(from) && v.ViewedAt.Before(to) {
			count++
		}
	}
	return count, nil
}

func (r *memRepository) ListPopularity(ctx context.Context, limit int) ([]domain.ProductPopularity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.ProductPopularity, 0, len(r.popularity))
	for _, pop := range r.popularity {
		out = append(out, pop)
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *memRepository) ListViews(ctx context.Context, from, to time.Time, limit int) ([]domain.ProductView, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.ProductView
	for _, v := range r.views {
		if !v.ViewedAt.Before(from) && v.ViewedAt.Before(to) {
			out = append(out, v)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *memRepository) PruneViews(ctx context.Context, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var kept []domain.ProductView
	var pruned int64
	for _, v := range r.views {
		if v.ViewedAt.Before(cutoff) {
			pruned++
			continue
		}
		kept = append(kept, v)
	}
	r.views = kept
	return pruned, nil
}

type memFinder struct {
	known map[int64]bool
}

func (f *memFinder) Exists(ctx context.Context, productID int64) (bool, error) {
	return f.known[productID], nil
}

func newTestService(t *testing.T, known ...int64) (*Service, *memRepository) {
	t.Helper()
	repo := newMemRepository()
	finder := &memFinder{known: map[int64]bool{}}
	for _, id := range known {
		finder.known[id] = true
	}
	svc, err := NewService(repo, finder, 2)
	require.NoError(t, err)
	t.Cleanup(svc.Stop)
	// run recomputes inline so tests observe them deterministically
	svc.dispatch = func(task func()) error {
		task()
		return nil
	}
	return svc, repo
}

// slowUpsertRepository holds every popularity upsert until release is
// closed, so a test can keep the worker pool occupied.
type slowUpsertRepository struct {
	*memRepository
	release chan struct{}
}

func (r *slowUpsertRepository) UpsertPopularity(ctx context.Context, pop *domain.ProductPopularity) error {
	<-r.release
	return r.memRepository.UpsertPopularity(ctx, pop)
}

func TestTrackViewReturnsWhilePoolSaturated(t *testing.T) {
	repo := &slowUpsertRepository{memRepository: newMemRepository(), release: make(chan struct{})}
	finder := &memFinder{known: map[int64]bool{1: true, 2: true}}
	svc, err := NewService(repo, finder, 1)
	require.NoError(t, err)
	t.Cleanup(svc.Stop)

	_, err = svc.TrackView(context.Background(), TrackViewInput{ProductID: 1})
	require.NoError(t, err)
	require.Eventually(t, func() bool { return svc.pool.Running() == 1 },
		time.Second, 5*time.Millisecond)

	start := time.Now()
	view, err := svc.TrackView(context.Background(), TrackViewInput{ProductID: 2})
	elapsed := time.Since(start)
	close(repo.release)

	require.NoError(t, err)
	require.NotNil(t, view)
	assert.Less(t, elapsed, 500*time.Millisecond)

	// the dropped recompute never loses the log row itself
	repo.mu.Lock()
	defer repo.mu.Unlock()
	assert.Len(t, repo.views, 2)
}

func TestTrackViewUnknownProductNoWrites(t *testing.T) {
	svc, repo := newTestService(t, 1)

	view, err := svc.TrackView(context.Background(), TrackViewInput{ProductID: 999})

	require.ErrorIs(t, err, ErrProductNotFound)
	assert.Nil(t, view)
	assert.Empty(t, repo.views)
	assert.Empty(t, repo.popularity)
}

func TestTrackViewPersistsAndRecomputes(t *testing.T) {
	svc, repo := newTestService(t, 42)

	view, err := svc.TrackView(context.Background(), TrackViewInput{
		ProductID: 42,
		SessionID: "sess-1",
		IPAddress: "10.0.0.1",
	})
	require.NoError(t, err)
	require.NotNil(t, view)
	assert.NotZero(t, view.ID)
	assert.Equal(t, "sess-1", view.SessionID)

	require.Len(t, repo.views, 1)
	pop, ok := repo.popularity[42]
	require.True(t, ok)
	assert.EqualValues(t, 1, pop.ViewCount)
	assert.InDelta(t, 1.0, pop.PopularityScore, 1e-9)
}

func TestTrackViewRepeatedSameDayMonotonic(t *testing.T) {
	svc, repo := newTestService(t, 7)

	var prev float64
	for i := 0; i < 5; i++ {
		_, err := svc.TrackView(context.Background(), TrackViewInput{ProductID: 7})
		require.NoError(t, err)
		pop := repo.popularity[7]
		assert.Greater(t, pop.PopularityScore, prev)
		prev = pop.PopularityScore
	}
	assert.EqualValues(t, 5, repo.popularity[7].ViewCount)
}

func TestTrackOrderFeedsRevenue(t *testing.T) {
	svc, repo := newTestService(t, 3)

	require.NoError(t, svc.TrackOrder(context.Background(), 3, 100))

	pop := repo.popularity[3]
	assert.EqualValues(t, 1, pop.OrderCount)
	assert.InDelta(t, 100.0, pop.TotalRevenue, 1e-9)
	assert.InDelta(t, 10+100*0.1, pop.PopularityScore, 1e-9)
}

func TestTrackOrderUnknownProduct(t *testing.T) {
	svc, repo := newTestService(t)

	err := svc.TrackOrder(context.Background(), 5, 10)

	require.ErrorIs(t, err, ErrProductNotFound)
	assert.Empty(t, repo.popularity)
}

func TestViewCountIdempotentRead(t *testing.T) {
	svc, _ := newTestService(t, 9)

	for i := 0; i < 3; i++ {
		_, err := svc.TrackView(context.Background(), TrackViewInput{ProductID: 9})
		require.NoError(t, err)
	}

	first, err := svc.ViewCount(context.Background(), 9)
	require.NoError(t, err)
	second, err := svc.ViewCount(context.Background(), 9)
	require.NoError(t, err)

	assert.EqualValues(t, 3, first)
	assert.Equal(t, first, second)
}

func TestViewCountUnknownProduct(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.ViewCount(context.Background(), 404)
	require.ErrorIs(t, err, ErrProductNotFound)
}

func TestTrendingReflectsRecomputes(t *testing.T) {
	svc, _ := newTestService(t, 1, 2)

	require.NoError(t, svc.TrackOrder(context.Background(), 2, 50))
	_, err := svc.TrackView(context.Background(), TrackViewInput{ProductID: 1})
	require.NoError(t, err)

	top := svc.Trending(10)
	require.Len(t, top, 2)
	assert.EqualValues(t, 2, top[0].ProductID)
	assert.EqualValues(t, 1, top[1].ProductID)
}

func TestPruneViews(t *testing.T) {
	svc, repo := newTestService(t, 1)

	old := domain.ProductView{ID: 1, ProductID: 1, ViewedAt: time.Now().AddDate(0, 0, -400)}
	recent := domain.ProductView{ID: 2, ProductID: 1, ViewedAt: time.Now()}
	repo.views = append(repo.views, old, recent)

	pruned, err := svc.PruneViews(context.Background(), 180)
	require.NoError(t, err)
	assert.EqualValues(t, 1, pruned)
	require.Len(t, repo.views, 1)
	assert.EqualValues(t, 2, repo.views[0].ID)
}

func TestSummarize(t *testing.T) {
	svc, repo := newTestService(t, 1, 2, 3)

	repo.popularity[1] = domain.ProductPopularity{ProductID: 1, ViewCount: 10, PopularityScore: 10}
	repo.popularity[2] = domain.ProductPopularity{ProductID: 2, OrderCount: 2, PopularityScore: 20}
	repo.popularity[3] = domain.ProductPopularity{ProductID: 3, TotalRevenue: 300, PopularityScore: 30}

	summary, err := svc.Summarize(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 3, summary.Products)
	assert.EqualValues(t, 10, summary.TotalViews)
	assert.EqualValues(t, 2, summary.TotalOrders)
	assert.InDelta(t, 300.0, summary.TotalRevenue, 1e-9)
	assert.InDelta(t, 20.0, summary.MeanPopularity, 1e-9)
	assert.InDelta(t, 20.0, summary.MedianPopularity, 1e-9)
	assert.InDelta(t, 30.0, summary.MaxPopularity, 1e-9)
}
