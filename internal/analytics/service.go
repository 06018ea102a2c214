package analytics

import (
	"context"
	"sync"
	"time"

	evbus "github.com/asaskevich/EventBus"
	"github.com/montanaflynn/stats"
	"github.com/panjf2000/ants/v2"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/lacarte-io/lacarte/internal/domain"
	"github.com/lacarte-io/lacarte/pkg/common"
	"github.com/lacarte-io/lacarte/pkg/metrics"
)

// Event topics published by the tracking use cases.
const (
	TopicProductViewed  = "analytics.product.viewed"
	TopicProductOrdered = "analytics.product.ordered"
)

// ErrProductNotFound is returned when a tracked product does not resolve.
var ErrProductNotFound = errors.New("product not found")

// TrackViewInput is one view event as received from the HTTP layer.
type TrackViewInput struct {
	ProductID int64
	UserID    *int64
	SessionID string
	IPAddress string
	UserAgent string
}

// Summary aggregates popularity rows for the admin dashboard.
type Summary struct {
	Products        int64   `json:"products"`
	TotalViews      int64   `json:"total_views"`
	TotalOrders     int64   `json:"total_orders"`
	TotalRevenue    float64 `json:"total_revenue"`
	MeanPopularity  float64 `json:"mean_popularity"`
	MedianPopularity float64 `json:"median_popularity"`
	MaxPopularity   float64 `json:"max_popularity"`
}

// Service implements view/order tracking and the popularity pipeline.
// Tracking writes the log row synchronously and dispatches the score
// recomputation to a worker pool through the event bus; recompute
// failures are logged and swallowed, never surfaced to the caller.
// The pool is non-blocking: when every worker is busy the recompute is
// dropped with a log line instead of stalling the tracking request.
type Service struct {
	repo     Repository
	products ProductFinder
	bus      evbus.Bus
	pool     *ants.Pool
	board    *Leaderboard
	locks    sync.Map // productID -> *sync.Mutex
	dispatch func(task func()) error
}

func NewService(repo Repository, products ProductFinder, workers int) (*Service, error) {
	if workers <= 0 {
		workers = 4
	}
	pool, err := ants.NewPool(workers, ants.WithNonblocking(true))
	if err != nil {
		return nil, errors.Wrap(err, "analytics worker pool")
	}
	s := &Service{
		repo:     repo,
		products: products,
		bus:      evbus.New(),
		pool:     pool,
		board:    NewLeaderboard(50),
	}
	s.dispatch = s.pool.Submit
	if err := s.bus.Subscribe(TopicProductViewed, s.onProductViewed); err != nil {
		return nil, errors.Wrap(err, "subscribe viewed")
	}
	if err := s.bus.Subscribe(TopicProductOrdered, s.onProductOrdered); err != nil {
		return nil, errors.Wrap(err, "subscribe ordered")
	}
	return s, nil
}

// Stop releases the worker pool.
func (s *Service) Stop() {
	s.pool.Release()
}

// Leaderboard exposes the in-memory trending board.
func (s *Service) Leaderboard() *Leaderboard {
	return s.board
}

// TrackView validates and persists one view event, then triggers the
// popularity recomputation without awaiting it. The returned view row is
// committed before any recompute runs.
func (s *Service) TrackView(ctx context.Context, in TrackViewInput) (*domain.ProductView, error) {
	found, err := s.products.Exists(ctx, in.ProductID)
	if err != nil {
		return nil, errors.Wrap(err, "resolve product")
	}
	if !found {
		return nil, ErrProductNotFound
	}

	view := &domain.ProductView{
		ID:        common.UUIDint64(),
		ProductID: in.ProductID,
		UserID:    in.UserID,
		SessionID: in.SessionID,
		IPAddress: in.IPAddress,
		UserAgent: in.UserAgent,
		ViewedAt:  time.Now(),
	}
	if err := s.repo.CreateView(ctx, view); err != nil {
		return nil, err
	}

	metrics.IncrCounter("product_views", 1)
	s.bus.Publish(TopicProductViewed, in.ProductID)
	return view, nil
}

// TrackOrder validates a product and feeds one order event (with its
// revenue) into the popularity pipeline, same detached contract as
// TrackView.
func (s *Service) TrackOrder(ctx context.Context, productID int64, amount float64) error {
	found, err := s.products.Exists(ctx, productID)
	if err != nil {
		return errors.Wrap(err, "resolve product")
	}
	if !found {
		return ErrProductNotFound
	}
	metrics.IncrCounter("product_orders", 1)
	s.bus.Publish(TopicProductOrdered, productID, amount)
	return nil
}

func (s *Service) onProductViewed(productID int64) {
	if err := s.dispatch(func() { s.safeRecompute(productID, 0, false) }); err != nil {
		zap.L().Warn("view recompute dropped",
			zap.Int64("product_id", productID), zap.Error(err))
	}
}

func (s *Service) onProductOrdered(productID int64, amount float64) {
	if err := s.dispatch(func() { s.safeRecompute(productID, amount, true) }); err != nil {
		zap.L().Warn("order recompute dropped",
			zap.Int64("product_id", productID), zap.Error(err))
	}
}

// lockProduct serializes recomputes per product within this process.
// Cross-process writers still race on the upsert; accepted for a
// heuristic signal.
func (s *Service) lockProduct(productID int64) func() {
	v, _ := s.locks.LoadOrStore(productID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

func (s *Service) safeRecompute(productID int64, amount float64, isOrder bool) {
	defer func() {
		if err := recover(); err != nil {
			zap.S().Error("popularity recompute panic: ", err)
		}
	}()
	unlock := s.lockProduct(productID)
	defer unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pop, err := s.loadOrZero(ctx, productID)
	if err != nil {
		zap.L().Error("failed to load popularity",
			zap.Int64("product_id", productID), zap.Error(err))
		return
	}

	now := time.Now()
	var next domain.ProductPopularity
	if isOrder {
		next = ApplyOrder(pop, amount, now)
	} else {
		next = ApplyView(pop, now)
	}

	if err := s.repo.UpsertPopularity(ctx, &next); err != nil {
		zap.L().Error("failed to upsert popularity",
			zap.Int64("product_id", productID), zap.Error(err))
		return
	}
	s.board.Update(productID, next.TrendScore)

	zap.L().Debug("popularity updated",
		zap.Int64("product_id", productID),
		zap.Int64("views", next.ViewCount),
		zap.Float64("score", next.PopularityScore),
		zap.Float64("trend", next.TrendScore))
}

func (s *Service) loadOrZero(ctx context.Context, productID int64) (domain.ProductPopularity, error) {
	pop, err := s.repo.GetPopularity(ctx, productID)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return domain.ProductPopularity{ProductID: productID}, nil
	case err != nil:
		return domain.ProductPopularity{}, err
	}
	return *pop, nil
}

// ViewCount returns the number of logged views for an existing product.
func (s *Service) ViewCount(ctx context.Context, productID int64) (int64, error) {
	found, err := s.products.Exists(ctx, productID)
	if err != nil {
		return 0, errors.Wrap(err, "resolve product")
	}
	if !found {
		return 0, ErrProductNotFound
	}
	return s.repo.ViewCount(ctx, productID)
}

// CountViews counts log rows in [from, to).
func (s *Service) CountViews(ctx context.Context, from, to time.Time) (int64, error) {
	return s.repo.CountViews(ctx, from, to)
}

// ListViews lists log rows in [from, to) for export.
func (s *Service) ListViews(ctx context.Context, from, to time.Time, limit int) ([]domain.ProductView, error) {
	return s.repo.ListViews(ctx, from, to, limit)
}

// Trending returns the top n leaderboard entries.
func (s *Service) Trending(n int) []BoardEntry {
	return s.board.TopN(n)
}

// WarmLeaderboard loads the board from the popularity table; called at
// startup and after trend refreshes.
func (s *Service) WarmLeaderboard(ctx context.Context) error {
	rows, err := s.repo.ListPopularity(ctx, s.board.capacity)
	if err != nil {
		return err
	}
	for _, row := range rows {
		s.board.Update(row.ProductID, row.TrendScore)
	}
	return nil
}

// RefreshTrendScores re-applies the time decay to every popularity row.
// Run hourly so products without fresh views still decay.
func (s *Service) RefreshTrendScores(ctx context.Context) error {
	rows, err := s.repo.ListPopularity(ctx, 0)
	if err != nil {
		return err
	}
	now := time.Now()

	g := new(errgroup.Group)
	g.SetLimit(8)
	for _, row := range rows {
		row := row
		g.Go(func() error {
			unlock := s.lockProduct(row.ProductID)
			defer unlock()
			next := RefreshTrend(row, now)
			if err := s.repo.UpsertPopularity(ctx, &next); err != nil {
				zap.L().Error("trend refresh failed",
					zap.Int64("product_id", row.ProductID), zap.Error(err))
				return nil
			}
			s.board.Update(row.ProductID, next.TrendScore)
			return nil
		})
	}
	return g.Wait()
}

// PruneViews applies the retention policy to the view log.
func (s *Service) PruneViews(ctx context.Context, retentionDays int) (int64, error) {
	if retentionDays <= 0 {
		retentionDays = 180
	}
	cutoff := time.Now().Add(-time.Hour * 24 * time.Duration(retentionDays))
	return s.repo.PruneViews(ctx, cutoff)
}

// Summarize computes the admin dashboard aggregates over all popularity
// rows.
func (s *Service) Summarize(ctx context.Context) (*Summary, error) {
	rows, err := s.repo.ListPopularity(ctx, 0)
	if err != nil {
		return nil, err
	}
	out := &Summary{Products: int64(len(rows))}
	scores := make([]float64, 0, len(rows))
	for _, row := range rows {
		out.TotalViews += row.ViewCount
		out.TotalOrders += row.OrderCount
		out.TotalRevenue += row.TotalRevenue
		scores = append(scores, row.PopularityScore)
	}
	if len(scores) > 0 {
		out.MeanPopularity, _ = stats.Mean(scores)
		out.MedianPopularity, _ = stats.Median(scores)
		out.MaxPopularity, _ = stats.Max(scores)
	}
	return out, nil
}
