package analytics

import (
	"sync"

	"github.com/google/btree"
)

// BoardEntry is one leaderboard position.
type BoardEntry struct {
	ProductID  int64   `json:"product_id,string"`
	TrendScore float64 `json:"trend_score"`
}

func lessEntry(a, b BoardEntry) bool {
	if a.TrendScore != b.TrendScore {
		return a.TrendScore < b.TrendScore
	}
	return a.ProductID < b.ProductID
}

// Leaderboard keeps the top products by trend score in memory so the
// trending endpoint serves without a database sort. Updated after every
// recompute; warmed from the popularity table at startup.
type Leaderboard struct {
	mu       sync.RWMutex
	tree     *btree.BTreeG[BoardEntry]
	byID     map[int64]BoardEntry
	capacity int
}

func NewLeaderboard(capacity int) *Leaderboard {
	if capacity <= 0 {
		capacity = 50
	}
	return &Leaderboard{
		tree:     btree.NewG[BoardEntry](8, lessEntry),
		byID:     make(map[int64]BoardEntry),
		capacity: capacity,
	}
}

// Update replaces the entry for a product and trims to capacity.
func (l *Leaderboard) Update(productID int64, trendScore float64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if prev, ok := l.byID[productID]; ok {
		l.tree.Delete(prev)
	}
	entry := BoardEntry{ProductID: productID, TrendScore: trendScore}
	l.tree.ReplaceOrInsert(entry)
	l.byID[productID] = entry
	for l.tree.Len() > l.capacity {
		min, ok := l.tree.DeleteMin()
		if !ok {
			break
		}
		delete(l.byID, min.ProductID)
	}
}

// Remove drops a product from the board (product deletion cascade).
func (l *Leaderboard) Remove(productID int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if prev, ok := l.byID[productID]; ok {
		l.tree.Delete(prev)
		delete(l.byID, productID)
	}
}

// TopN returns up to n entries, highest trend score first.
func (l *Leaderboard) TopN(n int) []BoardEntry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if n <= 0 || n > l.tree.Len() {
		n = l.tree.Len()
	}
	out := make([]BoardEntry, 0, n)
	l.tree.Descend(func(e BoardEntry) bool {
		out = append(out, e)
		return len(out) < n
	})
	return out
}

func (l *Leaderboard) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.tree.Len()
}
