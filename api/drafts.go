package api

import (
	"sort"
	"sync"
	"time"

	"github.com/warp/party-budget/budget"
)

// draft is one open editing session. Its mutex serialises every access
// to the Selection, which is not safe for concurrent use.
type draft struct {
	mu      sync.Mutex
	sel     *budget.Selection
	touched time.Time
}

// DraftStore keeps the drafts being edited, keyed by budget id.
type DraftStore struct {
	mu     sync.RWMutex
	drafts map[string]*draft
}

// NewDraftStore creates an empty draft store.
func NewDraftStore() *DraftStore {
	return &DraftStore{drafts: make(map[string]*draft)}
}

// Put registers a selection under its budget id.
func (ds *DraftStore) Put(sel *budget.Selection, now time.Time) {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	ds.drafts[sel.ID()] = &draft{sel: sel, touched: now}
}

func (ds *DraftStore) get(id string) (*draft, bool) {
	ds.mu.RLock()
	defer ds.mu.RUnlock()
	d, ok := ds.drafts[id]
	return d, ok
}

// Delete drops a draft.
func (ds *DraftStore) Delete(id string) {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	delete(ds.drafts, id)
}

// Len returns the number of drafts.
func (ds *DraftStore) Len() int {
	ds.mu.RLock()
	defer ds.mu.RUnlock()
	return len(ds.drafts)
}

// Clear drops every draft.
func (ds *DraftStore) Clear() {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	ds.drafts = make(map[string]*draft)
}

// Summaries lists drafts, most recently updated first.
func (ds *DraftStore) Summaries() []DraftSummaryDTO {
	ds.mu.RLock()
	all := make([]*draft, 0, len(ds.drafts))
	for _, d := range ds.drafts {
		all = append(all, d)
	}
	ds.mu.RUnlock()

	out := make([]DraftSummaryDTO, 0, len(all))
	for _, d := range all {
		d.mu.Lock()
		b := d.sel.Snapshot()
		d.mu.Unlock()
		out = append(out, DraftSummaryDTO{
			ID:          b.ID,
			ClientName:  b.ClientName,
			GuestCount:  b.GuestCount,
			TotalAmount: b.TotalAmount.StringFixed(2),
			IsClosed:    b.IsClosed,
			UpdatedAt:   b.UpdatedAt.Format(time.RFC3339),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt > out[j].UpdatedAt })
	return out
}

// Sweep evicts drafts untouched since cutoff, and closed drafts whose
// budget has been saved. It returns the evicted ids.
func (ds *DraftStore) Sweep(cutoff time.Time) []string {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	var evicted []string
	for id, d := range ds.drafts {
		d.mu.Lock()
		stale := d.touched.Before(cutoff)
		saved := d.sel.IsClosed() && !d.sel.IsDirty()
		d.mu.Unlock()
		if stale || saved {
			delete(ds.drafts, id)
			evicted = append(evicted, id)
		}
	}
	sort.Strings(evicted)
	return evicted
}
