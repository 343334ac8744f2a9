package api

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSweeper_EvictsIdleDrafts(t *testing.T) {
	// GIVEN: A draft touched at testNow and a 24h TTL
	ts := newTestServer(t, nil, nil)
	id := ts.createDraft(t)
	sweeper := NewDraftSweeper(ts.h)

	// WHEN: Sweeping a little later
	ts.clock.SetNow(testNow.Add(23 * time.Hour))
	assert.Empty(t, sweeper.SweepOnce())

	// WHEN: Sweeping after the TTL
	ts.clock.SetNow(testNow.Add(25 * time.Hour))
	evicted := sweeper.SweepOnce()

	// THEN: The draft is gone
	assert.Equal(t, []string{id}, evicted)
	expectStatus(t, ts.do(t, http.MethodGet, "/api/drafts/"+id, nil), http.StatusNotFound)
}

func TestSweeper_EditingKeepsDraftAlive(t *testing.T) {
	ts := newTestServer(t, nil, nil)
	id := ts.createDraft(t)
	sweeper := NewDraftSweeper(ts.h)

	ts.clock.SetNow(testNow.Add(20 * time.Hour))
	ts.addItem(t, id, "meals", "menu-bbq")
	ts.clock.SetNow(testNow.Add(30 * time.Hour))

	assert.Empty(t, sweeper.SweepOnce())
}

func TestSweeper_EvictsSavedDrafts(t *testing.T) {
	// GIVEN: One saved budget and one open draft
	ts := newTestServer(t, nil, nil)
	saved := ts.createDraft(t)
	ts.addItem(t, saved, "meals", "menu-bbq")
	expectStatus(t, ts.do(t, http.MethodPost, "/api/drafts/"+saved+"/close", nil), http.StatusCreated)
	open := ts.createDraft(t)

	// WHEN: Sweeping right away
	evicted := NewDraftSweeper(ts.h).SweepOnce()

	// THEN: Only the saved one goes
	assert.Equal(t, []string{saved}, evicted)
	assert.Equal(t, 1, ts.h.Drafts.Len())
	expectStatus(t, ts.do(t, http.MethodGet, "/api/drafts/"+open, nil), http.StatusOK)
}

func TestSweeper_StartStop(t *testing.T) {
	ts := newTestServer(t, nil, nil)
	sweeper := NewDraftSweeper(ts.h)
	sweeper.CheckInterval = time.Hour

	sweeper.Start()
	sweeper.Start()
	sweeper.Stop()
	sweeper.Stop()

	disabled := NewDraftSweeper(ts.h)
	disabled.Enabled = false
	disabled.Start()
	require.Nil(t, disabled.ticker)
}
