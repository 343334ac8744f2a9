/*
handlers.go - HTTP API handlers for the party quote engine

PURPOSE:
  Exposes draft editing, closing and the saved budget archive via REST.
  Handles HTTP request/response, JSON serialization, and delegates to
  the budget package.

ENDPOINTS:
  Catalog:
    GET    /api/catalog?kind=menu                    List templates

  Drafts:
    GET    /api/drafts                               List open drafts
    POST   /api/drafts                               Create draft
    GET    /api/drafts/{id}                          Snapshot + quote + findings
    PATCH  /api/drafts/{id}                          Set one field
    GET    /api/drafts/{id}/validation               Findings only
    POST   /api/drafts/{id}/close                    Pay, close and save

  Items:
    POST   /api/drafts/{id}/items/{category}         Select a template
    PUT    /api/drafts/{id}/items/{category}/{item}  Update an item
    DELETE /api/drafts/{id}/items/{category}/{item}  Remove an item

  Transport:
    POST   /api/drafts/{id}/assignments              Book a vehicle
    PUT    /api/drafts/{id}/assignments/{aid}        Update a booking
    DELETE /api/drafts/{id}/assignments/{aid}        Cancel a booking
    POST   /api/drafts/{id}/assignments/{aid}/link   Link to an activity
    DELETE /api/drafts/{id}/assignments/{aid}/link   Unlink

  Budgets:
    GET    /api/budgets                              Closed budgets
    GET    /api/budgets/{id}                         One closed budget
    POST   /api/budgets/import                       Legacy JSON -> draft

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Invalid input
  - 404: Draft, item, template or budget not found
  - 409: Duplicate selection, activity already linked, budget closed
  - 422: Blocking validation findings (details lists them)
  - 500: Internal errors

SECURITY NOTE:
  No authentication. All endpoints are public.

SEE ALSO:
  - dto.go: Request/response data structures
  - drafts.go: In-memory draft sessions
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"github.com/warp/party-budget/budget"
	"github.com/warp/party-budget/catalog"
	"github.com/warp/party-budget/internal/clock"
	"github.com/warp/party-budget/legacy"
	"github.com/warp/party-budget/payment"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Repo     budget.Repository
	Catalog  *catalog.Catalog
	Payments payment.Confirmer
	Clock    clock.Clock
	Drafts   *DraftStore

	// Track currently loaded scenario
	currentScenario string
}

// NewHandler creates a new handler.
func NewHandler(repo budget.Repository, cat *catalog.Catalog, payments payment.Confirmer) *Handler {
	return &Handler{
		Repo:     repo,
		Catalog:  cat,
		Payments: payments,
		Clock:    clock.SystemClock{},
		Drafts:   NewDraftStore(),
	}
}

func (h *Handler) newSelection() *budget.Selection {
	return budget.NewSelection(budget.WithClock(h.Clock))
}

// withDraft runs fn on the draft named in the URL while holding its lock,
// then writes the draft back, or the error.
func (h *Handler) withDraft(w http.ResponseWriter, r *http.Request, status int, fn func(sel *budget.Selection) (string, error)) {
	id := chi.URLParam(r, "id")
	d, ok := h.Drafts.get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "Draft not found", nil)
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	createdID, err := fn(d.sel)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	d.touched = h.Clock.Now()

	dto := toDraftDTO(d.sel)
	if createdID != "" {
		writeJSON(w, status, MutationResponse{ID: createdID, Draft: dto})
		return
	}
	writeJSON(w, status, dto)
}

// =============================================================================
// HEALTH & CATALOG
// =============================================================================

type pinger interface {
	Ping(ctx context.Context) error
}

// Health reports whether the service and its store are reachable.
// GET /api/health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if p, ok := h.Repo.(pinger); ok {
		if err := p.Ping(r.Context()); err != nil {
			writeError(w, http.StatusServiceUnavailable, "Store unreachable", err)
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"drafts": h.Drafts.Len(),
	})
}

// ListCatalog returns catalog templates, optionally filtered by kind.
// GET /api/catalog?kind=menu
func (h *Handler) ListCatalog(w http.ResponseWriter, r *http.Request) {
	kind := budget.Kind(r.URL.Query().Get("kind"))
	if kind != "" && !kind.Valid() {
		writeError(w, http.StatusBadRequest, "Unknown template kind", fmt.Errorf("kind %q", kind))
		return
	}

	templates := h.Catalog.List(kind)
	dtos := make([]catalog.TemplateJSON, len(templates))
	for i, t := range templates {
		dtos[i] = catalog.ToJSON(t)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// DRAFT HANDLERS
// =============================================================================

// ListDrafts returns open drafts.
// GET /api/drafts
func (h *Handler) ListDrafts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Drafts.Summaries())
}

// CreateDraft starts a new draft, optionally pre-filled.
// POST /api/drafts
func (h *Handler) CreateDraft(w http.ResponseWriter, r *http.Request) {
	var req CreateDraftRequest
	if err := decodeJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	sel := h.newSelection()
	if err := applyCreate(sel, req); err != nil {
		writeDomainError(w, err)
		return
	}

	h.Drafts.Put(sel, h.Clock.Now())
	log.WithField("budget_id", sel.ID()).Info("draft created")
	writeJSON(w, http.StatusCreated, toDraftDTO(sel))
}

func applyCreate(sel *budget.Selection, req CreateDraftRequest) error {
	if req.ClientName != "" {
		if err := sel.UpdateField(budget.FieldClientName, req.ClientName); err != nil {
			return err
		}
	}
	if req.EventDate != "" {
		if err := sel.UpdateField(budget.FieldEventDate, req.EventDate); err != nil {
			return err
		}
	}
	if req.GuestCount != 0 {
		if err := sel.UpdateField(budget.FieldGuestCount, req.GuestCount); err != nil {
			return err
		}
	}
	if req.Extras != nil {
		if err := sel.UpdateField(budget.FieldExtras, *req.Extras); err != nil {
			return err
		}
	}
	return nil
}

// GetDraft returns the draft with its quote and findings.
// GET /api/drafts/{id}
func (h *Handler) GetDraft(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	d, ok := h.Drafts.get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "Draft not found", nil)
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	writeJSON(w, http.StatusOK, toDraftDTO(d.sel))
}

// UpdateField sets one scalar field.
// PATCH /api/drafts/{id}
func (h *Handler) UpdateField(w http.ResponseWriter, r *http.Request) {
	var req UpdateFieldRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	h.withDraft(w, r, http.StatusOK, func(sel *budget.Selection) (string, error) {
		return "", sel.UpdateField(budget.Field(req.Field), req.Value)
	})
}

// GetValidation returns the findings of a draft.
// GET /api/drafts/{id}/validation
func (h *Handler) GetValidation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	d, ok := h.Drafts.get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "Draft not found", nil)
		return
	}
	d.mu.Lock()
	findings := d.sel.Validate()
	d.mu.Unlock()
	if findings == nil {
		findings = []budget.Finding{}
	}
	writeJSON(w, http.StatusOK, findings)
}

// CloseDraft confirms payment for the quoted total, closes the draft and
// saves it. A draft closed earlier whose save failed is saved again.
// POST /api/drafts/{id}/close
func (h *Handler) CloseDraft(w http.ResponseWriter, r *http.Request) {
	var req CloseRequest
	if err := decodeJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	id := chi.URLParam(r, "id")
	d, ok := h.Drafts.get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "Draft not found", nil)
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	ctx := r.Context()
	sel := d.sel
	if !sel.IsClosed() {
		findings := sel.Validate()
		if budget.HasErrors(findings) {
			writeDomainError(w, &budget.ValidationFailedError{Findings: findings})
			return
		}

		details, err := h.Payments.Confirm(ctx, sel.ID(), sel.Quote().TotalAmount)
		if err != nil {
			writeError(w, http.StatusBadGateway, "Payment not confirmed", err)
			return
		}
		if details == nil {
			details = budget.PaymentDetails{}
		}
		if req.Method != "" {
			details["method"] = req.Method
		}
		if _, err := sel.Close(details); err != nil {
			writeDomainError(w, err)
			return
		}
	} else if !sel.IsDirty() {
		writeDomainError(w, budget.ErrBudgetClosed)
		return
	}

	closed := sel.Snapshot()
	if err := h.Repo.Save(ctx, closed); err != nil {
		log.WithError(err).WithField("budget_id", closed.ID).Error("closed budget not saved")
		if errors.Is(err, budget.ErrBudgetExists) {
			writeDomainError(w, err)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to save budget", err)
		return
	}
	sel.MarkClean()
	d.touched = h.Clock.Now()

	writeJSON(w, http.StatusCreated, closed)
}

// =============================================================================
// ITEM HANDLERS
// =============================================================================

// AddItem selects a catalog template in a category.
// POST /api/drafts/{id}/items/{category}
func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.TemplateID == "" {
		writeDomainError(w, budget.ErrMissingTemplateID)
		return
	}
	tpl, err := h.Catalog.Lookup(req.TemplateID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	category := budget.Category(chi.URLParam(r, "category"))
	h.withDraft(w, r, http.StatusCreated, func(sel *budget.Selection) (string, error) {
		item, err := sel.AddItem(category, tpl)
		return item.ID, err
	})
}

// UpdateItem merges a partial update into an item.
// PUT /api/drafts/{id}/items/{category}/{itemId}
func (h *Handler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	var req UpdateItemRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	category := budget.Category(chi.URLParam(r, "category"))
	itemID := chi.URLParam(r, "itemId")
	h.withDraft(w, r, http.StatusOK, func(sel *budget.Selection) (string, error) {
		return "", sel.UpdateItem(category, itemID, req.toDomain())
	})
}

// RemoveItem drops an item.
// DELETE /api/drafts/{id}/items/{category}/{itemId}
func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	category := budget.Category(chi.URLParam(r, "category"))
	itemID := chi.URLParam(r, "itemId")
	h.withDraft(w, r, http.StatusOK, func(sel *budget.Selection) (string, error) {
		return "", sel.RemoveItem(category, itemID)
	})
}

// =============================================================================
// TRANSPORT HANDLERS
// =============================================================================

// AddAssignment books a catalog vehicle.
// POST /api/drafts/{id}/assignments
func (h *Handler) AddAssignment(w http.ResponseWriter, r *http.Request) {
	var req AddAssignmentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.TransportID == "" {
		writeDomainError(w, budget.ErrMissingTemplateID)
		return
	}
	tpl, err := h.Catalog.Lookup(req.TransportID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	in := budget.AssignmentInput{
		Transport:  tpl,
		ActivityID: req.ActivityID,
		GuestCount: req.GuestCount,
		Duration:   decimal.NewFromFloat(req.Duration),
		Distance:   decimalPtr(req.Distance),
		Pickup:     req.Pickup,
		Dropoff:    req.Dropoff,
		Notes:      req.Notes,
	}
	h.withDraft(w, r, http.StatusCreated, func(sel *budget.Selection) (string, error) {
		a, err := sel.AddAssignment(in)
		return a.ID, err
	})
}

// UpdateAssignment merges a partial update into a booking.
// PUT /api/drafts/{id}/assignments/{assignmentId}
func (h *Handler) UpdateAssignment(w http.ResponseWriter, r *http.Request) {
	var req UpdateAssignmentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	aid := chi.URLParam(r, "assignmentId")
	h.withDraft(w, r, http.StatusOK, func(sel *budget.Selection) (string, error) {
		return "", sel.UpdateAssignment(aid, req.toDomain())
	})
}

// RemoveAssignment cancels a booking.
// DELETE /api/drafts/{id}/assignments/{assignmentId}
func (h *Handler) RemoveAssignment(w http.ResponseWriter, r *http.Request) {
	aid := chi.URLParam(r, "assignmentId")
	h.withDraft(w, r, http.StatusOK, func(sel *budget.Selection) (string, error) {
		return "", sel.RemoveAssignment(aid)
	})
}

// LinkAssignment links a booking to a selected activity.
// POST /api/drafts/{id}/assignments/{assignmentId}/link
func (h *Handler) LinkAssignment(w http.ResponseWriter, r *http.Request) {
	var req LinkRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	aid := chi.URLParam(r, "assignmentId")
	h.withDraft(w, r, http.StatusOK, func(sel *budget.Selection) (string, error) {
		return "", sel.LinkToActivity(aid, req.ActivityID, req.GuestCount)
	})
}

// UnlinkAssignment makes a booking standalone again.
// DELETE /api/drafts/{id}/assignments/{assignmentId}/link
func (h *Handler) UnlinkAssignment(w http.ResponseWriter, r *http.Request) {
	aid := chi.URLParam(r, "assignmentId")
	h.withDraft(w, r, http.StatusOK, func(sel *budget.Selection) (string, error) {
		return "", sel.UnlinkFromActivity(aid)
	})
}

// =============================================================================
// BUDGET HANDLERS
// =============================================================================

// ListBudgets returns closed budgets, most recent first.
// GET /api/budgets
func (h *Handler) ListBudgets(w http.ResponseWriter, r *http.Request) {
	budgets, err := h.Repo.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list budgets", err)
		return
	}
	dtos := make([]BudgetSummaryDTO, len(budgets))
	for i, b := range budgets {
		dtos[i] = toBudgetSummaryDTO(b)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetBudget returns one closed budget.
// GET /api/budgets/{id}
func (h *Handler) GetBudget(w http.ResponseWriter, r *http.Request) {
	b, err := h.Repo.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

// ImportBudget turns a legacy saved budget into a new draft. A closed
// legacy budget is reopened as a copy under a fresh id.
// POST /api/budgets/import
func (h *Handler) ImportBudget(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	b, err := legacy.Import(data)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid legacy budget", err)
		return
	}

	if b.IsClosed {
		b.ID = ""
		b.IsClosed = false
		b.ClosedAt = nil
		b.PaymentDetails = nil
	}
	if b.ID == "" || h.idTaken(r.Context(), b.ID) {
		b.ID = budget.NewID()
	}

	sel := budget.LoadSelection(b, budget.WithClock(h.Clock))
	h.Drafts.Put(sel, h.Clock.Now())
	log.WithField("budget_id", sel.ID()).Info("legacy budget imported")
	writeJSON(w, http.StatusCreated, toDraftDTO(sel))
}

// =============================================================================
// HELPERS
// =============================================================================

// idTaken reports whether an open draft or a saved budget already uses id.
// A failed repository lookup counts as taken.
func (h *Handler) idTaken(ctx context.Context, id string) bool {
	if _, ok := h.Drafts.get(id); ok {
		return true
	}
	_, err := h.Repo.Get(ctx, id)
	return !errors.Is(err, budget.ErrBudgetNotFound)
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	return dec.Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeDomainError maps budget errors onto HTTP statuses.
func writeDomainError(w http.ResponseWriter, err error) {
	var vf *budget.ValidationFailedError
	switch {
	case errors.As(err, &vf):
		writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "Budget has blocking findings",
			Details: vf.Findings,
		})
	case budget.IsNotFound(err):
		writeError(w, http.StatusNotFound, "Not found", err)
	case budget.IsConflict(err):
		writeError(w, http.StatusConflict, "Conflict", err)
	case budget.IsClientError(err):
		writeError(w, http.StatusBadRequest, "Invalid request", err)
	default:
		log.WithError(err).Error("unhandled error")
		writeError(w, http.StatusInternalServerError, "Internal error", err)
	}
}
