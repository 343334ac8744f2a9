/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. Drafts are returned
  as the full budget snapshot plus a flattened quote whose amounts are
  fixed-point strings ("850.00"), so clients never see float rounding.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Complex response wrappers

VALIDATION:
  Validation is done in handlers and the budget package, not in DTOs.

SEE ALSO:
  - handlers.go: Uses these types
  - catalog/factory.go: TemplateJSON type
*/
package api

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/party-budget/budget"
)

// =============================================================================
// DRAFTS
// =============================================================================

// CreateDraftRequest optionally pre-fills the basic fields.
type CreateDraftRequest struct {
	ClientName string   `json:"client_name"`
	EventDate  string   `json:"event_date"`
	GuestCount int      `json:"guest_count"`
	Extras     *float64 `json:"extras"`
}

// UpdateFieldRequest sets one scalar field of a draft.
type UpdateFieldRequest struct {
	Field string `json:"field"`
	Value any    `json:"value"`
}

// QuoteDTO is the priced view of a budget.
type QuoteDTO struct {
	TotalAmount string       `json:"total_amount"`
	Breakdown   BreakdownDTO `json:"breakdown"`
}

// BreakdownDTO holds per-category subtotals.
type BreakdownDTO struct {
	Meals      string `json:"meals"`
	Activities string `json:"activities"`
	Transport  string `json:"transport"`
	Stay       string `json:"stay"`
	Extras     string `json:"extras"`
}

// DraftDTO is a draft as seen by the editor.
type DraftDTO struct {
	Budget   budget.Budget    `json:"budget"`
	Quote    QuoteDTO         `json:"quote"`
	Findings []budget.Finding `json:"findings"`
	CanClose bool             `json:"can_close"`
	IsDirty  bool             `json:"is_dirty"`
}

// MutationResponse returns the id of a created item or assignment along
// with the updated draft.
type MutationResponse struct {
	ID    string   `json:"id"`
	Draft DraftDTO `json:"draft"`
}

// DraftSummaryDTO is one row of the draft list.
type DraftSummaryDTO struct {
	ID          string `json:"id"`
	ClientName  string `json:"client_name"`
	GuestCount  int    `json:"guest_count"`
	TotalAmount string `json:"total_amount"`
	IsClosed    bool   `json:"is_closed"`
	UpdatedAt   string `json:"updated_at"`
}

// =============================================================================
// ITEMS
// =============================================================================

// AddItemRequest selects a catalog template.
type AddItemRequest struct {
	TemplateID string `json:"template_id"`
}

// CustomizationsDTO mirrors budget.Customizations with plain numbers.
type CustomizationsDTO struct {
	GuestCount *int              `json:"guest_count"`
	Duration   *float64          `json:"duration"`
	Nights     int               `json:"nights"`
	Notes      string            `json:"notes"`
	Options    map[string]string `json:"options"`
}

// UpdateItemRequest is a partial item update. Omitted fields are kept.
type UpdateItemRequest struct {
	Quantity         *int               `json:"quantity"`
	IncludeTransport *bool              `json:"include_transport"`
	CalculatedPrice  *float64           `json:"calculated_price"`
	GuestCount       *int               `json:"guest_count"`
	Customizations   *CustomizationsDTO `json:"customizations"`
}

// =============================================================================
// TRANSPORT
// =============================================================================

// AddAssignmentRequest books a catalog vehicle.
type AddAssignmentRequest struct {
	TransportID string   `json:"transport_id"`
	ActivityID  string   `json:"activity_id"`
	GuestCount  int      `json:"guest_count"`
	Duration    float64  `json:"duration"`
	Distance    *float64 `json:"distance"`
	Pickup      string   `json:"pickup"`
	Dropoff     string   `json:"dropoff"`
	Notes       string   `json:"notes"`
}

// UpdateAssignmentRequest is a partial booking update.
type UpdateAssignmentRequest struct {
	GuestCount *int     `json:"guest_count"`
	Duration   *float64 `json:"duration"`
	Distance   *float64 `json:"distance"`
	Pickup     *string  `json:"pickup"`
	Dropoff    *string  `json:"dropoff"`
	Notes      *string  `json:"notes"`
	Reprice    bool     `json:"reprice"`
}

// LinkRequest links a booking to an activity.
type LinkRequest struct {
	ActivityID string `json:"activity_id"`
	GuestCount int    `json:"guest_count"`
}

// =============================================================================
// BUDGETS
// =============================================================================

// CloseRequest names the payment method used at close.
type CloseRequest struct {
	Method string `json:"method"`
}

// BudgetSummaryDTO is one row of the closed budget list.
type BudgetSummaryDTO struct {
	ID          string `json:"id"`
	ClientName  string `json:"client_name"`
	EventDate   string `json:"event_date,omitempty"`
	GuestCount  int    `json:"guest_count"`
	TotalAmount string `json:"total_amount"`
	ClosedAt    string `json:"closed_at,omitempty"`
}

// =============================================================================
// SCENARIOS
// =============================================================================

// ScenarioDTO describes a demo scenario.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// LoadScenarioRequest is the request to load a scenario.
type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func toQuoteDTO(r budget.Result) QuoteDTO {
	return QuoteDTO{
		TotalAmount: r.TotalAmount.StringFixed(2),
		Breakdown: BreakdownDTO{
			Meals:      r.Breakdown.Meals.StringFixed(2),
			Activities: r.Breakdown.Activities.StringFixed(2),
			Transport:  r.Breakdown.Transport.StringFixed(2),
			Stay:       r.Breakdown.Stay.StringFixed(2),
			Extras:     r.Breakdown.Extras.StringFixed(2),
		},
	}
}

func toDraftDTO(sel *budget.Selection) DraftDTO {
	findings := sel.Validate()
	if findings == nil {
		findings = []budget.Finding{}
	}
	return DraftDTO{
		Budget:   sel.Snapshot(),
		Quote:    toQuoteDTO(sel.Quote()),
		Findings: findings,
		CanClose: !sel.IsClosed() && !budget.HasErrors(findings),
		IsDirty:  sel.IsDirty(),
	}
}

func toBudgetSummaryDTO(b budget.Budget) BudgetSummaryDTO {
	dto := BudgetSummaryDTO{
		ID:          b.ID,
		ClientName:  b.ClientName,
		GuestCount:  b.GuestCount,
		TotalAmount: b.TotalAmount.StringFixed(2),
	}
	if !b.EventDate.IsZero() {
		dto.EventDate = b.EventDate.Format("2006-01-02")
	}
	if b.ClosedAt != nil {
		dto.ClosedAt = b.ClosedAt.Format(time.RFC3339)
	}
	return dto
}

func (c *CustomizationsDTO) toDomain() budget.Customizations {
	out := budget.Customizations{
		GuestCount: c.GuestCount,
		Nights:     c.Nights,
		Notes:      c.Notes,
		Options:    c.Options,
	}
	if c.Duration != nil {
		d := decimal.NewFromFloat(*c.Duration)
		out.Duration = &d
	}
	return out
}

func (req UpdateItemRequest) toDomain() budget.ItemUpdate {
	upd := budget.ItemUpdate{
		Quantity:         req.Quantity,
		IncludeTransport: req.IncludeTransport,
		GuestCount:       req.GuestCount,
	}
	if req.CalculatedPrice != nil {
		p := budget.NewMoney(*req.CalculatedPrice)
		upd.CalculatedPrice = &p
	}
	if req.Customizations != nil {
		c := req.Customizations.toDomain()
		upd.Customizations = &c
	}
	return upd
}

func (req UpdateAssignmentRequest) toDomain() budget.AssignmentUpdate {
	upd := budget.AssignmentUpdate{
		GuestCount: req.GuestCount,
		Pickup:     req.Pickup,
		Dropoff:    req.Dropoff,
		Notes:      req.Notes,
		Reprice:    req.Reprice,
	}
	upd.Duration = decimalPtr(req.Duration)
	upd.Distance = decimalPtr(req.Distance)
	return upd
}

func decimalPtr(f *float64) *decimal.Decimal {
	if f == nil {
		return nil
	}
	d := decimal.NewFromFloat(*f)
	return &d
}
