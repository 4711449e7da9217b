package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/okian/trainhist/internal/app"
	"github.com/okian/trainhist/internal/domain/currency"
)

// PlayersDependencies defines the single-entity operations.
type PlayersDependencies interface {
	NewView(ctx context.Context) *app.View
	Detail(ctx context.Context, view *app.View, id string) (*app.Report, error)
	RepriceCached(ctx context.Context, id, code string) ([]app.TransferView, error)
}

// PlayersHandler serves per-entity history and transfers.
type PlayersHandler struct {
	deps PlayersDependencies
}

// NewPlayersHandler creates a new players handler.
func NewPlayersHandler(deps PlayersDependencies) *PlayersHandler {
	return &PlayersHandler{deps: deps}
}

type transfersResponse struct {
	EntityID  string             `json:"entity_id"`
	Currency  string             `json:"currency"`
	Transfers []app.TransferView `json:"transfers"`
}

// HandleHistory handles GET /players/{id}/history. An optional currency
// query parameter overrides the preferred currency for this response.
func (h *PlayersHandler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.PathValue("id"))
	if id == "" {
		writeError(w, http.StatusBadRequest, "bad_request", ErrMissingID)
		return
	}
	code, err := currencyParam(r)
	if err != nil {
		writeFailure(w, err)
		return
	}

	view := h.deps.NewView(r.Context())
	defer view.Close()
	if code != "" {
		view.Currency = code
	}

	report, err := h.deps.Detail(r.Context(), view, id)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// HandleTransfers handles GET /players/{id}/transfers?currency=X. It only
// re-prices a report computed earlier and never refetches.
func (h *PlayersHandler) HandleTransfers(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.PathValue("id"))
	if id == "" {
		writeError(w, http.StatusBadRequest, "bad_request", ErrMissingID)
		return
	}
	code, err := currencyParam(r)
	if err != nil {
		writeFailure(w, err)
		return
	}
	if code == "" {
		view := h.deps.NewView(r.Context())
		code = view.Currency
		view.Close()
	}

	views, err := h.deps.RepriceCached(r.Context(), id, code)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, transfersResponse{EntityID: id, Currency: code, Transfers: views})
}

// currencyParam reads and checks the optional currency query parameter.
func currencyParam(r *http.Request) (string, error) {
	code := strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("currency")))
	if code == "" {
		return "", nil
	}
	if !currency.Known(code) {
		return "", fmt.Errorf("%w: %q", app.ErrInvalidCurrency, code)
	}
	return code, nil
}
