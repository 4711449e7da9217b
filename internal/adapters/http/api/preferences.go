package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// PreferencesDependencies defines access to the preferred currency.
type PreferencesDependencies interface {
	PreferredCurrency(ctx context.Context) string
	SetPreferredCurrency(ctx context.Context, code string) error
}

// PreferencesHandler reads and writes the preferred currency.
type PreferencesHandler struct {
	deps PreferencesDependencies
}

// NewPreferencesHandler creates a new preferences handler.
func NewPreferencesHandler(deps PreferencesDependencies) *PreferencesHandler {
	return &PreferencesHandler{deps: deps}
}

type currencyBody struct {
	Currency string `json:"currency"`
}

// HandleGet handles GET /preferences/currency.
func (h *PreferencesHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, currencyBody{Currency: h.deps.PreferredCurrency(r.Context())})
}

// HandlePut handles PUT /preferences/currency.
func (h *PreferencesHandler) HandlePut(w http.ResponseWriter, r *http.Request) {
	var req currencyBody
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: %w", ErrBadRequest, err))
		return
	}
	code := strings.ToUpper(strings.TrimSpace(req.Currency))
	if code == "" {
		writeError(w, http.StatusBadRequest, "bad_request", ErrMissingCode)
		return
	}
	if err := h.deps.SetPreferredCurrency(r.Context(), code); err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, currencyBody{Currency: code})
}
