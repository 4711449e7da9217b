package api

import (
	"context"
	"net/http"

	"github.com/okian/trainhist/internal/app"
)

// CompareDependencies defines the comparison operation.
type CompareDependencies interface {
	NewView(ctx context.Context) *app.View
	Compare(ctx context.Context, view *app.View, raw string) (*app.Comparison, error)
}

// CompareHandler serves multi-entity comparisons.
type CompareHandler struct {
	deps CompareDependencies
}

// NewCompareHandler creates a new compare handler.
func NewCompareHandler(deps CompareDependencies) *CompareHandler {
	return &CompareHandler{deps: deps}
}

type compareResponse struct {
	*app.Comparison
	Charts map[string]any `json:"charts"`
}

// HandleCompare handles GET /compare?ids=1,2,3.
func (h *CompareHandler) HandleCompare(w http.ResponseWriter, r *http.Request) {
	view := h.deps.NewView(r.Context())
	defer view.Close()

	c, err := h.deps.Compare(r.Context(), view, r.URL.Query().Get("ids"))
	if err != nil {
		writeFailure(w, err)
		return
	}
	resp := compareResponse{Comparison: c, Charts: make(map[string]any)}
	for _, name := range view.Charts() {
		if series, ok := view.Chart(name); ok {
			resp.Charts[name] = series
		}
	}
	writeJSON(w, http.StatusOK, resp)
}
