package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/okian/trainhist/internal/app"
)

const maxBundleBytes = 1 << 20

// ReconstructDependencies defines the offline computation.
type ReconstructDependencies interface {
	ComputeBundle(ctx context.Context, b app.Bundle) (*app.Report, error)
}

// ReconstructHandler computes reports from posted bundles.
type ReconstructHandler struct {
	deps ReconstructDependencies
}

// NewReconstructHandler creates a new reconstruct handler.
func NewReconstructHandler(deps ReconstructDependencies) *ReconstructHandler {
	return &ReconstructHandler{deps: deps}
}

// HandleReconstruct handles POST /reconstruct. The body is a JSON bundle,
// or YAML when the content type says so.
func (h *ReconstructHandler) HandleReconstruct(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBundleBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: %w", ErrBadRequest, err))
		return
	}

	var b app.Bundle
	if strings.Contains(r.Header.Get("Content-Type"), "yaml") {
		err = yaml.Unmarshal(body, &b)
	} else {
		err = json.Unmarshal(body, &b)
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: %w", ErrBadRequest, err))
		return
	}

	report, err := h.deps.ComputeBundle(r.Context(), b)
	if err != nil {
		// Bundle inputs come from the caller.
		if errors.Is(err, app.ErrInputUnavailable) {
			err = fmt.Errorf("%w: %w", ErrBadRequest, err)
		}
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}
