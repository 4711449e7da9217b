package app

import (
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/okian/trainhist/internal/domain/compare"
)

// View is the state owned by one rendering of results: the currency
// snapshot taken when it opened and the charts rendered into it. Closing
// the view releases the charts.
type View struct {
	ID       string
	Currency string

	mu     sync.Mutex
	charts map[string][]compare.Series
	closed bool
}

// OpenView opens a view whose prices are shown in code.
func OpenView(code string) *View {
	return &View{
		ID:       uuid.NewString(),
		Currency: code,
		charts:   make(map[string][]compare.Series),
	}
}

// Register stores a chart under name, replacing the previous one.
// Registering on a closed view is a no-op.
func (v *View) Register(name string, series []compare.Series) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return
	}
	v.charts[name] = series
}

// Chart returns the chart registered under name.
func (v *View) Chart(name string) ([]compare.Series, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	s, ok := v.charts[name]
	return s, ok
}

// Charts lists registered chart names.
func (v *View) Charts() []string {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]string, 0, len(v.charts))
	for name := range v.charts {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Close drops every chart. It is safe to call more than once.
func (v *View) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.closed = true
	v.charts = map[string][]compare.Series{}
}
