// Package compare aligns several entities' histories on a shared age axis.
package compare

import (
	"fmt"
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/okian/trainhist/internal/domain/history"
	"github.com/okian/trainhist/internal/domain/model"
	"github.com/okian/trainhist/internal/domain/season"
)

// Placeholder is the cell text for an age with no gains.
const Placeholder = "-"

// Entity is the per-entity input to alignment.
type Entity struct {
	ID            string
	Name          string
	SpeedTier     int
	CurrentAge    int
	CurrentSeason int
	GainsBySeason map[int]int
	ChipsBySeason map[int][]string
}

// FromAggregate builds an Entity from an aggregated history.
func FromAggregate(id, name string, speedTier, currentAge, currentSeason int, agg *history.Aggregate) Entity {
	e := Entity{
		ID:            id,
		Name:          name,
		SpeedTier:     speedTier,
		CurrentAge:    currentAge,
		CurrentSeason: currentSeason,
		GainsBySeason: make(map[int]int),
		ChipsBySeason: make(map[int][]string),
	}
	if agg == nil {
		return e
	}
	for s, gains := range agg.BySeason {
		e.GainsBySeason[s] = len(gains)
	}
	for s, chips := range agg.ChipsBySeason {
		for _, c := range chips {
			e.ChipsBySeason[s] = append(e.ChipsBySeason[s], c.Name)
		}
	}
	return e
}

// Record maps e onto relative ages. Seasons whose computed age is not
// positive are dropped. An unknown current age is an error.
func Record(e Entity) (model.ComparisonRecord, error) {
	if e.CurrentAge <= 0 {
		return model.ComparisonRecord{}, fmt.Errorf("%w: entity %s", ErrAgeUnknown, e.ID)
	}
	rec := model.ComparisonRecord{
		EntityID:   e.ID,
		Name:       e.Name,
		SpeedTier:  e.SpeedTier,
		GainsByAge: make(map[int]model.AgeCell),
	}
	for s, n := range e.GainsBySeason {
		age, ok := season.HistoricalAge(e.CurrentAge, e.CurrentSeason, s)
		if !ok || age <= 0 || n <= 0 {
			continue
		}
		cell := rec.GainsByAge[age]
		cell.Gains += n
		rec.GainsByAge[age] = cell
		rec.TotalGains += n
	}
	for s, chips := range e.ChipsBySeason {
		age, ok := season.HistoricalAge(e.CurrentAge, e.CurrentSeason, s)
		if !ok || age <= 0 || len(chips) == 0 {
			continue
		}
		cell := rec.GainsByAge[age]
		cell.Chips = append(cell.Chips, chips...)
		rec.GainsByAge[age] = cell
	}
	return rec, nil
}

// Failure reports an entity excluded from the table.
type Failure struct {
	EntityID string `json:"entity_id"`
	Reason   string `json:"reason"`
}

// Table is the aligned comparison.
type Table struct {
	// Ages is the sorted union of ages present across all entities.
	Ages []int `json:"ages"`
	// Entities are ordered by speed tier, highest first, stable on input order.
	Entities []model.ComparisonRecord `json:"entities"`
	Failures []Failure                `json:"failures,omitempty"`
	// NoData is set when no entity succeeded.
	NoData bool `json:"no_data"`
}

// Align builds the table from successful records and failures.
func Align(records []model.ComparisonRecord, failures []Failure) Table {
	t := Table{Failures: failures}
	if len(records) == 0 {
		t.NoData = true
		return t
	}
	t.Entities = slices.Clone(records)
	sort.SliceStable(t.Entities, func(i, j int) bool {
		return t.Entities[i].SpeedTier > t.Entities[j].SpeedTier
	})
	seen := make(map[int]struct{})
	for _, r := range t.Entities {
		for age := range r.GainsByAge {
			if _, ok := seen[age]; !ok {
				seen[age] = struct{}{}
				t.Ages = append(t.Ages, age)
			}
		}
	}
	sort.Ints(t.Ages)
	return t
}

// Cell returns entity i's cell at age. Missing ages yield the zero cell.
func (t Table) Cell(i, age int) model.AgeCell {
	if i < 0 || i >= len(t.Entities) {
		return model.AgeCell{}
	}
	return t.Entities[i].GainsByAge[age]
}

// CellText renders a cell's gain count, or Placeholder when there are none.
func CellText(c model.AgeCell) string {
	if c.Gains == 0 {
		return Placeholder
	}
	return strconv.Itoa(c.Gains)
}

// Row is one age line of the rendered table.
type Row struct {
	Age   int        `json:"age"`
	Cells []string   `json:"cells"`
	Chips [][]string `json:"chips"`
}

// Rows renders the table age by age, one cell per entity in table order.
func (t Table) Rows() []Row {
	rows := make([]Row, 0, len(t.Ages))
	for _, age := range t.Ages {
		row := Row{Age: age, Cells: make([]string, len(t.Entities)), Chips: make([][]string, len(t.Entities))}
		for i := range t.Entities {
			c := t.Cell(i, age)
			row.Cells[i] = CellText(c)
			row.Chips[i] = c.Chips
		}
		rows = append(rows, row)
	}
	return rows
}

// Series is one entity's chart line over the table's age axis.
type Series struct {
	EntityID string `json:"entity_id"`
	Name     string `json:"name"`
	Points   []int  `json:"points"`
}

// Series returns one line per entity, plain or running total.
func (t Table) Series(cumulative bool) []Series {
	out := make([]Series, 0, len(t.Entities))
	for i, r := range t.Entities {
		s := Series{EntityID: r.EntityID, Name: r.Name, Points: make([]int, len(t.Ages))}
		sum := 0
		for j, age := range t.Ages {
			n := t.Cell(i, age).Gains
			if cumulative {
				sum += n
				n = sum
			}
			s.Points[j] = n
		}
		out = append(out, s)
	}
	return out
}

// NormalizeIDs splits a comma or whitespace separated id list, removes
// duplicates while keeping first-seen order, and rejects non-numeric ids.
// limit <= 0 disables the size cap.
func NormalizeIDs(raw string, limit int) ([]string, error) {
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n' || r == ';'
	})
	var ids []string
	for _, f := range fields {
		if !digits(f) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidID, f)
		}
		if !slices.Contains(ids, f) {
			ids = append(ids, f)
		}
	}
	if len(ids) == 0 {
		return nil, ErrNoEntities
	}
	if limit > 0 && len(ids) > limit {
		return nil, fmt.Errorf("%w: %d ids, limit %d", ErrTooManyEntities, len(ids), limit)
	}
	return ids, nil
}

func digits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
