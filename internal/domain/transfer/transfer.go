// Package transfer turns free-text transfer rows into season-grouped records.
package transfer

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/okian/trainhist/internal/domain/currency"
	"github.com/okian/trainhist/internal/domain/model"
)

// YouthAcademy is the counterparty shown when a transfer has no origin.
const YouthAcademy = "Youth Academy"

// Row is one transfer as read from the host page.
type Row struct {
	Date  string `json:"date" yaml:"date"`
	From  string `json:"from" yaml:"from"`
	To    string `json:"to" yaml:"to"`
	Price string `json:"price" yaml:"price"`
}

// Seasoner maps a date to its season.
type Seasoner interface {
	Of(t time.Time) int
}

var rowDate = regexp.MustCompile(`(\d{2})-(\d{2})-(\d{4})|(\d{4})-(\d{2})-(\d{2})`)

// ParseDate accepts DD-MM-YYYY or YYYY-MM-DD. A leading four-digit group is
// read as the year; otherwise the day comes first.
func ParseDate(text string, loc *time.Location) (time.Time, bool) {
	if loc == nil {
		loc = time.UTC
	}
	m := rowDate.FindStringSubmatch(text)
	if m == nil {
		return time.Time{}, false
	}
	var d, mo, y string
	if m[1] != "" {
		d, mo, y = m[1], m[2], m[3]
	} else {
		y, mo, d = m[4], m[5], m[6]
	}
	day, _ := strconv.Atoi(d)
	month, _ := strconv.Atoi(mo)
	year, _ := strconv.Atoi(y)
	if month < 1 || month > 12 || day < 1 {
		return time.Time{}, false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, loc)
	if t.Day() != day {
		return time.Time{}, false
	}
	return t, true
}

// Parsed is the outcome of Build.
type Parsed struct {
	BySeason map[int][]model.TransferRecord
	// Skipped counts rows dropped for an unreadable date.
	Skipped int
	// BadPrices counts rows whose price text could not be parsed. The row is
	// kept with a zero price.
	BadPrices int
}

// Build parses rows, tags each with its season and sorts every season by date.
func Build(rows []Row, clock Seasoner, loc *time.Location) Parsed {
	p := Parsed{BySeason: make(map[int][]model.TransferRecord)}
	for _, r := range rows {
		at, ok := ParseDate(r.Date, loc)
		if !ok {
			p.Skipped++
			continue
		}
		from := strings.TrimSpace(r.From)
		if from == "" || from == "-" {
			from = YouthAcademy
		}
		raw := strings.TrimSpace(r.Price)
		if currency.IsNotApplicable(raw) {
			raw = currency.NotApplicable
		}
		price, ok := currency.ParsePrice(raw)
		if !ok && raw != currency.NotApplicable {
			p.BadPrices++
		}
		s := clock.Of(at)
		p.BySeason[s] = append(p.BySeason[s], model.TransferRecord{
			Date:     at,
			Season:   s,
			From:     from,
			To:       strings.TrimSpace(r.To),
			Price:    price,
			RawPrice: raw,
		})
	}
	for _, list := range p.BySeason {
		sort.SliceStable(list, func(i, j int) bool { return list[i].Date.Before(list[j].Date) })
	}
	return p
}

// Seasons lists the seasons with transfers, ascending.
func (p Parsed) Seasons() []int {
	out := make([]int, 0, len(p.BySeason))
	for s := range p.BySeason {
		out = append(out, s)
	}
	sort.Ints(out)
	return out
}

// All lists every record in season then date order.
func (p Parsed) All() []model.TransferRecord {
	var out []model.TransferRecord
	for _, s := range p.Seasons() {
		out = append(out, p.BySeason[s]...)
	}
	return out
}
