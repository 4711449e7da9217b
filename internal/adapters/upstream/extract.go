package upstream

import (
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/okian/trainhist/internal/domain/scout"
	"github.com/okian/trainhist/internal/domain/season"
	"github.com/okian/trainhist/internal/domain/skill"
	"github.com/okian/trainhist/internal/domain/transfer"
)

// Entity ages outside this range are not ages.
const (
	MinAge = 15
	MaxAge = 45
)

// ScoutPage holds the three tiers of a scout report.
type ScoutPage struct {
	Speed scout.Fragment `json:"speed" yaml:"speed"`
	High  scout.Fragment `json:"high" yaml:"high"`
	Low   scout.Fragment `json:"low" yaml:"low"`
}

// Report resolves the page into a scout report.
func (p ScoutPage) Report() scout.Report { return scout.Build(p.Speed, p.High, p.Low) }

// Profile is what the entity page says about the entity itself.
type Profile struct {
	Name string
	// Age is 0 when no age could be found.
	Age    int
	Skills skill.Vector
	// HasSkills is set only when all skill rows were present.
	HasSkills bool
}

// ExtractScout reads a scout report page. A page without a report yields
// empty fragments and no error.
func ExtractScout(r io.Reader) (ScoutPage, error) {
	doc, err := parse(r)
	if err != nil {
		return ScoutPage{}, fmt.Errorf("%w: %w", ErrParse, err)
	}
	var page ScoutPage
	paper := find(doc, classed(0, "paper-content"))
	if paper == nil {
		return page, nil
	}
	dl := find(paper, tag(atom.Dl))
	if dl == nil {
		return page, nil
	}
	page.High = fragment(ddWithIcon(dl, "fa-line-chart"))
	page.Low = fragment(ddWithIcon(dl, "fa-exclamation-triangle"))
	page.Speed = scout.Fragment{Stars: tierStars(ddWithIcon(dl, "fa-heartbeat"))}
	return page, nil
}

func ddWithIcon(dl *html.Node, icon string) *html.Node {
	for _, i := range findAll(dl, classed(atom.I, icon)) {
		if dd := closest(i, tag(atom.Dd)); dd != nil {
			return dd
		}
	}
	return nil
}

func litStars(n *html.Node) int {
	return countStars(n, false)
}

// tierStars counts the lit stars of a tier, leaving out the per-skill stars
// inside its list items.
func tierStars(n *html.Node) int {
	return countStars(n, true)
}

func countStars(n *html.Node, skipItems bool) int {
	if n == nil {
		return 0
	}
	count := 0
	for _, i := range findAll(n, classed(atom.I, "fa-star", "lit")) {
		if closest(i, classed(0, "stars")) == nil {
			continue
		}
		if skipItems && closest(i, tag(atom.Li)) != nil {
			continue
		}
		count++
	}
	return count
}

func fragment(dd *html.Node) scout.Fragment {
	if dd == nil {
		return scout.Fragment{}
	}
	f := scout.Fragment{Stars: tierStars(dd)}
	items := findAll(dd, func(n *html.Node) bool {
		return isElement(n) && n.DataAtom == atom.Li && closest(n, tag(atom.Ul)) != nil
	})
	for idx, li := range items {
		span := blurredName(li)
		if span == nil {
			continue
		}
		f.Skills = append(f.Skills, text(span))
		if litStars(li) > 0 {
			f.Starred = append(f.Starred, idx)
		}
	}
	return f
}

// blurredName finds the span that is the last child inside a .blurred block.
func blurredName(li *html.Node) *html.Node {
	blurred := find(li, classed(0, "blurred"))
	if blurred == nil {
		return nil
	}
	for _, s := range findAll(blurred, tag(atom.Span)) {
		if lastElement(s) {
			return s
		}
	}
	return nil
}

func lastElement(n *html.Node) bool {
	for s := n.NextSibling; s != nil; s = s.NextSibling {
		if isElement(s) {
			return false
		}
	}
	return true
}

// ExtractTransfers reads the transfer history table of an entity page. A
// page without the table yields no rows.
func ExtractTransfers(r io.Reader) ([]transfer.Row, error) {
	doc, err := parse(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}
	var table *html.Node
	for _, t := range findAll(doc, classed(atom.Table, "hitlist")) {
		if !hasClass(t, "hitlist-compact-list-included") && attr(t, "id") != "suspensionsList" {
			table = t
			break
		}
	}
	if table == nil {
		return nil, nil
	}
	var rows []transfer.Row
	for _, tr := range findAll(table, tag(atom.Tr)) {
		if closest(tr, tag(atom.Tbody)) == nil {
			continue
		}
		cells := children(tr, tag(atom.Td))
		if len(cells) < 5 {
			continue
		}
		rows = append(rows, transfer.Row{
			Date:  text(cells[0]),
			From:  teamName(cells[1]),
			To:    teamName(cells[3]),
			Price: priceText(cells[4]),
		})
	}
	return rows, nil
}

func teamName(cell *html.Node) string {
	link := find(cell, func(n *html.Node) bool {
		return isElement(n) && n.DataAtom == atom.A && strings.Contains(attr(n, "href"), "tid=")
	})
	if link != nil {
		return text(link)
	}
	return text(cell)
}

func priceText(cell *html.Node) string {
	div := find(cell, func(n *html.Node) bool {
		return isElement(n) && n.DataAtom == atom.Div && hasAttr(n, "title")
	})
	if div != nil && attr(div, "title") != "" {
		return attr(div, "title")
	}
	return text(cell)
}

var (
	ageOnly  = regexp.MustCompile(`^(\d{1,2})$`)
	ageAny   = regexp.MustCompile(`\b(\d{1,2})\b`)
	skillNum = regexp.MustCompile(`\d+`)
)

// ExtractProfile reads name, age and the skill table of an entity page.
func ExtractProfile(r io.Reader) (Profile, error) {
	doc, err := parse(r)
	if err != nil {
		return Profile{}, fmt.Errorf("%w: %w", ErrParse, err)
	}
	root := find(doc, classed(0, "playerContainer"))
	if root == nil {
		root = doc
	}
	p := Profile{Name: text(find(doc, classed(0, "player_name")))}
	p.Age = parseAge(root)
	p.Skills, p.HasSkills = parseSkills(root)
	return p, nil
}

func parseAge(root *html.Node) int {
	for _, s := range findAll(root, tag(atom.Strong)) {
		if m := ageOnly.FindStringSubmatch(text(s)); m != nil {
			if age, _ := strconv.Atoi(m[1]); age >= MinAge && age <= MaxAge {
				return age
			}
		}
	}
	for _, m := range ageAny.FindAllStringSubmatch(text(root), -1) {
		if age, _ := strconv.Atoi(m[1]); age >= MinAge && age <= MaxAge {
			return age
		}
	}
	return 0
}

func parseSkills(root *html.Node) (skill.Vector, bool) {
	var v skill.Vector
	table := find(root, classed(atom.Table, "player_skills"))
	if table == nil {
		return v, false
	}
	i := 0
	for _, tr := range findAll(table, tag(atom.Tr)) {
		cell := find(tr, classed(atom.Td, "skillval"))
		if cell == nil {
			continue
		}
		span := find(cell, tag(atom.Span))
		if span == nil {
			continue
		}
		if i == skill.Count {
			break
		}
		n, _ := strconv.Atoi(skillNum.FindString(text(span)))
		v[i] = n
		i++
	}
	return v.Bounded(), i == skill.Count
}

// ExtractAnchor reads the season anchor from the page header.
func ExtractAnchor(r io.Reader, loc *time.Location) (season.Anchor, error) {
	doc, err := parse(r)
	if err != nil {
		return season.Anchor{}, fmt.Errorf("%w: %w", ErrParse, err)
	}
	wrapper := find(doc, withID("header-stats-wrapper"))
	if wrapper == nil {
		return season.Anchor{}, fmt.Errorf("%w: header not found", season.ErrAnchorUnavailable)
	}
	var dateNode, seasonNode *html.Node
	for _, h := range findAll(wrapper, classed(atom.H5, "flex-grow-1", "textCenter")) {
		switch {
		case hasClass(h, "linked") && seasonNode == nil:
			seasonNode = h
		case !hasClass(h, "linked") && dateNode == nil:
			dateNode = h
		}
	}
	if dateNode == nil || seasonNode == nil {
		return season.Anchor{}, fmt.Errorf("%w: header incomplete", season.ErrAnchorUnavailable)
	}
	return season.ParseAnchor(text(dateNode), text(seasonNode), loc)
}
