// Package refdata holds the immutable reference tables a run reads from:
// licenses grouped by category, census tracts, community areas, the
// tract-to-area map and socioeconomic indicators.
package refdata

import (
	"slices"
	"strconv"
	"strings"

	"github.com/twpayne/go-geom"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/defano/chicago-oasis-data/internal/gis"
	"github.com/defano/chicago-oasis-data/internal/model"
)

// TractMapping assigns a census tract to a community area.
type TractMapping struct {
	NeighborhoodID string
	TractID        string
}

// Tables is the raw input to a Provider.
type Tables struct {
	Licenses      []model.LicenseRecord
	Tracts        []model.Tract
	Neighborhoods []model.Neighborhood
	TractMap      []TractMapping
	Socioeconomic []model.Socioeconomic
}

type yearRange struct{ start, end int }

// Provider answers reference lookups. It is built once and never mutated, so
// it is safe for concurrent reads.
type Provider struct {
	categories   []string
	licenses     map[string][]model.LicenseRecord
	descriptions map[string]string
	dateRanges   map[string]yearRange

	neighborhoodIDs   []string
	neighborhoodNames map[string]string
	tractsByArea      map[string][]string

	tracts     map[string]model.Tract
	businesses map[string]model.Business

	socioeconomic []model.Socioeconomic
}

// New indexes the given tables.
func New(t Tables) *Provider {
	p := &Provider{
		licenses:          make(map[string][]model.LicenseRecord),
		descriptions:      make(map[string]string),
		dateRanges:        make(map[string]yearRange),
		neighborhoodNames: make(map[string]string),
		tractsByArea:      make(map[string][]string),
		tracts:            make(map[string]model.Tract, len(t.Tracts)),
		businesses:        make(map[string]model.Business),
		socioeconomic:     t.Socioeconomic,
	}

	for _, rec := range t.Licenses {
		p.indexLicense(rec)
	}
	for code := range p.licenses {
		p.categories = append(p.categories, code)
	}
	sortCodes(p.categories)

	upper := cases.Upper(language.Und)
	for _, n := range t.Neighborhoods {
		if _, dup := p.neighborhoodNames[n.ID]; dup {
			continue
		}
		p.neighborhoodNames[n.ID] = upper.String(n.Name)
		p.neighborhoodIDs = append(p.neighborhoodIDs, n.ID)
	}
	sortCodes(p.neighborhoodIDs)

	for _, m := range t.TractMap {
		p.tractsByArea[m.NeighborhoodID] = append(p.tractsByArea[m.NeighborhoodID], m.TractID)
	}

	for _, tr := range t.Tracts {
		if _, dup := p.tracts[tr.ID]; !dup {
			p.tracts[tr.ID] = tr
		}
	}

	return p
}

func (p *Provider) indexLicense(rec model.LicenseRecord) {
	if rec.Code == "" {
		return
	}
	p.licenses[rec.Code] = append(p.licenses[rec.Code], rec)

	if rec.Description != "" {
		p.descriptions[rec.Code] = rec.Description
	}

	if start, end, err := rec.ActiveYears(); err == nil {
		r, ok := p.dateRanges[rec.Code]
		if !ok {
			r = yearRange{start: start, end: end}
		}
		r.start = min(r.start, start)
		r.end = max(r.end, end)
		p.dateRanges[rec.Code] = r
	}

	b, ok := p.businesses[rec.Number]
	if !ok {
		b.Number = rec.Number
	}
	b.DBAName = firstNonEmpty(b.DBAName, rec.DBAName)
	b.LegalName = firstNonEmpty(b.LegalName, rec.LegalName)
	b.Address = firstNonEmpty(b.Address, rec.Address)
	b.City = firstNonEmpty(b.City, rec.City)
	b.State = firstNonEmpty(b.State, rec.State)
	b.Zip = firstNonEmpty(b.Zip, rec.Zip)
	if b.Latitude == 0 && b.Longitude == 0 && rec.HasLocation() {
		b.Latitude, b.Longitude = rec.Latitude, rec.Longitude
	}
	p.businesses[rec.Number] = b
}

func firstNonEmpty(current, candidate string) string {
	if current != "" {
		return current
	}
	return candidate
}

// CompareCodes orders numeric codes numerically and everything else
// lexically after them. It returns -1, 0 or +1.
func CompareCodes(x, y string) int {
	a, aErr := strconv.Atoi(x)
	b, bErr := strconv.Atoi(y)
	switch {
	case aErr == nil && bErr == nil && a != b:
		if a < b {
			return -1
		}
		return 1
	case aErr == nil && bErr != nil:
		return -1
	case aErr != nil && bErr == nil:
		return 1
	default:
		return strings.Compare(x, y)
	}
}

func sortCodes(codes []string) {
	slices.SortStableFunc(codes, CompareCodes)
}

// Categories returns every license code with at least one record, in
// numeric order.
func (p *Provider) Categories() []string {
	return append([]string(nil), p.categories...)
}

// Licenses returns the records of a category in file order.
func (p *Provider) Licenses(category string) []model.LicenseRecord {
	return append([]model.LicenseRecord(nil), p.licenses[category]...)
}

// Description returns the category's license description (the last non-empty
// value seen).
func (p *Provider) Description(category string) string {
	return p.descriptions[category]
}

// DateRange returns the earliest term start year and latest term end year of
// the category's records with valid dates.
func (p *Provider) DateRange(category string) (int, int, bool) {
	r, ok := p.dateRanges[category]
	return r.start, r.end, ok
}

// NeighborhoodIDs returns the community area numbers in numeric order.
func (p *Provider) NeighborhoodIDs() []string {
	return append([]string(nil), p.neighborhoodIDs...)
}

// NeighborhoodName returns the upper-cased community area name, or "" when
// the id is unknown.
func (p *Provider) NeighborhoodName(id string) string {
	return p.neighborhoodNames[id]
}

// TractsInNeighborhood returns the tract ids mapped to a community area.
func (p *Provider) TractsInNeighborhood(id string) []string {
	return append([]string(nil), p.tractsByArea[id]...)
}

// TractCentroid returns the tract's internal point. It reports false when the
// tract is unknown or its coordinates are missing.
func (p *Provider) TractCentroid(tract string) (*geom.Point, bool) {
	t, ok := p.tracts[tract]
	if !ok || t.Latitude == 0 || t.Longitude == 0 {
		return nil, false
	}
	return gis.NewPoint(t.Latitude, t.Longitude), true
}

// TractPopulation returns the tract's population when known.
func (p *Provider) TractPopulation(tract string) (int, bool) {
	t, ok := p.tracts[tract]
	if !ok || t.Population == nil {
		return 0, false
	}
	return *t.Population, true
}

// Business returns the attributes of a business, each taken from the first
// record that supplied it. Missing text attributes are model.Undefined and a
// missing location is (0, 0).
func (p *Provider) Business(number string) model.Business {
	b, ok := p.businesses[number]
	if !ok {
		return model.UndefinedBusiness(number)
	}
	u := model.UndefinedBusiness(number)
	b.DBAName = firstNonEmpty(b.DBAName, u.DBAName)
	b.LegalName = firstNonEmpty(b.LegalName, u.LegalName)
	b.Address = firstNonEmpty(b.Address, u.Address)
	b.City = firstNonEmpty(b.City, u.City)
	b.State = firstNonEmpty(b.State, u.State)
	b.Zip = firstNonEmpty(b.Zip, u.Zip)
	return b
}

// Socioeconomic returns the indicator rows in file order.
func (p *Provider) Socioeconomic() []model.Socioeconomic {
	return p.socioeconomic
}

// Summary counts the indexed tables.
type Summary struct {
	Categories    int
	Licenses      int
	Businesses    int
	Tracts        int
	Neighborhoods int
}

// Summary returns table sizes for logging.
func (p *Provider) Summary() Summary {
	n := 0
	for _, recs := range p.licenses {
		n += len(recs)
	}
	return Summary{
		Categories:    len(p.categories),
		Licenses:      n,
		Businesses:    len(p.businesses),
		Tracts:        len(p.tracts),
		Neighborhoods: len(p.neighborhoodIDs),
	}
}
