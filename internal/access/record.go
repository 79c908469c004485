// Package access aggregates business-license observations into per-area
// accessibility statistics and detects critical businesses.
package access

import "strings"

// Mile bands used by the distance-weighting rule.
const (
	OneMile   = 1.0
	TwoMile   = 2.0
	ThreeMile = 3.0
)

// AreaRecord holds the accessibility statistics of one area (a census tract or
// a neighborhood) for one year and business category. Records are only
// mutated by Store.Observe.
type AreaRecord struct {
	area         string
	label        string
	year         int
	businessType string

	oneMile   int
	twoMile   int
	threeMile int
	access1   float64
	access2   float64

	nearby []string
}

func newAreaRecord(area, label string, year int, businessType string) *AreaRecord {
	if label == "" {
		label = area
	}
	return &AreaRecord{area: area, label: label, year: year, businessType: businessType}
}

// count applies the distance-weighting rule. Bands are not exclusive: a
// business at half a mile counts toward all three.
func (r *AreaRecord) count(distance float64) {
	r.access2 += 1 / (distance * distance)
	r.access1 += 1 / distance
	if distance <= OneMile {
		r.oneMile++
	}
	if distance <= TwoMile {
		r.twoMile++
	}
	if distance <= ThreeMile {
		r.threeMile++
	}
}

// Area returns the aggregation key (raw tract id or neighborhood id).
func (r *AreaRecord) Area() string { return r.area }

// Label returns the display name of the area. For neighborhoods this is the
// community area name; for tracts it equals Area.
func (r *AreaRecord) Label() string { return r.label }

// TractLabel returns the tract-10 rendering of the area id.
func (r *AreaRecord) TractLabel() string { return TractLabel(r.area) }

func (r *AreaRecord) Year() int            { return r.year }
func (r *AreaRecord) BusinessType() string { return r.businessType }
func (r *AreaRecord) OneMile() int         { return r.oneMile }
func (r *AreaRecord) TwoMile() int         { return r.twoMile }
func (r *AreaRecord) ThreeMile() int       { return r.threeMile }
func (r *AreaRecord) Access1() float64     { return r.access1 }
func (r *AreaRecord) Access2() float64     { return r.access2 }

// NearbyBusinesses returns the business identities counted within one mile,
// in observation order.
func (r *AreaRecord) NearbyBusinesses() []string {
	out := make([]string, len(r.nearby))
	copy(out, r.nearby)
	return out
}

// ServedPopulation is the population living in tracts whose centroid lies
// within one mile of a business.
type ServedPopulation struct {
	business   string
	population int
}

func (p *ServedPopulation) add(population int) { p.population += population }

func (p *ServedPopulation) Business() string { return p.business }
func (p *ServedPopulation) Population() int  { return p.population }

// TractLabel renders a census tract id in "tract-10" notation: "061000"
// becomes "0610" and "061037" becomes "0610.37". Ids of four characters or
// fewer are returned unchanged.
func TractLabel(tract string) string {
	switch {
	case len(tract) > 4 && strings.HasSuffix(tract, "00"):
		return tract[:len(tract)-2]
	case len(tract) > 4:
		return tract[:4] + "." + tract[len(tract)-2:]
	default:
		return tract
	}
}
