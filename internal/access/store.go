package access

import (
	"math"
	"sort"

	"github.com/rotisserie/eris"

	"github.com/defano/chicago-oasis-data/internal/model"
)

// Observation is one business counted against one tract (and the tract's
// neighborhood) for one year.
type Observation struct {
	TractID          string
	NeighborhoodID   string
	NeighborhoodName string
	TractPopulation  int
	Distance         float64 // miles from business to tract centroid
	Year             int
	Category         string
	License          model.LicenseRecord
}

// Stats counts what a store has absorbed.
type Stats struct {
	Observations    int `json:"observations"`
	TractDuplicates int `json:"tract_duplicates"`
	AreaDuplicates  int `json:"area_duplicates"`
}

// Store is the aggregation store: license category -> year -> tract records,
// neighborhood records and served population. Records are created on first
// observation and only grow. A Store is not safe for concurrent use.
type Store struct {
	categories map[string]*categoryData
	stats      Stats
}

type categoryData struct {
	years     map[int]*yearData
	tractSeen map[guardKey]struct{}
	areaSeen  map[guardKey]struct{}
}

type yearData struct {
	tracts map[string]*AreaRecord
	areas  map[string]*AreaRecord
	served map[string]*ServedPopulation
}

type guardKey struct {
	area     string
	business string
	year     int
}

// NewStore returns an empty aggregation store.
func NewStore() *Store {
	return &Store{categories: make(map[string]*categoryData)}
}

// Observe counts the observed business against the tract and its
// neighborhood. Each (tract, business, year) and (neighborhood, business,
// year) tuple is counted at most once; repeats are ignored. Within one mile
// the tract's population is added to the business's served population and the
// business is listed as nearby the tract; both are gated by the tract guard so
// that overlapping license terms do not double count.
func (s *Store) Observe(o Observation) error {
	if o.Distance <= 0 || math.IsNaN(o.Distance) || math.IsInf(o.Distance, 0) {
		return eris.Wrapf(ErrInvalidDistance, "tract %s, business %s: %v", o.TractID, o.License.Number, o.Distance)
	}

	business := o.License.Number
	cat := s.category(o.Category)
	yd := cat.year(o.Year)
	s.stats.Observations++

	tk := guardKey{area: o.TractID, business: business, year: o.Year}
	if _, seen := cat.tractSeen[tk]; seen {
		s.stats.TractDuplicates++
	} else {
		cat.tractSeen[tk] = struct{}{}

		rec, ok := yd.tracts[o.TractID]
		if !ok {
			rec = newAreaRecord(o.TractID, o.TractID, o.Year, o.License.Description)
			yd.tracts[o.TractID] = rec
		}
		rec.count(o.Distance)

		if o.Distance <= OneMile {
			rec.nearby = append(rec.nearby, business)

			sp, ok := yd.served[business]
			if !ok {
				sp = &ServedPopulation{business: business}
				yd.served[business] = sp
			}
			sp.add(o.TractPopulation)
		}
	}

	ak := guardKey{area: o.NeighborhoodID, business: business, year: o.Year}
	if _, seen := cat.areaSeen[ak]; seen {
		s.stats.AreaDuplicates++
	} else {
		cat.areaSeen[ak] = struct{}{}

		rec, ok := yd.areas[o.NeighborhoodID]
		if !ok {
			rec = newAreaRecord(o.NeighborhoodID, o.NeighborhoodName, o.Year, o.License.Description)
			yd.areas[o.NeighborhoodID] = rec
		}
		rec.count(o.Distance)
	}

	return nil
}

func (s *Store) category(code string) *categoryData {
	c, ok := s.categories[code]
	if !ok {
		c = &categoryData{
			years:     make(map[int]*yearData),
			tractSeen: make(map[guardKey]struct{}),
			areaSeen:  make(map[guardKey]struct{}),
		}
		s.categories[code] = c
	}
	return c
}

func (c *categoryData) year(y int) *yearData {
	yd, ok := c.years[y]
	if !ok {
		yd = &yearData{
			tracts: make(map[string]*AreaRecord),
			areas:  make(map[string]*AreaRecord),
			served: make(map[string]*ServedPopulation),
		}
		c.years[y] = yd
	}
	return yd
}

// Stats returns counters for everything observed so far.
func (s *Store) Stats() Stats { return s.stats }

// Categories returns the observed license categories in ascending order.
func (s *Store) Categories() []string {
	out := make([]string, 0, len(s.categories))
	for code := range s.categories {
		out = append(out, code)
	}
	sort.Strings(out)
	return out
}

// Years returns the observed years of a category in ascending order. An
// unobserved category has no years.
func (s *Store) Years(category string) []int {
	c, ok := s.categories[category]
	if !ok {
		return nil
	}
	out := make([]int, 0, len(c.years))
	for y := range c.years {
		out = append(out, y)
	}
	sort.Ints(out)
	return out
}

// TractRecords returns the tract records of a category and year, ordered by
// tract id.
func (s *Store) TractRecords(category string, year int) ([]*AreaRecord, error) {
	yd, err := s.lookup(category, year)
	if err != nil {
		return nil, err
	}
	return sortedRecords(yd.tracts), nil
}

// NeighborhoodRecords returns the neighborhood records of a category and
// year, ordered by neighborhood id.
func (s *Store) NeighborhoodRecords(category string, year int) ([]*AreaRecord, error) {
	yd, err := s.lookup(category, year)
	if err != nil {
		return nil, err
	}
	return sortedRecords(yd.areas), nil
}

// ServedPopulation returns the population served by a business in a year. It
// fails with ErrUnknownKey if the business was never observed within one mile
// of a tract that year.
func (s *Store) ServedPopulation(category, business string, year int) (int, error) {
	yd, err := s.lookup(category, year)
	if err != nil {
		return 0, err
	}
	sp, ok := yd.served[business]
	if !ok {
		return 0, eris.Wrapf(ErrUnknownKey, "served population: category %s, business %s, year %d", category, business, year)
	}
	return sp.Population(), nil
}

// Discard drops everything observed for a category, including its
// duplicate guards.
func (s *Store) Discard(category string) {
	delete(s.categories, category)
}

func (s *Store) lookup(category string, year int) (*yearData, error) {
	c, ok := s.categories[category]
	if !ok {
		return nil, eris.Wrapf(ErrUnknownKey, "category %s", category)
	}
	yd, ok := c.years[year]
	if !ok {
		return nil, eris.Wrapf(ErrUnknownKey, "category %s, year %d", category, year)
	}
	return yd, nil
}

func sortedRecords(m map[string]*AreaRecord) []*AreaRecord {
	out := make([]*AreaRecord, 0, len(m))
	for _, r := range m {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].area < out[j].area })
	return out
}
