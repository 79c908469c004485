package access

import (
	"sort"

	"github.com/rotisserie/eris"

	"github.com/defano/chicago-oasis-data/internal/model"
)

// Identity selects how critical businesses are de-duplicated.
type Identity string

const (
	// IdentityBusiness treats each license number as one critical business.
	IdentityBusiness Identity = "business"
	// IdentityCoordinate collapses critical businesses sharing a recorded
	// latitude/longitude pair, matching the legacy report consumer.
	IdentityCoordinate Identity = "coordinate"
)

// ParseIdentity converts a configuration value into an Identity.
func ParseIdentity(s string) (Identity, error) {
	switch Identity(s) {
	case IdentityBusiness, IdentityCoordinate:
		return Identity(s), nil
	case "":
		return IdentityBusiness, nil
	default:
		return "", eris.Errorf("access: unknown critical identity %q (valid: business, coordinate)", s)
	}
}

// BusinessDirectory resolves business attributes by license number and
// category descriptions by license code.
type BusinessDirectory interface {
	Business(number string) model.Business
	Description(category string) string
}

// CriticalBusiness is a business that is the only one of its category within
// one mile of at least one census tract.
type CriticalBusiness struct {
	Business         model.Business `json:"business"`
	Category         string         `json:"category"`
	BusinessType     string         `json:"business_type"`
	Year             int            `json:"year"`
	AtRiskPopulation int            `json:"at_risk_population"`
}

type coordinate struct{ lat, lng float64 }

// ExtractCritical scans the tract records of a category and year for tracts
// served by exactly one nearby business and returns those businesses with the
// population they serve. Results are ordered by license number.
func ExtractCritical(s *Store, dir BusinessDirectory, category string, year int, identity Identity) ([]CriticalBusiness, error) {
	records, err := s.TractRecords(category, year)
	if err != nil {
		return nil, eris.Wrap(err, "access: extract critical")
	}

	businessType := dir.Description(category)

	seenBusiness := make(map[string]struct{})
	seenCoordinate := make(map[coordinate]struct{})
	var out []CriticalBusiness

	for _, rec := range records {
		if len(rec.nearby) != 1 {
			continue
		}
		number := rec.nearby[0]

		pop, err := s.ServedPopulation(category, number, year)
		if err != nil {
			return nil, eris.Wrapf(err, "access: critical business %s in tract %s", number, rec.area)
		}

		b := withDefaults(dir.Business(number), number)

		switch identity {
		case IdentityCoordinate:
			k := coordinate{b.Latitude, b.Longitude}
			if _, dup := seenCoordinate[k]; dup {
				continue
			}
			seenCoordinate[k] = struct{}{}
		default:
			if _, dup := seenBusiness[number]; dup {
				continue
			}
			seenBusiness[number] = struct{}{}
		}

		out = append(out, CriticalBusiness{
			Business:         b,
			Category:         category,
			BusinessType:     orDefault(businessType, rec.businessType),
			Year:             year,
			AtRiskPopulation: pop,
		})
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].Business.Number < out[j].Business.Number
	})
	return out, nil
}

func withDefaults(b model.Business, number string) model.Business {
	if b.Number == "" {
		b.Number = number
	}
	b.DBAName = orUndefined(b.DBAName)
	b.LegalName = orUndefined(b.LegalName)
	b.Address = orUndefined(b.Address)
	b.City = orUndefined(b.City)
	b.State = orUndefined(b.State)
	b.Zip = orUndefined(b.Zip)
	return b
}

func orUndefined(s string) string {
	return orDefault(s, model.Undefined)
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
