package report

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/defano/chicago-oasis-data/internal/access"
)

// CensusRecord is one entry of census/<key>-<year>.json.
type CensusRecord struct {
	BusinessType string  `json:"BUSINESS_TYPE"`
	Tract        string  `json:"TRACT"`
	Year         int     `json:"YEAR"`
	OneMile      int     `json:"ONE_MILE"`
	TwoMile      int     `json:"TWO_MILE"`
	ThreeMile    int     `json:"THREE_MILE"`
	Access1      float64 `json:"ACCESS1"`
	Access2      float64 `json:"ACCESS2"`
}

// CommunityRecord is one entry of community/<key>-<year>.json.
type CommunityRecord struct {
	BusinessType  string  `json:"BUSINESS_TYPE"`
	CommunityArea string  `json:"COMMUNITY_AREA"`
	Year          int     `json:"YEAR"`
	Access1       float64 `json:"ACCESS1"`
	Access2       float64 `json:"ACCESS2"`
}

// CriticalRecord is one entry of critical/critical-<key>-<year>.json. The
// LATTITUDE spelling is what existing consumers read.
type CriticalRecord struct {
	State        string  `json:"STATE"`
	Zip          Zip     `json:"ZIP"`
	Latitude     float64 `json:"LATTITUDE"`
	Longitude    float64 `json:"LONGITUDE"`
	Address      string  `json:"ADDRESS"`
	Year         int     `json:"YEAR"`
	DBAName      string  `json:"DOING_BUSINESS_AS_NAME"`
	PopAtRisk    int     `json:"POP_AT_RISK"`
	BusinessType string  `json:"BUSINESS_TYPE"`
	LegalName    string  `json:"LEGAL_NAME"`
}

// Zip encodes as a JSON number when it is a plain integer and as a string
// otherwise (ZIP+4 codes, leading zeros, "UNDEFINED").
type Zip string

func (z Zip) MarshalJSON() ([]byte, error) {
	s := strings.TrimSpace(string(z))
	if n, err := strconv.Atoi(s); err == nil && n >= 0 && strconv.Itoa(n) == s {
		return []byte(s), nil
	}
	return json.Marshal(string(z))
}

func (z *Zip) UnmarshalJSON(b []byte) error {
	var n json.Number
	if err := json.Unmarshal(b, &n); err == nil {
		*z = Zip(n.String())
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	*z = Zip(s)
	return nil
}

// CensusRecords converts tract records for output.
func CensusRecords(recs []*access.AreaRecord) []CensusRecord {
	out := make([]CensusRecord, 0, len(recs))
	for _, r := range recs {
		out = append(out, CensusRecord{
			BusinessType: r.BusinessType(),
			Tract:        r.TractLabel(),
			Year:         r.Year(),
			OneMile:      r.OneMile(),
			TwoMile:      r.TwoMile(),
			ThreeMile:    r.ThreeMile(),
			Access1:      r.Access1(),
			Access2:      r.Access2(),
		})
	}
	return out
}

// CommunityRecords converts neighborhood records for output. The community
// area is reported by name.
func CommunityRecords(recs []*access.AreaRecord) []CommunityRecord {
	out := make([]CommunityRecord, 0, len(recs))
	for _, r := range recs {
		out = append(out, CommunityRecord{
			BusinessType:  r.BusinessType(),
			CommunityArea: r.Label(),
			Year:          r.Year(),
			Access1:       r.Access1(),
			Access2:       r.Access2(),
		})
	}
	return out
}

// CriticalRecords converts critical businesses for output.
func CriticalRecords(cbs []access.CriticalBusiness) []CriticalRecord {
	out := make([]CriticalRecord, 0, len(cbs))
	for _, c := range cbs {
		out = append(out, CriticalRecord{
			State:        c.Business.State,
			Zip:          Zip(c.Business.Zip),
			Latitude:     c.Business.Latitude,
			Longitude:    c.Business.Longitude,
			Address:      c.Business.Address,
			Year:         c.Year,
			DBAName:      c.Business.DBAName,
			PopAtRisk:    c.AtRiskPopulation,
			BusinessType: c.BusinessType,
			LegalName:    c.Business.LegalName,
		})
	}
	return out
}
