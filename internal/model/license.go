package model

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

// LicenseDateLayout is the term date format used by the city's license export.
const LicenseDateLayout = "01/02/2006"

// Undefined is the placeholder emitted for business attributes that never
// appeared on any license record.
const Undefined = "UNDEFINED"

// LicenseRecord is one row of a business license filing. A single business
// (license number) may have several records with overlapping or sequential terms.
type LicenseRecord struct {
	Code             string  `json:"license_code"`
	Number           string  `json:"license_number"`
	Description      string  `json:"license_description"`
	BusinessActivity string  `json:"business_activity,omitempty"`
	TermStart        string  `json:"term_start"`
	TermEnd          string  `json:"term_end"`
	Latitude         float64 `json:"latitude"`
	Longitude        float64 `json:"longitude"`
	DBAName          string  `json:"doing_business_as_name,omitempty"`
	LegalName        string  `json:"legal_name,omitempty"`
	Address          string  `json:"address,omitempty"`
	City             string  `json:"city,omitempty"`
	State            string  `json:"state,omitempty"`
	Zip              string  `json:"zip,omitempty"`
}

// HasLocation reports whether the record carries a usable coordinate pair.
// Zero is treated as missing.
func (r LicenseRecord) HasLocation() bool {
	return r.Latitude != 0 && r.Longitude != 0
}

// ActiveYears returns the inclusive calendar year range of the license term.
func (r LicenseRecord) ActiveYears() (int, int, error) {
	start, err := parseTermDate(r.TermStart)
	if err != nil {
		return 0, 0, eris.Wrapf(err, "license %s: term start", r.Number)
	}
	end, err := parseTermDate(r.TermEnd)
	if err != nil {
		return 0, 0, eris.Wrapf(err, "license %s: term end", r.Number)
	}
	return start.Year(), end.Year(), nil
}

func parseTermDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, eris.New("missing date")
	}
	t, err := time.Parse(LicenseDateLayout, s)
	if err != nil {
		return time.Time{}, eris.Wrapf(err, "parse date %q", s)
	}
	return t, nil
}

// Business holds the identity and address attributes of a licensed business,
// collected from the first record that supplied each value.
type Business struct {
	Number    string  `json:"license_number"`
	DBAName   string  `json:"doing_business_as_name"`
	LegalName string  `json:"legal_name"`
	Address   string  `json:"address"`
	City      string  `json:"city"`
	State     string  `json:"state"`
	Zip       string  `json:"zip"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// UndefinedBusiness returns a Business with every attribute defaulted.
func UndefinedBusiness(number string) Business {
	return Business{
		Number:    number,
		DBAName:   Undefined,
		LegalName: Undefined,
		Address:   Undefined,
		City:      Undefined,
		State:     Undefined,
		Zip:       Undefined,
	}
}
