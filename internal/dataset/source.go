// Package dataset describes the tabular inputs of a run and keeps a local
// cache of them.
package dataset

import (
	"github.com/defano/chicago-oasis-data/internal/config"
)

// Business license columns.
const (
	ColTermStart        = "LICENSE TERM START DATE"
	ColTermEnd          = "LICENSE TERM EXPIRATION DATE"
	ColLicenseCode      = "LICENSE CODE"
	ColDescription      = "LICENSE DESCRIPTION"
	ColBusinessActivity = "BUSINESS ACTIVITY"
	ColLatitude         = "LATITUDE"
	ColLongitude        = "LONGITUDE"
	ColLicenseNumber    = "LICENSE NUMBER"
	ColDBAName          = "DOING BUSINESS AS NAME"
	ColLegalName        = "LEGAL NAME"
	ColCity             = "CITY"
	ColZip              = "ZIP CODE"
	ColState            = "STATE"
	ColAddress          = "ADDRESS"
)

// Census gazetteer columns.
const (
	ColGEOID      = "GEOID"
	ColTractLat   = "INTPTLAT"
	ColTractLng   = "INTPTLONG"
	ColPopulation = "POP10"
)

// Community area columns.
const (
	ColAreaNumber = "AREA_NUMBE"
	ColAreaName   = "COMMUNITY"
)

// Tract to community area map columns.
const (
	ColMapArea  = "CHGOCA"
	ColMapTract = "TRACT"
)

// Socioeconomic indicator columns. Header names are whitespace-trimmed on
// read, so the upstream trailing space on PER CAPITA INCOME is dropped.
const (
	ColHousingCrowded  = "PERCENT OF HOUSING CROWDED"
	ColBelowPoverty    = "PERCENT HOUSEHOLDS BELOW POVERTY"
	ColUnemployed      = "PERCENT AGED 16+ UNEMPLOYED"
	ColWithoutDiploma  = "PERCENT AGED 25+ WITHOUT HIGH SCHOOL DIPLOMA"
	ColUnder18Over64   = "PERCENT AGED UNDER 18 OR OVER 64"
	ColPerCapitaIncome = "PER CAPITA INCOME"
	ColHardshipIndex   = "HARDSHIP INDEX"
	ColCommunityName   = "COMMUNITY AREA NAME"
)

// Source describes one tabular input.
type Source struct {
	Name       string
	URL        string // empty for local-only sources
	LocalFile  string // file name inside the cache dir, or a full path for local-only sources
	Delimiter  rune
	LazyQuotes bool
	Required   []string
}

// Remote reports whether the source is downloaded rather than shipped locally.
func (s Source) Remote() bool { return s.URL != "" }

// Catalog lists every input of a run.
type Catalog struct {
	Licenses      Source
	Tracts        Source
	Neighborhoods Source
	TractMap      Source
	Socioeconomic Source
}

// NewCatalog builds the catalog from configuration.
func NewCatalog(cfg config.DataConfig) Catalog {
	return Catalog{
		Licenses: Source{
			Name:      "licenses",
			URL:       cfg.LicensesURL,
			LocalFile: "chicago_business_licenses.csv",
			Delimiter: ',',
			Required: []string{
				ColTermStart, ColTermEnd, ColLicenseCode, ColDescription, ColBusinessActivity,
				ColLatitude, ColLongitude, ColLicenseNumber, ColDBAName, ColLegalName,
				ColCity, ColZip, ColState, ColAddress,
			},
		},
		Tracts: Source{
			Name:       "tracts",
			URL:        cfg.TractsURL,
			LocalFile:  "illinois_census_tracts.tsv",
			Delimiter:  '\t',
			LazyQuotes: true,
			Required:   []string{ColGEOID, ColTractLat, ColTractLng, ColPopulation},
		},
		Neighborhoods: Source{
			Name:      "neighborhoods",
			URL:       cfg.NeighborhoodsURL,
			LocalFile: "chicago_neighborhoods.csv",
			Delimiter: ',',
			Required:  []string{ColAreaNumber, ColAreaName},
		},
		TractMap: Source{
			Name:      "tract_map",
			LocalFile: cfg.TractMapPath,
			Delimiter: ',',
			Required:  []string{ColMapArea, ColMapTract},
		},
		Socioeconomic: Source{
			Name:      "socioeconomic",
			URL:       cfg.SocioeconomicURL,
			LocalFile: "neighborhood_socioeconomic.csv",
			Delimiter: ',',
			Required: []string{
				ColHousingCrowded, ColBelowPoverty, ColUnemployed, ColWithoutDiploma,
				ColUnder18Over64, ColPerCapitaIncome, ColHardshipIndex, ColCommunityName,
			},
		},
	}
}

// All returns every source in a stable order.
func (c Catalog) All() []Source {
	return []Source{c.Licenses, c.Tracts, c.Neighborhoods, c.TractMap, c.Socioeconomic}
}

// Remote returns the sources that are downloaded.
func (c Catalog) Remote() []Source {
	var out []Source
	for _, s := range c.All() {
		if s.Remote() {
			out = append(out, s)
		}
	}
	return out
}
