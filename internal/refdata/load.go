package refdata

import (
	"context"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/defano/chicago-oasis-data/internal/dataset"
	"github.com/defano/chicago-oasis-data/internal/model"
)

// RowSource streams the rows of a dataset.
type RowSource interface {
	Rows(ctx context.Context, s dataset.Source, fn func(dataset.Row) error) error
}

// Load reads every table of the catalog and builds a Provider. Gazetteer
// rows outside the county identified by countyPrefix are ignored.
func Load(ctx context.Context, src RowSource, cat dataset.Catalog, countyPrefix string) (*Provider, error) {
	var (
		t   Tables
		err error
	)
	if t.Licenses, err = loadLicenses(ctx, src, cat.Licenses); err != nil {
		return nil, err
	}
	if t.Tracts, err = loadTracts(ctx, src, cat.Tracts, countyPrefix); err != nil {
		return nil, err
	}
	if t.Neighborhoods, err = loadNeighborhoods(ctx, src, cat.Neighborhoods); err != nil {
		return nil, err
	}
	if t.TractMap, err = loadTractMap(ctx, src, cat.TractMap); err != nil {
		return nil, err
	}
	if t.Socioeconomic, err = LoadSocioeconomic(ctx, src, cat.Socioeconomic); err != nil {
		return nil, err
	}

	p := New(t)
	s := p.Summary()
	zap.L().Info("reference data loaded",
		zap.Int("categories", s.Categories),
		zap.Int("licenses", s.Licenses),
		zap.Int("businesses", s.Businesses),
		zap.Int("tracts", s.Tracts),
		zap.Int("neighborhoods", s.Neighborhoods),
	)
	return p, nil
}

// parseCoord parses a coordinate; empty or malformed values are missing (0).
func parseCoord(s string) float64 {
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

func loadLicenses(ctx context.Context, src RowSource, s dataset.Source) ([]model.LicenseRecord, error) {
	var out []model.LicenseRecord
	err := src.Rows(ctx, s, func(r dataset.Row) error {
		out = append(out, model.LicenseRecord{
			Code:             r.Get(dataset.ColLicenseCode),
			Number:           r.Get(dataset.ColLicenseNumber),
			Description:      r.Get(dataset.ColDescription),
			BusinessActivity: r.Get(dataset.ColBusinessActivity),
			TermStart:        r.Get(dataset.ColTermStart),
			TermEnd:          r.Get(dataset.ColTermEnd),
			Latitude:         parseCoord(r.Get(dataset.ColLatitude)),
			Longitude:        parseCoord(r.Get(dataset.ColLongitude)),
			DBAName:          r.Get(dataset.ColDBAName),
			LegalName:        r.Get(dataset.ColLegalName),
			Address:          r.Get(dataset.ColAddress),
			City:             r.Get(dataset.ColCity),
			State:            r.Get(dataset.ColState),
			Zip:              r.Get(dataset.ColZip),
		})
		return nil
	})
	if err != nil {
		return nil, eris.Wrap(err, "refdata: load licenses")
	}
	return out, nil
}

// TractID converts an 11-digit gazetteer GEOID into the six-digit tract id
// when it lies in the given county.
func TractID(geoid, countyPrefix string) (string, bool) {
	if len(geoid) < 6 || !strings.HasPrefix(geoid, countyPrefix) {
		return "", false
	}
	return geoid[len(geoid)-6:], true
}

func loadTracts(ctx context.Context, src RowSource, s dataset.Source, countyPrefix string) ([]model.Tract, error) {
	var out []model.Tract
	err := src.Rows(ctx, s, func(r dataset.Row) error {
		geoid := r.Get(dataset.ColGEOID)
		id, ok := TractID(geoid, countyPrefix)
		if !ok {
			return nil
		}
		t := model.Tract{
			ID:        id,
			GEOID:     geoid,
			Latitude:  parseCoord(r.Get(dataset.ColTractLat)),
			Longitude: parseCoord(r.Get(dataset.ColTractLng)),
		}
		if pop, err := strconv.Atoi(r.Get(dataset.ColPopulation)); err == nil {
			t.Population = &pop
		}
		out = append(out, t)
		return nil
	})
	if err != nil {
		return nil, eris.Wrap(err, "refdata: load tracts")
	}
	return out, nil
}

func loadNeighborhoods(ctx context.Context, src RowSource, s dataset.Source) ([]model.Neighborhood, error) {
	var out []model.Neighborhood
	err := src.Rows(ctx, s, func(r dataset.Row) error {
		id := r.Get(dataset.ColAreaNumber)
		if id == "" {
			return nil
		}
		out = append(out, model.Neighborhood{ID: id, Name: r.Get(dataset.ColAreaName)})
		return nil
	})
	if err != nil {
		return nil, eris.Wrap(err, "refdata: load neighborhoods")
	}
	return out, nil
}

// NormalizeTract left-pads numeric tract ids to six digits; spreadsheet
// exports of the tract map drop leading zeros.
func NormalizeTract(id string) string {
	if len(id) >= 6 {
		return id
	}
	if _, err := strconv.Atoi(id); err != nil {
		return id
	}
	return strings.Repeat("0", 6-len(id)) + id
}

func loadTractMap(ctx context.Context, src RowSource, s dataset.Source) ([]TractMapping, error) {
	var out []TractMapping
	err := src.Rows(ctx, s, func(r dataset.Row) error {
		area, tract := r.Get(dataset.ColMapArea), r.Get(dataset.ColMapTract)
		if area == "" || tract == "" {
			return nil
		}
		out = append(out, TractMapping{NeighborhoodID: area, TractID: NormalizeTract(tract)})
		return nil
	})
	if err != nil {
		return nil, eris.Wrap(err, "refdata: load tract map")
	}
	return out, nil
}

// LoadSocioeconomic reads the community area hardship indicators. Rows with
// malformed numbers are skipped with a warning.
func LoadSocioeconomic(ctx context.Context, src RowSource, s dataset.Source) ([]model.Socioeconomic, error) {
	var out []model.Socioeconomic
	err := src.Rows(ctx, s, func(r dataset.Row) error {
		row, err := parseSocioeconomic(r)
		if err != nil {
			zap.L().Warn("skipping socioeconomic row",
				zap.Int("line", r.Line()),
				zap.String("community", r.Get(dataset.ColCommunityName)),
				zap.Error(err),
			)
			return nil
		}
		out = append(out, row)
		return nil
	})
	if err != nil {
		return nil, eris.Wrap(err, "refdata: load socioeconomic")
	}
	return out, nil
}

func parseSocioeconomic(r dataset.Row) (model.Socioeconomic, error) {
	var (
		s   = model.Socioeconomic{Community: r.Get(dataset.ColCommunityName)}
		err error
	)
	floats := []struct {
		col string
		dst *float64
	}{
		{dataset.ColHousingCrowded, &s.PercentHousingCrowded},
		{dataset.ColBelowPoverty, &s.PercentBelowPoverty},
		{dataset.ColUnemployed, &s.PercentUnemployed},
		{dataset.ColWithoutDiploma, &s.PercentWithoutDiploma},
		{dataset.ColUnder18Over64, &s.PercentUnder18Over64},
	}
	for _, f := range floats {
		if *f.dst, err = strconv.ParseFloat(r.Get(f.col), 64); err != nil {
			return s, eris.Wrapf(err, "column %s", f.col)
		}
	}
	if s.PerCapitaIncome, err = strconv.Atoi(r.Get(dataset.ColPerCapitaIncome)); err != nil {
		return s, eris.Wrapf(err, "column %s", dataset.ColPerCapitaIncome)
	}
	if s.HardshipIndex, err = strconv.Atoi(r.Get(dataset.ColHardshipIndex)); err != nil {
		// The city-wide total row has no hardship index.
		if r.Get(dataset.ColHardshipIndex) != "" {
			return s, eris.Wrapf(err, "column %s", dataset.ColHardshipIndex)
		}
		s.HardshipIndex = 0
	}
	return s, nil
}
