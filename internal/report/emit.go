package report

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/rotisserie/eris"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/defano/chicago-oasis-data/internal/access"
	"github.com/defano/chicago-oasis-data/internal/blob"
	"github.com/defano/chicago-oasis-data/internal/model"
)

// Output file locations, relative to the destination root.
const (
	CensusDir         = "census"
	CommunityDir      = "community"
	CriticalDir       = "critical"
	LicenseIndexFile  = "licenses.json"
	SocioeconomicFile = "socioeconomic.json"
)

const contentType = "application/json"

// CensusPath returns the census accessibility file of a category key and year.
func CensusPath(key string, year int) string {
	return fmt.Sprintf("%s/%s-%d.json", CensusDir, key, year)
}

// CommunityPath returns the community accessibility file of a category key and year.
func CommunityPath(key string, year int) string {
	return fmt.Sprintf("%s/%s-%d.json", CommunityDir, key, year)
}

// CriticalPath returns the critical business file of a category key and year.
func CriticalPath(key string, year int) string {
	return fmt.Sprintf("%s/critical-%s-%d.json", CriticalDir, key, year)
}

// Marshal renders v as 2-space indented JSON without HTML escaping.
func Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, eris.Wrap(err, "report: marshal")
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// Emitter writes report files to a blob store.
type Emitter struct {
	store blob.Store
}

// NewEmitter returns an emitter writing to store.
func NewEmitter(store blob.Store) *Emitter {
	return &Emitter{store: store}
}

func (e *Emitter) put(ctx context.Context, key string, v any) error {
	body, err := Marshal(v)
	if err != nil {
		return eris.Wrapf(err, "report: %s", key)
	}
	if err := e.store.Put(ctx, key, body, contentType); err != nil {
		return eris.Wrapf(err, "report: write %s", key)
	}
	return nil
}

// WriteAccess writes the census and community accessibility files of one
// category and year and returns the keys written.
func (e *Emitter) WriteAccess(ctx context.Context, key string, year int, tracts, neighborhoods []*access.AreaRecord) ([]string, error) {
	census, community := CensusPath(key, year), CommunityPath(key, year)
	if err := e.put(ctx, census, CensusRecords(tracts)); err != nil {
		return nil, err
	}
	if err := e.put(ctx, community, CommunityRecords(neighborhoods)); err != nil {
		return []string{census}, err
	}
	return []string{census, community}, nil
}

// WriteCritical writes the critical business file of one category and year.
func (e *Emitter) WriteCritical(ctx context.Context, key string, year int, cbs []access.CriticalBusiness) (string, error) {
	path := CriticalPath(key, year)
	if err := e.put(ctx, path, CriticalRecords(cbs)); err != nil {
		return "", err
	}
	return path, nil
}

// LicenseEntry is one entry of licenses.json.
type LicenseEntry struct {
	Title   string `json:"title"`
	Label   string `json:"label"`
	Value   string `json:"value"`
	MinYear *int   `json:"min-year"`
	MaxYear *int   `json:"max-year"`
}

// CategoryIndex is the reference data needed to describe license categories.
type CategoryIndex interface {
	Categories() []string
	Description(category string) string
	DateRange(category string) (int, int, bool)
}

// LicenseIndex lists every category with its file key and active year range.
// Categories without valid term dates have null years.
func LicenseIndex(idx CategoryIndex, keys map[string]string) []LicenseEntry {
	cats := idx.Categories()
	out := make([]LicenseEntry, 0, len(cats))
	for _, code := range cats {
		desc := idx.Description(code)
		entry := LicenseEntry{Title: desc, Label: desc, Value: keys[code]}
		if entry.Value == "" {
			entry.Value = LicenseKey(desc)
		}
		if start, end, ok := idx.DateRange(code); ok {
			entry.MinYear, entry.MaxYear = &start, &end
		}
		out = append(out, entry)
	}
	return out
}

// WriteLicenseIndex writes licenses.json.
func (e *Emitter) WriteLicenseIndex(ctx context.Context, entries []LicenseEntry) error {
	if entries == nil {
		entries = []LicenseEntry{}
	}
	return e.put(ctx, LicenseIndexFile, entries)
}

// SocioeconomicEntry is one community area's value in socioeconomic.json.
type SocioeconomicEntry struct {
	PercentHousingCrowded float64 `json:"PERCENT OF HOUSING CROWDED"`
	PercentBelowPoverty   float64 `json:"PERCENT HOUSEHOLDS BELOW POVERTY"`
	PercentUnemployed     float64 `json:"PERCENT AGED 16+ UNEMPLOYED"`
	PercentWithoutDiploma float64 `json:"PERCENT AGED 25+ WITHOUT HIGH SCHOOL DIPLOMA"`
	PercentUnder18Over64  float64 `json:"PERCENT AGED UNDER 18 OR OVER 64"`
	PerCapitaIncome       int     `json:"PER CAPITA INCOME"`
	HardshipIndex         int     `json:"HARDSHIP INDEX"`
}

// cityTotal is the community name of the city-wide summary row.
const cityTotal = "CHICAGO"

// SocioeconomicTable keys the indicator rows by upper-cased community name,
// leaving out the city-wide total.
func SocioeconomicTable(rows []model.Socioeconomic) map[string]SocioeconomicEntry {
	upper := cases.Upper(language.Und)
	out := make(map[string]SocioeconomicEntry, len(rows))
	for _, r := range rows {
		name := upper.String(r.Community)
		if name == cityTotal || name == "" {
			continue
		}
		out[name] = SocioeconomicEntry{
			PercentHousingCrowded: r.PercentHousingCrowded,
			PercentBelowPoverty:   r.PercentBelowPoverty,
			PercentUnemployed:     r.PercentUnemployed,
			PercentWithoutDiploma: r.PercentWithoutDiploma,
			PercentUnder18Over64:  r.PercentUnder18Over64,
			PerCapitaIncome:       r.PerCapitaIncome,
			HardshipIndex:         r.HardshipIndex,
		}
	}
	return out
}

// WriteSocioeconomic writes socioeconomic.json.
func (e *Emitter) WriteSocioeconomic(ctx context.Context, rows []model.Socioeconomic) error {
	return e.put(ctx, SocioeconomicFile, SocioeconomicTable(rows))
}
