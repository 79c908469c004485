// Package pipeline drives report generation: it walks every license category,
// feeds business/tract distances into the aggregation store and emits the
// resulting report files.
package pipeline

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"

	"github.com/defano/chicago-oasis-data/internal/access"
	"github.com/defano/chicago-oasis-data/internal/gis"
	"github.com/defano/chicago-oasis-data/internal/metrics"
	"github.com/defano/chicago-oasis-data/internal/model"
	"github.com/defano/chicago-oasis-data/internal/refdata"
	"github.com/defano/chicago-oasis-data/internal/report"
	"github.com/defano/chicago-oasis-data/internal/runlog"
)

// Provider is the reference data a run reads.
type Provider interface {
	report.CategoryIndex
	access.BusinessDirectory
	Licenses(category string) []model.LicenseRecord
	NeighborhoodIDs() []string
	NeighborhoodName(id string) string
	TractsInNeighborhood(id string) []string
	TractCentroid(tract string) (*geom.Point, bool)
	TractPopulation(tract string) (int, bool)
	Socioeconomic() []model.Socioeconomic
}

// Outputs selects which report families a run produces.
type Outputs struct {
	Access   bool
	Critical bool
	Index    bool
	Socio    bool
}

// resolve treats an empty selection as everything.
func (o Outputs) resolve() Outputs {
	if !o.Access && !o.Critical && !o.Index && !o.Socio {
		return Outputs{Access: true, Critical: true, Index: true, Socio: true}
	}
	return o
}

// Options controls one run.
type Options struct {
	Outputs Outputs
	// Categories restricts the run to these license codes. Empty means all.
	Categories []string
	// StartAt skips categories ordered before this code until it is reached.
	StartAt string
	// Resume skips categories the ledger already records as complete.
	Resume   bool
	Identity access.Identity
}

// Summary reports what a run did.
type Summary struct {
	Categories int `json:"categories"`
	Skipped    int `json:"skipped"`
	Files      int `json:"files"`
	Critical   int `json:"critical"`
}

// Runner generates report files from reference data.
type Runner struct {
	provider Provider
	emitter  *report.Emitter
	ledger   runlog.Store
	metrics  *metrics.Metrics
	store    *access.Store
}

// New creates a Runner. A nil ledger records nothing and nil metrics count
// nothing.
func New(p Provider, e *report.Emitter, ledger runlog.Store, m *metrics.Metrics) *Runner {
	if ledger == nil {
		ledger = runlog.Nop{}
	}
	return &Runner{
		provider: p,
		emitter:  e,
		ledger:   ledger,
		metrics:  m,
		store:    access.NewStore(),
	}
}

// Run produces the selected outputs. It stops at the first category that
// fails; that category is marked failed in the ledger and earlier categories
// stay complete.
func (r *Runner) Run(ctx context.Context, opts Options) (*Summary, error) {
	out := opts.Outputs.resolve()
	identity := opts.Identity
	if identity == "" {
		identity = access.IdentityBusiness
	}
	sum := &Summary{}

	keys := r.categoryKeys()

	if out.Index {
		entries := report.LicenseIndex(r.provider, keys)
		if err := r.emitter.WriteLicenseIndex(ctx, entries); err != nil {
			return sum, err
		}
		sum.Files++
		r.metrics.AddFiles(1)
		zap.L().Info("pipeline: wrote license index", zap.Int("categories", len(entries)))
	}

	if out.Socio {
		if err := r.emitter.WriteSocioeconomic(ctx, r.provider.Socioeconomic()); err != nil {
			return sum, err
		}
		sum.Files++
		r.metrics.AddFiles(1)
		zap.L().Info("pipeline: wrote socioeconomic table")
	}

	if !out.Access && !out.Critical {
		return sum, nil
	}

	categories := r.selectCategories(opts.Categories)
	overall := NewProgress(zap.L(), "pipeline: overall progress", len(categories), DefaultProgressStep)
	startAt := opts.StartAt

	for _, code := range categories {
		if err := ctx.Err(); err != nil {
			return sum, eris.Wrap(err, "pipeline: run cancelled")
		}

		if startAt != "" && refdata.CompareCodes(code, startAt) < 0 {
			zap.L().Info("pipeline: skipping category before start marker",
				zap.String("category", code), zap.String("start_at", startAt))
			sum.Skipped++
			r.metrics.IncCategory("skipped")
			overall.Step()
			continue
		}
		startAt = ""

		if opts.Resume {
			done, err := r.ledger.IsComplete(ctx, code)
			if err != nil {
				return sum, eris.Wrapf(err, "pipeline: ledger lookup for %s", code)
			}
			if done {
				zap.L().Info("pipeline: skipping completed category", zap.String("category", code))
				sum.Skipped++
				r.metrics.IncCategory("skipped")
				overall.Step()
				continue
			}
		}

		res, err := r.runCategory(ctx, code, keys[code], out, identity)
		if err != nil {
			return sum, err
		}
		sum.Categories++
		sum.Files += res.files
		sum.Critical += res.critical
		overall.Step()
	}

	return sum, nil
}

// categoryKeys assigns file keys over every known category, so a category's
// key does not depend on which subset a run selects.
func (r *Runner) categoryKeys() map[string]string {
	cats := r.provider.Categories()
	descs := make(map[string]string, len(cats))
	for _, code := range cats {
		descs[code] = r.provider.Description(code)
	}
	return report.Keys(descs)
}

// selectCategories returns the requested codes in the given order, without
// repeats, or every category when none were requested.
func (r *Runner) selectCategories(requested []string) []string {
	if len(requested) == 0 {
		return r.provider.Categories()
	}
	known := make(map[string]bool)
	for _, code := range r.provider.Categories() {
		known[code] = true
	}
	seen := make(map[string]bool, len(requested))
	var out []string
	for _, code := range requested {
		if seen[code] {
			continue
		}
		seen[code] = true
		if !known[code] {
			zap.L().Warn("pipeline: no licenses for requested category", zap.String("category", code))
			continue
		}
		out = append(out, code)
	}
	return out
}

type categoryResult struct {
	files    int
	critical int
}

func (r *Runner) runCategory(ctx context.Context, code, key string, out Outputs, identity access.Identity) (categoryResult, error) {
	var res categoryResult
	desc := r.provider.Description(code)
	licenses := r.provider.Licenses(code)
	log := zap.L().With(zap.String("category", code), zap.String("description", desc))
	log.Info("pipeline: aggregating category", zap.Int("records", len(licenses)))

	run, err := r.ledger.Start(ctx, code, desc)
	if err != nil {
		return res, eris.Wrapf(err, "pipeline: start category %s", code)
	}
	start := time.Now()
	defer r.store.Discard(code)

	fail := func(err error) (categoryResult, error) {
		r.metrics.IncCategory("failed")
		if lerr := r.ledger.Fail(context.WithoutCancel(ctx), run.ID, err); lerr != nil {
			log.Warn("pipeline: failed to record category failure", zap.Error(lerr))
		}
		log.Error("pipeline: category failed", zap.Error(err))
		return res, err
	}

	before := r.store.Stats()
	prog := NewProgress(log, "pipeline: category progress", len(licenses), DefaultProgressStep)
	for _, lic := range licenses {
		if err := ctx.Err(); err != nil {
			return fail(eris.Wrap(err, "pipeline: category cancelled"))
		}
		if err := r.observeLicense(code, lic, log); err != nil {
			return fail(err)
		}
		prog.Step()
	}
	after := r.store.Stats()
	r.metrics.AddObservations(after.Observations-before.Observations, after.TractDuplicates-before.TractDuplicates)

	years := r.store.Years(code)
	for _, year := range years {
		if out.Access {
			tracts, err := r.store.TractRecords(code, year)
			if err != nil {
				return fail(err)
			}
			hoods, err := r.store.NeighborhoodRecords(code, year)
			if err != nil {
				return fail(err)
			}
			written, err := r.emitter.WriteAccess(ctx, key, year, tracts, hoods)
			res.files += len(written)
			r.metrics.AddFiles(len(written))
			if err != nil {
				return fail(err)
			}
		}
		if out.Critical {
			cbs, err := access.ExtractCritical(r.store, r.provider, code, year, identity)
			if err != nil {
				return fail(err)
			}
			if _, err := r.emitter.WriteCritical(ctx, key, year, cbs); err != nil {
				return fail(err)
			}
			res.files++
			res.critical += len(cbs)
			r.metrics.AddFiles(1)
			r.metrics.AddCritical(len(cbs))
		}
	}

	if err := r.ledger.Complete(ctx, run.ID, len(years), res.files); err != nil {
		return res, eris.Wrapf(err, "pipeline: complete category %s", code)
	}
	r.metrics.IncCategory("complete")
	r.metrics.ObserveCategory(time.Since(start))
	log.Info("pipeline: category complete",
		zap.Int("years", len(years)),
		zap.Int("files", res.files),
		zap.Int("critical", res.critical),
		zap.Duration("elapsed", time.Since(start)),
	)
	return res, nil
}

// observeLicense counts one license record against every mapped tract for
// each year of its term. Records without valid dates or coordinates are
// skipped.
func (r *Runner) observeLicense(code string, lic model.LicenseRecord, log *zap.Logger) error {
	first, last, err := lic.ActiveYears()
	if err != nil {
		r.metrics.IncSkipped(metrics.SkipBadDates)
		log.Debug("pipeline: skipping license with bad term dates", zap.String("license", lic.Number), zap.Error(err))
		return nil
	}
	if !lic.HasLocation() {
		r.metrics.IncSkipped(metrics.SkipNoLocation)
		log.Debug("pipeline: skipping license without location", zap.String("license", lic.Number))
		return nil
	}
	business := gis.NewPoint(lic.Latitude, lic.Longitude)

	for _, hood := range r.provider.NeighborhoodIDs() {
		hoodName := r.provider.NeighborhoodName(hood)
		for _, tract := range r.provider.TractsInNeighborhood(hood) {
			centroid, ok := r.provider.TractCentroid(tract)
			if !ok {
				r.metrics.IncSkipped(metrics.SkipNoCentroid)
				continue
			}
			pop, _ := r.provider.TractPopulation(tract)
			distance := gis.DistanceBetween(business, centroid, gis.Miles)

			for year := first; year <= last; year++ {
				err := r.store.Observe(access.Observation{
					TractID:          tract,
					NeighborhoodID:   hood,
					NeighborhoodName: hoodName,
					TractPopulation:  pop,
					Distance:         distance,
					Year:             year,
					Category:         code,
					License:          lic,
				})
				if eris.Is(err, access.ErrInvalidDistance) {
					r.metrics.IncSkipped(metrics.SkipAtCentroid)
					log.Debug("pipeline: skipping business located at tract centroid",
						zap.String("license", lic.Number), zap.String("tract", tract))
					break
				}
				if err != nil {
					return eris.Wrapf(err, "pipeline: observe license %s", lic.Number)
				}
			}
		}
	}
	return nil
}
