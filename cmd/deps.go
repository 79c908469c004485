package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/defano/chicago-oasis-data/internal/config"
	"github.com/defano/chicago-oasis-data/internal/dataset"
	"github.com/defano/chicago-oasis-data/internal/fetcher"
	"github.com/defano/chicago-oasis-data/internal/refdata"
)

func newCache(c *config.Config) *dataset.Cache {
	f := fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
		UserAgent:  c.Data.UserAgent,
		Timeout:    time.Duration(c.Data.TimeoutSecs) * time.Second,
		MaxRetries: c.Data.MaxRetries,
	})
	return dataset.NewCache(c.Data.CacheDir, f)
}

// loadProvider reads every dataset into a reference data provider. When only
// the socioeconomic table is needed the other datasets are not read.
func loadProvider(ctx context.Context, c *config.Config, cache *dataset.Cache, cat dataset.Catalog, socioOnly bool) (*refdata.Provider, error) {
	if socioOnly {
		rows, err := refdata.LoadSocioeconomic(ctx, cache, cat.Socioeconomic)
		if err != nil {
			return nil, err
		}
		return refdata.New(refdata.Tables{Socioeconomic: rows}), nil
	}

	start := time.Now()
	p, err := refdata.Load(ctx, cache, cat, c.Data.CountyGEOIDPrefix)
	if err != nil {
		return nil, eris.Wrap(err, "load reference data")
	}
	zap.L().Debug("reference data load time", zap.Duration("elapsed", time.Since(start)))
	return p, nil
}
