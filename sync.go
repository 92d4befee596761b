package tonnage

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/rearc-data/fred-truck-tonnage/errors"
	"github.com/rearc-data/fred-truck-tonnage/tonnagetypes"
)

// FetchAll runs FetchAndSync for every variant concurrently and returns the
// results in variant order.
//
// The first failure is returned and no results are. Other variants already
// in flight run to completion; an upload they make is not rolled back.
func (s *Syncer) FetchAll(ctx context.Context) ([]*tonnagetypes.FetchResult, error) {
	variants := tonnagetypes.Variants()
	results := make([]*tonnagetypes.FetchResult, len(variants))

	var g errgroup.Group
	g.SetLimit(len(variants))

	for i, variant := range variants {
		g.Go(func() error {
			result, err := s.FetchAndSync(ctx, variant)
			if err != nil {
				return err
			}
			results[i] = result
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Sync fetches every variant and returns the asset sources to republish.
//
// An empty, non-nil list means no variant changed. Otherwise the asset source
// of every variant is listed, or only the changed ones when the Syncer was
// built with WithChangedOnly.
func (s *Syncer) Sync(ctx context.Context) ([]tonnagetypes.AssetSource, error) {
	results, err := s.FetchAll(ctx)
	if err != nil {
		if s.logger != nil {
			s.logger.ErrorContext(ctx, "sync failed",
				"dataset", s.cfg.DatasetName,
				"bucket", s.cfg.Bucket,
				"error", err)
		}
		return nil, err
	}

	assets, err := Aggregate(results, s.changedOnly)
	if err != nil {
		return nil, err
	}

	if s.logger != nil {
		s.logger.InfoContext(ctx, "sync complete",
			"dataset", s.cfg.DatasetName,
			"variants", len(results),
			"assets", len(assets))
	}
	return assets, nil
}

// Aggregate reduces per-variant results to the changed-asset list.
//
// No changed result yields an empty list. Otherwise the asset sources are
// projected in result order, all of them or only the changed ones. A
// projection that comes out empty although something changed is an
// *errors.AggregationError.
func Aggregate(results []*tonnagetypes.FetchResult, changedOnly bool) ([]tonnagetypes.AssetSource, error) {
	changed := 0
	for _, r := range results {
		if r != nil && r.Changed {
			changed++
		}
	}

	assets := make([]tonnagetypes.AssetSource, 0, len(results))
	if changed == 0 {
		return assets, nil
	}

	for _, r := range results {
		if r == nil || (changedOnly && !r.Changed) {
			continue
		}
		if r.AssetSource.Bucket == "" || r.AssetSource.Key == "" {
			continue
		}
		assets = append(assets, r.AssetSource)
	}

	if len(assets) == 0 {
		return nil, &errors.AggregationError{Changed: changed, Results: len(results)}
	}
	return assets, nil
}
