package leastsquares

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Group is one independent regression problem, typically one entity's rows.
type Group struct {
	Name     string
	Target   Series
	Features []Series
	Weights  []float64
}

// FitGroupCoefficients fits one static regression per group. Groups share no
// mutable state and are fit concurrently, bounded by parallelism when it is
// positive.
func FitGroupCoefficients(ctx context.Context, groups []Group, opt *OLSOptions, addIntercept bool, parallelism int) (map[string]*Coefficients, error) {
	opt, err := opt.Validate()
	if err != nil {
		return nil, err
	}

	results := make([]*Coefficients, len(groups))

	eg, ctx := errgroup.WithContext(ctx)
	if parallelism > 0 {
		eg.SetLimit(parallelism)
	}
	for i, grp := range groups {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			reg, err := NewStaticRegressor(opt)
			if err != nil {
				return err
			}
			coefs, err := reg.FitCoefficients(grp.Target, grp.Features, grp.Weights, addIntercept)
			if err != nil {
				return err
			}
			results[i] = coefs
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	out := make(map[string]*Coefficients, len(groups))
	for i, grp := range groups {
		out[grp.Name] = results[i]
	}
	return out, nil
}
