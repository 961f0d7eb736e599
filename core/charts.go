package core

import (
	"errors"
	"fmt"

	"github.com/huangsam/reviewdash/internal/contract"
	"github.com/huangsam/reviewdash/schema"
)

// chartRegistry owns one live handle per statistic.
type chartRegistry struct {
	handles map[schema.StatKind]contract.ChartHandle
}

func (r *chartRegistry) render(sink contract.ChartSink, series schema.ChartSeries) error {
	releaseErr := r.release(series.Stat)
	if !series.ShouldRender() || sink == nil {
		return releaseErr
	}

	h, err := sink.Acquire(series.Stat)
	if err != nil {
		return errors.Join(releaseErr, fmt.Errorf("failed to acquire chart %s: %w", series.Stat, err))
	}
	if err := h.Draw(series); err != nil {
		return errors.Join(releaseErr, fmt.Errorf("failed to draw chart %s: %w", series.Stat, err), h.Release())
	}

	if r.handles == nil {
		r.handles = make(map[schema.StatKind]contract.ChartHandle)
	}
	r.handles[series.Stat] = h
	return releaseErr
}

func (r *chartRegistry) release(stat schema.StatKind) error {
	h, ok := r.handles[stat]
	if !ok {
		return nil
	}
	delete(r.handles, stat)
	if err := h.Release(); err != nil {
		return fmt.Errorf("failed to release chart %s: %w", stat, err)
	}
	return nil
}

func (r *chartRegistry) releaseAll() error {
	var errs []error
	for _, stat := range schema.AllStatKinds {
		errs = append(errs, r.release(stat))
	}
	for stat := range r.handles {
		errs = append(errs, r.release(stat))
	}
	return errors.Join(errs...)
}

func (r *chartRegistry) active() []schema.StatKind {
	var out []schema.StatKind
	for _, stat := range schema.AllStatKinds {
		if _, ok := r.handles[stat]; ok {
			out = append(out, stat)
		}
	}
	return out
}
