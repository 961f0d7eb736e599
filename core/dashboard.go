package core

import (
	"context"
	"errors"
	"time"

	"github.com/huangsam/reviewdash/internal/contract"
	"github.com/huangsam/reviewdash/schema"
	"github.com/oklog/ulid/v2"
	"github.com/sirupsen/logrus"
)

// Dashboard drives one session: it fetches through the fetcher, shapes the
// responses and hands the results to the sinks. It is not safe for
// concurrent use. Loads are neither deduplicated nor cancelled, so when two
// loads overlap the one that finishes last wins.
type Dashboard struct {
	session *Session
	fetcher contract.ReviewFetcher
	table   contract.TableSink
	charts  contract.ChartSink
	history contract.HistoryStore
	logger  *logrus.Logger
	now     contract.Clock
}

// Option configures a Dashboard.
type Option func(*Dashboard)

// WithHistory records every load in store.
func WithHistory(store contract.HistoryStore) Option {
	return func(d *Dashboard) { d.history = store }
}

// WithLogger sets the structured logger.
func WithLogger(logger *logrus.Logger) Option {
	return func(d *Dashboard) { d.logger = logger }
}

// WithClock overrides the time source.
func WithClock(clock contract.Clock) Option {
	return func(d *Dashboard) { d.now = clock }
}

// NewDashboard wires a session to a fetcher and its sinks. Either sink may be
// nil when the caller only needs one view.
func NewDashboard(session *Session, fetcher contract.ReviewFetcher, table contract.TableSink, charts contract.ChartSink, opts ...Option) *Dashboard {
	d := &Dashboard{
		session: session,
		fetcher: fetcher,
		table:   table,
		charts:  charts,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.logger == nil {
		d.logger = contract.NewDiscardLogger()
	}
	return d
}

// Session returns the dashboard's session.
func (d *Dashboard) Session() *Session {
	return d.session
}

// loadRun tracks one fetch for logging and history.
type loadRun struct {
	run   schema.LoadRun
	entry *logrus.Entry
}

func (d *Dashboard) begin(op schema.LoadOperation, q schema.Query) *loadRun {
	now := d.now()
	lr := &loadRun{
		run: schema.LoadRun{
			RunID:     ulid.MustNew(ulid.Timestamp(now), ulid.DefaultEntropy()).String(),
			Operation: op,
			Kind:      d.session.Kind,
			Query:     q.Encode(),
			StartTime: now,
		},
	}
	lr.entry = d.logger.WithFields(logrus.Fields{
		"load_id":     lr.run.RunID,
		"op":          string(op),
		"review_kind": string(d.session.Kind),
	})
	lr.entry.WithField("query", lr.run.Query).Debug("Load started")
	if d.history != nil {
		if err := d.history.BeginLoad(lr.run); err != nil {
			lr.entry.WithError(err).Warn("Failed to record load start")
		}
	}
	return lr
}

func (d *Dashboard) succeed(lr *loadRun, records int, avg float64) {
	end := d.now()
	lr.entry.WithFields(logrus.Fields{
		"records":  records,
		"duration": end.Sub(lr.run.StartTime),
	}).Info("Load finished")
	d.finish(lr, schema.LoadOutcome{EndTime: end, Status: schema.LoadOK, RecordCount: records, AverageScore: avg})
}

func (d *Dashboard) fail(lr *loadRun, err error) {
	end := d.now()
	lr.entry.WithFields(logrus.Fields{
		"failure":  string(contract.FailureOf(err)),
		"duration": end.Sub(lr.run.StartTime),
	}).WithError(err).Error("Load failed")
	d.finish(lr, schema.LoadOutcome{EndTime: end, Status: schema.LoadFailed, ErrorMessage: contract.FailureMessage(err)})
}

func (d *Dashboard) finish(lr *loadRun, outcome schema.LoadOutcome) {
	if d.history == nil {
		return
	}
	if err := d.history.EndLoad(lr.run.RunID, outcome); err != nil {
		lr.entry.WithError(err).Warn("Failed to record load end")
	}
}

// LoadFilterOptions merges the server's options for the current kind into
// the vocabulary. On failure the vocabulary is left unchanged.
func (d *Dashboard) LoadFilterOptions(ctx context.Context) error {
	q := d.session.FilterOptionsQuery()
	lr := d.begin(schema.FilterOptionsOperation, q)

	resp, err := d.fetcher.FetchFilterOptions(ctx, q)
	if err != nil {
		d.fail(lr, err)
		return err
	}

	d.session.vocab.Merge(resp.Authors, resp.ProjectNames, d.session.selected())
	d.succeed(lr, len(resp.Authors)+len(resp.ProjectNames), 0)
	return nil
}

// LoadData fetches the logs for the current filters, renders the table and
// folds the observed authors and projects into the vocabulary. On failure
// only the table body changes: it shows the failure row.
func (d *Dashboard) LoadData(ctx context.Context) (schema.TableView, error) {
	kind := d.session.Kind
	if d.table != nil {
		if err := d.table.RenderLoading(kind); err != nil {
			d.logger.WithError(err).Warn("Failed to render loading row")
		}
	}

	q := d.session.LogsQuery()
	lr := d.begin(schema.LogsOperation, q)

	resp, err := d.fetcher.FetchLogs(ctx, q)
	if err != nil {
		d.fail(lr, err)
		if d.table != nil {
			if renderErr := d.table.RenderFailure(kind, err); renderErr != nil {
				return schema.TableView{}, errors.Join(err, renderErr)
			}
		}
		return schema.TableView{}, err
	}

	escape := contract.Escaper(contract.HTMLEscape)
	if d.table != nil {
		escape = d.table.Escaper()
	}

	now := d.now()
	view := schema.TableView{
		Kind:         kind,
		Columns:      TableColumns(kind),
		Rows:         ProjectRecords(resp.Data, kind, escape),
		Total:        int(resp.Total),
		AverageScore: resp.AverageScore,
		LoadedAt:     now,
	}

	d.session.vocab.ObserveRecords(resp.Data, d.session.selected())
	d.session.Touch(now)
	d.succeed(lr, len(view.Rows), view.AverageScore)

	if d.table != nil {
		if err := d.table.RenderRows(view); err != nil {
			return view, err
		}
	}
	return view, nil
}

// LoadCharts fetches the statistics for the chart filters and redraws all
// five charts. On failure the existing charts stay as they are.
func (d *Dashboard) LoadCharts(ctx context.Context) ([]schema.ChartSeries, error) {
	q := d.session.StatsQuery()
	lr := d.begin(schema.StatsOperation, q)

	resp, err := d.fetcher.FetchStats(ctx, q)
	if err != nil {
		d.fail(lr, err)
		return nil, err
	}

	all := AllSeries(resp)
	entries := 0
	var errs []error
	for _, s := range all {
		entries += len(s.Labels)
		if err := d.session.RenderChart(d.charts, s); err != nil {
			errs = append(errs, err)
		}
	}
	d.session.Touch(d.now())
	d.succeed(lr, entries, 0)
	return all, errors.Join(errs...)
}

// Reload loads the filter options and then the data. An options failure is
// logged and does not stop the data load.
func (d *Dashboard) Reload(ctx context.Context) (schema.TableView, error) {
	_ = d.LoadFilterOptions(ctx)
	return d.LoadData(ctx)
}

// SwitchKind changes the review kind and reloads when it actually changed.
func (d *Dashboard) SwitchKind(ctx context.Context, kind schema.ReviewKind) (schema.TableView, error) {
	if !d.session.SwitchKind(kind) {
		return schema.TableView{}, nil
	}
	return d.Reload(ctx)
}

// Reset restores the default filters and reloads.
func (d *Dashboard) Reset(ctx context.Context) (schema.TableView, error) {
	d.session.Reset(d.session.Today(d.now()))
	return d.Reload(ctx)
}

// Close releases every chart handle.
func (d *Dashboard) Close() error {
	return d.session.ReleaseCharts()
}
