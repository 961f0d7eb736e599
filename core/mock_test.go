package core

import (
	"context"

	"github.com/huangsam/reviewdash/internal/contract"
	"github.com/huangsam/reviewdash/schema"
	"github.com/stretchr/testify/mock"
)

// mockFetcher is a mock implementation of ReviewFetcher for testing.
type mockFetcher struct {
	mock.Mock
}

var _ contract.ReviewFetcher = &mockFetcher{} // Compile-time check

func (m *mockFetcher) FetchLogs(ctx context.Context, q schema.Query) (schema.LogsResponse, error) {
	args := m.Called(ctx, q)
	return args.Get(0).(schema.LogsResponse), args.Error(1)
}

func (m *mockFetcher) FetchStats(ctx context.Context, q schema.Query) (schema.StatsResponse, error) {
	args := m.Called(ctx, q)
	return args.Get(0).(schema.StatsResponse), args.Error(1)
}

func (m *mockFetcher) FetchFilterOptions(ctx context.Context, q schema.Query) (schema.FilterOptionsResponse, error) {
	args := m.Called(ctx, q)
	return args.Get(0).(schema.FilterOptionsResponse), args.Error(1)
}

// recordingTable remembers what the dashboard rendered last.
type recordingTable struct {
	states  []string
	view    schema.TableView
	failure error
}

var _ contract.TableSink = &recordingTable{} // Compile-time check

func (r *recordingTable) Escaper() contract.Escaper { return contract.HTMLEscape }

func (r *recordingTable) RenderLoading(schema.ReviewKind) error {
	r.states = append(r.states, "loading")
	return nil
}

func (r *recordingTable) RenderRows(view schema.TableView) error {
	r.states = append(r.states, "rows")
	r.view = view
	return nil
}

func (r *recordingTable) RenderFailure(_ schema.ReviewKind, err error) error {
	r.states = append(r.states, "failure")
	r.failure = err
	return nil
}

// mockChartSink is a mock implementation of ChartSink for testing.
type mockChartSink struct {
	mock.Mock
}

var _ contract.ChartSink = &mockChartSink{} // Compile-time check

func (m *mockChartSink) Acquire(stat schema.StatKind) (contract.ChartHandle, error) {
	args := m.Called(stat)
	h, _ := args.Get(0).(contract.ChartHandle)
	return h, args.Error(1)
}

// mockChartHandle is a mock implementation of ChartHandle for testing.
type mockChartHandle struct {
	mock.Mock
}

var _ contract.ChartHandle = &mockChartHandle{} // Compile-time check

func (m *mockChartHandle) Draw(series schema.ChartSeries) error {
	return m.Called(series).Error(0)
}

func (m *mockChartHandle) Release() error {
	return m.Called().Error(0)
}

