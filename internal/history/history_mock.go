package history

import (
	"github.com/huangsam/reviewdash/internal/contract"
	"github.com/huangsam/reviewdash/schema"
	"github.com/stretchr/testify/mock"
)

// MockStore is a mock implementation of HistoryStore for testing.
type MockStore struct {
	mock.Mock
}

var _ contract.HistoryStore = &MockStore{} // Compile-time check

// BeginLoad implements the HistoryStore interface.
func (m *MockStore) BeginLoad(run schema.LoadRun) error {
	return m.Called(run).Error(0)
}

// EndLoad implements the HistoryStore interface.
func (m *MockStore) EndLoad(runID string, outcome schema.LoadOutcome) error {
	return m.Called(runID, outcome).Error(0)
}

// GetStatus implements the HistoryStore interface.
func (m *MockStore) GetStatus() (schema.HistoryStatus, error) {
	args := m.Called()
	return args.Get(0).(schema.HistoryStatus), args.Error(1)
}

// GetAllLoadRuns implements the HistoryStore interface.
func (m *MockStore) GetAllLoadRuns() ([]schema.LoadRunRecord, error) {
	args := m.Called()
	runs, _ := args.Get(0).([]schema.LoadRunRecord)
	return runs, args.Error(1)
}

// Close implements the HistoryStore interface.
func (m *MockStore) Close() error {
	return m.Called().Error(0)
}
