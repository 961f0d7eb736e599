package schema

import "time"

// LoadRun describes a dashboard load when it starts.
type LoadRun struct {
	RunID     string
	Operation LoadOperation
	Kind      ReviewKind
	Query     string
	StartTime time.Time
}

// LoadOutcome describes how a dashboard load ended.
type LoadOutcome struct {
	EndTime      time.Time
	Status       LoadStatus
	RecordCount  int
	AverageScore float64
	ErrorMessage string
}

// LoadRunRecord represents a row from the reviewdash_load_runs table.
type LoadRunRecord struct {
	RunID         string     `json:"run_id"`
	Operation     string     `json:"operation"`
	ReviewKind    string     `json:"review_kind"`
	Query         string     `json:"query"`
	StartTime     time.Time  `json:"start_time"`
	EndTime       *time.Time `json:"end_time"`
	RunDurationMs *int64     `json:"run_duration_ms"`
	RecordCount   *int64     `json:"record_count"`
	AverageScore  *float64   `json:"average_score"`
	Status        *string    `json:"status"`
	ErrorMessage  *string    `json:"error_message"`
}
