package schema

// Custom string types for type safety.
type (
	// ReviewKind represents which review log is being browsed.
	ReviewKind string

	// ScoreBand represents the display classification of a review score.
	ScoreBand string

	// StatKind represents one of the aggregate statistics returned by the stats endpoint.
	StatKind string

	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the database backend for load history.
	DatabaseBackend string

	// LoadOperation represents which endpoint a dashboard load hit.
	LoadOperation string

	// LoadStatus represents how a dashboard load ended.
	LoadStatus string
)

// All review kinds supported. The values are the wire values of the type parameter.
const (
	MergeRequestKind ReviewKind = "mr" // default
	PushKind         ReviewKind = "push"
)

// All score bands.
const (
	HighBand   ScoreBand = "HIGH"
	MediumBand ScoreBand = "MEDIUM"
	LowBand    ScoreBand = "LOW"
)

// All aggregate statistics. The values match the field names of the stats response.
const (
	ProjectCountsStat   StatKind = "project_counts"
	ProjectScoresStat   StatKind = "project_scores"
	AuthorCountsStat    StatKind = "author_counts"
	AuthorScoresStat    StatKind = "author_scores"
	AuthorCodeLinesStat StatKind = "author_code_lines"
)

// All output modes supported.
const (
	CSVOut     OutputMode = "csv"
	TextOut    OutputMode = "text" // default
	JSONOut    OutputMode = "json"
	ParquetOut OutputMode = "parquet"
)

// All history backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

// All load operations tracked in history.
const (
	LogsOperation          LoadOperation = "logs"
	StatsOperation         LoadOperation = "stats"
	FilterOptionsOperation LoadOperation = "filter_options"
)

// All load statuses.
const (
	LoadOK     LoadStatus = "ok"
	LoadFailed LoadStatus = "failed"
)

// Query parameter keys understood by the review endpoints.
const (
	TypeParam         = "type"
	UpdatedAtGTEParam = "updated_at_gte"
	UpdatedAtLTEParam = "updated_at_lte"
	AuthorsParam      = "authors"
	ProjectNamesParam = "project_names"
)

// AllStatKinds lists the statistics in the order the chart view lays them out.
var AllStatKinds = []StatKind{
	ProjectCountsStat,
	ProjectScoresStat,
	AuthorCountsStat,
	AuthorScoresStat,
	AuthorCodeLinesStat,
}

// ValidReviewKinds lists all valid review kinds.
var ValidReviewKinds = map[ReviewKind]struct{}{
	MergeRequestKind: {},
	PushKind:         {},
}

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	CSVOut:     {},
	TextOut:    {},
	JSONOut:    {},
	ParquetOut: {},
}

// ValidDatabaseBackends lists all valid history backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}
