package schema

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRawRecordText(t *testing.T) {
	rec := RawRecord{
		"author":       "alice",
		"project_name": nil,
		"score":        85.5,
		"count":        float64(12),
		"flag":         true,
		"nested":       map[string]any{"a": 1},
	}

	assert.Equal(t, "alice", rec.Text("author"))
	assert.Equal(t, "", rec.Text("project_name"))
	assert.Equal(t, "", rec.Text("missing"))
	assert.Equal(t, "85.5", rec.Text("score"))
	assert.Equal(t, "12", rec.Text("count"))
	assert.Equal(t, "true", rec.Text("flag"))
	assert.Equal(t, "", rec.Text("nested"))
}

func TestRawRecordNumber(t *testing.T) {
	tests := []struct {
		name   string
		value  any
		want   float64
		wantOK bool
	}{
		{"float", 85.0, 85, true},
		{"numeric string", "72.5", 72.5, true},
		{"blank string", "  ", 0, false},
		{"text", "n/a", 0, false},
		{"null", nil, 0, false},
		{"nan", math.NaN(), 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := RawRecord{"score": tt.value}.Number("score")
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}

	_, ok := RawRecord{}.Number("score")
	assert.False(t, ok)
}

func TestFilterSelectionSingle(t *testing.T) {
	sel := FilterSelection{Authors: []string{"bob", "alice"}, Projects: []string{"web"}}
	single := sel.Single()
	assert.Equal(t, []string{"bob"}, single.Authors)
	assert.Equal(t, []string{"web"}, single.Projects)

	assert.Empty(t, FilterSelection{}.Single().Authors)
	assert.Empty(t, FilterSelection{}.Single().Projects)
}

func TestStatEntryUnmarshalLenient(t *testing.T) {
	var entries []StatEntry
	body := `[{"name":"web","count":3},{"name":42,"average_score":"71.5"},{"code_lines":null}]`
	require.NoError(t, json.Unmarshal([]byte(body), &entries))
	require.Len(t, entries, 3)

	assert.Equal(t, "web", entries[0].Name)
	require.NotNil(t, entries[0].Count)
	assert.Equal(t, 3.0, *entries[0].Count)
	assert.Nil(t, entries[0].AverageScore)

	assert.Equal(t, "42", entries[1].Name)
	require.NotNil(t, entries[1].AverageScore)
	assert.Equal(t, 71.5, *entries[1].AverageScore)

	assert.Equal(t, "", entries[2].Name)
	assert.Nil(t, entries[2].CodeLines)
}

func TestStatsResponseEntries(t *testing.T) {
	resp := StatsResponse{
		ProjectCounts:   []StatEntry{{Name: "a"}},
		AuthorCodeLines: []StatEntry{{Name: "b"}, {Name: "c"}},
	}
	assert.Len(t, resp.Entries(ProjectCountsStat), 1)
	assert.Len(t, resp.Entries(AuthorCodeLinesStat), 2)
	assert.Empty(t, resp.Entries(AuthorScoresStat))
	assert.Nil(t, resp.Entries(StatKind("unknown")))
}

func TestDisplayRowJSONOmitsMergeRequestFields(t *testing.T) {
	row := DisplayRow{ProjectName: "web", ScoreBand: LowBand}
	data, err := json.Marshal(row)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.NotContains(t, decoded, "target_branch")
	assert.NotContains(t, decoded, "url")
	assert.Equal(t, "web", decoded["project_name"])
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-01-31")
	require.NoError(t, err)
	assert.Equal(t, Date{Year: 2024, Month: time.January, Day: 31}, d)
	assert.Equal(t, "2024-01-31", d.String())

	empty, err := ParseDate("  ")
	require.NoError(t, err)
	assert.True(t, empty.IsZero())
	assert.Equal(t, "", empty.String())

	_, err = ParseDate("31/01/2024")
	assert.Error(t, err)
}

func TestDateAddDaysAndLastDays(t *testing.T) {
	d := Date{Year: 2024, Month: time.March, Day: 3}
	assert.Equal(t, Date{Year: 2024, Month: time.February, Day: 25}, d.AddDays(-7))
	assert.Equal(t, Date{Year: 2024, Month: time.March, Day: 4}, d.AddDays(1))

	r := LastDays(d, 7)
	assert.Equal(t, "2024-02-25", r.Start.String())
	assert.Equal(t, "2024-03-03", r.End.String())
}

func TestQueryEncodePreservesOrder(t *testing.T) {
	q := Query{}.
		Add(TypeParam, "mr").
		Add(AuthorsParam, "bob").
		Add(AuthorsParam, "alice & co").
		Add(ProjectNamesParam, "web")

	assert.Equal(t, "type=mr&authors=bob&authors=alice+%26+co&project_names=web", q.Encode())
	assert.Equal(t, []string{"bob", "alice & co"}, q.Values(AuthorsParam))
	assert.Equal(t, "mr", q.Get(TypeParam))
	assert.Equal(t, "", q.Get(UpdatedAtGTEParam))
	assert.True(t, q.Has(ProjectNamesParam))
	assert.False(t, q.Has(UpdatedAtLTEParam))
	assert.Equal(t, "", Query{}.Encode())
}
