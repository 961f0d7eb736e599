package core

import (
	"testing"
	"time"

	"github.com/huangsam/reviewdash/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) schema.Date {
	return schema.Date{Year: y, Month: m, Day: d}
}

func TestToQueryBoundsStartOnly(t *testing.T) {
	bounds := ToQueryBounds(schema.DateRange{Start: day(2024, time.January, 1)}, time.UTC)
	require.NotNil(t, bounds.GTE)
	assert.Nil(t, bounds.LTE)
	assert.Equal(t, int64(1704067200), *bounds.GTE)
}

func TestToQueryBoundsEndOnly(t *testing.T) {
	bounds := ToQueryBounds(schema.DateRange{End: day(2024, time.January, 1)}, time.UTC)
	assert.Nil(t, bounds.GTE)
	require.NotNil(t, bounds.LTE)
	assert.Equal(t, int64(1704153599), *bounds.LTE)
}

func TestToQueryBoundsAbsent(t *testing.T) {
	bounds := ToQueryBounds(schema.DateRange{}, time.UTC)
	assert.Nil(t, bounds.GTE)
	assert.Nil(t, bounds.LTE)
}

func TestToQueryBoundsSameDay(t *testing.T) {
	zones := []*time.Location{
		time.UTC,
		time.FixedZone("UTC+8", 8*3600),
		time.FixedZone("UTC-5", -5*3600),
	}
	for _, loc := range zones {
		t.Run(loc.String(), func(t *testing.T) {
			d := day(2024, time.June, 15)
			bounds := ToQueryBounds(schema.DateRange{Start: d, End: d}, loc)
			require.NotNil(t, bounds.GTE)
			require.NotNil(t, bounds.LTE)
			assert.Less(t, *bounds.GTE, *bounds.LTE)
			assert.Equal(t, int64(86399), *bounds.LTE-*bounds.GTE)

			start := time.Unix(*bounds.GTE, 0).In(loc)
			assert.Equal(t, 0, start.Hour())
			assert.Equal(t, 15, start.Day())
			end := time.Unix(*bounds.LTE, 0).In(loc)
			assert.Equal(t, []int{23, 59, 59}, []int{end.Hour(), end.Minute(), end.Second()})
		})
	}
}

func TestToQueryBoundsLocalTime(t *testing.T) {
	d := day(2024, time.February, 29)
	bounds := ToQueryBounds(schema.DateRange{Start: d}, nil)
	require.NotNil(t, bounds.GTE)
	assert.Equal(t, time.Date(2024, time.February, 29, 0, 0, 0, 0, time.Local).Unix(), *bounds.GTE)
}
