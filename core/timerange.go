package core

import (
	"time"

	"github.com/huangsam/reviewdash/schema"
)

// ToQueryBounds expands a date range to inclusive epoch-second boundaries in
// loc: the start date at 00:00:00 and the end date at 23:59:59. A nil loc
// means time.Local. Absent dates produce nil bounds.
func ToQueryBounds(r schema.DateRange, loc *time.Location) schema.QueryBounds {
	if loc == nil {
		loc = time.Local
	}
	var bounds schema.QueryBounds
	if !r.Start.IsZero() {
		gte := r.Start.At(0, 0, 0, loc).Unix()
		bounds.GTE = &gte
	}
	if !r.End.IsZero() {
		lte := r.End.At(23, 59, 59, loc).Unix()
		bounds.LTE = &lte
	}
	return bounds
}
