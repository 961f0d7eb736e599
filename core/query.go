package core

import (
	"strconv"
	"time"

	"github.com/huangsam/reviewdash/schema"
)

// BuildQuery assembles the canonical query for the logs and stats endpoints.
// Parameters appear in a fixed order: type, the lower and upper bounds when
// present, one authors entry per non-empty author, then one project_names
// entry per non-empty project. Selection order is preserved.
func BuildQuery(kind schema.ReviewKind, r schema.DateRange, authors, projects []string, loc *time.Location) schema.Query {
	q := make(schema.Query, 0, 3+len(authors)+len(projects))
	q = q.Add(schema.TypeParam, string(kind))

	bounds := ToQueryBounds(r, loc)
	if bounds.GTE != nil {
		q = q.Add(schema.UpdatedAtGTEParam, strconv.FormatInt(*bounds.GTE, 10))
	}
	if bounds.LTE != nil {
		q = q.Add(schema.UpdatedAtLTEParam, strconv.FormatInt(*bounds.LTE, 10))
	}
	for _, a := range authors {
		if a != "" {
			q = q.Add(schema.AuthorsParam, a)
		}
	}
	for _, p := range projects {
		if p != "" {
			q = q.Add(schema.ProjectNamesParam, p)
		}
	}
	return q
}

// FilterOptionsQuery returns the query for the filter-options endpoint.
func FilterOptionsQuery(kind schema.ReviewKind) schema.Query {
	return schema.Query{}.Add(schema.TypeParam, string(kind))
}
