package core

import "github.com/huangsam/reviewdash/schema"

var (
	mergeRequestColumns = []string{"Project", "Author", "Source Branch", "Target Branch", "Updated At", "Commit Messages", "Delta", "Score", "Link"}
	pushColumns         = []string{"Project", "Author", "Branch", "Updated At", "Commit Messages", "Delta", "Score"}
)

// TableColumns returns the column headers for kind: nine for merge requests,
// seven for pushes.
func TableColumns(kind schema.ReviewKind) []string {
	if kind == schema.MergeRequestKind {
		return append([]string(nil), mergeRequestColumns...)
	}
	return append([]string(nil), pushColumns...)
}

// ColumnCount returns len(TableColumns(kind)).
func ColumnCount(kind schema.ReviewKind) int {
	if kind == schema.MergeRequestKind {
		return len(mergeRequestColumns)
	}
	return len(pushColumns)
}

// RowCells lines a row up with TableColumns(kind). A merge request without a
// link gets an empty Link cell.
func RowCells(row schema.DisplayRow, kind schema.ReviewKind) []string {
	cells := make([]string, 0, ColumnCount(kind))
	cells = append(cells, row.ProjectName, row.Author, row.Branch)
	if kind == schema.MergeRequestKind {
		cells = append(cells, deref(row.TargetBranch))
	}
	cells = append(cells, row.UpdatedAt, row.CommitMessages, row.Delta, row.ScoreText)
	if kind == schema.MergeRequestKind {
		cells = append(cells, deref(row.ActionLink))
	}
	return cells
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
