package core

import (
	"fmt"

	"github.com/huangsam/reviewdash/internal/contract"
	"github.com/huangsam/reviewdash/schema"
)

// Raw record field names as sent by the logs endpoint.
const (
	fieldProjectName    = "project_name"
	fieldAuthor         = "author"
	fieldUpdatedAt      = "updated_at"
	fieldCommitMessages = "commit_messages"
	fieldDelta          = "delta"
	fieldScore          = "score"
	fieldSourceBranch   = "source_branch"
	fieldBranch         = "branch"
	fieldTargetBranch   = "target_branch"
	fieldURL            = "url"
	fieldAdditions      = "additions"
	fieldDeletions      = "deletions"
)

// ProjectRecord maps one raw record to the display fields of kind. Every
// emitted string goes through escape (HTML escaping when nil). Missing fields
// become empty strings and a missing score counts as 0; records are never
// rejected.
func ProjectRecord(rec schema.RawRecord, kind schema.ReviewKind, escape contract.Escaper) schema.DisplayRow {
	if escape == nil {
		escape = contract.HTMLEscape
	}

	score, _ := rec.Number(fieldScore)
	band := contract.GetScoreBand(score)

	branchField := fieldBranch
	if kind == schema.MergeRequestKind {
		branchField = fieldSourceBranch
	}

	row := schema.DisplayRow{
		ProjectName:    escape(rec.Text(fieldProjectName)),
		Author:         escape(rec.Text(fieldAuthor)),
		Branch:         escape(rec.Text(branchField)),
		UpdatedAt:      escape(rec.Text(fieldUpdatedAt)),
		CommitMessages: escape(rec.Text(fieldCommitMessages)),
		Delta:          escape(recordDelta(rec)),
		Score:          score,
		ScoreText:      escape(fmt.Sprintf("%.1f", score)),
		ScoreBand:      band,
	}

	// Push rows never carry merge request fields, even if the backend sent them.
	if kind == schema.MergeRequestKind {
		target := escape(rec.Text(fieldTargetBranch))
		row.TargetBranch = &target
		if url := rec.Text(fieldURL); url != "" {
			link := escape(url)
			row.ActionLink = &link
		}
	}
	return row
}

// ProjectRecords projects every record, in order.
func ProjectRecords(records []schema.RawRecord, kind schema.ReviewKind, escape contract.Escaper) []schema.DisplayRow {
	rows := make([]schema.DisplayRow, 0, len(records))
	for _, rec := range records {
		rows = append(rows, ProjectRecord(rec, kind, escape))
	}
	return rows
}

// recordDelta prefers the preformatted delta and otherwise derives it from
// additions and deletions the way the backend formats it.
func recordDelta(rec schema.RawRecord) string {
	if d := rec.Text(fieldDelta); d != "" {
		return d
	}
	adds, okAdds := rec.Number(fieldAdditions)
	dels, okDels := rec.Number(fieldDeletions)
	if !okAdds || !okDels {
		return ""
	}
	return fmt.Sprintf("+%d  -%d", int64(adds), int64(dels))
}
