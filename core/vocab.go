package core

import (
	"slices"

	"github.com/huangsam/reviewdash/internal/contract"
	"github.com/huangsam/reviewdash/schema"
)

// MergeVocabulary returns the sorted union of existing and observed values,
// without empty or whitespace-only entries, and with every non-empty selected
// value present. Values compare by exact string equality and sort in Go's
// byte-wise order. The inputs are not modified.
func MergeVocabulary(existing, observed []string, selected ...string) []string {
	seen := make(map[string]struct{}, len(existing)+len(observed)+len(selected))
	out := make([]string, 0, len(existing)+len(observed)+len(selected))
	add := func(v string) {
		if schema.IsBlank(v) {
			return
		}
		if _, ok := seen[v]; ok {
			return
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	for _, v := range existing {
		add(v)
	}
	for _, v := range observed {
		add(v)
	}
	for _, v := range selected {
		add(v)
	}
	slices.Sort(out)
	return out
}

// VocabularySet is the running set of known authors and project names for
// one review kind. It only grows until Reset.
type VocabularySet struct {
	authors  []string
	projects []string
}

// Authors returns a copy of the known authors.
func (v *VocabularySet) Authors() []string {
	return slices.Clone(v.authors)
}

// Projects returns a copy of the known project names.
func (v *VocabularySet) Projects() []string {
	return slices.Clone(v.projects)
}

// Options returns the set passed through escape, ready for a sink.
func (v *VocabularySet) Options(escape contract.Escaper) schema.FilterOptions {
	opts := schema.FilterOptions{
		Authors:      make([]string, len(v.authors)),
		ProjectNames: make([]string, len(v.projects)),
	}
	for i, a := range v.authors {
		opts.Authors[i] = escape(a)
	}
	for i, p := range v.projects {
		opts.ProjectNames[i] = escape(p)
	}
	return opts
}

// Merge folds observed values into the set, keeping the current selection.
func (v *VocabularySet) Merge(authors, projects []string, sel schema.FilterSelection) {
	v.authors = MergeVocabulary(v.authors, authors, sel.Authors...)
	v.projects = MergeVocabulary(v.projects, projects, sel.Projects...)
}

// ObserveRecords folds the author and project_name of every record into the set.
func (v *VocabularySet) ObserveRecords(records []schema.RawRecord, sel schema.FilterSelection) {
	authors := make([]string, 0, len(records))
	projects := make([]string, 0, len(records))
	for _, rec := range records {
		authors = append(authors, rec.Text("author"))
		projects = append(projects, rec.Text("project_name"))
	}
	v.Merge(authors, projects, sel)
}

// Reset empties the set. It is called when the review kind changes.
func (v *VocabularySet) Reset() {
	v.authors = nil
	v.projects = nil
}
