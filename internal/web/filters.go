package web

import (
	"net/url"

	"github.com/huangsam/reviewdash/internal/contract"
	"github.com/huangsam/reviewdash/schema"
)

// filterParams are the filters carried by a dashboard request.
type filterParams struct {
	Type     string
	Start    string
	End      string
	Authors  []string
	Projects []string
	Reset    bool
}

// parseFilters reads the filters of a request. A date that is sent empty
// clears that bound; a date that is not sent keeps the session's bound.
func parseFilters(q url.Values) filterParams {
	p := filterParams{
		Type:     q.Get("type"),
		Start:    q.Get("start"),
		End:      q.Get("end"),
		Authors:  nonEmpty(q["authors"]),
		Projects: nonEmpty(q["projects"]),
		Reset:    q.Get("reset") != "",
	}
	if q.Has("start") && p.Start == "" {
		p.Start = contract.NoBound
	}
	if q.Has("end") && p.End == "" {
		p.End = contract.NoBound
	}
	return p
}

func nonEmpty(values []string) []string {
	var out []string
	for _, v := range values {
		if !schema.IsBlank(v) {
			out = append(out, v)
		}
	}
	return out
}

// applyFilters moves the session to the requested filters. chart selects
// which selection (multi-select table or single-select chart) is replaced.
// The caller holds s.mu.
func (s *Server) applyFilters(p filterParams, chart bool) error {
	sess := s.dashboard.Session()
	if p.Reset {
		sess.Reset(sess.Today(s.now()))
	}

	target := &contract.Config{Kind: sess.Kind, Range: sess.Range}
	if err := contract.RevalidateFilters(target, p.Type, p.Start, p.End); err != nil {
		return err
	}
	sess.SwitchKind(target.Kind)
	sess.Range = target.Range

	sel := schema.FilterSelection{Authors: p.Authors, Projects: p.Projects}
	if chart {
		sess.ChartSelection = sel.Single()
	} else {
		sess.Selection = sel
	}
	return nil
}

// switchKind changes only the review kind, keeping the other filters unless
// the kind changes. The caller holds s.mu.
func (s *Server) switchKind(kind string) error {
	sess := s.dashboard.Session()
	target := &contract.Config{Kind: sess.Kind, Range: sess.Range}
	if err := contract.RevalidateFilters(target, kind, "", ""); err != nil {
		return err
	}
	sess.SwitchKind(target.Kind)
	return nil
}
