package app

import (
	"context"
	"fmt"
	"net/http"

	"lingua/api/internal/memory"
	"lingua/api/internal/store"
	"lingua/api/internal/workflow"
)

type PreTranslateOptions struct {
	MatchSourceIDs    []string `json:"matchSourceIds"`
	MinMatchPercent   int      `json:"minMatchPercent"`
	OverwriteExisting bool     `json:"overwriteExisting"`
	By                string   `json:"by"`
}

type PreTranslateResult struct {
	TotalSegments int `json:"totalSegments"`
	PreTranslated int `json:"preTranslated"`
	ExactMatches  int `json:"exactMatches"`
	FuzzyMatches  int `json:"fuzzyMatches"`
}

// PreTranslate bulk-fills empty segments (or all of them when overwriting is
// requested) from the best memory match, one sequential lookup per segment
// with the neighbouring source texts as context. Exact matches land as
// translated; fuzzy matches land as draft so a human reviews them. With no
// memories selected it reports the segment count and does nothing.
func (s *Service) PreTranslate(ctx context.Context, documentID string, opts PreTranslateOptions) (PreTranslateResult, error) {
	if _, _, err := s.documentContext(ctx, documentID); err != nil {
		return PreTranslateResult{}, err
	}
	segments, err := s.store.ListSegments(ctx, documentID)
	if err != nil {
		return PreTranslateResult{}, err
	}

	result := PreTranslateResult{TotalSegments: len(segments)}
	if len(opts.MatchSourceIDs) == 0 {
		return result, nil
	}
	if s.matcher == nil {
		return result, domainError(http.StatusServiceUnavailable, "matcher_unavailable", "no translation memory matcher configured", nil)
	}

	minPercent := opts.MinMatchPercent
	if minPercent <= 0 {
		minPercent = 100
	}

	for i, seg := range segments {
		if !opts.OverwriteExisting && seg.TargetText != nil && *seg.TargetText != "" {
			continue
		}

		var prev, next string
		if i > 0 {
			prev = segments[i-1].SourceText
		}
		if i+1 < len(segments) {
			next = segments[i+1].SourceText
		}

		matches, err := s.matcher.FindMatches(ctx, memory.Query{
			SourceIDs:       opts.MatchSourceIDs,
			SourceText:      seg.SourceText,
			ContextPrev:     prev,
			ContextNext:     next,
			MinMatchPercent: minPercent,
			MaxResults:      1,
		})
		if err != nil {
			return result, fmt.Errorf("memory lookup for segment %s: %w", seg.ID, err)
		}
		if len(matches) == 0 {
			continue
		}

		best := matches[0]
		status := workflow.SegmentTranslated
		if best.MatchPercent >= 100 {
			result.ExactMatches++
		} else {
			status = workflow.SegmentDraft
			result.FuzzyMatches++
		}
		write := store.SegmentWrite{
			TargetText:     best.TargetText,
			Status:         string(status),
			ModifiedBy:     opts.By,
			MarkTranslated: status == workflow.SegmentTranslated,
		}
		if err := s.store.UpdateSegmentContent(ctx, seg.ID, write); err != nil {
			return result, fmt.Errorf("pre-translate segment %s: %w", seg.ID, err)
		}
		result.PreTranslated++
	}

	if result.PreTranslated > 0 {
		if _, err := s.Refresh(ctx, documentID); err != nil {
			return result, err
		}
	}
	return result, nil
}
