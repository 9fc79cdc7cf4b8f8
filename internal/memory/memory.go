// Package memory defines the translation-memory match contract consumed by
// the pre-translation engine. Ranking is delegated to the backing service;
// this package only shapes queries and results.
package memory

import "context"

type Query struct {
	SourceIDs       []string
	SourceText      string
	ContextPrev     string
	ContextNext     string
	MinMatchPercent int
	MaxResults      int
}

type Match struct {
	TargetText     string `json:"targetText"`
	MatchPercent   int    `json:"matchPercent"`
	IsContextMatch bool   `json:"isContextMatch"`
}

// Entry is a stored translation-memory unit. ContextPrev/ContextNext hold the
// source text surrounding the entry in its original document.
type Entry struct {
	ID          string `json:"id"`
	SourceText  string `json:"sourceText"`
	TargetText  string `json:"targetText"`
	ContextPrev string `json:"contextPrev"`
	ContextNext string `json:"contextNext"`
}

// Matcher returns ranked matches, best first.
type Matcher interface {
	FindMatches(ctx context.Context, q Query) ([]Match, error)
}
