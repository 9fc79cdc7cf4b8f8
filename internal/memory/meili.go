package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	meili "github.com/meilisearch/meilisearch-go"

	"lingua/api/internal/util"
)

const indexPrefix = "lingua_memory_"

// Meili implements Matcher on top of Meilisearch. Each translation memory is
// its own index; fuzzy ranking comes from Meilisearch's ranking score.
type Meili struct {
	client  meili.ServiceManager
	healthy atomic.Bool
	done    chan struct{}
}

// NewMeili creates a Meilisearch-backed matcher. The matcher stays usable
// when the initial connection fails; a background check marks it healthy once
// the service comes back.
func NewMeili(url, apiKey string) *Meili {
	client := meili.New(url, meili.WithAPIKey(apiKey))

	m := &Meili{
		client: client,
		done:   make(chan struct{}),
	}

	if _, err := client.Health(); err != nil {
		log.Printf("memory: meilisearch unavailable at %s: %v", url, err)
		m.healthy.Store(false)
	} else {
		m.healthy.Store(true)
	}

	go m.healthLoop()
	return m
}

func (m *Meili) healthLoop() {
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-m.done:
			return
		case <-ticker.C:
			_, err := m.client.Health()
			wasHealthy := m.healthy.Load()
			m.healthy.Store(err == nil)
			if err == nil && !wasHealthy {
				log.Println("memory: meilisearch recovered")
			}
		}
	}
}

// Close stops the background health monitor.
func (m *Meili) Close() {
	close(m.done)
}

// Healthy reports whether Meilisearch is reachable.
func (m *Meili) Healthy() bool {
	return m.healthy.Load()
}

// EnsureMemory creates the index for a translation memory if needed.
func (m *Meili) EnsureMemory(memoryID string) error {
	if _, err := m.client.CreateIndex(&meili.IndexConfig{
		Uid:        indexPrefix + memoryID,
		PrimaryKey: "id",
	}); err != nil {
		return fmt.Errorf("create memory index %s: %w", memoryID, err)
	}
	return nil
}

// AddEntries bulk-indexes translation units into a memory. Entries without an
// ID get one minted before indexing.
func (m *Meili) AddEntries(memoryID string, entries []Entry) error {
	if len(entries) == 0 {
		return nil
	}
	for i := range entries {
		if entries[i].ID == "" {
			entries[i].ID = util.NewID("tm")
		}
	}
	if _, err := m.client.Index(indexPrefix + memoryID).AddDocuments(entries, nil); err != nil {
		return fmt.Errorf("index memory entries: %w", err)
	}
	return nil
}

// FindMatches queries every requested memory and merges results best-first.
func (m *Meili) FindMatches(ctx context.Context, q Query) ([]Match, error) {
	if len(q.SourceIDs) == 0 {
		return nil, nil
	}
	if !m.healthy.Load() {
		return nil, fmt.Errorf("meilisearch unhealthy")
	}

	limit := int64(q.MaxResults)
	if limit == 0 {
		limit = 1
	}

	queries := make([]*meili.SearchRequest, 0, len(q.SourceIDs))
	for _, memoryID := range q.SourceIDs {
		queries = append(queries, &meili.SearchRequest{
			IndexUID:         indexPrefix + memoryID,
			Query:            q.SourceText,
			Limit:            limit,
			ShowRankingScore: true,
		})
	}

	resp, err := m.client.MultiSearch(&meili.MultiSearchRequest{Queries: queries})
	if err != nil {
		m.healthy.Store(false)
		return nil, fmt.Errorf("meilisearch multi-search: %w", err)
	}

	var matches []Match
	for _, result := range resp.Results {
		for _, hit := range result.Hits {
			entry := hitToEntry(hit)
			match := Match{
				TargetText:     entry.TargetText,
				MatchPercent:   matchPercent(q.SourceText, entry.SourceText, hitScore(hit)),
				IsContextMatch: isContextMatch(q, entry),
			}
			if match.TargetText == "" || match.MatchPercent < q.MinMatchPercent {
				continue
			}
			matches = append(matches, match)
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].MatchPercent != matches[j].MatchPercent {
			return matches[i].MatchPercent > matches[j].MatchPercent
		}
		return matches[i].IsContextMatch && !matches[j].IsContextMatch
	})
	if q.MaxResults > 0 && len(matches) > q.MaxResults {
		matches = matches[:q.MaxResults]
	}
	return matches, nil
}

// matchPercent maps a hit onto the 0-100 scale. Byte-identical source text is
// a 100% match; everything else is capped at 99 so fuzzy suggestions always
// land as drafts.
func matchPercent(queryText, entryText string, score float64) int {
	if entryText == queryText {
		return 100
	}
	percent := int(score * 100)
	if percent > 99 {
		percent = 99
	}
	if percent < 0 {
		percent = 0
	}
	return percent
}

func isContextMatch(q Query, entry Entry) bool {
	if entry.SourceText != q.SourceText {
		return false
	}
	return entry.ContextPrev == q.ContextPrev && entry.ContextNext == q.ContextNext
}

func hitToEntry(hit meili.Hit) Entry {
	return Entry{
		ID:          decodeString(hit, "id"),
		SourceText:  decodeString(hit, "sourceText"),
		TargetText:  decodeString(hit, "targetText"),
		ContextPrev: decodeString(hit, "contextPrev"),
		ContextNext: decodeString(hit, "contextNext"),
	}
}

func hitScore(hit meili.Hit) float64 {
	raw, ok := hit["_rankingScore"]
	if !ok {
		return 0
	}
	var score float64
	if err := json.Unmarshal(raw, &score); err != nil {
		return 0
	}
	return score
}

func decodeString(hit meili.Hit, key string) string {
	raw, ok := hit[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return strings.TrimSpace(s)
}
