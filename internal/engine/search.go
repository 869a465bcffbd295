package engine

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// SearchResult is one full-text match: the document and a bounded
// excerpt around the first occurrence of the query.
type SearchResult struct {
	NodeID  string
	Title   string
	Snippet string
}

// snippetContext is the number of runes kept on each side of a match.
const snippetContext = 60

// SearchByBody finds documents whose current content contains the query,
// case-insensitively. Results are ordered by updated_at recency and
// capped at limit. The search is deliberately not tree-aware: callers
// scope results to a subtree by intersecting with Descendants.
func (e *Engine) SearchByBody(query string, limit int) ([]SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" || limit <= 0 {
		return nil, nil
	}

	docs, err := e.db.ListDocuments()
	if err != nil {
		return nil, storageErr("listing documents", err)
	}

	var results []SearchResult
	for _, doc := range docs {
		if doc.CurrentContentHash == nil {
			continue
		}
		content, err := e.ReadContent(*doc.CurrentContentHash)
		if err != nil {
			return nil, err
		}
		body := string(content)
		start, end := foldIndex(body, query)
		if start < 0 {
			continue
		}
		results = append(results, SearchResult{
			NodeID:  doc.ID,
			Title:   doc.Title,
			Snippet: makeSnippet(body, start, end-start),
		})
		if len(results) >= limit {
			break
		}
	}
	return results, nil
}

// foldIndex finds the first case-insensitive occurrence of needle in
// body and returns its byte bounds in the original string, or (-1, 0).
// Lowercasing can change a rune's encoded width ('İ' shrinks to 'i'),
// so offsets found in the lowered copy are mapped back to the original
// through a per-byte table. Both bounds land on rune starts.
func foldIndex(body, needle string) (int, int) {
	var lowered strings.Builder
	lowered.Grow(len(body))
	offsets := make([]int, 0, len(body))
	for i, r := range body {
		lr := unicode.ToLower(r)
		for n := utf8.RuneLen(lr); n > 0; n-- {
			offsets = append(offsets, i)
		}
		lowered.WriteRune(lr)
	}

	loweredNeedle := strings.ToLower(needle)
	idx := strings.Index(lowered.String(), loweredNeedle)
	if idx < 0 {
		return -1, 0
	}
	start := offsets[idx]
	end := len(body)
	if next := idx + len(loweredNeedle); next < len(offsets) {
		end = offsets[next]
	}
	return start, end
}

// makeSnippet extracts a single-line excerpt of bounded length around
// the match at byte offset idx. Truncated edges are marked with
// ellipses.
func makeSnippet(body string, idx, matchLen int) string {
	before := []rune(body[:idx])
	match := []rune(body[idx : idx+matchLen])
	after := []rune(body[idx+matchLen:])

	start := 0
	if len(before) > snippetContext {
		start = len(before) - snippetContext
	}
	end := len(after)
	if end > snippetContext {
		end = snippetContext
	}

	var b strings.Builder
	if start > 0 {
		b.WriteString("…")
	}
	b.WriteString(string(before[start:]))
	b.WriteString(string(match))
	b.WriteString(string(after[:end]))
	if end < len(after) {
		b.WriteString("…")
	}

	return strings.Join(strings.Fields(b.String()), " ")
}
