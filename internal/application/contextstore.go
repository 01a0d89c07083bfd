package application

import (
	"fmt"

	"github.com/bnema/chatfs/internal/domain"
)

// ContextStore holds the documents pinned into the model's working set.
// Content is bounded per document so the assembled prompt stays bounded too.
type ContextStore struct {
	maxDocBytes int
	docs        map[string]domain.ContextDocument
	order       []string
}

func NewContextStore(maxDocBytes int) *ContextStore {
	return &ContextStore{
		maxDocBytes: maxDocBytes,
		docs:        make(map[string]domain.ContextDocument),
	}
}

func (s *ContextStore) MaxDocBytes() int { return s.maxDocBytes }

// Add pins content under its display path. Re-adding a path replaces the
// content in place and keeps its listing position. Oversized content is
// rejected outright, never truncated.
func (s *ContextStore) Add(path, content string) (domain.ContextOutcome, error) {
	if len(content) > s.maxDocBytes {
		return "", fmt.Errorf("%s (%d bytes, limit %d): %w",
			path, len(content), s.maxDocBytes, domain.ErrDocumentTooLarge)
	}

	_, exists := s.docs[path]
	s.docs[path] = domain.ContextDocument{Path: path, Content: content}
	if !exists {
		s.order = append(s.order, path)
		return domain.ContextAdded, nil
	}
	return domain.ContextUpdated, nil
}

// AddMany applies Add per entry and reports every outcome individually so
// the caller can render precise feedback.
func (s *ContextStore) AddMany(entries []domain.ContextEntry) []domain.ContextEntryReport {
	reports := make([]domain.ContextEntryReport, 0, len(entries))
	for _, entry := range entries {
		outcome, err := s.Add(entry.Path, entry.Content)
		if err != nil {
			reports = append(reports, domain.ContextEntryReport{
				Path:    entry.Path,
				Outcome: domain.ContextSkipped,
				Reason:  fmt.Sprintf("exceeds pin limit (%d > %d bytes)", len(entry.Content), s.maxDocBytes),
			})
			continue
		}
		reports = append(reports, domain.ContextEntryReport{
			Path:      entry.Path,
			Outcome:   outcome,
			SizeBytes: len(entry.Content),
		})
	}
	return reports
}

// List returns copies in pin order.
func (s *ContextStore) List() []domain.ContextDocument {
	out := make([]domain.ContextDocument, 0, len(s.order))
	for _, path := range s.order {
		out = append(out, s.docs[path])
	}
	return out
}

// Clear drops every pin and reports how many were dropped.
func (s *ContextStore) Clear() int {
	n := len(s.order)
	s.docs = make(map[string]domain.ContextDocument)
	s.order = nil
	return n
}

// RemoveIfDeleted drops the pin for a path whose underlying file is gone.
func (s *ContextStore) RemoveIfDeleted(path string) bool {
	if _, ok := s.docs[path]; !ok {
		return false
	}
	delete(s.docs, path)
	for i, p := range s.order {
		if p == path {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

func (s *ContextStore) Len() int { return len(s.order) }
