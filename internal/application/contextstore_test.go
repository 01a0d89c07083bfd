package application

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/chatfs/internal/domain"
)

func TestContextStoreAddAndUpdate(t *testing.T) {
	s := NewContextStore(64)

	outcome, err := s.Add("notes.md", "first")
	require.NoError(t, err)
	assert.Equal(t, domain.ContextAdded, outcome)

	outcome, err = s.Add("notes.md", "second")
	require.NoError(t, err)
	assert.Equal(t, domain.ContextUpdated, outcome)

	docs := s.List()
	require.Len(t, docs, 1)
	assert.Equal(t, "second", docs[0].Content)
}

func TestContextStoreRejectsOversizedDocument(t *testing.T) {
	s := NewContextStore(8)

	_, err := s.Add("big.txt", strings.Repeat("x", 9))
	require.ErrorIs(t, err, domain.ErrDocumentTooLarge)

	assert.Zero(t, s.Len())
}

func TestContextStoreListOrderIsStable(t *testing.T) {
	s := NewContextStore(64)

	_, err := s.Add("a.md", "1")
	require.NoError(t, err)
	_, err = s.Add("b.md", "2")
	require.NoError(t, err)
	_, err = s.Add("a.md", "updated")
	require.NoError(t, err)

	docs := s.List()
	require.Len(t, docs, 2)
	assert.Equal(t, "a.md", docs[0].Path)
	assert.Equal(t, "updated", docs[0].Content)
	assert.Equal(t, "b.md", docs[1].Path)
}

func TestContextStoreAddManyReportsEveryEntry(t *testing.T) {
	s := NewContextStore(8)

	reports := s.AddMany([]domain.ContextEntry{
		{Path: "ok.txt", Content: "short"},
		{Path: "big.txt", Content: strings.Repeat("x", 20)},
		{Path: "ok.txt", Content: "again"},
	})

	require.Len(t, reports, 3)
	assert.Equal(t, domain.ContextAdded, reports[0].Outcome)
	assert.Equal(t, domain.ContextSkipped, reports[1].Outcome)
	assert.Contains(t, reports[1].Reason, "exceeds pin limit")
	assert.Equal(t, domain.ContextUpdated, reports[2].Outcome)

	assert.Equal(t, 1, s.Len())
}

func TestContextStoreClear(t *testing.T) {
	s := NewContextStore(64)
	_, err := s.Add("a.md", "1")
	require.NoError(t, err)
	_, err = s.Add("b.md", "2")
	require.NoError(t, err)

	assert.Equal(t, 2, s.Clear())
	assert.Empty(t, s.List())
	assert.Zero(t, s.Clear())
}

func TestContextStoreRemoveIfDeleted(t *testing.T) {
	s := NewContextStore(64)
	_, err := s.Add("a.md", "1")
	require.NoError(t, err)
	_, err = s.Add("b.md", "2")
	require.NoError(t, err)

	assert.True(t, s.RemoveIfDeleted("a.md"))
	assert.False(t, s.RemoveIfDeleted("a.md"))

	docs := s.List()
	require.Len(t, docs, 1)
	assert.Equal(t, "b.md", docs[0].Path)
}
