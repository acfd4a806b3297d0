package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"twgraph/pkg/twitter"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	m, err := NewManager(t.TempDir())
	require.NoError(t, err)
	return m
}

func TestUserDocumentRoundTrip(t *testing.T) {
	m := newTestManager(t)

	doc := &UserDocument{
		ID:          "100",
		Name:        "alice",
		Disposition: "visited",
		Friends:     []string{"2", "3"},
		Followers:   []string{"4"},
		Tweets:      []string{"900"},
		Entities: &EntityTally{
			Hashtags:      map[string]int{"golang": 2},
			HashtagsCount: 2,
			URLs:          map[string]int{},
		},
	}

	assert.False(t, m.HasUserDocument("100"))
	require.NoError(t, m.WriteUserDocument(doc))
	assert.True(t, m.HasUserDocument("100"))

	loaded, err := m.LoadUserDocument("100")
	require.NoError(t, err)
	assert.Equal(t, doc, loaded)
}

func TestLoadUserDocumentMissing(t *testing.T) {
	m := newTestManager(t)

	doc, err := m.LoadUserDocument("nope")
	require.NoError(t, err)
	assert.Nil(t, doc)
}

func TestListUserDocuments(t *testing.T) {
	m := newTestManager(t)

	require.NoError(t, m.WriteUserDocument(&UserDocument{ID: "1", Name: "a"}))
	require.NoError(t, m.WriteUserDocument(&UserDocument{ID: "2", Name: "b"}))

	// a directory without a completed document is not resumable
	require.NoError(t, os.MkdirAll(filepath.Join(m.BaseDir(), "users", "3"), 0755))

	ids, err := m.ListUserDocuments()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"1", "2"}, ids)
}

func TestWriteTweetsAndEntities(t *testing.T) {
	m := newTestManager(t)

	tweets := []twitter.Tweet{{IDStr: "900", Text: "hello"}}
	require.NoError(t, m.WriteTweets("100", tweets))
	require.NoError(t, m.WriteEntities("100", NewEntityTally()))

	for _, name := range []string{tweetsFileName, entitiesFileName} {
		_, err := os.Stat(filepath.Join(m.BaseDir(), "users", "100", name))
		assert.NoError(t, err, name)
	}

	// tweets alone do not mark the user visited
	assert.False(t, m.HasUserDocument("100"))
}

func TestAggregateWrites(t *testing.T) {
	m := newTestManager(t)

	users := map[string]UserSummary{
		"1": {Name: "alice", Disposition: "visited"},
	}
	require.NoError(t, m.WriteResolved(users))
	require.NoError(t, m.WriteUnresolved(map[string]UserSummary{}))
	require.NoError(t, m.WriteRunStats(&RunStatsDocument{RequestsIssued: 12}))

	for _, name := range []string{resolvedFileName, unresolvedFileName, statsFileName} {
		_, err := os.Stat(filepath.Join(m.BaseDir(), name))
		assert.NoError(t, err, name)
	}
}

func TestWriteLeavesNoTempFiles(t *testing.T) {
	m := newTestManager(t)
	require.NoError(t, m.WriteUserDocument(&UserDocument{ID: "1", Name: "a"}))

	entries, err := os.ReadDir(filepath.Join(m.BaseDir(), "users", "1"))
	require.NoError(t, err)
	for _, entry := range entries {
		assert.NotContains(t, entry.Name(), ".tmp")
	}
}
