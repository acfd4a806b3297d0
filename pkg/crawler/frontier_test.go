package crawler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"twgraph/pkg/twitter"
)

func testThresholds() Thresholds {
	return Thresholds{
		TweetsMin:    5,
		FollowersMax: 10000,
		FriendsMax:   5000,
	}
}

func TestClassify(t *testing.T) {
	f := NewFrontier(testThresholds())

	tests := []struct {
		name    string
		profile twitter.Profile
		want    Disposition
	}{
		{
			name:    "inactive at the floor",
			profile: twitter.Profile{StatusesCount: 5},
			want:    DispositionIgnoredInactive,
		},
		{
			name:    "inactive below the floor",
			profile: twitter.Profile{StatusesCount: 3},
			want:    DispositionIgnoredInactive,
		},
		{
			name:    "too many followers",
			profile: twitter.Profile{StatusesCount: 100, FollowersCount: 20000},
			want:    DispositionIgnoredTooBig,
		},
		{
			name:    "too many friends",
			profile: twitter.Profile{StatusesCount: 100, FriendsCount: 5000},
			want:    DispositionIgnoredTooBig,
		},
		{
			name:    "protected wins over every count",
			profile: twitter.Profile{Protected: true, StatusesCount: 100, FollowersCount: 20000},
			want:    DispositionIgnoredProtected,
		},
		{
			name:    "eligible",
			profile: twitter.Profile{StatusesCount: 100, FollowersCount: 10, FriendsCount: 10},
			want:    DispositionToVisit,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, f.Classify(&tt.profile))
		})
	}
}

func TestAddIgnoresKnownAndEmpty(t *testing.T) {
	f := NewFrontier(testThresholds())

	assert.True(t, f.Add("100"))
	assert.False(t, f.Add("100"), "known identity must not be re-added")
	assert.False(t, f.Add(""), "failure marker carries no identity")
	assert.Equal(t, 1, f.Known())
	assert.Equal(t, 1, f.PendingCount())
}

func TestNextPendingSkipsResolved(t *testing.T) {
	f := NewFrontier(testThresholds())
	f.Add("1")
	f.Add("2")
	f.Add("3")

	// "2" resolves before it is dequeued
	f.RecordProfile("2", &twitter.Profile{IDStr: "2", ScreenName: "bob", Protected: true})

	id, ok := f.NextPending()
	require.True(t, ok)
	assert.Equal(t, "1", id)

	id, ok = f.NextPending()
	require.True(t, ok)
	assert.Equal(t, "3", id, "discovery order preserved, resolved entry skipped")

	_, ok = f.NextPending()
	assert.False(t, ok)
}

func TestDispositionsOnlyMoveForward(t *testing.T) {
	f := NewFrontier(testThresholds())
	f.Add("1")

	got := f.RecordProfile("1", &twitter.Profile{IDStr: "1", ScreenName: "alice", Protected: true})
	assert.Equal(t, DispositionIgnoredProtected, got)

	// a later profile fetch must not resurrect a resolved record
	got = f.RecordProfile("1", &twitter.Profile{IDStr: "1", ScreenName: "alice", StatusesCount: 100})
	assert.Equal(t, DispositionIgnoredProtected, got)
	assert.Equal(t, 0, f.PendingCount())
}

func TestSummariesPartition(t *testing.T) {
	f := NewFrontier(testThresholds())
	f.Add("1")
	f.Add("2")
	f.Add("3")

	f.RecordProfile("1", &twitter.Profile{IDStr: "1", ScreenName: "alice", StatusesCount: 100})
	f.MarkVisited("1", "alice")
	f.MarkProtected("2", "bob")

	resolved := f.ResolvedSummaries()
	require.Len(t, resolved, 1)
	assert.Equal(t, "alice", resolved["1"].Name)
	assert.Equal(t, string(DispositionVisited), resolved["1"].Disposition)

	unresolved := f.UnresolvedSummaries()
	require.Len(t, unresolved, 2)
	assert.Equal(t, string(DispositionIgnoredProtected), unresolved["2"].Disposition)
	assert.Equal(t, string(DispositionToVisit), unresolved["3"].Disposition)

	counts := f.Counts()
	assert.Equal(t, 1, counts[string(DispositionVisited)])
	assert.Equal(t, 1, counts[string(DispositionIgnoredProtected)])
	assert.Equal(t, 1, counts[string(DispositionToVisit)])
}
