package crawler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"twgraph/pkg/config"
	"twgraph/pkg/ratelimit"
	"twgraph/pkg/storage"
	"twgraph/pkg/twitter"
	"twgraph/pkg/ui"
)

type fixtureUser struct {
	profile   twitter.Profile
	friends   []string
	followers []string
	tweets    []twitter.Tweet
}

// fixtureAPI is an in-memory graph served over httptest, counting every
// request per identity so tests can assert what was and was not fetched.
type fixtureAPI struct {
	t      *testing.T
	users  map[string]*fixtureUser
	byName map[string]string

	mu             sync.Mutex
	requestsByUser map[string]int
}

func newFixtureAPI(t *testing.T, users ...*fixtureUser) *fixtureAPI {
	api := &fixtureAPI{
		t:              t,
		users:          make(map[string]*fixtureUser),
		byName:         make(map[string]string),
		requestsByUser: make(map[string]int),
	}
	for _, u := range users {
		api.users[u.profile.IDStr] = u
		api.byName[u.profile.ScreenName] = u.profile.IDStr
	}
	return api
}

func (api *fixtureAPI) count(identity string) {
	api.mu.Lock()
	api.requestsByUser[identity]++
	api.mu.Unlock()
}

func (api *fixtureAPI) requestsFor(identity string) int {
	api.mu.Lock()
	defer api.mu.Unlock()
	return api.requestsByUser[identity]
}

func (api *fixtureAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	switch r.URL.Path {
	case "/users/show.json":
		identity := q.Get("user_id")
		if identity == "" {
			identity = api.byName[q.Get("screen_name")]
		}
		api.count(identity)
		user, ok := api.users[identity]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"errors":[{"code":34,"message":"page does not exist"}]}`))
			return
		}
		if user.profile.Protected {
			writeRestricted(w)
			return
		}
		json.NewEncoder(w).Encode(user.profile)

	case "/users/lookup.json":
		ids := strings.Split(q.Get("user_id"), ",")
		var profiles []twitter.Profile
		poisoned := false
		for _, id := range ids {
			api.count(id)
			if user, ok := api.users[id]; ok {
				if user.profile.Protected {
					poisoned = true
					continue
				}
				profiles = append(profiles, user.profile)
			}
		}
		if poisoned {
			writeRestricted(w)
			return
		}
		json.NewEncoder(w).Encode(profiles)

	case "/friends/ids.json":
		identity := q.Get("user_id")
		api.count(identity)
		writeCursorPage(w, api.users[identity].friends, "0")

	case "/followers/ids.json":
		identity := q.Get("user_id")
		api.count(identity)
		writeCursorPage(w, api.users[identity].followers, "0")

	case "/statuses/user_timeline.json":
		identity := q.Get("user_id")
		api.count(identity)
		tweets := append([]twitter.Tweet(nil), api.users[identity].tweets...)
		sort.Slice(tweets, func(i, j int) bool {
			return compareIDs(tweets[i].IDStr, tweets[j].IDStr) > 0
		})
		if maxID := q.Get("max_id"); maxID != "" {
			var page []twitter.Tweet
			for _, tweet := range tweets {
				if compareIDs(tweet.IDStr, maxID) <= 0 {
					page = append(page, tweet)
				}
			}
			tweets = page
		}
		json.NewEncoder(w).Encode(tweets)

	default:
		api.t.Errorf("unexpected path %s", r.URL.Path)
		w.WriteHeader(http.StatusInternalServerError)
	}
}

func newTestCrawler(t *testing.T, api *fixtureAPI, seeds []string) (*Crawler, *storage.Manager) {
	t.Helper()
	server := httptest.NewServer(api)
	t.Cleanup(server.Close)

	cfg := config.DefaultConfig()
	cfg.Crawl.Seeds = seeds
	cfg.Twitter.BaseURL = server.URL
	cfg.Twitter.Timeout = 5 * time.Second

	store, err := storage.NewManager(t.TempDir())
	require.NoError(t, err)

	governor := ratelimit.NewGovernor(10*time.Millisecond, 600000)
	stats := NewRunStatistics()
	client := twitter.NewClient(&cfg.Twitter, governor, stats, nil)

	return New(cfg, client, store, stats, ui.NewCrawlTracker(true)), store
}

func eligibleUser(id, name string, friends, followers []string, tweetCount int) *fixtureUser {
	user := &fixtureUser{
		profile: twitter.Profile{
			IDStr:          id,
			ScreenName:     name,
			FriendsCount:   len(friends),
			FollowersCount: len(followers),
			StatusesCount:  tweetCount,
		},
		friends:   friends,
		followers: followers,
	}
	for i := 0; i < tweetCount; i++ {
		user.tweets = append(user.tweets, twitter.Tweet{
			IDStr: "90000000000000010" + string(rune('0'+i)),
			Entities: twitter.Entities{
				Hashtags: []twitter.Hashtag{{Text: "graph"}},
			},
		})
	}
	return user
}

func TestRunDrainsFrontier(t *testing.T) {
	alice := eligibleUser("1", "alice", []string{"2", "3"}, nil, 8)
	bob := eligibleUser("2", "bob", nil, nil, 7)
	carol := &fixtureUser{
		profile: twitter.Profile{IDStr: "3", ScreenName: "carol", Protected: true},
	}
	api := newFixtureAPI(t, alice, bob, carol)
	c, store := newTestCrawler(t, api, []string{"alice"})

	require.NoError(t, c.Run(context.Background()))

	assert.True(t, store.HasUserDocument("1"))
	assert.True(t, store.HasUserDocument("2"))
	assert.False(t, store.HasUserDocument("3"))

	doc, err := store.LoadUserDocument("1")
	require.NoError(t, err)
	assert.Equal(t, "alice", doc.Name)
	assert.Equal(t, []string{"2", "3"}, doc.Friends)
	assert.Len(t, doc.Tweets, 8)
	assert.Equal(t, 8, doc.Entities.Hashtags["graph"])

	resolved := c.Frontier().ResolvedSummaries()
	assert.Len(t, resolved, 2)
	unresolved := c.Frontier().UnresolvedSummaries()
	require.Contains(t, unresolved, "3")
	assert.Equal(t, string(DispositionIgnoredProtected), unresolved["3"].Disposition)
}

func TestRunClassifiesBeforeDequeue(t *testing.T) {
	// dave is too big, eve is inactive; neither may be expanded
	alice := eligibleUser("1", "alice", []string{"4", "5"}, nil, 8)
	dave := &fixtureUser{
		profile: twitter.Profile{IDStr: "4", ScreenName: "dave", StatusesCount: 100, FollowersCount: 20000},
	}
	eve := &fixtureUser{
		profile: twitter.Profile{IDStr: "5", ScreenName: "eve", StatusesCount: 2},
	}
	api := newFixtureAPI(t, alice, dave, eve)
	c, store := newTestCrawler(t, api, []string{"alice"})

	require.NoError(t, c.Run(context.Background()))

	assert.False(t, store.HasUserDocument("4"))
	assert.False(t, store.HasUserDocument("5"))

	unresolved := c.Frontier().UnresolvedSummaries()
	assert.Equal(t, string(DispositionIgnoredTooBig), unresolved["4"].Disposition)
	assert.Equal(t, string(DispositionIgnoredInactive), unresolved["5"].Disposition)
}

func TestRunIdempotentResume(t *testing.T) {
	alice := eligibleUser("1", "alice", []string{"2"}, nil, 8)
	bob := eligibleUser("2", "bob", nil, nil, 7)
	api := newFixtureAPI(t, alice, bob)
	c, store := newTestCrawler(t, api, []string{"alice"})

	// a previous run already finished alice
	require.NoError(t, store.WriteUserDocument(&storage.UserDocument{
		ID:          "1",
		Name:        "alice",
		Disposition: string(DispositionVisited),
		Friends:     []string{"2"},
	}))

	require.NoError(t, c.Run(context.Background()))

	assert.Equal(t, 0, api.requestsFor("1"), "resumed user must not be re-fetched")
	assert.True(t, store.HasUserDocument("2"), "stored friends still feed the frontier")
	assert.Greater(t, api.requestsFor("2"), 0)
}

func TestRunFlushesAggregates(t *testing.T) {
	alice := eligibleUser("1", "alice", nil, nil, 8)
	api := newFixtureAPI(t, alice)
	c, store := newTestCrawler(t, api, []string{"alice"})

	require.NoError(t, c.Run(context.Background()))

	for _, name := range []string{"resolved_users.json", "unresolved_users.json", "run_stats.json"} {
		info, err := os.Stat(filepath.Join(store.BaseDir(), name))
		require.NoError(t, err)
		assert.False(t, info.IsDir())
	}

	raw, err := os.ReadFile(filepath.Join(store.BaseDir(), "run_stats.json"))
	require.NoError(t, err)

	var statsDoc storage.RunStatsDocument
	require.NoError(t, json.Unmarshal(raw, &statsDoc))
	assert.Greater(t, statsDoc.RequestsIssued, uint64(0))
	assert.Equal(t, 1, statsDoc.UsersByDisposition[string(DispositionVisited)])
}
