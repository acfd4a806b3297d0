package storage

import "time"

// EntityTally aggregates hashtag and URL occurrences over one user's
// timeline. Derived data: fully rebuildable from the stored tweets.
type EntityTally struct {
	Hashtags      map[string]int `json:"hashtags"`
	HashtagsCount int            `json:"hashtags_count"`
	URLs          map[string]int `json:"urls"`
	URLsCount     int            `json:"urls_count"`
}

// NewEntityTally returns an empty tally
func NewEntityTally() *EntityTally {
	return &EntityTally{
		Hashtags: make(map[string]int),
		URLs:     make(map[string]int),
	}
}

// UserDocument is the per-user persisted record. Its presence on disk for an
// identity is the resume checkpoint: that user is visited and is not
// re-fetched.
type UserDocument struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Disposition string `json:"disposition"`

	BioURL          string `json:"bio_url,omitempty"`
	Description     string `json:"description,omitempty"`
	CreatedAt       string `json:"created_at,omitempty"`
	Protected       bool   `json:"protected"`
	FriendsCount    int    `json:"friends_count"`
	FollowersCount  int    `json:"followers_count"`
	TweetsCount     int    `json:"tweets_count"`
	FavouritesCount int    `json:"favourites_count"`

	Friends   []string `json:"friends"`
	Followers []string `json:"followers"`
	Tweets    []string `json:"tweets"`

	Entities *EntityTally `json:"entities,omitempty"`
}

// UserSummary is one entry of the aggregate user documents
type UserSummary struct {
	Name        string `json:"name"`
	Disposition string `json:"disposition"`
}

// RunStatsDocument is the run-end statistics snapshot
type RunStatsDocument struct {
	RequestsIssued          uint64         `json:"requests_issued"`
	RequestsWithoutCooldown uint64         `json:"requests_without_cooldown"`
	RequestsResolved        uint64         `json:"requests_resolved"`
	UsersByDisposition      map[string]int `json:"users_by_disposition"`
	StartedAt               time.Time      `json:"started_at"`
	FinishedAt              time.Time      `json:"finished_at"`
}
