package twitter

import (
	"net/url"
	"strconv"
	"strings"
)

const (
	// DefaultBaseURL is the REST API root
	DefaultBaseURL = "https://api.twitter.com/1.1"

	// UserShowPath looks up a single profile by id or screen name
	UserShowPath = "users/show"
	// UsersLookupPath resolves profiles in bulk
	UsersLookupPath = "users/lookup"
	// FriendIDsPath lists followed account ids, cursor paginated
	FriendIDsPath = "friends/ids"
	// FollowerIDsPath lists follower ids, cursor paginated
	FollowerIDsPath = "followers/ids"
	// UserTimelinePath lists statuses, max-id paginated
	UserTimelinePath = "statuses/user_timeline"

	// MaxLookupBatch is the largest id batch users/lookup accepts in one call
	MaxLookupBatch = 99
	// MaxCursorPageSize is the largest cursor page the id endpoints serve
	MaxCursorPageSize = 1000
	// MaxTimelinePageSize is the largest timeline page the API serves
	MaxTimelinePageSize = 200

	// CursorStart is the sentinel first-page cursor
	CursorStart = "-1"
	// CursorEnd is the sentinel terminal cursor
	CursorEnd = "0"
)

// API error codes carried in the response body
const (
	apiCodeRateLimited  = 88
	apiCodeResourceGone = 34
)

// StatusPermalinkPrefix identifies self-referential permalink URLs that the
// entity tally excludes as noise.
const StatusPermalinkPrefix = "https://twitter.com/i/web/status/"

// UserShowParams builds parameters for users/show. Exactly one of userID and
// screenName should be non-empty; userID wins when both are set.
func UserShowParams(userID, screenName string) url.Values {
	params := url.Values{}
	setIdentity(params, userID, screenName)
	return params
}

// LookupParams builds parameters for a users/lookup batch
func LookupParams(ids []string) url.Values {
	params := url.Values{}
	params.Set("user_id", strings.Join(ids, ","))
	return params
}

// CursorParams builds parameters for one friends/ids or followers/ids page
func CursorParams(userID, cursor string, count int) url.Values {
	params := url.Values{}
	params.Set("user_id", userID)
	params.Set("cursor", cursor)
	params.Set("count", strconv.Itoa(count))
	params.Set("stringify_ids", "true")
	return params
}

// TimelineParams builds parameters for one statuses/user_timeline page.
// maxID is empty for the first page.
func TimelineParams(userID, maxID string, count int) url.Values {
	params := url.Values{}
	params.Set("user_id", userID)
	params.Set("count", strconv.Itoa(count))
	params.Set("include_rts", "false")
	params.Set("exclude_replies", "true")
	params.Set("trim_user", "true")
	if maxID != "" {
		params.Set("max_id", maxID)
	}
	return params
}

func setIdentity(params url.Values, userID, screenName string) {
	if userID != "" {
		params.Set("user_id", userID)
	} else {
		params.Set("screen_name", screenName)
	}
}
