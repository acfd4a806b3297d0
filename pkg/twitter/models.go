package twitter

// Profile is a user object as returned by the profile-lookup endpoints.
// Identifiers are decimal strings and must never be parsed into floats.
type Profile struct {
	IDStr           string `json:"id_str"`
	ScreenName      string `json:"screen_name"`
	Description     string `json:"description"`
	URL             string `json:"url"`
	CreatedAt       string `json:"created_at"`
	Protected       bool   `json:"protected"`
	FriendsCount    int    `json:"friends_count"`
	FollowersCount  int    `json:"followers_count"`
	StatusesCount   int    `json:"statuses_count"`
	FavouritesCount int    `json:"favourites_count"`
}

// Tweet is a single timeline status, trimmed to the fields the crawl keeps
type Tweet struct {
	IDStr         string    `json:"id_str"`
	CreatedAt     string    `json:"created_at"`
	Text          string    `json:"text"`
	User          TweetUser `json:"user"`
	FavoriteCount int       `json:"favorite_count"`
	RetweetCount  int       `json:"retweet_count"`
	Lang          string    `json:"lang"`
	Entities      Entities  `json:"entities"`
}

// TweetUser is the trimmed author reference inside a tweet
type TweetUser struct {
	IDStr string `json:"id_str"`
}

// Entities carries the hashtag and URL references of a tweet
type Entities struct {
	Hashtags []Hashtag `json:"hashtags"`
	URLs     []URLRef  `json:"urls"`
}

// Hashtag is a single hashtag occurrence
type Hashtag struct {
	Text string `json:"text"`
}

// URLRef is a single URL occurrence; ExpandedURL is the resolved target
type URLRef struct {
	ExpandedURL string `json:"expanded_url"`
}

// CursorPage is one page of a cursor-paginated id listing
type CursorPage struct {
	IDs           []string `json:"ids"`
	NextCursorStr string   `json:"next_cursor_str"`
}

// apiErrorBody is the error envelope the API wraps failures in
type apiErrorBody struct {
	Errors []struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"errors"`
}
