package crawler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"twgraph/pkg/twitter"
)

func TestTallyEntities(t *testing.T) {
	tweets := []twitter.Tweet{
		{
			IDStr: "1",
			Entities: twitter.Entities{
				Hashtags: []twitter.Hashtag{{Text: "golang"}, {Text: "oss"}},
				URLs:     []twitter.URLRef{{ExpandedURL: "https://example.com/a"}},
			},
		},
		{
			IDStr: "2",
			Entities: twitter.Entities{
				Hashtags: []twitter.Hashtag{{Text: "golang"}},
				URLs: []twitter.URLRef{
					{ExpandedURL: "https://example.com/a"},
					{ExpandedURL: "https://example.com/b"},
				},
			},
		},
	}

	tally := TallyEntities(tweets)

	// every occurrence counts, not just distinct values
	assert.Equal(t, 2, tally.Hashtags["golang"])
	assert.Equal(t, 1, tally.Hashtags["oss"])
	assert.Equal(t, 3, tally.HashtagsCount)

	assert.Equal(t, 2, tally.URLs["https://example.com/a"])
	assert.Equal(t, 1, tally.URLs["https://example.com/b"])
	assert.Equal(t, 3, tally.URLsCount)
}

func TestTallyEntitiesSkipsStatusPermalinks(t *testing.T) {
	tweets := []twitter.Tweet{
		{
			IDStr: "1",
			Entities: twitter.Entities{
				URLs: []twitter.URLRef{
					{ExpandedURL: twitter.StatusPermalinkPrefix + "123456"},
					{ExpandedURL: "https://example.com/a"},
				},
			},
		},
	}

	tally := TallyEntities(tweets)
	require.Equal(t, 1, tally.URLsCount)
	assert.NotContains(t, tally.URLs, twitter.StatusPermalinkPrefix+"123456")
}

func TestTallyEntitiesEmptyTimeline(t *testing.T) {
	tally := TallyEntities(nil)
	assert.Equal(t, 0, tally.HashtagsCount)
	assert.Equal(t, 0, tally.URLsCount)
	assert.NotNil(t, tally.Hashtags)
	assert.NotNil(t, tally.URLs)
}
