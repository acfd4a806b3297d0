package crawler

import (
	"strings"

	"twgraph/pkg/storage"
	"twgraph/pkg/twitter"
)

// TallyEntities counts hashtag and URL occurrences across a user's tweets.
// Every occurrence counts, not just distinct values. URLs that merely point
// back at status permalinks are noise and are excluded.
func TallyEntities(tweets []twitter.Tweet) *storage.EntityTally {
	tally := storage.NewEntityTally()

	for _, tweet := range tweets {
		for _, tag := range tweet.Entities.Hashtags {
			if tag.Text == "" {
				continue
			}
			tally.Hashtags[tag.Text]++
			tally.HashtagsCount++
		}
		for _, ref := range tweet.Entities.URLs {
			if ref.ExpandedURL == "" {
				continue
			}
			if strings.HasPrefix(ref.ExpandedURL, twitter.StatusPermalinkPrefix) {
				continue
			}
			tally.URLs[ref.ExpandedURL]++
			tally.URLsCount++
		}
	}

	return tally
}
