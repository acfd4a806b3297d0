package crawler

import (
	"context"
	"math/big"
	"sort"
	"strings"

	"twgraph/pkg/twitter"
)

// FailureSentinel marks a cursor position whose single entry stayed
// inaccessible even at page size one. It holds the position in the output
// without carrying an identity.
const FailureSentinel = ""

// cursorFetch issues one page of a cursor-paginated id listing
type cursorFetch func(ctx context.Context, cursor string, count int) (*twitter.CursorPage, error)

// ProgressFunc receives page-walk progress: what is being drained, how many
// items are collected, and how many the profile promised.
type ProgressFunc func(kind string, collected, expected int)

// Paginator drains paginated listings to completion, surviving per-page
// access failures without giving up the whole walk.
type Paginator struct {
	client   *twitter.Client
	progress ProgressFunc
}

// NewPaginator creates a paginator over the given client
func NewPaginator(client *twitter.Client) *Paginator {
	return &Paginator{client: client}
}

// SetProgressFunc installs a page-walk progress callback
func (p *Paginator) SetProgressFunc(fn ProgressFunc) {
	p.progress = fn
}

// DrainFriends returns the complete followed-account id listing of a user.
// expected is the profile's friend count, used only for progress display.
func (p *Paginator) DrainFriends(ctx context.Context, userID string, expected int) ([]string, error) {
	return p.drainCursor(ctx, "friends", expected, func(ctx context.Context, cursor string, count int) (*twitter.CursorPage, error) {
		return p.client.FriendIDs(ctx, userID, cursor, count)
	})
}

// DrainFollowers returns the complete follower id listing of a user
func (p *Paginator) DrainFollowers(ctx context.Context, userID string, expected int) ([]string, error) {
	return p.drainCursor(ctx, "followers", expected, func(ctx context.Context, cursor string, count int) (*twitter.CursorPage, error) {
		return p.client.FollowerIDs(ctx, userID, cursor, count)
	})
}

// drainCursor walks a cursor-paginated listing from the start sentinel until
// the terminal cursor. A restricted page is narrowed to a single item; if
// even that fails, a failure marker takes the position and the cursor is
// decremented so the walk cannot spin on the same value. A restricted FIRST
// page means the listing is inaccessible outright, reported as
// twitter.ErrUnavailable.
func (p *Paginator) drainCursor(ctx context.Context, kind string, expected int, fetch cursorFetch) ([]string, error) {
	var out []string
	cursor := twitter.CursorStart
	first := true

	for {
		page, err := fetch(ctx, cursor, twitter.MaxCursorPageSize)
		if err != nil {
			if !twitter.IsRestricted(err) {
				return nil, err
			}
			if first {
				return nil, twitter.ErrUnavailable
			}
			page, err = fetch(ctx, cursor, 1)
			if err != nil {
				if !twitter.IsRestricted(err) {
					return nil, err
				}
				out = append(out, FailureSentinel)
				cursor = decrementCursor(cursor)
				if cursorExhausted(cursor) {
					return out, nil
				}
				continue
			}
		}
		first = false

		out = append(out, page.IDs...)
		p.report(kind, len(out), expected)

		if cursorExhausted(page.NextCursorStr) {
			return out, nil
		}
		cursor = page.NextCursorStr
	}
}

// DrainTimeline returns every unique timeline status of a user, newest
// first, walking the max-id watermark down until a page stops yielding new
// items. The API's boundary semantics repeat the watermark tweet at the top
// of each next page, so pages are deduplicated against everything seen.
func (p *Paginator) DrainTimeline(ctx context.Context, userID string, expected int) ([]twitter.Tweet, error) {
	var out []twitter.Tweet
	seen := make(map[string]bool)
	maxID := ""

	for {
		page, err := p.client.Timeline(ctx, userID, maxID, twitter.MaxTimelinePageSize)
		if err != nil {
			return nil, err
		}

		sortTweetsDescending(page)

		fresh := 0
		for _, tweet := range page {
			if seen[tweet.IDStr] {
				continue
			}
			seen[tweet.IDStr] = true
			out = append(out, tweet)
			fresh++
		}
		p.report("timeline", len(out), expected)

		if fresh <= 1 {
			return out, nil
		}
		// descending order puts the new watermark at the tail
		maxID = out[len(out)-1].IDStr
	}
}

func (p *Paginator) report(kind string, collected, expected int) {
	if p.progress != nil {
		p.progress(kind, collected, expected)
	}
}

// cursorExhausted reports whether a cursor value terminates the walk
func cursorExhausted(cursor string) bool {
	return cursor == twitter.CursorEnd || strings.HasPrefix(cursor, "-") || cursor == ""
}

// decrementCursor steps a cursor down by one to force forward progress
func decrementCursor(cursor string) string {
	n, ok := new(big.Int).SetString(cursor, 10)
	if !ok {
		return twitter.CursorEnd
	}
	return n.Sub(n, big.NewInt(1)).String()
}

// sortTweetsDescending orders tweets by identifier, newest first. Status
// identifiers exceed float64 integer precision, so comparison goes through
// big.Int rather than any numeric parse.
func sortTweetsDescending(tweets []twitter.Tweet) {
	sort.SliceStable(tweets, func(i, j int) bool {
		return compareIDs(tweets[i].IDStr, tweets[j].IDStr) > 0
	})
}

// compareIDs compares two decimal string identifiers with arbitrary
// precision. Unparseable values sort last.
func compareIDs(a, b string) int {
	ai, aok := new(big.Int).SetString(a, 10)
	bi, bok := new(big.Int).SetString(b, 10)
	switch {
	case !aok && !bok:
		return 0
	case !aok:
		return -1
	case !bok:
		return 1
	default:
		return ai.Cmp(bi)
	}
}
