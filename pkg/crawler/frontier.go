package crawler

import (
	"twgraph/pkg/storage"
	"twgraph/pkg/twitter"
)

// Disposition classifies what the crawl decided about a known identity
type Disposition string

const (
	DispositionToVisit          Disposition = "to_visit"
	DispositionVisited          Disposition = "visited"
	DispositionIgnoredTooBig    Disposition = "ignored_too_big"
	DispositionIgnoredInactive  Disposition = "ignored_inactive"
	DispositionIgnoredProtected Disposition = "ignored_protected"
)

// Thresholds are the classification bounds for frontier admission
type Thresholds struct {
	// TweetsMin is the activity floor; at or below it a user is inactive
	TweetsMin int
	// FollowersMax and FriendsMax are the size ceilings; at or above
	// either a user is too big to expand
	FollowersMax int
	FriendsMax   int
}

// UserRecord is the frontier's view of one identity. Every identity
// referenced anywhere in the crawl has exactly one record.
type UserRecord struct {
	Identity    string
	Name        string
	Disposition Disposition
	Profile     *twitter.Profile
}

// Frontier partitions all known identities by disposition and hands out
// pending identities in discovery order. It is mutated only from the single
// crawl control flow, so it carries no locking.
type Frontier struct {
	thresholds Thresholds
	records    map[string]*UserRecord
	queue      []string
}

// NewFrontier creates an empty frontier with the given thresholds
func NewFrontier(thresholds Thresholds) *Frontier {
	return &Frontier{
		thresholds: thresholds,
		records:    make(map[string]*UserRecord),
	}
}

// Add registers a newly discovered identity as pending. Known identities
// and the empty failure marker are ignored. Returns whether the identity
// was new.
func (f *Frontier) Add(identity string) bool {
	if identity == "" {
		return false
	}
	if _, ok := f.records[identity]; ok {
		return false
	}
	f.records[identity] = &UserRecord{
		Identity:    identity,
		Disposition: DispositionToVisit,
	}
	f.queue = append(f.queue, identity)
	return true
}

// IsKnown reports whether the identity has a record
func (f *Frontier) IsKnown(identity string) bool {
	_, ok := f.records[identity]
	return ok
}

// Record returns the record for an identity, if one exists
func (f *Frontier) Record(identity string) (*UserRecord, bool) {
	rec, ok := f.records[identity]
	return rec, ok
}

// Classify applies the admission policy to a profile. Protection wins over
// every count check.
func (f *Frontier) Classify(profile *twitter.Profile) Disposition {
	switch {
	case profile.Protected:
		return DispositionIgnoredProtected
	case profile.StatusesCount <= f.thresholds.TweetsMin:
		return DispositionIgnoredInactive
	case profile.FollowersCount >= f.thresholds.FollowersMax ||
		profile.FriendsCount >= f.thresholds.FriendsMax:
		return DispositionIgnoredTooBig
	default:
		return DispositionToVisit
	}
}

// RecordProfile attaches a fetched profile to the identity's record and
// resolves its disposition. An eligible user stays pending until the
// expansion completes and MarkVisited is called. Dispositions only move
// forward: a record that already left ToVisit is not reclassified.
func (f *Frontier) RecordProfile(identity string, profile *twitter.Profile) Disposition {
	rec, ok := f.records[identity]
	if !ok {
		rec = &UserRecord{Identity: identity}
		f.records[identity] = rec
	}
	rec.Name = profile.ScreenName
	rec.Profile = profile

	if rec.Disposition != DispositionToVisit && rec.Disposition != "" {
		return rec.Disposition
	}
	rec.Disposition = f.Classify(profile)
	return rec.Disposition
}

// MarkVisited moves an identity to the visited partition
func (f *Frontier) MarkVisited(identity, name string) {
	rec, ok := f.records[identity]
	if !ok {
		rec = &UserRecord{Identity: identity}
		f.records[identity] = rec
	}
	if name != "" {
		rec.Name = name
	}
	rec.Disposition = DispositionVisited
}

// MarkProtected resolves an identity whose profile could not be fetched at
// all (single lookup came back unavailable, or its listings turned out to
// be fully inaccessible).
func (f *Frontier) MarkProtected(identity, name string) {
	rec, ok := f.records[identity]
	if !ok {
		rec = &UserRecord{Identity: identity}
		f.records[identity] = rec
	}
	if name != "" {
		rec.Name = name
	}
	rec.Disposition = DispositionIgnoredProtected
}

// NextPending dequeues the next identity still awaiting a visit, in
// discovery order. Entries resolved since they were queued are skipped.
func (f *Frontier) NextPending() (string, bool) {
	for len(f.queue) > 0 {
		identity := f.queue[0]
		f.queue = f.queue[1:]
		if rec, ok := f.records[identity]; ok && rec.Disposition == DispositionToVisit {
			return identity, true
		}
	}
	return "", false
}

// Known returns the total number of identities with a record
func (f *Frontier) Known() int {
	return len(f.records)
}

// PendingCount returns the number of identities still awaiting a visit
func (f *Frontier) PendingCount() int {
	count := 0
	for _, rec := range f.records {
		if rec.Disposition == DispositionToVisit {
			count++
		}
	}
	return count
}

// Counts returns the number of identities per disposition
func (f *Frontier) Counts() map[string]int {
	counts := make(map[string]int)
	for _, rec := range f.records {
		counts[string(rec.Disposition)]++
	}
	return counts
}

// ResolvedSummaries snapshots the visited partition for persistence
func (f *Frontier) ResolvedSummaries() map[string]storage.UserSummary {
	out := make(map[string]storage.UserSummary)
	for identity, rec := range f.records {
		if rec.Disposition == DispositionVisited {
			out[identity] = storage.UserSummary{
				Name:        rec.Name,
				Disposition: string(rec.Disposition),
			}
		}
	}
	return out
}

// UnresolvedSummaries snapshots every identity the crawl did not visit
func (f *Frontier) UnresolvedSummaries() map[string]storage.UserSummary {
	out := make(map[string]storage.UserSummary)
	for identity, rec := range f.records {
		if rec.Disposition != DispositionVisited {
			out[identity] = storage.UserSummary{
				Name:        rec.Name,
				Disposition: string(rec.Disposition),
			}
		}
	}
	return out
}
