package crawler

import (
	"context"
	stderrors "errors"
	"runtime"

	"twgraph/pkg/config"
	"twgraph/pkg/logger"
	"twgraph/pkg/metrics"
	"twgraph/pkg/storage"
	"twgraph/pkg/twitter"
	"twgraph/pkg/ui"
)

// Crawler drives the breadth-first graph expansion: seeds first, then the
// pending frontier, one user at a time. All network traffic flows through
// the gateway on a single logical control flow, so no two requests are ever
// outstanding at once.
type Crawler struct {
	client    *twitter.Client
	paginator *Paginator
	frontier  *Frontier
	store     *storage.Manager
	stats     *RunStatistics
	tracker   *ui.CrawlTracker
	logger    logger.Logger

	seeds []string

	// resumedNames maps screen names from resumed documents back to their
	// identities, so a seed that was finished in an earlier run costs no
	// profile lookup.
	resumedNames map[string]string
}

// New wires a crawler over the given collaborators
func New(cfg *config.Config, client *twitter.Client, store *storage.Manager, stats *RunStatistics, tracker *ui.CrawlTracker) *Crawler {
	c := &Crawler{
		client: client,
		frontier: NewFrontier(Thresholds{
			TweetsMin:    cfg.Crawl.TweetsMin,
			FollowersMax: cfg.Crawl.FollowersMax,
			FriendsMax:   cfg.Crawl.FriendsMax,
		}),
		store:        store,
		stats:        stats,
		tracker:      tracker,
		logger:       logger.GetLogger(),
		seeds:        cfg.Crawl.Seeds,
		resumedNames: make(map[string]string),
	}
	c.paginator = NewPaginator(client)
	if tracker != nil {
		c.paginator.SetProgressFunc(tracker.PageProgress)
	}
	return c
}

// Frontier exposes the crawler's frontier for inspection
func (c *Crawler) Frontier() *Frontier {
	return c.frontier
}

// Run executes the crawl to completion: resume from disk, visit the seeds,
// then drain the frontier until no pending identity remains. A fatal error
// still flushes the aggregate documents before propagating.
func (c *Crawler) Run(ctx context.Context) error {
	if err := c.resumeFromDisk(); err != nil {
		return err
	}

	for _, seed := range c.seeds {
		if err := c.visitSeed(ctx, seed); err != nil {
			return c.abort(err)
		}
	}

	for {
		identity, ok := c.frontier.NextPending()
		if !ok {
			break
		}
		if err := c.visit(ctx, identity); err != nil {
			return c.abort(err)
		}
	}

	return c.flush()
}

// resumeFromDisk ingests the per-user documents an earlier interrupted run
// left behind: their owners are marked visited without any re-fetch, and
// their friends and followers still feed the frontier.
func (c *Crawler) resumeFromDisk() error {
	identities, err := c.store.ListUserDocuments()
	if err != nil {
		return err
	}

	for _, identity := range identities {
		doc, err := c.store.LoadUserDocument(identity)
		if err != nil {
			return err
		}
		if doc == nil {
			continue
		}
		c.frontier.Add(identity)
		c.frontier.MarkVisited(identity, doc.Name)
		if doc.Name != "" {
			c.resumedNames[doc.Name] = identity
		}
		for _, id := range doc.Friends {
			c.frontier.Add(id)
		}
		for _, id := range doc.Followers {
			c.frontier.Add(id)
		}
	}

	if len(identities) > 0 {
		c.logger.InfoWithFields("resumed from existing output", map[string]interface{}{
			"visited": len(identities),
			"pending": c.frontier.PendingCount(),
		})
	}
	c.syncDispositionGauges()
	return nil
}

// visitSeed resolves a configured seed by screen name and, when eligible,
// expands it immediately before the next seed is touched.
func (c *Crawler) visitSeed(ctx context.Context, seed string) error {
	if identity, ok := c.resumedNames[seed]; ok {
		c.logger.DebugWithFields("seed already visited", map[string]interface{}{
			"seed":     seed,
			"identity": identity,
		})
		return nil
	}

	profile, err := c.client.UserShow(ctx, "", seed)
	if err != nil {
		if stderrors.Is(err, twitter.ErrUnavailable) {
			c.frontier.MarkProtected(seed, seed)
			c.reportSkip(seed, seed, DispositionIgnoredProtected)
			return nil
		}
		return err
	}

	identity := profile.IDStr
	c.frontier.Add(identity)
	disposition := c.frontier.RecordProfile(identity, profile)
	c.syncDispositionGauges()

	if disposition != DispositionToVisit {
		c.reportSkip(identity, profile.ScreenName, disposition)
		return nil
	}
	return c.expand(ctx, profile)
}

// visit handles one dequeued pending identity
func (c *Crawler) visit(ctx context.Context, identity string) error {
	if c.store.HasUserDocument(identity) {
		doc, err := c.store.LoadUserDocument(identity)
		if err != nil {
			return err
		}
		c.frontier.MarkVisited(identity, doc.Name)
		for _, id := range doc.Friends {
			c.frontier.Add(id)
		}
		for _, id := range doc.Followers {
			c.frontier.Add(id)
		}
		return nil
	}

	profile := c.profileFor(identity)
	if profile == nil {
		fetched, err := c.client.UserShow(ctx, identity, "")
		if err != nil {
			if stderrors.Is(err, twitter.ErrUnavailable) {
				c.frontier.MarkProtected(identity, "")
				c.reportSkip(identity, "", DispositionIgnoredProtected)
				return nil
			}
			return err
		}
		profile = fetched
	}

	disposition := c.frontier.RecordProfile(identity, profile)
	c.syncDispositionGauges()

	if disposition != DispositionToVisit {
		c.reportSkip(identity, profile.ScreenName, disposition)
		return nil
	}
	return c.expand(ctx, profile)
}

// profileFor returns the profile already attached to a record, if the batch
// bootstrap resolved it before dequeue.
func (c *Crawler) profileFor(identity string) *twitter.Profile {
	if rec, ok := c.frontier.Record(identity); ok {
		return rec.Profile
	}
	return nil
}

// expand runs the fixed per-user fetch sequence: friends, followers,
// timeline. The listings are skipped outright when the profile reports
// nothing to list.
func (c *Crawler) expand(ctx context.Context, profile *twitter.Profile) error {
	identity := profile.IDStr

	logger.LogUserVisit(identity, profile.ScreenName, c.frontier.PendingCount())
	if c.tracker != nil {
		c.tracker.UserStarted(profile.ScreenName, c.frontier.PendingCount())
	}
	c.logFrontierState()

	var friends, followers []string
	if profile.FriendsCount > 0 || profile.FollowersCount > 0 {
		var err error
		friends, err = c.paginator.DrainFriends(ctx, identity, profile.FriendsCount)
		if err == nil {
			followers, err = c.paginator.DrainFollowers(ctx, identity, profile.FollowersCount)
		}
		if err != nil {
			if stderrors.Is(err, twitter.ErrUnavailable) {
				// the listings turned out inaccessible despite the
				// unprotected profile; treat the whole user as protected
				c.frontier.MarkProtected(identity, profile.ScreenName)
				c.reportSkip(identity, profile.ScreenName, DispositionIgnoredProtected)
				return nil
			}
			return err
		}
	}

	if err := c.bootstrap(ctx, c.ingest(friends, followers)); err != nil {
		return err
	}

	var tweets []twitter.Tweet
	if profile.StatusesCount > 0 {
		var err error
		tweets, err = c.paginator.DrainTimeline(ctx, identity, profile.StatusesCount)
		if err != nil {
			return err
		}
	}

	if err := c.persist(profile, friends, followers, tweets); err != nil {
		return err
	}

	c.frontier.MarkVisited(identity, profile.ScreenName)
	c.syncDispositionGauges()
	if c.tracker != nil {
		c.tracker.UserFinished(profile.ScreenName)
	}
	return nil
}

// ingest feeds discovered identities into the frontier and returns the ones
// that were previously unknown.
func (c *Crawler) ingest(friends, followers []string) []string {
	var discovered []string
	for _, id := range friends {
		if c.frontier.Add(id) {
			discovered = append(discovered, id)
		}
	}
	for _, id := range followers {
		if c.frontier.Add(id) {
			discovered = append(discovered, id)
		}
	}
	return discovered
}

// bootstrap resolves freshly discovered identities in batches so their
// dispositions are known before they are ever dequeued. Identities the
// lookup omits are unavailable and recorded as protected.
func (c *Crawler) bootstrap(ctx context.Context, discovered []string) error {
	if len(discovered) == 0 {
		return nil
	}

	profiles, err := c.client.UsersLookup(ctx, discovered)
	if err != nil {
		return err
	}

	returned := make(map[string]bool, len(profiles))
	for i := range profiles {
		profile := &profiles[i]
		returned[profile.IDStr] = true
		c.frontier.RecordProfile(profile.IDStr, profile)
	}
	for _, id := range discovered {
		if !returned[id] {
			c.frontier.MarkProtected(id, "")
		}
	}

	c.syncDispositionGauges()
	return nil
}

// persist writes the per-user output. The profile document goes last: its
// presence is the resume checkpoint, so it must never exist before the
// tweets and entities it promises.
func (c *Crawler) persist(profile *twitter.Profile, friends, followers []string, tweets []twitter.Tweet) error {
	identity := profile.IDStr

	if err := c.store.WriteTweets(identity, tweets); err != nil {
		return err
	}

	tally := TallyEntities(tweets)
	if err := c.store.WriteEntities(identity, tally); err != nil {
		return err
	}

	tweetIDs := make([]string, 0, len(tweets))
	for _, tweet := range tweets {
		tweetIDs = append(tweetIDs, tweet.IDStr)
	}

	doc := &storage.UserDocument{
		ID:              identity,
		Name:            profile.ScreenName,
		Disposition:     string(DispositionVisited),
		BioURL:          profile.URL,
		Description:     profile.Description,
		CreatedAt:       profile.CreatedAt,
		Protected:       profile.Protected,
		FriendsCount:    profile.FriendsCount,
		FollowersCount:  profile.FollowersCount,
		TweetsCount:     profile.StatusesCount,
		FavouritesCount: profile.FavouritesCount,
		Friends:         friends,
		Followers:       followers,
		Tweets:          tweetIDs,
		Entities:        tally,
	}
	return c.store.WriteUserDocument(doc)
}

// abort flushes what the run collected so far, then propagates the fatal
// error. A flush failure at this point is only logged; the original error
// is the one the operator needs.
func (c *Crawler) abort(cause error) error {
	if err := c.flush(); err != nil {
		c.logger.WithError(err).Error("failed to flush output during abort")
	}
	return cause
}

// flush writes the aggregate documents and the statistics snapshot
func (c *Crawler) flush() error {
	if err := c.store.WriteResolved(c.frontier.ResolvedSummaries()); err != nil {
		return err
	}
	if err := c.store.WriteUnresolved(c.frontier.UnresolvedSummaries()); err != nil {
		return err
	}
	return c.store.WriteRunStats(c.stats.Snapshot(c.frontier.Counts()))
}

func (c *Crawler) reportSkip(identity, name string, disposition Disposition) {
	logger.LogUserSkipped(identity, name, string(disposition))
	if c.tracker != nil {
		display := name
		if display == "" {
			display = identity
		}
		c.tracker.UserSkipped(display, string(disposition))
	}
}

// syncDispositionGauges mirrors the frontier partition sizes into metrics
func (c *Crawler) syncDispositionGauges() {
	for disposition, count := range c.frontier.Counts() {
		metrics.UsersByDisposition.WithLabelValues(disposition).Set(float64(count))
	}
}

// logFrontierState emits the per-user debug snapshot of frontier and heap
// sizes
func (c *Crawler) logFrontierState() {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	c.logger.DebugWithFields("frontier state", map[string]interface{}{
		"known":         c.frontier.Known(),
		"pending":       c.frontier.PendingCount(),
		"heap_alloc_mb": int(mem.HeapAlloc / 1024 / 1024),
	})
}
