package twitter

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"twgraph/pkg/config"
	errs "twgraph/pkg/errors"
	"twgraph/pkg/logger"
	"twgraph/pkg/metrics"
	"twgraph/pkg/ratelimit"
)

// Purpose tags every outbound call with the kind of fetch it serves, which
// selects the recovery path when the call fails.
type Purpose string

const (
	PurposeSingle Purpose = "single"
	PurposeBatch  Purpose = "batch"
	PurposeCursor Purpose = "cursor"
	PurposeMaxID  Purpose = "max_id"
)

var (
	// ErrUnavailable is the sentinel for a protected resource that a
	// single-profile lookup resolved to. Callers record the user as
	// protected and move on.
	ErrUnavailable = stderrors.New("resource unavailable")

	// ErrConnectionLost marks a transport failure that survived retries.
	// The run treats it as benign flakiness rather than a crawl bug.
	ErrConnectionLost = stderrors.New("connection lost")
)

// maxNetworkRetries bounds transport-level retries before a call is given
// up as a lost connection.
const maxNetworkRetries = 3

// StatsRecorder receives the per-call counter events the gateway emits
type StatsRecorder interface {
	// RequestIssued is called once per HTTP round-trip
	RequestIssued()
	// RequestWithoutCooldown is called when a call resolves with no
	// rate-limit detour
	RequestWithoutCooldown()
	// RequestResolved is called when a call resolves to a payload or a
	// classified sentinel
	RequestResolved()
}

type nopStats struct{}

func (nopStats) RequestIssued()          {}
func (nopStats) RequestWithoutCooldown() {}
func (nopStats) RequestResolved()        {}

// Client is the single choke point for outbound API calls. All fetches go
// through issue, which classifies failures and dispatches recovery.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	bearerToken string
	governor    *ratelimit.Governor
	stats       StatsRecorder
	logger      logger.Logger
}

// NewClient creates an API client. stats may be nil.
func NewClient(cfg *config.TwitterConfig, governor *ratelimit.Governor, stats StatsRecorder, log logger.Logger) *Client {
	if log == nil {
		log = logger.GetLogger()
	}
	if stats == nil {
		stats = nopStats{}
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	return &Client{
		httpClient:  &http.Client{Timeout: cfg.Timeout},
		baseURL:     baseURL,
		bearerToken: cfg.BearerToken,
		governor:    governor,
		stats:       stats,
		logger:      log,
	}
}

// UserShow fetches a single profile by id or screen name. A protected
// profile resolves to ErrUnavailable.
func (c *Client) UserShow(ctx context.Context, userID, screenName string) (*Profile, error) {
	body, err := c.issue(ctx, UserShowPath, UserShowParams(userID, screenName), PurposeSingle)
	if err != nil {
		if IsRestricted(err) {
			return nil, ErrUnavailable
		}
		return nil, err
	}

	var profile Profile
	if err := json.Unmarshal(body, &profile); err != nil {
		return nil, c.parseFailure(UserShowPath, err)
	}
	return &profile, nil
}

// UsersLookup resolves profiles for the given ids, chunked at the API's
// batch ceiling. A restricted batch is split into per-id lookups, since one
// protected member poisons the whole batch response; members that resolve
// unavailable are omitted from the result.
func (c *Client) UsersLookup(ctx context.Context, ids []string) ([]Profile, error) {
	var out []Profile

	for start := 0; start < len(ids); start += MaxLookupBatch {
		end := min(start+MaxLookupBatch, len(ids))
		chunk := ids[start:end]

		body, err := c.issue(ctx, UsersLookupPath, LookupParams(chunk), PurposeBatch)
		if err != nil {
			if !IsRestricted(err) {
				return nil, err
			}
			for _, id := range chunk {
				profile, err := c.UserShow(ctx, id, "")
				if err != nil {
					if stderrors.Is(err, ErrUnavailable) {
						continue
					}
					return nil, err
				}
				out = append(out, *profile)
			}
			continue
		}

		var profiles []Profile
		if err := json.Unmarshal(body, &profiles); err != nil {
			return nil, c.parseFailure(UsersLookupPath, err)
		}
		out = append(out, profiles...)
	}

	return out, nil
}

// FriendIDs fetches one cursor page of followed-account ids
func (c *Client) FriendIDs(ctx context.Context, userID, cursor string, count int) (*CursorPage, error) {
	return c.cursorPage(ctx, FriendIDsPath, userID, cursor, count)
}

// FollowerIDs fetches one cursor page of follower ids
func (c *Client) FollowerIDs(ctx context.Context, userID, cursor string, count int) (*CursorPage, error) {
	return c.cursorPage(ctx, FollowerIDsPath, userID, cursor, count)
}

// cursorPage issues a single cursor-paginated page fetch. Access
// restrictions propagate as classified errors so the paginator can run its
// narrow-and-advance recovery.
func (c *Client) cursorPage(ctx context.Context, path, userID, cursor string, count int) (*CursorPage, error) {
	body, err := c.issue(ctx, path, CursorParams(userID, cursor, count), PurposeCursor)
	if err != nil {
		return nil, err
	}

	var page CursorPage
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, c.parseFailure(path, err)
	}
	return &page, nil
}

// Timeline fetches one max-id page of statuses. A restricted timeline
// resolves to no data, which ends the pagination loop early: protected
// timelines cannot be paged at all.
func (c *Client) Timeline(ctx context.Context, userID, maxID string, count int) ([]Tweet, error) {
	body, err := c.issue(ctx, UserTimelinePath, TimelineParams(userID, maxID, count), PurposeMaxID)
	if err != nil {
		if IsRestricted(err) {
			return nil, nil
		}
		return nil, err
	}

	var tweets []Tweet
	if err := json.Unmarshal(body, &tweets); err != nil {
		return nil, c.parseFailure(UserTimelinePath, err)
	}
	return tweets, nil
}

// issue performs one logical API call. Rate limiting is recovered here, by
// tripping the governor and re-issuing once the cooldown lapses, with no
// retry bound: rate limits are expected to eventually clear. Every other
// failure is classified and returned; there is deliberately no generic
// retry for unknown failure shapes.
func (c *Client) issue(ctx context.Context, path string, params url.Values, purpose Purpose) ([]byte, error) {
	detoured := false
	netAttempts := 0

	for {
		if err := c.governor.Acquire(ctx); err != nil {
			return nil, err
		}

		logger.LogRequest(path, string(purpose), params.Encode())

		body, status, apiCode, err := c.do(ctx, path, params)
		c.stats.RequestIssued()
		metrics.RequestsIssued.Inc()

		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			netAttempts++
			if netAttempts <= maxNetworkRetries {
				c.logger.WarnWithFields("transport failure, retrying", map[string]interface{}{
					"path":    path,
					"attempt": netAttempts,
					"error":   err.Error(),
				})
				if werr := sleepCtx(ctx, time.Second*time.Duration(netAttempts)); werr != nil {
					return nil, werr
				}
				continue
			}
			return nil, fmt.Errorf("%w: %s: %v", ErrConnectionLost, path, err)
		}

		switch {
		case status == http.StatusTooManyRequests || apiCode == apiCodeRateLimited:
			logger.LogRateLimit(path, c.governor.Window())
			metrics.Cooldowns.Inc()
			c.governor.Trip()
			detoured = true
			continue

		case status >= 200 && status < 300:
			c.resolve(detoured)
			return body, nil

		case apiCode == apiCodeResourceGone || status == http.StatusNotFound:
			return nil, &errs.Error{
				Type:    errs.ErrorTypeResourceGone,
				Message: "target vanished mid-run",
				Code:    status,
				APICode: apiCode,
				Path:    path,
				Params:  params.Encode(),
			}

		case status == http.StatusUnauthorized || status == http.StatusForbidden:
			// A restricted resource is a resolved outcome, not a failure:
			// every purpose has a defined recovery for it.
			c.resolve(detoured)
			return nil, &errs.Error{
				Type:    errs.ErrorTypeAccessRestricted,
				Message: "access restricted",
				Code:    status,
				APICode: apiCode,
				Path:    path,
				Params:  params.Encode(),
			}

		default:
			return nil, &errs.Error{
				Type:    errs.ErrorTypeUnclassified,
				Message: fmt.Sprintf("unexpected status %d", status),
				Code:    status,
				APICode: apiCode,
				Path:    path,
				Params:  params.Encode(),
			}
		}
	}
}

// resolve emits the completion counters for a call
func (c *Client) resolve(detoured bool) {
	if !detoured {
		c.stats.RequestWithoutCooldown()
		metrics.RequestsWithoutCooldown.Inc()
	}
	c.stats.RequestResolved()
	metrics.RequestsResolved.Inc()
}

// do performs one HTTP round-trip and extracts the API error code, if any,
// from the response body.
func (c *Client) do(ctx context.Context, path string, params url.Values) (body []byte, status, apiCode int, err error) {
	reqURL := fmt.Sprintf("%s/%s.json?%s", c.baseURL, path, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, 0, 0, err
	}
	if c.bearerToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.bearerToken)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "twgraph/1.0")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, 0, err
	}
	defer resp.Body.Close()

	body, err = io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, 0, err
	}

	if resp.StatusCode >= 400 {
		var envelope apiErrorBody
		if json.Unmarshal(body, &envelope) == nil && len(envelope.Errors) > 0 {
			apiCode = envelope.Errors[0].Code
		}
	}

	c.logger.DebugWithFields("API request completed", map[string]interface{}{
		"path":     path,
		"status":   resp.StatusCode,
		"duration": time.Since(start),
	})

	return body, resp.StatusCode, apiCode, nil
}

// parseFailure wraps a JSON decode failure as unclassified: a payload we
// cannot decode means our model of the endpoint is wrong, which should fail
// loudly.
func (c *Client) parseFailure(path string, err error) error {
	return &errs.Error{
		Type:    errs.ErrorTypeUnclassified,
		Message: fmt.Sprintf("failed to decode payload: %v", err),
		Path:    path,
	}
}

// IsRestricted reports whether err is the access-restricted classification
func IsRestricted(err error) bool {
	var apiErr *errs.Error
	return stderrors.As(err, &apiErr) && apiErr.Type == errs.ErrorTypeAccessRestricted
}

// sleepCtx waits for d or until ctx is cancelled
func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
