// Package ratelimit implements the cooldown governor that keeps the crawl
// inside the API's shared rate-limit budget.
//
// The governor has two duties. Outside of cooldowns it paces requests with a
// token-bucket limiter so the serialized crawl does not hammer the API.
// When the request gateway classifies a failure as rate limited it calls
// Trip, which suspends issuance for a fixed window (the API's documented
// reset interval, 15 minutes by default). Callers block inside Acquire
// until the window lapses; the failed request is then re-issued by the
// gateway, so rate limiting is never visible to callers as an error, only
// as latency.
package ratelimit
