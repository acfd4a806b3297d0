// Package twitter implements the API surface the crawl consumes and the
// request gateway every call goes through.
//
// The gateway (Client.issue) is the single choke point for outbound calls.
// Each call carries a Purpose, and failures are classified into four
// outcomes: rate limits trip the governor and re-issue the call
// transparently once the cooldown lapses; access restrictions follow a
// purpose-specific recovery (sentinel for single lookups, batch splitting
// for bulk lookups, narrow-and-advance for cursor pages, early termination
// for timeline pages); a vanished target is fatal; and anything
// unrecognized is fatal by design rather than retried blindly.
//
// Identifiers are decimal-string encoded extended-precision integers and
// are never converted through floating point.
package twitter
