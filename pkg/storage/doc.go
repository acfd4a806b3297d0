// Package storage persists crawl output as JSON documents: a directory per
// visited user holding the profile document, the trimmed tweets, and the
// entity tally, plus run-level aggregates at the output root. All writes go
// through a temp file and rename so a crash never leaves a partial document
// behind, which is what makes resuming an interrupted crawl safe.
package storage
