// Package crawler is the crawl core: the frontier that partitions every
// known identity by disposition, the paginator that drains cursor and
// max-id listings to completion, and the driver that expands the graph
// breadth-first from the configured seeds. The crawl is intentionally
// serialized: one outstanding request at a time, so the shared rate-limit
// budget is respected and the frontier needs no locking.
package crawler
