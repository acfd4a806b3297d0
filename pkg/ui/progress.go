package ui

import (
	"fmt"
	"strings"
	"time"
)

const (
	progressBar   = "█"
	progressEmpty = "░"
	barWidth      = 20
)

// CrawlTracker renders the single-line crawl status to the terminal.
// All output goes through carriage-return overwrites on one line so log
// output and the status line do not interleave.
type CrawlTracker struct {
	Quiet     bool
	StartTime time.Time

	visited int
	lineLen int
}

// NewCrawlTracker creates a tracker; quiet suppresses all terminal output
func NewCrawlTracker(quiet bool) *CrawlTracker {
	return &CrawlTracker{
		Quiet:     quiet,
		StartTime: time.Now(),
	}
}

// UserStarted announces the user currently being walked
func (ct *CrawlTracker) UserStarted(name string, pending int) {
	if ct.Quiet {
		return
	}
	ct.clearLine()
	fmt.Printf("\n%s %s %s\n", Magenta("[VISITING]"), Yellow(name),
		Dim(fmt.Sprintf("(%d pending)", pending)))
}

// UserFinished marks a user as fully persisted
func (ct *CrawlTracker) UserFinished(name string) {
	ct.visited++
	if ct.Quiet {
		return
	}
	ct.clearLine()
	fmt.Printf("%s %s %s\n", Green("[DONE]"), name,
		Dim(fmt.Sprintf("visited: %d, rate: %.1f/min", ct.visited, ct.visitRate())))
}

// UserSkipped reports a frontier decision without a visit
func (ct *CrawlTracker) UserSkipped(name, reason string) {
	if ct.Quiet {
		return
	}
	ct.clearLine()
	fmt.Printf("%s %s %s\n", Yellow("[SKIPPED]"), name, Dim(reason))
}

// PageProgress overwrites the status line with pagination progress
func (ct *CrawlTracker) PageProgress(kind string, collected, expected int) {
	if ct.Quiet {
		return
	}
	line := fmt.Sprintf("%s %s %d/%d", Cyan("[PAGING]"), kind, collected, expected)
	if expected > 0 {
		line += " " + renderBar(collected, expected)
	}
	ct.overwriteLine(line)
}

// Cooldown overwrites the status line with the remaining cooldown. Wired
// into the governor's progress hook so the countdown ticks once a second.
func (ct *CrawlTracker) Cooldown(remaining, total time.Duration) {
	if ct.Quiet {
		return
	}
	elapsed := total - remaining
	line := fmt.Sprintf("%s resuming in %s %s",
		Red("[COOLDOWN]"),
		remaining.Round(time.Second),
		renderBar(int(elapsed.Seconds()), int(total.Seconds())))
	ct.overwriteLine(line)
}

func (ct *CrawlTracker) visitRate() float64 {
	elapsed := time.Since(ct.StartTime).Minutes()
	if elapsed == 0 {
		return 0
	}
	return float64(ct.visited) / elapsed
}

func renderBar(done, total int) string {
	if total <= 0 {
		total = 1
	}
	if done > total {
		done = total
	}
	filled := done * barWidth / total
	return "[" + strings.Repeat(progressBar, filled) +
		strings.Repeat(progressEmpty, barWidth-filled) + "]"
}

func (ct *CrawlTracker) overwriteLine(line string) {
	pad := ""
	if n := ct.lineLen - len(line); n > 0 {
		pad = strings.Repeat(" ", n)
	}
	fmt.Printf("\r%s%s", line, pad)
	ct.lineLen = len(line)
}

func (ct *CrawlTracker) clearLine() {
	if ct.lineLen > 0 {
		fmt.Printf("\r%s\r", strings.Repeat(" ", ct.lineLen))
		ct.lineLen = 0
	}
}
