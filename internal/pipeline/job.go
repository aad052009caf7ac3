package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Job is one download: the item at Ordinal is fetched from URL into Path.
type Job struct {
	Ordinal int
	URL     string
	Path    string
}

// Completion is the producer's report that a job finished. Err is set when
// the job failed; Path is still the job's target.
type Completion struct {
	Ordinal int
	Path    string
	Err     error
}

// Fetcher writes the bytes at url to path.
type Fetcher interface {
	Fetch(ctx context.Context, url, path string) error
}

// Renderer draws the image at path into the terminal.
type Renderer interface {
	Render(ctx context.Context, path string, size, x, y int) error
}

// Policy decides what the sequencer does with ordinals that fail or never
// arrive.
type Policy string

const (
	// PolicyDrop ignores failed jobs. When the producer finishes, every
	// ordinal not yet released is dropped, including completed ones queued
	// behind a gap.
	PolicyDrop Policy = "drop"
	// PolicySkip advances past failed jobs at once, and past unreached
	// ordinals once the producer finishes.
	PolicySkip Policy = "skip"
	// PolicyFail ends the run with ErrIncomplete at the first failed or
	// unreached ordinal.
	PolicyFail Policy = "fail"
	// PolicyWait behaves like PolicySkip but also skips the head ordinal
	// when it has not arrived within the wait timeout.
	PolicyWait Policy = "wait"
)

// ErrIncomplete reports a run that stopped before releasing every ordinal.
var ErrIncomplete = errors.New("pipeline incomplete")

// ParsePolicy parses a policy name; empty selects PolicyDrop.
func ParsePolicy(s string) (Policy, error) {
	switch p := Policy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return PolicyDrop, nil
	case PolicyDrop, PolicySkip, PolicyFail, PolicyWait:
		return p, nil
	default:
		return "", fmt.Errorf("unknown completion policy %q", s)
	}
}
