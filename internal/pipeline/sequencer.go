package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"koneko/internal/logging"
	"koneko/internal/services"
)

// DefaultWaitTimeout bounds how long PolicyWait waits for the head ordinal.
const DefaultWaitTimeout = 30 * time.Second

// Sequencer is the reorder buffer between the producer and the display.
type Sequencer struct {
	Policy      Policy
	WaitTimeout time.Duration
	Logger      *slog.Logger
	Metrics     *Metrics
}

// Run releases completions from in to out in the order of expected, then
// closes out. Completions for ordinals not in expected are ignored.
//
// The head of the pending queue is released as soon as it has completed,
// and every ready ordinal behind it is released in the same pass. Run
// blocks on in only when the head has not completed. When in closes, the
// remaining ordinals are handled by the policy.
func (s *Sequencer) Run(ctx context.Context, expected []int, in <-chan Completion, out chan<- string) error {
	defer close(out)
	logger := logging.WithContext(services.WithStage(ctx, "sequencer"), s.logger())

	pending := append([]int(nil), expected...)
	wanted := make(map[int]struct{}, len(pending))
	for _, ordinal := range pending {
		wanted[ordinal] = struct{}{}
	}
	completed := make(map[int]Completion)
	open := true
	// deadline bounds the wait for headSince; it restarts only when the
	// head changes, not on each arrival behind it.
	var deadline time.Time
	headSince := -1
	pop := func() {
		delete(wanted, pending[0])
		pending = pending[1:]
	}

	for len(pending) > 0 {
		head := pending[0]
		if c, ok := completed[head]; ok {
			delete(completed, head)
			pop()
			s.Metrics.depth(len(completed))
			if c.Err != nil {
				s.Metrics.skipped(1)
				logger.Info("skipping failed ordinal", logging.Ordinal(head))
				continue
			}
			select {
			case out <- c.Path:
			case <-ctx.Done():
				return ctx.Err()
			}
			continue
		}

		if !open {
			switch s.policy() {
			case PolicyDrop:
				s.Metrics.skipped(len(pending))
				logger.Info("dropping unreached ordinals",
					logging.Int("count", len(pending)),
					logging.Ordinal(head),
				)
				return nil
			case PolicyFail:
				return fmt.Errorf("%w: ordinal %d never completed (%d pending)", ErrIncomplete, head, len(pending))
			default:
				s.Metrics.skipped(1)
				logger.Info("skipping unreached ordinal", logging.Ordinal(head))
				pop()
				continue
			}
		}

		if head != headSince {
			headSince = head
			deadline = time.Now().Add(s.waitTimeout())
		}
		c, received, timedOut, err := s.receive(ctx, in, deadline)
		if err != nil {
			return err
		}
		if timedOut {
			s.Metrics.skipped(1)
			logger.Warn("head ordinal timed out", logging.Ordinal(head))
			pop()
			continue
		}
		if !received {
			open = false
			continue
		}
		if _, ok := wanted[c.Ordinal]; !ok {
			logger.Debug("ignoring unexpected ordinal", logging.Ordinal(c.Ordinal))
			continue
		}
		if c.Err != nil {
			switch s.policy() {
			case PolicyDrop:
				// A failed job never completes; its ordinal stalls the queue
				// until the producer finishes.
				continue
			case PolicyFail:
				return fmt.Errorf("%w: ordinal %d: %w", ErrIncomplete, c.Ordinal, c.Err)
			}
		}
		completed[c.Ordinal] = c
		s.Metrics.depth(len(completed))
	}
	return nil
}

// receive waits for the next completion. received is false once in is
// closed; timedOut is true when PolicyWait's deadline passed first.
func (s *Sequencer) receive(ctx context.Context, in <-chan Completion, deadline time.Time) (c Completion, received, timedOut bool, err error) {
	var timeout <-chan time.Time
	if s.policy() == PolicyWait {
		timer := time.NewTimer(max(time.Until(deadline), 0))
		defer timer.Stop()
		timeout = timer.C
	}
	select {
	case c, received = <-in:
		return c, received, false, nil
	case <-timeout:
		return Completion{}, false, true, nil
	case <-ctx.Done():
		return Completion{}, false, false, ctx.Err()
	}
}

func (s *Sequencer) policy() Policy {
	if s.Policy == "" {
		return PolicyDrop
	}
	return s.Policy
}

func (s *Sequencer) waitTimeout() time.Duration {
	if s.WaitTimeout <= 0 {
		return DefaultWaitTimeout
	}
	return s.WaitTimeout
}

func (s *Sequencer) logger() *slog.Logger {
	if s.Logger == nil {
		return logging.NewNop()
	}
	return logging.NewComponentLogger(s.Logger, "pipeline.sequencer")
}
