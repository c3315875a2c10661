package services

import (
	"context"
	"log"
	"sync"
	"time"
)

// Sweeper is the work a scheduler tick performs. *Notifier is the production
// implementation.
type Sweeper interface {
	SweepReminders(ctx context.Context, now time.Time)
	SweepDigests(ctx context.Context, now time.Time)
}

// Scheduler drives periodic eligibility evaluation: a short cadence for
// reminders and a longer one for digests. It owns its lifecycle (Start/Stop)
// and holds no persisted state: eligibility plus the dispatch dedup log are
// the only guards against duplicate notifications.
//
// Both tick families are consumed by a single goroutine, so sweeps are
// serialized by construction: a slow sweep delays the next tick instead of
// overlapping it.
type Scheduler struct {
	Sweeper        Sweeper
	ReminderEvery  time.Duration
	DigestEvery    time.Duration
	Now            func() time.Time // defaults to time.Now; injectable for tests
	ReminderTicks  <-chan time.Time // optional tick source override for tests
	DigestTicks    <-chan time.Time
	InitialDigests bool // run a digest sweep immediately on Start

	mu      sync.Mutex
	stop    chan struct{}
	done    chan struct{}
	started bool
}

func (s *Scheduler) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Start launches the scheduling loop. Calling Start on a running scheduler
// is a no-op.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return
	}
	s.started = true
	s.stop = make(chan struct{})
	s.done = make(chan struct{})

	reminderTicks := s.ReminderTicks
	digestTicks := s.DigestTicks
	var tickers []*time.Ticker
	if reminderTicks == nil {
		t := time.NewTicker(s.ReminderEvery)
		tickers = append(tickers, t)
		reminderTicks = t.C
	}
	if digestTicks == nil {
		t := time.NewTicker(s.DigestEvery)
		tickers = append(tickers, t)
		digestTicks = t.C
	}

	go func() {
		defer close(s.done)
		defer func() {
			for _, t := range tickers {
				t.Stop()
			}
		}()

		log.Printf("[scheduler] started (reminders every %s, digests every %s)", s.ReminderEvery, s.DigestEvery)

		if s.InitialDigests {
			s.runDigestSweep()
		}

		for {
			select {
			case <-s.stop:
				return
			case <-reminderTicks:
				s.runReminderSweep()
			case <-digestTicks:
				s.runDigestSweep()
			}
		}
	}()
}

// Stop halts the loop and waits for an in-flight sweep to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	s.started = false
	close(s.stop)
	done := s.done
	s.mu.Unlock()

	<-done
	log.Println("[scheduler] stopped")
}

func (s *Scheduler) runReminderSweep() {
	ctx, cancel := context.WithTimeout(context.Background(), s.ReminderEvery)
	defer cancel()
	s.Sweeper.SweepReminders(ctx, s.now())
}

func (s *Scheduler) runDigestSweep() {
	ctx, cancel := context.WithTimeout(context.Background(), s.DigestEvery)
	defer cancel()
	s.Sweeper.SweepDigests(ctx, s.now())
}
