package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/lmorchard/fediring-manager/internal/biz/domain"
	"github.com/lmorchard/fediring-manager/internal/biz/repo"
)

// Task names persisted in BotState.LastRuns.
const (
	taskProfileRefresh = "lastProfileRefresh"
	taskMemberMention  = "lastMemberMention"
)

// Scheduler runs the periodic tasks: pulling fresh membership data from the
// ring repository and broadcasting random member mentions. Last-run times are
// persisted so intervals survive restarts.
type Scheduler struct {
	profileRepo repo.ProfileRepo
	stateRepo   repo.StateRepo
	handlers    *Handlers
	namespace   string

	refreshInterval time.Duration
	mentionInterval time.Duration

	pollInterval time.Duration
	running      bool
	stopCh       chan struct{}
	wg           sync.WaitGroup
}

// NewScheduler creates a new scheduler.
func NewScheduler(
	profileRepo repo.ProfileRepo,
	stateRepo repo.StateRepo,
	handlers *Handlers,
	namespace string,
	refreshInterval time.Duration,
	mentionInterval time.Duration,
) *Scheduler {
	return &Scheduler{
		profileRepo:     profileRepo,
		stateRepo:       stateRepo,
		handlers:        handlers,
		namespace:       namespace,
		refreshInterval: refreshInterval,
		mentionInterval: mentionInterval,
		pollInterval:    60 * time.Second,
		stopCh:          make(chan struct{}),
	}
}

// Start starts the scheduler.
func (s *Scheduler) Start() {
	if s.running {
		return
	}
	s.running = true
	s.wg.Add(1)
	go s.loop()
	fmt.Printf("[Scheduler] Started with poll interval %v\n", s.pollInterval)
}

// Stop stops the scheduler.
func (s *Scheduler) Stop() {
	if !s.running {
		return
	}
	s.running = false
	close(s.stopCh)
	s.wg.Wait()
	fmt.Println("[Scheduler] Stopped")
}

func (s *Scheduler) loop() {
	defer s.wg.Done()

	// Initial run
	s.runDueTasks()

	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.runDueTasks()
		case <-s.stopCh:
			return
		}
	}
}

// runDueTasks runs every task whose interval has elapsed since its recorded
// last run.
func (s *Scheduler) runDueTasks() {
	ctx := context.Background()

	if due, err := s.taskDue(ctx, taskProfileRefresh, s.refreshInterval); err != nil {
		fmt.Printf("[Scheduler] Error checking %s: %v\n", taskProfileRefresh, err)
	} else if due {
		s.runTask(ctx, taskProfileRefresh, func() error {
			return s.profileRepo.Refresh(ctx)
		})
	}

	if due, err := s.taskDue(ctx, taskMemberMention, s.mentionInterval); err != nil {
		fmt.Printf("[Scheduler] Error checking %s: %v\n", taskMemberMention, err)
	} else if due {
		s.runTask(ctx, taskMemberMention, func() error {
			return s.handlers.MentionMembers(ctx)
		})
	}
}

func (s *Scheduler) taskDue(ctx context.Context, name string, interval time.Duration) (bool, error) {
	if interval <= 0 {
		return false, nil
	}

	state, err := s.stateRepo.Load(ctx, s.namespace)
	if err != nil {
		return false, err
	}

	last, ok := state.LastRuns[name]
	if !ok || last.IsZero() {
		return true, nil
	}
	return time.Since(last) >= interval, nil
}

// runTask runs one task and records its completion time. A failed task keeps
// its old timestamp so it retries on the next poll.
func (s *Scheduler) runTask(ctx context.Context, name string, run func() error) {
	fmt.Printf("[Scheduler] Running task: %s\n", name)
	startTime := time.Now()

	if err := run(); err != nil {
		fmt.Printf("[Scheduler] Task %s failed: %v\n", name, err)
		return
	}

	err := s.stateRepo.Update(ctx, s.namespace, func(state *domain.BotState) (bool, error) {
		if state.LastRuns == nil {
			state.LastRuns = make(map[string]time.Time)
		}
		state.LastRuns[name] = time.Now()
		return true, nil
	})
	if err != nil {
		fmt.Printf("[Scheduler] Error recording last run for %s: %v\n", name, err)
	}

	fmt.Printf("[Scheduler] Task %s completed in %v\n", name, time.Since(startTime))
}
