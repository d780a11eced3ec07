package server

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/lmorchard/fediring-manager/internal/biz/domain"
	"github.com/lmorchard/fediring-manager/internal/infra/fediverse"
	"github.com/lmorchard/fediring-manager/internal/service"
)

// BotServer connects the fediverse notification stream to the command
// router and runs the periodic scheduler alongside it.
type BotServer struct {
	fediClient *fediverse.Client
	router     *service.Router
	scheduler  *service.Scheduler

	cancel context.CancelFunc

	// Status deduplication cache; stream reconnects can redeliver
	// notifications.
	seenMu sync.RWMutex
	seen   map[string]time.Time // status ID -> timestamp
}

// NewBotServer creates a new bot server.
func NewBotServer(
	fediClient *fediverse.Client,
	router *service.Router,
	scheduler *service.Scheduler,
) *BotServer {
	return &BotServer{
		fediClient: fediClient,
		router:     router,
		scheduler:  scheduler,
		seen:       make(map[string]time.Time),
	}
}

// Start subscribes to mention notifications, starts the scheduler, and
// blocks streaming until the context is cancelled or the stream fails
// unrecoverably.
func (s *BotServer) Start(ctx context.Context) error {
	ctx, s.cancel = context.WithCancel(ctx)

	s.fediClient.OnMention(func(m fediverse.Mention) {
		s.handleMention(ctx, m)
	})

	if s.scheduler != nil {
		s.scheduler.Start()
	}

	fmt.Println("[Server] Started, streaming notifications")
	return s.fediClient.Stream(ctx)
}

// Stop stops the server.
func (s *BotServer) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
	if s.cancel != nil {
		s.cancel()
	}
	fmt.Println("[Server] Stopped")
}

// handleMention converts a stream mention into a command dispatch. Mentions
// are handled one at a time in stream order.
func (s *BotServer) handleMention(ctx context.Context, m fediverse.Mention) {
	fmt.Printf("[Server] Mention from %s (status %s)\n", m.Acct, m.StatusID)

	if s.isSeen(m.StatusID) {
		fmt.Printf("[Server] Duplicate mention ignored: %s\n", m.StatusID)
		return
	}
	s.markSeen(m.StatusID)

	s.router.Route(ctx, domain.Mention{
		Account: domain.Account{Acct: m.Acct},
		Text:    m.Content,
		Reply: domain.ReplyContext{
			StatusID:   m.StatusID,
			Visibility: m.Visibility,
		},
	})
}

// isSeen checks if a status has been handled already.
func (s *BotServer) isSeen(statusID string) bool {
	s.seenMu.RLock()
	defer s.seenMu.RUnlock()
	_, exists := s.seen[statusID]
	return exists
}

// markSeen marks a status as handled and prunes stale entries.
func (s *BotServer) markSeen(statusID string) {
	s.seenMu.Lock()
	defer s.seenMu.Unlock()
	s.seen[statusID] = time.Now()

	cutoff := time.Now().Add(-30 * time.Minute)
	for id, ts := range s.seen {
		if ts.Before(cutoff) {
			delete(s.seen, id)
		}
	}
}
