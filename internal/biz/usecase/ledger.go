package usecase

import (
	"context"
	"fmt"

	"github.com/lmorchard/fediring-manager/internal/biz/domain"
	"github.com/lmorchard/fediring-manager/internal/biz/repo"
)

// LedgerUsecase manages the deferred request ledger: membership changes
// queued by non-admins until an admin acts on them. The full set is loaded
// and saved on every mutation; StateRepo.Update serializes access.
type LedgerUsecase struct {
	stateRepo repo.StateRepo
	namespace string
}

// NewLedgerUsecase creates a new ledger usecase.
func NewLedgerUsecase(stateRepo repo.StateRepo, namespace string) *LedgerUsecase {
	return &LedgerUsecase{
		stateRepo: stateRepo,
		namespace: namespace,
	}
}

// Add queues a deferred request. Adding a request text already present is a
// no-op that returns the existing entry without a persistence write.
func (uc *LedgerUsecase) Add(ctx context.Context, request, from string) (domain.DeferredRequest, error) {
	entry := domain.DeferredRequest{Request: request, From: from}

	err := uc.stateRepo.Update(ctx, uc.namespace, func(state *domain.BotState) (bool, error) {
		if existing, ok := state.PendingRequests.Find(request); ok {
			entry = existing
			return false, nil
		}
		state.PendingRequests, _ = state.PendingRequests.Add(entry)
		return true, nil
	})
	if err != nil {
		return domain.DeferredRequest{}, fmt.Errorf("add pending request: %w", err)
	}

	return entry, nil
}

// Cancel removes the request matching the given text. A missing request is
// not an error: Cancel returns nil and performs no persistence write.
func (uc *LedgerUsecase) Cancel(ctx context.Context, request string) (*domain.DeferredRequest, error) {
	var removed *domain.DeferredRequest

	err := uc.stateRepo.Update(ctx, uc.namespace, func(state *domain.BotState) (bool, error) {
		state.PendingRequests, removed = state.PendingRequests.Remove(request)
		return removed != nil, nil
	})
	if err != nil {
		return nil, fmt.Errorf("cancel pending request: %w", err)
	}

	return removed, nil
}

// List returns all deferred requests in insertion order.
func (uc *LedgerUsecase) List(ctx context.Context) (domain.DeferredRequestList, error) {
	state, err := uc.stateRepo.Load(ctx, uc.namespace)
	if err != nil {
		return nil, fmt.Errorf("list pending requests: %w", err)
	}
	return state.PendingRequests, nil
}

// Flush clears the ledger entirely. Flushing an empty ledger is a no-op.
func (uc *LedgerUsecase) Flush(ctx context.Context) error {
	err := uc.stateRepo.Update(ctx, uc.namespace, func(state *domain.BotState) (bool, error) {
		state.PendingRequests = nil
		return true, nil
	})
	if err != nil {
		return fmt.Errorf("flush pending requests: %w", err)
	}
	return nil
}
