package usecase

import (
	"context"
	"fmt"
	"sync"

	"github.com/lmorchard/fediring-manager/internal/biz/repo"
)

// MembersUsecase mutates the ring membership list. A mutex serializes the
// read-modify-write cycle on the shared CSV against concurrent commands and
// the scheduler.
type MembersUsecase struct {
	profileRepo repo.ProfileRepo
	mu          sync.Mutex
}

// NewMembersUsecase creates a new members usecase.
func NewMembersUsecase(profileRepo repo.ProfileRepo) *MembersUsecase {
	return &MembersUsecase{profileRepo: profileRepo}
}

// Add appends one row per address to the membership list. Addresses already
// present are appended again; uniqueness is not enforced.
func (uc *MembersUsecase) Add(ctx context.Context, addresses []string) error {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	rows, err := uc.profileRepo.FetchRows(ctx)
	if err != nil {
		return fmt.Errorf("fetch member rows: %w", err)
	}

	if err := uc.profileRepo.PersistRows(ctx, rows.Append(addresses...)); err != nil {
		return fmt.Errorf("persist member rows: %w", err)
	}
	return nil
}

// Remove filters out every row whose address is in addresses. Removing an
// address that is not present is a no-op.
func (uc *MembersUsecase) Remove(ctx context.Context, addresses []string) error {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	rows, err := uc.profileRepo.FetchRows(ctx)
	if err != nil {
		return fmt.Errorf("fetch member rows: %w", err)
	}

	if err := uc.profileRepo.PersistRows(ctx, rows.RemoveAddresses(addresses...)); err != nil {
		return fmt.Errorf("persist member rows: %w", err)
	}
	return nil
}
