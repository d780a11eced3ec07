package usecase

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/lmorchard/fediring-manager/internal/biz/domain"
	"github.com/lmorchard/fediring-manager/internal/biz/repo"
)

// SelectorUsecase picks bounded random samples of member addresses while
// avoiding recent repeats. Every call mutates the persisted selection
// history, even when the caller discards the result.
type SelectorUsecase struct {
	profileRepo     repo.ProfileRepo
	stateRepo       repo.StateRepo
	namespace       string
	maxHistoryRatio float64
}

// NewSelectorUsecase creates a new selector usecase. maxHistoryRatio bounds
// the persisted history as a fraction of current membership so that the
// anti-repeat filter can never exclude everyone.
func NewSelectorUsecase(
	profileRepo repo.ProfileRepo,
	stateRepo repo.StateRepo,
	namespace string,
	maxHistoryRatio float64,
) *SelectorUsecase {
	return &SelectorUsecase{
		profileRepo:     profileRepo,
		stateRepo:       stateRepo,
		namespace:       namespace,
		maxHistoryRatio: maxHistoryRatio,
	}
}

// SelectRandom returns up to count member addresses chosen uniformly at
// random, excluding addresses in the selection history. A small membership
// yields a short result rather than an error.
func (uc *SelectorUsecase) SelectRandom(ctx context.Context, count int) ([]string, error) {
	rows, err := uc.profileRepo.FetchRows(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch member rows: %w", err)
	}

	// First row is the CSV header.
	if len(rows) <= 1 {
		return nil, nil
	}
	profilesCount := len(rows) - 1

	var selection []string
	err = uc.stateRepo.Update(ctx, uc.namespace, func(state *domain.BotState) (bool, error) {
		history := state.SelectionHistory

		// Truncate history so the exclusion filter below cannot remove
		// every candidate as membership shrinks or count grows.
		if len(history)+count >= profilesCount {
			keep := profilesCount - count
			if keep < 0 {
				keep = 0
			}
			if keep < len(history) {
				history = history[:keep]
			}
		}

		recent := make(map[string]bool, len(history))
		for _, addr := range history {
			recent[addr] = true
		}

		candidates := make([]string, 0, profilesCount)
		for _, row := range rows[1:] {
			addr := row.Address()
			if addr == "" || recent[addr] {
				continue
			}
			candidates = append(candidates, addr)
		}

		rand.Shuffle(len(candidates), func(i, j int) {
			candidates[i], candidates[j] = candidates[j], candidates[i]
		})
		if count < len(candidates) {
			selection = candidates[:count]
		} else {
			selection = candidates
		}

		// Prepend the new selection, most recent first, and cap the result.
		updated := make([]string, 0, len(selection)+len(history))
		updated = append(updated, selection...)
		updated = append(updated, history...)
		maxHistory := int(float64(profilesCount) * uc.maxHistoryRatio)
		if len(updated) > maxHistory {
			updated = updated[:maxHistory]
		}
		state.SelectionHistory = updated

		return true, nil
	})
	if err != nil {
		return nil, fmt.Errorf("update selection history: %w", err)
	}

	return selection, nil
}
