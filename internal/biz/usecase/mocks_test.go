package usecase

import (
	"context"

	"github.com/lmorchard/fediring-manager/internal/biz/domain"
)

// Mock implementations shared by the usecase tests.

type mockStateRepo struct {
	states map[string]*domain.BotState
	saves  int
}

func newMockStateRepo() *mockStateRepo {
	return &mockStateRepo{states: make(map[string]*domain.BotState)}
}

func (m *mockStateRepo) Load(ctx context.Context, name string) (*domain.BotState, error) {
	state, ok := m.states[name]
	if !ok {
		return &domain.BotState{}, nil
	}
	cp := *state
	return &cp, nil
}

func (m *mockStateRepo) Update(ctx context.Context, name string, mutate func(state *domain.BotState) (bool, error)) error {
	state, err := m.Load(ctx, name)
	if err != nil {
		return err
	}
	changed, err := mutate(state)
	if err != nil {
		return err
	}
	if changed {
		cp := *state
		m.states[name] = &cp
		m.saves++
	}
	return nil
}

func (m *mockStateRepo) Close() error { return nil }

type mockProfileRepo struct {
	rows      domain.MemberList
	persisted domain.MemberList
	refreshes int
}

func (m *mockProfileRepo) FetchRows(ctx context.Context) (domain.MemberList, error) {
	return m.rows, nil
}

func (m *mockProfileRepo) PersistRows(ctx context.Context, rows domain.MemberList) error {
	m.rows = rows
	m.persisted = rows
	return nil
}

func (m *mockProfileRepo) Refresh(ctx context.Context) error {
	m.refreshes++
	return nil
}
