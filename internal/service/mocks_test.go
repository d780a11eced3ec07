package service

import (
	"context"

	"github.com/lmorchard/fediring-manager/internal/biz/domain"
)

// Mock implementations shared by the service tests.

type postedStatus struct {
	text  string
	reply domain.ReplyContext
}

type mockStatusRepo struct {
	replies    []postedStatus
	broadcasts []string
}

func (m *mockStatusRepo) PostReply(ctx context.Context, text string, reply domain.ReplyContext) error {
	m.replies = append(m.replies, postedStatus{text: text, reply: reply})
	return nil
}

func (m *mockStatusRepo) PostBroadcast(ctx context.Context, text string) error {
	m.broadcasts = append(m.broadcasts, text)
	return nil
}

func (m *mockStatusRepo) lastReply() postedStatus {
	if len(m.replies) == 0 {
		return postedStatus{}
	}
	return m.replies[len(m.replies)-1]
}

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
	persisted int
	refreshes int
}

func (m *mockProfileRepo) FetchRows(ctx context.Context) (domain.MemberList, error) {
	return m.rows, nil
}

func (m *mockProfileRepo) PersistRows(ctx context.Context, rows domain.MemberList) error {
	m.rows = rows
	m.persisted++
	return nil
}

func (m *mockProfileRepo) Refresh(ctx context.Context) error {
	m.refreshes++
	return nil
}
