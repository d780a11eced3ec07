package data

import (
	"github.com/lmorchard/fediring-manager/internal/biz/repo"
	"github.com/lmorchard/fediring-manager/internal/conf"
	"github.com/lmorchard/fediring-manager/internal/infra/fediverse"
	"github.com/lmorchard/fediring-manager/internal/infra/gitstore"
)

// Repositories contains all repositories
type Repositories struct {
	Profile repo.ProfileRepo
	State   repo.StateRepo
	Status  repo.StatusRepo
}

// NewRepositories creates all repositories
func NewRepositories(
	fediClient *fediverse.Client,
	cfg *conf.Config,
) (*Repositories, error) {
	stateRepo, err := NewStateRepo(cfg.State.DBPath)
	if err != nil {
		return nil, err
	}

	store := gitstore.New(cfg.Ring.RepoURL, cfg.Ring.ClonePath)

	return &Repositories{
		Profile: NewProfileRepo(store, cfg.Ring.ProfilesPath),
		State:   stateRepo,
		Status:  NewStatusRepo(fediClient),
	}, nil
}
