package data

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/lmorchard/fediring-manager/internal/biz/domain"
	"github.com/lmorchard/fediring-manager/internal/biz/repo"
)

// GitStore is the subset of the git clone wrapper the profile repository
// needs.
type GitStore interface {
	// Update refreshes the local clone from the remote, cloning fresh if
	// needed.
	Update(ctx context.Context) error

	// Path returns the local clone directory.
	Path() string

	// CommitAndPush commits the file at the repo-relative path and pushes.
	CommitAndPush(ctx context.Context, path, message string) error
}

// profileRepo implements the Profile repository over the ring's git-backed
// CSV file.
type profileRepo struct {
	store        GitStore
	profilesPath string
}

// NewProfileRepo creates a new Profile repository. profilesPath is relative
// to the clone root.
func NewProfileRepo(store GitStore, profilesPath string) repo.ProfileRepo {
	return &profileRepo{
		store:        store,
		profilesPath: profilesPath,
	}
}

// FetchRows refreshes the clone and parses the membership CSV
func (r *profileRepo) FetchRows(ctx context.Context) (domain.MemberList, error) {
	if err := r.store.Update(ctx); err != nil {
		return nil, fmt.Errorf("failed to update clone: %w", err)
	}

	f, err := os.Open(r.profilesFile())
	if err != nil {
		return nil, fmt.Errorf("failed to open profiles: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	// Rows may carry differing field counts
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse profiles: %w", err)
	}

	rows := make(domain.MemberList, 0, len(records))
	for _, record := range records {
		rows = append(rows, domain.MemberRow(record))
	}
	return rows, nil
}

// PersistRows writes the membership CSV and pushes the change
func (r *profileRepo) PersistRows(ctx context.Context, rows domain.MemberList) error {
	f, err := os.Create(r.profilesFile())
	if err != nil {
		return fmt.Errorf("failed to write profiles: %w", err)
	}

	writer := csv.NewWriter(f)
	for _, row := range rows {
		if err := writer.Write(row); err != nil {
			f.Close()
			return fmt.Errorf("failed to write profiles: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		f.Close()
		return fmt.Errorf("failed to write profiles: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write profiles: %w", err)
	}

	if err := r.store.CommitAndPush(ctx, r.profilesPath, "update member profiles"); err != nil {
		return fmt.Errorf("failed to push profiles: %w", err)
	}
	return nil
}

// Refresh updates the local clone without reading it
func (r *profileRepo) Refresh(ctx context.Context) error {
	return r.store.Update(ctx)
}

func (r *profileRepo) profilesFile() string {
	return filepath.Join(r.store.Path(), r.profilesPath)
}
