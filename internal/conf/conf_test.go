package conf

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func validEnv(t *testing.T) {
	t.Setenv("SERVER_URL", "https://social.example")
	t.Setenv("ACCESS_TOKEN", "token")
	t.Setenv("GIT_REPO_URL", "https://token@git.example/fediring")
}

func TestLoadFromEnvDefaults(t *testing.T) {
	validEnv(t)

	cfg := LoadFromEnv()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 10*time.Minute, cfg.Ring.UpdateInterval)
	assert.Equal(t, 7*24*time.Hour, cfg.Mention.Interval)
	assert.Equal(t, 5, cfg.Mention.Count)
	assert.Equal(t, 0.5, cfg.State.MaxHistoryRatio)
	assert.Equal(t, filepath.Join("content", "profiles.csv"), cfg.Ring.ProfilesPath)
	assert.Nil(t, cfg.AdminAccounts)
}

func TestLoadFromEnvOverrides(t *testing.T) {
	validEnv(t)
	t.Setenv("MEMBER_MENTION_COUNT", "3")
	t.Setenv("MEMBER_MENTION_HOURS", "48")
	t.Setenv("ADMIN_ACCOUNTS", "admin@a.example, root@b.example")

	cfg := LoadFromEnv()

	assert.Equal(t, 3, cfg.Mention.Count)
	assert.Equal(t, 48*time.Hour, cfg.Mention.Interval)
	assert.Equal(t, []string{"admin@a.example", "root@b.example"}, cfg.AdminAccounts)
}

func TestValidateRequiresServer(t *testing.T) {
	t.Setenv("SERVER_URL", "")
	t.Setenv("ACCESS_TOKEN", "")
	t.Setenv("GIT_REPO_URL", "https://git.example/fediring")

	cfg := LoadFromEnv()
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SERVER_URL")
}

func TestValidateRejectsBadRatio(t *testing.T) {
	validEnv(t)
	t.Setenv("MAX_HISTORY_RATIO", "1.5")

	cfg := LoadFromEnv()
	require.Error(t, cfg.Validate())
}

func TestDefaultTemplatesCoverAllNames(t *testing.T) {
	cfg := DefaultTemplatesConfig()

	for _, name := range []string{
		TemplateCommandHelp, TemplateCommandAdd, TemplateCommandAddDeferred,
		TemplateCommandRemove, TemplateCommandRemoveDeferred, TemplateCommandRandom,
		TemplateMentionMembers, TemplateCommandPending, TemplateCommandDefer,
		TemplateCommandCancel, TemplateCommandFlush, TemplateUnknownCommand,
		TemplateError,
	} {
		assert.NotEmpty(t, cfg.Templates[name], "missing default for %s", name)
	}
}

func TestLoadTemplatesConfigOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "templates.yaml")
	writeFile(t, path, "templates:\n  command-random: \"Meet {{.Member}}!\"\n")

	cfg, err := LoadTemplatesConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "Meet {{.Member}}!", cfg.Templates[TemplateCommandRandom])
	// Everything else keeps its default.
	assert.NotEmpty(t, cfg.Templates[TemplateCommandHelp])
}

func TestLoadTemplatesConfigMissingFile(t *testing.T) {
	cfg, err := LoadTemplatesConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.NotEmpty(t, cfg.Templates[TemplateError])
}
