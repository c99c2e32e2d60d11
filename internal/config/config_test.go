package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/hashicorp/go-multierror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/natefinch/lumberjack.v2"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")

	require.NoError(t, err)
	assert.Equal(t, "!", cfg.CommandPrefix)
	assert.Equal(t, "summary_doc.md", cfg.ReportFilename)
	assert.Equal(t, 2*time.Minute, cfg.ReportLockTTL)
	assert.Equal(t, 8080, cfg.HTTPPort)
	assert.Equal(t, 2, cfg.WorkerConcurrency)
	assert.Equal(t, 5*time.Second, cfg.WorkerDequeueTimeout)
	assert.Equal(t, 64, cfg.JobQueueSize)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "abc")
	t.Setenv("COMMAND_PREFIX", "?")
	t.Setenv("REPORT_LOCK_TTL", "30s")
	t.Setenv("WORKER_CONCURRENCY", "4")

	cfg, err := Load("")

	require.NoError(t, err)
	assert.Equal(t, "abc", cfg.Token)
	assert.Equal(t, "?", cfg.CommandPrefix)
	assert.Equal(t, 30*time.Second, cfg.ReportLockTTL)
	assert.Equal(t, 4, cfg.WorkerConcurrency)
}

func TestLoad_EnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("OWNER_ID=12345\n"), 0o600))
	t.Setenv("OWNER_ID", "")
	os.Unsetenv("OWNER_ID")

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, "12345", cfg.OwnerID)
}

func TestLoad_MissingEnvFileIsIgnored(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.env"))

	assert.NoError(t, err)
}

func TestLoad_BadValue(t *testing.T) {
	t.Setenv("HTTP_PORT", "eighty")

	_, err := Load("")

	assert.Error(t, err)
}

func TestValidate_CollectsEveryProblem(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	cfg.CommandPrefix = ""
	cfg.RequiredPermission = "kick"
	cfg.EmptySectionTemplate = "nothing here"
	cfg.WorkerConcurrency = 0
	cfg.HTTPPort = 70000

	err = cfg.Validate()

	require.Error(t, err)
	var merr *multierror.Error
	require.ErrorAs(t, err, &merr)
	assert.Len(t, merr.Errors, 5)
}

func TestPermission(t *testing.T) {
	cfg := &Config{RequiredPermission: " Administrator "}

	bit, err := cfg.Permission()

	require.NoError(t, err)
	assert.Equal(t, int64(discordgo.PermissionAdministrator), bit)
}

func TestRequireTokenAndBotToken(t *testing.T) {
	cfg := &Config{}
	assert.Error(t, cfg.RequireToken())

	cfg.Token = "abc"
	assert.NoError(t, cfg.RequireToken())
	assert.Equal(t, "Bot abc", cfg.BotToken())

	cfg.Token = "Bot abc"
	assert.Equal(t, "Bot abc", cfg.BotToken())
}

func TestLogWriter(t *testing.T) {
	cfg := &Config{}
	assert.Nil(t, cfg.LogWriter())

	cfg.LogFile = filepath.Join(t.TempDir(), "pindoc.log")
	cfg.LogMaxSizeMB = 10
	w := cfg.LogWriter()
	require.IsType(t, &lumberjack.Logger{}, w)
	assert.Equal(t, 10, w.(*lumberjack.Logger).MaxSize)
}
