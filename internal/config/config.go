// Package config loads pindoc settings from the environment.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/caarlos0/env/v6"
	"github.com/hashicorp/go-multierror"
	"github.com/joho/godotenv"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config holds every setting of the bot and the CLI
type Config struct {
	// Discord
	Token         string `env:"DISCORD_TOKEN"`
	AppID         string `env:"DISCORD_APP_ID"`
	OwnerID       string `env:"OWNER_ID"`
	CommandPrefix string `env:"COMMAND_PREFIX" envDefault:"!"`
	// RequiredPermission names the permission needed to run doc
	RequiredPermission string `env:"REQUIRED_PERMISSION" envDefault:"manage_messages"`

	// Reports
	ReportFilename       string        `env:"REPORT_FILENAME" envDefault:"summary_doc.md"`
	EmptySectionTemplate string        `env:"EMPTY_SECTION_TEMPLATE"`
	ReportLockTTL        time.Duration `env:"REPORT_LOCK_TTL" envDefault:"2m"`

	// Backends. Empty URLs fall back to in-process implementations.
	RedisURL    string `env:"REDIS_URL"`
	DatabaseURL string `env:"DATABASE_URL"`

	// HTTPPort 0 disables the ops server
	HTTPPort int `env:"HTTP_PORT" envDefault:"8080"`

	// Workers
	WorkerConcurrency    int           `env:"WORKER_CONCURRENCY" envDefault:"2"`
	WorkerDequeueTimeout time.Duration `env:"WORKER_DEQUEUE_TIMEOUT" envDefault:"5s"`
	JobQueueSize         int           `env:"JOB_QUEUE_SIZE" envDefault:"64"`

	// Logging. An empty LogFile logs to stderr only.
	LogFile       string `env:"LOG_FILE"`
	LogMaxSizeMB  int    `env:"LOG_MAX_SIZE_MB" envDefault:"100"`
	LogMaxBackups int    `env:"LOG_MAX_BACKUPS" envDefault:"3"`
	LogMaxAgeDays int    `env:"LOG_MAX_AGE_DAYS" envDefault:"28"`
}

var permissions = map[string]int64{
	"manage_messages": discordgo.PermissionManageMessages,
	"manage_channels": discordgo.PermissionManageChannels,
	"manage_guild":    discordgo.PermissionManageServer,
	"administrator":   discordgo.PermissionAdministrator,
	"send_messages":   discordgo.PermissionSendMessages,
}

// Load reads envfile (if present, without overriding the process
// environment) and decodes the environment into a Config.
func Load(envfile string) (*Config, error) {
	if envfile != "" {
		if err := godotenv.Load(envfile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", envfile, err)
		}
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}

// Validate reports every invalid setting at once
func (c *Config) Validate() error {
	var result *multierror.Error

	if c.CommandPrefix == "" {
		result = multierror.Append(result, errors.New("COMMAND_PREFIX must not be empty"))
	}
	if _, err := c.Permission(); err != nil {
		result = multierror.Append(result, err)
	}
	if c.ReportFilename == "" {
		result = multierror.Append(result, errors.New("REPORT_FILENAME must not be empty"))
	}
	if c.EmptySectionTemplate != "" && !strings.Contains(c.EmptySectionTemplate, "{link}") {
		result = multierror.Append(result, errors.New("EMPTY_SECTION_TEMPLATE must contain {link}"))
	}
	if c.ReportLockTTL <= 0 {
		result = multierror.Append(result, errors.New("REPORT_LOCK_TTL must be positive"))
	}
	if c.HTTPPort < 0 || c.HTTPPort > 65535 {
		result = multierror.Append(result, fmt.Errorf("HTTP_PORT %d out of range", c.HTTPPort))
	}
	if c.WorkerConcurrency < 1 {
		result = multierror.Append(result, errors.New("WORKER_CONCURRENCY must be at least 1"))
	}
	if c.WorkerDequeueTimeout <= 0 {
		result = multierror.Append(result, errors.New("WORKER_DEQUEUE_TIMEOUT must be positive"))
	}
	if c.JobQueueSize < 1 {
		result = multierror.Append(result, errors.New("JOB_QUEUE_SIZE must be at least 1"))
	}

	return result.ErrorOrNil()
}

// RequireToken fails when no Discord bot token is configured
func (c *Config) RequireToken() error {
	if c.Token == "" {
		return errors.New("DISCORD_TOKEN is required")
	}
	return nil
}

// Permission returns the permission bit named by RequiredPermission
func (c *Config) Permission() (int64, error) {
	bit, ok := permissions[strings.ToLower(strings.TrimSpace(c.RequiredPermission))]
	if !ok {
		return 0, fmt.Errorf("REQUIRED_PERMISSION %q is not one of manage_messages, manage_channels, manage_guild, administrator, send_messages", c.RequiredPermission)
	}
	return bit, nil
}

// BotToken returns the token in the form the Discord API expects
func (c *Config) BotToken() string {
	if strings.HasPrefix(c.Token, "Bot ") {
		return c.Token
	}
	return "Bot " + c.Token
}

// LogWriter returns a rotating file writer, or nil when LogFile is unset
func (c *Config) LogWriter() io.WriteCloser {
	if c.LogFile == "" {
		return nil
	}
	return &lumberjack.Logger{
		Filename:   c.LogFile,
		MaxSize:    c.LogMaxSizeMB, // megabytes
		MaxBackups: c.LogMaxBackups,
		MaxAge:     c.LogMaxAgeDays, // days
	}
}
