package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/custodia-labs/pindoc/internal/core/domain"
	"github.com/custodia-labs/pindoc/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.RunStore = (*RunStore)(nil)

// RunStore implements driven.RunStore using PostgreSQL
type RunStore struct {
	db *DB
}

// NewRunStore creates a new RunStore
func NewRunStore(db *DB) *RunStore {
	return &RunStore{db: db}
}

// Save inserts a run, overwriting a previous row with the same ID
func (s *RunStore) Save(ctx context.Context, run *domain.ReportRun) error {
	query := `
		INSERT INTO report_runs (id, guild_id, requested_by, args, range_label, sections, status, error, started_at, duration_ms)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET
			range_label = EXCLUDED.range_label,
			sections = EXCLUDED.sections,
			status = EXCLUDED.status,
			error = EXCLUDED.error,
			duration_ms = EXCLUDED.duration_ms
	`

	args := run.Args
	if args == nil {
		args = []string{}
	}

	_, err := s.db.ExecContext(ctx, query,
		run.ID,
		run.GuildID,
		NullString(run.RequestedBy),
		pq.Array(args),
		NullString(run.RangeLabel),
		run.Sections,
		string(run.Status),
		NullString(run.Error),
		run.StartedAt,
		run.Duration.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("save run %s: %w", run.ID, err)
	}
	return nil
}

// ListByGuild returns up to limit runs of a guild, newest first
func (s *RunStore) ListByGuild(ctx context.Context, guildID string, limit int) ([]*domain.ReportRun, error) {
	query := `
		SELECT id, guild_id, requested_by, args, range_label, sections, status, error, started_at, duration_ms
		FROM report_runs
		WHERE guild_id = $1
		ORDER BY started_at DESC
		LIMIT $2
	`

	rows, err := s.db.QueryContext(ctx, query, guildID, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs of guild %s: %w", guildID, err)
	}
	defer rows.Close()

	runs := make([]*domain.ReportRun, 0, limit)
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Ping checks if the PostgreSQL backend is healthy.
func (s *RunStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func scanRun(rows *sql.Rows) (*domain.ReportRun, error) {
	var run domain.ReportRun
	var requestedBy, rangeLabel, errMsg sql.NullString
	var status string
	var durationMS int64

	err := rows.Scan(
		&run.ID,
		&run.GuildID,
		&requestedBy,
		pq.Array(&run.Args),
		&rangeLabel,
		&run.Sections,
		&status,
		&errMsg,
		&run.StartedAt,
		&durationMS,
	)
	if err != nil {
		return nil, fmt.Errorf("scan run: %w", err)
	}

	run.RequestedBy = requestedBy.String
	run.RangeLabel = rangeLabel.String
	run.Error = errMsg.String
	run.Status = domain.RunStatus(status)
	run.Duration = time.Duration(durationMS) * time.Millisecond
	return &run, nil
}
