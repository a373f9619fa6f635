package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/haf/internal/domain"
)

// ArchiveRepository keeps every registered entry in Postgres.
type ArchiveRepository interface {
	Insert(ctx context.Context, entry domain.LogEntry) error
	List(ctx context.Context, limit, offset int) ([]domain.LogEntry, error)
	GetByTicketID(ctx context.Context, ticketID string) ([]domain.LogEntry, error)
}

type archiveRepository struct {
	pool *pgxpool.Pool
}

// NewArchiveRepository returns a Postgres-backed implementation.
func NewArchiveRepository(pool *pgxpool.Pool) ArchiveRepository {
	return &archiveRepository{pool: pool}
}

func (r *archiveRepository) Insert(ctx context.Context, entry domain.LogEntry) error {
	const query = `
        INSERT INTO ticket_log (entry_id, kind, ticket_id, call_type, user_id, contact, hostname, variable,
            solution, team, attachments, hostname_applies, registered_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
        ON CONFLICT (entry_id) DO NOTHING`

	attachments := entry.Attachments
	if attachments == nil {
		attachments = []string{}
	}
	_, err := r.pool.Exec(ctx, query,
		entry.ID,
		string(entry.Kind),
		entry.TicketID,
		entry.Call.CallType,
		entry.Call.UserID,
		entry.Call.Contact,
		entry.Call.Hostname,
		entry.Call.Variable,
		entry.Call.Solution,
		entry.Team,
		attachments,
		entry.HostnameApplies,
		entry.Timestamp,
	)
	return err
}

const archiveColumns = `entry_id::text, kind, ticket_id, call_type, user_id, contact, hostname, variable,
               solution, team, attachments, hostname_applies, registered_at`

func (r *archiveRepository) List(ctx context.Context, limit, offset int) ([]domain.LogEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
        SELECT ` + archiveColumns + `
        FROM ticket_log ORDER BY registered_at DESC LIMIT $1 OFFSET $2`
	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	return scanEntries(rows)
}

func (r *archiveRepository) GetByTicketID(ctx context.Context, ticketID string) ([]domain.LogEntry, error) {
	query := `
        SELECT ` + archiveColumns + `
        FROM ticket_log WHERE ticket_id=$1 ORDER BY registered_at DESC`
	rows, err := r.pool.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	return scanEntries(rows)
}

func scanEntries(rows pgx.Rows) ([]domain.LogEntry, error) {
	defer rows.Close()

	var entries []domain.LogEntry
	for rows.Next() {
		var (
			entry domain.LogEntry
			kind  string
		)
		if err := rows.Scan(
			&entry.ID,
			&kind,
			&entry.TicketID,
			&entry.Call.CallType,
			&entry.Call.UserID,
			&entry.Call.Contact,
			&entry.Call.Hostname,
			&entry.Call.Variable,
			&entry.Call.Solution,
			&entry.Team,
			&entry.Attachments,
			&entry.HostnameApplies,
			&entry.Timestamp,
		); err != nil {
			return nil, err
		}
		entry.Kind = domain.ParseLogKind(kind)
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
