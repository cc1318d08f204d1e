package journal

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// EntryKind captures what a journal row records.
type EntryKind string

const (
	KindMutationApplied    EntryKind = "mutation_applied"
	KindMutationConfirmed  EntryKind = "mutation_confirmed"
	KindMutationRolledBack EntryKind = "mutation_rolled_back"
	KindReplySubmitted     EntryKind = "reply_submitted"
	KindTicketsMerged      EntryKind = "tickets_merged"
)

// Entry is an immutable audit row for one console action against a ticket.
type Entry struct {
	ID        string
	TicketID  int64
	SessionID *string
	Kind      EntryKind
	Detail    map[string]any
	CreatedAt time.Time
}

// Repository persists the mutation journal.
type Repository interface {
	Create(ctx context.Context, entry *Entry) error
	ListByTicket(ctx context.Context, ticketID int64, limit, offset int) ([]Entry, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository instantiates the journal repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) Create(ctx context.Context, entry *Entry) error {
	const query = `
        INSERT INTO mutation_journal (ticket_id, session_id, kind, detail)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		entry.TicketID,
		entry.SessionID,
		entry.Kind,
		entry.Detail,
	).Scan(&entry.ID, &entry.CreatedAt)
}

func (r *repository) ListByTicket(ctx context.Context, ticketID int64, limit, offset int) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	const query = `
        SELECT id, ticket_id, session_id, kind, detail, created_at
        FROM mutation_journal WHERE ticket_id=$1
        ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.pool.Query(ctx, query, ticketID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEntries(rows)
}

func scanEntries(rows pgx.Rows) ([]Entry, error) {
	var result []Entry
	for rows.Next() {
		var entry Entry
		if err := rows.Scan(
			&entry.ID,
			&entry.TicketID,
			&entry.SessionID,
			&entry.Kind,
			&entry.Detail,
			&entry.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}
