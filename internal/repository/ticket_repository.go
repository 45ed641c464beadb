package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/support-bot/internal/domain"
	"github.com/spec-kit/support-bot/pkg/util"
)

// TicketRepository encapsulates ticket persistence. The store assigns ids on
// creation; Update overwrites all mutable fields of an existing row.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id int64) (*domain.Ticket, error)
	Update(ctx context.Context, ticket *domain.Ticket) error
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates the repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	userID, err := snowflakeToInt(ticket.UserID)
	if err != nil {
		return err
	}
	extra, err := marshalExtra(ticket.Extra)
	if err != nil {
		return err
	}
	const query = `
        INSERT INTO support_tickets (user_id, submission_date, subject, description, extra, status)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id`
	return r.pool.QueryRow(ctx, query,
		userID,
		ticket.SubmissionDate,
		ticket.Subject,
		ticket.Description,
		extra,
		int16(ticket.Status),
	).Scan(&ticket.ID)
}

func (r *ticketRepository) GetByID(ctx context.Context, id int64) (*domain.Ticket, error) {
	const query = `
        SELECT id, user_id, submission_date, subject, description, extra, status
        FROM support_tickets WHERE id=$1`

	var (
		ticket domain.Ticket
		userID int64
		extra  []byte
		status int16
	)
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&ticket.ID,
		&userID,
		&ticket.SubmissionDate,
		&ticket.Subject,
		&ticket.Description,
		&extra,
		&status,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, util.NewNotFound("ticket", map[string]any{"id": id})
		}
		return nil, err
	}

	ticket.UserID = strconv.FormatInt(userID, 10)
	ticket.Status = domain.TicketStatus(status)
	if err := json.Unmarshal(extra, &ticket.Extra); err != nil {
		return nil, fmt.Errorf("decode ticket %d extra: %w", id, err)
	}
	return &ticket, nil
}

func (r *ticketRepository) Update(ctx context.Context, ticket *domain.Ticket) error {
	extra, err := marshalExtra(ticket.Extra)
	if err != nil {
		return err
	}
	const query = `
        UPDATE support_tickets SET extra=$1, status=$2
        WHERE id=$3`
	cmd, err := r.pool.Exec(ctx, query, extra, int16(ticket.Status), ticket.ID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return util.NewNotFound("ticket", map[string]any{"id": ticket.ID})
	}
	return nil
}

func snowflakeToInt(id string) (int64, error) {
	parsed, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid snowflake %q: %w", id, err)
	}
	return parsed, nil
}

func marshalExtra(extra map[string]any) ([]byte, error) {
	if extra == nil {
		extra = map[string]any{}
	}
	encoded, err := json.Marshal(extra)
	if err != nil {
		return nil, fmt.Errorf("encode ticket extra: %w", err)
	}
	return encoded, nil
}
