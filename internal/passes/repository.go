package passes

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/buspass/bus_pass/internal/infra"
)

const foreignKeyViolation = "23503"

// Repository persists passes. Lookups, updates and deletes are scoped to the
// owning user so one holder can never touch another holder's pass.
type Repository interface {
	Create(ctx context.Context, pass Pass) error
	ListByUser(ctx context.Context, userID string) ([]Pass, error)
	Get(ctx context.Context, userID, id string) (Pass, error)
	UpdateExpiry(ctx context.Context, pass Pass) error
	Delete(ctx context.Context, userID, id string) error
}

const passColumns = `id, user_id, name, dob, gender, address, email, phone, id_type, id_number,
        pass_type, issue_date, expiry_date, photo_url, status, created_at, updated_at`

// PostgresRepository stores passes in PostgreSQL.
type PostgresRepository struct {
	db infra.Querier
}

// NewPostgresRepository builds a repository backed by PostgreSQL.
func NewPostgresRepository(db infra.Querier) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a pass record.
func (r *PostgresRepository) Create(ctx context.Context, pass Pass) error {
	passID, err := uuid.Parse(pass.ID)
	if err != nil {
		return err
	}
	var owner *uuid.UUID
	if pass.UserID != "" {
		id, err := uuid.Parse(pass.UserID)
		if err != nil {
			return ErrUnknownOwner
		}
		owner = &id
	}
	_, err = r.db.Exec(ctx, `INSERT INTO passes (`+passColumns+`)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`,
		passID, owner, pass.Name, pass.DOB, pass.Gender, pass.Address, pass.Email, pass.Phone, pass.IDType, pass.IDNumber,
		pass.PassType, pass.IssueDate.UTC(), pass.ExpiryDate, pass.PhotoURL, pass.Status, pass.CreatedAt.UTC(), pass.UpdatedAt.UTC())
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation {
		return ErrUnknownOwner
	}
	return err
}

// ListByUser returns the user's passes, newest first.
func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]Pass, error) {
	owner, err := uuid.Parse(userID)
	if err != nil {
		return []Pass{}, nil
	}
	rows, err := r.db.Query(ctx, `SELECT `+passColumns+` FROM passes WHERE user_id = $1 ORDER BY created_at DESC`, owner)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Pass{}
	for rows.Next() {
		p, err := scanPass(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Get fetches one of the user's passes.
func (r *PostgresRepository) Get(ctx context.Context, userID, id string) (Pass, error) {
	passID, owner, ok := parseIDs(id, userID)
	if !ok {
		return Pass{}, ErrNotFound
	}
	row := r.db.QueryRow(ctx, `SELECT `+passColumns+` FROM passes WHERE id = $1 AND user_id = $2`, passID, owner)
	p, err := scanPass(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Pass{}, ErrNotFound
	}
	return p, err
}

// UpdateExpiry stores a new expiry and status for an owned pass.
func (r *PostgresRepository) UpdateExpiry(ctx context.Context, pass Pass) error {
	passID, owner, ok := parseIDs(pass.ID, pass.UserID)
	if !ok {
		return ErrNotFound
	}
	cmd, err := r.db.Exec(ctx, `UPDATE passes SET expiry_date = $1, status = $2, updated_at = $3
        WHERE id = $4 AND user_id = $5`, pass.ExpiryDate, pass.Status, pass.UpdatedAt.UTC(), passID, owner)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes an owned pass.
func (r *PostgresRepository) Delete(ctx context.Context, userID, id string) error {
	passID, owner, ok := parseIDs(id, userID)
	if !ok {
		return ErrNotFound
	}
	cmd, err := r.db.Exec(ctx, `DELETE FROM passes WHERE id = $1 AND user_id = $2`, passID, owner)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func parseIDs(id, userID string) (uuid.UUID, uuid.UUID, bool) {
	passID, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, uuid.Nil, false
	}
	owner, err := uuid.Parse(userID)
	if err != nil {
		return uuid.Nil, uuid.Nil, false
	}
	return passID, owner, true
}

func scanPass(row pgx.Row) (Pass, error) {
	var (
		p      Pass
		id     uuid.UUID
		owner  *uuid.UUID
		dob    *time.Time
		expiry *time.Time
	)
	if err := row.Scan(&id, &owner, &p.Name, &dob, &p.Gender, &p.Address, &p.Email, &p.Phone, &p.IDType, &p.IDNumber,
		&p.PassType, &p.IssueDate, &expiry, &p.PhotoURL, &p.Status, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return Pass{}, err
	}
	p.ID = id.String()
	if owner != nil {
		p.UserID = owner.String()
	}
	if dob != nil {
		d := dob.UTC()
		p.DOB = &d
	}
	if expiry != nil {
		e := expiry.UTC()
		p.ExpiryDate = &e
	}
	p.IssueDate = p.IssueDate.UTC()
	p.CreatedAt = p.CreatedAt.UTC()
	p.UpdatedAt = p.UpdatedAt.UTC()
	return p, nil
}
