package passes

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v3"
)

var passColumnNames = []string{
	"id", "user_id", "name", "dob", "gender", "address", "email", "phone", "id_type", "id_number",
	"pass_type", "issue_date", "expiry_date", "photo_url", "status", "created_at", "updated_at",
}

func newMockRepository(t *testing.T) (*PostgresRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	return NewPostgresRepository(mock), mock
}

func anyArgs(n int) []any {
	args := make([]any, n)
	for i := range args {
		args[i] = pgxmock.AnyArg()
	}
	return args
}

func TestPostgresCreatePass(t *testing.T) {
	repo, mock := newMockRepository(t)
	now := time.Now().UTC()
	exp := now.AddDate(0, 1, 0)
	pass := Pass{
		ID: uuid.NewString(), UserID: uuid.NewString(), Name: "Meera", Email: "m@example.com", Phone: "1",
		IDType: IDStudent, IDNumber: "S1", PassType: TypeMonthly, IssueDate: now, ExpiryDate: &exp,
		Status: StatusActive, CreatedAt: now, UpdatedAt: now,
	}

	mock.ExpectExec("INSERT INTO passes").
		WithArgs(anyArgs(17)...).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	if err := repo.Create(context.Background(), pass); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPostgresCreatePassRejectsBadOwner(t *testing.T) {
	repo, _ := newMockRepository(t)
	if err := repo.Create(context.Background(), Pass{ID: uuid.NewString(), UserID: "nobody"}); !errors.Is(err, ErrUnknownOwner) {
		t.Fatalf("expected ErrUnknownOwner for malformed owner id, got %v", err)
	}
}

func TestPostgresCreatePassMissingOwner(t *testing.T) {
	repo, mock := newMockRepository(t)
	mock.ExpectExec("INSERT INTO passes").
		WithArgs(anyArgs(17)...).
		WillReturnError(&pgconn.PgError{Code: "23503", ConstraintName: "passes_user_id_fkey"})

	err := repo.Create(context.Background(), Pass{ID: uuid.NewString(), UserID: uuid.NewString()})
	if !errors.Is(err, ErrUnknownOwner) {
		t.Fatalf("expected ErrUnknownOwner, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPostgresListByUser(t *testing.T) {
	repo, mock := newMockRepository(t)
	owner := uuid.New()
	newer, older := uuid.New(), uuid.New()
	t1 := time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)
	t0 := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	exp := t1.AddDate(0, 1, 0)

	rows := pgxmock.NewRows(passColumnNames).
		AddRow(newer, &owner, "A", nil, "", "", "a@example.com", "1", IDStudent, "S1", TypeMonthly, t1, &exp, "", StatusActive, t1, t1).
		AddRow(older, &owner, "B", nil, "Male", "Main St", "b@example.com", "2", IDGeneral, "G1", TypeYearly, t0, nil, "", StatusPending, t0, t0)
	mock.ExpectQuery("FROM passes WHERE user_id = \\$1 ORDER BY created_at DESC").
		WithArgs(owner).
		WillReturnRows(rows)

	list, err := repo.ListByUser(context.Background(), owner.String())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 || list[0].ID != newer.String() || list[1].ID != older.String() {
		t.Fatalf("unexpected list %+v", list)
	}
	if list[0].UserID != owner.String() || list[0].ExpiryDate == nil || !list[0].ExpiryDate.Equal(exp) {
		t.Fatalf("unexpected first pass %+v", list[0])
	}
	if list[1].ExpiryDate != nil || list[1].Gender != "Male" {
		t.Fatalf("unexpected second pass %+v", list[1])
	}
}

func TestPostgresListByUserMalformedOwner(t *testing.T) {
	repo, _ := newMockRepository(t)
	list, err := repo.ListByUser(context.Background(), "nope")
	if err != nil || len(list) != 0 {
		t.Fatalf("expected empty list, got %v %v", list, err)
	}
}

func TestPostgresGetNotFound(t *testing.T) {
	repo, mock := newMockRepository(t)
	id, owner := uuid.New(), uuid.New()

	mock.ExpectQuery("FROM passes WHERE id = \\$1 AND user_id = \\$2").
		WithArgs(id, owner).
		WillReturnError(pgx.ErrNoRows)

	if _, err := repo.Get(context.Background(), owner.String(), id.String()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := repo.Get(context.Background(), owner.String(), "42"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for malformed id, got %v", err)
	}
}

func TestPostgresUpdateExpiry(t *testing.T) {
	repo, mock := newMockRepository(t)
	id, owner := uuid.New(), uuid.New()
	exp := time.Now().AddDate(0, 1, 0)

	mock.ExpectExec("UPDATE passes SET expiry_date").
		WithArgs(anyArgs(5)...).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec("UPDATE passes SET expiry_date").
		WithArgs(anyArgs(5)...).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	pass := Pass{ID: id.String(), UserID: owner.String(), ExpiryDate: &exp, Status: StatusActive, UpdatedAt: time.Now()}
	if err := repo.UpdateExpiry(context.Background(), pass); err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := repo.UpdateExpiry(context.Background(), pass); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound when no rows updated, got %v", err)
	}
}

func TestPostgresDelete(t *testing.T) {
	repo, mock := newMockRepository(t)
	id, owner := uuid.New(), uuid.New()

	mock.ExpectExec("DELETE FROM passes").
		WithArgs(id, owner).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectExec("DELETE FROM passes").
		WithArgs(id, owner).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	if err := repo.Delete(context.Background(), owner.String(), id.String()); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := repo.Delete(context.Background(), owner.String(), id.String()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
