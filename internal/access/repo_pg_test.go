package access

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestPGRepoCreateGrantReportsInsert(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	grant := Grant{
		DocumentID:        "doc-1",
		UserID:            "bob",
		VerificationToken: "tok-123",
		TokenExpiresAt:    1_700_086_400,
		SharedAt:          1_700_000_000,
	}

	mock.ExpectExec("INSERT INTO granted_access").
		WithArgs(grant.DocumentID, grant.UserID, grant.VerificationToken, grant.TokenExpiresAt, grant.SharedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	created, err := repo.CreateGrant(context.Background(), grant)
	if err != nil {
		t.Fatalf("CreateGrant: %v", err)
	}
	if !created {
		t.Fatalf("expected created=true for fresh pair")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoCreateGrantConflictIgnored(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}

	mock.ExpectExec("INSERT INTO granted_access").
		WithArgs("doc-1", "bob", nil, nil, int64(1_700_000_000)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	created, err := repo.CreateGrant(context.Background(), Grant{
		DocumentID: "doc-1",
		UserID:     "bob",
		SharedAt:   1_700_000_000,
	})
	if err != nil {
		t.Fatalf("CreateGrant: %v", err)
	}
	if created {
		t.Fatalf("expected created=false when the pair already has a grant")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoGetGrantByTokenScansNullableColumns(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}

	rows := sqlmock.NewRows([]string{"document_id", "user_id", "verification_token", "token_expires_at", "shared_at"}).
		AddRow("doc-1", "bob", "tok-123", nil, int64(1_700_000_000))
	mock.ExpectQuery("SELECT document_id, user_id, verification_token, token_expires_at, shared_at").
		WithArgs("tok-123").
		WillReturnRows(rows)

	grant, ok, err := repo.GetGrantByToken(context.Background(), "tok-123")
	if err != nil {
		t.Fatalf("GetGrantByToken: %v", err)
	}
	if !ok {
		t.Fatalf("expected a grant")
	}
	if grant.UserID != "bob" || grant.TokenExpiresAt != 0 {
		t.Fatalf("unexpected grant: %+v", grant)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoGetGrantMissingReturnsFalse(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}

	mock.ExpectQuery("SELECT document_id, user_id, verification_token, token_expires_at, shared_at").
		WithArgs("doc-1", "bob").
		WillReturnRows(sqlmock.NewRows([]string{"document_id", "user_id", "verification_token", "token_expires_at", "shared_at"}))

	_, ok, err := repo.GetGrant(context.Background(), "doc-1", "bob")
	if err != nil {
		t.Fatalf("GetGrant: %v", err)
	}
	if ok {
		t.Fatalf("expected no grant")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoUpsertRevocationRefreshesTimestamp(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}

	mock.ExpectExec("INSERT INTO revoked_access").
		WithArgs("doc-1", "bob", int64(1_700_000_000)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.UpsertRevocation(context.Background(), Revocation{
		DocumentID: "doc-1",
		UserID:     "bob",
		RevokedAt:  1_700_000_000,
	}); err != nil {
		t.Fatalf("UpsertRevocation: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}
