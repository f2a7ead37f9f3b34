package users

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dsmirnov/bookshelf/internal/common"
	"github.com/dsmirnov/bookshelf/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

const userCols = `id, username, email, password_hash, role, from_dataset, created_at`

func TestCreate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^INSERT\s+INTO\s+users\s*\(username,\s*email,\s*password_hash,\s*role,\s*from_dataset\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4,\s*\$5\)\s*RETURNING\s+id,\s*created_at\s*$`

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(42), now)
	mock.ExpectQuery(q).
		WithArgs("alice", "alice@x.com", "$2a$hash", models.RoleUser, false).
		WillReturnRows(rows)

	u := &models.User{Username: "alice", Email: "alice@x.com", PasswordHash: "$2a$hash", Role: models.RoleUser}
	got, err := repo.Create(context.Background(), u)
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if got.ID != 42 || got.Username != "alice" {
		t.Fatalf("unexpected user: %+v", got)
	}
}

func TestCreate_UniqueViolation(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`INSERT\s+INTO\s+users`).
		WithArgs("alice", "alice@x.com", "h", models.RoleUser, false).
		WillReturnError(&pgconn.PgError{Code: pgUniqueViolation, ConstraintName: "users_email_unique"})

	_, err := repo.Create(context.Background(),
		&models.User{Username: "alice", Email: "alice@x.com", PasswordHash: "h", Role: models.RoleUser})
	if !errors.Is(err, common.ErrAlreadyExists) {
		t.Fatalf("want common.ErrAlreadyExists, got %v", err)
	}
}

func TestCreate_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`INSERT\s+INTO\s+users`).
		WithArgs("alice", "alice@x.com", "h", models.RoleUser, false).
		WillReturnError(errors.New("db down"))

	_, err := repo.Create(context.Background(),
		&models.User{Username: "alice", Email: "alice@x.com", PasswordHash: "h", Role: models.RoleUser})
	if err == nil || !regexp.MustCompile(`db error: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestGetByEmail_Found(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^SELECT\s+` + userCols + `\s+FROM\s+users\s+WHERE\s+email\s*=\s*\$1\s*$`

	rows := sqlmock.NewRows([]string{"id", "username", "email", "password_hash", "role", "from_dataset", "created_at"}).
		AddRow(int64(1), "alice", "alice@x.com", "h", "USER", false, time.Now())
	mock.ExpectQuery(q).WithArgs("alice@x.com").WillReturnRows(rows)

	got, err := repo.GetByEmail(context.Background(), "alice@x.com")
	if err != nil {
		t.Fatalf("GetByEmail error: %v", err)
	}
	if got.ID != 1 || got.Role != models.RoleUser {
		t.Fatalf("unexpected user: %+v", got)
	}
}

func TestGetByEmail_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT\s+` + userCols + `\s+FROM\s+users\s+WHERE\s+email`).
		WithArgs("ghost@x.com").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByEmail(context.Background(), "ghost@x.com")
	if !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("want common.ErrNotFound, got %v", err)
	}
}

func TestGetByID_Found(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^SELECT\s+` + userCols + `\s+FROM\s+users\s+WHERE\s+id\s*=\s*\$1\s*$`

	rows := sqlmock.NewRows([]string{"id", "username", "email", "password_hash", "role", "from_dataset", "created_at"}).
		AddRow(int64(7), "bob", "bob@x.com", "h", "ADMIN", true, time.Now())
	mock.ExpectQuery(q).WithArgs(int64(7)).WillReturnRows(rows)

	got, err := repo.GetByID(context.Background(), 7)
	if err != nil {
		t.Fatalf("GetByID error: %v", err)
	}
	if !got.IsAdmin() || !got.FromDataset {
		t.Fatalf("unexpected user: %+v", got)
	}
}

func TestAddReadBook_IsIdempotent(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^INSERT\s+INTO\s+user_read_books\s*\(user_id,\s*book_id\)\s*VALUES\s*\(\$1,\s*\$2\)\s*ON\s+CONFLICT\s+DO\s+NOTHING\s*$`

	// second insert conflicts and affects no rows, still no error
	mock.ExpectExec(q).WithArgs(int64(1), int64(2)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(q).WithArgs(int64(1), int64(2)).WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.AddReadBook(context.Background(), 1, 2); err != nil {
		t.Fatalf("AddReadBook error: %v", err)
	}
	if err := repo.AddReadBook(context.Background(), 1, 2); err != nil {
		t.Fatalf("AddReadBook repeat error: %v", err)
	}
}

func TestRemoveReadBook(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`DELETE\s+FROM\s+user_read_books`).
		WithArgs(int64(1), int64(2)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.RemoveReadBook(context.Background(), 1, 2); err != nil {
		t.Fatalf("RemoveReadBook error: %v", err)
	}
}

func TestGetReadBooks(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"id", "title", "authors", "isbn", "publication_year", "image_url", "genre"}).
		AddRow(int64(1), "Dune", "Frank Herbert", "9780441013593", 1965, "", "Science Fiction").
		AddRow(int64(2), "Hyperion", "Dan Simmons", "9780553283686", 1989, "", "Science Fiction")
	mock.ExpectQuery(`(?s)SELECT\s+b\.id,.*FROM\s+books\s+b\s+JOIN\s+user_read_books`).
		WithArgs(int64(5)).
		WillReturnRows(rows)

	got, err := repo.GetReadBooks(context.Background(), 5)
	if err != nil {
		t.Fatalf("GetReadBooks error: %v", err)
	}
	if len(got) != 2 || got[0].Title != "Dune" {
		t.Fatalf("unexpected books: %+v", got)
	}
}
