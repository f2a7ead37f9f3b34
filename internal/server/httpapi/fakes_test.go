package httpapi

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dsmirnov/bookshelf/internal/common"
	"github.com/dsmirnov/bookshelf/internal/dbx"
	"github.com/dsmirnov/bookshelf/internal/logging"
	"github.com/dsmirnov/bookshelf/internal/server/auth"
	"github.com/dsmirnov/bookshelf/internal/server/models"
	booksrepo "github.com/dsmirnov/bookshelf/internal/server/repositories/books"
	ratingsrepo "github.com/dsmirnov/bookshelf/internal/server/repositories/ratings"
	usersrepo "github.com/dsmirnov/bookshelf/internal/server/repositories/users"
)

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewJSONHandler(io.Discard, nil)))
}

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

type fakeUsersRepo struct {
	byEmail map[string]*models.User
	byID    map[int64]*models.User

	createOut *models.User
	createErr error

	readBooks []models.Book
}

func (f *fakeUsersRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	return f.createOut, nil
}

func (f *fakeUsersRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if u, ok := f.byEmail[email]; ok {
		return u, nil
	}
	return nil, common.ErrNotFound
}

func (f *fakeUsersRepo) GetByID(ctx context.Context, id int64) (*models.User, error) {
	if u, ok := f.byID[id]; ok {
		return u, nil
	}
	return nil, common.ErrNotFound
}

func (f *fakeUsersRepo) AddReadBook(ctx context.Context, userID, bookID int64) error    { return nil }
func (f *fakeUsersRepo) RemoveReadBook(ctx context.Context, userID, bookID int64) error { return nil }
func (f *fakeUsersRepo) GetReadBooks(ctx context.Context, userID int64) ([]models.Book, error) {
	return f.readBooks, nil
}

type fakeBooksRepo struct {
	byID     map[int64]*models.Book
	listOut  []models.Book
	countOut int64
}

func (f *fakeBooksRepo) List(ctx context.Context, offset, limit int) ([]models.Book, error) {
	return f.listOut, nil
}

func (f *fakeBooksRepo) Count(ctx context.Context) (int64, error) { return f.countOut, nil }

func (f *fakeBooksRepo) GetByID(ctx context.Context, id int64) (*models.Book, error) {
	if b, ok := f.byID[id]; ok {
		return b, nil
	}
	return nil, common.ErrNotFound
}

func (f *fakeBooksRepo) ListByISBNs(ctx context.Context, isbns []string) ([]models.Book, error) {
	return nil, nil
}

func (f *fakeBooksRepo) UpdateImageURL(ctx context.Context, id int64, imageURL string) error {
	return nil
}

type fakeRatingsRepo struct {
	nextID int64
	avgOut float64
}

func (f *fakeRatingsRepo) Create(ctx context.Context, r *models.Rating) (*models.Rating, error) {
	f.nextID++
	out := *r
	out.ID = f.nextID
	return &out, nil
}

func (f *fakeRatingsRepo) AverageForBook(ctx context.Context, bookID int64) (float64, error) {
	return f.avgOut, nil
}

type fakeRepoManager struct {
	u *fakeUsersRepo
	b *fakeBooksRepo
	r *fakeRatingsRepo
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(db dbx.DBTX) usersrepo.Repository      { return m.u }
func (m *fakeRepoManager) Books(db dbx.DBTX) booksrepo.Repository      { return m.b }
func (m *fakeRepoManager) Ratings(db dbx.DBTX) ratingsrepo.Repository  { return m.r }

const testSecret = "test-secret"

func testToken(t *testing.T, userID string, ttl time.Duration) string {
	t.Helper()
	token, err := auth.GenerateToken(userID, []byte(testSecret), ttl)
	if err != nil {
		t.Fatalf("GenerateToken error: %v", err)
	}
	return token
}
