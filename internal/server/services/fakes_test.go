package services

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dsmirnov/bookshelf/internal/common"
	"github.com/dsmirnov/bookshelf/internal/dbx"
	"github.com/dsmirnov/bookshelf/internal/server/models"
	booksrepo "github.com/dsmirnov/bookshelf/internal/server/repositories/books"
	ratingsrepo "github.com/dsmirnov/bookshelf/internal/server/repositories/ratings"
	usersrepo "github.com/dsmirnov/bookshelf/internal/server/repositories/users"
)

// --- helpers ---

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return db, mock
}

type fakeUsersRepo struct {
	byEmail map[string]*models.User
	byID    map[int64]*models.User

	createOut *models.User
	createErr error

	readBooks    []models.Book
	readBooksErr error
	addErr       error
	removeErr    error

	added   [][2]int64
	removed [][2]int64
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

func (f *fakeUsersRepo) AddReadBook(ctx context.Context, userID, bookID int64) error {
	if f.addErr != nil {
		return f.addErr
	}
	f.added = append(f.added, [2]int64{userID, bookID})
	return nil
}

func (f *fakeUsersRepo) RemoveReadBook(ctx context.Context, userID, bookID int64) error {
	if f.removeErr != nil {
		return f.removeErr
	}
	f.removed = append(f.removed, [2]int64{userID, bookID})
	return nil
}

func (f *fakeUsersRepo) GetReadBooks(ctx context.Context, userID int64) ([]models.Book, error) {
	if f.readBooksErr != nil {
		return nil, f.readBooksErr
	}
	return f.readBooks, nil
}

type fakeBooksRepo struct {
	byID map[int64]*models.Book

	listOut  []models.Book
	listErr  error
	countOut int64
	countErr error

	byISBNOut []models.Book
	byISBNErr error
	byISBNIn  []string

	updateImageErr error
	updatedImages  map[int64]string
}

func (f *fakeBooksRepo) List(ctx context.Context, offset, limit int) ([]models.Book, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.listOut, nil
}

func (f *fakeBooksRepo) Count(ctx context.Context) (int64, error) {
	if f.countErr != nil {
		return 0, f.countErr
	}
	return f.countOut, nil
}

func (f *fakeBooksRepo) GetByID(ctx context.Context, id int64) (*models.Book, error) {
	if b, ok := f.byID[id]; ok {
		return b, nil
	}
	return nil, common.ErrNotFound
}

func (f *fakeBooksRepo) ListByISBNs(ctx context.Context, isbns []string) ([]models.Book, error) {
	f.byISBNIn = isbns
	if f.byISBNErr != nil {
		return nil, f.byISBNErr
	}
	return f.byISBNOut, nil
}

func (f *fakeBooksRepo) UpdateImageURL(ctx context.Context, id int64, imageURL string) error {
	if f.updateImageErr != nil {
		return f.updateImageErr
	}
	if f.updatedImages == nil {
		f.updatedImages = map[int64]string{}
	}
	f.updatedImages[id] = imageURL
	return nil
}

type fakeRatingsRepo struct {
	createOut *models.Rating
	createErr error
	created   []*models.Rating

	avgOut float64
	avgErr error
}

func (f *fakeRatingsRepo) Create(ctx context.Context, r *models.Rating) (*models.Rating, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = append(f.created, r)
	if f.createOut != nil {
		return f.createOut, nil
	}
	return r, nil
}

func (f *fakeRatingsRepo) AverageForBook(ctx context.Context, bookID int64) (float64, error) {
	if f.avgErr != nil {
		return 0, f.avgErr
	}
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

// fakeRatingCache records calls and serves a fixed set of entries.
type fakeRatingCache struct {
	entries     map[int64]float64
	getErr      error
	sets        map[int64]float64
	invalidated []int64
}

func (f *fakeRatingCache) GetAverage(ctx context.Context, bookID int64) (float64, bool, error) {
	if f.getErr != nil {
		return 0, false, f.getErr
	}
	v, ok := f.entries[bookID]
	return v, ok, nil
}

func (f *fakeRatingCache) SetAverage(ctx context.Context, bookID int64, avg float64, ttl time.Duration) error {
	if f.sets == nil {
		f.sets = map[int64]float64{}
	}
	f.sets[bookID] = avg
	return nil
}

func (f *fakeRatingCache) InvalidateAverage(ctx context.Context, bookID int64) error {
	f.invalidated = append(f.invalidated, bookID)
	return nil
}
