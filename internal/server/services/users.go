package services

import (
	"context"
	"database/sql"

	"github.com/dsmirnov/bookshelf/internal/dbx"
	"github.com/dsmirnov/bookshelf/internal/server/models"
	"github.com/dsmirnov/bookshelf/internal/server/repositories/repomanager"
)

// UserService serves the authenticated user's own profile and read-books list.
type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager) *UserService {
	return &UserService{db: db, repomanager: m}
}

// Profile returns the account for the given ID.
func (s *UserService) Profile(ctx context.Context, userID int64) (*models.User, error) {
	return s.repomanager.Users(s.db).GetByID(ctx, userID)
}

// ReadBooks lists the books the user marked as read, ordered by book ID.
func (s *UserService) ReadBooks(ctx context.Context, userID int64) ([]models.Book, error) {
	return s.repomanager.Users(s.db).GetReadBooks(ctx, userID)
}

// MarkBookRead adds a book to the user's read list. The existence check and
// the insert share a transaction. Marking the same book twice is a no-op.
// A missing book yields common.ErrNotFound.
func (s *UserService) MarkBookRead(ctx context.Context, userID, bookID int64) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := s.repomanager.Books(tx).GetByID(ctx, bookID); err != nil {
			return err
		}
		return s.repomanager.Users(tx).AddReadBook(ctx, userID, bookID)
	})
}

// UnmarkBookRead removes a book from the user's read list. Removing a book
// that is not on the list is a no-op.
func (s *UserService) UnmarkBookRead(ctx context.Context, userID, bookID int64) error {
	return s.repomanager.Users(s.db).RemoveReadBook(ctx, userID, bookID)
}
