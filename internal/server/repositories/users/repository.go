package users

import (
	"context"

	"github.com/dsmirnov/bookshelf/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	AddReadBook(ctx context.Context, userID int64, bookID int64) error
	RemoveReadBook(ctx context.Context, userID int64, bookID int64) error
	GetReadBooks(ctx context.Context, userID int64) ([]models.Book, error)
}
