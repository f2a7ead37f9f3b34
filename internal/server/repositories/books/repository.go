package books

import (
	"context"

	"github.com/dsmirnov/bookshelf/internal/server/models"
)

type Repository interface {
	List(ctx context.Context, offset int, limit int) ([]models.Book, error)
	Count(ctx context.Context) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.Book, error)
	ListByISBNs(ctx context.Context, isbns []string) ([]models.Book, error)
	UpdateImageURL(ctx context.Context, id int64, imageURL string) error
}
