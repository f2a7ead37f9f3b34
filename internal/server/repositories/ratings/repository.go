package ratings

import (
	"context"

	"github.com/dsmirnov/bookshelf/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, rating *models.Rating) (*models.Rating, error)
	AverageForBook(ctx context.Context, bookID int64) (float64, error)
}
