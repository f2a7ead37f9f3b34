package ratings

import (
	"context"
	"fmt"

	"github.com/dsmirnov/bookshelf/internal/dbx"
	"github.com/dsmirnov/bookshelf/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, rating *models.Rating) (*models.Rating, error) {

	query :=
		`INSERT INTO ratings (user_id, book_id, rating)
		 VALUES ($1, $2, $3)
		 RETURNING id
		 `

	err := r.db.QueryRowContext(ctx, query,
		rating.UserID, rating.BookID, rating.Value).Scan(&rating.ID)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return rating, nil
}

// AverageForBook returns the raw mean rating for the book, 0 when the book
// has no ratings yet.
func (r *PostgresRepository) AverageForBook(ctx context.Context, bookID int64) (float64, error) {
	query :=
		`SELECT COALESCE(AVG(rating), 0) FROM ratings
		 WHERE book_id = $1
		 `

	var avg float64
	if err := r.db.QueryRowContext(ctx, query, bookID).Scan(&avg); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}

	return avg, nil
}
