package books

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dsmirnov/bookshelf/internal/common"
	"github.com/dsmirnov/bookshelf/internal/dbx"
	"github.com/dsmirnov/bookshelf/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const bookColumns = `id, title, authors, isbn, publication_year, image_url, genre`

func (r *PostgresRepository) List(ctx context.Context, offset int, limit int) ([]models.Book, error) {
	query :=
		`SELECT ` + bookColumns + ` FROM books
		 ORDER BY id
		 OFFSET $1 LIMIT $2
		 `

	rows, err := r.db.QueryContext(ctx, query, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	return scanBooks(rows)
}

func (r *PostgresRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM books`).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return total, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.Book, error) {
	query :=
		`SELECT ` + bookColumns + ` FROM books
		 WHERE id = $1
		 `

	book := &models.Book{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&book.ID, &book.Title,
		&book.Authors, &book.ISBN, &book.PublicationYear, &book.ImageURL, &book.Genre)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return book, nil
}

// ListByISBNs returns the catalog rows matching any of the given ISBNs.
// Used to map recommender results back onto local books.
func (r *PostgresRepository) ListByISBNs(ctx context.Context, isbns []string) ([]models.Book, error) {
	if len(isbns) == 0 {
		return []models.Book{}, nil
	}

	placeholders := make([]string, len(isbns))
	args := make([]any, len(isbns))
	for i, isbn := range isbns {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = isbn
	}

	query :=
		`SELECT ` + bookColumns + ` FROM books
		 WHERE isbn IN (` + strings.Join(placeholders, ", ") + `)
		 ORDER BY id
		 `

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	return scanBooks(rows)
}

func (r *PostgresRepository) UpdateImageURL(ctx context.Context, id int64, imageURL string) error {
	query :=
		`UPDATE books SET image_url = $2
		 WHERE id = $1
		 `

	res, err := r.db.ExecContext(ctx, query, id, imageURL)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return common.ErrNotFound
	}
	return nil
}

func scanBooks(rows *sql.Rows) ([]models.Book, error) {
	books := []models.Book{}
	for rows.Next() {
		var b models.Book
		if err := rows.Scan(&b.ID, &b.Title, &b.Authors, &b.ISBN,
			&b.PublicationYear, &b.ImageURL, &b.Genre); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		books = append(books, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return books, nil
}
