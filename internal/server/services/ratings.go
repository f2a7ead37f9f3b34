package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dsmirnov/bookshelf/internal/dbx"
	"github.com/dsmirnov/bookshelf/internal/server/cache"
	"github.com/dsmirnov/bookshelf/internal/server/models"
	"github.com/dsmirnov/bookshelf/internal/server/repositories/repomanager"
)

// RatingService records user ratings. The author of a rating is always the
// authenticated caller, never taken from the request body.
type RatingService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	ratingCache cache.RatingCache
}

func NewRatingService(db *sql.DB, m repomanager.RepositoryManager, rc cache.RatingCache) *RatingService {
	return &RatingService{
		db:          db,
		repomanager: m,
		ratingCache: rc,
	}
}

// Rate stores a rating for the book on behalf of userID. The existence check
// and the insert run in one transaction, so the rating cannot land on a book
// deleted in between. The cached average is invalidated afterwards; a failed
// invalidation is not an error, the TTL bounds the staleness.
func (s *RatingService) Rate(ctx context.Context, userID, bookID int64, value int) (*models.Rating, error) {
	if value < 1 || value > 5 {
		return nil, fmt.Errorf("rating must be between 1 and 5, got %d", value)
	}

	var rating *models.Rating

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := s.repomanager.Books(tx).GetByID(ctx, bookID); err != nil {
			return err
		}

		var err error
		rating, err = s.repomanager.Ratings(tx).Create(ctx, &models.Rating{
			UserID: userID,
			BookID: bookID,
			Value:  value,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	_ = s.ratingCache.InvalidateAverage(ctx, bookID)

	return rating, nil
}
