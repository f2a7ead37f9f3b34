package services

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/dsmirnov/bookshelf/internal/server/cache"
	sc "github.com/dsmirnov/bookshelf/internal/server/config"
	"github.com/dsmirnov/bookshelf/internal/server/models"
	"github.com/dsmirnov/bookshelf/internal/server/recommender"
	"github.com/dsmirnov/bookshelf/internal/server/repositories/repomanager"
	"github.com/google/uuid"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// avgRatingTTL bounds staleness of cached averages when an invalidation is
// lost (for example a cache restart between write and delete).
const avgRatingTTL = 10 * time.Minute

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignPutObject(ctx, in, optFns...)
	}
)

// BookWithRating is a catalog entry together with its current average rating,
// truncated to two decimals.
type BookWithRating struct {
	models.Book
	AverageRating float64
}

// BookPage is one page of the catalog listing. Last marks the final page;
// TotalPages is computed from TotalElements and the page size.
type BookPage struct {
	Books         []BookWithRating
	Page          int
	Size          int
	TotalElements int64
	TotalPages    int
	Last          bool
}

// BookService serves catalog reads: paginated listing, single lookups,
// recommender-backed search, and cover upload presigning.
type BookService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	ratingCache cache.RatingCache
	recommender *recommender.Client
	config      *sc.Config
}

func NewBookService(db *sql.DB, m repomanager.RepositoryManager, rc cache.RatingCache, reco *recommender.Client, cfg *sc.Config) *BookService {
	return &BookService{
		db:          db,
		repomanager: m,
		ratingCache: rc,
		recommender: reco,
		config:      cfg,
	}
}

// truncateRating keeps two decimals without rounding up, so a displayed 4.99
// never overstates the underlying average.
func truncateRating(avg float64) float64 {
	return math.Floor(avg*100) / 100
}

// averageFor returns the book's average rating, consulting the cache first.
// Cache failures degrade to a recomputation, never to a request failure.
func (s *BookService) averageFor(ctx context.Context, bookID int64) (float64, error) {
	if avg, ok, err := s.ratingCache.GetAverage(ctx, bookID); err == nil && ok {
		return avg, nil
	}

	repo := s.repomanager.Ratings(s.db)
	avg, err := repo.AverageForBook(ctx, bookID)
	if err != nil {
		return 0, err
	}
	avg = truncateRating(avg)

	_ = s.ratingCache.SetAverage(ctx, bookID, avg, avgRatingTTL)
	return avg, nil
}

func (s *BookService) withRatings(ctx context.Context, books []models.Book) ([]BookWithRating, error) {
	out := make([]BookWithRating, 0, len(books))
	for _, b := range books {
		avg, err := s.averageFor(ctx, b.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, BookWithRating{Book: b, AverageRating: avg})
	}
	return out, nil
}

// List returns one page of the catalog. Page numbering starts at zero.
func (s *BookService) List(ctx context.Context, page, size int) (*BookPage, error) {
	if page < 0 {
		page = 0
	}
	if size <= 0 {
		size = 10
	}

	repo := s.repomanager.Books(s.db)

	total, err := repo.Count(ctx)
	if err != nil {
		return nil, err
	}

	books, err := repo.List(ctx, page*size, size)
	if err != nil {
		return nil, err
	}

	items, err := s.withRatings(ctx, books)
	if err != nil {
		return nil, err
	}

	totalPages := int((total + int64(size) - 1) / int64(size))

	return &BookPage{
		Books:         items,
		Page:          page,
		Size:          size,
		TotalElements: total,
		TotalPages:    totalPages,
		Last:          page >= totalPages-1,
	}, nil
}

// Get returns a single book by ID with its average rating.
func (s *BookService) Get(ctx context.Context, id int64) (*BookWithRating, error) {
	repo := s.repomanager.Books(s.db)

	book, err := repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	avg, err := s.averageFor(ctx, book.ID)
	if err != nil {
		return nil, err
	}

	return &BookWithRating{Book: *book, AverageRating: avg}, nil
}

// Search asks the recommender for the closest matches to a free-text query
// and resolves them against the catalog. Results keep the recommender's
// relevance order; ISBNs not present in the catalog are skipped.
func (s *BookService) Search(ctx context.Context, query string) ([]BookWithRating, error) {
	recs, err := s.recommender.Search(ctx, query)
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return []BookWithRating{}, nil
	}

	isbns := make([]string, 0, len(recs))
	for _, r := range recs {
		isbns = append(isbns, strconv.FormatInt(r.ISBN13, 10))
	}

	repo := s.repomanager.Books(s.db)
	books, err := repo.ListByISBNs(ctx, isbns)
	if err != nil {
		return nil, err
	}

	byISBN := make(map[string]models.Book, len(books))
	for _, b := range books {
		byISBN[b.ISBN] = b
	}

	ordered := make([]models.Book, 0, len(books))
	for _, isbn := range isbns {
		if b, ok := byISBN[isbn]; ok {
			ordered = append(ordered, b)
		}
	}

	return s.withRatings(ctx, ordered)
}

func coverStorageKey(bookID int64) string {
	return fmt.Sprintf("covers/%d/%v", bookID, uuid.New())
}

func (s *BookService) getPresignClient() (*s3.PresignClient, error) {
	cfg, err := loadDefaultAWSConfig(context.Background(),
		config.WithRegion(s.config.S3Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.config.S3RootUser,     // MINIO_ROOT_USER
			s.config.S3RootPassword, // MINIO_ROOT_PASSWORD
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(s.config.S3BaseEndpoint)
	})

	return newS3PresignClient(client), nil
}

// PresignCoverUpload issues a presigned PUT URL for a new cover object of the
// given book and records the object's public URL on the book row. The caller
// uploads directly to storage; the server never proxies image bytes.
func (s *BookService) PresignCoverUpload(ctx context.Context, bookID int64) (string, string, error) {
	repo := s.repomanager.Books(s.db)

	if _, err := repo.GetByID(ctx, bookID); err != nil {
		return "", "", err
	}

	presignClient, err := s.getPresignClient()
	if err != nil {
		return "", "", err
	}

	bucket := s.config.S3Bucket
	key := coverStorageKey(bookID)

	// Presigned PUT
	req, err := presignPutObject(presignClient, ctx, &s3.PutObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(15*time.Minute))
	if err != nil {
		return "", "", err
	}

	imageURL := strings.TrimSuffix(s.config.S3BaseEndpoint, "/") + "/" + bucket + "/" + key
	if err := repo.UpdateImageURL(ctx, bookID, imageURL); err != nil {
		return "", "", err
	}

	return key, req.URL, nil
}
