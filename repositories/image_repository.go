package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/style-duel/models"
	"github.com/lib/pq"
)

var ErrImageNotFound = errors.New("image not found")

// ImageRepository — read-only доступ к каталогу изображений.
// Наполнение и модерация каталога живут во внешнем сервисе.
type ImageRepository interface {
	GetByID(ctx context.Context, id int64) (*models.Image, error)
	ListByIDs(ctx context.Context, ids []int64) ([]*models.Image, error)
	DrawRandomApproved(ctx context.Context, category string, limit int) ([]*models.Image, error)
	CountApprovedByCategory(ctx context.Context, minCount int) ([]models.CategorySummary, error)
}

type postgresImageRepository struct {
	db *sql.DB
}

func NewPostgresImageRepository(db *sql.DB) ImageRepository {
	return &postgresImageRepository{db: db}
}

const imageColumns = `id, category, title, storage_key, active, approved, created_at`

func (r *postgresImageRepository) GetByID(ctx context.Context, id int64) (*models.Image, error) {
	query := `SELECT ` + imageColumns + ` FROM images WHERE id = $1`

	img := &models.Image{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&img.ID, &img.Category, &img.Title, &img.StorageKey, &img.Active, &img.Approved, &img.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrImageNotFound
		}
		return nil, fmt.Errorf("failed to scan image %d: %w", id, err)
	}
	return img, nil
}

func (r *postgresImageRepository) ListByIDs(ctx context.Context, ids []int64) ([]*models.Image, error) {
	if len(ids) == 0 {
		return []*models.Image{}, nil
	}
	query := `SELECT ` + imageColumns + ` FROM images WHERE id = ANY($1)`

	rows, err := r.db.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to query images by ids: %w", err)
	}
	defer rows.Close()
	return r.collectImages(rows)
}

// DrawRandomApproved достаёт случайную выборку одобренных активных
// изображений категории. Случайный порядок выборки и есть посев сетки.
func (r *postgresImageRepository) DrawRandomApproved(ctx context.Context, category string, limit int) ([]*models.Image, error) {
	query := `
		SELECT ` + imageColumns + `
		FROM images
		WHERE category = $1 AND approved = TRUE AND active = TRUE
		ORDER BY random()
		LIMIT $2`

	rows, err := r.db.QueryContext(ctx, query, category, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to draw images for category %s: %w", category, err)
	}
	defer rows.Close()
	return r.collectImages(rows)
}

func (r *postgresImageRepository) CountApprovedByCategory(ctx context.Context, minCount int) ([]models.CategorySummary, error) {
	query := `
		SELECT category, COUNT(*) AS image_count
		FROM images
		WHERE approved = TRUE AND active = TRUE
		GROUP BY category
		HAVING COUNT(*) >= $1
		ORDER BY category ASC`

	rows, err := r.db.QueryContext(ctx, query, minCount)
	if err != nil {
		return nil, fmt.Errorf("failed to count images by category: %w", err)
	}
	defer rows.Close()

	summaries := make([]models.CategorySummary, 0)
	for rows.Next() {
		var s models.CategorySummary
		if scanErr := rows.Scan(&s.Category, &s.ImageCount); scanErr != nil {
			return nil, fmt.Errorf("failed to scan category summary: %w", scanErr)
		}
		summaries = append(summaries, s)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during category rows iteration: %w", err)
	}
	return summaries, nil
}

func (r *postgresImageRepository) collectImages(rows *sql.Rows) ([]*models.Image, error) {
	images := make([]*models.Image, 0)
	for rows.Next() {
		var img models.Image
		if scanErr := rows.Scan(
			&img.ID, &img.Category, &img.Title, &img.StorageKey, &img.Active, &img.Approved, &img.CreatedAt,
		); scanErr != nil {
			return nil, fmt.Errorf("failed to scan image row: %w", scanErr)
		}
		images = append(images, &img)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during image rows iteration: %w", err)
	}
	return images, nil
}
