package repository

import (
	"context"
	"fmt"

	"github.com/Yureien/PinocchioBot/database"
	"github.com/Yureien/PinocchioBot/models"
	"github.com/jackc/pgx/v5"
)

// WaifuRepository implements the service.WaifuRepository interface. The
// catalog is read-only from the bot's point of view.
type WaifuRepository struct {
	q queryable
}

// NewWaifuRepository creates a new waifu catalog repository
func NewWaifuRepository(db *database.DB) *WaifuRepository {
	return &WaifuRepository{q: db.Pool}
}

// newWaifuRepositoryWithTx creates a new waifu catalog repository with a transaction
func newWaifuRepositoryWithTx(tx queryable) *WaifuRepository {
	return &WaifuRepository{q: tx}
}

const waifuColumns = `id, name, from_anime, gender, price, description, image_url`

func scanWaifu(row pgx.Row) (*models.Waifu, error) {
	var waifu models.Waifu
	err := row.Scan(
		&waifu.ID,
		&waifu.Name,
		&waifu.FromAnime,
		&waifu.Gender,
		&waifu.Price,
		&waifu.Description,
		&waifu.ImageURL,
	)
	if err != nil {
		return nil, err
	}
	return &waifu, nil
}

// GetByID retrieves a catalog entry by ID
func (r *WaifuRepository) GetByID(ctx context.Context, id int64) (*models.Waifu, error) {
	query := fmt.Sprintf(`SELECT %s FROM waifus WHERE id = $1`, waifuColumns)

	waifu, err := scanWaifu(r.q.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get waifu %d: %w", id, err)
	}

	return waifu, nil
}

// GetByIDs retrieves catalog entries for the given IDs
func (r *WaifuRepository) GetByIDs(ctx context.Context, ids []int64) ([]*models.Waifu, error) {
	query := fmt.Sprintf(`SELECT %s FROM waifus WHERE id = ANY($1) ORDER BY id`, waifuColumns)

	rows, err := r.q.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to get waifus by IDs: %w", err)
	}
	defer rows.Close()

	return collectWaifus(rows)
}

// GetAll returns the full catalog ordered by ID
func (r *WaifuRepository) GetAll(ctx context.Context) ([]*models.Waifu, error) {
	query := fmt.Sprintf(`SELECT %s FROM waifus ORDER BY id`, waifuColumns)

	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get all waifus: %w", err)
	}
	defer rows.Close()

	return collectWaifus(rows)
}

// GetRandom draws one random catalog entry
func (r *WaifuRepository) GetRandom(ctx context.Context) (*models.Waifu, error) {
	query := fmt.Sprintf(`SELECT %s FROM waifus ORDER BY random() LIMIT 1`, waifuColumns)

	waifu, err := scanWaifu(r.q.QueryRow(ctx, query))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get random waifu: %w", err)
	}

	return waifu, nil
}

func collectWaifus(rows pgx.Rows) ([]*models.Waifu, error) {
	var waifus []*models.Waifu
	for rows.Next() {
		waifu, err := scanWaifu(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan waifu: %w", err)
		}
		waifus = append(waifus, waifu)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate waifus: %w", err)
	}

	return waifus, nil
}
