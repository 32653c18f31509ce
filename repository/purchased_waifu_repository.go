package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/Yureien/PinocchioBot/database"
	"github.com/Yureien/PinocchioBot/models"
	"github.com/Yureien/PinocchioBot/service"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// PurchasedWaifuRepository implements the service.PurchasedWaifuRepository interface
type PurchasedWaifuRepository struct {
	q queryable
}

// NewPurchasedWaifuRepository creates a new ownership repository
func NewPurchasedWaifuRepository(db *database.DB) *PurchasedWaifuRepository {
	return &PurchasedWaifuRepository{q: db.Pool}
}

// newPurchasedWaifuRepositoryWithTx creates a new ownership repository with a transaction
func newPurchasedWaifuRepositoryWithTx(tx queryable) *PurchasedWaifuRepository {
	return &PurchasedWaifuRepository{q: tx}
}

const purchasedColumns = `id, member_id, waifu_id, guild, member, purchased_for, favorite`

func scanPurchased(row pgx.Row) (*models.PurchasedWaifu, error) {
	var pw models.PurchasedWaifu
	err := row.Scan(
		&pw.ID,
		&pw.MemberID,
		&pw.WaifuID,
		&pw.GuildID,
		&pw.MemberDiscID,
		&pw.PurchasedFor,
		&pw.Favorite,
	)
	if err != nil {
		return nil, err
	}
	return &pw, nil
}

// Create inserts an ownership row. The unique constraint on (guild, waifu_id)
// rejects a second owner; its violation maps to ErrAlreadyOwned so concurrent
// purchases resolve to exactly one winner.
func (r *PurchasedWaifuRepository) Create(ctx context.Context, pw *models.PurchasedWaifu) error {
	query := `
		INSERT INTO purchased_waifus (member_id, waifu_id, guild, member, purchased_for, favorite)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	err := r.q.QueryRow(ctx, query,
		pw.MemberID,
		pw.WaifuID,
		pw.GuildID,
		pw.MemberDiscID,
		pw.PurchasedFor,
		pw.Favorite,
	).Scan(&pw.ID)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return service.ErrAlreadyOwned
		}
		return fmt.Errorf("failed to create ownership for waifu %d in guild %d: %w", pw.WaifuID, pw.GuildID, err)
	}

	return nil
}

// FindByGuildAndWaifu returns the ownership row for a waifu in a guild
func (r *PurchasedWaifuRepository) FindByGuildAndWaifu(ctx context.Context, guildID, waifuID int64) (*models.PurchasedWaifu, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM purchased_waifus
		WHERE guild = $1 AND waifu_id = $2
	`, purchasedColumns)

	pw, err := scanPurchased(r.q.QueryRow(ctx, query, guildID, waifuID))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find ownership for waifu %d in guild %d: %w", waifuID, guildID, err)
	}

	return pw, nil
}

// FindByGuildMemberAndWaifu returns the ownership row only if the given
// member owns the waifu in the guild
func (r *PurchasedWaifuRepository) FindByGuildMemberAndWaifu(ctx context.Context, guildID, memberDiscordID, waifuID int64) (*models.PurchasedWaifu, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM purchased_waifus
		WHERE guild = $1 AND member = $2 AND waifu_id = $3
	`, purchasedColumns)

	pw, err := scanPurchased(r.q.QueryRow(ctx, query, guildID, memberDiscordID, waifuID))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find ownership for waifu %d by member %d in guild %d: %w", waifuID, memberDiscordID, guildID, err)
	}

	return pw, nil
}

// ListByGuildAndMember returns all ownership rows of a member in a guild
func (r *PurchasedWaifuRepository) ListByGuildAndMember(ctx context.Context, guildID, memberDiscordID int64) ([]*models.PurchasedWaifu, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM purchased_waifus
		WHERE guild = $1 AND member = $2
		ORDER BY id
	`, purchasedColumns)

	rows, err := r.q.Query(ctx, query, guildID, memberDiscordID)
	if err != nil {
		return nil, fmt.Errorf("failed to list ownerships for member %d in guild %d: %w", memberDiscordID, guildID, err)
	}
	defer rows.Close()

	var purchased []*models.PurchasedWaifu
	for rows.Next() {
		pw, err := scanPurchased(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ownership: %w", err)
		}
		purchased = append(purchased, pw)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate ownerships: %w", err)
	}

	return purchased, nil
}

// ListOwnerIDs returns the distinct member Discord IDs owning waifus in a guild
func (r *PurchasedWaifuRepository) ListOwnerIDs(ctx context.Context, guildID int64) ([]int64, error) {
	query := `
		SELECT DISTINCT member FROM purchased_waifus
		WHERE guild = $1
	`

	rows, err := r.q.Query(ctx, query, guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to list owners in guild %d: %w", guildID, err)
	}
	defer rows.Close()

	var owners []int64
	for rows.Next() {
		var memberID int64
		if err := rows.Scan(&memberID); err != nil {
			return nil, fmt.Errorf("failed to scan owner ID: %w", err)
		}
		owners = append(owners, memberID)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate owners: %w", err)
	}

	return owners, nil
}

// Delete removes an ownership row by primary key
func (r *PurchasedWaifuRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.q.Exec(ctx, `DELETE FROM purchased_waifus WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete ownership %d: %w", id, err)
	}

	if result.RowsAffected() == 0 {
		return service.ErrNotOwned
	}

	return nil
}

// DeleteByIDs removes ownership rows by primary key
func (r *PurchasedWaifuRepository) DeleteByIDs(ctx context.Context, ids []int64) (int64, error) {
	result, err := r.q.Exec(ctx, `DELETE FROM purchased_waifus WHERE id = ANY($1)`, ids)
	if err != nil {
		return 0, fmt.Errorf("failed to delete ownerships: %w", err)
	}

	return result.RowsAffected(), nil
}

// DeleteByGuild removes all ownership rows in a guild
func (r *PurchasedWaifuRepository) DeleteByGuild(ctx context.Context, guildID int64) (int64, error) {
	result, err := r.q.Exec(ctx, `DELETE FROM purchased_waifus WHERE guild = $1`, guildID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete ownerships in guild %d: %w", guildID, err)
	}

	return result.RowsAffected(), nil
}

// DeleteByGuildAndMember removes all ownership rows of one member in a guild
func (r *PurchasedWaifuRepository) DeleteByGuildAndMember(ctx context.Context, guildID, memberDiscordID int64) (int64, error) {
	result, err := r.q.Exec(ctx,
		`DELETE FROM purchased_waifus WHERE guild = $1 AND member = $2`,
		guildID, memberDiscordID,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to delete ownerships of member %d in guild %d: %w", memberDiscordID, guildID, err)
	}

	return result.RowsAffected(), nil
}

// DeleteByGuildAndMembers removes all ownership rows in a guild belonging to
// the listed members
func (r *PurchasedWaifuRepository) DeleteByGuildAndMembers(ctx context.Context, guildID int64, memberDiscordIDs []int64) (int64, error) {
	result, err := r.q.Exec(ctx,
		`DELETE FROM purchased_waifus WHERE guild = $1 AND member = ANY($2)`,
		guildID, memberDiscordIDs,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to delete ownerships in guild %d: %w", guildID, err)
	}

	return result.RowsAffected(), nil
}

// SetFavorite updates the favorite flag of an ownership row
func (r *PurchasedWaifuRepository) SetFavorite(ctx context.Context, id int64, favorite bool) error {
	result, err := r.q.Exec(ctx,
		`UPDATE purchased_waifus SET favorite = $1 WHERE id = $2`,
		favorite, id,
	)
	if err != nil {
		return fmt.Errorf("failed to set favorite on ownership %d: %w", id, err)
	}

	if result.RowsAffected() == 0 {
		return service.ErrNotOwned
	}

	return nil
}

// TransferOwnership rewrites the owner fields of an ownership row in place.
// Trades move the row to the new owner rather than deleting and reinserting,
// so the (guild, waifu) constraint stays satisfied throughout.
func (r *PurchasedWaifuRepository) TransferOwnership(ctx context.Context, id int64, newMemberID, newMemberDiscordID, purchasedFor int64) error {
	query := `
		UPDATE purchased_waifus
		SET member_id = $1, member = $2, purchased_for = $3, favorite = FALSE
		WHERE id = $4
	`

	result, err := r.q.Exec(ctx, query, newMemberID, newMemberDiscordID, purchasedFor, id)
	if err != nil {
		return fmt.Errorf("failed to transfer ownership %d: %w", id, err)
	}

	if result.RowsAffected() == 0 {
		return service.ErrNotOwned
	}

	return nil
}
