package testutil

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Yureien/PinocchioBot/database"
	"github.com/Yureien/PinocchioBot/models"
)

// SeedMember inserts a member row with the given wallet balance
func SeedMember(t *testing.T, db *database.DB, discordID, wallet int64) *models.Member {
	t.Helper()

	var member models.Member
	err := db.Pool.QueryRow(context.Background(),
		`INSERT INTO members (member, wallet, tier) VALUES ($1, $2, 0)
		 RETURNING id, member, wallet, tier`,
		discordID, wallet,
	).Scan(&member.ID, &member.DiscordID, &member.Wallet, &member.Tier)
	require.NoError(t, err)

	return &member
}

// SeedWaifu inserts a catalog entry
func SeedWaifu(t *testing.T, db *database.DB, id int64, name, fromAnime string, price int64) *models.Waifu {
	t.Helper()

	_, err := db.Pool.Exec(context.Background(),
		`INSERT INTO waifus (id, name, from_anime, price) VALUES ($1, $2, $3, $4)`,
		id, name, fromAnime, price,
	)
	require.NoError(t, err)

	return &models.Waifu{ID: id, Name: name, FromAnime: fromAnime, Price: price}
}

// SeedGuild inserts a guild row with default settings
func SeedGuild(t *testing.T, db *database.DB, discordID int64) {
	t.Helper()

	_, err := db.Pool.Exec(context.Background(),
		`INSERT INTO guilds (guild) VALUES ($1) ON CONFLICT DO NOTHING`,
		discordID,
	)
	require.NoError(t, err)
}
