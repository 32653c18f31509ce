package models

import (
	"time"
)

// Member represents a Discord user tracked by the ledger
type Member struct {
	ID           int64      `db:"id"`
	DiscordID    int64      `db:"member"`
	Wallet       int64      `db:"wallet"`
	LastDailies  *time.Time `db:"last_dailies"`
	LastHourlies *time.Time `db:"last_hourlies"`
	LastReward   *time.Time `db:"last_reward"`
	Tier         int16      `db:"tier"`
}
