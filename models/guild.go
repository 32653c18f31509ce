package models

// Guild represents a Discord server tracked by the ledger
type Guild struct {
	ID               int64  `db:"id"`
	DiscordID        int64  `db:"guild"`
	MusicEnabled     *bool  `db:"music_enabled"`
	CoinDrops        bool   `db:"coin_drops"`
	JoinLeaveChannel *int64 `db:"join_leave_channel"`
	WelcomeText      string `db:"welcome_str"`
	LeaveText        string `db:"leave_str"`
	CustomRole       *int64 `db:"custom_role"`
}

// GuildSettingsUpdate carries the mutable guild settings. Nil fields are
// left unchanged.
type GuildSettingsUpdate struct {
	CoinDrops        *bool
	JoinLeaveChannel *int64
	WelcomeText      *string
	LeaveText        *string
	CustomRole       *int64
}
