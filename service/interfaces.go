package service

import (
	"context"
	"time"

	"github.com/Yureien/PinocchioBot/events"
	"github.com/Yureien/PinocchioBot/models"
)

// MemberRepository defines the interface for member ledger access
type MemberRepository interface {
	// GetByDiscordID retrieves a member by their Discord ID, nil when absent
	GetByDiscordID(ctx context.Context, discordID int64) (*models.Member, error)

	// Create creates a new member row with a zero wallet
	Create(ctx context.Context, discordID int64) (*models.Member, error)

	// AddBalance credits a member's wallet atomically and returns the new balance
	AddBalance(ctx context.Context, discordID int64, amount int64) (int64, error)

	// DeductBalance debits a member's wallet atomically, failing with
	// ErrInsufficientFunds when the wallet cannot cover the amount
	DeductBalance(ctx context.Context, discordID int64, amount int64) (int64, error)

	// ClaimReward updates the reward timestamp for the given kind only if the
	// interval has elapsed (or no prior claim exists). Returns false when the
	// member is not yet eligible. The check and the update are one statement.
	ClaimReward(ctx context.Context, discordID int64, kind models.RewardKind, interval time.Duration) (bool, error)

	// SetTier updates a member's donator tier
	SetTier(ctx context.Context, discordID int64, tier int16) error
}

// GuildRepository defines the interface for guild settings access
type GuildRepository interface {
	// GetByDiscordID retrieves a guild by its Discord ID, nil when absent
	GetByDiscordID(ctx context.Context, discordID int64) (*models.Guild, error)

	// Create creates a new guild row with default settings
	Create(ctx context.Context, discordID int64) (*models.Guild, error)

	// UpdateSettings applies the non-nil fields of the update
	UpdateSettings(ctx context.Context, discordID int64, update models.GuildSettingsUpdate) error
}

// WaifuRepository defines the interface for catalog access
type WaifuRepository interface {
	// GetByID retrieves a catalog entry by ID, nil when absent
	GetByID(ctx context.Context, id int64) (*models.Waifu, error)

	// GetByIDs retrieves catalog entries for the given IDs
	GetByIDs(ctx context.Context, ids []int64) ([]*models.Waifu, error)

	// GetAll returns the full catalog ordered by ID
	GetAll(ctx context.Context) ([]*models.Waifu, error)

	// GetRandom draws one random catalog entry
	GetRandom(ctx context.Context) (*models.Waifu, error)
}

// PurchasedWaifuRepository defines the interface for ownership records
type PurchasedWaifuRepository interface {
	// Create inserts an ownership row. Returns ErrAlreadyOwned when the
	// (guild, waifu) pair is already taken; the database constraint is the
	// serialization point for concurrent purchases.
	Create(ctx context.Context, pw *models.PurchasedWaifu) error

	// FindByGuildAndWaifu returns the ownership row for a waifu in a guild,
	// nil when unowned
	FindByGuildAndWaifu(ctx context.Context, guildID, waifuID int64) (*models.PurchasedWaifu, error)

	// FindByGuildMemberAndWaifu returns the ownership row only if the given
	// member owns the waifu in the guild, nil otherwise
	FindByGuildMemberAndWaifu(ctx context.Context, guildID, memberDiscordID, waifuID int64) (*models.PurchasedWaifu, error)

	// ListByGuildAndMember returns all ownership rows of a member in a guild
	ListByGuildAndMember(ctx context.Context, guildID, memberDiscordID int64) ([]*models.PurchasedWaifu, error)

	// ListOwnerIDs returns the distinct member Discord IDs owning waifus in a guild
	ListOwnerIDs(ctx context.Context, guildID int64) ([]int64, error)

	// Delete removes an ownership row by primary key
	Delete(ctx context.Context, id int64) error

	// DeleteByIDs removes ownership rows by primary key
	DeleteByIDs(ctx context.Context, ids []int64) (int64, error)

	// DeleteByGuild removes all ownership rows in a guild
	DeleteByGuild(ctx context.Context, guildID int64) (int64, error)

	// DeleteByGuildAndMember removes all ownership rows of one member in a guild
	DeleteByGuildAndMember(ctx context.Context, guildID, memberDiscordID int64) (int64, error)

	// DeleteByGuildAndMembers removes all ownership rows in a guild belonging
	// to the listed members
	DeleteByGuildAndMembers(ctx context.Context, guildID int64, memberDiscordIDs []int64) (int64, error)

	// SetFavorite updates the favorite flag of an ownership row
	SetFavorite(ctx context.Context, id int64, favorite bool) error

	// TransferOwnership rewrites the owner fields of an ownership row in place
	TransferOwnership(ctx context.Context, id int64, newMemberID, newMemberDiscordID, purchasedFor int64) error
}

// RollWindow is a durable per-(guild, member) roll counter
type RollWindow struct {
	GuildID     int64     `db:"guild"`
	MemberID    int64     `db:"member"`
	RollsUsed   int       `db:"rolls_used"`
	WindowStart time.Time `db:"window_start"`
}

// RollWindowRepository defines the interface for roll-limit counters
type RollWindowRepository interface {
	// Get returns the current window for a member in a guild, nil when the
	// member has never rolled there
	Get(ctx context.Context, guildID, memberID int64) (*RollWindow, error)

	// ConsumeRoll increments the member's roll counter, resetting the window
	// first when it has expired. Returns false when the quota is exhausted.
	// Check and increment are a single statement so concurrent rolls cannot
	// exceed the quota.
	ConsumeRoll(ctx context.Context, guildID, memberID int64, limit int, interval time.Duration) (bool, error)
}

// EventPublisher publishes events which are flushed after the surrounding
// transaction commits
type EventPublisher interface {
	Publish(event events.Event)
}

// UnitOfWork represents a database transaction with access to all repositories
type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	MemberRepository() MemberRepository
	GuildRepository() GuildRepository
	WaifuRepository() WaifuRepository
	PurchasedWaifuRepository() PurchasedWaifuRepository
	RollWindowRepository() RollWindowRepository
	EventBus() EventPublisher
}

// UnitOfWorkFactory creates units of work
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}

// MemberService defines the interface for member and wallet operations
type MemberService interface {
	// GetOrCreateMember retrieves an existing member or lazily creates one
	GetOrCreateMember(ctx context.Context, discordID int64) (*models.Member, error)

	// Wallet returns a member's balance, failing with ErrUnknownMember
	Wallet(ctx context.Context, discordID int64) (int64, error)

	// Credit adds to a member's wallet, creating the member if absent
	Credit(ctx context.Context, discordID int64, amount int64, reason string) (int64, error)

	// Transfer moves money between two members atomically
	Transfer(ctx context.Context, fromDiscordID, toDiscordID, amount int64) error
}

// GuildService defines the interface for guild settings
type GuildService interface {
	// GetOrCreateGuild retrieves an existing guild or lazily creates one with
	// default settings
	GetOrCreateGuild(ctx context.Context, discordID int64) (*models.Guild, error)

	// UpdateSettings applies the non-nil fields of the update, creating the
	// guild row if absent
	UpdateSettings(ctx context.Context, discordID int64, update models.GuildSettingsUpdate) (*models.Guild, error)
}

// RewardService defines the interface for timed reward claims and roll quotas
type RewardService interface {
	// ClaimDaily claims the daily reward, with a 10% jackpot chance and tier
	// multipliers
	ClaimDaily(ctx context.Context, discordID int64) (*models.RewardResult, error)

	// ClaimHourly claims the hourly reward; donator tier 1 or above only
	ClaimHourly(ctx context.Context, discordID int64) (*models.RewardResult, error)

	// ClaimVote claims the vote reward; weekend doubles the base amount
	ClaimVote(ctx context.Context, discordID int64, weekend bool) (*models.RewardResult, error)

	// NextClaim reports how long until the given reward can be claimed again
	NextClaim(ctx context.Context, discordID int64, kind models.RewardKind) (time.Duration, error)

	// ConsumeRoll spends one roll from the member's quota, failing with
	// *RollLimitError when exhausted
	ConsumeRoll(ctx context.Context, guildID, memberID int64) error

	// RollsLeft reports the member's remaining rolls and window reset time
	RollsLeft(ctx context.Context, guildID, memberID int64) (*models.RollsStatus, error)
}

// HaremEntry pairs an ownership row with its catalog entry for display
type HaremEntry struct {
	Purchased *models.PurchasedWaifu
	Waifu     *models.Waifu
}

// HaremFilter selects and orders harem listings
type HaremFilter struct {
	// SortKey is one of "name", "series", "id", "price"; empty keeps insertion order
	SortKey    string
	Descending bool
	// Gender filters by gender tag when non-empty ("f" or "m")
	Gender string
}

// WaifuService defines the interface for ownership workflows
type WaifuService interface {
	// Owner returns the ownership row for a waifu in a guild, nil when unowned
	Owner(ctx context.Context, guildID, waifuID int64) (*models.PurchasedWaifu, error)

	// Purchase buys a waifu at the given price. Re-validates that the waifu is
	// unowned inside the transaction; debit and insert commit together.
	Purchase(ctx context.Context, guildID, buyerDiscordID, waifuID, price int64) (*models.PurchaseResult, error)

	// Sell sells an owned waifu back, refunding the depreciated purchase price
	Sell(ctx context.Context, guildID, sellerDiscordID, waifuID int64) (*models.SaleResult, error)

	// SellHarem sells every waifu a member owns in a guild in one transaction
	SellHarem(ctx context.Context, guildID, memberDiscordID int64) (*models.HaremSaleResult, error)

	// SetFavorite toggles the favorite flag on an owned waifu
	SetFavorite(ctx context.Context, guildID, memberDiscordID, waifuID int64, favorite bool) error

	// Harem lists a member's waifus with catalog data, filtered and sorted
	Harem(ctx context.Context, guildID, memberDiscordID int64, filter HaremFilter) ([]*HaremEntry, error)
}

// TradeService defines the interface for two-party trades
type TradeService interface {
	// TradeForMoney transfers senderWaifu to the receiver for the agreed
	// price. Both legs commit together or not at all; ownership and balance
	// are re-validated inside the transaction.
	TradeForMoney(ctx context.Context, guildID, senderID, receiverID, waifuID, price int64) error

	// TradeWaifus swaps two waifus between sender and receiver. Both legs
	// commit together; both ownerships are re-validated inside the transaction.
	TradeWaifus(ctx context.Context, guildID, senderID, receiverID, senderWaifuID, receiverWaifuID int64) error
}

// RollDraw is a randomly drawn waifu offered at a discounted price
type RollDraw struct {
	Waifu *models.Waifu
	Price int64
	Owner *models.PurchasedWaifu // nil when claimable
}

// RollService defines the interface for the random discounted-waifu roll
type RollService interface {
	// Draw spends a roll and draws a random catalog entry at the discounted price
	Draw(ctx context.Context, guildID, rollerID int64) (*RollDraw, error)

	// Claim purchases a drawn waifu for the claimer. The ownership constraint
	// guarantees at most one winner under concurrent claims.
	Claim(ctx context.Context, guildID, claimerID, waifuID, price int64) (*models.PurchaseResult, error)
}

// SearchService defines the interface for catalog lookup
type SearchService interface {
	// Search ranks catalog entries against the query; numeric queries are
	// exact-ID lookups
	Search(ctx context.Context, query string, limit int) ([]*models.Waifu, error)
}

// RescueService defines the interface for administrative bulk divestment
type RescueService interface {
	// Rescue deletes ownership rows whose owner is no longer in the guild.
	// presentMemberIDs is the guild's current roster. No ledger effect.
	Rescue(ctx context.Context, guildID int64, presentMemberIDs []int64) (int64, error)

	// Divorce deletes ownership rows for one member or the whole guild
	Divorce(ctx context.Context, guildID int64, target Target) (int64, error)
}

// ExchangePartner is the cross-bot currency exchange collaborator
type ExchangePartner interface {
	CreateTransaction(ctx context.Context, currency string, amount int64, memberID int64) (*models.ExchangeReceipt, error)
}

// ExchangeService defines the interface for outbound currency exchange
type ExchangeService interface {
	// Exchange debits the member locally and creates a partner transaction.
	// A partner failure refunds the debit and returns *ExternalServiceError.
	Exchange(ctx context.Context, discordID int64, currency string, amount int64) (*models.ExchangeReceipt, error)
}
