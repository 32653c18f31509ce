package models

import "time"

// RewardKind identifies a timed reward claim
type RewardKind string

const (
	RewardDaily  RewardKind = "daily"
	RewardHourly RewardKind = "hourly"
	RewardVote   RewardKind = "vote"
)

// RewardResult is the outcome of a successful reward claim
type RewardResult struct {
	Kind       RewardKind
	Amount     int64
	Jackpot    bool
	Multiplier int64
	NewBalance int64
}

// PurchaseResult is the outcome of a completed waifu purchase
type PurchaseResult struct {
	Waifu      *Waifu
	Price      int64
	NewBalance int64
}

// SaleResult is the outcome of a completed waifu sale
type SaleResult struct {
	Waifu      *Waifu
	Refund     int64
	NewBalance int64
}

// HaremSaleResult is the outcome of selling an entire harem
type HaremSaleResult struct {
	WaifusSold int
	Refund     int64
	NewBalance int64
}

// RollsStatus reports the state of a member's roll window
type RollsStatus struct {
	Total     int
	Used      int
	Remaining int
	ResetIn   time.Duration
}

// ExchangeReceipt is returned by the exchange partner after a successful
// cross-bot currency transaction
type ExchangeReceipt struct {
	TransactionID string
	Currency      string
	Amount        int64
	Payout        float64
}
