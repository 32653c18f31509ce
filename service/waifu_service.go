package service

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/Yureien/PinocchioBot/config"
	"github.com/Yureien/PinocchioBot/events"
	"github.com/Yureien/PinocchioBot/models"
)

// waifuService implements the WaifuService interface
type waifuService struct {
	uowFactory UnitOfWorkFactory
}

// NewWaifuService creates a new waifu service
func NewWaifuService(uowFactory UnitOfWorkFactory) WaifuService {
	return &waifuService{
		uowFactory: uowFactory,
	}
}

// SellRefund computes the depreciated refund for a purchase price
func SellRefund(purchasedFor int64) int64 {
	return int64(math.Floor(float64(purchasedFor) * config.Get().SellDepreciation))
}

// Owner returns the ownership row for a waifu in a guild, nil when unowned
func (s *waifuService) Owner(ctx context.Context, guildID, waifuID int64) (*models.PurchasedWaifu, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	return uow.PurchasedWaifuRepository().FindByGuildAndWaifu(ctx, guildID, waifuID)
}

// Purchase buys a waifu at the given price. Ownership is re-validated inside
// the transaction; the unique constraint on (guild, waifu) decides concurrent
// buyers.
func (s *waifuService) Purchase(ctx context.Context, guildID, buyerDiscordID, waifuID, price int64) (*models.PurchaseResult, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	waifu, err := uow.WaifuRepository().GetByID(ctx, waifuID)
	if err != nil {
		return nil, fmt.Errorf("failed to get waifu: %w", err)
	}
	if waifu == nil {
		return nil, ErrWaifuNotFound
	}

	existing, err := uow.PurchasedWaifuRepository().FindByGuildAndWaifu(ctx, guildID, waifuID)
	if err != nil {
		return nil, fmt.Errorf("failed to check ownership: %w", err)
	}
	if existing != nil {
		return nil, ErrAlreadyOwned
	}

	buyer, err := uow.MemberRepository().GetByDiscordID(ctx, buyerDiscordID)
	if err != nil {
		return nil, fmt.Errorf("failed to get buyer: %w", err)
	}
	if buyer == nil {
		buyer, err = uow.MemberRepository().Create(ctx, buyerDiscordID)
		if err != nil {
			return nil, fmt.Errorf("failed to create buyer: %w", err)
		}
	}

	newBalance, err := uow.MemberRepository().DeductBalance(ctx, buyerDiscordID, price)
	if err != nil {
		return nil, err
	}

	err = uow.PurchasedWaifuRepository().Create(ctx, &models.PurchasedWaifu{
		MemberID:     buyer.ID,
		WaifuID:      waifuID,
		GuildID:      guildID,
		MemberDiscID: buyerDiscordID,
		PurchasedFor: price,
	})
	if err != nil {
		return nil, err
	}

	uow.EventBus().Publish(events.WaifuPurchasedEvent{
		GuildID:  guildID,
		MemberID: buyerDiscordID,
		WaifuID:  waifuID,
		Price:    price,
	})
	uow.EventBus().Publish(events.WalletChangeEvent{
		MemberID:     buyerDiscordID,
		OldBalance:   newBalance + price,
		NewBalance:   newBalance,
		ChangeAmount: -price,
		Reason:       "waifu_purchase",
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &models.PurchaseResult{
		Waifu:      waifu,
		Price:      price,
		NewBalance: newBalance,
	}, nil
}

// Sell sells an owned waifu back for the depreciated purchase price
func (s *waifuService) Sell(ctx context.Context, guildID, sellerDiscordID, waifuID int64) (*models.SaleResult, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	owned, err := uow.PurchasedWaifuRepository().FindByGuildMemberAndWaifu(ctx, guildID, sellerDiscordID, waifuID)
	if err != nil {
		return nil, fmt.Errorf("failed to check ownership: %w", err)
	}
	if owned == nil {
		return nil, ErrNotOwned
	}

	waifu, err := uow.WaifuRepository().GetByID(ctx, waifuID)
	if err != nil {
		return nil, fmt.Errorf("failed to get waifu: %w", err)
	}

	refund := SellRefund(owned.PurchasedFor)

	if err := uow.PurchasedWaifuRepository().Delete(ctx, owned.ID); err != nil {
		return nil, fmt.Errorf("failed to delete ownership: %w", err)
	}

	newBalance, err := uow.MemberRepository().AddBalance(ctx, sellerDiscordID, refund)
	if err != nil {
		return nil, fmt.Errorf("failed to credit refund: %w", err)
	}

	uow.EventBus().Publish(events.WaifuSoldEvent{
		GuildID:  guildID,
		MemberID: sellerDiscordID,
		WaifuID:  waifuID,
		Refund:   refund,
	})
	uow.EventBus().Publish(events.WalletChangeEvent{
		MemberID:     sellerDiscordID,
		OldBalance:   newBalance - refund,
		NewBalance:   newBalance,
		ChangeAmount: refund,
		Reason:       "waifu_sale",
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &models.SaleResult{
		Waifu:      waifu,
		Refund:     refund,
		NewBalance: newBalance,
	}, nil
}

// SellHarem sells every waifu a member owns in a guild in one transaction
func (s *waifuService) SellHarem(ctx context.Context, guildID, memberDiscordID int64) (*models.HaremSaleResult, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	owned, err := uow.PurchasedWaifuRepository().ListByGuildAndMember(ctx, guildID, memberDiscordID)
	if err != nil {
		return nil, fmt.Errorf("failed to list harem: %w", err)
	}
	if len(owned) == 0 {
		return nil, ErrEmptyHarem
	}

	var refund int64
	ids := make([]int64, 0, len(owned))
	for _, pw := range owned {
		refund += SellRefund(pw.PurchasedFor)
		ids = append(ids, pw.ID)
	}

	deleted, err := uow.PurchasedWaifuRepository().DeleteByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to delete harem: %w", err)
	}

	newBalance, err := uow.MemberRepository().AddBalance(ctx, memberDiscordID, refund)
	if err != nil {
		return nil, fmt.Errorf("failed to credit refund: %w", err)
	}

	uow.EventBus().Publish(events.WalletChangeEvent{
		MemberID:     memberDiscordID,
		OldBalance:   newBalance - refund,
		NewBalance:   newBalance,
		ChangeAmount: refund,
		Reason:       "harem_sale",
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &models.HaremSaleResult{
		WaifusSold: int(deleted),
		Refund:     refund,
		NewBalance: newBalance,
	}, nil
}

// SetFavorite toggles the favorite flag on an owned waifu
func (s *waifuService) SetFavorite(ctx context.Context, guildID, memberDiscordID, waifuID int64, favorite bool) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	owned, err := uow.PurchasedWaifuRepository().FindByGuildMemberAndWaifu(ctx, guildID, memberDiscordID, waifuID)
	if err != nil {
		return fmt.Errorf("failed to check ownership: %w", err)
	}
	if owned == nil {
		return ErrNotOwned
	}

	if err := uow.PurchasedWaifuRepository().SetFavorite(ctx, owned.ID, favorite); err != nil {
		return fmt.Errorf("failed to set favorite: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// Harem lists a member's waifus with catalog data, filtered and sorted.
// Favorites always sort before non-favorites.
func (s *waifuService) Harem(ctx context.Context, guildID, memberDiscordID int64, filter HaremFilter) ([]*HaremEntry, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	owned, err := uow.PurchasedWaifuRepository().ListByGuildAndMember(ctx, guildID, memberDiscordID)
	if err != nil {
		return nil, fmt.Errorf("failed to list harem: %w", err)
	}
	if len(owned) == 0 {
		return nil, nil
	}

	ids := make([]int64, 0, len(owned))
	for _, pw := range owned {
		ids = append(ids, pw.WaifuID)
	}

	waifus, err := uow.WaifuRepository().GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to get waifus: %w", err)
	}
	byID := make(map[int64]*models.Waifu, len(waifus))
	for _, w := range waifus {
		byID[w.ID] = w
	}

	entries := make([]*HaremEntry, 0, len(owned))
	for _, pw := range owned {
		waifu, ok := byID[pw.WaifuID]
		if !ok {
			continue
		}
		if filter.Gender != "" {
			if waifu.Gender == nil || !strings.EqualFold(*waifu.Gender, filter.Gender) {
				continue
			}
		}
		entries = append(entries, &HaremEntry{Purchased: pw, Waifu: waifu})
	}

	sortHarem(entries, filter)
	return entries, nil
}

func sortHarem(entries []*HaremEntry, filter HaremFilter) {
	less := haremLess(filter)
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.Purchased.Favorite != b.Purchased.Favorite {
			return a.Purchased.Favorite
		}
		if less == nil {
			return false
		}
		if filter.Descending {
			return less(b, a)
		}
		return less(a, b)
	})
}

func haremLess(filter HaremFilter) func(a, b *HaremEntry) bool {
	switch filter.SortKey {
	case "name":
		return func(a, b *HaremEntry) bool {
			return strings.ToLower(a.Waifu.Name) < strings.ToLower(b.Waifu.Name)
		}
	case "series":
		return func(a, b *HaremEntry) bool {
			return strings.ToLower(a.Waifu.FromAnime) < strings.ToLower(b.Waifu.FromAnime)
		}
	case "price":
		return func(a, b *HaremEntry) bool {
			return a.Purchased.PurchasedFor < b.Purchased.PurchasedFor
		}
	case "id":
		return func(a, b *HaremEntry) bool {
			return a.Waifu.ID < b.Waifu.ID
		}
	default:
		return nil
	}
}
