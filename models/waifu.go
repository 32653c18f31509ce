package models

import "strings"

// Waifu is a catalog entry. The catalog is managed out-of-band; nothing in
// the bot mutates it.
type Waifu struct {
	ID          int64   `db:"id"`
	Name        string  `db:"name"`
	FromAnime   string  `db:"from_anime"`
	Gender      *string `db:"gender"`
	Price       int64   `db:"price"`
	Description *string `db:"description"`
	ImageURL    *string `db:"image_url"`
}

// Images splits the comma-separated image URL list
func (w *Waifu) Images() []string {
	if w.ImageURL == nil || *w.ImageURL == "" {
		return nil
	}
	return strings.Split(*w.ImageURL, ",")
}

// PurchasedWaifu binds one waifu to one member within one guild. The guild
// and member Discord IDs are denormalized alongside the member foreign key.
type PurchasedWaifu struct {
	ID           int64 `db:"id"`
	MemberID     int64 `db:"member_id"`
	WaifuID      int64 `db:"waifu_id"`
	GuildID      int64 `db:"guild"`
	MemberDiscID int64 `db:"member"`
	PurchasedFor int64 `db:"purchased_for"`
	Favorite     bool  `db:"favorite"`
}
