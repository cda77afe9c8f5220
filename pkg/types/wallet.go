package types

import "time"

// RefType_BountyPrizes marks wallet journal entries paid out for NPC bounties.
const RefType_BountyPrizes = "bounty_prizes"

// WalletEntry is one row of an ESI character wallet journal. ContextID carries
// the solar system id for bounty_prizes entries.
type WalletEntry struct {
	ID            int64     `json:"id"`
	Date          time.Time `json:"date"`
	RefType       string    `json:"ref_type"`
	Amount        float64   `json:"amount"`
	Balance       float64   `json:"balance"`
	ContextID     int64     `json:"context_id"`
	ContextIDType string    `json:"context_id_type"`
	Description   string    `json:"description"`
	FirstPartyID  int64     `json:"first_party_id"`
	SecondPartyID int64     `json:"second_party_id"`
	Reason        string    `json:"reason"`
	Tax           float64   `json:"tax"`
	TaxReceiverID int64     `json:"tax_receiver_id"`
}

// IsBountyIncome reports whether the entry is a territory-linked bounty payout
// newer than the given cursor.
func (w *WalletEntry) IsBountyIncome(after time.Time) bool {
	return w.RefType == RefType_BountyPrizes && w.ContextID != 0 && w.Date.After(after)
}
