package payouts

import "github.com/shopspring/decimal"

// PayoutSummary reports what one allocator run did.
type PayoutSummary struct {
	KillmailsAccounted int
	PodKillsExcluded   int
	SystemsPaid        int
	MembersCredited    int
	MembersSkipped     int
	TotalCredited      decimal.Decimal
}
