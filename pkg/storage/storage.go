package storage

import (
	"errors"
	"time"

	"github.com/bravecollective/bravebucks/pkg/settings"
	"github.com/shopspring/decimal"
)

// ErrAlreadyRecorded is returned when a killmail id already has a ledger entry.
// Duplicate delivery from the killstream is expected and must never
// double-credit participants.
var ErrAlreadyRecorded = errors.New("killmail already recorded")

type LedgerStore interface {
	// InsertKillmailWithParticipants atomically inserts the killmail row and its
	// participant links. Idempotent on killmail id: a second insert returns
	// ErrAlreadyRecorded and mutates nothing.
	InsertKillmailWithParticipants(killmail *Killmail, participantIds []int64) error
	ListUnaccountedKillmails() ([]*Killmail, error)
	ListKillmailParticipants(killmailId int64) ([]int64, error)
	// UpdateKillmailPoints overwrites the raw point value with the smoothed one.
	UpdateKillmailPoints(killmailId int64, points int64) error
	MarkKillmailAccounted(killmailId int64) error

	CreditUserBalance(userId int64, amount decimal.Decimal) error
	ListUsersWithRefreshToken() ([]*User, error)
	UpdateRefreshToken(userId int64, refreshToken string) error

	// CreatePayoutRequest records the member's accrued balance as a requested
	// payout and resets the balance to zero.
	CreatePayoutRequest(userId int64) (*PayoutRequest, error)

	GetAdmUser(userId int64) (*AdmUser, error)
	// TouchAdmUser advances the member's wallet scan cursor to now.
	TouchAdmUser(userId int64) error

	GetAdmSystem(solarSystemId int64) (*AdmSystem, error)
	UpsertAdmSystem(solarSystemId int64, name string, admLevel float64) error

	GetSettingsByPath(path string) ([]settings.Setting, error)
}

// Tables.
type Killmail struct {
	KillmailId        int64 `gorm:"primaryKey"`
	VictimName        string
	VictimAlliance    *string
	VictimCorporation string
	ShipTypeId        int64
	Points            int64
	Defensive         bool
	Accounted         bool
	CreatedAt         time.Time
}

type KillmailParticipant struct {
	KillmailId int64 `gorm:"primaryKey"`
	UserId     int64 `gorm:"primaryKey"`
}

type User struct {
	UserId       int64 `gorm:"primaryKey"`
	Username     string
	Role         string
	Balance      decimal.Decimal `gorm:"type:numeric"`
	RefreshToken string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type PayoutRequest struct {
	Id        uint64 `gorm:"primaryKey"`
	UserId    int64
	Amount    decimal.Decimal `gorm:"type:numeric"`
	Status    string
	CreatedAt time.Time
}

// AdmSystem is the latest known control level of one configured territory.
type AdmSystem struct {
	SolarSystemId int64 `gorm:"primaryKey"`
	Name          string
	AdmLevel      float64
	UpdatedAt     time.Time
}

// AdmUser tracks how far a member's wallet journal has been scanned. A nil
// LastUpdated means the member has never been scanned.
type AdmUser struct {
	UserId      int64 `gorm:"primaryKey"`
	LastUpdated *time.Time
}

type Setting struct {
	Id    uint64 `gorm:"primaryKey"`
	Path  string
	Value string
}
