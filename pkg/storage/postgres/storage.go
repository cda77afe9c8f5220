package postgres

import (
	"fmt"
	"time"

	"github.com/bravecollective/bravebucks/internal/config"
	"github.com/bravecollective/bravebucks/pkg/settings"
	"github.com/bravecollective/bravebucks/pkg/storage"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PostgresLedgerStore struct {
	Db           *gorm.DB
	Logger       *zap.Logger
	GlobalConfig *config.Config
}

func NewPostgresLedgerStore(db *gorm.DB, l *zap.Logger, cfg *config.Config) *PostgresLedgerStore {
	return &PostgresLedgerStore{
		Db:           db,
		Logger:       l,
		GlobalConfig: cfg,
	}
}

func (s *PostgresLedgerStore) InsertKillmailWithParticipants(killmail *storage.Killmail, participantIds []int64) error {
	return s.Db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&storage.Killmail{}).Clauses(clause.OnConflict{DoNothing: true}).Create(killmail)
		if res.Error != nil {
			return fmt.Errorf("failed to insert killmail '%d': %w", killmail.KillmailId, res.Error)
		}
		if res.RowsAffected == 0 {
			return storage.ErrAlreadyRecorded
		}

		for _, userId := range participantIds {
			participant := &storage.KillmailParticipant{
				KillmailId: killmail.KillmailId,
				UserId:     userId,
			}
			res := tx.Model(&storage.KillmailParticipant{}).Clauses(clause.OnConflict{DoNothing: true}).Create(participant)
			if res.Error != nil {
				return fmt.Errorf("failed to insert participant '%d' for killmail '%d': %w", userId, killmail.KillmailId, res.Error)
			}
		}
		return nil
	})
}

func (s *PostgresLedgerStore) ListUnaccountedKillmails() ([]*storage.Killmail, error) {
	var killmails []*storage.Killmail
	res := s.Db.Model(&storage.Killmail{}).
		Where("accounted = ?", false).
		Order("killmail_id asc").
		Find(&killmails)
	if res.Error != nil {
		return nil, fmt.Errorf("failed to list unaccounted killmails: %w", res.Error)
	}
	return killmails, nil
}

func (s *PostgresLedgerStore) ListKillmailParticipants(killmailId int64) ([]int64, error) {
	var userIds []int64
	res := s.Db.Model(&storage.KillmailParticipant{}).
		Where("killmail_id = ?", killmailId).
		Pluck("user_id", &userIds)
	if res.Error != nil {
		return nil, fmt.Errorf("failed to list participants for killmail '%d': %w", killmailId, res.Error)
	}
	return userIds, nil
}

func (s *PostgresLedgerStore) UpdateKillmailPoints(killmailId int64, points int64) error {
	res := s.Db.Model(&storage.Killmail{}).
		Where("killmail_id = ?", killmailId).
		Update("points", points)
	if res.Error != nil {
		return fmt.Errorf("failed to update points for killmail '%d': %w", killmailId, res.Error)
	}
	return nil
}

func (s *PostgresLedgerStore) MarkKillmailAccounted(killmailId int64) error {
	res := s.Db.Model(&storage.Killmail{}).
		Where("killmail_id = ?", killmailId).
		Update("accounted", true)
	if res.Error != nil {
		return fmt.Errorf("failed to mark killmail '%d' accounted: %w", killmailId, res.Error)
	}
	return nil
}

func (s *PostgresLedgerStore) CreditUserBalance(userId int64, amount decimal.Decimal) error {
	res := s.Db.Model(&storage.User{}).
		Where("user_id = ?", userId).
		Update("balance", gorm.Expr("balance + ?", amount))
	if res.Error != nil {
		return fmt.Errorf("failed to credit user '%d': %w", userId, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("failed to credit user '%d': user not found", userId)
	}
	return nil
}

func (s *PostgresLedgerStore) ListUsersWithRefreshToken() ([]*storage.User, error) {
	var users []*storage.User
	res := s.Db.Model(&storage.User{}).
		Where("refresh_token is not null and length(refresh_token) > 1").
		Find(&users)
	if res.Error != nil {
		return nil, fmt.Errorf("failed to list users with refresh tokens: %w", res.Error)
	}
	return users, nil
}

func (s *PostgresLedgerStore) UpdateRefreshToken(userId int64, refreshToken string) error {
	res := s.Db.Model(&storage.User{}).
		Where("user_id = ?", userId).
		Update("refresh_token", refreshToken)
	if res.Error != nil {
		return fmt.Errorf("failed to update refresh token for user '%d': %w", userId, res.Error)
	}
	return nil
}

func (s *PostgresLedgerStore) CreatePayoutRequest(userId int64) (*storage.PayoutRequest, error) {
	var request *storage.PayoutRequest
	err := s.Db.Transaction(func(tx *gorm.DB) error {
		var user storage.User
		if res := tx.First(&user, "user_id = ?", userId); res.Error != nil {
			return fmt.Errorf("failed to load user '%d': %w", userId, res.Error)
		}

		request = &storage.PayoutRequest{
			UserId: userId,
			Amount: user.Balance,
			Status: "pending",
		}
		if res := tx.Model(&storage.PayoutRequest{}).Clauses(clause.Returning{}).Create(request); res.Error != nil {
			return fmt.Errorf("failed to create payout request for user '%d': %w", userId, res.Error)
		}

		if res := tx.Model(&storage.User{}).Where("user_id = ?", userId).Update("balance", decimal.Zero); res.Error != nil {
			return fmt.Errorf("failed to reset balance for user '%d': %w", userId, res.Error)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return request, nil
}

func (s *PostgresLedgerStore) GetAdmUser(userId int64) (*storage.AdmUser, error) {
	var admUser storage.AdmUser
	res := s.Db.First(&admUser, "user_id = ?", userId)
	if res.Error != nil {
		if res.Error == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get adm user '%d': %w", userId, res.Error)
	}
	return &admUser, nil
}

func (s *PostgresLedgerStore) TouchAdmUser(userId int64) error {
	now := time.Now().UTC()
	admUser := &storage.AdmUser{
		UserId:      userId,
		LastUpdated: &now,
	}
	res := s.Db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"last_updated"}),
	}).Create(admUser)
	if res.Error != nil {
		return fmt.Errorf("failed to touch adm user '%d': %w", userId, res.Error)
	}
	return nil
}

func (s *PostgresLedgerStore) GetAdmSystem(solarSystemId int64) (*storage.AdmSystem, error) {
	var system storage.AdmSystem
	res := s.Db.First(&system, "solar_system_id = ?", solarSystemId)
	if res.Error != nil {
		if res.Error == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get adm system '%d': %w", solarSystemId, res.Error)
	}
	return &system, nil
}

func (s *PostgresLedgerStore) UpsertAdmSystem(solarSystemId int64, name string, admLevel float64) error {
	system := &storage.AdmSystem{
		SolarSystemId: solarSystemId,
		Name:          name,
		AdmLevel:      admLevel,
		UpdatedAt:     time.Now().UTC(),
	}
	res := s.Db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "solar_system_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "adm_level", "updated_at"}),
	}).Create(system)
	if res.Error != nil {
		return fmt.Errorf("failed to upsert adm system '%d': %w", solarSystemId, res.Error)
	}
	return nil
}

func (s *PostgresLedgerStore) GetSettingsByPath(path string) ([]settings.Setting, error) {
	var rows []storage.Setting
	res := s.Db.Model(&storage.Setting{}).
		Where("path = ?", path).
		Order("id asc").
		Find(&rows)
	if res.Error != nil {
		return nil, fmt.Errorf("failed to get settings for path '%s': %w", path, res.Error)
	}
	out := make([]settings.Setting, 0, len(rows))
	for _, row := range rows {
		out = append(out, settings.Setting{Path: row.Path, Value: row.Value})
	}
	return out, nil
}
