package payouts

import (
	"fmt"
	"time"

	"github.com/bravecollective/bravebucks/pkg/clients/sso"
	"github.com/bravecollective/bravebucks/pkg/settings"
	"github.com/bravecollective/bravebucks/pkg/storage"
	"github.com/bravecollective/bravebucks/pkg/types"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func testLogger() *zap.Logger {
	return zap.NewNop()
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

type fakeSettings struct {
	values map[string][]string
}

func (f *fakeSettings) GetSettingsByPath(path string) ([]settings.Setting, error) {
	rows := make([]settings.Setting, 0, len(f.values[path]))
	for _, v := range f.values[path] {
		rows = append(rows, settings.Setting{Path: path, Value: v})
	}
	return rows, nil
}

type fakeLedgerStore struct {
	killmails    []*storage.Killmail
	participants map[int64][]int64
	balances     map[int64]decimal.Decimal
	users        []*storage.User
	admUsers     map[int64]*storage.AdmUser
	admSystems   map[int64]*storage.AdmSystem
	tokens       map[int64]string

	creditErrs       map[int64]error
	participantsErrs map[int64]error
	touched          []int64
}

func newFakeLedgerStore() *fakeLedgerStore {
	return &fakeLedgerStore{
		participants:     make(map[int64][]int64),
		balances:         make(map[int64]decimal.Decimal),
		admUsers:         make(map[int64]*storage.AdmUser),
		admSystems:       make(map[int64]*storage.AdmSystem),
		tokens:           make(map[int64]string),
		creditErrs:       make(map[int64]error),
		participantsErrs: make(map[int64]error),
	}
}

func (f *fakeLedgerStore) addKillmail(killmailId int64, points int64, shipTypeId int64, participantIds ...int64) {
	f.killmails = append(f.killmails, &storage.Killmail{
		KillmailId: killmailId,
		ShipTypeId: shipTypeId,
		Points:     points,
	})
	f.participants[killmailId] = participantIds
}

func (f *fakeLedgerStore) InsertKillmailWithParticipants(killmail *storage.Killmail, participantIds []int64) error {
	for _, existing := range f.killmails {
		if existing.KillmailId == killmail.KillmailId {
			return storage.ErrAlreadyRecorded
		}
	}
	f.killmails = append(f.killmails, killmail)
	f.participants[killmail.KillmailId] = participantIds
	return nil
}

func (f *fakeLedgerStore) ListUnaccountedKillmails() ([]*storage.Killmail, error) {
	unaccounted := make([]*storage.Killmail, 0, len(f.killmails))
	for _, km := range f.killmails {
		if !km.Accounted {
			unaccounted = append(unaccounted, km)
		}
	}
	return unaccounted, nil
}

func (f *fakeLedgerStore) ListKillmailParticipants(killmailId int64) ([]int64, error) {
	if err := f.participantsErrs[killmailId]; err != nil {
		return nil, err
	}
	return f.participants[killmailId], nil
}

func (f *fakeLedgerStore) UpdateKillmailPoints(killmailId int64, points int64) error {
	for _, km := range f.killmails {
		if km.KillmailId == killmailId {
			km.Points = points
			return nil
		}
	}
	return fmt.Errorf("killmail '%d' not found", killmailId)
}

func (f *fakeLedgerStore) MarkKillmailAccounted(killmailId int64) error {
	for _, km := range f.killmails {
		if km.KillmailId == killmailId {
			km.Accounted = true
			return nil
		}
	}
	return fmt.Errorf("killmail '%d' not found", killmailId)
}

func (f *fakeLedgerStore) CreditUserBalance(userId int64, amount decimal.Decimal) error {
	if err := f.creditErrs[userId]; err != nil {
		return err
	}
	f.balances[userId] = f.balances[userId].Add(amount)
	return nil
}

func (f *fakeLedgerStore) ListUsersWithRefreshToken() ([]*storage.User, error) {
	return f.users, nil
}

func (f *fakeLedgerStore) UpdateRefreshToken(userId int64, refreshToken string) error {
	f.tokens[userId] = refreshToken
	return nil
}

func (f *fakeLedgerStore) CreatePayoutRequest(userId int64) (*storage.PayoutRequest, error) {
	request := &storage.PayoutRequest{
		UserId: userId,
		Amount: f.balances[userId],
		Status: "pending",
	}
	f.balances[userId] = decimal.Zero
	return request, nil
}

func (f *fakeLedgerStore) GetAdmUser(userId int64) (*storage.AdmUser, error) {
	return f.admUsers[userId], nil
}

func (f *fakeLedgerStore) TouchAdmUser(userId int64) error {
	now := time.Now()
	f.admUsers[userId] = &storage.AdmUser{UserId: userId, LastUpdated: &now}
	f.touched = append(f.touched, userId)
	return nil
}

func (f *fakeLedgerStore) GetAdmSystem(solarSystemId int64) (*storage.AdmSystem, error) {
	return f.admSystems[solarSystemId], nil
}

func (f *fakeLedgerStore) UpsertAdmSystem(solarSystemId int64, name string, admLevel float64) error {
	f.admSystems[solarSystemId] = &storage.AdmSystem{
		SolarSystemId: solarSystemId,
		Name:          name,
		AdmLevel:      admLevel,
		UpdatedAt:     time.Now(),
	}
	return nil
}

func (f *fakeLedgerStore) GetSettingsByPath(path string) ([]settings.Setting, error) {
	return nil, nil
}

type fakeTokenClient struct {
	tokens map[string]*sso.TokenResponse
}

func (f *fakeTokenClient) RefreshAccessToken(refreshToken string) (*sso.TokenResponse, error) {
	token, ok := f.tokens[refreshToken]
	if !ok {
		return nil, fmt.Errorf("invalid refresh token")
	}
	return token, nil
}

type fakeWalletClient struct {
	journals map[int64][]types.WalletEntry
	errs     map[int64]error
}

func (f *fakeWalletClient) GetWalletJournal(characterId int64, accessToken string) ([]types.WalletEntry, error) {
	if err := f.errs[characterId]; err != nil {
		return nil, err
	}
	return f.journals[characterId], nil
}

type fakeSovereigntyClient struct {
	structures []types.SovStructure
	names      []types.UniverseName
	sovErr     error
	namesErr   error
}

func (f *fakeSovereigntyClient) GetSovereigntyStructures() ([]types.SovStructure, error) {
	if f.sovErr != nil {
		return nil, f.sovErr
	}
	return f.structures, nil
}

func (f *fakeSovereigntyClient) GetNames(ids []int64) ([]types.UniverseName, error) {
	if f.namesErr != nil {
		return nil, f.namesErr
	}
	return f.names, nil
}
