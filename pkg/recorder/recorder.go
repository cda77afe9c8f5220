package recorder

import (
	"errors"
	"fmt"

	"github.com/bravecollective/bravebucks/pkg/classifier"
	"github.com/bravecollective/bravebucks/pkg/clients/esi"
	"github.com/bravecollective/bravebucks/pkg/storage"
	"github.com/bravecollective/bravebucks/pkg/types"
	"go.uber.org/zap"
)

type RecordResult int

const (
	RecordResult_Recorded RecordResult = iota
	RecordResult_AlreadyRecorded
)

// IdentityClient resolves character, corporation and alliance names for the
// ledger entry. Backed by ESI in production.
type IdentityClient interface {
	GetCharacter(characterId int64) (*esi.CharacterInfo, error)
	GetCorporation(corporationId int64) (*esi.CorporationInfo, error)
	GetAlliance(allianceId int64) (*esi.AllianceInfo, error)
}

type KillRecorder struct {
	store      storage.LedgerStore
	identity   IdentityClient
	allianceId int64
	logger     *zap.Logger
}

func NewKillRecorder(store storage.LedgerStore, identity IdentityClient, allianceId int64, l *zap.Logger) *KillRecorder {
	return &KillRecorder{
		store:      store,
		identity:   identity,
		allianceId: allianceId,
		logger:     l,
	}
}

// Record resolves the victim's identity and writes the ledger entry plus its
// participant links in one idempotent insert. Participants are the alliance
// members on the killmail; everyone else attacked but does not get credited.
// A killmail id that was already recorded is a no-op, not an error.
func (kr *KillRecorder) Record(km *types.Killmail, classification classifier.Classification) (RecordResult, error) {
	participants := km.MemberAttackers(kr.allianceId)
	participantIds := make([]int64, 0, len(participants))
	for _, p := range participants {
		participantIds = append(participantIds, p.CharacterID)
	}

	victimName := ""
	if km.Victim.CharacterID != 0 {
		character, err := kr.identity.GetCharacter(km.Victim.CharacterID)
		if err != nil {
			return 0, fmt.Errorf("failed to resolve victim character '%d': %w", km.Victim.CharacterID, err)
		}
		victimName = character.Name
	}

	corporation, err := kr.identity.GetCorporation(km.Victim.CorporationID)
	if err != nil {
		return 0, fmt.Errorf("failed to resolve victim corporation '%d': %w", km.Victim.CorporationID, err)
	}

	var victimAlliance *string
	if km.Victim.AllianceID != 0 {
		alliance, err := kr.identity.GetAlliance(km.Victim.AllianceID)
		if err != nil {
			return 0, fmt.Errorf("failed to resolve victim alliance '%d': %w", km.Victim.AllianceID, err)
		}
		victimAlliance = &alliance.Name
	}

	entry := &storage.Killmail{
		KillmailId:        km.KillmailID,
		VictimName:        victimName,
		VictimAlliance:    victimAlliance,
		VictimCorporation: corporation.Name,
		ShipTypeId:        km.Victim.ShipTypeID,
		Points:            km.Zkb.Points,
		Defensive:         classification == classifier.Classification_Defensive,
	}

	if err := kr.store.InsertKillmailWithParticipants(entry, participantIds); err != nil {
		if errors.Is(err, storage.ErrAlreadyRecorded) {
			kr.logger.Sugar().Debugw("Killmail already recorded",
				zap.Int64("killmailId", km.KillmailID),
			)
			return RecordResult_AlreadyRecorded, nil
		}
		return 0, err
	}

	kr.logger.Sugar().Infow("Killmail recorded",
		zap.Int64("killmailId", km.KillmailID),
		zap.String("classification", classification.String()),
		zap.Int("participants", len(participantIds)),
	)
	return RecordResult_Recorded, nil
}
