package types

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func Test_SmoothedPoints(t *testing.T) {
	t.Run("Should compress raw points on a square root curve", func(t *testing.T) {
		assert.Equal(t, int64(3), SmoothedPoints(1))
		assert.Equal(t, int64(6), SmoothedPoints(4))
		assert.Equal(t, int64(12), SmoothedPoints(16))
		assert.Equal(t, int64(30), SmoothedPoints(100))
	})

	t.Run("Should round to the nearest integer", func(t *testing.T) {
		// sqrt(2) * 3 = 4.24, sqrt(3) * 3 = 5.196
		assert.Equal(t, int64(4), SmoothedPoints(2))
		assert.Equal(t, int64(5), SmoothedPoints(3))
	})

	t.Run("Should clamp non-positive points to zero", func(t *testing.T) {
		assert.Equal(t, int64(0), SmoothedPoints(0))
		assert.Equal(t, int64(0), SmoothedPoints(-5))
	})
}

func Test_MemberAttackers(t *testing.T) {
	km := &Killmail{
		Attackers: []Attacker{
			{CharacterID: 1, AllianceID: 99000006},
			{CharacterID: 2, AllianceID: 77000001},
			{CharacterID: 0, AllianceID: 99000006},
			{CharacterID: 3, AllianceID: 99000006},
		},
	}

	t.Run("Should keep alliance members with a character id", func(t *testing.T) {
		members := km.MemberAttackers(99000006)
		assert.Len(t, members, 2)
		assert.Equal(t, int64(1), members[0].CharacterID)
		assert.Equal(t, int64(3), members[1].CharacterID)
	})

	t.Run("Should report member presence including NPC structures", func(t *testing.T) {
		assert.True(t, km.HasMemberAttacker(99000006))
		assert.False(t, km.HasMemberAttacker(12345))
	})
}

func Test_KillmailDecoding(t *testing.T) {
	t.Run("Should decode a killstream payload", func(t *testing.T) {
		payload := `{
			"killmail_id": 4001,
			"solar_system_id": 30000001,
			"victim": {"character_id": 500, "corporation_id": 600, "alliance_id": 700, "ship_type_id": 587},
			"attackers": [{"character_id": 1, "alliance_id": 99000006, "final_blow": true}],
			"zkb": {"hash": "abc123", "totalValue": 10000000.5, "points": 16}
		}`

		km := &Killmail{}
		err := json.Unmarshal([]byte(payload), km)
		assert.Nil(t, err)
		assert.Equal(t, int64(4001), km.KillmailID)
		assert.Equal(t, int64(587), km.Victim.ShipTypeID)
		assert.Equal(t, int64(16), km.Zkb.Points)
		assert.True(t, km.Attackers[0].FinalBlow)
	})
}

func Test_IsBountyIncome(t *testing.T) {
	now := time.Now()

	t.Run("Should match bounty entries with a territory newer than the cursor", func(t *testing.T) {
		entry := &WalletEntry{RefType: RefType_BountyPrizes, ContextID: 30000001, Date: now}
		assert.True(t, entry.IsBountyIncome(now.Add(-time.Hour)))
	})

	t.Run("Should reject other ref types", func(t *testing.T) {
		entry := &WalletEntry{RefType: "player_donation", ContextID: 30000001, Date: now}
		assert.False(t, entry.IsBountyIncome(now.Add(-time.Hour)))
	})

	t.Run("Should reject entries without a territory", func(t *testing.T) {
		entry := &WalletEntry{RefType: RefType_BountyPrizes, Date: now}
		assert.False(t, entry.IsBountyIncome(now.Add(-time.Hour)))
	})

	t.Run("Should reject entries at or before the cursor", func(t *testing.T) {
		entry := &WalletEntry{RefType: RefType_BountyPrizes, ContextID: 30000001, Date: now}
		assert.False(t, entry.IsBountyIncome(now))
		assert.False(t, entry.IsBountyIncome(now.Add(time.Hour)))
	})
}
