package classifier

import (
	"testing"

	"github.com/bravecollective/bravebucks/pkg/policy"
	"github.com/bravecollective/bravebucks/pkg/types"
	"github.com/stretchr/testify/assert"
)

const allianceId = int64(99000006)

func memberAttackers(n int) []types.Attacker {
	attackers := make([]types.Attacker, 0, n)
	for i := 0; i < n; i++ {
		attackers = append(attackers, types.Attacker{
			CharacterID:   int64(1000 + i),
			CorporationID: 2000,
			AllianceID:    allianceId,
		})
	}
	return attackers
}

func foreignAttackers(n int) []types.Attacker {
	attackers := make([]types.Attacker, 0, n)
	for i := 0; i < n; i++ {
		attackers = append(attackers, types.Attacker{
			CharacterID:   int64(5000 + i),
			CorporationID: 6000,
			AllianceID:    77000001,
		})
	}
	return attackers
}

func defensePolicy(systems ...int64) *policy.EligibilityPolicy {
	systemSet := make(map[int64]bool)
	for _, s := range systems {
		systemSet[s] = true
	}
	return &policy.EligibilityPolicy{
		Defense: policy.Branch{
			Enabled:      true,
			SolarSystems: systemSet,
			MaxAttackers: 10,
		},
	}
}

func Test_Classify(t *testing.T) {
	t.Run("Should ignore killmails without an alliance attacker", func(t *testing.T) {
		km := &types.Killmail{
			KillmailID:    1,
			SolarSystemID: 30000001,
			Attackers:     foreignAttackers(3),
		}
		assert.Equal(t, Classification_Ignore, Classify(km, defensePolicy(30000001), allianceId))
	})

	t.Run("Should ignore everything when both branches are disabled", func(t *testing.T) {
		km := &types.Killmail{
			KillmailID:    2,
			SolarSystemID: 30000001,
			Attackers:     memberAttackers(3),
		}
		assert.Equal(t, Classification_Ignore, Classify(km, &policy.EligibilityPolicy{}, allianceId))
	})

	t.Run("Should classify a defense-system kill as defensive", func(t *testing.T) {
		km := &types.Killmail{
			KillmailID:    3,
			SolarSystemID: 30000001,
			Victim:        types.Victim{CharacterID: 1, CorporationID: 2, AllianceID: 88000001},
			Attackers:     memberAttackers(5),
		}
		assert.Equal(t, Classification_Defensive, Classify(km, defensePolicy(30000001), allianceId))
	})

	t.Run("Should ignore a kill outside the defense systems when offense is disabled", func(t *testing.T) {
		km := &types.Killmail{
			KillmailID:    4,
			SolarSystemID: 30009999,
			Attackers:     memberAttackers(5),
		}
		assert.Equal(t, Classification_Ignore, Classify(km, defensePolicy(30000001), allianceId))
	})

	t.Run("Should ignore a kill over the attacker threshold", func(t *testing.T) {
		km := &types.Killmail{
			KillmailID:    5,
			SolarSystemID: 30000001,
			Attackers:     memberAttackers(11),
		}
		assert.Equal(t, Classification_Ignore, Classify(km, defensePolicy(30000001), allianceId))
	})

	t.Run("Should only count alliance attackers against the threshold with ignoreForeign", func(t *testing.T) {
		pol := defensePolicy(30000001)
		pol.Defense.MaxAttackers = 5
		pol.Defense.IgnoreForeign = true

		km := &types.Killmail{
			KillmailID:    6,
			SolarSystemID: 30000001,
			Attackers:     append(memberAttackers(3), foreignAttackers(20)...),
		}
		assert.Equal(t, Classification_Defensive, Classify(km, pol, allianceId))

		pol.Defense.IgnoreForeign = false
		assert.Equal(t, Classification_Ignore, Classify(km, pol, allianceId))
	})

	t.Run("Should ignore friendly fire when configured", func(t *testing.T) {
		pol := defensePolicy(30000001)
		pol.Defense.IgnoreFriendlyFire = true

		km := &types.Killmail{
			KillmailID:    7,
			SolarSystemID: 30000001,
			Victim:        types.Victim{CharacterID: 1, CorporationID: 2, AllianceID: allianceId},
			Attackers:     memberAttackers(2),
		}
		assert.Equal(t, Classification_Ignore, Classify(km, pol, allianceId))

		pol.Defense.IgnoreFriendlyFire = false
		assert.Equal(t, Classification_Defensive, Classify(km, pol, allianceId))
	})
}

func Test_ClassifyOffense(t *testing.T) {
	offensePolicy := func() *policy.EligibilityPolicy {
		return &policy.EligibilityPolicy{
			Offense: policy.OffenseBranch{
				Branch: policy.Branch{
					Enabled:      true,
					SolarSystems: map[int64]bool{30000042: true},
					MaxAttackers: 10,
				},
				TargetAlliances:    map[int64]bool{88000001: true},
				TargetCorporations: map[int64]bool{66000001: true},
			},
		}
	}

	t.Run("Should match on location alone without matchLocationAndVictim", func(t *testing.T) {
		km := &types.Killmail{
			KillmailID:    10,
			SolarSystemID: 30000042,
			Victim:        types.Victim{CharacterID: 1, CorporationID: 2, AllianceID: 12345},
			Attackers:     memberAttackers(2),
		}
		assert.Equal(t, Classification_Offensive, Classify(km, offensePolicy(), allianceId))
	})

	t.Run("Should match on victim alliance alone without matchLocationAndVictim", func(t *testing.T) {
		km := &types.Killmail{
			KillmailID:    11,
			SolarSystemID: 30009999,
			Victim:        types.Victim{CharacterID: 1, CorporationID: 2, AllianceID: 88000001},
			Attackers:     memberAttackers(2),
		}
		assert.Equal(t, Classification_Offensive, Classify(km, offensePolicy(), allianceId))
	})

	t.Run("Should match on victim corporation alone without matchLocationAndVictim", func(t *testing.T) {
		km := &types.Killmail{
			KillmailID:    12,
			SolarSystemID: 30009999,
			Victim:        types.Victim{CharacterID: 1, CorporationID: 66000001},
			Attackers:     memberAttackers(2),
		}
		assert.Equal(t, Classification_Offensive, Classify(km, offensePolicy(), allianceId))
	})

	t.Run("Should require both predicates with matchLocationAndVictim", func(t *testing.T) {
		pol := offensePolicy()
		pol.Offense.MatchLocationAndVictim = true

		locationOnly := &types.Killmail{
			KillmailID:    13,
			SolarSystemID: 30000042,
			Victim:        types.Victim{CharacterID: 1, CorporationID: 2, AllianceID: 12345},
			Attackers:     memberAttackers(2),
		}
		assert.Equal(t, Classification_Ignore, Classify(locationOnly, pol, allianceId))

		both := &types.Killmail{
			KillmailID:    14,
			SolarSystemID: 30000042,
			Victim:        types.Victim{CharacterID: 1, CorporationID: 2, AllianceID: 88000001},
			Attackers:     memberAttackers(2),
		}
		assert.Equal(t, Classification_Offensive, Classify(both, pol, allianceId))
	})

	t.Run("Should ignore kills matching neither predicate", func(t *testing.T) {
		km := &types.Killmail{
			KillmailID:    15,
			SolarSystemID: 30009999,
			Victim:        types.Victim{CharacterID: 1, CorporationID: 2, AllianceID: 12345},
			Attackers:     memberAttackers(2),
		}
		assert.Equal(t, Classification_Ignore, Classify(km, offensePolicy(), allianceId))
	})

	t.Run("Should prefer the defense branch when the system is in both sets", func(t *testing.T) {
		pol := offensePolicy()
		pol.Defense = policy.Branch{
			Enabled:      true,
			SolarSystems: map[int64]bool{30000042: true},
			MaxAttackers: 10,
		}
		km := &types.Killmail{
			KillmailID:    16,
			SolarSystemID: 30000042,
			Victim:        types.Victim{CharacterID: 1, CorporationID: 2, AllianceID: 88000001},
			Attackers:     memberAttackers(2),
		}
		assert.Equal(t, Classification_Defensive, Classify(km, pol, allianceId))
	})
}
