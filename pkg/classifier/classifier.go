package classifier

import (
	"github.com/bravecollective/bravebucks/pkg/policy"
	"github.com/bravecollective/bravebucks/pkg/types"
)

type Classification int

const (
	Classification_Ignore Classification = iota
	Classification_Defensive
	Classification_Offensive
)

func (c Classification) String() string {
	switch c {
	case Classification_Defensive:
		return "defensive"
	case Classification_Offensive:
		return "offensive"
	default:
		return "ignore"
	}
}

// Classify decides whether a killmail counts toward the defensive or offensive
// reward pool. Evaluated once per event, short-circuiting on the first branch
// that matches the event's location.
func Classify(km *types.Killmail, pol *policy.EligibilityPolicy, allianceID int64) Classification {
	if !km.HasMemberAttacker(allianceID) {
		return Classification_Ignore
	}

	if pol.Defense.Enabled && pol.Defense.SolarSystems[km.SolarSystemID] {
		if passesBranch(km, &pol.Defense, allianceID) {
			return Classification_Defensive
		}
		return Classification_Ignore
	}

	if pol.Offense.Enabled {
		locationMatch := pol.Offense.SolarSystems[km.SolarSystemID]
		victimMatch := pol.Offense.TargetAlliances[km.Victim.AllianceID] ||
			pol.Offense.TargetCorporations[km.Victim.CorporationID]

		var matched bool
		if pol.Offense.MatchLocationAndVictim {
			matched = locationMatch && victimMatch
		} else {
			matched = locationMatch || victimMatch
		}
		if !matched {
			return Classification_Ignore
		}

		if passesBranch(km, &pol.Offense.Branch, allianceID) {
			return Classification_Offensive
		}
	}

	return Classification_Ignore
}

// passesBranch applies the attacker-count threshold and friendly-fire checks of
// one rule branch. With IgnoreForeign set, only alliance-member attackers count
// against the threshold, so a member whelping into a large neutral gang still
// qualifies.
func passesBranch(km *types.Killmail, br *policy.Branch, allianceID int64) bool {
	attackerCount := int64(len(km.Attackers))
	if br.IgnoreForeign {
		attackerCount = int64(len(km.MemberAttackers(allianceID)))
	}
	if attackerCount > br.MaxAttackers {
		return false
	}

	if km.Victim.AllianceID == allianceID && br.IgnoreFriendlyFire {
		return false
	}
	return true
}
