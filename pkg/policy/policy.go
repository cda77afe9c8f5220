package policy

import (
	"github.com/bravecollective/bravebucks/pkg/settings"
	"github.com/shopspring/decimal"
)

// Settings paths. Rule branches are stored row-per-value in the settings table
// so managers can toggle them without a redeploy.
const (
	Path_DefenseEnabled            = "defenseKills.enabled"
	Path_DefenseSolarSystems       = "defenseKills.eligibility.solarSystems"
	Path_DefenseMaxParticipants    = "defenseKills.eligibility.maxParticipants"
	Path_DefenseIgnoreForeign      = "defenseKills.eligibility.ignoreForeign"
	Path_DefenseIgnoreFriendlyFire = "defenseKills.eligibility.ignoreFriendlyFire"

	Path_OffenseEnabled                = "offenseKills.enabled"
	Path_OffenseSolarSystems           = "offenseKills.eligibility.solarSystems"
	Path_OffenseVictimAlliance         = "offenseKills.eligibility.victimAlliance"
	Path_OffenseVictimCorporation      = "offenseKills.eligibility.victimCorporation"
	Path_OffenseMaxParticipants        = "offenseKills.eligibility.maxParticipants"
	Path_OffenseMatchLocationAndVictim = "offenseKills.eligibility.matchLocationAndVictim"
	Path_OffenseIgnoreForeign          = "offenseKills.eligibility.ignoreForeign"
	Path_OffenseIgnoreFriendlyFire     = "offenseKills.eligibility.ignoreFriendlyFire"

	Path_AccountPodKills = "payouts.accountPodKills"
	Path_KillPool        = "payouts.amounts.killPool"
	Path_AdmPool         = "payouts.amounts.admPool"
	Path_KillFlat        = "payouts.amounts.killFlat"
	Path_AdmSystems      = "adm.eligibility.solarSystems"
)

// Branch is one toggleable eligibility rule set.
type Branch struct {
	Enabled            bool
	SolarSystems       map[int64]bool
	MaxAttackers       int64
	IgnoreForeign      bool
	IgnoreFriendlyFire bool
}

// OffenseBranch adds the victim-identity predicates of the offense rules.
type OffenseBranch struct {
	Branch
	TargetAlliances        map[int64]bool
	TargetCorporations     map[int64]bool
	MatchLocationAndVictim bool
}

// EligibilityPolicy is a point-in-time snapshot of the recognized rule set.
// It is loaded fresh per killmail so settings changes apply to the next event.
type EligibilityPolicy struct {
	Defense Branch
	Offense OffenseBranch
}

// PayoutSettings holds the pool amounts and exclusions read at the start of a
// payout run.
type PayoutSettings struct {
	KillPool        decimal.Decimal
	AdmPool         decimal.Decimal
	KillFlat        decimal.Decimal
	AccountPodKills bool
	AdmSystems      map[int64]bool
}

// Load assembles an EligibilityPolicy from the settings provider. Unset paths
// leave the corresponding branch disabled or the predicate empty.
func Load(p settings.Provider) (*EligibilityPolicy, error) {
	defense, err := loadBranch(p,
		Path_DefenseEnabled,
		Path_DefenseSolarSystems,
		Path_DefenseMaxParticipants,
		Path_DefenseIgnoreForeign,
		Path_DefenseIgnoreFriendlyFire,
	)
	if err != nil {
		return nil, err
	}

	offense, err := loadBranch(p,
		Path_OffenseEnabled,
		Path_OffenseSolarSystems,
		Path_OffenseMaxParticipants,
		Path_OffenseIgnoreForeign,
		Path_OffenseIgnoreFriendlyFire,
	)
	if err != nil {
		return nil, err
	}

	targetAlliances, err := settings.Int64Set(p, Path_OffenseVictimAlliance)
	if err != nil {
		return nil, err
	}
	targetCorporations, err := settings.Int64Set(p, Path_OffenseVictimCorporation)
	if err != nil {
		return nil, err
	}
	matchLocationAndVictim, err := settings.Bool(p, Path_OffenseMatchLocationAndVictim)
	if err != nil {
		return nil, err
	}

	return &EligibilityPolicy{
		Defense: defense,
		Offense: OffenseBranch{
			Branch:                 offense,
			TargetAlliances:        targetAlliances,
			TargetCorporations:     targetCorporations,
			MatchLocationAndVictim: matchLocationAndVictim,
		},
	}, nil
}

func loadBranch(p settings.Provider, enabledPath, systemsPath, maxPath, foreignPath, friendlyPath string) (Branch, error) {
	enabled, err := settings.Bool(p, enabledPath)
	if err != nil {
		return Branch{}, err
	}
	systems, err := settings.Int64Set(p, systemsPath)
	if err != nil {
		return Branch{}, err
	}
	maxAttackers, err := settings.Int64(p, maxPath, 0)
	if err != nil {
		return Branch{}, err
	}
	ignoreForeign, err := settings.Bool(p, foreignPath)
	if err != nil {
		return Branch{}, err
	}
	ignoreFriendlyFire, err := settings.Bool(p, friendlyPath)
	if err != nil {
		return Branch{}, err
	}
	return Branch{
		Enabled:            enabled,
		SolarSystems:       systems,
		MaxAttackers:       maxAttackers,
		IgnoreForeign:      ignoreForeign,
		IgnoreFriendlyFire: ignoreFriendlyFire,
	}, nil
}

// LoadPayoutSettings reads the pool configuration for a payout run.
func LoadPayoutSettings(p settings.Provider) (*PayoutSettings, error) {
	killPool, err := settings.Decimal(p, Path_KillPool)
	if err != nil {
		return nil, err
	}
	admPool, err := settings.Decimal(p, Path_AdmPool)
	if err != nil {
		return nil, err
	}
	killFlat, err := settings.Decimal(p, Path_KillFlat)
	if err != nil {
		return nil, err
	}
	accountPodKills, err := settings.Bool(p, Path_AccountPodKills)
	if err != nil {
		return nil, err
	}
	admSystems, err := settings.Int64Set(p, Path_AdmSystems)
	if err != nil {
		return nil, err
	}
	return &PayoutSettings{
		KillPool:        killPool,
		AdmPool:         admPool,
		KillFlat:        killFlat,
		AccountPodKills: accountPodKills,
		AdmSystems:      admSystems,
	}, nil
}
