package types

import "math"

// Killmail is one destruction event as delivered by the zKillboard killstream.
// Values are immutable once decoded.
type Killmail struct {
	KillmailID    int64      `json:"killmail_id"`
	KillmailTime  string     `json:"killmail_time"`
	SolarSystemID int64      `json:"solar_system_id"`
	Victim        Victim     `json:"victim"`
	Attackers     []Attacker `json:"attackers"`
	Zkb           Zkb        `json:"zkb"`
}

// Attacker's AllianceID is 0 when the attacker flies without an alliance.
type Attacker struct {
	CharacterID   int64 `json:"character_id"`
	CorporationID int64 `json:"corporation_id"`
	AllianceID    int64 `json:"alliance_id"`
	FinalBlow     bool  `json:"final_blow"`
	DamageDone    int64 `json:"damage_done"`
	ShipTypeID    int64 `json:"ship_type_id"`
}

type Victim struct {
	CharacterID   int64 `json:"character_id"`
	CorporationID int64 `json:"corporation_id"`
	AllianceID    int64 `json:"alliance_id"`
	ShipTypeID    int64 `json:"ship_type_id"`
	DamageTaken   int64 `json:"damage_taken"`
}

type Zkb struct {
	LocationID     int64   `json:"locationID"`
	Hash           string  `json:"hash"`
	FittedValue    float64 `json:"fittedValue"`
	DroppedValue   float64 `json:"droppedValue"`
	DestroyedValue float64 `json:"destroyedValue"`
	TotalValue     float64 `json:"totalValue"`
	Points         int64   `json:"points"`
	Npc            bool    `json:"npc"`
	Solo           bool    `json:"solo"`
}

// SmoothedPoints compresses raw killmail points so that a handful of very
// expensive kills cannot dominate the pool.
func SmoothedPoints(raw int64) int64 {
	if raw <= 0 {
		return 0
	}
	return int64(math.Round(math.Sqrt(float64(raw)) * 3))
}

// MemberAttackers returns the attackers belonging to the given alliance that
// have a resolvable character id. NPC entries on a killmail have no character id.
func (k *Killmail) MemberAttackers(allianceID int64) []Attacker {
	members := make([]Attacker, 0, len(k.Attackers))
	for _, a := range k.Attackers {
		if a.AllianceID == allianceID && a.CharacterID != 0 {
			members = append(members, a)
		}
	}
	return members
}

// HasMemberAttacker reports whether at least one attacker belongs to the alliance.
func (k *Killmail) HasMemberAttacker(allianceID int64) bool {
	for _, a := range k.Attackers {
		if a.AllianceID == allianceID {
			return true
		}
	}
	return false
}
