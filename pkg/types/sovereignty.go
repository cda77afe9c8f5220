package types

// SovStructure is one entry of the ESI sovereignty structures list. The
// vulnerability occupancy level is the ADM of the structure's solar system.
type SovStructure struct {
	AllianceID                  int64   `json:"alliance_id"`
	SolarSystemID               int64   `json:"solar_system_id"`
	StructureID                 int64   `json:"structure_id"`
	StructureTypeID             int64   `json:"structure_type_id"`
	VulnerabilityOccupancyLevel float64 `json:"vulnerability_occupancy_level"`
	VulnerableStartTime         string  `json:"vulnerable_start_time"`
	VulnerableEndTime           string  `json:"vulnerable_end_time"`
}

// UniverseName is one entry of the ESI POST /universe/names response.
type UniverseName struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
}
