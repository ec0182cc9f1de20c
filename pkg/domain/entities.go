// Package domain defines the RDBES sampling-hierarchy entities, derived
// relations, and precondition primitives used by numatage.
package domain

// Level identifies a table of the RDBES sampling hierarchy. Values are the
// RDBES table codes.
type Level string

// Supported hierarchy levels, ordered from design down to biological variable.
const (
	// LevelSD identifies the sampling design (scheme) level.
	LevelSD Level = "SD"
	// LevelOS identifies the onshore event level.
	LevelOS Level = "OS"
	// LevelFT identifies the fishing trip level.
	LevelFT Level = "FT"
	// LevelLE identifies the landing event level.
	LevelLE Level = "LE"
	// LevelFO identifies the fishing operation (haul) level.
	LevelFO Level = "FO"
	// LevelSS identifies the species selection level.
	LevelSS Level = "SS"
	// LevelSA identifies the sample level.
	LevelSA Level = "SA"
	// LevelBV identifies the biological variable level.
	LevelBV Level = "BV"
)

var knownLevels = map[Level]struct{}{
	LevelSD: {}, LevelOS: {}, LevelFT: {}, LevelLE: {},
	LevelFO: {}, LevelSS: {}, LevelSA: {}, LevelBV: {},
}

// Valid reports whether l names a known hierarchy level.
func (l Level) Valid() bool {
	_, ok := knownLevels[l]
	return ok
}

// IDColumn returns the RDBES identifier column name for the level, e.g. "FOid".
func (l Level) IDColumn() string {
	return string(l) + "id"
}

// Flag values and sentinels shared across RDBES tables.
const (
	// FlagYes marks a stratified or clustered unit.
	FlagYes = "Y"
	// FlagNo marks an unstratified or unclustered unit.
	FlagNo = "N"
	// Unstratified is the stratum name carried by unstratified units.
	Unstratified = "U"
	// SelectionCensus is the species selection method enumerating the full list.
	SelectionCensus = "CENSUS"
	// TraitAge is the biological variable type holding an age reading.
	TraitAge = "Age"
	// MissingAge marks an age that was not recorded.
	MissingAge = -1
)

// BiologicalVariable is one measured trait of one sampled fish (RDBES BV).
type BiologicalVariable struct {
	SAid           int64  `json:"SAid"`
	Type           string `json:"BVtype"`
	Stratification string `json:"BVstratification"`
	// Value is empty when the measurement is missing.
	Value string `json:"BVvalue"`
}

// Sample is one sampled unit below a species selection (RDBES SA).
type Sample struct {
	SSid            int64     `json:"SSid"`
	SAid            int64     `json:"SAid"`
	InclusionProb   NullFloat `json:"SAinclusionProb"`
	Stratification  string    `json:"SAstratification"`
	SpeciesCode     string    `json:"SAspeciesCode"`
	TotalWeightLive NullFloat `json:"SAtotalWeightLive"`
}

// SpeciesSelection is one species selection unit below a haul (RDBES SS).
type SpeciesSelection struct {
	FOid            int64  `json:"FOid"`
	SSid            int64  `json:"SSid"`
	SelectionMethod string `json:"SSselectionMethod"`
}

// HierarchyUnit is one row of a generic sampling-hierarchy table such as FO or LE.
type HierarchyUnit struct {
	ID             int64  `json:"id"`
	Stratification string `json:"stratification"`
	StratumName    string `json:"stratumName"`
	Clustering     string `json:"clustering"`
	// Parents maps ancestor levels to the ancestor identifier of this unit.
	Parents map[Level]int64 `json:"parents,omitempty"`
}

// ParentID returns the identifier of the unit's ancestor at level.
func (u HierarchyUnit) ParentID(level Level) (int64, bool) {
	id, ok := u.Parents[level]
	return id, ok
}

// HierarchyTable groups the units of a single hierarchy level.
type HierarchyTable struct {
	Level Level           `json:"level"`
	Units []HierarchyUnit `json:"units"`
}

// Landing is one commercial landings record (RDBES CL) assigned to a stratum.
type Landing struct {
	Stratum        string    `json:"stratum"`
	OfficialWeight NullFloat `json:"CLofficialWeight"`
}
