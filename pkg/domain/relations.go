package domain

// AgeCount is one cell of a dense per-unit age histogram.
type AgeCount struct {
	UnitID int64 `json:"id"`
	Age    int   `json:"age"`
	Count  int   `json:"count"`
}

// AgeTotal is an expanded or aggregated number at age for one unit.
type AgeTotal struct {
	UnitID int64     `json:"id"`
	Age    int       `json:"age"`
	Total  NullFloat `json:"total"`
}

// UnitWeight is the total weight attributed to one unit.
type UnitWeight struct {
	UnitID int64     `json:"id"`
	Weight NullFloat `json:"weight"`
}

// StratumRatio is the number-at-age per unit weight within one stratum of a
// parent unit.
type StratumRatio struct {
	Parent   Level     `json:"parent"`
	ParentID int64     `json:"parentId"`
	Stratum  string    `json:"stratum"`
	Age      int       `json:"age"`
	Ratio    NullFloat `json:"ratio"`
}

// StratumTotal is the estimated number at age landed within one stratum of a
// sampling scheme.
type StratumTotal struct {
	SDid     int64     `json:"SDid"`
	Stratum  string    `json:"stratum"`
	Age      int       `json:"age"`
	NumAtAge NullFloat `json:"numAtAge"`
}

// AgeEstimate is one row of the grand total number at age.
type AgeEstimate struct {
	Age      int       `json:"age"`
	NumAtAge NullFloat `json:"numAtAge"`
}
