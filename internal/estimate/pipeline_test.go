package estimate

import (
	"testing"

	"numatage/pkg/domain"
)

// TestPipelineEndToEnd chains every stage over one sample, one species
// selection, and one haul in a single stratum.
func TestPipelineEndToEnd(t *testing.T) {
	bv := []domain.BiologicalVariable{ageRow(1, "2"), ageRow(1, "2"), ageRow(1, "3")}
	s := sample(10, 1, 0.5)
	s.TotalWeightLive = domain.Float(2)
	sa := []domain.Sample{s}
	ss := []domain.SpeciesSelection{{FOid: 100, SSid: 10, SelectionMethod: domain.SelectionCensus}}
	fo := domain.HierarchyTable{Level: domain.LevelFO, Units: []domain.HierarchyUnit{haul(100, 1, "S1")}}
	cl := []domain.Landing{{Stratum: "S1", OfficialWeight: domain.Float(0.5)}}

	histograms, err := TabulateAges(bv, domain.AgeBounds{Min: intPtr(2), Max: intPtr(3)})
	if err != nil {
		t.Fatalf("tabulate: %v", err)
	}
	selectionTotals, err := ExpandHorvitzThompson(sa, histograms)
	if err != nil {
		t.Fatalf("expand: %v", err)
	}
	haulTotals, err := AggregateCensusCounts(ss, selectionTotals)
	if err != nil {
		t.Fatalf("census counts: %v", err)
	}
	requireFloat(t, haulTotals[0].Total, 4)
	requireFloat(t, haulTotals[1].Total, 2)

	selectionWeights, err := TotalWeights(sa)
	if err != nil {
		t.Fatalf("weights: %v", err)
	}
	haulWeights, err := AggregateCensusWeights(ss, selectionWeights)
	if err != nil {
		t.Fatalf("census weights: %v", err)
	}
	ratios, err := EstimateStratifiedRatio(fo, domain.LevelSD, haulTotals, haulWeights)
	if err != nil {
		t.Fatalf("ratio: %v", err)
	}
	requireFloat(t, ratios[0].Ratio, 2)
	requireFloat(t, ratios[1].Ratio, 1)

	strata, err := ScaleByLandings(ratios, cl)
	if err != nil {
		t.Fatalf("scale: %v", err)
	}
	total, err := CombineTotals(strata)
	if err != nil {
		t.Fatalf("combine: %v", err)
	}
	if len(total) != 2 || total[0].Age != 2 || total[1].Age != 3 {
		t.Fatalf("unexpected ages %+v", total)
	}
	requireFloat(t, total[0].NumAtAge, 1000)
	requireFloat(t, total[1].NumAtAge, 500)
}
