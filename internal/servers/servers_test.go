package servers

import "testing"

func TestRegionForDataCenter_KnownDC(t *testing.T) {
	if got := RegionForDataCenter("Materia"); got != "Oceania" {
		t.Errorf("RegionForDataCenter(Materia) = %q, want Oceania", got)
	}
	if got := RegionForDataCenter("Chaos"); got != "Europe" {
		t.Errorf("RegionForDataCenter(Chaos) = %q, want Europe", got)
	}
}

func TestRegionForDataCenter_UnknownDCIsEmpty(t *testing.T) {
	if got := RegionForDataCenter("Atlantis"); got != "" {
		t.Errorf("RegionForDataCenter(Atlantis) = %q, want empty", got)
	}
	// No fuzzy matching: lookups are case-sensitive exact matches.
	if got := RegionForDataCenter("materia"); got != "" {
		t.Errorf("RegionForDataCenter(materia) = %q, want empty", got)
	}
}

func TestWorldsForDataCenter(t *testing.T) {
	worlds := WorldsForDataCenter("Materia")
	if len(worlds) != 5 {
		t.Fatalf("Materia worlds = %d, want 5", len(worlds))
	}
	if worlds[1] != "Ravana" {
		t.Errorf("Materia worlds[1] = %q, want Ravana", worlds[1])
	}
}

func TestWorldsForDataCenter_UnknownDCIsEmpty(t *testing.T) {
	if got := WorldsForDataCenter("Atlantis"); len(got) != 0 {
		t.Errorf("WorldsForDataCenter(Atlantis) = %v, want empty", got)
	}
}

func TestWorldsForDataCenter_EmptyNameReturnsAllWorlds(t *testing.T) {
	all := WorldsForDataCenter("")
	var want int
	for _, dc := range DataCenters() {
		want += len(dc.Worlds)
	}
	if len(all) != want {
		t.Errorf("all worlds = %d, want %d", len(all), want)
	}
}

func TestDataCentersForRegion(t *testing.T) {
	eu := DataCentersForRegion("Europe")
	if len(eu) != 3 {
		t.Fatalf("Europe DCs = %d, want 3", len(eu))
	}
	names := map[string]bool{}
	for _, dc := range eu {
		names[dc.Name] = true
	}
	for _, want := range []string{"Chaos", "Light", "Shadow"} {
		if !names[want] {
			t.Errorf("Europe DCs missing %s", want)
		}
	}
}

func TestDataCentersForRegion_EmptyReturnsAll(t *testing.T) {
	if got := DataCentersForRegion(""); len(got) != len(DataCenters()) {
		t.Errorf("DataCentersForRegion(\"\") = %d entries, want %d", len(got), len(DataCenters()))
	}
}

func TestDataCentersForRegion_UnknownRegionIsEmpty(t *testing.T) {
	if got := DataCentersForRegion("Middle Earth"); len(got) != 0 {
		t.Errorf("unknown region = %v, want empty", got)
	}
}

func TestRegions_DistinctInTableOrder(t *testing.T) {
	regions := Regions()
	want := []string{"North America", "Europe", "Japan", "Oceania", "Korea", "China"}
	if len(regions) != len(want) {
		t.Fatalf("regions = %v, want %v", regions, want)
	}
	for i := range want {
		if regions[i] != want[i] {
			t.Errorf("regions[%d] = %q, want %q", i, regions[i], want[i])
		}
	}
}
