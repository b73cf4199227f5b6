package config

import "testing"

func TestParseRegions(t *testing.T) {
	regions, err := parseRegions("na1:americas, kr:asia")
	if err != nil {
		t.Fatalf("parseRegions failed: %v", err)
	}
	if len(regions) != 2 {
		t.Fatalf("got %d regions, want 2", len(regions))
	}
	if regions[0].Name != "na1" || regions[0].Group != "americas" {
		t.Errorf("unexpected first region: %+v", regions[0])
	}
	if regions[1].Name != "kr" || regions[1].Group != "asia" {
		t.Errorf("unexpected second region: %+v", regions[1])
	}
}

func TestParseRegionsRejectsMalformed(t *testing.T) {
	if _, err := parseRegions("na1-americas"); err == nil {
		t.Error("expected error for entry without separator")
	}
	if _, err := parseRegions(""); err == nil {
		t.Error("expected error for empty region list")
	}
}
