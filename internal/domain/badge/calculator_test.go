package badge

import "testing"

func TestCalculate(t *testing.T) {
	fiveFails := &Definition{ID: "fail-5", RequirementType: RequirementFailCount, RequirementValue: 5}

	cases := []struct {
		name         string
		def          *Definition
		count        int
		wantCurrent  int
		wantRatio    float64
		wantUnlocked bool
	}{
		{"no activity", fiveFails, 0, 0, 0, false},
		{"four of five", fiveFails, 4, 4, 0.8, false},
		{"exactly five", fiveFails, 5, 5, 1, true},
		{"capped above requirement", fiveFails, 12, 5, 1, true},
		{"zero requirement", &Definition{ID: "welcome", RequirementType: RequirementFailCount}, 3, 0, 0, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := Calculate(tc.def, tc.count)
			if p.Current != tc.wantCurrent || p.Ratio != tc.wantRatio || p.Unlocked != tc.wantUnlocked {
				t.Fatalf("got current=%d ratio=%v unlocked=%v", p.Current, p.Ratio, p.Unlocked)
			}
			if p.Required != tc.def.RequirementValue {
				t.Fatalf("required=%d, want %d", p.Required, tc.def.RequirementValue)
			}
		})
	}
}

func TestCalculateIsMonotone(t *testing.T) {
	def := &Definition{ID: "fail-25", RequirementType: RequirementFailCount, RequirementValue: 25}
	prev := Calculate(def, 0)
	for n := 1; n <= 40; n++ {
		p := Calculate(def, n)
		if p.Current < prev.Current || p.Ratio < prev.Ratio {
			t.Fatalf("progress decreased at %d", n)
		}
		if prev.Unlocked && !p.Unlocked {
			t.Fatalf("unlocked reverted at %d", n)
		}
		prev = p
	}
}

func TestIsUpcoming(t *testing.T) {
	cases := []struct {
		name string
		p    Progress
		want bool
	}{
		{"unlocked", Progress{Current: 5, Required: 5, Unlocked: true}, false},
		{"started", Progress{Current: 1, Required: 25}, true},
		{"not started, within window", Progress{Current: 0, Required: 1}, true},
		{"not started, far away", Progress{Current: 0, Required: 50}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsUpcoming(tc.p, 3); got != tc.want {
				t.Fatalf("IsUpcoming=%v, want %v", got, tc.want)
			}
		})
	}
}

func TestNewCatalog(t *testing.T) {
	cat, err := NewCatalog([]*Definition{
		{ID: "b", RequirementType: RequirementCommentCount, RequirementValue: 1, SortOrder: 20},
		{ID: "a", RequirementType: RequirementFailCount, RequirementValue: 1, SortOrder: 10},
		{ID: "c", RequirementType: RequirementFailCount, RequirementValue: 5, SortOrder: 20},
	})
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	ids := ""
	for _, d := range cat.All() {
		ids += d.ID
	}
	if ids != "abc" {
		t.Fatalf("unexpected order %q", ids)
	}
	if len(cat.RequirementTypes()) != 2 {
		t.Fatalf("expected 2 requirement types, got %v", cat.RequirementTypes())
	}

	if _, err := NewCatalog([]*Definition{{ID: "x", RequirementType: "likes", RequirementValue: 1}}); err == nil {
		t.Fatal("expected unknown requirement type to be rejected")
	}
	if _, err := NewCatalog([]*Definition{
		{ID: "x", RequirementType: RequirementFailCount, RequirementValue: 1},
		{ID: "x", RequirementType: RequirementFailCount, RequirementValue: 2},
	}); err == nil {
		t.Fatal("expected duplicate id to be rejected")
	}
}
