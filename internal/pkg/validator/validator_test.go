package validator

import "testing"

type sample struct {
	Type     string `json:"type" validate:"required,reaction_type"`
	Kind     string `json:"kind" validate:"required,content_kind"`
	Category string `json:"category" validate:"omitempty,fail_category"`
	Limit    int    `json:"limit" validate:"gt=0"`
}

func TestValidateCustomTags(t *testing.T) {
	tests := []struct {
		name       string
		in         sample
		wantFields []string
	}{
		{name: "valid", in: sample{Type: "courage", Kind: "fail", Category: "work", Limit: 1}},
		{name: "empty category allowed", in: sample{Type: "laugh", Kind: "comment", Limit: 3}},
		{name: "bad reaction", in: sample{Type: "angry", Kind: "fail", Limit: 1}, wantFields: []string{"type"}},
		{name: "bad kind and limit", in: sample{Type: "support", Kind: "user", Limit: 0}, wantFields: []string{"kind", "limit"}},
		{name: "bad category", in: sample{Type: "empathy", Kind: "fail", Category: "space", Limit: 1}, wantFields: []string{"category"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			errs := Validate(&tc.in)
			if len(errs) != len(tc.wantFields) {
				t.Fatalf("expected %d errors, got %v", len(tc.wantFields), errs)
			}
			for _, f := range tc.wantFields {
				if _, ok := errs[f]; !ok {
					t.Fatalf("expected error for %q, got %v", f, errs)
				}
			}
		})
	}
}
