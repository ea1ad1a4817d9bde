package config

import (
	"testing"
	"time"
)

func TestParseStringSlice(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{in: "", want: []string{}},
		{in: "http://a", want: []string{"http://a"}},
		{in: "http://a, http://b,,", want: []string{"http://a", "http://b"}},
	}

	for _, tc := range tests {
		got := parseStringSlice(tc.in)
		if len(got) != len(tc.want) {
			t.Fatalf("parseStringSlice(%q) = %v, want %v", tc.in, got, tc.want)
		}
		for i := range got {
			if got[i] != tc.want[i] {
				t.Fatalf("parseStringSlice(%q)[%d] = %q, want %q", tc.in, i, got[i], tc.want[i])
			}
		}
	}
}

func TestLoadReadsModerationDefaults(t *testing.T) {
	t.Setenv("DEFAULT_FAIL_REPORT_THRESHOLD", "5")
	t.Setenv("DEFAULT_COMMENT_REPORT_THRESHOLD", "not-a-number")
	t.Setenv("JWT_ACCESS_TTL", "2h")

	cfg := Load()

	if cfg.DefaultFailReportThreshold != 5 {
		t.Fatalf("expected fail threshold 5, got %d", cfg.DefaultFailReportThreshold)
	}
	if cfg.DefaultCommentReportThreshold != 3 {
		t.Fatalf("expected comment threshold fallback 3, got %d", cfg.DefaultCommentReportThreshold)
	}
	if cfg.JWTAccessTTL != 2*time.Hour {
		t.Fatalf("expected 2h access ttl, got %s", cfg.JWTAccessTTL)
	}
}
