package utils

import (
	"strings"
	"testing"
)

func TestGenerateReferralCodeFormat(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		code, err := GenerateReferralCode()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.HasPrefix(code, "FOX-") {
			t.Fatalf("expected FOX- prefix, got %s", code)
		}
		suffix := strings.TrimPrefix(code, "FOX-")
		if len(suffix) != 6 {
			t.Fatalf("expected 6-character suffix, got %q", suffix)
		}
		for _, r := range suffix {
			if !((r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')) {
				t.Fatalf("unexpected character %q in code %s", r, code)
			}
		}
		seen[code] = true
	}
	// 100 draws from a 32^6 space colliding down to a single value would
	// mean the generator is broken.
	if len(seen) < 2 {
		t.Fatal("generator produced no variety")
	}
}
