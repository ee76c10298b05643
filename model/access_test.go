package model_test

import (
	"regexp"
	"testing"

	"github.com/billingcat/notes/model"
)

func TestReservedFlag(t *testing.T) {
	tests := []struct {
		filter *string
		want   bool
	}{
		{strp("101"), false},
		{strp("102"), true},
		{strp("101 "), true},
		{strp(""), true},
		{nil, true},
	}
	for _, tt := range tests {
		if got := model.ReservedFlag(tt.filter); got != tt.want {
			name := "<nil>"
			if tt.filter != nil {
				name = *tt.filter
			}
			t.Errorf("ReservedFlag(%q) = %v, want %v", name, got, tt.want)
		}
	}
}

func TestAccessPolicy_Flag(t *testing.T) {
	tests := []struct {
		name   string
		policy model.AccessPolicy
		filter *string
		uid    int64
		want   bool
	}{
		{"reserved ignores session", model.PolicyReserved, strp("101"), 7, false},
		{"reserved other id", model.PolicyReserved, strp("7"), 7, true},
		{"session own id", model.PolicySession, strp("7"), 7, false},
		{"session foreign id", model.PolicySession, strp("101"), 7, true},
		{"session default id", model.PolicySession, strp("101"), 101, false},
		{"session absent", model.PolicySession, nil, 101, true},
		{"empty policy is reserved", model.AccessPolicy(""), strp("101"), 7, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.policy.Flag(tt.filter, tt.uid); got != tt.want {
				t.Errorf("Flag() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDecide(t *testing.T) {
	if got := model.Decide(true); got != model.ViewDenied {
		t.Errorf("Decide(true) = %v, want denied", got)
	}
	if got := model.Decide(false); got != model.ViewAuthorized {
		t.Errorf("Decide(false) = %v, want authorized", got)
	}
	if model.ViewDenied.String() != "denied" || model.ViewAuthorized.String() != "authorized" {
		t.Error("unexpected ViewState names")
	}
}

func TestNewIncident(t *testing.T) {
	hashRE := regexp.MustCompile(`^SHA-256:[0-9a-f]{64}$`)
	seen := map[string]bool{}
	for i := 0; i < 10; i++ {
		inc, err := model.NewIncident()
		if err != nil {
			t.Fatalf("NewIncident failed: %v", err)
		}
		if !hashRE.MatchString(inc.Hash) {
			t.Errorf("Hash = %q does not match %s", inc.Hash, hashRE)
		}
		if inc.LogID < 0 || inc.LogID >= 999999 {
			t.Errorf("LogID = %d out of range", inc.LogID)
		}
		if inc.Variant < 0 || inc.Variant >= model.DeniedVariants {
			t.Errorf("Variant = %d out of range", inc.Variant)
		}
		if inc.At.IsZero() {
			t.Error("At should be set")
		}
		seen[inc.Hash] = true
	}
	if len(seen) < 2 {
		t.Error("hashes should be random")
	}
}
