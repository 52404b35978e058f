package version

import (
	"strings"
	"testing"
)

func TestGetVersionDefault(t *testing.T) {
	if GetVersion() == "" {
		t.Error("GetVersion() must not be empty")
	}
}

func TestStringContainsAllFields(t *testing.T) {
	s := String()
	for _, field := range []string{"version=", "commit=", "date="} {
		if !strings.Contains(s, field) {
			t.Errorf("String() = %q, missing %q", s, field)
		}
	}
}
