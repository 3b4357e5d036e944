package validation

import (
	"strings"
	"testing"
)

func TestNormalizeUsername(t *testing.T) {
	t.Parallel()

	got := NormalizeUsername("  Alice123 ")
	if got != "alice123" {
		t.Fatalf("unexpected normalized username: %q", got)
	}
}

func TestValidateUsername(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		username string
		wantErr  bool
	}{
		{"valid", "alice123", false},
		{"minimum length", "abc", false},
		{"too short", "ab", true},
		{"empty", "", true},
		{"too long", strings.Repeat("a", 65), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateUsername(tt.username)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateUsername(%q) error = %v, wantErr %v", tt.username, err, tt.wantErr)
			}
		})
	}
}

func TestValidateEmail(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		email   string
		wantErr bool
	}{
		{"valid", "alice123@example.com", false},
		{"missing at", "alice.example.com", true},
		{"empty", "", true},
		{"too long", strings.Repeat("a", 250) + "@x.com", true},
		{"display name form", "Alice <alice123@example.com>", true},
		{"angle brackets only", "<alice123@example.com>", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEmail(tt.email)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateEmail(%q) error = %v, wantErr %v", tt.email, err, tt.wantErr)
			}
		})
	}
}

func TestValidatePassword(t *testing.T) {
	t.Parallel()

	if err := ValidatePassword("secret"); err != nil {
		t.Fatalf("expected %q to be accepted: %v", "secret", err)
	}
	if err := ValidatePassword("abcd"); err == nil {
		t.Fatalf("expected error for short password")
	}
	if err := ValidatePassword(strings.Repeat("x", 73)); err == nil {
		t.Fatalf("expected error for password above bcrypt limit")
	}
}
