package links

import (
	"errors"
	"testing"
)

type MockChecker struct {
	codes map[string]bool
	calls int
	// takenUntil makes the first n random lookups collide.
	takenUntil int
}

func (m *MockChecker) ExistsByShortCode(code string) (bool, error) {
	m.calls++
	if code == "error" {
		return false, errors.New("db error")
	}
	if m.calls <= m.takenUntil {
		return true, nil
	}
	return m.codes[code], nil
}

func TestGenerateShortCode(t *testing.T) {
	checker := &MockChecker{
		codes: map[string]bool{
			"taken": true,
		},
	}

	code, err := GenerateShortCode("custom", checker)
	if err != nil {
		t.Errorf("Unexpected error: %v", err)
	}
	if code != "custom" {
		t.Errorf("Expected custom, got %s", code)
	}

	_, err = GenerateShortCode("taken", checker)
	if !errors.Is(err, ErrShortCodeTaken) {
		t.Errorf("Expected ErrShortCodeTaken, got %v", err)
	}

	_, err = GenerateShortCode("error", checker)
	if err == nil || err.Error() != "db error" {
		t.Errorf("Expected db error, got %v", err)
	}

	code, err = GenerateShortCode("", checker)
	if err != nil {
		t.Errorf("Unexpected error: %v", err)
	}
	if len(code) != shortCodeLength {
		t.Errorf("Expected length %d, got %d", shortCodeLength, len(code))
	}
}

func TestGenerateShortCode_Collisions(t *testing.T) {
	checker := &MockChecker{codes: map[string]bool{}, takenUntil: shortCodeRetry}

	code, err := GenerateShortCode("", checker)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(code) != shortCodeLength+1 {
		t.Errorf("Expected grown length %d, got %d", shortCodeLength+1, len(code))
	}

	checker = &MockChecker{codes: map[string]bool{}, takenUntil: shortCodeRetry + 1}
	if _, err := GenerateShortCode("", checker); !errors.Is(err, ErrShortCodeExhaust) {
		t.Errorf("Expected ErrShortCodeExhaust, got %v", err)
	}
}

func TestIsValidShortCode(t *testing.T) {
	tests := []struct {
		code string
		want bool
	}{
		{"abc", true},
		{"Shop2024", true},
		{"ab", false},
		{"abcdefghijklm", false},
		{"has-dash", false},
		{"API", false},
		{"metrics", false},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			if got := isValidShortCode(tt.code); got != tt.want {
				t.Errorf("isValidShortCode(%q) = %v, want %v", tt.code, got, tt.want)
			}
		})
	}
}
