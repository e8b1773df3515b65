package core

import (
	"errors"
	"math"
	"testing"
)

// TestNewIDUniqueness tests that NewID generates unique identifiers
func TestNewIDUniqueness(t *testing.T) {
	const numIDs = 10000

	ids := make(map[ID]bool, numIDs)
	for i := 0; i < numIDs; i++ {
		id := NewID()
		if id.IsEmpty() {
			t.Errorf("Generated empty ID at iteration %d", i)
		}
		if ids[id] {
			t.Errorf("Generated duplicate ID: %s", id)
		}
		ids[id] = true
	}

	if len(ids) != numIDs {
		t.Errorf("Expected %d unique IDs, got %d", numIDs, len(ids))
	}
}

// TestIDIsEmpty tests ID emptiness check
func TestIDIsEmpty(t *testing.T) {
	if !ID("").IsEmpty() {
		t.Error("Expected empty ID to be empty")
	}
	if ID("not-empty").IsEmpty() {
		t.Error("Expected non-empty ID to not be empty")
	}
}

func TestParseID(t *testing.T) {
	fresh := NewID()
	tests := []struct {
		input    string
		hasError bool
	}{
		{fresh.String(), false},
		{"  " + fresh.String() + " ", false},
		{"", true},
		{"   ", true},
		{"not-a-uuid", true},
	}

	for _, tt := range tests {
		got, err := ParseID(tt.input)
		if tt.hasError {
			if err == nil {
				t.Errorf("ParseID(%q) expected error", tt.input)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseID(%q) unexpected error: %v", tt.input, err)
			continue
		}
		if got != fresh {
			t.Errorf("ParseID(%q) = %q, want %q", tt.input, got, fresh)
		}
	}
}

func TestHasherDistinguishesNaNAndZero(t *testing.T) {
	a := NewHasher().Float(math.NaN()).Sum()
	b := NewHasher().Float(0).Sum()
	c := NewHasher().Float(math.NaN()).Sum()

	if a.Equals(b) {
		t.Fatal("NaN and zero must hash differently")
	}
	if !a.Equals(c) {
		t.Fatal("identical inputs must hash identically")
	}
}

func TestHasherStringsAreLengthPrefixed(t *testing.T) {
	a := NewHasher().String("ab").String("c").Sum()
	b := NewHasher().String("a").String("bc").Sum()
	if a.Equals(b) {
		t.Fatal("concatenation ambiguity: distinct string sequences hashed equal")
	}
}

func TestErrorTaxonomy(t *testing.T) {
	err := NewInsufficientDataError("WT", 1, 2, "t-test")
	if !errors.Is(err, ErrInsufficientData) {
		t.Fatalf("expected ErrInsufficientData, got %v", err)
	}
	if !IsComparisonError(err) {
		t.Fatal("insufficient data should be a comparison error")
	}
	if !IsNotFoundError(NewColumnNotFoundError("Area")) {
		t.Fatal("column errors should be not-found errors")
	}
	if IsComparisonError(NewDependencyUnavailableError("studentized range", "Tukey HSD")) {
		t.Fatal("dependency errors are not input errors")
	}
}
