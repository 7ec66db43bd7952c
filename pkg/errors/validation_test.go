package errors

import (
	"strings"
	"testing"
)

func TestValidateColumnName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple", "gene_name", false},
		{"leading underscore", "_x", false},
		{"digits", "level2", false},

		{"empty", "", true},
		{"space", "cog class", true},
		{"leading digit", "1st", true},
		{"dash", "cog-class", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateColumnName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateColumnName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateHierarchy(t *testing.T) {
	if err := ValidateHierarchy([]string{"cog_class", "cog_category", "gene_name"}); err != nil {
		t.Errorf("valid hierarchy rejected: %v", err)
	}
	if err := ValidateHierarchy(nil); !Is(err, ErrCodeInvalidHierarchy) {
		t.Errorf("empty hierarchy: got %v", err)
	}
	if err := ValidateHierarchy([]string{"a", "a"}); !Is(err, ErrCodeInvalidHierarchy) {
		t.Errorf("duplicate level: got %v", err)
	}
}

func TestSafeFilename(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{"schmidt_2016", "schmidt_2016", false},
		{"glucose", "glucose", false},
		{"LB / rich", "LB___rich", false},
		{"  chemostat µ=0.5 ", "chemostat_µ=0.5", false},
		{"a,b", "a_b", false},
		{"", "", true},
		{"   ", "", true},
		{"../etc", "", true},
	}

	for _, tt := range tests {
		got, err := SafeFilename(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("SafeFilename(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("SafeFilename(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}

	long, err := SafeFilename(strings.Repeat("x", 500))
	if err != nil || len(long) != 128 {
		t.Errorf("long name: len=%d err=%v", len(long), err)
	}
}
