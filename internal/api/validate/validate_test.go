package validate

import (
	"strings"
	"testing"

	"github.com/ronnydonkey/scatterbrain-ai/internal/model"
)

func TestPersonaDraft(t *testing.T) {
	tests := []struct {
		name        string
		draft       model.PersonaDraft
		expectError bool
		errorMsg    string
	}{
		{
			name:  "valid draft",
			draft: model.PersonaDraft{Name: "Grandma Rose", Role: "Family Elder", Voice: "Patience, thrift"},
		},
		{
			name:        "missing name",
			draft:       model.PersonaDraft{Role: "Elder"},
			expectError: true,
			errorMsg:    "name is required",
		},
		{
			name:        "blank role",
			draft:       model.PersonaDraft{Name: "Rose", Role: "   "},
			expectError: true,
			errorMsg:    "role is required",
		},
		{
			name:        "voice too long",
			draft:       model.PersonaDraft{Name: "Rose", Role: "Elder", Voice: strings.Repeat("v", 1001)},
			expectError: true,
			errorMsg:    "voice exceeds 1000 characters",
		},
		{
			name:  "multibyte name at limit",
			draft: model.PersonaDraft{Name: strings.Repeat("é", 80), Role: "Elder"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := PersonaDraft(tt.draft)
			if tt.expectError {
				if err == nil {
					t.Fatalf("expected error, got nil")
				}
				if err.Error() != tt.errorMsg {
					t.Fatalf("expected %q, got %q", tt.errorMsg, err.Error())
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestAdvisorIDs(t *testing.T) {
	if err := AdvisorIDs(nil); err == nil {
		t.Fatalf("expected error for missing advisorIds")
	}
	if err := AdvisorIDs([]string{"naval", " "}); err == nil {
		t.Fatalf("expected error for blank id")
	}
	if err := AdvisorIDs([]string{}); err != nil {
		t.Fatalf("empty board must be allowed: %v", err)
	}
}
