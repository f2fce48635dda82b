package search

import (
	"slices"
	"testing"
)

func TestTags(t *testing.T) {
	tests := []struct {
		name        string
		description string
		candidates  []string
		want        []string
	}{
		{
			name:        "matches listed technologies",
			description: "Looking for React and Node.js developer",
			candidates:  []string{"React", "Node.js", "Java"},
			want:        []string{"React", "Node.js"},
		},
		{
			name:        "tolerates punctuation and casing",
			description: "Requerimos conocimiento en REACT, angular.",
			candidates:  []string{"React", "Angular", "Vue"},
			want:        []string{"React", "Angular"},
		},
		{
			name:        "stop tokens never match",
			description: "experiencia para trabajo en equipo",
			candidates:  []string{"Java", "React"},
			want:        nil,
		},
		{
			name:        "empty description matches nothing",
			description: "",
			candidates:  []string{"React"},
			want:        nil,
		},
		{
			name:        "empty candidates fall back to the default dictionary",
			description: "Se busca desarrollador con Python y Docker",
			want:        []string{"Python", "Docker"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Tags(tt.description, tt.candidates)
			if !slices.Equal(got, tt.want) {
				t.Errorf("Tags() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMatcherNearest(t *testing.T) {
	m := NewMatcher([]string{"React", "Node.js", "PostgreSQL"})

	tests := []struct {
		name  string
		input string
		want  string
		found bool
	}{
		{name: "exact match short-circuits", input: "react", want: "React", found: true},
		{name: "close misspelling resolves", input: "reactt", want: "React", found: true},
		{name: "distance above threshold is rejected", input: "cobol", found: false},
		{name: "short input is never fuzzy matched", input: "go", found: false},
		{name: "stop token is rejected", input: "experiencia", found: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, found := m.Nearest(tt.input)
			if found != tt.found {
				t.Fatalf("Nearest(%q) found = %v, want %v", tt.input, found, tt.found)
			}
			if got != tt.want {
				t.Errorf("Nearest(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}

	t.Run("results are memoized", func(t *testing.T) {
		if _, ok := m.Nearest("reactt"); !ok {
			t.Fatal("expected memoized input to resolve")
		}
		if _, ok := m.memo["reactt"]; !ok {
			t.Error("expected input to be present in the memo map")
		}
	})
}
