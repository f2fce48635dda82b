package stats

import (
	"math"
	"reflect"
	"slices"
	"testing"

	"github.com/alwedo/jobscout/record"
)

func TestParseSalary(t *testing.T) {
	tests := []struct {
		raw  string
		want int
	}{
		{raw: "$ 3.500.000,00 (Mensual)", want: 3500000},
		{raw: "$ 0,00", want: 0},
		{raw: "$ 1.200.000,00", want: 1200000},
		{raw: "", want: 0},
		{raw: "A convenir", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			if got := parseSalary(tt.raw); got != tt.want {
				t.Errorf("parseSalary(%q) = %d, want %d", tt.raw, got, tt.want)
			}
		})
	}
}

func TestCompute(t *testing.T) {
	rows := []record.JobRecord{
		{URL: "https://example.com/1", Salary: "$ 1.000,00", Technologies: []string{"React", "Node.js"}},
		{URL: "https://example.com/2", Salary: "$ 2.000,00", Technologies: []string{"React"}},
		{URL: "https://example.com/3", Salary: "$ 3.000,00", Technologies: []string{"Java"}},
		{URL: "https://example.com/4", Salary: "$ 0,00"}, // non-positive salary is discarded
	}

	m := Compute(rows)

	if want := []int{1000, 2000, 3000}; !slices.Equal(m.Salaries, want) {
		t.Errorf("Salaries = %v, want %v", m.Salaries, want)
	}
	if m.Mean != 2000 {
		t.Errorf("Mean = %v, want 2000", m.Mean)
	}
	if m.StdDev != 1000 {
		t.Errorf("StdDev = %v, want 1000", m.StdDev)
	}
	if want := map[string]int{"React": 2, "Node.js": 1, "Java": 1}; !reflect.DeepEqual(m.Technologies, want) {
		t.Errorf("Technologies = %v, want %v", m.Technologies, want)
	}
	if m.AvgTechnologies != 1.0 {
		t.Errorf("AvgTechnologies = %v, want 1", m.AvgTechnologies)
	}
}

func TestComputeIsInvariantToDuplication(t *testing.T) {
	rows := []record.JobRecord{
		{URL: "https://example.com/1", Salary: "$ 1.000,00", Technologies: []string{"React"}},
		{URL: "https://example.com/2", Salary: "$ 2.000,00", Technologies: []string{"Go"}},
	}

	once := Compute(rows)
	twice := Compute(append(slices.Clone(rows), rows...))

	if !reflect.DeepEqual(once, twice) {
		t.Errorf("Compute over duplicated rows differs: %+v vs %+v", once, twice)
	}
}

func TestComputeSmallInputs(t *testing.T) {
	t.Run("empty input yields NaN mean", func(t *testing.T) {
		m := Compute(nil)
		if !math.IsNaN(m.Mean) {
			t.Errorf("Mean = %v, want NaN", m.Mean)
		}
	})

	t.Run("single salary yields NaN std dev", func(t *testing.T) {
		m := Compute([]record.JobRecord{{URL: "u", Salary: "$ 1.000,00"}})
		if m.Mean != 1000 {
			t.Errorf("Mean = %v, want 1000", m.Mean)
		}
		if !math.IsNaN(m.StdDev) {
			t.Errorf("StdDev = %v, want NaN", m.StdDev)
		}
	})
}
