// Package stats computes aggregate labor-market metrics from a set of
// extracted job records.
package stats

import (
	"math"
	"strconv"
	"strings"

	"github.com/alwedo/jobscout/record"
)

// Metrics summarizes a record set. Salaries holds the parsed, positive
// salary values; Technologies maps a technology name to how many listings
// mention it.
type Metrics struct {
	Salaries        []int          `json:"salaries"`
	Mean            float64        `json:"mean"`
	StdDev          float64        `json:"std_dev"`
	Technologies    map[string]int `json:"technologies"`
	AvgTechnologies float64        `json:"avg_technologies"`
}

// Compute aggregates the rows into Metrics. Rows are deduplicated by URL
// (first occurrence wins) so re-running Compute over a store that collected
// the same listing twice yields identical results.
//
// Mean and StdDev follow IEEE semantics rather than erroring on small
// inputs: an empty salary set yields a NaN mean, and StdDev uses the sample
// denominator n-1, so it is NaN for a single salary. This is deliberately
// left unguarded; callers render NaN as "no data".
func Compute(rows []record.JobRecord) Metrics {
	rows = dedupe(rows)

	var salaries []int
	techs := make(map[string]int)
	total := 0
	for _, row := range rows {
		if s := parseSalary(row.Salary); s > 0 {
			salaries = append(salaries, s)
		}
		for _, tech := range row.Technologies {
			techs[tech]++
			total++
		}
	}

	m := mean(salaries)
	return Metrics{
		Salaries:        salaries,
		Mean:            m,
		StdDev:          stdDev(salaries, m),
		Technologies:    techs,
		AvgTechnologies: float64(total) / float64(len(rows)),
	}
}

// dedupe keeps the first record seen for each URL.
func dedupe(rows []record.JobRecord) []record.JobRecord {
	seen := make(map[string]struct{}, len(rows))
	var out []record.JobRecord
	for _, row := range rows {
		if _, ok := seen[row.URL]; ok {
			continue
		}
		seen[row.URL] = struct{}{}
		out = append(out, row)
	}
	return out
}

// parseSalary turns a raw locale-formatted salary string such as
// "$ 3.500.000,00 (Mensual)" into an integer amount. It returns 0 for
// anything it cannot parse; callers discard non-positive results.
func parseSalary(raw string) int {
	s := strings.ReplaceAll(raw, "$ ", "")
	s = strings.ReplaceAll(s, " (Mensual)", "")
	s = strings.ReplaceAll(s, ".", "")
	s = strings.TrimSuffix(s, ",00")
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}

func mean(values []int) float64 {
	sum := 0
	for _, v := range values {
		sum += v
	}
	return float64(sum) / float64(len(values))
}

// stdDev is the sample standard deviation (denominator n-1), NaN for a
// single value.
func stdDev(values []int, mean float64) float64 {
	var sum float64
	for _, v := range values {
		d := float64(v) - mean
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(values)-1))
}
