package scoring

import (
	"math"

	"esg-assessment-service/internal/domain"
)

// OtherIndustry is the fallback benchmark row.
const OtherIndustry = "Other"

// Benchmark is the reference score profile for an industry.
type Benchmark struct {
	Environmental int `json:"environmental" yaml:"environmental"`
	Social        int `json:"social" yaml:"social"`
	Governance    int `json:"governance" yaml:"governance"`
	Total         int `json:"total" yaml:"total"`
}

// DefaultBenchmarks is the built-in industry table.
var DefaultBenchmarks = map[string]Benchmark{
	"Technology":         {Environmental: 65, Social: 72, Governance: 75, Total: 70},
	"Financial Services": {Environmental: 60, Social: 70, Governance: 80, Total: 69},
	"Healthcare":         {Environmental: 58, Social: 75, Governance: 72, Total: 67},
	"Manufacturing":      {Environmental: 55, Social: 62, Governance: 68, Total: 61},
	"Retail":             {Environmental: 52, Social: 65, Governance: 66, Total: 60},
	"Energy":             {Environmental: 48, Social: 60, Governance: 70, Total: 58},
	OtherIndustry:        {Environmental: 55, Social: 63, Governance: 67, Total: 60},
}

// LookupBenchmark returns the row for industry, falling back to "Other".
func LookupBenchmark(industry string, table map[string]Benchmark) (string, Benchmark) {
	if b, ok := table[industry]; ok {
		return industry, b
	}
	if b, ok := table[OtherIndustry]; ok {
		return OtherIndustry, b
	}
	return OtherIndustry, DefaultBenchmarks[OtherIndustry]
}

// CompareToBenchmark estimates the percentile of overall within its industry.
func CompareToBenchmark(overall int, industry string, table map[string]Benchmark) domain.BenchmarkComparison {
	name, b := LookupBenchmark(industry, table)

	percentile := 50
	if b.Total > 0 {
		raw := 50 + float64(overall-b.Total)/float64(b.Total)*30
		percentile = Round(math.Min(math.Max(raw, 5), 95))
	}

	cmp := domain.At
	switch {
	case overall > b.Total:
		cmp = domain.Above
	case overall < b.Total:
		cmp = domain.Below
	}
	return domain.BenchmarkComparison{Industry: name, Percentile: percentile, Comparison: cmp}
}
