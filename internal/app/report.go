package app

import (
	"time"

	"esg-assessment-service/internal/domain"
	"esg-assessment-service/internal/scoring"
)

// BuildReport scores responses against a catalog and derives insights and
// improvement potential. It has no side effects.
func BuildReport(responses map[string]domain.Response, catalog domain.Catalog, now time.Time, opts ...scoring.Option) domain.Report {
	questions := catalog.Questions()
	result := scoring.CalculateAssessmentScore(responses, questions, opts...)
	return domain.Report{
		CatalogID:   catalog.ID,
		Industry:    result.Benchmarks.Industry,
		GeneratedAt: now.UTC(),
		Score:       result,
		Insights:    scoring.GetAssessmentInsights(responses, questions),
		Improvement: scoring.ImprovementFromScores(result.CategoryScores),
	}
}
