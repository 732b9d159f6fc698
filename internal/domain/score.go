package domain

import "time"

// QuestionScore is the per-question breakdown of a scoring run.
type QuestionScore struct {
	QuestionID    string   `json:"questionId"`
	RawScore      float64  `json:"rawScore"`
	WeightedScore float64  `json:"weightedScore"`
	MaxScore      float64  `json:"maxScore"`
	Category      Category `json:"category"`
	Impact        string   `json:"impact"`
}

// CategoryScores holds the 0-100 category aggregates. Total equals the overall score.
type CategoryScores struct {
	Environmental int `json:"environmental"`
	Social        int `json:"social"`
	Governance    int `json:"governance"`
	Total         int `json:"total"`
}

// Get returns the score for one category.
func (c CategoryScores) Get(cat Category) int {
	switch cat {
	case Environmental:
		return c.Environmental
	case Social:
		return c.Social
	case Governance:
		return c.Governance
	}
	return 0
}

// Priority orders recommendations.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Rank is higher for more urgent priorities.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	}
	return 0
}

// Recommendation is a suggested improvement for a category.
type Recommendation struct {
	Category    Category `json:"category"`
	Priority    Priority `json:"priority"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Impact      string   `json:"impact"`
}

// Comparison is the position relative to an industry benchmark.
type Comparison string

const (
	Above Comparison = "above"
	Below Comparison = "below"
	At    Comparison = "at"
)

// BenchmarkComparison places an overall score within its industry.
type BenchmarkComparison struct {
	Industry   string     `json:"industry"`
	Percentile int        `json:"percentile"`
	Comparison Comparison `json:"comparison"`
}

// ScoreResult is a pure projection of responses, questions and industry.
type ScoreResult struct {
	OverallScore    int                 `json:"overallScore"`
	CategoryScores  CategoryScores      `json:"categoryScores"`
	QuestionScores  []QuestionScore     `json:"questionScores"`
	CompletionRate  int                 `json:"completionRate"`
	Recommendations []Recommendation    `json:"recommendations"`
	Benchmarks      BenchmarkComparison `json:"benchmarks"`
}

// Insights are qualitative findings derived from responses.
type Insights struct {
	Strengths      []string `json:"strengths"`
	Weaknesses     []string `json:"weaknesses"`
	RiskAreas      []string `json:"riskAreas"`
	ComplianceGaps []string `json:"complianceGaps"`
}

// ImprovementArea projects what a category could reach.
type ImprovementArea struct {
	Category           Category `json:"category"`
	CurrentScore       int      `json:"currentScore"`
	PotentialScore     int      `json:"potentialScore"`
	ImprovementActions []string `json:"improvementActions"`
}

// Report bundles a scoring run with its derived analytics.
type Report struct {
	AssessmentID string            `json:"assessmentId,omitempty"`
	CatalogID    string            `json:"catalogId,omitempty"`
	Industry     string            `json:"industry"`
	GeneratedAt  time.Time         `json:"generatedAt"`
	Score        ScoreResult       `json:"score"`
	Insights     Insights          `json:"insights"`
	Improvement  []ImprovementArea `json:"improvement"`
}
