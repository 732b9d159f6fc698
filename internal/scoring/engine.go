// Package scoring turns questionnaire responses into weighted ESG scores,
// recommendations, benchmark standing and qualitative insights.
//
// Everything here is pure: identical inputs always give identical output.
package scoring

import (
	"math"

	"esg-assessment-service/internal/domain"
)

// MaxQuestionScore is the unweighted ceiling of a single question.
const MaxQuestionScore = 10.0

// Weights blends category scores into the overall score.
type Weights struct {
	Environmental float64 `json:"environmental" yaml:"environmental"`
	Social        float64 `json:"social" yaml:"social"`
	Governance    float64 `json:"governance" yaml:"governance"`
}

// DefaultWeights weighs environmental highest.
var DefaultWeights = Weights{Environmental: 0.4, Social: 0.3, Governance: 0.3}

// IsZero reports an unset configuration.
func (w Weights) IsZero() bool {
	return w.Environmental == 0 && w.Social == 0 && w.Governance == 0
}

// Valid reports whether the weights sum to 1. The engine does not enforce it.
func (w Weights) Valid() bool {
	return math.Abs(w.Environmental+w.Social+w.Governance-1) < 1e-6
}

type options struct {
	industry   string
	weights    Weights
	benchmarks map[string]Benchmark
}

// Option configures a scoring run.
type Option func(*options)

// WithIndustry selects the benchmark row. Unknown industries fall back to "Other".
func WithIndustry(industry string) Option {
	return func(o *options) { o.industry = industry }
}

// WithWeights overrides DefaultWeights. Zero weights keep the defaults.
func WithWeights(w Weights) Option {
	return func(o *options) {
		if !w.IsZero() {
			o.weights = w
		}
	}
}

// WithBenchmarks replaces the industry table.
func WithBenchmarks(table map[string]Benchmark) Option {
	return func(o *options) {
		if len(table) > 0 {
			o.benchmarks = table
		}
	}
}

// CalculateAssessmentScore scores responses against the question catalog.
// Responses for questions outside the catalog are ignored.
func CalculateAssessmentScore(responses map[string]domain.Response, questions []domain.Question, opts ...Option) domain.ScoreResult {
	cfg := options{industry: OtherIndustry, weights: DefaultWeights, benchmarks: DefaultBenchmarks}
	for _, opt := range opts {
		opt(&cfg)
	}

	earned := make(map[domain.Category]float64, len(domain.Categories))
	possible := make(map[domain.Category]float64, len(domain.Categories))
	questionScores := make([]domain.QuestionScore, 0, len(questions))
	answered := 0

	for _, q := range questions {
		cat := q.Category()
		resp, ok := responses[q.ID]
		if !ok {
			// unanswered questions still count against the category
			possible[cat] += MaxQuestionScore * q.EffectiveWeight()
			continue
		}
		answered++
		qs := CalculateQuestionScore(resp, q)
		questionScores = append(questionScores, qs)
		earned[cat] += qs.WeightedScore
		possible[cat] += qs.MaxScore
	}

	categories := domain.CategoryScores{
		Environmental: percent(earned[domain.Environmental], possible[domain.Environmental]),
		Social:        percent(earned[domain.Social], possible[domain.Social]),
		Governance:    percent(earned[domain.Governance], possible[domain.Governance]),
	}
	overall := Round(float64(categories.Environmental)*cfg.weights.Environmental +
		float64(categories.Social)*cfg.weights.Social +
		float64(categories.Governance)*cfg.weights.Governance)
	overall = clampInt(overall, 0, 100)
	categories.Total = overall

	completion := 0
	if len(questions) > 0 {
		completion = Round(float64(answered) / float64(len(questions)) * 100)
	}

	return domain.ScoreResult{
		OverallScore:    overall,
		CategoryScores:  categories,
		QuestionScores:  questionScores,
		CompletionRate:  completion,
		Recommendations: GenerateRecommendations(categories),
		Benchmarks:      CompareToBenchmark(overall, cfg.industry, cfg.benchmarks),
	}
}

// CalculateQuestionScore scores one response on the 0-10 scale before weighting.
func CalculateQuestionScore(resp domain.Response, q domain.Question) domain.QuestionScore {
	weight := q.EffectiveWeight()
	raw := rawScore(resp, q)
	return domain.QuestionScore{
		QuestionID:    q.ID,
		RawScore:      raw,
		WeightedScore: raw * weight,
		MaxScore:      MaxQuestionScore * weight,
		Category:      q.Category(),
		Impact:        impactLevel(weight),
	}
}

func rawScore(resp domain.Response, q domain.Question) float64 {
	v := resp.Value
	switch q.Type {
	case domain.LikertScale:
		return ordinalScore(v, q.Options)
	case domain.MultipleChoice:
		if q.MultiSelect {
			items, ok := v.Multi()
			if !ok || len(q.Options) == 0 {
				return 0
			}
			return math.Min(float64(len(items))/float64(len(q.Options)), 1) * MaxQuestionScore
		}
		return ordinalScore(v, q.Options)
	case domain.NumberInput:
		n, ok := v.Number()
		if !ok {
			return 0
		}
		lo, hi := NumberBounds(q)
		if hi <= 0 {
			return 0
		}
		c := math.Min(math.Max(n, lo), hi)
		return math.Max(0, c/hi) * MaxQuestionScore
	case domain.FileUpload:
		if len(resp.Attachments) > 0 {
			return MaxQuestionScore
		}
		return 0
	default:
		if v.Truthy() {
			return MaxQuestionScore
		}
		return 0
	}
}

// NumberBounds returns the configured range, defaulting to [0, 100].
func NumberBounds(q domain.Question) (float64, float64) {
	lo, hi := 0.0, 100.0
	if q.Validation != nil {
		if q.Validation.Min != nil {
			lo = *q.Validation.Min
		}
		if q.Validation.Max != nil {
			hi = *q.Validation.Max
		}
	}
	return lo, hi
}

// SelectedIndex resolves a text label or numeric position to an option index, or -1.
func SelectedIndex(v domain.Value, opts []string) int {
	if n, ok := v.Number(); ok {
		i := int(n)
		if float64(i) == n && i >= 0 && i < len(opts) {
			return i
		}
		return -1
	}
	if s, ok := v.Text(); ok {
		for i, o := range opts {
			if o == s {
				return i
			}
		}
	}
	return -1
}

func ordinalScore(v domain.Value, opts []string) float64 {
	if len(opts) == 0 {
		return 0
	}
	idx := SelectedIndex(v, opts)
	return float64(idx+1) / float64(len(opts)) * MaxQuestionScore
}

func impactLevel(weight float64) string {
	switch {
	case weight >= 2:
		return "high"
	case weight > 1:
		return "medium"
	default:
		return "low"
	}
}

func percent(num, den float64) int {
	if den == 0 {
		return 0
	}
	return clampInt(Round(num/den*100), 0, 100)
}

// Round rounds half up.
func Round(x float64) int {
	return int(math.Floor(x + 0.5))
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
