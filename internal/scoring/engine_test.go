package scoring

import (
	"testing"

	"esg-assessment-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(f float64) *float64 { return &f }

func likert(id string, cat domain.Category) domain.Question {
	return domain.Question{
		ID:          id,
		Prompt:      "How mature is " + id + "?",
		Type:        domain.LikertScale,
		Options:     []string{"None", "Basic", "Developing", "Advanced", "Leading"},
		ImpactAreas: []domain.Category{cat},
	}
}

func answer(id string, v domain.Value) domain.Response {
	return domain.Response{QuestionID: id, Value: v}
}

func TestLikertScoreSoleQuestion(t *testing.T) {
	q := likert("q1", domain.Environmental)
	responses := map[string]domain.Response{"q1": answer("q1", domain.NumberValue(3))}

	result := CalculateAssessmentScore(responses, []domain.Question{q})

	require.Len(t, result.QuestionScores, 1)
	assert.InDelta(t, 8.0, result.QuestionScores[0].RawScore, 1e-9)
	assert.Equal(t, 80, result.CategoryScores.Environmental)
	assert.Equal(t, 100, result.CompletionRate)

	byLabel := CalculateQuestionScore(answer("q1", domain.TextValue("Advanced")), q)
	assert.InDelta(t, 8.0, byLabel.RawScore, 1e-9)
}

func TestNumberQuestionContribution(t *testing.T) {
	q := domain.Question{
		ID:          "n1",
		Type:        domain.NumberInput,
		Weight:      2,
		Validation:  &domain.NumberRange{Min: ptr(0), Max: ptr(100)},
		ImpactAreas: []domain.Category{domain.Social},
	}
	qs := CalculateQuestionScore(answer("n1", domain.NumberValue(35)), q)

	assert.InDelta(t, 3.5, qs.RawScore, 1e-9)
	assert.InDelta(t, 7.0, qs.WeightedScore, 1e-9)
	assert.InDelta(t, 20.0, qs.MaxScore, 1e-9)
	assert.Equal(t, domain.Social, qs.Category)
	assert.Equal(t, "high", qs.Impact)

	result := CalculateAssessmentScore(map[string]domain.Response{"n1": answer("n1", domain.NumberValue(35))}, []domain.Question{q})
	assert.Equal(t, 35, result.CategoryScores.Social)

	over := CalculateQuestionScore(answer("n1", domain.NumberValue(250)), q)
	assert.InDelta(t, 10.0, over.RawScore, 1e-9)
}

func TestRawScoresPerType(t *testing.T) {
	opts := []string{"a", "b", "c", "d"}
	cases := []struct {
		name string
		q    domain.Question
		resp domain.Response
		want float64
	}{
		{"single choice", domain.Question{Type: domain.MultipleChoice, Options: opts}, answer("x", domain.TextValue("b")), 5},
		{"single choice unknown", domain.Question{Type: domain.MultipleChoice, Options: opts}, answer("x", domain.TextValue("z")), 0},
		{"multi choice", domain.Question{Type: domain.MultipleChoice, MultiSelect: true, Options: opts}, answer("x", domain.MultiValue("a", "c", "d")), 7.5},
		{"file with attachment", domain.Question{Type: domain.FileUpload}, domain.Response{Attachments: []domain.Attachment{{Name: "policy.pdf"}}}, 10},
		{"file without attachment", domain.Question{Type: domain.FileUpload}, domain.Response{}, 0},
		{"text answered", domain.Question{Type: domain.TextInput}, answer("x", domain.TextValue("we recycle")), 10},
		{"text blank", domain.Question{Type: domain.TextInput}, answer("x", domain.TextValue("")), 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.want, CalculateQuestionScore(tc.resp, tc.q).RawScore, 1e-9)
		})
	}
}

func TestUnansweredQuestionsPenalizeCategory(t *testing.T) {
	questions := []domain.Question{likert("q1", domain.Governance), likert("q2", domain.Governance)}
	responses := map[string]domain.Response{"q1": answer("q1", domain.TextValue("Leading"))}

	result := CalculateAssessmentScore(responses, questions)

	assert.Equal(t, 50, result.CategoryScores.Governance)
	assert.Equal(t, 50, result.CompletionRate)
	assert.Len(t, result.QuestionScores, 1)
}

func TestEmptyCatalogIsZero(t *testing.T) {
	result := CalculateAssessmentScore(map[string]domain.Response{"ghost": answer("ghost", domain.TextValue("x"))}, nil)

	assert.Equal(t, 0, result.CompletionRate)
	assert.Equal(t, domain.CategoryScores{}, result.CategoryScores)
	assert.Equal(t, 0, result.OverallScore)
	assert.Empty(t, result.QuestionScores)
}

func TestOutOfCatalogResponsesIgnored(t *testing.T) {
	questions := []domain.Question{likert("q1", domain.Social)}
	responses := map[string]domain.Response{
		"q1":    answer("q1", domain.NumberValue(4)),
		"stale": answer("stale", domain.NumberValue(4)),
	}
	result := CalculateAssessmentScore(responses, questions)
	assert.Equal(t, 100, result.CompletionRate)
	assert.Len(t, result.QuestionScores, 1)
}

func TestOverallUsesWeights(t *testing.T) {
	questions := []domain.Question{
		likert("e", domain.Environmental),
		likert("s", domain.Social),
		likert("g", domain.Governance),
	}
	responses := map[string]domain.Response{
		"e": answer("e", domain.NumberValue(4)), // 100
		"s": answer("s", domain.NumberValue(1)), // 40
		"g": answer("g", domain.NumberValue(2)), // 60
	}
	result := CalculateAssessmentScore(responses, questions)
	assert.Equal(t, 70, result.OverallScore) // 40 + 12 + 18
	assert.Equal(t, result.OverallScore, result.CategoryScores.Total)

	custom := CalculateAssessmentScore(responses, questions, WithWeights(Weights{Environmental: 0, Social: 1, Governance: 0}))
	assert.Equal(t, 40, custom.OverallScore)
}

func TestScoreIsIdempotentAndBounded(t *testing.T) {
	questions := []domain.Question{
		likert("a", domain.Environmental),
		{ID: "b", Type: domain.MultipleChoice, MultiSelect: true, Options: []string{"x"}, Weight: 3, ImpactAreas: []domain.Category{domain.Social}},
		{ID: "c", Type: domain.NumberInput, Validation: &domain.NumberRange{Min: ptr(-50), Max: ptr(10)}},
	}
	responses := map[string]domain.Response{
		"a": answer("a", domain.NumberValue(4)),
		"b": answer("b", domain.MultiValue("x", "x", "x")),
		"c": answer("c", domain.NumberValue(-40)),
	}
	first := CalculateAssessmentScore(responses, questions, WithIndustry("Energy"))
	second := CalculateAssessmentScore(responses, questions, WithIndustry("Energy"))
	assert.Equal(t, first, second)

	for _, v := range []int{first.OverallScore, first.CategoryScores.Environmental, first.CategoryScores.Social, first.CategoryScores.Governance} {
		assert.GreaterOrEqual(t, v, 0)
		assert.LessOrEqual(t, v, 100)
	}
}

func TestRecommendationOrdering(t *testing.T) {
	recs := GenerateRecommendations(domain.CategoryScores{Environmental: 65, Social: 85, Governance: 75})

	require.Len(t, recs, 3)
	assert.Equal(t, domain.Environmental, recs[0].Category)
	assert.Equal(t, domain.PriorityHigh, recs[0].Priority)
	assert.Equal(t, domain.Environmental, recs[1].Category)
	assert.Equal(t, domain.PriorityMedium, recs[1].Priority)
	assert.Equal(t, domain.Governance, recs[2].Category)
	assert.Equal(t, domain.PriorityMedium, recs[2].Priority)
	for _, r := range recs {
		assert.NotEqual(t, domain.Social, r.Category)
	}
}

func TestRecommendationsGroupHighFirst(t *testing.T) {
	recs := GenerateRecommendations(domain.CategoryScores{Environmental: 10, Social: 10, Governance: 10})
	require.Len(t, recs, 6)
	for i, r := range recs {
		if i < 3 {
			assert.Equal(t, domain.PriorityHigh, r.Priority)
		} else {
			assert.Equal(t, domain.PriorityMedium, r.Priority)
		}
	}
	assert.Equal(t, []domain.Category{domain.Environmental, domain.Social, domain.Governance},
		[]domain.Category{recs[0].Category, recs[1].Category, recs[2].Category})
}

func TestBenchmarkComparison(t *testing.T) {
	table := map[string]Benchmark{"Tech": {Total: 60}, OtherIndustry: {Total: 50}}

	at := CompareToBenchmark(60, "Tech", table)
	assert.Equal(t, domain.BenchmarkComparison{Industry: "Tech", Percentile: 50, Comparison: domain.At}, at)

	above := CompareToBenchmark(90, "Tech", table)
	assert.Equal(t, 65, above.Percentile)
	assert.Equal(t, domain.Above, above.Comparison)

	fallback := CompareToBenchmark(0, "Shipping", table)
	assert.Equal(t, OtherIndustry, fallback.Industry)
	assert.Equal(t, 20, fallback.Percentile)
	assert.Equal(t, domain.Below, fallback.Comparison)

	clamped := CompareToBenchmark(100, "Tiny", map[string]Benchmark{OtherIndustry: {Total: 10}})
	assert.Equal(t, 95, clamped.Percentile)
}
