package scoring

import (
	"fmt"

	"esg-assessment-service/internal/domain"
)

const (
	strengthThreshold   = 80
	weaknessThreshold   = 50
	riskThreshold       = 60
	complianceThreshold = 70

	// answered multiple choice questions get a flat score here, unlike the engine's ordinal formula
	multipleChoiceInsightScore = 80
)

// GetAssessmentInsights classifies answered questions into strengths,
// weaknesses, risk areas and compliance gaps.
func GetAssessmentInsights(responses map[string]domain.Response, questions []domain.Question) domain.Insights {
	out := domain.Insights{
		Strengths:      []string{},
		Weaknesses:     []string{},
		RiskAreas:      []string{},
		ComplianceGaps: []string{},
	}
	for _, q := range questions {
		resp, ok := responses[q.ID]
		if !ok {
			continue
		}
		score, ok := insightScore(resp.Value, q)
		if !ok {
			continue
		}

		if score >= strengthThreshold {
			out.Strengths = append(out.Strengths, q.Prompt)
		} else if score < weaknessThreshold {
			out.Weaknesses = append(out.Weaknesses, q.Prompt)
		}
		if len(q.Risks) > 0 && score < riskThreshold {
			for _, r := range q.Risks {
				if r.Level == "high" {
					out.RiskAreas = append(out.RiskAreas, r.Description)
				}
			}
		}
		if len(q.Compliance) > 0 && score < complianceThreshold {
			for _, c := range q.Compliance {
				out.ComplianceGaps = append(out.ComplianceGaps, fmt.Sprintf("%s: %s", c.Regulation, c.Requirement))
			}
		}
	}
	return out
}

// insightScore is a 0-100 heuristic. Text and file questions have none.
func insightScore(v domain.Value, q domain.Question) (float64, bool) {
	switch q.Type {
	case domain.LikertScale:
		maxIndex := len(q.Options) - 1
		idx := SelectedIndex(v, q.Options)
		if maxIndex <= 0 || idx < 0 {
			return 0, true
		}
		return float64(idx) / float64(maxIndex) * 100, true
	case domain.MultipleChoice:
		if v.IsEmpty() {
			return 0, true
		}
		return multipleChoiceInsightScore, true
	case domain.NumberInput:
		n, ok := v.Number()
		_, hi := NumberBounds(q)
		if !ok || hi <= 0 {
			return 0, true
		}
		return n / hi * 100, true
	default:
		return 0, false
	}
}

type improvementPlan struct {
	bonus   int
	actions []string
}

var improvementPlans = map[domain.Category]improvementPlan{
	domain.Environmental: {bonus: 20, actions: []string{
		"Implement energy efficiency measures",
		"Set science-based emission reduction targets",
		"Increase renewable energy procurement",
		"Introduce waste reduction and recycling programs",
	}},
	domain.Social: {bonus: 15, actions: []string{
		"Expand diversity and inclusion initiatives",
		"Strengthen health and safety training",
		"Launch community engagement programs",
		"Audit suppliers for labor standards",
	}},
	domain.Governance: {bonus: 18, actions: []string{
		"Establish board-level ESG oversight",
		"Publish an anti-corruption policy",
		"Improve ESG disclosure and reporting",
		"Introduce ESG-linked executive compensation",
	}},
}

// CalculateImprovementPotential projects each category's reachable score.
func CalculateImprovementPotential(responses map[string]domain.Response, questions []domain.Question) []domain.ImprovementArea {
	scores := CalculateAssessmentScore(responses, questions).CategoryScores
	return ImprovementFromScores(scores)
}

// ImprovementFromScores builds the projection from already computed category scores.
func ImprovementFromScores(scores domain.CategoryScores) []domain.ImprovementArea {
	out := make([]domain.ImprovementArea, 0, len(domain.Categories))
	for _, cat := range domain.Categories {
		plan := improvementPlans[cat]
		current := scores.Get(cat)
		actions := make([]string, len(plan.actions))
		copy(actions, plan.actions)
		out = append(out, domain.ImprovementArea{
			Category:           cat,
			CurrentScore:       current,
			PotentialScore:     min(current+plan.bonus, 100),
			ImprovementActions: actions,
		})
	}
	return out
}
