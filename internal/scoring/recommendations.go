package scoring

import (
	"sort"

	"esg-assessment-service/internal/domain"
)

const (
	highPriorityThreshold   = 70
	mediumPriorityThreshold = 80
)

type recommendationText struct {
	title, description, impact string
}

var highPriorityText = map[domain.Category]recommendationText{
	domain.Environmental: {
		title:       "Establish an environmental management system",
		description: "Measure Scope 1 and 2 emissions, set reduction targets and assign ownership for energy, water and waste.",
		impact:      "Significant reduction in environmental risk exposure",
	},
	domain.Social: {
		title:       "Strengthen workforce and community programs",
		description: "Formalize health and safety, diversity and employee development policies with measurable goals.",
		impact:      "Improved retention and stakeholder trust",
	},
	domain.Governance: {
		title:       "Formalize governance and oversight",
		description: "Adopt a code of conduct, board-level ESG oversight and an anti-corruption policy with regular review.",
		impact:      "Lower compliance and reputational risk",
	},
}

var mediumPriorityText = map[domain.Category]recommendationText{
	domain.Environmental: {
		title:       "Expand environmental reporting",
		description: "Track supply chain (Scope 3) impacts and publish progress against targets annually.",
		impact:      "Better transparency for investors and customers",
	},
	domain.Social: {
		title:       "Deepen stakeholder engagement",
		description: "Run regular employee surveys and supplier social audits and act on the findings.",
		impact:      "Earlier detection of social risks",
	},
	domain.Governance: {
		title:       "Improve ESG disclosure",
		description: "Align reporting with a recognized framework such as GRI or SASB and seek external assurance.",
		impact:      "Higher credibility of ESG claims",
	},
}

// GenerateRecommendations applies the per-category threshold rules and orders
// the result high before medium before low. Ties keep category order.
func GenerateRecommendations(scores domain.CategoryScores) []domain.Recommendation {
	recs := make([]domain.Recommendation, 0, 2*len(domain.Categories))
	for _, cat := range domain.Categories {
		score := scores.Get(cat)
		if score < highPriorityThreshold {
			recs = append(recs, newRecommendation(cat, domain.PriorityHigh, highPriorityText[cat]))
		}
		if score < mediumPriorityThreshold {
			recs = append(recs, newRecommendation(cat, domain.PriorityMedium, mediumPriorityText[cat]))
		}
	}
	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].Priority.Rank() > recs[j].Priority.Rank()
	})
	return recs
}

func newRecommendation(cat domain.Category, p domain.Priority, text recommendationText) domain.Recommendation {
	return domain.Recommendation{
		Category:    cat,
		Priority:    p,
		Title:       text.title,
		Description: text.description,
		Impact:      text.impact,
	}
}
