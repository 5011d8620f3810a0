package pharmacy

import (
	"context"
	"sort"
	"strings"
)

// Recommender scores catalog rows against a reported symptom. The fatigue
// heuristics weight known energy-related ingredients above a plain
// substring match.
type Recommender struct {
	catalog CatalogRepository
	limit   int
}

func NewRecommender(catalog CatalogRepository, limit int) *Recommender {
	if limit <= 0 {
		limit = 5
	}
	return &Recommender{catalog: catalog, limit: limit}
}

func (r *Recommender) Recommend(ctx context.Context, symptom string) ([]Recommendation, error) {
	symptom = strings.ToLower(strings.TrimSpace(symptom))

	medicines, err := r.catalog.List(ctx)
	if err != nil {
		return nil, err
	}

	type scored struct {
		score    int
		medicine Medicine
	}

	var candidates []scored
	for _, m := range medicines {
		score := scoreMedicine(symptom, m)
		if score > 0 {
			candidates = append(candidates, scored{score: score, medicine: m})
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	if len(candidates) > r.limit {
		candidates = candidates[:r.limit]
	}

	recommendations := make([]Recommendation, 0, len(candidates))
	for _, c := range candidates {
		recommendations = append(recommendations, Recommendation{
			ID:     c.medicine.ID,
			Name:   c.medicine.Name,
			Price:  c.medicine.Price,
			Stock:  c.medicine.Stock,
			Reason: recommendReason(symptom, c.medicine),
		})
	}
	return recommendations, nil
}

func scoreMedicine(symptom string, m Medicine) int {
	name := strings.ToLower(m.Name)
	desc := strings.ToLower(m.Description)

	score := 0

	if strings.Contains(symptom, "tired") || strings.Contains(symptom, "fatigue") {
		if strings.Contains(name, "b12") || strings.Contains(desc, "b12") {
			score += 3
		}
		if strings.Contains(name, "vitamin") || strings.Contains(desc, "vitamin") {
			score += 2
		}
		if strings.Contains(name, "magnesium") || strings.Contains(desc, "magnesium") {
			score += 2
		}
		if strings.Contains(name, "energy") || strings.Contains(desc, "energie") {
			score += 2
		}
	}

	if symptom != "" && (strings.Contains(name, symptom) || strings.Contains(desc, symptom)) {
		score++
	}

	return score
}

func recommendReason(symptom string, m Medicine) string {
	name := strings.ToLower(m.Name)
	desc := strings.ToLower(m.Description)

	if strings.Contains(symptom, "tired") || strings.Contains(symptom, "fatigue") {
		if strings.Contains(name, "b12") || strings.Contains(desc, "b12") {
			return "Contains Vitamin B12 which helps reduce fatigue and supports energy metabolism."
		}
		if strings.Contains(name, "vitamin") || strings.Contains(desc, "vitamin") {
			return "Multivitamins help combat fatigue and improve overall energy levels."
		}
		if strings.Contains(name, "magnesium") || strings.Contains(desc, "magnesium") {
			return "Magnesium supports muscle function and reduces tiredness."
		}
	}

	if symptom != "" && (strings.Contains(name, symptom) || strings.Contains(desc, symptom)) {
		return "Matches your reported symptom."
	}

	return "May help support your condition."
}
