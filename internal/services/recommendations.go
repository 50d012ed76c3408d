package services

import (
	"encoding/json"
	"strings"

	"cozylogic-backend/internal/models"
	"cozylogic-backend/internal/prompts"
)

const maxRecommendationItems = 8

// ParseRecommendations accepts only a reply that is, in full, a JSON object
// with at least one named item. Extra items past the cap are dropped.
func ParseRecommendations(reply string) (*models.Recommendations, bool) {
	var recs models.Recommendations
	if err := json.Unmarshal([]byte(strings.TrimSpace(reply)), &recs); err != nil {
		return nil, false
	}
	items := recs.Items[:0]
	for _, it := range recs.Items {
		if strings.TrimSpace(it.Name) == "" {
			continue
		}
		items = append(items, it)
	}
	if len(items) == 0 {
		return nil, false
	}
	if len(items) > maxRecommendationItems {
		items = items[:maxRecommendationItems]
	}
	recs.Items = items
	return &recs, true
}

// RecommendationViews decorates stored items with store search links.
func RecommendationViews(g *models.Generation) []models.RecommendationView {
	if len(g.Recommendations) == 0 {
		return nil
	}
	var recs models.Recommendations
	if err := json.Unmarshal(g.Recommendations, &recs); err != nil {
		return nil
	}
	views := make([]models.RecommendationView, 0, len(recs.Items))
	for _, it := range recs.Items {
		query := it.Name
		if it.FinishHint != "" {
			query = it.FinishHint + " " + it.Name
		}
		views = append(views, models.RecommendationView{
			RecommendationItem: it,
			Links:              prompts.StoreSearchLinks(query),
		})
	}
	return views
}
