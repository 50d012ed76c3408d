package services_test

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"cozylogic-backend/internal/models"
	"cozylogic-backend/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRecommendations(t *testing.T) {
	recs, ok := services.ParseRecommendations("\n " + validRecommendations + "\n")
	require.True(t, ok)
	require.Len(t, recs.Items, 1)
	assert.Equal(t, "Linen floor lamp", recs.Items[0].Name)
	assert.Equal(t, "brass", recs.Items[0].FinishHint)

	for _, reply := range []string{
		"",
		"Sure! Here you go:\n" + validRecommendations,
		"```json\n" + validRecommendations + "\n```",
		`{"items":[]}`,
		`{"items":[{"category":"rug","name":"   "}]}`,
		`[{"name":"lamp"}]`,
	} {
		_, ok := services.ParseRecommendations(reply)
		assert.False(t, ok, reply)
	}
}

func TestParseRecommendations_DropsUnnamedAndCaps(t *testing.T) {
	var items []string
	items = append(items, `{"category":"x","name":""}`)
	for i := range 10 {
		items = append(items, fmt.Sprintf(`{"category":"decor","name":"item %d","why":"because"}`, i))
	}
	recs, ok := services.ParseRecommendations(`{"items":[` + strings.Join(items, ",") + `]}`)
	require.True(t, ok)
	require.Len(t, recs.Items, 8)
	assert.Equal(t, "item 0", recs.Items[0].Name)
}

func TestRecommendationViews(t *testing.T) {
	raw, err := json.Marshal(models.Recommendations{Items: []models.RecommendationItem{
		{Category: "lighting", Name: "floor lamp", FinishHint: "brass"},
		{Category: "textiles", Name: "wool throw"},
	}})
	require.NoError(t, err)

	views := services.RecommendationViews(&models.Generation{Recommendations: raw})
	require.Len(t, views, 2)
	assert.Equal(t, "floor lamp", views[0].Name)
	require.NotEmpty(t, views[0].Links)
	for _, l := range views[0].Links {
		assert.Contains(t, l.URL, "brass+floor+lamp")
	}
	assert.Contains(t, views[1].Links[0].URL, "wool+throw")

	assert.Nil(t, services.RecommendationViews(&models.Generation{}))
	assert.Nil(t, services.RecommendationViews(&models.Generation{Recommendations: json.RawMessage(`not json`)}))
}
