package prompts

import (
	"fmt"
	"net/url"
	"strings"

	"cozylogic-backend/internal/models"
)

var roomLabels = map[models.RoomType]string{
	models.RoomLivingRoom: "Living room",
	models.RoomBedroom:    "Bedroom",
	models.RoomDiningRoom: "Dining room",
	models.RoomOffice:     "Office",
	models.RoomSmallSpace: "Small space",
	models.RoomOther:      "Room",
}

var goalLabels = map[models.Goal]string{
	models.GoalCozier:        "Make it cozier",
	models.GoalBrighter:      "Make it brighter",
	models.GoalModern:        "Make it modern",
	models.GoalBigger:        "Make it feel bigger",
	models.GoalRefreshBudget: "Refresh on a budget",
}

var styleLabels = map[models.StyleKey]string{
	models.StyleModernMinimal:    "Modern Minimal",
	models.StyleCozyNeutral:      "Cozy Neutral",
	models.StyleScandinavian:     "Scandinavian",
	models.StyleJapandi:          "Japandi",
	models.StyleSoftBoho:         "Soft Boho",
	models.StyleCleanTraditional: "Clean Traditional",
}

var budgetLabels = map[models.BudgetTier]string{
	models.BudgetRearrangeOnly: "Rearrange only",
	models.BudgetUnder500:      "Under $500",
	models.Budget500To1500:     "$500–$1,500",
	models.Budget1500To3000:    "$1,500–$3,000",
	models.Budget3000Plus:      "$3,000+",
}

// 3000_plus has no cap.
var budgetCaps = map[models.BudgetTier]int{
	models.BudgetRearrangeOnly: 0,
	models.BudgetUnder500:      500,
	models.Budget500To1500:     1500,
	models.Budget1500To3000:    3000,
}

// styleKits are the curated palette/material/shape vocabularies.
var styleKits = map[models.StyleKey]string{
	models.StyleModernMinimal: "- Palette: warm white, charcoal, black accents.\n" +
		"- Materials: matte lacquer, brushed steel, smoked glass.\n" +
		"- Shapes: low, straight-lined, slim legs, no ornament.",
	models.StyleCozyNeutral: "- Palette: oat, cream, taupe, soft camel.\n" +
		"- Materials: boucle, chunky knit, light oak, linen.\n" +
		"- Shapes: rounded arms, deep seats, soft edges.",
	models.StyleScandinavian: "- Palette: white, pale grey, birch, muted sage.\n" +
		"- Materials: ash and birch wood, wool, cotton.\n" +
		"- Shapes: tapered legs, simple frames, airy spacing.",
	models.StyleJapandi: "- Palette: stone, clay, walnut, black.\n" +
		"- Materials: walnut, paper lanterns, rattan, linen.\n" +
		"- Shapes: low profiles, clean horizontals, negative space.",
	models.StyleSoftBoho: "- Palette: terracotta, sand, olive, rust.\n" +
		"- Materials: rattan, jute, macrame, washed cotton.\n" +
		"- Shapes: curves, layered rugs, trailing plants.",
	models.StyleCleanTraditional: "- Palette: ivory, navy, brass, warm wood.\n" +
		"- Materials: rolled-arm upholstery, turned wood, brass.\n" +
		"- Shapes: symmetry, classic profiles, tailored skirts.",
}

func RoomLabel(t models.RoomType) string     { return labelOr(roomLabels[t], string(t)) }
func GoalLabel(g models.Goal) string         { return labelOr(goalLabels[g], string(g)) }
func StyleLabel(s models.StyleKey) string    { return labelOr(styleLabels[s], string(s)) }
func BudgetLabel(b models.BudgetTier) string { return labelOr(budgetLabels[b], string(b)) }

// StyleKit returns the kit text for a curated style, or "" for unknown keys.
func StyleKit(s models.StyleKey) string { return styleKits[s] }

// BudgetCap returns the dollar cap for a tier; ok is false when uncapped.
func BudgetCap(b models.BudgetTier) (int, bool) {
	v, ok := budgetCaps[b]
	return v, ok
}

func labelOr(label, raw string) string {
	if label != "" {
		return label
	}
	return strings.ReplaceAll(raw, "_", " ")
}

var storeSearchURLs = []struct {
	store  string
	format string
}{
	{"Target", "https://www.target.com/s?searchTerm=%s"},
	{"Walmart", "https://www.walmart.com/search?q=%s"},
	{"Wayfair", "https://www.wayfair.com/keyword.php?keyword=%s"},
	{"Kohl's", "https://www.kohls.com/search.jsp?search=%s"},
	{"eBay", "https://www.ebay.com/sch/i.html?_nkw=%s"},
	{"Amazon", "https://www.amazon.com/s?k=%s"},
}

// StoreSearchLinks builds retailer search URLs for a generic product query.
// Links are derived at display time; the model is never asked for them.
func StoreSearchLinks(query string) []models.StoreLink {
	q := url.QueryEscape(strings.TrimSpace(query))
	links := make([]models.StoreLink, 0, len(storeSearchURLs))
	for _, s := range storeSearchURLs {
		links = append(links, models.StoreLink{Store: s.store, URL: fmt.Sprintf(s.format, q)})
	}
	return links
}
