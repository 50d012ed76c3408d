// Package prompts turns a room's selections into the instruction text for
// the tidy pass, the style pass and the recommendation pass.
//
// Every builder is a pure function of its Inputs. Each pass is a separate
// model invocation with no memory of earlier passes, so the architecture
// lock is repeated verbatim in both image prompts.
package prompts

import (
	"fmt"
	"strings"

	"cozylogic-backend/internal/models"
)

type Inputs struct {
	RoomType   models.RoomType
	Goal       models.Goal
	StyleKey   models.StyleKey
	BudgetTier models.BudgetTier
}

func InputsFor(r *models.Room) Inputs {
	return Inputs{
		RoomType:   r.RoomType,
		Goal:       r.Goal,
		StyleKey:   r.StyleKey,
		BudgetTier: r.BudgetTier,
	}
}

const (
	RequiredRepositionPhrase = "Reposition at least 2 major furniture pieces"
	RequiredChangesPhrase    = "Make at least 8 of these 10 visible changes"

	PromptVersionRearrange = "v2-two-pass-rearrange"
	PromptVersionRedesign  = "v2-two-pass-redesign"
)

var architectureLock = []string{
	"Same-scene constraints (must follow):",
	"- Keep the exact same camera angle, framing, and lens.",
	"- Keep the same walls, windows, doors, ceiling, and floor material.",
	"- Keep curtains and blinds in the same open or closed state.",
	"- Keep the same natural light direction and time of day.",
	"- No text, logos, or watermarks.",
}

// redesignChecklist is the fixed list the style pass must mostly satisfy.
var redesignChecklist = []string{
	"Seating silhouette: a different sofa or chair shape in the chosen style.",
	"Coffee table: a different coffee or side table shape and material.",
	"Rug: a new area rug sized to anchor the seating zone.",
	"Lighting: layered lighting with at least one floor or table lamp.",
	"Wall art: new framed art or a mirror at eye level.",
	"Textiles: new pillows, throws, or bedding in the style palette.",
	"Accent pieces: at least two new decor accents (plants, vases, books, trays).",
	"Secondary furniture: a new console, shelf, bench, or nightstand.",
	"Palette: shift the overall color palette toward the style.",
	"Layout flow: open a clear walking path and a defined focal point.",
}

// TidyPrompt builds pass 1: declutter only, nothing else changes.
func TidyPrompt(in Inputs) string {
	lines := []string{
		fmt.Sprintf("Edit this photo of a %s.", RoomLabel(in.RoomType)),
		"Task: declutter and organize only. This is a cleanup pass, not a redesign.",
		"",
		"Allowed:",
		"- Remove loose clutter: clothes, papers, cables, dishes, packaging, toys.",
		"- Straighten items that stay: fold throws, align pillows, square up stacks.",
		"- Clear surfaces so tables, counters, and floors read clean.",
		"",
		"Forbidden:",
		"- Do not replace, add, or remove furniture.",
		"- Do not change walls, windows, doors, or ceiling.",
		"- Do not change the camera angle or crop.",
		"- Do not open or close curtains or blinds.",
		"- Do not change the floor material or wall colors.",
		"",
	}
	lines = append(lines, architectureLock...)
	lines = append(lines,
		"",
		"Result: the same room, photorealistic, simply tidy.",
	)
	return strings.Join(lines, "\n")
}

// StylePrompt builds pass 2. The rearrange-only tier gets a constrained
// rearrange prompt; every other tier gets the full redesign prompt.
func StylePrompt(in Inputs) string {
	if in.BudgetTier.RearrangeOnly() {
		return rearrangePrompt(in)
	}
	return redesignPrompt(in)
}

func rearrangePrompt(in Inputs) string {
	lines := []string{
		fmt.Sprintf("Rearrange this already-tidied %s to %s.", RoomLabel(in.RoomType), strings.ToLower(GoalLabel(in.Goal))),
		fmt.Sprintf("Style direction for placement only: %s.", StyleLabel(in.StyleKey)),
		"Budget: rearrange only. Zero purchases.",
		"",
		"Rules:",
		"- Use only the furniture and decor already visible in the photo.",
		"- Do not add any rug, lamp, plant, artwork, textile, or furniture.",
		"- Do not swap any piece for a different one; every object keeps its exact look.",
		"- You may reposition existing pieces to improve flow and balance.",
		"- You may lightly tidy and group existing small items.",
		"",
	}
	lines = append(lines, architectureLock...)
	lines = append(lines,
		"",
		"Result: a photorealistic photo of the same room with its own pieces moved into a better layout.",
	)
	return strings.Join(lines, "\n")
}

func redesignPrompt(in Inputs) string {
	lines := []string{
		fmt.Sprintf("FULL REDESIGN of this %s in %s style.", RoomLabel(in.RoomType), StyleLabel(in.StyleKey)),
		fmt.Sprintf("Goal: %s.", GoalLabel(in.Goal)),
		fmt.Sprintf("Budget tier: %s.", BudgetLabel(in.BudgetTier)),
		"",
		"The result must look clearly redesigned, not lightly edited.",
		fmt.Sprintf("- %s to new positions.", RequiredRepositionPhrase),
		fmt.Sprintf("- %s:", RequiredChangesPhrase),
	}
	for i, item := range redesignChecklist {
		lines = append(lines, fmt.Sprintf("  %d. %s", i+1, item))
	}
	if kit := StyleKit(in.StyleKey); kit != "" {
		lines = append(lines, "", "Style kit:", kit)
	}
	lines = append(lines, "")
	lines = append(lines, architectureLock...)
	lines = append(lines,
		"",
		"Result: a photorealistic, professionally staged photo of the same room.",
	)
	return strings.Join(lines, "\n")
}

// RecommendationPrompt asks for a strict JSON list of organizing products.
func RecommendationPrompt(in Inputs) string {
	budget := "Every item must fit the budget tier."
	if limit, ok := BudgetCap(in.BudgetTier); ok {
		if limit == 0 {
			budget = "The user has zero budget: suggest only inexpensive organizing basics (bins, hooks, trays) they might already own."
		} else {
			budget = fmt.Sprintf("The combined cost of all items must stay under $%d.", limit)
		}
	}

	return strings.Join([]string{
		"You are an interior organizing assistant.",
		fmt.Sprintf("Room: %s", RoomLabel(in.RoomType)),
		fmt.Sprintf("Goal: %s", GoalLabel(in.Goal)),
		fmt.Sprintf("Style: %s", StyleLabel(in.StyleKey)),
		fmt.Sprintf("Budget: %s", BudgetLabel(in.BudgetTier)),
		"",
		"Suggest organizing products that would keep this room looking like the redesigned photo.",
		budget,
		"",
		"Rules:",
		"- Return between 5 and 8 items.",
		"- Do not invent brand names; describe generic product types.",
		"- Do not include retailer names, links, or URLs.",
		"",
		"Return ONLY a strict JSON object, no prose and no code fences, with this shape:",
		`{"items":[{"category":"storage","name":"woven lidded basket","why":"hides throws and toys","placement":"beside the sofa","size_hint":"16 x 12 in","finish_hint":"natural seagrass"}]}`,
	}, "\n")
}

const RecommendationSystemPrompt = "You reply with strict JSON only."

// PromptVersion tags the generation row with the pipeline revision.
func PromptVersion(tier models.BudgetTier) string {
	if tier.RearrangeOnly() {
		return PromptVersionRearrange
	}
	return PromptVersionRedesign
}

// Explanation is the canned change summary stored with a generation.
func Explanation(tier models.BudgetTier) string {
	if tier.RearrangeOnly() {
		return "• Decluttered and organized surfaces\n• Repositioned your existing furniture for better flow\n• No purchases: every piece is already yours"
	}
	return "• Decluttered and organized surfaces\n• Reworked the layout with at least two major moves\n• New furniture, lighting, textiles, and decor in your chosen style"
}
