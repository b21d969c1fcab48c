package prompts

import (
	"fmt"
	"strings"

	"google.golang.org/genai"

	"geniusdesign/internal/storage"
)

// Params carries the user's choices into the prompt templates.
type Params struct {
	Style         string
	Details       string
	Holiday       string
	Event         string
	SeasonalTheme string
}

// IsSet reports whether an occasion value was actually chosen.
func IsSet(v string) bool {
	v = strings.TrimSpace(v)
	return v != "" && v != None
}

// ImagePrompt builds the instruction sent with the photo to the image model.
func ImagePrompt(p Params) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Redesign the provided image in a photorealistic %q style. Create a distinct variation.", p.Style)
	if IsSet(p.Holiday) {
		fmt.Fprintf(&b, " The theme should be for the %q holiday.", p.Holiday)
	}
	if IsSet(p.Event) {
		fmt.Fprintf(&b, " The theme should be for a %q event.", p.Event)
	}
	if IsSet(p.SeasonalTheme) {
		fmt.Fprintf(&b, " The theme should also incorporate a %q feel.", p.SeasonalTheme)
	}
	if details := strings.TrimSpace(p.Details); details != "" {
		fmt.Fprintf(&b, " Additional details: %s.", details)
	}
	b.WriteString(" Make the changes appear natural and well-integrated. The output must be a high-quality, realistic image.")
	return b.String()
}

// SuggestionsPrompt builds the text-model instruction for the flow.
func SuggestionsPrompt(flow storage.FlowType, p Params) string {
	var b strings.Builder
	details := strings.TrimSpace(p.Details)

	if flow == storage.FlowDesign {
		fmt.Fprintf(&b, "Analyze the image and generate concise, prescriptive design suggestions for a %q style.", p.Style)
		if details != "" {
			fmt.Fprintf(&b, " Incorporate: %s.", details)
		}
		b.WriteString(" Provide 5-7 general ideas, 3-5 low-budget options, and 3-4 DIY projects. Do not repeat ideas.")
		return b.String()
	}

	fmt.Fprintf(&b, "Analyze the image and generate concise, prescriptive decor suggestions. Theme: %q.", p.Style)
	if IsSet(p.Holiday) {
		fmt.Fprintf(&b, " Holiday: %q.", p.Holiday)
	}
	if IsSet(p.Event) {
		fmt.Fprintf(&b, " Event: %q.", p.Event)
	}
	if IsSet(p.SeasonalTheme) {
		fmt.Fprintf(&b, " Seasonal Theme: %q.", p.SeasonalTheme)
	}
	if details != "" {
		fmt.Fprintf(&b, " Incorporate: %s.", details)
	}
	b.WriteString(" Provide 5 general ideas, 5 low-budget options, and 5 DIY projects. Do not repeat ideas.")
	return b.String()
}

// SuggestionsSchema is the structured-output schema for the suggestion lists.
func SuggestionsSchema(flow storage.FlowType) *genai.Schema {
	general, lowBudget, diy := "List of 5 general decor suggestions.", "List of 5 low-budget decor ideas.", "List of 5 DIY decor projects."
	if flow == storage.FlowDesign {
		general = "List of 5-7 actionable design suggestions."
		lowBudget = "List of 3-5 budget-friendly alternatives."
		diy = "List of 3-4 practical DIY projects."
	}
	list := func(desc string) *genai.Schema {
		return &genai.Schema{
			Type:        genai.TypeArray,
			Items:       &genai.Schema{Type: genai.TypeString},
			Description: desc,
		}
	}
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"general":   list(general),
			"lowBudget": list(lowBudget),
			"diy":       list(diy),
		},
		Required:         []string{"general", "lowBudget", "diy"},
		PropertyOrdering: []string{"general", "lowBudget", "diy"},
	}
}

// FormatSuggestionsText renders the plain-text export of a result.
func FormatSuggestionsText(r storage.Result) string {
	var b strings.Builder
	b.WriteString("Genius Design & Decor Suggestions\n\n")
	if r.Type != storage.FlowDecor {
		fmt.Fprintf(&b, "Style: %s\n\n", r.Style)
	}
	fmt.Fprintf(&b, "General:\n%s\n\n", strings.Join(r.Suggestions.General, "\n"))
	fmt.Fprintf(&b, "Budget-Friendly:\n%s\n\n", strings.Join(r.Suggestions.LowBudget, "\n"))
	fmt.Fprintf(&b, "DIY:\n%s", strings.Join(r.Suggestions.DIY, "\n"))
	return b.String()
}

// SuggestionsFilename is the download name of the text export.
func SuggestionsFilename(id string) string {
	return fmt.Sprintf("genius-design-suggestions-%s.txt", id)
}

// ImageFilename is the download name of variation n, counted from 1.
func ImageFilename(id string, n int) string {
	return fmt.Sprintf("genius-design-%s-%d.png", id, n)
}
