package prompts

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"geniusdesign/internal/storage"
)

func TestDesignStyles_SortedWithNoStyleLast(t *testing.T) {
	styles := DesignStyles()
	require.NotEmpty(t, styles)
	assert.Equal(t, NoStyle, styles[len(styles)-1])

	rest := styles[:len(styles)-1]
	seen := map[string]bool{}
	for i, s := range rest {
		assert.False(t, seen[s], "duplicate style %q", s)
		seen[s] = true
		if i > 0 {
			assert.LessOrEqual(t, rest[i-1], s)
		}
	}
	assert.True(t, seen["Japanese Garden"])
	assert.True(t, seen["Hollywood Regency"])
}

func TestDefaultCatalog_OccasionsLeadWithNone(t *testing.T) {
	c := DefaultCatalog()
	for _, list := range [][]string{c.Holidays, c.Events, c.SeasonalThemes} {
		require.NotEmpty(t, list)
		assert.Equal(t, None, list[0])
	}

	c.Holidays[0] = "changed"
	assert.Equal(t, None, DefaultCatalog().Holidays[0])
}

func TestImagePrompt_SkipsNoneAndEmpty(t *testing.T) {
	got := ImagePrompt(Params{Style: "Japandi", Holiday: None, Event: "", SeasonalTheme: "Autumn Cozy", Details: "keep the sofa"})
	assert.True(t, strings.HasPrefix(got, `Redesign the provided image in a photorealistic "Japandi" style.`))
	assert.NotContains(t, got, "holiday")
	assert.NotContains(t, got, "event")
	assert.Contains(t, got, `incorporate a "Autumn Cozy" feel.`)
	assert.Contains(t, got, "Additional details: keep the sofa.")
	assert.True(t, strings.HasSuffix(got, "The output must be a high-quality, realistic image."))
}

func TestSuggestionsPrompt_PerFlow(t *testing.T) {
	design := SuggestionsPrompt(storage.FlowDesign, Params{Style: "Rustic", Holiday: "Christmas"})
	assert.Contains(t, design, `design suggestions for a "Rustic" style.`)
	assert.Contains(t, design, "5-7 general ideas, 3-5 low-budget options, and 3-4 DIY projects")
	assert.NotContains(t, design, "Christmas")

	decor := SuggestionsPrompt(storage.FlowDecor, Params{Style: DecorStyleLabel, Holiday: "Christmas", Event: None, Details: "red accents"})
	assert.Contains(t, decor, `Theme: "thematic decor".`)
	assert.Contains(t, decor, `Holiday: "Christmas".`)
	assert.NotContains(t, decor, "Event:")
	assert.Contains(t, decor, "Incorporate: red accents.")
	assert.Contains(t, decor, "5 general ideas, 5 low-budget options, and 5 DIY projects")
}

func TestSuggestionsSchema(t *testing.T) {
	schema := SuggestionsSchema(storage.FlowDesign)
	assert.Equal(t, genai.TypeObject, schema.Type)
	assert.ElementsMatch(t, []string{"general", "lowBudget", "diy"}, schema.Required)
	assert.Equal(t, genai.TypeArray, schema.Properties["diy"].Type)
	assert.Contains(t, schema.Properties["general"].Description, "5-7")

	assert.Contains(t, SuggestionsSchema(storage.FlowDecor).Properties["general"].Description, "List of 5 general decor")
}

func TestFormatSuggestionsText(t *testing.T) {
	r := storage.Result{
		Type:  storage.FlowDesign,
		Style: "Coastal",
		Suggestions: storage.Suggestions{
			General:   []string{"a", "b"},
			LowBudget: []string{"c"},
			DIY:       []string{"d"},
		},
	}
	assert.Equal(t, "Genius Design & Decor Suggestions\n\nStyle: Coastal\n\nGeneral:\na\nb\n\nBudget-Friendly:\nc\n\nDIY:\nd", FormatSuggestionsText(r))

	r.Type = storage.FlowDecor
	assert.NotContains(t, FormatSuggestionsText(r), "Style:")
}

func TestFilenames(t *testing.T) {
	assert.Equal(t, "genius-design-abc-2.png", ImageFilename("abc", 2))
	assert.Equal(t, "genius-design-suggestions-abc.txt", SuggestionsFilename("abc"))
}
