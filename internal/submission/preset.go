package submission

import "strings"

// Preset is a named custom style. Saving one makes it the selected style and
// folds its fields into the details text.
type Preset struct {
	Name           string `json:"name"`
	ColorPalette   string `json:"colorPalette"`
	FurnitureTypes string `json:"furnitureTypes"`
	DecorElements  string `json:"decorElements"`
	OverallMood    string `json:"overallMood"`
}

// Valid reports whether the preset can be saved.
func (p Preset) Valid() bool {
	return strings.TrimSpace(p.Name) != ""
}

// Details joins the filled-in fields as "Color Palette: x. Overall Mood: y".
func (p Preset) Details() string {
	fields := []struct{ label, value string }{
		{"Color Palette", p.ColorPalette},
		{"Furniture Types", p.FurnitureTypes},
		{"Decor Elements", p.DecorElements},
		{"Overall Mood", p.OverallMood},
	}
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		if v := strings.TrimSpace(f.value); v != "" {
			parts = append(parts, f.label+": "+v)
		}
	}
	return strings.Join(parts, ". ")
}

// WithStyle puts the preset name at the front of styles, removing any earlier copy.
func (p Preset) WithStyle(styles []string) []string {
	name := strings.TrimSpace(p.Name)
	out := make([]string, 0, len(styles)+1)
	out = append(out, name)
	for _, s := range styles {
		if s != name {
			out = append(out, s)
		}
	}
	return out
}
