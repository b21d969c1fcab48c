package prompts

import "sort"

// None marks an occasion select left at its default.
const None = "None"

// NoStyle is offered last in the style picker.
const NoStyle = "No Style"

// DecorStyleLabel is the style recorded for decor-flow results.
const DecorStyleLabel = "thematic decor"

var interiorStyles = []string{
	"Modern", "Minimalist", "Scandinavian", "Bohemian (Boho)", "Industrial",
	"Mid-Century Modern", "Contemporary", "Japandi", "Rustic", "Coastal",
	"Mediterranean", "Farmhouse", "Traditional", "Eclectic", "Vintage",
	"Retro", "Art Deco", "Zen", "Urban", "Tropical", "Wabi-Sabi", "Glam",
	"Cottagecore", "French Country", "Moroccan", "Desert Chic", "Modern Classic",
	"Transitional", "Scandinavian Minimal", "Nature-Inspired", "Luxury",
	"Futuristic", "Organic Modern", "Asian Contemporary", "Industrial Loft",
	"Hollywood Regency", "Shabby Chic", "Maximalist", "Nautical/Hamptons",
}

var exteriorStyles = []string{
	"Modern", "Minimalist", "Scandinavian", "Industrial", "Contemporary",
	"Rustic", "Coastal", "Mediterranean", "Farmhouse", "Traditional", "Urban",
	"Tropical", "Moroccan", "Desert Chic", "Modern Classic", "Transitional",
	"Nature-Inspired", "Luxury", "Futuristic", "Organic Modern",
	"Industrial Loft", "Nautical/Hamptons",
}

var gardenStyles = []string{
	"Nature-Inspired", "Rustic", "Mediterranean", "Coastal", "Tropical",
	"Cottagecore", "Zen", "English Garden", "Japanese Garden",
}

var holidays = []string{
	None, "Christmas", "New Year’s Eve", "Valentine’s Day", "Easter", "Halloween",
	"Thanksgiving", "Independence Day (4th of July)", "Hanukkah", "Ramadan / Eid",
	"Diwali", "St. Patrick’s Day", "Mother’s Day", "Father’s Day", "Earth Day",
	"Chinese New Year", "Lunar New Year", "Spring Equinox", "Summer Solstice",
	"Autumn Harvest", "Winter Solstice", "Mardi Gras", "Pride Month",
	"Black Friday", "Cyber Monday", "Labor Day", "Memorial Day", "Veteran’s Day",
	"Carnival", "Thanksgiving Weekend", "Halloween Eve",
}

var events = []string{
	None, "Birthday Party", "Wedding", "Baby Shower", "Engagement Party",
	"Bridal Shower", "Anniversary Celebration", "Graduation Party", "Dinner Party",
	"Housewarming", "Holiday Gathering", "Outdoor BBQ", "Garden Party",
	"Gender Reveal", "Family Reunion", "Romantic Dinner", "Corporate Event",
	"Art Exhibition", "Product Launch", "Photo Shoot Setup", "Pop-up Market / Fair",
	"Charity Gala", "Kids Party", "Themed Party (e.g., 80s, Tropical, Rustic)",
	"Movie Night", "Cozy Night In", "Friendsgiving", "New Year’s Brunch",
	"Music Event", "Festival Booth", "Community Gathering", "Baby’s First Birthday",
	"Farewell Party",
}

var seasonalThemes = []string{
	None, "Spring Refresh", "Summer Beach Vibes", "Autumn Cozy", "Winter Wonderland",
	"Modern Farmhouse", "Bohemian Chic", "Minimalist Zen", "Vintage Charm",
	"Tropical Paradise", "Romantic Ambiance", "Garden Party", "Urban Modern",
	"Pastel Dreams", "Spring Blossoms", "Summer Garden Party",
	"Golden Autumn Harvest", "Cozy Cabin Winter", "Scandi Winter Hygge",
	"Holiday Sparkle", "Neutral All-Season", "Earthy Boho Vibes",
	"Monochrome Minimal", "Soft Neutrals", "Bold Color Pop", "Moody & Dramatic",
	"Fresh Greenery", "Festive Glam",
}

// Catalog lists every choice the submission forms offer.
type Catalog struct {
	DesignStyles   []string `json:"designStyles"`
	InteriorStyles []string `json:"interiorStyles"`
	ExteriorStyles []string `json:"exteriorStyles"`
	GardenStyles   []string `json:"gardenStyles"`
	Holidays       []string `json:"holidays"`
	Events         []string `json:"events"`
	SeasonalThemes []string `json:"seasonalThemes"`
}

// DefaultCatalog returns fresh copies so callers may modify them.
func DefaultCatalog() Catalog {
	return Catalog{
		DesignStyles:   DesignStyles(),
		InteriorStyles: clone(interiorStyles),
		ExteriorStyles: clone(exteriorStyles),
		GardenStyles:   clone(gardenStyles),
		Holidays:       clone(holidays),
		Events:         clone(events),
		SeasonalThemes: clone(seasonalThemes),
	}
}

// DesignStyles merges the interior, exterior and garden styles, sorted,
// with NoStyle appended.
func DesignStyles() []string {
	seen := make(map[string]struct{})
	var merged []string
	for _, group := range [][]string{interiorStyles, exteriorStyles, gardenStyles} {
		for _, s := range group {
			if _, ok := seen[s]; ok {
				continue
			}
			seen[s] = struct{}{}
			merged = append(merged, s)
		}
	}
	sort.Strings(merged)
	return append(merged, NoStyle)
}

func clone(in []string) []string {
	return append([]string(nil), in...)
}
