package generation

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"geniusdesign/internal/llm"
	"geniusdesign/internal/prompts"
	"geniusdesign/internal/storage"
	"geniusdesign/internal/vision"
)

// DefaultVariations is how many redesigned images one request produces.
const DefaultVariations = 2

// Input is one validated generation request.
type Input struct {
	Flow   storage.FlowType
	Image  vision.Image
	Params prompts.Params
}

// Output holds everything a successful generation produced.
type Output struct {
	Suggestions storage.Suggestions
	Images      []vision.Image
}

// Generator turns a photo and the user's choices into variations and suggestions.
type Generator interface {
	Generate(ctx context.Context, in Input) (Output, error)
}

// New returns a generator backed by the model clients.
func New(suggester llm.Suggester, renderer vision.Renderer, variations int) Generator {
	if variations <= 0 {
		variations = DefaultVariations
	}
	return &modelGenerator{suggester: suggester, renderer: renderer, variations: variations}
}

type modelGenerator struct {
	suggester  llm.Suggester
	renderer   vision.Renderer
	variations int
}

// Generate runs the suggestions call and every variation concurrently. The
// first failure cancels the others and nothing partial is returned.
func (g *modelGenerator) Generate(ctx context.Context, in Input) (Output, error) {
	if g.suggester == nil || g.renderer == nil {
		return Output{}, errors.New("generation: model clients not configured")
	}

	group, gctx := errgroup.WithContext(ctx)

	var suggestions storage.Suggestions
	group.Go(func() error {
		s, err := g.suggester.Suggest(gctx, llm.SuggestionRequest{
			Flow:     in.Flow,
			Image:    in.Image.Data,
			MIMEType: in.Image.MIMEType,
			Params:   in.Params,
		})
		if err != nil {
			return err
		}
		suggestions = s
		return nil
	})

	prompt := prompts.ImagePrompt(in.Params)
	images := make([]vision.Image, g.variations)
	for i := range images {
		group.Go(func() error {
			img, err := g.renderer.Render(gctx, in.Image, prompt)
			if err != nil {
				return err
			}
			images[i] = img
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return Output{}, err
	}
	return Output{Suggestions: suggestions, Images: images}, nil
}

// NewHeuristic returns a rules-based generator for running without model
// credentials. It echoes the photo back as every variation.
func NewHeuristic(variations int) Generator {
	if variations <= 0 {
		variations = DefaultVariations
	}
	return heuristicGenerator{variations: variations}
}

type heuristicGenerator struct {
	variations int
}

func (h heuristicGenerator) Generate(_ context.Context, in Input) (Output, error) {
	if len(in.Image.Data) == 0 {
		return Output{}, errors.New("generation: image is required")
	}
	images := make([]vision.Image, h.variations)
	for i := range images {
		images[i] = in.Image
	}
	return Output{Suggestions: heuristicSuggestions(in), Images: images}, nil
}

func heuristicSuggestions(in Input) storage.Suggestions {
	theme := in.Params.Style
	if theme == "" || theme == prompts.NoStyle {
		theme = "your current"
	}
	var occasion string
	for _, v := range []string{in.Params.Holiday, in.Params.Event, in.Params.SeasonalTheme} {
		if prompts.IsSet(v) {
			occasion = v
			break
		}
	}

	s := storage.Suggestions{
		General: []string{
			fmt.Sprintf("Anchor the room with one statement piece in the %s style.", theme),
			"Layer lighting with a ceiling fixture, a floor lamp and a table lamp.",
			"Repeat two or three accent colors across textiles and decor.",
			"Clear visual clutter from surfaces to let key pieces stand out.",
			"Add greenery to soften hard lines and bring in life.",
		},
		LowBudget: []string{
			"Swap cushion covers and throws instead of replacing furniture.",
			"Rearrange existing furniture to open up walkways.",
			"Shop second-hand for frames, vases and side tables.",
		},
		DIY: []string{
			"Paint an accent wall in a color drawn from the palette.",
			"Build a simple floating shelf for display pieces.",
			"Make a gallery wall from printed photos and thrifted frames.",
		},
	}
	if in.Flow == storage.FlowDecor && occasion != "" {
		s.General[0] = fmt.Sprintf("Build a focal display around a %s centerpiece.", occasion)
		s.LowBudget = append(s.LowBudget, fmt.Sprintf("Use paper garlands and candles in %s colors.", occasion))
		s.DIY = append(s.DIY, fmt.Sprintf("Craft a wreath or table runner for %s.", occasion))
	}
	return s
}
