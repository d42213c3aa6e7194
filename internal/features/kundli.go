package features

import (
	"github.com/your-org/aura-wellness-engine/internal/fallback"
	"github.com/your-org/aura-wellness-engine/internal/orchestrator"
	"github.com/your-org/aura-wellness-engine/internal/prompt"
	"github.com/your-org/aura-wellness-engine/internal/schema"
)

// KundliAnalysis is the birth chart reading result
type KundliAnalysis struct {
	Ascendant     string   `json:"ascendant"`
	MoonSign      string   `json:"moon_sign"`
	SunSign       string   `json:"sun_sign"`
	Personality   string   `json:"personality"`
	Career        string   `json:"career"`
	Relationships string   `json:"relationships"`
	Remedies      []string `json:"remedies"`
}

var kundliContract = schema.Contract{
	Name: KeyKundli,
	Fields: []schema.Field{
		{Name: "ascendant", Type: schema.TypeEnum, Required: true, Enum: ZodiacSigns},
		{Name: "moon_sign", Type: schema.TypeEnum, Required: true, Enum: ZodiacSigns},
		{Name: "sun_sign", Type: schema.TypeEnum, Required: true, Enum: ZodiacSigns},
		{Name: "personality", Type: schema.TypeString, Required: true},
		{Name: "career", Type: schema.TypeString, Required: true},
		{Name: "relationships", Type: schema.TypeString, Required: true},
		{Name: "remedies", Type: schema.TypeStringArray, Required: true, MinItems: 2},
	},
}

const kundliSystem = `You are a learned Vedic astrologer preparing a kundli
reading. You are specific, encouraging, and avoid fatalistic language.
Respond with JSON only, no commentary.`

const kundliUser = `Prepare a kundli reading for {{name}}, born on
{{birth_date}} at {{birth_time}} in {{birth_place}}. If a photograph of an
existing birth chart is attached, read the planetary placements from it and
let them inform the reading. Return a JSON object with:
- "ascendant", "moon_sign", "sun_sign": zodiac sign names
- "personality": a paragraph on temperament and gifts
- "career": a paragraph on vocational direction
- "relationships": a paragraph on love and partnership
- "remedies": an array of at least 2 gentle traditional remedies`

var kundliPools = map[string][]string{
	"personality": {
		"The chart shows a mind that moves between practicality and idealism without losing either. You absorb the mood of a room quickly, which makes you a natural mediator, though it asks you to guard your own energy deliberately.",
		"A strong ascendant lord gives you presence that others notice before you speak. Your challenge has never been capability; it is choosing among the many things you could do well.",
		"The moon's placement gives deep emotional memory. You forgive readily but forget slowly, and your loyalty, once earned, rarely wavers.",
	},
	"career": {
		"Work that combines structure with service suits this chart: teaching, healing, building systems that outlast you. Recognition arrives through consistency rather than self-promotion, and mid-life brings your strongest professional decade.",
		"The tenth house suggests authority worn lightly. You lead best from alongside rather than above, and collaborative ventures begun with trusted partners are especially favored.",
		"Creative and advisory work both flourish here. Periods of apparent stall in your profession are preparation; each has historically preceded a clear step upward.",
	},
	"relationships": {
		"In partnership you offer steadiness and ask for honesty. The chart favors bonds that begin as friendship; passion that arrives slowly stays longest for you.",
		"Venus placed favorably suggests warmth that deepens with time. Guard against carrying a partner's burdens as your own; love in this chart thrives on shared weight, not silent sacrifice.",
		"The seventh house shows a partner who balances rather than mirrors you. Differences that once felt like friction mature into the bond's greatest strength.",
	},
	"remedy": {
		"Offer water to the rising sun on Sunday mornings with a moment of gratitude.",
		"Keep a small piece of silver close on Mondays to steady the mind.",
		"Feed birds or another small kindness to animals on Saturdays.",
		"Chant or listen to the Gayatri mantra for a few minutes at dawn.",
		"Donate grains or food quietly on Thursdays without mention of it.",
	},
}

// Kundli returns the birth chart reading feature definition. Requests may
// optionally attach a photograph of an existing chart, which switches the
// call to the vision model.
func Kundli(p Params) orchestrator.Feature[KundliAnalysis] {
	return orchestrator.Feature[KundliAnalysis]{
		Key:      KeyKundli,
		Contract: kundliContract,
		Template: prompt.Template{
			System:      kundliSystem,
			User:        kundliUser,
			Model:       p.Model,
			VisionModel: p.VisionModel,
			Temperature: p.Temperature,
			MaxTokens:   p.MaxTokens,
		},
		Retry:      p.Retry,
		Synthesize: synthesizeKundli,
	}
}

func synthesizeKundli(_ orchestrator.Request, p *fallback.Picker) KundliAnalysis {
	return KundliAnalysis{
		Ascendant:     p.String(ZodiacSigns),
		MoonSign:      p.String(ZodiacSigns),
		SunSign:       p.String(ZodiacSigns),
		Personality:   p.String(kundliPools["personality"]),
		Career:        p.String(kundliPools["career"]),
		Relationships: p.String(kundliPools["relationships"]),
		Remedies:      p.Sample(kundliPools["remedy"], 2),
	}
}
