package features

import (
	"github.com/your-org/aura-wellness-engine/internal/fallback"
	"github.com/your-org/aura-wellness-engine/internal/orchestrator"
	"github.com/your-org/aura-wellness-engine/internal/prompt"
	"github.com/your-org/aura-wellness-engine/internal/schema"
)

// AngelGuidance is the angel reading result
type AngelGuidance struct {
	AngelName   string   `json:"angel_name"`
	Message     string   `json:"message"`
	Affirmation string   `json:"affirmation"`
	AngelNumber int      `json:"angel_number"`
	Rituals     []string `json:"rituals"`
}

var angelContract = schema.Contract{
	Name: KeyAngelGuidance,
	Fields: []schema.Field{
		{Name: "angel_name", Type: schema.TypeString, Required: true},
		{Name: "message", Type: schema.TypeString, Required: true},
		{Name: "affirmation", Type: schema.TypeString, Required: true},
		{Name: "angel_number", Type: schema.TypeNumber, Required: true, Bounded: true, Min: 1, Max: 9999},
		{Name: "rituals", Type: schema.TypeStringArray, Required: true, MinItems: 2},
	},
}

const angelSystem = `You are a gentle spiritual counselor channeling angelic
guidance. Your tone is comforting and never alarming. Respond with JSON only,
no commentary.`

const angelUser = `The user seeks guidance about: {{concern}}. Return a JSON
object with:
- "angel_name": the guardian angel offering guidance
- "message": three to four sentences of comfort addressing the concern
- "affirmation": one short affirmation
- "angel_number": a meaningful number between 1 and 9999
- "rituals": an array of at least 2 simple grounding practices`

var angelPools = map[string][]string{
	"angel_name": {
		"Archangel Michael", "Archangel Raphael", "Archangel Gabriel",
		"Archangel Uriel", "Archangel Chamuel", "Archangel Jophiel",
	},
	"message": {
		"You are being watched over more closely than you know. The weight you carry was never meant to be carried alone, and help is already moving toward you. Let yourself receive it without apology.",
		"What feels like an ending is making space for something gentler. Your angels ask only that you stop bracing for the worst long enough to notice the small good things arriving daily.",
		"Your persistence has been seen. A door that seemed closed is quietly opening; walk toward it slowly and trust that the timing is kinder than it appears.",
		"The restlessness you feel is growth, not failure. You are shedding a version of yourself that kept you safe but small. Be patient with the process.",
	},
	"affirmation": {
		"I am guided, protected, and never alone.",
		"I release what I cannot control into loving hands.",
		"Light finds me even on the days I cannot look for it.",
		"I trust the path even where I cannot yet see it.",
	},
	"ritual": {
		"Light a white candle at dusk and sit with one slow breath for each worry you want to set down.",
		"Write the concern on paper, fold it once, and place it under a small stone overnight.",
		"Stand barefoot on the floor for two minutes each morning and name three things that held you yesterday.",
		"Keep a small glass of water by your bed and empty it outside each morning as a gesture of release.",
		"Before sleep, rest a hand over your heart and thank one person who was kind to you today.",
	},
}

var angelNumbers = []int{111, 222, 333, 444, 555, 777, 888, 1111, 1212, 2121}

// Angel returns the angel guidance feature definition
func Angel(p Params) orchestrator.Feature[AngelGuidance] {
	return orchestrator.Feature[AngelGuidance]{
		Key:      KeyAngelGuidance,
		Contract: angelContract,
		Template: prompt.Template{
			System:      angelSystem,
			User:        angelUser,
			Model:       p.Model,
			Temperature: p.Temperature,
			MaxTokens:   p.MaxTokens,
		},
		Retry:      p.Retry,
		Synthesize: synthesizeAngelGuidance,
	}
}

func synthesizeAngelGuidance(_ orchestrator.Request, p *fallback.Picker) AngelGuidance {
	return AngelGuidance{
		AngelName:   p.String(angelPools["angel_name"]),
		Message:     p.String(angelPools["message"]),
		Affirmation: p.String(angelPools["affirmation"]),
		AngelNumber: angelNumbers[p.IntBetween(0, len(angelNumbers)-1)],
		Rituals:     p.Sample(angelPools["ritual"], 2),
	}
}
