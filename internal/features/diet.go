package features

import (
	"github.com/your-org/aura-wellness-engine/internal/fallback"
	"github.com/your-org/aura-wellness-engine/internal/orchestrator"
	"github.com/your-org/aura-wellness-engine/internal/prompt"
	"github.com/your-org/aura-wellness-engine/internal/schema"
)

// DietPlan is the sattvic diet recommendation result
type DietPlan struct {
	Summary   string   `json:"summary"`
	Breakfast []string `json:"breakfast"`
	Lunch     []string `json:"lunch"`
	Dinner    []string `json:"dinner"`
	Hydration string   `json:"hydration"`
	Avoid     []string `json:"avoid"`
}

var dietContract = schema.Contract{
	Name: KeyDietPlan,
	Fields: []schema.Field{
		{Name: "summary", Type: schema.TypeString, Required: true},
		{Name: "breakfast", Type: schema.TypeStringArray, Required: true, MinItems: 2},
		{Name: "lunch", Type: schema.TypeStringArray, Required: true, MinItems: 2},
		{Name: "dinner", Type: schema.TypeStringArray, Required: true, MinItems: 2},
		{Name: "hydration", Type: schema.TypeString, Required: true},
		{Name: "avoid", Type: schema.TypeStringArray, Required: true, MinItems: 2},
	},
}

const dietSystem = `You are an Ayurvedic nutrition counselor. You suggest
gentle, food-first guidance and never prescribe supplements or make medical
claims. Respond with JSON only, no commentary.`

const dietUser = `Create a one-day sattvic meal plan for a person whose goal
is: {{goal}}. Dietary preference: {{preference}}. Return a JSON object with:
- "summary": two sentences on the plan's intent
- "breakfast", "lunch", "dinner": arrays of at least 2 dish suggestions each
- "hydration": one sentence of hydration guidance
- "avoid": an array of at least 2 things to reduce`

var dietPools = map[string][]string{
	"summary": {
		"This plan favors warm, lightly spiced, easily digested meals that steady energy through the day. Eat slowly, and stop at comfortable fullness rather than completion.",
		"The day leans on fresh grains, seasonal vegetables and gentle spices to support clarity without heaviness. Regular mealtimes matter as much as the food itself.",
	},
	"breakfast": {
		"Warm spiced oats with stewed apple and a few soaked almonds",
		"Moong dal chilla with fresh coriander chutney",
		"Seasonal fruit with a handful of soaked raisins and fennel water",
		"Vegetable upma with curry leaves and a squeeze of lemon",
	},
	"lunch": {
		"Khichdi with ghee, cumin and steamed seasonal greens",
		"Chapati with yellow dal and a simple cucumber salad",
		"Steamed rice with lauki sabzi and fresh buttermilk",
		"Quinoa with roasted vegetables and coriander",
	},
	"dinner": {
		"Light vegetable soup with a small millet roti",
		"Sautéed seasonal vegetables over a modest portion of rice",
		"Warm moong dal soup with ginger and a little ghee",
		"Steamed vegetables with soft khichdi, eaten early",
	},
	"hydration": {
		"Sip warm water through the day and keep a glass of cumin or fennel water after meals.",
		"Favor room-temperature water over iced drinks, with warm herbal tea between meals.",
	},
	"avoid": {
		"Heavily fried snacks", "Late-night meals", "Iced drinks with food",
		"Packaged foods with long ingredient lists", "Excess caffeine after noon",
	},
}

// Diet returns the diet plan feature definition
func Diet(p Params) orchestrator.Feature[DietPlan] {
	return orchestrator.Feature[DietPlan]{
		Key:      KeyDietPlan,
		Contract: dietContract,
		Template: prompt.Template{
			System:      dietSystem,
			User:        dietUser,
			Model:       p.Model,
			Temperature: p.Temperature,
			MaxTokens:   p.MaxTokens,
		},
		Retry:      p.Retry,
		Synthesize: synthesizeDietPlan,
	}
}

func synthesizeDietPlan(_ orchestrator.Request, p *fallback.Picker) DietPlan {
	return DietPlan{
		Summary:   p.String(dietPools["summary"]),
		Breakfast: p.Sample(dietPools["breakfast"], 2),
		Lunch:     p.Sample(dietPools["lunch"], 2),
		Dinner:    p.Sample(dietPools["dinner"], 2),
		Hydration: p.String(dietPools["hydration"]),
		Avoid:     p.Sample(dietPools["avoid"], 3),
	}
}
