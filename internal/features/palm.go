package features

import (
	"github.com/your-org/aura-wellness-engine/internal/fallback"
	"github.com/your-org/aura-wellness-engine/internal/orchestrator"
	"github.com/your-org/aura-wellness-engine/internal/prompt"
	"github.com/your-org/aura-wellness-engine/internal/schema"
)

// PalmAnalysis is the vision-based hand reading result
type PalmAnalysis struct {
	LifeLine  string   `json:"life_line"`
	HeartLine string   `json:"heart_line"`
	HeadLine  string   `json:"head_line"`
	FateLine  string   `json:"fate_line"`
	Strengths []string `json:"strengths"`
	Guidance  string   `json:"guidance"`
}

var palmContract = schema.Contract{
	Name: KeyPalmAnalysis,
	Fields: []schema.Field{
		{Name: "life_line", Type: schema.TypeString, Required: true},
		{Name: "heart_line", Type: schema.TypeString, Required: true},
		{Name: "head_line", Type: schema.TypeString, Required: true},
		{Name: "fate_line", Type: schema.TypeString, Required: true},
		{Name: "strengths", Type: schema.TypeStringArray, Required: true, MinItems: 3},
		{Name: "guidance", Type: schema.TypeString, Required: true},
	},
}

const palmSystem = `You are an experienced palmist who reads hands with warmth
and specificity. You describe what the lines suggest without making medical or
financial claims. Respond with JSON only, no commentary.`

const palmUser = `Read the palm in the attached photograph. Return a JSON
object with:
- "life_line", "heart_line", "head_line", "fate_line": two sentences each on
  what the line's shape and depth suggest
- "strengths": an array of at least 3 character strengths the hand reveals
- "guidance": a closing paragraph of practical encouragement`

var palmPools = map[string][]string{
	"life_line": {
		"A long, deeply etched life line curves generously around the thumb, suggesting vitality that renews itself through rest rather than constant motion. Its unbroken sweep points to resilience built over years.",
		"The life line begins high near the index finger, a mark of early ambition. A gentle fork near its base hints at a meaningful change of home or direction embraced rather than endured.",
		"A doubled life line, rare and protective, suggests an inner reserve that carries you through demanding seasons. You recover faster than you give yourself credit for.",
	},
	"heart_line": {
		"The heart line runs smooth and rises toward the index finger, the sign of someone who loves loyally and expects honesty in return. Small feathered branches speak of warmth easily extended to others.",
		"A deep, slightly curved heart line suggests feelings held privately but strongly. You choose few people, and you choose them completely.",
		"The heart line's gentle chain near its start tells of early lessons in trust; its firm later course shows those lessons became wisdom rather than walls.",
	},
	"head_line": {
		"A long, level head line crossing the palm speaks of a mind that works methodically and finishes what it starts. You weigh choices rather than rushing them.",
		"The head line slopes gracefully toward the moon mount, the classic mark of imagination. Ideas arrive as pictures first and plans second.",
		"A clear separation between head and life lines at their start shows independence decided early. You form your own views and revise them honestly.",
	},
	"fate_line": {
		"A steady fate line rising from the wrist suggests a sense of direction that strengthens with each decade. Interruptions along its path read as chosen turns, not losses.",
		"The fate line begins mid-palm, a sign that your truest work announced itself later than it does for most, and with more certainty.",
		"A fate line joined by a supporting line from the moon mount suggests help arriving through other people at exactly the right moments.",
	},
	"strength": {
		"Quiet persistence", "Emotional honesty", "Practical imagination",
		"Loyalty that steadies others", "The ability to begin again",
		"Good judgment under pressure", "Generosity without keeping score",
	},
	"guidance": {
		"The hand you showed carries more finished chapters than unfinished ones. Trust the pace your lines describe: steady, deliberate, and kinder to you than urgency ever was. The season ahead rewards consistency over spectacle.",
		"Your palm suggests someone who has been strong for others longer than is comfortable. Let the support lines in your hand remind you that receiving help is also a skill, and this is a good year to practice it.",
		"Everything in this hand points toward consolidation: fewer commitments, held more deeply. Choose the two or three things your heart line already chose, and let the rest go without ceremony.",
	},
}

// Palm returns the vision-based palm reading feature definition. Callers
// must attach the palm photograph to the request.
func Palm(p Params) orchestrator.Feature[PalmAnalysis] {
	return orchestrator.Feature[PalmAnalysis]{
		Key:      KeyPalmAnalysis,
		Contract: palmContract,
		Template: prompt.Template{
			System:      palmSystem,
			User:        palmUser,
			Model:       p.VisionModel,
			Temperature: p.Temperature,
			MaxTokens:   p.MaxTokens,
		},
		Retry:      p.Retry,
		Synthesize: synthesizePalmAnalysis,
	}
}

func synthesizePalmAnalysis(_ orchestrator.Request, p *fallback.Picker) PalmAnalysis {
	return PalmAnalysis{
		LifeLine:  p.String(palmPools["life_line"]),
		HeartLine: p.String(palmPools["heart_line"]),
		HeadLine:  p.String(palmPools["head_line"]),
		FateLine:  p.String(palmPools["fate_line"]),
		Strengths: p.Sample(palmPools["strength"], 3),
		Guidance:  p.String(palmPools["guidance"]),
	}
}
