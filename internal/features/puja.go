package features

import (
	"fmt"
	"strings"

	"github.com/your-org/aura-wellness-engine/internal/fallback"
	"github.com/your-org/aura-wellness-engine/internal/media"
	"github.com/your-org/aura-wellness-engine/internal/orchestrator"
	"github.com/your-org/aura-wellness-engine/internal/prompt"
	"github.com/your-org/aura-wellness-engine/internal/schema"
)

// PujaRecommendation is the puja guidance result. GuideVideoID carries a
// verified walkthrough video when one is found.
type PujaRecommendation struct {
	PujaName     string   `json:"puja_name"`
	Deity        string   `json:"deity"`
	Purpose      string   `json:"purpose"`
	BestDay      string   `json:"best_day"`
	Items        []string `json:"items"`
	Mantra       string   `json:"mantra"`
	Benefits     []string `json:"benefits"`
	GuideVideoID string   `json:"guide_video_id,omitempty"`
}

var pujaContract = schema.Contract{
	Name: KeyPuja,
	Fields: []schema.Field{
		{Name: "puja_name", Type: schema.TypeString, Required: true},
		{Name: "deity", Type: schema.TypeString, Required: true},
		{Name: "purpose", Type: schema.TypeString, Required: true},
		{Name: "best_day", Type: schema.TypeEnum, Required: true, Enum: Weekdays},
		{Name: "items", Type: schema.TypeStringArray, Required: true, MinItems: 3},
		{Name: "mantra", Type: schema.TypeString, Required: true},
		{Name: "benefits", Type: schema.TypeStringArray, Required: true, MinItems: 2},
	},
}

const pujaSystem = `You are a knowledgeable priest who recommends pujas with
care for tradition and accessibility for beginners. Respond with JSON only,
no commentary.`

const pujaUser = `The devotee's intention is: {{intention}}. Recommend one
suitable puja as a JSON object with:
- "puja_name": the puja's name
- "deity": the presiding deity
- "purpose": two sentences on why this puja fits the intention
- "best_day": the most auspicious weekday
- "items": an array of at least 3 items needed
- "mantra": one mantra to recite
- "benefits": an array of at least 2 benefits`

var pujaPools = map[string][]string{
	"puja": {
		"Ganesh Puja|Lord Ganesha|Performed before new beginnings, this puja removes obstacles from the path and settles the mind for fresh starts. It is especially fitting when an intention involves change or initiative.|Om Gan Ganapataye Namah",
		"Lakshmi Puja|Goddess Lakshmi|This puja invites abundance in its widest sense: material ease, generosity, and gratitude for what is already present. It suits intentions around stability and prosperity.|Om Shreem Mahalakshmiyei Namah",
		"Shiva Abhishek|Lord Shiva|The abhishek's steady pouring is a meditation on release, fitting for intentions that require letting go of fear or old patterns. Its rhythm calms even a restless heart.|Om Namah Shivaya",
		"Hanuman Puja|Lord Hanuman|Performed for strength and protection, this puja steadies those facing demanding seasons. It is fitting when an intention calls for courage and persistence.|Om Han Hanumate Namah",
	},
	"item": {
		"Fresh flowers", "Incense sticks", "A ghee lamp", "Kumkum and turmeric",
		"Fresh fruit", "Sweets for offering", "Sandalwood paste", "A small bell",
	},
	"benefit": {
		"A settled, focused mind", "Renewed confidence in the undertaking",
		"A sense of protection through transitions", "Gratitude that steadies daily life",
		"Harmony within the household",
	},
}

var pujaBestDays = map[string]string{
	"Ganesh Puja":    "Wednesday",
	"Lakshmi Puja":   "Friday",
	"Shiva Abhishek": "Monday",
	"Hanuman Puja":   "Tuesday",
}

// Puja returns the puja recommendation feature definition
func Puja(p Params) orchestrator.Feature[PujaRecommendation] {
	return orchestrator.Feature[PujaRecommendation]{
		Key:      KeyPuja,
		Contract: pujaContract,
		Template: prompt.Template{
			System:      pujaSystem,
			User:        pujaUser,
			Model:       p.Model,
			Temperature: p.Temperature,
			MaxTokens:   p.MaxTokens,
		},
		Retry:      p.Retry,
		Synthesize: synthesizePuja,
		MediaQueries: func(rec PujaRecommendation) []string {
			return []string{fmt.Sprintf("%s vidhi step by step", rec.PujaName)}
		},
		AttachMedia: func(rec *PujaRecommendation, candidates []media.Candidate) {
			if len(candidates) > 0 && candidates[0].Verified {
				rec.GuideVideoID = candidates[0].ResolvedID
			}
		},
	}
}

// synthesizePuja unpacks a pool entry of the form name|deity|purpose|mantra
// so the four fields stay consistent with each other
func synthesizePuja(_ orchestrator.Request, p *fallback.Picker) PujaRecommendation {
	parts := strings.SplitN(p.String(pujaPools["puja"]), "|", 4)
	return PujaRecommendation{
		PujaName: parts[0],
		Deity:    parts[1],
		Purpose:  parts[2],
		BestDay:  pujaBestDays[parts[0]],
		Items:    p.Sample(pujaPools["item"], 4),
		Mantra:   parts[3],
		Benefits: p.Sample(pujaPools["benefit"], 2),
	}
}
