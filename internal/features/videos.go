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

// TherapyCategories enumerates the healing video styles the model may pick
var TherapyCategories = []string{
	"guided meditation", "breathing exercise", "sound healing",
	"yoga nidra", "nature immersion", "positive affirmations",
}

// TherapyVideo is one recommended healing video. VideoID stays empty when
// no embeddable match was found; the title and reason still render.
type TherapyVideo struct {
	Title    string `json:"title"`
	Category string `json:"category"`
	Reason   string `json:"reason"`
	VideoID  string `json:"video_id,omitempty"`
}

// TherapyPlan is the video therapy result
type TherapyPlan struct {
	Videos      []TherapyVideo `json:"videos"`
	Affirmation string         `json:"affirmation"`
}

var therapyContract = schema.Contract{
	Name: KeyVideoTherapy,
	Fields: []schema.Field{
		{
			Name: "videos", Type: schema.TypeObjectArray, Required: true, MinItems: 3,
			Fields: []schema.Field{
				{Name: "title", Type: schema.TypeString, Required: true},
				{Name: "category", Type: schema.TypeEnum, Required: true, Enum: TherapyCategories},
				{Name: "reason", Type: schema.TypeString, Required: true},
			},
		},
		{
			Name: "affirmation", Type: schema.TypeString, Required: false,
			Default: "I give myself permission to slow down and heal.",
		},
	},
}

const therapySystem = `You are a compassionate wellness guide who curates
healing video sessions. Respond with JSON only, no commentary.`

const therapyUser = `The user is feeling: {{feeling}}. Recommend healing video
sessions as a JSON object with:
- "videos": an array of at least 3 entries, each with "title" (a realistic
  video title), "category" (one of: guided meditation, breathing exercise,
  sound healing, yoga nidra, nature immersion, positive affirmations) and
  "reason" (one sentence on why it helps this feeling)
- "affirmation": one short affirmation for the user to repeat`

var therapyPools = map[string][]string{
	"title": {
		"Ten Minute Calm: Guided Reset for a Racing Mind",
		"Deep Release Breathing for Stress and Tension",
		"Healing Tibetan Bowls for Inner Stillness",
		"Yoga Nidra for Complete Rest and Renewal",
		"Forest Rain Sounds for Letting Go",
		"Morning Affirmations for a Gentle Heart",
		"Ocean Breath Practice for Anxious Moments",
	},
	"reason": {
		"Slow rhythmic guidance helps quiet looping thoughts.",
		"Extending the exhale signals the body it is safe to relax.",
		"Sustained resonant tones give the mind a single soft anchor.",
		"Systematic relaxation restores energy without needing sleep.",
		"Natural soundscapes lower arousal without demanding attention.",
		"Spoken encouragement rebuilds a kinder inner voice.",
	},
	"affirmation": {
		"I give myself permission to slow down and heal.",
		"Each breath carries me closer to calm.",
		"I am allowed to rest before I am exhausted.",
		"Peace is already within me; I only need to make room for it.",
	},
}

// VideoTherapy returns the healing video recommendation feature definition
func VideoTherapy(p Params) orchestrator.Feature[TherapyPlan] {
	return orchestrator.Feature[TherapyPlan]{
		Key:      KeyVideoTherapy,
		Contract: therapyContract,
		Template: prompt.Template{
			System:      therapySystem,
			User:        therapyUser,
			Model:       p.Model,
			Temperature: p.Temperature,
			MaxTokens:   p.MaxTokens,
		},
		Retry:      p.Retry,
		Synthesize: synthesizeTherapyPlan,
		MediaQueries: func(plan TherapyPlan) []string {
			queries := make([]string, len(plan.Videos))
			for i, v := range plan.Videos {
				queries[i] = fmt.Sprintf("%s %s", v.Title, v.Category)
			}
			return queries
		},
		AttachMedia: func(plan *TherapyPlan, candidates []media.Candidate) {
			for i := range plan.Videos {
				if i < len(candidates) && candidates[i].Verified {
					plan.Videos[i].VideoID = candidates[i].ResolvedID
				}
			}
		},
	}
}

func synthesizeTherapyPlan(_ orchestrator.Request, p *fallback.Picker) TherapyPlan {
	titles := p.Sample(therapyPools["title"], 3)
	videos := make([]TherapyVideo, len(titles))
	for i, title := range titles {
		videos[i] = TherapyVideo{
			Title:    title,
			Category: p.String(TherapyCategories),
			Reason:   p.String(therapyPools["reason"]),
		}
	}
	return TherapyPlan{
		Videos:      videos,
		Affirmation: p.String(therapyPools["affirmation"]),
	}
}

// TherapyBroadener drops the generated title and keeps the category so the
// broadened search still lands in the right kind of content
func TherapyBroadener(query string) string {
	lowered := strings.ToLower(query)
	for _, category := range TherapyCategories {
		if strings.Contains(lowered, category) {
			return category + " video"
		}
	}
	return "guided meditation video"
}
