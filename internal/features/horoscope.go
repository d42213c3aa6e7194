package features

import (
	"github.com/your-org/aura-wellness-engine/internal/fallback"
	"github.com/your-org/aura-wellness-engine/internal/orchestrator"
	"github.com/your-org/aura-wellness-engine/internal/prompt"
	"github.com/your-org/aura-wellness-engine/internal/schema"
)

// DayReading is one day's entry in a three-day horoscope
type DayReading struct {
	Prediction  string `json:"prediction"`
	Color       string `json:"color"`
	LuckyNumber int    `json:"lucky_number"`
}

// HoroscopeReading is the three-day structure returned to the caller
type HoroscopeReading struct {
	Yesterday DayReading `json:"yesterday"`
	Today     DayReading `json:"today"`
	Tomorrow  DayReading `json:"tomorrow"`
}

var horoscopeDayFields = []schema.Field{
	{Name: "prediction", Type: schema.TypeString, Required: true},
	{Name: "color", Type: schema.TypeString, Required: true},
	{Name: "lucky_number", Type: schema.TypeNumber, Required: true, Bounded: true, Min: 1, Max: 99},
}

var horoscopeContract = schema.Contract{
	Name: KeyHoroscope,
	Fields: []schema.Field{
		{Name: "yesterday", Type: schema.TypeObject, Required: true, Fields: horoscopeDayFields},
		{Name: "today", Type: schema.TypeObject, Required: true, Fields: horoscopeDayFields},
		{Name: "tomorrow", Type: schema.TypeObject, Required: true, Fields: horoscopeDayFields},
	},
}

const horoscopeSystem = `You are a warm, insightful Vedic astrologer. You write
encouraging daily horoscopes that blend traditional symbolism with practical
guidance. Respond with JSON only, no commentary.`

const horoscopeUser = `Write a three-day horoscope for the zodiac sign {{sign}},
centered on {{date}}. Return a JSON object with keys "yesterday", "today" and
"tomorrow". Each day must have:
- "prediction": two to three sentences of guidance
- "color": the day's lucky color
- "lucky_number": a number between 1 and 99`

var horoscopePools = map[string][]string{
	"prediction": {
		"The planets encourage patience today. A conversation you have been postponing will go better than expected, and a small act of kindness returns to you threefold.",
		"Your intuition is unusually sharp. Trust the first answer that comes to you and avoid second-guessing decisions already made.",
		"Energy flows toward home and family matters. Tending to your own rest now clears the way for an opportunity later in the week.",
		"A creative spark wants your attention. Give it even ten minutes and it will repay you with clarity about a lingering question.",
		"Steady effort beats bold moves under this sky. Finish what is half done before reaching for anything new.",
		"An unexpected message brings a welcome shift in perspective. Stay open to plans changing in your favor.",
		"Generosity is your compass today. What you share freely, whether time or attention, strengthens a bond you value.",
		"The day favors quiet confidence. Let your work speak first and the recognition you seek will follow on its own.",
	},
	"color": {
		"Saffron", "Emerald Green", "Royal Blue", "Silver", "Gold",
		"Lavender", "Crimson", "Turquoise", "White", "Peach",
	},
}

// Horoscope returns the three-day horoscope feature definition
func Horoscope(p Params) orchestrator.Feature[HoroscopeReading] {
	return orchestrator.Feature[HoroscopeReading]{
		Key:      KeyHoroscope,
		Contract: horoscopeContract,
		Template: prompt.Template{
			System:      horoscopeSystem,
			User:        horoscopeUser,
			Model:       p.Model,
			Temperature: p.Temperature,
			MaxTokens:   p.MaxTokens,
		},
		Retry:      p.Retry,
		Synthesize: synthesizeHoroscope,
	}
}

// synthesizeHoroscope samples each day independently so the three entries
// are not required to agree
func synthesizeHoroscope(_ orchestrator.Request, p *fallback.Picker) HoroscopeReading {
	day := func() DayReading {
		return DayReading{
			Prediction:  p.String(horoscopePools["prediction"]),
			Color:       p.String(horoscopePools["color"]),
			LuckyNumber: p.IntBetween(1, 99),
		}
	}
	return HoroscopeReading{
		Yesterday: day(),
		Today:     day(),
		Tomorrow:  day(),
	}
}
