package voice

import "github.com/rentalneeds/leadflow-backend/pkg/config"

const assistantName = "RentalNeeds AI Assistant"

const systemPrompt = `You are the voice assistant of RentalNeeds, a luxury rent-to-own car company in Dubai.

Your job:
- Welcome the caller warmly.
- Ask what they need: type of car, rental duration and budget.
- Give a short explanation of the rent-to-own process.
- Mention that AI document verification makes approval fast and secure.
- Offer to start pre-qualification. If they agree, tell them to scan their Emirates ID and upload a bank statement on the website.
- Keep every answer to two or three sentences and sound like a Dubai-based sales agent.

Rules:
- Avoid technical details unless the caller asks.
- Partners pay nothing upfront; we work on commission.`

const firstMessage = "Hello! Welcome to RentalNeeds. I'm here to help you find the perfect rent-to-own car in Dubai. What type of vehicle are you looking for?"

// Message is one chat message of the assistant's model prompt.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Model configures the language model behind the assistant.
type Model struct {
	Provider    string    `json:"provider"`
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
}

// Voice selects the speech synthesis voice.
type Voice struct {
	Provider string `json:"provider"`
	VoiceID  string `json:"voiceId"`
}

// Assistant is an inline assistant definition for the voice SDK.
type Assistant struct {
	Name         string `json:"name"`
	Model        Model  `json:"model"`
	Voice        Voice  `json:"voice"`
	FirstMessage string `json:"firstMessage"`
}

// WidgetConfig is what the browser widget needs to start a call. Exactly one
// of AssistantID and Assistant is set.
type WidgetConfig struct {
	PublicKey   string     `json:"public_key"`
	AssistantID string     `json:"assistant_id,omitempty"`
	Assistant   *Assistant `json:"assistant,omitempty"`
}

// NewWidgetConfig builds the widget config, preferring a hosted assistant id
func NewWidgetConfig(cfg config.VoiceConfig) WidgetConfig {
	wc := WidgetConfig{PublicKey: cfg.PublicKey}
	if cfg.AssistantID != "" {
		wc.AssistantID = cfg.AssistantID
		return wc
	}

	model := cfg.Model
	if model == "" {
		model = "gpt-4o"
	}
	voiceID := cfg.VoiceID
	if voiceID == "" {
		voiceID = "jennifer"
	}

	wc.Assistant = &Assistant{
		Name: assistantName,
		Model: Model{
			Provider:    "openai",
			Model:       model,
			Messages:    []Message{{Role: "system", Content: systemPrompt}},
			Temperature: cfg.Temperature,
		},
		Voice:        Voice{Provider: "playht", VoiceID: voiceID},
		FirstMessage: firstMessage,
	}
	return wc
}
