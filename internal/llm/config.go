package llm

import "time"

// CallKind identifies why a completion was requested.
type CallKind string

const (
	CallExtract CallKind = "extract"
	CallProbe   CallKind = "probe"
)

// Config holds the chat-completion endpoint settings.
type Config struct {
	Endpoint       string
	Model          string
	Timeout        time.Duration // per attempt
	MaxRetries     int
	Temperature    float64
	MaxTokens      int
	ProbeMaxTokens int
}

// DefaultConfig returns settings for the hosted deepseek-chat endpoint.
// Temperature is kept low to favor well-formed JSON.
func DefaultConfig() Config {
	return Config{
		Endpoint:       "https://api.deepseek.com/v1",
		Model:          "deepseek-chat",
		Timeout:        60 * time.Second,
		MaxRetries:     1,
		Temperature:    0.3,
		MaxTokens:      2000,
		ProbeMaxTokens: 5,
	}
}
