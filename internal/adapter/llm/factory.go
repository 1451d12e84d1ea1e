package llm

import (
	"log"
	"time"
)

// ModeMock selects the scripted mock upstream.
const ModeMock = "MOCK"

// NewLLMClient creates an upstream client for the given mode. ModeMock
// returns a MockClient; anything else returns a real Client.
func NewLLMClient(mode, baseURL, apiKey, userID string, timeout time.Duration) LLMClient {
	if mode == ModeMock {
		log.Println("PLAYGROUND_MODE=MOCK detected, using mock LLM client")
		return NewMockClient()
	}

	return NewClient(baseURL, apiKey, userID, timeout)
}
