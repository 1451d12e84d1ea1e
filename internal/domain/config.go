package domain

// Tunable request parameters. These are the only valid keys of
// RequestConfig.ParameterEnabled.
const (
	ParamTemperature      = "temperature"
	ParamTopP             = "top_p"
	ParamMaxTokens        = "max_tokens"
	ParamFrequencyPenalty = "frequency_penalty"
	ParamPresencePenalty  = "presence_penalty"
	ParamSeed             = "seed"
)

// TunableParameters lists the tunable parameters in payload order.
var TunableParameters = []string{
	ParamTemperature,
	ParamTopP,
	ParamMaxTokens,
	ParamFrequencyPenalty,
	ParamPresencePenalty,
	ParamSeed,
}

// IsTunableParameter reports whether name is a tunable parameter.
func IsTunableParameter(name string) bool {
	for _, p := range TunableParameters {
		if p == name {
			return true
		}
	}
	return false
}

// Inputs holds the structured request inputs edited in the playground.
type Inputs struct {
	Model            string   `json:"model"`
	Group            string   `json:"group"`
	Temperature      float64  `json:"temperature"`
	TopP             float64  `json:"top_p"`
	MaxTokens        int      `json:"max_tokens"`
	FrequencyPenalty float64  `json:"frequency_penalty"`
	PresencePenalty  float64  `json:"presence_penalty"`
	Seed             *int64   `json:"seed"`
	Stream           bool     `json:"stream"`
	ImageEnabled     bool     `json:"imageEnabled"`
	ImageURLs        []string `json:"imageUrls"`
}

// RequestConfig is the complete playground request configuration.
type RequestConfig struct {
	Inputs            Inputs          `json:"inputs"`
	ParameterEnabled  map[string]bool `json:"parameterEnabled"`
	SystemPrompt      string          `json:"systemPrompt"`
	ShowDebugPanel    bool            `json:"showDebugPanel"`
	CustomRequestMode bool            `json:"customRequestMode"`
	CustomRequestBody string          `json:"customRequestBody"`
}

// DefaultRequestConfig returns the configuration a new session starts with.
func DefaultRequestConfig() RequestConfig {
	return RequestConfig{
		Inputs: Inputs{
			Model:            "gpt-4o",
			Temperature:      0.7,
			TopP:             1,
			MaxTokens:        4096,
			FrequencyPenalty: 0,
			PresencePenalty:  0,
			Stream:           true,
			ImageURLs:        []string{""},
		},
		ParameterEnabled: map[string]bool{
			ParamTemperature:      true,
			ParamTopP:             true,
			ParamMaxTokens:        false,
			ParamFrequencyPenalty: true,
			ParamPresencePenalty:  true,
			ParamSeed:             false,
		},
	}
}

// Clone returns a deep copy of c.
func (c RequestConfig) Clone() RequestConfig {
	out := c
	if c.Inputs.Seed != nil {
		seed := *c.Inputs.Seed
		out.Inputs.Seed = &seed
	}
	if c.Inputs.ImageURLs != nil {
		out.Inputs.ImageURLs = append([]string(nil), c.Inputs.ImageURLs...)
	}
	if c.ParameterEnabled != nil {
		out.ParameterEnabled = make(map[string]bool, len(c.ParameterEnabled))
		for k, v := range c.ParameterEnabled {
			out.ParameterEnabled[k] = v
		}
	}
	return out
}

// Payload is the JSON object sent to the chat completion endpoint.
type Payload map[string]interface{}
