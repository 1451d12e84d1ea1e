package playground

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"

	"github.com/xiaot623/gogo/playground/internal/domain"
)

// errNotObject is wrapped in a JSONParseError when a custom body is valid
// JSON but not an object.
var errNotObject = errors.New("request body must be a JSON object")

// BuildRequest assembles the chat completion payload from a configuration
// snapshot and the conversation history. It has no side effects.
func BuildRequest(cfg domain.RequestConfig, history []domain.Message) (domain.Payload, error) {
	if cfg.CustomRequestMode {
		return parseCustomBody(cfg.CustomRequestBody)
	}

	in := cfg.Inputs
	payload := domain.Payload{
		"model":    in.Model,
		"stream":   in.Stream,
		"messages": buildMessages(cfg, history),
	}
	if in.Group != "" {
		payload["group"] = in.Group
	}

	for _, name := range domain.TunableParameters {
		if !cfg.ParameterEnabled[name] {
			continue
		}
		switch name {
		case domain.ParamTemperature:
			payload[name] = in.Temperature
		case domain.ParamTopP:
			payload[name] = in.TopP
		case domain.ParamMaxTokens:
			payload[name] = in.MaxTokens
		case domain.ParamFrequencyPenalty:
			payload[name] = in.FrequencyPenalty
		case domain.ParamPresencePenalty:
			payload[name] = in.PresencePenalty
		case domain.ParamSeed:
			if in.Seed != nil {
				payload[name] = *in.Seed
			}
		}
	}
	return payload, nil
}

func parseCustomBody(body string) (domain.Payload, error) {
	dec := json.NewDecoder(strings.NewReader(body))
	dec.UseNumber()

	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return nil, &domain.JSONParseError{Source: "customRequestBody", Err: err}
	}
	if dec.More() {
		return nil, &domain.JSONParseError{Source: "customRequestBody", Err: errors.New("unexpected data after JSON value")}
	}
	obj, ok := v.(map[string]interface{})
	if !ok {
		return nil, &domain.JSONParseError{Source: "customRequestBody", Err: errNotObject}
	}
	return domain.Payload(obj), nil
}

func buildMessages(cfg domain.RequestConfig, history []domain.Message) []interface{} {
	messages := make([]interface{}, 0, len(history)+1)
	if strings.TrimSpace(cfg.SystemPrompt) != "" {
		messages = append(messages, map[string]interface{}{
			"role":    string(domain.RoleSystem),
			"content": cfg.SystemPrompt,
		})
	}

	lastUser := -1
	for _, m := range history {
		if m.Status != domain.MessageStatusComplete {
			continue
		}
		if m.Role == domain.RoleUser {
			lastUser = len(messages)
		}
		messages = append(messages, map[string]interface{}{
			"role":    string(m.Role),
			"content": m.Content,
		})
	}

	images := imageURLs(cfg.Inputs)
	if lastUser >= 0 && len(images) > 0 {
		msg := messages[lastUser].(map[string]interface{})
		parts := []interface{}{
			map[string]interface{}{"type": "text", "text": msg["content"]},
		}
		for _, u := range images {
			parts = append(parts, map[string]interface{}{
				"type":      "image_url",
				"image_url": map[string]interface{}{"url": u},
			})
		}
		msg["content"] = parts
	}
	return messages
}

func imageURLs(in domain.Inputs) []string {
	if !in.ImageEnabled {
		return nil
	}
	var urls []string
	for _, u := range in.ImageURLs {
		if u = strings.TrimSpace(u); u != "" {
			urls = append(urls, u)
		}
	}
	return urls
}

// EncodePayload renders a payload as indented JSON for the debug views.
func EncodePayload(p domain.Payload) (json.RawMessage, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(p); err != nil {
		return nil, err
	}
	return json.RawMessage(bytes.TrimRight(buf.Bytes(), "\n")), nil
}
