package connector

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/bytedance/sonic"

	"github.com/GriffinCanCode/modxel/internal/domain/element"
)

// Envelope is the JSON body of every connector response
type Envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Total   json.RawMessage `json:"total,omitempty"`
	Results json.RawMessage `json:"results,omitempty"`
	Object  json.RawMessage `json:"object,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// FieldError is one entry of the data list on a failed request
type FieldError struct {
	ID  string `json:"id"`
	Msg string `json:"msg"`
}

// DecodeEnvelope parses a response body
func DecodeEnvelope(body []byte) (*Envelope, error) {
	var env Envelope
	if err := sonic.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &env, nil
}

// Elements decodes the list payload as elements
func (e *Envelope) Elements() ([]element.Element, error) {
	var out []element.Element
	if err := decodeList(e.Results, &out); err != nil {
		return nil, fmt.Errorf("failed to decode elements: %w", err)
	}
	return out, nil
}

// Categories decodes the list payload as categories
func (e *Envelope) Categories() ([]element.Category, error) {
	var out []element.Category
	if err := decodeList(e.Results, &out); err != nil {
		return nil, fmt.Errorf("failed to decode categories: %w", err)
	}
	return out, nil
}

// Element decodes the single-result payload. An empty or list-shaped
// object yields the zero element.
func (e *Envelope) Element() (element.Element, error) {
	var out element.Element
	if !isObject(e.Object) {
		return out, nil
	}
	if err := sonic.Unmarshal(e.Object, &out); err != nil {
		return out, fmt.Errorf("failed to decode element: %w", err)
	}
	return out, nil
}

// Token returns object.token from a login response
func (e *Envelope) Token() string {
	return e.objectField("token")
}

// Code returns object.code as text; numeric and string codes compare equal
func (e *Envelope) Code() string {
	return e.objectField("code")
}

// FieldErrors decodes the data list
func (e *Envelope) FieldErrors() []FieldError {
	var out []FieldError
	if err := decodeList(e.Data, &out); err != nil {
		return nil
	}
	return out
}

// FirstMessage returns the message to show for a failed request
func (e *Envelope) FirstMessage() string {
	for _, fe := range e.FieldErrors() {
		if fe.Msg != "" {
			return fe.Msg
		}
	}
	if e.Message != "" {
		return e.Message
	}
	return "request failed"
}

func (e *Envelope) objectField(key string) string {
	if !isObject(e.Object) {
		return ""
	}
	var fields map[string]any
	if err := sonic.Unmarshal(e.Object, &fields); err != nil {
		return ""
	}
	switch v := fields[key].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case json.Number:
		return v.String()
	default:
		return ""
	}
}

func isObject(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '{'
}

func decodeList(raw json.RawMessage, out any) error {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil
	}
	return sonic.Unmarshal(trimmed, out)
}
