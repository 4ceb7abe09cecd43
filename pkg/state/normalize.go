package state

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	jsonFence  = regexp.MustCompile("```json\\s*")
	plainFence = regexp.MustCompile("```\\s*")
)

// ExtractJSON recovers the JSON document embedded in narrator output.
// Code fences are removed and the text is cut to the span between the first
// opening brace or bracket and the last closing one.
func ExtractJSON(raw string) ([]byte, error) {
	s := jsonFence.ReplaceAllString(raw, "")
	s = plainFence.ReplaceAllString(s, "")
	s = strings.TrimSpace(s)

	start := strings.IndexAny(s, "{[")
	end := strings.LastIndexAny(s, "}]")
	if start < 0 || end < start {
		return nil, fmt.Errorf("%w: no JSON object found", ErrMalformedResponse)
	}
	return []byte(s[start : end+1]), nil
}

// decodeLenient unmarshals data into v. Type mismatches on individual fields
// are tolerated: encoding/json keeps decoding after such an error, so the
// fields that could be read are kept.
func decodeLenient(data []byte, v any) error {
	err := json.Unmarshal(data, v)
	if err == nil {
		return nil
	}
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return nil
	}
	return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
}

// firstObject returns data, or the first object element if data is an array.
func firstObject(data []byte) ([]byte, error) {
	if len(data) == 0 || data[0] != '[' {
		return data, nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	for _, it := range items {
		if it = bytes.TrimSpace(it); len(it) > 0 && it[0] == '{' {
			return it, nil
		}
	}
	return nil, fmt.Errorf("%w: array holds no object", ErrMalformedResponse)
}

// ParseTurnResponse normalizes raw narrator output into a TurnResponse.
// The only error it returns wraps ErrMalformedResponse; fields with the wrong
// type are skipped rather than rejected.
func ParseTurnResponse(raw string) (*TurnResponse, error) {
	data, err := ExtractJSON(raw)
	if err != nil {
		return nil, err
	}
	if data, err = firstObject(data); err != nil {
		return nil, err
	}
	var resp TurnResponse
	if err := decodeLenient(data, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SummaryResponse is the narrator reply to a summary request.
type SummaryResponse struct {
	Summary string          `json:"summary"`
	Memory  json.RawMessage `json:"memory,omitempty"`
}

// ParseSummaryResponse reads a summary reply. Plain prose without JSON is
// accepted as the summary text itself.
func ParseSummaryResponse(raw string) (*SummaryResponse, error) {
	data, err := ExtractJSON(raw)
	if err != nil {
		text := strings.TrimSpace(raw)
		if text == "" {
			return nil, err
		}
		return &SummaryResponse{Summary: text}, nil
	}
	if data, err = firstObject(data); err != nil {
		return nil, err
	}
	var resp SummaryResponse
	if err := decodeLenient(data, &resp); err != nil {
		return nil, err
	}
	resp.Summary = strings.TrimSpace(resp.Summary)
	if resp.Summary == "" {
		return nil, fmt.Errorf("%w: summary is empty", ErrMalformedResponse)
	}
	return &resp, nil
}

// ParseSkillResponse reads a single skill, as returned for a fusion request.
// The skill may be the whole object or sit under a "skill" key.
func ParseSkillResponse(raw string) (*SkillUpdate, error) {
	data, err := ExtractJSON(raw)
	if err != nil {
		return nil, err
	}
	if data, err = firstObject(data); err != nil {
		return nil, err
	}
	var wrapped struct {
		Skill *SkillUpdate `json:"skill"`
	}
	var skill SkillUpdate
	if err := decodeLenient(data, &wrapped); err != nil {
		return nil, err
	}
	if wrapped.Skill != nil {
		skill = *wrapped.Skill
	} else if err := decodeLenient(data, &skill); err != nil {
		return nil, err
	}
	if trimSpace(skill.Name) == "" {
		return nil, fmt.Errorf("%w: skill has no name", ErrMalformedResponse)
	}
	return &skill, nil
}
