package mockserver

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Script decides how the mock backend answers a query.
type Script struct {
	Replies  []Reply `yaml:"replies"`
	Fallback string  `yaml:"fallback"`
}

// Reply is one scripted answer. The first entry whose Match is a
// case-insensitive substring of the query wins. A non-empty Error makes the
// server emit an error event instead of tokens.
type Reply struct {
	Match string `yaml:"match"`
	Reply string `yaml:"reply"`
	Error string `yaml:"error"`
}

// DefaultScript answers every query with a short canned reply.
func DefaultScript() *Script {
	return &Script{
		Replies: []Reply{
			{Match: "refund", Reply: "You can refund within 30 days."},
		},
		Fallback: "I could not find that in the documents of this folder.",
	}
}

// LoadScript reads a YAML script from path.
func LoadScript(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read script %s: %w", path, err)
	}
	return ParseScript(data)
}

// ParseScript decodes a YAML script.
func ParseScript(data []byte) (*Script, error) {
	var s Script
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse script: %w", err)
	}
	for i, r := range s.Replies {
		if r.Match == "" {
			return nil, fmt.Errorf("reply %d: match is required", i)
		}
	}
	return &s, nil
}

// Respond returns the token fragments for query, or an error message.
func (s *Script) Respond(query string) (fragments []string, errMsg string) {
	q := strings.ToLower(query)
	reply := s.Fallback
	for _, r := range s.Replies {
		if strings.Contains(q, strings.ToLower(r.Match)) {
			if r.Error != "" {
				return nil, r.Error
			}
			reply = r.Reply
			break
		}
	}
	return Tokenize(reply), ""
}

// Tokenize splits text into word fragments that concatenate back to text.
func Tokenize(text string) []string {
	if text == "" {
		return nil
	}
	return strings.SplitAfter(text, " ")
}
