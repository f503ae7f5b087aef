// Package reply recovers a JSON object from free-form model output.
package reply

import (
	"errors"
	"fmt"
	"strings"

	"ogarx/internal/jsonvalue"
)

const (
	jsonFence    = "```json"
	genericFence = "```"

	// RawTextKey is the single field used when a reply carries no JSON.
	RawTextKey = "raw_text"
)

// ErrMalformedBlock is returned when a fenced block was found but its
// contents are not a JSON object.
var ErrMalformedBlock = errors.New("fenced block does not contain a JSON object")

// Source records which recovery step produced a result.
type Source int

const (
	SourceDirect Source = iota
	SourceJSONFence
	SourceGenericFence
	SourceRawText
)

func (s Source) String() string {
	switch s {
	case SourceDirect:
		return "direct"
	case SourceJSONFence:
		return "json_fence"
	case SourceGenericFence:
		return "fence"
	default:
		return "raw_text"
	}
}

// Recovered is the outcome of a successful Parse.
type Recovered struct {
	Value  jsonvalue.Value
	Source Source
}

// Parse applies the recovery steps in order and returns the first success:
//
//  1. the whole text is a JSON object;
//  2. the text after the first "```json" marker, up to the next "```";
//  3. the text between the first two "```" markers;
//  4. {"raw_text": text}.
//
// Steps 2 and 3 do not fall through: once a fence is found its contents
// must parse, otherwise ErrMalformedBlock is returned.
func Parse(text string) (Recovered, error) {
	if v, err := jsonvalue.ParseString(text); err == nil && v.IsObject() {
		return Recovered{Value: v, Source: SourceDirect}, nil
	}

	if i := strings.Index(text, jsonFence); i >= 0 {
		return parseBlock(text[i+len(jsonFence):], SourceJSONFence)
	}

	if i := strings.Index(text, genericFence); i >= 0 {
		return parseBlock(text[i+len(genericFence):], SourceGenericFence)
	}

	return Recovered{
		Value:  jsonvalue.ObjectValue(jsonvalue.Field(RawTextKey, jsonvalue.StringValue(text))),
		Source: SourceRawText,
	}, nil
}

// parseBlock reads up to the closing fence, or to the end of the text when
// the block is never closed.
func parseBlock(rest string, src Source) (Recovered, error) {
	if j := strings.Index(rest, genericFence); j >= 0 {
		rest = rest[:j]
	}
	block := strings.TrimSpace(rest)

	v, err := jsonvalue.ParseString(block)
	if err != nil {
		return Recovered{}, fmt.Errorf("%w: %v (block: %s)", ErrMalformedBlock, err, truncate(block, 200))
	}
	if !v.IsObject() {
		return Recovered{}, fmt.Errorf("%w: found %s", ErrMalformedBlock, v.Kind())
	}
	return Recovered{Value: v, Source: src}, nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
