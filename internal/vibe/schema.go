// Package vibe turns a project idea into an AI-written creative brief.
package vibe

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

type Input struct {
	ProjectIdea   string `json:"projectIdea"`
	Name          string `json:"name"`
	ToolsUsed     string `json:"toolsUsed,omitempty"`
	HasExperience bool   `json:"hasExperience"`
}

type rule struct {
	field    string
	required bool
	kind     string
	min, max int
	sanitize bool
}

var schema = []rule{
	{field: "projectIdea", required: true, kind: "string", min: 5, max: 500, sanitize: true},
	{field: "hasExperience", kind: "boolean"},
	{field: "toolsUsed", kind: "string", max: 200, sanitize: true},
	{field: "name", required: true, kind: "string", min: 1, max: 100, sanitize: true},
}

// Validate checks a decoded JSON body against the request schema and returns
// the sanitised input. errs maps field name to message and is empty when the
// body is valid.
func Validate(body map[string]any) (Input, map[string]string) {
	errs := map[string]string{}
	clean := map[string]any{}

	for _, r := range schema {
		v, present := body[r.field]
		if s, ok := v.(string); ok && strings.TrimSpace(s) == "" {
			present = false
		}
		if v == nil {
			present = false
		}

		if !present {
			if r.required {
				errs[r.field] = r.field + " is required"
			}
			continue
		}

		switch r.kind {
		case "boolean":
			b, ok := v.(bool)
			if !ok {
				errs[r.field] = r.field + " must be a boolean"
				continue
			}
			clean[r.field] = b
		case "string":
			s, ok := v.(string)
			if !ok {
				errs[r.field] = r.field + " must be a string"
				continue
			}
			n := utf8.RuneCountInString(s)
			if r.min > 0 && n < r.min {
				errs[r.field] = fmt.Sprintf("%s must be at least %d characters", r.field, r.min)
				continue
			}
			if r.max > 0 && n > r.max {
				errs[r.field] = fmt.Sprintf("%s must be no more than %d characters", r.field, r.max)
				continue
			}
			if r.sanitize {
				s = Sanitize(s)
			}
			clean[r.field] = s
		}
	}

	in := Input{}
	in.ProjectIdea, _ = clean["projectIdea"].(string)
	in.Name, _ = clean["name"].(string)
	in.ToolsUsed, _ = clean["toolsUsed"].(string)
	in.HasExperience, _ = clean["hasExperience"].(bool)
	return in, errs
}

var (
	markupChars = regexp.MustCompile(`[<>"']`)
	whitespace  = regexp.MustCompile(`\s+`)
)

// Sanitize trims, drops <>"' and NUL bytes and collapses whitespace runs.
func Sanitize(s string) string {
	s = strings.TrimSpace(s)
	s = markupChars.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, "\x00", "")
	return whitespace.ReplaceAllString(s, " ")
}
