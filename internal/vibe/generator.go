package vibe

import (
	"context"
	"errors"
	"fmt"
	"time"
)

const (
	// MaxPromptTokens caps the estimated prompt size sent to the model.
	MaxPromptTokens = 2000
	Temperature     = 0.7
)

var ErrUnavailable = errors.New("AI service not configured")

type Completer interface {
	Configured() bool
	Complete(ctx context.Context, prompt string, temperature float64) (string, error)
}

type Result struct {
	Success   bool   `json:"success"`
	VibeCode  string `json:"vibeCode"`
	Timestamp string `json:"timestamp"`
}

type Generator struct {
	ai  Completer
	now func() time.Time
}

func NewGenerator(ai Completer) *Generator {
	return &Generator{ai: ai, now: time.Now}
}

func (g *Generator) Available() bool {
	return g.ai != nil && g.ai.Configured()
}

func (g *Generator) Generate(ctx context.Context, prompt string) (Result, error) {
	if !g.Available() {
		return Result{}, ErrUnavailable
	}

	text, err := g.ai.Complete(ctx, prompt, Temperature)
	if err != nil {
		return Result{}, fmt.Errorf("failed to generate vibe code: %w", err)
	}

	return Result{
		Success:   true,
		VibeCode:  text,
		Timestamp: g.now().UTC().Format("2006-01-02T15:04:05.000Z"),
	}, nil
}
