package vibe

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockCompleter struct {
	mock.Mock
}

func (m *MockCompleter) Configured() bool {
	return m.Called().Bool(0)
}

func (m *MockCompleter) Complete(ctx context.Context, prompt string, temperature float64) (string, error) {
	args := m.Called(ctx, prompt, temperature)
	return args.String(0), args.Error(1)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		body map[string]any
		errs map[string]string
	}{
		{
			name: "valid",
			body: map[string]any{"projectIdea": "A mood playlist app", "name": "Jane"},
			errs: map[string]string{},
		},
		{
			name: "missing everything",
			body: map[string]any{},
			errs: map[string]string{"projectIdea": "projectIdea is required", "name": "name is required"},
		},
		{
			name: "blank strings count as missing",
			body: map[string]any{"projectIdea": "   ", "name": "Jane"},
			errs: map[string]string{"projectIdea": "projectIdea is required"},
		},
		{
			name: "too short",
			body: map[string]any{"projectIdea": "app", "name": "Jane"},
			errs: map[string]string{"projectIdea": "projectIdea must be at least 5 characters"},
		},
		{
			name: "too long",
			body: map[string]any{"projectIdea": strings.Repeat("a", 501), "name": "Jane"},
			errs: map[string]string{"projectIdea": "projectIdea must be no more than 500 characters"},
		},
		{
			name: "wrong types",
			body: map[string]any{"projectIdea": "A mood playlist app", "name": "Jane", "hasExperience": "yes", "toolsUsed": 3.0},
			errs: map[string]string{"hasExperience": "hasExperience must be a boolean", "toolsUsed": "toolsUsed must be a string"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, errs := Validate(tt.body)
			assert.Equal(t, tt.errs, errs)
		})
	}
}

func TestValidateSanitises(t *testing.T) {
	in, errs := Validate(map[string]any{
		"projectIdea":   "  <b>A   \"mood\"\n playlist</b> app ",
		"name":          "Jane",
		"hasExperience": true,
		"toolsUsed":     "Cursor,   Lovable",
	})
	require.Empty(t, errs)
	assert.Equal(t, "bA mood playlist/b app", in.ProjectIdea)
	assert.Equal(t, "Cursor, Lovable", in.ToolsUsed)
	assert.True(t, in.HasExperience)
}

func TestPrompt(t *testing.T) {
	p := Prompt(Input{Name: "Jane", ProjectIdea: "A mood playlist app"})
	assert.Contains(t, p, "participant named Jane")
	assert.Contains(t, p, `Based on their project idea: "A mood playlist app"`)
	assert.Contains(t, p, "Experience level: No previous experience")
	assert.Contains(t, p, "**Reference Vibes:**")

	p = Prompt(Input{Name: "Jane", ProjectIdea: "x", HasExperience: true})
	assert.Contains(t, p, "Experience level: Yes - Tools used: Not specified")

	p = Prompt(Input{Name: "Jane", ProjectIdea: "x", HasExperience: true, ToolsUsed: "Cursor"})
	assert.Contains(t, p, "Experience level: Yes - Tools used: Cursor")
}

func TestGenerate(t *testing.T) {
	ai := new(MockCompleter)
	ai.On("Configured").Return(true)
	ai.On("Complete", mock.Anything, "prompt", 0.7).Return("**Core Purpose:** vibes", nil)

	g := NewGenerator(ai)
	g.now = func() time.Time { return time.Date(2025, 11, 1, 10, 0, 0, 0, time.UTC) }

	res, err := g.Generate(context.Background(), "prompt")
	require.NoError(t, err)
	assert.Equal(t, Result{Success: true, VibeCode: "**Core Purpose:** vibes", Timestamp: "2025-11-01T10:00:00.000Z"}, res)
}

func TestGenerateUnavailable(t *testing.T) {
	ai := new(MockCompleter)
	ai.On("Configured").Return(false)

	_, err := NewGenerator(ai).Generate(context.Background(), "prompt")
	assert.ErrorIs(t, err, ErrUnavailable)
	ai.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything, mock.Anything)
}

func TestGenerateUpstreamError(t *testing.T) {
	ai := new(MockCompleter)
	ai.On("Configured").Return(true)
	ai.On("Complete", mock.Anything, mock.Anything, mock.Anything).Return("", errors.New("boom"))

	_, err := NewGenerator(ai).Generate(context.Background(), "prompt")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrUnavailable)
}
