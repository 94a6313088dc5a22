package api

import (
	"strings"
	"testing"

	"github.com/anthropics/anthropic-sdk-go"
)

func TestNewClientRequiresAPIKey(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")

	_, err := NewClient(ClientConfig{})
	if err == nil {
		t.Fatal("NewClient() = nil error without an API key")
	}
	if !strings.Contains(err.Error(), "ANTHROPIC_API_KEY") {
		t.Errorf("error = %v, want mention of ANTHROPIC_API_KEY", err)
	}
}

func TestNewClientDefaultsVisionModel(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "test-key")

	c, err := NewClient(ClientConfig{Model: anthropic.ModelClaudeSonnet4_20250514})
	if err != nil {
		t.Fatal(err)
	}
	if c.VisionModel() != c.Model() {
		t.Errorf("VisionModel = %s, want it to default to Model %s", c.VisionModel(), c.Model())
	}
}

func TestTranslateModelForBedrock(t *testing.T) {
	tests := []struct {
		name  string
		model anthropic.Model
		want  string
	}{
		{
			name:  "known model",
			model: anthropic.ModelClaudeSonnet4_20250514,
			want:  "us.anthropic.claude-sonnet-4-20250514-v1:0",
		},
		{
			name:  "already bedrock format",
			model: anthropic.Model("us.anthropic.claude-sonnet-4-20250514-v1:0"),
			want:  "us.anthropic.claude-sonnet-4-20250514-v1:0",
		},
		{
			name:  "custom model passes through",
			model: anthropic.Model("my-custom-model"),
			want:  "my-custom-model",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := translateModelForBedrock(tt.model); string(got) != tt.want {
				t.Errorf("translateModelForBedrock(%s) = %s, want %s", tt.model, got, tt.want)
			}
		})
	}
}

func TestTokenTracker(t *testing.T) {
	tracker := NewTokenTracker()

	tracker.Add(100, 50)
	tracker.Add(200, 75)

	input, output := tracker.Total()
	if input != 300 {
		t.Errorf("input = %d, want 300", input)
	}
	if output != 125 {
		t.Errorf("output = %d, want 125", output)
	}
	if tracker.Calls() != 2 {
		t.Errorf("calls = %d, want 2", tracker.Calls())
	}

	if tracker.Cost() <= 0 {
		t.Error("cost should be positive after usage")
	}

	tracker.Reset()
	input, output = tracker.Total()
	if input != 0 || output != 0 || tracker.Calls() != 0 {
		t.Errorf("after Reset: input=%d output=%d calls=%d, want zeros", input, output, tracker.Calls())
	}
}
