// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package generate

import (
	"strings"
	"testing"

	"github.com/pdiddy/copy-engine/pkg/types"
)

func TestBuildPromptWithProfile(t *testing.T) {
	params := types.DefaultParameters()
	params.Tone = "bold"
	params.VoiceStrength = 0.8
	params.EnrichKeywords = true

	prof := &types.AuthorProfile{
		Name:     "field-engineer",
		Language: "de",
		Markers:  []string{"im Grunde", "auf der Baustelle"},
	}

	prompt, err := BuildPrompt("torque-wrench-nx", "description", "catalog", params, prof)
	if err != nil {
		t.Fatalf("BuildPrompt: %v", err)
	}

	for _, want := range []string{
		"torque-wrench-nx",
		"description",
		"Publication domain: catalog",
		"Tone: bold.",
		"keywords a buyer would search for",
		"voice of field-engineer",
		"im Grunde; auf der Baustelle",
		"Write in German.",
		"the voice must be unmistakable",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q:\n%s", want, prompt)
		}
	}
}

func TestBuildPromptWithoutProfile(t *testing.T) {
	prompt, err := BuildPrompt("oak-shelf", "tagline", "", types.ParameterBundle{}, nil)
	if err != nil {
		t.Fatalf("BuildPrompt: %v", err)
	}

	if strings.Contains(prompt, "voice of") {
		t.Error("prompt must not mention a persona without a profile")
	}
	if strings.Contains(prompt, "Publication domain") {
		t.Error("empty domain must not render a domain line")
	}
	if !strings.Contains(prompt, "Tone: neutral.") {
		t.Error("empty tone must default to neutral")
	}
}

func TestBuildPromptSoftVoice(t *testing.T) {
	params := types.DefaultParameters()
	params.VoiceStrength = 0.3
	prof := &types.AuthorProfile{Name: "casual", Language: "en", Markers: []string{"frankly"}}

	prompt, err := BuildPrompt("item", "description", "", params, prof)
	if err != nil {
		t.Fatalf("BuildPrompt: %v", err)
	}
	if strings.Contains(prompt, "unmistakable") {
		t.Error("low voice strength must not demand an unmistakable voice")
	}
}

func TestBuildPromptDeterministic(t *testing.T) {
	params := types.DefaultParameters()
	prof := &types.AuthorProfile{Name: "p", Language: "en", Markers: []string{"a", "b"}}

	first, err := BuildPrompt("s", "c", "d", params, prof)
	if err != nil {
		t.Fatal(err)
	}
	again, err := BuildPrompt("s", "c", "d", params, prof)
	if err != nil {
		t.Fatal(err)
	}
	if first != again {
		t.Error("identical inputs must render identical prompts")
	}
}
