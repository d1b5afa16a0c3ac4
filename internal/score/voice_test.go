// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package score

import (
	"strings"
	"testing"

	"github.com/pdiddy/copy-engine/pkg/types"
)

func englishProfile(markers ...string) *types.AuthorProfile {
	return &types.AuthorProfile{
		Name:     "field-engineer",
		Language: "en",
		Markers:  markers,
	}
}

func TestVoiceLanguageMismatch(t *testing.T) {
	s := NewScorer()
	// Unambiguously German text against an English profile. The marker is
	// present, which must not rescue the score: the language check runs
	// first and is unconditional.
	profile := englishProfile("in practice")
	text := "Der schnelle braune Fuchs springt über den faulen Hund, in practice, und läuft durch den dunklen Wald zurück in die kleine Stadt."

	voice, issues := s.voiceAuthenticity(text, profile)
	if voice != 0 {
		t.Fatalf("voice = %v for language mismatch, want exactly 0", voice)
	}

	critical := false
	for _, is := range issues {
		if is.Category == types.IssueLanguageMismatch && is.Severity == types.SeverityCritical {
			critical = true
		}
	}
	if !critical {
		t.Fatal("expected a critical language-mismatch issue")
	}
}

func TestVoiceMarkerDistribution(t *testing.T) {
	s := NewScorer()

	tests := []struct {
		name string
		text string
		// cmp compares against the no-marker reference score.
		wantAbove bool
	}{
		{
			name:      "markers naturally distributed",
			text:      "In practice the clamp holds steady under load. The jaws bite evenly across hardwood and softwood alike without marring the face. On site that reliability saves a full round of rework.",
			wantAbove: true,
		},
		{
			name:      "no markers at all",
			text:      "The clamp holds steady under load. The jaws bite evenly across hardwood and softwood alike. That reliability saves a full round of rework.",
			wantAbove: false,
		},
	}

	profile := englishProfile("in practice", "on site", "rule of thumb")
	var scores []float64
	for _, tt := range tests {
		voice, _ := s.voiceAuthenticity(tt.text, profile)
		scores = append(scores, voice)
	}
	if scores[0] <= scores[1] {
		t.Errorf("distributed markers scored %v, zero markers %v; want distributed > zero", scores[0], scores[1])
	}
	if scores[1] >= voiceBase {
		t.Errorf("zero markers scored %v, want heavy penalty below base %v", scores[1], voiceBase)
	}
}

func TestVoiceExcessiveMarkersPenalized(t *testing.T) {
	s := NewScorer()
	profile := englishProfile("in practice")

	balanced := "In practice the blade stays sharp. The handle is comfortable over long sessions and the balance feels right. In practice that is what a working tool needs."
	stuffed := "In practice, in practice, in practice, in practice, in practice, in practice the blade stays sharp and the handle is comfortable for long working sessions."

	b, _ := s.voiceAuthenticity(balanced, profile)
	x, issues := s.voiceAuthenticity(stuffed, profile)
	if x >= b {
		t.Errorf("stuffed markers scored %v, balanced %v; want stuffed < balanced", x, b)
	}
	if !hasCategory(issues, types.IssueMarkerImbalance) {
		t.Error("expected a marker-imbalance issue for excessive markers")
	}
}

func TestVoiceTranslationArtifacts(t *testing.T) {
	s := NewScorer()
	profile := englishProfile("in practice")
	profile.TranslationArtifacts = []string{"make a photo", "functionality of working"}

	clean := "In practice the camera mount locks in one motion and keeps the shot level on uneven ground."
	tainted := "In practice you can make a photo in one motion and the functionality of working stays level on uneven ground."

	c, _ := s.voiceAuthenticity(clean, profile)
	a, issues := s.voiceAuthenticity(tainted, profile)
	if a >= c {
		t.Errorf("artifact text scored %v, clean %v; want artifact < clean", a, c)
	}
	if !hasCategory(issues, types.IssueTranslationArtifact) {
		t.Error("expected a translation-artifact issue")
	}
}

func TestMarkerSpread(t *testing.T) {
	tests := []struct {
		name          string
		text          string
		markers       []string
		wantCount     int
		wantClustered bool
	}{
		{
			name:      "no markers",
			text:      strings.Repeat("plain text ", 20),
			markers:   []string{"in practice"},
			wantCount: 0,
		},
		{
			name:          "clustered in opening span",
			text:          "in practice on site " + strings.Repeat("filler words here ", 30),
			markers:       []string{"in practice", "on site"},
			wantCount:     2,
			wantClustered: true,
		},
		{
			name:          "spread across the text",
			text:          "in practice " + strings.Repeat("filler words here ", 30) + " on site",
			markers:       []string{"in practice", "on site"},
			wantCount:     2,
			wantClustered: false,
		},
		{
			name:      "single occurrence never clustered",
			text:      "in practice " + strings.Repeat("filler ", 10),
			markers:   []string{"in practice"},
			wantCount: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			count, clustered := markerSpread(strings.ToLower(tt.text), tt.markers)
			if count != tt.wantCount {
				t.Errorf("count = %d, want %d", count, tt.wantCount)
			}
			if clustered != tt.wantClustered {
				t.Errorf("clustered = %v, want %v", clustered, tt.wantClustered)
			}
		})
	}
}

func hasCategory(issues []types.ValidationIssue, category string) bool {
	for _, is := range issues {
		if is.Category == category {
			return true
		}
	}
	return false
}
