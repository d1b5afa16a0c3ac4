// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package score

import (
	"fmt"
	"math"
	"strings"

	"github.com/pdiddy/copy-engine/pkg/types"
)

// Voice authenticity tuning. The base score assumes language and artifact
// checks pass; marker checks move it up or down from there.
const (
	voiceBase          = 70.0
	artifactPenalty    = 15.0
	zeroMarkerPenalty  = 50.0
	excessMarkerStep   = 10.0
	clusterPenalty     = 15.0
	distributedBonus   = 30.0
	singleMarkerBonus  = 10.0
	markerTargetLow    = 2
	markerTargetHigh   = 4
	minDetectableWords = 4
)

// validProfile checks the structural requirements of an author profile.
// It returns an empty string when the profile is usable, otherwise a
// description of the defect.
func validProfile(p *types.AuthorProfile) string {
	if p.Language == "" {
		return "author profile has no target language"
	}
	if _, ok := supportedLanguages[strings.ToLower(p.Language)]; !ok {
		return fmt.Sprintf("unsupported profile language %q", p.Language)
	}
	if len(p.Markers) == 0 {
		return "author profile has no voice markers"
	}
	return ""
}

// voiceAuthenticity scores text against a validated author profile. Checks
// run in order: language identity, translation-artifact density, then
// marker count and distribution. A detected-language mismatch forces the
// score to zero and raises a critical issue unconditionally, regardless of
// marker count (R3.2).
func (s *Scorer) voiceAuthenticity(text string, profile *types.AuthorProfile) (float64, []types.ValidationIssue) {
	var issues []types.ValidationIssue

	target := s.languages[strings.ToLower(profile.Language)]
	if len(strings.Fields(text)) >= minDetectableWords {
		if detected, ok := s.detector.DetectLanguageOf(text); ok && detected != target {
			issues = append(issues, types.ValidationIssue{
				Category: types.IssueLanguageMismatch,
				Message: fmt.Sprintf("text detected as %s, profile %q expects %s",
					detected, profile.Name, target),
				Severity: types.SeverityCritical,
			})
			return 0, issues
		}
	}

	v := voiceBase

	artifacts := 0
	lower := strings.ToLower(text)
	for _, a := range profile.TranslationArtifacts {
		artifacts += strings.Count(lower, strings.ToLower(a))
	}
	if artifacts > 0 {
		v -= artifactPenalty * float64(artifacts)
		issues = append(issues, types.ValidationIssue{
			Category: types.IssueTranslationArtifact,
			Message:  fmt.Sprintf("%d translation artifact(s) present", artifacts),
			Severity: types.SeverityError,
		})
	}

	count, clustered := markerSpread(lower, profile.Markers)
	switch {
	case count == 0:
		v -= zeroMarkerPenalty
		issues = append(issues, types.ValidationIssue{
			Category: types.IssueMarkerImbalance,
			Message:  "no voice markers present",
			Severity: types.SeverityWarning,
		})
	case count == 1:
		v += singleMarkerBonus
	case count <= markerTargetHigh:
		v += distributedBonus
	default:
		v -= excessMarkerStep * float64(count-markerTargetHigh)
		issues = append(issues, types.ValidationIssue{
			Category: types.IssueMarkerImbalance,
			Message:  fmt.Sprintf("%d voice markers, expected %d-%d", count, markerTargetLow, markerTargetHigh),
			Severity: types.SeverityWarning,
		})
	}
	if clustered && count >= markerTargetLow {
		v -= clusterPenalty
		issues = append(issues, types.ValidationIssue{
			Category: types.IssueMarkerImbalance,
			Message:  "voice markers clustered in one span",
			Severity: types.SeverityWarning,
		})
	}

	return clamp(v), issues
}

// markerSpread counts marker occurrences in lowercased text and reports
// whether they all fall within one quarter of its length.
func markerSpread(lower string, markers []string) (count int, clustered bool) {
	if len(lower) == 0 {
		return 0, false
	}

	minPos, maxPos := math.MaxInt, -1
	for _, m := range markers {
		needle := strings.ToLower(m)
		if needle == "" {
			continue
		}
		from := 0
		for {
			i := strings.Index(lower[from:], needle)
			if i < 0 {
				break
			}
			pos := from + i
			count++
			if pos < minPos {
				minPos = pos
			}
			if pos > maxPos {
				maxPos = pos
			}
			from = pos + len(needle)
		}
	}

	if count >= 2 {
		clustered = float64(maxPos-minPos) < 0.25*float64(len(lower))
	}
	return count, clustered
}
