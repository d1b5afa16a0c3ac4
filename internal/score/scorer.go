// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package score measures generated copy along independent heuristic
// dimensions and folds them into a weighted composite.
// Implements: prd001-scoring (R1-R3); docs/ARCHITECTURE § Quality Scoring.
package score

import (
	"math"
	"regexp"
	"strings"

	"github.com/pemistahl/lingua-go"

	"github.com/pdiddy/copy-engine/pkg/types"
)

const (
	// neutralStructural is the structural-variety score assigned to texts
	// too short to carry measurable rhythm. Short text is not penalized,
	// only left unrewarded (R1.4).
	neutralStructural = 50.0

	// minSentences is the minimum sentence count for rhythm measurement.
	minSentences = 3
)

// stockPhrases are constructions characteristic of unedited machine prose.
// Each distinct phrase found deducts from pattern-likeness.
var stockPhrases = []string{
	"it's important to note",
	"it is important to note",
	"in today's fast-paced world",
	"in the ever-evolving",
	"delve into",
	"seamlessly",
	"cutting-edge",
	"game-changer",
	"unlock the",
	"unleash",
	"elevate your",
	"look no further",
	"a testament to",
	"in conclusion",
	"whether you're a",
	"robust and scalable",
}

// connectorWords are formulaic discourse connectors; high density reads
// machine-written.
var connectorWords = []string{
	"moreover", "furthermore", "additionally", "consequently", "thus",
}

var sentenceSplit = regexp.MustCompile(`[.!?]+(?:\s+|$)`)

// Result is the outcome of scoring one text: the quality record plus any
// issues the scorer raised along the way. Issue records carry only
// category, message, and severity; the caller attaches the target.
type Result struct {
	Score  types.QualityScore
	Issues []types.ValidationIssue
}

// HasCritical reports whether any raised issue is critical.
func (r Result) HasCritical() bool {
	for _, is := range r.Issues {
		if is.Severity == types.SeverityCritical {
			return true
		}
	}
	return false
}

// Scorer measures text quality. It is stateless apart from the language
// detector, which is expensive to build and shared across calls.
type Scorer struct {
	detector  lingua.LanguageDetector
	languages map[string]lingua.Language
}

// supportedLanguages maps ISO 639-1 codes accepted in author profiles to
// detector languages.
var supportedLanguages = map[string]lingua.Language{
	"en": lingua.English,
	"de": lingua.German,
	"fr": lingua.French,
	"es": lingua.Spanish,
	"it": lingua.Italian,
	"pt": lingua.Portuguese,
	"nl": lingua.Dutch,
	"pl": lingua.Polish,
}

// NewScorer builds a scorer with a language detector over the supported
// profile languages.
func NewScorer() *Scorer {
	langs := make([]lingua.Language, 0, len(supportedLanguages))
	for _, l := range supportedLanguages {
		langs = append(langs, l)
	}
	detector := lingua.NewLanguageDetectorBuilder().
		FromLanguages(langs...).
		Build()
	return &Scorer{detector: detector, languages: supportedLanguages}
}

// Score measures text along pattern-likeness, structural variety, and,
// when a usable author profile is present, voice authenticity. The
// composite is a convex combination over the available dimensions with
// weights renormalized (R1.2, R3.4). Scoring is deterministic.
func (s *Scorer) Score(text string, profile *types.AuthorProfile, weights types.WeightProfile) Result {
	var res Result

	res.Score.Pattern = types.Measured(patternLikeness(text))
	res.Score.Structural = types.Measured(structuralVariety(text))

	if profile != nil {
		if err := validProfile(profile); err != "" {
			// Malformed profile: omit the dimension, never fabricate (R3.1).
			res.Issues = append(res.Issues, types.ValidationIssue{
				Category: types.IssueProfileInvalid,
				Message:  err,
				Severity: types.SeverityWarning,
			})
		} else {
			voice, issues := s.voiceAuthenticity(text, profile)
			res.Score.Voice = types.Measured(voice)
			res.Issues = append(res.Issues, issues...)
		}
	}

	res.Score.Weights = weights
	res.Score.Composite = composite(res.Score, weights)
	return res
}

// composite combines the available subscores under w, renormalizing the
// weights over the available dimensions.
func composite(q types.QualityScore, w types.WeightProfile) float64 {
	var sum, mass float64
	if q.Pattern.Available {
		sum += q.Pattern.Value * w.Pattern
		mass += w.Pattern
	}
	if q.Voice.Available {
		sum += q.Voice.Value * w.Voice
		mass += w.Voice
	}
	if q.Structural.Available {
		sum += q.Structural.Value * w.Structural
		mass += w.Structural
	}
	if mass == 0 {
		return 0
	}
	return sum / mass
}

// patternLikeness scores how unlike stock machine prose the text reads.
// Starts from 100 and deducts per signal; higher is less machine-like.
func patternLikeness(text string) float64 {
	lower := strings.ToLower(text)
	score := 100.0

	stock := 0.0
	for _, p := range stockPhrases {
		if strings.Contains(lower, p) {
			stock += 8
		}
	}
	score -= math.Min(stock, 40)

	conn := 0.0
	for _, w := range connectorWords {
		conn += 5 * float64(strings.Count(lower, w))
	}
	score -= math.Min(conn, 15)

	sentences := splitSentences(text)
	if len(sentences) >= minSentences {
		if openers := openerCounts(sentences); maxCount(openers)*3 > len(sentences) && maxCount(openers) > 1 {
			score -= 15
		}
		if stddev(sentenceLengths(sentences)) < 2 && len(sentences) >= 4 {
			// Metronomic sentence lengths.
			score -= 15
		}
	}

	return clamp(score)
}

// structuralVariety scores sentence-rhythm variation. Texts with fewer
// than minSentences sentences receive the neutral baseline: brevity is
// unmeasurable, not wrong (R1.4).
func structuralVariety(text string) float64 {
	sentences := splitSentences(text)
	if len(sentences) < minSentences {
		return neutralStructural
	}

	lengths := sentenceLengths(sentences)
	mean := meanOf(lengths)
	if mean == 0 {
		return neutralStructural
	}

	// Coefficient of variation of sentence lengths, scaled so that
	// cv ≈ 0.4 (healthy prose) maps to full marks.
	lenScore := math.Min(100, stddev(lengths)/mean*250)

	openers := openerCounts(sentences)
	openerScore := float64(len(openers)) / float64(len(sentences)) * 100

	return clamp(0.6*lenScore + 0.4*openerScore)
}

func splitSentences(text string) []string {
	parts := sentenceSplit.Split(strings.TrimSpace(text), -1)
	out := parts[:0]
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			out = append(out, strings.TrimSpace(p))
		}
	}
	return out
}

func sentenceLengths(sentences []string) []float64 {
	lengths := make([]float64, len(sentences))
	for i, s := range sentences {
		lengths[i] = float64(len(strings.Fields(s)))
	}
	return lengths
}

// openerCounts maps each sentence's lowercased first word to its count.
func openerCounts(sentences []string) map[string]int {
	counts := make(map[string]int)
	for _, s := range sentences {
		fields := strings.Fields(s)
		if len(fields) > 0 {
			counts[strings.ToLower(fields[0])]++
		}
	}
	return counts
}

func maxCount(counts map[string]int) int {
	max := 0
	for _, c := range counts {
		if c > max {
			max = c
		}
	}
	return max
}

func meanOf(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func stddev(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	m := meanOf(xs)
	var sq float64
	for _, x := range xs {
		sq += (x - m) * (x - m)
	}
	return math.Sqrt(sq / float64(len(xs)))
}

func clamp(v float64) float64 {
	return math.Max(0, math.Min(100, v))
}
