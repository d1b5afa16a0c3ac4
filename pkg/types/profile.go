// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// AuthorProfile describes the voice a generated text is expected to carry:
// the target language plus a small enumerable set of expected markers.
// Profiles are configuration, loaded from YAML; a malformed profile degrades
// scoring gracefully rather than aborting. Per prd001-scoring R3.1.
type AuthorProfile struct {
	// Name identifies the persona (file stem in profiles/).
	Name string `json:"name" yaml:"name"`

	// Language is the ISO 639-1 code of the persona's target language
	// (e.g. "en", "de"). A detected-language mismatch forces voice
	// authenticity to zero.
	Language string `json:"language" yaml:"language"`

	// Markers are short phrases characteristic of the persona. Well-voiced
	// copy carries 2-4 of them, naturally distributed.
	Markers []string `json:"markers" yaml:"markers"`

	// TranslationArtifacts are constructions that betray machine
	// translation from another language; each occurrence is penalized.
	TranslationArtifacts []string `json:"translation_artifacts,omitempty" yaml:"translation_artifacts,omitempty"`
}
