// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package generate

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/pdiddy/copy-engine/pkg/types"
)

// copyPromptTmpl is the prompt sent to the generator for one copy target.
// Parameter knobs that shape the prompt (tone, voice strength, enrichment)
// are rendered as explicit instructions so the bundle recorded on the
// attempt fully determines the request.
var copyPromptTmpl = template.Must(template.New("copy").Parse(`You are a technical copywriter. Write the {{.Component}} copy for the following item.

Item: {{.Subject}}
{{- if .Domain}}
Publication domain: {{.Domain}}
{{- end}}

Requirements:
- Write short, concrete technical copy. No headings, no lists, prose only.
- Tone: {{.Tone}}.
{{- if .EnrichDetails}}
- Weave in specific technical details of the item.
{{- end}}
{{- if .EnrichKeywords}}
- Naturally include keywords a buyer would search for.
{{- end}}
{{- if .Markers}}
- Write in the voice of {{.Persona}}{{if .FirmVoice}}; the voice must be unmistakable{{end}}. Characteristic phrasings of this voice: {{.Markers}}. Use two to four of them, spread naturally through the text, never stacked together.
{{- if .Language}}
- Write in {{.Language}}.
{{- end}}
{{- end}}

Respond with the copy text only, no preamble and no commentary.`))

// promptData is the template input assembled from a target and bundle.
type promptData struct {
	Subject       string
	Component     string
	Domain        string
	Tone          string
	EnrichDetails bool
	EnrichKeywords bool
	Persona       string
	Markers       string
	Language      string
	FirmVoice     bool
}

// languageNames maps profile language codes to prompt wording.
var languageNames = map[string]string{
	"en": "English",
	"de": "German",
	"fr": "French",
	"es": "Spanish",
	"it": "Italian",
	"pt": "Portuguese",
	"nl": "Dutch",
	"pl": "Polish",
}

// BuildPrompt renders the generation prompt for a target under params,
// optionally in the voice of profile.
func BuildPrompt(subject, component, domain string, params types.ParameterBundle, prof *types.AuthorProfile) (string, error) {
	data := promptData{
		Subject:        subject,
		Component:      component,
		Domain:         domain,
		Tone:           params.Tone,
		EnrichDetails:  params.EnrichDetails,
		EnrichKeywords: params.EnrichKeywords,
	}
	if data.Tone == "" {
		data.Tone = "neutral"
	}
	if prof != nil && len(prof.Markers) > 0 {
		data.Persona = prof.Name
		data.Markers = strings.Join(prof.Markers, "; ")
		data.Language = languageNames[strings.ToLower(prof.Language)]
		data.FirmVoice = params.VoiceStrength >= 0.7
	}

	var buf bytes.Buffer
	if err := copyPromptTmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("rendering prompt: %w", err)
	}
	return buf.String(), nil
}
