// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package profile

import (
	"os"
	"path/filepath"
	"testing"
)

// writeFile is a test helper that creates a file with the given content.
func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name     string
		file     string
		yaml     string
		wantName string
		wantLang string
		wantErr  bool
	}{
		{
			name: "full profile",
			file: "field-engineer.yaml",
			yaml: `name: field-engineer
language: en
markers:
  - in practice
  - on site
translation_artifacts:
  - make a photo
`,
			wantName: "field-engineer",
			wantLang: "en",
		},
		{
			name: "name defaults to file stem",
			file: "werkstatt.yaml",
			yaml: `language: de
markers: [im Grunde]
`,
			wantName: "werkstatt",
			wantLang: "de",
		},
		{
			name:    "invalid yaml",
			file:    "broken.yaml",
			yaml:    ":::bad\n",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeFile(t, dir, tt.file, tt.yaml)

			p, err := Load(filepath.Join(dir, tt.file))
			if tt.wantErr {
				if err == nil {
					t.Error("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if p.Name != tt.wantName {
				t.Errorf("Name = %q, want %q", p.Name, tt.wantName)
			}
			if p.Language != tt.wantLang {
				t.Errorf("Language = %q, want %q", p.Language, tt.wantLang)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "alpha.yaml", "language: en\nmarkers: [frankly]\n")
	writeFile(t, dir, "beta.yaml", "language: de\nmarkers: [im Grunde]\n")
	writeFile(t, dir, "broken.yaml", ":::bad\n")
	writeFile(t, dir, "notes.txt", "not a profile")

	profiles, err := LoadDir(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(profiles) != 2 {
		t.Fatalf("len(profiles) = %d, want 2 (broken and non-yaml skipped)", len(profiles))
	}
	if got := Names(profiles); got[0] != "alpha" || got[1] != "beta" {
		t.Errorf("Names = %v, want [alpha beta]", got)
	}
}

func TestLoadDirMissing(t *testing.T) {
	profiles, err := LoadDir(filepath.Join(t.TempDir(), "does-not-exist"))
	if err != nil {
		t.Fatalf("missing directory should not error, got %v", err)
	}
	if len(profiles) != 0 {
		t.Errorf("len(profiles) = %d, want 0", len(profiles))
	}
}
