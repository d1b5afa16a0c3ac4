// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package profile loads author voice profiles from a directory of YAML
// files, one persona per file. Implements: prd001-scoring R3 (profile
// inputs); docs/ARCHITECTURE § Voice Profiles.
package profile

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/copy-engine/pkg/types"
)

// Load reads a single profile file. The persona name defaults to the file
// stem when the document carries none.
func Load(path string) (*types.AuthorProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading profile: %w", err)
	}
	var p types.AuthorProfile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parsing profile %s: %w", filepath.Base(path), err)
	}
	if p.Name == "" {
		p.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return &p, nil
}

// LoadDir reads every *.yaml profile in dir, keyed by persona name.
// A missing directory is not an error; LoadDir returns an empty map.
// Unparseable files produce a warning on stderr but do not abort, matching
// the advisory posture of the rest of the telemetry path.
func LoadDir(dir string) (map[string]*types.AuthorProfile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]*types.AuthorProfile{}, nil
		}
		return nil, fmt.Errorf("reading profiles directory %s: %w", dir, err)
	}

	profiles := make(map[string]*types.AuthorProfile)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}
		p, err := Load(filepath.Join(dir, entry.Name()))
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: skipping profile %s: %v\n", entry.Name(), err)
			continue
		}
		profiles[p.Name] = p
	}
	return profiles, nil
}

// Names returns the sorted persona names in profiles.
func Names(profiles map[string]*types.AuthorProfile) []string {
	names := make([]string, 0, len(profiles))
	for n := range profiles {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
