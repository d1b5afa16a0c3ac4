// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package history

import (
	"context"
	"fmt"
	"io"

	"github.com/pdiddy/copy-engine/pkg/types"
)

// Recorder is the write-only entry point for pre-generation validation
// issues. Telemetry is advisory: storage failures are logged to the
// progress writer and never propagated, so a broken disk cannot abort
// generation. Per prd002-validation-telemetry R2.2.
type Recorder struct {
	store *Store
	w     io.Writer
}

// NewRecorder wraps a store with the advisory write policy. Progress and
// failure notes go to w.
func NewRecorder(store *Store, w io.Writer) *Recorder {
	return &Recorder{store: store, w: w}
}

// Record tags each issue with the target and appends it. Individual
// failures are logged and skipped.
func (r *Recorder) Record(ctx context.Context, issues []types.ValidationIssue, subject, component, domain string) {
	for i := range issues {
		is := issues[i]
		is.Subject = subject
		is.Component = component
		is.Domain = domain
		if err := r.store.AppendIssue(ctx, &is); err != nil {
			fmt.Fprintf(r.w, "warning: issue not recorded (%s): %v\n", is.Category, err)
		}
	}
}
