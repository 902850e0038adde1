// Package migrate copies skill directories from a source root into a target
// root. Each top-level directory is an opaque unit: it is copied wholesale
// unless a same-named entry already exists at the destination, in which case
// it is skipped. Per-item failures are recorded and never abort the run.
package migrate

import (
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
)

// Outcome is the terminal classification of a single skill directory
type Outcome string

// Migration outcomes
const (
	OutcomeMigrated Outcome = "migrated"
	OutcomeSkipped  Outcome = "skipped"
	OutcomeFailed   Outcome = "failed"
)

// Result describes what happened to one skill directory
type Result struct {
	Name        string  // Folder name, unique within the source root
	Source      string  // Full path of the source directory
	Destination string  // Full path under the target root
	Outcome     Outcome // migrated, skipped or failed
	Err         error   // Copy error, set only when Outcome is failed
	// TransformErr is set when the copy succeeded but the post-copy
	// transform did not. The item still counts as migrated.
	TransformErr error
}

// Stats holds the counters of one migration run
type Stats struct {
	Total    int
	Migrated int
	Failed   int
	Skipped  int
	Results  []Result
}

// record folds a single result into the counters
func (s *Stats) record(r Result) {
	s.Total++
	switch r.Outcome {
	case OutcomeMigrated:
		s.Migrated++
	case OutcomeSkipped:
		s.Skipped++
	case OutcomeFailed:
		s.Failed++
	}
	s.Results = append(s.Results, r)
}

// Consistent reports whether total equals migrated + failed + skipped.
func (s *Stats) Consistent() bool {
	return s.Total == s.Migrated+s.Failed+s.Skipped
}

// Err returns all per-item failures combined into a single error, or nil
// when every item was migrated or skipped.
func (s *Stats) Err() error {
	var result *multierror.Error
	for _, r := range s.Results {
		if r.Outcome != OutcomeFailed {
			continue
		}
		result = multierror.Append(result, errors.Wrapf(r.Err, "failed to migrate %s", r.Name))
	}
	return result.ErrorOrNil()
}

// Observer receives each result as soon as it is decided
type Observer func(Result)
