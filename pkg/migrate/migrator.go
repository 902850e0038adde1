package migrate

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/jingkaihe/skillmigrate/pkg/logger"
	"github.com/jingkaihe/skillmigrate/pkg/telemetry"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
)

// Defaults for a Migrator
const (
	DefaultLimit      = 100
	DefaultDescriptor = "SKILL.md"
)

// Migrator copies skill directories one at a time
type Migrator struct {
	limit      int
	sorted     bool
	descriptor string
	transform  PostCopyTransform
	observers  []Observer
	copy       copyFunc
}

// Option configures a Migrator
type Option func(*Migrator) error

// WithLimit bounds how many top-level directories are considered in one run
func WithLimit(limit int) Option {
	return func(m *Migrator) error {
		if limit < 0 {
			return errors.Errorf("limit must not be negative, got %d", limit)
		}
		m.limit = limit
		return nil
	}
}

// WithSorted visits entries in name order instead of enumeration order
func WithSorted(sorted bool) Option {
	return func(m *Migrator) error {
		m.sorted = sorted
		return nil
	}
}

// WithDescriptor sets the descriptor file name handed to the post-copy transform
func WithDescriptor(name string) Option {
	return func(m *Migrator) error {
		if name == "" || filepath.Base(name) != name {
			return errors.Errorf("invalid descriptor file name %q", name)
		}
		m.descriptor = name
		return nil
	}
}

// WithTransform sets the post-copy transform. nil restores the no-op.
func WithTransform(t PostCopyTransform) Option {
	return func(m *Migrator) error {
		if t == nil {
			t = NoopTransform
		}
		m.transform = t
		return nil
	}
}

// WithObserver registers a callback for per-item results
func WithObserver(o Observer) Option {
	return func(m *Migrator) error {
		if o != nil {
			m.observers = append(m.observers, o)
		}
		return nil
	}
}

// New creates a Migrator with the given options applied over the defaults
func New(opts ...Option) (*Migrator, error) {
	m := &Migrator{
		limit:      DefaultLimit,
		descriptor: DefaultDescriptor,
		transform:  NoopTransform,
		copy:       copyTree,
	}

	for _, opt := range opts {
		if err := opt(m); err != nil {
			return nil, err
		}
	}

	return m, nil
}

// Migrate copies up to the configured limit of directories from sourceRoot
// into targetRoot. An error is returned without stats when the source root
// cannot be enumerated or the target root cannot be prepared. Per-item
// failures are recorded in the returned stats instead.
func (m *Migrator) Migrate(ctx context.Context, sourceRoot, targetRoot string) (*Stats, error) {
	var stats *Stats

	err := telemetry.WithSpan(ctx, "migrate.run", func(ctx context.Context) error {
		log := logger.G(ctx).WithField("run_id", uuid.NewString())
		ctx = logger.WithLogger(ctx, log)

		entries, err := listDirs(sourceRoot, m.sorted)
		if err != nil {
			return err
		}

		if err := prepareTarget(targetRoot); err != nil {
			return err
		}

		candidates, err := m.candidates(ctx, sourceRoot, targetRoot, entries)
		if err != nil {
			return err
		}

		log.WithField("source", sourceRoot).
			WithField("target", targetRoot).
			WithField("candidates", len(candidates)).
			Debug("starting migration")

		stats = &Stats{}
		for _, name := range candidates {
			if err := ctx.Err(); err != nil {
				return errors.Wrap(err, "migration interrupted")
			}

			r := m.migrateOne(ctx, name, sourceRoot, targetRoot)
			stats.record(r)
			for _, o := range m.observers {
				o(r)
			}
		}

		telemetry.SetAttributes(ctx,
			attribute.Int("migrate.total", stats.Total),
			attribute.Int("migrate.migrated", stats.Migrated),
			attribute.Int("migrate.failed", stats.Failed),
			attribute.Int("migrate.skipped", stats.Skipped),
		)
		return nil
	},
		attribute.String("migrate.source", sourceRoot),
		attribute.String("migrate.target", targetRoot),
		attribute.Int("migrate.limit", m.limit),
	)

	return stats, err
}

// listDirs returns the names of the directories directly under root,
// following symlinks, in enumeration order or sorted by name
func listDirs(root string, sorted bool) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read source directory %s", root)
	}

	if sorted {
		sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })
	}

	var names []string
	for _, entry := range entries {
		info, err := os.Stat(filepath.Join(root, entry.Name()))
		if err != nil || !info.IsDir() {
			continue
		}
		names = append(names, entry.Name())
	}
	return names, nil
}

// candidates drops directories that are or contain the target root, since
// copying them would recurse into their own copy, and truncates to the limit
func (m *Migrator) candidates(ctx context.Context, sourceRoot, targetRoot string, names []string) ([]string, error) {
	target, err := resolvePath(targetRoot)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to resolve target directory %s", targetRoot)
	}

	var result []string
	for _, name := range names {
		if len(result) >= m.limit {
			break
		}

		dir, err := resolvePath(filepath.Join(sourceRoot, name))
		if err == nil && isWithin(target, dir) {
			logger.G(ctx).WithField("skill", name).Warn("source directory contains the target directory, ignoring it")
			continue
		}
		result = append(result, name)
	}
	return result, nil
}

func resolvePath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return filepath.EvalSymlinks(abs)
}

// isWithin reports whether path equals dir or lies below it
func isWithin(path, dir string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

// prepareTarget makes sure root is a directory, creating it only when its
// parent already exists
func prepareTarget(root string) error {
	info, err := os.Stat(root)
	if err == nil {
		if !info.IsDir() {
			return errors.Errorf("target %s is not a directory", root)
		}
		return nil
	}
	if !os.IsNotExist(err) {
		return errors.Wrapf(err, "failed to stat target directory %s", root)
	}

	parent := filepath.Dir(filepath.Clean(root))
	if info, err := os.Stat(parent); err != nil || !info.IsDir() {
		return errors.Errorf("parent of target directory %s does not exist", root)
	}

	return errors.Wrapf(os.Mkdir(root, 0o755), "failed to create target directory %s", root)
}

func (m *Migrator) migrateOne(ctx context.Context, name, sourceRoot, targetRoot string) Result {
	r := Result{
		Name:        name,
		Source:      filepath.Join(sourceRoot, name),
		Destination: filepath.Join(targetRoot, name),
	}

	telemetry.WithSpanFunc(ctx, "migrate.item", func(ctx context.Context) {
		log := logger.G(ctx).WithField("skill", name)

		if _, err := os.Lstat(r.Destination); err == nil {
			r.Outcome = OutcomeSkipped
			log.Debug("destination exists, skipping")
			return
		}

		if err := m.copyAtomic(r.Source, targetRoot, r.Destination); err != nil {
			r.Outcome = OutcomeFailed
			r.Err = err
			telemetry.RecordError(ctx, err)
			log.WithError(err).Debug("copy failed")
			return
		}
		r.Outcome = OutcomeMigrated

		descriptorPath := filepath.Join(r.Destination, m.descriptor)
		// a symlinked descriptor may point back into the source tree
		if info, err := os.Lstat(descriptorPath); err != nil || !info.Mode().IsRegular() {
			log.WithField("descriptor", m.descriptor).Debug("no regular descriptor file, skipping post-copy transform")
			return
		}
		if err := m.transform(ctx, descriptorPath); err != nil {
			r.TransformErr = err
			log.WithError(err).Warn("post-copy transform failed")
		}
	}, attribute.String("migrate.skill", name))

	return r
}

// copyAtomic copies src into a staging directory next to dst and renames it
// into place, so a failed copy never leaves a partial destination behind.
func (m *Migrator) copyAtomic(src, targetRoot, dst string) error {
	staging := filepath.Join(targetRoot, "."+filepath.Base(dst)+".partial-"+uuid.NewString())

	if err := m.copy(src, staging); err != nil {
		os.RemoveAll(staging)
		return err
	}

	if err := os.Rename(staging, dst); err != nil {
		os.RemoveAll(staging)
		return errors.Wrap(err, "failed to move copied directory into place")
	}
	return nil
}
