package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/jingkaihe/skillmigrate/pkg/logger"
	"github.com/jingkaihe/skillmigrate/pkg/migrate"
	"github.com/jingkaihe/skillmigrate/pkg/presenter"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// MigrateConfig holds the resolved settings of a migrate run
type MigrateConfig struct {
	Source       string
	Target       string
	Limit        int
	Sorted       bool
	Descriptor   string
	PostCopyHook string
	HookTimeout  time.Duration
}

// NewMigrateConfig returns the defaults: the user-scoped skills folder as
// source and the project-scoped one as target
func NewMigrateConfig() *MigrateConfig {
	source := ""
	if homeDir, err := os.UserHomeDir(); err == nil {
		source = filepath.Join(homeDir, ".claude", "skills")
	}

	return &MigrateConfig{
		Source:      source,
		Target:      filepath.Join(".claude", "skills"),
		Limit:       migrate.DefaultLimit,
		Sorted:      false,
		Descriptor:  migrate.DefaultDescriptor,
		HookTimeout: migrate.DefaultHookTimeout,
	}
}

var migrateCmd = &cobra.Command{
	Use:   "migrate [source] [target]",
	Short: "Copy skill directories from a source folder into a target folder",
	Long: `Copy up to --limit skill directories from the source folder into the target folder.

A skill whose name already exists in the target is skipped and left untouched.
A skill that fails to copy is reported and counted; the remaining skills are
still processed. A summary of total, migrated, failed and skipped skills is
printed at the end.

Examples:
  skillmigrate migrate
  skillmigrate migrate ~/.claude/skills ./.claude/skills --limit 20
  skillmigrate migrate --sorted --post-copy-hook ./scripts/localize.sh`,
	Args: cobra.MaximumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		config, err := getMigrateConfig(cmd, args)
		if err != nil {
			return err
		}

		p := presenter.New()
		p.SetQuiet(viper.GetBool("quiet"))

		_, err = runMigrate(cmd.Context(), config, p)
		return err
	},
}

func addMigrateFlags(cmd *cobra.Command) {
	defaults := NewMigrateConfig()
	cmd.Flags().StringP("source", "s", defaults.Source, "Source skills directory")
	cmd.Flags().StringP("target", "t", defaults.Target, "Target skills directory")
	cmd.Flags().IntP("limit", "n", defaults.Limit, "Maximum number of skill directories to process")
	cmd.Flags().Bool("sorted", defaults.Sorted, "Process skill directories in name order instead of file system order")
	cmd.Flags().String("descriptor", defaults.Descriptor, "Descriptor file name passed to the post-copy hook")
	cmd.Flags().String("post-copy-hook", defaults.PostCopyHook, "Executable run with the copied descriptor path after each successful copy")
	cmd.Flags().Duration("hook-timeout", defaults.HookTimeout, "Timeout for a single post-copy hook run")
}

func init() {
	addMigrateFlags(migrateCmd)
	rootCmd.AddCommand(withTracing(migrateCmd))
}

// bindMigrateFlags binds the flags of the running command, so that root and
// migrate can both carry them
func bindMigrateFlags(cmd *cobra.Command) {
	for key, flag := range map[string]string{
		"source":         "source",
		"target":         "target",
		"limit":          "limit",
		"sorted":         "sorted",
		"descriptor":     "descriptor",
		"post_copy_hook": "post-copy-hook",
		"hook_timeout":   "hook-timeout",
	} {
		if f := cmd.Flags().Lookup(flag); f != nil {
			viper.BindPFlag(key, f)
		}
	}
}

func getMigrateConfig(cmd *cobra.Command, args []string) (*MigrateConfig, error) {
	bindMigrateFlags(cmd)

	config := NewMigrateConfig()
	if v := viper.GetString("source"); v != "" {
		config.Source = v
	}
	if v := viper.GetString("target"); v != "" {
		config.Target = v
	}
	if viper.IsSet("limit") {
		config.Limit = viper.GetInt("limit")
	}
	config.Sorted = viper.GetBool("sorted")
	if v := viper.GetString("descriptor"); v != "" {
		config.Descriptor = v
	}
	config.PostCopyHook = viper.GetString("post_copy_hook")
	if v := viper.GetDuration("hook_timeout"); v > 0 {
		config.HookTimeout = v
	}

	if len(args) > 0 {
		config.Source = args[0]
	}
	if len(args) > 1 {
		config.Target = args[1]
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks the settings and expands ~ in paths
func (c *MigrateConfig) Validate() error {
	if c.Source == "" {
		return errors.New("source directory is required")
	}
	if c.Target == "" {
		return errors.New("target directory is required")
	}
	if c.Limit < 0 {
		return errors.Errorf("limit must not be negative, got %d", c.Limit)
	}

	var err error
	if c.Source, err = expandHome(c.Source); err != nil {
		return err
	}
	if c.Target, err = expandHome(c.Target); err != nil {
		return err
	}

	if c.PostCopyHook != "" {
		if c.PostCopyHook, err = expandHome(c.PostCopyHook); err != nil {
			return err
		}
		if _, err := exec.LookPath(c.PostCopyHook); err != nil {
			return errors.Wrapf(err, "post-copy hook %s is not executable", c.PostCopyHook)
		}
	}
	return nil
}

func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "failed to get user home directory")
	}
	return filepath.Join(homeDir, strings.TrimPrefix(path, "~")), nil
}

// runMigrate performs one migration run, printing per-skill commentary and
// the summary. Per-skill failures do not produce an error.
func runMigrate(ctx context.Context, config *MigrateConfig, p presenter.Presenter) (*migrate.Stats, error) {
	transform := migrate.NoopTransform
	if config.PostCopyHook != "" {
		transform = migrate.HookTransform(config.PostCopyHook, config.HookTimeout)
	}

	m, err := migrate.New(
		migrate.WithLimit(config.Limit),
		migrate.WithSorted(config.Sorted),
		migrate.WithDescriptor(config.Descriptor),
		migrate.WithTransform(transform),
		migrate.WithObserver(p.Result),
	)
	if err != nil {
		return nil, err
	}

	logger.G(ctx).
		WithField("source", config.Source).
		WithField("target", config.Target).
		WithField("limit", config.Limit).
		Debug("migrating skills")

	p.Section(fmt.Sprintf("Migrating skills from %s to %s", config.Source, config.Target))

	stats, err := m.Migrate(ctx, config.Source, config.Target)
	if stats != nil {
		p.Summary(stats)
	}
	if err != nil {
		return stats, err
	}

	if failures := stats.Err(); failures != nil {
		logger.G(ctx).WithError(failures).Debug("some skills failed to migrate")
	}
	return stats, nil
}
