package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/jingkaihe/skillmigrate/pkg/skills"
	"github.com/spf13/cobra"
)

// ListConfig holds the settings of the list command
type ListConfig struct {
	Dir        string
	Target     string
	Descriptor string
	JSON       bool
}

// NewListConfig lists the default source folder
func NewListConfig() *ListConfig {
	return &ListConfig{
		Dir:        NewMigrateConfig().Source,
		Descriptor: skills.DescriptorFileName,
	}
}

// listedSkill is the JSON shape of one listed skill directory
type listedSkill struct {
	Dir         string `json:"dir"`
	Path        string `json:"path"`
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
	Error       string `json:"error,omitempty"`
	InTarget    *bool  `json:"inTarget,omitempty"`
}

var listCmd = &cobra.Command{
	Use:   "list [dir]",
	Short: "List skill directories and their descriptors",
	Long: `List the skill directories of a skills folder with the name and description
from each descriptor. With --target, also show whether each skill already exists
in the target folder, i.e. whether migrate would skip it.

Examples:
  skillmigrate list
  skillmigrate list ~/.claude/skills --target ./.claude/skills
  skillmigrate list --json`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		config := getListConfigFromFlags(cmd, args)
		return runList(cmd.OutOrStdout(), config)
	},
}

func init() {
	defaults := NewListConfig()
	listCmd.Flags().StringP("target", "t", defaults.Target, "Target skills directory to compare against")
	listCmd.Flags().String("descriptor", defaults.Descriptor, "Descriptor file name")
	listCmd.Flags().Bool("json", defaults.JSON, "Output as JSON")
	rootCmd.AddCommand(withTracing(listCmd))
}

func getListConfigFromFlags(cmd *cobra.Command, args []string) *ListConfig {
	config := NewListConfig()
	if target, err := cmd.Flags().GetString("target"); err == nil {
		config.Target = target
	}
	if descriptor, err := cmd.Flags().GetString("descriptor"); err == nil && descriptor != "" {
		config.Descriptor = descriptor
	}
	if asJSON, err := cmd.Flags().GetBool("json"); err == nil {
		config.JSON = asJSON
	}
	if len(args) > 0 {
		config.Dir = args[0]
	}
	return config
}

func runList(w io.Writer, config *ListConfig) error {
	dir, err := expandHome(config.Dir)
	if err != nil {
		return err
	}
	target, err := expandHome(config.Target)
	if err != nil {
		return err
	}

	entries, err := skills.Scan(dir, config.Descriptor)
	if err != nil {
		return err
	}

	listed := make([]listedSkill, 0, len(entries))
	for _, e := range entries {
		item := listedSkill{Dir: e.Dir, Path: e.Path}
		if e.Descriptor != nil {
			item.Name = e.Descriptor.Name
			item.Description = e.Descriptor.Description
		}
		if e.Err != nil {
			item.Error = e.Err.Error()
		}
		if target != "" {
			_, statErr := os.Lstat(filepath.Join(target, e.Dir))
			exists := statErr == nil
			item.InTarget = &exists
		}
		listed = append(listed, item)
	}

	if config.JSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(listed)
	}

	if len(listed) == 0 {
		_, err := fmt.Fprintf(w, "No skill directories found in %s\n", dir)
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if target != "" {
		fmt.Fprintln(tw, "DIR\tNAME\tIN TARGET\tDESCRIPTION")
		fmt.Fprintln(tw, "---\t----\t---------\t-----------")
	} else {
		fmt.Fprintln(tw, "DIR\tNAME\tDESCRIPTION")
		fmt.Fprintln(tw, "---\t----\t-----------")
	}

	for _, item := range listed {
		name := item.Name
		description := truncate(item.Description, 60)
		if item.Error != "" {
			name = "-"
			description = "(" + item.Error + ")"
		}

		if item.InTarget != nil {
			status := "no"
			if *item.InTarget {
				status = "yes"
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", item.Dir, name, status, description)
		} else {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", item.Dir, name, description)
		}
	}
	return tw.Flush()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
