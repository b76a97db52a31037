package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/quickdeploy/quickdeploy/internal/config"
	"github.com/quickdeploy/quickdeploy/internal/deploy"
	"github.com/quickdeploy/quickdeploy/internal/ui"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var projectFlag bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or change quickdeploy settings",
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file path",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), config.New(configPath).Path())
	},
}

var configProjectsCmd = &cobra.Command{
	Use:   "projects",
	Short: "List repositories with their own settings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		projects, err := config.New(configPath).Projects()
		if err != nil {
			return err
		}
		if len(projects) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No repositories have their own settings.")
			return nil
		}
		for _, p := range projects {
			fmt.Fprintln(cmd.OutOrStdout(), ui.DisplayPath(p))
		}
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the settings that a deploy from here would use",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cwd, err := getCwd()
		if err != nil {
			return err
		}
		svc := newService()
		svc.Out = cmd.OutOrStdout()

		var req deploy.Request
		req.Settings.Dir = dirFlag
		settings, err := svc.Resolve(cwd, req)
		if err != nil {
			return err
		}

		b, err := yaml.Marshal(settings)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), string(b))
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set KEY VALUE",
	Short: "Set a config value",
	Long: "Set a config value. Keys: " + strings.Join(config.Keys, ", ") + ".\n" +
		"skip_markers takes a comma separated list. env takes KEY=VALUE; KEY= removes it.\n" +
		"With --project the value only applies to the repository in the current directory (or --dir).",
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.New(configPath)

		project := ""
		if projectFlag {
			cwd, err := getCwd()
			if err != nil {
				return err
			}
			project = cwd
			if dirFlag != "" {
				project = config.ExpandPath(dirFlag)
				if !filepath.IsAbs(project) {
					project = filepath.Join(cwd, project)
				}
			}
		}

		return cfg.Set(project, args[0], args[1])
	},
}

func init() {
	configCmd.PersistentFlags().StringVarP(&dirFlag, "dir", "C", "", "Repository directory")
	configSetCmd.Flags().BoolVar(&projectFlag, "project", false, "Store the value for this repository only")
	configCmd.AddCommand(configPathCmd, configProjectsCmd, configShowCmd, configSetCmd)
	rootCmd.AddCommand(configCmd)
}
