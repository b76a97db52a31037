package cmd

import (
	"os"

	"github.com/quickdeploy/quickdeploy/internal/config"
	"github.com/quickdeploy/quickdeploy/internal/deploy"
	"github.com/quickdeploy/quickdeploy/internal/runner"
	"github.com/quickdeploy/quickdeploy/internal/ui"
	"github.com/spf13/cobra"
)

var (
	verbose    bool
	pretend    bool
	configPath string
	versionStr = "dev"

	// cmdRunner runs git and hook scripts; nil means real processes.
	cmdRunner runner.Runner
)

func SetVersion(v string) {
	versionStr = v
}

var rootCmd = &cobra.Command{
	Use:   "quickdeploy",
	Short: "Stage, commit and push a repository in one go",
	Long: "Run git add, git commit and git push against a single repository. " +
		"A commit with nothing to commit is reported and skipped, and the push still runs.",
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runDeploy,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Print detailed and verbose output")
	rootCmd.PersistentFlags().BoolVarP(&pretend, "pretend", "p", false, "Print the git commands without running them (dry run)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to the config file (default ~/.config/quickdeploy/config.json)")
	addDeployFlags(rootCmd)
}

func Execute() error {
	return rootCmd.Execute()
}

func newService() *deploy.Service {
	return &deploy.Service{
		Config:    config.New(configPath),
		Runner:    cmdRunner,
		Out:       os.Stdout,
		Verbose:   verbose,
		Pretend:   pretend,
		InputFn:   ui.Input,
		ConfirmFn: ui.Confirm,
	}
}

func getCwd() (string, error) {
	return os.Getwd()
}
