package cmd

import (
	"github.com/quickdeploy/quickdeploy/internal/deploy"
	"github.com/spf13/cobra"
)

var (
	dirFlag         string
	messageFlag     string
	remoteFlag      string
	branchFlag      string
	streamFlag      bool
	interactiveFlag bool
	noHooksFlag     bool
)

var deployCmd = &cobra.Command{
	Use:     "deploy",
	Aliases: []string{"d"},
	Short:   "Stage all changes, commit and push",
	Long: "Stage every change in the working tree, commit it with the configured message and push. " +
		"Stops at the first failing step. Runs scripts/deploy_before and scripts/deploy_after when present.",
	Args: cobra.NoArgs,
	RunE: runDeploy,
}

func init() {
	addDeployFlags(deployCmd)
	rootCmd.AddCommand(deployCmd)
}

func addDeployFlags(c *cobra.Command) {
	c.Flags().StringVarP(&dirFlag, "dir", "C", "", "Repository directory (default: configured dir, or the current directory)")
	c.Flags().StringVarP(&messageFlag, "message", "m", "", "Commit message")
	c.Flags().StringVar(&remoteFlag, "remote", "", "Remote to push to")
	c.Flags().StringVar(&branchFlag, "branch", "", "Branch to push (requires --remote)")
	c.Flags().BoolVar(&streamFlag, "stream", false, "Show git add and git push output as it happens")
	c.Flags().BoolVarP(&interactiveFlag, "interactive", "i", false, "Edit the commit message and confirm before deploying")
	c.Flags().BoolVar(&noHooksFlag, "no-hooks", false, "Skip scripts/deploy_before and scripts/deploy_after")
}

func runDeploy(cmd *cobra.Command, args []string) error {
	svc := newService()
	svc.Out = cmd.OutOrStdout()
	cwd, err := getCwd()
	if err != nil {
		return err
	}

	req := deploy.Request{
		Stream:      streamFlag,
		Interactive: interactiveFlag,
		NoHooks:     noHooksFlag,
	}
	req.Settings.Dir = dirFlag
	req.Settings.Message = messageFlag
	req.Settings.Remote = remoteFlag
	req.Settings.Branch = branchFlag

	_, err = svc.Deploy(cwd, req)
	return err
}
