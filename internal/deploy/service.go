package deploy

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/quickdeploy/quickdeploy/internal/config"
	"github.com/quickdeploy/quickdeploy/internal/runner"
	"github.com/quickdeploy/quickdeploy/internal/script"
	"github.com/quickdeploy/quickdeploy/internal/ui"
	"github.com/quickdeploy/quickdeploy/internal/vcs"
)

// InputFunc and ConfirmFunc abstract interactive prompts for testability.
type InputFunc func(title, value string) (string, error)
type ConfirmFunc func(message string) (bool, error)

// Request carries per-invocation settings, usually from command line flags.
// Empty fields fall back to configuration.
type Request struct {
	Settings    config.Settings
	Stream      bool
	Interactive bool
	NoHooks     bool
}

// Service orchestrates a stage/commit/push deployment.
type Service struct {
	Config    *config.Config
	Runner    runner.Runner
	Out       io.Writer
	Verbose   bool
	Pretend   bool
	InputFn   InputFunc
	ConfirmFn ConfirmFunc
}

func (s *Service) output() io.Writer {
	if s.Out != nil {
		return s.Out
	}
	return os.Stdout
}

func (s *Service) say(msg string) {
	fmt.Fprintln(s.output(), msg)
}

func (s *Service) sayColor(msg, colorName string) {
	w := s.output()
	switch colorName {
	case "green":
		fmt.Fprintln(w, ui.Green(msg))
	case "red":
		fmt.Fprintln(w, ui.Red(msg))
	case "yellow":
		fmt.Fprintln(w, ui.Yellow(msg))
	case "blue":
		fmt.Fprintln(w, ui.Blue(msg))
	default:
		fmt.Fprintln(w, msg)
	}
}

func (s *Service) sayStatus(status, msg string) {
	if s.Verbose {
		fmt.Fprintf(s.output(), "%12s  %s\n", status, msg)
	}
}

func (s *Service) runner() runner.Runner {
	if s.Runner != nil {
		return s.Runner
	}
	return &runner.ExecRunner{Stdout: s.output()}
}

// Resolve layers defaults, global config, the repository's own settings file
// and the request. cwd is used when no directory is configured.
func (s *Service) Resolve(cwd string, req Request) (config.Settings, error) {
	dir := req.Settings.Dir
	if dir == "" && s.Config != nil {
		global, err := s.Config.Settings("")
		if err != nil {
			return config.Settings{}, err
		}
		dir = global.Dir
	}
	if dir == "" {
		dir = cwd
	}
	dir = config.ExpandPath(dir)
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(cwd, dir)
	}

	settings := config.Defaults()
	if s.Config != nil {
		fromConfig, err := s.Config.Settings(dir)
		if err != nil {
			return config.Settings{}, err
		}
		settings = settings.Merge(fromConfig)

		repo, found, err := config.LoadRepoFile(s.Config.Fs(), dir)
		if err != nil {
			return config.Settings{}, err
		}
		if found {
			s.sayStatus("config", fmt.Sprintf("Loaded %s", filepath.Join(ui.DisplayPath(dir), config.RepoFileName)))
			settings = settings.Merge(repo)
		}
	}

	settings = settings.Merge(req.Settings)
	settings.Dir = dir
	return settings, nil
}

// Deploy stages, commits and pushes the repository at cwd (or the configured
// directory). It returns an error wrapping ErrDeployFailed when a step fails.
func (s *Service) Deploy(cwd string, req Request) (Outcome, error) {
	settings, err := s.Resolve(cwd, req)
	if err != nil {
		return Outcome{}, err
	}

	if req.Interactive {
		proceed, err := s.prompt(&settings)
		if err != nil || !proceed {
			return Outcome{}, err
		}
	}

	s.say(ui.IconStart + " Starting deployment...")
	s.describeTarget(settings)

	if !req.NoHooks {
		if err := s.runHook(script.Before, settings); err != nil {
			s.sayColor(fmt.Sprintf("%s %v", ui.IconFailure, err), "red")
			return Outcome{}, err
		}
	}

	opts := Options{
		Dir:     settings.Dir,
		Message: settings.Message,
		Remote:  settings.Remote,
		Branch:  settings.Branch,
		Env:     settings.Env,
		Stream:  req.Stream,
	}
	if len(settings.SkipMarkers) > 0 {
		opts.Skip = OutputContains(settings.SkipMarkers...)
	}
	steps := Steps(&vcs.Git{Runner: s.runner()}, opts)

	var outcome Outcome
	if s.Pretend {
		outcome = s.pretend(steps)
	} else {
		seq := &Sequencer{Runner: s.runner(), OnStep: s.reportStep}
		outcome = seq.Run(steps)
	}

	if s.Verbose {
		s.say("")
		s.printSummary(outcome)
	}

	if failed, ok := outcome.Failed(); ok {
		s.say("")
		s.sayColor(fmt.Sprintf("%s Deployment failed at %s.", ui.IconFailure, failed.Name), "red")
		return outcome, fmt.Errorf("%w: git %s: %v", ErrDeployFailed, failed.Name, failed.Err)
	}

	s.sayColor(fmt.Sprintf("%s Deployment complete.", ui.IconDone), "green")

	if !req.NoHooks {
		if err := s.runHook(script.After, settings); err != nil {
			s.sayColor(fmt.Sprintf("%s %v", ui.IconFailure, err), "red")
			return outcome, err
		}
	}

	return outcome, nil
}

func (s *Service) prompt(settings *config.Settings) (bool, error) {
	if s.InputFn != nil {
		msg, err := s.InputFn("Commit message", settings.Message)
		if err != nil {
			return false, err
		}
		settings.Message = msg
	}
	if s.ConfirmFn != nil {
		confirmed, err := s.ConfirmFn(fmt.Sprintf("Stage, commit and push everything in %s?", ui.DisplayPath(settings.Dir)))
		if err != nil {
			return false, err
		}
		if !confirmed {
			s.sayColor("Aborting. Nothing was deployed.", "yellow")
			return false, nil
		}
	}
	return true, nil
}

func (s *Service) describeTarget(settings config.Settings) {
	if !s.Verbose {
		return
	}
	if s.Pretend {
		s.sayStatus("repo", ui.DisplayPath(settings.Dir))
	} else {
		git := &vcs.Git{Runner: s.runner()}
		where := ui.DisplayPath(settings.Dir)
		if top, err := git.TopLevel(settings.Dir); err == nil {
			where = ui.DisplayPath(top)
		}
		s.sayStatus("repo", where)
		if branch, err := git.CurrentBranch(settings.Dir); err == nil {
			s.sayStatus("branch", branch)
		}
	}
	s.sayStatus("message", firstLine(settings.Message))
}

func (s *Service) runHook(kind string, settings config.Settings) error {
	path := script.Path(settings.Dir, kind)
	if !script.Exists(settings.Dir, kind) {
		return nil
	}
	s.sayStatus(kind, fmt.Sprintf("Running %s", ui.DisplayPath(path)))
	if s.Pretend {
		return nil
	}

	out, err := script.Run(s.runner(), kind, path, settings.Dir, settings.Message)
	if err != nil {
		return err
	}
	if out = strings.TrimSpace(out); out != "" {
		s.sayColor(fmt.Sprintf("deploy_%s output:", kind), "blue")
		s.say(out)
	}
	return nil
}

func (s *Service) pretend(steps []Step) Outcome {
	results := make([]StepResult, 0, len(steps))
	for _, step := range steps {
		s.say(fmt.Sprintf("%s would run: %s", ui.Dim("[pretend]"), step.Spec))
		results = append(results, StepResult{Name: step.Name, Status: StatusSuccess})
	}
	return Outcome{Steps: results, Status: aggregate(results)}
}

func (s *Service) reportStep(step Step, res StepResult) {
	s.sayStatus("run", step.Spec.String())
	switch res.Status {
	case StatusSuccess:
		s.say(fmt.Sprintf("%s %s", ui.IconSuccess, successMessages[step.Name]))
	case StatusSkip:
		s.sayColor(fmt.Sprintf("%s git %s: nothing to do, skipping", ui.IconSkip, step.Name), "yellow")
		if out := res.Result.Output(); out != "" && s.Verbose {
			s.say(ui.Dim(out))
		}
	case StatusFailure:
		s.sayColor(fmt.Sprintf("%s git %s failed: %v", ui.IconFailure, step.Name, res.Err), "red")
	}
}

var successMessages = map[string]string{
	StepStage:  "Files staged",
	StepCommit: "Changes committed",
	StepPush:   "Pushed to remote",
}

func (s *Service) printSummary(o Outcome) {
	rows := make([][]string, 0, len(o.Steps))
	for _, step := range o.Steps {
		row := []string{ui.Bold(step.Name)}
		switch step.Status {
		case StatusSuccess:
			row = append(row, ui.Green(string(step.Status)))
		case StatusSkip:
			row = append(row, ui.Yellow(string(step.Status)))
		default:
			row = append(row, ui.Red(string(step.Status)), ui.Dim(firstLine(fmt.Sprint(step.Err))))
		}
		rows = append(rows, row)
	}
	ui.PrintTable(s.output(), rows, 2)
	s.say("")
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}
