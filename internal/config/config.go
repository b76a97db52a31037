package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/quickdeploy/quickdeploy/internal/errs"
	"github.com/spf13/afero"
)

const DefaultMessage = "chore: deploy"

// Keys lists the settings that can be written with Set.
var Keys = []string{"dir", "message", "remote", "branch", "skip_markers", "env"}

// Config manages the quickdeploy configuration stored at ~/.config/quickdeploy/config.json.
//
// Top-level keys are defaults for every repository. Per-repository overrides
// live under "projects", keyed by the repository path.
type Config struct {
	path string
	fs   afero.Fs
}

// New creates a Config on the OS filesystem. If configPath is empty, uses the default location.
func New(configPath string) *Config {
	return NewWithFs(afero.NewOsFs(), configPath)
}

// NewWithFs creates a Config backed by fs.
func NewWithFs(fs afero.Fs, configPath string) *Config {
	if configPath == "" {
		home, _ := os.UserHomeDir()
		configPath = filepath.Join(home, ".config", "quickdeploy", "config.json")
	}
	return &Config{path: configPath, fs: fs}
}

// Path returns the config file path.
func (c *Config) Path() string {
	return c.path
}

// Fs returns the filesystem the config reads from.
func (c *Config) Fs() afero.Fs {
	return c.fs
}

// Read returns the config data as a map, or an empty map if the file doesn't exist.
func (c *Config) Read() (map[string]any, error) {
	data, err := afero.ReadFile(c.fs, c.path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]any{}, nil
		}
		return nil, err
	}
	var result map[string]any
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", c.path, err)
	}
	if result == nil {
		result = map[string]any{}
	}
	return result, nil
}

// Write persists the config data to disk, creating directories as needed.
func (c *Config) Write(data map[string]any) error {
	dir := filepath.Dir(c.path)
	if err := c.fs.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	b, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return err
	}
	return afero.WriteFile(c.fs, c.path, b, 0o644)
}

// Settings returns the top-level defaults with any entry for projectPath merged over them.
func (c *Config) Settings(projectPath string) (Settings, error) {
	data, err := c.Read()
	if err != nil {
		return Settings{}, err
	}

	global, err := decodeSettings(data)
	if err != nil {
		return Settings{}, err
	}
	if projectPath == "" {
		return global, nil
	}

	projects, _ := data["projects"].(map[string]any)
	project, ok := projects[projectPath].(map[string]any)
	if !ok {
		return global, nil
	}
	override, err := decodeSettings(project)
	if err != nil {
		return Settings{}, err
	}
	return global.Merge(override), nil
}

// Set writes a single setting. An empty projectPath sets a top-level default.
//
// skip_markers takes a comma separated list and replaces the current one. env
// takes KEY=VALUE and adds to the current map; KEY= with no value removes KEY.
func (c *Config) Set(projectPath, key, value string) error {
	data, err := c.Read()
	if err != nil {
		return err
	}

	target := data
	if projectPath != "" {
		projects, ok := data["projects"].(map[string]any)
		if !ok {
			projects = map[string]any{}
			data["projects"] = projects
		}
		project, ok := projects[projectPath].(map[string]any)
		if !ok {
			project = map[string]any{}
			projects[projectPath] = project
		}
		target = project
	}

	switch key {
	case "dir", "message", "remote", "branch":
		target[key] = value
	case "skip_markers":
		var markers []any
		for _, m := range strings.Split(value, ",") {
			if m = strings.TrimSpace(m); m != "" {
				markers = append(markers, m)
			}
		}
		target[key] = markers
	case "env":
		k, v, ok := strings.Cut(value, "=")
		if !ok || k == "" {
			return fmt.Errorf("env value must be KEY=VALUE, got %q", value)
		}
		env, ok := target["env"].(map[string]any)
		if !ok {
			env = map[string]any{}
			target["env"] = env
		}
		if v == "" {
			delete(env, k)
		} else {
			env[k] = v
		}
	default:
		return fmt.Errorf("%w: %q (valid keys: %s)", errs.ErrUnknownKey, key, strings.Join(Keys, ", "))
	}

	return c.Write(data)
}

// Projects returns the repository paths that have their own settings, sorted.
func (c *Config) Projects() ([]string, error) {
	data, err := c.Read()
	if err != nil {
		return nil, err
	}
	projects, _ := data["projects"].(map[string]any)
	paths := make([]string, 0, len(projects))
	for p := range projects {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths, nil
}

func decodeSettings(m map[string]any) (Settings, error) {
	b, err := json.Marshal(m)
	if err != nil {
		return Settings{}, err
	}
	var s Settings
	if err := json.Unmarshal(b, &s); err != nil {
		return Settings{}, fmt.Errorf("invalid settings: %w", err)
	}
	return s, nil
}

// ExpandPath replaces a leading ~ with the user's home directory.
func ExpandPath(path string) string {
	if strings.HasPrefix(path, "~/") || path == "~" {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[1:])
	}
	return path
}
