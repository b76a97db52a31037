package config

import (
	"fmt"
	"maps"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// RepoFileName is the optional per-repository settings file, committed with the repo.
const RepoFileName = ".quickdeploy.yml"

// Settings control a single deployment.
type Settings struct {
	Dir         string            `json:"dir,omitempty" yaml:"dir,omitempty"`
	Message     string            `json:"message,omitempty" yaml:"message,omitempty"`
	Remote      string            `json:"remote,omitempty" yaml:"remote,omitempty"`
	Branch      string            `json:"branch,omitempty" yaml:"branch,omitempty"`
	SkipMarkers []string          `json:"skip_markers,omitempty" yaml:"skip_markers,omitempty"`
	Env         map[string]string `json:"env,omitempty" yaml:"env,omitempty"`
}

// Merge returns s with every non-empty field of o applied over it. Env maps
// are merged key by key.
func (s Settings) Merge(o Settings) Settings {
	out := s
	if o.Dir != "" {
		out.Dir = o.Dir
	}
	if o.Message != "" {
		out.Message = o.Message
	}
	if o.Remote != "" {
		out.Remote = o.Remote
	}
	if o.Branch != "" {
		out.Branch = o.Branch
	}
	if len(o.SkipMarkers) > 0 {
		out.SkipMarkers = append([]string(nil), o.SkipMarkers...)
	}
	if len(s.Env) > 0 || len(o.Env) > 0 {
		out.Env = make(map[string]string, len(s.Env)+len(o.Env))
		maps.Copy(out.Env, s.Env)
		maps.Copy(out.Env, o.Env)
	}
	return out
}

// Defaults are the settings used when nothing else is configured.
func Defaults() Settings {
	return Settings{Message: DefaultMessage}
}

// LoadRepoFile reads RepoFileName from dir. The bool is false when the file does not exist.
func LoadRepoFile(fs afero.Fs, dir string) (Settings, bool, error) {
	path := filepath.Join(dir, RepoFileName)
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		if os.IsNotExist(err) {
			return Settings{}, false, nil
		}
		return Settings{}, false, err
	}

	var s Settings
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Settings{}, false, fmt.Errorf("invalid %s: %w", path, err)
	}
	return s, true, nil
}
