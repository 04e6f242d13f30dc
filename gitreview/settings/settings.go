// Package settings loads the read-only git-review
// configuration from a YAML file, overlaid with
// environment variables.
package settings

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/goccy/go-yaml"
)

// Environment variables read by Load.
const (
	EnvConfig            = "GIT_REVIEW_CONFIG"
	EnvGitHubToken       = "GITHUB_TOKEN"
	EnvGitLabToken       = "GITLAB_TOKEN"
	EnvBitbucketUser     = "BITBUCKET_USERNAME"
	EnvBitbucketPassword = "BITBUCKET_APP_PASSWORD"
	EnvBitbucketToken    = "BITBUCKET_TOKEN"
)

const (
	defaultFile     = ".git_review.yml"
	reviewModeDebug = "debug"
)

// GitHub holds GitHub credentials.
type GitHub struct {
	Token string `yaml:"token"`
	// EnterpriseHost is a GitHub Enterprise hostname.
	EnterpriseHost string `yaml:"enterprise_host"`
}

// Bitbucket holds Bitbucket Cloud credentials.
type Bitbucket struct {
	Username    string `yaml:"username"`
	AppPassword string `yaml:"app_password"`
	Token       string `yaml:"token"`
}

// GitLab holds GitLab credentials.
type GitLab struct {
	// Host is the instance base URL, gitlab.com when
	// empty.
	Host  string `yaml:"host"`
	Token string `yaml:"token"`
}

// Settings is the process-wide configuration. It is
// loaded once and only read afterwards.
type Settings struct {
	Username   string    `yaml:"username"`
	ReviewMode string    `yaml:"review_mode"`
	GitHub     GitHub    `yaml:"github"`
	Bitbucket  Bitbucket `yaml:"bitbucket"`
	GitLab     GitLab    `yaml:"gitlab"`
}

// Debug reports whether review mode is "debug".
func (s *Settings) Debug() bool {
	return s.ReviewMode == reviewModeDebug
}

// Path returns the settings file location: the
// GIT_REVIEW_CONFIG variable when set, else
// ~/.git_review.yml.
func Path(getenv func(string) string) (string, error) {
	if p := getenv(EnvConfig); p != "" {
		return p, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("locating settings: %w", err)
	}

	return filepath.Join(home, defaultFile), nil
}

// Load reads the settings file at path, then applies
// environment overrides through getenv. A missing file
// yields empty settings.
func Load(
	path string,
	getenv func(string) string,
) (*Settings, error) {
	const errCtx = "loading settings"

	var s Settings

	raw, err := os.ReadFile(path)

	switch {
	case errors.Is(err, fs.ErrNotExist):
		slog.Debug("no settings file", "path", path)

	case err != nil:
		return nil, fmt.Errorf("%s: %w", errCtx, err)

	default:
		if err := yaml.Unmarshal(raw, &s); err != nil {
			return nil, fmt.Errorf(
				"%s: %s: %w", errCtx, path, err,
			)
		}
	}

	s.applyEnv(getenv)

	return &s, nil
}

func (s *Settings) applyEnv(getenv func(string) string) {
	overrides := []struct {
		env string
		dst *string
	}{
		{EnvGitHubToken, &s.GitHub.Token},
		{EnvGitLabToken, &s.GitLab.Token},
		{EnvBitbucketUser, &s.Bitbucket.Username},
		{EnvBitbucketPassword, &s.Bitbucket.AppPassword},
		{EnvBitbucketToken, &s.Bitbucket.Token},
	}

	for _, o := range overrides {
		if v := getenv(o.env); v != "" {
			*o.dst = v
		}
	}

	if s.Bitbucket.Username == "" {
		s.Bitbucket.Username = s.Username
	}
}
