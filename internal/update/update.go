// Package update checks GitHub releases for newer gpmtud versions and
// swaps the installed binary in place.
package update

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"runtime"
	"time"
)

// Config holds the release source for update checks.
type Config struct {
	// Repo is the GitHub repository in owner/name form.
	Repo string
	// Binary is the executable name inside release archives.
	Binary string
	// Timeout bounds the release check request.
	Timeout time.Duration
}

// DefaultConfig returns the configuration for the gpmtud releases.
func DefaultConfig() *Config {
	return &Config{
		Repo:    "hervehildenbrand/gpmtud",
		Binary:  "gpmtud",
		Timeout: 3 * time.Second,
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.Repo == "" {
		return errors.New("repository is required")
	}
	if c.Binary == "" {
		return errors.New("binary name is required")
	}
	if c.Timeout <= 0 {
		return errors.New("check timeout must be positive")
	}
	return nil
}

// Release describes a published release newer than the running build.
type Release struct {
	Current  Version
	Latest   Version
	PageURL  string
	AssetURL string
	Asset    string
}

// Updater checks for and applies binary updates from GitHub releases.
type Updater struct {
	cfg    *Config
	apiURL string
	client *http.Client
}

// NewUpdater creates an updater for the configured repository.
func NewUpdater(cfg *Config) (*Updater, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid update config: %w", err)
	}
	return &Updater{
		cfg:    cfg,
		apiURL: fmt.Sprintf("https://api.github.com/repos/%s/releases/latest", cfg.Repo),
		client: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

// Check queries the latest release and compares it to the running
// version. Returns nil when the running version is already current.
// The AssetURL is empty when no pre-built archive exists for this
// platform.
func (u *Updater) Check(ctx context.Context, current string) (*Release, error) {
	cur, err := ParseVersion(current)
	if err != nil {
		return nil, fmt.Errorf("running a non-release build: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.apiURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/vnd.github.v3+json")

	resp, err := u.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("release check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("release check failed: status %d", resp.StatusCode)
	}

	var payload struct {
		TagName string `json:"tag_name"`
		HTMLURL string `json:"html_url"`
		Assets  []struct {
			Name               string `json:"name"`
			BrowserDownloadURL string `json:"browser_download_url"`
		} `json:"assets"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("malformed release response: %w", err)
	}

	latest, err := ParseVersion(payload.TagName)
	if err != nil {
		return nil, fmt.Errorf("malformed release tag: %w", err)
	}
	if latest.Compare(cur) <= 0 {
		return nil, nil
	}

	rel := &Release{
		Current: cur,
		Latest:  latest,
		PageURL: payload.HTMLURL,
		Asset:   u.assetName(latest),
	}
	for _, a := range payload.Assets {
		if a.Name == rel.Asset {
			rel.AssetURL = a.BrowserDownloadURL
			break
		}
	}

	return rel, nil
}

// assetName returns the release archive name for this platform.
func (u *Updater) assetName(v Version) string {
	ext := ".tar.gz"
	if runtime.GOOS == "windows" {
		ext = ".zip"
	}
	return fmt.Sprintf("%s_%s_%s_%s%s", u.cfg.Binary, v, runtime.GOOS, runtime.GOARCH, ext)
}

// binaryName returns the executable name inside release archives.
func (u *Updater) binaryName() string {
	if runtime.GOOS == "windows" {
		return u.cfg.Binary + ".exe"
	}
	return u.cfg.Binary
}
