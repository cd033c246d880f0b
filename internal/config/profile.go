package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Profile is the admin CLI's saved settings. Values in the profile fill in
// whatever the environment left unset.
type Profile struct {
	APIURL    string `yaml:"api_url,omitempty"`
	Email     string `yaml:"email,omitempty"`
	TokenFile string `yaml:"token_file,omitempty"`
}

// DefaultProfilePath returns ~/.config/utworld/admin.yaml.
func DefaultProfilePath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "utworld", "admin.yaml"), nil
}

// LoadProfile reads a profile. A missing file is an empty profile.
func LoadProfile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return &Profile{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading profile: %w", err)
	}
	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parsing profile %s: %w", path, err)
	}
	return &p, nil
}

// SaveProfile writes p to path, creating the directory.
func SaveProfile(path string, p *Profile) error {
	data, err := yaml.Marshal(p)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// Apply fills unset client fields from the profile. tokenDir is where the
// token file goes when neither side names one.
func (p *Profile) Apply(c *Client, envAPIURLSet bool, tokenDir string) {
	if !envAPIURLSet && p.APIURL != "" {
		c.APIURL = p.APIURL
	}
	if c.TokenFile == "" {
		c.TokenFile = p.TokenFile
	}
	if c.TokenFile == "" && tokenDir != "" {
		c.TokenFile = filepath.Join(tokenDir, "tokens.json")
	}
}
