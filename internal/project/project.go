// Package project locates a confstack project on disk and provides the
// YAML-backed config plumbing its settings variant resolves against.
package project

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// ConfigFileName is the project config file every confstack project carries
// at its root.
const ConfigFileName = "confstack.yml"

// DotenvFileName is the optional env file next to the project config.
const DotenvFileName = ".env"

// Project is one confstack project rooted at a directory. Config reads and
// updates are serialized; updates replace the file atomically so a crashed
// writer never leaves a truncated config behind.
type Project struct {
	root string

	mu sync.Mutex
}

// New returns the project rooted at dir. The directory does not need to hold
// a config file yet; a missing file reads as an empty config.
func New(dir string) *Project {
	return &Project{root: dir}
}

// Find walks up from dir looking for a directory containing the project
// config file.
func Find(dir string) (*Project, error) {
	current, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving project search root: %w", err)
	}

	for {
		if _, err := os.Stat(filepath.Join(current, ConfigFileName)); err == nil {
			return New(current), nil
		}

		parent := filepath.Dir(current)
		if parent == current {
			return nil, fmt.Errorf("no %s found in %s or any parent directory", ConfigFileName, dir)
		}
		current = parent
	}
}

// Root returns the project root directory.
func (p *Project) Root() string { return p.root }

// ConfigFile returns the path of the project config file.
func (p *Project) ConfigFile() string {
	return filepath.Join(p.root, ConfigFileName)
}

// DotenvFile returns the path of the project's env file. The file may not
// exist.
func (p *Project) DotenvFile() string {
	return filepath.Join(p.root, DotenvFileName)
}

// Config reads the project config into a nested mapping. A missing config
// file yields an empty mapping.
func (p *Project) Config() (map[string]any, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.readConfig()
}

// Update reads the config, applies update to the nested mapping, and writes
// the result back atomically via a temp file rename in the project root.
func (p *Project) Update(update func(config map[string]any) error) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	config, err := p.readConfig()
	if err != nil {
		return err
	}
	if err := update(config); err != nil {
		return err
	}
	return p.writeConfig(config)
}

func (p *Project) readConfig() (map[string]any, error) {
	raw, err := os.ReadFile(p.ConfigFile())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return map[string]any{}, nil
		}
		return nil, fmt.Errorf("reading %s: %w", ConfigFileName, err)
	}

	config := map[string]any{}
	if err := yaml.Unmarshal(raw, &config); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", ConfigFileName, err)
	}
	return config, nil
}

func (p *Project) writeConfig(config map[string]any) error {
	tmp, err := os.CreateTemp(p.root, ConfigFileName+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp config file: %w", err)
	}
	defer os.Remove(tmp.Name())

	enc := yaml.NewEncoder(tmp)
	enc.SetIndent(2)
	if err := enc.Encode(config); err != nil {
		tmp.Close()
		return fmt.Errorf("encoding %s: %w", ConfigFileName, err)
	}
	if err := enc.Close(); err != nil {
		tmp.Close()
		return fmt.Errorf("flushing %s: %w", ConfigFileName, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp config file: %w", err)
	}

	if err := os.Rename(tmp.Name(), p.ConfigFile()); err != nil {
		return fmt.Errorf("replacing %s: %w", ConfigFileName, err)
	}
	return nil
}
