package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"

	"gopkg.in/yaml.v3"
)

// GameConfig holds all loaded configurations
type GameConfig struct {
	Physics    *PhysicsConfig
	Controller *ControllerConfig
}

// Loader loads configuration files using fs.FS interface.
// Each config is looked up as <name>.json, then <name>.yaml, then <name>.yml.
type Loader struct {
	fsys     fs.FS
	basePath string
}

// NewLoader creates a new config loader from filesystem path
func NewLoader(basePath string) *Loader {
	return &Loader{
		fsys:     os.DirFS(basePath),
		basePath: basePath,
	}
}

// NewFSLoader creates a new config loader from fs.FS
func NewFSLoader(fsys fs.FS, basePath string) *Loader {
	return &Loader{
		fsys:     fsys,
		basePath: basePath,
	}
}

// LoadPhysics loads physics.{json,yaml,yml}
func (l *Loader) LoadPhysics() (*PhysicsConfig, error) {
	var cfg PhysicsConfig
	if err := l.decode("physics", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadController loads controller.{json,yaml,yml} and applies defaults
func (l *Loader) LoadController() (*ControllerConfig, error) {
	var cfg ControllerConfig
	if err := l.decode("controller", &cfg); err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()
	return &cfg, nil
}

// LoadAll loads all configurations (physics, controller)
func (l *Loader) LoadAll() (*GameConfig, error) {
	physics, err := l.LoadPhysics()
	if err != nil {
		return nil, err
	}

	controller, err := l.LoadController()
	if err != nil {
		return nil, err
	}

	return &GameConfig{
		Physics:    physics,
		Controller: controller,
	}, nil
}

func (l *Loader) decode(name string, v any) error {
	for _, ext := range []string{".json", ".yaml", ".yml"} {
		file := name + ext
		data, err := fs.ReadFile(l.fsys, file)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path.Join(l.basePath, file), err)
		}

		if ext == ".json" {
			err = json.Unmarshal(data, v)
		} else {
			err = yaml.Unmarshal(data, v)
		}
		if err != nil {
			return fmt.Errorf("failed to parse %s: %w", file, err)
		}
		return nil
	}
	return fmt.Errorf("failed to read %s: no %s.json or %s.yaml: %w", l.basePath, name, name, fs.ErrNotExist)
}
