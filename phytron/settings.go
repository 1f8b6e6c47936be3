package phytron

import (
	"os"
	"sync"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// SettingsStore persists per-axis settings that live outside the controller,
// currently only the inversion flag. A missing entry or a broken backend
// falls back to a default, never crashes the driver.
type SettingsStore interface {
	// Bool returns the stored value and whether one was present.
	Bool(device, key string) (bool, bool)
	SetBool(device, key string, value bool) error
}

// FileSettings is a SettingsStore backed by one YAML file mapping device
// names to key/value pairs.
type FileSettings struct {
	mu     sync.Mutex
	path   string
	values map[string]map[string]bool
}

// OpenFileSettings loads the settings file at path. A missing file is not an
// error; it is created on the first write.
func OpenFileSettings(path string) (*FileSettings, error) {
	s := &FileSettings{path: path, values: make(map[string]map[string]bool)}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read settings file %s", path)
	}
	if err := yaml.Unmarshal(data, &s.values); err != nil {
		return nil, errors.Wrapf(err, "failed to parse settings file %s", path)
	}
	return s, nil
}

// Bool implements SettingsStore.
func (s *FileSettings) Bool(device, key string) (bool, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[device][key]
	return v, ok
}

// SetBool implements SettingsStore and writes the file back synchronously.
func (s *FileSettings) SetBool(device, key string, value bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.values[device] == nil {
		s.values[device] = make(map[string]bool)
	}
	s.values[device][key] = value
	data, err := yaml.Marshal(s.values)
	if err != nil {
		return err
	}
	return errors.Wrapf(os.WriteFile(s.path, data, 0o644), "failed to write settings file %s", s.path)
}
