package main

import (
	"os"
	"path/filepath"
	"testing"

	"go.viam.com/test"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "phytron.yaml")
	test.That(t, os.WriteFile(path, []byte(contents), 0o644), test.ShouldBeNil)
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
link:
  type: serial
  serial:
    path: /dev/ttyMCC
    baud_rate: 57600
axes:
  - name: phi
    address: 0
    axis: 0
    generation: phymotion
  - name: theta
    address: 0
    axis: 1
    generation: phymotion
    timeout: 500ms
`)
	cfg, err := loadConfig(path)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cfg.Link.Type, test.ShouldEqual, "serial")
	test.That(t, cfg.Axes, test.ShouldHaveLength, 2)
	test.That(t, cfg.Axes[1].Name, test.ShouldEqual, "theta")
}

func TestLoadConfigInvalid(t *testing.T) {
	path := writeConfig(t, `
link:
  type: carrier-pigeon
axes: []
`)
	_, err := loadConfig(path)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "unknown link type")
	test.That(t, err.Error(), test.ShouldContainSubstring, "at least one axis")
}

func TestLoadConfigBadAxis(t *testing.T) {
	path := writeConfig(t, `
link:
  type: tcp
  tcp:
    address: "10.0.0.5:4001"
axes:
  - name: phi
    address: 0
    axis: 5
    generation: phymotion
`)
	_, err := loadConfig(path)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "invalid axis")
}
