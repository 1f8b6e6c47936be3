package phytron

import (
	"os"
	"path/filepath"
	"testing"

	"go.viam.com/test"
)

func TestFileSettingsRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")

	s, err := OpenFileSettings(path)
	test.That(t, err, test.ShouldBeNil)
	_, ok := s.Bool("phi", "inverted")
	test.That(t, ok, test.ShouldBeFalse)

	test.That(t, s.SetBool("phi", "inverted", true), test.ShouldBeNil)
	test.That(t, s.SetBool("theta", "inverted", false), test.ShouldBeNil)

	// A fresh store re-reads the file.
	s2, err := OpenFileSettings(path)
	test.That(t, err, test.ShouldBeNil)
	v, ok := s2.Bool("phi", "inverted")
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, v, test.ShouldBeTrue)
	v, ok = s2.Bool("theta", "inverted")
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, v, test.ShouldBeFalse)
}

func TestFileSettingsBadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	test.That(t, os.WriteFile(path, []byte("{not yaml"), 0o644), test.ShouldBeNil)
	_, err := OpenFileSettings(path)
	test.That(t, err, test.ShouldNotBeNil)
}
