package cli

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"github.com/ardnew/hbs/pkg"
)

const (
	baseConfig  = "config.yaml"
	localConfig = "." + pkg.Name + ".yaml"
	dirMode     = 0o700
)

var debugBinary = regexp.MustCompile(`^__debug_bin\d*$`)

// appName is the executable's base name without extension or leading dots.
// Binaries built by dlv fall back to the package name.
var appName = sync.OnceValue(func() string {
	exe, err := os.Executable()
	if err != nil {
		exe = os.Args[0]
	}

	name := filepath.Base(exe)
	name = strings.TrimLeft(strings.TrimSuffix(name, filepath.Ext(name)), ".")

	if name == "" || debugBinary.MatchString(name) {
		return pkg.Name
	}

	return name
})

// userDir joins appName to the first base directory that resolves: the
// platform directory from system, then ~/fallback, then the working
// directory.
func userDir(system func() (string, error), fallback string) string {
	if dir, err := system(); err == nil {
		return filepath.Join(dir, appName())
	}

	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, fallback, appName())
	}

	if wd, err := os.Getwd(); err == nil {
		return filepath.Join(wd, "."+appName())
	}

	return "." + appName()
}

var (
	configDir = sync.OnceValue(func() string { return userDir(os.UserConfigDir, ".config") })
	cacheDir  = sync.OnceValue(func() string { return userDir(os.UserCacheDir, ".cache") })
)

func configPath(elem ...string) string {
	return filepath.Join(append([]string{configDir()}, elem...)...)
}

// projectConfig returns the nearest localConfig file found walking up from
// dir, or "" when there is none.
func projectConfig(dir string) string {
	for {
		path := filepath.Join(dir, localConfig)
		if info, err := os.Stat(path); err == nil && info.Mode().IsRegular() {
			return path
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}

		dir = parent
	}
}

func ensureDirs() error {
	for _, dir := range []string{configDir(), cacheDir()} {
		if err := os.MkdirAll(dir, dirMode); err != nil {
			return err
		}
	}

	return nil
}
