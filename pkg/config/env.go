package config

import (
	"os"
	"path/filepath"
	"strconv"
)

// EnvFlag reads a boolean switch such as DEMONY_INTEGRATION. Unset or
// unparsable values yield def.
func EnvFlag(key string, def bool) bool {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

// FindUp walks from the working directory towards the root and returns the
// first existing path named filename. Tests run from package directories,
// so a repo-level .env is found this way.
func FindUp(filename string) (string, error) {
	if filename == "" {
		filename = ".env"
	}
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for {
		candidate := filepath.Join(dir, filename)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", os.ErrNotExist
		}
		dir = parent
	}
}
