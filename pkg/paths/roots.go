package paths

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/relnote/relnote/pkg/relerrors"
)

// ErrResolvedOutsideRoot indicates a path that escapes the provided root.
var ErrResolvedOutsideRoot = errors.New("path resolved to outside root")

// FindProjectRoot returns the closest directory at or above path containing
// the named project configuration file (e.g. `.relnote.yaml`). The search
// walks bottom-up from path toward /.
func FindProjectRoot(path, configName string) (string, error) {
	f, err := findClosestDir("/", path, func(s string) (bool, error) {
		fi, err := os.Lstat(filepath.Join(s, configName))
		if err != nil {
			return false, fmt.Errorf("%s: %w", configName, err)
		}

		return !fi.IsDir(), nil
	})
	if err != nil {
		return "", fmt.Errorf("%s: %w", configName, err)
	}

	return f, nil
}

// FindRepoRoot returns the closest (innermost) git repository root for the
// provided path by searching bottom-up from path toward /. This matches the
// behavior of git rev-parse --show-toplevel, correctly resolving worktrees
// nested inside a parent repository. If no git repository is found, it will
// return an error.
func FindRepoRoot(path string) (string, error) {
	// Look for a `.git` directory containing a `HEAD` file.
	f, err := findClosestDir("/", path, func(s string) (bool, error) {
		dotGit := filepath.Join(s, ".git")

		fi, err := os.Lstat(dotGit)
		if err != nil {
			return false, fmt.Errorf("%s: %w", dotGit, err)
		}

		var headPath string

		switch {
		case fi.IsDir():
			headPath = filepath.Join(dotGit, "HEAD")
		default:
			gitDir, gitFileErr := resolveGitFile(dotGit, s)
			if gitFileErr != nil {
				return false, nil //nolint:nilerr // Intentionally skip malformed .git files.
			}

			headPath = filepath.Join(gitDir, "HEAD")
		}

		hfi, err := os.Lstat(headPath)
		if err != nil {
			return false, fmt.Errorf("%s: %w", headPath, err)
		}

		return !hfi.IsDir(), nil
	})
	if err != nil {
		return "", fmt.Errorf(".git/HEAD: %w", err)
	}

	return f, nil
}

// resolveGitFile reads a `.git` file (as used in git worktrees) and resolves
// the gitdir path it points to. The file is expected to contain a single line
// in the format `gitdir: <path>`. Relative paths are resolved against baseDir.
func resolveGitFile(dotGitPath, baseDir string) (string, error) {
	f, err := os.Open(dotGitPath) //nolint:gosec // dotGitPath is constructed from filepath.Join, not user input.
	if err != nil {
		return "", fmt.Errorf("open git file: %w", err)
	}
	defer f.Close() //nolint:errcheck // Best-effort close.

	scanner := bufio.NewScanner(f)
	if !scanner.Scan() {
		return "", errors.New("empty git file")
	}

	line := strings.TrimSpace(scanner.Text())

	gitDir, found := strings.CutPrefix(line, "gitdir: ")
	if !found {
		return "", errors.New("missing gitdir prefix")
	}

	if !filepath.IsAbs(gitDir) {
		gitDir = filepath.Join(baseDir, gitDir)
	}

	return filepath.Clean(gitDir), nil
}

// findClosestDir walks from path upward toward root, returning the first
// directory where test returns true.
func findClosestDir(root, path string, test func(string) (bool, error)) (string, error) {
	rootAbs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("get absolute path: %w", err)
	}

	pathAbs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("get absolute path: %w", err)
	}

	if !strings.HasPrefix(pathAbs, rootAbs) {
		return "", ErrResolvedOutsideRoot
	}

	currentDir := pathAbs
	for {
		match, err := test(currentDir)
		if err == nil && match {
			return currentDir, nil
		}

		if currentDir == rootAbs {
			break
		}

		currentDir = filepath.Dir(currentDir)
	}

	return "", relerrors.ErrFileNotFound
}
