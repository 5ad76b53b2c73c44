package files

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrSamePath is returned when an output path resolves to the input file.
var ErrSamePath = errors.New("output path refers to the input file")

// RejectSymlinkPath fails when path, or any existing directory above it, is a
// symlink or a Windows reparse point. Missing components are fine: they will
// be created as regular entries.
func RejectSymlinkPath(path string) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("path is empty")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve absolute path: %w", err)
	}

	for p := abs; ; p = filepath.Dir(p) {
		if err := checkComponent(abs, p); err != nil {
			return err
		}
		if parent := filepath.Dir(p); parent == p {
			return nil
		}
	}
}

func checkComponent(target, p string) error {
	info, err := os.Lstat(p)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to access path: %w", err)
	}
	if info.Mode()&os.ModeSymlink != 0 {
		return fmt.Errorf("refusing to write to symlink path: %s (symlink at %s)", target, p)
	}
	reparse, err := isReparsePoint(p)
	if err != nil {
		return fmt.Errorf("failed to check reparse point: %w", err)
	}
	if reparse {
		return fmt.Errorf("refusing to write to symlink path: %s (reparse point at %s)", target, p)
	}
	return nil
}

// CheckOutputPath validates a translation destination: it must not be a
// symlink and must not be the input file itself.
func CheckOutputPath(inPath, outPath string) error {
	if err := RejectSymlinkPath(outPath); err != nil {
		return err
	}
	inInfo, err := os.Stat(inPath)
	if err != nil {
		return fmt.Errorf("failed to stat input: %w", err)
	}
	outInfo, err := os.Stat(outPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to stat output: %w", err)
	}
	if os.SameFile(inInfo, outInfo) {
		return ErrSamePath
	}
	return nil
}
