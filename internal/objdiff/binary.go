package objdiff

import (
	"fmt"
	"os"
	"os/exec"
)

// DefaultBinary is the comparison tool searched for on $PATH when no
// explicit path is configured.
const DefaultBinary = "objdiff-cli"

// Locate resolves the comparison tool binary. Search order:
//  1. Explicit path (if provided)
//  2. $PATH lookup
//
// Failure wraps ErrToolNotConfigured so callers can map it to the
// configuration-remediation message.
func Locate(customPath string) (string, error) {
	if customPath != "" {
		if _, err := os.Stat(customPath); err == nil {
			return customPath, nil
		}
		return "", fmt.Errorf("%w: configured path not found: %s", ErrToolNotConfigured, customPath)
	}

	if path, err := exec.LookPath(DefaultBinary); err == nil {
		return path, nil
	}

	return "", fmt.Errorf("%w: %s not found in PATH\n\n"+
		"To fix this:\n"+
		"  1. Install objdiff-cli: https://github.com/encounter/objdiff/releases\n"+
		"  2. Or set an explicit path in .objtrack.yml:\n"+
		"     objdiff:\n"+
		"       binary: /path/to/objdiff-cli", ErrToolNotConfigured, DefaultBinary)
}
