//go:build linux

package platform

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// readProcComm returns the executable name of a process.
func readProcComm(pid int) (string, error) {
	path := filepath.Join("/proc", fmt.Sprintf("%d", pid), "comm")
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read process name from %s: %w", path, err)
	}
	return strings.TrimSpace(string(data)), nil
}
