//go:build !darwin && !linux && !windows

package cli

import "os"

// acquireLock is a no-op where no file locking primitive is wired up.
func acquireLock(dataDir string) (*os.File, error) {
	return nil, nil
}

func releaseLock(file *os.File) {}
