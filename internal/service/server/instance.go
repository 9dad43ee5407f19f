package server

import (
	"errors"
	"fmt"
	"os"

	ps "github.com/mitchellh/go-ps"
)

// ErrAlreadyRunning is returned when another process runs the same executable.
var ErrAlreadyRunning = errors.New("another instance is already running")

// ensureSingleInstance fails when a process other than this one runs executable.
func ensureSingleInstance(executable string) error {
	processList, err := ps.Processes()
	if err != nil {
		return fmt.Errorf("list processes: %w", err)
	}

	thisProcessID := os.Getpid()

	for _, process := range processList {
		if process.Pid() == thisProcessID {
			continue
		}

		if process.Executable() == executable {
			return fmt.Errorf("%s has pid %d: %w", executable, process.Pid(), ErrAlreadyRunning)
		}
	}

	return nil
}
