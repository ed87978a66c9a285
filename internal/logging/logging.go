// Package logging hands out the named subsystem loggers.
package logging

import (
	"fmt"

	golog "github.com/ipfs/go-log/v2"
)

type Logger = golog.ZapEventLogger

func New(system string) *Logger {
	return golog.Logger(system)
}

// SetLevel changes one subsystem, or all of them when system is "*".
func SetLevel(system, level string) error {
	if err := golog.SetLogLevel(system, level); err != nil {
		return fmt.Errorf("can't set log level %q for %s: %w", level, system, err)
	}
	return nil
}
