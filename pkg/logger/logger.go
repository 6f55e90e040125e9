package logger

import (
	"fmt"
	"log"
	"os"
)

// New returns a stderr-backed logger with component prefix. It backs the
// swallow paths: failures that must never escalate still leave a trace.
func New(component string) *log.Logger {
	prefix := fmt.Sprintf("[%s] ", component)
	return log.New(os.Stderr, prefix, log.LstdFlags|log.Lshortfile)
}
