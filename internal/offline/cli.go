package offline

import (
	"fmt"
	"io"

	"github.com/okian/trainhist/pkg/logger"
)

// SetupLogging sends logs to w, at debug level when verbose is set.
// Reports go to stdout, so logs normally go to stderr.
func SetupLogging(w io.Writer, verbose bool) error {
	if err := logger.Init(logger.WithOutput(w)); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	level := "warn"
	if verbose {
		level = "debug"
	}
	return logger.SetLevelString(level)
}
