//go:build !cgo && !windows

package viewer

import "log/slog"

// Run reports that this build has no window backend.
func Run(cfg Config, logger *slog.Logger) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	return ErrBackendUnavailable
}
