// Package logging configures the op/go-logging backend shared by every
// binary in this module, grounded on franky_logging's GetLog helper.
package logging

import (
	"os"

	logging "github.com/op/go-logging"
)

var format = logging.MustStringFormatter(
	`%{time:15:04:05.000} %{shortfile} %{level:.4s} %{message}`,
)

func init() {
	backend := logging.NewLogBackend(os.Stderr, "", 0)
	formatted := logging.NewBackendFormatter(backend, format)
	leveled := logging.AddModuleLevel(formatted)
	leveled.SetLevel(logging.INFO, "")
	logging.SetBackend(leveled)
}

// Get returns a named logger sharing the module-wide backend and format.
func Get(name string) *logging.Logger {
	return logging.MustGetLogger(name)
}

// SetDebug raises every module's level to DEBUG.
func SetDebug() {
	backend := logging.NewLogBackend(os.Stderr, "", 0)
	formatted := logging.NewBackendFormatter(backend, format)
	leveled := logging.AddModuleLevel(formatted)
	leveled.SetLevel(logging.DEBUG, "")
	logging.SetBackend(leveled)
}
