package logsetup

import (
	"os"
	"strings"

	"github.com/op/go-logging"
)

// Configure installs a leveled stdout backend for every module logger.
func Configure(level string) {
	logging.SetFormatter(
		logging.MustStringFormatter(`%{time:15:04:05.000} %{module:8s} %{level:7s} %{message}`),
	)
	backend := logging.AddModuleLevel(logging.NewLogBackend(os.Stdout, "", 0))
	backend.SetLevel(parseLevel(level), "")
	logging.SetBackend(backend)
}

func parseLevel(level string) logging.Level {
	switch strings.ToLower(level) {
	case "debug":
		return logging.DEBUG
	case "warning", "warn":
		return logging.WARNING
	case "error":
		return logging.ERROR
	default:
		return logging.INFO
	}
}
