// Package logging configures the process-wide logrus logger, used via
// the `log "github.com/sirupsen/logrus"` import alias throughout this
// repo, exactly as in internal/source/cdc/resolver.go and
// internal/source/logical/provider.go.
package logging

import (
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Configure sets the process-wide logrus level from level (one of
// logrus's level names: "trace", "debug", "info", "warn", "error",
// "fatal", "panic") and selects a text or JSON formatter.
func Configure(level string, json bool) error {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return errors.Wrapf(err, "parse log level %q", level)
	}
	log.SetLevel(lvl)

	if json {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
	return nil
}
