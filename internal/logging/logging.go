// Package logging configures the process-wide logrus logger.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Configure sets the level and formatter of the standard logger and sends
// its output to w, or stdout when w is nil. Format is "text" or "json".
func Configure(level, format string, w io.Writer) error {
	lvl, err := log.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		return errors.Wrap(err, "parsing log level")
	}
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "text":
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	case "json":
		log.SetFormatter(&log.JSONFormatter{})
	default:
		return errors.Errorf("unknown log format %q", format)
	}
	if w == nil {
		w = os.Stdout
	}
	log.SetOutput(w)
	log.SetLevel(lvl)
	return nil
}
