// Package logging configures the logrus logger shared by the rest of the service.
package logging

import (
	"github.com/sirupsen/logrus"
)

// Log is the base log entry for the service.
var Log = logrus.WithFields(logrus.Fields{
	"service": "quiet-hours",
	"art-id":  "quiet-hours",
	"group":   "org.cyverse",
})

// SetupLogging sets the log level and formatter.
func SetupLogging(configuredLevel string) error {
	level, err := logrus.ParseLevel(configuredLevel)
	if err != nil {
		return err
	}
	logrus.SetLevel(level)
	logrus.SetFormatter(&logrus.JSONFormatter{})
	return nil
}
