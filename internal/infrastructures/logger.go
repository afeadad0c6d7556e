package infrastructures

import (
	"github.com/sirupsen/logrus"
)

// ConfigureLogger sets the global logrus formatter and level.
func ConfigureLogger(cfg *AppConfig) {
	logrus.SetFormatter(&logrus.JSONFormatter{})
	level, err := logrus.ParseLevel(cfg.LOG_LEVEL)
	if err != nil {
		logrus.Warnf("unknown LOG_LEVEL %q, falling back to info", cfg.LOG_LEVEL)
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
}
