package logger

import (
	"os"

	"github.com/sirupsen/logrus"

	"go-card-bank/config"
)

// Log is the shared application logger. It writes to stderr so log lines do
// not mix with the interactive console output.
var Log = logrus.New()

func Init() {
	Log.SetOutput(os.Stderr)
	Log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	level, err := logrus.ParseLevel(config.AppConfig.Log.Level)
	if err != nil {
		level = logrus.WarnLevel
	}
	Log.SetLevel(level)
}
