package logger

import (
	"io"
	"os"
	"path/filepath"

	fiberLogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/nijaru/yt-summary/config"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Setup points the standard logrus logger at stdout and a rotating file under
// cfg.LogDir. The returned writer is shared with the access log.
func Setup(cfg *config.Config) (io.Writer, error) {
	out, err := newWriter(cfg.LogDir)
	if err != nil {
		return nil, err
	}

	logrus.SetOutput(out)
	if cfg.Production() {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	logrus.SetLevel(logrus.InfoLevel)
	if cfg.Debug {
		logrus.SetLevel(logrus.DebugLevel)
	}

	return out, nil
}

func newWriter(logDir string) (io.Writer, error) {
	if err := os.MkdirAll(logDir, os.ModePerm); err != nil {
		return nil, errors.Wrapf(err, "creating log directory %s", logDir)
	}

	logFile := &lumberjack.Logger{
		Filename:   filepath.Join(logDir, "app.log"),
		MaxSize:    10,
		MaxBackups: 3,
		MaxAge:     28,
		Compress:   true,
	}

	return io.MultiWriter(os.Stdout, logFile), nil
}

func AccessLogConfig(out io.Writer) fiberLogger.Config {
	return fiberLogger.Config{
		Output:     out,
		Format:     "${time} | ${locals:requestid} | ${status} | ${latency} | ${method} | ${path} | ${error}\n",
		TimeFormat: "2006-01-02 15:04:05",
		TimeZone:   "Local",
	}
}
