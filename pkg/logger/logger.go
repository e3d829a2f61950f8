package logger

import (
	"os"

	"github.com/sirupsen/logrus"
)

// Logger - общий интерфейс логирования для всех слоев приложения.
// Аргументы передаются парами ключ-значение: log.Error("msg", "error", err)
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}

type logrusLogger struct {
	logger *logrus.Logger
}

func New(level string) Logger {
	l := logrus.New()
	l.Out = os.Stdout

	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		parsed = logrus.InfoLevel
	}
	l.SetLevel(parsed)

	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
		PadLevelText:  true,
	})

	return &logrusLogger{logger: l}
}

func (l *logrusLogger) Debug(msg string, args ...interface{}) {
	l.entry(args).Debug(msg)
}

func (l *logrusLogger) Info(msg string, args ...interface{}) {
	l.entry(args).Info(msg)
}

func (l *logrusLogger) Warn(msg string, args ...interface{}) {
	l.entry(args).Warn(msg)
}

func (l *logrusLogger) Error(msg string, args ...interface{}) {
	l.entry(args).Error(msg)
}

func (l *logrusLogger) Fatal(msg string, args ...interface{}) {
	l.entry(args).Fatal(msg)
}

// entry собирает пары ключ-значение в logrus.Fields
func (l *logrusLogger) entry(args []interface{}) *logrus.Entry {
	fields := logrus.Fields{}
	for i := 0; i+1 < len(args); i += 2 {
		key, ok := args[i].(string)
		if !ok {
			continue
		}
		fields[key] = args[i+1]
	}
	return l.logger.WithFields(fields)
}
