package badgerfx

import (
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"go.uber.org/zap"
)

// badgerLogger forwards badger's printf-style output to zap. Badger reports
// routine housekeeping at info level, which a one-shot CLI run does not need.
type badgerLogger struct {
	sugar *zap.SugaredLogger
}

func newLogger(l *zap.Logger) badger.Logger {
	return &badgerLogger{sugar: l.WithOptions(zap.AddCallerSkip(1)).Sugar()}
}

func (l *badgerLogger) Debugf(format string, a ...any) { l.sugar.Debugf(format, a...) }

func (l *badgerLogger) Infof(format string, a ...any) { l.sugar.Debugf(format, a...) }

func (l *badgerLogger) Warningf(format string, a ...any) { l.sugar.Warnf(format, a...) }

func (l *badgerLogger) Errorf(format string, a ...any) {
	l.sugar.Errorw(fmt.Sprintf(format, a...), zap.String("source", "badger"))
}
