package xlog

import (
	"fmt"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"
)

var _ ants.Logger = (*AntsXLogger)(nil)

// AntsXLogger reports the ants pool messages (worker panics mostly)
// at error level under the "ants" component.
type AntsXLogger struct {
	logger *zap.Logger
}

func (l *AntsXLogger) Printf(format string, args ...any) {
	if l == nil || l.logger == nil {
		return
	}
	l.logger.Error(fmt.Sprintf(format, args...))
}

func NewAntsXLogger(logger *XLogger) *AntsXLogger {
	if logger == nil {
		return nil
	}
	return &AntsXLogger{
		logger: logger.Zap().Named("ants").WithOptions(zap.WithCaller(false)),
	}
}
