package reporting

import (
	"github.com/ethereum/go-ethereum/log"
)

var _ RunListener = (*LogListener)(nil)

// LogListener writes each event to a logger
type LogListener struct {
	log log.Logger
}

func NewLogListener(logger log.Logger) *LogListener {
	if logger == nil {
		logger = log.New()
	}
	return &LogListener{log: logger}
}

func (l *LogListener) TestSetStarting(entry ReportEntry) {
	l.log.Info("Test set starting", "suite", entry.Source, "test", entry.Name)
}

func (l *LogListener) TestSetCompleted(entry ReportEntry) {
	l.log.Info("Test set completed", "suite", entry.Source, "test", entry.Name, "elapsed", entry.Elapsed)
}

func (l *LogListener) TestStarting(entry ReportEntry) {
	l.log.Debug("Test starting", "class", entry.Source, "method", entry.Name, "groups", entry.Groups)
}

func (l *LogListener) TestSucceeded(entry ReportEntry) {
	l.log.Info("Test passed", "class", entry.Source, "method", entry.Name, "elapsed", entry.Elapsed)
}

func (l *LogListener) TestFailed(entry ReportEntry) {
	l.log.Error("Test failed", "class", entry.Source, "method", entry.Name, "elapsed", entry.Elapsed,
		"message", entry.Message, "err", entry.Cause)
}

func (l *LogListener) TestSkipped(entry ReportEntry) {
	l.log.Warn("Test skipped", "class", entry.Source, "method", entry.Name, "message", entry.Message)
}

func (l *LogListener) BeforeConfigurationFailed(entry ReportEntry) {
	l.log.Error("Before configuration failed", "class", entry.Source, "method", entry.Name, "err", entry.Cause)
}

func (l *LogListener) AfterConfigurationFailed(entry ReportEntry) {
	l.log.Error("After configuration failed", "class", entry.Source, "method", entry.Name, "err", entry.Cause)
}
