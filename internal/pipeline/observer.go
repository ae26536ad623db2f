package pipeline

import (
	"feedsync/internal/logger"
	"feedsync/internal/report"
)

// Stage names one step of the pipeline.
type Stage string

// Pipeline stages in execution order.
const (
	StageFetch     Stage = "fetch"
	StageParse     Stage = "parse"
	StageNormalize Stage = "normalize"
	StageSort      Stage = "sort"
	StagePartition Stage = "partition"
	StageWrite     Stage = "write"
)

// Observer receives progress from a run. Implementations must not block.
type Observer interface {
	StageStarted(stage Stage)
	StageFinished(stage Stage, attrs ...any)
	Download(downloaded int64, done bool)
	Redirect(from, to string)
	Warning(msg string, args ...any)
}

// NopObserver discards every event.
type NopObserver struct{}

func (NopObserver) StageStarted(Stage)          {}
func (NopObserver) StageFinished(Stage, ...any) {}
func (NopObserver) Download(int64, bool)        {}
func (NopObserver) Redirect(string, string)     {}
func (NopObserver) Warning(string, ...any)      {}

// LogObserver reports events through the structured logger.
type LogObserver struct {
	log          *logger.Logger
	showProgress bool
}

// NewLogObserver creates an observer; download milestones are logged only
// when showProgress is set.
func NewLogObserver(log *logger.Logger, showProgress bool) *LogObserver {
	return &LogObserver{log: log, showProgress: showProgress}
}

func (o *LogObserver) StageStarted(stage Stage) {
	o.log.Debug("Stage started", "stage", string(stage))
}

func (o *LogObserver) StageFinished(stage Stage, attrs ...any) {
	o.log.Info("✅ "+string(stage)+" complete", append([]any{"stage", string(stage)}, attrs...)...)
}

func (o *LogObserver) Download(downloaded int64, done bool) {
	if done {
		o.log.Info("Download complete", "size", report.FormatMB(downloaded))

		return
	}

	if o.showProgress {
		o.log.Info("Downloading...", "size", report.FormatMB(downloaded))
	}
}

func (o *LogObserver) Redirect(from, to string) {
	o.log.Info("Following redirect", "from", from, "to", to)
}

func (o *LogObserver) Warning(msg string, args ...any) {
	o.log.Warn("⚠️  "+msg, args...)
}
