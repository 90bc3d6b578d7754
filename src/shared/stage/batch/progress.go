package batch

import (
	"github.com/apex/log"
	"github.com/veedubyou/timbre/src/shared/audio/discovery"
)

//go:generate go run github.com/maxbrunsfeld/counterfeiter/v6 -generate

// Progress is told how many files a stage will look at and then about
// each file as it finishes
//
//counterfeiter:generate . Progress
type Progress interface {
	Start(stage string, total int)
	Advance(file discovery.File, err error)
	Finish()
}

var _ Progress = NoProgress{}
var _ Progress = &LogProgress{}

type NoProgress struct{}

func (NoProgress) Start(string, int)             {}
func (NoProgress) Advance(discovery.File, error) {}
func (NoProgress) Finish()                       {}

// LogProgress reports every file as a log line, for processes without a
// terminal to draw bars on
type LogProgress struct {
	stage string
	total int
	done  int
}

func (l *LogProgress) Start(stage string, total int) {
	l.stage = stage
	l.total = total
	l.done = 0
}

func (l *LogProgress) Advance(file discovery.File, err error) {
	l.done++

	logger := log.WithFields(log.Fields{
		"stage": l.stage,
		"file":  file.Name,
		"done":  l.done,
		"total": l.total,
	})

	if err != nil {
		logger.WithError(err).Warn("File failed")
		return
	}

	logger.Info("File done")
}

func (l *LogProgress) Finish() {
	log.WithFields(log.Fields{
		"stage": l.stage,
		"done":  l.done,
		"total": l.total,
	}).Info("Stage finished")
}
