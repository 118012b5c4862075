package client

import "github.com/sirupsen/logrus"

type NoticeLevel string

const (
	NoticeSuccess NoticeLevel = "success"
	NoticeError   NoticeLevel = "error"
)

// Notifier surfaces user visible outcomes of synchronizer actions.
type Notifier interface {
	Notify(level NoticeLevel, title, message string)
}

type LogNotifier struct {
	logger *logrus.Logger
}

func NewLogNotifier(logger *logrus.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(level NoticeLevel, title, message string) {
	entry := n.logger.WithFields(logrus.Fields{
		"notice": title,
		"level":  level,
	})

	if level == NoticeError {
		entry.Warn(message)
		return
	}
	entry.Info(message)
}
