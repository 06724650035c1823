package notify

import (
	"log/slog"

	"github.com/gen2brain/beeep"
)

// BeeepSounder plays the default system beep as the message cue.
type BeeepSounder struct{}

func (BeeepSounder) Play() error {
	return beeep.Beep(beeep.DefaultFreq, beeep.DefaultDuration)
}

// BeeepNotifier raises desktop notifications through the OS notifier.
type BeeepNotifier struct{}

func (BeeepNotifier) Notify(title, body string) error {
	return beeep.Notify(title, body, "")
}

// LogToaster is the default in-app toast surface when no UI is attached:
// it writes the toast to the structured log.
type LogToaster struct {
	Log *slog.Logger
}

func (t LogToaster) Toast(title, body string) {
	t.Log.Info("Toast", "title", title, "body", body)
}
