package notify

import "github.com/gen2brain/beeep"

// Sink delivers a notification to the desktop surface.
type Sink interface {
	Notify(title, message string) error
}

// desktopSink sends platform notifications through beeep.
type desktopSink struct{}

// NewDesktopSink returns the production desktop notification sink.
func NewDesktopSink() Sink {
	beeep.AppName = "Hearth"
	return desktopSink{}
}

func (desktopSink) Notify(title, message string) error {
	return beeep.Notify(title, message, "")
}
