package notify

import (
	"fmt"
	"os"

	"github.com/Mavwarf/reveil/internal/toast"
)

// Notifier delivers a message to one outward channel.
type Notifier interface {
	Name() string
	Notify(message string) error
}

// Dispatcher fans a fire notification out to every configured channel.
// Delivery is best-effort by contract: a failed channel is reported to
// stderr and never affects the others or the ringing alarm.
type Dispatcher struct {
	notifiers []Notifier
}

func NewDispatcher(notifiers ...Notifier) *Dispatcher {
	return &Dispatcher{notifiers: notifiers}
}

// Notify sends message to all channels.
func (d *Dispatcher) Notify(message string) {
	for _, n := range d.notifiers {
		if err := n.Notify(message); err != nil {
			fmt.Fprintf(os.Stderr, "notify: %s: %v\n", n.Name(), err)
		}
	}
}

// Desktop shows a native desktop notification with a fixed title.
type Desktop struct {
	Title string
}

func (d Desktop) Name() string { return "desktop" }

func (d Desktop) Notify(message string) error {
	title := d.Title
	if title == "" {
		title = "reveil"
	}
	return toast.Show(title, message)
}
