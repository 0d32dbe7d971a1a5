// Package notification delivers strategy signals to people.
package notification

import (
	"fmt"
	"strings"
	"time"

	"github.com/jpillora/backoff"
	"github.com/raykavin/atradx/pkg/core"
	"github.com/raykavin/atradx/pkg/logger"
)

// Sender delivers a text message
type Sender interface {
	Send(text string) error
}

// SenderFunc adapts a function to the Sender interface
type SenderFunc func(text string) error

// Send calls f(text)
func (f SenderFunc) Send(text string) error { return f(text) }

// Notifier formats signals and hands them to a Sender, retrying failed
// sends with exponential backoff. It implements trend.Emitter.
type Notifier struct {
	sender   Sender
	log      logger.Logger
	attempts int
	backoff  *backoff.Backoff
	sleep    func(time.Duration)
}

// NotifierOption configures a Notifier
type NotifierOption func(*Notifier)

// WithLogger sets the logger used to report delivery failures
func WithLogger(log logger.Logger) NotifierOption {
	return func(n *Notifier) {
		n.log = log
	}
}

// WithAttempts sets how many times a message is sent before giving up
func WithAttempts(attempts int) NotifierOption {
	return func(n *Notifier) {
		n.attempts = max(attempts, 1)
	}
}

// WithBackoff sets the delay bounds between attempts
func WithBackoff(minDelay, maxDelay time.Duration) NotifierOption {
	return func(n *Notifier) {
		n.backoff.Min = minDelay
		n.backoff.Max = maxDelay
	}
}

// NewNotifier creates a notifier sending through sender
func NewNotifier(sender Sender, options ...NotifierOption) *Notifier {
	n := &Notifier{
		sender:   sender,
		log:      logger.Nop(),
		attempts: 3,
		backoff: &backoff.Backoff{
			Min:    100 * time.Millisecond,
			Max:    time.Second,
			Factor: 2,
		},
		sleep: time.Sleep,
	}

	for _, option := range options {
		option(n)
	}
	return n
}

// Notify sends the formatted signal
func (n *Notifier) Notify(signal core.Signal) {
	if err := n.send(FormatSignal(signal)); err != nil {
		n.log.WithError(err).WithField("pair", signal.Pair).Error("failed to deliver signal")
	}
}

// OnError sends an error report
func (n *Notifier) OnError(err error) {
	if sendErr := n.send(fmt.Sprintf("🛑 *ERROR*\n`%s`", err)); sendErr != nil {
		n.log.WithError(sendErr).Error("failed to deliver error report")
	}
}

func (n *Notifier) send(text string) error {
	n.backoff.Reset()

	var err error
	for attempt := 1; attempt <= n.attempts; attempt++ {
		if err = n.sender.Send(text); err == nil {
			return nil
		}
		if attempt < n.attempts {
			n.sleep(n.backoff.Duration())
		}
	}
	return fmt.Errorf("giving up after %d attempts: %w", n.attempts, err)
}

// FormatSignal renders a signal as a Markdown message
func FormatSignal(signal core.Signal) string {
	icon := "🟢"
	if signal.Direction == core.DirectionShort {
		icon = "🔴"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s *%s* %s\n", icon, strings.ToUpper(string(signal.Direction)), signal.Pair)
	fmt.Fprintf(&sb, "Price: `%.8g`\n", signal.Price)
	if signal.IsInitial() {
		fmt.Fprintf(&sb, "Initial %s trend\n", signal.To)
	} else {
		fmt.Fprintf(&sb, "Stop `%.8g` breached (%s -> %s)\n", signal.Stop, signal.From, signal.To)
	}
	fmt.Fprintf(&sb, "Candle: %s", signal.Time.UTC().Format(time.RFC3339))
	return sb.String()
}
