package notification

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/raykavin/atradx/pkg/core"
	"github.com/raykavin/atradx/pkg/logger"
	"github.com/raykavin/atradx/pkg/strategy"
	tb "gopkg.in/tucnak/telebot.v2"
)

const recentSignals = 10

// StatusProvider exposes the current state of the running strategies
type StatusProvider interface {
	Status() []strategy.PairStatus
}

// Telegram sends messages to the configured users and answers the
// /status and /signals commands
type Telegram struct {
	settings core.TelegramSettings
	client   *tb.Bot
	menu     *tb.ReplyMarkup
	status   StatusProvider
	storage  core.SignalStorage
	log      logger.Logger
}

// TelegramOption configures a Telegram instance
type TelegramOption func(*Telegram)

// WithStatusProvider enables the /status command
func WithStatusProvider(provider StatusProvider) TelegramOption {
	return func(t *Telegram) {
		t.status = provider
	}
}

// WithSignalStorage enables the /signals command
func WithSignalStorage(storage core.SignalStorage) TelegramOption {
	return func(t *Telegram) {
		t.storage = storage
	}
}

// WithTelegramLogger sets the logger
func WithTelegramLogger(log logger.Logger) TelegramOption {
	return func(t *Telegram) {
		t.log = log
	}
}

// NewTelegram creates the bot client. Only users listed in the settings
// may issue commands and receive messages.
func NewTelegram(settings core.TelegramSettings, options ...TelegramOption) (*Telegram, error) {
	if settings.Token == "" {
		return nil, errors.New("notification/telegram: empty token")
	}

	t := &Telegram{
		settings: settings,
		menu:     &tb.ReplyMarkup{ResizeReplyKeyboard: true},
		log:      logger.Nop(),
	}
	for _, option := range options {
		option(t)
	}

	poller := &tb.LongPoller{Timeout: 10 * time.Second}
	client, err := tb.NewBot(tb.Settings{
		ParseMode: tb.ModeMarkdown,
		Token:     settings.Token,
		Poller:    tb.NewMiddlewarePoller(poller, t.authorized),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}
	t.client = client

	t.menu.Reply(t.menu.Row(t.menu.Text("/status"), t.menu.Text("/signals")))

	if err := client.SetCommands([]tb.Command{
		{Text: "/help", Description: "Display help instructions"},
		{Text: "/status", Description: "Current trend and stop of each pair"},
		{Text: "/signals", Description: "Last emitted signals"},
	}); err != nil {
		return nil, fmt.Errorf("failed to set commands: %w", err)
	}

	client.Handle("/help", t.HelpHandle)
	client.Handle("/status", t.StatusHandle)
	client.Handle("/signals", t.SignalsHandle)

	return t, nil
}

func (t *Telegram) authorized(u *tb.Update) bool {
	if u.Message == nil || u.Message.Sender == nil {
		return false
	}

	if slices.Contains(t.settings.Users, int(u.Message.Sender.ID)) {
		return true
	}

	t.log.WithField("user", u.Message.Sender.ID).Warn("unauthorized telegram user")
	return false
}

// Start polls for commands in the background and greets the users
func (t *Telegram) Start() {
	go t.client.Start()
	if err := t.broadcast("atradx started.", t.menu); err != nil {
		t.log.WithError(err).Warn("failed to greet telegram users")
	}
}

// Stop stops polling
func (t *Telegram) Stop() {
	t.client.Stop()
}

// Send implements Sender by messaging every configured user
func (t *Telegram) Send(text string) error {
	return t.broadcast(text)
}

func (t *Telegram) broadcast(text string, options ...any) error {
	var errs []error
	for _, user := range t.settings.Users {
		if _, err := t.client.Send(&tb.User{ID: int64(user)}, text, options...); err != nil {
			errs = append(errs, fmt.Errorf("user %d: %w", user, err))
		}
	}
	return errors.Join(errs...)
}

func (t *Telegram) reply(to *tb.User, text string) {
	if _, err := t.client.Send(to, text, t.menu); err != nil {
		t.log.WithError(err).Error("failed to answer telegram command")
	}
}

// HelpHandle lists the available commands
func (t *Telegram) HelpHandle(m *tb.Message) {
	commands, err := t.client.GetCommands()
	if err != nil {
		t.log.WithError(err).Error("failed to get telegram commands")
		return
	}

	lines := make([]string, 0, len(commands))
	for _, command := range commands {
		lines = append(lines, fmt.Sprintf("/%s - %s", command.Text, command.Description))
	}
	t.reply(m.Sender, strings.Join(lines, "\n"))
}

// StatusHandle reports the regime and stop of every pair
func (t *Telegram) StatusHandle(m *tb.Message) {
	if t.status == nil {
		t.reply(m.Sender, "Status is not available.")
		return
	}
	t.reply(m.Sender, FormatStatus(t.status.Status()))
}

// SignalsHandle reports the last journaled signals
func (t *Telegram) SignalsHandle(m *tb.Message) {
	if t.storage == nil {
		t.reply(m.Sender, "Signal journal is not available.")
		return
	}

	signals, err := t.storage.Signals()
	if err != nil {
		t.log.WithError(err).Error("failed to read signal journal")
		t.reply(m.Sender, "Failed to read the signal journal.")
		return
	}
	t.reply(m.Sender, FormatSignals(signals, recentSignals))
}

// FormatStatus renders the state of each pair as a Markdown message
func FormatStatus(status []strategy.PairStatus) string {
	if len(status) == 0 {
		return "No pairs registered."
	}

	var sb strings.Builder
	for i, s := range status {
		if i > 0 {
			sb.WriteString("\n")
		}
		fmt.Fprintf(&sb, "*%s* `%s`", s.Pair, s.Regime)
		if s.Regime != core.RegimeNone {
			fmt.Fprintf(&sb, " stop `%.8g`", s.Stop)
		}
		if !s.Started {
			sb.WriteString(" (warming up)")
		}
	}
	return sb.String()
}

// FormatSignals renders the last n signals, newest first
func FormatSignals(signals []*core.Signal, n int) string {
	if len(signals) == 0 {
		return "No signals emitted."
	}

	lines := make([]string, 0, n)
	for i := len(signals) - 1; i >= 0 && len(lines) < n; i-- {
		s := signals[i]
		lines = append(lines, fmt.Sprintf("`%s` *%s* %s at `%.8g`",
			s.Time.UTC().Format("2006-01-02 15:04"), s.Pair, s.Direction, s.Price))
	}
	return strings.Join(lines, "\n")
}
