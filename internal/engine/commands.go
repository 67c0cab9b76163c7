package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Priya8975/keyword-pager/internal/domain"
)

// CommandKind identifies a direct-message command.
type CommandKind int

const (
	CommandNoOp CommandKind = iota
	CommandAdd
	CommandRemove
	CommandHelp
)

func (k CommandKind) String() string {
	switch k {
	case CommandAdd:
		return "add"
	case CommandRemove:
		return "remove"
	case CommandHelp:
		return "help"
	default:
		return "noop"
	}
}

// Command is a routed direct message.
type Command struct {
	Kind     CommandKind
	Keywords []string
}

// HelpText is sent in reply to the help command.
const HelpText = "Keyword notifications. Send me:\n" +
	"• `add <keyword> [keyword...]` to be notified when a keyword is posted in a channel\n" +
	"• `remove <keyword> [keyword...]` to stop those notifications\n" +
	"• `help` to see this message"

// Route selects a command from the first token. Unknown commands route to
// CommandNoOp and are silently ignored.
func Route(tokens []string) Command {
	if len(tokens) == 0 {
		return Command{Kind: CommandNoOp}
	}

	switch strings.ToLower(tokens[0]) {
	case "add":
		return Command{Kind: CommandAdd, Keywords: tokens[1:]}
	case "remove":
		return Command{Kind: CommandRemove, Keywords: tokens[1:]}
	case "help":
		return Command{Kind: CommandHelp}
	default:
		return Command{Kind: CommandNoOp}
	}
}

// EventHandler processes one inbound event: direct messages are routed to the
// subscription manager, channel posts to the notifier. Each call is an
// independent unit of work.
type EventHandler struct {
	subscriptions *SubscriptionManager
	notifier      *Notifier
	gateway       Gateway
	sink          ActivitySink
	logger        *slog.Logger
}

func NewEventHandler(subs *SubscriptionManager, notifier *Notifier, gateway Gateway, sink ActivitySink, logger *slog.Logger) *EventHandler {
	return &EventHandler{
		subscriptions: subs,
		notifier:      notifier,
		gateway:       gateway,
		sink:          sinkOrDiscard(sink),
		logger:        logger,
	}
}

// HandleEvent processes ev. Malformed events are ignored without side
// effects. Returned errors are store faults already reported to the logger
// and activity sink; they never mean the event should be retried.
func (h *EventHandler) HandleEvent(ctx context.Context, ev domain.InboundEvent) error {
	if reason := malformed(ev); reason != "" {
		h.logger.Debug("ignoring event", "reason", reason, "kind", ev.Kind)
		h.sink.Publish(domain.Activity{
			Type:         domain.ActivityEventIgnored,
			SubscriberID: ev.UserID,
			Error:        reason,
			Timestamp:    time.Now(),
		})
		return nil
	}

	switch ev.Kind {
	case domain.EventDirectMessage:
		return h.handleDirectMessage(ctx, ev)
	case domain.EventChannelPost:
		return h.handleChannelPost(ctx, ev)
	default:
		return nil
	}
}

func (h *EventHandler) handleDirectMessage(ctx context.Context, ev domain.InboundEvent) error {
	cmd := Route(Normalize(ev.Text))

	var (
		conf Confirmation
		err  error
	)
	switch cmd.Kind {
	case CommandAdd:
		conf, err = h.subscriptions.Subscribe(ctx, ev.UserID, cmd.Keywords)
	case CommandRemove:
		conf, err = h.subscriptions.Unsubscribe(ctx, ev.UserID, cmd.Keywords)
	case CommandHelp:
		h.reply(ctx, ev.UserID, HelpText)
		return nil
	default:
		return nil
	}

	h.reply(ctx, ev.UserID, Acknowledgment(cmd.Kind, conf))
	return err
}

func (h *EventHandler) handleChannelPost(ctx context.Context, ev domain.InboundEvent) error {
	tokens := Normalize(ev.Text)

	reference, err := h.gateway.ResolvePermalink(ctx, ev.ChannelID, ev.Timestamp)
	if err != nil {
		h.logger.Warn("permalink lookup failed, using channel reference",
			"channel_id", ev.ChannelID,
			"timestamp", ev.Timestamp,
			"error", err,
		)
		reference = fallbackReference(ev.ChannelID)
	}

	_, err = h.notifier.Dispatch(ctx, tokens, reference)
	return err
}

func (h *EventHandler) reply(ctx context.Context, userID, text string) {
	if err := h.gateway.PostMessage(ctx, userID, text); err != nil {
		h.logger.Warn("reply failed", "subscriber_id", userID, "error", err)
	}
}

// Acknowledgment lists the keywords a command attempted. It reads the same
// whether or not every keyword was committed.
func Acknowledgment(kind CommandKind, conf Confirmation) string {
	if len(conf.Keywords) == 0 {
		return "No keywords given. Send `help` for usage."
	}

	quoted := make([]string, len(conf.Keywords))
	for i, kw := range conf.Keywords {
		quoted[i] = "`" + kw + "`"
	}
	list := strings.Join(quoted, ", ")

	if kind == CommandRemove {
		return "Stopped notifications for: " + list
	}
	return "You will be notified about: " + list
}

func fallbackReference(channelID string) string {
	return fmt.Sprintf("<#%s>", channelID)
}

func malformed(ev domain.InboundEvent) string {
	switch {
	case ev.UserID == "":
		return "missing user"
	case ev.ChannelID == "":
		return "missing channel"
	case strings.TrimSpace(ev.Text) == "":
		return "missing text"
	case ev.Kind == domain.EventChannelPost && ev.Timestamp == "":
		return "missing timestamp"
	}
	return ""
}
