package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/Priya8975/keyword-pager/internal/domain"
	"github.com/Priya8975/keyword-pager/internal/worker"
	"github.com/slack-go/slack"
	"github.com/slack-go/slack/slackevents"
)

const maxEventBody = 1 << 20

type handshakePayload struct {
	Type      string `json:"type"`
	Challenge string `json:"challenge"`
}

// Submitter queues inbound events for processing.
type Submitter interface {
	Submit(ev domain.InboundEvent) (string, error)
}

// SlackEventsHandler receives Slack Events API callbacks. It acknowledges
// every accepted request immediately; the work happens on the worker pool.
type SlackEventsHandler struct {
	signingSecret string
	queue         Submitter
	logger        *slog.Logger
}

// NewSlackEventsHandler creates the handler. An empty signingSecret disables
// request signature verification.
func NewSlackEventsHandler(signingSecret string, queue Submitter, logger *slog.Logger) *SlackEventsHandler {
	return &SlackEventsHandler{signingSecret: signingSecret, queue: queue, logger: logger}
}

func (h *SlackEventsHandler) Handle(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxEventBody))
	if err != nil {
		respondError(w, http.StatusBadRequest, "failed to read request body")
		return
	}

	if h.signingSecret != "" {
		if err := h.verify(r.Header, body); err != nil {
			h.logger.Warn("rejected slack request", "error", err)
			respondError(w, http.StatusUnauthorized, "invalid signature")
			return
		}
	}

	// A handshake is answered before anything else, with or without a type.
	var handshake handshakePayload
	if err := json.Unmarshal(body, &handshake); err != nil {
		respondError(w, http.StatusBadRequest, "invalid event payload")
		return
	}
	if handshake.Challenge != "" && (handshake.Type == "" || handshake.Type == slackevents.URLVerification) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(handshake.Challenge))
		return
	}

	outer, err := slackevents.ParseEvent(json.RawMessage(body), slackevents.OptionNoVerifyToken())
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid event payload")
		return
	}

	switch outer.Type {
	case slackevents.CallbackEvent:
		msg, ok := outer.InnerEvent.Data.(*slackevents.MessageEvent)
		if !ok {
			w.WriteHeader(http.StatusOK)
			return
		}
		ev, ok := toInbound(msg)
		if !ok {
			w.WriteHeader(http.StatusOK)
			return
		}

		jobID, err := h.queue.Submit(ev)
		if err != nil {
			h.logger.Error("failed to queue slack event", "error", err, "kind", ev.Kind)
			status := http.StatusServiceUnavailable
			if !errors.Is(err, worker.ErrPoolFull) && !errors.Is(err, worker.ErrPoolStopped) {
				status = http.StatusInternalServerError
			}
			respondError(w, status, "event not accepted")
			return
		}
		h.logger.Debug("queued slack event", "job_id", jobID, "kind", ev.Kind, "channel_id", ev.ChannelID)
	}

	w.WriteHeader(http.StatusOK)
}

func (h *SlackEventsHandler) verify(header http.Header, body []byte) error {
	sv, err := slack.NewSecretsVerifier(header, h.signingSecret)
	if err != nil {
		return err
	}
	if _, err := sv.Write(body); err != nil {
		return err
	}
	return sv.Ensure()
}

// toInbound classifies a Slack message event. Bot messages and messages
// carrying a subtype (edits, joins, deletions) are not user posts.
func toInbound(msg *slackevents.MessageEvent) (domain.InboundEvent, bool) {
	if msg.BotID != "" || msg.SubType != "" {
		return domain.InboundEvent{}, false
	}

	var kind domain.EventKind
	switch msg.ChannelType {
	case "im":
		kind = domain.EventDirectMessage
	case "channel", "group":
		kind = domain.EventChannelPost
	default:
		return domain.InboundEvent{}, false
	}

	return domain.InboundEvent{
		Kind:      kind,
		Text:      msg.Text,
		UserID:    msg.User,
		ChannelID: msg.Channel,
		Timestamp: msg.TimeStamp,
	}, true
}
