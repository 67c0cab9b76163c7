package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Priya8975/keyword-pager/internal/domain"
)

// Notifier matches message tokens against the keyword index and notifies
// every matched subscriber once.
//
// It never writes to the store, so any number of dispatches may run
// concurrently. The dedup set lives for one Dispatch call only: dispatching
// the same message twice notifies twice.
type Notifier struct {
	store   Store
	gateway Gateway
	sink    ActivitySink
	logger  *slog.Logger
}

func NewNotifier(store Store, gateway Gateway, sink ActivitySink, logger *slog.Logger) *Notifier {
	return &Notifier{
		store:   store,
		gateway: gateway,
		sink:    sinkOrDiscard(sink),
		logger:  logger,
	}
}

// NotificationText is the message delivered to a matched subscriber.
func NotificationText(reference string) string {
	return fmt.Sprintf("A message matching one of your keywords was posted: %s", reference)
}

// Dispatch notifies each distinct subscriber of any token in tokens and
// returns them in notification order. A subscriber is marked notified once
// its delivery was attempted, even when the gateway failed, so no subscriber
// is contacted twice for one message.
//
// Store faults on individual lookups skip that token and are returned joined
// together with the notified list.
func (n *Notifier) Dispatch(ctx context.Context, tokens []string, reference string) ([]string, error) {
	notified := make(map[string]struct{})
	order := []string{}
	var faults []error

	for _, token := range tokens {
		subscribers, found, err := n.store.Get(ctx, token)
		if err != nil {
			faults = append(faults, fmt.Errorf("looking up keyword %q: %w", token, err))
			n.logger.Error("keyword lookup failed", "keyword", token, "error", err)
			n.sink.Publish(domain.Activity{
				Type:      domain.ActivityStoreFault,
				Keyword:   token,
				Reference: reference,
				Error:     err.Error(),
				Timestamp: time.Now(),
			})
			continue
		}
		if !found {
			continue
		}

		for _, sub := range subscribers {
			if _, ok := notified[sub]; ok {
				continue
			}

			n.deliver(ctx, sub, token, reference)
			notified[sub] = struct{}{}
			order = append(order, sub)
		}
	}

	if len(order) > 0 {
		n.logger.Info("dispatch complete",
			"reference", reference,
			"tokens", len(tokens),
			"notified", len(order),
		)
	}

	if len(faults) > 0 {
		return order, errors.Join(faults...)
	}
	return order, nil
}

func (n *Notifier) deliver(ctx context.Context, subscriberID, keyword, reference string) {
	err := n.gateway.PostMessage(ctx, subscriberID, NotificationText(reference))
	if err != nil {
		n.logger.Warn("notification delivery failed",
			"subscriber_id", subscriberID,
			"reference", reference,
			"error", err,
		)
		n.sink.Publish(domain.Activity{
			Type:         domain.ActivityNotificationFailed,
			SubscriberID: subscriberID,
			Keyword:      keyword,
			Reference:    reference,
			Error:        err.Error(),
			Timestamp:    time.Now(),
		})
		return
	}

	n.sink.Publish(domain.Activity{
		Type:         domain.ActivityNotificationSent,
		SubscriberID: subscriberID,
		Keyword:      keyword,
		Reference:    reference,
		Timestamp:    time.Now(),
	})
}
