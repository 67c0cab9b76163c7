package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Priya8975/keyword-pager/internal/domain"
)

// Confirmation names the keywords a subscription command attempted. It does
// not promise that every keyword was committed.
type Confirmation struct {
	Keywords []string `json:"keywords"`
}

// SubscriptionManager adds and removes a subscriber's interest in keywords.
//
// Each keyword is an independent unit of work. There is no transaction across
// keywords: when the store fails for one of them the others are still
// processed, and the caller sees a partially applied command plus the joined
// faults.
type SubscriptionManager struct {
	store  Store
	sink   ActivitySink
	logger *slog.Logger
}

func NewSubscriptionManager(store Store, sink ActivitySink, logger *slog.Logger) *SubscriptionManager {
	return &SubscriptionManager{
		store:  store,
		sink:   sinkOrDiscard(sink),
		logger: logger,
	}
}

// Subscribe adds subscriberID to every keyword, creating keyword documents as
// needed. Keywords must already be normalized.
func (m *SubscriptionManager) Subscribe(ctx context.Context, subscriberID string, keywords []string) (Confirmation, error) {
	return m.apply(ctx, subscriberID, keywords, domain.ActivitySubscribed, m.store.UnionSubscriber)
}

// Unsubscribe removes subscriberID from every keyword. Keywords that do not
// exist, or that never contained the subscriber, are left alone.
func (m *SubscriptionManager) Unsubscribe(ctx context.Context, subscriberID string, keywords []string) (Confirmation, error) {
	return m.apply(ctx, subscriberID, keywords, domain.ActivityUnsubscribed, m.store.RemoveSubscriber)
}

func (m *SubscriptionManager) apply(
	ctx context.Context,
	subscriberID string,
	keywords []string,
	activity string,
	op func(ctx context.Context, keyword, subscriberID string) error,
) (Confirmation, error) {
	conf := Confirmation{Keywords: make([]string, 0, len(keywords))}
	var faults []error

	for _, kw := range keywords {
		conf.Keywords = append(conf.Keywords, kw)

		if err := op(ctx, kw, subscriberID); err != nil {
			faults = append(faults, fmt.Errorf("keyword %q: %w", kw, err))
			m.logger.Error("subscription store fault",
				"operation", activity,
				"subscriber_id", subscriberID,
				"keyword", kw,
				"error", err,
			)
			m.sink.Publish(domain.Activity{
				Type:         domain.ActivityStoreFault,
				SubscriberID: subscriberID,
				Keyword:      kw,
				Error:        err.Error(),
				Timestamp:    time.Now(),
			})
			continue
		}

		m.sink.Publish(domain.Activity{
			Type:         activity,
			SubscriberID: subscriberID,
			Keyword:      kw,
			Timestamp:    time.Now(),
		})
	}

	if len(faults) > 0 {
		return conf, errors.Join(faults...)
	}

	m.logger.Info("subscription updated",
		"operation", activity,
		"subscriber_id", subscriberID,
		"keywords", len(keywords),
	)
	return conf, nil
}
