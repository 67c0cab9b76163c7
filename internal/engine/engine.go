package engine

import (
	"context"

	"github.com/Priya8975/keyword-pager/internal/domain"
)

// Store is the keyword index. Implementations must make UnionSubscriber and
// RemoveSubscriber atomic per keyword with respect to concurrent callers.
type Store interface {
	// Get returns the subscribers of a keyword. found is false when no
	// document exists for it.
	Get(ctx context.Context, keyword string) (subscribers []string, found bool, err error)
	// UnionSubscriber adds subscriberID to the keyword's set, creating the
	// document if it does not exist.
	UnionSubscriber(ctx context.Context, keyword, subscriberID string) error
	// RemoveSubscriber removes subscriberID from the keyword's set. Absent
	// keywords and subscribers are not errors.
	RemoveSubscriber(ctx context.Context, keyword, subscriberID string) error
}

// Gateway delivers text to users and resolves message references.
type Gateway interface {
	PostMessage(ctx context.Context, subscriberID, text string) error
	ResolvePermalink(ctx context.Context, channelID, timestamp string) (string, error)
}

// ActivitySink receives activity records for observability.
type ActivitySink interface {
	Publish(a domain.Activity)
}

type discardSink struct{}

func (discardSink) Publish(domain.Activity) {}

// MultiSink fans activity out to several sinks.
type MultiSink []ActivitySink

func (m MultiSink) Publish(a domain.Activity) {
	for _, s := range m {
		if s != nil {
			s.Publish(a)
		}
	}
}

func sinkOrDiscard(s ActivitySink) ActivitySink {
	if s == nil {
		return discardSink{}
	}
	return s
}
