package domain

import "time"

// Activity types
const (
	ActivitySubscribed         = "subscribed"
	ActivityUnsubscribed       = "unsubscribed"
	ActivityNotificationSent   = "notification_sent"
	ActivityNotificationFailed = "notification_failed"
	ActivityStoreFault         = "store_fault"
	ActivityEventIgnored       = "event_ignored"
)

// Activity is an observable side effect of processing an event.
type Activity struct {
	Type         string    `json:"type"`
	SubscriberID string    `json:"subscriber_id,omitempty"`
	Keyword      string    `json:"keyword,omitempty"`
	Reference    string    `json:"reference,omitempty"`
	Error        string    `json:"error,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}
