// Package gateway delivers messages to Slack users and resolves message
// permalinks through the Slack Web API.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/slack-go/slack"
)

// Options configures a Slack gateway.
type Options struct {
	Token string
	// APIURL overrides the Web API base URL. It must end with a slash.
	APIURL string
	// MaxAttempts bounds delivery attempts per message, first try included.
	MaxAttempts int
	// BaseBackoff is the wait before the second attempt; it doubles after.
	BaseBackoff time.Duration
}

// Slack implements the messaging gateway on top of slack-go.
type Slack struct {
	client      *slack.Client
	logger      *slog.Logger
	maxAttempts int
	baseBackoff time.Duration
}

func NewSlack(opts Options, logger *slog.Logger) *Slack {
	var clientOpts []slack.Option
	if opts.APIURL != "" {
		clientOpts = append(clientOpts, slack.OptionAPIURL(opts.APIURL))
	}

	maxAttempts := opts.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	baseBackoff := opts.BaseBackoff
	if baseBackoff <= 0 {
		baseBackoff = 200 * time.Millisecond
	}

	return &Slack{
		client:      slack.New(opts.Token, clientOpts...),
		logger:      logger,
		maxAttempts: maxAttempts,
		baseBackoff: baseBackoff,
	}
}

// PostMessage sends text to a user's direct-message channel. Only failures
// where Slack cannot have posted the message are retried: rate limiting, which
// waits out Retry-After, and connections that were never established. Any
// other failure may have been delivered and is returned without retry, so one
// call never produces two copies of a message.
func (s *Slack) PostMessage(ctx context.Context, subscriberID, text string) error {
	attempt := 0
	op := func() error {
		attempt++
		_, _, err := s.client.PostMessageContext(ctx, subscriberID,
			slack.MsgOptionText(text, false),
			slack.MsgOptionDisableLinkUnfurl(),
		)
		if err == nil {
			return nil
		}
		if !retryable(err) || attempt >= s.maxAttempts {
			return backoff.Permanent(err)
		}

		s.logger.Debug("slack post attempt not accepted, retrying",
			"subscriber_id", subscriberID,
			"attempt", attempt,
			"error", err,
		)

		var rle *slack.RateLimitedError
		if errors.As(err, &rle) && rle.RetryAfter > 0 {
			timer := time.NewTimer(rle.RetryAfter)
			defer timer.Stop()
			select {
			case <-timer.C:
			case <-ctx.Done():
				return backoff.Permanent(err)
			}
		}
		return err
	}

	if err := backoff.Retry(op, s.policy(ctx)); err != nil {
		return fmt.Errorf("posting message to %s after %d attempt(s): %w", subscriberID, attempt, err)
	}
	return nil
}

// ResolvePermalink returns the shareable URL of a channel message.
func (s *Slack) ResolvePermalink(ctx context.Context, channelID, timestamp string) (string, error) {
	link, err := s.client.GetPermalinkContext(ctx, &slack.PermalinkParameters{
		Channel: channelID,
		Ts:      timestamp,
	})
	if err != nil {
		return "", fmt.Errorf("getting permalink: %w", err)
	}
	return link, nil
}

func (s *Slack) policy(ctx context.Context) backoff.BackOff {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = s.baseBackoff
	exp.Multiplier = 2
	exp.RandomizationFactor = 0.2
	exp.MaxElapsedTime = 0
	return backoff.WithContext(backoff.WithMaxRetries(exp, uint64(s.maxAttempts-1)), ctx)
}

// retryable reports whether Slack is known not to have processed the request.
func retryable(err error) bool {
	var rle *slack.RateLimitedError
	if errors.As(err, &rle) {
		return true
	}
	var opErr *net.OpError
	return errors.As(err, &opErr) && opErr.Op == "dial"
}
