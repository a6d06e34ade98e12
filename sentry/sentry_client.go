// Package sentry reports listener panics and errors of an observer.Registry
// to Sentry.
package sentry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/purposeinplay/go-observer/observer"
)

// Tags set on the events reported for listener panics.
const (
	TopicTag        = "observer.topic"
	SubscriptionTag = "observer.subscription"
)

// Client is a Sentry API Client.
type Client struct {
	hub *sentry.Hub
}

// Errors returned by the Client's methods.
var (
	ErrNoClientOrScopeAvailable = errors.New("no client or hub available")
	ErrDidNotFullyFlush         = errors.New("not fully flushed")
)

// NewClient initializes the global Sentry hub and returns a Client
// reporting to it.
func NewClient(
	dsn, environment, release string,
	traceSampleRate float64,
) (*Client, error) {
	err := sentry.Init(sentry.ClientOptions{
		// Either set your DSN here or set the SENTRY_DSN environment variable.
		Dsn: dsn,

		// Either set environment and release here or set the SENTRY_ENVIRONMENT
		// and SENTRY_RELEASE environment variables.
		Environment: environment,

		Release: release,

		TracesSampleRate: traceSampleRate,
	})
	if err != nil {
		return nil, fmt.Errorf("sentry init: %w", err)
	}

	return &Client{hub: sentry.CurrentHub()}, nil
}

// NewClientWithHub returns a Client reporting to hub when the context
// carries no hub of its own.
func NewClientWithHub(hub *sentry.Hub) *Client {
	return &Client{hub: hub}
}

// ReportError reports an error to Sentry.
func (c *Client) ReportError(ctx context.Context, err error) error {
	eventID := c.hubFromContext(ctx).CaptureException(err)
	if eventID == nil {
		return ErrNoClientOrScopeAvailable
	}

	return nil
}

// ReportEvent reports an event to Sentry.
func (c *Client) ReportEvent(ctx context.Context, event string) error {
	eventID := c.hubFromContext(ctx).CaptureMessage(event)
	if eventID == nil {
		return ErrNoClientOrScopeAvailable
	}

	return nil
}

// PanicHandler returns an observer.PanicHandler reporting recovered
// listener panics, tagged with the published topic and the subscription.
// The hub is taken from the publish context when it carries one.
func (c *Client) PanicHandler() observer.PanicHandler {
	return func(ev observer.Event, recovered any) {
		ctx := ev.Context
		if ctx == nil {
			ctx = context.Background()
		}

		hub := c.hubFromContext(ctx).Clone()

		hub.WithScope(func(scope *sentry.Scope) {
			scope.SetTag(TopicTag, ev.Topic)

			if ev.Subscription != nil {
				scope.SetTag(SubscriptionTag, ev.Subscription.ID().String())
			}

			hub.RecoverWithContext(ctx, recovered)
		})
	}
}

// Close flushes the buffered events.
func (c *Client) Close() error {
	flushed := c.hub.Flush(time.Second)
	if !flushed {
		return ErrDidNotFullyFlush
	}

	return nil
}

// hubFromContext returns either a hub stored in the context or the hub of
// the client. The return value is guaranteed to be non-nil, unlike
// GetHubFromContext.
func (c *Client) hubFromContext(ctx context.Context) *sentry.Hub {
	if hub := sentry.GetHubFromContext(ctx); hub != nil {
		return hub
	}

	if c.hub != nil {
		return c.hub
	}

	return sentry.CurrentHub()
}
