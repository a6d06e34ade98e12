package observer

import (
	"context"
	"fmt"
	"sync"

	"github.com/purposeinplay/go-observer/errors"
	"github.com/purposeinplay/go-observer/logger"
	"github.com/purposeinplay/go-observer/topictree"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const tracerName = "github.com/purposeinplay/go-observer/observer"

// Span attribute keys.
const (
	TopicKey     = attribute.Key("observer.topic")
	HaltedKey    = attribute.Key("observer.halted")
	DeliveredKey = attribute.Key("observer.delivered")
)

// Registry holds a topic tree and dispatches published events to the
// listeners subscribed along it.
//
// The zero value is ready to use. A Registry must not be copied after first
// use.
type Registry struct {
	initOnce sync.Once

	root       *topictree.Node
	dispatcher topictree.Dispatcher

	log            *zap.Logger
	tracerProvider trace.TracerProvider
	tracer         trace.Tracer

	defaultReceiver any
	defaultPriority int
	panicHandler    PanicHandler

	stats counters
}

// New returns a Registry configured with opts.
func New(opts ...Option) *Registry {
	r := new(Registry)

	for _, opt := range opts {
		opt.apply(r)
	}

	r.init()

	return r
}

func (r *Registry) init() {
	r.initOnce.Do(func() {
		r.root = topictree.NewNode()
		r.log = logger.Named(r.log, "observer")

		if r.tracerProvider == nil {
			r.tracerProvider = otel.GetTracerProvider()
		}

		r.tracer = r.tracerProvider.Tracer(tracerName)

		if r.panicHandler != nil {
			r.dispatcher.Recover = r.recover
		}
	})
}

// Subscribe registers l on every topic of the whitespace separated topics
// list. A blank list subscribes to the root, which hears every publish.
//
// The returned Subscription is shared by all the topics, so
// Unsubscribe(topics, BySubscription(s)) removes it everywhere. Topics are
// validated before anything is registered.
func (r *Registry) Subscribe(
	topics string,
	l Listener,
	opts ...SubscribeOption,
) (*Subscription, error) {
	return r.subscribe(topics, l, false, opts)
}

// Once is like Subscribe, but the subscription is removed from all its
// topics the first time it fires.
func (r *Registry) Once(
	topics string,
	l Listener,
	opts ...SubscribeOption,
) (*Subscription, error) {
	return r.subscribe(topics, l, true, opts)
}

func (r *Registry) subscribe(
	topics string,
	l Listener,
	once bool,
	opts []SubscribeOption,
) (*Subscription, error) {
	r.init()

	cfg := subscribeConfig{
		receiver: r.defaultReceiver,
		priority: r.defaultPriority,
	}

	for _, opt := range opts {
		opt.applySubscribe(&cfg)
	}

	paths := uniq(topictree.Fields(topics))

	for _, topic := range paths {
		if err := topictree.Validate(topic); err != nil {
			return nil, fmt.Errorf("subscribe %q: %w", topics, err)
		}
	}

	newSubscription := topictree.NewSubscription
	if once {
		newSubscription = topictree.NewOnceSubscription
	}

	s, err := newSubscription(cfg.receiver, l, cfg.priority, cfg.name)
	if err != nil {
		return nil, fmt.Errorf("subscribe %q: %w", topics, err)
	}

	for _, topic := range paths {
		topictree.Descend(r.root, topic).Insert(s)
	}

	r.log.Debug(
		"subscribed",
		zap.Stringer("subscription", s.ID()),
		zap.Strings("topics", paths),
		zap.Int("priority", s.Priority()),
		zap.Bool("once", once),
	)

	return s, nil
}

// Unsubscribe removes the subscriptions selected by m from every topic of
// the whitespace separated topics list. A nil m removes them all. Topics
// that were never subscribed to are ignored.
func (r *Registry) Unsubscribe(topics string, m Matcher) {
	r.init()

	var removed int

	for _, topic := range topictree.Fields(topics) {
		node, ok := topictree.Find(r.root, topic)
		if !ok {
			continue
		}

		removed += node.Remove(m)
	}

	r.log.Debug(
		"unsubscribed",
		zap.String("topics", topics),
		zap.Int("removed", removed),
	)
}

// Publish is PublishContext with a background context.
func (r *Registry) Publish(topic string, payload any) bool {
	return r.PublishContext(context.Background(), topic, payload)
}

// PublishContext fires the listeners of topic, then those of each ancestor
// up to the root. It returns false when a listener stopped the dispatch.
// Publishing a topic nobody subscribed to only reaches the ancestors that
// exist, and returns true when none of them stops it.
func (r *Registry) PublishContext(
	ctx context.Context,
	topic string,
	payload any,
) bool {
	r.init()

	if ctx == nil {
		ctx = context.Background()
	}

	ctx, span := r.tracer.Start(
		ctx,
		"observer.publish",
		trace.WithAttributes(TopicKey.String(topic)),
	)
	defer span.End()

	r.stats.published.Inc()

	out := r.dispatcher.Dispatch(r.root, topictree.Event{
		Context: ctx,
		Topic:   topic,
		Payload: payload,
	})

	r.record(span, topic, out)

	return out.Result == topictree.Continued
}

// Run is RunContext with a background context.
func (r *Registry) Run(topic string, payload any) (bool, error) {
	return r.RunContext(context.Background(), topic, payload)
}

// RunContext fires the listeners of topic only, without bubbling to its
// ancestors. It returns an error matching ErrTopicNotFound when no node
// exists for topic, and false when a listener stopped the dispatch. A topic
// that exists only as the parent of deeper subscriptions runs with no
// listeners and returns true.
func (r *Registry) RunContext(
	ctx context.Context,
	topic string,
	payload any,
) (bool, error) {
	r.init()

	if ctx == nil {
		ctx = context.Background()
	}

	ctx, span := r.tracer.Start(
		ctx,
		"observer.run",
		trace.WithAttributes(TopicKey.String(topic)),
	)
	defer span.End()

	r.stats.published.Inc()

	out, ok := r.dispatcher.Direct(r.root, topictree.Event{
		Context: ctx,
		Topic:   topic,
		Payload: payload,
	})
	if !ok {
		r.stats.notFound.Inc()

		err := errors.New(
			errors.ErrorTypeNotFound,
			CodeTopicNotFound,
			"topic %q",
			topic,
		)

		span.SetStatus(codes.Error, err.Error())

		r.log.Debug("topic not found", zap.String("topic", topic))

		return false, err
	}

	r.record(span, topic, out)

	return out.Result == topictree.Continued, nil
}

// Topics returns the topics holding at least one subscription, parents
// before children. The root topic is reported as "".
func (r *Registry) Topics() []string {
	r.init()

	var topics []string

	topictree.Walk(r.root, func(topic string, n *topictree.Node) bool {
		if n.Len() > 0 {
			topics = append(topics, topic)
		}

		return true
	})

	return topics
}

// Stats returns a copy of the registry counters.
func (r *Registry) Stats() Stats {
	return r.stats.snapshot()
}

func (r *Registry) record(span trace.Span, topic string, out topictree.Outcome) {
	halted := out.Result == topictree.Halted

	r.stats.delivered.Add(uint64(out.Fired))

	span.SetAttributes(
		DeliveredKey.Int(out.Fired),
		HaltedKey.Bool(halted),
	)

	if !halted {
		return
	}

	r.stats.halted.Inc()

	r.log.Debug(
		"dispatch halted",
		zap.String("topic", topic),
		zap.Stringer("subscription", out.HaltedBy.ID()),
		zap.Int("fired", out.Fired),
	)
}

func (r *Registry) recover(ev Event, s *Subscription, recovered any) {
	r.stats.recovered.Inc()

	ev.Receiver = s.Receiver()
	ev.Subscription = s

	r.log.Error(
		"listener panicked",
		zap.String("topic", ev.Topic),
		zap.Stringer("subscription", s.ID()),
		zap.Any("panic", recovered),
		zap.Stack("stack"),
	)

	trace.SpanFromContext(ev.Context).AddEvent(
		"listener panicked",
		trace.WithAttributes(attribute.String("subscription", s.ID().String())),
	)

	r.panicHandler(ev, recovered)
}

func uniq(topics []string) []string {
	seen := make(map[string]struct{}, len(topics))
	out := topics[:0]

	for _, topic := range topics {
		if _, ok := seen[topic]; ok {
			continue
		}

		seen[topic] = struct{}{}
		out = append(out, topic)
	}

	return out
}
