package observer

import (
	"fmt"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

var dumper = spew.ConfigState{
	Indent:                  " ",
	DisablePointerAddresses: true,
	DisableCapacities:       true,
}

func dump(v any) string {
	return strings.TrimSpace(dumper.Sdump(v))
}

// An Option configures a Registry using the functional options paradigm
// popularized by Rob Pike. If you're unfamiliar with this style, see
// https://commandcenter.blogspot.com/2014/01/self-referential-functions-and-design.html
// and
// https://github.com/uber-go/guide/blob/master/style.md#functional-options
type Option interface {
	fmt.Stringer

	apply(*Registry)
}

type loggerOption struct {
	log *zap.Logger
}

func (o loggerOption) apply(r *Registry) {
	r.log = o.log
}

func (o loggerOption) String() string {
	return fmt.Sprintf("observer.Logger: %t", o.log != nil)
}

// WithLogger sets the logger used for debug traces of subscriptions and
// dispatches, and for recovered panics. Defaults to a no-op logger.
func WithLogger(log *zap.Logger) Option {
	return loggerOption{log: log}
}

type defaultReceiverOption struct {
	receiver any
}

func (o defaultReceiverOption) apply(r *Registry) {
	r.defaultReceiver = o.receiver
}

func (o defaultReceiverOption) String() string {
	return fmt.Sprintf("observer.DefaultReceiver: %s", dump(o.receiver))
}

// WithDefaultReceiver sets the receiver bound to subscriptions created
// without WithReceiver. Defaults to nil.
func WithDefaultReceiver(receiver any) Option {
	return defaultReceiverOption{receiver: receiver}
}

type defaultPriorityOption int

func (o defaultPriorityOption) apply(r *Registry) {
	r.defaultPriority = int(o)
}

func (o defaultPriorityOption) String() string {
	return fmt.Sprintf("observer.DefaultPriority: %d", int(o))
}

// WithDefaultPriority sets the priority of subscriptions created without
// WithPriority. Defaults to 0.
func WithDefaultPriority(priority int) Option {
	return defaultPriorityOption(priority)
}

type tracerProviderOption struct {
	provider trace.TracerProvider
}

func (o tracerProviderOption) apply(r *Registry) {
	r.tracerProvider = o.provider
}

func (o tracerProviderOption) String() string {
	return fmt.Sprintf("observer.TracerProvider: %T", o.provider)
}

// WithTracerProvider sets the provider of the tracer that records a span per
// Publish and Run. Defaults to the global provider.
func WithTracerProvider(provider trace.TracerProvider) Option {
	return tracerProviderOption{provider: provider}
}

type panicHandlerOption PanicHandler

func (o panicHandlerOption) apply(r *Registry) {
	r.panicHandler = PanicHandler(o)
}

func (o panicHandlerOption) String() string {
	return fmt.Sprintf("observer.PanicHandler: %t", o != nil)
}

// WithPanicHandler makes the registry recover listener panics. The handler
// is called with the panic value and the dispatch goes on as if the listener
// had returned true. Without a handler, panics propagate to the publisher.
func WithPanicHandler(h PanicHandler) Option {
	return panicHandlerOption(h)
}

// A SubscribeOption configures a single subscription.
type SubscribeOption interface {
	fmt.Stringer

	applySubscribe(*subscribeConfig)
}

type subscribeConfig struct {
	receiver any
	priority int
	name     string
}

type receiverOption struct {
	receiver any
}

func (o receiverOption) applySubscribe(c *subscribeConfig) {
	c.receiver = o.receiver
}

func (o receiverOption) String() string {
	return fmt.Sprintf("subscription.Receiver: %s", dump(o.receiver))
}

// WithReceiver binds receiver to the subscription. Listeners find it in
// Event.Receiver.
func WithReceiver(receiver any) SubscribeOption {
	return receiverOption{receiver: receiver}
}

type priorityOption int

func (o priorityOption) applySubscribe(c *subscribeConfig) {
	c.priority = int(o)
}

func (o priorityOption) String() string {
	return fmt.Sprintf("subscription.Priority: %d", int(o))
}

// WithPriority sets the priority of the subscription. Lower priorities fire
// first; equal priorities fire in subscription order.
func WithPriority(priority int) SubscribeOption {
	return priorityOption(priority)
}

type nameOption string

func (o nameOption) applySubscribe(c *subscribeConfig) {
	c.name = string(o)
}

func (o nameOption) String() string {
	return fmt.Sprintf("subscription.Name: %s", string(o))
}

// WithName sets the display name matched by ByName.
func WithName(name string) SubscribeOption {
	return nameOption(name)
}
