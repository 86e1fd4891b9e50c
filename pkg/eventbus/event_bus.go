// Package eventbus delivers domain events between services inside one
// process. Services publish concrete event structs such as a farm or
// planting creation; handlers are plain functions matched by parameter
// signature, so a publisher never knows who listens.
package eventbus

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/sirupsen/logrus"

	"github.com/fieldstone-hq/fieldstone/pkg/serrors"
)

type EventBus interface {
	Publish(args ...interface{})
	Subscribe(handler interface{})
	Unsubscribe(handler interface{})
	Clear()
	SubscribersCount() int
}

// EventBusWithError adds a publishing mode that surfaces handler errors to
// the caller instead of swallowing them.
type EventBusWithError interface {
	EventBus
	PublishE(args ...any) error
}

var (
	ErrNoSubscribers        = serrors.NewError("EVENTBUS_NO_SUBSCRIBERS", "no matching subscribers")
	ErrInvalidHandlerReturn = serrors.NewError("EVENTBUS_INVALID_HANDLER_RETURN", "invalid handler return signature")
)

var errType = reflect.TypeOf((*error)(nil)).Elem()

type bus struct {
	log      *logrus.Logger
	handlers []interface{}
}

func NewEventPublisher(log *logrus.Logger) EventBus {
	return &bus{log: log}
}

// MatchSignature reports whether handler is a function whose parameters can
// accept args positionally. Interface parameters match any implementation;
// nil arguments match interface or pointer parameters.
func MatchSignature(handler interface{}, args []interface{}) bool {
	t := reflect.TypeOf(handler)
	if t.Kind() != reflect.Func {
		return false
	}
	if t.NumIn() != len(args) {
		return false
	}

	for i, arg := range args {
		param := t.In(i)
		if arg == nil {
			if param.Kind() != reflect.Interface && param.Kind() != reflect.Ptr {
				return false
			}
			continue
		}
		argType := reflect.TypeOf(arg)
		if param.Kind() == reflect.Interface {
			if !argType.Implements(param) {
				return false
			}
			continue
		}
		if !argType.AssignableTo(param) {
			return false
		}
	}
	return true
}

// Publish delivers the event to every matching handler. A panicking handler
// is logged and skipped; remaining handlers still run. With no successful
// delivery at all, the event is logged as unhandled.
func (b *bus) Publish(args ...interface{}) {
	in := reflectArgs(args)

	delivered := false
	for _, handler := range b.handlers {
		if !MatchSignature(handler, args) {
			continue
		}
		if b.call(handler, args, in) {
			delivered = true
		}
	}
	if !delivered && b.log != nil {
		b.log.Warnf("eventbus: no matching subscribers for event %v", args)
	}
}

// PublishE is Publish with error reporting: handler errors and panics are
// joined and returned, and an event nobody listens to is ErrNoSubscribers.
func (b *bus) PublishE(args ...any) error {
	in := reflectArgs(args)

	matched := false
	var errs []error
	for _, handler := range b.handlers {
		if !MatchSignature(handler, args) {
			continue
		}
		matched = true
		if err := b.callE(handler, in); err != nil {
			errs = append(errs, err)
		}
	}
	if !matched {
		return ErrNoSubscribers
	}
	return errors.Join(errs...)
}

func (b *bus) Subscribe(handler interface{}) {
	if reflect.TypeOf(handler).Kind() != reflect.Func {
		panic("eventbus: handler must be a function")
	}
	b.handlers = append(b.handlers, handler)
}

func (b *bus) Unsubscribe(handler interface{}) {
	// Func values are not comparable, so identity goes through the code
	// pointer.
	ptr := reflect.ValueOf(handler).Pointer()
	for i, h := range b.handlers {
		if reflect.ValueOf(h).Pointer() == ptr {
			b.handlers = append(b.handlers[:i], b.handlers[i+1:]...)
			return
		}
	}
}

func (b *bus) Clear() {
	b.handlers = nil
}

func (b *bus) SubscribersCount() int {
	return len(b.handlers)
}

// call invokes one handler, absorbing a panic. It reports whether the
// handler ran to completion.
func (b *bus) call(handler interface{}, args []interface{}, in []reflect.Value) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			if b.log != nil {
				b.log.Errorf("eventbus: handler %s panicked with args %v: %v", reflect.TypeOf(handler), args, r)
			}
		}
	}()
	reflect.ValueOf(handler).Call(in)
	return true
}

// callE invokes one handler and maps its outcome to an error: a panic, a
// non-error return signature, or the returned error itself.
func (b *bus) callE(handler interface{}, in []reflect.Value) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("eventbus: handler %s panicked: %v", reflect.TypeOf(handler), r)
		}
	}()

	out := reflect.ValueOf(handler).Call(in)
	switch {
	case len(out) == 0:
		return nil
	case len(out) > 1:
		return fmt.Errorf("%w: handler %s returns %d values", ErrInvalidHandlerReturn, reflect.TypeOf(handler), len(out))
	}
	if out[0].Type() != errType {
		return fmt.Errorf("%w: handler %s returns %s", ErrInvalidHandlerReturn, reflect.TypeOf(handler), out[0].Type())
	}
	if out[0].IsNil() {
		return nil
	}
	return out[0].Interface().(error)
}

func reflectArgs(args []interface{}) []reflect.Value {
	in := make([]reflect.Value, len(args))
	for i, arg := range args {
		in[i] = reflect.ValueOf(arg)
	}
	return in
}
