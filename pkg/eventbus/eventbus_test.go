package eventbus_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fieldstone-hq/fieldstone/modules/farm/domain/aggregates/farm"
	"github.com/fieldstone-hq/fieldstone/modules/farm/services"
	"github.com/fieldstone-hq/fieldstone/pkg/eventbus"
)

func capturedLogger(level logrus.Level) (*logrus.Logger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	log := logrus.New()
	log.SetOutput(buf)
	log.SetLevel(level)
	return log, buf
}

func newFarmEvent(name string) services.FarmCreatedEvent {
	return services.FarmCreatedEvent{
		Farm: farm.New(uuid.New(), "F001", name, "valley"),
	}
}

func TestPublish_DeliversToMatchingHandler(t *testing.T) {
	t.Parallel()

	bus := eventbus.NewEventPublisher(logrus.New())
	var got []string
	bus.Subscribe(func(e services.FarmCreatedEvent) {
		got = append(got, e.Farm.Name())
	})

	bus.Publish(newFarmEvent("Lone Willow"))

	require.Len(t, got, 1)
	assert.Equal(t, "Lone Willow", got[0])
}

func TestPublish_SkipsMismatchedHandlers(t *testing.T) {
	log, buf := capturedLogger(logrus.WarnLevel)

	bus := eventbus.NewEventPublisher(log)
	bus.Subscribe(func(e services.PlantingClearedEvent) {
		t.Error("planting handler must not see farm events")
	})

	bus.Publish(newFarmEvent("Lone Willow"))

	assert.Contains(t, buf.String(), "no matching subscribers")
}

func TestPublish_HandlerPanicIsContained(t *testing.T) {
	log, buf := capturedLogger(logrus.ErrorLevel)

	bus := eventbus.NewEventPublisher(log)
	var delivered []services.FarmCreatedEvent
	bus.Subscribe(func(e services.FarmCreatedEvent) {
		panic("projection rebuild failed")
	})
	bus.Subscribe(func(e services.FarmCreatedEvent) {
		delivered = append(delivered, e)
	})

	bus.Publish(newFarmEvent("Lone Willow"))

	// A crashing subscriber must not starve the others.
	require.Len(t, delivered, 1)
	assert.Contains(t, buf.String(), "panicked")
	assert.Contains(t, buf.String(), "projection rebuild failed")
}

func TestPublish_AllHandlersPanicReadsAsUnhandled(t *testing.T) {
	log, buf := capturedLogger(logrus.WarnLevel)

	bus := eventbus.NewEventPublisher(log)
	bus.Subscribe(func(e services.FarmCreatedEvent) {
		panic("always down")
	})

	bus.Publish(newFarmEvent("Lone Willow"))

	assert.Contains(t, buf.String(), "no matching subscribers")
}

func TestPublishE_NoSubscribers(t *testing.T) {
	t.Parallel()

	bus := eventbus.NewEventPublisher(logrus.New()).(eventbus.EventBusWithError)
	err := bus.PublishE(newFarmEvent("Lone Willow"))
	assert.ErrorIs(t, err, eventbus.ErrNoSubscribers)
}

func TestPublishE_JoinsHandlerErrors(t *testing.T) {
	t.Parallel()

	bus := eventbus.NewEventPublisher(logrus.New()).(eventbus.EventBusWithError)
	errIndex := errors.New("index update failed")
	errNotify := errors.New("notification failed")
	bus.Subscribe(func(e services.FarmCreatedEvent) error { return errIndex })
	bus.Subscribe(func(e services.FarmCreatedEvent) error { return errNotify })

	err := bus.PublishE(newFarmEvent("Lone Willow"))
	require.Error(t, err)
	assert.ErrorIs(t, err, errIndex)
	assert.ErrorIs(t, err, errNotify)
}

func TestPublishE_PanicBecomesError(t *testing.T) {
	t.Parallel()

	bus := eventbus.NewEventPublisher(nil).(eventbus.EventBusWithError)
	called := false
	bus.Subscribe(func(e services.FarmCreatedEvent) error { panic("boom") })
	bus.Subscribe(func(e services.FarmCreatedEvent) error {
		called = true
		return nil
	})

	err := bus.PublishE(newFarmEvent("Lone Willow"))
	require.Error(t, err)
	assert.True(t, called)
}

func TestPublishE_InvalidReturnSignature(t *testing.T) {
	t.Parallel()

	bus := eventbus.NewEventPublisher(nil).(eventbus.EventBusWithError)
	bus.Subscribe(func(e services.FarmCreatedEvent) int { return 1 })

	err := bus.PublishE(newFarmEvent("Lone Willow"))
	assert.ErrorIs(t, err, eventbus.ErrInvalidHandlerReturn)
}

func TestMatchSignature(t *testing.T) {
	t.Parallel()

	farmHandler := func(e services.FarmCreatedEvent) {}
	assert.True(t, eventbus.MatchSignature(farmHandler, []interface{}{newFarmEvent("x")}))
	assert.False(t, eventbus.MatchSignature(farmHandler, []interface{}{services.PlantingClearedEvent{}}))
	assert.False(t, eventbus.MatchSignature(farmHandler, []interface{}{}))
	assert.False(t, eventbus.MatchSignature(farmHandler, []interface{}{newFarmEvent("x"), newFarmEvent("y")}))

	ctxHandler := func(ctx context.Context) {}
	assert.True(t, eventbus.MatchSignature(ctxHandler, []interface{}{context.Background()}))
}

func TestUnsubscribe(t *testing.T) {
	t.Parallel()

	bus := eventbus.NewEventPublisher(nil)
	handler := func(e services.PlantingClearedEvent) {
		t.Error("unsubscribed handler must not run")
	}
	bus.Subscribe(handler)
	require.Equal(t, 1, bus.SubscribersCount())

	bus.Unsubscribe(handler)
	assert.Zero(t, bus.SubscribersCount())

	bus.Publish(services.PlantingClearedEvent{ChildID: uuid.New()})
}
