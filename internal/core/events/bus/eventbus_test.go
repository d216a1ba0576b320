package bus

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBasicPublishSubscribe(t *testing.T) {
	b := New()
	var got []Event
	_, err := b.Subscribe("entity.added", func(e Event) error {
		got = append(got, e)
		return nil
	})
	require.NoError(t, err)

	require.NoError(t, b.Publish(NewEvent("entity.added", "tester", 123)))
	require.NoError(t, b.Publish(NewEvent("entity.removed", "tester", 456)))

	require.Len(t, got, 1)
	require.Equal(t, 123, got[0].Data())
	require.Equal(t, "tester", got[0].Source())
	require.False(t, got[0].Timestamp().IsZero())
}

func TestTopicsIsolation(t *testing.T) {
	b := New()
	count1, count2 := 0, 0
	_, _ = b.SubscribeTopic("t1", "ev", func(e Event) error { count1++; return nil })
	_, _ = b.SubscribeTopic("t2", "ev", func(e Event) error { count2++; return nil })

	_ = b.PublishToTopic("t1", NewEvent("ev", "src", nil))
	require.Equal(t, 1, count1)
	require.Equal(t, 0, count2)

	_ = b.Publish(NewEvent("ev", "src", nil))
	require.Equal(t, 1, count1)
	require.Equal(t, 0, count2)
}

func TestWildcardSubscription(t *testing.T) {
	b := New()
	var types []string
	_, err := b.SubscribeTopic("space", "", func(e Event) error {
		types = append(types, e.Type())
		return nil
	})
	require.NoError(t, err)

	_ = b.PublishToTopic("space", NewEvent("a", "src", nil))
	_ = b.PublishToTopic("space", NewEvent("b", "src", nil))
	require.Equal(t, []string{"a", "b"}, types)
}

func TestHandlerErrorsAreJoined(t *testing.T) {
	b := New()
	e1 := errors.New("first")
	e2 := errors.New("second")
	_, _ = b.Subscribe("x", func(Event) error { return e1 })
	_, _ = b.Subscribe("x", func(Event) error { return e2 })
	_, _ = b.Subscribe("x", func(Event) error { return nil })

	err := b.Publish(NewEvent("x", "src", nil))
	require.ErrorIs(t, err, e1)
	require.ErrorIs(t, err, e2)

	m := b.GetMetrics()
	require.EqualValues(t, 1, m.Published)
	require.EqualValues(t, 3, m.DeliveredHandlers)
	require.EqualValues(t, 1, m.Errors)
	require.EqualValues(t, 3, m.SubscribersActive)
}

func TestUnsubscribe(t *testing.T) {
	b := New()
	calls := 0
	sub, err := b.Subscribe("x", func(Event) error { calls++; return nil })
	require.NoError(t, err)
	require.NotEmpty(t, sub.ID())
	require.True(t, sub.IsActive())

	require.NoError(t, b.Unsubscribe(sub))
	require.NoError(t, sub.Cancel())
	require.NoError(t, b.Unsubscribe(nil))
	require.False(t, sub.IsActive())

	_ = b.Publish(NewEvent("x", "src", nil))
	require.Zero(t, calls)
	require.Zero(t, b.GetMetrics().SubscribersActive)

	_, err = b.Subscribe("x", nil)
	require.ErrorIs(t, err, ErrNilHandler)
}
