package bus

import (
	"errors"
	"testing"

	"github.com/joeycumines/gridedit/internal/schedule"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmit_Coalesces(t *testing.T) {
	var q schedule.Queue
	b := New(&q)
	var got []any
	b.On("selection.changed", func(p any) Result {
		got = append(got, p)
		return Continue
	}, 0)

	for i := 1; i <= 5; i++ {
		b.Emit("selection.changed", i)
	}
	assert.Empty(t, got, "delivery is deferred")
	assert.Equal(t, 1, q.Pending())

	q.Drain()
	assert.Equal(t, []any{5}, got)

	q.Drain()
	assert.Len(t, got, 1)
}

func TestEmit_PriorityAndConsume(t *testing.T) {
	var q schedule.Queue
	b := New(&q)
	var order []string
	b.On("e", func(any) Result { order = append(order, "low"); return Continue }, -5)
	b.On("e", func(any) Result { order = append(order, "mid1"); return Continue }, 0)
	b.On("e", func(any) Result { order = append(order, "high"); return Continue }, 10)
	b.On("e", func(any) Result { order = append(order, "mid2"); return Consumed }, 0)

	b.Emit("e", nil)
	q.Drain()
	assert.Equal(t, []string{"high", "mid1", "mid2"}, order)
}

func TestEmit_TypeOrderAndReentrancy(t *testing.T) {
	var q schedule.Queue
	b := New(&q)
	var order []string
	b.On("a", func(p any) Result {
		order = append(order, "a:"+p.(string))
		b.Emit("b", "from-a")
		return Continue
	}, 0)
	b.On("b", func(p any) Result { order = append(order, "b:"+p.(string)); return Continue }, 0)

	b.Emit("b", "first")
	b.Emit("a", "x")
	b.Emit("b", "second")
	q.Drain()
	assert.Equal(t, []string{"b:second", "a:x", "b:from-a"}, order)
}

func TestOn_Unsubscribe(t *testing.T) {
	var q schedule.Queue
	b := New(&q)
	n := 0
	off := b.On("e", func(any) Result { n++; return Continue }, 0)
	b.Emit("e", nil)
	q.Drain()
	off()
	b.Emit("e", nil)
	q.Drain()
	assert.Equal(t, 1, n)

	b.On("e", func(any) Result { n++; return Continue }, 0)
	b.Off("e")
	b.Emit("e", nil)
	q.Drain()
	assert.Equal(t, 1, n)
}

func TestActions(t *testing.T) {
	b := New(&schedule.Queue{})
	require.NoError(t, b.RegisterAction("double", func(p any) (any, error) { return p.(int) * 2, nil }))

	err := b.RegisterAction("double", func(any) (any, error) { return nil, nil })
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDuplicateAction))
	assert.Contains(t, err.Error(), `"double"`)

	v, err := b.Act("double", 21)
	require.NoError(t, err)
	assert.Equal(t, 42, v)

	_, err = b.Act("missing", nil)
	assert.ErrorIs(t, err, ErrUnknownAction)

	assert.True(t, b.HasAction("double"))
	assert.Equal(t, []string{"double"}, b.Actions())

	assert.Panics(t, func() {
		b.MustRegisterAction("double", func(any) (any, error) { return nil, nil })
	})
}

func TestBuses_AreIndependent(t *testing.T) {
	var q schedule.Queue
	a, b := New(&q), New(&q)
	require.NoError(t, a.RegisterAction("x", func(any) (any, error) { return "a", nil }))
	require.NoError(t, b.RegisterAction("x", func(any) (any, error) { return "b", nil }))
	hits := 0
	a.On("e", func(any) Result { hits++; return Continue }, 0)
	b.Emit("e", nil)
	q.Drain()
	assert.Zero(t, hits)
}
