package messaging

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/library/internal/domain/loan"
	"github.com/xiebiao/library/pkg/circuitbreaker"
	"github.com/xiebiao/library/pkg/clock"
)

// fakeSender 记录发送的消息,err非nil时返回错误
type fakeSender struct {
	err      error
	keys     []string
	messages []interface{}
}

func (s *fakeSender) Publish(ctx context.Context, routingKey string, message interface{}) error {
	if _, ok := ctx.Deadline(); !ok {
		return errors.New("missing deadline")
	}
	s.keys = append(s.keys, routingKey)
	s.messages = append(s.messages, message)
	return s.err
}

func borrowedEvent() loan.Event {
	r := loan.NewRecord(1, 2, clock.Date(2024, time.October, 1), 14)
	r.ID = 5
	return loan.NewBorrowedEvent(r, time.Now())
}

func TestLoanEventPublisher_Publish(t *testing.T) {
	s := &fakeSender{}
	p := NewLoanEventPublisher(s, "library.events", nil)

	require.NoError(t, p.Publish(context.Background(), borrowedEvent()))
	require.Len(t, s.keys, 1)
	assert.Equal(t, loan.EventBorrowed, s.keys[0])

	evt := s.messages[0].(loan.Event)
	assert.Equal(t, uint(5), evt.RecordID)
	assert.Equal(t, "2024-10-15", evt.DueDate)
}

func TestLoanEventPublisher_OpensAfterFailures(t *testing.T) {
	errBroker := errors.New("connection reset")
	s := &fakeSender{err: errBroker}
	p := NewLoanEventPublisher(s, "library.events", nil)

	for i := 0; i < 3; i++ {
		assert.ErrorIs(t, p.Publish(context.Background(), borrowedEvent()), errBroker)
	}
	assert.Equal(t, circuitbreaker.StateOpen, p.State())

	// 熔断后不再调用sender
	err := p.Publish(context.Background(), borrowedEvent())
	assert.ErrorIs(t, err, circuitbreaker.ErrOpenState)
	assert.Len(t, s.keys, 3)
}

func TestNoopPublisher(t *testing.T) {
	assert.NoError(t, NewNoopPublisher(nil).Publish(context.Background(), borrowedEvent()))
}
