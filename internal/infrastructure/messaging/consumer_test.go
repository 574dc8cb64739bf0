package messaging

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/xiebiao/library/internal/domain/loan"
	"github.com/xiebiao/library/pkg/clock"
	"github.com/xiebiao/library/pkg/mq"
)

func TestLoanEventAuditor_Handle(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	a := NewLoanEventAuditor("library.loan-audit", zap.New(core))

	r := loan.NewRecord(1, 2, clock.Date(2024, time.October, 1), 14)
	r.ID = 7
	borrowed, err := mq.Encode(loan.NewBorrowedEvent(r, time.Now()))
	require.NoError(t, err)
	require.NoError(t, a.Handle(loan.EventBorrowed, borrowed))

	returnDate := clock.Date(2024, time.October, 17)
	require.NoError(t, r.Close(returnDate))
	returned, err := mq.Encode(loan.NewReturnedEvent(r, r.Assess(returnDate, 5), time.Now()))
	require.NoError(t, err)
	require.NoError(t, a.Handle(loan.EventReturned, returned))

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.Equal(t, int64(10), entries[1].ContextMap()["fine"])
}

// TestLoanEventAuditor_BadMessages 坏消息直接确认,未知类型重新入队
func TestLoanEventAuditor_BadMessages(t *testing.T) {
	a := NewLoanEventAuditor("library.loan-audit", nil)

	assert.NoError(t, a.Handle(loan.EventBorrowed, []byte("{not json")))
	assert.NoError(t, a.Handle(loan.EventReturned, []byte(`{"type":"loan.borrowed"}`)))
	assert.Error(t, a.Handle("loan.lost", []byte(`{"type":"loan.lost"}`)))
}
