package loan

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/library/pkg/clock"
)

func TestNewRecord(t *testing.T) {
	r := NewRecord(1, 2, time.Date(2024, time.October, 1, 18, 45, 0, 0, time.UTC), 14)

	assert.Equal(t, StatusActive, r.Status)
	assert.Equal(t, clock.Date(2024, time.October, 1), r.BorrowDate)
	assert.Equal(t, clock.Date(2024, time.October, 15), r.DueDate)
	assert.Nil(t, r.ReturnDate)
	assert.True(t, r.IsActive())
}

// TestAssess 应还日期当天归还不算逾期
func TestAssess(t *testing.T) {
	borrowed := clock.Date(2024, time.October, 1)
	r := NewRecord(1, 2, borrowed, 14)

	tests := []struct {
		name     string
		day      int
		late     bool
		daysLate int
		fine     int64
	}{
		{"当天归还", 0, false, 0, 0},
		{"应还日期当天", 14, false, 0, 0},
		{"逾期1天", 15, true, 1, 5},
		{"逾期2天", 16, true, 2, 10},
		{"逾期30天", 44, true, 30, 150},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := r.Assess(clock.AddDays(borrowed, tt.day), 5)
			assert.Equal(t, tt.late, a.IsLate)
			assert.Equal(t, tt.daysLate, a.DaysLate)
			assert.Equal(t, tt.fine, a.Fine)
		})
	}
}

func TestClose(t *testing.T) {
	r := NewRecord(1, 2, clock.Date(2024, time.October, 1), 14)

	require.NoError(t, r.Close(time.Date(2024, time.October, 3, 8, 0, 0, 0, time.UTC)))
	assert.Equal(t, StatusReturned, r.Status)
	require.NotNil(t, r.ReturnDate)
	assert.Equal(t, clock.Date(2024, time.October, 3), *r.ReturnDate)

	// 已归还的记录不可再修改
	assert.ErrorIs(t, r.Close(clock.Date(2024, time.October, 4)), ErrRecordClosed)
	assert.Equal(t, clock.Date(2024, time.October, 3), *r.ReturnDate)
}

func TestClone(t *testing.T) {
	r := NewRecord(1, 2, clock.Date(2024, time.October, 1), 14)
	require.NoError(t, r.Close(clock.Date(2024, time.October, 2)))

	c := r.Clone()
	*c.ReturnDate = clock.Date(2030, time.January, 1)
	assert.Equal(t, clock.Date(2024, time.October, 2), *r.ReturnDate)
}

func TestStatus_Valid(t *testing.T) {
	assert.True(t, StatusActive.Valid())
	assert.True(t, StatusReturned.Valid())
	assert.False(t, Status("overdue").Valid())
	assert.False(t, Status("").Valid())
}
