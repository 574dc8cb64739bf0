package saga

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errStore = errors.New("store unavailable")

// recorder 记录步骤执行顺序
type recorder struct {
	calls []string
}

func (r *recorder) step(name string, err error) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		r.calls = append(r.calls, name)
		return err
	}
}

func TestSaga_Execute_Success(t *testing.T) {
	rec := &recorder{}
	s := NewSaga(time.Second)
	s.AddStep("创建借阅记录", rec.step("create", nil), rec.step("revoke", nil))
	s.AddStep("扣减可借数量", rec.step("checkout", nil), rec.step("restore-book", nil))

	require.NoError(t, s.Execute(context.Background()))
	assert.Equal(t, []string{"create", "checkout"}, rec.calls)
}

func TestSaga_Execute_FailureCompensatesInReverse(t *testing.T) {
	rec := &recorder{}
	s := NewSaga(0)
	s.AddStep("创建借阅记录", rec.step("create", nil), rec.step("revoke", nil))
	s.AddStep("扣减可借数量", rec.step("checkout", nil), rec.step("restore-book", nil))
	s.AddStep("加入会员借阅集合", rec.step("borrow", errStore), rec.step("restore-member", nil))

	err := s.Execute(context.Background())
	require.Error(t, err)

	var stepErr *StepError
	require.ErrorAs(t, err, &stepErr)
	assert.Equal(t, 2, stepErr.Index)
	assert.Equal(t, "加入会员借阅集合", stepErr.Step)
	assert.True(t, stepErr.Compensated())
	assert.ErrorIs(t, err, errStore)

	// 失败的步骤本身不补偿
	assert.Equal(t, []string{"create", "checkout", "borrow", "restore-book", "revoke"}, rec.calls)
}

func TestSaga_Execute_CompensationFailure(t *testing.T) {
	errRevoke := errors.New("revoke failed")
	rec := &recorder{}
	s := NewSaga(0)
	s.AddStep("a", rec.step("a", nil), rec.step("undo-a", errRevoke))
	s.AddStep("b", rec.step("b", nil), rec.step("undo-b", nil))
	s.AddStep("c", rec.step("c", errStore), nil)

	err := s.Execute(context.Background())

	var stepErr *StepError
	require.ErrorAs(t, err, &stepErr)
	assert.False(t, stepErr.Compensated())
	assert.ErrorIs(t, stepErr.CompensateErr, errRevoke)
	assert.Contains(t, err.Error(), "补偿失败")
	// 补偿失败后仍继续补偿其余步骤
	assert.Equal(t, []string{"a", "b", "c", "undo-b", "undo-a"}, rec.calls)
}

func TestSaga_Execute_NilCompensateSkipped(t *testing.T) {
	rec := &recorder{}
	s := NewSaga(0)
	s.AddStep("read", rec.step("read", nil), nil)
	s.AddStep("write", rec.step("write", errStore), rec.step("undo-write", nil))

	var stepErr *StepError
	require.ErrorAs(t, s.Execute(context.Background()), &stepErr)
	assert.True(t, stepErr.Compensated())
	assert.Equal(t, []string{"read", "write"}, rec.calls)
}

func TestSaga_Execute_Timeout(t *testing.T) {
	rec := &recorder{}
	s := NewSaga(20 * time.Millisecond)
	s.AddStep("slow", func(ctx context.Context) error {
		rec.calls = append(rec.calls, "slow")
		<-ctx.Done()
		return nil
	}, rec.step("undo-slow", nil))
	s.AddStep("never", rec.step("never", nil), nil)

	err := s.Execute(context.Background())

	var stepErr *StepError
	require.ErrorAs(t, err, &stepErr)
	assert.Equal(t, "never", stepErr.Step)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, []string{"slow", "undo-slow"}, rec.calls)
}

func TestSaga_Execute_CanceledContext(t *testing.T) {
	rec := &recorder{}
	s := NewSaga(0)
	s.AddStep("first", rec.step("first", nil), nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := s.Execute(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, rec.calls)
}

func BenchmarkSaga_Execute(b *testing.B) {
	noop := func(ctx context.Context) error { return nil }
	for i := 0; i < b.N; i++ {
		s := NewSaga(0)
		s.AddStep("a", noop, noop)
		s.AddStep("b", noop, noop)
		s.AddStep("c", noop, noop)
		_ = s.Execute(context.Background())
	}
}
