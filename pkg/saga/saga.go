// Package saga 按步骤执行一组写操作,失败时逆序补偿
//
// 核心思想:
// 1. 每个步骤有正向操作和补偿操作
// 2. 某步失败时,按逆序补偿已完成的步骤
// 3. 补偿失败也继续补偿剩余步骤,并把补偿错误一并返回
//
// 借阅引擎用它保证:三个存储中任一写入失败,其余写入都被撤销,
// 调用方看不到部分修改。
package saga

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Step 表示Saga中的一个步骤
type Step struct {
	Name       string                          // 步骤名称(用于日志和调试)
	Action     func(ctx context.Context) error // 正向操作
	Compensate func(ctx context.Context) error // 补偿操作,可为nil
}

// Saga 表示一组有序步骤
type Saga struct {
	steps    []Step
	executed []Step
	timeout  time.Duration
}

// StepError 步骤执行失败
// Err是步骤本身的错误,CompensateErr是补偿过程中的错误(全部成功时为nil)
type StepError struct {
	Index         int
	Step          string
	Err           error
	CompensateErr error
}

func (e *StepError) Error() string {
	msg := fmt.Sprintf("步骤[%d:%s]执行失败: %v", e.Index, e.Step, e.Err)
	if e.CompensateErr != nil {
		msg += fmt.Sprintf("; 补偿失败: %v", e.CompensateErr)
	}
	return msg
}

// Unwrap 返回步骤本身的错误
func (e *StepError) Unwrap() error {
	return e.Err
}

// Compensated 补偿是否全部成功
func (e *StepError) Compensated() bool {
	return e.CompensateErr == nil
}

// NewSaga 创建Saga,timeout<=0表示不设超时
//
// 示例:
//
//	s := saga.NewSaga(0)
//	s.AddStep("创建借阅记录", createRecord, revokeRecord)
//	s.AddStep("扣减可借数量", saveBook, restoreBook)
//	err := s.Execute(ctx)
func NewSaga(timeout time.Duration) *Saga {
	return &Saga{
		steps:   make([]Step, 0, 4),
		timeout: timeout,
	}
}

// AddStep 添加步骤(按添加顺序执行,按逆序补偿)
func (s *Saga) AddStep(name string, action, compensate func(ctx context.Context) error) {
	s.steps = append(s.steps, Step{
		Name:       name,
		Action:     action,
		Compensate: compensate,
	})
}

// Execute 执行全部步骤
// 失败时返回*StepError;超时视为当前步骤失败
func (s *Saga) Execute(ctx context.Context) error {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	for i, step := range s.steps {
		if err := ctx.Err(); err != nil {
			return s.fail(i, step.Name, fmt.Errorf("saga超时: %w", err))
		}

		if step.Action != nil {
			if err := step.Action(ctx); err != nil {
				return s.fail(i, step.Name, err)
			}
		}

		s.executed = append(s.executed, step)
	}

	return nil
}

func (s *Saga) fail(index int, name string, err error) error {
	// 补偿使用新的Context,避免补偿也因超时被跳过
	return &StepError{
		Index:         index,
		Step:          name,
		Err:           err,
		CompensateErr: s.compensate(context.Background()),
	}
}

// compensate 逆序执行已完成步骤的补偿
func (s *Saga) compensate(ctx context.Context) error {
	var errs []error
	for i := len(s.executed) - 1; i >= 0; i-- {
		step := s.executed[i]
		if step.Compensate == nil {
			continue
		}
		if err := step.Compensate(ctx); err != nil {
			errs = append(errs, fmt.Errorf("补偿[%s]: %w", step.Name, err))
		}
	}
	s.executed = nil
	return errors.Join(errs...)
}
