package member_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/library/internal/domain/member"
	"github.com/xiebiao/library/internal/infrastructure/persistence/memory"
	"github.com/xiebiao/library/pkg/clock"
	apperrors "github.com/xiebiao/library/pkg/errors"
	"github.com/xiebiao/library/pkg/idgen"
)

func newService() (member.Service, member.Repository) {
	repo := memory.NewMemberRepository(idgen.NewSequence(0))
	clk := clock.NewFixed(time.Date(2024, time.March, 1, 15, 0, 0, 0, time.UTC))
	return member.NewService(repo, memory.NewTxManager(), clk), repo
}

func register(t *testing.T, svc member.Service, email string) *member.Member {
	t.Helper()
	m, err := svc.Register(context.Background(), member.RegisterParams{
		Name:  "Alice Walker",
		Email: email,
		Phone: "5551234567",
	})
	require.NoError(t, err)
	return m
}

func ptr[T any](v T) *T { return &v }

func TestRegister(t *testing.T) {
	svc, _ := newService()

	m := register(t, svc, "  Alice@Example.COM ")

	assert.Equal(t, uint(1), m.ID)
	assert.Equal(t, "alice@example.com", m.Email)
	assert.Equal(t, clock.Date(2024, time.March, 1), m.MembershipDate)
	assert.NotNil(t, m.BorrowedBooks)
	assert.Empty(t, m.BorrowedBooks)
}

func TestRegister_MembershipDate(t *testing.T) {
	svc, _ := newService()
	joined := clock.Date(2023, time.December, 24)

	m, err := svc.Register(context.Background(), member.RegisterParams{
		Name: "Bob", Email: "bob@example.com", Phone: "0123456789", MembershipDate: &joined,
	})
	require.NoError(t, err)
	assert.Equal(t, joined, m.MembershipDate)
}

// TestRegister_Validation 全部违规项一次返回
func TestRegister_Validation(t *testing.T) {
	svc, repo := newService()

	_, err := svc.Register(context.Background(), member.RegisterParams{
		Name:  "",
		Email: "not-an-email",
		Phone: "12345",
	})

	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidationFailed))
	assert.Len(t, apperrors.GetAppError(err).Details, 3)

	list, _ := repo.List(context.Background())
	assert.Empty(t, list)
}

func TestRegister_PhoneRules(t *testing.T) {
	svc, _ := newService()
	for _, phone := range []string{"123456789", "12345678901", "12345abcde", "555-123-45"} {
		_, err := svc.Register(context.Background(), member.RegisterParams{Name: "x", Email: "x@y.io", Phone: phone})
		assert.True(t, apperrors.IsKind(err, apperrors.KindValidationFailed), phone)
	}
}

// TestRegister_DuplicateEmail 邮箱不区分大小写
func TestRegister_DuplicateEmail(t *testing.T) {
	svc, _ := newService()
	register(t, svc, "alice@example.com")

	_, err := svc.Register(context.Background(), member.RegisterParams{
		Name: "Other", Email: "ALICE@example.com", Phone: "5550000000",
	})
	assert.ErrorIs(t, err, member.ErrEmailDuplicate)
	assert.True(t, apperrors.IsKind(err, apperrors.KindDuplicateKey))
}

func TestUpdateMember(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()
	alice := register(t, svc, "alice@example.com")
	bob := register(t, svc, "bob@example.com")

	// 只修改传入字段
	updated, err := svc.UpdateMember(ctx, alice.ID, member.UpdateParams{Phone: ptr("9998887777")})
	require.NoError(t, err)
	assert.Equal(t, "9998887777", updated.Phone)
	assert.Equal(t, "Alice Walker", updated.Name)

	// 改成自己的邮箱(大小写不同)不算冲突
	updated, err = svc.UpdateMember(ctx, alice.ID, member.UpdateParams{Email: ptr("ALICE@example.com")})
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", updated.Email)

	_, err = svc.UpdateMember(ctx, bob.ID, member.UpdateParams{Email: ptr("Alice@Example.com")})
	assert.ErrorIs(t, err, member.ErrEmailDuplicate)

	_, err = svc.UpdateMember(ctx, 42, member.UpdateParams{Name: ptr("x")})
	assert.ErrorIs(t, err, member.ErrMemberNotFound)

	_, err = svc.UpdateMember(ctx, alice.ID, member.UpdateParams{Name: ptr(" ")})
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidationFailed))
}

// TestRemoveMember 有未还图书时不能删除
func TestRemoveMember(t *testing.T) {
	svc, repo := newService()
	ctx := context.Background()
	m := register(t, svc, "alice@example.com")

	m.BorrowedBooks = []uint{3}
	require.NoError(t, repo.Update(ctx, m))

	err := svc.RemoveMember(ctx, m.ID)
	assert.ErrorIs(t, err, member.ErrMemberHasLoans)
	assert.True(t, apperrors.IsKind(err, apperrors.KindConflict))

	m.BorrowedBooks = nil
	require.NoError(t, repo.Update(ctx, m))
	require.NoError(t, svc.RemoveMember(ctx, m.ID))

	_, err = svc.GetMember(ctx, m.ID)
	assert.ErrorIs(t, err, member.ErrMemberNotFound)
	assert.ErrorIs(t, svc.RemoveMember(ctx, m.ID), member.ErrMemberNotFound)
}

func TestMember_BorrowReturn(t *testing.T) {
	now := time.Now()
	m := member.NewMember("n", "e@x.io", "0123456789", clock.Date(2024, 1, 1), now)

	require.NoError(t, m.Borrow(1, now))
	require.NoError(t, m.Borrow(2, now))
	assert.ErrorIs(t, m.Borrow(1, now), member.ErrAlreadyBorrowed)
	assert.Equal(t, []uint{1, 2}, m.BorrowedBooks)

	c := m.Clone()
	require.NoError(t, m.Return(1, now))
	assert.Equal(t, []uint{2}, m.BorrowedBooks)
	assert.Equal(t, []uint{1, 2}, c.BorrowedBooks)

	assert.ErrorIs(t, m.Return(1, now), member.ErrNotBorrowing)
}
