package wizard

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/robux-town/order-bot/internal/domain"
	apperrors "github.com/robux-town/order-bot/internal/errors"
)

var errStorageFailure = errors.New("storage error")

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type mockStorage struct {
	mock.Mock
}

func (m *mockStorage) GetSession(ctx context.Context, threadID int64) (*Session, error) {
	args := m.Called(ctx, threadID)
	session, _ := args.Get(0).(*Session)
	return session, args.Error(1)
}

func (m *mockStorage) SetSession(ctx context.Context, threadID int64, session *Session) error {
	args := m.Called(ctx, threadID, session)
	return args.Error(0)
}

func (m *mockStorage) ClearSession(ctx context.Context, threadID int64) error {
	args := m.Called(ctx, threadID)
	return args.Error(0)
}

func (m *mockStorage) AllSessions(ctx context.Context) ([]*Session, error) {
	args := m.Called(ctx)
	sessions, _ := args.Get(0).([]*Session)
	return sessions, args.Error(1)
}

type mockOrderWriter struct {
	mock.Mock
}

func (m *mockOrderWriter) Create(ctx context.Context, record *domain.OrderRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func TestEngineStartSession(t *testing.T) {
	ctx := context.Background()
	threadID := int64(100)

	t.Run("creates fresh session with step one prompt", func(t *testing.T) {
		ms := &mockStorage{}
		ms.On("GetSession", mock.Anything, threadID).Return((*Session)(nil), ErrSessionNotFound).Once()
		ms.On("SetSession", mock.Anything, threadID, mock.MatchedBy(func(s *Session) bool {
			return s.Stage == StageAwaitingStart && s.UserID == 42 && s.Username == "buyer"
		})).Return(nil).Once()

		eng := NewEngine(testConfig(), ms, &mockOrderWriter{}, testLogger(), nil)

		out, err := eng.StartSession(ctx, threadID, 42, "buyer")
		require.NoError(t, err)
		assert.Contains(t, out.Text, "(1/5)")
		assert.Equal(t, KeyboardYesNo, out.Keyboard)
		ms.AssertExpectations(t)
	})

	t.Run("active session in thread is not replaced", func(t *testing.T) {
		ms := &mockStorage{}
		ms.On("GetSession", mock.Anything, threadID).
			Return(&Session{ThreadID: threadID, Stage: StageAwaitingConfirm}, nil).Once()

		eng := NewEngine(testConfig(), ms, &mockOrderWriter{}, testLogger(), nil)

		_, err := eng.StartSession(ctx, threadID, 42, "buyer")
		require.Error(t, err)
		ms.AssertExpectations(t)
	})
}

func TestEngineHandleEvent(t *testing.T) {
	ctx := context.Background()
	threadID := int64(100)

	t.Run("amount submission persists the advanced session", func(t *testing.T) {
		ms := &mockStorage{}
		ms.On("GetSession", mock.Anything, threadID).
			Return(&Session{ThreadID: threadID, UserID: 42, Username: "buyer", Stage: StageAwaitingAmount}, nil).Once()
		ms.On("SetSession", mock.Anything, threadID, mock.MatchedBy(func(s *Session) bool {
			return s.Stage == StageAwaitingConfirm && s.Amount == 10000
		})).Return(nil).Once()

		eng := NewEngine(testConfig(), ms, &mockOrderWriter{}, testLogger(), nil)

		out, err := eng.HandleEvent(ctx, threadID, AmountSubmitted{Raw: "10,000"})
		require.NoError(t, err)
		assert.Contains(t, out.Text, "$10.00")
		ms.AssertExpectations(t)
	})

	t.Run("validation error does not touch storage", func(t *testing.T) {
		ms := &mockStorage{}
		ms.On("GetSession", mock.Anything, threadID).
			Return(&Session{ThreadID: threadID, Stage: StageAwaitingAmount}, nil).Once()

		eng := NewEngine(testConfig(), ms, &mockOrderWriter{}, testLogger(), nil)

		_, err := eng.HandleEvent(ctx, threadID, AmountSubmitted{Raw: "abc"})
		require.Error(t, err)
		ms.AssertExpectations(t)
		ms.AssertNotCalled(t, "SetSession", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("payment leaf writes order record then clears session", func(t *testing.T) {
		ms := &mockStorage{}
		ms.On("GetSession", mock.Anything, threadID).Return(&Session{
			ThreadID: threadID,
			UserID:   42,
			Username: "buyer",
			Stage:    StageAwaitingMethod,
			Amount:   10000,
			PriceUSD: decimal.RequireFromString("10"),
		}, nil).Once()
		ms.On("ClearSession", mock.Anything, threadID).Return(nil).Once()

		mw := &mockOrderWriter{}
		mw.On("Create", mock.Anything, mock.MatchedBy(func(r *domain.OrderRecord) bool {
			return r.PaymentMethod == domain.PaymentMethodPayPal && r.Coin == nil && r.Amount == 10000
		})).Return(nil).Once()

		eng := NewEngine(testConfig(), ms, mw, testLogger(), nil)

		out, err := eng.HandleEvent(ctx, threadID, MethodSelected{Method: domain.PaymentMethodPayPal})
		require.NoError(t, err)
		require.NotNil(t, out.Record)
		ms.AssertExpectations(t)
		mw.AssertExpectations(t)
	})

	t.Run("failed record write leaves session at pre-write stage", func(t *testing.T) {
		ms := &mockStorage{}
		ms.On("GetSession", mock.Anything, threadID).Return(&Session{
			ThreadID: threadID,
			UserID:   42,
			Stage:    StageAwaitingMethod,
			Amount:   10000,
			PriceUSD: decimal.RequireFromString("10"),
		}, nil).Once()

		mw := &mockOrderWriter{}
		mw.On("Create", mock.Anything, mock.Anything).Return(errStorageFailure).Once()

		eng := NewEngine(testConfig(), ms, mw, testLogger(), nil)

		_, err := eng.HandleEvent(ctx, threadID, MethodSelected{Method: domain.PaymentMethodCard})
		require.Error(t, err)

		var appErr *apperrors.AppError
		require.True(t, errors.As(err, &appErr))
		assert.Equal(t, apperrors.CodeDatabase, appErr.Code)
		assert.True(t, appErr.Retryable)

		// The session was never persisted past its pre-write stage, so the
		// method selection can simply be retried.
		ms.AssertNotCalled(t, "SetSession", mock.Anything, mock.Anything, mock.Anything)
		ms.AssertNotCalled(t, "ClearSession", mock.Anything, mock.Anything)
		mw.AssertExpectations(t)
	})

	t.Run("unknown thread surfaces session not found", func(t *testing.T) {
		ms := &mockStorage{}
		ms.On("GetSession", mock.Anything, threadID).Return((*Session)(nil), ErrSessionNotFound).Once()

		eng := NewEngine(testConfig(), ms, &mockOrderWriter{}, testLogger(), nil)

		_, err := eng.HandleEvent(ctx, threadID, StartDecision{Accept: true})
		assert.ErrorIs(t, err, ErrSessionNotFound)
	})
}

func TestEngineCancelSession(t *testing.T) {
	ctx := context.Background()
	threadID := int64(100)

	ms := &mockStorage{}
	ms.On("GetSession", mock.Anything, threadID).
		Return(&Session{ThreadID: threadID, Stage: StageAwaitingAmount}, nil).Once()
	ms.On("ClearSession", mock.Anything, threadID).Return(nil).Once()

	mw := &mockOrderWriter{}

	eng := NewEngine(testConfig(), ms, mw, testLogger(), nil)

	out, err := eng.CancelSession(ctx, threadID)
	require.NoError(t, err)
	assert.True(t, out.CloseThread)
	ms.AssertExpectations(t)
	mw.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}
