package events

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"casinobot/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestTransactionalBus_FlushDelivers(t *testing.T) {
	mainBus := NewBus()
	transactionalBus := NewTransactionalBus(mainBus)

	received := make(chan BalanceChangeEvent, 1)
	mainBus.Subscribe(EventTypeBalanceChange, func(ctx context.Context, event Event) {
		if e, ok := event.(BalanceChangeEvent); ok {
			received <- e
		}
	})

	testEvent := BalanceChangeEvent{
		AccountID:       "42",
		OldBalance:      1000,
		NewBalance:      1100,
		TransactionType: models.TransactionTypeCoinflipWin,
		ChangeAmount:    100,
	}
	transactionalBus.Publish(testEvent)
	assert.Equal(t, 1, transactionalBus.Pending())

	require.NoError(t, transactionalBus.Flush(context.Background()))
	assert.Equal(t, 0, transactionalBus.Pending())

	select {
	case got := <-received:
		assert.Equal(t, testEvent, got)
	case <-time.After(2 * time.Second):
		t.Fatal("event was not delivered")
	}
}

func TestTransactionalBus_FlushSurvivesCancelledContext(t *testing.T) {
	mainBus := NewBus()
	transactionalBus := NewTransactionalBus(mainBus)

	errs := make(chan error, 1)
	mainBus.Subscribe(EventTypeDailyClaimed, func(ctx context.Context, event Event) {
		errs <- ctx.Err()
	})

	ctx, cancel := context.WithCancel(context.Background())
	transactionalBus.Publish(DailyClaimedEvent{AccountID: "1", Amount: 300, ClaimedAt: 86400})
	require.NoError(t, transactionalBus.Flush(ctx))
	cancel()

	select {
	case err := <-errs:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("event was not delivered")
	}
}

func TestTransactionalBus_Discard(t *testing.T) {
	mainBus := NewBus()
	transactionalBus := NewTransactionalBus(mainBus)

	received := make(chan struct{}, 1)
	mainBus.SubscribeAll(func(ctx context.Context, event Event) {
		received <- struct{}{}
	})

	transactionalBus.Publish(GamePlayedEvent{AccountID: "1", Game: "slots", Bet: 10, Delta: -10})
	transactionalBus.Discard()
	require.NoError(t, transactionalBus.Flush(context.Background()))

	select {
	case <-received:
		t.Fatal("discarded event was delivered")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestTransactionalBus_NilBus(t *testing.T) {
	transactionalBus := NewTransactionalBus(nil)
	transactionalBus.Publish(AccountCreatedEvent{AccountID: "1", InitialBalance: 1000})
	assert.NoError(t, transactionalBus.Flush(context.Background()))
}

func TestBus_PanickingHandlerDoesNotStopOthers(t *testing.T) {
	bus := NewBus()

	var wg sync.WaitGroup
	wg.Add(1)
	bus.Subscribe(EventTypeAccountCreated, func(ctx context.Context, event Event) {
		panic("boom")
	})
	bus.Subscribe(EventTypeAccountCreated, func(ctx context.Context, event Event) {
		wg.Done()
	})

	bus.Emit(context.Background(), AccountCreatedEvent{AccountID: "7", InitialBalance: 1000})

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("second handler never ran")
	}
}

type mockConn struct {
	mock.Mock
}

func (m *mockConn) Publish(subject string, data []byte) error {
	args := m.Called(subject, data)
	return args.Error(0)
}

func (m *mockConn) IsConnected() bool {
	return m.Called().Bool(0)
}

func (m *mockConn) Close() {
	m.Called()
}

func TestNATSPublisher_Publish(t *testing.T) {
	conn := new(mockConn)
	publisher := newNATSPublisher(conn)

	var captured []byte
	conn.On("Publish", "casino.game_played", mock.AnythingOfType("[]uint8")).
		Run(func(args mock.Arguments) { captured = args.Get(1).([]byte) }).
		Return(nil)

	event := GamePlayedEvent{AccountID: "9", Game: "coinflip", Bet: 100, Delta: 100, Won: true}
	require.NoError(t, publisher.Publish(event))

	var envelope Envelope
	require.NoError(t, json.Unmarshal(captured, &envelope))
	assert.Equal(t, EventTypeGamePlayed, envelope.EventType)
	assert.Equal(t, "casinobot", envelope.SourceService)
	assert.Len(t, envelope.EventID, 26)

	var payload GamePlayedEvent
	require.NoError(t, json.Unmarshal(envelope.Payload, &payload))
	assert.Equal(t, event, payload)

	conn.AssertExpectations(t)
}

func TestNATSPublisher_PublishError(t *testing.T) {
	conn := new(mockConn)
	publisher := newNATSPublisher(conn)
	conn.On("Publish", "casino.daily_claimed", mock.Anything).Return(errors.New("nats: connection closed"))

	err := publisher.Publish(DailyClaimedEvent{AccountID: "1", Amount: 300})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "casino.daily_claimed")
}

func TestNATSPublisher_AttachForwardsBusEvents(t *testing.T) {
	conn := new(mockConn)
	publisher := newNATSPublisher(conn)
	bus := NewBus()
	publisher.Attach(bus)

	published := make(chan string, 1)
	conn.On("Publish", "casino.balance_change", mock.Anything).
		Run(func(args mock.Arguments) { published <- args.String(0) }).
		Return(nil)

	bus.Emit(context.Background(), BalanceChangeEvent{AccountID: "1", ChangeAmount: 300})

	select {
	case subject := <-published:
		assert.Equal(t, "casino.balance_change", subject)
	case <-time.After(2 * time.Second):
		t.Fatal("event was not forwarded")
	}
}

func TestSubjectFor(t *testing.T) {
	for _, eventType := range AllEventTypes {
		assert.Equal(t, "casino."+string(eventType), SubjectFor(eventType))
	}
}
