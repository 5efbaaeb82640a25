package events

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tOgg1/waybill/internal/models"
)

func TestFilter_Matches(t *testing.T) {
	tests := []struct {
		name   string
		filter Filter
		event  *models.Event
		want   bool
	}{
		{
			name:   "empty filter matches any event",
			filter: Filter{},
			event:  &models.Event{Type: models.EventTypeWaybillActivated},
			want:   true,
		},
		{
			name:   "nil event returns false",
			filter: Filter{},
			event:  nil,
			want:   false,
		},
		{
			name:   "event type filter rejects non-matching",
			filter: Filter{EventTypes: []models.EventType{models.EventTypePageShown}},
			event:  &models.Event{Type: models.EventTypePageHidden, PageID: "waybill"},
			want:   false,
		},
		{
			name: "multiple event types - matches any",
			filter: Filter{EventTypes: []models.EventType{
				models.EventTypePageShown,
				models.EventTypePageHidden,
			}},
			event: &models.Event{Type: models.EventTypePageHidden, PageID: "waybill"},
			want:  true,
		},
		{
			name:   "page id filter rejects other page",
			filter: Filter{PageID: "waybill"},
			event:  &models.Event{Type: models.EventTypePageShown, PageID: "mine"},
			want:   false,
		},
		{
			name:   "page id filter passes unscoped events",
			filter: Filter{PageID: "waybill"},
			event:  &models.Event{Type: models.EventTypeWaybillActivated, WaybillType: 1},
			want:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, tt.filter.Matches(tt.event))
		})
	}
}

func TestInMemoryPublisher_SubscribeErrors(t *testing.T) {
	pub := NewInMemoryPublisher()
	noop := func(*models.Event) {}

	require.ErrorIs(t, pub.Subscribe("", Filter{}, noop), ErrInvalidSubscriptionID)
	require.ErrorIs(t, pub.Subscribe("a", Filter{}, nil), ErrNilHandler)
	require.NoError(t, pub.Subscribe("a", Filter{}, noop))
	require.ErrorIs(t, pub.Subscribe("a", Filter{}, noop), ErrSubscriptionExists)
	require.ErrorIs(t, pub.Unsubscribe("missing"), ErrSubscriptionNotFound)
	require.Equal(t, 1, pub.SubscriberCount())

	require.NoError(t, pub.Unsubscribe("a"))
	require.Equal(t, 0, pub.SubscriberCount())
}

func TestInMemoryPublisher_DeliversInSubscriptionOrder(t *testing.T) {
	pub := NewInMemoryPublisher()
	var got []string
	for _, id := range []string{"first", "second", "third"} {
		id := id
		require.NoError(t, pub.Subscribe(id, Filter{}, func(*models.Event) {
			got = append(got, id)
		}))
	}

	pub.Publish(context.Background(), &models.Event{Type: models.EventTypeWaybillActivated})
	require.Equal(t, []string{"first", "second", "third"}, got)
}

func TestInMemoryPublisher_AssignsIDAndTimestamp(t *testing.T) {
	fixed := time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)
	pub := NewInMemoryPublisher(WithClock(func() time.Time { return fixed }))

	var seen *models.Event
	require.NoError(t, pub.Subscribe("s", Filter{}, func(e *models.Event) { seen = e }))

	pub.Publish(context.Background(), &models.Event{Type: models.EventTypePageShown, PageID: "waybill"})
	require.NotNil(t, seen)
	require.NotEmpty(t, seen.ID)
	require.Equal(t, fixed, seen.Timestamp)

	pub.Publish(context.Background(), nil)
}

func TestInMemoryPublisher_HandlerMayUnsubscribe(t *testing.T) {
	pub := NewInMemoryPublisher()
	calls := 0
	require.NoError(t, pub.Subscribe("once", Filter{}, func(*models.Event) {
		calls++
		require.NoError(t, pub.Unsubscribe("once"))
	}))

	pub.Publish(context.Background(), &models.Event{Type: models.EventTypePageHidden})
	pub.Publish(context.Background(), &models.Event{Type: models.EventTypePageHidden})
	require.Equal(t, 1, calls)
}

func TestInMemoryPublisher_Close(t *testing.T) {
	pub := NewInMemoryPublisher()
	require.NoError(t, pub.Subscribe("a", Filter{}, func(*models.Event) {}))
	pub.Close()
	require.Equal(t, 0, pub.SubscriberCount())
}

// mockRepository implements Repository for testing.
type mockRepository struct {
	mu     sync.Mutex
	events []*models.Event
}

func (m *mockRepository) Create(ctx context.Context, event *models.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return nil
}

func TestInMemoryPublisher_WithRepository(t *testing.T) {
	repo := &mockRepository{}
	pub := NewInMemoryPublisher(WithRepository(repo))

	pub.Publish(context.Background(), &models.Event{Type: models.EventTypeWaybillActivated, WaybillType: 1})

	require.Len(t, repo.events, 1)
	require.Equal(t, 1, repo.events[0].WaybillType)
	require.NotEmpty(t, repo.events[0].ID)
}
