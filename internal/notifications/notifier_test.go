package notifications

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"parlor/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserChannel(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "notifications:user:42", UserChannel(42))
}

func TestPublishNotification(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	sub := rdb.Subscribe(ctx, UserChannel(42))
	t.Cleanup(func() { _ = sub.Close() })
	// Wait for the subscription to be established before publishing.
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	notifier := NewNotifier(rdb)
	notification := &models.Notification{
		ID:      1,
		UserID:  42,
		ActorID: 7,
		Type:    models.NotificationNewFollower,
		Content: "sam started following you",
	}
	require.NoError(t, notifier.PublishNotification(ctx, notification))

	msg, err := sub.ReceiveMessage(ctx)
	require.NoError(t, err)
	assert.Equal(t, UserChannel(42), msg.Channel)

	var got models.Notification
	require.NoError(t, json.Unmarshal([]byte(msg.Payload), &got))
	assert.Equal(t, notification.UserID, got.UserID)
	assert.Equal(t, notification.Type, got.Type)
	assert.Equal(t, notification.Content, got.Content)
}

func TestPublishBroadcast(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	sub := rdb.Subscribe(ctx, "notifications:broadcast")
	t.Cleanup(func() { _ = sub.Close() })
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	notifier := NewNotifier(rdb)
	require.NoError(t, notifier.PublishBroadcast(ctx, "maintenance window at noon"))

	msg, err := sub.ReceiveMessage(ctx)
	require.NoError(t, err)
	assert.Equal(t, "maintenance window at noon", msg.Payload)
}

func TestPatternSubscriberReceivesMessages(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	notifier := NewNotifier(rdb)
	got := make(chan string, 1)
	require.NoError(t, notifier.StartPatternSubscriber(ctx, func(channel, payload string) {
		select {
		case got <- channel + "|" + payload:
		default:
		}
	}))

	// Republish until the pattern subscription is live; pub/sub drops
	// messages published before it registers.
	tick := time.NewTicker(10 * time.Millisecond)
	defer tick.Stop()
	for {
		select {
		case msg := <-got:
			assert.Equal(t, UserChannel(9)+"|hello", msg)
			return
		case <-tick.C:
			require.NoError(t, notifier.PublishUser(ctx, 9, "hello"))
		case <-ctx.Done():
			t.Fatal("no message received before the deadline")
		}
	}
}

func TestPublishWithoutRedisIsNoop(t *testing.T) {
	t.Parallel()
	notifier := NewNotifier(nil)
	ctx := context.Background()

	assert.NoError(t, notifier.PublishUser(ctx, 1, "payload"))
	assert.NoError(t, notifier.PublishNotification(ctx, &models.Notification{UserID: 1}))
	assert.NoError(t, notifier.PublishBroadcast(ctx, "payload"))
	assert.NoError(t, notifier.StartPatternSubscriber(ctx, func(string, string) {}))
}
