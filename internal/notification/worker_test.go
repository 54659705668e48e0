package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"facility-booking-backend/internal/model"
	"facility-booking-backend/internal/store"
)

// mockSender is a mock implementation of the Sender interface.
type mockSender struct {
	SendFunc func(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// Send calls the mock SendFunc.
func (m *mockSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return m.SendFunc(payload, sub, options)
}

func pushResponse(status int) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(bytes.NewBufferString("")),
	}
}

func newTestStore(t *testing.T) store.Store {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	gormDB, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := gormDB.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, gormDB.AutoMigrate(&model.NotificationOutbox{}, &model.PushSubscription{}))
	return store.NewGormStore(gormDB)
}

func seedNote(t *testing.T, s store.Store, recipient string) *model.NotificationOutbox {
	t.Helper()
	note := &model.NotificationOutbox{
		ID:          uuid.New(),
		RecipientID: recipient,
		Subject:     "Booking approved",
		Body:        "Your booking on 2026-03-14 from 10:00 to 11:00 was approved.",
		ReferenceID: uuid.New(),
		Status:      model.OutboxStatusPending,
	}
	require.NoError(t, s.DB().Create(note).Error)
	return note
}

func seedSubscription(t *testing.T, s store.Store, userID, endpoint string) {
	t.Helper()
	require.NoError(t, s.DB().Create(&model.PushSubscription{
		Endpoint:  endpoint,
		UserID:    userID,
		P256DH:    "test_p256dh",
		Auth:      "test_auth",
		CreatedAt: time.Now().UTC(),
	}).Error)
}

func outboxStatus(t *testing.T, s store.Store, id uuid.UUID) model.NotificationOutbox {
	t.Helper()
	var note model.NotificationOutbox
	require.NoError(t, s.DB().First(&note, "id = ?", id).Error)
	return note
}

func TestWorkerPool_Dispatch(t *testing.T) {
	wp := NewWorkerPool(1, newTestStore(t), &webpush.Options{})

	id := uuid.New()
	wp.Dispatch(id)

	select {
	case job := <-wp.jobs:
		assert.Equal(t, id, job)
	case <-time.After(1 * time.Second):
		t.Fatal("timed out waiting for job to be dispatched")
	}
}

func TestWorkerPool_Deliver(t *testing.T) {
	ctx := context.Background()

	t.Run("sends payload to every subscription and marks sent", func(t *testing.T) {
		s := newTestStore(t)
		note := seedNote(t, s, "u-1")
		seedSubscription(t, s, "u-1", "https://example.com/push/a")
		seedSubscription(t, s, "u-1", "https://example.com/push/b")
		seedSubscription(t, s, "u-other", "https://example.com/push/other")

		wp := NewWorkerPool(1, s, &webpush.Options{})
		var endpoints []string
		wp.SetSender(&mockSender{
			SendFunc: func(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
				var got pushPayload
				require.NoError(t, json.Unmarshal(payload, &got))
				assert.Equal(t, "Booking approved", got.Subject)
				assert.Equal(t, note.ReferenceID.String(), got.Reference)
				endpoints = append(endpoints, sub.Endpoint)
				return pushResponse(http.StatusCreated), nil
			},
		})

		wp.deliver(ctx, note.ID)

		assert.ElementsMatch(t, []string{"https://example.com/push/a", "https://example.com/push/b"}, endpoints)
		got := outboxStatus(t, s, note.ID)
		assert.Equal(t, model.OutboxStatusSent, got.Status)
		assert.Equal(t, 1, got.Attempts)
		assert.NotNil(t, got.SentAt)
	})

	t.Run("no subscriptions still resolves the row", func(t *testing.T) {
		s := newTestStore(t)
		note := seedNote(t, s, "u-nobody")

		wp := NewWorkerPool(1, s, &webpush.Options{})
		wp.SetSender(&mockSender{
			SendFunc: func([]byte, *webpush.Subscription, *webpush.Options) (*http.Response, error) {
				t.Fatal("nothing should be sent")
				return nil, nil
			},
		})

		wp.deliver(ctx, note.ID)

		assert.Equal(t, model.OutboxStatusSent, outboxStatus(t, s, note.ID).Status)
	})

	t.Run("transport failure marks the row failed", func(t *testing.T) {
		s := newTestStore(t)
		note := seedNote(t, s, "u-1")
		seedSubscription(t, s, "u-1", "https://example.com/push/a")

		wp := NewWorkerPool(1, s, &webpush.Options{})
		wp.SetSender(&mockSender{
			SendFunc: func([]byte, *webpush.Subscription, *webpush.Options) (*http.Response, error) {
				return nil, errors.New("connection refused")
			},
		})

		wp.deliver(ctx, note.ID)

		got := outboxStatus(t, s, note.ID)
		assert.Equal(t, model.OutboxStatusFailed, got.Status)
		assert.Equal(t, 1, got.Attempts)
	})

	t.Run("deletes expired subscription on 410", func(t *testing.T) {
		s := newTestStore(t)
		note := seedNote(t, s, "u-1")
		seedSubscription(t, s, "u-1", "https://example.com/push/expired")
		seedSubscription(t, s, "u-1", "https://example.com/push/alive")

		wp := NewWorkerPool(1, s, &webpush.Options{})
		wp.SetSender(&mockSender{
			SendFunc: func(_ []byte, sub *webpush.Subscription, _ *webpush.Options) (*http.Response, error) {
				if sub.Endpoint == "https://example.com/push/expired" {
					return pushResponse(http.StatusGone), nil
				}
				return pushResponse(http.StatusCreated), nil
			},
		})

		wp.deliver(ctx, note.ID)

		// The expired endpoint is gone, the live one delivered.
		var remaining []model.PushSubscription
		require.NoError(t, s.DB().Find(&remaining).Error)
		require.Len(t, remaining, 1)
		assert.Equal(t, "https://example.com/push/alive", remaining[0].Endpoint)
		assert.Equal(t, model.OutboxStatusSent, outboxStatus(t, s, note.ID).Status)
	})

	t.Run("already sent rows are skipped", func(t *testing.T) {
		s := newTestStore(t)
		note := seedNote(t, s, "u-1")
		now := time.Now().UTC()
		require.NoError(t, s.MarkOutbox(ctx, note.ID, model.OutboxStatusSent, &now))
		seedSubscription(t, s, "u-1", "https://example.com/push/a")

		wp := NewWorkerPool(1, s, &webpush.Options{})
		wp.SetSender(&mockSender{
			SendFunc: func([]byte, *webpush.Subscription, *webpush.Options) (*http.Response, error) {
				t.Fatal("nothing should be sent")
				return nil, nil
			},
		})

		wp.deliver(ctx, note.ID)

		assert.Equal(t, 1, outboxStatus(t, s, note.ID).Attempts)
	})
}

func TestWorkerPool_ResumePending(t *testing.T) {
	s := newTestStore(t)
	note := seedNote(t, s, "u-1")

	wp := NewWorkerPool(1, s, &webpush.Options{})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	wp.resumePending(ctx)

	select {
	case job := <-wp.jobs:
		assert.Equal(t, note.ID, job)
	case <-time.After(1 * time.Second):
		t.Fatal("pending row was not re-dispatched")
	}
}
