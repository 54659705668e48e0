package notification

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/google/uuid"

	"facility-booking-backend/internal/model"
	"facility-booking-backend/internal/store"
)

// Sender defines the interface for sending a web push notification.
type Sender interface {
	Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// WebPushSender is a real implementation of Sender using the webpush library.
type WebPushSender struct{}

// Send sends a notification using the webpush library.
func (s *WebPushSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return webpush.SendNotification(payload, sub, options)
}

// WorkerPool drains the notification outbox. Delivery is best effort: a
// failed push marks the row failed and moves on; nothing here can fail a
// domain operation.
type WorkerPool struct {
	size    int
	jobs    chan uuid.UUID
	store   store.Store
	webpush *webpush.Options
	sender  Sender
}

// NewWorkerPool creates a new worker pool.
func NewWorkerPool(size int, s store.Store, webpushOptions *webpush.Options) *WorkerPool {
	return &WorkerPool{
		size:    size,
		jobs:    make(chan uuid.UUID, size*4),
		store:   s,
		webpush: webpushOptions,
		sender:  &WebPushSender{},
	}
}

// SetSender overrides the delivery transport, for tests.
func (wp *WorkerPool) SetSender(s Sender) { wp.sender = s }

// Start launches the worker goroutines and re-dispatches any rows that
// were still pending at last shutdown.
func (wp *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < wp.size; i++ {
		go wp.worker(ctx, i)
	}
	go wp.resumePending(ctx)
}

func (wp *WorkerPool) worker(ctx context.Context, id int) {
	log.Printf("Notification worker %d started", id)
	for {
		select {
		case noteID := <-wp.jobs:
			wp.deliver(ctx, noteID)
		case <-ctx.Done():
			log.Printf("Notification worker %d shutting down", id)
			return
		}
	}
}

// Dispatch queues an outbox row for delivery. It never blocks the caller:
// when the queue is full the row simply stays pending and is picked up by
// the next resume pass.
func (wp *WorkerPool) Dispatch(noteID uuid.UUID) {
	select {
	case wp.jobs <- noteID:
	default:
		log.Printf("Notification queue full; outbox row %s stays pending", noteID)
	}
}

func (wp *WorkerPool) resumePending(ctx context.Context) {
	notes, err := wp.store.PendingOutbox(ctx, 100)
	if err != nil {
		log.Printf("Error loading pending outbox rows: %v", err)
		return
	}
	for _, n := range notes {
		select {
		case <-ctx.Done():
			return
		default:
			wp.Dispatch(n.ID)
		}
	}
}

type pushPayload struct {
	Subject   string `json:"subject"`
	Body      string `json:"body"`
	Reference string `json:"reference_id"`
}

// deliver sends one outbox row to every push subscription the recipient has.
func (wp *WorkerPool) deliver(ctx context.Context, noteID uuid.UUID) {
	var note model.NotificationOutbox
	if err := wp.store.DB().WithContext(ctx).First(&note, "id = ?", noteID).Error; err != nil {
		log.Printf("Error loading outbox row %s: %v", noteID, err)
		return
	}
	if note.Status != model.OutboxStatusPending {
		return
	}

	var subscriptions []model.PushSubscription
	err := wp.store.DB().WithContext(ctx).
		Where("user_id = ?", note.RecipientID).
		Find(&subscriptions).Error
	if err != nil {
		log.Printf("Error fetching subscriptions for user %s: %v", note.RecipientID, err)
		return
	}

	if len(subscriptions) == 0 {
		// Nobody to deliver to; the decision itself already stands.
		now := time.Now().UTC()
		if err := wp.store.MarkOutbox(ctx, note.ID, model.OutboxStatusSent, &now); err != nil {
			log.Printf("Error marking outbox row %s: %v", note.ID, err)
		}
		return
	}

	payload, err := json.Marshal(pushPayload{Subject: note.Subject, Body: note.Body, Reference: note.ReferenceID.String()})
	if err != nil {
		log.Printf("Error marshalling payload for outbox row %s: %v", note.ID, err)
		return
	}

	delivered := false
	for _, sub := range subscriptions {
		if wp.sendNotification(ctx, sub, payload) {
			delivered = true
		}
	}

	now := time.Now().UTC()
	status := model.OutboxStatusSent
	if !delivered {
		status = model.OutboxStatusFailed
	}
	if err := wp.store.MarkOutbox(ctx, note.ID, status, &now); err != nil {
		log.Printf("Error marking outbox row %s: %v", note.ID, err)
	}
}

// sendNotification sends a single web push notification and reports
// whether it was accepted.
func (wp *WorkerPool) sendNotification(ctx context.Context, sub model.PushSubscription, payload []byte) bool {
	wpSub := &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256DH,
			Auth:   sub.Auth,
		},
	}

	resp, err := wp.sender.Send(payload, wpSub, wp.webpush)
	if err != nil {
		log.Printf("Error sending notification to %s: %v", sub.Endpoint, err)
		return false
	}
	defer resp.Body.Close()

	// Handle expired subscriptions
	if resp.StatusCode == http.StatusGone {
		log.Printf("Subscription for endpoint %s is expired. Deleting.", sub.Endpoint)
		if err := wp.store.DB().WithContext(ctx).Delete(&model.PushSubscription{Endpoint: sub.Endpoint}).Error; err != nil {
			log.Printf("Failed to delete expired subscription %s: %v", sub.Endpoint, err)
		}
		return false
	}

	return resp.StatusCode >= 200 && resp.StatusCode < 300
}
