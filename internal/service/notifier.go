package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/mtlprog/taskdesk/internal/domain"
	"github.com/mtlprog/taskdesk/internal/metrics"
)

const defaultNotifyTimeout = 5 * time.Second

// Notifier writes notifications to the store. In synchronous mode Notify returns
// after the write; in asynchronous mode writes are queued on a bounded buffer and a
// single worker drains it. Failed and dropped writes are logged and counted.
type Notifier struct {
	store   NotificationStore
	metrics *metrics.Metrics
	timeout time.Duration

	mu     sync.RWMutex
	closed bool
	queue  chan notifyJob
	done   chan struct{}
}

type notifyJob struct {
	ctx          context.Context
	notification *domain.Notification
}

// NotifierOption configures a Notifier.
type NotifierOption func(*Notifier)

// WithAsyncBuffer enables asynchronous delivery with a queue of the given size.
// Sizes below one keep the notifier synchronous.
func WithAsyncBuffer(size int) NotifierOption {
	return func(n *Notifier) {
		if size > 0 {
			n.queue = make(chan notifyJob, size)
		}
	}
}

// WithNotifierMetrics records delivery outcomes.
func WithNotifierMetrics(m *metrics.Metrics) NotifierOption {
	return func(n *Notifier) {
		n.metrics = m
	}
}

// WithWriteTimeout bounds each store write.
func WithWriteTimeout(d time.Duration) NotifierOption {
	return func(n *Notifier) {
		if d > 0 {
			n.timeout = d
		}
	}
}

// NewNotifier creates a Notifier. Call Close on shutdown to drain queued writes.
func NewNotifier(store NotificationStore, opts ...NotifierOption) *Notifier {
	n := &Notifier{
		store:   store,
		timeout: defaultNotifyTimeout,
	}
	for _, opt := range opts {
		opt(n)
	}

	if n.queue != nil {
		n.done = make(chan struct{})
		go n.run()
	}

	return n
}

// Notify delivers one notification. It never reports failure.
func (n *Notifier) Notify(ctx context.Context, params NotificationParams) {
	notification := &domain.Notification{
		RecipientID: params.RecipientID,
		SenderID:    params.SenderID,
		TaskID:      params.TaskID,
		Message:     params.Message,
	}

	// The write must outlive the request that triggered it.
	ctx = context.WithoutCancel(ctx)

	n.mu.RLock()
	if n.queue == nil || n.closed {
		n.mu.RUnlock()
		n.write(ctx, notification)
		return
	}
	defer n.mu.RUnlock()

	select {
	case n.queue <- notifyJob{ctx: ctx, notification: notification}:
	default:
		n.metrics.IncNotification(metrics.NotificationDropped)
		slog.Warn("notification queue full, dropping notification",
			"recipient_id", notification.RecipientID,
			"task_id", notification.TaskID,
		)
	}
}

// Close stops accepting queued writes and waits for pending ones to finish.
// Notifications sent after Close are written synchronously.
func (n *Notifier) Close() {
	n.mu.Lock()
	if n.queue == nil || n.closed {
		n.mu.Unlock()
		return
	}
	n.closed = true
	close(n.queue)
	n.mu.Unlock()

	<-n.done
}

func (n *Notifier) run() {
	defer close(n.done)
	for job := range n.queue {
		n.write(job.ctx, job.notification)
	}
}

func (n *Notifier) write(ctx context.Context, notification *domain.Notification) {
	ctx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	if err := n.store.Create(ctx, notification); err != nil {
		n.metrics.IncNotification(metrics.NotificationFailed)
		slog.Error("failed to create notification",
			"recipient_id", notification.RecipientID,
			"task_id", notification.TaskID,
			"error", err,
		)
		return
	}

	n.metrics.IncNotification(metrics.NotificationOK)
	slog.Info("notification created",
		"notification_id", notification.ID,
		"recipient_id", notification.RecipientID,
		"task_id", notification.TaskID,
	)
}
