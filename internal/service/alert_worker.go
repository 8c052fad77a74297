package service

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/BeamX-Solutions/paid-marketing-plan-sub000/internal/models"
)

// AlertSink delivers a notification out of band (mail, webhook, chat).
type AlertSink interface {
	Deliver(ctx context.Context, n models.Notification) error
}

// LogSink is the default sink: it only logs. Real delivery transports
// plug in behind the same interface.
type LogSink struct {
	Log zerolog.Logger
}

func (s LogSink) Deliver(_ context.Context, n models.Notification) error {
	s.Log.Info().
		Str("subject_id", n.SubjectID).
		Str("type", n.Type).
		Str("priority", string(n.Priority)).
		Msg("security alert")
	return nil
}

// AlertWorker drains a bounded queue of alert deliveries on a single
// background goroutine. Delivery is at-most-once: a full queue drops
// the alert with a log line, and a failed delivery is logged, not
// retried. The notification row itself is already persisted, so a
// dropped alert loses nothing durable.
type AlertWorker struct {
	sink    AlertSink
	queue   chan models.Notification
	log     zerolog.Logger
	stop    chan struct{}
	stopped sync.Once
	done    chan struct{}
}

func NewAlertWorker(sink AlertSink, queueSize int, log zerolog.Logger) *AlertWorker {
	if queueSize <= 0 {
		queueSize = 64
	}
	return &AlertWorker{
		sink:  sink,
		queue: make(chan models.Notification, queueSize),
		log:   log,
		stop:  make(chan struct{}),
		done:  make(chan struct{}),
	}
}

func (w *AlertWorker) Start() {
	go w.loop()
}

func (w *AlertWorker) loop() {
	defer close(w.done)
	for {
		select {
		case <-w.stop:
			return
		case n := <-w.queue:
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			if err := w.sink.Deliver(ctx, n); err != nil {
				w.log.Warn().Err(err).Str("notification_id", n.ID).Msg("alert delivery failed")
			}
			cancel()
		}
	}
}

// Enqueue never blocks the caller: request handlers must not wait on
// alert delivery.
func (w *AlertWorker) Enqueue(n models.Notification) {
	select {
	case w.queue <- n:
	default:
		w.log.Warn().Str("notification_id", n.ID).Msg("alert queue full, dropping alert")
	}
}

func (w *AlertWorker) Stop() {
	w.stopped.Do(func() { close(w.stop) })
	<-w.done
}
