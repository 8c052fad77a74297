package service

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/BeamX-Solutions/paid-marketing-plan-sub000/internal/models"
)

type channelSink struct {
	delivered chan models.Notification
}

func (s channelSink) Deliver(_ context.Context, n models.Notification) error {
	s.delivered <- n
	return nil
}

func TestAlertWorkerDelivers(t *testing.T) {
	sink := channelSink{delivered: make(chan models.Notification, 4)}
	worker := NewAlertWorker(sink, 4, zerolog.Nop())
	worker.Start()
	defer worker.Stop()

	worker.Enqueue(models.Notification{ID: "n1", SubjectID: "user-1"})

	select {
	case n := <-sink.delivered:
		assert.Equal(t, "n1", n.ID)
	case <-time.After(2 * time.Second):
		t.Fatal("alert was not delivered")
	}
}

func TestAlertWorkerEnqueueNeverBlocks(t *testing.T) {
	// Worker not started, queue size 1: the second enqueue must drop
	// instead of blocking the caller.
	worker := NewAlertWorker(channelSink{delivered: make(chan models.Notification)}, 1, zerolog.Nop())

	done := make(chan struct{})
	go func() {
		worker.Enqueue(models.Notification{ID: "n1"})
		worker.Enqueue(models.Notification{ID: "n2"})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("enqueue blocked on a full queue")
	}
}
