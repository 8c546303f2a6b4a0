package generation

import (
	"context"
	"strings"
	"time"
)

type emitter struct {
	ctx       context.Context
	out       chan<- Event
	requestID string
}

func newEmitter(ctx context.Context, out chan<- Event, requestID string) *emitter {
	return &emitter{ctx: ctx, out: out, requestID: requestID}
}

func (e *emitter) send(event Event) error {
	if err := e.ctx.Err(); err != nil {
		return err
	}
	event.Version = SchemaVersion
	if event.RequestID == "" {
		event.RequestID = e.requestID
	}
	if event.EmittedAt.IsZero() {
		event.EmittedAt = time.Now().UTC()
	}
	select {
	case <-e.ctx.Done():
		return e.ctx.Err()
	case e.out <- event:
		return nil
	}
}

type unitTracker struct {
	units    int
	bytes    int64
	warnings int
	markup   strings.Builder
}

func (tracker *unitTracker) add(content string) {
	tracker.units++
	tracker.bytes += int64(len(content))
	tracker.markup.WriteString(content)
}
