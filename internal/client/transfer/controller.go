// Package transfer runs single file uploads through an explicit state
// machine and reports their progress to one observer.
package transfer

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/gophdrop/internal/client/client"
	"github.com/dmitrijs2005/gophdrop/internal/client/models"
	"github.com/dmitrijs2005/gophdrop/internal/client/progress"
	"github.com/dmitrijs2005/gophdrop/internal/common"
	"github.com/dmitrijs2005/gophdrop/internal/logging"
	"github.com/google/uuid"
)

const (
	MessagePreparing = "Preparing upload..."
	MessageCompleted = "Upload successful"
	MessageCancelled = "Upload cancelled"
)

// Uploader is the transport a Controller drives.
type Uploader interface {
	Upload(ctx context.Context, file *models.SelectedFile, hooks client.UploadHooks) (*models.UploadAck, error)
}

type EventKind string

const (
	EventProgress  EventKind = "progress"
	EventCompleted EventKind = "completed"
	EventFailed    EventKind = "failed"
)

// Event is delivered to the observer in the order the transfer produced it.
type Event struct {
	Kind   EventKind
	Record models.TransferRecord

	// Estimate is set for EventProgress.
	Estimate progress.Estimate
	// Entry is set for EventCompleted.
	Entry *models.RegistryEntry
	// Failure is set for EventFailed.
	Failure *Failure

	// Cancel cancels the transfer from inside the observer callback that
	// received this event. After the callback returns it behaves like
	// Controller.Cancel.
	Cancel func()
}

type Observer func(Event)

// Controller owns at most one active transfer at a time. Use separate
// controllers for concurrent transfers.
//
// Observer callbacks are serialized. Inside a callback cancel through
// Event.Cancel; Controller.Cancel waits for the callback to return.
type Controller struct {
	uploader Uploader
	observer Observer
	bucket   string
	logger   logging.Logger

	now   func() time.Time
	newID func() string

	mu          sync.Mutex
	attempt     uint64
	rec         models.TransferRecord
	sampler     *progress.Sampler
	submittedAt time.Time
	cancel      context.CancelFunc
	done        chan struct{}

	deliverMu sync.Mutex
}

// NewController returns an idle controller. observer may be nil.
func NewController(uploader Uploader, bucket string, logger logging.Logger, observer Observer) *Controller {
	done := make(chan struct{})
	close(done)

	return &Controller{
		uploader: uploader,
		observer: observer,
		bucket:   bucket,
		logger:   logger,
		now:      time.Now,
		newID:    uuid.NewString,
		rec:      models.TransferRecord{State: models.StateIdle},
		done:     done,
	}
}

// Start begins an asynchronous upload of file and returns once the transfer
// is Preparing.
func (c *Controller) Start(ctx context.Context, file *models.SelectedFile) error {
	if file == nil || file.Open == nil {
		return fmt.Errorf("%w: no file selected", common.ErrInvalidInput)
	}
	if file.Size <= 0 {
		return fmt.Errorf("%w: %s is empty", common.ErrInvalidInput, file.Name)
	}

	sampler, err := progress.NewSampler(file.Size)
	if err != nil {
		return err
	}

	c.mu.Lock()
	if c.rec.State.Active() {
		c.mu.Unlock()
		return common.ErrAlreadyInFlight
	}

	runCtx, cancel := context.WithCancel(ctx)
	c.attempt++
	attempt := c.attempt
	c.rec = models.TransferRecord{
		ID:         c.newID(),
		FileName:   file.Name,
		SizeBytes:  file.Size,
		State:      models.StatePreparing,
		TotalBytes: file.Size,
		Message:    MessagePreparing,
	}
	c.sampler = sampler
	c.submittedAt = c.now()
	c.cancel = cancel
	c.done = make(chan struct{})
	done := c.done
	id := c.rec.ID
	c.mu.Unlock()

	c.logger.Info(ctx, "transfer started", "id", id, "file", file.Name, "size", file.Size)

	go c.run(runCtx, cancel, attempt, file, done)
	return nil
}

func (c *Controller) run(ctx context.Context, cancel context.CancelFunc, attempt uint64, file *models.SelectedFile, done chan struct{}) {
	defer close(done)
	defer cancel()

	ack, err := c.uploader.Upload(ctx, file, client.UploadHooks{
		OnAccepted: func() { c.accept(attempt) },
		OnProgress: func(sent, _ int64) { c.progress(attempt, sent) },
	})
	if err != nil {
		c.fail(ctx, attempt, err)
		return
	}
	c.complete(ctx, attempt, ack)
}

// Cancel aborts the transfer if it is InFlight and is a no-op otherwise.
// Once Cancel returns no further events are delivered for the transfer.
func (c *Controller) Cancel() {
	c.deliverMu.Lock()
	defer c.deliverMu.Unlock()
	c.cancelDelivering()
}

// cancelDelivering must be called with c.deliverMu held.
func (c *Controller) cancelDelivering() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.rec.State != models.StateInFlight {
		return
	}
	c.rec.State = models.StateCancelled
	c.rec.Message = MessageCancelled
	c.cancel()
}

// Snapshot returns a copy of the current transfer record.
func (c *Controller) Snapshot() models.TransferRecord {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rec
}

// Done is closed when the current transfer's goroutine has exited.
func (c *Controller) Done() <-chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.done
}

// deliver applies a transition under the state lock and hands the resulting
// event to the observer. Events for stale attempts or terminal records are
// dropped.
func (c *Controller) deliver(attempt uint64, apply func(rec *models.TransferRecord) (Event, bool)) {
	c.deliverMu.Lock()
	defer c.deliverMu.Unlock()

	c.mu.Lock()
	if attempt != c.attempt || c.rec.State.Terminal() {
		c.mu.Unlock()
		return
	}
	ev, ok := apply(&c.rec)
	if ok {
		ev.Record = c.rec
	}
	c.mu.Unlock()

	if !ok || c.observer == nil {
		return
	}

	var returned atomic.Bool
	ev.Cancel = func() {
		if returned.Load() {
			c.Cancel()
			return
		}
		c.cancelDelivering()
	}
	defer returned.Store(true)
	c.observer(ev)
}

// enterInFlight must be called with c.mu held.
func (c *Controller) enterInFlight(rec *models.TransferRecord) progress.Estimate {
	now := c.now()
	rec.State = models.StateInFlight
	rec.StartedAt = now
	rec.Message = ""
	return c.sampler.Observe(0, now)
}

func (c *Controller) accept(attempt uint64) {
	c.deliver(attempt, func(rec *models.TransferRecord) (Event, bool) {
		if rec.State != models.StatePreparing {
			return Event{}, false
		}
		return Event{Kind: EventProgress, Estimate: c.enterInFlight(rec)}, true
	})
}

func (c *Controller) progress(attempt uint64, sent int64) {
	c.deliver(attempt, func(rec *models.TransferRecord) (Event, bool) {
		if rec.State == models.StatePreparing {
			c.enterInFlight(rec)
		}
		sent = min(sent, rec.TotalBytes)
		if sent <= rec.BytesSent {
			return Event{}, false
		}
		rec.BytesSent = sent
		return Event{Kind: EventProgress, Estimate: c.sampler.Observe(sent, c.now())}, true
	})
}

func (c *Controller) fail(ctx context.Context, attempt uint64, err error) {
	var failure *Failure
	c.deliver(attempt, func(rec *models.TransferRecord) (Event, bool) {
		if ctx.Err() != nil && rec.State == models.StateInFlight {
			// the caller's context went away; treat it as a cancellation
			rec.State = models.StateCancelled
			rec.Message = MessageCancelled
			return Event{}, false
		}
		failure = Classify(err, c.bucket)
		rec.State = models.StateFailed
		rec.Message = failure.Message
		rec.Err = failure
		return Event{Kind: EventFailed, Failure: failure}, true
	})
	if failure != nil {
		c.logger.Warn(ctx, "transfer failed", "kind", failure.Kind, "error", err)
	}
}

func (c *Controller) complete(ctx context.Context, attempt uint64, ack *models.UploadAck) {
	if ack == nil || ack.Path == "" {
		c.fail(ctx, attempt, fmt.Errorf("%w: empty acknowledgement", common.ErrMalformedResponse))
		return
	}

	var entry *models.RegistryEntry
	c.deliver(attempt, func(rec *models.TransferRecord) (Event, bool) {
		if rec.State == models.StatePreparing {
			c.enterInFlight(rec)
		}
		rec.BytesSent = rec.TotalBytes
		rec.State = models.StateCompleted
		rec.Message = MessageCompleted

		submitted := c.submittedAt
		entry = &models.RegistryEntry{
			DisplayName: rec.FileName,
			SubmittedAt: &submitted,
			AccessURL:   ack.PublicURL,
			StoragePath: ack.Path,
			Origin:      models.OriginLocalOnly,
		}
		entry.Key = models.LocalKey(*entry)
		return Event{Kind: EventCompleted, Entry: entry}, true
	})
	if entry != nil {
		c.logger.Info(ctx, "transfer completed", "path", ack.Path)
	}
}
