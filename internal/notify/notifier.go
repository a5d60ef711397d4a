package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/phrazzld/taskapp/internal/events"
	"github.com/phrazzld/taskapp/internal/platform/mail"
)

// Subjects of the account lifecycle mails.
const (
	WelcomeSubject = "Thanks For Joining In"
	CancelSubject  = "Task-App account deleted"
)

// Errors returned by Enqueue.
var (
	ErrQueueFull = errors.New("notification queue is full")
	ErrStopped   = errors.New("notifier is stopped")
)

// WelcomeMessage greets a newly registered user.
func WelcomeMessage(name, email string) mail.Message {
	return mail.Message{
		ToName:    name,
		ToAddress: email,
		Subject:   WelcomeSubject,
		Text:      fmt.Sprintf("Welcome to the Task-App %s", name),
	}
}

// CancelMessage asks a departing user for feedback.
func CancelMessage(name, email string) mail.Message {
	return mail.Message{
		ToName:    name,
		ToAddress: email,
		Subject:   CancelSubject,
		Text:      fmt.Sprintf("%s please let us know why you canceled account.", name),
	}
}

// Config holds Notifier settings.
type Config struct {
	// QueueSize bounds pending messages; further messages are dropped.
	QueueSize int
	// WorkerCount is the number of concurrent senders. Defaults to 1.
	WorkerCount int
	// SendTimeout bounds a single delivery attempt. Defaults to 10s.
	SendTimeout time.Duration
}

// Notifier delivers account mails in the background. Delivery is best
// effort: a full queue drops the message and send failures are only logged.
type Notifier struct {
	sender mail.Sender
	queue  chan mail.Message
	config Config
	logger *slog.Logger

	mu      sync.RWMutex
	stopped bool
	wg      sync.WaitGroup
}

// NewNotifier creates a Notifier that delivers through sender.
// Call Start before emitting events and Stop on shutdown.
func NewNotifier(sender mail.Sender, cfg Config, logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 1
	}
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 1
	}
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = 10 * time.Second
	}

	return &Notifier{
		sender: sender,
		queue:  make(chan mail.Message, cfg.QueueSize),
		config: cfg,
		logger: logger.With(slog.String("component", "notifier")),
	}
}

// Ensure Notifier can be registered with the event emitter
var _ events.EventHandler = (*Notifier)(nil)

// Start launches the worker goroutines.
func (n *Notifier) Start() {
	for i := 0; i < n.config.WorkerCount; i++ {
		n.wg.Add(1)
		go n.worker(i)
	}
	n.logger.Info("notifier started",
		slog.Int("worker_count", n.config.WorkerCount),
		slog.Int("queue_size", n.config.QueueSize))
}

// Enqueue schedules msg for delivery without blocking.
func (n *Notifier) Enqueue(msg mail.Message) error {
	n.mu.RLock()
	defer n.mu.RUnlock()

	if n.stopped {
		return ErrStopped
	}

	select {
	case n.queue <- msg:
		return nil
	default:
		return fmt.Errorf("%w: capacity %d reached", ErrQueueFull, cap(n.queue))
	}
}

// HandleEvent implements events.EventHandler. It never fails the emitting
// request: undeliverable notifications are logged and dropped.
func (n *Notifier) HandleEvent(ctx context.Context, event *events.AccountEvent) error {
	var msg mail.Message
	switch event.Type {
	case events.TypeUserCreated:
		msg = WelcomeMessage(event.Name, event.Email)
	case events.TypeUserDeleted:
		msg = CancelMessage(event.Name, event.Email)
	default:
		n.logger.Debug("ignoring event", slog.String("event_type", event.Type))
		return nil
	}

	if err := n.Enqueue(msg); err != nil {
		n.logger.WarnContext(ctx, "dropping notification",
			slog.String("error", err.Error()),
			slog.String("event_type", event.Type),
			slog.String("user_id", event.UserID.String()))
	}
	return nil
}

func (n *Notifier) worker(id int) {
	defer n.wg.Done()

	for msg := range n.queue {
		ctx, cancel := context.WithTimeout(context.Background(), n.config.SendTimeout)
		err := n.sender.Send(ctx, msg)
		cancel()

		if err != nil {
			n.logger.Error("failed to deliver notification",
				slog.String("error", err.Error()),
				slog.String("subject", msg.Subject),
				slog.Int("worker_id", id))
			continue
		}
		n.logger.Debug("notification delivered",
			slog.String("subject", msg.Subject),
			slog.Int("worker_id", id))
	}
}

// Stop refuses new messages and waits until the queue is drained or ctx
// is done. It is safe to call more than once.
func (n *Notifier) Stop(ctx context.Context) error {
	n.mu.Lock()
	if !n.stopped {
		n.stopped = true
		close(n.queue)
	}
	n.mu.Unlock()

	done := make(chan struct{})
	go func() {
		n.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		n.logger.Info("notifier stopped")
		return nil
	case <-ctx.Done():
		n.logger.Warn("notifier stopped before queue drained", slog.Int("pending", len(n.queue)))
		return ctx.Err()
	}
}
