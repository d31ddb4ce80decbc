package submit

import (
	"context"
	"errors"
	"sync"
	"time"

	"bundle-service/internal/models"
	"bundle-service/internal/selection"
	"bundle-service/internal/util"

	"go.uber.org/zap"
)

// Sender delivers a serialized bundle submission and interprets the reply.
// A server-side rejection comes back as *ServerError; transport failures as
// ordinary errors.
type Sender interface {
	Send(ctx context.Context, req models.BundleRequest) (*models.BundleResponse, error)
}

// ServerError is a rejection reported by the server. Its message is surfaced
// to the user verbatim.
type ServerError struct {
	Code    string `json:"error"`
	Message string `json:"message"`
}

func (e *ServerError) Error() string {
	return e.Message
}

// Feedback receives user-facing submission feedback.
type Feedback interface {
	Show(message string, isError bool)
	Clear()
}

// Navigator performs the post-success redirect.
type Navigator interface {
	Navigate(url string)
}

// Coordinator errors
var (
	ErrNotReady       = errors.New("selection does not satisfy the acceptance rules")
	ErrEmptySelection = errors.New("selection has no items")
)

// Coordinator serializes the current selection and drives a submission
// through its two states, Idle and Submitting. Only one submission can be in
// flight; submit attempts while busy are no-ops.
type Coordinator struct {
	engine    *selection.Engine
	sender    Sender
	feedback  Feedback
	navigator Navigator

	// delay before following a redirect, so the success message is seen
	redirectDelay time.Duration

	mu   sync.Mutex
	busy bool

	logger *zap.Logger
}

// NewCoordinator creates a submission coordinator
func NewCoordinator(engine *selection.Engine, sender Sender, feedback Feedback, navigator Navigator) *Coordinator {
	return &Coordinator{
		engine:        engine,
		sender:        sender,
		feedback:      feedback,
		navigator:     navigator,
		redirectDelay: 600 * time.Millisecond,
		logger:        util.GetLogger(),
	}
}

// Busy reports whether a submission is in flight.
func (c *Coordinator) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.busy
}

// CanSubmit reports whether the submit affordance should be enabled.
func (c *Coordinator) CanSubmit() bool {
	return !c.Busy() && c.engine.Ready()
}

// Submit serializes the selection and sends it. While a submission is in
// flight further calls return immediately without effect. The coordinator
// always returns to Idle, whatever the outcome.
func (c *Coordinator) Submit(ctx context.Context) error {
	c.mu.Lock()
	if c.busy {
		c.mu.Unlock()
		return nil
	}

	if !c.engine.Ready() {
		c.mu.Unlock()
		c.feedback.Show("Please complete the required selections first.", true)
		return ErrNotReady
	}

	req := c.engine.Request()
	if len(req.Items) == 0 {
		c.mu.Unlock()
		c.feedback.Show("Please add at least one item.", true)
		return ErrEmptySelection
	}

	c.busy = true
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.busy = false
		c.mu.Unlock()
	}()

	c.feedback.Clear()

	resp, err := c.sender.Send(ctx, req)
	if err != nil {
		var serverErr *ServerError
		if errors.As(err, &serverErr) {
			c.feedback.Show(serverErr.Message, true)
		} else {
			c.logger.Warn("Bundle submission failed", zap.Error(err))
			c.feedback.Show("Something went wrong. Please try again.", true)
		}
		return err
	}

	c.feedback.Show("Bundle added! Redirecting…", false)

	if resp.Redirect != nil && *resp.Redirect != "" {
		url := *resp.Redirect
		time.AfterFunc(c.redirectDelay, func() {
			c.navigator.Navigate(url)
		})
	}

	return nil
}
