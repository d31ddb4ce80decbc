package submit

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"bundle-service/internal/models"
	"bundle-service/internal/selection"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	mu       sync.Mutex
	requests []models.BundleRequest
	resp     *models.BundleResponse
	err      error
	block    chan struct{} // when set, Send waits until closed
}

func (f *fakeSender) Send(_ context.Context, req models.BundleRequest) (*models.BundleResponse, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	block := f.block
	f.mu.Unlock()

	if block != nil {
		<-block
	}
	return f.resp, f.err
}

func (f *fakeSender) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

type fakeFeedback struct {
	mu       sync.Mutex
	messages []string
	errors   []bool
	cleared  int
}

func (f *fakeFeedback) Show(message string, isError bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, message)
	f.errors = append(f.errors, isError)
}

func (f *fakeFeedback) Clear() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cleared++
}

func (f *fakeFeedback) last() (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.messages) == 0 {
		return "", false
	}
	return f.messages[len(f.messages)-1], f.errors[len(f.errors)-1]
}

type fakeNavigator struct {
	mu   sync.Mutex
	urls []string
}

func (f *fakeNavigator) Navigate(url string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.urls = append(f.urls, url)
}

func (f *fakeNavigator) visited() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.urls...)
}

func readyEngine(t *testing.T) *selection.Engine {
	t.Helper()

	payload := &models.CatalogPayload{
		Rules: models.RuleSet{MinItems: 1, MinTotal: 0, RequireBox: false},
		Sections: []models.Section{{
			Products: []models.Product{
				{ID: 1, Name: "Plain Tee", Type: models.ProductTypeSimple, Price: 400,
					Purchasable: true, StockStatus: models.StockStatusInStock},
			},
		}},
	}

	e := selection.NewEngine(payload)
	require.NoError(t, e.AddItem(1, 0))
	return e
}

func newTestCoordinator(t *testing.T, sender *fakeSender) (*Coordinator, *fakeFeedback, *fakeNavigator) {
	t.Helper()

	feedback := &fakeFeedback{}
	navigator := &fakeNavigator{}
	c := NewCoordinator(readyEngine(t), sender, feedback, navigator)
	c.redirectDelay = time.Millisecond
	return c, feedback, navigator
}

func TestSubmitSuccessReturnsToIdle(t *testing.T) {
	redirect := "/checkout"
	sender := &fakeSender{resp: &models.BundleResponse{Success: true, Total: "400", Redirect: &redirect}}
	c, feedback, navigator := newTestCoordinator(t, sender)

	require.NoError(t, c.Submit(context.Background()))

	assert.False(t, c.Busy())
	assert.Equal(t, 1, feedback.cleared)
	msg, isErr := feedback.last()
	assert.False(t, isErr)
	assert.Contains(t, msg, "added")

	assert.Eventually(t, func() bool {
		return len(navigator.visited()) == 1
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, "/checkout", navigator.visited()[0])
}

func TestSubmitNoRedirectWhenStaying(t *testing.T) {
	sender := &fakeSender{resp: &models.BundleResponse{Success: true, Total: "400"}}
	c, _, navigator := newTestCoordinator(t, sender)

	require.NoError(t, c.Submit(context.Background()))

	time.Sleep(20 * time.Millisecond)
	assert.Empty(t, navigator.visited())
}

func TestSubmitServerErrorSurfacedVerbatim(t *testing.T) {
	sender := &fakeSender{err: &ServerError{Code: "min_total", Message: "Order total must reach $1,900."}}
	c, feedback, _ := newTestCoordinator(t, sender)

	err := c.Submit(context.Background())
	require.Error(t, err)

	assert.False(t, c.Busy())
	msg, isErr := feedback.last()
	assert.True(t, isErr)
	assert.Equal(t, "Order total must reach $1,900.", msg)
}

func TestSubmitNetworkErrorReturnsToIdle(t *testing.T) {
	sender := &fakeSender{err: errors.New("connection reset")}
	c, feedback, _ := newTestCoordinator(t, sender)

	require.Error(t, c.Submit(context.Background()))

	assert.False(t, c.Busy())
	_, isErr := feedback.last()
	assert.True(t, isErr)

	// retryable: a second attempt goes out again
	require.Error(t, c.Submit(context.Background()))
	assert.Equal(t, 2, sender.calls())
}

func TestSubmitSingleFlight(t *testing.T) {
	block := make(chan struct{})
	sender := &fakeSender{resp: &models.BundleResponse{Success: true}, block: block}
	c, _, _ := newTestCoordinator(t, sender)

	done := make(chan error, 1)
	go func() {
		done <- c.Submit(context.Background())
	}()

	require.Eventually(t, c.Busy, time.Second, time.Millisecond)

	// concurrent clicks while in flight are no-ops
	assert.NoError(t, c.Submit(context.Background()))
	assert.NoError(t, c.Submit(context.Background()))
	assert.False(t, c.CanSubmit())

	close(block)
	require.NoError(t, <-done)

	assert.Equal(t, 1, sender.calls())
	assert.True(t, c.CanSubmit())
}

func TestSubmitRefusedWhenNotReady(t *testing.T) {
	sender := &fakeSender{resp: &models.BundleResponse{Success: true}}
	feedback := &fakeFeedback{}

	payload := &models.CatalogPayload{Rules: models.RuleSet{MinItems: 3, RequireBox: true}}
	c := NewCoordinator(selection.NewEngine(payload), sender, feedback, &fakeNavigator{})

	err := c.Submit(context.Background())
	assert.ErrorIs(t, err, ErrNotReady)
	assert.Zero(t, sender.calls())
	_, isErr := feedback.last()
	assert.True(t, isErr)
}
