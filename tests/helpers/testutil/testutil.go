// Package testutil provides testing utilities and helpers for modxel tests.
package testutil

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"github.com/stretchr/testify/mock"

	"github.com/GriffinCanCode/modxel/internal/editor"
)

// MockInteractor is a mock implementation of editor.Interactor for testing.
type MockInteractor struct {
	mock.Mock
}

// Prompt mocks the Prompt method.
func (m *MockInteractor) Prompt(ctx context.Context, p editor.Prompt) (string, error) {
	args := m.Called(ctx, p)
	return args.String(0), args.Error(1)
}

// Choose mocks the Choose method.
func (m *MockInteractor) Choose(ctx context.Context, c editor.Choice) (int, error) {
	args := m.Called(ctx, c)
	return args.Int(0), args.Error(1)
}

// OnPrompt answers the next prompt with the given caption.
func (m *MockInteractor) OnPrompt(caption, answer string) *mock.Call {
	return m.On("Prompt", mock.Anything, mock.MatchedBy(func(p editor.Prompt) bool {
		return p.Caption == caption
	})).Return(answer, nil).Once()
}

// OnChoose answers the next choice with the given caption.
func (m *MockInteractor) OnChoose(caption string, index int) *mock.Call {
	return m.On("Choose", mock.Anything, mock.MatchedBy(func(c editor.Choice) bool {
		return c.Caption == caption
	})).Return(index, nil).Once()
}

// NewMockInteractor creates a mock interactor that fails the test on
// unexpected calls.
func NewMockInteractor(t *testing.T) *MockInteractor {
	t.Helper()
	m := new(MockInteractor)
	m.Test(t)
	return m
}

// Recorded is one request received by a FakeServer.
type Recorded struct {
	Path    string
	Action  string
	Form    url.Values
	Cookie  string
	ModAuth string
}

// Response is what a FakeServer handler sends back.
type Response struct {
	Status    int
	Body      string
	SetCookie string
}

// FakeServer is an httptest connector that dispatches on the action field.
type FakeServer struct {
	*httptest.Server

	mu       sync.Mutex
	requests []Recorded
	handlers map[string]func(url.Values) Response
}

// NewFakeServer starts a fake connector closed at test cleanup.
func NewFakeServer(t *testing.T) *FakeServer {
	t.Helper()
	f := &FakeServer{handlers: make(map[string]func(url.Values) Response)}
	f.Server = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.Close)
	return f
}

// Handle replies to action with a 200 and body.
func (f *FakeServer) Handle(action, body string) {
	f.HandleFunc(action, func(url.Values) Response {
		return Response{Body: body}
	})
}

// HandleFunc replies to action with fn.
func (f *FakeServer) HandleFunc(action string, fn func(url.Values) Response) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handlers[action] = fn
}

// Requests returns every request received so far.
func (f *FakeServer) Requests() []Recorded {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Recorded(nil), f.requests...)
}

// Count returns how many requests carried action.
func (f *FakeServer) Count(action string) int {
	n := 0
	for _, r := range f.Requests() {
		if r.Action == action {
			n++
		}
	}
	return n
}

// Last returns the most recent request carrying action.
func (f *FakeServer) Last(action string) (Recorded, bool) {
	reqs := f.Requests()
	for i := len(reqs) - 1; i >= 0; i-- {
		if reqs[i].Action == action {
			return reqs[i], true
		}
	}
	return Recorded{}, false
}

func (f *FakeServer) serve(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	rec := Recorded{
		Path:    r.URL.Path,
		Action:  r.PostForm.Get("action"),
		Form:    r.PostForm,
		Cookie:  r.Header.Get("Cookie"),
		ModAuth: r.Header.Get("modAuth"),
	}

	f.mu.Lock()
	f.requests = append(f.requests, rec)
	handler := f.handlers[rec.Action]
	f.mu.Unlock()

	resp := Response{Body: `{"success":false,"message":"unhandled action ` + rec.Action + `","object":[]}`}
	if handler != nil {
		resp = handler(rec.Form)
	}
	if resp.SetCookie != "" {
		w.Header().Add("Set-Cookie", resp.SetCookie)
	}
	w.Header().Set("Content-Type", "application/json")
	if resp.Status != 0 {
		w.WriteHeader(resp.Status)
	}
	_, _ = w.Write([]byte(resp.Body))
}
