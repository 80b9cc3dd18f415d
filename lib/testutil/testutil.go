package testutil

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

// Call is a request received by a Site on one of its api paths.
type Call struct {
	Path   string
	Query  map[string]string
	Header http.Header
	Body   map[string]any
}

// Reply is what a Site answers to a Call. A zero Status means 200.
type Reply struct {
	Status int
	Body   any
	// Raw is written as-is instead of Body when set.
	Raw string
}

type Handler func(call Call) Reply

// Site is an httptest server standing in for the website: it serves HTML
// pages at fixed paths and scripted JSON replies on api paths.
type Site struct {
	Server *httptest.Server

	mu       sync.Mutex
	pages    map[string]string
	handlers map[string]Handler
	queues   map[string][]Reply
	calls    []Call
	fetches  map[string]int
}

func NewSite(t testing.TB) *Site {
	s := &Site{
		pages:    map[string]string{},
		handlers: map[string]Handler{},
		queues:   map[string][]Reply{},
		fetches:  map[string]int{},
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serve))
	t.Cleanup(s.Server.Close)
	return s
}

func (s *Site) URL() string {
	return s.Server.URL
}

// SetPage serves html on GET requests to path, path includes the query
// string if any.
func (s *Site) SetPage(path, html string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pages[path] = html
}

// Handle answers every POST to path with fn, queued replies go first.
func (s *Site) Handle(path string, fn Handler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[path] = fn
}

// Queue appends replies answered in order to POSTs on path.
func (s *Site) Queue(path string, replies ...Reply) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queues[path] = append(s.queues[path], replies...)
}

// Calls returns the calls received on path, in order.
func (s *Site) Calls(path string) []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Call
	for _, c := range s.calls {
		if c.Path == path {
			out = append(out, c)
		}
	}
	return out
}

// AllCalls returns every api call received, in order.
func (s *Site) AllCalls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Call, len(s.calls))
	copy(out, s.calls)
	return out
}

// Fetches is the number of GET requests served for path.
func (s *Site) Fetches(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fetches[path]
}

func requestPath(r *http.Request) string {
	if r.URL.RawQuery == "" {
		return r.URL.Path
	}
	return r.URL.Path + "?" + r.URL.RawQuery
}

func (s *Site) serve(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		s.servePage(w, r)
		return
	}
	s.serveCall(w, r)
}

func (s *Site) servePage(w http.ResponseWriter, r *http.Request) {
	path := requestPath(r)

	s.mu.Lock()
	html, ok := s.pages[path]
	s.fetches[path]++
	s.mu.Unlock()

	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	io.WriteString(w, html)
}

func (s *Site) serveCall(w http.ResponseWriter, r *http.Request) {
	call := Call{
		Path:   r.URL.Path,
		Query:  map[string]string{},
		Header: r.Header.Clone(),
	}
	for k := range r.URL.Query() {
		call.Query[k] = r.URL.Query().Get(k)
	}
	body, _ := io.ReadAll(r.Body)
	if len(body) > 0 {
		err := json.Unmarshal(body, &call.Body)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	s.mu.Lock()
	s.calls = append(s.calls, call)
	var reply Reply
	var found bool
	if queue := s.queues[call.Path]; len(queue) > 0 {
		reply = queue[0]
		s.queues[call.Path] = queue[1:]
		found = true
	}
	handler, hasHandler := s.handlers[call.Path]
	s.mu.Unlock()

	if !found && hasHandler {
		reply = handler(call)
		found = true
	}
	if !found {
		http.NotFound(w, r)
		return
	}

	status := reply.Status
	if status == 0 {
		status = http.StatusOK
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if reply.Raw != "" {
		io.WriteString(w, reply.Raw)
		return
	}
	if reply.Body != nil {
		json.NewEncoder(w).Encode(reply.Body)
	}
}
