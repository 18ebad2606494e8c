package http

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/livingtrust/livingtrust/internal/logging"
	"github.com/livingtrust/livingtrust/pkg/domain"
	"github.com/oapi-codegen/runtime"
)

// StreamManager fans state diffs out to SSE subscribers, per session.
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan<- string]struct{} // SessionID -> Set of Channels
	logger      *slog.Logger
}

func NewStreamManager(logger *slog.Logger) *StreamManager {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &StreamManager{
		subscribers: make(map[string]map[chan<- string]struct{}),
		logger:      logger,
	}
}

// Subscribe registers a buffered channel for sessionID. The returned func
// unsubscribes and closes the channel.
func (sm *StreamManager) Subscribe(sessionID string) (<-chan string, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan string, 10)
	if _, ok := sm.subscribers[sessionID]; !ok {
		sm.subscribers[sessionID] = make(map[chan<- string]struct{})
	}
	sm.subscribers[sessionID][ch] = struct{}{}

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			sm.mu.Lock()
			defer sm.mu.Unlock()
			if subs, ok := sm.subscribers[sessionID]; ok {
				delete(subs, ch)
				if len(subs) == 0 {
					delete(sm.subscribers, sessionID)
				}
			}
			close(ch)
		})
	}
}

// Broadcast sends msg to every subscriber of sessionID. Slow clients drop messages.
func (sm *StreamManager) Broadcast(sessionID string, msg string) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	for ch := range sm.subscribers[sessionID] {
		select {
		case ch <- msg:
		default:
			sm.logger.Warn("SSE: Client buffer full, dropping message", "session_id", sessionID)
		}
	}
}

// Observe is a session.Observer: it broadcasts the diff between old and new.
func (sm *StreamManager) Observe(_ context.Context, old, new *domain.WizardState) {
	diff := domain.Diff(old, new)
	if diff == nil {
		return
	}
	payload, err := json.Marshal(diff)
	if err != nil {
		sm.logger.Error("SSE: diff encode failed", "session_id", new.SessionID, "err", err)
		return
	}
	sm.Broadcast(new.SessionID, string(payload))
}

// matchesWatch reports whether diff touches any of the watched keys.
func matchesWatch(diff *domain.StateDiff, watch []string) bool {
	for _, key := range watch {
		switch strings.TrimSpace(key) {
		case "phase":
			if diff.Phase != nil {
				return true
			}
		case "draft":
			if len(diff.Draft) > 0 {
				return true
			}
		case "notice":
			if diff.Notice != nil {
				return true
			}
		case "error":
			if diff.LastError != nil {
				return true
			}
		case "submission":
			if diff.Submission != nil {
				return true
			}
		}
	}
	return false
}

// subscribeEvents handles GET /api/wizard/events?session_id=&watch=.
func (s *Server) subscribeEvents(w http.ResponseWriter, r *http.Request) {
	var sessionID, watch string
	if err := runtime.BindQueryParameter("form", true, true, "session_id", r.URL.Query(), &sessionID); err != nil || sessionID == "" {
		writeError(w, http.StatusBadRequest, "session_id is required")
		return
	}
	if err := runtime.BindQueryParameter("form", true, false, "watch", r.URL.Query(), &watch); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid watch parameter")
		return
	}
	if _, err := s.ownedSession(r, sessionID); err != nil {
		s.fail(w, r, err, resSession)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "Streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch, cancel := s.Streams.Subscribe(sessionID)
	defer cancel()

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	var watchList []string
	if watch != "" {
		watchList = strings.Split(watch, ",")
	}

	s.Logger.Debug("SSE: subscribed", "session_id", sessionID, "watch", watch)
	for {
		select {
		case <-r.Context().Done():
			s.Logger.Debug("SSE: client disconnected", "session_id", sessionID)
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if len(watchList) > 0 {
				var diff domain.StateDiff
				if err := json.Unmarshal([]byte(msg), &diff); err == nil && !matchesWatch(&diff, watchList) {
					continue
				}
			}
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		}
	}
}
