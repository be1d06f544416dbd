package session

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"ad-creator/internal/imagegen"
	"ad-creator/internal/templates"
)

// HistoryItem is one generated ad. ImageURL is a data URL.
type HistoryItem struct {
	ID          string `json:"id"`
	Date        string `json:"date"`
	Time        string `json:"time"`
	ImageURL    string `json:"imageUrl"`
	ProductName string `json:"productName"`
	BrandName   string `json:"brandName"`
	TemplateID  string `json:"templateId"`
}

// State is what the bot remembers between messages of one user.
type State struct {
	TemplateID string
	Size       imagegen.Size
	// PendingURL and PendingPhoto hold half of an ad request until the
	// other half arrives.
	PendingURL   string
	PendingPhoto string
}

type Session struct {
	UserID       int64
	Username     string
	State        State
	History      []HistoryItem
	LastActivity time.Time
}

type Options struct {
	MaxItems int
	// Now is for tests.
	Now func() time.Time
}

type Store struct {
	mu       sync.Mutex
	sessions map[int64]*Session
	maxItems int
	now      func() time.Time
}

func NewStore(opts Options) *Store {
	maxItems := opts.MaxItems
	if maxItems <= 0 {
		maxItems = 50
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	return &Store{
		sessions: make(map[int64]*Session),
		maxItems: maxItems,
		now:      now,
	}
}

func defaultState() State {
	return State{TemplateID: templates.DefaultID, Size: imagegen.SizeSquare}
}

func (s *Store) State(userID int64, username string) State {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.getOrCreateLocked(userID, username)
	sess.LastActivity = s.now()
	return sess.State
}

// Update applies fn to the user's state and returns the result.
func (s *Store) Update(userID int64, username string, fn func(*State)) State {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.getOrCreateLocked(userID, username)
	sess.LastActivity = s.now()
	fn(&sess.State)
	return sess.State
}

// AddHistory stamps item with an id, date and time and keeps at most
// MaxItems entries, dropping the oldest.
func (s *Store) AddHistory(userID int64, username string, item HistoryItem) HistoryItem {
	now := s.now()
	item.ID = uuid.NewString()
	item.Date = now.Format("2006-01-02")
	item.Time = now.Format("15:04:05")

	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.getOrCreateLocked(userID, username)
	sess.LastActivity = now
	sess.History = append(sess.History, item)
	if len(sess.History) > s.maxItems {
		sess.History = sess.History[len(sess.History)-s.maxItems:]
	}
	return item
}

// History lists the user's ads, newest first.
func (s *Store) History(userID int64) []HistoryItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[userID]
	if !ok {
		return nil
	}
	out := make([]HistoryItem, 0, len(sess.History))
	for i := len(sess.History) - 1; i >= 0; i-- {
		out = append(out, sess.History[i])
	}
	return out
}

// Find matches a full id or a unique prefix of at least 4 characters.
func (s *Store) Find(userID int64, id string) (HistoryItem, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(userID, id)
	if i < 0 {
		return HistoryItem{}, false
	}
	return s.sessions[userID].History[i], true
}

func (s *Store) Delete(userID int64, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(userID, id)
	if i < 0 {
		return false
	}
	sess := s.sessions[userID]
	sess.History = append(sess.History[:i], sess.History[i+1:]...)
	sess.LastActivity = s.now()
	return true
}

// Clear drops the user's history and reports how many items were removed.
func (s *Store) Clear(userID int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[userID]
	if !ok {
		return 0
	}
	n := len(sess.History)
	sess.History = nil
	sess.LastActivity = s.now()
	return n
}

func (s *Store) indexLocked(userID int64, id string) int {
	sess, ok := s.sessions[userID]
	if !ok || len(id) < 4 {
		return -1
	}

	found := -1
	for i, item := range sess.History {
		if item.ID == id {
			return i
		}
		if len(item.ID) >= len(id) && item.ID[:len(id)] == id {
			if found >= 0 {
				return -1
			}
			found = i
		}
	}
	return found
}

func (s *Store) getOrCreateLocked(userID int64, username string) *Session {
	if sess, ok := s.sessions[userID]; ok {
		if sess.Username == "" && username != "" {
			sess.Username = username
		}
		return sess
	}

	sess := &Session{
		UserID:       userID,
		Username:     username,
		State:        defaultState(),
		LastActivity: s.now(),
	}
	s.sessions[userID] = sess
	return sess
}
