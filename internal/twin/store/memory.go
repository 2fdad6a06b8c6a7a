package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrUsernameTaken is returned when registering an existing username.
	ErrUsernameTaken = errors.New("username already exists")
	// ErrWeddingNotFound is returned for an unknown wedding id.
	ErrWeddingNotFound = errors.New("wedding not found")
	// ErrInvalidUser is returned for an empty username or password.
	ErrInvalidUser = errors.New("username and password are required")
)

// Credentials is a user seeded on startup and after every reset.
type Credentials struct {
	Username string `json:"username" yaml:"username"`
	Password string `json:"password" yaml:"password"`
}

// MemoryStore holds all wedding twin state in memory.
type MemoryStore struct {
	// mu serializes multi-store operations: lazy wedding creation and
	// username uniqueness.
	mu sync.Mutex

	Users    *Table[User]
	Sessions *Table[Session]
	Weddings *Table[Wedding]

	Clock *Clock

	seeds []Credentials
}

// New creates a MemoryStore and seeds the given users.
func New(seeds ...Credentials) *MemoryStore {
	s := &MemoryStore{
		Users:    NewTable[User]("user"),
		Sessions: NewTable[Session]("sess"),
		Weddings: NewTable[Wedding]("wed"),
		Clock:    NewClock(),
		seeds:    seeds,
	}
	s.applySeeds()
	return s
}

func (s *MemoryStore) applySeeds() {
	for _, c := range s.seeds {
		// Taken usernames are expected after LoadState restored the same users.
		_, _ = s.CreateUser(c.Username, c.Password)
	}
}

// now returns the simulated time in UTC.
func (s *MemoryStore) now() time.Time {
	return s.Clock.Now().UTC()
}

// Timestamp formats the current simulated time with TimestampFormat.
func (s *MemoryStore) Timestamp() string {
	return s.now().Format(TimestampFormat)
}

// passwordCost keeps seeding and /admin/reset fast; the twin holds no real
// credentials.
const passwordCost = bcrypt.MinCost

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), passwordCost)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidUser, err)
	}
	return string(hash), nil
}

// CreateUser registers a new account.
func (s *MemoryStore) CreateUser(username, password string) (User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return User{}, ErrInvalidUser
	}

	hash, err := hashPassword(password)
	if err != nil {
		return User{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.userByName(username); ok {
		return User{}, ErrUsernameTaken
	}
	u := User{
		ID:           s.Users.NextID(),
		Username:     username,
		PasswordHash: hash,
		CreatedAt:    s.now(),
	}
	s.Users.Set(u.ID, u)
	return u, nil
}

func (s *MemoryStore) userByName(username string) (User, bool) {
	_, u, ok := s.Users.Find(func(_ string, u User) bool { return u.Username == username })
	return u, ok
}

// Authenticate returns the user when username and password match.
func (s *MemoryStore) Authenticate(username, password string) (User, bool) {
	u, ok := s.userByName(username)
	if !ok {
		return User{}, false
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return User{}, false
	}
	return u, true
}

// CreateSession starts a session for userID valid for ttl.
func (s *MemoryStore) CreateSession(userID string, ttl time.Duration) Session {
	now := s.now()
	sess := Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
	s.Sessions.Set(sess.ID, sess)
	return sess
}

// ActiveSession returns the session if it exists and has not expired.
func (s *MemoryStore) ActiveSession(id string) (Session, bool) {
	sess, ok := s.Sessions.Get(id)
	if !ok || !s.now().Before(sess.ExpiresAt) {
		return Session{}, false
	}
	return sess, true
}

// User looks up a user by ID.
func (s *MemoryStore) User(id string) (User, bool) {
	return s.Users.Get(id)
}

// WeddingForUser returns the user's wedding, creating an empty default
// document on first access.
func (s *MemoryStore) WeddingForUser(userID string) Wedding {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.weddingForUserLocked(userID)
}

func (s *MemoryStore) weddingForUserLocked(userID string) Wedding {
	if _, w, ok := s.Weddings.Find(func(_ string, w Wedding) bool { return w.UserID == userID }); ok {
		return w.Clone()
	}
	ts := s.Timestamp()
	w := Wedding{
		ID:        uuid.NewString(),
		UserID:    userID,
		CreatedAt: ts,
		UpdatedAt: ts,
	}
	w.Normalize()
	s.Weddings.Set(w.ID, w)
	return w.Clone()
}

// UpdateWedding applies fn to the user's wedding and stores the result.
// Nothing is stored when fn fails.
func (s *MemoryStore) UpdateWedding(userID string, fn func(*Wedding) error) (Wedding, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current := s.weddingForUserLocked(userID)
	var updated Wedding
	_, err := s.Weddings.Update(current.ID, func(w *Wedding) error {
		next := w.Clone()
		if err := fn(&next); err != nil {
			return err
		}
		next.ID = w.ID
		next.UserID = w.UserID
		next.CreatedAt = w.CreatedAt
		next.UpdatedAt = s.Timestamp()
		next.Normalize()
		*w = next
		updated = next.Clone()
		return nil
	})
	if err != nil {
		return Wedding{}, err
	}
	return updated, nil
}

// AddGuestbookMessage appends a message to the wedding's guestbook.
func (s *MemoryStore) AddGuestbookMessage(weddingID, name, relationship, message string) (GuestbookMessage, error) {
	msg := GuestbookMessage{
		ID:           uuid.NewString(),
		Name:         name,
		Relationship: relationship,
		Message:      message,
		CreatedAt:    s.Timestamp(),
	}
	found, err := s.Weddings.Update(weddingID, func(w *Wedding) error {
		w.GuestbookMessages = append(append([]GuestbookMessage(nil), w.GuestbookMessages...), msg)
		return nil
	})
	if err != nil {
		return GuestbookMessage{}, err
	}
	if !found {
		return GuestbookMessage{}, fmt.Errorf("%w: %s", ErrWeddingNotFound, weddingID)
	}
	return msg, nil
}

// GuestbookMessages returns a wedding's messages newest first. ok is false
// for an unknown wedding.
func (s *MemoryStore) GuestbookMessages(weddingID string) ([]GuestbookMessage, bool) {
	w, ok := s.Weddings.Get(weddingID)
	if !ok {
		return []GuestbookMessage{}, false
	}
	return SortNewestFirst(w.GuestbookMessages), true
}

// SortNewestFirst returns a copy of msgs ordered by created_at descending.
// Messages with equal timestamps keep their relative order.
func SortNewestFirst(msgs []GuestbookMessage) []GuestbookMessage {
	out := append([]GuestbookMessage{}, msgs...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt > out[j].CreatedAt
	})
	return out
}

// stateSnapshot is the JSON-serializable state for admin endpoints.
type stateSnapshot struct {
	Users    map[string]User    `json:"users"`
	Sessions map[string]Session `json:"sessions"`
	Weddings map[string]Wedding `json:"weddings"`
}

// Snapshot returns the full state as a JSON-serializable value.
func (s *MemoryStore) Snapshot() any {
	return stateSnapshot{
		Users:    s.Users.Snapshot(),
		Sessions: s.Sessions.Snapshot(),
		Weddings: s.Weddings.Snapshot(),
	}
}

// LoadState replaces the full state from a JSON body. Missing sections
// are left untouched.
func (s *MemoryStore) LoadState(data []byte) error {
	var snap stateSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("decoding state: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if snap.Users != nil {
		s.Users.LoadSnapshot(snap.Users)
	}
	if snap.Sessions != nil {
		s.Sessions.LoadSnapshot(snap.Sessions)
	}
	if snap.Weddings != nil {
		for id, w := range snap.Weddings {
			if w.ID == "" {
				w.ID = id
			}
			w.Normalize()
			snap.Weddings[id] = w
		}
		s.Weddings.LoadSnapshot(snap.Weddings)
	}
	return nil
}

// Reset clears all state and re-creates the seeded users.
func (s *MemoryStore) Reset() {
	s.Users.Reset()
	s.Sessions.Reset()
	s.Weddings.Reset()
	s.Clock.Reset()
	s.applySeeds()
}
