package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"catering-menu/models"

	log "github.com/sirupsen/logrus"
)

type NoticeLevel int

const (
	NoticeNone NoticeLevel = iota
	NoticeInfo
	NoticeSuccess
	NoticeWarning
	NoticeError
)

// Notice is user feedback produced by the last action.
type Notice struct {
	Level NoticeLevel
	Text  string
}

func (n Notice) Empty() bool {
	return n.Level == NoticeNone
}

// Session is the state of one user: cart, delivery details and whether the
// details were explicitly confirmed. Any mutation after confirmation clears it.
type Session struct {
	ID        string
	Cart      *Cart
	Customer  CustomerStore
	Confirmed bool
	Notice    Notice

	maxQtyPerAdd int
	mu           sync.Mutex
	lastSeen     time.Time
}

func NewSession(id string, maxQtyPerAdd int) *Session {
	return &Session{ID: id, Cart: NewCart(), maxQtyPerAdd: maxQtyPerAdd}
}

func (s *Session) setNotice(level NoticeLevel, format string, args ...interface{}) Notice {
	s.Notice = Notice{Level: level, Text: fmt.Sprintf(format, args...)}
	return s.Notice
}

// AddDish adds quantity of dish. Zero/negative or over-cap quantities are a no-op with a warning.
func (s *Session) AddDish(d models.Dish, quantity int) Notice {
	if quantity <= 0 {
		return s.setNotice(NoticeWarning, "Please select quantity")
	}
	if s.maxQtyPerAdd > 0 && quantity > s.maxQtyPerAdd {
		return s.setNotice(NoticeWarning, "You can add at most %d at a time", s.maxQtyPerAdd)
	}
	if err := s.Cart.AddLine(models.CartLine{DishID: d.ID, DishName: d.Name, Quantity: quantity, UnitPrice: d.Price}); err != nil {
		return s.setNotice(NoticeWarning, "Please select quantity")
	}
	s.Confirmed = false
	return s.setNotice(NoticeSuccess, "Added %d x %s!", quantity, d.Name)
}

// RemoveLine removes the cart line at index if it still holds dishID.
// A bad index or a line that has moved is logged and ignored.
func (s *Session) RemoveLine(index int, dishID int64) Notice {
	removed, err := s.Cart.RemoveDishAt(index, dishID)
	if err != nil {
		log.WithError(err).WithField("session", s.ID).Debug("ignored cart removal")
		return Notice{}
	}
	s.Confirmed = false
	return s.setNotice(NoticeInfo, "Removed %s from cart", removed.DishName)
}

func (s *Session) ClearCart() Notice {
	s.Cart.Clear()
	s.Confirmed = false
	return s.setNotice(NoticeInfo, "Cart cleared")
}

// EditCustomer stores details without confirming them.
func (s *Session) EditCustomer(name, phone, address string) {
	s.Customer.Update(name, phone, address)
	s.Confirmed = false
}

// SubmitCustomer stores details and marks them confirmed. The order link
// additionally requires every field to be present.
func (s *Session) SubmitCustomer(name, phone, address string) Notice {
	s.Customer.Update(name, phone, address)
	s.Confirmed = true
	if missing := s.Customer.Validate(); len(missing) > 0 {
		return s.setNotice(NoticeError, "Please fill in all required information: %s", strings.Join(missing, ", "))
	}
	return s.setNotice(NoticeSuccess, "Information confirmed")
}

// TakeNotice returns the pending notice and clears it.
func (s *Session) TakeNotice() Notice {
	n := s.Notice
	s.Notice = Notice{}
	return n
}

// SessionStore keeps sessions isolated by key and serialises actions on each one.
type SessionStore struct {
	mu           sync.Mutex
	sessions     map[string]*Session
	ttl          time.Duration
	maxQtyPerAdd int
	now          func() time.Time
	onEvict      []func(id string)
}

func NewSessionStore(ttl time.Duration, maxQtyPerAdd int) *SessionStore {
	return &SessionStore{
		sessions:     make(map[string]*Session),
		ttl:          ttl,
		maxQtyPerAdd: maxQtyPerAdd,
		now:          time.Now,
	}
}

// Do runs fn with exclusive access to the session for id, creating it if needed.
func (st *SessionStore) Do(id string, fn func(s *Session)) {
	st.mu.Lock()
	s, ok := st.sessions[id]
	if !ok {
		s = NewSession(id, st.maxQtyPerAdd)
		st.sessions[id] = s
	}
	s.lastSeen = st.now()
	st.mu.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s)
}

func (st *SessionStore) Exists(id string) bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	_, ok := st.sessions[id]
	return ok
}

func (st *SessionStore) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}

// OnEvict registers fn to be called with the id of every session Sweep evicts.
// Register hooks before the sweeper starts.
func (st *SessionStore) OnEvict(fn func(id string)) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.onEvict = append(st.onEvict, fn)
}

// Sweep evicts sessions idle for longer than the TTL and returns how many were removed.
func (st *SessionStore) Sweep() int {
	if st.ttl <= 0 {
		return 0
	}
	cutoff := st.now().Add(-st.ttl)
	st.mu.Lock()
	var evicted []string
	for id, s := range st.sessions {
		if s.lastSeen.Before(cutoff) {
			delete(st.sessions, id)
			evicted = append(evicted, id)
		}
	}
	hooks := st.onEvict
	st.mu.Unlock()

	for _, id := range evicted {
		for _, fn := range hooks {
			fn(id)
		}
	}
	return len(evicted)
}

// RunSweeper calls Sweep every interval until ctx is done.
func (st *SessionStore) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := st.Sweep(); n > 0 {
				log.WithField("evicted", n).Debug("idle sessions evicted")
			}
		}
	}
}
