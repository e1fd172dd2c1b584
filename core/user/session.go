package user

import "sync"

// Session holds the user signed in through a Service.
// Its copy is kept in sync with profile changes made through the same Service.
type Session struct {
	svc *Service

	mu      sync.RWMutex
	current *User
}

func NewSession(svc *Service) *Session {
	s := &Session{svc: svc}
	svc.watch(s)
	return s
}

func (s *Session) Login(username, password string) (User, error) {
	usr, err := s.svc.Login(username, password)
	if err != nil {
		return User{}, err
	}
	s.mu.Lock()
	s.current = &usr
	s.mu.Unlock()
	return usr, nil
}

func (s *Session) Logout() {
	s.mu.Lock()
	s.current = nil
	s.mu.Unlock()
}

// Current returns the signed-in user, if any.
func (s *Session) Current() (User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return User{}, false
	}
	return *s.current, true
}

func (s *Session) refresh(usr User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current != nil && s.current.ID == usr.ID {
		s.current = &usr
	}
}
