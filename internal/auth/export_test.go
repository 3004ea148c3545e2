package auth

import "time"

func (s *TokenService) UseClock(now func() time.Time) {
	s.now = now
}
