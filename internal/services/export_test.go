package services

// DummyHashFor exposes the unknown-user hash once it has been built; nil before.
func DummyHashFor(s *AuthService) []byte { return s.dummy }
