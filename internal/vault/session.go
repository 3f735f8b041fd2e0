package vault

// Session is the encryption context bound to one unlocked session. It holds
// the master passphrase for its lifetime because every sealed blob derives
// its own key from a salt embedded in that blob. A Session is constructed
// only after the master account verified; it must be closed on logout or
// process exit and never outlives a failed authentication.
type Session struct {
	passphrase []byte
}

// NewSession wraps an authenticated passphrase in an encryption context.
func NewSession(passphrase string) *Session {
	return &Session{passphrase: []byte(passphrase)}
}

// Active reports whether the session still holds key material.
func (s *Session) Active() bool {
	return s != nil && len(s.passphrase) > 0
}

// EncryptSecret seals plaintext into the persisted blob format.
func (s *Session) EncryptSecret(plaintext string) (string, error) {
	if !s.Active() {
		return "", ErrNotAuthenticated
	}
	return SealSecret(s.passphrase, plaintext)
}

// DecryptSecret opens a persisted blob back into plaintext.
func (s *Session) DecryptSecret(sealed string) (string, error) {
	if !s.Active() {
		return "", ErrNotAuthenticated
	}
	return OpenSecret(s.passphrase, sealed)
}

// Close wipes the held passphrase. The session is unusable afterwards.
func (s *Session) Close() {
	if s == nil {
		return
	}
	zeroize(s.passphrase)
	s.passphrase = nil
}
