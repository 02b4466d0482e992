package local

import (
	"crypto/rand"
	"encoding/hex"
	"sync"
	"time"

	"ghxstship/accounts/internal/credstore"
	"ghxstship/accounts/internal/security"
)

// codeEntry is one outstanding emailed token, stored by token hash.
type codeEntry struct {
	email     string
	typ       credstore.VerifyType
	expiresAt time.Time
}

// CodeStore holds one-time email tokens (signup confirmation, recovery,
// magic link) in memory. Tokens are stored hashed and consumed on first
// use.
type CodeStore struct {
	mu   sync.Mutex
	m    map[string]codeEntry
	nowF func() time.Time
}

func NewCodeStore() *CodeStore {
	return &CodeStore{
		m:    make(map[string]codeEntry),
		nowF: func() time.Time { return time.Now().UTC() },
	}
}

// Issue mints a token for email and typ, valid for ttl, and returns the
// token hash that goes into the emailed link. Only the hash is ever
// stored or transmitted.
func (s *CodeStore) Issue(email string, typ credstore.VerifyType, ttl time.Duration) (string, error) {
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	tokenHash := security.HashRefreshToken(hex.EncodeToString(buf))

	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[tokenHash] = codeEntry{
		email:     email,
		typ:       typ,
		expiresAt: s.nowF().Add(ttl),
	}
	return tokenHash, nil
}

// Consume looks up a token hash, removes it, and returns the email it
// was issued for. A signup confirmation token also satisfies an "email"
// verify request.
func (s *CodeStore) Consume(tokenHash string, typ credstore.VerifyType) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.m[tokenHash]
	if !ok {
		return "", credstore.ErrInvalidToken
	}
	delete(s.m, tokenHash)

	if !e.expiresAt.After(s.nowF()) {
		return "", credstore.ErrExpiredToken
	}
	if e.typ != typ && !(e.typ == credstore.VerifySignup && typ == credstore.VerifyEmail) {
		return "", credstore.ErrInvalidToken
	}
	return e.email, nil
}
