package apikey

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"

	"golang.org/x/crypto/bcrypt"

	"evconduit/internal/models"
)

// KeyPrefix marks every issued key so clients can recognize them in config files.
const KeyPrefix = "evc_"

// lookupPrefixLen is how many leading characters are stored in plaintext to narrow
// the bcrypt comparison to a handful of candidate rows.
const lookupPrefixLen = 12

// ErrInvalidKey indicates the presented key matches no stored hash.
var ErrInvalidKey = errors.New("apikey: invalid key")

// Hasher defines the key hashing contract.
type Hasher interface {
	Hash(key string) (string, error)
	Compare(hash, key string) error
}

// BcryptHasher implements Hasher using bcrypt.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher returns a bcrypt-backed hasher.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

// Hash converts a plaintext key into its stored hash.
func (h *BcryptHasher) Hash(key string) (string, error) {
	if key == "" {
		return "", errors.New("apikey: empty key")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(key), h.cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Compare checks a plaintext key against a stored hash.
func (h *BcryptHasher) Compare(hash, key string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(key))
}

// KeyStore persists hashed keys.
type KeyStore interface {
	Create(ctx context.Context, key *models.APIKey) error
	FindByPrefix(ctx context.Context, prefix string) ([]models.APIKey, error)
	TouchLastUsed(ctx context.Context, id int64) error
}

// Service issues and authenticates integration API keys. Only the bcrypt hash and
// a short lookup prefix are ever stored; the plaintext key is shown once.
type Service struct {
	store  KeyStore
	hasher Hasher
}

// NewService builds service.
func NewService(store KeyStore, hasher Hasher) *Service {
	if hasher == nil {
		hasher = NewBcryptHasher(0)
	}
	return &Service{store: store, hasher: hasher}
}

// Issue generates a new key for the user, stores its hash and returns the
// plaintext exactly once.
func (s *Service) Issue(ctx context.Context, userID int64, name string) (string, *models.APIKey, error) {
	raw := make([]byte, 24)
	if _, err := rand.Read(raw); err != nil {
		return "", nil, err
	}
	plaintext := KeyPrefix + base64.RawURLEncoding.EncodeToString(raw)

	hash, err := s.hasher.Hash(plaintext)
	if err != nil {
		return "", nil, err
	}

	record := &models.APIKey{
		UserID:  userID,
		Name:    name,
		Prefix:  plaintext[:lookupPrefixLen],
		KeyHash: hash,
	}
	if err := s.store.Create(ctx, record); err != nil {
		return "", nil, err
	}
	return plaintext, record, nil
}

// Authenticate resolves a plaintext key to its owning user ID.
func (s *Service) Authenticate(ctx context.Context, key string) (int64, error) {
	if len(key) < lookupPrefixLen {
		return 0, ErrInvalidKey
	}

	candidates, err := s.store.FindByPrefix(ctx, key[:lookupPrefixLen])
	if err != nil {
		return 0, err
	}
	for _, candidate := range candidates {
		if s.hasher.Compare(candidate.KeyHash, key) == nil {
			_ = s.store.TouchLastUsed(ctx, candidate.ID)
			return candidate.UserID, nil
		}
	}
	return 0, ErrInvalidKey
}
