package test

import (
	"errors"
	"fmt"

	"github.com/polkiloo/shoutout/internal/domain/model"
	pkgAuth "github.com/polkiloo/shoutout/internal/pkg/auth"
)

// HasherStub provides deterministic hashing for tests.
type HasherStub struct {
	HashFn    func(string) (string, error)
	CompareFn func(string, string) error
}

// Hash returns a predictable hash for the supplied password.
func (h HasherStub) Hash(password string) (string, error) {
	if h.HashFn != nil {
		return h.HashFn(password)
	}
	return "hash:" + password, nil
}

// Compare validates password against stored hash.
func (h HasherStub) Compare(hash string, password string) error {
	if h.CompareFn != nil {
		return h.CompareFn(hash, password)
	}
	if hash != "hash:"+password {
		return errors.New("mismatch")
	}
	return nil
}

// StrategyStub issues "token-<id>-<role>" strings and parses them back.
type StrategyStub struct {
	IssueFn func(model.Identity) (string, error)
	ParseFn func(string) (model.Identity, error)
	NameVal string
}

// IssueToken returns deterministic tokens for tests.
func (s StrategyStub) IssueToken(identity model.Identity) (string, error) {
	if s.IssueFn != nil {
		return s.IssueFn(identity)
	}
	return fmt.Sprintf("token-%d-%s", identity.UserID, identity.Role), nil
}

// ParseToken parses previously issued token strings.
func (s StrategyStub) ParseToken(token string) (model.Identity, error) {
	if s.ParseFn != nil {
		return s.ParseFn(token)
	}
	var (
		id   int64
		role string
	)
	if _, err := fmt.Sscanf(token, "token-%d-%s", &id, &role); err != nil {
		return model.Identity{}, pkgAuth.ErrInvalidToken
	}
	return model.Identity{UserID: id, Role: model.Role(role)}, nil
}

// Name returns the strategy identifier used in tests.
func (s StrategyStub) Name() string {
	if s.NameVal != "" {
		return s.NameVal
	}
	return "stub"
}

var _ pkgAuth.PasswordHasher = HasherStub{}
var _ pkgAuth.Strategy = StrategyStub{}
