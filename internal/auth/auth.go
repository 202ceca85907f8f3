// Package auth provides the mock login that gates the evaluation and dashboard
// routes. Any non-empty credentials log in unless the email was registered,
// in which case the password must match.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// DefaultTokenTTL is used when no token lifetime is configured.
const DefaultTokenTTL = 24 * time.Hour

var (
	// ErrMissingCredentials is returned when a required credential is blank.
	ErrMissingCredentials = errors.New("missing credentials")
	// ErrInvalidCredentials is returned when a registered user's password does not match.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUserExists is returned when registering an email twice.
	ErrUserExists = errors.New("user already exists")
	// ErrInvalidToken is returned for malformed, expired or revoked tokens.
	ErrInvalidToken = errors.New("invalid or expired token")
)

// User identifies a logged-in user.
type User struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Session is a verified token and its user.
type Session struct {
	Token     string    `json:"token"`
	User      User      `json:"user"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Authenticator is the capability the server needs from an auth backend.
type Authenticator interface {
	Login(email, password string) (Session, error)
	Register(username, email, password string) (Session, error)
	Logout(token string) error
	Verify(token string) (Session, error)
}

// Config configures the mock service.
type Config struct {
	Secret     string        `yaml:"secret,omitempty"`
	TokenTTL   time.Duration `yaml:"tokenTTL,omitempty"`
	BcryptCost int           `yaml:"-"`
}

type account struct {
	user User
	hash []byte
}

type claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Service issues HS256 tokens and keeps registered users in memory.
type Service struct {
	logger *zap.Logger
	secret []byte
	ttl    time.Duration
	cost   int
	now    func() time.Time

	mu      sync.Mutex
	users   map[string]account
	revoked map[string]time.Time
}

var _ Authenticator = (*Service)(nil)

// NewService creates the service. Without a secret a random one is generated,
// so tokens do not survive a restart.
func NewService(logger *zap.Logger, cfg Config) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}

	secret := []byte(cfg.Secret)
	if len(secret) == 0 {
		logger.Warn("no auth secret configured, generating an ephemeral one",
			zap.String("op", "auth.NewService"),
		)
		secret = []byte(uuid.NewString() + uuid.NewString())
	}
	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	cost := cfg.BcryptCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}

	return &Service{
		logger:  logger,
		secret:  secret,
		ttl:     ttl,
		cost:    cost,
		now:     time.Now,
		users:   make(map[string]account),
		revoked: make(map[string]time.Time),
	}
}

// Login issues a token for any non-empty credentials. A registered email must
// present its password.
func (s *Service) Login(email, password string) (Session, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return Session{}, ErrMissingCredentials
	}

	s.mu.Lock()
	acct, registered := s.users[email]
	s.mu.Unlock()

	user := User{Username: usernameFromEmail(email), Email: email}
	if registered {
		if err := bcrypt.CompareHashAndPassword(acct.hash, []byte(password)); err != nil {
			s.logger.Info("login rejected",
				zap.String("op", "auth.Login"),
				zap.String("email", email),
			)
			return Session{}, ErrInvalidCredentials
		}
		user = acct.user
	}

	session, err := s.issue(user)
	if err != nil {
		return Session{}, err
	}
	s.logger.Info("user logged in",
		zap.String("op", "auth.Login"),
		zap.String("email", email),
		zap.Bool("registered", registered),
	)
	return session, nil
}

// Register stores a user with a bcrypt password hash and logs them in.
func (s *Service) Register(username, email, password string) (Session, error) {
	username = strings.TrimSpace(username)
	email = normalizeEmail(email)
	if username == "" || email == "" || password == "" {
		return Session{}, ErrMissingCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return Session{}, fmt.Errorf("failed to hash password: %w", err)
	}

	user := User{Username: username, Email: email}
	s.mu.Lock()
	if _, exists := s.users[email]; exists {
		s.mu.Unlock()
		return Session{}, fmt.Errorf("%w: %s", ErrUserExists, email)
	}
	s.users[email] = account{user: user, hash: hash}
	s.mu.Unlock()

	s.logger.Info("user registered",
		zap.String("op", "auth.Register"),
		zap.String("email", email),
	)
	return s.issue(user)
}

// Logout revokes a valid token.
func (s *Service) Logout(token string) error {
	c, err := s.parse(token)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for id, until := range s.revoked {
		if now.After(until) {
			delete(s.revoked, id)
		}
	}
	s.revoked[c.ID] = c.ExpiresAt.Time

	s.logger.Info("user logged out",
		zap.String("op", "auth.Logout"),
		zap.String("email", c.Subject),
	)
	return nil
}

// Verify checks a token's signature, expiry and revocation.
func (s *Service) Verify(token string) (Session, error) {
	c, err := s.parse(token)
	if err != nil {
		return Session{}, err
	}
	return Session{
		Token:     token,
		User:      User{Username: c.Username, Email: c.Subject},
		ExpiresAt: c.ExpiresAt.Time,
	}, nil
}

func (s *Service) issue(user User) (Session, error) {
	now := s.now()
	expires := now.Add(s.ttl)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   user.Email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	})
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return Session{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return Session{Token: signed, User: user, ExpiresAt: expires.Truncate(time.Second)}, nil
}

func (s *Service) parse(token string) (*claims, error) {
	if strings.TrimSpace(token) == "" {
		return nil, ErrInvalidToken
	}

	c := &claims{}
	_, err := jwt.ParseWithClaims(token, c, func(*jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if c.Subject == "" || c.ID == "" {
		return nil, ErrInvalidToken
	}

	s.mu.Lock()
	_, revoked := s.revoked[c.ID]
	s.mu.Unlock()
	if revoked {
		return nil, fmt.Errorf("%w: revoked", ErrInvalidToken)
	}
	return c, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func usernameFromEmail(email string) string {
	if i := strings.Index(email, "@"); i > 0 {
		return email[:i]
	}
	return email
}
