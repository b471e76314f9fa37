// Package services contains server-side business logic. This file implements
// UserService, which handles registration, login and password reset on top
// of the credential store and the session issuer.
package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"net/url"
	"strings"
	"sync"

	"github.com/faithchat/relay/internal/common"
	"github.com/faithchat/relay/internal/logging"
	"github.com/faithchat/relay/internal/server/models"
	"github.com/faithchat/relay/internal/server/repositories/users"
	"golang.org/x/crypto/bcrypt"
)

// ForgotAck is the acknowledgment returned for every forgot-password request.
const ForgotAck = "If this email exists, a reset link has been sent."

// ResetDone is the acknowledgment returned after a reset request is accepted.
const ResetDone = "Password has been reset."

// TokenIssuer mints and checks locally issued tokens.
type TokenIssuer interface {
	IssueSession(identity string) (string, error)
	IssueReset(identity string) (string, error)
	ParseReset(token string) (string, error)
}

// ResetTicket is what a forgot-password request produced. Link and Token are
// empty when the identity is unknown.
type ResetTicket struct {
	Message string
	Link    string
	Token   string
}

// UserService provides the credential operations:
// - Register: create a user and mint a session token
// - Login: check a password and mint a session token
// - ForgotPassword / ResetPassword: the reset-token round trip
type UserService struct {
	users        users.Repository
	issuer       TokenIssuer
	notifier     ResetNotifier
	resetURLBase string
	hashCost     int
	dummyHash    []byte
	logger       logging.Logger

	notifications sync.WaitGroup
}

type UserServiceOption func(*UserService)

// WithHashCost overrides the bcrypt cost. Tests use bcrypt.MinCost.
func WithHashCost(cost int) UserServiceOption {
	return func(s *UserService) { s.hashCost = cost }
}

func WithUserLogger(l logging.Logger) UserServiceOption {
	return func(s *UserService) { s.logger = l }
}

func NewUserService(repo users.Repository, issuer TokenIssuer, notifier ResetNotifier, resetURLBase string, opts ...UserServiceOption) *UserService {
	s := &UserService{
		users:        repo,
		issuer:       issuer,
		notifier:     notifier,
		resetURLBase: resetURLBase,
		hashCost:     bcrypt.DefaultCost,
		logger:       logging.Nop{},
	}
	for _, o := range opts {
		o(s)
	}
	if s.notifier == nil {
		s.notifier = NewLogResetNotifier(s.logger)
	}

	// Compared against on unknown identities so login timing does not
	// reveal whether an account exists.
	dummy, err := bcrypt.GenerateFromPassword([]byte("not-a-real-password"), s.hashCost)
	if err != nil {
		panic(fmt.Sprintf("bcrypt: %v", err))
	}
	s.dummyHash = dummy

	return s
}

// Register creates the account and returns a session token for it.
func (s *UserService) Register(ctx context.Context, identity, password string) (string, error) {
	identity, err := normalizeIdentity(identity)
	if err != nil {
		return "", err
	}
	if err := checkPassword(password); err != nil {
		return "", err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}

	if _, err := s.users.Create(ctx, &models.User{Identity: identity, PasswordHash: hash}); err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return "", common.ErrUserExists
		}
		s.logger.Error(ctx, "create user failed", "error", err)
		return "", common.ErrorInternal
	}

	s.logger.Info(ctx, "user registered", "identity", identity)
	return s.issueSession(ctx, identity)
}

// Login returns a session token when password matches the stored hash.
func (s *UserService) Login(ctx context.Context, identity, password string) (string, error) {
	identity = strings.TrimSpace(identity)

	user, err := s.users.GetByIdentity(ctx, identity)
	if err != nil {
		if !errors.Is(err, common.ErrorNotFound) {
			s.logger.Error(ctx, "load user failed", "error", err)
			return "", common.ErrorInternal
		}
		_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
		return "", common.ErrorUnauthorized
	}

	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)); err != nil {
		return "", common.ErrorUnauthorized
	}

	return s.issueSession(ctx, identity)
}

// ForgotPassword issues a reset token for a known identity and hands the
// link to the notifier. The acknowledgment is the same either way; Link and
// Token are only for callers running outside production.
func (s *UserService) ForgotPassword(ctx context.Context, identity string) (*ResetTicket, error) {
	ticket := &ResetTicket{Message: ForgotAck}
	identity = strings.TrimSpace(identity)

	_, err := s.users.GetByIdentity(ctx, identity)
	if err != nil {
		if !errors.Is(err, common.ErrorNotFound) {
			s.logger.Error(ctx, "load user failed", "error", err)
		}
		return ticket, nil
	}

	token, err := s.issuer.IssueReset(identity)
	if err != nil {
		s.logger.Error(ctx, "issue reset token failed", "error", err)
		return ticket, nil
	}

	link := s.resetLink(token)

	// Delivery runs off the request path so a slow notifier does not make
	// known identities answer slower than unknown ones.
	notifyCtx := context.WithoutCancel(ctx)
	s.notifications.Add(1)
	go func() {
		defer s.notifications.Done()
		if err := s.notifier.NotifyReset(notifyCtx, identity, link); err != nil {
			s.logger.Error(notifyCtx, "reset notification failed", "error", err)
		}
	}()

	ticket.Link = link
	ticket.Token = token
	return ticket, nil
}

// WaitNotifications blocks until every dispatched reset notification has
// been handed to the notifier.
func (s *UserService) WaitNotifications() {
	s.notifications.Wait()
}

// ResetPassword replaces the password of the identity named by token. An
// identity that no longer exists is reported as success.
func (s *UserService) ResetPassword(ctx context.Context, token, newPassword string) error {
	identity, err := s.issuer.ParseReset(token)
	if err != nil {
		s.logger.Debug(ctx, "reset token rejected", "error", err)
		return common.ErrInvalidReset
	}

	if err := checkPassword(newPassword); err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.hashCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if err := s.users.UpdatePasswordHash(ctx, identity, hash); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.logger.Warn(ctx, "reset for unknown identity")
			return nil
		}
		s.logger.Error(ctx, "update password failed", "error", err)
		return common.ErrorInternal
	}

	s.logger.Info(ctx, "password reset", "identity", identity)
	return nil
}

func (s *UserService) issueSession(ctx context.Context, identity string) (string, error) {
	token, err := s.issuer.IssueSession(identity)
	if err != nil {
		s.logger.Error(ctx, "issue session token failed", "error", err)
		return "", common.ErrorInternal
	}
	return token, nil
}

func (s *UserService) resetLink(token string) string {
	u, err := url.Parse(s.resetURLBase)
	if err != nil {
		return s.resetURLBase + "?token=" + url.QueryEscape(token)
	}
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()
	return u.String()
}

func normalizeIdentity(identity string) (string, error) {
	identity = strings.TrimSpace(identity)
	addr, err := mail.ParseAddress(identity)
	if err != nil || addr.Address != identity {
		return "", common.ErrInvalidIdentity
	}
	return identity, nil
}

func checkPassword(password string) error {
	if len(password) < common.MinPasswordLength {
		return common.ErrWeakPassword
	}
	return nil
}
