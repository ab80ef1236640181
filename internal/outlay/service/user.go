package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"
	"unicode"

	"github.com/outlaydev/outlay/internal/outlay/domain"
	"github.com/outlaydev/outlay/internal/outlay/store"
	"github.com/outlaydev/outlay/pkg/cryptox"
	"github.com/outlaydev/outlay/pkg/idx"
	"github.com/outlaydev/outlay/pkg/slogx"
)

const (
	challengeTTL     = 10 * time.Minute
	inviteTTL        = 7 * 24 * time.Hour
	passwordSpecials = "!@#$%^&*()_+-=[]{}|;:'\",.<>/?`~\\"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidInviteToken = errors.New("invite token not found or expired")
	ErrAlreadyActivated   = errors.New("account already has a password")
	ErrPasswordPolicy     = errors.New("password does not meet requirements")
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailTaken         = errors.New("email already registered")
)

type UserService struct {
	Store    store.Store
	Sessions *SessionIssuer
}

// ValidatePasswordPolicy enforces the account password rules: at least
// 6 characters with a letter, an uppercase letter, a digit, and a
// special character.
func ValidatePasswordPolicy(password string) error {
	if len(password) < 6 {
		return ErrPasswordPolicy
	}
	var hasLetter, hasUpper, hasDigit, hasSpecial bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
			hasLetter = true
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
		if strings.ContainsRune(passwordSpecials, r) {
			hasSpecial = true
		}
	}
	if !hasLetter || !hasUpper || !hasDigit || !hasSpecial {
		return ErrPasswordPolicy
	}
	return nil
}

// InviteUser creates an inactive account and mints its activation token.
// The opaque token is returned once; only its fingerprint is stored.
func (s *UserService) InviteUser(ctx context.Context, email, name, role, createdBy string) (domain.User, string, error) {
	return s.inviteUser(ctx, email, name, role, createdBy, "")
}

// InviteUserWithToken is InviteUser with a caller-supplied activation
// token. Bootstrap uses it so operators can pre-share the token.
func (s *UserService) InviteUserWithToken(ctx context.Context, email, name, role, createdBy, token string) (domain.User, error) {
	user, _, err := s.inviteUser(ctx, email, name, role, createdBy, token)
	return user, err
}

func (s *UserService) inviteUser(ctx context.Context, email, name, role, createdBy, token string) (domain.User, string, error) {
	log := slogx.FromContext(ctx)

	if role == "" {
		role = "member"
	}

	user := domain.User{
		ID:        idx.New().String(),
		Email:     strings.ToLower(strings.TrimSpace(email)),
		Name:      name,
		Role:      role,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}

	if token == "" {
		generated, err := cryptox.GenerateToken(cryptox.TokenSize256)
		if err != nil {
			log.Error("failed to generate invite token", slog.Any("error", err))
			return domain.User{}, "", err
		}
		token = generated
	}

	invite := domain.Invite{
		ID:        idx.New().String(),
		TokenHash: cryptox.FingerprintToken(token),
		UserID:    user.ID,
		CreatedBy: createdBy,
		ExpiresAt: time.Now().UTC().Add(inviteTTL),
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}

	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Users().CreateUser(ctx, user); err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				return ErrEmailTaken
			}
			return err
		}
		return tx.Invites().CreateInvite(ctx, invite)
	})
	if err != nil {
		return domain.User{}, "", err
	}

	log.Info("user invited",
		slog.String("user_id", user.ID),
		slog.String("invited_by", createdBy),
	)
	return user, token, nil
}

// SetupPassword sets the initial password on an account and opens the
// MFA enrollment challenge. Identified either by an activation token or,
// while the account still has no password, by its user ID.
func (s *UserService) SetupPassword(ctx context.Context, token, userID, password string) (string, error) {
	log := slogx.FromContext(ctx)

	if err := ValidatePasswordPolicy(password); err != nil {
		return "", err
	}

	var (
		user   domain.User
		invite *domain.Invite
		err    error
	)
	switch {
	case token != "":
		inv, lookupErr := s.Store.Invites().GetActiveInviteByTokenHash(ctx, cryptox.FingerprintToken(token))
		if lookupErr != nil {
			if errors.Is(lookupErr, store.ErrNotFound) {
				return "", ErrInvalidInviteToken
			}
			return "", lookupErr
		}
		invite = &inv
		user, err = s.Store.Users().GetUserByID(ctx, inv.UserID)
		if err != nil {
			return "", err
		}
	case userID != "":
		user, err = s.Store.Users().GetUserByID(ctx, userID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return "", ErrUserNotFound
			}
			return "", err
		}
		// The bare user-ID path only exists for accounts that have never
		// had a password.
		if user.Activated() {
			return "", ErrAlreadyActivated
		}
	default:
		return "", ErrInvalidInviteToken
	}

	hash, err := cryptox.HashPassword(password)
	if err != nil {
		log.Error("failed to hash password", slog.Any("error", err))
		return "", err
	}

	challengeID, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return "", err
	}
	challenge := domain.Challenge{
		ID:        challengeID,
		UserID:    user.ID,
		Purpose:   domain.ChallengeForEnrollment,
		CreatedAt: time.Now().UTC(),
		ExpiresAt: time.Now().UTC().Add(challengeTTL),
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Users().UpdatePasswordHash(ctx, user.ID, hash); err != nil {
			return err
		}
		if invite != nil {
			if err := tx.Invites().MarkInviteUsed(ctx, invite.ID); err != nil {
				return err
			}
		}
		return tx.Challenges().CreateChallenge(ctx, challenge)
	})
	if err != nil {
		return "", err
	}

	log.Info("password set, enrollment challenge opened",
		slog.String("user_id", user.ID),
	)
	return challengeID, nil
}

// LoginOutcome is what password authentication produces: either a ready
// session, or a challenge the caller must verify against.
type LoginOutcome struct {
	User        domain.User
	Token       string
	MFARequired bool
	ChallengeID string
	Method      string
}

// Login verifies the password and, for MFA-enrolled accounts, opens a
// login challenge instead of issuing a session.
func (s *UserService) Login(ctx context.Context, webauthnSvc *WebAuthnService, email, password string) (LoginOutcome, error) {
	log := slogx.FromContext(ctx)

	user, err := s.Store.Users().GetUserByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Burn comparable time so missing accounts are not
			// distinguishable by latency.
			_ = cryptox.VerifyPassword(password, dummyHash)
			return LoginOutcome{}, ErrInvalidCredentials
		}
		return LoginOutcome{}, err
	}
	if !user.Activated() {
		return LoginOutcome{}, ErrInvalidCredentials
	}

	if err := cryptox.VerifyPassword(password, user.PasswordHash); err != nil {
		log.Warn("password verification failed", slog.String("user_id", user.ID))
		return LoginOutcome{}, ErrInvalidCredentials
	}

	if !user.MFAEnrolled() {
		token, err := s.Sessions.Issue(user, []string{amrPassword}, false)
		if err != nil {
			return LoginOutcome{}, err
		}
		return LoginOutcome{User: user, Token: token}, nil
	}

	challenge := domain.Challenge{
		UserID:    user.ID,
		Purpose:   domain.ChallengeForLogin,
		Method:    user.MFAMethod,
		CreatedAt: time.Now().UTC(),
		ExpiresAt: time.Now().UTC().Add(challengeTTL),
	}

	switch *user.MFAMethod {
	case domain.MethodPasskey:
		// The ceremony challenge doubles as the challenge ID.
		id, session, err := webauthnSvc.BeginLogin(ctx, user.ID)
		if err != nil {
			return LoginOutcome{}, err
		}
		challenge.ID = id
		challenge.WebAuthnSession = &session
	default:
		id, err := cryptox.GenerateToken(cryptox.TokenSize256)
		if err != nil {
			return LoginOutcome{}, err
		}
		challenge.ID = id
	}

	if err := s.Store.Challenges().CreateChallenge(ctx, challenge); err != nil {
		return LoginOutcome{}, err
	}

	log.Info("login challenge opened",
		slog.String("user_id", user.ID),
		slog.String("method", *user.MFAMethod),
	)
	return LoginOutcome{
		User:        user,
		MFARequired: true,
		ChallengeID: challenge.ID,
		Method:      *user.MFAMethod,
	}, nil
}

// GetUser fetches an account by ID.
func (s *UserService) GetUser(ctx context.Context, userID string) (domain.User, error) {
	user, err := s.Store.Users().GetUserByID(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return domain.User{}, ErrUserNotFound
	}
	return user, err
}

// dummyHash is a throwaway argon2id hash used to equalize timing on
// unknown-account logins.
const dummyHash = "$argon2id$v=19$m=19456,t=2,p=1$AAAAAAAAAAAAAAAAAAAAAA$AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"
