package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/ErlanBelekov/user-accounts/internal/domain"
	"github.com/ErlanBelekov/user-accounts/internal/email"
	"github.com/ErlanBelekov/user-accounts/internal/metrics"
	"github.com/ErlanBelekov/user-accounts/internal/password"
	"github.com/ErlanBelekov/user-accounts/internal/repository"
	"github.com/ErlanBelekov/user-accounts/internal/token"
	"github.com/go-playground/validator/v10"
)

const MinPasswordLength = 6

// Sessions issues and verifies session credentials.
type Sessions interface {
	Issue(userID string) (string, time.Time, error)
	Verify(token string) (string, error)
}

// MailConfig is the static addressing used for outbound auth emails.
type MailConfig struct {
	ClientURL string // base for links embedded in emails
	From      string
	ReplyTo   string
}

type AuthUsecase struct {
	users    repository.UserRepository
	tokens   *token.Manager
	hasher   password.Hasher
	sessions Sessions
	email    email.Sender
	mail     MailConfig
	validate *validator.Validate
}

func NewAuthUsecase(
	users repository.UserRepository,
	tokens *token.Manager,
	hasher password.Hasher,
	sessions Sessions,
	emailSender email.Sender,
	mail MailConfig,
) *AuthUsecase {
	mail.ClientURL = strings.TrimRight(mail.ClientURL, "/")
	return &AuthUsecase{
		users:    users,
		tokens:   tokens,
		hasher:   hasher,
		sessions: sessions,
		email:    emailSender,
		mail:     mail,
		validate: validator.New(),
	}
}

// AuthResult is a user together with a freshly issued session credential.
type AuthResult struct {
	User      *domain.User
	Token     string
	ExpiresAt time.Time
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// Register creates an unverified account with role "user" and opens a session.
func (u *AuthUsecase) Register(ctx context.Context, in RegisterInput) (res *AuthResult, err error) {
	defer func() { metrics.AuthEventsTotal.WithLabelValues("register", metrics.Outcome(err)).Inc() }()

	name := strings.TrimSpace(in.Name)
	addr := normalizeEmail(in.Email)
	if name == "" || addr == "" || in.Password == "" {
		return nil, domain.NewValidationError("Name, email and password are all required")
	}
	if err := u.checkEmail(addr); err != nil {
		return nil, err
	}
	if err := checkPassword(in.Password); err != nil {
		return nil, err
	}

	if _, err := u.users.FindByEmail(ctx, addr); err == nil {
		return nil, domain.ErrEmailTaken
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, fmt.Errorf("find user by email: %w", err)
	}

	hash, err := u.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	user, err := u.users.Create(ctx, &domain.User{
		Name:         name,
		Email:        addr,
		PasswordHash: hash,
		Photo:        domain.DefaultPhoto,
		Bio:          domain.DefaultBio,
		Role:         domain.RoleUser,
	})
	if err != nil {
		if errors.Is(err, domain.ErrEmailTaken) {
			return nil, err
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	return u.openSession(user)
}

// Login checks the password for email and opens a new session.
func (u *AuthUsecase) Login(ctx context.Context, emailAddr, plaintext string) (res *AuthResult, err error) {
	defer func() { metrics.AuthEventsTotal.WithLabelValues("login", metrics.Outcome(err)).Inc() }()

	addr := normalizeEmail(emailAddr)
	if addr == "" || plaintext == "" {
		return nil, domain.NewValidationError("Email and password are required")
	}

	user, err := u.users.FindByEmail(ctx, addr)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("find user by email: %w", err)
	}

	if !u.hasher.Verify(plaintext, user.PasswordHash) {
		return nil, domain.ErrInvalidCredentials
	}
	user.PasswordHash = ""

	return u.openSession(user)
}

// LoginStatus reports whether sessionToken is a currently valid credential.
func (u *AuthUsecase) LoginStatus(sessionToken string) bool {
	_, err := u.sessions.Verify(sessionToken)
	return err == nil
}

func (u *AuthUsecase) Profile(ctx context.Context, id domain.Identity) (*domain.User, error) {
	user, err := u.users.FindByID(ctx, id.UserID)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return user, nil
}

// UpdateProfile applies only the supplied fields.
func (u *AuthUsecase) UpdateProfile(ctx context.Context, id domain.Identity, upd domain.ProfileUpdate) (*domain.User, error) {
	if upd.Name != nil {
		name := strings.TrimSpace(*upd.Name)
		if name == "" {
			return nil, domain.NewValidationError("Name cannot be empty")
		}
		upd.Name = &name
	}
	if upd.Photo != nil {
		if err := u.validate.Var(*upd.Photo, "required,url"); err != nil {
			return nil, domain.NewValidationError("Photo must be a valid URL")
		}
	}
	if upd.Empty() {
		return u.Profile(ctx, id)
	}

	user, err := u.users.UpdateProfile(ctx, id.UserID, upd)
	if err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return user, nil
}

// ChangePassword replaces the caller's password after checking the old one.
func (u *AuthUsecase) ChangePassword(ctx context.Context, id domain.Identity, oldPassword, newPassword string) (err error) {
	defer func() { metrics.AuthEventsTotal.WithLabelValues("change_password", metrics.Outcome(err)).Inc() }()

	if oldPassword == "" || newPassword == "" {
		return domain.NewValidationError("Old and new passwords are required")
	}
	if oldPassword == newPassword {
		return domain.ErrSamePassword
	}
	if err := checkPassword(newPassword); err != nil {
		return err
	}

	user, err := u.users.FindCredentials(ctx, id.UserID)
	if err != nil {
		return fmt.Errorf("find user: %w", err)
	}
	if !u.hasher.Verify(oldPassword, user.PasswordHash) {
		return domain.ErrInvalidCredentials
	}

	return u.setPassword(ctx, user.ID, newPassword)
}

// RequestVerification emails the caller a fresh verification link,
// superseding any earlier one.
func (u *AuthUsecase) RequestVerification(ctx context.Context, id domain.Identity) (err error) {
	defer func() { metrics.AuthEventsTotal.WithLabelValues("request_verification", metrics.Outcome(err)).Inc() }()

	user, err := u.users.FindByID(ctx, id.UserID)
	if err != nil {
		return fmt.Errorf("find user: %w", err)
	}
	if user.IsVerified {
		return domain.ErrAlreadyVerified
	}

	raw, err := u.tokens.Issue(ctx, user.ID, domain.PurposeVerification)
	if err != nil {
		return err
	}
	metrics.TokensIssuedTotal.WithLabelValues(string(domain.PurposeVerification)).Inc()

	return u.send(ctx, user, "Verify your account", email.TemplateVerification, "/verify-email/"+raw)
}

// VerifyEmail consumes a verification token and marks its owner verified.
func (u *AuthUsecase) VerifyEmail(ctx context.Context, rawToken string) (user *domain.User, err error) {
	defer func() { metrics.AuthEventsTotal.WithLabelValues("verify_email", metrics.Outcome(err)).Inc() }()

	userID, err := u.tokens.Claim(ctx, rawToken, domain.PurposeVerification)
	if err != nil {
		return nil, err
	}

	user, err = u.users.MarkVerified(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrAlreadyVerified) || errors.Is(err, domain.ErrUserNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("mark verified: %w", err)
	}
	return user, nil
}

// ForgotPassword emails a one-hour reset link to the account behind emailAddr.
func (u *AuthUsecase) ForgotPassword(ctx context.Context, emailAddr string) (err error) {
	defer func() { metrics.AuthEventsTotal.WithLabelValues("forgot_password", metrics.Outcome(err)).Inc() }()

	addr := normalizeEmail(emailAddr)
	if addr == "" {
		return domain.NewValidationError("Email is required")
	}
	if err := u.checkEmail(addr); err != nil {
		return err
	}

	user, err := u.users.FindByEmail(ctx, addr)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return err
		}
		return fmt.Errorf("find user by email: %w", err)
	}

	raw, err := u.tokens.Issue(ctx, user.ID, domain.PurposePasswordReset)
	if err != nil {
		return err
	}
	metrics.TokensIssuedTotal.WithLabelValues(string(domain.PurposePasswordReset)).Inc()

	return u.send(ctx, user, "Reset your password", email.TemplateResetPassword, "/reset-password/"+raw)
}

// ResetPassword consumes a reset token and sets newPassword on its owner.
func (u *AuthUsecase) ResetPassword(ctx context.Context, rawToken, newPassword string) (err error) {
	defer func() { metrics.AuthEventsTotal.WithLabelValues("reset_password", metrics.Outcome(err)).Inc() }()

	if newPassword == "" {
		return domain.NewValidationError("Password is required")
	}
	// Validate before claiming so a bad password does not burn the token.
	if err := checkPassword(newPassword); err != nil {
		return err
	}

	userID, err := u.tokens.Claim(ctx, rawToken, domain.PurposePasswordReset)
	if err != nil {
		return err
	}

	return u.setPassword(ctx, userID, newPassword)
}

// setPassword is the only path that writes a password: it always hashes.
func (u *AuthUsecase) setPassword(ctx context.Context, userID, plaintext string) error {
	hash, err := u.hasher.Hash(plaintext)
	if err != nil {
		return err
	}
	if err := u.users.UpdatePassword(ctx, userID, hash); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return err
		}
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}

func (u *AuthUsecase) openSession(user *domain.User) (*AuthResult, error) {
	signed, expiresAt, err := u.sessions.Issue(user.ID)
	if err != nil {
		return nil, fmt.Errorf("issue session: %w", err)
	}
	return &AuthResult{User: user, Token: signed, ExpiresAt: expiresAt}, nil
}

// send delivers a templated email. The token behind link is already stored,
// so a failure here leaves the account intact and the caller may retry.
func (u *AuthUsecase) send(ctx context.Context, user *domain.User, subject, template, path string) error {
	err := u.email.Send(ctx, email.Message{
		Subject:  subject,
		To:       user.Email,
		From:     u.mail.From,
		ReplyTo:  u.mail.ReplyTo,
		Template: template,
		Name:     user.Name,
		Link:     u.mail.ClientURL + path,
	})
	metrics.EmailsSentTotal.WithLabelValues(template, metrics.Outcome(err)).Inc()
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrEmailDelivery, err)
	}
	return nil
}

func (u *AuthUsecase) checkEmail(addr string) error {
	if err := u.validate.Var(addr, "email"); err != nil {
		return domain.NewValidationError("Please provide a valid email")
	}
	return nil
}

// checkPassword counts characters for the minimum and bytes for the
// bcrypt ceiling.
func checkPassword(p string) error {
	if utf8.RuneCountInString(p) < MinPasswordLength {
		return domain.NewValidationError(fmt.Sprintf("Password must be at least %d characters", MinPasswordLength))
	}
	if len(p) > password.MaxLength {
		return domain.NewValidationError(fmt.Sprintf("Password must be at most %d characters", password.MaxLength))
	}
	return nil
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
