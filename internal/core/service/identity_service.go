package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/99minutos/identity-service/internal/core/domain"
	"github.com/99minutos/identity-service/internal/core/ports"
	"github.com/99minutos/identity-service/internal/pkg/metrics"
)

const (
	defaultUserTokenTTL = time.Hour
	defaultAppTokenTTL  = 24 * time.Hour
)

// AuditRecorder abstracts the audit trail sink. Record must not block.
type AuditRecorder interface {
	Record(event domain.AccountEvent)
}

// Dependencies groups the collaborators of IdentityService.
type Dependencies struct {
	Repo     ports.AccountRepository
	Hasher   ports.CredentialHasher
	Codes    ports.CodeGenerator
	Tokens   ports.TokenIssuer
	Notifier ports.Notifier
	// Audit is optional.
	Audit AuditRecorder

	UserTokenTTL time.Duration
	AppTokenTTL  time.Duration
	// Now defaults to time.Now.
	Now func() time.Time
}

// IdentityService implements the account lifecycle: registration, OTP
// activation, login, profile and password management, deletion.
//
// It holds no per-account state. Read-modify-write sequences on one account
// are last-writer-wins; uniqueness relies on the repository's insert conflict.
type IdentityService struct {
	repo     ports.AccountRepository
	hasher   ports.CredentialHasher
	codes    ports.CodeGenerator
	tokens   ports.TokenIssuer
	notifier ports.Notifier
	audit    AuditRecorder
	userTTL  time.Duration
	appTTL   time.Duration
	now      func() time.Time
	log      zerolog.Logger
}

func NewIdentityService(deps Dependencies, log zerolog.Logger) *IdentityService {
	s := &IdentityService{
		repo:     deps.Repo,
		hasher:   deps.Hasher,
		codes:    deps.Codes,
		tokens:   deps.Tokens,
		notifier: deps.Notifier,
		audit:    deps.Audit,
		userTTL:  deps.UserTokenTTL,
		appTTL:   deps.AppTokenTTL,
		now:      deps.Now,
		log:      log,
	}
	if s.userTTL <= 0 {
		s.userTTL = defaultUserTokenTTL
	}
	if s.appTTL <= 0 {
		s.appTTL = defaultAppTokenTTL
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Register creates an inactive account and sends its activation code.
// The account is persisted before delivery; a delivery failure is reported as
// domain.ErrDeliveryFailed and leaves the account in place.
func (s *IdentityService) Register(ctx context.Context, in ports.RegisterInput) (*domain.Profile, error) {
	email := normalizeEmail(in.Email)
	if email == "" || in.Password == "" {
		return nil, domain.ErrInvalidInput
	}
	if !in.Role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", domain.ErrInvalidInput, in.Role)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("register: hash password: %w", err)
	}
	code, expiresAt, err := s.codes.Generate(ports.PurposeActivation)
	if err != nil {
		return nil, fmt.Errorf("register: generate code: %w", err)
	}

	account := &domain.Account{
		Name:         in.Name,
		Address:      in.Address,
		Phone:        in.Phone,
		Email:        email,
		PasswordHash: hash,
		Role:         in.Role,
		AppID:        in.AppID,
		IsActive:     false,
		CreatedAt:    s.now().UTC(),
	}
	account.SetOTP(code, expiresAt)

	// The insert conflict is the only uniqueness check.
	if err := s.repo.Insert(ctx, account); err != nil {
		if errors.Is(err, domain.ErrAccountExists) {
			s.log.Info().Str("email", email).Str("role", string(in.Role)).Msg("registration conflict")
		}
		return nil, err
	}

	metrics.RegistrationsTotal.WithLabelValues(string(account.Role)).Inc()
	s.record(account, domain.EventRegistered)
	s.log.Info().Str("account_id", account.ID).Str("email", email).Str("role", string(account.Role)).Msg("account registered")

	if err := s.deliver(ctx, account, ports.PurposeActivation, code); err != nil {
		return nil, err
	}
	return account.Profile(), nil
}

// Activate checks a submitted OTP. An expired (or missing) code is replaced by
// a fresh one which is sent out, and the call reports domain.ErrCodeExpired.
func (s *IdentityService) Activate(ctx context.Context, in ports.ActivateInput) (err error) {
	defer func() { metrics.ActivationsTotal.WithLabelValues(resultLabel(err)).Inc() }()

	account, err := s.lookup(ctx, in.Email, in.Role)
	if err != nil {
		return err
	}
	if account.IsActive {
		return domain.ErrAlreadyActive
	}

	if account.OTPExpired(s.now()) {
		if err := s.renewCode(ctx, account); err != nil {
			return err
		}
		return domain.ErrCodeExpired
	}

	if subtle.ConstantTimeCompare([]byte(account.OTP), []byte(in.Code)) != 1 {
		return domain.ErrCodeMismatch
	}

	account.Activate()
	if err := s.repo.Update(ctx, account); err != nil {
		return fmt.Errorf("activate: %w", err)
	}

	s.record(account, domain.EventActivated)
	s.log.Info().Str("account_id", account.ID).Msg("account activated")
	return nil
}

// ResendActivationCode issues and sends a fresh activation code for a pending
// account. It is the retry path after a failed delivery.
func (s *IdentityService) ResendActivationCode(ctx context.Context, email string, role domain.Role) error {
	account, err := s.lookup(ctx, email, role)
	if err != nil {
		return err
	}
	if account.IsActive {
		return domain.ErrAlreadyActive
	}
	return s.renewCode(ctx, account)
}

// Login verifies credentials and returns a short-lived user token and a
// long-lived app token. Unknown emails are reported as invalid credentials.
func (s *IdentityService) Login(ctx context.Context, in ports.LoginInput) (pair *ports.TokenPair, err error) {
	defer func() { metrics.LoginsTotal.WithLabelValues(loginResult(err)).Inc() }()

	if in.Email == "" || in.Password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	account, err := s.lookup(ctx, in.Email, in.Role)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if account.AppID != in.AppID {
		return nil, domain.ErrAppMismatch
	}
	if !s.hasher.Verify(in.Password, account.PasswordHash) {
		return nil, domain.ErrInvalidCredentials
	}
	if account.Status() != domain.StatusActive {
		return nil, domain.ErrAccountNotActive
	}

	claims := ports.Claims{
		AccountID: account.ID,
		Email:     account.Email,
		Role:      account.Role,
		AppID:     account.AppID,
	}
	userToken, err := s.tokens.Issue(claims, s.userTTL)
	if err != nil {
		return nil, fmt.Errorf("login: issue user token: %w", err)
	}
	appToken, err := s.tokens.Issue(claims, s.appTTL)
	if err != nil {
		return nil, fmt.Errorf("login: issue app token: %w", err)
	}

	s.log.Info().Str("account_id", account.ID).Str("app_id", account.AppID).Msg("login succeeded")
	return &ports.TokenPair{UserToken: userToken, AppToken: appToken}, nil
}

func (s *IdentityService) GetProfile(ctx context.Context, accountID string) (*domain.Profile, error) {
	account, err := s.repo.FindByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	return account.Profile(), nil
}

func (s *IdentityService) ListAccounts(ctx context.Context) ([]*domain.Profile, error) {
	return s.repo.List(ctx)
}

// UpdateProfile patches name, address and phone. Nil or empty fields keep the
// stored value; credentials are never touched.
func (s *IdentityService) UpdateProfile(ctx context.Context, accountID string, patch ports.ProfileUpdate) error {
	account, err := s.repo.FindByID(ctx, accountID)
	if err != nil {
		return err
	}

	applyField(&account.Name, patch.Name)
	applyField(&account.Address, patch.Address)
	applyField(&account.Phone, patch.Phone)

	if err := s.repo.Update(ctx, account); err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	s.record(account, domain.EventProfileUpdated)
	return nil
}

// ForgotPassword replaces the password with a random numeric code and mails
// that code. The code is the temporary password itself, so anyone reading the
// message can sign in until the password is rotated.
func (s *IdentityService) ForgotPassword(ctx context.Context, email string, role domain.Role) error {
	account, err := s.lookup(ctx, email, role)
	if err != nil {
		return err
	}

	code, _, err := s.codes.Generate(ports.PurposeReset)
	if err != nil {
		return fmt.Errorf("forgot password: generate code: %w", err)
	}
	hash, err := s.hasher.Hash(code)
	if err != nil {
		return fmt.Errorf("forgot password: hash code: %w", err)
	}

	account.PasswordHash = hash
	account.ClearOTP()
	if err := s.repo.Update(ctx, account); err != nil {
		return fmt.Errorf("forgot password: %w", err)
	}

	s.record(account, domain.EventPasswordReset)
	s.log.Info().Str("account_id", account.ID).Msg("password reset issued")

	return s.deliver(ctx, account, ports.PurposeReset, code)
}

// UpdatePassword rotates the password after checking the old one.
func (s *IdentityService) UpdatePassword(ctx context.Context, in ports.UpdatePasswordInput) error {
	account, err := s.lookup(ctx, in.Email, in.Role)
	if err != nil {
		return err
	}
	if !s.hasher.Verify(in.OldPassword, account.PasswordHash) {
		return domain.ErrOldPasswordIncorrect
	}
	if in.NewPassword == "" {
		return domain.ErrInvalidInput
	}

	hash, err := s.hasher.Hash(in.NewPassword)
	if err != nil {
		return fmt.Errorf("update password: hash: %w", err)
	}
	account.PasswordHash = hash
	if err := s.repo.Update(ctx, account); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	s.record(account, domain.EventPasswordUpdated)
	s.log.Info().Str("account_id", account.ID).Msg("password updated")
	return nil
}

// DeleteAccount physically removes the account.
func (s *IdentityService) DeleteAccount(ctx context.Context, accountID string) error {
	account, err := s.repo.FindByID(ctx, accountID)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteByID(ctx, accountID); err != nil {
		return err
	}

	s.record(account, domain.EventDeleted)
	s.log.Info().Str("account_id", accountID).Msg("account deleted")
	return nil
}

// lookup resolves an account by (email, role), or by email alone when role is
// empty, in which case the earliest registered account wins.
func (s *IdentityService) lookup(ctx context.Context, email string, role domain.Role) (*domain.Account, error) {
	email = normalizeEmail(email)
	if email == "" {
		return nil, domain.ErrAccountNotFound
	}
	if role == "" {
		return s.repo.FindByEmail(ctx, email)
	}
	if !role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", domain.ErrInvalidInput, role)
	}
	return s.repo.FindByEmailAndRole(ctx, email, role)
}

func (s *IdentityService) renewCode(ctx context.Context, account *domain.Account) error {
	code, expiresAt, err := s.codes.Generate(ports.PurposeActivation)
	if err != nil {
		return fmt.Errorf("renew code: generate: %w", err)
	}
	account.SetOTP(code, expiresAt)
	if err := s.repo.Update(ctx, account); err != nil {
		return fmt.Errorf("renew code: %w", err)
	}
	s.record(account, domain.EventCodeRenewed)
	return s.deliver(ctx, account, ports.PurposeActivation, code)
}

func (s *IdentityService) deliver(ctx context.Context, account *domain.Account, purpose ports.CodePurpose, code string) error {
	if err := s.notifier.SendCode(ctx, account.Email, purpose, code); err != nil {
		metrics.CodesDeliveredTotal.WithLabelValues(string(purpose), "failed").Inc()
		s.log.Warn().Err(err).
			Str("account_id", account.ID).
			Str("purpose", string(purpose)).
			Msg("code delivery failed")
		return fmt.Errorf("%w: %w", domain.ErrDeliveryFailed, err)
	}
	metrics.CodesDeliveredTotal.WithLabelValues(string(purpose), "ok").Inc()
	return nil
}

func (s *IdentityService) record(account *domain.Account, typ domain.EventType) {
	if s.audit == nil {
		return
	}
	s.audit.Record(domain.AccountEvent{
		AccountID:  account.ID,
		Email:      account.Email,
		Role:       account.Role,
		Type:       typ,
		OccurredAt: s.now().UTC(),
	})
}

func applyField(dst *string, v *string) {
	if v != nil && *v != "" {
		*dst = *v
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func resultLabel(err error) string {
	if err == nil {
		return "ok"
	}
	return string(domain.KindOf(err))
}

func loginResult(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrAppMismatch):
		return "app_mismatch"
	case errors.Is(err, domain.ErrAccountNotActive):
		return "not_active"
	case errors.Is(err, domain.ErrInvalidCredentials):
		return "invalid_credentials"
	default:
		return "error"
	}
}
