package notify

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/99minutos/identity-service/internal/core/domain"
	"github.com/99minutos/identity-service/internal/core/ports"
	"github.com/99minutos/identity-service/internal/core/service"
	"github.com/99minutos/identity-service/internal/infrastructure/db/memory"
	"github.com/99minutos/identity-service/internal/infrastructure/security"
)

var composer = Composer{ActivationTTL: time.Minute, ResetWindow: 3 * time.Minute}

func TestCompose_Activation(t *testing.T) {
	msg := composer.Compose("ana@example.com", ports.PurposeActivation, "123456")

	if msg.To != "ana@example.com" {
		t.Errorf("expected recipient ana@example.com, got %s", msg.To)
	}
	if !strings.Contains(msg.Body, "123456") {
		t.Error("expected body to contain the code")
	}
	if !strings.Contains(msg.Body, "1 minute") {
		t.Errorf("expected body to mention validity, got %q", msg.Body)
	}
}

func TestCompose_Reset(t *testing.T) {
	msg := composer.Compose("ana@example.com", ports.PurposeReset, "654321")

	if !strings.Contains(msg.Subject, "reset") {
		t.Errorf("unexpected subject %q", msg.Subject)
	}
	if !strings.Contains(msg.Body, "654321") || !strings.Contains(msg.Body, "3 minutes") {
		t.Errorf("unexpected body %q", msg.Body)
	}
}

func TestHumanDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "a short time"},
		{time.Minute, "1 minute"},
		{10 * time.Minute, "10 minutes"},
		{2 * time.Hour, "2 hours"},
		{90 * time.Second, "1m30s"},
	}
	for _, tt := range tests {
		if got := humanDuration(tt.d); got != tt.want {
			t.Errorf("humanDuration(%s) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

type stubSES struct {
	input *ses.SendEmailInput
	err   error
}

func (s *stubSES) SendEmail(_ context.Context, in *ses.SendEmailInput, _ ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	s.input = in
	if s.err != nil {
		return nil, s.err
	}
	return &ses.SendEmailOutput{}, nil
}

func TestSESNotifier_SendCode(t *testing.T) {
	client := &stubSES{}
	n := NewSESNotifier(client, "no-reply@example.com", composer)

	if err := n.SendCode(context.Background(), "ana@example.com", ports.PurposeActivation, "123456"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if *client.input.Source != "no-reply@example.com" {
		t.Errorf("unexpected source %s", *client.input.Source)
	}
	if got := client.input.Destination.ToAddresses; len(got) != 1 || got[0] != "ana@example.com" {
		t.Errorf("unexpected destination %v", got)
	}
	if !strings.Contains(*client.input.Message.Body.Text.Data, "123456") {
		t.Error("expected body to carry the code")
	}
}

func TestSESNotifier_PropagatesError(t *testing.T) {
	boom := errors.New("throttled")
	n := NewSESNotifier(&stubSES{err: boom}, "no-reply@example.com", composer)

	err := n.SendCode(context.Background(), "ana@example.com", ports.PurposeReset, "1")
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped provider error, got %v", err)
	}
}

func TestRenderMIME(t *testing.T) {
	raw := string(renderMIME("from@example.com", Message{To: "to@example.com", Subject: "Hi", Body: "a\nb"}))

	for _, want := range []string{"From: from@example.com\r\n", "To: to@example.com\r\n", "Subject: Hi\r\n", "\r\n\r\na\r\nb"} {
		if !strings.Contains(raw, want) {
			t.Errorf("expected %q in %q", want, raw)
		}
	}
}

type recordingNotifier struct {
	calls int
	err   error
}

func (r *recordingNotifier) SendCode(context.Context, string, ports.CodePurpose, string) error {
	r.calls++
	return r.err
}

type stubClaimer struct {
	seen map[string]bool
	err  error
}

func (s *stubClaimer) Claim(_ context.Context, address, purpose, code string) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	key := address + "|" + purpose + "|" + code
	if s.seen[key] {
		return false, nil
	}
	s.seen[key] = true
	return true, nil
}

func TestDedupNotifier_SendsOncePerCode(t *testing.T) {
	next := &recordingNotifier{}
	n := NewDedupNotifier(next, &stubClaimer{seen: map[string]bool{}}, zerolog.Nop())
	ctx := context.Background()

	if err := n.SendCode(ctx, "ana@example.com", ports.PurposeActivation, "111111"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 0; i < 2; i++ {
		if err := n.SendCode(ctx, "ana@example.com", ports.PurposeActivation, "111111"); !errors.Is(err, ErrDuplicateDelivery) {
			t.Fatalf("expected ErrDuplicateDelivery, got %v", err)
		}
	}
	if next.calls != 1 {
		t.Errorf("expected 1 delivery, got %d", next.calls)
	}

	if err := n.SendCode(ctx, "ana@example.com", ports.PurposeActivation, "222222"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if next.calls != 2 {
		t.Errorf("expected new code to be delivered, got %d calls", next.calls)
	}
}

func TestDedupNotifier_FailedAttemptIsNotRetried(t *testing.T) {
	next := &recordingNotifier{err: errors.New("smtp down")}
	n := NewDedupNotifier(next, &stubClaimer{seen: map[string]bool{}}, zerolog.Nop())
	ctx := context.Background()

	if err := n.SendCode(ctx, "ana@example.com", ports.PurposeReset, "333333"); err == nil {
		t.Fatal("expected first attempt to fail")
	}
	if err := n.SendCode(ctx, "ana@example.com", ports.PurposeReset, "333333"); !errors.Is(err, ErrDuplicateDelivery) {
		t.Fatalf("expected second attempt to be skipped, got %v", err)
	}
	if next.calls != 1 {
		t.Errorf("expected a single attempt, got %d", next.calls)
	}
}

func TestDedupNotifier_SendsWhenStoreUnavailable(t *testing.T) {
	next := &recordingNotifier{}
	n := NewDedupNotifier(next, &stubClaimer{err: errors.New("redis down")}, zerolog.Nop())

	if err := n.SendCode(context.Background(), "ana@example.com", ports.PurposeActivation, "1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if next.calls != 1 {
		t.Errorf("expected delivery despite dedup failure, got %d calls", next.calls)
	}
}

type fixedCodes struct{ code string }

func (c fixedCodes) Generate(ports.CodePurpose) (string, time.Time, error) {
	return c.code, time.Now().Add(time.Minute), nil
}

func TestDedupNotifier_CollidingCodeIsNotSilentSuccess(t *testing.T) {
	next := &recordingNotifier{}
	dedup := NewDedupNotifier(next, &stubClaimer{seen: map[string]bool{}}, zerolog.Nop())
	svc := service.NewIdentityService(service.Dependencies{
		Repo:     memory.NewAccountRepository(),
		Hasher:   security.NewBcryptHasher(bcrypt.MinCost),
		Codes:    fixedCodes{code: "424242"},
		Tokens:   security.NewJWTIssuer("secret", time.Now),
		Notifier: dedup,
	}, zerolog.Nop())
	ctx := context.Background()

	if _, err := svc.Register(ctx, ports.RegisterInput{
		Name: "Ana", Email: "ana@example.com", Password: "pw1pw1", Role: domain.RoleCustomer, AppID: "app1",
	}); err != nil {
		t.Fatalf("register: %v", err)
	}

	// the renewed code equals the one already delivered
	err := svc.ResendActivationCode(ctx, "ana@example.com", domain.RoleCustomer)
	if !errors.Is(err, domain.ErrDeliveryFailed) {
		t.Fatalf("expected ErrDeliveryFailed, got %v", err)
	}
	if next.calls != 1 {
		t.Errorf("expected a single real delivery, got %d", next.calls)
	}
}

func TestNew_Providers(t *testing.T) {
	ctx := context.Background()

	n, err := New(ctx, Options{Provider: ProviderLog, Composer: composer}, zerolog.Nop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := n.(*LogNotifier); !ok {
		t.Errorf("expected *LogNotifier, got %T", n)
	}

	n, err = New(ctx, Options{Provider: ProviderSMTP, From: "a@b.c", SMTP: SMTPConfig{Host: "localhost", Port: "2525"}}, zerolog.Nop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s, ok := n.(*SMTPNotifier); !ok || s.cfg.From != "a@b.c" {
		t.Errorf("expected SMTP notifier inheriting sender, got %T", n)
	}

	if _, err := New(ctx, Options{Provider: ProviderSMTP}, zerolog.Nop()); err == nil {
		t.Error("expected error for smtp without host")
	}
	if _, err := New(ctx, Options{Provider: "pigeon"}, zerolog.Nop()); err == nil {
		t.Error("expected error for unknown provider")
	}
}

func TestLogNotifier_NeverFails(t *testing.T) {
	n := NewLogNotifier(composer, zerolog.Nop())
	if err := n.SendCode(context.Background(), "ana@example.com", ports.PurposeActivation, "1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
