package otp

import (
	"context"
	"testing"
	"time"

	"github.com/go-kit/kit/log"

	wallet "github.com/idaralabs/Idara-Wallet"
	"github.com/idaralabs/Idara-Wallet/internal/test"
)

type testEnv struct {
	svc       wallet.OTPService
	repoMngr  *test.MemRepository
	limiter   *test.LimiterService
	messaging *test.MessagingService
	clock     *time.Time
}

func newTestEnv(t *testing.T, options ...ConfigOption) *testEnv {
	t.Helper()

	clock := time.Now()
	env := &testEnv{
		repoMngr:  test.NewMemRepository(),
		limiter:   &test.LimiterService{},
		messaging: &test.MessagingService{},
		clock:     &clock,
	}

	opts := []ConfigOption{
		WithLogger(log.NewNopLogger()),
		WithRepoManager(env.repoMngr),
		WithLimiter(env.limiter),
		WithMessaging(env.messaging),
		WithClock(func() time.Time { return *env.clock }),
	}
	opts = append(opts, options...)

	env.svc = NewService(opts...)
	return env
}

func TestOTPSvc_IssueDeliversCode(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	challenge, err := env.svc.Issue(ctx, "jane@example.com", wallet.Email, wallet.PurposeLogin, "")
	if err != nil {
		t.Fatal("failed to issue challenge:", err)
	}

	if challenge.ID == "" {
		t.Error("challenge was not persisted with an ID")
	}
	if challenge.Status != wallet.ChallengePending {
		t.Errorf("incorrect status, want %s got %s", wallet.ChallengePending, challenge.Status)
	}
	if challenge.MaxAttempts != 3 {
		t.Errorf("incorrect max attempts, want 3 got %d", challenge.MaxAttempts)
	}

	sent := env.messaging.LastSent()
	if sent.Address != "jane@example.com" {
		t.Errorf("incorrect delivery address: %s", sent.Address)
	}
	if len(sent.Content) != 6 {
		t.Errorf("incorrect code length, want 6 got %d", len(sent.Content))
	}
	if env.limiter.Calls.CheckAndRecord != 1 {
		t.Error("rate limiter was not consulted")
	}
}

func TestOTPSvc_IssueRejectsMalformedRecipient(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	tt := []struct {
		name      string
		recipient string
		method    wallet.DeliveryMethod
	}{
		{
			name:      "Malformed email",
			recipient: "not-an-email",
			method:    wallet.Email,
		},
		{
			name:      "Phone without country code",
			recipient: "5551234567",
			method:    wallet.SMS,
		},
		{
			name:      "Email supplied for SMS channel",
			recipient: "jane@example.com",
			method:    wallet.SMS,
		},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			_, err := env.svc.Issue(ctx, tc.recipient, tc.method, wallet.PurposeLogin, "")
			if err == nil {
				t.Fatal("expected malformed recipient to be rejected")
			}
			if code := wallet.ErrorCode(err); code != wallet.EBadRequest {
				t.Errorf("incorrect error code, want %s got %s", wallet.EBadRequest, code)
			}
		})
	}
}

func TestOTPSvc_IssueRateLimited(t *testing.T) {
	env := newTestEnv(t)
	env.limiter.CheckAndRecordFn = func() error {
		return wallet.ErrThrottle("too many codes requested")
	}

	_, err := env.svc.Issue(context.Background(), "jane@example.com", wallet.Email, wallet.PurposeLogin, "")
	if err == nil {
		t.Fatal("expected throttled issuance to fail")
	}
	if code := wallet.ErrorCode(err); code != wallet.EThrottle {
		t.Errorf("incorrect error code, want %s got %s", wallet.EThrottle, code)
	}
	if env.messaging.Calls.Send != 0 {
		t.Error("no code should be dispatched for a throttled request")
	}
}

func TestOTPSvc_ReissueInvalidatesPriorChallenge(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	first, err := env.svc.Issue(ctx, "jane@example.com", wallet.Email, wallet.PurposeLogin, "")
	if err != nil {
		t.Fatal("failed to issue challenge:", err)
	}
	firstCode := env.messaging.LastSent().Content

	if _, err = env.svc.Issue(ctx, "jane@example.com", wallet.Email, wallet.PurposeLogin, ""); err != nil {
		t.Fatal("failed to issue second challenge:", err)
	}

	// The original code is correct for the first challenge but the
	// record was superseded by the reissue.
	_, err = env.svc.Verify(ctx, first.ID, firstCode)
	if err == nil {
		t.Fatal("expected superseded challenge to fail verification")
	}
	if code := wallet.ErrorCode(err); code != wallet.EExpired {
		t.Errorf("incorrect error code, want %s got %s", wallet.EExpired, code)
	}
}

func TestOTPSvc_VerifySuccess(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	challenge, err := env.svc.Issue(ctx, "jane@example.com", wallet.Email, wallet.PurposeLogin, "")
	if err != nil {
		t.Fatal("failed to issue challenge:", err)
	}

	verified, err := env.svc.Verify(ctx, challenge.ID, env.messaging.LastSent().Content)
	if err != nil {
		t.Fatal("failed to verify challenge:", err)
	}
	if verified.Status != wallet.ChallengeVerified {
		t.Errorf("incorrect status, want %s got %s", wallet.ChallengeVerified, verified.Status)
	}
	if !verified.VerifiedAt.Valid {
		t.Error("verification timestamp was not stamped")
	}
	if verified.Attempts != 1 {
		t.Errorf("incorrect attempt count, want 1 got %d", verified.Attempts)
	}
}

func TestOTPSvc_VerifyIsSingleUse(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	challenge, err := env.svc.Issue(ctx, "jane@example.com", wallet.Email, wallet.PurposeLogin, "")
	if err != nil {
		t.Fatal("failed to issue challenge:", err)
	}

	code := env.messaging.LastSent().Content
	if _, err = env.svc.Verify(ctx, challenge.ID, code); err != nil {
		t.Fatal("failed to verify challenge:", err)
	}

	if _, err = env.svc.Verify(ctx, challenge.ID, code); err == nil {
		t.Fatal("expected re-verification of a consumed challenge to fail")
	}
}

func TestOTPSvc_VerifyUnknownChallenge(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.Verify(context.Background(), "no-such-id", "123456")
	if err == nil {
		t.Fatal("expected unknown challenge to fail")
	}
	if code := wallet.ErrorCode(err); code != wallet.ENotFound {
		t.Errorf("incorrect error code, want %s got %s", wallet.ENotFound, code)
	}
}

func TestOTPSvc_VerifyExpiredChallenge(t *testing.T) {
	env := newTestEnv(t, WithTTL(time.Minute*10))
	ctx := context.Background()

	challenge, err := env.svc.Issue(ctx, "jane@example.com", wallet.Email, wallet.PurposeLogin, "")
	if err != nil {
		t.Fatal("failed to issue challenge:", err)
	}
	code := env.messaging.LastSent().Content

	*env.clock = env.clock.Add(time.Minute * 11)

	reported, err := env.svc.Verify(ctx, challenge.ID, code)
	if err == nil {
		t.Fatal("expected expired challenge to fail regardless of code correctness")
	}
	if errCode := wallet.ErrorCode(err); errCode != wallet.EExpired {
		t.Errorf("incorrect error code, want %s got %s", wallet.EExpired, errCode)
	}
	if reported.Status != wallet.ChallengeExpired {
		t.Errorf("expiry was not recorded, got status %s", reported.Status)
	}
}

func TestOTPSvc_VerifyRetryWithinAttemptLimit(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	challenge, err := env.svc.Issue(ctx, "jane@example.com", wallet.Email, wallet.PurposeLogin, "")
	if err != nil {
		t.Fatal("failed to issue challenge:", err)
	}
	code := env.messaging.LastSent().Content

	reported, err := env.svc.Verify(ctx, challenge.ID, "000000")
	if err == nil {
		t.Fatal("expected incorrect code to fail")
	}
	if errCode := wallet.ErrorCode(err); errCode != wallet.EInvalidCode {
		t.Errorf("incorrect error code, want %s got %s", wallet.EInvalidCode, errCode)
	}
	if reported.Status != wallet.ChallengeInvalid {
		t.Errorf("attempt outcome not reported, got status %s", reported.Status)
	}

	// A correct code within the attempt limit still verifies.
	verified, err := env.svc.Verify(ctx, challenge.ID, code)
	if err != nil {
		t.Fatal("failed to verify after earlier failed attempt:", err)
	}
	if verified.Status != wallet.ChallengeVerified {
		t.Errorf("incorrect status, want %s got %s", wallet.ChallengeVerified, verified.Status)
	}
	if verified.Attempts != 2 {
		t.Errorf("incorrect attempt count, want 2 got %d", verified.Attempts)
	}
}

func TestOTPSvc_VerifyAttemptsExhausted(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	challenge, err := env.svc.Issue(ctx, "jane@example.com", wallet.Email, wallet.PurposeLogin, "")
	if err != nil {
		t.Fatal("failed to issue challenge:", err)
	}
	code := env.messaging.LastSent().Content

	for i := 0; i < 3; i++ {
		if _, err = env.svc.Verify(ctx, challenge.ID, "000000"); err == nil {
			t.Fatalf("attempt %d with incorrect code should fail", i+1)
		}
	}

	// The 4th attempt is rejected even with the correct code.
	_, err = env.svc.Verify(ctx, challenge.ID, code)
	if err == nil {
		t.Fatal("expected exhausted challenge to reject the correct code")
	}
	if errCode := wallet.ErrorCode(err); errCode != wallet.EAttemptsExhausted {
		t.Errorf("incorrect error code, want %s got %s", wallet.EAttemptsExhausted, errCode)
	}
}

func TestOTPSvc_ConcurrentIssueKeepsOneActiveChallenge(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	done := make(chan *wallet.Challenge, 2)
	for i := 0; i < 2; i++ {
		go func() {
			c, err := env.svc.Issue(ctx, "jane@example.com", wallet.Email, wallet.PurposeLogin, "")
			if err != nil {
				t.Error("failed to issue challenge:", err)
			}
			done <- c
		}()
	}

	first := <-done
	second := <-done

	// Exactly one of the two challenges may remain pending.
	var pending int
	for _, c := range []*wallet.Challenge{first, second} {
		stored, err := env.repoMngr.Challenge().ByID(ctx, c.ID)
		if err != nil {
			t.Fatal("failed to load challenge:", err)
		}
		if stored.Status == wallet.ChallengePending {
			pending++
		}
	}
	if pending != 1 {
		t.Errorf("incorrect number of pending challenges, want 1 got %d", pending)
	}
}
