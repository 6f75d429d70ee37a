package auth_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/frahmantamala/attendance-management/internal"
	"github.com/frahmantamala/attendance-management/internal/auth"
	"github.com/frahmantamala/attendance-management/internal/core/events"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"
)

var _ = Describe("Service", func() {
	var (
		ctx     context.Context
		repo    *MockRepository
		audit   *MockAudit
		tokens  *auth.JWTTokenService
		tracker auth.AttemptTracker
		svc     *auth.Service
		slogger *slog.Logger
	)

	login := func(employeeNumber, password string) (*auth.LoginResult, error) {
		return svc.Login(ctx, auth.LoginInput{
			EmployeeNumber: employeeNumber,
			Password:       password,
			IPAddress:      "10.0.0.1",
			UserAgent:      "ginkgo",
		})
	}

	BeforeEach(func() {
		ctx = context.Background()
		slogger = slog.New(slog.NewTextHandler(io.Discard, nil))
		repo = NewMockRepository()
		repo.Add(1, "0001", "password123", auth.RoleAdmin)
		repo.Add(2, "1001", "password123", auth.RoleEmployee)
		audit = &MockAudit{}

		var err error
		tokens, err = auth.NewJWTTokenService(testSecret, time.Hour)
		Expect(err).NotTo(HaveOccurred())
		tracker = auth.NewMemoryAttemptTracker(auth.LockoutPolicy{MaxAttempts: 3, Window: 15 * time.Minute, LockDuration: 15 * time.Minute}, nil)
	})

	JustBeforeEach(func() {
		svc = auth.NewService(repo, tokens, tracker, audit, bcrypt.MinCost, slogger)
	})

	Describe("Login", func() {
		It("issues a token carrying the user's identity", func() {
			result, err := login("1001", "password123")
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Token).NotTo(BeEmpty())
			Expect(result.User.EmployeeNumber).To(Equal("1001"))
			Expect(result.User.LastLoginAt).NotTo(BeNil())
			Expect(result.Message).To(Equal("Login successful."))

			claims, err := tokens.Verify(result.Token)
			Expect(err).NotTo(HaveOccurred())
			Expect(claims.UserID).To(Equal(int64(2)))
			Expect(claims.Roles).To(ConsistOf(auth.RoleEmployee))

			Expect(repo.lastLogin).To(HaveKey(int64(2)))
			Expect(audit.Entries()).To(ConsistOf(auditEntry{success: true, employeeNumber: "1001"}))
		})

		It("asks for a password change when the password is temporary", func() {
			repo.accounts["1001"].IsPasswordTemporary = true
			result, err := login("1001", "password123")
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Message).To(ContainSubstring("change your temporary password"))
		})

		It("returns the same error for an unknown user and a wrong password", func() {
			_, errUnknown := login("9999", "password123")
			_, errWrong := login("1001", "wrong-password")

			Expect(errUnknown).To(BeIdenticalTo(internal.ErrInvalidCredentials))
			Expect(errWrong).To(BeIdenticalTo(internal.ErrInvalidCredentials))
			Expect(errUnknown.Error()).To(Equal(errWrong.Error()))
		})

		It("treats a deactivated user like an unknown one", func() {
			repo.Deactivate("1001")
			_, err := login("1001", "password123")
			Expect(err).To(BeIdenticalTo(internal.ErrInvalidCredentials))
		})

		It("locks the account after repeated failures, even for the right password", func() {
			for i := 0; i < 3; i++ {
				_, err := login("1001", "wrong-password")
				Expect(err).To(BeIdenticalTo(internal.ErrInvalidCredentials))
			}

			_, err := login("1001", "password123")
			Expect(errors.Is(err, internal.ErrAccountLocked)).To(BeTrue())

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			details, ok := appErr.Details.(internal.LockDetails)
			Expect(ok).To(BeTrue())
			Expect(details.LockedUntil).To(BeTemporally(">", time.Now()))
		})

		It("resets the failure count after a successful login", func() {
			_, _ = login("1001", "wrong-password")
			_, _ = login("1001", "wrong-password")
			_, err := login("1001", "password123")
			Expect(err).NotTo(HaveOccurred())

			_, _ = login("1001", "wrong-password")
			_, _ = login("1001", "wrong-password")
			_, err = login("1001", "password123")
			Expect(err).NotTo(HaveOccurred())
		})

		It("records failures with a reason", func() {
			_, _ = login("1001", "wrong-password")
			_, _ = login("9999", "password123")
			Expect(audit.Entries()).To(ConsistOf(
				auditEntry{employeeNumber: "1001", reason: "invalid_password"},
				auditEntry{employeeNumber: "9999", reason: "unknown_or_inactive_user"},
			))
		})

		Context("when the store is unavailable", func() {
			It("returns an internal error", func() {
				repo.shouldFail = true
				_, err := login("1001", "password123")
				appErr, ok := internal.IsAppError(err)
				Expect(ok).To(BeTrue())
				Expect(appErr.Type).To(Equal(internal.ErrorTypeInternal))
			})
		})

		Context("when the lockout store is unavailable", func() {
			BeforeEach(func() {
				tracker = FailingTracker{}
			})

			It("refuses the login", func() {
				_, err := login("1001", "password123")
				appErr, ok := internal.IsAppError(err)
				Expect(ok).To(BeTrue())
				Expect(appErr.StatusCode).To(Equal(500))
			})
		})
	})

	Describe("LoadProfile", func() {
		It("returns the current profile", func() {
			p, err := svc.LoadProfile(ctx, 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(p.Roles).To(ConsistOf(auth.RoleAdmin))
		})

		It("reports deactivated users as not found", func() {
			repo.Deactivate("0001")
			_, err := svc.LoadProfile(ctx, 1)
			Expect(err).To(BeIdenticalTo(internal.ErrUserNotFound))
		})
	})

	Describe("ChangePassword", func() {
		It("replaces the password and clears the temporary flag", func() {
			repo.accounts["1001"].IsPasswordTemporary = true
			Expect(svc.ChangePassword(ctx, 2, "password123", "NewPassw0rd")).To(Succeed())
			Expect(repo.accounts["1001"].IsPasswordTemporary).To(BeFalse())

			_, err := login("1001", "NewPassw0rd")
			Expect(err).NotTo(HaveOccurred())
		})

		It("rejects a wrong current password", func() {
			err := svc.ChangePassword(ctx, 2, "nope", "NewPassw0rd")
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.StatusCode).To(Equal(400))
		})

		It("rejects a weak password", func() {
			err := svc.ChangePassword(ctx, 2, "password123", "short")
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			details := appErr.Details.(internal.ValidationErrors)
			Expect(details.Errors[0].Code).To(Equal(string(internal.ErrCodeWeakPassword)))
		})

		It("rejects a password longer than bcrypt can hash as a validation error", func() {
			err := svc.ChangePassword(ctx, 2, "password123", "Aa1"+strings.Repeat("x", 97))
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.StatusCode).To(Equal(400))
			Expect(appErr.Type).NotTo(Equal(internal.ErrorTypeInternal))

			_, err = login("1001", "password123")
			Expect(err).NotTo(HaveOccurred())
		})
	})
})

var _ = Describe("EventAuditRecorder", func() {
	It("never writes the submitted password", func() {
		var buf bytes.Buffer
		lg := slog.New(slog.NewJSONHandler(&buf, nil))
		bus := events.NewEventBus(lg)

		var published []events.Event
		bus.Subscribe(events.EventTypeLoginFailed, func(_ context.Context, e events.Event) error {
			published = append(published, e)
			return nil
		})

		repo := NewMockRepository()
		repo.Add(2, "1001", "Sup3rSecretValue")
		tokens, err := auth.NewJWTTokenService(testSecret, time.Hour)
		Expect(err).NotTo(HaveOccurred())
		svc := auth.NewService(repo, tokens, nil, auth.NewEventAuditRecorder(lg, bus), bcrypt.MinCost, lg)

		_, err = svc.Login(context.Background(), auth.LoginInput{EmployeeNumber: "1001", Password: "Sup3rSecretValu"})
		Expect(err).To(HaveOccurred())
		bus.Wait()

		Expect(buf.String()).To(ContainSubstring("LOGIN_FAILURE"))
		Expect(buf.String()).NotTo(ContainSubstring("Sup3rSecretValu"))
		Expect(published).To(HaveLen(1))
		Expect(published[0].Payload()).NotTo(HaveKey("password"))
	})
})
