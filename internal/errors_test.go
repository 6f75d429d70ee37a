package internal_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/frahmantamala/attendance-management/internal"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("AppError", func() {
	It("finds wrapped app errors", func() {
		wrapped := fmt.Errorf("login: %w", internal.ErrInvalidCredentials)

		appErr, ok := internal.IsAppError(wrapped)
		Expect(ok).To(BeTrue())
		Expect(appErr.StatusCode).To(Equal(http.StatusUnauthorized))
		Expect(appErr.Code).To(Equal(internal.ErrCodeInvalidCredentials))
	})

	It("does not mutate sentinels when adding a cause", func() {
		cause := errors.New("boom")
		withCause := internal.ErrInvalidToken.WithCause(cause)

		Expect(internal.ErrInvalidToken.Cause).To(BeNil())
		Expect(errors.Is(withCause, internal.ErrInvalidToken)).To(BeTrue())
		Expect(errors.Is(withCause, cause)).To(BeTrue())
	})

	It("carries the unlock time on account locked errors", func() {
		until := time.Date(2024, 4, 1, 9, 0, 0, 0, time.UTC)
		err := internal.NewAccountLockedError(until)

		Expect(errors.Is(err, internal.ErrAccountLocked)).To(BeTrue())
		Expect(err.Details).To(Equal(internal.LockDetails{LockedUntil: until}))
	})

	It("serializes without the cause", func() {
		err := internal.NewInternalError("database unavailable", errors.New("dial tcp: refused"))

		raw, marshalErr := json.Marshal(err)
		Expect(marshalErr).NotTo(HaveOccurred())
		Expect(string(raw)).NotTo(ContainSubstring("dial tcp"))
		Expect(string(raw)).To(ContainSubstring("INTERNAL_ERROR"))
	})

	It("joins multiple field errors in the detailed message", func() {
		err := internal.NewValidationError("Validation failed", internal.ErrCodeValidationFailed).
			WithDetails(internal.ValidationErrors{Errors: []internal.ValidationError{
				{Field: "employeeNumber", Message: "employeeNumber is required"},
				{Field: "password", Message: "password is required"},
			}})

		Expect(err.GetDetailedMessage()).To(Equal("employeeNumber is required; password is required"))
	})
})
