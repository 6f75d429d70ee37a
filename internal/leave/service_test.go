package leave_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/frahmantamala/attendance-management/internal"
	"github.com/frahmantamala/attendance-management/internal/core/capability"
	userDatamodel "github.com/frahmantamala/attendance-management/internal/core/datamodel/user"
	"github.com/frahmantamala/attendance-management/internal/core/datamodel/testdb"
	"github.com/frahmantamala/attendance-management/internal/core/events"
	"github.com/frahmantamala/attendance-management/internal/leave"
	leavePostgres "github.com/frahmantamala/attendance-management/internal/leave/postgres"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(ctx context.Context, event events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.EventType())
	}
	return out
}

const (
	employeeID  int64 = 2
	otherDeptID int64 = 3
	managerID   int64 = 10
	adminID     int64 = 1
)

var _ = Describe("Service", func() {
	var (
		ctx       context.Context
		db        *gorm.DB
		publisher *recordingPublisher
		svc       *leave.Service
		manager   leave.Approver
		admin     leave.Approver
	)

	full := func(start, end string) leave.ApplyInput {
		return leave.ApplyInput{Type: "annual", StartDate: start, EndDate: end, PartDayType: leave.PartDayFull}
	}

	BeforeEach(func() {
		ctx = context.Background()
		var err error
		db, err = testdb.Open()
		Expect(err).NotTo(HaveOccurred())

		Expect(db.Create(&[]userDatamodel.User{
			{ID: adminID, EmployeeNumber: "0001", Email: "admin@example.com", Name: "Admin", PasswordHash: "x", DepartmentID: 1, IsActive: true},
			{ID: employeeID, EmployeeNumber: "1001", Email: "emp@example.com", Name: "Employee", PasswordHash: "x", DepartmentID: 2, IsActive: true},
			{ID: otherDeptID, EmployeeNumber: "1002", Email: "other@example.com", Name: "Other", PasswordHash: "x", DepartmentID: 3, IsActive: true},
			{ID: managerID, EmployeeNumber: "2001", Email: "mgr@example.com", Name: "Manager", PasswordHash: "x", DepartmentID: 2, IsActive: true},
		}).Error).To(Succeed())

		publisher = &recordingPublisher{}
		now := time.Date(2025, time.April, 1, 9, 0, 0, 0, time.UTC)
		svc = leave.NewService(
			leavePostgres.NewLeaveRepository(db),
			leave.Policy{AnnualLimitMinutes: 465 * 3, FullDayMinutes: 465},
			publisher,
			time.UTC,
			slog.New(slog.NewTextHandler(io.Discard, nil)),
			leave.WithClock(func() time.Time { return now }),
		)

		manager = leave.Approver{UserID: managerID, DepartmentID: 2, Capabilities: capability.Manager()}
		admin = leave.Approver{UserID: adminID, DepartmentID: 1, Capabilities: capability.Admin()}
	})

	AfterEach(func() {
		testdb.Close(db)
	})

	Describe("Apply", func() {
		It("creates a pending application and publishes it", func() {
			app, err := svc.Apply(ctx, employeeID, full("2025-04-07", "2025-04-08"))
			Expect(err).NotTo(HaveOccurred())
			Expect(app.Status).To(Equal(leave.StatusPending))
			Expect(app.DurationMinutes).To(Equal(930))
			Expect(app.StartDate).To(Equal("2025-04-07"))
			Expect(publisher.types()).To(Equal([]string{events.EventTypeLeaveApplied}))
		})

		It("rejects an end date before the start date", func() {
			_, err := svc.Apply(ctx, employeeID, full("2025-04-08", "2025-04-07"))
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeInvalidDate))
		})

		It("rejects malformed dates", func() {
			_, err := svc.Apply(ctx, employeeID, full("2025/04/07", "2025-04-07"))
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.StatusCode).To(Equal(400))
		})

		It("counts pending minutes toward the limit", func() {
			_, err := svc.Apply(ctx, employeeID, full("2025-04-07", "2025-04-08"))
			Expect(err).NotTo(HaveOccurred())

			_, err = svc.Apply(ctx, employeeID, full("2025-05-07", "2025-05-08"))
			Expect(errors.Is(err, internal.ErrLeaveLimitExceeded)).To(BeTrue())

			_, err = svc.Apply(ctx, employeeID, full("2025-05-07", "2025-05-07"))
			Expect(err).NotTo(HaveOccurred())
		})

		It("does not count rejected minutes", func() {
			app, err := svc.Apply(ctx, employeeID, full("2025-04-07", "2025-04-09"))
			Expect(err).NotTo(HaveOccurred())
			_, err = svc.Reject(ctx, manager, app.ID, strPtr("staffing"))
			Expect(err).NotTo(HaveOccurred())

			_, err = svc.Apply(ctx, employeeID, full("2025-05-07", "2025-05-09"))
			Expect(err).NotTo(HaveOccurred())
		})

		It("keeps separate limits per year", func() {
			_, err := svc.Apply(ctx, employeeID, full("2025-04-07", "2025-04-09"))
			Expect(err).NotTo(HaveOccurred())

			_, err = svc.Apply(ctx, employeeID, full("2026-01-05", "2026-01-05"))
			Expect(err).NotTo(HaveOccurred())
		})
	})

	Describe("Balance", func() {
		It("reports used, pending and remaining minutes", func() {
			first, err := svc.Apply(ctx, employeeID, full("2025-04-07", "2025-04-07"))
			Expect(err).NotTo(HaveOccurred())
			_, err = svc.Approve(ctx, manager, first.ID, nil)
			Expect(err).NotTo(HaveOccurred())
			_, err = svc.Apply(ctx, employeeID, leave.ApplyInput{Type: "annual", StartDate: "2025-04-10", EndDate: "2025-04-10", PartDayType: leave.PartDayAM})
			Expect(err).NotTo(HaveOccurred())

			balance, err := svc.Balance(ctx, employeeID)
			Expect(err).NotTo(HaveOccurred())
			Expect(*balance).To(Equal(leave.Balance{
				Year:             2025,
				UsedMinutes:      465,
				PendingMinutes:   232,
				RemainingMinutes: 465*3 - 465 - 232,
				LimitMinutes:     465 * 3,
			}))
		})
	})

	Describe("ListOwn", func() {
		It("returns newest first with a total", func() {
			for _, d := range []string{"2025-04-07", "2025-04-08", "2025-04-09"} {
				_, err := svc.Apply(ctx, employeeID, full(d, d))
				Expect(err).NotTo(HaveOccurred())
			}

			apps, total, err := svc.ListOwn(ctx, employeeID, 2, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(total).To(Equal(int64(3)))
			Expect(apps).To(HaveLen(2))
			Expect(apps[0].StartDate).To(Equal("2025-04-09"))
			Expect(apps[1].StartDate).To(Equal("2025-04-08"))
		})
	})

	Describe("decisions", func() {
		var pending *leave.Application

		BeforeEach(func() {
			var err error
			pending, err = svc.Apply(ctx, employeeID, full("2025-04-07", "2025-04-07"))
			Expect(err).NotTo(HaveOccurred())
		})

		It("lets a manager approve within their department", func() {
			app, err := svc.Approve(ctx, manager, pending.ID, strPtr("  enjoy  "))
			Expect(err).NotTo(HaveOccurred())
			Expect(app.Status).To(Equal(leave.StatusApproved))
			Expect(*app.ApproverID).To(Equal(managerID))
			Expect(*app.ApproverComment).To(Equal("enjoy"))
			Expect(app.DecidedAt).NotTo(BeNil())
			Expect(publisher.types()).To(ContainElement(events.EventTypeLeaveApproved))
		})

		It("refuses a second decision", func() {
			_, err := svc.Approve(ctx, manager, pending.ID, nil)
			Expect(err).NotTo(HaveOccurred())

			_, err = svc.Reject(ctx, manager, pending.ID, strPtr("too late"))
			Expect(err).To(BeIdenticalTo(internal.ErrInvalidLeaveStatus))
		})

		It("requires a comment to reject", func() {
			_, err := svc.Reject(ctx, manager, pending.ID, strPtr("   "))
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.StatusCode).To(Equal(400))

			_, err = svc.Reject(ctx, manager, pending.ID, nil)
			Expect(err).To(HaveOccurred())
		})

		It("blocks self approval", func() {
			self := leave.Approver{UserID: employeeID, DepartmentID: 2, Capabilities: capability.Manager()}
			_, err := svc.Approve(ctx, self, pending.ID, nil)
			Expect(err).To(BeIdenticalTo(internal.ErrSelfApproval))
		})

		It("blocks managers of other departments", func() {
			elsewhere := leave.Approver{UserID: managerID, DepartmentID: 3, Capabilities: capability.Manager()}
			_, err := svc.Approve(ctx, elsewhere, pending.ID, nil)
			Expect(err).To(BeIdenticalTo(internal.ErrOutOfScope))
		})

		It("lets an admin approve anywhere", func() {
			_, err := svc.Approve(ctx, admin, pending.ID, nil)
			Expect(err).NotTo(HaveOccurred())
		})

		It("forbids employees", func() {
			emp := leave.Approver{UserID: otherDeptID, DepartmentID: 3, Capabilities: capability.Employee()}
			_, err := svc.Approve(ctx, emp, pending.ID, nil)
			Expect(err).To(BeIdenticalTo(internal.ErrForbidden))
		})

		It("reports unknown applications", func() {
			_, err := svc.Approve(ctx, manager, 999, nil)
			Expect(err).To(BeIdenticalTo(internal.ErrLeaveNotFound))
		})
	})

	Describe("ListPending", func() {
		BeforeEach(func() {
			_, err := svc.Apply(ctx, employeeID, full("2025-04-07", "2025-04-07"))
			Expect(err).NotTo(HaveOccurred())
			_, err = svc.Apply(ctx, otherDeptID, full("2025-04-08", "2025-04-08"))
			Expect(err).NotTo(HaveOccurred())
		})

		It("scopes managers to their department", func() {
			apps, err := svc.ListPending(ctx, manager)
			Expect(err).NotTo(HaveOccurred())
			Expect(apps).To(HaveLen(1))
			Expect(apps[0].EmployeeName).To(Equal("Employee"))
		})

		It("shows admins everything oldest first", func() {
			apps, err := svc.ListPending(ctx, admin)
			Expect(err).NotTo(HaveOccurred())
			Expect(apps).To(HaveLen(2))
			Expect(apps[0].UserID).To(Equal(employeeID))
			Expect(apps[1].UserID).To(Equal(otherDeptID))
		})

		It("forbids employees", func() {
			_, err := svc.ListPending(ctx, leave.Approver{UserID: employeeID, Capabilities: capability.Employee()})
			Expect(err).To(BeIdenticalTo(internal.ErrForbidden))
		})
	})
})
