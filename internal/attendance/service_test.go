package attendance_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/frahmantamala/attendance-management/internal"
	"github.com/frahmantamala/attendance-management/internal/attendance"
	attendancePostgres "github.com/frahmantamala/attendance-management/internal/attendance/postgres"
	"github.com/frahmantamala/attendance-management/internal/core/capability"
	userDatamodel "github.com/frahmantamala/attendance-management/internal/core/datamodel/user"
	"github.com/frahmantamala/attendance-management/internal/core/datamodel/testdb"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"
)

var _ = Describe("Service", func() {
	var (
		ctx     context.Context
		db      *gorm.DB
		tokyo   *time.Location
		current time.Time
		svc     *attendance.Service
	)

	BeforeEach(func() {
		ctx = context.Background()
		var err error
		tokyo, err = time.LoadLocation("Asia/Tokyo")
		Expect(err).NotTo(HaveOccurred())
		db, err = testdb.Open()
		Expect(err).NotTo(HaveOccurred())

		current = time.Date(2025, time.April, 7, 9, 0, 0, 0, tokyo)
		svc = attendance.NewService(
			attendancePostgres.NewAttendanceRepository(db),
			tokyo,
			slog.New(slog.NewTextHandler(io.Discard, nil)),
			attendance.WithClock(func() time.Time { return current }),
		)
	})

	AfterEach(func() {
		testdb.Close(db)
	})

	Describe("clocking", func() {
		It("records clock-in and clock-out for today", func() {
			daily, err := svc.ClockIn(ctx, 2)
			Expect(err).NotTo(HaveOccurred())
			Expect(daily.Date).To(Equal("2025-04-07"))
			Expect(daily.ClockIn.Equal(current)).To(BeTrue())
			Expect(daily.ClockOut).To(BeNil())

			current = current.Add(9 * time.Hour)
			daily, err = svc.ClockOut(ctx, 2)
			Expect(err).NotTo(HaveOccurred())
			Expect(daily.ClockOut.Equal(current)).To(BeTrue())

			today, err := svc.Today(ctx, 2)
			Expect(err).NotTo(HaveOccurred())
			Expect(today.ClockIn).NotTo(BeNil())
			Expect(today.ClockOut).NotTo(BeNil())
		})

		It("rejects a second clock-in with a conflict", func() {
			_, err := svc.ClockIn(ctx, 2)
			Expect(err).NotTo(HaveOccurred())

			_, err = svc.ClockIn(ctx, 2)
			Expect(err).To(BeIdenticalTo(internal.ErrAlreadyClockedIn))
		})

		It("requires a clock-in before clocking out", func() {
			_, err := svc.ClockOut(ctx, 2)
			Expect(err).To(BeIdenticalTo(internal.ErrNotClockedIn))
		})

		It("rejects a second clock-out", func() {
			_, err := svc.ClockIn(ctx, 2)
			Expect(err).NotTo(HaveOccurred())
			_, err = svc.ClockOut(ctx, 2)
			Expect(err).NotTo(HaveOccurred())

			_, err = svc.ClockOut(ctx, 2)
			Expect(err).To(BeIdenticalTo(internal.ErrAlreadyClockedOut))
		})

		It("starts a new day at local midnight", func() {
			_, err := svc.ClockIn(ctx, 2)
			Expect(err).NotTo(HaveOccurred())

			current = time.Date(2025, time.April, 8, 0, 30, 0, 0, tokyo)
			daily, err := svc.ClockIn(ctx, 2)
			Expect(err).NotTo(HaveOccurred())
			Expect(daily.Date).To(Equal("2025-04-08"))
		})

		It("reports empty punches when nothing was recorded", func() {
			today, err := svc.Today(ctx, 2)
			Expect(err).NotTo(HaveOccurred())
			Expect(today.ClockIn).To(BeNil())
			Expect(today.ClockOut).To(BeNil())
		})
	})

	Describe("Monthly", func() {
		self := attendance.Viewer{UserID: 2, DepartmentID: 1, Capabilities: capability.Employee()}

		BeforeEach(func() {
			for _, day := range []int{4, 7} {
				current = time.Date(2025, time.April, day, 9, 0, 0, 0, tokyo)
				_, err := svc.ClockIn(ctx, 2)
				Expect(err).NotTo(HaveOccurred())
				current = current.Add(8 * time.Hour)
				_, err = svc.ClockOut(ctx, 2)
				Expect(err).NotTo(HaveOccurred())
			}
			current = time.Date(2025, time.May, 1, 9, 0, 0, 0, tokyo)
			_, err := svc.ClockIn(ctx, 2)
			Expect(err).NotTo(HaveOccurred())
		})

		It("lists the month's records with working minutes and rate segments", func() {
			monthly, err := svc.Monthly(ctx, self, 0, 2025, 4)
			Expect(err).NotTo(HaveOccurred())
			Expect(monthly.Records).To(HaveLen(2))
			Expect(monthly.Records[0].Date).To(Equal("2025-04-04"))
			Expect(monthly.Records[1].Date).To(Equal("2025-04-07"))
			Expect(monthly.Records[0].WorkingMinutes).To(Equal(480))
			Expect(monthly.Records[0].RateSegments).To(ConsistOf(
				attendance.RateSegment{Rate: attendance.RateWeekdayOvertime, Minutes: 480, Label: attendance.LabelWeekdayOvertime},
			))
			Expect(monthly.Total).To(Equal(960))
		})

		It("keeps incomplete days with zero minutes", func() {
			monthly, err := svc.Monthly(ctx, self, 0, 2025, 5)
			Expect(err).NotTo(HaveOccurred())
			Expect(monthly.Records).To(HaveLen(1))
			Expect(monthly.Records[0].WorkingMinutes).To(Equal(0))
			Expect(monthly.Records[0].RateSegments).To(BeEmpty())
		})

		It("rejects an invalid month", func() {
			_, err := svc.Monthly(ctx, self, 0, 2025, 13)
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.StatusCode).To(Equal(400))
		})

		Context("viewing another user", func() {
			BeforeEach(func() {
				Expect(db.Create(&[]userDatamodel.User{
					{ID: 2, EmployeeNumber: "1001", Email: "a@example.com", Name: "A", PasswordHash: "x", DepartmentID: 1, IsActive: true},
					{ID: 3, EmployeeNumber: "1002", Email: "b@example.com", Name: "B", PasswordHash: "x", DepartmentID: 2, IsActive: true},
				}).Error).To(Succeed())
			})

			It("forbids plain employees", func() {
				other := attendance.Viewer{UserID: 3, DepartmentID: 2, Capabilities: capability.Employee()}
				_, err := svc.Monthly(ctx, other, 2, 2025, 4)
				Expect(errors.Is(err, internal.ErrForbidden)).To(BeTrue())
			})

			It("lets a manager view their own department only", func() {
				same := attendance.Viewer{UserID: 9, DepartmentID: 1, Capabilities: capability.Manager()}
				monthly, err := svc.Monthly(ctx, same, 2, 2025, 4)
				Expect(err).NotTo(HaveOccurred())
				Expect(monthly.Records).To(HaveLen(2))

				elsewhere := attendance.Viewer{UserID: 9, DepartmentID: 2, Capabilities: capability.Manager()}
				_, err = svc.Monthly(ctx, elsewhere, 2, 2025, 4)
				Expect(errors.Is(err, internal.ErrForbidden)).To(BeTrue())
			})

			It("lets an admin view anyone", func() {
				admin := attendance.Viewer{UserID: 1, DepartmentID: 1, Capabilities: capability.Admin()}
				_, err := svc.Monthly(ctx, admin, 3, 2025, 4)
				Expect(err).NotTo(HaveOccurred())
			})
		})
	})
})
