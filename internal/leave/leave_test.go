package leave_test

import (
	"time"

	"github.com/frahmantamala/attendance-management/internal/leave"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	Expect(err).NotTo(HaveOccurred())
	return t
}

func strPtr(s string) *string { return &s }

var _ = Describe("Policy.Duration", func() {
	policy := leave.Policy{AnnualLimitMinutes: 465 * 20, FullDayMinutes: 465}

	DescribeTable("valid requests",
		func(in leave.ApplyInput, expected int) {
			minutes, err := policy.Duration(in, day(in.StartDate), day(in.EndDate))
			Expect(err).To(BeNil())
			Expect(minutes).To(Equal(expected))
		},
		Entry("single full day", leave.ApplyInput{PartDayType: leave.PartDayFull, StartDate: "2025-04-07", EndDate: "2025-04-07"}, 465),
		Entry("inclusive full day range", leave.ApplyInput{PartDayType: leave.PartDayFull, StartDate: "2025-04-07", EndDate: "2025-04-09"}, 1395),
		Entry("morning", leave.ApplyInput{PartDayType: leave.PartDayAM, StartDate: "2025-04-07", EndDate: "2025-04-07"}, 232),
		Entry("afternoon", leave.ApplyInput{PartDayType: leave.PartDayPM, StartDate: "2025-04-07", EndDate: "2025-04-07"}, 232),
		Entry("hourly", leave.ApplyInput{PartDayType: leave.PartDayTime, StartDate: "2025-04-07", EndDate: "2025-04-07", StartTime: strPtr("13:00"), EndTime: strPtr("15:30")}, 150),
	)

	DescribeTable("rejected requests",
		func(in leave.ApplyInput, field string) {
			_, err := policy.Duration(in, day(in.StartDate), day(in.EndDate))
			Expect(err).NotTo(BeNil())
			Expect(err.StatusCode).To(Equal(400))
			Expect(err.Error()).To(ContainSubstring(field))
		},
		Entry("half day across days", leave.ApplyInput{PartDayType: leave.PartDayAM, StartDate: "2025-04-07", EndDate: "2025-04-08"}, "same day"),
		Entry("hourly without times", leave.ApplyInput{PartDayType: leave.PartDayTime, StartDate: "2025-04-07", EndDate: "2025-04-07"}, "startTime"),
		Entry("hourly with reversed times", leave.ApplyInput{PartDayType: leave.PartDayTime, StartDate: "2025-04-07", EndDate: "2025-04-07", StartTime: strPtr("15:00"), EndTime: strPtr("13:00")}, "endTime"),
		Entry("hourly across days", leave.ApplyInput{PartDayType: leave.PartDayTime, StartDate: "2025-04-07", EndDate: "2025-04-08", StartTime: strPtr("13:00"), EndTime: strPtr("15:00")}, "same day"),
		Entry("unknown part day type", leave.ApplyInput{PartDayType: "NIGHT", StartDate: "2025-04-07", EndDate: "2025-04-07"}, "partDayType"),
	)
})
