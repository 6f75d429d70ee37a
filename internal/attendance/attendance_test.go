package attendance_test

import (
	"time"

	"github.com/frahmantamala/attendance-management/internal/attendance"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("ComputeRateSegments", func() {
	var tokyo *time.Location

	BeforeEach(func() {
		var err error
		tokyo, err = time.LoadLocation("Asia/Tokyo")
		Expect(err).NotTo(HaveOccurred())
	})

	at := func(day, hour, minute int) time.Time {
		return time.Date(2025, time.April, day, hour, minute, 0, 0, tokyo)
	}

	It("classifies a weekday day shift as weekday overtime", func() {
		// 2025-04-07 is a Monday
		segments := attendance.ComputeRateSegments(at(7, 9, 0), at(7, 18, 0), tokyo)
		Expect(segments).To(Equal([]attendance.RateSegment{
			{Rate: attendance.RateWeekdayOvertime, Minutes: 540, Label: attendance.LabelWeekdayOvertime},
		}))
	})

	It("splits a night shift crossing into Saturday", func() {
		// Friday 21:00 to Saturday 06:00
		segments := attendance.ComputeRateSegments(at(4, 21, 0), at(5, 6, 0), tokyo)
		Expect(segments).To(Equal([]attendance.RateSegment{
			{Rate: attendance.RateWeekdayOvertime, Minutes: 60, Label: attendance.LabelWeekdayOvertime},
			{Rate: attendance.RateWeekend, Minutes: 60, Label: attendance.LabelWeekend},
			{Rate: attendance.RateLateNight, Minutes: 420, Label: attendance.LabelLateNight},
		}))
	})

	It("classifies a slice by its start time", func() {
		// 21:50 to 22:10 on a Monday: one slice starting 21:50 and a 5 minute tail starting 22:05
		segments := attendance.ComputeRateSegments(at(7, 21, 50), at(7, 22, 10), tokyo)
		Expect(segments).To(Equal([]attendance.RateSegment{
			{Rate: attendance.RateWeekdayOvertime, Minutes: 15, Label: attendance.LabelWeekdayOvertime},
			{Rate: attendance.RateLateNight, Minutes: 5, Label: attendance.LabelLateNight},
		}))
	})

	It("evaluates slices in the configured zone", func() {
		// 13:00 UTC on a Monday is 22:00 in Tokyo
		in := time.Date(2025, time.April, 7, 13, 0, 0, 0, time.UTC)
		segments := attendance.ComputeRateSegments(in, in.Add(time.Hour), tokyo)
		Expect(segments).To(HaveLen(1))
		Expect(segments[0].Label).To(Equal(attendance.LabelLateNight))
	})

	It("ignores seconds on the punches so segments add up to the working minutes", func() {
		in := time.Date(2025, time.April, 7, 21, 44, 50, 0, tokyo)
		out := time.Date(2025, time.April, 7, 22, 30, 20, 0, tokyo)

		segments := attendance.ComputeRateSegments(in, out, tokyo)
		Expect(segments).To(Equal([]attendance.RateSegment{
			{Rate: attendance.RateWeekdayOvertime, Minutes: 30, Label: attendance.LabelWeekdayOvertime},
			{Rate: attendance.RateLateNight, Minutes: 16, Label: attendance.LabelLateNight},
		}))

		total := 0
		for _, s := range segments {
			total += s.Minutes
		}
		Expect(total).To(Equal(attendance.WorkingMinutes(&in, &out)))
		Expect(total).To(Equal(46))
	})

	It("returns no segments for an empty or inverted interval", func() {
		Expect(attendance.ComputeRateSegments(at(7, 9, 0), at(7, 9, 0), tokyo)).To(BeEmpty())
		Expect(attendance.ComputeRateSegments(at(7, 10, 0), at(7, 9, 0), tokyo)).To(BeEmpty())
	})
})

var _ = Describe("WorkDate", func() {
	It("uses the local calendar date", func() {
		tokyo, err := time.LoadLocation("Asia/Tokyo")
		Expect(err).NotTo(HaveOccurred())

		// 2025-04-06 20:00 UTC is already 2025-04-07 in Tokyo
		d := attendance.WorkDate(time.Date(2025, time.April, 6, 20, 0, 0, 0, time.UTC), tokyo)
		Expect(d).To(Equal(time.Date(2025, time.April, 7, 0, 0, 0, 0, time.UTC)))
	})
})
