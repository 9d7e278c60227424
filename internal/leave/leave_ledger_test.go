package leave_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"

	"go-leave/internal/leave"
	"go-leave/internal/user"
)

func dec(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v)
}

func balance(annual, medical, short, taken float64) user.LeaveBalance {
	return user.LeaveBalance{
		Annual:      dec(annual),
		Medical:     dec(medical),
		ShortLeave:  dec(short),
		LeavesTaken: dec(taken),
	}
}

func expectBalance(got, want user.LeaveBalance) {
	Expect(got.Annual.Equal(want.Annual)).To(BeTrue(), "annual: got %s want %s", got.Annual, want.Annual)
	Expect(got.Medical.Equal(want.Medical)).To(BeTrue(), "medical: got %s want %s", got.Medical, want.Medical)
	Expect(got.ShortLeave.Equal(want.ShortLeave)).To(BeTrue(), "short leave: got %s want %s", got.ShortLeave, want.ShortLeave)
	Expect(got.LeavesTaken.Equal(want.LeavesTaken)).To(BeTrue(), "leaves taken: got %s want %s", got.LeavesTaken, want.LeavesTaken)
}

var _ = Describe("ApplyLedger", func() {
	start := balance(20, 4, 24, 0)

	DescribeTable("deductions",
		func(leaveType, reason string, days int, want user.LeaveBalance) {
			expectBalance(leave.ApplyLedger(start, leaveType, reason, days), want)
		},
		Entry("sick full-day draws on medical", leave.TypeFullDay, "Sick", 3, balance(20, 1, 24, 3)),
		Entry("other full-day draws on annual", leave.TypeFullDay, "Family", 3, balance(17, 4, 24, 3)),
		Entry("lowercase sick is not medical", leave.TypeFullDay, "sick", 1, balance(19, 4, 24, 1)),
		Entry("short leave counts half per date", leave.TypeShortLeave, "Errand", 3, balance(20, 4, 22.5, 1.5)),
		Entry("half-day leaves balance untouched", leave.TypeHalfDay, "Family", 2, balance(20, 4, 24, 0)),
		Entry("unknown type leaves balance untouched", "sabbatical", "Family", 2, balance(20, 4, 24, 0)),
	)

	It("clamps counters at zero but not leaves taken", func() {
		expectBalance(leave.ApplyLedger(start, leave.TypeFullDay, "Sick", 5), balance(20, 0, 24, 5))
	})

	It("clamps annual when overdrawn", func() {
		expectBalance(leave.ApplyLedger(balance(2, 4, 24, 10), leave.TypeFullDay, "Vacation", 5), balance(0, 4, 24, 15))
	})

	It("floors short leave at zero", func() {
		expectBalance(leave.ApplyLedger(balance(20, 4, 1, 0), leave.TypeShortLeave, "", 4), balance(20, 4, 0, 2))
	})

	It("does not mutate its input", func() {
		in := balance(20, 4, 24, 0)
		_ = leave.ApplyLedger(in, leave.TypeFullDay, "Vacation", 2)
		expectBalance(in, balance(20, 4, 24, 0))
	})
})
