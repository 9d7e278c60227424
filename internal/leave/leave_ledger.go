package leave

import (
	"go-leave/internal/user"

	"github.com/shopspring/decimal"
)

var half = decimal.NewFromFloat(0.5)

// ApplyLedger returns the balance after approving a leave of leaveType
// spanning days dates. Insufficient balance is not an error: counters are
// floored at zero while LeavesTaken always grows by the nominal amount.
// Half-day leave leaves the balance untouched.
func ApplyLedger(balance user.LeaveBalance, leaveType, reason string, days int) user.LeaveBalance {
	n := decimal.NewFromInt(int64(days))
	out := balance

	switch leaveType {
	case TypeFullDay:
		if reason == ReasonSick {
			out.Medical = out.Medical.Sub(n)
		} else {
			out.Annual = out.Annual.Sub(n)
		}
		out.LeavesTaken = out.LeavesTaken.Add(n)
	case TypeShortLeave:
		amount := n.Mul(half)
		out.ShortLeave = out.ShortLeave.Sub(amount)
		out.LeavesTaken = out.LeavesTaken.Add(amount)
	}

	out.Annual = floorZero(out.Annual)
	out.Medical = floorZero(out.Medical)
	out.ShortLeave = floorZero(out.ShortLeave)
	return out
}

func floorZero(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}
