package leave

const (
	StatusPending   = "pending"
	StatusApproved  = "approved"
	StatusRejected  = "rejected"
	StatusCancelled = "cancelled"

	TypeCasual    = "casual"
	TypeSick      = "sick"
	TypeEarned    = "earned"
	TypeLossOfPay = "loss_of_pay"

	AttendancePresent = "present"
	AttendanceAbsent  = "absent"
	AttendanceHalfDay = "half_day"
	AttendanceHoliday = "holiday"
	AttendanceLeave   = "leave"
)

var Types = []string{TypeCasual, TypeSick, TypeEarned, TypeLossOfPay}
