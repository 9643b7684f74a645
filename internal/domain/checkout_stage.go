package domain

type Stage string

const (
	StageShipping  Stage = "SHIPPING"
	StagePayment   Stage = "PAYMENT"
	StageConfirmed Stage = "CONFIRMED"
)

func (s Stage) IsTerminal() bool {
	return s == StageConfirmed
}

// String representation (for logging)
func (s Stage) String() string {
	return string(s)
}

// CanTransitionTo reports whether from -> to is an edge of the checkout flow.
func CanTransitionTo(from, to Stage) bool {
	switch from {
	case StageShipping:
		return to == StagePayment
	case StagePayment:
		return to == StageConfirmed || to == StageShipping
	}
	return false
}
