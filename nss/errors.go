package nss

// ValidationError reports structurally invalid input: a present decay
// parameter that is not strictly positive, a panel missing a required
// column, an empty panel.
type ValidationError struct {
	Op  string
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Op + ": " + e.Msg
}

// DomainError reports a mathematically invalid argument to a formula,
// such as a non-positive maturity or face value, or forward-rate
// maturities out of order.
type DomainError struct {
	Op  string
	Msg string
}

func (e *DomainError) Error() string {
	return e.Op + ": " + e.Msg
}

// ArgumentError reports an unrecognized enumerated option (return
// frequency or return kind).
type ArgumentError struct {
	Op  string
	Msg string
}

func (e *ArgumentError) Error() string {
	return e.Op + ": " + e.Msg
}
