package domain

// Severity classifies advisory validation output.
type Severity string

const (
	SeverityNone  Severity = ""
	SeverityInfo  Severity = "info"
	SeverityError Severity = "error"
)

// Validation is the live validator verdict for the current input line.
type Validation struct {
	Severity    Severity
	Message     string
	Suggestions []string
}

// IsZero reports a well-formed (or empty) line.
func (v Validation) IsZero() bool {
	return v.Severity == SeverityNone && v.Message == ""
}
