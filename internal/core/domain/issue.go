package domain

type Severity string

const (
	SeverityCritical   Severity = "critical"
	SeverityWarning    Severity = "warning"
	SeveritySuggestion Severity = "suggestion"
)

// ParseSeverity maps loosely-spelled severity labels (as returned by text
// generation providers) onto the fixed set, defaulting to suggestion.
func ParseSeverity(raw string) Severity {
	switch Severity(raw) {
	case SeverityCritical:
		return SeverityCritical
	case SeverityWarning:
		return SeverityWarning
	case SeveritySuggestion:
		return SeveritySuggestion
	}
	switch raw {
	case "error", "fatal", "blocker":
		return SeverityCritical
	case "warn", "caution":
		return SeverityWarning
	default:
		return SeveritySuggestion
	}
}

// Issue is a single validation or compliance finding. Issues are value
// objects created fresh per check and never shared between products.
type Issue struct {
	Field          string   `json:"field"`
	Severity       Severity `json:"severity"`
	Message        string   `json:"message"`
	Recommendation string   `json:"recommendation,omitempty"`
	PolicyRef      string   `json:"policy_reference,omitempty"`
}
