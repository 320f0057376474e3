package domain

import "time"

// ValidationReport is the outcome of structural validation against one
// marketplace's guideline.
type ValidationReport struct {
	IsValid       bool     `json:"is_valid"`
	Issues        []Issue  `json:"issues"`
	MissingFields []string `json:"missing_fields"`
	Score         int      `json:"score"`
}

// ComplianceReport is the outcome of policy checking.
type ComplianceReport struct {
	IsCompliant bool    `json:"is_compliant"`
	Issues      []Issue `json:"issues"`
	Score       int     `json:"score"`
}

// KeywordSet holds search keywords in descending order of search value.
// Tiers are deduplicated case-insensitively within and across tiers and
// capped at 5/10/15 entries.
type KeywordSet struct {
	Primary   []string `json:"primary"`
	Secondary []string `json:"secondary"`
	Tertiary  []string `json:"tertiary"`
}

// FieldChange records one field rewrite with its reasoning.
type FieldChange struct {
	Field     string `json:"field"`
	Before    string `json:"before"`
	After     string `json:"after"`
	Reasoning string `json:"reasoning"`
}

// EnhancedContent is the content enhancer's output: the rewritten listing
// copy plus one change record per produced field.
type EnhancedContent struct {
	Title        string        `json:"title"`
	Description  string        `json:"description"`
	BulletPoints []string      `json:"bullet_points"`
	Changes      []FieldChange `json:"changes"`
}

// EnhancementResult is the complete scored, annotated output of one
// pipeline run on one product. It is assembled once and never mutated;
// re-running the pipeline yields a new result.
type EnhancementResult struct {
	ProductID   string   `json:"product_id"`
	Marketplace string   `json:"marketplace"`
	Original    *Product `json:"original"`
	Enhanced    *Product `json:"enhanced"`

	Changes         []FieldChange `json:"changes"`
	CriticalIssues  []Issue       `json:"critical_issues"`
	Recommendations []Issue       `json:"recommendations"`
	MissingFields   []string      `json:"missing_fields"`
	Keywords        KeywordSet    `json:"keywords"`

	IsValid         bool `json:"is_valid"`
	ValidationScore int  `json:"validation_score"`
	ComplianceScore int  `json:"compliance_score"`
	ContentScore    int  `json:"content_score"`
	SEOScore        int  `json:"seo_score"`
	OverallScore    int  `json:"overall_score"`

	// Narrative is the ordered stage-by-stage decision log shown to the
	// seller. It carries degraded-mode notes but never feeds scoring.
	Narrative []string `json:"narrative"`

	Error          string        `json:"error,omitempty"`
	ProcessingTime time.Duration `json:"processing_time_ms"`
	CreatedAt      time.Time     `json:"created_at"`
}

// EnhanceRequest is the queued unit of async batch work.
type EnhanceRequest struct {
	ProductID   string `json:"product_id"`
	Marketplace string `json:"marketplace"`
}

// ExportRecord is one entry in the export history.
type ExportRecord struct {
	ID           string    `json:"id"`
	Marketplace  string    `json:"marketplace"`
	ProductCount int       `json:"product_count"`
	FilePath     string    `json:"file_path"`
	CreatedAt    time.Time `json:"created_at"`
}
