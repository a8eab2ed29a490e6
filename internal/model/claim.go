package model

// Logical field keys a ColumnMapping can map to spreadsheet headers.
const (
	FieldClaimID      = "claimId"
	FieldState        = "state"
	FieldStatus       = "status"
	FieldAge          = "age"
	FieldNetPayment   = "netPayment"
	FieldTotalCharges = "totalCharges"
	FieldProviderName = "providerName"
	FieldNotes        = "notes"
	FieldEdit         = "edit"
)

// LogicalFields lists every key a ColumnMapping may contain.
var LogicalFields = []string{
	FieldClaimID,
	FieldState,
	FieldStatus,
	FieldAge,
	FieldNetPayment,
	FieldTotalCharges,
	FieldProviderName,
	FieldNotes,
	FieldEdit,
}

// ColumnMapping maps a logical field key to the literal header used in one client's spreadsheet.
type ColumnMapping map[string]string

// RawRow is a single spreadsheet row keyed by header text.
type RawRow map[string]any

// CategorySource records which rule tier produced a claim's category.
type CategorySource string

// Category source constants.
const (
	SourceEditRule      CategorySource = "Edit Rule"
	SourceNoteRule      CategorySource = "Note Rule"
	SourceDefault       CategorySource = "Default"
	SourceNotApplicable CategorySource = "N/A"
)

// Defaults applied when a claim cannot be categorized or is not actionable.
const (
	DefaultCategory       = "Needs Triage"
	DefaultTeam           = "Needs Assignment"
	NotApplicable         = "N/A"
	UnknownValue          = "UNKNOWN"
	UnknownProvider       = "Unknown"
	NonActionableScore    = -1
	StateManagementReview = "MANAGEMENTREVIEW"
	StatePend             = "PEND"
	StateOnHold           = "ONHOLD"
)

// IsActionableState reports whether a normalized claim state needs operational attention.
func IsActionableState(state string) bool {
	switch state {
	case StatePend, StateOnHold, StateManagementReview:
		return true
	}
	return false
}

// ProcessedClaim is a claim after mapping, classification and scoring.
type ProcessedClaim struct {
	Original        RawRow         `json:"original"`
	ClaimID         string         `json:"claimId"`
	State           string         `json:"state"`
	Status          string         `json:"status"`
	ProviderName    string         `json:"providerName"`
	Category        string         `json:"category"`
	TeamName        string         `json:"team_name"`
	CategorySource  CategorySource `json:"source"`
	NetPayment      float64        `json:"netPayment"`
	Age             int            `json:"age"`
	PriorityScore   int            `json:"priorityScore"`
	CategoryID      int            `json:"category_id,omitempty"`
	IsActionable    bool           `json:"isActionable"`
	SendToL1Monitor bool           `json:"send_to_l1_monitor"`
}

// Metrics aggregates a dataset during analysis.
type Metrics struct {
	ClaimsByStatus  map[string]int `json:"claimsByStatus"`
	TotalNetPayment float64        `json:"totalNetPayment"`
	TotalClaims     int            `json:"totalClaims"`
}

// UncategorizedItem is a spreadsheet value with no rule yet, awaiting a human decision.
type UncategorizedItem struct {
	ProposedCategoryID *int   `json:"category_id"`
	Text               string `json:"text"`
}
