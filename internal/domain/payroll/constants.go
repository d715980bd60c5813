package payroll

const (
	StatusDraft           = "draft"
	StatusPendingApproval = "pending_approval"
	StatusApproved        = "approved"
	StatusProcessing      = "processing"
	StatusCompleted       = "completed"
	StatusFailed          = "failed"

	ActionSubmit  = "submit"
	ActionApprove = "approve"
	ActionReject  = "reject"
	ActionProcess = "process"

	WarningMissingBank = "missing_bank_account"
	WarningNegativeNet = "negative_net"

	// ESIGrossCeiling is the inclusive monthly gross limit for ESI.
	ESIGrossCeiling = 21000.0
	ESIRate         = 0.75
	// TDSSlabRate applies to annualized income above the tenant threshold.
	TDSSlabRate = 5.0

	DefaultPFRate       = 12.0
	DefaultPTRate       = 200.0
	DefaultTDSThreshold = 500000.0

	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)
