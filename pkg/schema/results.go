package schema

// IntakeResultV1 is the structured output of IntakeAgent.
type IntakeResultV1 struct {
	Complete       bool     `json:"complete" validate:"required"`
	MissingFields  []string `json:"missing_fields"`
	Inconsistencies []string `json:"inconsistencies"`
	Notes          string   `json:"notes"`
}

// CreditResultV1 is the structured output of CreditAgent.
type CreditResultV1 struct {
	CreditScore      int      `json:"credit_score" validate:"required,min=300,max=850"`
	OpenTradeLines   int      `json:"open_trade_lines" validate:"min=0"`
	Delinquencies    int      `json:"delinquencies" validate:"min=0"`
	FraudSignals     []string `json:"fraud_signals"`
	Notes            string   `json:"notes"`
}

// IncomeResultV1 is the structured output of IncomeAgent.
type IncomeResultV1 struct {
	VerifiedMonthlyIncome string  `json:"verified_monthly_income" validate:"required"` // decimal string
	DebtToIncomeRatio     float64 `json:"debt_to_income_ratio" validate:"min=0,max=10"`
	EmploymentVerified    bool    `json:"employment_verified" validate:"required"`
	Notes                 string  `json:"notes"`
}

// RiskResultV1 is the structured output of RiskAgent — the terminal step of
// the consumer-installment pattern. Recommendation is a closed enum (§5).
// ApprovedAmount/InterestRate/TermMonths/PrimaryReason/SupportingReasons
// feed the Decision Assembler's §4.4 rule table directly — "from risk
// result" means these fields, carried through unchanged.
type RiskResultV1 struct {
	Recommendation    string   `json:"recommendation" validate:"required,oneof=APPROVE CONDITIONAL_APPROVAL MANUAL_REVIEW DENY"`
	Rationale         string   `json:"rationale" validate:"required"`
	Conditions        []string `json:"conditions"`
	ApprovedAmount    string   `json:"approved_amount,omitempty"`    // fixed-point decimal string
	InterestRate      string   `json:"interest_rate,omitempty"`      // fixed-point decimal string, annual percentage
	TermMonths        int      `json:"term_months,omitempty" validate:"omitempty,min=1"`
	PrimaryReason     string   `json:"primary_reason"`
	SupportingReasons []string `json:"supporting_reasons"`
}
