// Package notification defines how investors are told about ledger events.
package notification

import "context"

// Template names a message kind. Rendering is the notifier's concern.
type Template string

const (
	TemplateInvestmentConfirmed Template = "investment_confirmed"
	TemplateInvestmentFailed    Template = "investment_failed"
	TemplateDepositCompleted    Template = "deposit_completed"
	TemplateWithdrawalRequested Template = "withdrawal_requested"
	TemplateWithdrawalProcessed Template = "withdrawal_processed"
	TemplateProfitDistributed   Template = "profit_distributed"
	TemplateKYCReviewed         Template = "kyc_reviewed"
)

// Recipient is who receives the message.
type Recipient struct {
	Email string
	Name  string
}

// Notifier delivers a message. Callers treat failures as non-fatal.
type Notifier interface {
	Send(ctx context.Context, template Template, to Recipient, data map[string]any) error
}

// Subjects holds the subject line per template.
var Subjects = map[Template]string{
	TemplateInvestmentConfirmed: "Your investment is confirmed",
	TemplateInvestmentFailed:    "Your investment payment could not be applied",
	TemplateDepositCompleted:    "Your wallet has been funded",
	TemplateWithdrawalRequested: "We received your withdrawal request",
	TemplateWithdrawalProcessed: "Your withdrawal has been processed",
	TemplateProfitDistributed:   "You received a profit share",
	TemplateKYCReviewed:         "Your verification has been reviewed",
}
