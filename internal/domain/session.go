package domain

import "github.com/google/uuid"

// Step names a point in the conversation state machine. It determines which
// prompt was last shown and how the next input is interpreted.
type Step string

const (
	StepMain        Step = "main"
	StepMenuChoice  Step = "menu_choice"
	StepRegName     Step = "reg_name"
	StepRegDOB      Step = "reg_dob"
	StepRegDocType  Step = "reg_doc_type"
	StepRegDocNum   Step = "reg_doc_number"
	StepLoanAmount  Step = "loan_amount"
	StepRepayAmount Step = "repay_amount"
)

// Known reports whether the step is one the state machine handles. Unknown
// values (stale sessions from an older deploy, manual edits) reset to the
// menu.
func (s Step) Known() bool {
	switch s {
	case StepMain, StepMenuChoice, StepRegName, StepRegDOB, StepRegDocType,
		StepRegDocNum, StepLoanAmount, StepRepayAmount:
		return true
	}
	return false
}

// RegistrationData is the bag collected across the registration steps.
type RegistrationData struct {
	FullName     string       `json:"full_name,omitempty"`
	DateOfBirth  string       `json:"date_of_birth,omitempty"`
	DocumentType DocumentType `json:"document_type,omitempty"`
}

// LoanApplicationData pins the subscriber a loan application belongs to.
type LoanApplicationData struct {
	SubscriberID int64 `json:"subscriber_id"`
}

// RepaymentData pins the loan a repayment settles.
type RepaymentData struct {
	LoanID uuid.UUID `json:"loan_id"`
}

// Session is the conversation state for one subscriber. One flow bag at a
// time is non-nil, selected by the current step, so a step only reads fields
// a previous step wrote.
type Session struct {
	MSISDN       string               `json:"msisdn"`
	Step         Step                 `json:"step"`
	Registration *RegistrationData    `json:"registration,omitempty"`
	Application  *LoanApplicationData `json:"application,omitempty"`
	Repayment    *RepaymentData       `json:"repayment,omitempty"`
}

// NewSession starts a fresh conversation at the initial step.
func NewSession(msisdn string) *Session {
	return &Session{MSISDN: msisdn, Step: StepMain}
}

// Reset clears all flow data and moves the session to the given step.
func (s *Session) Reset(step Step) {
	s.Step = step
	s.Registration = nil
	s.Application = nil
	s.Repayment = nil
}
