package menu

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"sikaloan/internal/domain"
	"sikaloan/internal/loan"
	"sikaloan/internal/platform/config"
	"sikaloan/internal/repayment"
	"sikaloan/internal/session"
	"sikaloan/internal/subscriber"
	"sikaloan/pkg/domainerrors"
)

const (
	testMSISDN  = "233244123456"
	otherMSISDN = "233244999999"
)

type EngineSuite struct {
	suite.Suite

	ctx      context.Context
	sessions *session.MemoryStore
	registry *subscriber.Registry
	engine   *Engine
}

func TestEngineSuite(t *testing.T) {
	suite.Run(t, new(EngineSuite))
}

func (s *EngineSuite) SetupTest() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	terms := config.Loan{InterestRate: 0.10, TermDays: 30, MinAmount: 10, MaxAmount: 1000}

	subs := subscriber.NewMemory()
	loans := loan.NewMemory(subs)

	s.ctx = context.Background()
	s.sessions = session.NewMemory(time.Minute)
	s.registry = subscriber.NewRegistry(subs, logger, nil)
	ledger := loan.NewLedger(loans, terms, logger, nil)
	processor := repayment.NewProcessor(loans, logger, nil)

	s.engine = NewEngine(s.sessions, s.registry, ledger, processor, nil, "233", logger, nil)
}

// send drives one conversation step and asserts no error.
func (s *EngineSuite) send(msisdn, input string) Response {
	s.T().Helper()
	resp, err := s.engine.Handle(s.ctx, msisdn, input)
	s.Require().NoError(err)
	return resp
}

// register walks the whole registration flow for msisdn.
func (s *EngineSuite) register(msisdn, name, docNumber string) {
	s.T().Helper()
	s.send(msisdn, "")
	s.send(msisdn, "1")
	s.send(msisdn, name)
	s.send(msisdn, "15091990")
	s.send(msisdn, "1")
	resp := s.send(msisdn, docNumber)
	s.Require().Contains(resp.Message, "Registration successful")
	s.Require().False(resp.Continue)
}

// applyLoan walks the application flow and returns the confirmation.
func (s *EngineSuite) applyLoan(msisdn, amount string) Response {
	s.T().Helper()
	s.send(msisdn, "")
	s.send(msisdn, "2")
	return s.send(msisdn, amount)
}

func (s *EngineSuite) TestFirstContactShowsMenu() {
	resp := s.send(testMSISDN, "")

	s.Contains(resp.Message, "Welcome to sika loan")
	s.Contains(resp.Message, "1. Register")
	s.Contains(resp.Message, "6. Exit")
	s.True(resp.Continue)
}

func (s *EngineSuite) TestInvalidMSISDNRejected() {
	_, err := s.engine.Handle(s.ctx, "15550001234", "")
	s.Require().Error(err)
	s.True(domainerrors.Is(err, domainerrors.CodeBadRequest))
}

func (s *EngineSuite) TestInvalidMenuChoiceReprompts() {
	s.send(testMSISDN, "")
	resp := s.send(testMSISDN, "7")

	s.Contains(resp.Message, "Invalid choice")
	s.True(resp.Continue)

	// The menu is still live.
	resp = s.send(testMSISDN, "5")
	s.Contains(resp.Message, "sika loan")
	s.False(resp.Continue)
}

func (s *EngineSuite) TestExitEndsConversation() {
	s.send(testMSISDN, "")
	resp := s.send(testMSISDN, "6")

	s.Contains(resp.Message, "Goodbye")
	s.False(resp.Continue)

	// Next contact starts over at the menu.
	resp = s.send(testMSISDN, "anything")
	s.Contains(resp.Message, "Welcome to sika loan")
}

func (s *EngineSuite) TestRegistrationFlow() {
	s.send(testMSISDN, "")
	resp := s.send(testMSISDN, "1")
	s.Contains(resp.Message, "full name")

	resp = s.send(testMSISDN, "Kofi")
	s.Contains(resp.Message, "first and last name")
	s.True(resp.Continue, "invalid name re-prompts")

	resp = s.send(testMSISDN, "Kofi Mensah")
	s.Contains(resp.Message, "DDMMYYYY")

	resp = s.send(testMSISDN, "99123456")
	s.Contains(resp.Message, "Invalid date format")

	resp = s.send(testMSISDN, "15091990")
	s.Contains(resp.Message, "1. Ghana Card")

	resp = s.send(testMSISDN, "9")
	s.Contains(resp.Message, "Invalid selection")

	resp = s.send(testMSISDN, "1")
	s.Contains(resp.Message, "Ghana Card number")

	resp = s.send(testMSISDN, "12345")
	s.Contains(resp.Message, "GHA1234567890", "rejection shows the example")

	resp = s.send(testMSISDN, "gha1234567890")
	s.Contains(resp.Message, "Registration successful")
	s.Contains(resp.Message, "Kofi Mensah")
	s.False(resp.Continue)

	sub, err := s.registry.Find(s.ctx, testMSISDN)
	s.Require().NoError(err)
	s.Require().NotNil(sub)
	s.Equal("Kofi Mensah", sub.FullName)
	s.Equal(domain.DocumentNationalID, sub.DocumentType)
	s.Equal("GHA1234567890", sub.DocumentNumber, "document number stored normalized")
}

func (s *EngineSuite) TestRegistrationDocTypeMapping() {
	tests := []struct {
		choice    string
		docNumber string
		label     string
	}{
		{"1", "GHA1234567890", "Ghana Card"},
		{"2", "A1234567", "Passport"},
		{"3", "MIC-05081980-7558", "Driver's License"},
	}
	for i, tt := range tests {
		msisdn := []string{testMSISDN, otherMSISDN, "233244888888"}[i]

		s.send(msisdn, "")
		s.send(msisdn, "1")
		s.send(msisdn, "Ama Bonsu")
		s.send(msisdn, "01012000")
		resp := s.send(msisdn, tt.choice)
		s.Contains(resp.Message, tt.label)

		resp = s.send(msisdn, tt.docNumber)
		s.Contains(resp.Message, "Registration successful", "choice %s", tt.choice)
	}
}

func (s *EngineSuite) TestRegistrationDuplicateDocument() {
	s.register(testMSISDN, "Kofi Mensah", "GHA1234567890")

	s.send(otherMSISDN, "")
	s.send(otherMSISDN, "1")
	s.send(otherMSISDN, "Ama Bonsu")
	s.send(otherMSISDN, "01012000")
	s.send(otherMSISDN, "1")
	resp := s.send(otherMSISDN, "GHA1234567890")

	s.Contains(resp.Message, "already registered")
	s.False(resp.Continue)
}

func (s *EngineSuite) TestUnregisteredBlockedFromLoanMenu() {
	for _, choice := range []string{"2", "3", "4"} {
		s.send(testMSISDN, "")
		resp := s.send(testMSISDN, choice)
		s.Equal("You must register first!", resp.Message, "choice %s", choice)
		s.False(resp.Continue)
	}
}

func (s *EngineSuite) TestLoanApplicationFlow() {
	s.register(testMSISDN, "Kofi Mensah", "GHA1234567890")

	s.send(testMSISDN, "")
	resp := s.send(testMSISDN, "2")
	s.Contains(resp.Message, "Enter loan amount")

	resp = s.send(testMSISDN, "abc")
	s.Contains(resp.Message, "Invalid amount")
	s.True(resp.Continue)

	resp = s.send(testMSISDN, "5")
	s.Contains(resp.Message, "Minimum loan amount is GHS 10")
	s.True(resp.Continue, "below-minimum re-prompts at the same step")

	resp = s.send(testMSISDN, "2000")
	s.Contains(resp.Message, "Maximum loan amount is GHS 1000")
	s.True(resp.Continue)

	resp = s.send(testMSISDN, "100")
	s.Contains(resp.Message, "Loan application received")
	s.Contains(resp.Message, "Amount: GHS 100.00")
	s.Contains(resp.Message, "Interest (10%): GHS 10.00")
	s.Contains(resp.Message, "Total to repay: GHS 110.00")
	s.False(resp.Continue)
}

func (s *EngineSuite) TestSecondApplicationBlocked() {
	s.register(testMSISDN, "Kofi Mensah", "GHA1234567890")
	s.applyLoan(testMSISDN, "100")

	s.send(testMSISDN, "")
	resp := s.send(testMSISDN, "2")
	s.Contains(resp.Message, "already have an active loan")
	s.False(resp.Continue)
}

func (s *EngineSuite) TestBalanceCheck() {
	s.register(testMSISDN, "Kofi Mensah", "GHA1234567890")

	s.send(testMSISDN, "")
	resp := s.send(testMSISDN, "4")
	s.Equal("No active loan. Balance: GHS 0.00", resp.Message)

	s.applyLoan(testMSISDN, "100")

	s.send(testMSISDN, "")
	resp = s.send(testMSISDN, "4")
	s.Contains(resp.Message, "Loan Summary")
	s.Contains(resp.Message, "Principal: GHS 100.00")
	s.Contains(resp.Message, "Outstanding: GHS 110.00")
	s.False(resp.Continue)
}

func (s *EngineSuite) TestRepaymentFlow() {
	s.register(testMSISDN, "Kofi Mensah", "GHA1234567890")
	s.applyLoan(testMSISDN, "100")

	s.send(testMSISDN, "")
	resp := s.send(testMSISDN, "3")
	s.Contains(resp.Message, "Outstanding: GHS 110.00")
	s.Contains(resp.Message, "Enter amount to repay")

	resp = s.send(testMSISDN, "xyz")
	s.Contains(resp.Message, "Invalid amount")
	s.True(resp.Continue)

	// A signed amount must re-prompt, not be read as its absolute value.
	resp = s.send(testMSISDN, "-50")
	s.Contains(resp.Message, "Invalid amount")
	s.True(resp.Continue)

	resp = s.send(testMSISDN, "50")
	s.Contains(resp.Message, "Payment received: GHS 50.00")
	s.Contains(resp.Message, "Outstanding balance: GHS 60.00")
	s.False(resp.Continue)

	// Finish it off with an overpayment.
	s.send(testMSISDN, "")
	s.send(testMSISDN, "3")
	resp = s.send(testMSISDN, "100")
	s.Contains(resp.Message, "Payment received: GHS 60.00")
	s.Contains(resp.Message, "Overpayment ignored: GHS 40.00")
	s.Contains(resp.Message, "Loan fully repaid")
	s.False(resp.Continue)

	// Closed loan: repay menu has nothing to settle, and a new application
	// is allowed again.
	s.send(testMSISDN, "")
	resp = s.send(testMSISDN, "3")
	s.Equal("No active loan found.", resp.Message)

	resp = s.applyLoan(testMSISDN, "200")
	s.Contains(resp.Message, "Loan application received")
}

func (s *EngineSuite) TestUnknownStepResetsToMenu() {
	sess := domain.NewSession(testMSISDN)
	sess.Step = domain.Step("withdrawn_feature")
	s.Require().NoError(s.sessions.Advance(s.ctx, sess))

	resp := s.send(testMSISDN, "whatever")
	s.Contains(resp.Message, "Welcome to sika loan")
	s.True(resp.Continue)
}

func (s *EngineSuite) TestMissingFlowDataResetsToMenu() {
	// A loan-amount step with no application bag cannot proceed safely.
	sess := domain.NewSession(testMSISDN)
	sess.Step = domain.StepLoanAmount
	s.Require().NoError(s.sessions.Advance(s.ctx, sess))

	resp := s.send(testMSISDN, "100")
	s.Contains(resp.Message, "Welcome to sika loan")
	s.True(resp.Continue)
}
