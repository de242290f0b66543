// Package menu is the conversation state machine: given the current step and
// the subscriber's input it decides the outgoing message, the next step, and
// whether the conversation continues.
package menu

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"sikaloan/internal/domain"
	"sikaloan/internal/loan"
	"sikaloan/internal/notify"
	"sikaloan/internal/platform/metrics"
	"sikaloan/internal/repayment"
	"sikaloan/internal/session"
	"sikaloan/internal/subscriber"
	"sikaloan/internal/validate"
	"sikaloan/pkg/domainerrors"
	"sikaloan/pkg/platform/sentinel"
)

// Response is what the transport renders back to the gateway.
type Response struct {
	Message string
	// Continue is true when the gateway should collect further input.
	Continue bool
}

// Notifier emits fire-and-forget events; nil-safe via NopNotifier in tests.
type Notifier interface {
	Emit(event notify.Event)
}

// NopNotifier discards events.
type NopNotifier struct{}

func (NopNotifier) Emit(notify.Event) {}

// Engine drives one conversation step per request. It loads the session and
// subscriber, dispatches on the current step, invokes the registry, ledger
// or repayment processor as the step requires, and persists or clears the
// session depending on the outcome.
type Engine struct {
	sessions    session.Store
	registry    *subscriber.Registry
	ledger      *loan.Ledger
	repayments  *repayment.Processor
	notifier    Notifier
	countryCode string
	logger      *slog.Logger
	metrics     *metrics.Metrics
}

func NewEngine(
	sessions session.Store,
	registry *subscriber.Registry,
	ledger *loan.Ledger,
	repayments *repayment.Processor,
	notifier Notifier,
	countryCode string,
	logger *slog.Logger,
	m *metrics.Metrics,
) *Engine {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &Engine{
		sessions:    sessions,
		registry:    registry,
		ledger:      ledger,
		repayments:  repayments,
		notifier:    notifier,
		countryCode: countryCode,
		logger:      logger,
		metrics:     m,
	}
}

type stepHandler func(e *Engine, ctx context.Context, sess *domain.Session, input string, sub *domain.Subscriber) (Response, error)

// handlers is the canonical state table. Every step other than a validation
// re-prompt ends the conversation.
var handlers = map[domain.Step]stepHandler{
	domain.StepMain:        (*Engine).handleMain,
	domain.StepMenuChoice:  (*Engine).handleMenuChoice,
	domain.StepRegName:     (*Engine).handleRegName,
	domain.StepRegDOB:      (*Engine).handleRegDOB,
	domain.StepRegDocType:  (*Engine).handleRegDocType,
	domain.StepRegDocNum:   (*Engine).handleRegDocNum,
	domain.StepLoanAmount:  (*Engine).handleLoanAmount,
	domain.StepRepayAmount: (*Engine).handleRepayAmount,
}

// Handle processes one inbound request. On storage failure the session is
// left untouched so a gateway retry can resume where it was.
func (e *Engine) Handle(ctx context.Context, msisdn, input string) (Response, error) {
	if !validate.MSISDN(e.countryCode, msisdn) {
		return Response{}, domainerrors.New(domainerrors.CodeBadRequest, "invalid msisdn")
	}

	sess, _, err := e.sessions.LoadOrCreate(ctx, msisdn)
	if err != nil {
		return Response{}, e.storageFailure(ctx, "load session", err)
	}

	sub, err := e.registry.Find(ctx, msisdn)
	if err != nil {
		return Response{}, e.storageFailure(ctx, "find subscriber", err)
	}

	step := sess.Step
	if !step.Known() {
		// Stale or corrupt step value: start over at the menu.
		sess.Reset(domain.StepMain)
		step = domain.StepMain
	}

	handler := handlers[step]
	resp, err := handler(e, ctx, sess, strings.TrimSpace(input), sub)
	if err != nil {
		e.metrics.RecordStep(string(step), "error")
		return Response{}, err
	}

	if resp.Continue {
		if err := e.sessions.Advance(ctx, sess); err != nil {
			e.metrics.RecordStep(string(step), "error")
			return Response{}, e.storageFailure(ctx, "advance session", err)
		}
		e.metrics.RecordStep(string(step), "continue")
	} else {
		if err := e.sessions.End(ctx, msisdn); err != nil {
			e.metrics.RecordStep(string(step), "error")
			return Response{}, e.storageFailure(ctx, "end session", err)
		}
		e.metrics.RecordStep(string(step), "end")
	}
	return resp, nil
}

func (e *Engine) storageFailure(ctx context.Context, op string, err error) error {
	e.logger.ErrorContext(ctx, "storage failure", "op", op, "error", err)
	return domainerrors.Wrap(err, domainerrors.CodeUnavailable, op)
}

func (e *Engine) handleMain(_ context.Context, sess *domain.Session, _ string, _ *domain.Subscriber) (Response, error) {
	sess.Step = domain.StepMenuChoice
	return Response{Message: msgWelcome, Continue: true}, nil
}

func (e *Engine) handleMenuChoice(ctx context.Context, sess *domain.Session, input string, sub *domain.Subscriber) (Response, error) {
	switch input {
	case "1":
		sess.Reset(domain.StepRegName)
		sess.Registration = &domain.RegistrationData{}
		return Response{Message: msgPromptName, Continue: true}, nil

	case "2":
		if sub == nil {
			return Response{Message: msgMustRegister}, nil
		}
		active, err := e.ledger.ActiveLoanFor(ctx, sub.ID)
		if err != nil {
			return Response{}, e.storageFailure(ctx, "find active loan", err)
		}
		if active != nil {
			return Response{Message: msgActiveLoanExists}, nil
		}
		sess.Reset(domain.StepLoanAmount)
		sess.Application = &domain.LoanApplicationData{SubscriberID: sub.ID}
		return Response{Message: msgPromptLoanAmount, Continue: true}, nil

	case "3":
		if sub == nil {
			return Response{Message: msgMustRegister}, nil
		}
		active, err := e.ledger.ActiveLoanFor(ctx, sub.ID)
		if err != nil {
			return Response{}, e.storageFailure(ctx, "find active loan", err)
		}
		if active == nil {
			return Response{Message: msgNoActiveLoan}, nil
		}
		sess.Reset(domain.StepRepayAmount)
		sess.Repayment = &domain.RepaymentData{LoanID: active.ID}
		return Response{Message: repayPrompt(active), Continue: true}, nil

	case "4":
		if sub == nil {
			return Response{Message: msgMustRegister}, nil
		}
		active, err := e.ledger.ActiveLoanFor(ctx, sub.ID)
		if err != nil {
			return Response{}, e.storageFailure(ctx, "find active loan", err)
		}
		if active == nil {
			return Response{Message: msgNoLoanBalance}, nil
		}
		return Response{Message: loanSummary(active)}, nil

	case "5":
		return Response{Message: msgAbout}, nil

	case "6":
		return Response{Message: msgGoodbye}, nil

	default:
		return Response{Message: msgInvalidChoice, Continue: true}, nil
	}
}

func (e *Engine) handleRegName(_ context.Context, sess *domain.Session, input string, _ *domain.Subscriber) (Response, error) {
	if !validate.FullName(input) {
		return Response{Message: msgInvalidName, Continue: true}, nil
	}
	if sess.Registration == nil {
		sess.Registration = &domain.RegistrationData{}
	}
	sess.Registration.FullName = input
	sess.Step = domain.StepRegDOB
	return Response{Message: msgPromptDOB, Continue: true}, nil
}

func (e *Engine) handleRegDOB(_ context.Context, sess *domain.Session, input string, _ *domain.Subscriber) (Response, error) {
	if sess.Registration == nil {
		return e.resetToMenu(sess), nil
	}
	if !validate.DateOfBirth(input) {
		return Response{Message: msgInvalidDOB, Continue: true}, nil
	}
	sess.Registration.DateOfBirth = input
	sess.Step = domain.StepRegDocType
	return Response{Message: msgPromptDocType, Continue: true}, nil
}

func (e *Engine) handleRegDocType(_ context.Context, sess *domain.Session, input string, _ *domain.Subscriber) (Response, error) {
	if sess.Registration == nil {
		return e.resetToMenu(sess), nil
	}
	var docType domain.DocumentType
	switch input {
	case "1":
		docType = domain.DocumentNationalID
	case "2":
		docType = domain.DocumentPassport
	case "3":
		docType = domain.DocumentDriversLicense
	default:
		return Response{Message: msgInvalidDocType, Continue: true}, nil
	}
	sess.Registration.DocumentType = docType
	sess.Step = domain.StepRegDocNum
	return Response{Message: promptDocNumber(docType), Continue: true}, nil
}

func (e *Engine) handleRegDocNum(ctx context.Context, sess *domain.Session, input string, _ *domain.Subscriber) (Response, error) {
	reg := sess.Registration
	if reg == nil || reg.DocumentType == "" {
		return e.resetToMenu(sess), nil
	}

	docNumber := validate.NormalizeDocumentNumber(input)
	if !validate.DocumentNumber(reg.DocumentType, docNumber) {
		return Response{Message: invalidDocNumber(reg.DocumentType), Continue: true}, nil
	}

	_, err := e.registry.Register(ctx, sess.MSISDN, reg.FullName, reg.DateOfBirth, reg.DocumentType, docNumber)
	if errors.Is(err, sentinel.ErrDuplicateIdentity) {
		return Response{Message: msgAlreadyRegistered}, nil
	}
	if err != nil {
		return Response{}, e.storageFailure(ctx, "register subscriber", err)
	}

	e.notifier.Emit(notify.Event{Type: notify.EventSubscriberRegistered, MSISDN: sess.MSISDN})
	return Response{Message: registrationDone(reg.FullName)}, nil
}

func (e *Engine) handleLoanAmount(ctx context.Context, sess *domain.Session, input string, _ *domain.Subscriber) (Response, error) {
	app := sess.Application
	if app == nil {
		return e.resetToMenu(sess), nil
	}

	terms := e.ledger.Terms()
	amount, ok := validate.Amount(input)
	switch {
	case !ok:
		return Response{Message: msgInvalidLoanAmount, Continue: true}, nil
	case amount < terms.MinAmount:
		return Response{Message: belowMinimum(terms), Continue: true}, nil
	case amount > terms.MaxAmount:
		return Response{Message: aboveMaximum(terms), Continue: true}, nil
	}

	created, err := e.ledger.Apply(ctx, app.SubscriberID, amount)
	if errors.Is(err, sentinel.ErrActiveLoanExists) {
		return Response{Message: msgActiveLoanExists}, nil
	}
	if err != nil {
		return Response{}, e.storageFailure(ctx, "create loan", err)
	}

	e.notifier.Emit(notify.Event{
		Type:   notify.EventLoanApproved,
		MSISDN: sess.MSISDN,
		LoanID: created.ID.String(),
		Amount: created.Principal,
	})
	return Response{Message: loanApproved(created)}, nil
}

func (e *Engine) handleRepayAmount(ctx context.Context, sess *domain.Session, input string, _ *domain.Subscriber) (Response, error) {
	rp := sess.Repayment
	if rp == nil {
		return e.resetToMenu(sess), nil
	}

	amount, ok := validate.StrictAmount(input)
	if !ok {
		return Response{Message: msgInvalidRepayAmount, Continue: true}, nil
	}

	result, err := e.repayments.Repay(ctx, rp.LoanID, amount)
	if errors.Is(err, sentinel.ErrNoActiveLoan) {
		return Response{Message: msgNoActiveLoan}, nil
	}
	if err != nil {
		return Response{}, e.storageFailure(ctx, "repay loan", err)
	}

	eventType := notify.EventPaymentReceived
	if result.Closed {
		eventType = notify.EventLoanClosed
	}
	e.notifier.Emit(notify.Event{
		Type:   eventType,
		MSISDN: sess.MSISDN,
		LoanID: rp.LoanID.String(),
		Amount: result.Payment,
	})
	return Response{Message: paymentReceived(result)}, nil
}

// resetToMenu recovers a session whose flow data went missing (stale deploy,
// manual edits): back to the menu with cleared data.
func (e *Engine) resetToMenu(sess *domain.Session) Response {
	sess.Reset(domain.StepMenuChoice)
	return Response{Message: msgWelcome, Continue: true}
}
