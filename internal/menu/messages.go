package menu

import (
	"fmt"

	"sikaloan/internal/domain"
	"sikaloan/internal/platform/config"
	"sikaloan/internal/repayment"
	"sikaloan/internal/validate"
	"sikaloan/pkg/money"
)

// All user-facing text lives here so prompts stay consistent between the
// handler that shows them and the validator that re-prompts.

const (
	menuOptions = "1. Register\n2. Apply for Loan\n3. Repay Loan\n4. Check Balance\n5. About\n6. Exit"

	msgWelcome       = "Welcome to sika loan\n" + menuOptions
	msgInvalidChoice = "Invalid choice. Try again.\n" + menuOptions

	msgMustRegister     = "You must register first!"
	msgActiveLoanExists = "You already have an active loan. Repay before applying again."
	msgNoActiveLoan     = "No active loan found."
	msgNoLoanBalance    = "No active loan. Balance: GHS 0.00"

	msgAbout   = "sika loan: simple microloans with transparent interest."
	msgGoodbye = "Thank you for using sika loan. Goodbye!"

	msgPromptName     = "Enter your full name:"
	msgInvalidName    = "Please enter your full name (at least first and last name, letters only):"
	msgPromptDOB      = "Enter your date of birth (DDMMYYYY, e.g., 15091990 for 15th September 1990):"
	msgInvalidDOB     = "Invalid date format. Please enter date of birth as DDMMYYYY (e.g., 15091990 for 15th September 1990):"
	msgPromptDocType  = "Select ID type:\n1. Ghana Card\n2. Passport\n3. Driver's License"
	msgInvalidDocType = "Invalid selection. " + msgPromptDocType

	msgAlreadyRegistered = "This ID number is already registered. Please contact support if this is an error."

	msgPromptLoanAmount  = "Enter loan amount (GHS):"
	msgInvalidLoanAmount = "Invalid amount. Please enter a valid number:"

	msgInvalidRepayAmount = "Invalid amount. Enter amount to repay:"
)

func promptDocNumber(t domain.DocumentType) string {
	return fmt.Sprintf("Enter your %s number:", t.Label())
}

func invalidDocNumber(t domain.DocumentType) string {
	return fmt.Sprintf("Invalid %s format. Example: %s\n\n%s",
		t.Label(), validate.DocumentFormatExample(t), promptDocNumber(t))
}

func registrationDone(name string) string {
	return fmt.Sprintf("Registration successful!\nThank you, %s.\n\nYou can now apply for a loan.", name)
}

func belowMinimum(terms config.Loan) string {
	return fmt.Sprintf("Minimum loan amount is GHS %.0f. Please enter a higher amount:", terms.MinAmount)
}

func aboveMaximum(terms config.Loan) string {
	return fmt.Sprintf("Maximum loan amount is GHS %.0f. Please enter a lower amount:", terms.MaxAmount)
}

func loanApproved(loan *domain.Loan) string {
	return fmt.Sprintf("Loan application received!\n\n"+
		"Amount: %s\n"+
		"Interest (%.0f%%): %s\n"+
		"Total to repay: %s\n"+
		"Due date: %s\n\n"+
		"Your application is being processed. You'll receive an SMS confirmation shortly.",
		money.Format(loan.Principal),
		loan.InterestRate*100,
		money.Format(loan.InterestAmount),
		money.Format(loan.TotalDue),
		loan.DueDate.Format("02/01/2006"))
}

func repayPrompt(loan *domain.Loan) string {
	return fmt.Sprintf("Outstanding: %s (Total Due: %s)\nEnter amount to repay:",
		money.Format(loan.Balance), money.Format(loan.TotalDue))
}

func loanSummary(loan *domain.Loan) string {
	return fmt.Sprintf("Loan Summary\n"+
		"Principal: %s\n"+
		"Interest (%.2f%%): %s\n"+
		"Total Due: %s\n"+
		"Outstanding: %s\n"+
		"Due: %s",
		money.Format(loan.Principal),
		loan.InterestRate*100,
		money.Format(loan.InterestAmount),
		money.Format(loan.TotalDue),
		money.Format(loan.Balance),
		loan.DueDate.Format("2006-01-02"))
}

func paymentReceived(result *repayment.Result) string {
	msg := fmt.Sprintf("Payment received: %s\n", money.Format(result.Payment))
	if result.OverpaymentIgnored > 0 {
		msg += fmt.Sprintf("Overpayment ignored: %s\n", money.Format(result.OverpaymentIgnored))
	}
	if result.Closed {
		return msg + "Loan fully repaid. Thank you!"
	}
	return msg + fmt.Sprintf("Outstanding balance: %s", money.Format(result.NewBalance))
}
