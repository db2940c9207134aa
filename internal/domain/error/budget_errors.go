package error

import "errors"

// Budget domain errors.
var (
	// ErrBudgetNotFound is returned when a budget is not found in the system.
	ErrBudgetNotFound = errors.New("budget not found")

	// ErrUnauthorizedBudgetAccess is returned when a user accesses a budget they do not own.
	ErrUnauthorizedBudgetAccess = errors.New("unauthorized access to budget")

	// ErrInvalidCategory is returned when a category key is not one of the fixed categories.
	ErrInvalidCategory = errors.New("invalid budget category")

	// ErrLineItemNotFound is returned when a line item is not part of the budget.
	ErrLineItemNotFound = errors.New("line item not found")

	// ErrInvalidBudgetName is returned when the budget name is empty or too long.
	ErrInvalidBudgetName = errors.New("invalid budget name")

	// ErrBudgetConflict is returned when a budget changed between load and save.
	ErrBudgetConflict = errors.New("budget was modified concurrently")
)

// BudgetErrorCode defines error codes for budget errors.
// Format: BUD-XXYYYY where XX is category and YYYY is specific error.
type BudgetErrorCode string

const (
	// Validation errors (01XXXX)
	ErrCodeBudgetNotFound           BudgetErrorCode = "BUD-010001"
	ErrCodeUnauthorizedBudgetAccess BudgetErrorCode = "BUD-010002"
	ErrCodeInvalidCategory          BudgetErrorCode = "BUD-010003"
	ErrCodeLineItemNotFound         BudgetErrorCode = "BUD-010004"
	ErrCodeInvalidBudgetName        BudgetErrorCode = "BUD-010005"
	ErrCodeMissingBudgetFields      BudgetErrorCode = "BUD-010006"

	// Rate limiting (02XXXX)
	ErrCodeBudgetRateLimited BudgetErrorCode = "BUD-020001"

	// Concurrency errors (03XXXX)
	ErrCodeBudgetConflict BudgetErrorCode = "BUD-030001"
)

// BudgetError is a budget error with its code.
type BudgetError = CodedError[BudgetErrorCode]

// NewBudgetError creates a new BudgetError with the given code and message.
func NewBudgetError(code BudgetErrorCode, message string, err error) *BudgetError {
	return newCodedError(code, message, err)
}
