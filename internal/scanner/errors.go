package scanner

// ValidationError is a precondition failure handled locally with a notice
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

var (
	ErrEmptyPayload     = &ValidationError{Message: "Please select at least one image first."}
	ErrNoSelection      = &ValidationError{Message: "Please select at least one contact to download."}
	ErrNoResults        = &ValidationError{Message: "There are no contacts to export."}
	ErrSubmitInProgress = &ValidationError{Message: "A scan is already in progress."}
)

// FailurePrefix starts every submission failure notice
const FailurePrefix = "There was an error processing your card: "
