package export

// ExportError represents a failure while rendering or storing an export
type ExportError struct {
	Code    string
	Message string
	Cause   error
}

func (e *ExportError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *ExportError) Unwrap() error {
	return e.Cause
}

// Error codes for export failures
const (
	ErrCodeRenderFailed  = "RENDER_FAILED"
	ErrCodeStorageFailed = "STORAGE_FAILED"
	ErrCodeInvalidName   = "INVALID_NAME"
	ErrCodeNotFound      = "NOT_FOUND"
)

// NewExportError creates a new ExportError
func NewExportError(code, message string, cause error) *ExportError {
	return &ExportError{Code: code, Message: message, Cause: cause}
}
