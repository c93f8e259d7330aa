package replay

// ReadError is returned when a replay cannot be decoded.
type ReadError struct {
	Message string
	Err     error
}

func (e *ReadError) Error() string {
	if e.Err != nil {
		return "read error: " + e.Message + ": " + e.Err.Error()
	}
	return "read error: " + e.Message
}

func (e *ReadError) Unwrap() error {
	return e.Err
}

// WriteError is returned when a replay cannot be encoded.
type WriteError struct {
	Message string
	Err     error
}

func (e *WriteError) Error() string {
	if e.Err != nil {
		return "write error: " + e.Message + ": " + e.Err.Error()
	}
	return "write error: " + e.Message
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// NewReadError creates a ReadError wrapping err, which may be nil.
func NewReadError(message string, err error) error {
	return &ReadError{Message: message, Err: err}
}

// NewWriteError creates a WriteError wrapping err, which may be nil.
func NewWriteError(message string, err error) error {
	return &WriteError{Message: message, Err: err}
}
