package protocol

import "errors"

// CAS failure codes, used verbatim in the XML code attribute.
const (
	CodeInvalidRequest = "INVALID_REQUEST"
	CodeInvalidService = "INVALID_SERVICE"
	CodeInvalidTicket  = "INVALID_TICKET"
	CodeBadPGT         = "BAD_PGT"
	CodeInternalError  = "INTERNAL_ERROR"
)

// RequestError reports malformed or incomplete caller input. Always
// recoverable into a rendered failure response.
type RequestError struct {
	Code    string
	Message string
}

func (e *RequestError) Error() string { return e.Message }

func InvalidRequest(message string) error {
	return &RequestError{Code: CodeInvalidRequest, Message: message}
}

func InvalidService(message string) error {
	return &RequestError{Code: CodeInvalidService, Message: message}
}

// TicketError reports a ticket-level problem: malformed, expired,
// unknown principal, corrupted signature, already used, or wrong type.
// Err keeps the underlying cause reachable through errors.Is.
type TicketError struct {
	Code    string
	Message string
	Err     error
}

func (e *TicketError) Error() string { return e.Message }
func (e *TicketError) Unwrap() error { return e.Err }

func InvalidTicket(message string, cause error) error {
	return &TicketError{Code: CodeInvalidTicket, Message: message, Err: cause}
}

// InternalError reports unexpected infrastructure failure. CAS hides
// internals from clients, so it renders like any other failure.
type InternalError struct {
	Message string
	Err     error
}

func (e *InternalError) Error() string { return e.Message }
func (e *InternalError) Unwrap() error { return e.Err }

func Internal(message string, cause error) error {
	return &InternalError{Message: message, Err: cause}
}

// CodeOf maps any error onto its CAS failure code and client-visible
// message. Unrecognized errors collapse to INTERNAL_ERROR with a
// generic message so nothing internal leaks over the wire.
func CodeOf(err error) (code, message string) {
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return reqErr.Code, reqErr.Message
	}

	var ticketErr *TicketError
	if errors.As(err, &ticketErr) {
		return ticketErr.Code, ticketErr.Message
	}

	return CodeInternalError, "internal error"
}
