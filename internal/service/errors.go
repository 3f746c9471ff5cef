package service

import "github.com/gofiber/fiber/v2"

// Error is a domain error that carries the HTTP status it maps to.
type Error struct {
	code    int
	message string
}

func (e *Error) Error() string   { return e.message }
func (e *Error) StatusCode() int { return e.code }

var (
	ErrSessionNotFound = &Error{code: fiber.StatusNotFound, message: "session not found"}
	ErrSessionClosed   = &Error{code: fiber.StatusConflict, message: "session is no longer accepting messages"}
	ErrTicketNotFound  = &Error{code: fiber.StatusNotFound, message: "ticket not found"}
	ErrSessionBusy     = &Error{code: fiber.StatusTooManyRequests, message: "session is busy with another message"}
)
