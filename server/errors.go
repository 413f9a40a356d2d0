package server

import "net/http"

// AppError is an error with a wire code and an HTTP status.
type AppError struct {
	Code   string
	Msg    string
	Status int
}

func (e *AppError) Error() string { return e.Code + ": " + e.Msg }

func errUnauthorized() *AppError {
	return &AppError{Code: "Unauthorized", Msg: "invalid or missing credentials", Status: http.StatusUnauthorized}
}

func errInvalidArgument(msg string) *AppError {
	return &AppError{Code: "InvalidArgument", Msg: msg, Status: http.StatusBadRequest}
}

func errNotFound() *AppError {
	return &AppError{Code: "NotFound", Msg: "session not found", Status: http.StatusNotFound}
}

func errNotAMember() *AppError {
	return &AppError{Code: "NotAMember", Msg: "not a member of this session", Status: http.StatusForbidden}
}
