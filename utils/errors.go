package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/dgrijalva/jwt-go"
	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// ErrorKind classifies failures for the HTTP layer.
type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindValidation
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindConflict
)

// Status maps the kind to its HTTP status code.
func (k ErrorKind) Status() int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// AppError is an error with a kind and a message safe to show to clients.
type AppError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Err }

func BadRequest(msg string) *AppError   { return &AppError{Kind: KindValidation, Message: msg} }
func Unauthorized(msg string) *AppError { return &AppError{Kind: KindUnauthorized, Message: msg} }
func Forbidden(msg string) *AppError    { return &AppError{Kind: KindForbidden, Message: msg} }
func NotFound(msg string) *AppError     { return &AppError{Kind: KindNotFound, Message: msg} }
func Conflict(msg string) *AppError     { return &AppError{Kind: KindConflict, Message: msg} }

// Internal wraps an unexpected failure. The message is shown to the client.
func Internal(msg string, err error) *AppError {
	return &AppError{Kind: KindInternal, Message: msg, Err: err}
}

const internalMessage = "Internal Server Error"

// ErrInvalidBody marks a request body that could not be decoded.
var ErrInvalidBody = errors.New("invalid request body")

// Translate normalizes any error returned by a service, the store, the token
// parser or the validator into an AppError.
func Translate(err error) *AppError {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		if appErr.Message == "" {
			appErr.Message = internalMessage
		}
		if appErr.Kind == KindInternal && appErr.Err != nil {
			log.Printf("%s: %v", appErr.Message, appErr.Err)
		}
		return appErr
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return &AppError{Kind: KindValidation, Message: validationMessage(verrs[0]), Err: err}
	}

	if mongo.IsDuplicateKeyError(err) {
		return &AppError{Kind: KindConflict, Message: fmt.Sprintf("Duplicate %s entered.", duplicateField(err)), Err: err}
	}

	if errors.Is(err, primitive.ErrInvalidHex) {
		return &AppError{Kind: KindValidation, Message: "Resource not found. Invalid id", Err: err}
	}

	var jwtErr *jwt.ValidationError
	if errors.As(err, &jwtErr) {
		if jwtErr.Errors&jwt.ValidationErrorExpired != 0 {
			return &AppError{Kind: KindUnauthorized, Message: "Token expired, please login to continue.", Err: err}
		}
		return &AppError{Kind: KindUnauthorized, Message: "Invalid token, please login to continue.", Err: err}
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.Is(err, ErrInvalidBody) || errors.As(err, &syntaxErr) || errors.As(err, &typeErr) ||
		errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return &AppError{Kind: KindValidation, Message: "Invalid request body.", Err: err}
	}

	log.Printf("unhandled error: %v", err)
	return &AppError{Kind: KindInternal, Message: internalMessage, Err: err}
}

func validationMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("Please enter %s.", field)
	case "email":
		return "Please enter a valid email address."
	case "min":
		if fe.Kind().String() == "string" {
			return fmt.Sprintf("%s must be at least %s characters long.", field, fe.Param())
		}
		return fmt.Sprintf("%s must contain at least %s entries.", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s cannot exceed %s characters.", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s.", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "gt", "gte", "lt", "lte":
		return fmt.Sprintf("%s is out of range.", field)
	default:
		return fmt.Sprintf("%s is invalid.", field)
	}
}

// duplicateField pulls the key name out of an E11000 message such as
// `... index: email_1 dup key: { email: "a@x.com" }`.
func duplicateField(err error) string {
	msg := err.Error()
	if i := strings.Index(msg, "dup key: {"); i >= 0 {
		rest := strings.TrimSpace(msg[i+len("dup key: {"):])
		if j := strings.Index(rest, ":"); j > 0 {
			return strings.TrimSpace(rest[:j])
		}
	}
	return "value"
}
