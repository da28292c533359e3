// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package a2a

import (
	"errors"
	"fmt"
)

// JSON-RPC and A2A-specific error codes.
const (
	ErrorCodeTaskNotFound                  = -32001
	ErrorCodeTaskNotCancelable             = -32002
	ErrorCodePushNotificationNotSupported  = -32003
	ErrorCodeUnsupportedOperation          = -32004
	ErrorCodeContentTypeNotSupported       = -32005
	ErrorCodeJSONParse                     = -32700
	ErrorCodeInvalidRequest                = -32600
	ErrorCodeMethodNotFound                = -32601
	ErrorCodeInvalidParams                 = -32602
	ErrorCodeInternalError                 = -32603
)

// Error is a JSON-RPC error object carried in responses.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitzero"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("a2a error %d: %s", e.Code, e.Message)
}

// WithData returns a copy of the error carrying additional detail.
func (e *Error) WithData(data any) *Error {
	return &Error{Code: e.Code, Message: e.Message, Data: data}
}

// NewError creates an Error with the given code and message.
func NewError(code int, message string) *Error {
	return &Error{Code: code, Message: message}
}

// A2A protocol errors.
var (
	ErrTaskNotFound                 = NewError(ErrorCodeTaskNotFound, "Task not found")
	ErrTaskNotCancelable            = NewError(ErrorCodeTaskNotCancelable, "Task cannot be canceled")
	ErrPushNotificationNotSupported = NewError(ErrorCodePushNotificationNotSupported, "Push Notification is not supported")
	ErrUnsupportedOperation         = NewError(ErrorCodeUnsupportedOperation, "This operation is not supported")
	ErrContentTypeNotSupported      = NewError(ErrorCodeContentTypeNotSupported, "Content type not supported")
	ErrJSONParse                    = NewError(ErrorCodeJSONParse, "Invalid JSON payload")
	ErrInvalidRequest               = NewError(ErrorCodeInvalidRequest, "Request payload validation error")
	ErrMethodNotFound               = NewError(ErrorCodeMethodNotFound, "Method not found")
	ErrInvalidParams                = NewError(ErrorCodeInvalidParams, "Invalid parameters")
	ErrInternal                     = NewError(ErrorCodeInternalError, "Internal error")
)

// AsError coerces an arbitrary error into a protocol *Error. Non-protocol
// errors map to InternalError with the original text as data so they are
// reported rather than silently dropped.
func AsError(err error) *Error {
	if err == nil {
		return nil
	}
	var protoErr *Error
	if errors.As(err, &protoErr) {
		return protoErr
	}
	return ErrInternal.WithData(err.Error())
}
