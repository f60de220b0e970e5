// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package forecast

import (
	"context"
	"errors"
)

// The forecast error taxonomy. Every error returned by Repository.FetchForecast
// and CityForecastUseCase.Execute matches one of these with errors.Is, or is a
// *CustomError, or is a context error.
var (
	ErrSomethingWentWrong   = errors.New("something went wrong")
	ErrInvalidValue         = errors.New("invalid value")
	ErrNoInternetConnection = errors.New("no internet connection")
	ErrCityNotFound         = errors.New("city not found")
)

// CustomError carries caller-supplied detail.
type CustomError struct {
	Message string
}

func (e *CustomError) Error() string {
	return e.Message
}

// Custom returns a *CustomError with msg.
func Custom(msg string) error {
	return &CustomError{Message: msg}
}

// IsForecastError reports whether err already belongs to the taxonomy.
func IsForecastError(err error) bool {
	var ce *CustomError
	return errors.Is(err, ErrSomethingWentWrong) ||
		errors.Is(err, ErrInvalidValue) ||
		errors.Is(err, ErrNoInternetConnection) ||
		errors.Is(err, ErrCityNotFound) ||
		errors.As(err, &ce)
}

// Classify maps err into the taxonomy. Taxonomy errors and context errors are
// returned unchanged; anything else is wrapped as ErrSomethingWentWrong.
func Classify(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	case IsForecastError(err):
		return err
	default:
		return &wrapped{kind: ErrSomethingWentWrong, cause: err}
	}
}

// wrapped keeps the original cause reachable while presenting the taxonomy
// error's text.
type wrapped struct {
	kind  error
	cause error
}

func (w *wrapped) Error() string {
	return w.kind.Error() + ": " + w.cause.Error()
}

func (w *wrapped) Unwrap() []error {
	return []error{w.kind, w.cause}
}

// UserMessage is the text shown for err.
func UserMessage(err error) string {
	var ce *CustomError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &ce):
		return ce.Message
	case errors.Is(err, ErrCityNotFound):
		return "No results found."
	case errors.Is(err, ErrNoInternetConnection):
		return "No internet connection. Check your network and try again."
	case errors.Is(err, ErrInvalidValue):
		return "Invalid input."
	default:
		return "Something went wrong. Please try again."
	}
}
