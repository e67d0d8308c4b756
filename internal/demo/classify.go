package demo

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/hostkit/statedemo/internal/models"
	"github.com/hostkit/statedemo/internal/statesvc"
)

// classify maps a failed operation to the record the error surface
// shows. Typed errors decide the category; message probing remains as a
// fallback for errors that arrive without useful types.
func classify(op string, err error) models.ErrorRecord {
	return models.ErrorRecord{
		Category:  categorize(err),
		Message:   err.Error(),
		Details:   errorDetails(err),
		Trace:     errorTrace(err),
		Operation: op,
		Time:      time.Now(),
	}
}

func categorize(err error) models.ErrorCategory {
	var validationErr *models.ValidationError
	var sizeErr *statesvc.SizeError
	var netErr net.Error
	switch {
	case errors.Is(err, statesvc.ErrUnavailable),
		errors.Is(err, statesvc.ErrNotConfigured),
		errors.Is(err, statesvc.ErrQuotaExceeded):
		return models.CategoryService
	case errors.As(err, &validationErr),
		errors.As(err, &sizeErr):
		return models.CategoryValidation
	case errors.Is(err, statesvc.ErrOffline),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled),
		errors.As(err, &netErr):
		return models.CategoryNetwork
	}
	return categorizeMessage(err.Error())
}

// categorizeMessage probes the text for known markers, tried in a fixed
// order with the first match winning.
func categorizeMessage(msg string) models.ErrorCategory {
	lower := strings.ToLower(msg)
	switch {
	case strings.Contains(lower, "service not available"),
		strings.Contains(lower, "not configured"):
		return models.CategoryService
	case strings.Contains(lower, "validation"),
		strings.Contains(lower, "invalid"):
		return models.CategoryValidation
	case strings.Contains(lower, "network"),
		strings.Contains(lower, "fetch"):
		return models.CategoryNetwork
	}
	return models.CategoryUnknown
}

// errorDetails extracts a structured payload from typed errors so the
// expanded error view has something concrete to show.
func errorDetails(err error) any {
	var validationErr *models.ValidationError
	if errors.As(err, &validationErr) {
		return map[string]any{"violations": validationErr.Violations}
	}
	var sizeErr *statesvc.SizeError
	if errors.As(err, &sizeErr) {
		return map[string]any{"size": sizeErr.Size, "limit": sizeErr.Limit}
	}
	return nil
}

// errorTrace renders the wrap chain, outermost first. It stands in for
// the stack trace a client would print in the expanded view.
func errorTrace(err error) string {
	var b strings.Builder
	for depth := 0; err != nil; depth++ {
		if depth > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%*s%s", depth*2, "", err.Error())
		err = errors.Unwrap(err)
	}
	return b.String()
}
