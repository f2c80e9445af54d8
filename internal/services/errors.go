// Package services holds shared error markers for the render pipeline and
// wrappers around external tools.
package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrValidation marks an assignment rejected by a variable's domain.
	ErrValidation = errors.New("validation error")
	// ErrIncomplete marks a consent request made before every mandatory
	// variable held a value.
	ErrIncomplete = errors.New("incomplete parameter set")
	// ErrMapping marks an equivalence-mapper invocation that violated the
	// completeness contract. This is an integration bug, never recovered.
	ErrMapping = errors.New("mapping contract violation")
	// ErrExport marks a failure while writing WAV or MIDI output.
	ErrExport = errors.New("export error")
	// ErrExternalTool marks a failure in a wrapped external binary.
	ErrExternalTool = errors.New("external tool error")
)

// Wrap builds an error message that includes component context while tagging
// it with the provided marker for later classification. The marker should be
// one of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrExternalTool
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
