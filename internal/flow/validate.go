package flow

import (
	"fmt"
	"strings"
	"time"
)

// ValidationError describes rejected input. The engine re-renders the current
// prompt with Hint prepended; it never mutates the session on failure.
type ValidationError struct {
	Hint string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation: %s", e.Hint)
}

func invalid(hint string) error {
	return &ValidationError{Hint: hint}
}

// validateDigits accepts a non-empty string of ASCII digits.
func validateDigits(raw string) (string, error) {
	v := strings.TrimSpace(raw)
	if v == "" || !isDigits(v) {
		return "", invalid("El código debe ser numérico. Por favor, inténtalo de nuevo:")
	}
	return v, nil
}

// validateOrder accepts exactly seven digits.
func validateOrder(raw string) (string, error) {
	v := strings.TrimSpace(raw)
	if len(v) != 7 || !isDigits(v) {
		return "", invalid("El número de orden debe ser numérico y contener 7 dígitos. Por favor, inténtalo de nuevo:")
	}
	return v, nil
}

// validateClock accepts a 24-hour HH:MM time of day.
func validateClock(raw string) (string, error) {
	v := strings.TrimSpace(raw)
	if _, err := time.Parse("15:04", v); err != nil {
		return "", invalid("La hora debe tener formato HH:MM (ej: 09:30). Por favor, inténtalo de nuevo:")
	}
	return v, nil
}

// validateNonEmpty accepts any text with visible content.
func validateNonEmpty(raw string) (string, error) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return "", invalid("La respuesta no puede estar vacía. Por favor, inténtalo de nuevo:")
	}
	return v, nil
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
