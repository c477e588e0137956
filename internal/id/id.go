package id

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// New returns a fresh entity identifier.
func New() string {
	return uuid.NewString()
}

// Document number prefixes.
const (
	PrefixInvoice  = "INV"
	PrefixQuote    = "QUO"
	PrefixPurchase = "PUR"
)

// FormatNumber returns a document number like "INV-2025-0001".
func FormatNumber(prefix string, year, seq int) string {
	return fmt.Sprintf("%s-%04d-%04d", prefix, year, seq)
}

// ParseNumber parses "INV-2025-0001" into prefix, year, seq.
func ParseNumber(number string) (prefix string, year, seq int, err error) {
	parts := strings.SplitN(number, "-", 3)
	if len(parts) != 3 {
		return "", 0, 0, fmt.Errorf("invalid document number format: %q", number)
	}

	year, err = strconv.Atoi(parts[1])
	if err != nil {
		return "", 0, 0, fmt.Errorf("invalid year in document number %q: %w", number, err)
	}

	seq, err = strconv.Atoi(parts[2])
	if err != nil {
		return "", 0, 0, fmt.Errorf("invalid sequence in document number %q: %w", number, err)
	}

	return parts[0], year, seq, nil
}
