package inventory

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/mamadbah2/importados/internal/domain/models"
)

// IDPrefix derives the two-letter prefix from the first letter of type and gender.
func IDPrefix(productType models.ProductType, gender models.Gender) (string, error) {
	typeCode := firstLetter(string(productType))
	genderCode := firstLetter(string(gender))
	if typeCode == "" || genderCode == "" {
		return "", fmt.Errorf("type and gender are required: %w", models.ErrInvalidInput)
	}
	return typeCode + genderCode, nil
}

// NextID scans existing catalog IDs sharing the prefix and returns the next one,
// zero padded to two digits (HW01, HW02, ... HW100).
func NextID(existing []string, productType models.ProductType, gender models.Gender) (string, error) {
	prefix, err := IDPrefix(productType, gender)
	if err != nil {
		return "", err
	}

	highest := 0
	for _, id := range existing {
		if !strings.HasPrefix(id, prefix) {
			continue
		}
		n, ok := trailingNumber(id[len(prefix):])
		if !ok {
			continue
		}
		if n > highest {
			highest = n
		}
	}

	return fmt.Sprintf("%s%02d", prefix, highest+1), nil
}

func firstLetter(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	r := []rune(value)[0]
	return string(unicode.ToUpper(r))
}

func trailingNumber(suffix string) (int, bool) {
	if suffix == "" {
		return 0, false
	}
	for _, r := range suffix {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(suffix)
	if err != nil {
		return 0, false
	}
	return n, true
}
