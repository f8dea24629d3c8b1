package asset

import (
	"fmt"
	"math/big"
	"regexp"
	"strings"

	clierr "github.com/dmoreno/swap-cli/internal/errors"
)

var decimalPattern = regexp.MustCompile(`^[0-9]+(\.[0-9]+)?$`)

// ParseUnits converts a human-readable decimal amount into the token's
// native integer units. The conversion is exact: fractional digits beyond
// the token's decimal grid are rejected, never rounded.
func ParseUnits(decimal string, decimals int) (*big.Int, error) {
	decimal = strings.TrimSpace(decimal)
	if decimals < 0 {
		return nil, clierr.New(clierr.CodeScaling, "decimals must be >= 0")
	}
	if !decimalPattern.MatchString(decimal) {
		return nil, clierr.New(clierr.CodeScaling, fmt.Sprintf("amount %q must be in decimal form like 1.23", decimal))
	}

	parts := strings.SplitN(decimal, ".", 2)
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if len(fracPart) > decimals {
		return nil, clierr.New(clierr.CodeScaling, fmt.Sprintf("decimal precision exceeds token decimals (%d)", decimals))
	}

	fracPart += strings.Repeat("0", decimals-len(fracPart))
	combined := strings.TrimLeft(intPart+fracPart, "0")
	if combined == "" {
		return big.NewInt(0), nil
	}
	out, ok := new(big.Int).SetString(combined, 10)
	if !ok {
		return nil, clierr.New(clierr.CodeScaling, "invalid decimal amount")
	}
	return out, nil
}

// FormatUnits converts native integer units back into a human-readable
// decimal string, trimming trailing fractional zeros.
func FormatUnits(baseUnits *big.Int, decimals int) string {
	if baseUnits == nil {
		return "0"
	}
	s := baseUnits.String()
	if decimals == 0 {
		return s
	}
	if len(s) <= decimals {
		s = strings.Repeat("0", decimals-len(s)+1) + s
	}
	intPart := s[:len(s)-decimals]
	fracPart := strings.TrimRight(s[len(s)-decimals:], "0")
	if fracPart == "" {
		return intPart
	}
	return intPart + "." + fracPart
}

// FormatUnitsString is FormatUnits over a base-10 integer string, as
// aggregator payloads carry amounts.
func FormatUnitsString(baseUnits string, decimals int) (string, error) {
	n, ok := new(big.Int).SetString(strings.TrimSpace(baseUnits), 10)
	if !ok || n.Sign() < 0 {
		return "", clierr.New(clierr.CodeScaling, fmt.Sprintf("amount %q must be a non-negative integer in base units", baseUnits))
	}
	return FormatUnits(n, decimals), nil
}
