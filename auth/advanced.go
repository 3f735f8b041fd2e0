package auth

import (
	"context"
	"fmt"

	zxcvbn "github.com/nbutton23/zxcvbn-go"
)

// ValidateOptions control the advanced master password checks layered on top
// of the basic character policy.
type ValidateOptions struct {
	// MinZXCVBNScore is the minimum acceptable zxcvbn score (0-4).
	MinZXCVBNScore int
	// EnableHIBP turns on the k-anonymity breach lookup. Network failures
	// fail open: a breached-password database being unreachable should not
	// block account creation.
	EnableHIBP bool
}

// DefaultValidateOptions requires a zxcvbn score of 3 and skips HIBP.
func DefaultValidateOptions() ValidateOptions {
	return ValidateOptions{MinZXCVBNScore: 3, EnableHIBP: false}
}

// ValidateMasterPasswordAdvanced runs the character policy, a zxcvbn strength
// estimate, and optionally the HIBP breach check.
func ValidateMasterPasswordAdvanced(ctx context.Context, pw string, opts ValidateOptions) error {
	if err := ValidateMasterPassword(pw); err != nil {
		return err
	}

	strength := zxcvbn.PasswordStrength(pw, nil)
	if strength.Score < opts.MinZXCVBNScore {
		return fmt.Errorf("password too guessable (score %d, need %d)", strength.Score, opts.MinZXCVBNScore)
	}

	if opts.EnableHIBP {
		result, err := CheckHIBP(ctx, pw)
		if err != nil {
			// fail open, see ValidateOptions
			return nil
		}
		if result.Found {
			return fmt.Errorf("password appeared in %d known breaches", result.Count)
		}
	}

	return nil
}
