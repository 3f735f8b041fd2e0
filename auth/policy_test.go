package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateMasterPassword(t *testing.T) {
	tests := []struct {
		name    string
		pw      string
		wantErr bool
	}{
		{"valid", "Secure2023!ABC", false},
		{"too short", "Sh0rt!pw", true},
		{"no uppercase", "secure2023!abc", true},
		{"no lowercase", "SECURE2023!ABC", true},
		{"no digit", "SecurePass!ABC", true},
		{"no special", "Secure2023ABCd", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateMasterPassword(tt.pw)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateMasterPasswordAdvanced(t *testing.T) {
	ctx := context.Background()

	opts := DefaultValidateOptions()
	opts.MinZXCVBNScore = 0
	require.NoError(t, ValidateMasterPasswordAdvanced(ctx, "Secure2023!ABC", opts))

	// Character policy still applies before any scoring.
	assert.Error(t, ValidateMasterPasswordAdvanced(ctx, "weak", opts))

	// A dictionary word with the usual suffix decorations scores poorly.
	strict := DefaultValidateOptions()
	strict.MinZXCVBNScore = 4
	assert.Error(t, ValidateMasterPasswordAdvanced(ctx, "Password123!@#", strict))
}

func TestDefaultValidateOptions(t *testing.T) {
	opts := DefaultValidateOptions()
	assert.Equal(t, 3, opts.MinZXCVBNScore)
	assert.False(t, opts.EnableHIBP)
}
