package security

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateVerificationCode_FixedWidth(t *testing.T) {
	for i := 0; i < 200; i++ {
		code, err := GenerateVerificationCode()
		require.NoError(t, err)
		require.Len(t, code, 6)
		for _, r := range code {
			assert.True(t, r >= '0' && r <= '9', "code %q", code)
		}
	}
}

func TestGenerateVerificationCodeInsecure_FixedWidth(t *testing.T) {
	for i := 0; i < 200; i++ {
		code := GenerateVerificationCodeInsecure()
		require.Len(t, code, 6)
	}
}
