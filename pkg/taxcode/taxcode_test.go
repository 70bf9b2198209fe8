package taxcode

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	assert.Equal(t, "0101234567-001", Normalize("MST 0101234567-001"))
	assert.Equal(t, "0309876543", Normalize(" 0309.876.543 "))
	assert.Equal(t, "", Normalize("N/A"))
}

func TestValidate(t *testing.T) {
	for _, ok := range []string{"0101234565", "0101234565-001", "001099012345", "MST: 0312345678"} {
		assert.NoError(t, Validate(ok), ok)
	}
	for _, bad := range []string{"12345", "0101234565-01", "0101234565-001-002", "01012345651"} {
		assert.Error(t, Validate(bad), bad)
	}
}

func TestCheckDigit(t *testing.T) {
	d, ok := CheckDigit("010123456")
	assert.True(t, ok)
	assert.Equal(t, byte('5'), d)

	_, ok = CheckDigit("000000000")
	assert.False(t, ok, "resto 0 no produce dígito válido")

	_, ok = CheckDigit("01A123456")
	assert.False(t, ok)
}

func TestHasValidCheckDigit(t *testing.T) {
	assert.True(t, HasValidCheckDigit("0101234565"))
	assert.True(t, HasValidCheckDigit("0101234565-002"))
	assert.True(t, HasValidCheckDigit("001099012345"))
	assert.False(t, HasValidCheckDigit("0101234567"))
	assert.False(t, HasValidCheckDigit("0000000000"))
	assert.False(t, HasValidCheckDigit("123"))
}
