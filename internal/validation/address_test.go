package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsHexAddress(t *testing.T) {
	assert.True(t, IsHexAddress("0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed"))
	assert.True(t, IsHexAddress("0x0000000000000000000000000000000000000000"))

	assert.False(t, IsHexAddress("5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed"))
	assert.False(t, IsHexAddress("0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAe"))
	assert.False(t, IsHexAddress("0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAeg"))
	assert.False(t, IsHexAddress(""))
}

func TestChecksumAddress(t *testing.T) {
	// Эталонные вектора из EIP-55.
	vectors := []string{
		"0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed",
		"0xfB6916095ca1df60bB79Ce92cE3Ea74c37c5d359",
		"0xdbF03B407c01E7cD3CBea99509d93f8DDDC8C6FB",
		"0xD1220A0cf47c7B9Be7A2E6BA89F429762e7b9aDb",
	}
	for _, want := range vectors {
		got, err := ChecksumAddress(strings.ToLower(want))
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := ChecksumAddress("не адрес")
	assert.Error(t, err)
}

func TestNormalizeAddress(t *testing.T) {
	want := "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed"

	// Записи в одном регистре принимаются и приводятся к контрольной сумме.
	got, err := NormalizeAddress(strings.ToLower(want))
	require.NoError(t, err)
	assert.Equal(t, want, got)

	got, err = NormalizeAddress("0x" + strings.ToUpper(want[2:]))
	require.NoError(t, err)
	assert.Equal(t, want, got)

	// Смешанный регистр с неверной контрольной суммой — ошибка.
	broken := "0x5Aaeb6053F3E94C9b9A09f33669435E7Ef1BeAed"
	_, err = NormalizeAddress(broken)
	assert.Error(t, err)
}

func TestSameAddress(t *testing.T) {
	assert.True(t, SameAddress("0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed", "0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed"))
	assert.False(t, SameAddress("0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed", "0xfB6916095ca1df60bB79Ce92cE3Ea74c37c5d359"))
}
