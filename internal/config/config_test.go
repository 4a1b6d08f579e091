package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDeployments(t *testing.T) {
	raw := `[
		{"key":"eth","native":true,"taskContract":"0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed","arbitratorContract":"0xfb6916095ca1df60bb79ce92ce3ea74c37c5d359"},
		{"key":"xdai","taskContract":"0xdbf03b407c01e7cd3cbea99509d93f8dddc8c6fb","arbitratorContract":"0xd1220a0cf47c7b9be7a2e6ba89f429762e7b9adb"}
	]`

	deployments, err := parseDeployments(raw)
	require.NoError(t, err)
	require.Len(t, deployments, 2)

	assert.Equal(t, "eth", deployments[0].Key)
	assert.True(t, deployments[0].Native)
	assert.False(t, deployments[1].Native)

	// Адреса приведены к EIP-55 записи.
	assert.Equal(t, "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed", deployments[0].TaskContract)
	assert.Equal(t, "0xD1220A0cf47c7B9Be7A2E6BA89F429762e7b9aDb", deployments[1].ArbitratorContract)
}

func TestParseDeployments_Invalid(t *testing.T) {
	valid := `"taskContract":"0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed","arbitratorContract":"0xfb6916095ca1df60bb79ce92ce3ea74c37c5d359"`

	cases := map[string]string{
		"пусто":          "",
		"не json":        "nonsense",
		"пустой список":  "[]",
		"нет нативного":  `[{"key":"eth",` + valid + `}]`,
		"два нативных":   `[{"key":"eth","native":true,` + valid + `},{"key":"xdai","native":true,` + valid + `}]`,
		"дубль ключа":    `[{"key":"eth","native":true,` + valid + `},{"key":"eth",` + valid + `}]`,
		"слэш в ключе":   `[{"key":"et/h","native":true,` + valid + `}]`,
		"пустой ключ":    `[{"key":"","native":true,` + valid + `}]`,
		"мусорный адрес": `[{"key":"eth","native":true,"taskContract":"0x12","arbitratorContract":"0x34"}]`,
	}
	for name, raw := range cases {
		_, err := parseDeployments(raw)
		assert.Error(t, err, name)
	}
}
