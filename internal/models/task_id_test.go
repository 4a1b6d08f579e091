package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glossa-labs/glossa-backend/internal/pkg/apperror"
)

func TestFormatTaskID(t *testing.T) {
	assert.Equal(t, "42", FormatTaskID("eth", 42, true))
	assert.Equal(t, "xdai/42", FormatTaskID("xdai", 42, false))
	assert.Equal(t, "xdai/0", FormatTaskID("xdai", 0, false))
}

func TestSplitTaskID(t *testing.T) {
	key, localID, err := SplitTaskID("xdai/42")
	require.NoError(t, err)
	assert.Equal(t, "xdai", key)
	assert.Equal(t, uint64(42), localID)

	// Голый номер — нативный деплоймент, ключ пустой.
	key, localID, err = SplitTaskID("7")
	require.NoError(t, err)
	assert.Equal(t, "", key)
	assert.Equal(t, uint64(7), localID)
}

func TestSplitTaskID_RoundTrip(t *testing.T) {
	key, localID, err := SplitTaskID(FormatTaskID("bsc", 1337, false))
	require.NoError(t, err)
	assert.Equal(t, "bsc", key)
	assert.Equal(t, uint64(1337), localID)
}

func TestSplitTaskID_Malformed(t *testing.T) {
	for _, id := range []string{"", "  ", "/42", "xdai/", "xdai/a/42", "xdai/-1", "abc"} {
		_, _, err := SplitTaskID(id)
		assert.True(t, apperror.IsRouting(err), "ожидалась ошибка маршрутизации для %q", id)
	}
}
