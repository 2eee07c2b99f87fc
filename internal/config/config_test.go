package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetTunableClampsToBounds(t *testing.T) {
	defer func() { Settings.Search.RFPMarginPerPly = 80 }()

	assert.True(t, Set("RFPMarginPerPly", "9999"))
	assert.Equal(t, 500, Settings.Search.RFPMarginPerPly)

	assert.True(t, Set("rfpmarginperply", "-5"))
	assert.Equal(t, 1, Settings.Search.RFPMarginPerPly)
}

func TestSetToggleIsCaseInsensitive(t *testing.T) {
	defer func() { Settings.Search.UseLMP = true }()

	assert.True(t, Set("uselmp", "false"))
	assert.False(t, Settings.Search.UseLMP)
}

func TestSetUnknownNameReturnsFalse(t *testing.T) {
	assert.False(t, Set("NotARealOption", "1"))
}

func TestLoadOverridesFromFile(t *testing.T) {
	defer func() { Settings.Search.NMPBaseR = 7 }()

	f, err := os.CreateTemp("", "chessplay-config-*.toml")
	require.NoError(t, err)
	defer os.Remove(f.Name())

	_, err = f.WriteString("[Search]\nNMPBaseR = 5\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	require.NoError(t, Load(f.Name()))
	assert.Equal(t, 5, Settings.Search.NMPBaseR)
}

func TestLoadMissingFileIsNotFatal(t *testing.T) {
	err := Load("/nonexistent/chessplay-config.toml")
	assert.Error(t, err)
}
