package datagen

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMasterCreatesOutputFiles(t *testing.T) {
	dir, err := os.MkdirTemp("", "chessplay-datagen-*")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	master, err := NewMaster(2, 4, dir, 42, false)
	require.NoError(t, err)
	defer master.Close()

	assert.Len(t, master.workers, 2)
	for id := 0; id < 2; id++ {
		path := filepath.Join(dir, fmt.Sprintf("minke_data%d.vf", id))
		_, statErr := os.Stat(path)
		assert.NoError(t, statErr)
	}
}

func TestMasterResumesCountersFromLedger(t *testing.T) {
	dir, err := os.MkdirTemp("", "chessplay-datagen-*")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	master, err := NewMaster(1, 4, dir, 7, false)
	require.NoError(t, err)
	require.NoError(t, master.ledger.Save(0, 5, 500))
	master.Close()

	master2, err := NewMaster(1, 4, dir, 7, false)
	require.NoError(t, err)
	defer master2.Close()

	assert.EqualValues(t, 5, master2.workers[0].GamesPlayed())
	assert.EqualValues(t, 500, master2.workers[0].PositionsPacked())
}

func TestNewMasterCompressSuffixesOutputFiles(t *testing.T) {
	dir, err := os.MkdirTemp("", "chessplay-datagen-*")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	master, err := NewMaster(1, 4, dir, 99, true)
	require.NoError(t, err)
	defer master.Close()

	path := filepath.Join(dir, "minke_data0.vf.gz")
	_, statErr := os.Stat(path)
	assert.NoError(t, statErr)
}
