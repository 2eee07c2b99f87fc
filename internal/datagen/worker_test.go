package datagen

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hailam/chessplay/internal/board"
	"github.com/hailam/chessplay/internal/engine"
)

func TestMaterialForNormalizationStartPosition(t *testing.T) {
	pos := board.NewPosition()
	assert.Equal(t, 78, materialForNormalization(pos))
}

func TestNormalizeScoreStartPosition(t *testing.T) {
	pos := board.NewPosition()
	// With the start position's material total of 78, a mid-size centipawn
	// score normalizes to a non-zero value.
	normalized := normalizeScore(100, pos)
	assert.NotZero(t, normalized)
}

func newTestWorker(t *testing.T) *DatagenWorker {
	t.Helper()
	tt := engine.NewTranspositionTable(4)
	pawnTable := engine.NewPawnTable(1)
	return NewDatagenWorker(0, tt, pawnTable, 1234)
}

func TestRandomOpeningProducesLegalPosition(t *testing.T) {
	dw := newTestWorker(t)
	pos := board.NewPosition()

	ok := dw.randomOpening(pos)
	assert.True(t, ok)
	assert.True(t, pos.HasLegalMoves())
}

func TestSearchPlyReturnsLegalMove(t *testing.T) {
	dw := newTestWorker(t)
	pos := board.NewPosition()

	move, _ := dw.searchPly(pos, 3, 10_000, 50_000)
	assert.NotEqual(t, board.NoMove, move)

	legal := pos.GenerateLegalMoves()
	assert.True(t, legal.Contains(move))
}

func TestResultForMover(t *testing.T) {
	assert.Equal(t, ResultWin, resultForMover(true, true))
	assert.Equal(t, ResultLoss, resultForMover(true, false))
	assert.Equal(t, ResultWin, resultForMover(false, false))
	assert.Equal(t, ResultLoss, resultForMover(false, true))
}
