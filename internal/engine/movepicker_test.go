package engine

import (
	"testing"

	"github.com/hailam/chessplay/internal/board"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestMovePickerTTMoveFirstAndOnce verifies §8's "TT move is yielded at most
// once and always first if legal."
func TestMovePickerTTMoveFirstAndOnce(t *testing.T) {
	pos := board.NewPosition()
	legal := pos.GenerateLegalMoves()
	require.Greater(t, legal.Len(), 0)
	ttMove := legal.Get(0)

	orderer := NewMoveOrderer()
	picker := NewMovePicker(pos, orderer, ttMove, 0, board.NoMove, false)

	first, ok := picker.Next()
	require.True(t, ok)
	assert.Equal(t, ttMove, first)

	seenAgain := false
	for {
		m, ok := picker.Next()
		if !ok {
			break
		}
		if m == ttMove {
			seenAgain = true
		}
	}
	assert.False(t, seenAgain, "TT move must not be yielded twice")
}

// TestMovePickerSkipQuietsDropsQuietMoves verifies §8's "No quiet move is
// yielded when skip_quiets is requested (except TT if noisy)."
func TestMovePickerSkipQuietsDropsQuietMoves(t *testing.T) {
	pos := board.NewPosition()
	orderer := NewMoveOrderer()
	picker := NewMovePicker(pos, orderer, board.NoMove, 0, board.NoMove, false)
	picker.SkipQuiets()

	for {
		m, ok := picker.Next()
		if !ok {
			break
		}
		assert.True(t, m.IsCapture() || m.IsEnPassant() || m.IsQueenPromotion(),
			"skip_quiets must not yield a quiet move, got %v", m)
	}
}

// TestMovePickerYieldsOnlyPseudoLegalMoves verifies §8's "Every move
// returned by the picker is pseudo-legal" (the picker's own contract is
// stronger: fully legal).
func TestMovePickerYieldsOnlyPseudoLegalMoves(t *testing.T) {
	pos, err := board.ParseFEN("r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1")
	require.NoError(t, err)

	orderer := NewMoveOrderer()
	picker := NewMovePicker(pos, orderer, board.NoMove, 0, board.NoMove, false)

	legal := pos.GenerateLegalMoves()
	legalSet := make(map[board.Move]bool, legal.Len())
	for i := 0; i < legal.Len(); i++ {
		legalSet[legal.Get(i)] = true
	}

	count := 0
	for {
		m, ok := picker.Next()
		if !ok {
			break
		}
		assert.True(t, legalSet[m], "picker yielded a move not in the legal set: %v", m)
		count++
	}
	assert.Equal(t, legal.Len(), count, "picker must yield every legal move exactly once")
}

// TestMovePickerQsearchDiscardsLosingCaptures verifies §4.8's qsearch
// contract: noisy moves only, with SEE<0 captures filtered rather than
// deferred (no bad-noisy stage in qsearch mode). The rook's only capture
// here (Rxd5) is defended twice over, a clean exchange loss.
func TestMovePickerQsearchDiscardsLosingCaptures(t *testing.T) {
	pos, err := board.ParseFEN("4k3/8/2p1p3/3p4/8/8/8/3RK3 w - - 0 1")
	require.NoError(t, err)

	badCapture := board.NewMove(board.D1, board.D5, true)
	require.True(t, pos.GenerateCaptures().Contains(badCapture), "test setup: Rxd5 must be a generated capture")
	require.False(t, SeeGE(pos, badCapture, 0), "test setup: Rxd5 must be a losing exchange")

	orderer := NewMoveOrderer()
	picker := NewMovePicker(pos, orderer, board.NoMove, 0, board.NoMove, true)

	for {
		m, ok := picker.Next()
		if !ok {
			break
		}
		assert.True(t, m.IsCapture() || m.IsEnPassant() || m.IsQueenPromotion(),
			"qsearch picker must only yield noisy moves, got %v", m)
		assert.NotEqual(t, badCapture, m, "qsearch picker must discard the SEE-losing capture, not defer it")
	}
}
