package datagen

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hailam/chessplay/internal/board"
)

func TestEncodePackedPositionRoundTrip(t *testing.T) {
	pos := board.NewPosition()
	pp := EncodePackedPosition(pos, 37)

	buf := pp.MarshalBinary()
	require.Len(t, buf, packedPositionSize)

	decoded := UnmarshalPackedPosition(buf)
	assert.Equal(t, pp, decoded)
}

func TestEncodePackedPositionFields(t *testing.T) {
	pos := board.NewPosition()
	pp := EncodePackedPosition(pos, -200)

	assert.Equal(t, uint64(pos.AllOccupied), pp.Occupancy)
	assert.Equal(t, int16(-200), pp.Score)
	assert.Equal(t, uint8(0), pp.StmEp&0x80, "white to move should clear the side-to-move bit")
	assert.Equal(t, uint8(0x7f), pp.StmEp&0x7f, "no en passant square at the start position")
	assert.EqualValues(t, ResultDraw, pp.Result)
}

func TestEncodePackedPositionUnmovedRookMarker(t *testing.T) {
	pos := board.NewPosition()
	pp := EncodePackedPosition(pos, 0)

	// a1 is byte index 0, low nibble (occupancy bit 0 is set first).
	a1Nibble := pp.Pieces[0] & 0x0f
	assert.Equal(t, uint8(unmovedRookMarker), a1Nibble&0x07, "white rook on a1 should be tagged unmoved")
}

func TestPackMoveDistinguishesSpecialMoves(t *testing.T) {
	normal := board.NewMove(board.E2, board.E4, false)
	assert.Equal(t, uint16(0), packMove(normal)>>14)

	castle := board.NewCastling(board.E1, board.G1, true)
	assert.Equal(t, uint16(0b10), packMove(castle)>>14)
}

func TestViriformatWriteLayout(t *testing.T) {
	pos := board.NewPosition()
	v := NewViriformat(pos)

	move := board.NewMove(board.E2, board.E4, false)
	v.Push(move, 25)
	v.Push(board.NewMove(board.E7, board.E5, false), -10)

	var buf bytes.Buffer
	require.NoError(t, v.Write(&buf, ResultWin))

	expectedLen := packedPositionSize + 4*(v.Len()+1)
	assert.Equal(t, expectedLen, buf.Len())

	header := UnmarshalPackedPosition(buf.Bytes()[:packedPositionSize])
	assert.EqualValues(t, ResultWin, header.Result)

	terminator := buf.Bytes()[buf.Len()-4:]
	assert.Equal(t, []byte{0, 0, 0, 0}, terminator)
}
