// Package datagen implements the self-play data generation pipeline (C14):
// multi-threaded workers that play games from randomized openings and write
// packed training records in a Viriformat-style binary layout, grounded on
// original_source/src/datagen/{datagen.h,viriformat.h,packed_position.h,marlinformat.h}.
package datagen

import (
	"encoding/binary"
	"io"

	"github.com/hailam/chessplay/internal/board"
)

// GameResult is the outcome of a finished game, recorded from White's
// perspective (§3 PackedPosition, grounded on packed_position.h's GameResult
// enum).
type GameResult uint8

const (
	ResultLoss GameResult = 0
	ResultDraw GameResult = 1
	ResultWin  GameResult = 2
)

// unmovedRookMarker is the special "unmoved rook" nibble value used so a
// replaying trainer can still tell which rooks retain castling rights
// without re-deriving it from the castling-mask field.
const unmovedRookMarker = 6

// PackedPosition is the 32-byte "marlinformat" position record (§3, grounded
// on packed_position.h).
type PackedPosition struct {
	Occupancy uint64
	Pieces    [16]uint8 // two 4-bit nibbles per occupied square, lsb-to-msb order
	StmEp     uint8     // high bit = side to move is Black, low 7 bits = ep square or 0x7f
	HalfMove  uint8
	FullMove  uint16
	Score     int16
	Result    GameResult
	_         uint8 // padding
}

const packedPositionSize = 32

// EncodePackedPosition builds a PackedPosition snapshot of pos with the
// given score (from the position's side-to-move perspective, matching how
// the search reports it). Result defaults to ResultDraw and is overwritten
// by (*Viriformat).Write once the game concludes, mirroring
// PackedPosition::set_result being called after construction in the
// original.
func EncodePackedPosition(pos *board.Position, score int16) PackedPosition {
	var pp PackedPosition
	pp.Occupancy = uint64(pos.AllOccupied)

	occ := pos.AllOccupied
	idx := 0
	highNibble := false
	for occ != 0 {
		sq := occ.PopLSB()
		piece := pos.PieceAt(sq)
		pieceType := piece.Type()

		if pieceType == board.Rook && isUnmovedRookSquare(pos, sq) {
			pieceType = unmovedRookMarker
		}

		color := uint8(0)
		if piece.Color() == board.Black {
			color = 1
		}
		packed := uint8(pieceType) | (color << 3)

		if highNibble {
			pp.Pieces[idx] |= packed << 4
			idx++
		} else {
			pp.Pieces[idx] = packed
		}
		highNibble = !highNibble
	}

	if pos.SideToMove == board.Black {
		pp.StmEp = 0x80
	}
	if pos.EnPassant != board.NoSquare {
		pp.StmEp |= uint8(pos.EnPassant)
	} else {
		pp.StmEp |= 0x7f
	}

	pp.HalfMove = uint8(pos.HalfMoveClock)
	pp.FullMove = uint16(pos.FullMoveNumber)
	pp.Score = score
	pp.Result = ResultDraw
	return pp
}

// isUnmovedRookSquare reports whether the rook on sq is the one tracked by
// the corresponding castling-rights bit (standard, non-Chess960 rook
// squares only, per §1's Chess960 non-goal).
func isUnmovedRookSquare(pos *board.Position, sq board.Square) bool {
	switch sq {
	case board.A1:
		return pos.CastlingRights&board.WhiteQueenSideCastle != 0
	case board.H1:
		return pos.CastlingRights&board.WhiteKingSideCastle != 0
	case board.A8:
		return pos.CastlingRights&board.BlackQueenSideCastle != 0
	case board.H8:
		return pos.CastlingRights&board.BlackKingSideCastle != 0
	default:
		return false
	}
}

// MarshalBinary writes the packed position in little-endian byte order.
func (pp PackedPosition) MarshalBinary() []byte {
	buf := make([]byte, packedPositionSize)
	binary.LittleEndian.PutUint64(buf[0:8], pp.Occupancy)
	copy(buf[8:24], pp.Pieces[:])
	buf[24] = pp.StmEp
	buf[25] = pp.HalfMove
	binary.LittleEndian.PutUint16(buf[26:28], pp.FullMove)
	binary.LittleEndian.PutUint16(buf[28:30], uint16(pp.Score))
	buf[30] = uint8(pp.Result)
	buf[31] = 0
	return buf
}

// UnmarshalPackedPosition is the inverse of MarshalBinary, used by the
// round-trip test in §8 ("encode(decode(packed)) == packed").
func UnmarshalPackedPosition(buf []byte) PackedPosition {
	var pp PackedPosition
	pp.Occupancy = binary.LittleEndian.Uint64(buf[0:8])
	copy(pp.Pieces[:], buf[8:24])
	pp.StmEp = buf[24]
	pp.HalfMove = buf[25]
	pp.FullMove = binary.LittleEndian.Uint16(buf[26:28])
	pp.Score = int16(binary.LittleEndian.Uint16(buf[28:30]))
	pp.Result = GameResult(buf[30])
	return pp
}

// moveScore is the 4-byte per-ply record: a packed move plus the score
// reported for it.
type moveScore struct {
	packedMove uint16
	score      int16
}

// packMove encodes a board.Move into the Viriformat 16-bit move layout:
// bits 0-5 target square, bits 6-11 origin square, bits 12-13 promotion
// piece minus one (knight=0..queen=3) when promoting, bits 14-15 a flag
// (00=normal, 01=en passant, 10=castle, 11=promotion), grounded on
// viriformat.h's Viriformat::push.
func packMove(m board.Move) uint16 {
	packed := uint16(m.To()) | uint16(m.From())<<6
	switch {
	case m.IsEnPassant():
		packed |= 0b01 << 14
	case m.IsCastling():
		packed |= 0b10 << 14
	case m.IsPromotion():
		packed |= uint16(m.Promotion()-board.Knight) << 12
		packed |= 0b11 << 14
	}
	return packed
}

// Viriformat accumulates one game's worth of packed records: an initial
// position header followed by a (move, score) pair per ply, grounded on
// viriformat.h.
type Viriformat struct {
	initial PackedPosition
	moves   []moveScore
}

// NewViriformat starts a fresh record rooted at pos.
func NewViriformat(pos *board.Position) *Viriformat {
	return &Viriformat{initial: EncodePackedPosition(pos, 0)}
}

// Reset re-roots the accumulator at pos for the next game, reusing the
// underlying slice's storage.
func (v *Viriformat) Reset(pos *board.Position) {
	v.initial = EncodePackedPosition(pos, 0)
	v.moves = v.moves[:0]
}

// Push records a ply's move and score.
func (v *Viriformat) Push(m board.Move, score int16) {
	v.moves = append(v.moves, moveScore{packMove(m), score})
}

// Len returns the number of (move, score) pairs recorded so far.
func (v *Viriformat) Len() int {
	return len(v.moves)
}

// Write appends the packed position header, every recorded (move, score)
// pair, and a zero terminator to w, stamping result onto the header.
func (v *Viriformat) Write(w io.Writer, result GameResult) error {
	v.initial.Result = result
	if _, err := w.Write(v.initial.MarshalBinary()); err != nil {
		return err
	}

	buf := make([]byte, 4*(len(v.moves)+1))
	for i, ms := range v.moves {
		binary.LittleEndian.PutUint16(buf[i*4:i*4+2], ms.packedMove)
		binary.LittleEndian.PutUint16(buf[i*4+2:i*4+4], uint16(ms.score))
	}
	// Zero terminator: packedMove=0, score=0 (already zero from make()).

	_, err := w.Write(buf)
	return err
}
