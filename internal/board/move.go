package board

import "fmt"

// Move encodes a chess move in 16 bits:
// bits 0-5:   from square (0-63)
// bits 6-11:  to square (0-63)
// bits 12-15: type tag
//
// The type tag distinguishes quiet moves from captures and carries the
// promotion piece, so a move's tactical nature never needs a position
// lookup to determine.
type Move uint16

// Type tags. Order matters only for the PromoCapture/Promo arithmetic below.
const (
	TypeRegular uint16 = iota
	TypeCapture
	TypeEnPassant
	TypeKingCastle
	TypeQueenCastle
	TypePromoKnight
	TypePromoBishop
	TypePromoRook
	TypePromoQueen
	TypePromoCaptureKnight
	TypePromoCaptureBishop
	TypePromoCaptureRook
	TypePromoCaptureQueen
)

// NoMove represents an invalid or null move.
const NoMove Move = 0

func packMove(from, to Square, tag uint16) Move {
	return Move(from) | Move(to)<<6 | Move(tag)<<12
}

// NewMove creates a regular (or capture) move.
func NewMove(from, to Square, capture bool) Move {
	if capture {
		return packMove(from, to, TypeCapture)
	}
	return packMove(from, to, TypeRegular)
}

// promoTag returns the base (non-capture) promotion tag for a piece type.
func promoTag(promo PieceType) uint16 {
	return TypePromoKnight + uint16(promo-Knight)
}

// NewPromotion creates a promotion move, with or without a capture.
func NewPromotion(from, to Square, promo PieceType, capture bool) Move {
	tag := promoTag(promo)
	if capture {
		tag += TypePromoCaptureKnight - TypePromoKnight
	}
	return packMove(from, to, tag)
}

// NewEnPassant creates an en passant capture move.
func NewEnPassant(from, to Square) Move {
	return packMove(from, to, TypeEnPassant)
}

// NewCastling creates a castling move (king's movement).
func NewCastling(from, to Square, kingside bool) Move {
	if kingside {
		return packMove(from, to, TypeKingCastle)
	}
	return packMove(from, to, TypeQueenCastle)
}

// From returns the origin square.
func (m Move) From() Square {
	return Square(m & 0x3F)
}

// To returns the destination square.
func (m Move) To() Square {
	return Square((m >> 6) & 0x3F)
}

// Type returns the raw 4-bit type tag.
func (m Move) Type() uint16 {
	return uint16(m>>12) & 0xF
}

// Promotion returns the promotion piece type (only valid if IsPromotion() is true).
func (m Move) Promotion() PieceType {
	t := m.Type()
	if t >= TypePromoCaptureKnight {
		return Knight + PieceType(t-TypePromoCaptureKnight)
	}
	return Knight + PieceType(t-TypePromoKnight)
}

// IsPromotion returns true if this is a promotion move (with or without capture).
func (m Move) IsPromotion() bool {
	t := m.Type()
	return t >= TypePromoKnight && t <= TypePromoCaptureQueen
}

// IsCastling returns true if this is a castling move.
func (m Move) IsCastling() bool {
	t := m.Type()
	return t == TypeKingCastle || t == TypeQueenCastle
}

// IsKingCastle returns true if this is a kingside castling move.
func (m Move) IsKingCastle() bool {
	return m.Type() == TypeKingCastle
}

// IsQueenCastle returns true if this is a queenside castling move.
func (m Move) IsQueenCastle() bool {
	return m.Type() == TypeQueenCastle
}

// IsEnPassant returns true if this is an en passant capture.
func (m Move) IsEnPassant() bool {
	return m.Type() == TypeEnPassant
}

// IsCapture returns true if this move captures a piece, purely from its
// encoding -- no position lookup required.
func (m Move) IsCapture() bool {
	switch m.Type() {
	case TypeCapture, TypeEnPassant, TypePromoCaptureKnight, TypePromoCaptureBishop, TypePromoCaptureRook, TypePromoCaptureQueen:
		return true
	default:
		return false
	}
}

// IsQuiet returns true if this is neither a capture nor a promotion.
func (m Move) IsQuiet() bool {
	return !m.IsCapture() && !m.IsPromotion()
}

// IsQueenPromotion reports whether this move promotes to a queen, with or
// without capturing -- the "noisy" promotion subset.
func (m Move) IsQueenPromotion() bool {
	t := m.Type()
	return t == TypePromoQueen || t == TypePromoCaptureQueen
}

// String returns the UCI format of the move (e.g., "e2e4", "e7e8q").
func (m Move) String() string {
	if m == NoMove {
		return "0000"
	}

	s := m.From().String() + m.To().String()

	if m.IsPromotion() {
		promoChars := []byte{'n', 'b', 'r', 'q'}
		s += string(promoChars[m.Promotion()-Knight])
	}

	return s
}

// ParseMove parses a UCI format move string.
func ParseMove(s string, pos *Position) (Move, error) {
	if len(s) < 4 {
		return NoMove, fmt.Errorf("invalid move string: %s", s)
	}

	from, err := ParseSquare(s[0:2])
	if err != nil {
		return NoMove, err
	}

	to, err := ParseSquare(s[2:4])
	if err != nil {
		return NoMove, err
	}

	capture := !pos.IsEmpty(to)

	// Check for promotion
	if len(s) == 5 {
		var promo PieceType
		switch s[4] {
		case 'n':
			promo = Knight
		case 'b':
			promo = Bishop
		case 'r':
			promo = Rook
		case 'q':
			promo = Queen
		default:
			return NoMove, fmt.Errorf("invalid promotion piece: %c", s[4])
		}
		return NewPromotion(from, to, promo, capture), nil
	}

	// Detect special moves
	piece := pos.PieceAt(from)
	if piece == NoPiece {
		return NoMove, fmt.Errorf("no piece at %s", from)
	}

	pt := piece.Type()

	// Castling
	if pt == King && abs(int(to)-int(from)) == 2 {
		return NewCastling(from, to, to > from), nil
	}

	// En passant
	if pt == Pawn && to == pos.EnPassant && from.File() != to.File() {
		return NewEnPassant(from, to), nil
	}

	return NewMove(from, to, capture), nil
}

// MoveList is a fixed-size list of moves to avoid allocations.
type MoveList struct {
	moves [256]Move
	count int
}

// NewMoveList creates an empty move list.
func NewMoveList() *MoveList {
	return &MoveList{}
}

// Add adds a move to the list.
func (ml *MoveList) Add(m Move) {
	ml.moves[ml.count] = m
	ml.count++
}

// Len returns the number of moves in the list.
func (ml *MoveList) Len() int {
	return ml.count
}

// Get returns the move at index i.
func (ml *MoveList) Get(i int) Move {
	return ml.moves[i]
}

// Set sets the move at index i.
func (ml *MoveList) Set(i int, m Move) {
	ml.moves[i] = m
}

// Swap swaps two moves in the list.
func (ml *MoveList) Swap(i, j int) {
	ml.moves[i], ml.moves[j] = ml.moves[j], ml.moves[i]
}

// Clear clears the list.
func (ml *MoveList) Clear() {
	ml.count = 0
}

// Contains returns true if the list contains the move.
func (ml *MoveList) Contains(m Move) bool {
	for i := 0; i < ml.count; i++ {
		if ml.moves[i] == m {
			return true
		}
	}
	return false
}

// Slice returns the moves as a slice.
func (ml *MoveList) Slice() []Move {
	return ml.moves[:ml.count]
}

// UndoInfo stores information needed to undo a move.
type UndoInfo struct {
	CapturedPiece  Piece
	CastlingRights CastlingRights
	EnPassant      Square
	HalfMoveClock  int
	Hash           uint64
	PawnKey        uint64
	Checkers       Bitboard
	// KingSquare, Pieces, Occupied and AllOccupied are not filled by
	// MakeMove; UnmakeMove restores the board by reversing the move.
	KingSquare     [2]Square
	Pieces         [2][6]Bitboard
	Occupied       [2]Bitboard
	AllOccupied    Bitboard
	Valid          bool           // True if move was actually applied
}
