package tablebase

import (
	"github.com/hailam/chessplay/internal/board"
)

// WDL represents Win/Draw/Loss result.
type WDL int

const (
	WDLLoss        WDL = -2
	WDLBlessedLoss WDL = -1 // Blessed loss (loss but 50-move rule may save)
	WDLDraw        WDL = 0
	WDLCursedWin   WDL = 1 // Cursed win (win but 50-move rule may interfere)
	WDLWin         WDL = 2
)

// WDLResult is what a Prober reports for a position it covers.
type WDLResult struct {
	WDL WDL
	DTZ int // Distance to zeroing move (pawn move or capture)
}

// Prober is the tablebase contract consulted by the search at
// depth >= tbProbeDepth when the piece count is at or below the prober's
// reported maximum (§4.14). No concrete Syzygy-file or networked backend is
// part of the CORE; this interface is named only by its contract.
type Prober interface {
	// Probe looks up a position. ok is false when the position falls
	// outside the tablebase's coverage, including when no tablebase is
	// configured.
	Probe(pos *board.Position) (wdl WDLResult, ok bool)

	// MaxPieces returns the maximum number of pieces the prober covers.
	MaxPieces() int
}

// WDLToScore converts a WDL result to a search score.
// Uses the convention: positive = winning, negative = losing.
func WDLToScore(wdl WDL, ply int) int {
	const mateScore = 30000

	switch wdl {
	case WDLWin:
		return mateScore - ply // Win gets high score, closer ply = higher
	case WDLCursedWin:
		return mateScore - 100 - ply // Cursed win is slightly worse
	case WDLDraw:
		return 0
	case WDLBlessedLoss:
		return -mateScore + 100 + ply // Blessed loss is slightly better than loss
	case WDLLoss:
		return -mateScore + ply // Loss gets negative score
	default:
		return 0
	}
}

// NopProber is the default Prober: it always reports ok=false. Use it as a
// placeholder when no tablebase backend is configured.
type NopProber struct{}

func (NopProber) Probe(pos *board.Position) (WDLResult, bool) {
	return WDLResult{}, false
}

func (NopProber) MaxPieces() int {
	return 0
}

// CountPieces returns the total number of pieces on the board.
func CountPieces(pos *board.Position) int {
	return pos.AllOccupied.PopCount()
}
