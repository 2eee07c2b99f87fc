package engine

import "github.com/hailam/chessplay/internal/board"

// PickerStage is one state of the move-picker's staged selection loop
// (§4.5): PickTT -> GenNoisy -> PickGoodNoisy -> GenQuiet -> PickQuiet ->
// PickBadNoisy -> Finished. Each call to Next re-enters at the picker's
// current stage; all of its state lives in the MovePicker struct so it is
// safe to call across unmake/remake boundaries within one search node.
type PickerStage int

const (
	StagePickTT PickerStage = iota
	StageGenNoisy
	StagePickGoodNoisy
	StageGenQuiet
	StagePickQuiet
	StagePickBadNoisy
	StageFinished
)

// Scoring bands for the noisy/quiet stages (§4.5). Noisy scores sit above
// killer scores so a good capture always outranks a killer quiet; bad
// (SEE-losing) noisy moves are deferred to PickBadNoisy regardless of score.
const (
	pickerCaptureScore           = 1 << 24
	pickerQueenPromotionScore    = pickerCaptureScore + 1
	pickerNonQueenPromotionScore = -(1 << 16)
	pickerKiller1Score           = 1 << 20
	pickerKiller2Score           = 1 << 19
	pickerCounterMoveScore       = pickerKiller2Score - 10000
)

// MovePicker yields pseudo-legal moves for one search node in priority
// order: the supplied TT move, then good noisy moves (captures/en-passant/
// queen promotions whose SEE is non-negative), then quiet moves ordered by
// killer/history/counter-move score, then the noisy moves SEE rejected.
// qsearch mode drops the quiet stages entirely and discards (rather than
// defers) SEE-losing captures, matching quiescence's "noisy moves only,
// skip captures that fail SEE" contract (§4.8).
type MovePicker struct {
	pos      *board.Position
	orderer  *MoveOrderer
	ttMove   board.Move
	ply      int
	prevMove board.Move
	qsearch  bool

	skipQuiets  bool
	ttYielded   bool
	stage       PickerStage
	noisy       *board.MoveList
	noisyScores []int
	noisyIdx    int
	quiet       *board.MoveList
	quietScores []int
	quietIdx    int
	badNoisy    *board.MoveList
	badIdx      int
}

// NewMovePicker creates a picker for one search node. prevMove feeds the
// counter-move/continuation-history bonuses during quiet scoring; pass
// board.NoMove at the root or when unavailable.
func NewMovePicker(pos *board.Position, orderer *MoveOrderer, ttMove board.Move, ply int, prevMove board.Move, qsearch bool) *MovePicker {
	return &MovePicker{
		pos:      pos,
		orderer:  orderer,
		ttMove:   ttMove,
		ply:      ply,
		prevMove: prevMove,
		qsearch:  qsearch,
		stage:    StagePickTT,
		badNoisy: board.NewMoveList(),
	}
}

// SkipQuiets requests the GenQuiet/PickQuiet stages be bypassed, used by a
// caller that already knows it only wants noisy moves this call (fail-high
// shortcuts). The TT move is still returned first, but only if it is noisy.
func (mp *MovePicker) SkipQuiets() {
	mp.skipQuiets = true
}

func (mp *MovePicker) scoreNoisy(m board.Move) int {
	if m.IsEnPassant() {
		return pickerCaptureScore
	}
	if m.IsQueenPromotion() {
		return pickerQueenPromotionScore
	}
	if m.IsPromotion() {
		return pickerNonQueenPromotionScore
	}
	attacker := mp.pos.PieceAt(m.From()).Type()
	victim := mp.pos.PieceAt(m.To()).Type()
	if victim > board.King {
		victim = board.Pawn
	}
	return pickerCaptureScore + 10*seeValues[victim] - seeValues[attacker]/10
}

func (mp *MovePicker) scoreQuiet(m board.Move) int {
	if m == mp.orderer.killers[mp.ply][0] {
		return pickerKiller1Score
	}
	if m == mp.orderer.killers[mp.ply][1] {
		return pickerKiller2Score
	}

	score := mp.orderer.history[m.From()][m.To()]

	if mp.prevMove != board.NoMove {
		counterMove := mp.orderer.GetCounterMove(mp.prevMove, mp.pos)
		if m == counterMove && score < pickerCounterMoveScore {
			score = pickerCounterMoveScore
		}
		prevPiece := mp.pos.PieceAt(mp.prevMove.To())
		movePiece := mp.pos.PieceAt(m.From())
		score += mp.orderer.GetCountermoveHistoryScore(mp.prevMove, prevPiece, movePiece, m.To()) / 2
	}

	return score
}

// Next returns the next move in staged priority order and true, or
// (board.NoMove, false) once the picker is exhausted for this node.
func (mp *MovePicker) Next() (board.Move, bool) {
	for {
		switch mp.stage {
		case StagePickTT:
			mp.stage = StageGenNoisy
			if !mp.ttYielded && mp.ttMove != board.NoMove && mp.pos.PseudoLegal(mp.ttMove) && mp.pos.IsLegal(mp.ttMove) {
				mp.ttYielded = true
				if mp.skipQuiets && !mp.ttMove.IsCapture() && !mp.ttMove.IsEnPassant() && !mp.ttMove.IsQueenPromotion() {
					continue
				}
				return mp.ttMove, true
			}

		case StageGenNoisy:
			mp.noisy = mp.pos.GenerateCaptures()
			mp.noisyScores = make([]int, mp.noisy.Len())
			for i := 0; i < mp.noisy.Len(); i++ {
				mp.noisyScores[i] = mp.scoreNoisy(mp.noisy.Get(i))
			}
			mp.noisyIdx = 0
			mp.stage = StagePickGoodNoisy

		case StagePickGoodNoisy:
			if mp.noisyIdx >= mp.noisy.Len() {
				if mp.qsearch {
					mp.stage = StageFinished
				} else {
					mp.stage = StageGenQuiet
				}
				continue
			}
			PickMove(mp.noisy, mp.noisyScores, mp.noisyIdx)
			m := mp.noisy.Get(mp.noisyIdx)
			mp.noisyIdx++
			if m == mp.ttMove {
				continue
			}
			if !SeeGE(mp.pos, m, 0) {
				if !mp.qsearch {
					mp.badNoisy.Add(m)
				}
				continue
			}
			return m, true

		case StageGenQuiet:
			if mp.skipQuiets {
				mp.stage = StagePickBadNoisy
				continue
			}
			mp.quiet = mp.pos.GenerateQuiets()
			mp.quietScores = make([]int, mp.quiet.Len())
			for i := 0; i < mp.quiet.Len(); i++ {
				mp.quietScores[i] = mp.scoreQuiet(mp.quiet.Get(i))
			}
			mp.quietIdx = 0
			mp.stage = StagePickQuiet

		case StagePickQuiet:
			if mp.quietIdx >= mp.quiet.Len() {
				mp.stage = StagePickBadNoisy
				continue
			}
			PickMove(mp.quiet, mp.quietScores, mp.quietIdx)
			m := mp.quiet.Get(mp.quietIdx)
			mp.quietIdx++
			if m == mp.ttMove {
				continue
			}
			return m, true

		case StagePickBadNoisy:
			if mp.badIdx >= mp.badNoisy.Len() {
				mp.stage = StageFinished
				continue
			}
			m := mp.badNoisy.Get(mp.badIdx)
			mp.badIdx++
			if m == mp.ttMove {
				continue
			}
			return m, true

		case StageFinished:
			return board.NoMove, false
		}
	}
}
