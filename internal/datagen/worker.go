package datagen

import (
	"math/rand"
	"runtime"
	"sync/atomic"

	"github.com/hailam/chessplay/internal/board"
	"github.com/hailam/chessplay/internal/engine"
)

// Tunables mirroring datagen.h's DatagenThread constants (§4.10).
const (
	openingMinPlies = 8
	openingMaxPlies = 12

	verifyMaxDepth   = 14
	verifySoftNodes  = 80_000
	verifyHardNodes  = 500_000
	verifyScoreLimit = 800

	playSoftNodes = 25_000
	playHardNodes = 100_000

	highScoreNormLimit = 2000
	highScoreRunLength = 4

	lowScoreNormLimit  = 10
	lowScoreRunLength  = 12
	lowScoreMinGamePly = 60

	flushEvery = 10_000

	mateFoundScore = engine.MateScore - engine.MaxPly
)

// materialForNormalization sums classical piece values over both colors, the
// same "material_count" input win_rate_model clamps to [17, 78] in wdl.h.
func materialForNormalization(pos *board.Position) int {
	values := [6]int{1, 3, 3, 5, 9, 0}
	total := 0
	for c := board.White; c <= board.Black; c++ {
		for pt := board.Pawn; pt <= board.Queen; pt++ {
			total += values[pt] * pos.Pieces[c][pt].PopCount()
		}
	}
	return total
}

// normalizeScore rescales a centipawn score against the win-rate model's "a"
// coefficient at the current material count, ported from wdl.h's
// normalize_score so adjudication thresholds stay meaningful in the
// middlegame and the endgame alike.
func normalizeScore(score int, pos *board.Position) int {
	m := materialForNormalization(pos)
	if m < 17 {
		m = 17
	} else if m > 78 {
		m = 78
	}
	mf := float64(m) / 58.0

	// as[] from wdl.h, degree-2 fit of "a" over normalized material.
	as := [3]float64{-162.209, 280.243, 78.1747}
	a := (as[0]*mf+as[1])*mf + as[2]
	if a == 0 {
		return score
	}
	return int(float64(score) * 100.0 / a)
}

// GameRecord is one completed self-play game ready to be flushed.
type GameRecord struct {
	Viriformat *Viriformat
	Result     GameResult
}

// DatagenWorker drives one self-play thread: its own search stack, shared TT
// and pawn hash table, and a private RNG for opening randomization, grounded
// on datagen.h's DatagenThread.
type DatagenWorker struct {
	id       int
	worker   *engine.Worker
	rng      *rand.Rand
	stopFlag *atomic.Bool
	paused   *atomic.Bool

	gamesPlayed     atomic.Uint64
	positionsPacked atomic.Uint64
}

// NewDatagenWorker builds a worker sharing tt/pawnTable with its siblings,
// matching the shared-TT Lazy SMP wiring used by the main search (§5).
func NewDatagenWorker(id int, tt *engine.TranspositionTable, pawnTable *engine.PawnTable, seed int64) *DatagenWorker {
	stopFlag := &atomic.Bool{}
	return &DatagenWorker{
		id:       id,
		worker:   engine.NewWorker(id, tt, pawnTable, engine.NewSharedHistory(), stopFlag),
		rng:      rand.New(rand.NewSource(seed)),
		stopFlag: stopFlag,
		paused:   &atomic.Bool{},
	}
}

// Stop signals an in-progress game to abandon its current search and return.
func (dw *DatagenWorker) Stop() {
	dw.stopFlag.Store(true)
}

// Pause/Resume implement the master's "pause"/"resume" commands (§6):
// a paused worker finishes its current ply's search, then idles.
func (dw *DatagenWorker) Pause()  { dw.paused.Store(true) }
func (dw *DatagenWorker) Resume() { dw.paused.Store(false) }

func (dw *DatagenWorker) waitIfPaused() {
	for dw.paused.Load() && !dw.stopFlag.Load() {
		// Busy-idle with a goroutine-friendly yield; the command loop clears
		// paused in response to "resume" well within a context switch.
		runtime.Gosched()
	}
}

// GamesPlayed and PositionsPacked back the master's "report" command.
func (dw *DatagenWorker) GamesPlayed() uint64     { return dw.gamesPlayed.Load() }
func (dw *DatagenWorker) PositionsPacked() uint64 { return dw.positionsPacked.Load() }

// randomOpening plays 8-12 random half-moves from the start position,
// mirroring datagen.h's opening randomization. It does not retry: it returns
// false if no legal move existed at some ply (vanishingly rare from the
// start position, kept for robustness).
func (dw *DatagenWorker) randomOpening(pos *board.Position) bool {
	plies := openingMinPlies + dw.rng.Intn(openingMaxPlies-openingMinPlies+1)
	for i := 0; i < plies; i++ {
		moves := pos.GenerateLegalMoves()
		if moves.Len() == 0 {
			return false
		}
		pick := dw.rng.Intn(moves.Len())
		pos.MakeMove(moves.Get(pick))
	}
	return true
}

// searchPly runs iterative deepening up to maxDepth, stopping early once the
// accumulated node count (tracked via Nodes() deltas) has reached softNodes
// or hardNodes, or a mate score is found. Both node limits are checked only
// between iterations: SearchDepth has no internal node budget, so an
// iteration already under way runs to completion even past hardNodes. It
// returns the best move and score found at the deepest completed iteration.
func (dw *DatagenWorker) searchPly(pos *board.Position, maxDepth int, softNodes, hardNodes uint64) (board.Move, int) {
	dw.worker.InitSearch(pos)

	var bestMove board.Move
	bestScore := 0
	startNodes := dw.worker.Nodes()

	for depth := 1; depth <= maxDepth; depth++ {
		move, score := dw.worker.SearchDepth(depth, -engine.Infinity, engine.Infinity)
		if move != board.NoMove {
			bestMove, bestScore = move, score
		}

		spent := dw.worker.Nodes() - startNodes
		if spent >= hardNodes {
			break
		}
		if spent >= softNodes {
			break
		}
		if bestScore >= mateFoundScore || bestScore <= -mateFoundScore {
			break
		}
	}

	return bestMove, bestScore
}

// PlayGame plays one self-play game start to finish, appending packed
// records into rec, grounded on datagen.h's DatagenThread::play_game. It
// returns false if the opening was rejected, the game was interrupted by a
// stop request before reaching a result, or otherwise produced nothing
// worth writing; the caller should discard rec and try again.
func (dw *DatagenWorker) PlayGame(rec *Viriformat) bool {
	pos := board.NewPosition()
	if !dw.randomOpening(pos) {
		return false
	}

	// Verification search: reject openings that are already heavily
	// decided, the same filter datagen.h applies before committing to a
	// game so training data isn't dominated by already-lost positions.
	_, verifyScore := dw.searchPly(pos, verifyMaxDepth, verifySoftNodes, verifyHardNodes)
	if verifyScore > verifyScoreLimit || verifyScore < -verifyScoreLimit {
		return false
	}

	rec.Reset(pos)

	gamePly := 0
	highRun := 0
	lowRun := 0

	for {
		dw.waitIfPaused()
		if dw.stopFlag.Load() {
			return false
		}

		if !pos.HasLegalMoves() {
			result := adjudicateMate(pos)
			dw.finishGame(rec, result)
			return true
		}
		if pos.IsDraw() || pos.IsInsufficientMaterial() {
			dw.finishGame(rec, ResultDraw)
			return true
		}

		move, score := dw.searchPly(pos, engine.MaxPly-1, playSoftNodes, playHardNodes)
		if move == board.NoMove {
			dw.finishGame(rec, ResultDraw)
			return true
		}

		// score and norm are reported from the mover's perspective (standard
		// negamax convention); resultForMover below translates a mover-
		// relative verdict into the White-POV GameResult the record stores.
		moverIsWhite := pos.SideToMove == board.White

		if score >= mateFoundScore || score <= -mateFoundScore {
			rec.Push(move, int16(clampScore(score)))
			won := score > 0
			dw.finishGame(rec, resultForMover(won, moverIsWhite))
			return true
		}

		norm := normalizeScore(score, pos)
		if norm > highScoreNormLimit || norm < -highScoreNormLimit {
			highRun++
		} else {
			highRun = 0
		}
		if norm > -lowScoreNormLimit && norm < lowScoreNormLimit {
			lowRun++
		} else {
			lowRun = 0
		}

		rec.Push(move, int16(clampScore(score)))
		pos.MakeMove(move)
		gamePly++

		if highRun >= highScoreRunLength {
			dw.finishGame(rec, resultForMover(norm > 0, moverIsWhite))
			return true
		}
		if lowRun >= lowScoreRunLength && gamePly >= lowScoreMinGamePly {
			dw.finishGame(rec, ResultDraw)
			return true
		}
	}
}

func (dw *DatagenWorker) finishGame(rec *Viriformat, result GameResult) {
	rec.initial.Result = result
	dw.gamesPlayed.Add(1)
	dw.positionsPacked.Add(uint64(rec.Len()))
}

// adjudicateMate reports the result of a position with no legal moves: a
// checkmate is a loss for the side to move, anything else (stalemate) is a
// draw.
func adjudicateMate(pos *board.Position) GameResult {
	if !pos.InCheck() {
		return ResultDraw
	}
	if pos.SideToMove == board.White {
		return ResultLoss
	}
	return ResultWin
}

// resultForMover converts a "did the side to move win" verdict into the
// White-POV GameResult the packed record stores.
func resultForMover(moverWon bool, moverIsWhite bool) GameResult {
	if moverWon == moverIsWhite {
		return ResultWin
	}
	return ResultLoss
}

func clampScore(score int) int {
	if score > 32000 {
		return 32000
	}
	if score < -32000 {
		return -32000
	}
	return score
}
