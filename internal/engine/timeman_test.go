package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/hailam/chessplay/internal/board"
)

func TestTimeManagerMoveTimeMode(t *testing.T) {
	tm := NewTimeManager()
	tm.Init(UCILimits{MoveTime: 1000 * time.Millisecond}, board.White, 0)

	// max(1000-50, 1000/2) = max(950, 500) = 950ms.
	assert.Equal(t, 950*time.Millisecond, tm.OptimumTime())
	assert.Equal(t, tm.OptimumTime(), tm.MaximumTime())
}

func TestTimeManagerMoveTimeModeFavorsHalfWhenLarger(t *testing.T) {
	tm := NewTimeManager()
	tm.Init(UCILimits{MoveTime: 60 * time.Millisecond}, board.White, 0)

	// max(60-50, 60/2) = max(10, 30) = 30ms.
	assert.Equal(t, 30*time.Millisecond, tm.OptimumTime())
}

func TestTimeManagerSuddenDeathDefaultsMovesToGoTo50(t *testing.T) {
	tm := NewTimeManager()
	limits := UCILimits{Time: [2]time.Duration{60 * time.Second, 60 * time.Second}}
	tm.Init(limits, board.White, 10)

	// base = 0.8*60s/50 + 0 = 0.96s.
	assert.Equal(t, 960*time.Millisecond, tm.OptimumTime())
	assert.Equal(t, 3840*time.Millisecond, tm.MaximumTime())
}

func TestTimeManagerClampsMovesToGo(t *testing.T) {
	tm := NewTimeManager()
	limits := UCILimits{
		Time:      [2]time.Duration{60 * time.Second, 60 * time.Second},
		Inc:       [2]time.Duration{500 * time.Millisecond, 500 * time.Millisecond},
		MovesToGo: 200, // clamps to 50.
	}
	tm.Init(limits, board.White, 0)

	// base = 0.8*60s/50 + 0.5s = 1.46s.
	assert.Equal(t, 1460*time.Millisecond, tm.OptimumTime())
	assert.Equal(t, 5840*time.Millisecond, tm.MaximumTime())
}

func TestTimeManagerCapsAtEightyPercentOfRemaining(t *testing.T) {
	tm := NewTimeManager()
	limits := UCILimits{
		Time:      [2]time.Duration{1 * time.Second, 1 * time.Second},
		MovesToGo: 1,
	}
	tm.Init(limits, board.White, 0)

	want := 800 * time.Millisecond
	assert.Equal(t, want, tm.OptimumTime())
	assert.Equal(t, want, tm.MaximumTime())
}
