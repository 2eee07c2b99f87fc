package engine

import (
	"github.com/hailam/chessplay/internal/board"
)

// TTFlag indicates the type of bound stored in the transposition table.
type TTFlag uint8

const (
	TTExact      TTFlag = iota // Exact score
	TTLowerBound               // Failed high (beta cutoff)
	TTUpperBound               // Failed low
)

const ttBoundMask = 0x03
const ttPVBit = 0x04

// TTEntry is a single 16-byte transposition table slot: full Zobrist key,
// packed move, bounded score, search depth, bound type (with a PV flag
// packed into the same byte), and the generation it was written in.
type TTEntry struct {
	Hash  uint64
	Move  uint16
	Score int16
	Depth int8
	Bound uint8
	Age   uint8
	_     uint8 // padding to 16 bytes
}

// ttBucketSize is the number of entries probed per index -- four ways,
// giving a 64-byte bucket that lines up with a cache line.
const ttBucketSize = 4

// TTBucket groups ttBucketSize entries under one index.
type TTBucket [ttBucketSize]TTEntry

// TranspositionTable is a bucketed hash table for storing search results.
type TranspositionTable struct {
	buckets []TTBucket
	mask    uint64
	age     uint8

	// Statistics
	hits   uint64
	probes uint64
}

// NewTranspositionTable creates a transposition table with the given size in MB.
func NewTranspositionTable(sizeMB int) *TranspositionTable {
	numBuckets := (uint64(sizeMB) * 1024 * 1024) / 64
	numBuckets = roundDownToPowerOf2(numBuckets)
	if numBuckets == 0 {
		numBuckets = 1
	}

	return &TranspositionTable{
		buckets: make([]TTBucket, numBuckets),
		mask:    numBuckets - 1,
	}
}

// roundDownToPowerOf2 rounds n down to the nearest power of 2.
func roundDownToPowerOf2(n uint64) uint64 {
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n |= n >> 32
	return (n + 1) >> 1
}

// ProbeResult is the decoded view of a transposition table hit.
type ProbeResult struct {
	Move  board.Move
	Score int16
	Depth int8
	Bound TTFlag
	IsPV  bool
}

// Probe looks up a position in the transposition table.
func (tt *TranspositionTable) Probe(hash uint64) (ProbeResult, bool) {
	tt.probes++

	bucket := &tt.buckets[hash&tt.mask]
	for i := range bucket {
		e := &bucket[i]
		if e.Hash == hash && e.Depth > 0 {
			tt.hits++
			return ProbeResult{
				Move:  board.Move(e.Move),
				Score: e.Score,
				Depth: e.Depth,
				Bound: TTFlag(e.Bound & ttBoundMask),
				IsPV:  e.Bound&ttPVBit != 0,
			}, true
		}
	}

	return ProbeResult{}, false
}

// Store saves a position in the transposition table, using a bucketed
// replacement scheme: an exact-hash match is updated in place unless the new
// result is shallower and not exact (then the store is skipped); otherwise an
// empty slot, or else the slot with the lowest (depth - 2*age-difference) score, is
// evicted, so deep entries from the current search survive stale shallow
// ones from prior generations.
func (tt *TranspositionTable) Store(hash uint64, depth int, score int, flag TTFlag, bestMove board.Move, isPV bool) {
	bucket := &tt.buckets[hash&tt.mask]

	replace := -1
	worstScore := 1 << 30
	for i := range bucket {
		e := &bucket[i]
		if e.Hash == hash || e.Depth == 0 {
			replace = i
			break
		}
		s := int(e.Depth) - 2*int(tt.age-e.Age)
		if s < worstScore {
			worstScore = s
			replace = i
		}
	}

	e := &bucket[replace]
	if e.Hash == hash && depth < int(e.Depth) && flag != TTExact {
		return
	}

	e.Hash = hash
	e.Move = uint16(bestMove)
	e.Score = int16(score)
	e.Depth = int8(depth)
	b := uint8(flag) & ttBoundMask
	if isPV {
		b |= ttPVBit
	}
	e.Bound = b
	e.Age = tt.age
}

// NewSearch increments the age counter for a new search.
func (tt *TranspositionTable) NewSearch() {
	tt.age++
}

// Clear clears the transposition table.
func (tt *TranspositionTable) Clear() {
	for i := range tt.buckets {
		tt.buckets[i] = TTBucket{}
	}
	tt.age = 0
	tt.hits = 0
	tt.probes = 0
}

// HashFull returns the permille (parts per thousand) of the table that is used.
func (tt *TranspositionTable) HashFull() int {
	sampleSize := 1000
	if uint64(sampleSize) > uint64(len(tt.buckets)) {
		sampleSize = len(tt.buckets)
	}

	used := 0
	for i := 0; i < sampleSize; i++ {
		for j := range tt.buckets[i] {
			if tt.buckets[i][j].Depth > 0 && tt.buckets[i][j].Age == tt.age {
				used++
			}
		}
	}

	return (used * 1000) / (sampleSize * ttBucketSize)
}

// HitRate returns the cache hit rate as a percentage.
func (tt *TranspositionTable) HitRate() float64 {
	if tt.probes == 0 {
		return 0
	}
	return float64(tt.hits) / float64(tt.probes) * 100
}

// Size returns the number of buckets in the table.
func (tt *TranspositionTable) Size() uint64 {
	return uint64(len(tt.buckets))
}

// AdjustScoreFromTT adjusts a score from/to the transposition table.
// Mate scores need to be adjusted based on ply distance.
func AdjustScoreFromTT(score int, ply int) int {
	if score > MateScore-MaxPly {
		return score - ply
	}
	if score < -MateScore+MaxPly {
		return score + ply
	}
	return score
}

// AdjustScoreToTT adjusts a score for storage in the transposition table.
func AdjustScoreToTT(score int, ply int) int {
	if score > MateScore-MaxPly {
		return score + ply
	}
	if score < -MateScore+MaxPly {
		return score - ply
	}
	return score
}
