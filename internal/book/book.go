package book

import (
	"bufio"
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hailam/chessplay/internal/board"
)

// BookEntry represents a single suggested move for a book position.
type BookEntry struct {
	Move   board.Move
	Weight uint16
}

// Book represents an opening book keyed by Zobrist hash.
type Book struct {
	entries map[uint64][]BookEntry
}

// New creates an empty book.
func New() *Book {
	return &Book{
		entries: make(map[uint64][]BookEntry),
	}
}

// Load reads an EPD opening book from a file. The ".epd" extension is
// required per the external-interfaces contract (§6): a book file with any
// other extension is rejected outright rather than sniffed.
func Load(filename string) (*Book, error) {
	if strings.ToLower(filepath.Ext(filename)) != ".epd" {
		return nil, fmt.Errorf("book: %s: opening books must use the .epd extension", filename)
	}

	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return LoadEPDReader(file)
}

// LoadEPDReader parses EPD (Extended Position Description) text: one
// position per line, FEN fields (board, stm, castling, ep) followed by
// semicolon-terminated opcodes. Only the "bm" (best move, SAN) opcode is
// consulted; every bm move for a line becomes an equally-weighted book entry
// for that position's hash. Lines with no bm opcode are accepted but add
// nothing to the book (they are not counted by Size), and malformed lines
// are skipped rather than aborting the whole load, since a book is a
// convenience collection, not a single atomic record.
func LoadEPDReader(r io.Reader) (*Book, error) {
	bk := New()

	scanner := bufio.NewScanner(r)
	// EPD lines with long "bm"/"pv" opcode lists can exceed the default
	// 64KiB scanner buffer for deeply annotated books.
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fen, bestMoves, ok := parseEPDLine(line)
		if !ok {
			continue
		}

		pos, err := board.ParseFEN(fen)
		if err != nil {
			continue
		}

		for _, sanMove := range bestMoves {
			move, err := board.ParseSAN(sanMove, pos)
			if err != nil {
				continue
			}
			bk.entries[pos.Hash] = append(bk.entries[pos.Hash], BookEntry{
				Move:   move,
				Weight: 1,
			})
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return bk, nil
}

// parseEPDLine splits an EPD line into its four FEN fields (halfmove and
// fullmove default to "0 1" since EPD omits them) and the SAN moves from any
// "bm" opcode.
func parseEPDLine(line string) (fen string, bestMoves []string, ok bool) {
	fields := strings.Fields(line)
	if len(fields) < 4 {
		return "", nil, false
	}

	fen = strings.Join(fields[0:4], " ") + " 0 1"
	rest := strings.Join(fields[4:], " ")

	for _, opcode := range strings.Split(rest, ";") {
		opcode = strings.TrimSpace(opcode)
		if !strings.HasPrefix(opcode, "bm ") && opcode != "bm" {
			continue
		}
		moves := strings.Fields(strings.TrimPrefix(opcode, "bm"))
		bestMoves = append(bestMoves, moves...)
	}

	return fen, bestMoves, true
}

// Probe looks up a position in the book and returns a move using weighted random selection.
func (b *Book) Probe(pos *board.Position) (board.Move, bool) {
	if b == nil {
		return board.NoMove, false
	}

	entries, ok := b.entries[pos.Hash]
	if !ok || len(entries) == 0 {
		return board.NoMove, false
	}

	// Sort by weight (highest first) for deterministic ordering
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Weight > entries[j].Weight
	})

	// Weighted random selection
	totalWeight := uint32(0)
	for _, e := range entries {
		totalWeight += uint32(e.Weight)
	}

	if totalWeight == 0 {
		return entries[0].Move, true
	}

	r := rand.Uint32() % totalWeight
	cumulative := uint32(0)
	for _, e := range entries {
		cumulative += uint32(e.Weight)
		if r < cumulative {
			return e.Move, true
		}
	}

	return entries[0].Move, true
}

// ProbeAll returns all book moves for the position, sorted by weight.
func (b *Book) ProbeAll(pos *board.Position) []BookEntry {
	if b == nil {
		return nil
	}

	entries, ok := b.entries[pos.Hash]
	if !ok {
		return nil
	}

	result := make([]BookEntry, len(entries))
	copy(result, entries)
	sort.Slice(result, func(i, j int) bool {
		return result[i].Weight > result[j].Weight
	})

	return result
}

// Size returns the number of unique positions in the book.
func (b *Book) Size() int {
	if b == nil {
		return 0
	}
	return len(b.entries)
}
