package book

import (
	"strings"
	"testing"

	"github.com/hailam/chessplay/internal/board"
)

func TestBookLoadAndProbe(t *testing.T) {
	epd := "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - bm e4;\n"

	bk, err := LoadEPDReader(strings.NewReader(epd))
	if err != nil {
		t.Fatalf("Failed to load book: %v", err)
	}

	if bk.Size() != 1 {
		t.Errorf("Expected book size 1, got %d", bk.Size())
	}

	pos := board.NewPosition()
	move, found := bk.Probe(pos)
	if !found {
		t.Fatal("Expected to find move in book")
	}

	if move.From() != board.E2 || move.To() != board.E4 {
		t.Errorf("Expected e2e4, got %s", move.String())
	}
}

func TestBookMultipleBestMoves(t *testing.T) {
	epd := "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - bm e4 d4 Nf3;\n"

	bk, err := LoadEPDReader(strings.NewReader(epd))
	if err != nil {
		t.Fatalf("Failed to load book: %v", err)
	}

	pos := board.NewPosition()
	entries := bk.ProbeAll(pos)
	if len(entries) != 3 {
		t.Fatalf("Expected 3 book entries, got %d", len(entries))
	}
}

func TestBookMiss(t *testing.T) {
	bk := New()
	pos := board.NewPosition()

	move, found := bk.Probe(pos)
	if found {
		t.Error("Expected book miss on empty book")
	}
	if move != board.NoMove {
		t.Errorf("Expected NoMove on miss, got %s", move.String())
	}
}

func TestBookSkipsMalformedLines(t *testing.T) {
	epd := "not a fen line\nrnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - bm e4;\n\n# a comment\n"

	bk, err := LoadEPDReader(strings.NewReader(epd))
	if err != nil {
		t.Fatalf("Failed to load book: %v", err)
	}

	if bk.Size() != 1 {
		t.Errorf("Expected malformed/comment lines to be skipped, got size %d", bk.Size())
	}
}

func TestLoadRejectsNonEPDExtension(t *testing.T) {
	if _, err := Load("book.bin"); err == nil {
		t.Error("Expected error loading a non-.epd book file")
	}
}
