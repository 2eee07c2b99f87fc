package datagen

import (
	"bufio"
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/klauspost/compress/gzip"
	"golang.org/x/sync/errgroup"

	"github.com/hailam/chessplay/internal/engine"
	"github.com/hailam/chessplay/internal/logging"
	"github.com/hailam/chessplay/internal/storage"
)

var log = logging.Get("datagen")

// Master fans work out across N DatagenWorker goroutines sharing one
// transposition table and pawn hash table, and runs the stdin command loop
// (stop/pause/resume/report/isalive), grounded on datagen.h's DatagenEngine.
type Master struct {
	workers []*DatagenWorker
	files   []*os.File
	writers []io.WriteCloser // records (file) or (gzip over file), per worker
	ledger  *storage.Ledger

	group *errgroup.Group
}

// NewMaster creates threadCount workers, each writing to
// <dirPath>/minke_data<id>.vf, sharing a ttSizeMB-sized transposition table.
// A badger-backed Ledger under <dirPath>/ledger persists cumulative
// game/position counts so a restarted run reports totals across restarts,
// not just the current process's lifetime. When compress is true, each
// output file is gzip-compressed and suffixed ".gz".
func NewMaster(threadCount, ttSizeMB int, dirPath string, masterSeed int64, compress bool) (*Master, error) {
	if err := os.MkdirAll(dirPath, 0o755); err != nil {
		return nil, fmt.Errorf("datagen: creating output directory: %w", err)
	}

	ledger, err := storage.OpenLedger(filepath.Join(dirPath, "ledger"))
	if err != nil {
		return nil, fmt.Errorf("datagen: opening ledger: %w", err)
	}

	tt := engine.NewTranspositionTable(ttSizeMB)
	pawnTable := engine.NewPawnTable(16)

	m := &Master{ledger: ledger}
	seedRNG := rand.New(rand.NewSource(masterSeed))

	for id := 0; id < threadCount; id++ {
		name := fmt.Sprintf("minke_data%d.vf", id)
		if compress {
			name += ".gz"
		}
		path := filepath.Join(dirPath, name)
		f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			for _, opened := range m.files {
				opened.Close()
			}
			ledger.Close()
			return nil, fmt.Errorf("datagen: opening %s: %w", path, err)
		}
		m.files = append(m.files, f)
		if compress {
			m.writers = append(m.writers, gzip.NewWriter(f))
		} else {
			m.writers = append(m.writers, f)
		}

		prevGames, prevPositions, err := ledger.Load(id)
		if err != nil {
			log.Warningf("worker %d: ledger load failed, starting from zero: %v", id, err)
		}

		worker := NewDatagenWorker(id, tt, pawnTable, seedRNG.Int63())
		worker.gamesPlayed.Store(prevGames)
		worker.positionsPacked.Store(prevPositions)
		m.workers = append(m.workers, worker)
	}

	return m, nil
}

// Run starts every worker's game loop and blocks on stdin for commands, per
// the external-interfaces contract (§6): "<bin> datagen <threads> <dir>".
func (m *Master) Run(stdin io.Reader, stdout io.Writer) {
	log.Infof("datagen started with %d thread(s)", len(m.workers))
	m.start()

	startTime := time.Now()
	scanner := bufio.NewScanner(stdin)
	for scanner.Scan() {
		command := strings.Fields(scanner.Text())
		if len(command) == 0 {
			continue
		}

		switch command[0] {
		case "stop":
			m.stop()
			fmt.Fprintln(stdout, "Datagen stopped")
			m.group.Wait()
			m.report(stdout, startTime)
			fmt.Fprintln(stdout, "Datagen ran successfully!")
			return
		case "report":
			m.report(stdout, startTime)
		case "pause":
			m.pause()
			fmt.Fprintln(stdout, "Datagen paused")
		case "resume":
			m.resume()
			fmt.Fprintln(stdout, "Datagen resumed")
		case "isalive":
			fmt.Fprintln(stdout, "alive")
		}
	}

	m.stop()
	m.group.Wait()
	m.report(stdout, startTime)
	fmt.Fprintln(stdout, "Datagen ran successfully!")
}

func (m *Master) start() {
	m.group = &errgroup.Group{}
	for i, w := range m.workers {
		w.Resume()
		idx, worker := i, w
		m.group.Go(func() error {
			m.runWorker(idx, worker)
			return nil
		})
	}
}

func (m *Master) runWorker(idx int, w *DatagenWorker) {
	out := m.writers[idx]
	writer := bufio.NewWriter(out)
	defer writer.Flush()

	rec := &Viriformat{}
	flushedPositions := uint64(0)

	for !w.stopFlag.Load() {
		if !w.PlayGame(rec) {
			continue
		}

		if err := rec.Write(writer, rec.initial.Result); err != nil {
			log.Errorf("worker %d: writing record: %v", idx, err)
			return
		}

		flushedPositions += uint64(rec.Len())
		if flushedPositions >= flushEvery {
			writer.Flush()
			flushedPositions = 0
			if err := m.ledger.Save(idx, w.GamesPlayed(), w.PositionsPacked()); err != nil {
				log.Warningf("worker %d: ledger save failed: %v", idx, err)
			}
		}
	}

	if err := m.ledger.Save(idx, w.GamesPlayed(), w.PositionsPacked()); err != nil {
		log.Warningf("worker %d: final ledger save failed: %v", idx, err)
	}
}

func (m *Master) stop() {
	for _, w := range m.workers {
		w.Stop()
	}
}

// Close releases the ledger database and closes every worker's output file
// (flushing the gzip trailer first, when compression is enabled).
// Callers should invoke it after Run returns.
func (m *Master) Close() {
	m.ledger.Close()
	for _, w := range m.writers {
		w.Close()
	}
	for _, f := range m.files {
		f.Close()
	}
}

func (m *Master) pause() {
	for _, w := range m.workers {
		w.Pause()
	}
}

func (m *Master) resume() {
	for _, w := range m.workers {
		w.Resume()
	}
}

func (m *Master) report(w io.Writer, startTime time.Time) {
	elapsed := time.Since(startTime).Seconds()
	if elapsed <= 0 {
		elapsed = 1
	}

	const line = "+------------+------------+------------+------------+------------+\n"
	fmt.Fprint(w, line)
	fmt.Fprintf(w, "| %-10s | %-10s | %-10s | %-10s | %-10s |\n", "id", "games", "positions", "games/s", "pos/s")
	fmt.Fprint(w, line)

	var totalGames, totalPositions uint64
	for _, worker := range m.workers {
		g := worker.GamesPlayed()
		p := worker.PositionsPacked()
		totalGames += g
		totalPositions += p
		fmt.Fprintf(w, "| %-10d | %-10d | %-10d | %-10.1f | %-10.1f |\n",
			worker.id, g, p, float64(g)/elapsed, float64(p)/elapsed)
	}
	fmt.Fprint(w, line)
	fmt.Fprintf(w, "| %-10s | %-10d | %-10d | %-10.1f | %-10.1f |\n",
		"total", totalGames, totalPositions, float64(totalGames)/elapsed, float64(totalPositions)/elapsed)
	fmt.Fprint(w, line)
}
