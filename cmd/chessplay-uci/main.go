package main

import (
	"flag"
	"os"
	"path/filepath"
	"runtime/pprof"
	"strconv"

	"github.com/hailam/chessplay/internal/config"
	"github.com/hailam/chessplay/internal/datagen"
	"github.com/hailam/chessplay/internal/engine"
	"github.com/hailam/chessplay/internal/logging"
	"github.com/hailam/chessplay/internal/storage"
	"github.com/hailam/chessplay/internal/uci"
)

var log = logging.Get("main")

// Default NNUE file names (Stockfish compatible)
const (
	defaultBigNet   = "nn-c288c895ea92.nnue" // ~108MB
	defaultSmallNet = "nn-37f18f62d772.nnue" // ~3.5MB
)

var cpuprofile = flag.String("cpuprofile", "", "write cpu profile to file")
var configFile = flag.String("config", "", "TOML file overriding search tunables (see internal/config)")

func main() {
	// "datagen <threads> <output_directory>" is dispatched before flag.Parse
	// so it can own its own argument list instead of sharing the UCI flags.
	if len(os.Args) > 1 && os.Args[1] == "datagen" {
		runDatagen(os.Args[2:])
		return
	}

	flag.Parse()

	if err := config.Load(*configFile); err != nil {
		log.Infof("config: %v (using defaults)", err)
	}

	// Start CPU profiling if requested (via flag or environment variable)
	profilePath := *cpuprofile
	if profilePath == "" {
		profilePath = os.Getenv("CPUPROFILE")
	}
	if profilePath != "" {
		f, err := os.Create(profilePath)
		if err != nil {
			log.Fatalf("could not create CPU profile: %v", err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			log.Fatalf("could not start CPU profile: %v", err)
		}
		defer pprof.StopCPUProfile()
		log.Infof("CPU profiling enabled, writing to %s", profilePath)
	}

	// Create engine with 64MB hash table
	// Multi-threaded search enabled (Lazy SMP)
	eng := engine.NewEngine(64)

	// Auto-load NNUE from default locations
	if err := autoLoadNNUE(eng); err != nil {
		log.Warningf("NNUE not loaded: %v (using classical evaluation)", err)
	}

	// Create and run UCI protocol handler
	protocol := uci.New(eng)
	protocol.Run()
}

// runDatagen implements the "datagen <threads> <output_directory>" CLI
// contract: run self-play workers until "stop" is read from stdin. An
// optional trailing "--compress" gzips each worker's output file.
func runDatagen(args []string) {
	if len(args) < 2 {
		log.Fatal("usage: chessplay-uci datagen <threads> <output_directory> [--compress]")
	}

	threads, err := strconv.Atoi(args[0])
	if err != nil || threads < 1 {
		log.Fatalf("datagen: invalid thread count %q", args[0])
	}
	dirPath := args[1]

	compress := false
	for _, a := range args[2:] {
		if a == "--compress" {
			compress = true
		}
	}

	master, err := datagen.NewMaster(threads, 32, dirPath, int64(os.Getpid()), compress)
	if err != nil {
		log.Fatalf("datagen: %v", err)
	}
	defer master.Close()

	master.Run(os.Stdin, os.Stdout)
}

// autoLoadNNUE attempts to load NNUE weights from standard locations
func autoLoadNNUE(eng *engine.Engine) error {
	searchPaths := []string{"./nnue", "."}
	if nnueDir, err := storage.GetNNUEDir(); err == nil {
		searchPaths = append([]string{nnueDir}, searchPaths...)
	}

	for _, dir := range searchPaths {
		bigPath := filepath.Join(dir, defaultBigNet)
		smallPath := filepath.Join(dir, defaultSmallNet)

		if fileExists(bigPath) && fileExists(smallPath) {
			if err := eng.LoadNNUE(bigPath, smallPath); err != nil {
				log.Warningf("Failed to load NNUE from %s: %v", dir, err)
				continue
			}
			eng.SetUseNNUE(true)
			log.Infof("NNUE loaded from %s", dir)
			return nil
		}
	}

	return os.ErrNotExist
}

// fileExists checks if a file exists
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
