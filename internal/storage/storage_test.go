package storage

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLedgerSaveAndLoad(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "chessplay-ledger-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	ledger, err := OpenLedger(filepath.Join(tmpDir, "ledger"))
	if err != nil {
		t.Fatalf("OpenLedger failed: %v", err)
	}
	defer ledger.Close()

	games, positions, err := ledger.Load(0)
	if err != nil {
		t.Fatalf("Load on empty ledger failed: %v", err)
	}
	if games != 0 || positions != 0 {
		t.Errorf("Expected zero counters for unseen worker, got games=%d positions=%d", games, positions)
	}

	if err := ledger.Save(0, 42, 1337); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	games, positions, err = ledger.Load(0)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if games != 42 || positions != 1337 {
		t.Errorf("Expected games=42 positions=1337, got games=%d positions=%d", games, positions)
	}
}

func TestLedgerTracksWorkersIndependently(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "chessplay-ledger-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	ledger, err := OpenLedger(filepath.Join(tmpDir, "ledger"))
	if err != nil {
		t.Fatalf("OpenLedger failed: %v", err)
	}
	defer ledger.Close()

	if err := ledger.Save(0, 1, 10); err != nil {
		t.Fatalf("Save(0) failed: %v", err)
	}
	if err := ledger.Save(1, 2, 20); err != nil {
		t.Fatalf("Save(1) failed: %v", err)
	}

	games0, positions0, _ := ledger.Load(0)
	games1, positions1, _ := ledger.Load(1)

	if games0 != 1 || positions0 != 10 {
		t.Errorf("worker 0: expected games=1 positions=10, got games=%d positions=%d", games0, positions0)
	}
	if games1 != 2 || positions1 != 20 {
		t.Errorf("worker 1: expected games=2 positions=20, got games=%d positions=%d", games1, positions1)
	}
}

func TestDataPaths(t *testing.T) {
	dataDir, err := GetDataDir()
	if err != nil {
		t.Fatalf("GetDataDir failed: %v", err)
	}
	if dataDir == "" {
		t.Error("GetDataDir returned empty path")
	}

	if _, err := os.Stat(dataDir); os.IsNotExist(err) {
		t.Errorf("Data directory was not created: %s", dataDir)
	}

	t.Logf("Data directory: %s", dataDir)
}
