// Package config holds the engine's tunable search parameters: feature
// toggles and the depth/margin constants named in the UCI "setoption"
// surface. Values default to the engine's tuned constants and may be
// overridden from a TOML file via Load, or individually via Set (the path
// used by UCI's "setoption").
package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

// searchConfiguration mirrors the pruning/reduction/extension toggles and
// their depth thresholds used by the negamax search. Field names match the
// UCI option names (case-insensitively), except NMPBaseR, which is surfaced
// as "NMPBaseReduction".
type searchConfiguration struct {
	UseRFP          bool
	UseRazoring     bool
	UseNullMove     bool
	UseProbcut      bool
	UseMulticut     bool
	UseFutility     bool
	UseSingularExt  bool
	UseSEEPruning   bool
	UseLMP          bool
	UseHistoryPrune bool
	UseThreatExt    bool
	UseHindsight    bool

	ProbcutDepth    int
	MulticutDepth   int
	ThreatExtDepth  int
	RFPMaxDepth     int
	RFPMarginPerPly int
	NMPMinDepth     int
	NMPBaseR        int
	NMPDepthDivisor int
	LMPBase         int
	LMPScale        int
	IIRMinDepth     int
	IIRReduction    int
	AWFirstWindow   int
	AWWideningPct   int

	Hash    int
	Threads int
}

type conf struct {
	Search searchConfiguration
}

// Settings is the process-wide tunable configuration, read at startup and
// mutated afterward only through Set (from UCI's "setoption").
var Settings = conf{
	Search: searchConfiguration{
		UseRFP:          true,
		UseRazoring:     true,
		UseNullMove:     true,
		UseProbcut:      true,
		UseMulticut:     true,
		UseFutility:     true,
		UseSingularExt:  true,
		UseSEEPruning:   true,
		UseLMP:          true,
		UseHistoryPrune: true,
		UseThreatExt:    true,
		UseHindsight:    true,

		ProbcutDepth:    5,
		MulticutDepth:   6,
		ThreatExtDepth:  5,
		RFPMaxDepth:     6,
		RFPMarginPerPly: 80,
		NMPMinDepth:     3,
		NMPBaseR:        7,
		NMPDepthDivisor: 3,
		LMPBase:         3,
		LMPScale:        100,
		IIRMinDepth:     4,
		IIRReduction:    2,
		AWFirstWindow:   12,
		AWWideningPct:   50,

		Hash:    16,
		Threads: 1,
	},
}

// Load reads a TOML file and overwrites any fields it declares, leaving
// unmentioned fields at their current value. An empty path is a no-op; a
// missing or unreadable file returns an error and leaves Settings at its
// current values.
func Load(path string) error {
	if path == "" {
		return nil
	}
	_, err := toml.DecodeFile(path, &Settings)
	return err
}

// Tunable describes one UCI-visible integer option with its bounds.
type Tunable struct {
	Name    string
	Default int
	Min     int
	Max     int
	get     func() int
	set     func(int)
}

// tunables is the declared set of plain-integer options surfaced over UCI,
// in addition to the boolean feature toggles (exposed via "type check").
var tunables = []Tunable{
	{"ProbcutDepth", 5, 0, 64, func() int { return Settings.Search.ProbcutDepth }, func(v int) { Settings.Search.ProbcutDepth = v }},
	{"MulticutDepth", 6, 0, 64, func() int { return Settings.Search.MulticutDepth }, func(v int) { Settings.Search.MulticutDepth = v }},
	{"ThreatExtDepth", 5, 0, 64, func() int { return Settings.Search.ThreatExtDepth }, func(v int) { Settings.Search.ThreatExtDepth = v }},
	{"RFPMaxDepth", 6, 0, 64, func() int { return Settings.Search.RFPMaxDepth }, func(v int) { Settings.Search.RFPMaxDepth = v }},
	{"RFPMarginPerPly", 80, 1, 500, func() int { return Settings.Search.RFPMarginPerPly }, func(v int) { Settings.Search.RFPMarginPerPly = v }},
	{"NMPMinDepth", 3, 1, 64, func() int { return Settings.Search.NMPMinDepth }, func(v int) { Settings.Search.NMPMinDepth = v }},
	{"NMPBaseReduction", 7, 1, 32, func() int { return Settings.Search.NMPBaseR }, func(v int) { Settings.Search.NMPBaseR = v }},
	{"NMPDepthDivisor", 3, 1, 32, func() int { return Settings.Search.NMPDepthDivisor }, func(v int) { Settings.Search.NMPDepthDivisor = v }},
	{"LMPBase", 3, 0, 64, func() int { return Settings.Search.LMPBase }, func(v int) { Settings.Search.LMPBase = v }},
	{"LMPScale", 100, 1, 1000, func() int { return Settings.Search.LMPScale }, func(v int) { Settings.Search.LMPScale = v }},
	{"IIRMinDepth", 4, 1, 64, func() int { return Settings.Search.IIRMinDepth }, func(v int) { Settings.Search.IIRMinDepth = v }},
	{"IIRReduction", 2, 0, 16, func() int { return Settings.Search.IIRReduction }, func(v int) { Settings.Search.IIRReduction = v }},
	{"AWFirstWindow", 12, 1, 500, func() int { return Settings.Search.AWFirstWindow }, func(v int) { Settings.Search.AWFirstWindow = v }},
	{"AWWideningPct", 50, 1, 500, func() int { return Settings.Search.AWWideningPct }, func(v int) { Settings.Search.AWWideningPct = v }},
}

// toggles is the declared set of boolean feature switches, surfaced as
// "type check" UCI options.
var toggles = []struct {
	Name string
	get  func() bool
	set  func(bool)
}{
	{"UseRFP", func() bool { return Settings.Search.UseRFP }, func(v bool) { Settings.Search.UseRFP = v }},
	{"UseRazoring", func() bool { return Settings.Search.UseRazoring }, func(v bool) { Settings.Search.UseRazoring = v }},
	{"UseNullMove", func() bool { return Settings.Search.UseNullMove }, func(v bool) { Settings.Search.UseNullMove = v }},
	{"UseProbcut", func() bool { return Settings.Search.UseProbcut }, func(v bool) { Settings.Search.UseProbcut = v }},
	{"UseMulticut", func() bool { return Settings.Search.UseMulticut }, func(v bool) { Settings.Search.UseMulticut = v }},
	{"UseFutility", func() bool { return Settings.Search.UseFutility }, func(v bool) { Settings.Search.UseFutility = v }},
	{"UseSingularExt", func() bool { return Settings.Search.UseSingularExt }, func(v bool) { Settings.Search.UseSingularExt = v }},
	{"UseSEEPruning", func() bool { return Settings.Search.UseSEEPruning }, func(v bool) { Settings.Search.UseSEEPruning = v }},
	{"UseLMP", func() bool { return Settings.Search.UseLMP }, func(v bool) { Settings.Search.UseLMP = v }},
	{"UseHistoryPrune", func() bool { return Settings.Search.UseHistoryPrune }, func(v bool) { Settings.Search.UseHistoryPrune = v }},
	{"UseThreatExt", func() bool { return Settings.Search.UseThreatExt }, func(v bool) { Settings.Search.UseThreatExt = v }},
	{"UseHindsight", func() bool { return Settings.Search.UseHindsight }, func(v bool) { Settings.Search.UseHindsight = v }},
}

// UCIOptionLines renders "option name ..." declarations for every tunable
// integer and feature toggle, for the "uci" command's option listing.
func UCIOptionLines() []string {
	lines := make([]string, 0, len(tunables)+len(toggles))
	for _, t := range tunables {
		lines = append(lines, fmt.Sprintf("option name %s type spin default %d min %d max %d", t.Name, t.Default, t.Min, t.Max))
	}
	for _, b := range toggles {
		lines = append(lines, fmt.Sprintf("option name %s type check default %v", b.Name, b.get()))
	}
	return lines
}

// Set applies a "setoption name <name> value <value>" pair to a declared
// tunable or toggle. Returns false if name is not a known config option
// (the caller should then try other UCI option namespaces).
func Set(name, value string) bool {
	for _, t := range tunables {
		if strings.EqualFold(t.Name, name) {
			n, err := strconv.Atoi(value)
			if err != nil {
				return true
			}
			if n < t.Min {
				n = t.Min
			}
			if n > t.Max {
				n = t.Max
			}
			t.set(n)
			return true
		}
	}
	for _, b := range toggles {
		if strings.EqualFold(b.Name, name) {
			b.set(strings.EqualFold(value, "true"))
			return true
		}
	}
	return false
}
