package main

import (
	"bufio"
	"fmt"
	"math/big"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/oisee/gcmc/internal/asm"
	"github.com/oisee/gcmc/internal/checker"
	"github.com/oisee/gcmc/internal/coordinator"
	"github.com/oisee/gcmc/internal/core"
	"github.com/oisee/gcmc/internal/decode"
	"github.com/oisee/gcmc/internal/memory"
	"github.com/oisee/gcmc/internal/report"
	"github.com/oisee/gcmc/internal/simulator"
	"github.com/oisee/gcmc/internal/word"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "gcmc",
		Short: "gcmc — explicit-state model checker for global-configuration programs",
	}

	var (
		binPaths    []string
		cfgPath     string
		outPath     string
		strategyStr string
		verbose     bool
		useGUI      bool
	)

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Explore a configuration to fixpoint under a fixed set of cores",
		RunE: func(cmd *cobra.Command, args []string) error {
			if useGUI {
				return fmt.Errorf("graphical inspector is out of scope")
			}
			return runExploration(binPaths, cfgPath, outPath, strategyStr, verbose)
		},
	}
	runCmd.Flags().StringArrayVarP(&binPaths, "core", "c", nil, "path to a compiled core binary (repeatable, order matters)")
	runCmd.Flags().StringVarP(&cfgPath, "config", "f", "", "path to the initial configuration file")
	runCmd.Flags().StringVarP(&outPath, "output", "o", "", "CSV output path (defaults to stdout)")
	runCmd.Flags().StringVar(&strategyStr, "strategy", "dfs", "exploration order: dfs or bfs")
	runCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "print per-step progress")
	runCmd.Flags().BoolVar(&useGUI, "gui", false, "launch the graphical inspector (unsupported)")

	var decodeBin string
	decodeCmd := &cobra.Command{
		Use:   "decode",
		Short: "Disassemble a compiled core binary",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDecode(decodeBin)
		},
	}
	decodeCmd.Flags().StringVarP(&decodeBin, "core", "c", "", "path to a compiled core binary")

	var asmSrc, asmOut string
	asmCmd := &cobra.Command{
		Use:   "asm",
		Short: "Assemble a text source file into a core binary",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAssemble(asmSrc, asmOut)
		},
	}
	asmCmd.Flags().StringVarP(&asmSrc, "source", "s", "", "path to the assembly source file")
	asmCmd.Flags().StringVarP(&asmOut, "output", "o", "", "path to write the assembled binary")

	rootCmd.AddCommand(runCmd, decodeCmd, asmCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runExploration(binPaths []string, cfgPath, outPath, strategyStr string, verbose bool) error {
	if len(binPaths) == 0 {
		return fmt.Errorf("at least one --core binary is required")
	}
	if cfgPath == "" {
		return fmt.Errorf("--config is required")
	}

	cores := make([]*core.Core, 0, len(binPaths))
	for i, p := range binPaths {
		f, err := os.Open(p)
		if err != nil {
			return fmt.Errorf("opening core %d binary: %w", i, err)
		}
		src, err := word.FromReader(f)
		f.Close()
		if err != nil {
			return fmt.Errorf("reading core %d binary: %w", i, err)
		}
		cores = append(cores, core.NewCore(i, src))
	}

	initial, width, err := loadConfig(cfgPath)
	if err != nil {
		return err
	}

	strategy := checker.DFS
	if strategyStr == "bfs" {
		strategy = checker.BFS
	}

	logger := log.New(os.Stderr)
	if verbose {
		logger.SetLevel(log.DebugLevel)
	} else {
		logger.SetLevel(log.InfoLevel)
	}

	co := coordinator.New(cores)
	ch := checker.New(strategy)
	sim := simulator.New(co, ch, logger)

	n, err := sim.LaunchChecking(initial)
	if err != nil {
		return fmt.Errorf("exploring: %w", err)
	}

	row := report.Row{
		Binaries:        binPaths,
		ConfigWidth:     width,
		ConfigsExplored: n,
		WorstCaseCycles: sim.WorstCaseCycles(),
		ReachedFixpoint: true,
	}

	out := os.Stdout
	if outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer f.Close()
		out = f
	}
	if err := report.WriteCSV(out, true, row); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	return nil
}

// loadConfig reads a bare hex literal on the first line of path and builds
// the initial Configuration. The declared bit width is 4 times the number
// of hex digits on that line.
func loadConfig(path string) (*memory.Configuration, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("opening config: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	if !scanner.Scan() {
		return nil, 0, fmt.Errorf("config file %s is empty", path)
	}
	line := scanner.Text()

	v, ok := new(big.Int).SetString(line, 16)
	if !ok {
		return nil, 0, fmt.Errorf("config file %s: %q is not a hex literal", path, line)
	}
	width := len(line) * 4

	return memory.FromBigInt(width, v), width, nil
}

func runDecode(binPath string) error {
	if binPath == "" {
		return fmt.Errorf("--core is required")
	}
	f, err := os.Open(binPath)
	if err != nil {
		return fmt.Errorf("opening binary: %w", err)
	}
	defer f.Close()

	src, err := word.FromReader(f)
	if err != nil {
		return fmt.Errorf("reading binary: %w", err)
	}

	for i := 0; i < src.Len(); i++ {
		w := src.Word(i)
		in := decode.Decode(w)
		fmt.Printf("%04d  %08x  %s\n", i, w, asm.Disassemble(in))
		if w == word.Sentinel {
			break
		}
	}
	return nil
}

func runAssemble(srcPath, outPath string) error {
	if srcPath == "" {
		return fmt.Errorf("--source is required")
	}
	data, err := os.ReadFile(srcPath)
	if err != nil {
		return fmt.Errorf("reading source: %w", err)
	}

	words, errs := asm.Assemble(string(data))
	if len(errs) > 0 {
		for _, e := range errs {
			fmt.Fprintln(os.Stderr, e)
		}
		return fmt.Errorf("assembly failed with %d error(s)", len(errs))
	}

	buf := make([]byte, 0, len(words)*4)
	for _, w := range words {
		buf = append(buf, byte(w), byte(w>>8), byte(w>>16), byte(w>>24))
	}

	out := os.Stdout
	if outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("creating output: %w", err)
		}
		defer f.Close()
		out = f
	}
	if _, err := out.Write(buf); err != nil {
		return fmt.Errorf("writing binary: %w", err)
	}
	return nil
}
