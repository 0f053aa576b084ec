// Command lfreplay checks and inspects deblocking snapshots written through
// deblock.Options.Capture.
//
// Usage:
//
//	lfreplay replay [options] <snapshot>   Re-run the filter and compare with the recorded output
//	lfreplay info <snapshot>               Describe a snapshot
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/deepteams/deblock/internal/capture"
	"github.com/deepteams/deblock/internal/lf"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "replay":
		err = runReplay(os.Args[2:])
	case "info":
		err = runInfo(os.Args[2:])
	case "-h", "-help", "--help", "help":
		printUsage()
		return
	default:
		fmt.Fprintf(os.Stderr, "lfreplay: unknown command %q\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "lfreplay: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `Usage:
  lfreplay replay [options] <snapshot>   Re-run the filter and compare with the recorded output
  lfreplay info <snapshot>               Describe a snapshot

Use "-" as input to read from stdin.

Run "lfreplay <command> -h" for command-specific options.
`)
}

// openInput returns an io.ReadCloser for the given path.
// If path is "-", stdin is returned (caller should not close).
func openInput(path string) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	return os.Open(path)
}

func readSnapshot(path string) (*capture.Snapshot, error) {
	in, err := openInput(path)
	if err != nil {
		return nil, err
	}
	defer in.Close()
	return capture.Read(in)
}

// --- replay ---

func runReplay(args []string) error {
	fs := flag.NewFlagSet("replay", flag.ContinueOnError)
	output := fs.String("o", "", "write the snapshot with the replayed output as its expected output")
	quiet := fs.Bool("q", false, "print nothing on success")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("replay: missing snapshot\nUsage: lfreplay replay [options] <snapshot>")
	}
	s, err := readSnapshot(fs.Arg(0))
	if err != nil {
		return fmt.Errorf("replay: %w", err)
	}

	got, err := capture.Replay(s)
	if err != nil {
		return fmt.Errorf("replay: %w", err)
	}

	if *output != "" {
		s.Expected = got
		if err := writeSnapshot(*output, s); err != nil {
			return fmt.Errorf("replay: %w", err)
		}
		if !*quiet {
			fmt.Printf("Wrote %s\n", *output)
		}
		return nil
	}

	if !s.HasExpected() {
		return fmt.Errorf("replay: snapshot has no recorded output (use -o to record one)")
	}
	if err := capture.Compare(got, s.Expected); err != nil {
		var m *capture.Mismatch
		if errors.As(err, &m) {
			return fmt.Errorf("replay: %d samples differ, first in %s at (%d,%d): got %d, want %d",
				m.Count, planeName(m.Plane), m.X, m.Y, m.Got, m.Want)
		}
		return fmt.Errorf("replay: %w", err)
	}
	if !*quiet {
		fmt.Printf("OK: %dx%d %s %d-bit, %d superblock rows bit-exact\n",
			s.Header.Width, s.Header.Height, s.Header.Layout, s.BitDepth, s.Header.SBRows())
	}
	return nil
}

func writeSnapshot(path string, s *capture.Snapshot) error {
	if path == "-" {
		return capture.Write(os.Stdout, s)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := capture.Write(f, s); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func planeName(i int) string {
	return [...]string{"Y", "U", "V"}[i]
}

// --- info ---

func runInfo(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("info: missing snapshot\nUsage: lfreplay info <snapshot>")
	}
	inputPath := args[0]

	s, err := readSnapshot(inputPath)
	if err != nil {
		return fmt.Errorf("info: %w", err)
	}

	name := inputPath
	if inputPath == "-" {
		name = "<stdin>"
	}
	h := &s.Header
	sb := 64
	if h.SB128 {
		sb = 128
	}

	fmt.Printf("File:        %s\n", name)
	fmt.Printf("Dimensions:  %d x %d\n", h.Width, h.Height)
	fmt.Printf("Layout:      %s\n", h.Layout)
	fmt.Printf("Bit depth:   %d\n", s.BitDepth)
	fmt.Printf("Superblock:  %dx%d, %d rows\n", sb, sb, h.SBRows())
	fmt.Printf("Sharpness:   %d\n", h.Sharpness)
	fmt.Printf("Chroma:      U %d, V %d\n", h.LevelU, h.LevelV)
	fmt.Printf("Tiles:       %d x %d\n", max(len(h.TileColStartSB), 1), max(len(h.TileRowStartSB), 1))
	fmt.Printf("Edges:       %s\n", edgeSummary(s))
	fmt.Printf("Output:      %v\n", s.HasExpected())

	if inputPath != "-" {
		fi, err := os.Stat(inputPath)
		if err == nil {
			fmt.Printf("File size:   %d bytes\n", fi.Size())
		}
	}
	return nil
}

// edgeSummary counts the flagged luma edges of each tier, before tile
// boundary caps.
func edgeSummary(s *capture.Snapshot) string {
	var n [4]int
	for i := range s.Masks {
		for d := range s.Masks[i].Luma {
			for y := range s.Masks[i].Luma[d] {
				m := &s.Masks[i].Luma[d][y]
				for k := 0; k < 32; k++ {
					n[m.Tier(k)]++
				}
			}
		}
	}
	names := [...]string{"", "narrow", "wide", "widest"}
	var parts []string
	for t := lf.TierNarrow; t <= lf.TierWidest; t++ {
		parts = append(parts, fmt.Sprintf("%d %s", n[t], names[t]))
	}
	return strings.Join(parts, ", ")
}
