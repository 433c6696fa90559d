package segmenter

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/banshee-data/meltpool.report/internal/units"
)

// Toolpath is the parsed form of one G-code program: the ordered command
// list plus the indexes at which explicit layer changes occur.
type Toolpath struct {
	Commands []Command

	// LayerChangeIndexes records, for each linear move that sets only the
	// Z axis, the index the resulting command occupies in Commands.
	LayerChangeIndexes []int

	// Unit is the length unit every command magnitude is expressed in.
	Unit string

	// SkippedLines counts malformed instruction lines that were dropped.
	SkippedLines int
}

// ParseFile parses the G-code file at path. A missing or unreadable file is
// a fatal I/O error, unlike malformed lines inside the file.
func ParseFile(path, unit string) (*Toolpath, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open gcode file: %w", err)
	}
	defer f.Close()
	return Parse(f, unit)
}

// Parse reads G-code motion instructions and produces the command list.
// Only linear moves (G0/G1) are considered; other instructions are ignored.
// Malformed linear-move lines are skipped and counted, not fatal.
func Parse(r io.Reader, unit string) (*Toolpath, error) {
	if err := units.Q(0, unit).CheckDimension(units.DimLength); err != nil {
		return nil, fmt.Errorf("invalid command unit: %w", err)
	}

	tp := &Toolpath{Unit: unit}

	// One mutable current command, initialised to the machine origin.
	// Every append below copies it by value; aliasing a single record into
	// each entry would make every command the final position.
	current := Command{
		X: units.Q(0, unit),
		Y: units.Q(0, unit),
		Z: units.Q(0, unit),
		E: units.Q(0, unit),
	}

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		text := scanner.Text()

		move, ok, err := parseLinearMove(text)
		if err != nil {
			tp.SkippedLines++
			log.Printf("[segmenter] skipping %v", &ParseError{Line: lineNo, Text: strings.TrimSpace(text), Err: err})
			continue
		}
		if !ok {
			continue
		}

		// A move that sets only the Z coordinate marks a layer change at
		// the index the resulting command will occupy.
		if move.hasZ && !move.hasX && !move.hasY {
			tp.LayerChangeIndexes = append(tp.LayerChangeIndexes, len(tp.Commands))
		}

		if move.hasX {
			current.X = units.Q(move.x, unit)
		}
		if move.hasY {
			current.Y = units.Q(move.y, unit)
		}
		if move.hasZ {
			current.Z = units.Q(move.z, unit)
		}

		// Deposition is not modal: absent E means zero for this command.
		e := 0.0
		if move.hasE {
			e = move.e
		}
		current.E = units.Q(e, unit)

		tp.Commands = append(tp.Commands, current)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read gcode: %w", err)
	}

	if tp.SkippedLines > 0 {
		log.Printf("[segmenter] parsed %d commands, skipped %d malformed lines", len(tp.Commands), tp.SkippedLines)
	}
	return tp, nil
}

// linearMove holds the axis words present on one G0/G1 line.
type linearMove struct {
	x, y, z, e             float64
	hasX, hasY, hasZ, hasE bool
}

// parseLinearMove splits one G-code line. Returns ok=false for lines that
// are not linear moves (comments, other G/M codes, blank lines) and an
// error for linear moves with unparseable axis words.
func parseLinearMove(line string) (linearMove, bool, error) {
	var mv linearMove

	line = stripComments(line)
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return mv, false, nil
	}

	switch strings.ToUpper(fields[0]) {
	case "G0", "G00", "G1", "G01":
	default:
		return mv, false, nil
	}

	for _, word := range fields[1:] {
		if len(word) < 2 {
			return mv, false, fmt.Errorf("bare word %q", word)
		}
		letter := word[0]
		value, err := strconv.ParseFloat(word[1:], 64)
		if err != nil {
			return mv, false, fmt.Errorf("invalid %c value %q", letter, word[1:])
		}
		switch letter {
		case 'X', 'x':
			mv.x, mv.hasX = value, true
		case 'Y', 'y':
			mv.y, mv.hasY = value, true
		case 'Z', 'z':
			mv.z, mv.hasZ = value, true
		case 'E', 'e':
			mv.e, mv.hasE = value, true
		default:
			// Feed rate and other words are irrelevant to segmentation.
		}
	}
	return mv, true, nil
}

// stripComments removes ;-to-end-of-line and (...) comments.
func stripComments(line string) string {
	if i := strings.IndexByte(line, ';'); i >= 0 {
		line = line[:i]
	}
	for {
		open := strings.IndexByte(line, '(')
		if open < 0 {
			break
		}
		close := strings.IndexByte(line[open:], ')')
		if close < 0 {
			line = line[:open]
			break
		}
		line = line[:open] + line[open+close+1:]
	}
	return line
}

// Layers splits the command list at the recorded layer-change indexes. The
// slice for each layer shares backing storage with Commands; commands are
// immutable once parsed so this is safe.
func (tp *Toolpath) Layers() [][]Command {
	if len(tp.Commands) == 0 {
		return nil
	}
	var layers [][]Command
	start := 0
	for _, idx := range tp.LayerChangeIndexes {
		if idx <= start || idx > len(tp.Commands) {
			continue
		}
		layers = append(layers, tp.Commands[start:idx])
		start = idx
	}
	if start < len(tp.Commands) {
		layers = append(layers, tp.Commands[start:])
	}
	return layers
}
