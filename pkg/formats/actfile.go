package formats

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/Faultbox/project-tails/pkg/math"
	"github.com/Faultbox/project-tails/pkg/terrain"
)

// Act file errors.
var (
	ErrTruncatedAct           = errors.New("truncated act data")
	ErrInvalidActField        = errors.New("invalid act field")
	ErrInvalidTilePosition    = errors.New("tile position not aligned to block grid")
	ErrTilePositionOutOfRange = errors.New("tile position out of grid range")
	ErrTrailingActData        = errors.New("trailing act data")
)

// EntityListEnd terminates the entity list of an act file.
const EntityListEnd = "E"

// maxActCells bounds width*height of a level grid.
const maxActCells = 1 << 20

// Entity is an object placement from an act file.
type Entity struct {
	Position math.Vec2
	Kind     string
	Flags    []string
}

// String formats the entity as an act file line.
func (e Entity) String() string {
	parts := make([]string, 0, 3+len(e.Flags))
	parts = append(parts,
		formatFloat(e.Position.X),
		formatFloat(e.Position.Y),
		e.Kind,
	)
	parts = append(parts, e.Flags...)
	return strings.Join(parts, " ")
}

// Act is a parsed act (level) file.
//
// Layout, one item per line:
//
//	version
//	name
//	entity lines ("x y kind flag...")
//	E
//	act type, tileset image, block path, background path
//	tile count
//	width height (in blocks)
//	tile lines ("x_px y_px block_index [flags]")
type Act struct {
	Version  string
	Name     string
	Entities []Entity

	Type           string // e.g. NORMAL
	Tileset        string // e.g. EmeraldHillZone.png
	BlockPath      string // e.g. EmeraldHillZone/Block
	BackgroundPath string // e.g. EmeraldHillZone/Background/

	Width int
	Tiles []terrain.Cell // row-major, Width * Height cells
}

// Height returns the number of block rows.
func (a *Act) Height() int {
	if a.Width == 0 {
		return 0
	}
	return len(a.Tiles) / a.Width
}

// Grid returns the placement grid of the act.
func (a *Act) Grid() terrain.Grid {
	cells := make([]terrain.Cell, len(a.Tiles))
	copy(cells, a.Tiles)
	return terrain.Grid{Width: a.Width, Cells: cells}
}

// PlacedCount returns the number of occupied cells.
func (a *Act) PlacedCount() int {
	n := 0
	for _, c := range a.Tiles {
		if c.Present {
			n++
		}
	}
	return n
}

// lineReader yields lines with their 1-based line numbers.
type lineReader struct {
	sc   *bufio.Scanner
	line int
}

func newLineReader(data []byte) *lineReader {
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return &lineReader{sc: sc}
}

func (r *lineReader) next() (string, bool) {
	if !r.sc.Scan() {
		return "", false
	}
	r.line++
	return r.sc.Text(), true
}

// expect returns the next line or a truncation error naming what was expected.
func (r *lineReader) expect(what string) (string, error) {
	s, ok := r.next()
	if !ok {
		return "", fmt.Errorf("%w: expected %s after line %d", ErrTruncatedAct, what, r.line)
	}
	return s, nil
}

// ParseAct parses an act file from raw bytes.
func ParseAct(data []byte) (*Act, error) {
	r := newLineReader(data)
	act := &Act{}

	var err error
	if act.Version, err = r.expect("version"); err != nil {
		return nil, err
	}
	if act.Name, err = r.expect("name"); err != nil {
		return nil, err
	}

	for {
		line, err := r.expect("entity list terminator " + strconv.Quote(EntityListEnd))
		if err != nil {
			return nil, err
		}
		if line == EntityListEnd {
			break
		}
		entity, err := parseEntity(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", r.line, err)
		}
		act.Entities = append(act.Entities, entity)
	}

	for _, field := range []struct {
		dst  *string
		what string
	}{
		{&act.Type, "act type"},
		{&act.Tileset, "tileset image"},
		{&act.BlockPath, "block path"},
		{&act.BackgroundPath, "background path"},
	} {
		if *field.dst, err = r.expect(field.what); err != nil {
			return nil, err
		}
	}

	line, err := r.expect("tile count")
	if err != nil {
		return nil, err
	}
	tileCount, err := parseUint(line, "tile count")
	if err != nil {
		return nil, fmt.Errorf("line %d: %w", r.line, err)
	}

	line, err = r.expect("width and height")
	if err != nil {
		return nil, err
	}
	dims, err := splitFields(line, 2, 2, "width and height")
	if err != nil {
		return nil, fmt.Errorf("line %d: %w", r.line, err)
	}
	width, err := parseUint(dims[0], "width")
	if err != nil {
		return nil, fmt.Errorf("line %d: %w", r.line, err)
	}
	height, err := parseUint(dims[1], "height")
	if err != nil {
		return nil, fmt.Errorf("line %d: %w", r.line, err)
	}

	if width > 0 && height > maxActCells/width {
		return nil, fmt.Errorf("line %d: %w: grid %dx%d too large", r.line, ErrInvalidActField, width, height)
	}

	act.Width = width
	act.Tiles = make([]terrain.Cell, width*height)

	for i := 0; i < tileCount; i++ {
		line, err := r.expect(fmt.Sprintf("tile %d of %d", i+1, tileCount))
		if err != nil {
			return nil, err
		}
		if err := act.parseTile(line, height); err != nil {
			return nil, fmt.Errorf("line %d: %w", r.line, err)
		}
	}

	if _, ok := r.next(); ok {
		return nil, fmt.Errorf("%w: line %d after end of tile list", ErrTrailingActData, r.line)
	}
	if err := r.sc.Err(); err != nil {
		return nil, fmt.Errorf("reading act data: %w", err)
	}

	return act, nil
}

// parseTile parses "x_px y_px block_index [flags]" into the grid.
// A later line for the same position replaces the earlier one.
func (a *Act) parseTile(line string, height int) error {
	fields, err := splitFields(line, 3, 4, "tile")
	if err != nil {
		return err
	}

	x, err := parseUint(fields[0], "tile x")
	if err != nil {
		return err
	}
	y, err := parseUint(fields[1], "tile y")
	if err != nil {
		return err
	}
	block, err := parseUint(fields[2], "block index")
	if err != nil {
		return err
	}
	var flags uint64
	if len(fields) == 4 {
		flags, err = strconv.ParseUint(fields[3], 10, 32)
		if err != nil {
			return fmt.Errorf("%w: tile flags %q", ErrInvalidActField, fields[3])
		}
	}

	if x%terrain.BlockSize != 0 || y%terrain.BlockSize != 0 {
		return fmt.Errorf("%w: %d, %d", ErrInvalidTilePosition, x, y)
	}
	bx, by := x/terrain.BlockSize, y/terrain.BlockSize
	if bx >= a.Width || by >= height {
		return fmt.Errorf("%w: %d, %d", ErrTilePositionOutOfRange, bx, by)
	}

	a.Tiles[by*a.Width+bx] = terrain.Place(block, uint32(flags))
	return nil
}

// parseEntity parses "x y kind flag...". Repeated spaces are ignored.
func parseEntity(line string) (Entity, error) {
	fields := strings.Fields(line)
	if len(fields) < 3 {
		return Entity{}, fmt.Errorf("%w: entity needs x, y and kind, got %q", ErrInvalidActField, line)
	}

	x, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return Entity{}, fmt.Errorf("%w: entity x %q", ErrInvalidActField, fields[0])
	}
	y, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return Entity{}, fmt.Errorf("%w: entity y %q", ErrInvalidActField, fields[1])
	}

	e := Entity{
		Position: math.Vec2{X: x, Y: y},
		Kind:     fields[2],
	}
	if len(fields) > 3 {
		e.Flags = append([]string(nil), fields[3:]...)
	}
	return e, nil
}

// splitFields splits a single-space separated line and checks the field count.
func splitFields(line string, minFields, maxFields int, what string) ([]string, error) {
	fields := strings.Split(line, " ")
	if len(fields) < minFields {
		return nil, fmt.Errorf("%w: %s needs %d fields, got %q", ErrInvalidActField, what, minFields, line)
	}
	if len(fields) > maxFields {
		return nil, fmt.Errorf("%w: after %s in %q", ErrTrailingActData, what, line)
	}
	return fields, nil
}

func parseUint(s, what string) (int, error) {
	v, err := strconv.ParseUint(s, 10, 0)
	if err != nil || v > uint64(^uint(0)>>1) {
		return 0, fmt.Errorf("%w: %s %q", ErrInvalidActField, what, s)
	}
	return int(v), nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// MarshalText serializes the act back to its text form.
// Tiles are written in row-major order with explicit flags, so a file in that
// canonical form round-trips byte for byte.
func (a *Act) MarshalText() ([]byte, error) {
	if a.Width < 0 || (a.Width == 0 && len(a.Tiles) > 0) || (a.Width > 0 && len(a.Tiles)%a.Width != 0) {
		return nil, fmt.Errorf("act grid of %d cells does not fit width %d", len(a.Tiles), a.Width)
	}

	var buf bytes.Buffer
	writeLine := func(s string) {
		buf.WriteString(s)
		buf.WriteByte('\n')
	}

	writeLine(a.Version)
	writeLine(a.Name)
	for _, e := range a.Entities {
		writeLine(e.String())
	}
	writeLine(EntityListEnd)
	writeLine(a.Type)
	writeLine(a.Tileset)
	writeLine(a.BlockPath)
	writeLine(a.BackgroundPath)
	writeLine(strconv.Itoa(a.PlacedCount()))
	writeLine(fmt.Sprintf("%d %d", a.Width, a.Height()))

	for i, c := range a.Tiles {
		if !c.Present {
			continue
		}
		x := (i % a.Width) * terrain.BlockSize
		y := (i / a.Width) * terrain.BlockSize
		writeLine(fmt.Sprintf("%d %d %d %d", x, y, c.BlockID, c.Flags))
	}

	return buf.Bytes(), nil
}

// ParseActFile parses an act file from disk.
func ParseActFile(path string) (*Act, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading act file: %w", err)
	}
	return ParseAct(data)
}

// WriteActFile serializes the act to disk.
func WriteActFile(path string, act *Act) error {
	data, err := act.MarshalText()
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
