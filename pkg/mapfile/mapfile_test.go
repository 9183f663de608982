package mapfile

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/transform"

	"github.com/Faultbox/gridmove/pkg/grid"
)

// createTestGAT creates a minimal valid GAT file for testing.
func createTestGAT(width, height uint32, major uint8, cellTypes []GATCellType) []byte {
	buf := new(bytes.Buffer)
	buf.WriteString("GRAT")
	buf.WriteByte(2) // minor
	buf.WriteByte(major)
	binary.Write(buf, binary.LittleEndian, width)
	binary.Write(buf, binary.LittleEndian, height)

	for i := 0; i < int(width*height); i++ {
		for j := 0; j < 4; j++ {
			binary.Write(buf, binary.LittleEndian, float32(j))
		}
		cellType := GATWalkable
		if i < len(cellTypes) {
			cellType = cellTypes[i]
		}
		binary.Write(buf, binary.LittleEndian, uint32(cellType))
	}
	return buf.Bytes()
}

func terrainAt(t *testing.T, m *Map, x, y int) grid.Terrain {
	t.Helper()
	v, ok := m.Grid.Index(x, y)
	if !ok {
		t.Fatalf("(%d,%d) outside %dx%d map", x, y, m.Grid.Width(), m.Grid.Height())
	}
	return m.Grid.Terrain(v)
}

func TestParseYAML_Rows(t *testing.T) {
	data := []byte(`
name: Goblin Cave
rows:
  - "#..."
  - ".~.."
  - "...#"
`)
	m, err := ParseYAML(data)
	if err != nil {
		t.Fatalf("ParseYAML: %v", err)
	}

	if m.Name != "Goblin Cave" || m.Kind != KindSquare {
		t.Errorf("name/kind = %q/%q", m.Name, m.Kind)
	}
	if m.Grid.Width() != 4 || m.Grid.Height() != 3 {
		t.Fatalf("size = %dx%d, want 4x3", m.Grid.Width(), m.Grid.Height())
	}

	tests := []struct {
		x, y int
		want grid.Terrain
	}{
		{0, 2, grid.Blocked}, // first row is north
		{1, 1, grid.Dangerous},
		{3, 0, grid.Blocked},
		{0, 0, grid.Open},
	}
	for _, tt := range tests {
		if got := terrainAt(t, m, tt.x, tt.y); got != tt.want {
			t.Errorf("(%d,%d) = %s, want %s", tt.x, tt.y, got, tt.want)
		}
	}
}

func TestParseYAML_ZonesAndCells(t *testing.T) {
	data := []byte(`
kind: square
width: 6
height: 6
zones:
  - terrain: blocked
    polygon: [[1, 1], [5, 1], [5, 5], [1, 5]]
  - terrain: dangerous
    polygon: [[2, 2], [4, 2], [4, 4], [2, 4]]
cells:
  - {x: 3, y: 3, terrain: open}
`)
	m, err := ParseYAML(data)
	if err != nil {
		t.Fatalf("ParseYAML: %v", err)
	}

	tests := []struct {
		x, y int
		want grid.Terrain
	}{
		{0, 0, grid.Open},
		{1, 1, grid.Blocked},
		{4, 4, grid.Blocked},
		{5, 5, grid.Open},
		{2, 2, grid.Dangerous}, // later zone wins
		{3, 2, grid.Dangerous},
		{3, 3, grid.Open}, // cell override applied last
	}
	for _, tt := range tests {
		if got := terrainAt(t, m, tt.x, tt.y); got != tt.want {
			t.Errorf("(%d,%d) = %s, want %s", tt.x, tt.y, got, tt.want)
		}
	}
}

func TestParseYAML_Fill(t *testing.T) {
	data := []byte(`
width: 5
height: 3
fill: blocked
zones:
  - terrain: open
    polygon: [[1, 1], [4, 1], [4, 2], [1, 2]]
`)
	m, err := ParseYAML(data)
	if err != nil {
		t.Fatalf("ParseYAML: %v", err)
	}

	counts := m.Grid.Count()
	if counts[grid.Open] != 3 || counts[grid.Blocked] != 12 {
		t.Errorf("counts = %v, want 3 open and 12 blocked", counts)
	}
	if got := terrainAt(t, m, 2, 1); got != grid.Open {
		t.Errorf("(2,1) = %s, want open", got)
	}

	if _, err := ParseYAML([]byte("width: 2\nheight: 2\nfill: lava\n")); !errors.Is(err, ErrInvalidMap) {
		t.Errorf("bad fill error = %v, want ErrInvalidMap", err)
	}
}

func TestParseYAML_TriangleZone(t *testing.T) {
	data := []byte(`
width: 4
height: 4
zones:
  - terrain: blocked
    polygon: [[0, 0], [4, 0], [0, 4]]
`)
	m, err := ParseYAML(data)
	if err != nil {
		t.Fatalf("ParseYAML: %v", err)
	}

	// Centres below the diagonal x+y=4 are inside. Centres on it are skipped.
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			if x+y == 3 {
				continue
			}
			inside := x+y < 3
			want := grid.Open
			if inside {
				want = grid.Blocked
			}
			if got := terrainAt(t, m, x, y); got != want {
				t.Errorf("(%d,%d) = %s, want %s", x, y, got, want)
			}
		}
	}
}

func TestParseYAML_Hex(t *testing.T) {
	m, err := ParseYAML([]byte("kind: hex\nwidth: 3\nheight: 2\n"))
	if err != nil {
		t.Fatalf("ParseYAML: %v", err)
	}
	if _, ok := m.Grid.(*grid.Hex); !ok {
		t.Errorf("grid is %T, want *grid.Hex", m.Grid)
	}
	if _, ok := m.Square(); ok {
		t.Error("hex map reported as square")
	}
}

func TestParseYAML_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"no size", "name: empty\n"},
		{"bad kind", "kind: triangle\nwidth: 2\nheight: 2\n"},
		{"ragged rows", "rows:\n  - \"...\"\n  - \"..\"\n"},
		{"row count", "width: 2\nheight: 3\nrows:\n  - \"..\"\n"},
		{"bad rune", "rows:\n  - \".x\"\n"},
		{"bad zone terrain", "width: 2\nheight: 2\nzones:\n  - terrain: lava\n    polygon: [[0,0],[1,0],[1,1]]\n"},
		{"short polygon", "width: 2\nheight: 2\nzones:\n  - terrain: blocked\n    polygon: [[0,0],[1,0]]\n"},
		{"cell outside", "width: 2\nheight: 2\ncells:\n  - {x: 5, y: 0, terrain: blocked}\n"},
		{"too large", "width: 100000\nheight: 100000\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseYAML([]byte(tt.data)); !errors.Is(err, ErrInvalidMap) {
				t.Errorf("error = %v, want ErrInvalidMap", err)
			}
		})
	}

	if _, err := ParseYAML([]byte("width: [\n")); err == nil {
		t.Error("expected yaml syntax error")
	}
}

func TestParseYAML_EUCKR(t *testing.T) {
	utf := "name: 프론테라\nwidth: 2\nheight: 1\n"
	encoded, _, err := transform.Bytes(korean.EUCKR.NewEncoder(), []byte(utf))
	if err != nil {
		t.Fatalf("encoding test data: %v", err)
	}

	m, err := ParseYAML(encoded)
	if err != nil {
		t.Fatalf("ParseYAML: %v", err)
	}
	if m.Name != "프론테라" {
		t.Errorf("name = %q, want 프론테라", m.Name)
	}
}

func TestMarshalYAML_RoundTrip(t *testing.T) {
	src := []byte("name: loop\nrows:\n  - \"#.~\"\n  - \"..#\"\n")
	m, err := ParseYAML(src)
	if err != nil {
		t.Fatalf("ParseYAML: %v", err)
	}

	out, err := MarshalYAML(m)
	if err != nil {
		t.Fatalf("MarshalYAML: %v", err)
	}
	back, err := ParseYAML(out)
	if err != nil {
		t.Fatalf("ParseYAML(marshalled): %v", err)
	}

	for v := 0; v < m.Grid.NumVertices(); v++ {
		if m.Grid.Terrain(v) != back.Grid.Terrain(v) {
			t.Errorf("vertex %d: %s became %s", v, m.Grid.Terrain(v), back.Grid.Terrain(v))
		}
	}
}

func TestParseGAT(t *testing.T) {
	cellTypes := []GATCellType{
		GATWalkable,
		GATBlocked,
		GATWater,
		GATWalkableWater,
		GATSnipeable,
		GATBlockedSnipe,
	}
	m, err := ParseGAT(createTestGAT(3, 2, 1, cellTypes))
	if err != nil {
		t.Fatalf("ParseGAT: %v", err)
	}

	want := []grid.Terrain{grid.Open, grid.Blocked, grid.Blocked, grid.Dangerous, grid.Blocked, grid.Blocked}
	for v, w := range want {
		if got := m.Grid.Terrain(v); got != w {
			t.Errorf("cell %d (%d) = %s, want %s", v, cellTypes[v], got, w)
		}
	}
	if m.Kind != KindSquare {
		t.Errorf("kind = %q", m.Kind)
	}
}

func TestParseGAT_Errors(t *testing.T) {
	valid := createTestGAT(2, 2, 1, nil)

	badMagic := append([]byte(nil), valid...)
	copy(badMagic, "GRAX")

	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"too short", []byte("GRAT"), ErrTruncatedGATData},
		{"bad magic", badMagic, ErrInvalidGATMagic},
		{"version 0", createTestGAT(2, 2, 0, nil), ErrUnsupportedGATVersion},
		{"version 4", createTestGAT(2, 2, 4, nil), ErrUnsupportedGATVersion},
		{"truncated cells", valid[:len(valid)-5], ErrTruncatedGATData},
		{"zero width", createTestGAT(0, 2, 1, nil), ErrInvalidMap},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseGAT(tt.data); !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	yamlPath := filepath.Join(dir, "cave.yaml")
	if err := os.WriteFile(yamlPath, []byte("name: cave\nrows:\n  - \"..\"\n"), 0644); err != nil {
		t.Fatal(err)
	}
	gatPath := filepath.Join(dir, "prontera.gat")
	if err := os.WriteFile(gatPath, createTestGAT(3, 3, 1, nil), 0644); err != nil {
		t.Fatal(err)
	}

	m, err := Load(yamlPath)
	if err != nil {
		t.Fatalf("Load(yaml): %v", err)
	}
	if m.Name != "cave" || m.Source != yamlPath {
		t.Errorf("yaml map = %q from %q", m.Name, m.Source)
	}

	m, err = Load(gatPath)
	if err != nil {
		t.Fatalf("Load(gat): %v", err)
	}
	if m.Name != "prontera" || m.Grid.NumVertices() != 9 {
		t.Errorf("gat map = %q with %d cells", m.Name, m.Grid.NumVertices())
	}

	if _, err := Load(filepath.Join(dir, "map.txt")); !errors.Is(err, ErrInvalidMap) {
		t.Errorf("Load(txt) error = %v, want ErrInvalidMap", err)
	}
	if _, err := Load(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestWatcher(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "arena.yaml")
	if err := os.WriteFile(path, []byte("rows: [\"..\"]\n"), 0644); err != nil {
		t.Fatal(err)
	}

	w, err := NewWatcher(path)
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	defer w.Close()

	// Unrelated files in the same directory are ignored.
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("rows: [\"#.\"]\n"), 0644); err != nil {
		t.Fatal(err)
	}

	abs, _ := filepath.Abs(path)
	select {
	case name := <-w.Events:
		if name != abs {
			t.Errorf("event for %q, want %q", name, abs)
		}
	case err := <-w.Errors:
		t.Fatalf("watcher error: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for change event")
	}
}

func TestWatcher_ReportsAfterLastWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "arena.yaml")
	if err := os.WriteFile(path, []byte("rows: [\"..\"]\n"), 0644); err != nil {
		t.Fatal(err)
	}

	w, err := NewWatcher(path)
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	defer w.Close()

	received := make(chan time.Time, 16)
	go func() {
		for range w.Events {
			received <- time.Now()
		}
	}()

	// An editor save: truncate, then write the new contents.
	if err := os.WriteFile(path, nil, 0644); err != nil {
		t.Fatal(err)
	}
	time.Sleep(30 * time.Millisecond)
	if err := os.WriteFile(path, []byte("rows: [\"...\", \"#..\"]\n"), 0644); err != nil {
		t.Fatal(err)
	}
	final := time.Now()

	var last time.Time
	timeout := time.After(5 * time.Second)
collect:
	for {
		select {
		case at := <-received:
			last = at
		case <-time.After(4 * debounce):
			if !last.IsZero() {
				break collect
			}
		case <-timeout:
			t.Fatal("timed out waiting for change event")
		}
	}

	if !last.After(final) {
		t.Errorf("last event at %v, before final write at %v", last, final)
	}
	m, err := Load(path)
	if err != nil {
		t.Fatalf("reloading after last event: %v", err)
	}
	if m.Grid.Width() != 3 || m.Grid.Height() != 2 {
		t.Errorf("reloaded %dx%d, want 3x2", m.Grid.Width(), m.Grid.Height())
	}
}

type grfFile struct {
	name   string
	data   []byte
	stored bool   // write uncompressed
	size   uint32 // uncompressed size in the table, when not len(data)
}

// createTestGRF writes a 0x200 GRF archive holding files.
func createTestGRF(t *testing.T, files []grfFile) string {
	t.Helper()

	var body, table bytes.Buffer
	for _, f := range files {
		payload := f.data
		if !f.stored {
			var z bytes.Buffer
			zw := zlib.NewWriter(&z)
			zw.Write(f.data)
			zw.Close()
			payload = z.Bytes()
		}
		aligned := (len(payload) + 7) &^ 7
		offset := body.Len()
		body.Write(payload)
		body.Write(make([]byte, aligned-len(payload)))

		table.WriteString(strings.ReplaceAll(f.name, "/", "\\"))
		table.WriteByte(0)
		binary.Write(&table, binary.LittleEndian, uint32(len(payload)))
		binary.Write(&table, binary.LittleEndian, uint32(aligned))
		size := f.size
		if size == 0 {
			size = uint32(len(f.data))
		}
		binary.Write(&table, binary.LittleEndian, size)
		table.WriteByte(0x01)
		binary.Write(&table, binary.LittleEndian, uint32(offset))
	}

	var ztable bytes.Buffer
	zw := zlib.NewWriter(&ztable)
	zw.Write(table.Bytes())
	zw.Close()

	var out bytes.Buffer
	out.WriteString("Master of Magic")
	out.Write(make([]byte, 15))
	binary.Write(&out, binary.LittleEndian, uint32(body.Len()))   // table offset
	binary.Write(&out, binary.LittleEndian, uint32(0))            // seed
	binary.Write(&out, binary.LittleEndian, uint32(len(files)+7)) // file count
	binary.Write(&out, binary.LittleEndian, uint32(0x200))
	out.Write(body.Bytes())
	binary.Write(&out, binary.LittleEndian, uint32(ztable.Len()))
	binary.Write(&out, binary.LittleEndian, uint32(table.Len()))
	out.Write(ztable.Bytes())

	path := filepath.Join(t.TempDir(), "data.grf")
	if err := os.WriteFile(path, out.Bytes(), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestArchive(t *testing.T) {
	korName, _, err := transform.Bytes(korean.EUCKR.NewEncoder(), []byte("data/던전.gat"))
	if err != nil {
		t.Fatal(err)
	}
	path := createTestGRF(t, []grfFile{
		{name: "data/Prontera.gat", data: createTestGAT(4, 3, 1, []GATCellType{GATBlocked})},
		{name: "data/readme.txt", data: []byte("not a map"), stored: true},
		{name: string(korName), data: createTestGAT(2, 2, 2, nil)},
	})

	a, err := OpenArchive(path)
	if err != nil {
		t.Fatalf("OpenArchive: %v", err)
	}
	defer a.Close()

	want := []string{"data/prontera.gat", "data/던전.gat"}
	got := a.Maps()
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("Maps = %v, want %v", got, want)
	}

	text, err := a.ReadFile("DATA\\README.TXT")
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(text) != "not a map" {
		t.Errorf("ReadFile = %q", text)
	}

	m, err := a.LoadMap("prontera")
	if err != nil {
		t.Fatalf("LoadMap: %v", err)
	}
	if m.Name != "prontera" || m.Grid.Width() != 4 || m.Grid.Height() != 3 {
		t.Errorf("map %q is %dx%d", m.Name, m.Grid.Width(), m.Grid.Height())
	}
	if m.Grid.Terrain(0) != grid.Blocked {
		t.Errorf("cell 0 = %s, want blocked", m.Grid.Terrain(0))
	}

	if _, err := a.ReadFile("data/missing.gat"); !errors.Is(err, ErrGRFEntryNotFound) {
		t.Errorf("missing entry error = %v, want ErrGRFEntryNotFound", err)
	}
	if _, err := a.LoadMap("data/readme.txt"); !errors.Is(err, ErrTruncatedGATData) {
		t.Errorf("non-GAT entry error = %v, want ErrTruncatedGATData", err)
	}
}

func TestArchive_OversizedEntry(t *testing.T) {
	path := createTestGRF(t, []grfFile{
		{name: "data/huge.gat", data: createTestGAT(2, 2, 1, nil), size: 3 << 30},
	})

	a, err := OpenArchive(path)
	if err != nil {
		t.Fatalf("OpenArchive: %v", err)
	}
	defer a.Close()

	if _, err := a.ReadFile("data/huge.gat"); !errors.Is(err, ErrInvalidGRF) {
		t.Errorf("error = %v, want ErrInvalidGRF", err)
	}
}

func TestOpenArchive_Invalid(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.grf")
	if err := os.WriteFile(bad, []byte("Master of Mischief and more bytes than a header needs"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := OpenArchive(bad); !errors.Is(err, ErrInvalidGRF) {
		t.Errorf("error = %v, want ErrInvalidGRF", err)
	}
	if _, err := OpenArchive(filepath.Join(dir, "none.grf")); err == nil {
		t.Error("expected error for missing archive")
	}
}

func TestLoad_Archive(t *testing.T) {
	path := createTestGRF(t, []grfFile{
		{name: "data/izlude.gat", data: createTestGAT(3, 3, 1, nil)},
	})

	m, err := Load(path + "#izlude")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if m.Name != "izlude" || m.Source != path+"#izlude" {
		t.Errorf("map %q from %q", m.Name, m.Source)
	}

	if _, err := Load(path + "#payon"); !errors.Is(err, ErrGRFEntryNotFound) {
		t.Errorf("error = %v, want ErrGRFEntryNotFound", err)
	}
}

func TestSplitArchivePath(t *testing.T) {
	tests := []struct {
		in      string
		archive string
		entry   string
		ok      bool
	}{
		{"data.grf#data/prontera.gat", "data.grf", "data/prontera.gat", true},
		{"/maps/DATA.GRF#prontera", "/maps/DATA.GRF", "prontera", true},
		{"cave.yaml", "cave.yaml", "", false},
		{"notes#1.yaml", "notes#1.yaml", "", false},
		{"data.grf#", "data.grf#", "", false},
	}

	for _, tt := range tests {
		archive, entry, ok := SplitArchivePath(tt.in)
		if archive != tt.archive || entry != tt.entry || ok != tt.ok {
			t.Errorf("SplitArchivePath(%q) = %q, %q, %v", tt.in, archive, entry, ok)
		}
		if SourceFile(tt.in) != tt.archive {
			t.Errorf("SourceFile(%q) = %q, want %q", tt.in, SourceFile(tt.in), tt.archive)
		}
	}
}
