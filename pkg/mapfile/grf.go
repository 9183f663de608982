package mapfile

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"sort"
	"strings"
)

// GRF archive errors.
var (
	ErrInvalidGRF       = errors.New("invalid GRF archive")
	ErrGRFEntryNotFound = errors.New("GRF entry not found")
)

const (
	grfMagic      = "Master of Magic"
	grfHeaderSize = 46
	grfVersion    = 0x200

	grfFlagFile      = 0x01
	grfFlagEncrypted = 0x02

	// maxGRFEntrySize bounds the compressed and uncompressed size of one
	// entry or of the file table. A GAT at maxDimension fits.
	maxGRFEntrySize = 512 << 20

	// archiveSep separates an archive path from an entry name in a map
	// path, as in "data.grf#data/prontera.gat".
	archiveSep = "#"
)

type grfHeader struct {
	Magic       [15]byte
	Key         [15]byte
	TableOffset uint32
	Seed        uint32
	FileCount   uint32
	Version     uint32
}

type grfEntry struct {
	compressed   uint32
	aligned      uint32
	uncompressed uint32
	flags        uint8
	offset       uint32
}

// Archive is an open GRF archive. Only 0x200 archives without entry
// encryption are supported.
type Archive struct {
	file    *os.File
	entries map[string]grfEntry
}

// OpenArchive opens a GRF archive and reads its file table.
func OpenArchive(name string) (*Archive, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, fmt.Errorf("opening GRF archive: %w", err)
	}
	a := &Archive{file: f, entries: make(map[string]grfEntry)}
	if err := a.readTable(); err != nil {
		f.Close()
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return a, nil
}

// Close closes the archive file.
func (a *Archive) Close() error {
	return a.file.Close()
}

func (a *Archive) readTable() error {
	var hdr grfHeader
	if err := binary.Read(io.NewSectionReader(a.file, 0, grfHeaderSize), binary.LittleEndian, &hdr); err != nil {
		return fmt.Errorf("%w: reading header: %v", ErrInvalidGRF, err)
	}
	if string(hdr.Magic[:]) != grfMagic {
		return fmt.Errorf("%w: bad magic", ErrInvalidGRF)
	}
	if hdr.Version != grfVersion {
		return fmt.Errorf("%w: unsupported version 0x%x", ErrInvalidGRF, hdr.Version)
	}

	tableAt := int64(hdr.TableOffset) + grfHeaderSize
	var sizes [2]uint32 // compressed, uncompressed
	if err := binary.Read(io.NewSectionReader(a.file, tableAt, 8), binary.LittleEndian, &sizes); err != nil {
		return fmt.Errorf("%w: reading table sizes: %v", ErrInvalidGRF, err)
	}
	table, err := a.inflate(tableAt+8, sizes[0], sizes[1])
	if err != nil {
		return fmt.Errorf("%w: file table: %v", ErrInvalidGRF, err)
	}

	// The stored count is biased by the seed plus seven.
	count := int64(hdr.FileCount) - int64(hdr.Seed) - 7
	for i := int64(0); i < count && len(table) > 0; i++ {
		end := bytes.IndexByte(table, 0)
		if end < 0 || len(table) < end+1+17 {
			return fmt.Errorf("%w: truncated file table at entry %d", ErrInvalidGRF, i)
		}
		name, err := toUTF8(table[:end])
		if err != nil {
			return fmt.Errorf("%w: entry %d name: %v", ErrInvalidGRF, i, err)
		}
		rec := table[end+1:]
		e := grfEntry{
			compressed:   binary.LittleEndian.Uint32(rec[0:]),
			aligned:      binary.LittleEndian.Uint32(rec[4:]),
			uncompressed: binary.LittleEndian.Uint32(rec[8:]),
			flags:        rec[12],
			offset:       binary.LittleEndian.Uint32(rec[13:]),
		}
		table = rec[17:]

		if e.flags&grfFlagFile != 0 {
			a.entries[normalizeEntry(string(name))] = e
		}
	}
	return nil
}

// inflate reads size compressed bytes at off and decompresses them.
// Entries whose sizes match are stored uncompressed.
func (a *Archive) inflate(off int64, size, uncompressed uint32) ([]byte, error) {
	if size > maxGRFEntrySize || uncompressed > maxGRFEntrySize {
		return nil, fmt.Errorf("%w: entry of %d bytes (%d compressed) exceeds %d", ErrInvalidGRF, uncompressed, size, maxGRFEntrySize)
	}
	raw := make([]byte, size)
	if _, err := a.file.ReadAt(raw, off); err != nil {
		return nil, err
	}
	if size == uncompressed {
		return raw, nil
	}

	zr, err := zlib.NewReader(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	out := make([]byte, uncompressed)
	if _, err := io.ReadFull(zr, out); err != nil {
		return nil, err
	}
	return out, nil
}

// Maps lists the GAT entries in the archive, sorted.
func (a *Archive) Maps() []string {
	var names []string
	for name := range a.entries {
		if strings.HasSuffix(name, ".gat") {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// ReadFile returns the contents of one archive entry. name is matched
// case-insensitively with either slash style.
func (a *Archive) ReadFile(name string) ([]byte, error) {
	e, ok := a.entries[normalizeEntry(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrGRFEntryNotFound, name)
	}
	if e.flags&grfFlagEncrypted != 0 {
		return nil, fmt.Errorf("%w: %s is encrypted", ErrInvalidGRF, name)
	}
	return a.inflate(int64(e.offset)+grfHeaderSize, e.compressed, e.uncompressed)
}

// LoadMap reads a GAT map from the archive. A bare map name such as
// "prontera" is looked up as data/prontera.gat.
func (a *Archive) LoadMap(name string) (*Map, error) {
	entry := normalizeEntry(name)
	if _, ok := a.entries[entry]; !ok && path.Ext(entry) == "" {
		entry = "data/" + entry + ".gat"
	}
	data, err := a.ReadFile(entry)
	if err != nil {
		return nil, err
	}
	m, err := ParseGAT(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", entry, err)
	}
	m.Name = strings.TrimSuffix(path.Base(entry), path.Ext(entry))
	return m, nil
}

// loadFromArchive opens "archive.grf#entry" and loads the entry.
func loadFromArchive(archivePath, entry string) (*Map, error) {
	a, err := OpenArchive(archivePath)
	if err != nil {
		return nil, err
	}
	defer a.Close()
	return a.LoadMap(entry)
}

// SplitArchivePath splits "archive.grf#entry" into its parts. ok is false
// for plain file paths.
func SplitArchivePath(p string) (archive, entry string, ok bool) {
	archive, entry, ok = strings.Cut(p, archiveSep)
	if !ok || !strings.EqualFold(path.Ext(archive), ".grf") || entry == "" {
		return p, "", false
	}
	return archive, entry, true
}

// SourceFile returns the file on disk that holds the map at p.
func SourceFile(p string) string {
	archive, _, _ := SplitArchivePath(p)
	return archive
}

func normalizeEntry(name string) string {
	return strings.ToLower(strings.ReplaceAll(name, "\\", "/"))
}
