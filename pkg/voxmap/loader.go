package voxmap

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"subvox/internal/world"

	"github.com/klauspost/compress/zstd"
)

const zstdExt = ".zst"

// Decode parses a map file from r. Compressed input is detected by the zstd
// frame magic.
func Decode(r io.Reader) (*File, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("could not read map: %w", err)
	}
	if isZstd(data) {
		dec, err := zstd.NewReader(nil)
		if err != nil {
			return nil, err
		}
		defer dec.Close()
		data, err = dec.DecodeAll(data, nil)
		if err != nil {
			return nil, fmt.Errorf("could not decompress map: %w", err)
		}
	}

	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("could not unmarshal map json: %w", err)
	}
	return &f, nil
}

func isZstd(data []byte) bool {
	return len(data) >= 4 && bytes.Equal(data[:4], []byte{0x28, 0xb5, 0x2f, 0xfd})
}

// Load reads the map file at path and returns its voxels. Parent maps are
// not followed; use a Loader for that.
func Load(path string) ([]world.Voxel, error) {
	f, err := readFile(path)
	if err != nil {
		return nil, err
	}
	return f.ToVoxels()
}

// MapName returns the loader name of a map file path: its base name without
// the .json or .json.zst extension.
func MapName(path string) string {
	base := strings.TrimSuffix(filepath.Base(path), zstdExt)
	return strings.TrimSuffix(base, ".json")
}

func readFile(path string) (*File, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open map file: %w", err)
	}
	defer fh.Close()
	f, err := Decode(fh)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// Save writes voxels as a map file. A path ending in .zst is zstd compressed.
func Save(path, name string, voxels []world.Voxel) error {
	data, err := json.MarshalIndent(FromVoxels(name, voxels), "", "  ")
	if err != nil {
		return err
	}
	if strings.HasSuffix(path, zstdExt) {
		enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			return err
		}
		data = enc.EncodeAll(data, nil)
		if err := enc.Close(); err != nil {
			return err
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("could not write map file: %w", err)
	}
	return nil
}

// Loader resolves named maps under a directory. A map may name a parent whose
// voxels are placed first, so the child's voxels win on shared positions.
type Loader struct {
	dir   string
	cache map[string][]world.Voxel
}

const maxParentDepth = 16

func NewLoader(dir string) *Loader {
	return &Loader{
		dir:   dir,
		cache: make(map[string][]world.Voxel),
	}
}

// LoadMap returns the voxels of the named map, looking for name.json and
// then name.json.zst. Results are cached; callers get their own copy.
func (l *Loader) LoadMap(name string) ([]world.Voxel, error) {
	voxels, err := l.load(name, 0)
	if err != nil {
		return nil, err
	}
	out := make([]world.Voxel, len(voxels))
	copy(out, voxels)
	return out, nil
}

func (l *Loader) load(name string, depth int) ([]world.Voxel, error) {
	if voxels, ok := l.cache[name]; ok {
		return voxels, nil
	}
	if depth > maxParentDepth {
		return nil, fmt.Errorf("map %q: parent chain deeper than %d", name, maxParentDepth)
	}

	path := filepath.Join(l.dir, name+".json")
	if _, err := os.Stat(path); err != nil {
		path += zstdExt
	}
	f, err := readFile(path)
	if err != nil {
		return nil, err
	}
	own, err := f.ToVoxels()
	if err != nil {
		return nil, fmt.Errorf("map %q: %w", name, err)
	}

	var voxels []world.Voxel
	if f.Parent != "" {
		parent, err := l.load(f.Parent, depth+1)
		if err != nil {
			return nil, fmt.Errorf("could not load parent map '%s': %w", f.Parent, err)
		}
		voxels = make([]world.Voxel, 0, len(parent)+len(own))
		voxels = append(voxels, parent...)
	}
	voxels = append(voxels, own...)

	l.cache[name] = voxels
	return voxels, nil
}
