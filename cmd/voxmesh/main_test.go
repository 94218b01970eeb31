package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"subvox/internal/config"
	"subvox/internal/geometry"
	"subvox/internal/world"
	"subvox/pkg/voxmap"

	"github.com/qmuntal/gltf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	opts, err := parseFlags([]string{"-map", "m.json", "-lod", "1", "-out", "o.glb", "-v"}, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, "m.json", opts.mapPath)
	assert.Equal(t, 1, opts.lod)
	assert.Equal(t, "o.glb", opts.out)
	assert.True(t, opts.verbose)
	assert.Equal(t, 0, opts.chunkSize)

	_, err = parseFlags(nil, io.Discard)
	assert.Error(t, err)
	_, err = parseFlags([]string{"-map", "m.json", "-pick", "1,2,3"}, io.Discard)
	assert.Error(t, err)
	_, err = parseFlags([]string{"-map", "m.json", "-pick", "0,0,0,0,0,0"}, io.Discard)
	assert.Error(t, err)
}

func TestParseRay(t *testing.T) {
	origin, dir, err := parseRay("0, 0.5,-1, 1,0,0")
	require.NoError(t, err)
	assert.Equal(t, float32(0.5), origin.Y())
	assert.Equal(t, float32(-1), origin.Z())
	assert.Equal(t, float32(1), dir.X())
}

func TestRunWritesGLB(t *testing.T) {
	t.Cleanup(config.Reset)
	t.Setenv(config.EnvConfigPath, "")
	dir := t.TempDir()
	mapPath := filepath.Join(dir, "demo.json.zst")
	voxels := []world.Voxel{
		{Pos: world.Pos{}, Type: "stone"},
		world.Voxel{Pos: world.Pos{X: 1}, Type: "wood"}.WithPattern(geometry.PatternStaircaseX),
		{Pos: world.Pos{X: 40}, Type: "stone"},
	}
	require.NoError(t, voxmap.Save(mapPath, "demo", voxels))

	var logs bytes.Buffer
	log := slog.New(slog.NewTextHandler(&logs, nil))
	opts := &options{
		mapPath:   mapPath,
		chunkSize: 16,
		lod:       0,
		workers:   2,
		out:       filepath.Join(dir, "demo.glb"),
		pick:      "-3,0,0,1,0,0",
		metrics:   true,
	}
	require.NoError(t, run(context.Background(), opts, log))

	doc, err := gltf.Open(opts.out)
	require.NoError(t, err)
	assert.Len(t, doc.Meshes, 2)
	assert.Contains(t, logs.String(), "msg=meshed chunks=2")
	assert.Contains(t, logs.String(), "name=subvox_chunks_meshed_total value=2")
	assert.Contains(t, logs.String(), "msg=pick voxel=(0,0,0) type=stone")
}

func TestRunAppliesConfigFile(t *testing.T) {
	t.Cleanup(config.Reset)
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "subvox.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("mesh:\n  chunk_size: 4\n"), 0o644))
	mapPath := filepath.Join(dir, "demo.json")
	require.NoError(t, voxmap.Save(mapPath, "demo", []world.Voxel{
		{Pos: world.Pos{}, Type: "stone"},
		{Pos: world.Pos{X: 5}, Type: "stone"},
	}))

	var logs bytes.Buffer
	log := slog.New(slog.NewTextHandler(&logs, nil))
	opts := &options{mapPath: mapPath, configPath: cfgPath, lod: -1}
	require.NoError(t, run(context.Background(), opts, log))
	assert.Equal(t, 4, config.GetChunkSize())
	assert.Contains(t, logs.String(), "chunk_size=4")
	assert.Contains(t, logs.String(), "msg=meshed chunks=2")
}

func TestRunMissingMap(t *testing.T) {
	t.Cleanup(config.Reset)
	t.Setenv(config.EnvConfigPath, "")
	opts := &options{mapPath: filepath.Join(t.TempDir(), "none.json"), lod: -1}
	err := run(context.Background(), opts, slog.New(slog.DiscardHandler))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestRunFollowsParentMap(t *testing.T) {
	t.Cleanup(config.Reset)
	t.Setenv(config.EnvConfigPath, "")
	dir := t.TempDir()
	require.NoError(t, voxmap.Save(filepath.Join(dir, "base.json"), "base", []world.Voxel{
		{Pos: world.Pos{}, Type: "stone"},
		{Pos: world.Pos{X: 1}, Type: "stone"},
	}))
	childPath := filepath.Join(dir, "child.json")
	require.NoError(t, os.WriteFile(childPath, []byte(`{
		"parent": "base",
		"voxels": [{"pos": [2, 0, 0], "type": "gold"}]
	}`), 0o644))

	var logs bytes.Buffer
	log := slog.New(slog.NewTextHandler(&logs, nil))
	opts := &options{mapPath: childPath, chunkSize: 16, lod: -1, pick: "-3,0,0,1,0,0"}
	require.NoError(t, run(context.Background(), opts, log))
	assert.Contains(t, logs.String(), "voxels=3")
	assert.Contains(t, logs.String(), "msg=pick voxel=(0,0,0) type=stone")
}
