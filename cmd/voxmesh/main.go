package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"subvox/internal/config"
	"subvox/internal/export"
	"subvox/internal/meshing"
	"subvox/internal/metrics"
	"subvox/internal/physics"
	"subvox/internal/profiling"
	"subvox/internal/world"
	"subvox/pkg/voxmap"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/prometheus/client_golang/prometheus"
)

type options struct {
	mapPath    string
	configPath string
	chunkSize  int
	lod        int
	workers    int
	out        string
	pick       string
	metrics    bool
	verbose    bool
}

const pickDistance = 64

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	opts := &options{}
	fs := flag.NewFlagSet("voxmesh", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.mapPath, "map", "", "voxel map file (.json or .json.zst); parent maps are read from the same directory")
	fs.StringVar(&opts.configPath, "config", "", "YAML config file (default $"+config.EnvConfigPath+")")
	fs.IntVar(&opts.chunkSize, "chunk-size", 0, "voxels per chunk edge (0 keeps the configured value)")
	fs.IntVar(&opts.lod, "lod", -1, "level of detail, 0 is full detail (-1 keeps the configured value)")
	fs.IntVar(&opts.workers, "workers", 0, "parallel mesh workers (0 keeps the configured value)")
	fs.StringVar(&opts.out, "out", "", "write the meshes to this GLB file")
	fs.StringVar(&opts.pick, "pick", "", "cast a ray \"ox,oy,oz,dx,dy,dz\" and log the first voxel hit")
	fs.BoolVar(&opts.metrics, "metrics", false, "log Prometheus metrics after the pass")
	fs.BoolVar(&opts.verbose, "v", false, "debug logging")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if opts.mapPath == "" {
		return nil, errors.New("missing -map")
	}
	if opts.pick != "" {
		if _, _, err := parseRay(opts.pick); err != nil {
			return nil, err
		}
	}
	return opts, nil
}

// parseRay reads "ox,oy,oz,dx,dy,dz".
func parseRay(s string) (origin, dir mgl32.Vec3, err error) {
	parts := strings.Split(s, ",")
	if len(parts) != 6 {
		return origin, dir, fmt.Errorf("-pick wants 6 comma separated numbers, got %q", s)
	}
	var v [6]float32
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 32)
		if err != nil {
			return origin, dir, fmt.Errorf("-pick: %w", err)
		}
		v[i] = float32(f)
	}
	origin = mgl32.Vec3{v[0], v[1], v[2]}
	dir = mgl32.Vec3{v[3], v[4], v[5]}
	if dir.Len() == 0 {
		return origin, dir, errors.New("-pick: zero direction")
	}
	return origin, dir, nil
}

func main() {
	opts, err := parseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	level := slog.LevelInfo
	if opts.verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, opts, log); err != nil {
		log.Error("voxmesh failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts *options, log *slog.Logger) error {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	metricsEnabled := opts.metrics
	if cfg != nil {
		cfg.Apply()
		metricsEnabled = metricsEnabled || cfg.Metrics.Enabled
	}
	ms := meshing.NewMesher()
	if cfg != nil {
		pal, err := cfg.Palette()
		if err != nil {
			return err
		}
		ms.Color = pal.ResolveVoxel
	}
	if opts.chunkSize > 0 {
		config.SetChunkSize(opts.chunkSize)
		ms.ChunkSize = config.GetChunkSize()
	}
	if opts.lod >= 0 {
		config.SetLODLevel(opts.lod)
		ms.LOD = config.GetLODLevel()
	}
	if opts.workers > 0 {
		config.SetWorkers(opts.workers)
		ms.Workers = config.GetWorkers()
	}
	ms.Logger = log

	var reg *prometheus.Registry
	if metricsEnabled {
		reg = prometheus.NewRegistry()
		ms.Stats = metrics.NewCollector(reg)
	}

	loader := voxmap.NewLoader(filepath.Dir(opts.mapPath))
	voxels, err := loader.LoadMap(voxmap.MapName(opts.mapPath))
	if err != nil {
		return err
	}
	store := world.NewChunkStore(ms.ChunkSize)
	for _, v := range voxels {
		store.Set(v)
	}
	m := store.Snapshot()
	log.Info("map loaded",
		"path", opts.mapPath,
		"voxels", m.Len(),
		"chunks", store.ChunkCount(),
		"chunk_size", ms.ChunkSize,
		"lod", ms.LOD,
		"workers", ms.Workers)

	res, err := ms.BuildChunks(ctx, m)
	if err != nil {
		return fmt.Errorf("mesh: %w", err)
	}
	log.Info("meshed",
		"chunks", res.Chunks(),
		"occupied", res.Occupied,
		"quads", res.Quads,
		"faces", res.Faces,
		"elapsed", res.Elapsed)
	log.Debug("profile", "top", profiling.TopN(5))

	if opts.pick != "" {
		origin, dir, err := parseRay(opts.pick)
		if err != nil {
			return err
		}
		hit := physics.Raycast(origin, dir, 0, pickDistance, res.Grid)
		if hit.Hit {
			v, _ := store.Get(hit.Voxel)
			log.Info("pick",
				"voxel", hit.Voxel,
				"type", v.Type,
				"pattern", v.PatternOrDefault(),
				"cell", hit.HitCell,
				"distance", hit.Distance)
		} else {
			log.Info("pick", "hit", false)
		}
	}

	if reg != nil {
		if err := metrics.LogSnapshot(log, reg); err != nil {
			return err
		}
	}

	if opts.out != "" {
		if err := export.WriteGLB(opts.out, res); err != nil {
			return err
		}
		log.Info("glb written", "path", opts.out)
	}
	return nil
}
