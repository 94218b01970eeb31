package meshing

import (
	"context"
	"fmt"
	"sync"

	"subvox/internal/profiling"
	"subvox/internal/world"
)

// MeshJob represents a meshing job request for one chunk
type MeshJob struct {
	Snapshot *Snapshot
	Coord    world.ChunkCoord
	Voxels   []world.Voxel
	// Result channel - will be sent the result when done
	ResultChan chan<- MeshResult
}

// MeshResult contains the result of a meshing operation
type MeshResult struct {
	Coord world.ChunkCoord
	Mesh  Mesh
	Faces int
	Error error
}

// WorkerPool manages goroutines for chunk mesh generation. Jobs of one pass
// share a read-only Snapshot and no other state.
type WorkerPool struct {
	jobQueue chan MeshJob
	workers  int
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	once     sync.Once
}

// NewWorkerPool creates a new mesh worker pool
func NewWorkerPool(workers int, queueSize int) *WorkerPool {
	if workers < 1 {
		workers = 1
	}
	ctx, cancel := context.WithCancel(context.Background())

	pool := &WorkerPool{
		jobQueue: make(chan MeshJob, queueSize),
		workers:  workers,
		ctx:      ctx,
		cancel:   cancel,
	}

	// Start worker goroutines
	for i := range workers {
		pool.wg.Add(1)
		go pool.worker(i)
	}

	return pool
}

// SubmitJob submits a mesh generation job to the pool
// Returns true if job was submitted successfully, false if queue is full
func (p *WorkerPool) SubmitJob(job MeshJob) bool {
	select {
	case p.jobQueue <- job:
		return true
	default:
		return false // Queue is full
	}
}

// SubmitJobBlocking submits a job and blocks until it's queued
func (p *WorkerPool) SubmitJobBlocking(job MeshJob) {
	select {
	case p.jobQueue <- job:
	case <-p.ctx.Done():
	}
}

// worker is the worker goroutine that processes mesh jobs
func (p *WorkerPool) worker(id int) {
	defer p.wg.Done()

	for {
		select {
		case job, ok := <-p.jobQueue:
			if !ok {
				return
			}
			result := p.process(id, job)

			// Send result back
			select {
			case job.ResultChan <- result:
			case <-p.ctx.Done():
				return
			}

		case <-p.ctx.Done():
			return
		}
	}
}

// process meshes one chunk, turning a panic into an error result so one bad
// chunk cannot take down the pass.
func (p *WorkerPool) process(id int, job MeshJob) (result MeshResult) {
	result.Coord = job.Coord
	defer func() {
		if r := recover(); r != nil {
			result = MeshResult{Coord: job.Coord, Error: fmt.Errorf("mesh worker %d: %s: %v", id, job.Coord, r)}
		}
	}()
	if job.Snapshot == nil {
		result.Error = fmt.Errorf("mesh worker %d: %s: nil snapshot", id, job.Coord)
		return result
	}
	defer profiling.Track("meshing.chunk")()
	result.Mesh, result.Faces = job.Snapshot.MeshChunk(job.Voxels)
	return result
}

// Shutdown stops the workers and waits for them to exit. Jobs still queued
// are dropped. The pool must not be used afterwards.
func (p *WorkerPool) Shutdown() {
	p.once.Do(func() {
		p.cancel()
		close(p.jobQueue)
		p.wg.Wait()
	})
}

// Workers returns the number of worker goroutines.
func (p *WorkerPool) Workers() int {
	return p.workers
}

// QueueLength returns the current number of jobs in the queue
func (p *WorkerPool) QueueLength() int {
	return len(p.jobQueue)
}
