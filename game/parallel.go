package game

import (
	"math/rand/v2"
	"runtime"
	"sync"

	"github.com/pthm-cable/cavernlife/systems"
)

// passKind selects the work a chunk performs.
type passKind uint8

const (
	passEnvironment passKind = iota
	passEntities
)

// workChunk represents a range of rows or agents for a worker to process.
type workChunk struct {
	pass       passKind
	index      int // chunk index, selects the random stream
	start, end int
}

// workerScratch holds per-worker reusable state.
type workerScratch struct {
	ctx    systems.BehaviorContext
	events systems.TickEvents
}

// parallelState runs the two per-tick passes on a persistent worker pool.
// Each chunk index owns one random stream derived from the master seed, so
// results depend on the worker count but not on scheduling.
type parallelState struct {
	numWorkers int
	threshold  int
	scratches  []workerScratch
	envStreams []*rand.Rand
	entStreams []*rand.Rand

	// Worker pool channels
	workChan chan workChunk // sends work to workers
	doneChan chan struct{}  // workers signal completion
	stopChan chan struct{}  // signals workers to exit
	wg       sync.WaitGroup // tracks active workers
	running  bool           // true if workers are running
}

func newParallelState(workers, threshold int, seed int64) *parallelState {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	p := &parallelState{
		numWorkers: workers,
		threshold:  threshold,
		scratches:  make([]workerScratch, workers),
		envStreams: make([]*rand.Rand, workers),
		entStreams: make([]*rand.Rand, workers),
	}
	for i := 0; i < workers; i++ {
		p.envStreams[i] = systems.NewStream(seed, uint64(2*i))
		p.entStreams[i] = systems.NewStream(seed, uint64(2*i+1))
	}
	return p
}

// startWorkers launches persistent worker goroutines.
func (p *parallelState) startWorkers(s *Simulation) {
	if p.running {
		return
	}

	p.workChan = make(chan workChunk, p.numWorkers)
	p.doneChan = make(chan struct{}, p.numWorkers)
	p.stopChan = make(chan struct{})
	p.running = true

	for i := 0; i < p.numWorkers; i++ {
		p.wg.Add(1)
		go p.worker(s, i)
	}
}

// stopWorkers signals all workers to exit and waits for them.
func (p *parallelState) stopWorkers() {
	if !p.running {
		return
	}

	close(p.stopChan)
	p.wg.Wait()
	close(p.workChan)
	close(p.doneChan)
	p.running = false
}

// worker runs in a goroutine, processing chunks until stopped.
func (p *parallelState) worker(s *Simulation, workerID int) {
	defer p.wg.Done()
	scratch := &p.scratches[workerID]

	for {
		select {
		case <-p.stopChan:
			return
		case chunk, ok := <-p.workChan:
			if !ok {
				return
			}
			s.runChunk(chunk, scratch)
			p.doneChan <- struct{}{}
		}
	}
}

// chunks splits n items into at most numWorkers contiguous ranges.
func (p *parallelState) chunks(pass passKind, n int) []workChunk {
	size := (n + p.numWorkers - 1) / p.numWorkers
	out := make([]workChunk, 0, p.numWorkers)
	for w := 0; w < p.numWorkers; w++ {
		start := w * size
		end := min(start+size, n)
		if start >= end {
			break
		}
		out = append(out, workChunk{pass: pass, index: w, start: start, end: end})
	}
	return out
}

// run executes a pass over n items. Below the threshold the chunks run
// inline on the caller's goroutine with the same streams.
func (p *parallelState) run(s *Simulation, pass passKind, n, work int) systems.TickEvents {
	chunks := p.chunks(pass, n)
	for i := range p.scratches {
		p.scratches[i].events = systems.TickEvents{}
	}

	if work < p.threshold {
		scratch := &p.scratches[0]
		for _, c := range chunks {
			s.runChunk(c, scratch)
		}
	} else {
		if !p.running {
			p.startWorkers(s)
		}
		for _, c := range chunks {
			p.workChan <- c
		}
		for range chunks {
			<-p.doneChan
		}
	}

	var total systems.TickEvents
	for i := range p.scratches {
		total.Add(p.scratches[i].events)
	}
	return total
}

// runChunk dispatches a chunk to its pass.
func (s *Simulation) runChunk(c workChunk, scratch *workerScratch) {
	switch c.pass {
	case passEnvironment:
		s.rule.UpdateRows(s.grid, c.start, c.end, s.clock.HourOfDay(), s.parallel.envStreams[c.index])
	case passEntities:
		s.updateAgents(c, scratch)
	}
}

// updateAgents runs the behavior pipeline over a range of agents.
func (s *Simulation) updateAgents(c workChunk, scratch *workerScratch) {
	agents := s.index.Agents()
	ctx := &scratch.ctx
	ctx.Grid = s.grid
	ctx.Spatial = s.index.Spatial()
	ctx.Rand = s.parallel.entStreams[c.index]
	ctx.Step = s.clock.StepSize()
	ctx.Events = &scratch.events

	for i := c.start; i < c.end; i++ {
		ctx.Reset(i)
		s.pipeline.Update(agents[i], ctx)
	}
}

// stopParallelWorkers should be called when shutting down the simulation.
func (s *Simulation) stopParallelWorkers() {
	if s.parallel != nil {
		s.parallel.stopWorkers()
	}
}
