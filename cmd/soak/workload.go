package main

import (
	"math/rand"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"

	"ownkit/borrow"
	"ownkit/infra/heap"
	"ownkit/infra/invariant"
	"ownkit/rc"
)

// payload is what every soak box holds. Drop records the free so the
// runner can check each block was destroyed exactly once.
type payload struct {
	id    int
	cell  *borrow.Cell[int]
	frees map[int]int
}

func (p payload) Drop() { p.frees[p.id]++ }

// object is the runner's model of one block.
type object struct {
	handles   uint
	readers   int
	exclusive bool
}

type handle struct {
	obj int
	box *rc.Box[payload]
}

type guard struct {
	obj    int
	shared *borrow.SharedGuard[int]
	excl   *borrow.ExclusiveGuard[int]
}

func (g guard) release() {
	if g.shared != nil {
		g.shared.Release()
		return
	}
	g.excl.Release()
}

// Report summarizes a soak run.
type Report struct {
	Steps    int
	Objects  int
	Clones   int
	Drops    int
	Borrows  int
	Denied   int
	Releases int
	Heap     heap.Stats
}

type runner struct {
	rng        *rand.Rand
	seed       int64
	arena      *heap.Arena[payload]
	logger     zerolog.Logger
	maxHandles int

	objects []*object
	handles []handle
	guards  []guard
	frees   map[int]int
	report  Report
}

func newRunner(cfg Config, arena *heap.Arena[payload], logger zerolog.Logger) *runner {
	return &runner{
		rng:        rand.New(rand.NewSource(cfg.Seed)),
		seed:       cfg.Seed,
		arena:      arena,
		logger:     logger,
		maxHandles: cfg.Handles,
		frees:      make(map[int]int),
	}
}

// run applies n random operations, checking the model after each one, then
// tears everything down and checks every block was freed exactly once.
// An invariant violation is logged with the seed and step, then re-raised.
func (r *runner) run(n int) (Report, error) {
	defer func() {
		if rec := recover(); rec != nil {
			err := invariant.Recover(rec)
			r.logger.Error().Err(err).Int64("seed", r.seed).Int("step", r.report.Steps).Msg("invariant violation")
			panic(err)
		}
	}()

	for i := 0; i < n; i++ {
		obj, err := r.step()
		if err != nil {
			return r.report, errors.Wrapf(err, "step %d", i)
		}
		if obj >= 0 {
			if err := r.verify(obj); err != nil {
				return r.report, errors.Wrapf(err, "step %d", i)
			}
		}
		r.report.Steps++
	}
	if err := r.teardown(); err != nil {
		return r.report, err
	}
	r.report.Objects = len(r.objects)
	r.report.Heap = r.arena.Stats()
	return r.report, nil
}

// step performs one random operation and returns the object it touched,
// or -1.
func (r *runner) step() (int, error) {
	switch op := r.rng.Intn(6); {
	case len(r.handles) == 0 || op == 0:
		if len(r.handles) >= r.maxHandles {
			return r.drop(r.rng.Intn(len(r.handles))), nil
		}
		return r.alloc(), nil
	case op == 1:
		if len(r.handles) >= r.maxHandles {
			return r.drop(r.rng.Intn(len(r.handles))), nil
		}
		return r.clone(r.rng.Intn(len(r.handles))), nil
	case op == 2:
		return r.drop(r.rng.Intn(len(r.handles))), nil
	case op == 3:
		return r.borrow(r.handles[r.rng.Intn(len(r.handles))], false)
	case op == 4:
		return r.borrow(r.handles[r.rng.Intn(len(r.handles))], true)
	default:
		if len(r.guards) == 0 {
			return -1, nil
		}
		return r.release(r.rng.Intn(len(r.guards))), nil
	}
}

func (r *runner) alloc() int {
	id := len(r.objects)
	box := rc.NewIn(r.arena, payload{id: id, cell: borrow.New(0), frees: r.frees})
	r.objects = append(r.objects, &object{handles: 1})
	r.handles = append(r.handles, handle{obj: id, box: box})
	return id
}

func (r *runner) clone(i int) int {
	h := r.handles[i]
	r.handles = append(r.handles, handle{obj: h.obj, box: h.box.Clone()})
	r.objects[h.obj].handles++
	r.report.Clones++
	return h.obj
}

func (r *runner) drop(i int) int {
	h := r.handles[i]
	o := r.objects[h.obj]
	if o.handles == 1 {
		// guards must not outlive the last handle on their block
		for j := len(r.guards) - 1; j >= 0; j-- {
			if r.guards[j].obj == h.obj {
				r.release(j)
			}
		}
	}

	last := len(r.handles) - 1
	r.handles[i] = r.handles[last]
	r.handles = r.handles[:last]

	h.box.Drop()
	o.handles--
	r.report.Drops++
	if o.handles == 0 {
		return -1
	}
	return h.obj
}

func (r *runner) borrow(h handle, exclusive bool) (int, error) {
	o := r.objects[h.obj]
	c := h.box.Get().cell

	var (
		g  guard
		ok bool
	)
	if exclusive {
		g.excl, ok = c.BorrowMut()
		if want := o.readers == 0 && !o.exclusive; ok != want {
			return -1, errors.Newf("object %d: exclusive borrow granted=%t, want %t", h.obj, ok, want)
		}
		if ok {
			o.exclusive = true
			g.excl.Update(func(v *int) { *v++ })
		}
	} else {
		g.shared, ok = c.Borrow()
		if want := !o.exclusive; ok != want {
			return -1, errors.Newf("object %d: shared borrow granted=%t, want %t", h.obj, ok, want)
		}
		if ok {
			o.readers++
			_ = g.shared.Get()
		}
	}

	if !ok {
		r.report.Denied++
		return h.obj, nil
	}
	g.obj = h.obj
	r.guards = append(r.guards, g)
	r.report.Borrows++
	return h.obj, nil
}

func (r *runner) release(i int) int {
	g := r.guards[i]
	last := len(r.guards) - 1
	r.guards[i] = r.guards[last]
	r.guards = r.guards[:last]

	g.release()
	o := r.objects[g.obj]
	if g.shared != nil {
		o.readers--
	} else {
		o.exclusive = false
	}
	r.report.Releases++
	return g.obj
}

func (r *runner) verify(obj int) error {
	o := r.objects[obj]
	want := borrow.Unused
	switch {
	case o.exclusive:
		want = borrow.Exclusive
	case o.readers > 0:
		want = borrow.Shared(o.readers)
	}

	checkedState := false
	for _, h := range r.handles {
		if h.obj != obj {
			continue
		}
		if got := h.box.Count(); got != o.handles {
			return errors.Newf("object %d: count %d, want %d", obj, got, o.handles)
		}
		if !checkedState {
			if got := h.box.Get().cell.State(); got != want {
				return errors.Newf("object %d: state %s, want %s", obj, got, want)
			}
			checkedState = true
		}
	}
	return nil
}

func (r *runner) teardown() error {
	for obj, o := range r.objects {
		if o.handles == 0 {
			continue
		}
		if err := r.verify(obj); err != nil {
			return errors.Wrap(err, "teardown")
		}
	}
	for len(r.guards) > 0 {
		r.release(len(r.guards) - 1)
	}
	for len(r.handles) > 0 {
		r.drop(len(r.handles) - 1)
	}

	for id := range r.objects {
		if n := r.frees[id]; n != 1 {
			return errors.Newf("object %d freed %d times", id, n)
		}
	}
	if live := r.arena.Stats().Live; live != 0 {
		return errors.Newf("%d blocks still live after teardown", live)
	}
	r.logger.Debug().Int("objects", len(r.objects)).Int("pooled", r.arena.Pooled()).Msg("teardown complete")
	return nil
}
