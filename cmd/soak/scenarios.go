package main

import (
	"github.com/cockroachdb/errors"

	"ownkit/borrow"
	"ownkit/cell"
	"ownkit/rc"
)

type scenario struct {
	name string
	run  func() error
}

var scenarios = []scenario{
	{"cell get/set", scenarioCell},
	{"box identity", scenarioBoxIdentity},
	{"box counting", scenarioBoxCounting},
	{"borrow sequence", scenarioBorrowSequence},
	{"two shared guards", scenarioTwoShared},
	{"exclusive blocks all", scenarioExclusiveBlocks},
}

func expect(cond bool, format string, args ...any) error {
	if cond {
		return nil
	}
	return errors.Newf(format, args...)
}

func scenarioCell() error {
	c := cell.New(5)
	if err := expect(cell.Get(c) == 5, "get after new: %d", cell.Get(c)); err != nil {
		return err
	}
	c.Set(20)
	return expect(cell.Get(c) == 20, "get after set: %d", cell.Get(c))
}

func scenarioBoxIdentity() error {
	a := rc.New(5)
	defer a.Drop()
	b := a.Clone()
	defer b.Drop()
	c := rc.New(5)
	defer c.Drop()

	if err := expect(rc.PtrEq(a, b), "clone does not share block"); err != nil {
		return err
	}
	return expect(!rc.PtrEq(a, c), "distinct boxes share a block")
}

func scenarioBoxCounting() error {
	root := rc.New("x")
	clones := make([]*rc.Box[string], 0, 8)
	for i := 0; i < 8; i++ {
		clones = append(clones, root.Clone())
	}
	if err := expect(root.Count() == 9, "count after clones: %d", root.Count()); err != nil {
		return err
	}
	for _, c := range clones {
		c.Drop()
	}
	if err := expect(root.Count() == 1, "count after drops: %d", root.Count()); err != nil {
		return err
	}
	_, ok := root.TryUnwrap()
	return expect(ok, "sole handle could not unwrap")
}

func scenarioBorrowSequence() error {
	x := borrow.New(20)

	g1, ok := x.Borrow()
	if err := expect(ok && g1.Get() == 20, "first borrow"); err != nil {
		return err
	}
	g1.Release()

	g2, ok := x.BorrowMut()
	if err := expect(ok, "borrow_mut after release denied"); err != nil {
		return err
	}
	g2.Set(30)
	g2.Release()

	g3, ok := x.Borrow()
	if err := expect(ok, "borrow after exclusive release denied"); err != nil {
		return err
	}
	defer g3.Release()
	if _, ok := x.BorrowMut(); ok {
		return errors.New("borrow_mut granted while shared guard outstanding")
	}
	if err := expect(x.State() == borrow.Shared(1), "state %s", x.State()); err != nil {
		return err
	}
	return expect(g3.Get() == 30, "read %d through guard", g3.Get())
}

func scenarioTwoShared() error {
	x := borrow.New(1)
	g1, ok1 := x.Borrow()
	g2, ok2 := x.Borrow()
	if err := expect(ok1 && ok2 && x.State() == borrow.Shared(2), "state %s", x.State()); err != nil {
		return err
	}
	g1.Release()
	if err := expect(x.State() == borrow.Shared(1), "state %s", x.State()); err != nil {
		return err
	}
	g2.Release()
	return expect(x.State() == borrow.Unused, "state %s", x.State())
}

func scenarioExclusiveBlocks() error {
	x := borrow.New(1)
	g, _ := x.BorrowMut()
	if _, ok := x.Borrow(); ok {
		return errors.New("borrow granted under exclusive guard")
	}
	if _, ok := x.BorrowMut(); ok {
		return errors.New("borrow_mut granted under exclusive guard")
	}
	g.Release()
	return expect(x.State() == borrow.Unused, "state %s", x.State())
}

func runScenarios() error {
	for _, s := range scenarios {
		if err := s.run(); err != nil {
			return errors.Wrapf(err, "scenario %q", s.name)
		}
	}
	return nil
}
