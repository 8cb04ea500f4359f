// Package pipeline composes data-processing steps into sequential
// chains and parallel forks. A step receives a payload map, returns
// its own outputs, and the pipeline merges them forward, so steps stay
// decoupled from whoever produced their inputs. Long-running chains
// run off the loop thread through Background, with completion
// marshalled back via a post function such as App.Dispatch.
package pipeline

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/go-mosf/mosf/pkg/errors"
)

// Payload carries named values between processes.
type Payload map[string]any

// Clone returns a shallow copy.
func (p Payload) Clone() Payload {
	out := make(Payload, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Merge copies other's entries over p's. Later sources win.
func (p Payload) Merge(other Payload) {
	for k, v := range other {
		p[k] = v
	}
}

// Require fails with a service-argument error when any of the keys is
// absent. Processes call it first so a mis-wired chain fails with the
// missing names instead of a nil panic downstream.
func (p Payload) Require(op string, keys ...string) error {
	var missing []string
	for _, k := range keys {
		if _, ok := p[k]; !ok {
			missing = append(missing, k)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return errors.New(op, errors.KindServiceArgument,
		"payload is missing required keys: %s", strings.Join(missing, ", "))
}

// Process is one step of a pipeline. It returns only the values it
// produced; the pipeline handles merging them into the flowing payload.
type Process interface {
	Run(ctx context.Context, p Payload) (Payload, error)
}

// Func adapts a function to the Process interface.
type Func func(ctx context.Context, p Payload) (Payload, error)

func (f Func) Run(ctx context.Context, p Payload) (Payload, error) { return f(ctx, p) }

// PassThrough returns its input unchanged.
func PassThrough() Process {
	return Func(func(_ context.Context, p Payload) (Payload, error) {
		return p, nil
	})
}

// Pipeline is an immutable sequence of processes. The zero value runs
// nothing and returns its input.
type Pipeline struct {
	steps []Process
}

// New builds a pipeline from processes in order.
func New(steps ...Process) *Pipeline {
	return &Pipeline{steps: steps}
}

// Then returns a new pipeline with next appended. Appending another
// pipeline splices its steps in rather than nesting.
func (pl *Pipeline) Then(next Process) *Pipeline {
	steps := make([]Process, len(pl.steps), len(pl.steps)+1)
	copy(steps, pl.steps)
	if sub, ok := next.(*Pipeline); ok {
		return &Pipeline{steps: append(steps, sub.steps...)}
	}
	return &Pipeline{steps: append(steps, next)}
}

// Run executes the steps in order. The initial payload seeds the chain;
// each step's outputs are merged over it, so the most recent producer
// of a key wins.
func (pl *Pipeline) Run(ctx context.Context, p Payload) (Payload, error) {
	acc := p.Clone()
	if acc == nil {
		acc = Payload{}
	}
	for _, step := range pl.steps {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrap("pipeline.Run", errors.KindUnknown, err)
		}
		out, err := step.Run(ctx, acc)
		if err != nil {
			return nil, err
		}
		acc.Merge(out)
	}
	return acc, nil
}

// Fork runs branches against the same input payload. Branch outputs
// stay separate until Join merges them.
type Fork struct {
	branches []Process
}

// NewFork builds a fork. A fork of fewer than two branches is a
// configuration mistake and fails at Run time.
func NewFork(branches ...Process) *Fork {
	return &Fork{branches: branches}
}

// Run executes every branch concurrently on a clone of the input and
// returns the branch payloads in declaration order. The first branch
// error aborts the result.
func (f *Fork) Run(ctx context.Context, p Payload) ([]Payload, error) {
	if len(f.branches) < 2 {
		return nil, errors.New("pipeline.Fork.Run", errors.KindServiceArgument,
			"a fork needs at least two branches, got %d", len(f.branches))
	}
	results := make([]Payload, len(f.branches))
	errs := make([]error, len(f.branches))
	var wg sync.WaitGroup
	for i, branch := range f.branches {
		wg.Add(1)
		go func(i int, branch Process) {
			defer wg.Done()
			results[i], errs[i] = branch.Run(ctx, p.Clone())
		}(i, branch)
	}
	wg.Wait()
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return results, nil
}

// Renames maps a branch index to old-key/new-key pairs applied to that
// branch's output before joining.
type Renames map[int]map[string]string

// Join merges the fork's branch outputs into a single payload, applying
// renames first. On key collisions the higher branch index wins. The
// result is itself a Process, so a fork slots into a pipeline chain.
func (f *Fork) Join(renames Renames) Process {
	return Func(func(ctx context.Context, p Payload) (Payload, error) {
		results, err := f.Run(ctx, p)
		if err != nil {
			return nil, err
		}
		for index, mapping := range renames {
			if index < 0 || index >= len(results) {
				return nil, errors.New("pipeline.Join", errors.KindServiceArgument,
					"rename index %d is out of range for %d branches", index, len(results))
			}
			// Deterministic order in case two renames target one key.
			olds := make([]string, 0, len(mapping))
			for old := range mapping {
				olds = append(olds, old)
			}
			sort.Strings(olds)
			for _, old := range olds {
				if v, ok := results[index][old]; ok {
					delete(results[index], old)
					results[index][mapping[old]] = v
				}
			}
		}
		joined := Payload{}
		for _, r := range results {
			joined.Merge(r)
		}
		return joined, nil
	})
}

// Background runs a process off the calling goroutine and delivers the
// result through post, which must marshal onto the loop thread.
func Background(ctx context.Context, proc Process, p Payload, post func(fn func()), done func(Payload, error)) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				errors.Recover("pipeline.Background", r)
			}
		}()
		out, err := proc.Run(ctx, p)
		post(func() { done(out, err) })
	}()
}
