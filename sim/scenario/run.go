package scenario

import (
	"context"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/inference-sim/marblesim/sim/marble"
	"github.com/inference-sim/marblesim/sim/marbletest"
)

// Result is the outcome of one scenario.
type Result struct {
	Name     string
	Received []marble.TimedEvent
	Err      error // nil when every expectation held
}

// Passed reports whether every expectation held.
func (r Result) Passed() bool { return r.Err == nil }

// FileResult groups the results of one scenario file. Err is set when the
// file could not be loaded; Results is then empty.
type FileResult struct {
	Path    string
	Results []Result
	Err     error
}

// Passed reports whether the file loaded and all its scenarios passed.
func (fr FileResult) Passed() bool {
	if fr.Err != nil {
		return false
	}
	for _, r := range fr.Results {
		if !r.Passed() {
			return false
		}
	}
	return true
}

// Run replays s on a fresh harness.
func (s *Scenario) Run() Result {
	h := marbletest.New(
		marbletest.WithErrorValue(s.Error),
		marbletest.WithHorizon(s.Horizon),
		marbletest.WithLogger(logrus.WithField("scenario", s.Name)),
	)
	res := Result{Name: s.Name}

	src, err := h.Cold(s.Source, s.Values)
	if err != nil {
		res.Err = err
		return res
	}
	sub, err := h.Subscribe(src, s.Subscription)
	if err != nil {
		res.Err = err
		return res
	}
	if err := h.Run(); err != nil {
		res.Err = err
		return res
	}
	res.Received = sub.Events()

	if err := h.ExpectEvents(sub, s.Expected, s.Values); err != nil {
		res.Err = err
		return res
	}
	if s.ExpectedSubscription != "" {
		res.Err = h.ExpectSubscriptions(src, s.ExpectedSubscription)
	}
	return res
}

// Run replays every scenario of f in order.
func (f *File) Run() FileResult {
	fr := FileResult{Path: f.Path, Results: make([]Result, 0, len(f.Scenarios))}
	for i := range f.Scenarios {
		fr.Results = append(fr.Results, f.Scenarios[i].Run())
	}
	return fr
}

// RunFiles loads and runs scenario files with at most parallel files in
// flight (parallel <= 0 means no limit). Results keep the order of paths.
// The only error returned is the context's, when it ends before all files
// have started.
func RunFiles(ctx context.Context, paths []string, parallel int) ([]FileResult, error) {
	results := make([]FileResult, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	if parallel > 0 {
		g.SetLimit(parallel)
	}
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			f, err := Load(path)
			if err != nil {
				results[i] = FileResult{Path: path, Err: err}
				return nil
			}
			results[i] = f.Run()
			logrus.Debugf("scenario file %s: %d scenarios", path, len(f.Scenarios))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}
