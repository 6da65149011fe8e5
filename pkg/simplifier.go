package pkg

import (
	"fmt"
	"runtime"
	"strconv"

	"github.com/ecopia-map/urdf_simplifier/internal/io"
	"github.com/ecopia-map/urdf_simplifier/internal/simplifier"
	"github.com/ecopia-map/urdf_simplifier/internal/urdf"
	"github.com/ecopia-map/urdf_simplifier/pkg/fit_manager"
	"github.com/ecopia-map/urdf_simplifier/tools"
	"github.com/golang/glog"
)

type ISimplifier interface {
	RunSimplifier(opts *simplifier.SimplifierOptions) (*RunReport, error)
}

type Simplifier struct {
	fitManager fit_manager.FitManager
	selector   tools.Selector
}

// NewSimplifier builds a simplifier. A nil selector keeps every link.
func NewSimplifier(fitManager fit_manager.FitManager, selector tools.Selector) ISimplifier {
	if selector == nil {
		selector = tools.SelectAll
	}
	return &Simplifier{
		fitManager: fitManager,
		selector:   selector,
	}
}

// Starts the simplification process. Entries that cannot be fitted are left
// untouched and reported, only unreadable documents stop the run.
func (s *Simplifier) RunSimplifier(opts *simplifier.SimplifierOptions) (*RunReport, error) {
	glog.Infoln("Reading robot description", opts.Input)
	robot, err := urdf.ReadFile(opts.Input, s.fitManager.GetFrameConverter())
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", opts.Input, err)
	}

	printConfiguration(opts)

	report := &RunReport{Robot: robot.Name(), Config: opts.Fit.Copy()}
	planned := s.planUnits(robot, opts, report)

	workers := opts.Fit.Workers
	if workers == 0 {
		workers = runtime.NumCPU()
	}
	glog.Infof("> fitting %d boxes with %d workers", len(planned), workers)
	results := s.fitUnits(planned, workers)
	s.applyResults(planned, results)

	report.Print(opts.Verbose)

	if opts.DryRun() {
		return report, nil
	}

	tools.LogOutput("Writing urdf to " + opts.Output)
	if err := tools.CreateParentDirectoryIfDoesNotExist(opts.Output); err != nil {
		return report, err
	}
	if err := robot.WriteFile(opts.Output); err != nil {
		return report, fmt.Errorf("failed to write %s: %w", opts.Output, err)
	}
	return report, nil
}

// Fits the planned units on a pool of consumers, the results come back in unit order
func (s *Simplifier) fitUnits(planned []*plannedUnit, workers int) []*io.WorkResult {
	units := make([]*io.WorkUnit, len(planned))
	for i, p := range planned {
		units[i] = p.unit
	}

	producer := io.NewStandardProducer(units)
	newConsumer := func() io.Consumer {
		return io.NewStandardConsumer(s.fitManager.GetMeshLoader())
	}
	return io.Run(producer, newConsumer, workers, len(units))
}

// Writes the fitted boxes into the document in unit order
func (s *Simplifier) applyResults(planned []*plannedUnit, results []*io.WorkResult) {
	for i, p := range planned {
		result := results[i]
		if result == nil {
			result = &io.WorkResult{Err: fmt.Errorf("no result for %s", p.unit.Entry)}
		}
		if result.Err != nil {
			glog.Warningf("%s left unchanged: %v", p.unit.Entry, result.Err)
			for _, entry := range p.entries {
				entry.Outcome, entry.Err = OutcomeError, result.Err
			}
			continue
		}

		primary := p.entries[0]
		p.collisions[0].SetBox(result.Fit.Box.Extents, result.Origin)
		primary.Outcome = OutcomeFitted
		primary.Size = result.Fit.Box.Extents
		primary.Fit = result.Fit.Report
		if err := result.Fit.Report.Check(primary.Entry); err != nil {
			glog.Warningf("%v", err)
			primary.Warning = err
		}
		glog.V(1).Infof("%s: %s, hull %s", primary.Entry, result.Fit.Box, result.Fit.HullDimension)

		for k := 1; k < len(p.collisions); k++ {
			p.link.RemoveCollision(p.collisions[k])
			p.entries[k].Outcome = OutcomeFitted
			p.entries[k].MergedInto = primary.Entry
		}
	}
}

func printConfiguration(opts *simplifier.SimplifierOptions) {
	axis := opts.Fit.Axis
	tools.LogOutput("Configuration:")
	tools.LogOutput("  Bounding box type: " + opts.Fit.Kind.String())
	if opts.Fit.TightFit {
		tools.LogOutput("  Using tight-fit algorithm (convex hull based)")
	}
	tools.LogOutputf("  Scaling: %s (X: %s, Y: %s, Z: %s)", formatFloat(axis.Scale),
		formatFloat(axis.ResolveScale(0)), formatFloat(axis.ResolveScale(1)), formatFloat(axis.ResolveScale(2)))
	tools.LogOutputf("  Padding: %sm (X: %sm, Y: %sm, Z: %sm)", formatFloat(axis.Padding),
		formatFloat(axis.ResolvePadding(0)), formatFloat(axis.ResolvePadding(1)), formatFloat(axis.ResolvePadding(2)))
	tools.LogOutput("  Minimum size: " + formatFloat(opts.Fit.MinSize) + "m")
	tools.LogOutput("  Merge policy: " + opts.Fit.Merge.String())
	if len(opts.Fit.Exclude) > 0 {
		tools.LogOutput("  Excluded links:", opts.Fit.Exclude)
	}
	if opts.Verbose {
		tools.LogOutput("  Verbose output enabled")
	}
	tools.LogOutput()
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
