package pkg

import (
	"math"
	"strconv"

	"github.com/ecopia-map/urdf_simplifier/internal/fit"
	"github.com/ecopia-map/urdf_simplifier/internal/geometry"
	"github.com/ecopia-map/urdf_simplifier/internal/simplifier"
	"github.com/ecopia-map/urdf_simplifier/tools"
)

type Outcome string

const (
	OutcomeFitted     Outcome = "fitted"
	OutcomeExcluded   Outcome = "skipped-excluded"
	OutcomeDeselected Outcome = "skipped-deselected"
	OutcomePrimitive  Outcome = "skipped-primitive"
	OutcomeError      Outcome = "skipped-error"
)

// EntryReport is the outcome of a single collision entry.
type EntryReport struct {
	Link    string
	Entry   string
	Mesh    string // resolved mesh path, empty for primitives
	Outcome Outcome
	Size    geometry.Point3 // final box size when fitted
	Fit     fit.FitReport
	Err     error // why the entry was skipped
	Warning error // fit inconsistency, the box was still written

	// set on entries removed because their link was merged into another entry's box
	MergedInto string
}

type RunReport struct {
	Robot   string
	Config  simplifier.FitConfig
	Entries []*EntryReport
}

func (r *RunReport) add(entry *EntryReport) *EntryReport {
	r.Entries = append(r.Entries, entry)
	return entry
}

func (r *RunReport) Count(outcome Outcome) int {
	n := 0
	for _, e := range r.Entries {
		if e.Outcome == outcome {
			n++
		}
	}
	return n
}

// Links returns the link names in document order, each once.
func (r *RunReport) Links() []string {
	var links []string
	seen := map[string]bool{}
	for _, e := range r.Entries {
		if !seen[e.Link] {
			seen[e.Link] = true
			links = append(links, e.Link)
		}
	}
	return links
}

func (r *RunReport) linkEntries(link string) []*EntryReport {
	var out []*EntryReport
	for _, e := range r.Entries {
		if e.Link == link {
			out = append(out, e)
		}
	}
	return out
}

// Print writes the per link listing and the summary through tools.LogOutput.
func (r *RunReport) Print(verbose bool) {
	links := r.Links()
	for i, link := range links {
		tools.LogOutputf("%s (%d/%d)", link, i+1, len(links))
		entries := r.linkEntries(link)
		fitted := 0
		for _, e := range entries {
			if e.Outcome == OutcomeFitted && e.MergedInto == "" {
				fitted++
			}
		}
		for _, e := range entries {
			line, ok := r.entryLine(e, verbose, fitted)
			if ok {
				tools.LogOutput("    " + line)
			}
		}
	}

	tools.LogOutputf("Summary: %d fitted, %d excluded, %d deselected, %d primitive, %d failed",
		r.Count(OutcomeFitted), r.Count(OutcomeExcluded), r.Count(OutcomeDeselected), r.Count(OutcomePrimitive), r.Count(OutcomeError))
}

func (r *RunReport) entryLine(e *EntryReport, verbose bool, fittedInLink int) (string, bool) {
	switch e.Outcome {
	case OutcomeFitted:
		if e.MergedInto != "" {
			if verbose {
				return e.Entry + ": merged into " + e.MergedInto, true
			}
			return "", false
		}
		size := tools.FormatSize(e.Size)
		if verbose {
			line := e.Mesh + ": " + size
			if ratio := e.Fit.Ratio; !math.IsInf(ratio, 1) {
				line += " (volume ratio: " + tools.FormatFixed(ratio, 2) + ")"
			}
			if e.Warning != nil {
				line += " warning: " + e.Warning.Error()
			}
			return line, true
		}
		if fittedInLink > 1 {
			return "Mesh " + strconv.Itoa(e.indexInLink(r)) + ": " + size, true
		}
		return "", false
	case OutcomeError:
		return e.Entry + ": " + string(e.Outcome) + ": " + e.Err.Error(), true
	default:
		if verbose {
			return e.Entry + ": " + string(e.Outcome), true
		}
		return "", false
	}
}

// indexInLink numbers the fitted boxes of a link from 1.
func (e *EntryReport) indexInLink(r *RunReport) int {
	n := 0
	for _, other := range r.linkEntries(e.Link) {
		if other.Outcome == OutcomeFitted && other.MergedInto == "" {
			n++
		}
		if other == e {
			break
		}
	}
	return n
}
