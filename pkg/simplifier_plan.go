package pkg

import (
	"github.com/ecopia-map/urdf_simplifier/internal/geometry"
	"github.com/ecopia-map/urdf_simplifier/internal/io"
	"github.com/ecopia-map/urdf_simplifier/internal/simplifier"
	"github.com/ecopia-map/urdf_simplifier/internal/urdf"
	"github.com/golang/glog"
)

// plannedUnit ties a work unit to the collisions its box replaces. The first
// collision receives the box, the others are removed.
type plannedUnit struct {
	unit       *io.WorkUnit
	link       *urdf.Link
	collisions []*urdf.Collision
	entries    []*EntryReport
}

type meshEntry struct {
	collision *urdf.Collision
	entry     *EntryReport
	geometry  urdf.Geometry
	path      string
	origin    geometry.RigidTransform
}

// planUnits walks the links in document order, records an entry report for
// every collision and returns the units to fit.
func (s *Simplifier) planUnits(robot *urdf.Robot, opts *simplifier.SimplifierOptions, report *RunReport) []*plannedUnit {
	var planned []*plannedUnit
	for _, link := range robot.Links() {
		name := link.Name()
		collisions := link.Collisions()
		if len(collisions) == 0 {
			glog.V(1).Infof("link %s has no collision geometry", name)
			continue
		}

		if opts.Fit.IsExcluded(name) {
			for _, c := range collisions {
				report.add(&EntryReport{Link: name, Entry: c.ID(), Outcome: OutcomeExcluded})
			}
			continue
		}

		var meshes []*meshEntry
		for _, c := range collisions {
			entry := report.add(&EntryReport{Link: name, Entry: c.ID()})
			g, err := c.Geometry()
			if err != nil {
				entry.Outcome, entry.Err = OutcomeError, err
				continue
			}
			if !g.IsMesh() {
				entry.Outcome = OutcomePrimitive
				continue
			}
			meshes = append(meshes, &meshEntry{collision: c, entry: entry, geometry: g})
		}
		if len(meshes) == 0 {
			continue
		}

		if !s.selector(name) {
			for _, m := range meshes {
				m.entry.Outcome = OutcomeDeselected
			}
			continue
		}

		meshes = s.resolveMeshes(meshes)
		if len(meshes) == 0 {
			continue
		}

		if opts.Fit.Merge == simplifier.PerLink {
			planned = append(planned, newLinkUnit(len(planned), link, meshes, opts.Fit))
			continue
		}
		for _, m := range meshes {
			planned = append(planned, newEntryUnit(len(planned), link, m, opts.Fit))
		}
	}
	return planned
}

// resolveMeshes fills in path and origin, marking entries that fail as errors.
// The entries that can be fitted are returned.
func (s *Simplifier) resolveMeshes(meshes []*meshEntry) []*meshEntry {
	resolver := s.fitManager.GetResourceResolver()
	var ok []*meshEntry
	for _, m := range meshes {
		path, err := resolver.Resolve(m.geometry.Filename)
		if err != nil {
			m.entry.Outcome = OutcomeError
			m.entry.Err = &simplifier.MeshLoadError{Path: m.geometry.Filename, Err: err}
			continue
		}
		m.path = path
		m.entry.Mesh = path

		origin, err := m.collision.Origin()
		if err != nil {
			m.entry.Outcome, m.entry.Err = OutcomeError, err
			continue
		}
		m.origin = origin
		ok = append(ok, m)
	}
	return ok
}

// newEntryUnit fits the mesh in its own frame, the box is then placed through
// the entry origin.
func newEntryUnit(index int, link *urdf.Link, m *meshEntry, cfg simplifier.FitConfig) *plannedUnit {
	return &plannedUnit{
		unit: &io.WorkUnit{
			Index: index,
			Entry: m.entry.Entry,
			Parts: []io.MeshPart{{
				Path:      m.path,
				Scale:     m.geometry.Scale,
				Transform: geometry.Identity(),
			}},
			Frame:  m.origin,
			Config: cfg.Copy(),
		},
		link:       link,
		collisions: []*urdf.Collision{m.collision},
		entries:    []*EntryReport{m.entry},
	}
}

// newLinkUnit moves every mesh of the link into the link frame and fits one box
// around all of them.
func newLinkUnit(index int, link *urdf.Link, meshes []*meshEntry, cfg simplifier.FitConfig) *plannedUnit {
	p := &plannedUnit{
		unit: &io.WorkUnit{
			Index:  index,
			Entry:  link.Name(),
			Frame:  geometry.Identity(),
			Config: cfg.Copy(),
		},
		link: link,
	}
	for _, m := range meshes {
		p.unit.Parts = append(p.unit.Parts, io.MeshPart{
			Path:      m.path,
			Scale:     m.geometry.Scale,
			Transform: m.origin,
		})
		p.collisions = append(p.collisions, m.collision)
		p.entries = append(p.entries, m.entry)
	}
	return p
}
