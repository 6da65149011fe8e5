package io

import (
	"errors"
	"sync"

	"github.com/ecopia-map/urdf_simplifier/internal/data"
	"github.com/ecopia-map/urdf_simplifier/internal/fit"
	"github.com/ecopia-map/urdf_simplifier/internal/geometry"
	"github.com/ecopia-map/urdf_simplifier/internal/meshio"
	"github.com/ecopia-map/urdf_simplifier/internal/simplifier"
	"github.com/golang/glog"
)

type StandardConsumer struct {
	loader meshio.Loader
}

func NewStandardConsumer(loader meshio.Loader) *StandardConsumer {
	return &StandardConsumer{
		loader: loader,
	}
}

// Continually consumes WorkUnits submitted to a work channel and sends one WorkResult per unit to the result
// channel. A unit that fails does not stop the consumer, its error travels in the result.
func (c *StandardConsumer) Consume(workchan chan *WorkUnit, resultchan chan *WorkResult, waitGroup *sync.WaitGroup) {
	for work := range workchan {
		resultchan <- c.doWork(work)
	}

	// signal waitgroup finished work
	waitGroup.Done()
}

// Loads the meshes of a unit, expresses them in the unit frame and fits a single box around them
func (c *StandardConsumer) doWork(unit *WorkUnit) *WorkResult {
	result := &WorkResult{Index: unit.Index, Entry: unit.Entry}
	if len(unit.Parts) == 0 {
		result.Err = &simplifier.MeshLoadError{Err: fit.ErrEmptyMesh}
		return result
	}

	meshes := make([]*data.TriangleMesh, 0, len(unit.Parts))
	transforms := make([]geometry.RigidTransform, 0, len(unit.Parts))
	for _, part := range unit.Parts {
		mesh, err := c.loader.Load(part.Path, part.Scale)
		if err != nil {
			result.Err = err
			return result
		}
		glog.V(2).Infof("%s: loaded %s, %d vertices, %d faces", unit.Entry, part.Path, len(mesh.Vertices), len(mesh.Faces))
		meshes = append(meshes, mesh)
		transforms = append(transforms, part.Transform)
	}

	mesh := fit.MergeMeshes(meshes, transforms)
	fitted, err := fit.FitMesh(mesh, unit.Config)
	if errors.Is(err, fit.ErrEmptyMesh) {
		result.Err = &simplifier.MeshLoadError{Path: unit.Parts[0].Path, Err: err}
		return result
	}
	if err != nil {
		result.Err = err
		return result
	}

	result.Fit = fitted
	result.Origin = unit.Frame.Compose(fitted.Box.Transform)
	return result
}
