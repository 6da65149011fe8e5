package io

import (
	"os"
	"sync"
	"testing"
	"time"

	"github.com/ecopia-map/urdf_simplifier/internal/data"
	"github.com/ecopia-map/urdf_simplifier/internal/fit"
	"github.com/ecopia-map/urdf_simplifier/internal/geometry"
	"github.com/ecopia-map/urdf_simplifier/internal/simplifier"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// cube of the given size with its min corner at the origin
func cube(size float64) *data.TriangleMesh {
	var vertices []geometry.Point3
	for _, x := range []float64{0, size} {
		for _, y := range []float64{0, size} {
			for _, z := range []float64{0, size} {
				vertices = append(vertices, geometry.Point3{x, y, z})
			}
		}
	}
	faces := [][3]int{
		{0, 1, 3}, {0, 3, 2},
		{4, 6, 7}, {4, 7, 5},
		{0, 4, 5}, {0, 5, 1},
		{2, 3, 7}, {2, 7, 6},
		{0, 2, 6}, {0, 6, 4},
		{1, 5, 7}, {1, 7, 3},
	}
	return data.NewTriangleMesh(vertices, faces)
}

// memoryLoader serves meshes by path, delaying by the given duration
type memoryLoader struct {
	meshes map[string]*data.TriangleMesh
	delay  map[string]time.Duration
}

func (l *memoryLoader) Load(path string, scale geometry.Point3) (*data.TriangleMesh, error) {
	time.Sleep(l.delay[path])
	mesh, ok := l.meshes[path]
	if !ok {
		return nil, &simplifier.MeshLoadError{Path: path, Err: os.ErrNotExist}
	}
	out := data.NewTriangleMesh(append([]geometry.Point3(nil), mesh.Vertices...), append([][3]int(nil), mesh.Faces...))
	out.ScaleVertices(scale)
	return out, nil
}

func unit(index int, path string) *WorkUnit {
	cfg := simplifier.DefaultFitConfig()
	cfg.Kind = simplifier.AABB
	return &WorkUnit{
		Index:  index,
		Entry:  path,
		Parts:  []MeshPart{{Path: path, Scale: geometry.Point3{1, 1, 1}, Transform: geometry.Identity()}},
		Frame:  geometry.Identity(),
		Config: cfg,
	}
}

func run(loader *memoryLoader, units []*WorkUnit, workers int) []*WorkResult {
	return Run(NewStandardProducer(units), func() Consumer { return NewStandardConsumer(loader) }, workers, len(units))
}

func TestRunPreservesOrder(t *testing.T) {
	loader := &memoryLoader{
		meshes: map[string]*data.TriangleMesh{},
		delay:  map[string]time.Duration{},
	}
	var units []*WorkUnit
	for i := 0; i < 12; i++ {
		path := "mesh" + string(rune('a'+i)) + ".stl"
		loader.meshes[path] = cube(float64(i + 1))
		// earlier units finish last
		loader.delay[path] = time.Duration(12-i) * time.Millisecond
		units = append(units, unit(i, path))
	}

	results := run(loader, units, 4)
	require.Len(t, results, 12)
	for i, r := range results {
		require.NotNil(t, r)
		require.NoError(t, r.Err)
		assert.Equal(t, i, r.Index)
		assert.Equal(t, units[i].Entry, r.Entry)
		size := float64(i + 1)
		assert.True(t, geometry.ApproxEqual(r.Fit.Box.Extents, geometry.Point3{size, size, size}, 1e-12))
	}
}

func TestRunToleratesFailures(t *testing.T) {
	loader := &memoryLoader{
		meshes: map[string]*data.TriangleMesh{
			"good.stl":  cube(1),
			"empty.stl": data.NewTriangleMesh(nil, nil),
		},
	}
	units := []*WorkUnit{unit(0, "good.stl"), unit(1, "missing.stl"), unit(2, "empty.stl"), unit(3, "good.stl")}

	results := run(loader, units, 2)
	require.Len(t, results, 4)

	assert.NoError(t, results[0].Err)
	assert.NoError(t, results[3].Err)

	var loadErr *simplifier.MeshLoadError
	require.ErrorAs(t, results[1].Err, &loadErr)
	assert.Equal(t, "missing.stl", loadErr.Path)
	assert.ErrorIs(t, results[1].Err, os.ErrNotExist)

	require.ErrorAs(t, results[2].Err, &loadErr)
	assert.Equal(t, "empty.stl", loadErr.Path)
	assert.ErrorIs(t, results[2].Err, fit.ErrEmptyMesh)
	assert.Nil(t, results[2].Fit)
}

func TestConsumerComposesFrames(t *testing.T) {
	loader := &memoryLoader{meshes: map[string]*data.TriangleMesh{"a.stl": cube(1), "b.stl": cube(1)}}
	frame := geometry.FromXYZRPY(geometry.Point3{0, 0, 1}, geometry.Point3{})

	u := unit(0, "a.stl")
	u.Frame = frame
	u.Parts = append(u.Parts, MeshPart{
		Path:      "b.stl",
		Scale:     geometry.Point3{1, 1, 2},
		Transform: geometry.FromXYZRPY(geometry.Point3{1, 0, 0}, geometry.Point3{}),
	})

	result := NewStandardConsumer(loader).doWork(u)
	require.NoError(t, result.Err)
	assert.True(t, geometry.ApproxEqual(result.Fit.Box.Extents, geometry.Point3{2, 1, 2}, 1e-12))
	// box center (1, 0.5, 1) in the unit frame, lifted by the frame
	assert.True(t, geometry.ApproxEqual(result.Origin.Translation, geometry.Point3{1, 0.5, 2}, 1e-12))
}

func TestStandardProducerClosesChannel(t *testing.T) {
	units := []*WorkUnit{unit(0, "a"), unit(1, "b")}
	work := make(chan *WorkUnit, len(units))
	var wg sync.WaitGroup
	wg.Add(1)
	NewStandardProducer(units).Produce(work, &wg)
	wg.Wait()

	var got []*WorkUnit
	for u := range work {
		got = append(got, u)
	}
	assert.Equal(t, units, got)
}
