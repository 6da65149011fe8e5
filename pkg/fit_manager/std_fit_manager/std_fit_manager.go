package std_fit_manager

import (
	"github.com/ecopia-map/urdf_simplifier/internal/converters"
	"github.com/ecopia-map/urdf_simplifier/internal/converters/decimal_frame_converter"
	"github.com/ecopia-map/urdf_simplifier/internal/meshio"
	"github.com/ecopia-map/urdf_simplifier/internal/simplifier"
	"github.com/ecopia-map/urdf_simplifier/pkg/fit_manager"
	"github.com/ecopia-map/urdf_simplifier/tools"
)

type StandardFitManager struct {
	options        *simplifier.SimplifierOptions
	meshLoader     meshio.Loader
	resolver       tools.ResourceResolver
	frameConverter converters.FrameConverter
}

func NewFitManager(options *simplifier.SimplifierOptions) fit_manager.FitManager {
	return &StandardFitManager{
		options:        options,
		meshLoader:     meshio.NewFileLoader(),
		resolver:       tools.NewStandardResourceResolver(options.Input, options.UseRos),
		frameConverter: decimal_frame_converter.NewDecimalFrameConverter(decimal_frame_converter.DefaultPrecision),
	}
}

func (m *StandardFitManager) GetMeshLoader() meshio.Loader {
	return m.meshLoader
}

func (m *StandardFitManager) GetResourceResolver() tools.ResourceResolver {
	return m.resolver
}

func (m *StandardFitManager) GetFrameConverter() converters.FrameConverter {
	return m.frameConverter
}
