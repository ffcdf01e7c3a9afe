package coordinator

import (
	"fmt"
	"image"
	"os"

	"MandelbrotExplorer/gpu"
	"MandelbrotExplorer/mandelbrot"
	"MandelbrotExplorer/misc"
	"MandelbrotExplorer/palette"
	"MandelbrotExplorer/task"
	"MandelbrotExplorer/view"
	"MandelbrotExplorer/worker"
	"github.com/BrugadaSyndrome/bslogger"
	"github.com/bytedance/sonic"
)

type gpuSettings struct {
	Enabled          bool
	KernelFile       string
	VendorPreference string
}

type historySettings struct {
	Capacity       int
	DisableParking bool
}

type Settings struct {
	logger bslogger.Logger

	GPU        gpuSettings
	History    historySettings
	Mandelbrot mandelbrot.Settings
	Mode       string
	Navigation navigationSettings
	Palette    palette.Settings
	Pool       worker.Settings
	SavePath   string
}

// DefaultSettings are the settings used for anything a settings file leaves out.
func DefaultSettings() Settings {
	s := Settings{
		logger: bslogger.NewLogger("CoordinatorSettings", bslogger.Normal, nil),
		Mandelbrot: mandelbrot.Settings{
			CenterX:       -0.7,
			CenterY:       0,
			GradientBits:  4,
			Height:        1024,
			MaxIterations: 255,
			Width:         1024,
			Zoom:          1,
		},
	}
	s.Verify()
	return s
}

func NewSettings(settingsFile string) (Settings, error) {
	s := DefaultSettings()
	fileBytes, err := misc.ReadFile(settingsFile)
	if err != nil {
		return s, err
	}
	if err = sonic.Unmarshal(fileBytes, &s); err != nil {
		return s, fmt.Errorf("unable to parse %s - %w", settingsFile, err)
	}
	if err = s.Verify(); err != nil {
		return s, err
	}
	s.logger.Debug(s.String())
	return s, nil
}

func (s *Settings) String() string {
	output := "\nCoordinator settings\n"
	output += fmt.Sprintf("Mode: %s\n", s.Mode)
	output += fmt.Sprintf("Save Path: %s\n", s.SavePath)
	output += fmt.Sprintf("GPU: %t (prefer %s)\n", s.GPU.Enabled, s.GPU.VendorPreference)
	output += fmt.Sprintf("History: %d views (parking %t)\n", s.History.Capacity, !s.History.DisableParking)
	output += s.Mandelbrot.String()
	output += s.Navigation.String()
	output += s.Palette.String()
	output += s.Pool.String()
	return output
}

func (s *Settings) Verify() error {
	if err := s.Mandelbrot.Verify(); err != nil {
		return err
	}
	mode, err := mandelbrot.ParseMode(s.Mode)
	if err != nil {
		return err
	}
	s.Mode = mode.String()
	if err = s.Navigation.Verify(); err != nil {
		return err
	}
	if err = s.Palette.Verify(); err != nil {
		return err
	}
	if err = s.Pool.Verify(); err != nil {
		return err
	}

	// Every job of a frame has to fit in the queue at once
	bounds := image.Rect(0, 0, s.Mandelbrot.Width, s.Mandelbrot.Height)
	if jobs := task.Count(bounds, s.Pool.Generation, s.Pool.TileSize); s.Pool.QueueCapacity < jobs {
		s.Pool.QueueCapacity = jobs
	}

	if s.History.Capacity <= 0 {
		s.History.Capacity = view.DefaultCapacity
	}
	if s.GPU.VendorPreference == "" {
		s.GPU.VendorPreference = "NVIDIA"
	}
	if s.SavePath == "" {
		s.SavePath, _ = os.Getwd()
	}
	return nil
}

// gpuConfig loads the kernel the settings point at, or the built in one.
func (s *Settings) gpuConfig() (gpu.Config, error) {
	config := gpu.Config{VendorPreference: s.GPU.VendorPreference}
	if s.GPU.KernelFile != "" {
		source, err := misc.ReadFile(s.GPU.KernelFile)
		if err != nil {
			return config, err
		}
		config.KernelSource = string(source)
	}
	return config, config.Verify()
}

// snapshot encodes the settings with the root view replaced by v, so an export can be reproduced later.
func (s *Settings) snapshot(v *view.View) ([]byte, error) {
	copied := *s
	copied.Mandelbrot.CenterX = v.CenterX
	copied.Mandelbrot.CenterY = v.CenterY
	copied.Mandelbrot.Zoom = v.Zoom
	copied.Mandelbrot.MaxIterations = v.IterationCap
	copied.Mandelbrot.GradientBits = v.GradientBits
	return sonic.MarshalIndent(&copied, "", "  ")
}
