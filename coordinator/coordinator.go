package coordinator

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"MandelbrotExplorer/gpu"
	"MandelbrotExplorer/mandelbrot"
	"MandelbrotExplorer/misc"
	"MandelbrotExplorer/palette"
	"MandelbrotExplorer/queue"
	"MandelbrotExplorer/task"
	"MandelbrotExplorer/view"
	"MandelbrotExplorer/worker"
	"github.com/BrugadaSyndrome/bslogger"
)

// Dispatcher computes a whole frame off the cpu in one blocking call.
type Dispatcher interface {
	Dispatch(ctx context.Context, frame mandelbrot.Frame, dst []uint32) error
	Close() error
}

type Option func(*Coordinator)

// WithDispatcher supplies the device backend instead of acquiring one from the settings.
func WithDispatcher(d Dispatcher) Option {
	return func(c *Coordinator) {
		c.dispatcher = d
	}
}

// Coordinator owns the render engine: the work queue and its worker pool, the optional device backend, the view
// history and the active palette. Frames are computed one at a time.
type Coordinator struct {
	dispatcher     Dispatcher
	fallbacks      uint
	framesComputed uint
	logger         bslogger.Logger
	lookupIndex    int
	lookups        []palette.Lookup
	mutex          sync.Mutex
	pool           *worker.Pool
	queue          *queue.Queue
	settings       Settings
	views          *view.Stack
}

func NewCoordinator(settings Settings, opts ...Option) (*Coordinator, error) {
	if err := settings.Verify(); err != nil {
		return nil, err
	}

	c := &Coordinator{
		logger:   bslogger.NewLogger("Coordinator", bslogger.Normal, nil),
		queue:    queue.NewQueue(settings.Pool.QueueCapacity),
		settings: settings,
	}
	for _, opt := range opts {
		opt(c)
	}

	// Device problems only cost the gpu mode, never the engine
	if c.dispatcher == nil && settings.GPU.Enabled {
		config, err := settings.gpuConfig()
		if !misc.CheckError(err, c.logger, misc.Warning) {
			backend, err := gpu.NewBackend(config)
			if !misc.CheckError(err, c.logger, misc.Warning) {
				c.dispatcher = backend
			}
		}
		if c.dispatcher == nil {
			c.logger.Warning("GPU mode will be computed on the CPU")
		}
	}

	if err := c.setupPalettes(); err != nil {
		return nil, err
	}

	root := view.New(settings.Mandelbrot.Frame(), settings.Mandelbrot.GradientBits)
	c.views = view.NewStack(root, settings.History.Capacity,
		view.WithClickZoom(settings.Navigation.ClickZoom),
		view.WithParking(!settings.History.DisableParking))

	c.pool = worker.NewPool(context.Background(), c.queue, settings.Pool)
	c.logger.Infof("Ready with %d workers, %s generation", c.pool.Size(), settings.Pool.Generation)
	return c, nil
}

// setupPalettes puts the configured palette first in the cycle, followed by every preset.
func (c *Coordinator) setupPalettes() error {
	active, err := c.settings.Palette.Lookup()
	if err != nil {
		return err
	}
	c.lookups = []palette.Lookup{active}
	if active.Name() != palette.Bezier {
		c.lookups = append(c.lookups, palette.NewPalette(palette.DefaultControls()))
	}
	for _, p := range palette.Presets() {
		if p.Name() != active.Name() {
			c.lookups = append(c.lookups, p)
		}
	}
	return nil
}

func (c *Coordinator) Views() *view.Stack {
	return c.views
}

// Mode is the render mode named in the settings.
func (c *Coordinator) Mode() mandelbrot.Mode {
	mode, _ := mandelbrot.ParseMode(c.settings.Mode)
	return mode
}

func (c *Coordinator) FramesComputed() uint {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.framesComputed
}

// Fallbacks counts gpu frames that had to be computed on the cpu.
func (c *Coordinator) Fallbacks() uint {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.fallbacks
}

// ComputeFrame fills v.Pixels with escape counts for v in the given mode and blocks until every pixel is written.
// A cancelled ctx abandons the frame's pending jobs and returns ctx.Err() once the jobs already running finish.
func (c *Coordinator) ComputeFrame(ctx context.Context, v *view.View, mode mandelbrot.Mode) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	frame := v.Frame()
	if err := frame.Verify(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(v.Pixels) != frame.Width*frame.Height {
		v.Pixels = make([]uint32, frame.Width*frame.Height)
	}
	clear(v.Pixels)
	v.Computed = false
	startTime := time.Now()

	if mode == mandelbrot.GpuOffload {
		err := c.dispatch(ctx, frame, v.Pixels)
		if err == nil {
			return c.computed(v, mode, startTime)
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.logger.Warningf("Computing %s on the CPU: %s", frame.String(), err)
		c.fallbacks++
		clear(v.Pixels)
		mode = mandelbrot.DoublePrecision
	}

	if err := c.computeOnPool(ctx, frame, mode, v.Pixels); err != nil {
		return err
	}
	return c.computed(v, mode, startTime)
}

func (c *Coordinator) computed(v *view.View, mode mandelbrot.Mode, startTime time.Time) error {
	v.Computed = true
	c.framesComputed++
	c.logger.Debugf("Computed %s in %s mode in %s", v.String(), mode, time.Since(startTime))
	return nil
}

func (c *Coordinator) dispatch(ctx context.Context, frame mandelbrot.Frame, pixels []uint32) error {
	if c.dispatcher == nil {
		return gpu.ErrNoAdapter
	}
	return c.dispatcher.Dispatch(ctx, frame, pixels)
}

func (c *Coordinator) computeOnPool(ctx context.Context, frame mandelbrot.Frame, mode mandelbrot.Mode, pixels []uint32) error {
	kernel, err := mandelbrot.NewKernel(frame, mode, c.settings.Mandelbrot.Precision)
	if err != nil {
		return err
	}

	rects := task.Split(frame.Bounds(), c.settings.Pool.Generation, c.settings.Pool.TileSize)
	jobs := task.NewJobs(c.queue.Generation(), kernel, pixels, frame.Width, rects)
	for i := range jobs {
		if err = c.queue.Enqueue(jobs[i]); err != nil {
			c.queue.Advance()
			c.queue.AwaitDrain()
			return fmt.Errorf("unable to enqueue %s - %w", jobs[i].String(), err)
		}
	}

	drained := make(chan struct{})
	go func() {
		c.queue.AwaitDrain()
		close(drained)
	}()

	select {
	case <-drained:
		return nil
	case <-ctx.Done():
		c.queue.Advance()
		<-drained
		return ctx.Err()
	}
}

// Refresh computes the current view if it has no valid pixels yet.
func (c *Coordinator) Refresh(ctx context.Context, mode mandelbrot.Mode) (*view.View, error) {
	current := c.views.Current()
	if current.Computed && current.Pixels != nil {
		return current, nil
	}
	return current, c.ComputeFrame(ctx, current, mode)
}

func (c *Coordinator) Palette() palette.Lookup {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.lookups[c.lookupIndex]
}

// NextPalette makes the next palette in the cycle active.
func (c *Coordinator) NextPalette() palette.Lookup {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.lookupIndex = (c.lookupIndex + 1) % len(c.lookups)
	return c.lookups[c.lookupIndex]
}

// UsePalette makes the palette called name active.
func (c *Coordinator) UsePalette(name string) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	for i, l := range c.lookups {
		if strings.EqualFold(l.Name(), name) {
			c.lookupIndex = i
			return nil
		}
	}
	return fmt.Errorf("%w: %q", palette.ErrUnknown, name)
}

func (c *Coordinator) ColorFor(count uint32, v *view.View) color.RGBA {
	return c.Palette().Lookup(count, v.IterationCap, v.GradientBits)
}

// Colorize maps v's escape counts through the active palette.
func (c *Coordinator) Colorize(v *view.View) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, v.Width, v.Height))
	lookup := c.Palette()
	for i, count := range v.Pixels {
		img.SetRGBA(i%v.Width, i/v.Width, lookup.Lookup(count, v.IterationCap, v.GradientBits))
	}
	return img
}

// Export writes the colorized view and a settings snapshot that reproduces it into dir. It returns the image path.
func (c *Coordinator) Export(v *view.View, dir string) (string, error) {
	if !v.Computed || v.Pixels == nil {
		return "", errors.New("view has not been computed")
	}
	if dir == "" {
		dir = c.settings.SavePath
	}
	path := filepath.Join(dir, misc.ExportName(v.CenterX, v.CenterY, v.Zoom))
	if _, err := misc.SaveImage(path, c.Colorize(v)); err != nil {
		return "", err
	}

	snapshot, err := c.settings.snapshot(v)
	if err != nil {
		return path, fmt.Errorf("unable to encode settings - %w", err)
	}
	if _, err = misc.WriteFile(strings.TrimSuffix(path, filepath.Ext(path))+".json", snapshot); err != nil {
		return path, err
	}
	c.logger.Infof("Saved image to %s", path)
	return path, nil
}

// ZoomIn pushes a zoomed in copy of the current view. repeat applies the larger factor used for a held key.
func (c *Coordinator) ZoomIn(repeat bool) (*view.View, error) {
	factor := c.settings.Navigation.zoomFactor(c.views.Current().Zoom, repeat)
	return c.views.PushZoom(factor)
}

// ZoomAt pushes a copy of the current view centered on pixel (px, py).
func (c *Coordinator) ZoomAt(px int, py int) (*view.View, error) {
	return c.views.PushZoomAt(px, py)
}

// ZoomOut returns to the previous view. Its pixels are restored when they were kept.
func (c *Coordinator) ZoomOut() bool {
	return c.views.Pop()
}

func (c *Coordinator) MoreIterations() bool {
	return c.views.Current().DoubleIterationCap()
}

func (c *Coordinator) FewerIterations() bool {
	return c.views.Current().HalveIterationCap()
}

func (c *Coordinator) SharperGradient() bool {
	return c.views.Current().IncreaseGradient()
}

func (c *Coordinator) SofterGradient() bool {
	return c.views.Current().DecreaseGradient()
}

// Close stops the workers and releases the device backend.
func (c *Coordinator) Close() error {
	err := c.pool.Close()
	if c.dispatcher != nil {
		err = errors.Join(err, c.dispatcher.Close())
	}
	c.logger.Infof("Computed %d frames (%d on the CPU instead of the GPU)", c.FramesComputed(), c.Fallbacks())
	return err
}
