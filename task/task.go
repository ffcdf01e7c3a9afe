package task

import (
	"fmt"
	"image"

	"MandelbrotExplorer/mandelbrot"
)

const (
	Row Generation = iota
	Column
	Tile
	Image
)

// Generation is the strategy used to split a frame into jobs.
type Generation int

func (g Generation) String() string {
	if g < Row || g > Image {
		return fmt.Sprintf("Generation(%d)", int(g))
	}
	return []string{
		"Row", "Column", "Tile", "Image",
	}[g]
}

// Job is one unit of frame work: a rectangle of the frame and the buffer it is written to. Jobs of one frame cover
// disjoint rectangles, so they never write the same pixel.
type Job struct {
	FrameGeneration uint64
	ID              uint
	Kernel          mandelbrot.Kernel
	Pixels          []uint32
	Rect            image.Rectangle
	Stride          int
}

func (j *Job) String() string {
	output := "{Job "
	output += fmt.Sprintf("ID: %d ", j.ID)
	output += fmt.Sprintf("Frame Generation: %d ", j.FrameGeneration)
	output += fmt.Sprintf("Rect: %v}", j.Rect)
	return output
}

// Run computes every pixel of the job's rectangle.
func (j *Job) Run() {
	j.Kernel.Fill(j.Pixels, j.Stride, j.Rect)
}

// Split divides bounds into the rectangles generation g produces. tileSize is only used by Tile.
func Split(bounds image.Rectangle, g Generation, tileSize int) []image.Rectangle {
	var rects []image.Rectangle
	switch g {
	case Column:
		for c := bounds.Min.X; c < bounds.Max.X; c++ {
			rects = append(rects, image.Rect(c, bounds.Min.Y, c+1, bounds.Max.Y))
		}
	case Tile:
		if tileSize <= 0 {
			tileSize = 64
		}
		for r := bounds.Min.Y; r < bounds.Max.Y; r += tileSize {
			for c := bounds.Min.X; c < bounds.Max.X; c += tileSize {
				rects = append(rects, image.Rect(c, r, c+tileSize, r+tileSize).Intersect(bounds))
			}
		}
	case Image:
		rects = append(rects, bounds)
	default:
		for r := bounds.Min.Y; r < bounds.Max.Y; r++ {
			rects = append(rects, image.Rect(bounds.Min.X, r, bounds.Max.X, r+1))
		}
	}
	return rects
}

// Count is the number of jobs Split would produce, without allocating them.
func Count(bounds image.Rectangle, g Generation, tileSize int) int {
	switch g {
	case Column:
		return bounds.Dx()
	case Tile:
		if tileSize <= 0 {
			tileSize = 64
		}
		return ((bounds.Dx() + tileSize - 1) / tileSize) * ((bounds.Dy() + tileSize - 1) / tileSize)
	case Image:
		return 1
	default:
		return bounds.Dy()
	}
}

// NewJobs builds the jobs for one frame.
func NewJobs(frameGeneration uint64, kernel mandelbrot.Kernel, pixels []uint32, stride int, rects []image.Rectangle) []Job {
	jobs := make([]Job, len(rects))
	for i, r := range rects {
		jobs[i] = Job{
			FrameGeneration: frameGeneration,
			ID:              uint(i),
			Kernel:          kernel,
			Pixels:          pixels,
			Rect:            r,
			Stride:          stride,
		}
	}
	return jobs
}
