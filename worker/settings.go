package worker

import (
	"fmt"
	"runtime"
	"time"

	"MandelbrotExplorer/task"
)

type Settings struct {
	HeartBeat     time.Duration
	QueueCapacity int
	Generation    task.Generation
	TileSize      int
	Workers       int
}

func (s *Settings) String() string {
	output := "\nPool settings\n"
	output += fmt.Sprintf("Workers: %d\n", s.Workers)
	output += fmt.Sprintf("Queue Capacity: %d\n", s.QueueCapacity)
	output += fmt.Sprintf("Generation: %s\n", s.Generation)
	output += fmt.Sprintf("Tile Size: %d\n", s.TileSize)
	output += fmt.Sprintf("Heart Beat: %s\n", s.HeartBeat)
	return output
}

func (s *Settings) Verify() error {
	if s.Workers <= 0 {
		s.Workers = 8
	}
	if s.Workers > 16*runtime.NumCPU() {
		s.Workers = 16 * runtime.NumCPU()
	}
	if s.Generation < task.Row || s.Generation > task.Image {
		s.Generation = task.Row
	}
	if s.TileSize <= 0 {
		s.TileSize = 64
	}
	if s.QueueCapacity <= 0 {
		s.QueueCapacity = 4096
	}
	if s.HeartBeat <= 0 {
		s.HeartBeat = 30 * time.Second
	}
	return nil
}
