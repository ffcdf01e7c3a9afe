package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"MandelbrotExplorer/coordinator"
	"MandelbrotExplorer/mandelbrot"
)

var errCommand = errors.New("unknown navigation command")

// command is one scripted key press of an interactive session.
type command struct {
	name string
	x    int
	y    int
}

// parseScript splits a comma separated command list. A count prefix repeats a command, e.g. 3*in.
func parseScript(script string) ([]command, error) {
	var commands []command
	for _, field := range strings.Split(script, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}

		repeat := 1
		if count, name, found := strings.Cut(field, "*"); found {
			n, err := strconv.Atoi(count)
			if err != nil || n < 1 {
				return nil, fmt.Errorf("%w: %q", errCommand, field)
			}
			repeat, field = n, name
		}

		cmd := command{name: strings.ToLower(field)}
		if rest, found := strings.CutPrefix(cmd.name, "at:"); found {
			xs, ys, ok := strings.Cut(rest, ":")
			x, errX := strconv.Atoi(xs)
			y, errY := strconv.Atoi(ys)
			if !ok || errX != nil || errY != nil {
				return nil, fmt.Errorf("%w: %q", errCommand, field)
			}
			cmd = command{name: "at", x: x, y: y}
		}
		switch cmd.name {
		case "in", "repeat", "at", "out", "more", "fewer", "sharper", "softer", "palette", "save":
		default:
			return nil, fmt.Errorf("%w: %q", errCommand, field)
		}
		for i := 0; i < repeat; i++ {
			commands = append(commands, cmd)
		}
	}
	return commands, nil
}

func (cmd command) apply(ctx context.Context, c *coordinator.Coordinator, mode mandelbrot.Mode, dir string) error {
	var err error
	switch cmd.name {
	case "in":
		_, err = c.ZoomIn(false)
	case "repeat":
		_, err = c.ZoomIn(true)
	case "at":
		_, err = c.ZoomAt(cmd.x, cmd.y)
	case "out":
		c.ZoomOut()
	case "more":
		c.MoreIterations()
	case "fewer":
		c.FewerIterations()
	case "sharper":
		c.SharperGradient()
	case "softer":
		c.SofterGradient()
	case "palette":
		c.NextPalette()
	case "save":
		err = save(ctx, c, mode, dir)
	default:
		err = fmt.Errorf("%w: %q", errCommand, cmd.name)
	}
	return err
}
