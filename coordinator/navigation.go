package coordinator

import (
	"fmt"
	"math"
)

type navigationSettings struct {
	ClickZoom    float64
	RepeatFactor float64
	ZoomStep     float64
}

func (ns *navigationSettings) String() string {
	output := "\nNavigation settings\n"
	output += fmt.Sprintf("Zoom Step: %g\n", ns.ZoomStep)
	output += fmt.Sprintf("Repeat Factor: %g\n", ns.RepeatFactor)
	output += fmt.Sprintf("Click Zoom: %g\n", ns.ClickZoom)
	return output
}

func (ns *navigationSettings) Verify() error {
	if !(ns.ZoomStep > 0) || math.IsInf(ns.ZoomStep, 0) {
		ns.ZoomStep = 1
	}
	if !(ns.RepeatFactor > 1) || math.IsInf(ns.RepeatFactor, 0) {
		ns.RepeatFactor = 2
	}
	if !(ns.ClickZoom > 0) || math.IsInf(ns.ClickZoom, 0) {
		ns.ClickZoom = 1
	}
	return nil
}

// zoomFactor is the factor a zoom-in request multiplies zoom by. A request adds ZoomStep to the zoom, and a held
// request then multiplies the result by RepeatFactor.
func (ns *navigationSettings) zoomFactor(zoom float64, repeat bool) float64 {
	factor := (zoom + ns.ZoomStep) / zoom
	if repeat {
		factor *= ns.RepeatFactor
	}
	return factor
}
