package export

import (
	"fmt"
	"strings"

	"github.com/san-kum/gearset/internal/gearset"
	"github.com/san-kum/gearset/internal/geometry"
	"gonum.org/v1/gonum/spatial/r2"
)

// SVGOptions controls layout rendering.
type SVGOptions struct {
	Size        int  // output width and height in pixels
	PitchCircle bool // draw dashed pitch and base circles
	Hidden      bool // draw hidden planets faintly
	TopFace     bool // outline the twisted top face of helical gears
}

func DefaultSVGOptions() SVGOptions {
	return SVGOptions{Size: 600, PitchCircle: true, TopFace: true}
}

// LayoutToSVG renders the sun, ring and planets of a layout as tooth
// outlines seen along the train axis.
func LayoutToSVG(layout *gearset.Layout, opts SVGOptions) (string, error) {
	if layout == nil || layout.Train == nil {
		return "", fmt.Errorf("export: nil layout")
	}
	if opts.Size <= 0 {
		opts.Size = DefaultSVGOptions().Size
	}

	gears, err := geometry.ForLayout(layout)
	if err != nil {
		return "", err
	}
	sun, planet, ring := gears.Sun, gears.Planet, gears.Ring
	module := layout.Train.Module

	extent := ring.RootRadius + module*2

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="%.3f %.3f %.3f %.3f">
<rect x="%.3f" y="%.3f" width="100%%" height="100%%" fill="#0a0a0a"/>
<g transform="scale(1,-1)" stroke-width="%.3f">
`, opts.Size, opts.Size, -extent, -extent, 2*extent, 2*extent, -extent, -extent, module*0.1))

	// ring body: outer disc minus the tooth outline
	sb.WriteString(fmt.Sprintf(`<path fill="#334455" fill-rule="evenodd" stroke="#88aacc" d="%s %s"/>
`, circlePath(r2.Vec{}, ring.RootRadius+module), polygonPath(ring.Profile(layout.Ring.Rotation), r2.Vec{})))

	sb.WriteString(fmt.Sprintf(`<path fill="#aa7722" stroke="#ffcc66" d="%s"/>
`, polygonPath(sun.Profile(layout.Sun.Rotation), r2.Vec{})))

	for _, p := range layout.Planets {
		if !p.Visible && !opts.Hidden {
			continue
		}
		fill, opacity := "#2277aa", 1.0
		if !p.Visible {
			fill, opacity = "#444444", 0.3
		}
		sb.WriteString(fmt.Sprintf(`<path fill="%s" fill-opacity="%.2f" stroke="#66ccff" d="%s"/>
`, fill, opacity, polygonPath(planet.Profile(p.Rotation), p.Position)))
	}

	if opts.TopFace {
		var faces strings.Builder
		face := func(o *geometry.Outline, rotation float64, at r2.Vec) {
			if tw := o.Twist(); tw != 0 {
				faces.WriteString(fmt.Sprintf(`<path class="top-face" d="%s"/>`+"\n", polygonPath(o.Profile(rotation+tw), at)))
			}
		}
		face(ring, layout.Ring.Rotation, r2.Vec{})
		face(sun, layout.Sun.Rotation, r2.Vec{})
		for _, p := range layout.VisiblePlanets() {
			face(planet, p.Rotation, p.Position)
		}
		if faces.Len() > 0 {
			sb.WriteString(`<g fill="none" stroke="#ffffff" stroke-opacity="0.6">` + "\n")
			sb.WriteString(faces.String())
			sb.WriteString("</g>\n")
		}
	}

	if opts.PitchCircle {
		circle := func(class string, c r2.Vec, r float64) {
			sb.WriteString(fmt.Sprintf(`<path class="%s" d="%s"/>`+"\n", class, circlePath(c, r)))
		}
		sb.WriteString(`<g fill="none" stroke="#ffffff" stroke-opacity="0.4" stroke-dasharray="1,1">` + "\n")
		circle("pitch", r2.Vec{}, sun.PitchRadius)
		circle("pitch", r2.Vec{}, ring.PitchRadius)
		for _, p := range layout.VisiblePlanets() {
			circle("pitch", p.Position, planet.PitchRadius)
		}
		sb.WriteString("</g>\n")

		sb.WriteString(`<g fill="none" stroke="#88aacc" stroke-opacity="0.4" stroke-dasharray="0.3,0.6">` + "\n")
		circle("base", r2.Vec{}, sun.BaseRadius)
		circle("base", r2.Vec{}, ring.BaseRadius)
		for _, p := range layout.VisiblePlanets() {
			circle("base", p.Position, planet.BaseRadius)
		}
		sb.WriteString("</g>\n")
	}

	sb.WriteString("</g>\n</svg>")
	return sb.String(), nil
}

func polygonPath(points []r2.Vec, offset r2.Vec) string {
	if len(points) == 0 {
		return ""
	}
	var sb strings.Builder
	for i, p := range points {
		p = r2.Add(p, offset)
		if i == 0 {
			sb.WriteString(fmt.Sprintf("M%.3f,%.3f", p.X, p.Y))
		} else {
			sb.WriteString(fmt.Sprintf(" L%.3f,%.3f", p.X, p.Y))
		}
	}
	sb.WriteString(" Z")
	return sb.String()
}

func circlePath(c r2.Vec, r float64) string {
	return fmt.Sprintf("M%.3f,%.3f a%.3f,%.3f 0 1,0 %.3f,0 a%.3f,%.3f 0 1,0 %.3f,0 Z",
		c.X-r, c.Y, r, r, 2*r, r, r, -2*r)
}
