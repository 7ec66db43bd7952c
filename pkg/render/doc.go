// Package render draws treemaps.
//
// [SVG] writes the cells as SVG paths, [PNG] rasterises them with
// gonum/plot. Both color cells by their top-level category using an HCL
// palette (see [Palette]): siblings share a hue family and deeper levels
// get lighter.
//
//	svg := render.SVG(m, render.WithLabels(0.005))
//	png, err := render.PNG(m, render.WithSize(1200))
package render
