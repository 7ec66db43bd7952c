// Package voronoi computes area-weighted power diagrams inside a border.
//
// The package has four layers:
//
//   - [PowerDiagram] clips the border into one cell per [Site], where a point
//     belongs to the site minimising |x - p|² - w (a Laguerre diagram).
//   - [FindCentroids] and [FitInside] place initial sites, optionally from a
//     previously solved [Reference] layout.
//   - [AdaptPositions], [AdaptWeights] and [Discrepancy] form one iteration of
//     the position/weight adaptation loop.
//   - [Solve] repeats that loop over several randomised attempts and keeps
//     the attempt with the smallest discrepancy.
//
// Each attempt yields a typed [Attempt]; a numerical failure only ends that
// attempt. If no attempt produces a finite discrepancy Solve returns
// [ErrUnsolved].
//
// All randomness comes from the *rand.Rand derived from [Options.Seed], so a
// solve is reproducible.
package voronoi
