// Package treemap lays out a weighted hierarchy as nested power-diagram
// cells.
//
// [BuildTree] groups leaf items by the columns of a [Hierarchy] into a
// [Tree] of mass fractions. [Build] walks that tree top down: the root's
// children are solved inside the global border, then every resolved cell
// becomes the border of its own children's sub-layout. A branch whose cell
// could not be resolved contributes nothing below it and is recorded in
// [Map.Skipped]; its siblings are unaffected.
//
// Labels equal to [Rules.Unassigned] take their children from
// [Rules.SkipLevels] levels deeper, so unannotated proteins go straight to
// gene level.
package treemap
