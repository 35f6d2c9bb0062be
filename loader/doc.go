// Package loader turns image files into the fixed-length vectors the
// subspace model is trained on.
//
// Every image is decoded (JPEG or PNG), converted to 8-bit luminance using
// the ITU-R 601 weights, resized to the configured grid with a Catmull-Rom
// kernel, scaled to [0, 1] and flattened row-major. Width×Height is the
// vector length D.
package loader
