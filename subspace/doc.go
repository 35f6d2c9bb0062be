// Package subspace learns a low-dimensional linear subspace from a gallery of
// flattened face images and maps vectors into and out of it.
//
// Training centers the data on its mean, takes the thin singular value
// decomposition of the centered matrix and keeps the leading right singular
// vectors as an orthonormal basis. The number of kept components is chosen
// from the cumulative explained-variance curve:
//
//	trainer, err := subspace.NewTrainer(subspace.DefaultConfig())
//	model, err := trainer.Train(gallery)      // gallery is N×D, N >= 2
//	coords, err := model.Project(gallery)     // N×K
//	approx, err := model.Reconstruct(coords)  // N×D
//
// A Model is immutable once Train returns it; retraining yields a new Model.
// Basis vectors are only defined up to sign, so two decompositions of the
// same data may disagree on the sign of individual rows.
package subspace
