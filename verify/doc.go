// Package verify decides whether a probe face belongs to an enrolled gallery.
//
// A Verifier caches the subspace coordinates of every gallery image once at
// construction. Each probe is projected, compared against the cached gallery
// by Euclidean distance (optionally after per-component variance scaling) and
// accepted when its nearest distance falls below the adaptive threshold:
//
//	v, err := verify.New(model, gallery, labels)
//	_, err = v.ComputeThreshold()
//	res, err := v.Verify(probe)
//	batch := v.VerifyBatch(ctx, probes)
//
// Verify fails with ErrThresholdNotComputed until ComputeThreshold succeeds.
// VerifyBatch never aborts: failures are reported per probe.
package verify
