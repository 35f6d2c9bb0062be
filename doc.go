// Package eigenverify provides appearance-based face verification on top of
// a learned linear subspace.
//
// A gallery of enrolled face images is flattened into vectors, centred and
// decomposed with a thin SVD. The leading right singular vectors that explain
// a configured share of the variance form an orthonormal basis. Every gallery
// image is projected once; a probe is projected the same way and accepted
// when its nearest gallery projection lies closer than an adaptive threshold
// derived from the spread of the gallery itself.
//
// # Quick Start
//
//	ctx := context.Background()
//	eng, _ := eigenverify.New(eigenverify.DefaultConfig())
//	report, _ := eng.TrainFiles(ctx, "./faces", nil)
//	res, _ := eng.VerifyFile(ctx, "./probe.jpg")
//	fmt.Println(res.ClosestMatch, res.Distance, res.Verified)
//
// # Persistence
//
// A trained Engine is saved as a single checksummed bundle through any
// blobstore.Store (local disk, MinIO, S3):
//
//	_ = eng.Save(ctx, blobstore.NewLocalStore("./models"), "faces.evb")
//	eng, _ = eigenverify.Load(ctx, blobstore.NewLocalStore("./models"), "faces.evb")
//
// # Packages
//
//   - subspace: SVD training, rank selection, projection and reconstruction
//   - threshold: adaptive acceptance threshold
//   - verify: per-probe decisions and batch verification
//   - loader: image decoding, grayscale conversion and resizing
//   - persistence, codec, blobstore: bundle encoding and storage
//   - prom: Prometheus metrics
//
// # Concurrency
//
// An Engine is safe for concurrent use. Train builds a new model and swaps it
// in atomically; verifications in flight finish against the previous model.
package eigenverify
