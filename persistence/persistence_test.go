package persistence

import (
	"context"
	"encoding/binary"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/eigenverify/blobstore"
	"github.com/hupe1980/eigenverify/codec"
	"github.com/hupe1980/eigenverify/distance"
	"github.com/hupe1980/eigenverify/internal/fault"
	"github.com/hupe1980/eigenverify/subspace"
	"github.com/hupe1980/eigenverify/testutil"
	"github.com/hupe1980/eigenverify/threshold"
)

func testBundle(t *testing.T) *Bundle {
	t.Helper()
	gallery, labels := testutil.NewRNG(99).Gallery(3, 4, 16, 0.05)
	trainer, err := subspace.NewTrainer(subspace.DefaultConfig())
	require.NoError(t, err)
	model, err := trainer.Train(gallery)
	require.NoError(t, err)

	return &Bundle{
		Model:    model.State(),
		Subspace: trainer.Config(),
		Threshold: ThresholdState{
			Value:      0.4375,
			Computed:   true,
			Multiplier: threshold.DefaultMultiplier,
			Strategy:   threshold.Centroid,
		},
		Metric:    distance.MetricMahalanobis,
		Image:     ImageSize{Width: 4, Height: 4},
		Gallery:   gallery,
		Labels:    labels,
		CreatedAt: time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC),
	}
}

func TestEncodeDecode_AllCodecsAndCompressions(t *testing.T) {
	in := testBundle(t)

	for _, name := range codec.Names() {
		for _, comp := range []Compression{CompressionNone, CompressionLZ4, CompressionZSTD} {
			t.Run(name+"/"+comp.String(), func(t *testing.T) {
				c, _ := codec.ByName(name)
				data, err := Encode(in, WithCodec(c), WithCompression(comp))
				require.NoError(t, err)

				out, h, err := Decode(data)
				require.NoError(t, err)
				assert.Equal(t, name, h.Codec)
				assert.Equal(t, comp, h.Compression)
				assert.Equal(t, uint32(MagicNumber), h.Magic)
				assert.Equal(t, in, out)

				// The restored state rebuilds an equivalent model.
				m, err := subspace.FromState(out.Model)
				require.NoError(t, err)
				assert.Equal(t, len(in.Model.Basis), m.Components())
			})
		}
	}
}

func TestEncode_Defaults(t *testing.T) {
	data, err := Encode(testBundle(t))
	require.NoError(t, err)

	h, err := ReadHeader(data)
	require.NoError(t, err)
	assert.Equal(t, codec.Default.Name(), h.Codec)
	assert.Equal(t, CompressionZSTD, h.Compression)
	assert.Equal(t, uint64(len(data)-h.Size()), h.PayloadLen)
	assert.Equal(t, []byte("EVB1"), []byte{data[3], data[2], data[1], data[0]})
}

func TestEncode_InvalidBundle(t *testing.T) {
	b := testBundle(t)
	b.Labels = b.Labels[:1]
	_, err := Encode(b)
	assert.ErrorIs(t, err, fault.ErrInvalidInput)

	b = testBundle(t)
	b.Gallery[0] = b.Gallery[0][:3]
	_, err = Encode(b)
	assert.ErrorIs(t, err, fault.ErrInvalidInput)

	_, err = Encode(nil)
	assert.ErrorIs(t, err, fault.ErrInvalidInput)
}

func TestDecode_Corruption(t *testing.T) {
	data, err := Encode(testBundle(t), WithCompression(CompressionLZ4))
	require.NoError(t, err)
	h, err := ReadHeader(data)
	require.NoError(t, err)

	corrupt := func(mut func(b []byte) []byte) error {
		b := append([]byte(nil), data...)
		_, _, err := Decode(mut(b))
		return err
	}

	t.Run("Magic", func(t *testing.T) {
		err := corrupt(func(b []byte) []byte { b[0] ^= 0xff; return b })
		assert.ErrorIs(t, err, ErrInvalidMagic)
	})

	t.Run("Version", func(t *testing.T) {
		err := corrupt(func(b []byte) []byte {
			binary.LittleEndian.PutUint32(b[4:], Version+1)
			return b
		})
		assert.ErrorIs(t, err, ErrInvalidVersion)
	})

	t.Run("Compression", func(t *testing.T) {
		err := corrupt(func(b []byte) []byte { b[8] = 9; return b })
		assert.ErrorIs(t, err, ErrUnknownCompression)
	})

	t.Run("Codec", func(t *testing.T) {
		err := corrupt(func(b []byte) []byte { b[fixedHeaderSize] = 'X'; return b })
		assert.ErrorIs(t, err, ErrUnknownCodec)
	})

	t.Run("Payload", func(t *testing.T) {
		err := corrupt(func(b []byte) []byte { b[h.Size()+len(b[h.Size():])/2] ^= 0x01; return b })
		assert.ErrorIs(t, err, ErrChecksumMismatch)
	})

	t.Run("Truncated", func(t *testing.T) {
		err := corrupt(func(b []byte) []byte { return b[:len(b)-1] })
		assert.ErrorIs(t, err, ErrTruncated)

		err = corrupt(func(b []byte) []byte { return b[:5] })
		assert.ErrorIs(t, err, ErrTruncated)

		err = corrupt(func(b []byte) []byte { return b[:fixedHeaderSize+2] })
		assert.ErrorIs(t, err, ErrTruncated)
	})
}

func TestCompression_RoundTrip(t *testing.T) {
	inputs := map[string][]byte{
		"empty":        {},
		"repetitive":   []byte("aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"),
		"incompressed": {0x9c, 0x13, 0x4f, 0xe2, 0x01},
	}

	for _, comp := range []Compression{CompressionNone, CompressionLZ4, CompressionZSTD} {
		for name, in := range inputs {
			t.Run(comp.String()+"/"+name, func(t *testing.T) {
				enc, err := compress(in, comp)
				require.NoError(t, err)
				out, err := decompress(enc, comp)
				require.NoError(t, err)
				assert.Equal(t, len(in), len(out))
				if len(in) > 0 {
					assert.Equal(t, in, out)
				}
			})
		}
	}

	_, err := compress([]byte("x"), Compression(7))
	assert.ErrorIs(t, err, ErrUnknownCompression)
}

func TestParseCompression(t *testing.T) {
	for _, c := range []Compression{CompressionNone, CompressionLZ4, CompressionZSTD} {
		got, err := ParseCompression(c.String())
		require.NoError(t, err)
		assert.Equal(t, c, got)
	}

	got, err := ParseCompression("")
	require.NoError(t, err)
	assert.Equal(t, CompressionNone, got)

	_, err = ParseCompression("brotli")
	assert.ErrorIs(t, err, ErrUnknownCompression)
}

func TestSaveLoad(t *testing.T) {
	ctx := context.Background()
	in := testBundle(t)

	stores := map[string]blobstore.Store{
		"memory": blobstore.NewMemoryStore(),
		"local":  blobstore.NewLocalStore(t.TempDir()),
	}

	for name, store := range stores {
		t.Run(name, func(t *testing.T) {
			h, err := Save(ctx, store, "faces.evb", in, WithCompression(CompressionLZ4))
			require.NoError(t, err)
			assert.Equal(t, CompressionLZ4, h.Compression)

			out, lh, err := Load(ctx, store, "faces.evb")
			require.NoError(t, err)
			assert.Equal(t, h, lh)
			assert.Equal(t, in, out)

			_, _, err = Load(ctx, store, "missing.evb")
			assert.ErrorIs(t, err, blobstore.ErrNotFound)
		})
	}
}

func TestLoad_CorruptBlob(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()
	require.NoError(t, store.Put(ctx, "junk.evb", []byte("definitely not a bundle")))

	_, _, err := Load(ctx, store, "junk.evb")
	assert.ErrorIs(t, err, ErrInvalidMagic)
}
