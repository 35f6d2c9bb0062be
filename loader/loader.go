package loader

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg" // register JPEG decoding
	"image/png"
	"io"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"golang.org/x/image/draw"
	"golang.org/x/sync/errgroup"
)

// ErrLoadFailed wraps every error caused by a missing or undecodable image.
var ErrLoadFailed = errors.New("image load failed")

// Extensions lists the file suffixes LoadAll picks up from a directory.
var Extensions = []string{".jpg", ".jpeg", ".png"}

// Loader converts images to vectors of a fixed size.
type Loader struct {
	width   int
	height  int
	workers int
	kernel  draw.Interpolator
}

// Option configures a Loader.
type Option func(*Loader)

// WithWorkers bounds how many files LoadAll decodes concurrently.
// Values <= 0 select runtime.GOMAXPROCS(0).
func WithWorkers(n int) Option {
	return func(l *Loader) { l.workers = n }
}

// WithInterpolator replaces the Catmull-Rom resampling kernel.
func WithInterpolator(k draw.Interpolator) Option {
	return func(l *Loader) {
		if k != nil {
			l.kernel = k
		}
	}
}

// New returns a Loader producing width×height vectors.
func New(width, height int, optFns ...Option) (*Loader, error) {
	if width < 1 || height < 1 {
		return nil, fmt.Errorf("loader: image size must be positive, got %dx%d", width, height)
	}
	l := &Loader{
		width:  width,
		height: height,
		kernel: draw.CatmullRom,
	}
	for _, fn := range optFns {
		fn(l)
	}
	if l.workers <= 0 {
		l.workers = runtime.GOMAXPROCS(0)
	}
	return l, nil
}

// Width returns the target image width.
func (l *Loader) Width() int { return l.width }

// Height returns the target image height.
func (l *Loader) Height() int { return l.height }

// Dimension returns the vector length Width×Height.
func (l *Loader) Dimension() int { return l.width * l.height }

// Load reads and converts a single image file.
func (l *Loader) Load(path string) ([]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadFailed, err)
	}
	defer func() { _ = f.Close() }()

	v, err := l.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return v, nil
}

// Decode reads an encoded image from r and converts it.
func (l *Loader) Decode(r io.Reader) ([]float64, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadFailed, err)
	}
	return l.Vector(img), nil
}

// Vector converts an in-memory image.
func (l *Loader) Vector(img image.Image) []float64 {
	gray := image.NewGray(img.Bounds())
	draw.Draw(gray, gray.Bounds(), img, img.Bounds().Min, draw.Src)

	dst := gray
	if gray.Bounds().Dx() != l.width || gray.Bounds().Dy() != l.height {
		dst = image.NewGray(image.Rect(0, 0, l.width, l.height))
		l.kernel.Scale(dst, dst.Bounds(), gray, gray.Bounds(), draw.Src, nil)
	}

	out := make([]float64, 0, l.width*l.height)
	for y := 0; y < l.height; y++ {
		row := dst.Pix[y*dst.Stride : y*dst.Stride+l.width]
		for _, p := range row {
			out = append(out, float64(p)/255)
		}
	}
	return out
}

// Failure records a file LoadAll skipped.
type Failure struct {
	Path string
	Err  error
}

func (f Failure) Error() string { return f.Err.Error() }

func (f Failure) Unwrap() error { return f.Err }

// Result is the outcome of LoadAll. Vectors[i] was loaded from Labels[i].
type Result struct {
	Vectors  [][]float64
	Labels   []string
	Failures []Failure
}

// Err joins all failures, or returns nil when every file loaded.
func (r Result) Err() error {
	if len(r.Failures) == 0 {
		return nil
	}
	errs := make([]error, len(r.Failures))
	for i, f := range r.Failures {
		errs[i] = f
	}
	return errors.Join(errs...)
}

// LoadAll loads names from dir, or every image in dir when names is empty.
// Files that fail to load are reported in Result.Failures and skipped; the
// remaining vectors keep the order of names. Labels are the names as given.
// The returned error is reserved for an unreadable directory or a cancelled
// context.
func (l *Loader) LoadAll(ctx context.Context, dir string, names []string) (Result, error) {
	if len(names) == 0 {
		var err error
		if names, err = List(dir); err != nil {
			return Result{}, err
		}
	}

	vectors := make([][]float64, len(names))
	errs := make([]error, len(names))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.workers)
	for i, name := range names {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			vectors[i], errs[i] = l.Load(filepath.Join(dir, name))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	var res Result
	for i, name := range names {
		if errs[i] != nil {
			res.Failures = append(res.Failures, Failure{Path: filepath.Join(dir, name), Err: errs[i]})
			continue
		}
		res.Vectors = append(res.Vectors, vectors[i])
		res.Labels = append(res.Labels, name)
	}
	return res, nil
}

// List returns the sorted names of all image files directly inside dir.
func List(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		for _, want := range Extensions {
			if ext == want {
				names = append(names, e.Name())
				break
			}
		}
	}
	sort.Strings(names)
	return names, nil
}

// Image converts a vector back into a width×height grayscale image. Values
// are clamped to [0, 1].
func Image(v []float64, width, height int) (*image.Gray, error) {
	if width < 1 || height < 1 || len(v) != width*height {
		return nil, fmt.Errorf("loader: vector of length %d does not fit %dx%d", len(v), width, height)
	}
	img := image.NewGray(image.Rect(0, 0, width, height))
	for i, x := range v {
		if math.IsNaN(x) {
			x = 0
		}
		x = math.Max(0, math.Min(1, x))
		img.Pix[i] = uint8(math.Round(x * 255))
	}
	return img, nil
}

// SavePNG writes v as a grayscale PNG.
func SavePNG(path string, v []float64, width, height int) error {
	img, err := Image(v, width, height)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// SaveProcessed writes every vector to dir as "processed_<label>.png", which
// shows exactly what the model was trained on.
func (l *Loader) SaveProcessed(dir string, vectors [][]float64, labels []string) error {
	if len(vectors) != len(labels) {
		return fmt.Errorf("loader: %d vectors for %d labels", len(vectors), len(labels))
	}
	for i, v := range vectors {
		base := strings.TrimSuffix(filepath.Base(labels[i]), filepath.Ext(labels[i]))
		if err := SavePNG(filepath.Join(dir, "processed_"+base+".png"), v, l.width, l.height); err != nil {
			return err
		}
	}
	return nil
}
