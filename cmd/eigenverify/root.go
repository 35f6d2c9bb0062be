package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hupe1980/eigenverify"
	"github.com/hupe1980/eigenverify/blobstore"
)

// app holds the persistent flags shared by every subcommand.
type app struct {
	configPath string
	logLevel   string
	logFormat  string
	storeURL   string
	cacheDir   string
	cacheSize  int64
	ioLimit    int
	insecure   bool
	workers    int
}

func newRootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:   "eigenverify",
		Short: "Eigenface verification",
		Long: `eigenverify learns a principal-component subspace from a gallery of face
images and decides whether a probe image belongs to an enrolled identity.

Models are stored as single bundles in a local directory, S3 or MinIO:
  file:///var/lib/eigenverify        (default: file://.)
  s3://bucket/prefix
  minio://host:9000/bucket/prefix    (MINIO_ACCESS_KEY, MINIO_SECRET_KEY)`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	f := cmd.PersistentFlags()
	f.StringVar(&a.configPath, "config", "", "YAML configuration file")
	f.StringVar(&a.logLevel, "log-level", "info", "Log level: debug, info, warn, error")
	f.StringVar(&a.logFormat, "log-format", "text", "Log format: text, json")
	f.StringVar(&a.storeURL, "store", "file://.", "Model store URL")
	f.StringVar(&a.cacheDir, "cache-dir", "", "Local read-through cache for remote stores")
	f.Int64Var(&a.cacheSize, "cache-size", 0, "In-memory cache size in bytes for remote stores (ignored with --cache-dir)")
	f.IntVar(&a.ioLimit, "io-limit", 0, "Remote store throughput limit in bytes per second, 0 for unlimited")
	f.BoolVar(&a.insecure, "insecure", false, "Use plain HTTP for minio:// stores")
	f.IntVar(&a.workers, "workers", 0, "Parallel workers, 0 for GOMAXPROCS")

	cmd.AddCommand(
		newTrainCmd(a),
		newVerifyCmd(a),
		newInfoCmd(a),
		newConfigCmd(a),
	)
	return cmd
}

// config loads --config on top of the defaults and applies --workers.
func (a *app) config(cmd *cobra.Command) (eigenverify.Config, error) {
	cfg := eigenverify.DefaultConfig()
	if a.configPath != "" {
		var err error
		if cfg, err = eigenverify.LoadConfig(a.configPath); err != nil {
			return eigenverify.Config{}, err
		}
	}
	if cmd.Flags().Changed("workers") {
		cfg.Workers = a.workers
	}
	return cfg, cfg.Validate()
}

func (a *app) logger(w io.Writer) (*eigenverify.Logger, error) {
	level, err := parseLevel(a.logLevel)
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}
	switch strings.ToLower(a.logFormat) {
	case "text":
		return eigenverify.NewLogger(slog.NewTextHandler(w, opts)), nil
	case "json":
		return eigenverify.NewLogger(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("unknown log format %q", a.logFormat)
	}
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("unknown log level %q", s)
	}
	return level, nil
}

func (a *app) store(cmd *cobra.Command) (blobstore.Store, error) {
	return openStore(cmd.Context(), storeOptions{
		URL:       a.storeURL,
		CacheDir:  a.cacheDir,
		CacheSize: a.cacheSize,
		IOLimit:   a.ioLimit,
		Insecure:  a.insecure,
	})
}
