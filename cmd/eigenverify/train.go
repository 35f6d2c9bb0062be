package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hupe1980/eigenverify"
	"github.com/hupe1980/eigenverify/codec"
	"github.com/hupe1980/eigenverify/persistence"
)

type trainFlags struct {
	images      string
	names       []string
	model       string
	codec       string
	compression string
	processed   string
	jsonOut     bool
}

func newTrainCmd(a *app) *cobra.Command {
	f := &trainFlags{}

	cmd := &cobra.Command{
		Use:   "train",
		Short: "Train a model from a directory of gallery images",
		Long: `Train loads every image in --images (or only --names), learns the subspace,
derives the acceptance threshold and saves the bundle to the store.

Example usage:
  eigenverify train --images ./gallery --model faces.evb
  eigenverify train --images ./gallery --names alice_1.png,bob_1.png
  eigenverify --store s3://models/faces train --images ./gallery`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTrain(cmd, a, f)
		},
	}

	cmd.Flags().StringVar(&f.images, "images", "", "Directory of gallery images")
	cmd.Flags().StringSliceVar(&f.names, "names", nil, "Image names inside --images (default: all)")
	cmd.Flags().StringVar(&f.model, "model", "model.evb", "Bundle name in the store")
	cmd.Flags().StringVar(&f.codec, "codec", codec.Default.Name(), "Bundle codec: go-json, json")
	cmd.Flags().StringVar(&f.compression, "compression", persistence.CompressionZSTD.String(), "Bundle compression: none, lz4, zstd")
	cmd.Flags().StringVar(&f.processed, "save-processed", "", "Write the normalised gallery images to this directory")
	cmd.Flags().BoolVar(&f.jsonOut, "json", false, "Print the training report as JSON")
	_ = cmd.MarkFlagRequired("images")
	return cmd
}

func runTrain(cmd *cobra.Command, a *app, f *trainFlags) error {
	ctx := cmd.Context()

	cfg, err := a.config(cmd)
	if err != nil {
		return err
	}
	logger, err := a.logger(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	c, err := codec.Parse(f.codec)
	if err != nil {
		return err
	}
	comp, err := persistence.ParseCompression(f.compression)
	if err != nil {
		return err
	}
	store, err := a.store(cmd)
	if err != nil {
		return err
	}

	eng, err := eigenverify.New(cfg, eigenverify.WithLogger(logger))
	if err != nil {
		return err
	}

	report, err := eng.TrainFiles(ctx, f.images, f.names)
	if err != nil {
		return err
	}

	if f.processed != "" {
		if err := os.MkdirAll(f.processed, 0o755); err != nil {
			return err
		}
		b, err := eng.Bundle()
		if err != nil {
			return err
		}
		if err := eng.Loader().SaveProcessed(f.processed, b.Gallery, b.Labels); err != nil {
			return err
		}
	}

	if err := eng.Save(ctx, store, f.model, persistence.WithCodec(c), persistence.WithCompression(comp)); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if f.jsonOut {
		return writeJSON(out, report)
	}
	fmt.Fprintf(out, "Trained %s on %d images (%d skipped)\n", f.model, report.Samples, len(report.Failures))
	fmt.Fprintf(out, "  components:         %d of %d dimensions\n", report.Components, report.Dimension)
	fmt.Fprintf(out, "  variance explained: %.4f\n", report.VarianceExplained)
	fmt.Fprintf(out, "  threshold:          %.6f (mean %.6f, std %.6f over %d distances)\n",
		report.Threshold.Threshold, report.Threshold.Mean, report.Threshold.StdDev, report.Threshold.Count)
	return nil
}
