package main

import (
	"fmt"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/hupe1980/eigenverify"
	"github.com/hupe1980/eigenverify/loader"
	"github.com/hupe1980/eigenverify/prom"
	"github.com/hupe1980/eigenverify/verify"
)

type verifyFlags struct {
	model       string
	dumpDir     string
	jsonOut     bool
	metricsFile string
}

// verifyRow is one line of verify output.
type verifyRow struct {
	Probe        string  `json:"probe"`
	ClosestMatch string  `json:"closest_match,omitempty"`
	Distance     float64 `json:"distance"`
	Threshold    float64 `json:"threshold"`
	Verified     bool    `json:"verified"`
	Error        string  `json:"error,omitempty"`
}

func newVerifyCmd(a *app) *cobra.Command {
	f := &verifyFlags{}

	cmd := &cobra.Command{
		Use:   "verify PROBE...",
		Short: "Verify probe images against a trained model",
		Long: `Verify loads the model bundle and checks every probe image. A probe is
verified when its closest gallery image lies within the model threshold.
The command exits with an error when any probe could not be processed.

Example usage:
  eigenverify verify --model faces.evb probe.png
  eigenverify verify --json --dump-dir ./recon probes/*.png`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerify(cmd, a, f, args)
		},
	}

	cmd.Flags().StringVar(&f.model, "model", "model.evb", "Bundle name in the store")
	cmd.Flags().StringVar(&f.dumpDir, "dump-dir", "", "Write each probe's reconstruction as PNG to this directory")
	cmd.Flags().BoolVar(&f.jsonOut, "json", false, "Print results as JSON")
	cmd.Flags().StringVar(&f.metricsFile, "metrics-file", "", "Write Prometheus metrics in text format to this file")
	return cmd
}

func runVerify(cmd *cobra.Command, a *app, f *verifyFlags, probes []string) error {
	ctx := cmd.Context()

	logger, err := a.logger(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	store, err := a.store(cmd)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	collector, err := prom.NewCollector(reg)
	if err != nil {
		return err
	}

	optFns := []eigenverify.Option{
		eigenverify.WithLogger(logger),
		eigenverify.WithMetricsCollector(collector),
	}
	if cmd.Flags().Changed("workers") {
		optFns = append(optFns, eigenverify.WithWorkers(a.workers))
	}
	eng, err := eigenverify.Load(ctx, store, f.model, optFns...)
	if err != nil {
		return err
	}

	res := eng.VerifyFiles(ctx, probes)
	rows := make([]verifyRow, len(probes))
	for i, p := range probes {
		rows[i].Probe = p
	}
	for _, it := range res.Items {
		rows[it.Index] = verifyRow{
			Probe:        probes[it.Index],
			ClosestMatch: it.ClosestMatch,
			Distance:     it.Distance,
			Threshold:    it.Threshold,
			Verified:     it.Verified,
		}
	}
	for _, ie := range res.Errors {
		rows[ie.Index].Error = ie.Err.Error()
	}

	if f.dumpDir != "" {
		if err := dumpReconstructions(eng, f.dumpDir, probes, res.Items); err != nil {
			return err
		}
	}

	if f.metricsFile != "" {
		if err := prometheus.WriteToTextfile(f.metricsFile, reg); err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	if f.jsonOut {
		if err := writeJSON(out, rows); err != nil {
			return err
		}
	} else {
		tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "PROBE\tMATCH\tDISTANCE\tTHRESHOLD\tVERIFIED")
		for _, r := range rows {
			if r.Error != "" {
				fmt.Fprintf(tw, "%s\t-\t-\t-\terror: %s\n", r.Probe, r.Error)
				continue
			}
			fmt.Fprintf(tw, "%s\t%s\t%.6f\t%.6f\t%t\n", r.Probe, r.ClosestMatch, r.Distance, r.Threshold, r.Verified)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}

	if n := res.Failed(); n > 0 {
		return fmt.Errorf("%d of %d probes failed", n, res.Total())
	}
	return nil
}

func dumpReconstructions(eng *eigenverify.Engine, dir string, probes []string, items []verify.BatchItem) error {
	w, h := eng.Loader().Width(), eng.Loader().Height()
	for _, it := range items {
		base := strings.TrimSuffix(filepath.Base(probes[it.Index]), filepath.Ext(probes[it.Index]))
		path := filepath.Join(dir, "reconstructed_"+base+".png")
		if err := loader.SavePNG(path, it.Reconstruction, w, h); err != nil {
			return err
		}
	}
	return nil
}
