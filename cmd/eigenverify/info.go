package main

import (
	"fmt"
	"io"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/hupe1980/eigenverify"
)

func newInfoCmd(a *app) *cobra.Command {
	var (
		model   string
		jsonOut bool
	)

	cmd := &cobra.Command{
		Use:   "info",
		Short: "Describe a stored model",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger, err := a.logger(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			store, err := a.store(cmd)
			if err != nil {
				return err
			}
			eng, err := eigenverify.Load(cmd.Context(), store, model, eigenverify.WithLogger(logger))
			if err != nil {
				return err
			}

			info := eng.Info()
			out := cmd.OutOrStdout()
			if jsonOut {
				return writeJSON(out, info)
			}
			printInfo(out, model, info)
			return nil
		},
	}

	cmd.Flags().StringVar(&model, "model", "model.evb", "Bundle name in the store")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print as JSON")
	return cmd
}

func printInfo(w io.Writer, name string, info eigenverify.Info) {
	fmt.Fprintf(w, "Model %s\n", name)
	fmt.Fprintf(w, "  created:            %s\n", info.CreatedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(w, "  image size:         %dx%d\n", info.Image.Width, info.Image.Height)
	fmt.Fprintf(w, "  gallery:            %d images\n", info.GallerySize)
	fmt.Fprintf(w, "  components:         %d of %d dimensions\n", info.Model.Components, info.Model.Dimension)
	fmt.Fprintf(w, "  variance explained: %.4f\n", info.Model.VarianceExplained)
	fmt.Fprintf(w, "  metric:             %s\n", info.Metric)
	if info.ThresholdComputed {
		fmt.Fprintf(w, "  threshold:          %.6f\n", info.Threshold)
	} else {
		fmt.Fprintf(w, "  threshold:          not computed\n")
	}
}

func newConfigCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := a.config(cmd)
			if err != nil {
				return err
			}
			data, err := cfg.Marshal()
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}

func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}
