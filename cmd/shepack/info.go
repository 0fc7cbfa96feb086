package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/astrofold/shearkit/exposure"
)

func newInfoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "info FILE",
		Short: "Summarize the detectors and layers of an exposure store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInfo(cmd, args[0])
		},
	}
}

func runInfo(cmd *cobra.Command, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	dec, err := exposure.NewDecoder(data)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	names := dec.Detectors()

	fmt.Fprintf(out, "%s: %d detectors, %s compression, %d rows per chunk\n\n",
		path, len(names), dec.Compression(), dec.ChunkRows())

	w := tabwriter.NewWriter(out, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "DETECTOR\tLAYER\tPIXEL\tSIZE\tCHUNKS\tSTORED\tRAW")

	var stored, raw int64

	for _, det := range names {
		layers, err := dec.Layers(det)
		if err != nil {
			return err
		}

		for _, layer := range layers {
			info, err := dec.LayerInfo(det, layer)
			if err != nil {
				return err
			}

			stored += info.CompressedSize
			raw += info.RawSize

			fmt.Fprintf(w, "%s\t%s\t%s\t%dx%d\t%d\t%d\t%d\n",
				det, info.Layer, info.Pixel, info.Width, info.Height,
				info.ChunkCount, info.CompressedSize, info.RawSize)
		}
	}

	if err := w.Flush(); err != nil {
		return err
	}

	if raw > 0 {
		fmt.Fprintf(out, "\ntotal: %d / %d bytes (%.1f%%)\n", stored, raw, 100*float64(stored)/float64(raw))
	}

	return nil
}
