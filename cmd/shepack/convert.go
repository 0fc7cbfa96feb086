package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/astrofold/shearkit/exposure"
	"github.com/astrofold/shearkit/format"
)

type convertCommand struct {
	detPath string
	bkgPath string
	wgtPath string
	segPath string
	outPath string

	codec     string
	chunkRows int
	bigEndian bool
}

func newConvertCommand() *cobra.Command {
	c := &convertCommand{}

	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Convert a VIS exposure FITS set into an exposure store",
		Long: `Convert reads the DET file (sci/rms/flg extension triplets) plus the
optional background, weight, and segmentation files and writes a single
chunked exposure store.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			return c.run()
		},
	}

	cmd.Flags().StringVar(&c.detPath, "det", "", "detector FITS file (sci/rms/flg triplets)")
	cmd.Flags().StringVar(&c.bkgPath, "bkg", "", "background FITS file")
	cmd.Flags().StringVar(&c.wgtPath, "wgt", "", "weight FITS file")
	cmd.Flags().StringVar(&c.segPath, "seg", "", "segmentation FITS file")
	cmd.Flags().StringVarP(&c.outPath, "output", "o", "", "output store file")
	cmd.Flags().StringVar(&c.codec, "codec", "zstd", "chunk compression: none, zstd, s2, lz4")
	cmd.Flags().IntVar(&c.chunkRows, "chunk-rows", 0, "rows per chunk (0 = default)")
	cmd.Flags().BoolVar(&c.bigEndian, "big-endian", false, "write a big-endian store")

	_ = cmd.MarkFlagRequired("det")
	_ = cmd.MarkFlagRequired("output")

	return cmd
}

func (c *convertCommand) run() error {
	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	codec, err := parseCompression(c.codec)
	if err != nil {
		return err
	}

	opts := []exposure.EncoderOption{exposure.WithCompression(codec)}
	if c.chunkRows > 0 {
		opts = append(opts, exposure.WithChunkRows(c.chunkRows))
	}
	if c.bigEndian {
		opts = append(opts, exposure.WithBigEndian())
	}

	det, err := os.ReadFile(c.detPath)
	if err != nil {
		return err
	}

	bkg, err := readOptional(c.bkgPath)
	if err != nil {
		return err
	}
	wgt, err := readOptional(c.wgtPath)
	if err != nil {
		return err
	}
	seg, err := readOptional(c.segPath)
	if err != nil {
		return err
	}

	logger.Info("converting exposure",
		zap.String("det", c.detPath),
		zap.String("codec", codec.String()),
	)

	store, err := exposure.ConvertFITS(det, bkg, wgt, seg, opts...)
	if err != nil {
		return err
	}

	if err := os.WriteFile(c.outPath, store, 0o644); err != nil {
		return err
	}

	logger.Info("wrote exposure store",
		zap.String("path", c.outPath),
		zap.Int("bytes", len(store)),
	)

	return nil
}

func readOptional(path string) ([]byte, error) {
	if path == "" {
		return nil, nil
	}

	return os.ReadFile(path)
}

func parseCompression(name string) (format.CompressionType, error) {
	switch strings.ToLower(name) {
	case "none":
		return format.CompressionNone, nil
	case "zstd":
		return format.CompressionZstd, nil
	case "s2":
		return format.CompressionS2, nil
	case "lz4":
		return format.CompressionLZ4, nil
	default:
		return 0, fmt.Errorf("unknown codec %q (want none, zstd, s2, or lz4)", name)
	}
}
