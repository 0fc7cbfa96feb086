// Package exposure implements the chunked exposure store: a single-file
// binary container holding every detector of a VIS exposure with its science,
// noise, flag, weight, background, and segmentation planes.
//
// The format trades a little encoding work for cheap partial reads: planes
// are split into fixed row-band chunks that are encoded and compressed
// independently, so extracting a postage stamp decompresses only the bands
// the stamp touches instead of a 4096x4136 detector plane.
//
// # Writing
//
// The encoder has a strict lifecycle:
//
//	enc, _ := exposure.NewEncoder(exposure.WithChunkRows(256))
//	enc.StartDetector("1-1", exposure.WithDetectorHeader(hdr), exposure.WithDetectorWCS(w))
//	enc.AddLayer(format.LayerSci, sci)   // *pix.Plane[float32]
//	enc.AddLayer(format.LayerFlg, flg)   // *pix.Plane[int32]
//	enc.AddLayer(format.LayerSeg, seg)   // *pix.Plane[int64]
//	enc.EndDetector()
//	store, _ := enc.Finish()
//
// # Reading
//
// The decoder parses the header, metadata, and index eagerly and payloads
// lazily:
//
//	dec, _ := exposure.NewDecoder(store)
//	sci, _ := exposure.Layer[float32](dec, "1-1", format.LayerSci)
//	cut, _ := exposure.LayerRegion[float32](dec, "1-1", format.LayerSci, 2000, 1800, 400, 400)
//	img, _ := dec.Stamp("1-1", 2113.2, 1855.9, 384, 384)
//
// ConvertFITS builds a store directly from the mission's FITS products: the
// DET file with its sci/rms/flg triplets plus the background, weight, and
// segmentation files.
//
// Integer planes use delta+zigzag+varint encoding by default, which turns
// the long constant runs of flag and segmentation maps into zero runs for
// the compressor; float planes are stored raw and rely on the chunk codec.
package exposure
