// Package pix implements the in-memory image container used throughout the
// shear pipeline: a science pixel plane bundled with co-registered mask,
// noise, segmentation, background and weight planes, metadata, a pixel
// offset into the parent frame, and an optional WCS.
//
// All planes share one fixed 2D shape for the lifetime of an Image; the
// shape is set at construction and setters reject differently-shaped
// planes. Pixels are addressed as [x, y] with x the FITS NAXIS1 axis, and
// plane storage is x-fastest, matching the on-disk FITS order so the codec
// never transposes.
//
// The main operations are object masking (GetObjectMask), postage stamp
// extraction with out-of-bounds fill handling (ExtractStamp), FITS
// round-trips (WriteFITS/ReadFITS), and offset-corrected WCS delegation
// (Pix2World and friends).
package pix
