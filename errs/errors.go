// Package errs defines the sentinel errors shared across shearkit packages.
//
// Callers are expected to match these with errors.Is; most call sites wrap them
// with fmt.Errorf("%w: ...") to attach the offending values.
package errs

import "errors"

// Shape and plane validation errors.
var (
	// ErrInvalidShape indicates a plane is nil, empty, or not a 2D array.
	ErrInvalidShape = errors.New("invalid plane shape")

	// ErrShapeMismatch indicates a plane does not match the image's fixed shape.
	// Image shapes are immutable once construction succeeds.
	ErrShapeMismatch = errors.New("plane shape mismatch")

	// ErrLossyCast indicates an on-disk integer plane holds values that do not
	// fit the in-memory plane type.
	ErrLossyCast = errors.New("lossy integer cast")
)

// Stamp extraction errors.
var (
	// ErrInvalidStampSize indicates a requested stamp width or height < 1.
	ErrInvalidStampSize = errors.New("invalid stamp size")

	// ErrInvalidIndexConv indicates an unknown pixel index convention.
	ErrInvalidIndexConv = errors.New("invalid index convention")
)

// Coordinate transform errors.
var (
	// ErrNoWCS indicates a coordinate transform was requested on an image
	// without an attached WCS.
	ErrNoWCS = errors.New("no WCS attached")

	// ErrNearPole indicates a spatial RA/Dec linearization too close to a
	// celestial pole, where the local transform is degenerate.
	ErrNearPole = errors.New("too close to celestial pole")

	// ErrSingularTransform indicates a transformation matrix with zero
	// determinant that cannot be normalized or inverted.
	ErrSingularTransform = errors.New("singular transformation matrix")

	// ErrMissingWCSKeyword indicates a header lacks a keyword required to
	// reconstruct a WCS.
	ErrMissingWCSKeyword = errors.New("missing WCS keyword")

	// ErrInvalidStep indicates a zero finite-difference step for a local
	// transform.
	ErrInvalidStep = errors.New("invalid finite-difference step")
)

// Statistics errors.
var (
	// ErrLengthMismatch indicates sample slices of differing lengths.
	ErrLengthMismatch = errors.New("sample length mismatch")

	// ErrInvalidSampleCount indicates a bootstrap sample count < 2.
	ErrInvalidSampleCount = errors.New("invalid bootstrap sample count")

	// ErrSingularMatrix indicates a normal-equation matrix that cannot be solved.
	ErrSingularMatrix = errors.New("singular matrix")

	// ErrNoStatistics indicates an empty or all-nil statistics list.
	ErrNoStatistics = errors.New("no statistics provided")

	// ErrInvalidComponent indicates a shear component other than 1 or 2.
	ErrInvalidComponent = errors.New("invalid shear component")
)

// FITS codec errors.
var (
	// ErrInvalidCard indicates an unparseable 80-byte header card.
	ErrInvalidCard = errors.New("invalid header card")

	// ErrInvalidBlockSize indicates FITS data whose length is not a multiple
	// of the 2880-byte block size.
	ErrInvalidBlockSize = errors.New("invalid FITS block size")

	// ErrUnterminatedHeader indicates a header without an END card.
	ErrUnterminatedHeader = errors.New("unterminated FITS header")

	// ErrKeywordNotFound indicates a typed header lookup for an absent keyword.
	ErrKeywordNotFound = errors.New("header keyword not found")

	// ErrWrongValueType indicates a typed header lookup against a card holding
	// a different value type.
	ErrWrongValueType = errors.New("wrong header value type")

	// ErrInvalidPixelType indicates an unsupported BITPIX value.
	ErrInvalidPixelType = errors.New("invalid pixel type")

	// ErrHDUNotFound indicates a lookup for a missing extension name or index.
	ErrHDUNotFound = errors.New("HDU not found")

	// ErrWrongHDUType indicates an image operation on a table HDU or vice versa.
	ErrWrongHDUType = errors.New("wrong HDU type")

	// ErrInvalidColumnForm indicates an unsupported binary-table TFORM code.
	ErrInvalidColumnForm = errors.New("invalid column form")

	// ErrTruncatedData indicates a payload shorter than its header declares.
	ErrTruncatedData = errors.New("truncated data")

	// ErrFileExists indicates a write target that exists without the
	// overwrite option.
	ErrFileExists = errors.New("file exists")
)

// Table errors.
var (
	// ErrUnknownColumn indicates access to a column absent from the schema.
	ErrUnknownColumn = errors.New("unknown table column")

	// ErrInvalidMethod indicates an unrecognized shear estimation method name.
	ErrInvalidMethod = errors.New("invalid shear estimation method")

	// ErrSchemaMismatch indicates a table whose columns or format metadata do
	// not match the expected schema.
	ErrSchemaMismatch = errors.New("table schema mismatch")
)

// Exposure store errors.
var (
	// ErrInvalidMagic indicates data that does not start with the store magic.
	ErrInvalidMagic = errors.New("invalid store magic")

	// ErrUnsupportedVersion indicates a store format version this build
	// cannot read.
	ErrUnsupportedVersion = errors.New("unsupported store version")

	// ErrInvalidHeaderSize indicates a truncated store header.
	ErrInvalidHeaderSize = errors.New("invalid header size")

	// ErrInvalidHeaderFlags indicates a header flag word carrying an unknown
	// encoding or compression type.
	ErrInvalidHeaderFlags = errors.New("invalid header flags")

	// ErrInvalidIndexEntrySize indicates a truncated index entry.
	ErrInvalidIndexEntrySize = errors.New("invalid index entry size")

	// ErrDetectorAlreadyStarted indicates StartDetector while another
	// detector is open.
	ErrDetectorAlreadyStarted = errors.New("detector already started")

	// ErrNoDetectorStarted indicates AddLayer/EndDetector without an open
	// detector.
	ErrNoDetectorStarted = errors.New("no detector started")

	// ErrDetectorNotEnded indicates Finish while a detector is still open.
	ErrDetectorNotEnded = errors.New("detector not ended")

	// ErrNoDetectorsAdded indicates Finish on an encoder with no detectors.
	ErrNoDetectorsAdded = errors.New("no detectors added")

	// ErrNoLayersAdded indicates EndDetector on a detector with no layers.
	ErrNoLayersAdded = errors.New("no layers added")

	// ErrDuplicateDetector indicates a detector ID encoded twice.
	ErrDuplicateDetector = errors.New("duplicate detector")

	// ErrDuplicateLayer indicates a layer type added twice for one detector.
	ErrDuplicateLayer = errors.New("duplicate layer")

	// ErrUnknownDetector indicates a read for a detector absent from the store.
	ErrUnknownDetector = errors.New("unknown detector")

	// ErrUnknownLayer indicates a read for a layer absent from a detector.
	ErrUnknownLayer = errors.New("unknown layer")

	// ErrInvalidChunkRows indicates a chunk row count < 1.
	ErrInvalidChunkRows = errors.New("invalid chunk rows")

	// ErrInvalidPayloadSize indicates a chunk payload whose length does not
	// match its declared pixel count.
	ErrInvalidPayloadSize = errors.New("invalid payload size")

	// ErrMetadataChecksum indicates store metadata whose checksum does not match.
	ErrMetadataChecksum = errors.New("metadata checksum mismatch")

	// ErrInvalidDetectorCount indicates an exposure whose HDU count maps to
	// neither the 36-detector nor the 144-quadrant focal plane layout.
	ErrInvalidDetectorCount = errors.New("invalid detector count")

	// ErrRegionOutOfBounds indicates a region read outside the stored plane.
	ErrRegionOutOfBounds = errors.New("region out of bounds")
)

// File helper errors.
var (
	// ErrInvalidListfile indicates a listfile whose JSON shape is neither a
	// list of names nor a list of tuples.
	ErrInvalidListfile = errors.New("invalid listfile")

	// ErrFilenameTooLong indicates a generated filename exceeding the
	// archive's length limit.
	ErrFilenameTooLong = errors.New("filename too long")
)

// Photometry errors.
var (
	// ErrInvalidFlux indicates a non-positive flux, whose magnitude is undefined.
	ErrInvalidFlux = errors.New("invalid flux")
)
