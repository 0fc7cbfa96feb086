// Package fileio implements the small file plumbing of the pipeline
// interfaces: JSON listfiles, mission-format instance filenames, line-wise
// file templating, and short provenance digests.
package fileio

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/astrofold/shearkit/errs"
	"github.com/astrofold/shearkit/internal/hash"
	"github.com/astrofold/shearkit/internal/options"
)

// Instance filename length limits, from the ground segment file naming
// convention.
const (
	// TypeNameMaxLen bounds the type label of an instance filename.
	TypeNameMaxLen = 41
	// InstanceIDMaxLen bounds the instance label.
	InstanceIDMaxLen = 55
)

// WriteListfile writes a flat JSON listfile: a JSON array of filename
// strings.
func WriteListfile(path string, names []string) error {
	if names == nil {
		names = []string{}
	}

	data, err := json.Marshal(names)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0o644)
}

// WriteTupleListfile writes a tuple JSON listfile: a JSON array of filename
// arrays, one per pipeline element.
func WriteTupleListfile(path string, rows [][]string) error {
	if rows == nil {
		rows = [][]string{}
	}

	data, err := json.Marshal(rows)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0o644)
}

// ReadListfile reads a flat JSON listfile.
//
// Returns:
//   - []string: The filenames
//   - error: errs.ErrInvalidListfile when the file holds tuples or is not a
//     JSON string array
func ReadListfile(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var names []string
	if err := json.Unmarshal(data, &names); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", errs.ErrInvalidListfile, path, err)
	}

	return names, nil
}

// ReadTupleListfile reads a tuple JSON listfile. Flat entries are accepted
// and normalized to one-element rows, matching how the pipeline treats
// single-file elements.
//
// Returns:
//   - [][]string: The filename rows
//   - error: errs.ErrInvalidListfile for anything that is neither shape
func ReadTupleListfile(path string) ([][]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var rows [][]string
	if err := json.Unmarshal(data, &rows); err == nil {
		return rows, nil
	}

	var names []string
	if err := json.Unmarshal(data, &names); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", errs.ErrInvalidListfile, path, err)
	}

	rows = make([][]string, len(names))
	for i, name := range names {
		rows[i] = []string{name}
	}

	return rows, nil
}

// filenameConfig collects the optional GetAllowedFilename arguments.
type filenameConfig struct {
	extension string
	release   string
	now       func() time.Time
}

// FilenameOption configures GetAllowedFilename.
type FilenameOption = options.Option[*filenameConfig]

// WithExtension overrides the file extension (default ".fits").
func WithExtension(ext string) FilenameOption {
	return options.NoError(func(cfg *filenameConfig) {
		cfg.extension = ext
	})
}

// WithRelease overrides the release version string (default "00.00"). The
// format is XX.XX with each X a digit.
func WithRelease(release string) FilenameOption {
	return options.NoError(func(cfg *filenameConfig) {
		cfg.release = release
	})
}

// withClock fixes the timestamp source, for tests.
func withClock(now func() time.Time) FilenameOption {
	return options.NoError(func(cfg *filenameConfig) {
		cfg.now = now
	})
}

// GetAllowedFilename builds an instance filename in the mission format:
//
//	EUC_SHE_<TYPE>_<INSTANCE>_<UTC timestamp>_<release><extension>
//
// Returns:
//   - string: The filename
//   - error: errs.ErrFilenameTooLong when a label exceeds its limit, or an
//     invalid release format error
func GetAllowedFilename(typeName, instanceID string, opts ...FilenameOption) (string, error) {
	cfg := filenameConfig{
		extension: ".fits",
		release:   "00.00",
		now:       time.Now,
	}
	if err := options.Apply(&cfg, opts...); err != nil {
		return "", err
	}

	if len(typeName) > TypeNameMaxLen {
		return "", fmt.Errorf("%w: type name %q exceeds %d characters",
			errs.ErrFilenameTooLong, typeName, TypeNameMaxLen)
	}
	if len(instanceID) > InstanceIDMaxLen {
		return "", fmt.Errorf("%w: instance id %q exceeds %d characters",
			errs.ErrFilenameTooLong, instanceID, InstanceIDMaxLen)
	}

	if err := validateRelease(cfg.release); err != nil {
		return "", err
	}

	stamp := cfg.now().UTC().Format("20060102T150405") + ".0Z"

	return "EUC_SHE_" + typeName + "_" + instanceID + "_" + stamp + "_" + cfg.release + cfg.extension, nil
}

// validateRelease checks the XX.XX release format.
func validateRelease(release string) error {
	bad := func() error {
		return fmt.Errorf("invalid release %q: required format is XX.XX with each X a digit", release)
	}

	if len(release) != 5 || release[2] != '.' {
		return bad()
	}
	for _, i := range []int{0, 1, 3, 4} {
		if release[i] < '0' || release[i] > '9' {
			return bad()
		}
	}

	return nil
}

// ReplaceInFile copies the file at in to out, applying every {from, to}
// replacement pair to each line in order.
func ReplaceInFile(in, out string, pairs ...[2]string) error {
	src, err := os.Open(in)
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.Create(out)
	if err != nil {
		return err
	}

	writer := bufio.NewWriter(dst)
	scanner := bufio.NewScanner(src)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	for scanner.Scan() {
		line := scanner.Text()
		for _, pair := range pairs {
			line = strings.ReplaceAll(line, pair[0], pair[1])
		}

		if _, err := writer.WriteString(line + "\n"); err != nil {
			dst.Close()
			return err
		}
	}

	if err := scanner.Err(); err != nil {
		dst.Close()
		return err
	}

	if err := writer.Flush(); err != nil {
		dst.Close()
		return err
	}

	return dst.Close()
}

// HashAny digests any value into a short lowercase hex string, by hashing
// its canonical Go representation. The same value always produces the same
// digest, making it usable for provenance header values.
//
// maxLen truncates the digest to its trailing characters; 0 or anything
// past the full 16 keeps all of it.
func HashAny(v any, maxLen int) string {
	digest := hash.Hex([]byte(fmt.Sprintf("%#v", v)))

	if maxLen <= 0 || maxLen >= len(digest) {
		return digest
	}

	return digest[len(digest)-maxLen:]
}
