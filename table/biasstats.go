package table

import (
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/astrofold/shearkit/errs"
	"github.com/astrofold/shearkit/fits"
	"github.com/astrofold/shearkit/internal/options"
	"github.com/astrofold/shearkit/stats"
)

// Method identifies the shear estimation method a bias-statistics table
// belongs to.
type Method string

// Recognized shear estimation methods.
const (
	MethodKSB         Method = "KSB"
	MethodREGAUSS     Method = "REGAUSS"
	MethodMomentsML   Method = "MomentsML"
	MethodLensMC      Method = "LensMC"
	MethodUnspecified Method = "Unspecified"
)

// Validate rejects method strings outside the recognized set.
func (m Method) Validate() error {
	switch m {
	case MethodKSB, MethodREGAUSS, MethodMomentsML, MethodLensMC, MethodUnspecified:
		return nil
	default:
		return fmt.Errorf("%w: %q", errs.ErrInvalidMethod, string(m))
	}
}

// Bias-statistics metadata keywords.
const (
	KeyID     = "ID"
	KeyMethod = "METHOD"

	KeyM1      = "BM_M1"
	KeyM1Err   = "BM_M1E"
	KeyC1      = "BM_C1"
	KeyC1Err   = "BM_C1E"
	KeyM1C1Cov = "BM_M1C1C"

	KeyM2      = "BM_M2"
	KeyM2Err   = "BM_M2E"
	KeyC2      = "BM_C2"
	KeyC2Err   = "BM_C2E"
	KeyM2C2Cov = "BM_M2C2C"
)

// Bias-statistics column names. Each row holds the sufficient statistics of
// one calibration batch for both shear components.
const (
	ColRunID = "RUN_ID"

	ColW1   = "W1"
	ColXM1  = "XM1"
	ColX2M1 = "X2M1"
	ColYM1  = "YM1"
	ColXY1  = "XY1"

	ColW2   = "W2"
	ColXM2  = "XM2"
	ColX2M2 = "X2M2"
	ColYM2  = "YM2"
	ColXY2  = "XY2"
)

// BiasStatistics is the bias-statistics table format.
var BiasStatistics = &Schema{
	Version: "8.0",
	Def:     "she.biasStatistics",
	HDUName: "BIAS_STATS",
	Columns: []Column{
		{Name: ColRunID, Form: "20A", Optional: true},
		{Name: ColW1, Form: "E"},
		{Name: ColXM1, Form: "E"},
		{Name: ColX2M1, Form: "E"},
		{Name: ColYM1, Form: "E"},
		{Name: ColXY1, Form: "E"},
		{Name: ColW2, Form: "E"},
		{Name: ColXM2, Form: "E"},
		{Name: ColX2M2, Form: "E"},
		{Name: ColYM2, Form: "E"},
		{Name: ColXY2, Form: "E"},
	},
	MetaKeys: []string{
		KeyID, KeyMethod,
		KeyM1, KeyM1Err, KeyC1, KeyC1Err, KeyM1C1Cov,
		KeyM2, KeyM2Err, KeyC2, KeyC2Err, KeyM2C2Cov,
	},
}

// biasStatsConfig collects the optional NewBiasStatisticsTable arguments.
type biasStatsConfig struct {
	id     string
	runIDs []string
}

// BiasStatsOption configures NewBiasStatisticsTable.
type BiasStatsOption = options.Option[*biasStatsConfig]

// WithID sets the run ID stored in the table metadata. The default is a
// fresh UUID.
func WithID(id string) BiasStatsOption {
	return options.NoError(func(cfg *biasStatsConfig) {
		cfg.id = id
	})
}

// WithRunIDs enables the optional RUN_ID column and labels each statistics
// row. The slice must be as long as the statistics slices.
func WithRunIDs(runIDs []string) BiasStatsOption {
	return options.NoError(func(cfg *biasStatsConfig) {
		cfg.runIDs = runIDs
	})
}

// NewBiasStatisticsTable builds a bias-statistics table from per-batch
// regression statistics for the two shear components.
//
// The header's bias measurements are always recomputed from the given rows
// (combine, regress, bias against the default targets), so header and rows
// cannot disagree. Degenerate statistics produce the usual Inf/NaN
// sentinels, serialized as strings.
//
// Parameters:
//   - method: Shear estimation method the statistics belong to
//   - g1Stats, g2Stats: Per-batch statistics, one row per batch; must have
//     equal length
//
// Returns:
//   - *Table: The table, in BiasStatistics format
//   - error: errs.ErrInvalidMethod, errs.ErrLengthMismatch, or an encoding
//     error
func NewBiasStatisticsTable(method Method, g1Stats, g2Stats []*stats.LinearStats, opts ...BiasStatsOption) (*Table, error) {
	if err := method.Validate(); err != nil {
		return nil, err
	}

	if len(g1Stats) != len(g2Stats) {
		return nil, fmt.Errorf("%w: %d g1 rows, %d g2 rows", errs.ErrLengthMismatch, len(g1Stats), len(g2Stats))
	}

	var cfg biasStatsConfig
	if err := options.Apply(&cfg, opts...); err != nil {
		return nil, err
	}

	if cfg.runIDs != nil && len(cfg.runIDs) != len(g1Stats) {
		return nil, fmt.Errorf("%w: %d run IDs for %d rows", errs.ErrLengthMismatch, len(cfg.runIDs), len(g1Stats))
	}

	var optional []string
	if cfg.runIDs != nil {
		optional = append(optional, ColRunID)
	}

	t, err := New(BiasStatistics, optional...)
	if err != nil {
		return nil, err
	}

	id := cfg.id
	if id == "" {
		id = uuid.NewString()
	}

	if err := t.meta.SetString(KeyID, id, "calibration run id"); err != nil {
		return nil, err
	}
	if err := t.meta.SetString(KeyMethod, string(method),
		"one of KSB, REGAUSS, MomentsML, LensMC, Unspecified"); err != nil {
		return nil, err
	}

	g1Bias := stats.NewBiasMeasurement(stats.Combine(g1Stats).Regress())
	g2Bias := stats.NewBiasMeasurement(stats.Combine(g2Stats).Regress())

	biasValues := []struct {
		key   string
		value float64
	}{
		{KeyM1, g1Bias.M}, {KeyM1Err, g1Bias.MErr},
		{KeyC1, g1Bias.C}, {KeyC1Err, g1Bias.CErr},
		{KeyM1C1Cov, g1Bias.MCCovar},
		{KeyM2, g2Bias.M}, {KeyM2Err, g2Bias.MErr},
		{KeyC2, g2Bias.C}, {KeyC2Err, g2Bias.CErr},
		{KeyM2C2Cov, g2Bias.MCCovar},
	}
	for _, bv := range biasValues {
		if err := setBiasValue(t.meta, bv.key, bv.value); err != nil {
			return nil, err
		}
	}

	for i := range g1Stats {
		row := make([]any, 0, 11)
		if cfg.runIDs != nil {
			row = append(row, cfg.runIDs[i])
		}
		row = append(row,
			float32(g1Stats[i].W), float32(g1Stats[i].Xm), float32(g1Stats[i].X2m),
			float32(g1Stats[i].Ym), float32(g1Stats[i].XYm),
			float32(g2Stats[i].W), float32(g2Stats[i].Xm), float32(g2Stats[i].X2m),
			float32(g2Stats[i].Ym), float32(g2Stats[i].XYm),
		)

		if err := t.AppendRow(row...); err != nil {
			return nil, err
		}
	}

	return t, nil
}

// LinearStats reconstructs the per-batch statistics rows for both shear
// components, at the float32 precision the table stores.
func (t *Table) LinearStats() (g1, g2 []*stats.LinearStats, err error) {
	for row := 0; row < t.NumRows(); row++ {
		s1, err := t.statsAt(row, ColW1, ColXM1, ColX2M1, ColYM1, ColXY1)
		if err != nil {
			return nil, nil, err
		}

		s2, err := t.statsAt(row, ColW2, ColXM2, ColX2M2, ColYM2, ColXY2)
		if err != nil {
			return nil, nil, err
		}

		g1 = append(g1, s1)
		g2 = append(g2, s2)
	}

	return g1, g2, nil
}

func (t *Table) statsAt(row int, cols ...string) (*stats.LinearStats, error) {
	var v [5]float64

	for i, name := range cols {
		f, err := t.Float32At(row, name)
		if err != nil {
			return nil, err
		}
		v[i] = float64(f)
	}

	return &stats.LinearStats{W: v[0], Xm: v[1], X2m: v[2], Ym: v[3], XYm: v[4]}, nil
}

// BiasMeasurements reads the bias measurements for both shear components
// from the table metadata.
//
// Returns:
//   - g1, g2: The measurements, with default requirement targets
//   - err: errs.ErrKeywordNotFound or errs.ErrWrongValueType for a header
//     that does not carry well-formed measurements
func (t *Table) BiasMeasurements() (g1, g2 *stats.BiasMeasurement, err error) {
	g1, err = t.biasMeasurement(KeyM1, KeyM1Err, KeyC1, KeyC1Err, KeyM1C1Cov)
	if err != nil {
		return nil, nil, err
	}

	g2, err = t.biasMeasurement(KeyM2, KeyM2Err, KeyC2, KeyC2Err, KeyM2C2Cov)
	if err != nil {
		return nil, nil, err
	}

	return g1, g2, nil
}

func (t *Table) biasMeasurement(keys ...string) (*stats.BiasMeasurement, error) {
	var v [5]float64

	for i, key := range keys {
		value, err := biasValue(t.meta, key)
		if err != nil {
			return nil, err
		}
		v[i] = value
	}

	return &stats.BiasMeasurement{
		M: v[0], MErr: v[1], C: v[2], CErr: v[3], MCCovar: v[4],
		MTarget: stats.DefaultMTarget,
		CTarget: stats.DefaultCTarget,
	}, nil
}

// setBiasValue writes a bias measurement value. Non-finite values have no
// FITS float representation and are stored as the strings "Inf", "-Inf" and
// "NaN".
func setBiasValue(h *fits.Header, key string, value float64) error {
	switch {
	case math.IsInf(value, 1):
		return h.SetString(key, "Inf", "")
	case math.IsInf(value, -1):
		return h.SetString(key, "-Inf", "")
	case math.IsNaN(value):
		return h.SetString(key, "NaN", "")
	default:
		return h.SetFloat(key, value, "")
	}
}

// biasValue reads a bias measurement value, mapping the non-finite string
// spellings back to their float values.
func biasValue(h *fits.Header, key string) (float64, error) {
	if v, err := h.GetFloat(key); err == nil {
		return v, nil
	}

	s, err := h.GetString(key)
	if err != nil {
		return 0, err
	}

	switch s {
	case "Inf":
		return math.Inf(1), nil
	case "-Inf":
		return math.Inf(-1), nil
	case "NaN":
		return math.NaN(), nil
	default:
		return 0, fmt.Errorf("%w: %s=%q is not a bias value", errs.ErrWrongValueType, key, s)
	}
}
