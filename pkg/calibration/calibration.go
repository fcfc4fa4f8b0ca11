// Package calibration holds the laboratory-specific matching and threshold
// data the verification engine is tuned with: the test-item alias table,
// the substring-match confusability guard, informational-item skip lists,
// and every rule threshold. The compiled-in defaults were derived from one
// laboratory's templates; a new deployment overrides them from a YAML file
// rather than editing code.
package calibration

import (
	"os"

	"github.com/goccy/go-yaml"

	"github.com/macrossfev/report-verification/pkg/errors"
)

// ConfusablePair disqualifies a substring match between a short item name
// and any name containing the keyword. It exists because naive substring
// matching wrongly equates an element with a compound indicator whose name
// starts with that element (锰 must not match 高锰酸盐指数).
type ConfusablePair struct {
	Short   string `yaml:"short"`
	Keyword string `yaml:"keyword"`
}

// Thresholds are the tunable rule parameters. None of these are physical
// law; they encode how much slack a reviewer tolerates before a finding is
// worth raising.
type Thresholds struct {
	// ChlorineOrdering multiplies effluent disinfectant residual; the
	// distribution-network value may not exceed the product.
	ChlorineOrdering float64 `yaml:"chlorine_ordering"`

	// PermanganateRecord bounds effluent vs raw permanganate index in the
	// original record; PermanganateReport is the looser cross-report bound.
	PermanganateRecord float64 `yaml:"permanganate_record"`
	PermanganateReport float64 `yaml:"permanganate_report"`

	// Turbidity bounds effluent vs raw turbidity.
	Turbidity float64 `yaml:"turbidity"`

	// NitrogenBalance bounds (NH3-N + NO3-N + NO2-N) vs total nitrogen.
	NitrogenBalance float64 `yaml:"nitrogen_balance"`

	// NitriteRatio bounds nitrite vs ammonia and vs nitrate.
	NitriteRatio float64 `yaml:"nitrite_ratio"`

	// CohesionSpread bounds max/min across same-source raw-water samples.
	CohesionSpread float64 `yaml:"cohesion_spread"`

	// TDSRatioLow/High bound dissolved solids / conductivity.
	TDSRatioLow  float64 `yaml:"tds_ratio_low"`
	TDSRatioHigh float64 `yaml:"tds_ratio_high"`

	// DissolvedOxygenHigh and AmmoniaHigh define the DO/ammonia tension.
	DissolvedOxygenHigh float64 `yaml:"dissolved_oxygen_high"`
	AmmoniaHigh         float64 `yaml:"ammonia_high"`

	// IronColor and ManganeseColor trigger the color-vs-metals check when
	// color reads below the detection limit.
	IronColor      float64 `yaml:"iron_color"`
	ManganeseColor float64 `yaml:"manganese_color"`

	// PHMin/PHMax is the plausibility window for pH.
	PHMin float64 `yaml:"ph_min"`
	PHMax float64 `yaml:"ph_max"`

	// DuplicateQuorum is the number of distinct samples reporting the same
	// value before the duplicate-value rule fires; DuplicateDecimals is the
	// minimum decimal places for a value to count.
	DuplicateQuorum   int `yaml:"duplicate_quorum"`
	DuplicateDecimals int `yaml:"duplicate_decimals"`

	// CriticalExceedRatio escalates a standard-limit exceedance to critical.
	CriticalExceedRatio float64 `yaml:"critical_exceed_ratio"`

	// ValueTolerance is the absolute tolerance for numeric equivalence in
	// cross-source value comparison.
	ValueTolerance float64 `yaml:"value_tolerance"`

	// ReceiptMaxDays bounds receipt date minus sampling date.
	ReceiptMaxDays int `yaml:"receipt_max_days"`
}

// Calibration bundles every per-laboratory table and threshold.
type Calibration struct {
	// Aliases maps original-record item names to report-side phrasings.
	Aliases map[string]string `yaml:"aliases"`

	// Confusables lists pairs for which substring matching is disabled.
	Confusables []ConfusablePair `yaml:"confusables"`

	// SkipItems are informational items excluded from cross-source value
	// reconciliation.
	SkipItems []string `yaml:"skip_items"`

	// RawWaterSkipItems are additionally excluded for raw-water samples,
	// whose reports may legitimately omit them.
	RawWaterSkipItems []string `yaml:"raw_water_skip_items"`

	// ToxicMetals always escalate a standard exceedance to critical.
	ToxicMetals []string `yaml:"toxic_metals"`

	// FilenameTags are batch decorations stripped from report filenames
	// before plant-name extraction, longest variant first.
	FilenameTags []string `yaml:"filename_tags"`

	Thresholds Thresholds `yaml:"thresholds"`
}

// Default returns the compiled-in calibration.
func Default() *Calibration {
	return &Calibration{
		Aliases: map[string]string{
			"高锰酸盐指数": "高锰酸盐指数(以O2计)",
			"化学需氧量":  "化学需氧量(COD)",
			"五日生化需氧量": "五日生化需氧量(BOD5)",
			"挥发酚":    "挥发酚类(以苯酚计)",
			"六 价 铬":  "铬(六价)",
			"六价铬":    "铬(六价)",
			"总硬度":    "总硬度(以CaCO3计)",
			"氨":      "氨(以N计)",
			"氨(以N计)": "氨氮(NH3-N)",
			"硝酸盐":    "硝酸盐(以N计)",
			"总α":     "总α放射性",
			"总a":     "总α放射性",
			"总β":     "总β放射性",
			"总磷":     "总磷(以P计)",
			"总氮":     "总氮(以N计)",
			"氨氮":     "氨氮(NH3-N)",
			"阴离子表面活性剂": "阴离子合成洗涤剂",
		},
		Confusables: []ConfusablePair{
			{Short: "锰", Keyword: "高锰酸盐"},
			{Short: "硝酸盐", Keyword: "亚硝酸盐"},
		},
		SkipItems:         []string{"钙", "镁", "电导率", "水温"},
		RawWaterSkipItems: []string{"肉眼可见物", "臭和味"},
		ToxicMetals:       []string{"铅", "汞", "镉", "砷", "铬(六价)"},
		FilenameTags: []string{
			"-送检", "送检", "-荣昌", "荣昌", "日检九项", "高锰酸盐指数",
			"-地表三类", "地表三类", "-应急水样", "应急水样",
		},
		Thresholds: Thresholds{
			ChlorineOrdering:    1.1,
			PermanganateRecord:  1.2,
			PermanganateReport:  1.5,
			Turbidity:           1.0,
			NitrogenBalance:     1.1,
			NitriteRatio:        2.0,
			CohesionSpread:      2.0,
			TDSRatioLow:         0.3,
			TDSRatioHigh:        1.0,
			DissolvedOxygenHigh: 7,
			AmmoniaHigh:         0.5,
			IronColor:           0.3,
			ManganeseColor:      0.1,
			PHMin:               5,
			PHMax:               10,
			DuplicateQuorum:     4,
			DuplicateDecimals:   3,
			CriticalExceedRatio: 2.0,
			ValueTolerance:      1e-4,
			ReceiptMaxDays:      1,
		},
	}
}

// Load reads a YAML calibration file over the defaults. Fields absent from
// the file keep their default values.
func Load(path string) (*Calibration, error) {
	cal := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapIO("read", path, err)
	}
	if err := yaml.Unmarshal(data, cal); err != nil {
		return nil, errors.NewValidationError("calibration", path, err.Error())
	}
	if err := cal.Validate(); err != nil {
		return nil, err
	}
	return cal, nil
}

// Validate rejects calibrations that would make rules vacuous or inverted.
func (c *Calibration) Validate() error {
	t := c.Thresholds
	if t.ChlorineOrdering < 1 {
		return errors.NewValidationError("thresholds.chlorine_ordering", t.ChlorineOrdering, "must be >= 1")
	}
	if t.TDSRatioLow >= t.TDSRatioHigh {
		return errors.NewValidationError("thresholds.tds_ratio_low", t.TDSRatioLow, "must be below tds_ratio_high")
	}
	if t.PHMin >= t.PHMax {
		return errors.NewValidationError("thresholds.ph_min", t.PHMin, "must be below ph_max")
	}
	if t.DuplicateQuorum < 2 {
		return errors.NewValidationError("thresholds.duplicate_quorum", t.DuplicateQuorum, "must be >= 2")
	}
	if t.ValueTolerance <= 0 {
		return errors.NewValidationError("thresholds.value_tolerance", t.ValueTolerance, "must be positive")
	}
	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// Skip reports whether an item (by base name) is excluded from
// cross-source value comparison.
func (c *Calibration) Skip(baseName string) bool {
	return contains(c.SkipItems, baseName)
}

// SkipForRawWater reports the additional raw-water exclusions.
func (c *Calibration) SkipForRawWater(name string) bool {
	return contains(c.RawWaterSkipItems, name)
}

// Toxic reports whether an item is on the always-critical metal list.
func (c *Calibration) Toxic(name string) bool {
	return contains(c.ToxicMetals, name)
}
