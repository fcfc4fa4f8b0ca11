package calibration

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultValidates(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestDefaultTables(t *testing.T) {
	cal := Default()
	assert.Equal(t, "铬(六价)", cal.Aliases["六价铬"])
	assert.Equal(t, "氨氮(NH3-N)", cal.Aliases["氨氮"])
	assert.True(t, cal.Skip("电导率"))
	assert.False(t, cal.Skip("氨氮"))
	assert.True(t, cal.SkipForRawWater("臭和味"))
	assert.True(t, cal.Toxic("铬(六价)"))
	assert.False(t, cal.Toxic("铁"))
	assert.Contains(t, cal.FilenameTags, "-送检")
	assert.Contains(t, cal.FilenameTags, "应急水样")
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cal.yaml")
	content := `
aliases:
  总铬: 铬(总)
thresholds:
  ph_min: 6
  receipt_max_days: 2
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cal, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 6.0, cal.Thresholds.PHMin)
	assert.Equal(t, 2, cal.Thresholds.ReceiptMaxDays)
	assert.Equal(t, "铬(总)", cal.Aliases["总铬"])
	// Fields absent from the file keep defaults.
	assert.Equal(t, 10.0, cal.Thresholds.PHMax)
	assert.Equal(t, 4, cal.Thresholds.DuplicateQuorum)
	assert.Contains(t, cal.FilenameTags, "-送检")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoadRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cal.yaml")
	require.NoError(t, os.WriteFile(path, []byte("thresholds:\n  duplicate_quorum: 1\n"), 0o644))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidateInvertedBounds(t *testing.T) {
	cal := Default()
	cal.Thresholds.TDSRatioLow = 1.5
	assert.Error(t, cal.Validate())

	cal = Default()
	cal.Thresholds.ChlorineOrdering = 0.9
	assert.Error(t, cal.Validate())

	cal = Default()
	cal.Thresholds.ValueTolerance = 0
	assert.Error(t, cal.Validate())
}
