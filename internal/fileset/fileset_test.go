package fileset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, dir, name string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
}

func TestScan(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "260205-1-25.xlsx")
	touch(t, dir, "0002北门水厂（出厂水）.xlsx")
	touch(t, dir, "0001青龙水库原水.xls")
	touch(t, dir, "~$0001青龙水库原水.xls")
	touch(t, dir, "说明.txt")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "backup"), 0o755))

	set, err := Scan(dir)
	require.NoError(t, err)
	assert.True(t, set.HasOriginal())
	assert.Equal(t, "260205-1-25.xlsx", set.OriginalRecord)
	assert.Equal(t, []string{"0001青龙水库原水.xls", "0002北门水厂（出厂水）.xlsx"}, set.Reports)
}

func TestScanNoOriginal(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "0001出厂水.xlsx")
	set, err := Scan(dir)
	require.NoError(t, err)
	assert.False(t, set.HasOriginal())
	assert.Len(t, set.Reports, 1)
}

func TestScanMissingDir(t *testing.T) {
	_, err := Scan(filepath.Join(t.TempDir(), "absent"))
	assert.Error(t, err)
}

func TestSpreadsheet(t *testing.T) {
	assert.True(t, spreadsheet("a.XLSX"))
	assert.True(t, spreadsheet("a.xls"))
	assert.False(t, spreadsheet("~$a.xlsx"))
	assert.False(t, spreadsheet("a.csv"))
}
