package verify

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macrossfev/report-verification/pkg/issues"
	"github.com/macrossfev/report-verification/pkg/logging"
)

func quietCtx() context.Context {
	return logging.WithLogger(context.Background(), &logging.Nop)
}

func TestRunEmptyDirectory(t *testing.T) {
	_, err := Run(quietCtx(), Config{Dir: t.TempDir()})
	assert.Error(t, err)
}

func TestRunMissingDirectory(t *testing.T) {
	_, err := Run(quietCtx(), Config{Dir: filepath.Join(t.TempDir(), "absent")})
	assert.Error(t, err)
}

func TestRunUnreadableFiles(t *testing.T) {
	dir := t.TempDir()
	// Neither file is a valid workbook; both must surface as read-error
	// issues, not abort the run.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "260205-1-25.xlsx"), []byte("not a workbook"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "0001出厂水.xlsx"), []byte("also not"), 0o644))

	tl := logging.NewTestLogger(t)
	ctx := logging.WithLogger(context.Background(), tl.Logger)

	res, err := Run(ctx, Config{Dir: dir})
	require.NoError(t, err)

	var readErrors int
	for _, is := range res.Issues {
		if is.Category == issues.CategoryReadError {
			readErrors++
		}
	}
	assert.Equal(t, 2, readErrors)
	assert.Empty(t, res.Reports)

	// The run logs through the context logger.
	assert.True(t, tl.Contains("original record unreadable"))
	assert.True(t, tl.Contains("report unreadable"))
	assert.NotEmpty(t, tl.Lines())

	// Rendering is reproducible.
	assert.Equal(t, res.Render(), res.Render())

	meta := res.Meta()
	assert.Equal(t, "260205-1-25.xlsx", meta.OriginalRecord)
	assert.Equal(t, 1, meta.ReportFiles)
}

func TestRunRegistryOnlySkipsReports(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "260205-1-25.xlsx"), []byte("broken"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "0001出厂水.xlsx"), []byte("broken"), 0o644))

	res, err := Run(quietCtx(), Config{Dir: dir, RegistryOnly: true})
	require.NoError(t, err)
	assert.Empty(t, res.Reports)

	var readErrors int
	for _, is := range res.Issues {
		if is.Category == issues.CategoryReadError {
			readErrors++
		}
	}
	assert.Equal(t, 1, readErrors, "only the original record is opened")
}
