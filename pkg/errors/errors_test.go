package errors_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	pkgerrors "github.com/macrossfev/report-verification/pkg/errors"
)

func TestNew(t *testing.T) {
	err := pkgerrors.New("test error")
	assert.NotNil(t, err)
	assert.Equal(t, "test error", err.Error())
}

func TestReadError(t *testing.T) {
	t.Run("with format", func(t *testing.T) {
		base := errors.New("zip: not a valid zip file")
		err := pkgerrors.NewReadError("/data/0001出厂水.xlsx", "xlsx", base)
		assert.Equal(t, "failed to read xlsx workbook /data/0001出厂水.xlsx: zip: not a valid zip file", err.Error())
		assert.True(t, errors.Is(err, pkgerrors.ErrReadFailed))
		assert.True(t, pkgerrors.IsReadError(err))
		assert.Equal(t, base, errors.Unwrap(err))
	})

	t.Run("without format", func(t *testing.T) {
		err := pkgerrors.NewReadError("/data/report.csv", "", pkgerrors.ErrUnsupportedFormat)
		assert.Equal(t, "failed to read workbook /data/report.csv: unsupported format", err.Error())
		assert.True(t, errors.Is(err, pkgerrors.ErrUnsupportedFormat))
	})

	t.Run("not a read error", func(t *testing.T) {
		assert.False(t, pkgerrors.IsReadError(errors.New("boom")))
		assert.False(t, pkgerrors.IsReadError(nil))
	})
}

func TestValidationError(t *testing.T) {
	t.Run("with field", func(t *testing.T) {
		err := pkgerrors.NewValidationError("thresholds.ph_min", 12.0, "must be below ph_max")
		assert.Equal(t, "validation failed for field thresholds.ph_min: must be below ph_max", err.Error())
		assert.True(t, errors.Is(err, pkgerrors.ErrInvalidInput))
	})

	t.Run("without field", func(t *testing.T) {
		err := &pkgerrors.ValidationError{Message: "invalid calibration"}
		assert.Equal(t, "validation failed: invalid calibration", err.Error())
	})
}

func TestIOError(t *testing.T) {
	base := errors.New("permission denied")
	err := pkgerrors.NewIOError("scan", "/data", base)
	assert.Equal(t, "IO error during scan of /data: permission denied", err.Error())
	assert.Equal(t, base, errors.Unwrap(err))

	bare := &pkgerrors.IOError{Operation: "write", Message: "disk full"}
	assert.Equal(t, "IO error during write: disk full", bare.Error())
}

func TestWrappers(t *testing.T) {
	assert.NoError(t, pkgerrors.WrapIO("read", "/x", nil))
	assert.NoError(t, pkgerrors.WrapRead("/x", "xls", nil))

	base := errors.New("short read")
	assert.True(t, pkgerrors.IsReadError(pkgerrors.WrapRead("/x", "xls", base)))

	var ioErr *pkgerrors.IOError
	assert.ErrorAs(t, pkgerrors.WrapIO("read", "/x", base), &ioErr)
	assert.Equal(t, "read", ioErr.Operation)
}
