// Package fileset discovers the working set of a verification run: one
// original-record workbook plus the report workbooks beside it.
package fileset

import (
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/macrossfev/report-verification/pkg/errors"
)

// Original-record files carry a date-coded name like 260205-1-25.xlsx.
var originalRecordRe = regexp.MustCompile(`^\d{6}-\d+-\d+\.xlsx?$`)

// Set is the classified directory listing.
type Set struct {
	Dir            string
	OriginalRecord string
	Reports        []string
}

// HasOriginal reports whether an original-record file was found.
func (s *Set) HasOriginal() bool { return s.OriginalRecord != "" }

// spreadsheet filters by extension and skips editor lock files.
func spreadsheet(name string) bool {
	if strings.HasPrefix(name, "~") {
		return false
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx", ".xls":
		return true
	}
	return false
}

// Scan lists a directory and splits it into the original record and the
// report files, both sorted by name. A missing directory is an error; a
// missing original record is not.
func Scan(dir string) (*Set, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.WrapIO("scan", dir, err)
	}
	set := &Set{Dir: dir}
	for _, e := range entries {
		if e.IsDir() || !spreadsheet(e.Name()) {
			continue
		}
		if set.OriginalRecord == "" && originalRecordRe.MatchString(e.Name()) {
			set.OriginalRecord = e.Name()
			continue
		}
		set.Reports = append(set.Reports, e.Name())
	}
	sort.Strings(set.Reports)
	return set, nil
}
