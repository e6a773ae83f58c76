package flight

import (
	"fmt"
	"path"
	"strings"

	"github.com/hugr-lab/tablescan-go/fileio"
	"github.com/hugr-lab/tablescan-go/task"
)

// Contains reports whether location lives under the table location. Paths
// are cleaned first, so "/a/../b" is not under "/a".
func (t Table) Contains(location string) bool {
	if t.Location == "" {
		return true
	}
	ps, pp := splitLocation(t.Location)
	ls, lp := splitLocation(location)
	if ps != ls {
		return false
	}
	if pp == "/" {
		return strings.HasPrefix(lp, "/")
	}
	return lp == pp || strings.HasPrefix(lp, pp+"/")
}

// checkUnit fails on the first data or delete file of unit outside the table
// location.
func (t Table) checkUnit(unit task.CombinedScanTask) error {
	for i := range unit.Tasks {
		for _, loc := range unit.Tasks[i].Locations() {
			if !t.Contains(loc) {
				return fmt.Errorf("%w: table %s: %s is not under %s", ErrOutsideLocation, t.Name, loc, t.Location)
			}
		}
	}
	return nil
}

func splitLocation(location string) (scheme, p string) {
	scheme = fileio.Scheme(location)
	if scheme != "" {
		location = location[len(scheme)+len("://"):]
	}
	if scheme == "file" {
		scheme = ""
	}
	return scheme, path.Clean(location)
}
