package layout

import (
	"encoding/json"
	"os"
)

// WriteDebugJSON dumps block placements as indented JSON for inspection.
func WriteDebugJSON(trace []Placement, path string) error {
	if trace == nil {
		trace = []Placement{}
	}
	data, err := json.MarshalIndent(trace, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
