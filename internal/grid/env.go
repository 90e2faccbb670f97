package grid

import (
	"fmt"

	"github.com/mfasDa/alice-fast-simulation/internal/backend"
	"github.com/mfasDa/alice-fast-simulation/internal/utils"
)

// requiredTools must be on the PATH for grid submission.
var requiredTools = []struct{ label, bin string }{
	{"Root", "root"},
	{"AliRoot", "aliroot"},
	{"Alien", "alien-token-info"},
}

// CheckEnvironment verifies the ROOT, AliRoot and grid client tools are
// available and logs where they were found.
func CheckEnvironment(lookPath backend.LookPathFunc) error {
	for _, tool := range requiredTools {
		p, err := lookPath(tool.bin)
		if err != nil {
			return fmt.Errorf("%w: %s not found", backend.ErrEnvironment, tool.bin)
		}
		utils.PrintMessage("%-8s %s", tool.label+":", utils.StylePath(p))
	}
	return nil
}
