package native

import (
	"github.com/0xb0urn3/pkgtool/internal/executor"
	"github.com/0xb0urn3/pkgtool/pkg/backend"
)

// Candidates returns every adapter this build knows, in the fixed
// probe order discovery uses. Registration order follows probe order,
// which keeps merge ordering deterministic across sessions on hosts
// with more than one package manager.
func Candidates(exec *executor.Executor) []backend.Backend {
	return []backend.Backend{
		NewAPT(exec),
		NewPacman(exec),
		NewDNF(exec),
		NewZypper(exec),
		NewAPK(exec),
		NewBrew(exec),
	}
}
