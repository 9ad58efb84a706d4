// ./internal/arch/arch_test.go
package arch

import (
	"bytes"
	"encoding/json"
	"io"
	"os/exec"
	"strings"
	"testing"
)

type pkg struct {
	ImportPath string
	Imports    []string
}

// Presentation and I/O layers must not reach back into the command layer.
var bans = map[string][]string{
	"dnastore/internal/writers":  {"dnastore/internal/app", "dnastore/internal/cli", "dnastore/cmd/"},
	"dnastore/internal/poolfile": {"dnastore/internal/app", "dnastore/internal/cli", "dnastore/internal/writers", "dnastore/cmd/"},
	"dnastore/internal/cli":      {"dnastore/internal/app", "dnastore/cmd/"},
	"dnastore/internal/cmdutil":  {"dnastore/internal/app", "dnastore/internal/cli", "dnastore/cmd/"},
	"dnastore/pkg/api":           {"dnastore/internal/", "dnastore/cmd/"},
}

func TestImportBoundaries(t *testing.T) {
	if _, err := exec.LookPath("go"); err != nil {
		t.Skip("go toolchain not on PATH")
	}
	cmd := exec.Command("go", "list", "-json", "./...")
	cmd.Dir = "../.."
	var out bytes.Buffer
	cmd.Stdout = &out
	if err := cmd.Run(); err != nil {
		t.Fatalf("go list: %v", err)
	}
	dec := json.NewDecoder(&out)

	var violations []string
	for {
		var p pkg
		if err := dec.Decode(&p); err == io.EOF {
			break
		} else if err != nil {
			t.Fatalf("decode: %v", err)
		}
		for prefix, forbidden := range bans {
			if !strings.HasPrefix(p.ImportPath, prefix) {
				continue
			}
			for _, dep := range p.Imports {
				for _, ban := range forbidden {
					if strings.HasPrefix(dep, ban) {
						violations = append(violations, p.ImportPath+" → "+dep)
					}
				}
			}
		}
	}

	if len(violations) > 0 {
		t.Fatalf("import boundary violations:\n  %s", strings.Join(violations, "\n  "))
	}
}
