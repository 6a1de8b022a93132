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
	Standard   bool
}

func TestImportBoundaries(t *testing.T) {
	cmd := exec.Command("go", "list", "-json", "./...")
	cmd.Dir = "../.."
	var out bytes.Buffer
	cmd.Stdout = &out
	if err := cmd.Run(); err != nil {
		t.Fatalf("go list: %v", err)
	}
	dec := json.NewDecoder(&out)

	front := []string{
		"kmerx/internal/app", "kmerx/internal/appshell",
		"kmerx/internal/cli", "kmerx/internal/clibase", "kmerx/cmd/",
	}
	core := append([]string{
		"kmerx/internal/pipeline", "kmerx/internal/config", "kmerx/internal/engine",
		"kmerx/internal/writers", "kmerx/internal/progress",
	}, front...)

	bans := map[string][]string{
		"kmerx/internal/errs":     {"kmerx/"},
		"kmerx/internal/layout":   core,
		"kmerx/internal/hits":     core,
		"kmerx/internal/pairs":    core,
		"kmerx/internal/colstore": core,
		"kmerx/internal/fastq":    core,
		"kmerx/internal/extract":  append([]string{"kmerx/internal/pipeline", "kmerx/internal/config", "kmerx/internal/engine", "kmerx/internal/writers"}, front...),
		"kmerx/internal/engine":   append([]string{"kmerx/internal/pipeline", "kmerx/internal/config", "kmerx/internal/writers"}, front...),
		"kmerx/internal/writers":  append([]string{"kmerx/internal/pipeline", "kmerx/internal/engine"}, front...),
		"kmerx/internal/pipeline": front,
		"kmerx/pkg/api":           {"kmerx/"},
	}

	var violations []string
	for {
		var p pkg
		if err := dec.Decode(&p); err == io.EOF {
			break
		} else if err != nil {
			t.Fatalf("decode: %v", err)
		}
		if !strings.HasPrefix(p.ImportPath, "kmerx/") {
			continue
		}
		imp := p.ImportPath
		for prefix, forbidden := range bans {
			if imp != prefix {
				continue
			}
			for _, dep := range p.Imports {
				if !strings.HasPrefix(dep, "kmerx/") {
					continue
				}
				for _, ban := range forbidden {
					if dep == ban || (strings.HasSuffix(ban, "/") && strings.HasPrefix(dep, ban)) {
						violations = append(violations, imp+" → "+dep)
					}
				}
			}
		}
	}

	if len(violations) > 0 {
		t.Fatalf("import boundary violations:\n  %s", strings.Join(violations, "\n  "))
	}
}
