package pipeline

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"kmerx/internal/cmdutil"
	"kmerx/internal/common"
)

// workspace is the per-run directory holding intermediate files.
type workspace struct {
	dir  string
	keep bool
	log  *cmdutil.Logger
}

func newWorkspace(tmpDir, name string, keep bool, log *cmdutil.Logger) (*workspace, error) {
	dir, err := os.MkdirTemp(tmpDir, "kmerx-"+common.PairKey(name)+"-")
	if err != nil {
		return nil, errors.Wrap(err, "creating workspace")
	}
	log.Infof("workspace %s", dir)
	return &workspace{dir: dir, keep: keep, log: log}, nil
}

func (w *workspace) path(name string) string { return filepath.Join(w.dir, name) }

// close removes the workspace unless it is to be kept.
func (w *workspace) close() {
	if w.keep {
		w.log.Infof("keeping intermediate files in %s", w.dir)
		return
	}
	if err := os.RemoveAll(w.dir); err != nil {
		w.log.Warnf("removing workspace %s: %v", w.dir, err)
	}
}
