package transfer

import (
	"context"
	"os"
	"path/filepath"

	"github.com/transfat/transfat/pkg/userlog"
)

// ✏️ RenameDirs applies the configured rename rules to the top-level
// destination directories this run produced. Only the first matching rule
// fires per directory. Collisions and rename errors are warnings, never
// fatal; the copied data is already in place.
func (r *Runner) RenameDirs(ctx context.Context, plan *Plan) error {
	if len(r.cfg.Renames) == 0 {
		return nil
	}

	for _, dir := range plan.Dirs {
		if err := ctx.Err(); err != nil {
			return err
		}
		if filepath.Dir(dir) != r.destRoot {
			continue
		}

		name := filepath.Base(dir)
		renamed, ok := r.applyRenames(name)
		if !ok || renamed == name {
			continue
		}

		target := filepath.Join(r.destRoot, renamed)
		if _, err := os.Lstat(target); err == nil {
			r.warnf("not renaming %s: %s already exists", dir, target)
			continue
		}
		if err := os.Rename(dir, target); err != nil {
			r.warnf("renaming %s: %v", dir, err)
			continue
		}
		r.report.addRenamed()
		r.ulog.FileOp(userlog.FileOperation{
			Path:   name,
			Action: userlog.ActionRenamed,
			Detail: "-> " + renamed,
		})
	}
	return nil
}

// applyRenames runs name through the rename rules, first match wins.
func (r *Runner) applyRenames(name string) (string, bool) {
	for i := range r.cfg.Renames {
		if renamed, ok := r.cfg.Renames[i].Apply(name); ok {
			return renamed, true
		}
	}
	return "", false
}
