package transfer

import (
	"context"
	"fmt"
	"os"

	"gitlab.com/tozd/go/errors"
)

// 📁 CreateDirectories makes every destination directory the plan needs,
// in plan order so parents come before children. A directory that cannot
// be created is recorded as a failure and skipped; files under it will
// fail at copy time rather than aborting the run.
func (r *Runner) CreateDirectories(ctx context.Context, plan *Plan) error {
	for _, dir := range plan.Dirs {
		if err := ctx.Err(); err != nil {
			return err
		}

		info, err := os.Stat(dir)
		switch {
		case err == nil && info.IsDir():
			continue
		case err == nil:
			r.fail("mkdir", dir, errors.Errorf("%w: %s exists and is not a directory", ErrDirectoryCreate, dir))
			continue
		case !os.IsNotExist(err):
			r.fail("mkdir", dir, errors.Errorf("%w: %w", ErrDirectoryCreate, err))
			continue
		}

		if r.cfg.Directories.Prompt && !r.cfg.NonInteractive {
			question := fmt.Sprintf("Create directory %s?", dir)
			proceed, perr := r.ask.Confirm(ctx, question, true)
			if perr != nil {
				return errors.Errorf("confirming creation of %s: %w", dir, perr)
			}
			if !proceed {
				r.fail("mkdir", dir, errors.Errorf("%w: declined for %s", ErrDirectoryCreate, dir))
				continue
			}
		}

		if err := os.MkdirAll(dir, 0o755); err != nil {
			r.fail("mkdir", dir, errors.Errorf("%w: %w", ErrDirectoryCreate, err))
			continue
		}
		r.ulog.Statusf("created %s", dir)
	}
	return nil
}
