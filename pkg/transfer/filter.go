package transfer

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/transfat/transfat/pkg/userlog"
	"gitlab.com/tozd/go/errors"
)

// 🔍 FilterExtensions drops plan entries whose destination name matches a
// filter pattern. Exclude patterns always drop; ask patterns drop unless
// the user confirms keeping the file, and drop silently when
// non-interactive. Matching is case-insensitive on the basename.
func (r *Runner) FilterExtensions(ctx context.Context, plan *Plan) error {
	if len(r.cfg.Filter.Exclude) == 0 && len(r.cfg.Filter.Ask) == 0 {
		return nil
	}

	kept := plan.Entries[:0]
	for _, entry := range plan.Entries {
		name := strings.ToLower(filepath.Base(entry.DestFile))

		switch {
		case matchAny(r.cfg.Filter.Exclude, name):
			r.dropFiltered(entry, "filtered")

		case matchAny(r.cfg.Filter.Ask, name):
			if r.cfg.NonInteractive {
				r.dropFiltered(entry, "filtered")
				continue
			}
			keep, err := r.ask.Confirm(ctx, fmt.Sprintf("Copy %s despite filter?", filepath.Base(entry.Source)), false)
			if err != nil {
				return errors.Errorf("confirming filter for %s: %w", entry.Source, err)
			}
			if !keep {
				r.dropFiltered(entry, "declined")
				continue
			}
			kept = append(kept, entry)

		default:
			kept = append(kept, entry)
		}
	}
	plan.Entries = kept

	return nil
}

func (r *Runner) dropFiltered(entry Entry, detail string) {
	r.report.addFiltered()
	r.ulog.FileOp(userlog.FileOperation{
		Path:   entry.Source,
		Action: userlog.ActionSkipped,
		Detail: detail,
	})
}

// matchAny reports whether name matches any of the glob patterns.
// Patterns were validated at config load; a bad one cannot match.
func matchAny(patterns []string, name string) bool {
	for _, pat := range patterns {
		if ok, err := doublestar.Match(pat, name); err == nil && ok {
			return true
		}
	}
	return false
}
