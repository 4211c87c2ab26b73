package transfer

import "sync"

// 💥 Failure records one non-fatal per-file problem.
type Failure struct {
	Stage string // "mkdir" or "copy"
	Path  string
	Err   error
}

// 📊 Report accumulates the outcome of one run. Counters are written
// under a lock since the conversion stage runs parallel workers.
type Report struct {
	mu sync.Mutex

	Planned        int // entries in the initial plan
	Filtered       int // entries dropped by extension filtering
	Converted      int // entries transcoded into temp files
	Copied         int // files that reached the destination
	Skipped        int // existing destinations left untouched
	Renamed        int // destination directories renamed
	DeletedSources int // source paths removed by policy

	Failures []Failure
	Warnings []string
}

// HasFailures reports whether any per-file operation failed.
func (r *Report) HasFailures() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.Failures) > 0
}

func (r *Report) setPlanned(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Planned = n
}

func (r *Report) addFiltered() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Filtered++
}

func (r *Report) addConverted() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Converted++
}

func (r *Report) addCopied() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Copied++
}

func (r *Report) addSkipped() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Skipped++
}

func (r *Report) addRenamed() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Renamed++
}

func (r *Report) addDeletedSource() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.DeletedSources++
}

func (r *Report) addFailure(stage, path string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Failures = append(r.Failures, Failure{Stage: stage, Path: path, Err: err})
}

func (r *Report) addWarning(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Warnings = append(r.Warnings, msg)
}
