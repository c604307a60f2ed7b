// Package registry is the persistent, append-mostly constraint knowledge
// base. Every accepted finding becomes a tiered, cross-referenced record
// with an explicit lifecycle. Records are never edited in place: revision
// appends a superseding record and a state-change line for the old one, so
// the audit trail is complete by construction.
package registry

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/epilectrik/voynich-sub016/internal/model"
)

// IntegrityError reports an attempt to mutate a terminal record or reuse an
// id. It is fatal for the registration attempt; nothing is overwritten.
type IntegrityError struct {
	ID  int
	Msg string
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("constraint %d: %s", e.ID, e.Msg)
}

// maxClaimAttempts bounds the optimistic id reservation loop.
const maxClaimAttempts = 10000

// Registry is a handle on the constraint store. Multiple independently run
// phase scripts may share the store; ids are reserved through claim files,
// optimistic append-and-detect-collision rather than a lock.
type Registry struct {
	path   string // JSONL constraint log
	seqDir string // Claim-file directory for id reservation

	mu      sync.Mutex
	log     []model.ConstraintRecord // Every line, in file order (audit trail)
	current map[int]model.ConstraintRecord
}

// Open loads (or creates) the registry store.
func Open(cfg model.RegistryConfig) (*Registry, error) {
	r := &Registry{
		path:    cfg.Path,
		seqDir:  cfg.SequencePath,
		current: make(map[int]model.ConstraintRecord),
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
		return nil, fmt.Errorf("create registry dir: %w", err)
	}
	if err := os.MkdirAll(cfg.SequencePath, 0o755); err != nil {
		return nil, fmt.Errorf("create sequence dir: %w", err)
	}
	if err := r.load(); err != nil {
		return nil, err
	}
	return r, nil
}

// load replays the JSONL log. Later lines for an id are lifecycle updates;
// the statement text must never change between versions of one id.
// Unknown fields are ignored so older tools keep parsing newer records.
func (r *Registry) load() error {
	f, err := os.Open(r.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("open registry: %w", err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	lineNum := 0
	for sc.Scan() {
		lineNum++
		line := sc.Bytes()
		if len(line) == 0 {
			continue
		}
		var rec model.ConstraintRecord
		if err := json.Unmarshal(line, &rec); err != nil {
			return fmt.Errorf("registry %s:%d: %w", r.path, lineNum, err)
		}
		if prev, ok := r.current[rec.ID]; ok {
			if prev.Statement != rec.Statement {
				return &IntegrityError{ID: rec.ID, Msg: "statement text changed between versions"}
			}
			if prev.State.Terminal() {
				return &IntegrityError{ID: rec.ID, Msg: "update recorded after terminal state " + string(prev.State)}
			}
		}
		r.log = append(r.log, rec)
		r.current[rec.ID] = rec
	}
	return sc.Err()
}

// Register appends a new constraint and returns its id. With supersedes set
// (non-zero), the prior record's lifecycle flips to revised with its
// statement text preserved verbatim, and the new record cross-references it.
func (r *Registry) Register(statement string, tier model.Tier, scope, evidence []string, supersedes int) (int, error) {
	if statement == "" {
		return 0, fmt.Errorf("register: empty statement")
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	var old model.ConstraintRecord
	if supersedes != 0 {
		var ok bool
		old, ok = r.current[supersedes]
		if !ok {
			return 0, &IntegrityError{ID: supersedes, Msg: "supersedes unknown constraint"}
		}
		if old.State.Terminal() {
			return 0, &IntegrityError{ID: supersedes, Msg: "cannot supersede a " + string(old.State) + " record"}
		}
	}

	id, err := r.reserveID()
	if err != nil {
		return 0, err
	}

	now := time.Now().UTC()
	rec := model.ConstraintRecord{
		ID:        id,
		Statement: statement,
		Tier:      tier,
		Scope:     scope,
		Evidence:  evidence,
		State:     model.LifecycleActive,
		CreatedAt: now,
	}
	if supersedes != 0 {
		rec.Refs = append(rec.Refs, model.ConstraintRef{ID: supersedes, Relation: model.RelSupersedes})

		revised := old
		revised.State = model.LifecycleRevised
		revised.Reason = fmt.Sprintf("superseded by constraint %d", id)
		revised.UpdatedAt = now
		revised.Refs = append(append([]model.ConstraintRef{}, old.Refs...),
			model.ConstraintRef{ID: id, Relation: model.RelRevises})
		if err := r.append(revised); err != nil {
			return 0, err
		}
	}
	if err := r.append(rec); err != nil {
		return 0, err
	}
	return id, nil
}

// Retract flips an active record to retracted. A non-empty reason is
// required; the record itself is preserved.
func (r *Registry) Retract(id int, reason string) error {
	if reason == "" {
		return fmt.Errorf("retract constraint %d: empty reason", id)
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.current[id]
	if !ok {
		return &IntegrityError{ID: id, Msg: "unknown constraint"}
	}
	if rec.State.Terminal() {
		return &IntegrityError{ID: id, Msg: "already " + string(rec.State)}
	}
	rec.State = model.LifecycleRetracted
	rec.Reason = reason
	rec.UpdatedAt = time.Now().UTC()
	return r.append(rec)
}

// Filter selects constraint records. Zero values mean "any".
type Filter struct {
	Scope      string      // A scope tag the record must cover
	MaxTier    *model.Tier // Inclusive tier ceiling (lower tier = stronger)
	ActiveOnly bool
}

// Query returns the current view of matching records in id order.
func (r *Registry) Query(f Filter) []model.ConstraintRecord {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]model.ConstraintRecord, 0, len(r.current))
	for _, rec := range r.current {
		if f.ActiveOnly && rec.State != model.LifecycleActive {
			continue
		}
		if f.MaxTier != nil && rec.Tier > *f.MaxTier {
			continue
		}
		if f.Scope != "" && !rec.InScope(f.Scope) {
			continue
		}
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Get returns the current version of one record.
func (r *Registry) Get(id int) (model.ConstraintRecord, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.current[id]
	return rec, ok
}

// History returns every logged version of one record, in append order.
func (r *Registry) History(id int) []model.ConstraintRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.ConstraintRecord
	for _, rec := range r.log {
		if rec.ID == id {
			out = append(out, rec)
		}
	}
	return out
}

// append writes one JSONL line and updates the in-memory view.
func (r *Registry) append(rec model.ConstraintRecord) error {
	f, err := os.OpenFile(r.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open registry for append: %w", err)
	}
	defer f.Close()

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal constraint %d: %w", rec.ID, err)
	}
	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("append constraint %d: %w", rec.ID, err)
	}
	r.log = append(r.log, rec)
	r.current[rec.ID] = rec
	return nil
}

// reserveID claims the next free id by creating a claim file with O_EXCL.
// A concurrent writer claiming the same id loses the create and moves to
// the next candidate: collision detection without a lock. Claimed ids are
// never returned to the pool, so ids stay globally unique and monotone even
// across crashed registrations.
func (r *Registry) reserveID() (int, error) {
	candidate := r.maxKnownID() + 1
	for attempt := 0; attempt < maxClaimAttempts; attempt++ {
		claim := filepath.Join(r.seqDir, fmt.Sprintf("%08d", candidate))
		f, err := os.OpenFile(claim, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
		if err == nil {
			f.Close()
			return candidate, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return 0, fmt.Errorf("reserve constraint id: %w", err)
		}
		candidate++
	}
	return 0, fmt.Errorf("reserve constraint id: no free id after %d attempts", maxClaimAttempts)
}

// maxKnownID scans loaded records and existing claims so a fresh process
// starts past every id other writers reserved.
func (r *Registry) maxKnownID() int {
	maxID := 0
	for id := range r.current {
		if id > maxID {
			maxID = id
		}
	}
	entries, err := os.ReadDir(r.seqDir)
	if err != nil {
		return maxID
	}
	for _, e := range entries {
		var id int
		if _, err := fmt.Sscanf(e.Name(), "%d", &id); err == nil && id > maxID {
			maxID = id
		}
	}
	return maxID
}
