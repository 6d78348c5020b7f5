package domain

import "time"

// UnitStamp is the per-unit state recorded at the end of a successful build.
type UnitStamp struct {
	ModTimeNano int64  `json:"mod_time_ns"`
	ContentHash uint64 `json:"content_hash"`
}

// Watermark marks what the last successful build saw, one stamp per unit
// path. Durable across process restarts via the watermark store.
type Watermark struct {
	BuiltAt time.Time            `json:"built_at"`
	Units   map[string]UnitStamp `json:"units"`
}

// NewWatermark captures stamps for every unit in the snapshot.
func NewWatermark(snapshot *ProjectSnapshot) *Watermark {
	wm := &Watermark{
		BuiltAt: time.Now(),
		Units:   make(map[string]UnitStamp, len(snapshot.Units)),
	}
	for _, u := range snapshot.Units {
		wm.Units[u.Path] = UnitStamp{
			ModTimeNano: u.ModTime.UnixNano(),
			ContentHash: u.ContentHash,
		}
	}
	return wm
}

// Changed reports whether the unit differs from its recorded stamp. Units
// never stamped count as changed. A newer modification time or a differing
// content hash (when both sides have one) marks the unit.
func (w *Watermark) Changed(u *CompilationUnit) bool {
	if w == nil || w.Units == nil {
		return true
	}
	stamp, ok := w.Units[u.Path]
	if !ok {
		return true
	}
	if u.ModTime.UnixNano() > stamp.ModTimeNano {
		return true
	}
	if u.ContentHash != 0 && stamp.ContentHash != 0 && u.ContentHash != stamp.ContentHash {
		return true
	}
	return false
}
