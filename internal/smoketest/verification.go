package smoketest

import (
	"fmt"

	"github.com/okian/headcount/internal/domain/model"
)

// Verify checks one snapshot against the invariants a running monitor keeps.
// prev is the previous poll, or nil for the first.
func Verify(cfg *Config, prev *model.Snapshot, snap *model.Snapshot) []error {
	var errs []error

	if cfg.WindowSize > 0 && snap.WindowLen > cfg.WindowSize {
		errs = append(errs, fmt.Errorf("window length %d exceeds %d", snap.WindowLen, cfg.WindowSize))
	}
	if snap.FaceCount < 0 {
		errs = append(errs, fmt.Errorf("negative face count %d", snap.FaceCount))
	}
	if snap.HasAverage && snap.AverageCount < 0 {
		errs = append(errs, fmt.Errorf("negative average %.1f", snap.AverageCount))
	}
	if snap.WindowLen > 0 && !snap.HasAverage {
		errs = append(errs, fmt.Errorf("window has %d samples but no average", snap.WindowLen))
	}
	if !snap.OverlayEnabled && len(snap.Regions) > 0 {
		errs = append(errs, fmt.Errorf("overlay disabled but %d regions present", len(snap.Regions)))
	}
	if snap.OverlayEnabled && len(snap.Regions) > 0 && len(snap.Regions) != snap.FaceCount {
		errs = append(errs, fmt.Errorf("%d regions for face count %d", len(snap.Regions), snap.FaceCount))
	}
	if snap.OverlayEnabled {
		for i, r := range snap.Regions {
			if r.Width() <= 0 || r.Height() <= 0 {
				errs = append(errs, fmt.Errorf("region %d is empty: %.0fx%.0f", i, r.Width(), r.Height()))
			}
		}
	}
	errs = append(errs, VerifyLog(cfg, snap.AttendanceLog)...)

	if prev != nil && prev.SessionID == snap.SessionID && snap.Tick < prev.Tick {
		errs = append(errs, fmt.Errorf("tick went backwards: %d -> %d", prev.Tick, snap.Tick))
	}
	return errs
}

// VerifyLog checks capacity, head-first order and that each kind agrees with
// the count it moved from.
func VerifyLog(cfg *Config, log []model.AttendanceEvent) []error {
	var errs []error
	if cfg.LogSize > 0 && len(log) > cfg.LogSize {
		errs = append(errs, fmt.Errorf("attendance log length %d exceeds %d", len(log), cfg.LogSize))
	}
	for i := 0; i+1 < len(log); i++ {
		newer, older := log[i], log[i+1]
		if newer.Timestamp.Before(older.Timestamp) {
			errs = append(errs, fmt.Errorf("event %d is older than event %d", i, i+1))
		}
		switch newer.Kind {
		case model.KindAppeared:
			if newer.Count <= older.Count {
				errs = append(errs, fmt.Errorf("event %d appeared at %d after %d", i, newer.Count, older.Count))
			}
		case model.KindDisappeared:
			if newer.Count >= older.Count {
				errs = append(errs, fmt.Errorf("event %d disappeared at %d after %d", i, newer.Count, older.Count))
			}
		case model.KindChange:
			errs = append(errs, fmt.Errorf("event %d has kind change", i))
		}
	}
	return errs
}
