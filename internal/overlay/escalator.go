package overlay

import (
	"go.uber.org/zap"

	"github.com/dshills/statusicons/internal/metrics"
	"github.com/dshills/statusicons/internal/vcs"
)

// Escalator decides whether an item needs a deeper status fetch.
type Escalator struct {
	settings  Settings
	statuses  StatusSource
	requester Requester
	log       *zap.Logger
}

// NewEscalator creates an Escalator.
func NewEscalator(settings Settings, statuses StatusSource, requester Requester, log *zap.Logger) *Escalator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Escalator{settings: settings, statuses: statuses, requester: requester, log: log}
}

// MaybeEscalate requests the next tier for item when mode asks for more
// than the cache holds. Remote requests are skipped while a fetch is in
// flight or the remote tier is known; local requests only fire from
// LevelNone. The request is fire-and-forget.
func (e *Escalator) MaybeEscalate(item Item, mode vcs.Mode) {
	if item == nil || !e.settings.Enabled() {
		return
	}

	st := e.statuses.Status(item.AssetPath())
	key := st.AssetPath
	if key == "" {
		key = item.AssetPath()
	}
	if key == "" {
		return
	}

	switch {
	case mode == vcs.ModeRemote &&
		st.ReflectionLevel != vcs.LevelPending &&
		st.ReflectionLevel != vcs.LevelRepository:
		e.request(key, vcs.TierRemote)
	case mode == vcs.ModeLocal && st.ReflectionLevel == vcs.LevelNone:
		e.request(key, vcs.TierLocal)
	}
}

func (e *Escalator) request(path string, tier vcs.Tier) {
	e.log.Debug("escalating", zap.String("path", path), zap.Stringer("tier", tier))
	metrics.RecordEscalation(tier.String())
	e.requester.RequestStatus(path, tier)
}
