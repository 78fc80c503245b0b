// -----------------------------------------------------------------------
// Broadcast manager
//
// Holds runtime overrides keyed by cycle point and namespace. "*"
// matches every cycle point. Settings use dotted keys for the map
// fields, e.g. "environment.FOO".
// -----------------------------------------------------------------------

package broadcasts

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/cursus/internal/interfaces"
	"github.com/ternarybob/cursus/internal/models"
	"github.com/ternarybob/cursus/internal/schemas"
)

// AllCyclePoints matches broadcasts against every cycle point.
const AllCyclePoints = "*"

// Service implements interfaces.BroadcastManager.
var _ interfaces.BroadcastManager = (*Service)(nil)

type Service struct {
	mu     sync.RWMutex
	logger arbor.ILogger
	// settings[point][namespace][key] = value
	settings map[string]map[string]map[string]string
}

// NewService creates an empty broadcast manager.
func NewService(logger arbor.ILogger) *Service {
	return &Service{
		logger:   logger,
		settings: map[string]map[string]map[string]string{},
	}
}

// Put registers overrides for a (point, namespaces) pair.
func (s *Service) Put(point string, namespaces []string, settings map[string]string) error {
	if point == "" {
		point = AllCyclePoints
	}
	if len(namespaces) == 0 {
		return fmt.Errorf("broadcast requires at least one namespace")
	}
	for key := range settings {
		if !validSettingKey(key) {
			return fmt.Errorf("invalid broadcast setting: %q", key)
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	byNS, ok := s.settings[point]
	if !ok {
		byNS = map[string]map[string]string{}
		s.settings[point] = byNS
	}
	for _, ns := range namespaces {
		existing, ok := byNS[ns]
		if !ok {
			existing = map[string]string{}
			byNS[ns] = existing
		}
		for key, value := range settings {
			existing[key] = value
		}
	}
	s.logger.Info().
		Str("point", point).
		Strs("namespaces", namespaces).
		Int("settings", len(settings)).
		Msg("Broadcast set")
	return nil
}

func validSettingKey(key string) bool {
	base := key
	if idx := strings.Index(key, "."); idx >= 0 {
		base = key[:idx]
	}
	switch base {
	case "platform", "script", "pre_script", "post_script",
		"execution_time_limit", "environment", "directives", "outputs":
		return true
	}
	return false
}

// ApplyBroadcast overlays matching settings onto a runtime; reports
// whether anything changed. Namespaces are applied root first and leaf
// last so the most specific override wins.
func (s *Service) ApplyBroadcast(point string, namespaces []string, rt *schemas.Runtime) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	changed := false
	// Root-most overrides apply first; leaf-most overwrite them.
	names := make([]string, 0, len(namespaces))
	for _, nsID := range namespaces {
		names = append(names, namespaceName(nsID))
	}
	for i := len(names) - 1; i >= 0; i-- {
		for _, pt := range []string{AllCyclePoints, point} {
			byNS, ok := s.settings[pt]
			if !ok {
				continue
			}
			overrides, ok := byNS[names[i]]
			if !ok {
				continue
			}
			for key, value := range overrides {
				if applySetting(rt, key, value) {
					changed = true
				}
			}
		}
	}
	return changed
}

// namespaceName extracts the task/family name from either a bare name
// or a live proxy id.
func namespaceName(ns string) string {
	if !strings.HasPrefix(ns, "~") {
		return ns
	}
	tokens, err := models.ParseTokens(ns)
	if err != nil {
		return ns
	}
	return tokens.Task
}

func applySetting(rt *schemas.Runtime, key, value string) bool {
	if idx := strings.Index(key, "."); idx >= 0 {
		sub := key[idx+1:]
		var target *map[string]string
		switch key[:idx] {
		case "environment":
			target = &rt.Environment
		case "directives":
			target = &rt.Directives
		case "outputs":
			target = &rt.Outputs
		default:
			return false
		}
		if *target == nil {
			*target = map[string]string{}
		}
		if (*target)[sub] == value {
			return false
		}
		(*target)[sub] = value
		return true
	}
	var field *string
	switch key {
	case "platform":
		field = &rt.Platform
	case "script":
		field = &rt.Script
	case "pre_script":
		field = &rt.PreScript
	case "post_script":
		field = &rt.PostScript
	case "execution_time_limit":
		field = &rt.ExecutionTimeLimit
	default:
		return false
	}
	if *field == value {
		return false
	}
	*field = value
	return true
}

// Expire drops broadcasts for points before the given one; returns how
// many point entries were dropped.
func (s *Service) Expire(oldestPoint string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	dropped := 0
	for point := range s.settings {
		if point == AllCyclePoints {
			continue
		}
		if models.ComparePoints(point, oldestPoint) < 0 {
			delete(s.settings, point)
			dropped++
		}
	}
	if dropped > 0 {
		s.logger.Info().
			Int("count", dropped).
			Str("oldest_point", oldestPoint).
			Msg("Expired broadcasts")
	}
	return dropped
}

// Dump serializes the active broadcasts for the workflow record.
func (s *Service) Dump() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, err := json.Marshal(s.settings)
	if err != nil {
		return "{}"
	}
	return string(data)
}
