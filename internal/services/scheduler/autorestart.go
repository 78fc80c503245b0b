// -----------------------------------------------------------------------
// Auto-restart planner
//
// Periodic plugin that migrates the workflow off condemned hosts: a
// plain entry schedules a stop-and-restart on an alternate host after a
// random stagger; a trailing "!" forces a stop without restart.
// -----------------------------------------------------------------------

package scheduler

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/cursus/internal/common"
)

// Restart modes.
type restartMode int

const (
	restartModeNone restartMode = iota
	// restartModeRestartNormal stops and restarts on another host.
	restartModeRestartNormal
	// restartModeStopForce stops without restarting ("!" suffix).
	restartModeStopForce
)

// autoRestartPlanner decides if the workflow must migrate hosts.
type autoRestartPlanner struct {
	logger     arbor.ILogger
	host       string
	loadConfig func() (*common.AutoRestartConfig, error)
	selectHost func(available []string) (string, error)
	randFloat  func() float64

	mode        restartMode
	restartTime *time.Time
	targetHost  string
}

func newAutoRestartPlanner(
	host string,
	loadConfig func() (*common.AutoRestartConfig, error),
	logger arbor.ILogger,
) *autoRestartPlanner {
	return &autoRestartPlanner{
		logger:     logger,
		host:       host,
		loadConfig: loadConfig,
		selectHost: defaultSelectHost,
		randFloat:  rand.Float64,
	}
}

func defaultSelectHost(available []string) (string, error) {
	if len(available) == 0 {
		return "", fmt.Errorf("no available hosts")
	}
	return available[0], nil
}

// check runs one planner pass. Config is loaded fresh each call; load
// failures skip the tick.
func (p *autoRestartPlanner) check(now time.Time) error {
	cfg, err := p.loadConfig()
	if err != nil {
		p.logger.Warn().Err(err).Msg("Auto-restart: could not load configuration, skipping")
		return nil
	}
	if !cfg.Enabled {
		return nil
	}

	mode := restartModeNone
	for _, entry := range cfg.CondemnedHosts {
		name := strings.TrimSuffix(entry, "!")
		if name != p.host {
			continue
		}
		if strings.HasSuffix(entry, "!") {
			mode = restartModeStopForce
		} else {
			mode = restartModeRestartNormal
		}
		break
	}
	if mode == restartModeNone || p.mode == mode {
		return nil
	}

	switch mode {
	case restartModeStopForce:
		p.logger.Warn().
			Str("host", p.host).
			Msg("The Cursus workflow will be shutdown as the host is unable to continue running it")
		p.scheduleStop(mode, now, cfg)
	case restartModeRestartNormal:
		target, err := p.selectHost(alternateHosts(cfg.AvailableHosts, p.host))
		if err != nil {
			p.logger.Error().
				Err(err).
				Msg("Workflow cannot be immediately restarted: no alternate host available")
			return nil
		}
		p.targetHost = target
		p.logger.Info().
			Str("host", p.host).
			Str("target", target).
			Msg("The workflow will automatically restart on a different host")
		p.scheduleStop(mode, now, cfg)
	}
	return nil
}

func alternateHosts(available []string, self string) []string {
	var out []string
	for _, host := range available {
		if host != self {
			out = append(out, host)
		}
	}
	return out
}

// scheduleStop sets the restart deadline with a random stagger in
// [0, restart_delay] to avoid a condemned-fleet stampede.
func (p *autoRestartPlanner) scheduleStop(mode restartMode, now time.Time, cfg *common.AutoRestartConfig) {
	delay := time.Duration(0)
	if maxDelay := common.Duration(cfg.RestartDelay, 0); maxDelay > 0 {
		delay = time.Duration(p.randFloat() * float64(maxDelay))
		p.logger.Info().Msgf("Workflow will restart in %ds", int(delay.Seconds()))
	}
	deadline := now.Add(delay)
	p.mode = mode
	p.restartTime = &deadline
}

// due reports whether the scheduled stop time has passed.
func (p *autoRestartPlanner) due(now time.Time) bool {
	return p.restartTime != nil && now.After(*p.restartTime)
}
