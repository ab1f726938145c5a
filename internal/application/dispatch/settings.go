package dispatch

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/doeshing/persona-go/internal/domain"
)

func (s *Service) setTemperature(ctx context.Context, inv invocation, res *domain.DispatchResult) {
	value, _ := strconv.ParseFloat(inv.args[0], 64)
	s.updateFocused(ctx, res, func(p *domain.Personality) string {
		p.Temperature = domain.Float(value)
		return fmt.Sprintf("%s's temperature set to %s.", p.Name, strconv.FormatFloat(value, 'f', -1, 64))
	})
}

func (s *Service) setMaxTokens(ctx context.Context, inv invocation, res *domain.DispatchResult) {
	value, _ := strconv.ParseFloat(inv.args[0], 64)
	s.updateFocused(ctx, res, func(p *domain.Personality) string {
		p.MaxTokens = int(value)
		return fmt.Sprintf("%s's max tokens set to %d.", p.Name, p.MaxTokens)
	})
}

func (s *Service) setVoice(ctx context.Context, inv invocation, res *domain.DispatchResult) {
	provider := strings.ToLower(inv.args[0])
	s.updateFocused(ctx, res, func(p *domain.Personality) string {
		p.Voice.Provider = provider
		return fmt.Sprintf("%s's voice provider set to %s.", p.Name, provider)
	})
}

// updateFocused edits the focused personality and schedules a save. Rapid
// successive edits collapse into one write.
func (s *Service) updateFocused(ctx context.Context, res *domain.DispatchResult, edit func(*domain.Personality) string) {
	s.mu.Lock()
	focus := s.focus
	s.mu.Unlock()
	if focus == "" {
		res.Add(domain.OutputError, "Focus a personality first (focus <name>).", "")
		return
	}

	p, err := s.latest(ctx, focus)
	if err != nil {
		res.Add(domain.OutputError, s.unknownPersonality(ctx, focus), "")
		return
	}
	msg := edit(&p)

	s.saveMu.Lock()
	s.pending[p.ID] = p
	s.saveMu.Unlock()
	if s.deps.Saver == nil {
		s.flushSettings()
	} else {
		s.deps.Saver.Debounce(s.flushSettings)
	}
	res.Add(domain.OutputResponse, msg, "")
}

// latest returns the pending copy of a personality if one is waiting to be
// saved, so consecutive edits build on each other.
func (s *Service) latest(ctx context.Context, name string) (domain.Personality, error) {
	p, err := s.deps.Personalities.Get(ctx, name)
	if err != nil {
		return p, err
	}
	s.saveMu.Lock()
	defer s.saveMu.Unlock()
	if pending, ok := s.pending[p.ID]; ok {
		return pending, nil
	}
	return p, nil
}

// Flush writes any pending settings changes now.
func (s *Service) Flush() {
	if s.deps.Saver != nil {
		s.deps.Saver.Immediate(s.flushSettings)
		return
	}
	s.flushSettings()
}

func (s *Service) flushSettings() {
	s.saveMu.Lock()
	pending := s.pending
	s.pending = map[string]domain.Personality{}
	s.saveMu.Unlock()

	for _, p := range pending {
		if err := s.deps.Personalities.Save(context.Background(), p); err != nil {
			s.warn("personality settings save failed", map[string]interface{}{"personality": p.Name, "error": err.Error()})
			continue
		}
		s.info("personality settings saved", map[string]interface{}{"personality": p.Name})
	}
}
