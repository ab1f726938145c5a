// Package dispatch is the host side of the console: it executes submitted
// lines, routes chat to personalities and keeps the session state (active
// model, focus, group, topic) that the console header shows.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/doeshing/persona-go/internal/application/console"
	"github.com/doeshing/persona-go/internal/domain"
	"github.com/doeshing/persona-go/internal/pkg/debounce"
	"github.com/doeshing/persona-go/internal/ports"
)

// memoryLimit bounds the per-personality conversation memory.
const memoryLimit = 20

// defaultUserName labels user messages when preferences leave it blank.
const defaultUserName = "You"

// Masker hides credentials in echoed command lines.
type Masker interface {
	Mask(command string) string
}

// Dependencies are the adapters a Service needs.
type Dependencies struct {
	Personalities   ports.PersonalityRepository
	ProviderFactory ports.ProviderFactory
	Masker          Masker
	Logger          ports.Logger
	// Saver delays personality settings writes; nil saves immediately.
	Saver *debounce.Debouncer
	// Setenv defaults to os.Setenv.
	Setenv func(key, value string) error
}

// Service implements ports.Host.
type Service struct {
	cfg   domain.Config
	table console.Table
	deps  Dependencies

	mu     sync.Mutex
	model  domain.ModelDefinition
	focus  string
	group  []string
	topic  string
	memory map[string][]domain.ChatMessage

	saveMu  sync.Mutex
	pending map[string]domain.Personality
}

// New builds a dispatcher for cfg. The default model is selected up front.
func New(cfg domain.Config, table console.Table, deps Dependencies) (*Service, error) {
	if deps.Personalities == nil || deps.ProviderFactory == nil {
		return nil, errors.New("dispatch.Service dependencies not satisfied")
	}
	if deps.Setenv == nil {
		deps.Setenv = os.Setenv
	}
	s := &Service{
		cfg:     cfg,
		table:   table,
		deps:    deps,
		topic:   cfg.Preferences.Topic,
		memory:  map[string][]domain.ChatMessage{},
		pending: map[string]domain.Personality{},
	}
	if model, err := s.cfg.GetDefaultModel(); err == nil {
		s.model = model
	} else if len(cfg.Models) > 0 {
		s.model = cfg.Models[0]
	}
	return s, nil
}

// Dispatch executes one submitted line. Execution problems come back as
// error entries; the returned error is reserved for cancellation.
func (s *Service) Dispatch(ctx context.Context, line string) (domain.DispatchResult, error) {
	var res domain.DispatchResult
	line = strings.TrimSpace(line)
	if line == "" {
		return res, nil
	}
	if err := ctx.Err(); err != nil {
		return res, err
	}

	s.mu.Lock()
	chatting := s.focus != "" || len(s.group) > 0
	s.mu.Unlock()

	if chatting && !console.HasForcePrefix(line) {
		s.chat(ctx, line, &res)
		return res, ctx.Err()
	}
	s.command(ctx, line, &res)
	return res, ctx.Err()
}

// Models lists the configured models.
func (s *Service) Models(context.Context) ([]domain.ModelDefinition, error) {
	if len(s.cfg.Models) == 0 {
		return nil, console.ErrNoModels
	}
	out := make([]domain.ModelDefinition, len(s.cfg.Models))
	copy(out, s.cfg.Models)
	return out, nil
}

// Personalities lists the catalogue.
func (s *Service) Personalities(ctx context.Context) ([]domain.Personality, error) {
	return s.deps.Personalities.List(ctx)
}

// SelectModel switches the active model.
func (s *Service) SelectModel(_ context.Context, name string) (domain.DispatchResult, error) {
	var res domain.DispatchResult
	model, ok := s.findModel(name)
	if !ok {
		res.Add(domain.OutputError, fmt.Sprintf("Unknown model '%s'. Available: %s.", name, strings.Join(s.cfg.ModelNames(), ", ")), "")
		return res, nil
	}
	s.mu.Lock()
	s.model = model
	s.mu.Unlock()

	res.Add(domain.OutputResponse, fmt.Sprintf("Model set to %s (%s).", model.Name, model.Kind()), "")
	res.Request(domain.EffectModelChanged, model.Name)
	s.info("model selected", map[string]interface{}{"model": model.Name})
	return res, nil
}

// SelectGroup starts a group chat with the named personalities.
func (s *Service) SelectGroup(ctx context.Context, names []string) (domain.DispatchResult, error) {
	var res domain.DispatchResult
	members := make([]string, 0, len(names))
	seen := map[string]bool{}
	for _, name := range names {
		p, err := s.deps.Personalities.Get(ctx, name)
		if err != nil {
			res.Add(domain.OutputError, s.unknownPersonality(ctx, name), "")
			return res, nil
		}
		if seen[p.ID] {
			continue
		}
		seen[p.ID] = true
		members = append(members, p.Name)
	}
	if len(members) < console.MinGroupSize {
		res.Add(domain.OutputWarning, capitalize(console.ErrNotEnoughCandidates.Error())+".", "")
		return res, nil
	}

	s.mu.Lock()
	s.focus = ""
	s.group = members
	s.mu.Unlock()

	label := strings.Join(members, ", ")
	res.Add(domain.OutputResponse, fmt.Sprintf("Group chat with %s. Type %sunfocus to leave.", label, console.ForcePrefix), "")
	res.Request(domain.EffectFocus, label)
	return res, nil
}

// Status snapshots the session.
func (s *Service) Status() domain.SessionStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	group := make([]string, len(s.group))
	copy(group, s.group)
	return domain.SessionStatus{
		User:     s.userName(),
		Model:    s.model.Name,
		Provider: string(s.model.Kind()),
		Topic:    s.topic,
		Focus:    s.focus,
		Group:    group,
	}
}

// ChatTarget is the label the console shows while chatting; empty otherwise.
func (s *Service) ChatTarget() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.focus != "" {
		return s.focus
	}
	return strings.Join(s.group, ", ")
}

func (s *Service) findModel(name string) (domain.ModelDefinition, bool) {
	for _, model := range s.cfg.Models {
		if strings.EqualFold(model.Name, name) {
			return model, true
		}
	}
	return domain.ModelDefinition{}, false
}

func (s *Service) currentModel() domain.ModelDefinition {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.model
}

func (s *Service) userName() string {
	if name := strings.TrimSpace(s.cfg.Preferences.UserName); name != "" {
		return name
	}
	return defaultUserName
}

func (s *Service) remember(id string, msgs ...domain.ChatMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	history := append(s.memory[id], msgs...)
	if len(history) > memoryLimit {
		history = history[len(history)-memoryLimit:]
	}
	s.memory[id] = history
}

func (s *Service) recall(id string) []domain.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.ChatMessage, len(s.memory[id]))
	copy(out, s.memory[id])
	return out
}

func (s *Service) info(msg string, fields map[string]interface{}) {
	if s.deps.Logger != nil {
		s.deps.Logger.Info(msg, fields)
	}
}

func (s *Service) warn(msg string, fields map[string]interface{}) {
	if s.deps.Logger != nil {
		s.deps.Logger.Warn(msg, fields)
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

var _ ports.Host = (*Service)(nil)
