package dispatch

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/doeshing/persona-go/internal/domain"
	"github.com/doeshing/persona-go/internal/ports"
)

// chat sends a user line to the focused personality or to every group member.
func (s *Service) chat(ctx context.Context, line string, res *domain.DispatchResult) {
	s.mu.Lock()
	targets := s.group
	if s.focus != "" {
		targets = []string{s.focus}
	}
	targets = append([]string(nil), targets...)
	topic := s.topic
	user := s.userName()
	s.mu.Unlock()

	res.Add(domain.OutputUserMessage, line, user)

	members := make([]domain.Personality, 0, len(targets))
	for _, name := range targets {
		p, err := s.latest(ctx, name)
		if err != nil {
			res.Add(domain.OutputError, s.unknownPersonality(ctx, name), "")
			continue
		}
		members = append(members, p)
	}

	others := func(self string) string {
		var names []string
		for _, m := range members {
			if m.Name != self {
				names = append(names, m.Name)
			}
		}
		return strings.Join(names, ", ")
	}

	warned := map[string]bool{}
	var replies []domain.ChatMessage
	for _, p := range members {
		if ctx.Err() != nil {
			return
		}
		data := promptData{Topic: topic, User: user}
		if len(members) > 1 {
			data.Group = others(p.Name)
		}
		turn := make([]domain.ChatMessage, 0, len(replies)+1)
		turn = append(turn, domain.ChatMessage{Role: domain.RoleUser, Content: line})
		turn = append(turn, replies...)
		text, err := s.reply(ctx, p, data, turn, warned, res)
		if err != nil {
			res.Add(domain.OutputError, fmt.Sprintf("%s could not reply: %v", p.Name, err), "")
			continue
		}
		s.remember(p.ID,
			domain.ChatMessage{Role: domain.RoleUser, Content: line},
			domain.ChatMessage{Role: domain.RoleAssistant, Content: text},
		)
		res.Add(domain.OutputAIResponse, text, p.Name)
		replies = append(replies, domain.ChatMessage{Role: domain.RoleUser, Content: p.Name + ": " + text})
	}
}

// reply asks p's provider for the next message. turn is appended to p's memory
// for this request only.
func (s *Service) reply(
	ctx context.Context,
	p domain.Personality,
	data promptData,
	turn []domain.ChatMessage,
	warned map[string]bool,
	res *domain.DispatchResult,
) (string, error) {
	model := s.modelFor(p)
	provider, err := s.deps.ProviderFactory.ForModel(model)
	if err != nil {
		return "", err
	}
	s.noteOffline(provider, warned, res)

	messages := append(s.recall(p.ID), turn...)
	start := time.Now()
	resp, err := provider.Chat(ctx, ports.ChatRequest{
		System:      systemPrompt(p, data),
		Messages:    messages,
		Temperature: p.Temperature,
		MaxTokens:   p.MaxTokens,
	})
	if err != nil {
		s.warn("provider chat failed", map[string]interface{}{"personality": p.Name, "model": model.Name, "error": err.Error()})
		return "", err
	}
	s.info("provider replied", map[string]interface{}{
		"personality": p.Name,
		"provider":    provider.Name(),
		"elapsed_ms":  time.Since(start).Milliseconds(),
	})
	text := strings.TrimSpace(resp.Text)
	if text == "" {
		text = "..."
	}
	return text, nil
}

// talk lets two personalities exchange ChatRounds pairs of lines on the topic.
func (s *Service) talk(ctx context.Context, inv invocation, res *domain.DispatchResult) {
	a, err := s.latest(ctx, inv.args[0])
	if err != nil {
		res.Add(domain.OutputError, s.unknownPersonality(ctx, inv.args[0]), "")
		return
	}
	b, err := s.latest(ctx, inv.args[1])
	if err != nil {
		res.Add(domain.OutputError, s.unknownPersonality(ctx, inv.args[1]), "")
		return
	}
	if a.ID == b.ID {
		res.Add(domain.OutputError, "Pick two different personalities.", "")
		return
	}

	s.mu.Lock()
	topic := s.topic
	s.mu.Unlock()
	if topic == "" {
		topic = "whatever comes to mind"
		res.Add(domain.OutputWarning, "No topic set; use 'topic <text>' to steer the conversation.", "")
	}
	rounds := s.cfg.Preferences.ChatRounds
	if rounds <= 0 {
		rounds = domain.DefaultChatRounds
	}

	type line struct {
		speaker string
		text    string
	}
	var transcript []line
	// view renders the conversation from speaker's side.
	view := func(speaker string) []domain.ChatMessage {
		msgs := []domain.ChatMessage{{Role: domain.RoleUser, Content: fmt.Sprintf("Start a conversation about %s.", topic)}}
		for _, l := range transcript {
			role := domain.RoleUser
			if l.speaker == speaker {
				role = domain.RoleAssistant
			}
			msgs = append(msgs, domain.ChatMessage{Role: role, Content: l.text})
		}
		if msgs[len(msgs)-1].Role == domain.RoleAssistant {
			msgs = append(msgs, domain.ChatMessage{Role: domain.RoleUser, Content: "(silence)"})
		}
		return msgs
	}

	warned := map[string]bool{}
	speakers := [2]domain.Personality{a, b}
	for i := 0; i < rounds*2; i++ {
		if ctx.Err() != nil {
			return
		}
		speaker, listener := speakers[i%2], speakers[(i+1)%2]
		text, err := s.converse(ctx, speaker, listener, topic, view(speaker.Name), warned, res)
		if err != nil {
			res.Add(domain.OutputError, fmt.Sprintf("%s could not reply: %v", speaker.Name, err), "")
			return
		}
		transcript = append(transcript, line{speaker: speaker.Name, text: text})
		res.Add(domain.OutputCommunication, text, speaker.Name+" → "+listener.Name)
	}
}

func (s *Service) converse(
	ctx context.Context,
	speaker, listener domain.Personality,
	topic string,
	messages []domain.ChatMessage,
	warned map[string]bool,
	res *domain.DispatchResult,
) (string, error) {
	model := s.modelFor(speaker)
	provider, err := s.deps.ProviderFactory.ForModel(model)
	if err != nil {
		return "", err
	}
	s.noteOffline(provider, warned, res)
	resp, err := provider.Chat(ctx, ports.ChatRequest{
		System:      systemPrompt(speaker, promptData{Topic: topic, Partner: listener.Name}),
		Messages:    messages,
		Temperature: speaker.Temperature,
		MaxTokens:   speaker.MaxTokens,
	})
	if err != nil {
		return "", err
	}
	return valueOr(strings.TrimSpace(resp.Text), "..."), nil
}

// ask sends a one-off question to a named model without any personality.
func (s *Service) ask(ctx context.Context, inv invocation, res *domain.DispatchResult) {
	model, ok := s.findModel(inv.args[0])
	if !ok {
		res.Add(domain.OutputError, fmt.Sprintf("Unknown model '%s'. Available: %s.", inv.args[0], strings.Join(s.cfg.ModelNames(), ", ")), "")
		return
	}
	question := strings.TrimSpace(strings.TrimPrefix(inv.rest, inv.args[0]))
	provider, err := s.deps.ProviderFactory.ForModel(model)
	if err != nil {
		res.Add(domain.OutputError, fmt.Sprintf("Model %s is unavailable: %v", model.Name, err), "")
		return
	}
	s.noteOffline(provider, map[string]bool{}, res)
	resp, err := provider.Chat(ctx, ports.ChatRequest{
		Messages:  []domain.ChatMessage{{Role: domain.RoleUser, Content: question}},
		MaxTokens: model.MaxTokens,
	})
	if err != nil {
		res.Add(domain.OutputError, fmt.Sprintf("%s failed: %v", model.Name, err), "")
		return
	}
	res.Add(domain.OutputExternalLLMResponse, valueOr(strings.TrimSpace(resp.Text), "..."), model.Name)
}

// modelFor picks the personality's own model when configured, else the active one.
func (s *Service) modelFor(p domain.Personality) domain.ModelDefinition {
	if p.Model != "" {
		if model, ok := s.findModel(p.Model); ok {
			return model
		}
	}
	return s.currentModel()
}

func (s *Service) noteOffline(provider ports.Provider, warned map[string]bool, res *domain.DispatchResult) {
	notice, ok := provider.(ports.OfflineNotice)
	if !ok {
		return
	}
	reason := notice.OfflineReason()
	name := provider.Model().Name
	if reason == "" || warned[name] {
		return
	}
	warned[name] = true
	res.Add(domain.OutputWarning, fmt.Sprintf("Model %s is replying offline: %s.", name, reason), "")
}
