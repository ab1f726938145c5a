package dispatch

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/doeshing/persona-go/internal/application/console"
	"github.com/doeshing/persona-go/internal/domain"
)

type invocation struct {
	cmd  console.Command
	args []string
	// rest is the raw text after the command token.
	rest string
}

type handler func(s *Service, ctx context.Context, inv invocation, res *domain.DispatchResult)

var handlers = map[string]handler{
	"help":          (*Service).help,
	"clear":         effectOnly(domain.EffectClearLog),
	"models":        (*Service).listModels,
	"model":         (*Service).switchModel,
	"group":         (*Service).showGroup,
	"personalities": (*Service).listPersonalities,
	"focus":         (*Service).focusOn,
	"unfocus":       (*Service).unfocus,
	"talk":          (*Service).talk,
	"ask":           (*Service).ask,
	"temperature":   (*Service).setTemperature,
	"maxtokens":     (*Service).setMaxTokens,
	"voice":         (*Service).setVoice,
	"topic":         (*Service).setTopic,
	"login":         (*Service).login,
	"history":       effectOnly(domain.EffectShowHistory),
	"issues":        effectOnly(domain.EffectShowIssues),
	"search":        (*Service).search,
	"export":        (*Service).export,
	"copy":          effectOnly(domain.EffectCopyTranscript),
	"quit":          effectOnly(domain.EffectQuit),
}

func effectOnly(effect domain.Effect) handler {
	return func(_ *Service, _ context.Context, _ invocation, res *domain.DispatchResult) {
		res.Request(effect, "")
	}
}

func (s *Service) command(ctx context.Context, line string, res *domain.DispatchResult) {
	body := strings.TrimSpace(console.StripForcePrefix(line))
	fields := strings.Fields(body)
	if len(fields) == 0 {
		res.Add(domain.OutputWarning, "Type a command name, e.g. help.", "")
		return
	}
	cmd, ok := s.table.Resolve(fields[0])
	if !ok {
		res.Add(domain.OutputCommand, line, "")
		res.Add(domain.OutputError, console.Validate(body, "", s.table).Message, "")
		return
	}
	res.Add(domain.OutputCommand, s.echo(cmd, line), "")

	if v := console.CheckArgs(cmd, fields[1:]); !v.IsZero() {
		res.Add(domain.OutputError, v.Message, "")
		return
	}
	h, ok := handlers[cmd.Name]
	if !ok {
		res.Add(domain.OutputError, fmt.Sprintf("'%s' is not available here.", cmd.Name), "")
		return
	}
	inv := invocation{
		cmd:  cmd,
		args: fields[1:],
		rest: strings.TrimSpace(strings.TrimPrefix(body, fields[0])),
	}
	h(s, ctx, inv, res)
}

func (s *Service) echo(cmd console.Command, line string) string {
	if !cmd.Sensitive {
		return line
	}
	if s.deps.Masker != nil {
		if masked := s.deps.Masker.Mask(line); masked != line {
			return masked
		}
	}
	fields := strings.Fields(line)
	return fields[0] + " ********"
}

func (s *Service) help(_ context.Context, inv invocation, res *domain.DispatchResult) {
	if len(inv.args) > 0 {
		cmd, ok := s.table.Resolve(inv.args[0])
		if !ok {
			res.Add(domain.OutputError, console.Validate(inv.args[0], "", s.table).Message, "")
			return
		}
		text := fmt.Sprintf("%s: %s\nUsage: %s", cmd.Name, cmd.Description, cmd.Usage)
		if len(cmd.Aliases) > 0 {
			text += "\nAliases: " + strings.Join(cmd.Aliases, ", ")
		}
		res.Add(domain.OutputResponse, text, "")
		return
	}
	commands := s.table.Commands()
	width := 0
	for _, cmd := range commands {
		if len(cmd.Usage) > width {
			width = len(cmd.Usage)
		}
	}
	lines := make([]string, 0, len(commands)+1)
	lines = append(lines, "Commands:")
	for _, cmd := range commands {
		lines = append(lines, fmt.Sprintf("  %-*s  %s", width, cmd.Usage, cmd.Description))
	}
	lines = append(lines, fmt.Sprintf("While chatting, prefix commands with %s or %s.", console.ForcePrefix, console.AltForcePrefix))
	res.Add(domain.OutputResponse, strings.Join(lines, "\n"), "")
}

func (s *Service) listModels(_ context.Context, _ invocation, res *domain.DispatchResult) {
	if len(s.cfg.Models) == 0 {
		res.Add(domain.OutputWarning, capitalize(console.ErrNoModels.Error())+".", "")
		return
	}
	current := s.currentModel().Name
	lines := []string{"Models:"}
	for i, model := range s.cfg.Models {
		marker := " "
		if model.Name == current {
			marker = "*"
		}
		lines = append(lines, fmt.Sprintf(" %s %d. %s (%s)", marker, i+1, model.Name, model.Kind()))
	}
	res.Add(domain.OutputResponse, strings.Join(lines, "\n"), "")
}

func (s *Service) switchModel(ctx context.Context, inv invocation, res *domain.DispatchResult) {
	sel, _ := s.SelectModel(ctx, inv.args[0])
	res.Entries = append(res.Entries, sel.Entries...)
	res.Effects = append(res.Effects, sel.Effects...)
}

func (s *Service) showGroup(_ context.Context, _ invocation, res *domain.DispatchResult) {
	status := s.Status()
	if len(status.Group) == 0 {
		res.Add(domain.OutputResponse, "No group chat active.", "")
		return
	}
	res.Add(domain.OutputResponse, "Group: "+strings.Join(status.Group, ", "), "")
}

func (s *Service) listPersonalities(ctx context.Context, _ invocation, res *domain.DispatchResult) {
	list, err := s.deps.Personalities.List(ctx)
	if err != nil {
		res.Add(domain.OutputError, fmt.Sprintf("Could not load personalities: %v", err), "")
		return
	}
	if len(list) == 0 {
		res.Add(domain.OutputWarning, "No personalities yet. Create one with 'persona personality add'.", "")
		return
	}
	status := s.Status()
	lines := []string{"Personalities:"}
	for _, p := range list {
		marker := " "
		if strings.EqualFold(p.Name, status.Focus) || containsFold(status.Group, p.Name) {
			marker = "*"
		}
		model := valueOr(p.Model, status.Model)
		lines = append(lines, fmt.Sprintf(" %s %s (model %s, temperature %s)", marker, p.Name, model, strconv.FormatFloat(temperatureOf(p), 'f', -1, 64)))
	}
	res.Add(domain.OutputResponse, strings.Join(lines, "\n"), "")
}

func (s *Service) focusOn(ctx context.Context, inv invocation, res *domain.DispatchResult) {
	p, err := s.deps.Personalities.Get(ctx, inv.args[0])
	if err != nil {
		res.Add(domain.OutputError, s.unknownPersonality(ctx, inv.args[0]), "")
		return
	}
	s.mu.Lock()
	s.focus = p.Name
	s.group = nil
	s.mu.Unlock()

	res.Add(domain.OutputResponse, fmt.Sprintf("Now chatting with %s. Type %sunfocus to return.", p.Name, console.ForcePrefix), "")
	res.Request(domain.EffectFocus, p.Name)
}

func (s *Service) unfocus(_ context.Context, _ invocation, res *domain.DispatchResult) {
	s.mu.Lock()
	was := s.focus
	if was == "" {
		was = strings.Join(s.group, ", ")
	}
	s.focus = ""
	s.group = nil
	s.mu.Unlock()

	if was == "" {
		res.Add(domain.OutputWarning, "Not chatting with anyone.", "")
		return
	}
	res.Add(domain.OutputResponse, fmt.Sprintf("Left the chat with %s.", was), "")
	res.Request(domain.EffectUnfocus, "")
}

func (s *Service) setTopic(_ context.Context, inv invocation, res *domain.DispatchResult) {
	s.mu.Lock()
	s.topic = inv.rest
	s.mu.Unlock()
	res.Add(domain.OutputResponse, fmt.Sprintf("Topic set to %q.", inv.rest), "")
}

func (s *Service) login(_ context.Context, inv invocation, res *domain.DispatchResult) {
	model := s.currentModel()
	env := model.AuthEnv()
	if env == "" {
		res.Add(domain.OutputWarning, fmt.Sprintf("Model %s does not use an API key.", valueOr(model.Name, "(none)")), "")
		return
	}
	if err := s.deps.Setenv(env, inv.args[0]); err != nil {
		res.Add(domain.OutputError, fmt.Sprintf("Could not set %s: %v", env, err), "")
		return
	}
	res.Add(domain.OutputResponse, fmt.Sprintf("API key for %s set for this session.", model.Kind()), "")
	s.info("api key set", map[string]interface{}{"env": env})
}

func (s *Service) search(_ context.Context, inv invocation, res *domain.DispatchResult) {
	res.Request(domain.EffectOpenSearch, inv.rest)
}

func (s *Service) export(_ context.Context, inv invocation, res *domain.DispatchResult) {
	if len(inv.args) > 0 && strings.EqualFold(inv.args[0], "json") {
		res.Request(domain.EffectExportJSON, "")
		return
	}
	res.Request(domain.EffectExportText, "")
}

func containsFold(values []string, v string) bool {
	for _, candidate := range values {
		if strings.EqualFold(candidate, v) {
			return true
		}
	}
	return false
}

func valueOr(value, def string) string {
	if value == "" {
		return def
	}
	return value
}

func (s *Service) unknownPersonality(ctx context.Context, name string) string {
	msg := fmt.Sprintf("Unknown personality '%s'.", name)
	list, err := s.deps.Personalities.List(ctx)
	if err != nil || len(list) == 0 {
		return msg
	}
	names := make([]string, 0, len(list))
	for _, p := range list {
		names = append(names, p.Name)
	}
	sort.Strings(names)
	return msg + " Available: " + strings.Join(names, ", ") + "."
}
