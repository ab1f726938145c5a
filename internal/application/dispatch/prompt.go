package dispatch

import (
	"bytes"
	"strings"
	"text/template"

	"github.com/doeshing/persona-go/internal/domain"
)

var systemTemplate = template.Must(template.New("system").Parse(`{{.Prompt}}
{{- if .Knowledge}}

Background knowledge:
{{.Knowledge}}
{{- end}}
{{- if .Topic}}

The current topic is: {{.Topic}}
{{- end}}
{{- if .Partner}}

You are talking with {{.Partner}}. Reply with your next line only, without prefixing your name.
{{- else if .Group}}

You are in a group chat with {{.User}} and {{.Group}}. Reply only as {{.Name}}.
{{- else}}

You are chatting with {{.User}}.
{{- end}}`))

type promptData struct {
	Name      string
	Prompt    string
	Knowledge string
	Topic     string
	User      string
	Partner   string
	Group     string
}

// systemPrompt renders the instructions a personality speaks under.
func systemPrompt(p domain.Personality, data promptData) string {
	data.Name = p.Name
	data.Prompt = strings.TrimSpace(p.Prompt)
	if data.Prompt == "" {
		data.Prompt = "You are " + p.Name + "."
	}
	data.Knowledge = strings.TrimSpace(p.Knowledge)
	var buf bytes.Buffer
	if err := systemTemplate.Execute(&buf, data); err != nil {
		return data.Prompt
	}
	return strings.TrimSpace(buf.String())
}
