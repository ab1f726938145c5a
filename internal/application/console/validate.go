package console

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/doeshing/persona-go/internal/domain"
)

// maxCorrections bounds the "did you mean" list for unknown commands.
const maxCorrections = 3

// Validate classifies a line without executing it. chatTarget is the focused
// personality name, empty when no personality is focused.
func Validate(input string, chatTarget string, table Table) domain.Validation {
	line := strings.TrimSpace(input)
	if line == "" {
		return domain.Validation{}
	}
	if chatTarget != "" && !HasForcePrefix(line) {
		return domain.Validation{
			Severity: domain.SeverityInfo,
			Message:  fmt.Sprintf("Chatting with %s. Prefix with %s or %s to run a command (e.g. %shelp).", chatTarget, ForcePrefix, AltForcePrefix, ForcePrefix),
		}
	}

	fields := strings.Fields(StripForcePrefix(line))
	if len(fields) == 0 {
		return domain.Validation{Severity: domain.SeverityInfo, Message: "Type a command name, e.g. help."}
	}
	token := fields[0]
	cmd, ok := table.Resolve(token)
	if !ok {
		corrections := suggest(token, nil, table, maxCorrections)
		msg := fmt.Sprintf("Unknown command '%s'.", token)
		if len(corrections) > 0 {
			msg += " Did you mean: " + strings.Join(corrections, ", ") + "?"
		}
		return domain.Validation{Severity: domain.SeverityError, Message: msg, Suggestions: corrections}
	}
	return CheckArgs(cmd, fields[1:])
}

// CheckArgs applies the command's argument rule. A missing argument yields a
// usage hint; a malformed one yields an error.
func CheckArgs(cmd Command, args []string) domain.Validation {
	rule := cmd.Args
	usage := "Usage: " + cmd.Usage
	hint := domain.Validation{Severity: domain.SeverityInfo, Message: usage}
	fail := func(format string, a ...interface{}) domain.Validation {
		return domain.Validation{
			Severity: domain.SeverityError,
			Message:  fmt.Sprintf(format, a...) + " " + usage,
		}
	}

	switch rule.Kind {
	case ArgAny:
		return domain.Validation{}
	case ArgNone:
		if len(args) > 0 {
			return fail("'%s' takes no arguments.", cmd.Name)
		}
	case ArgNames:
		if len(args) == 0 {
			return hint
		}
		if len(args) != rule.Count {
			if rule.Count == 1 {
				return fail("'%s' requires exactly 1 name.", cmd.Name)
			}
			return fail("'%s' requires exactly %d space-separated names.", cmd.Name, rule.Count)
		}
	case ArgNumber:
		if len(args) == 0 {
			return hint
		}
		if len(args) > 1 {
			return fail("'%s' takes a single value.", cmd.Name)
		}
		value, err := strconv.ParseFloat(args[0], 64)
		if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
			return fail("'%s' value must be a finite number.", cmd.Name)
		}
		if rule.Integer && value != math.Trunc(value) {
			return fail("'%s' value must be a whole number.", cmd.Name)
		}
		if value < rule.Min || value > rule.Max {
			return fail("'%s' value must be between %s and %s.", cmd.Name, formatNumber(rule.Min), formatNumber(rule.Max))
		}
	case ArgChoice, ArgOptionalChoice:
		if len(args) == 0 {
			if rule.Kind == ArgOptionalChoice {
				return domain.Validation{}
			}
			return hint
		}
		if len(args) > 1 || !containsFold(rule.Choices, args[0]) {
			return fail("'%s' value must be one of: %s.", cmd.Name, strings.Join(rule.Choices, ", "))
		}
	case ArgText:
		if len(args) == 0 {
			return hint
		}
	case ArgNameAndText:
		if len(args) < 2 {
			return hint
		}
	}
	return domain.Validation{}
}

func containsFold(values []string, v string) bool {
	for _, candidate := range values {
		if strings.EqualFold(candidate, v) {
			return true
		}
	}
	return false
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
