package doctor

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	configapp "github.com/doeshing/persona-go/internal/application/config"
	"github.com/doeshing/persona-go/internal/domain"
	"github.com/doeshing/persona-go/internal/ports"
)

const probeKey = "doctor.probe"

// Service runs environment diagnostics.
type Service struct {
	ConfigProvider ports.ConfigProvider
	Store          ports.KeyValueStore
	Sensitive      ports.SensitiveMatcher
	Personalities  ports.PersonalityRepository
}

// Run executes checks and returns a report.
func (s *Service) Run(ctx context.Context) (domain.HealthReport, error) {
	var checks []domain.HealthCheck

	cfg, err := s.ConfigProvider.Load(ctx)
	if err != nil {
		checks = append(checks, fail("Config file", fmt.Sprintf("load failed: %v", err)))
		return domain.HealthReport{Checks: checks}, err
	}
	if err := configapp.Validate(cfg); err != nil {
		checks = append(checks, fail("Config file", err.Error()))
	} else {
		checks = append(checks, ok("Config file", fmt.Sprintf("format %s, %d models", cfg.ConfigFormatVersion, len(cfg.Models))))
	}

	checks = append(checks, s.storeCheck())
	checks = append(checks, s.privacyCheck())
	checks = append(checks, s.personalityCheck(ctx))
	checks = append(checks, apiCheck(cfg.Models))

	return domain.HealthReport{Checks: checks}, nil
}

func (s *Service) storeCheck() domain.HealthCheck {
	if s.Store == nil {
		return warn("History store", "not initialized")
	}
	if err := s.Store.Set(probeKey, "ok"); err != nil {
		return fail("History store", err.Error())
	}
	defer func() { _ = s.Store.Delete(probeKey) }()
	value, found, err := s.Store.Get(probeKey)
	if err != nil || !found || value != "ok" {
		return fail("History store", "write/read round trip failed")
	}
	return ok("History store", fmt.Sprintf("%T writable", s.Store))
}

func (s *Service) privacyCheck() domain.HealthCheck {
	if s.Sensitive == nil {
		return warn("Privacy rules", "not loaded; credentials may be persisted")
	}
	if !s.Sensitive.IsSensitive("login probe-key") {
		return warn("Privacy rules", "login commands are not treated as sensitive")
	}
	return ok("Privacy rules", "login credentials stay out of history")
}

func (s *Service) personalityCheck(ctx context.Context) domain.HealthCheck {
	if s.Personalities == nil {
		return warn("Personalities", "repository not initialized")
	}
	list, err := s.Personalities.List(ctx)
	if err != nil {
		return fail("Personalities", err.Error())
	}
	for _, p := range list {
		if err := p.Validate(); err != nil {
			return warn("Personalities", fmt.Sprintf("%s: %v", p.Name, err))
		}
	}
	if len(list) < 2 {
		return warn("Personalities", fmt.Sprintf("%d found; group chat needs 2", len(list)))
	}
	return ok("Personalities", fmt.Sprintf("%d loaded", len(list)))
}

func apiCheck(models []domain.ModelDefinition) domain.HealthCheck {
	missing := map[string]bool{}
	for _, model := range models {
		env := model.AuthEnv()
		if env == "" {
			continue
		}
		if os.Getenv(env) == "" {
			missing[env] = true
		}
	}
	if len(missing) == 0 {
		return ok("API keys", "detected for configured providers")
	}
	names := make([]string, 0, len(missing))
	for name := range missing {
		names = append(names, name)
	}
	sort.Strings(names)
	return warn("API keys", strings.Join(names, ", ")+" missing; those models reply offline")
}

func ok(name, details string) domain.HealthCheck {
	return domain.HealthCheck{Name: name, Status: domain.HealthOK, Details: details}
}

func warn(name, details string) domain.HealthCheck {
	return domain.HealthCheck{Name: name, Status: domain.HealthWarn, Details: details}
}

func fail(name, details string) domain.HealthCheck {
	return domain.HealthCheck{Name: name, Status: domain.HealthError, Details: details}
}
