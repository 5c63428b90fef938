package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/signaltrustai/SignalTrust-AI-Scanner-sub000/internal/types"
)

// ConfigValidator validates configuration values.
type ConfigValidator interface {
	Validate(cfg *Config) error
}

// validatorImpl implements ConfigValidator using go-playground/validator.
type validatorImpl struct {
	validate *validator.Validate
}

// NewValidator creates a new ConfigValidator instance.
func NewValidator() ConfigValidator {
	return &validatorImpl{validate: validator.New()}
}

// Validate checks struct tags plus the cross-field rules the tags cannot
// express.
func (v *validatorImpl) Validate(cfg *Config) error {
	if cfg == nil {
		return types.NewError(types.CONFIG_VALIDATION_FAILED, "configuration is nil")
	}

	if err := v.validate.Struct(cfg); err != nil {
		validationErrs, ok := err.(validator.ValidationErrors)
		if !ok {
			return types.WrapError(types.CONFIG_VALIDATION_FAILED, "validation error", err)
		}
		var messages []string
		for _, e := range validationErrs {
			messages = append(messages, formatValidationError(e))
		}
		return types.NewError(types.CONFIG_VALIDATION_FAILED,
			"configuration validation failed:\n  - "+strings.Join(messages, "\n  - "))
	}

	if cfg.Orchestrator.RiskHighBelow >= cfg.Orchestrator.RiskLowAbove {
		return types.NewError(types.CONFIG_VALIDATION_FAILED, fmt.Sprintf(
			"orchestrator.risk_high_below (%.2f) must be less than orchestrator.risk_low_above (%.2f)",
			cfg.Orchestrator.RiskHighBelow, cfg.Orchestrator.RiskLowAbove))
	}

	seen := make(map[string]bool)
	ruleEnabled := false
	for _, b := range cfg.Backends {
		if b.Name == "" {
			return types.NewError(types.CONFIG_VALIDATION_FAILED, "backend name must not be empty")
		}
		if seen[b.Name] {
			return types.NewError(types.CONFIG_VALIDATION_FAILED,
				"duplicate backend name: "+b.Name)
		}
		seen[b.Name] = true

		if !b.Kind.IsValid() {
			return types.NewError(types.CONFIG_VALIDATION_FAILED,
				fmt.Sprintf("backend %s has unknown kind %q", b.Name, b.Kind))
		}
		if b.Enabled && b.Kind == types.ProviderRule {
			ruleEnabled = true
		}
	}
	if !ruleEnabled {
		return types.NewError(types.CONFIG_VALIDATION_FAILED,
			"an enabled rule backend is mandatory as the degradation path")
	}

	for taskType, kind := range cfg.Orchestrator.Routing {
		if !types.TaskType(taskType).IsValid() {
			return types.NewError(types.CONFIG_VALIDATION_FAILED,
				"routing references unknown task type: "+taskType)
		}
		if !types.ProviderKind(kind).IsValid() {
			return types.NewError(types.CONFIG_VALIDATION_FAILED,
				"routing references unknown provider kind: "+kind)
		}
	}

	return nil
}

// formatValidationError renders one struct-tag violation readably.
func formatValidationError(e validator.FieldError) string {
	field := strings.ToLower(e.Namespace())
	field = strings.TrimPrefix(field, "config.")

	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s (got: %v)", field, e.Param(), e.Value())
	case "max":
		return fmt.Sprintf("%s must be at most %s (got: %v)", field, e.Param(), e.Value())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s] (got: %v)", field, e.Param(), e.Value())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s (got: %v)", field, e.Param(), e.Value())
	case "lt":
		return fmt.Sprintf("%s must be less than %s (got: %v)", field, e.Param(), e.Value())
	default:
		return fmt.Sprintf("%s failed %s validation (got: %v)", field, e.Tag(), e.Value())
	}
}
