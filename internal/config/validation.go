package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/opd-ai/go-threadpaint/internal/paint"
)

// ValidationError represents a configuration validation error.
// It contains the field name and a description of the issue.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (ve ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", ve.Field, ve.Message)
}

// ValidationResult holds the results of a configuration validation.
type ValidationResult struct {
	// Errors contains all validation errors found.
	Errors []ValidationError
	// Warnings contains non-fatal issues.
	Warnings []ValidationError
}

// IsValid returns true if there are no validation errors.
func (vr *ValidationResult) IsValid() bool {
	return len(vr.Errors) == 0
}

// Error returns a combined error message if there are errors, nil otherwise.
func (vr *ValidationResult) Error() error {
	if len(vr.Errors) == 0 {
		return nil
	}

	messages := make([]string, 0, len(vr.Errors))
	for _, e := range vr.Errors {
		messages = append(messages, e.Error())
	}
	return fmt.Errorf("validation failed: %s", strings.Join(messages, "; "))
}

// AddError adds a validation error.
func (vr *ValidationResult) AddError(field, message string) {
	vr.Errors = append(vr.Errors, ValidationError{Field: field, Message: message})
}

// AddWarning adds a validation warning.
func (vr *ValidationResult) AddWarning(field, message string) {
	vr.Warnings = append(vr.Warnings, ValidationError{Field: field, Message: message})
}

// Merge combines another ValidationResult into this one.
func (vr *ValidationResult) Merge(other *ValidationResult) {
	if other == nil {
		return
	}
	vr.Errors = append(vr.Errors, other.Errors...)
	vr.Warnings = append(vr.Warnings, other.Warnings...)
}

// Limits beyond which values are accepted with a warning.
const (
	maxDimension     = 10000
	maxFrameRate     = 240
	largeHistory     = 4096
	largeBrushWidth  = 500
	largeCheckerSize = 256
)

// Validator checks a Config for values the engine cannot honor.
type Validator struct {
	// checkFiles makes missing input files errors instead of warnings.
	checkFiles bool
}

// NewValidator creates a new Validator with default settings.
func NewValidator() *Validator {
	return &Validator{}
}

// WithStrictMode makes a missing canvas image an error.
func (v *Validator) WithStrictMode(strict bool) *Validator {
	v.checkFiles = strict
	return v
}

// Validate performs comprehensive validation of a Config.
func (v *Validator) Validate(cfg *Config) *ValidationResult {
	result := &ValidationResult{}

	v.validateCanvas(&cfg.Canvas, result)
	v.validateBrush(&cfg.Brush, result)
	v.validateHistory(&cfg.History, result)
	v.validateRender(&cfg.Render, result)
	v.validateInput(&cfg.Input, result)
	v.validateWindow(&cfg.Window, result)
	v.validateExport(&cfg.Export, result)

	return result
}

func (v *Validator) validateCanvas(cc *CanvasConfig, result *ValidationResult) {
	if cc.Width < 0 {
		result.AddError("canvas.width", fmt.Sprintf("must be non-negative, got %d", cc.Width))
	}
	if cc.Height < 0 {
		result.AddError("canvas.height", fmt.Sprintf("must be non-negative, got %d", cc.Height))
	}
	if (cc.Width == 0) != (cc.Height == 0) {
		result.AddError("canvas", "width and height must both be set or both be zero")
	}
	if cc.Width > maxDimension || cc.Height > maxDimension {
		result.AddWarning("canvas", fmt.Sprintf("unusually large size %dx%d", cc.Width, cc.Height))
	}
	if cc.Image != "" {
		if _, err := os.Stat(cc.Image); err != nil {
			msg := fmt.Sprintf("cannot read %q: %v", cc.Image, err)
			if v.checkFiles {
				result.AddError("canvas.image", msg)
			} else {
				result.AddWarning("canvas.image", msg)
			}
		}
	}
}

func (v *Validator) validateBrush(bc *BrushConfig, result *ValidationResult) {
	if bc.Width < 0 {
		result.AddError("brush.width", fmt.Sprintf("must be non-negative, got %g", bc.Width))
	}
	if bc.Width > largeBrushWidth {
		result.AddWarning("brush.width", fmt.Sprintf("unusually large value %g", bc.Width))
	}
	if bc.Cap > paint.CapButt {
		result.AddError("brush.cap", fmt.Sprintf("unknown cap: %d", bc.Cap))
	}
	if bc.Join > paint.JoinBevel {
		result.AddError("brush.join", fmt.Sprintf("unknown join: %d", bc.Join))
	}
	if bc.Color.A == 0 {
		result.AddWarning("brush.color", "fully transparent brush erases")
	}
}

func (v *Validator) validateHistory(hc *HistoryConfig, result *ValidationResult) {
	if hc.MaxCommands < 1 {
		result.AddError("history.max_commands", fmt.Sprintf("must be at least 1, got %d", hc.MaxCommands))
	}
	if hc.MaxCommands > largeHistory {
		result.AddWarning("history.max_commands",
			fmt.Sprintf("%d commands make undo replay slow", hc.MaxCommands))
	}
}

func (v *Validator) validateRender(rc *RenderConfig, result *ValidationResult) {
	if rc.FrameRate < 1 || rc.FrameRate > maxFrameRate {
		result.AddError("render.frame_rate",
			fmt.Sprintf("must be between 1 and %d, got %d", maxFrameRate, rc.FrameRate))
	}
	if rc.CheckerSize < 0 {
		result.AddError("render.checker_size", fmt.Sprintf("must be non-negative, got %d", rc.CheckerSize))
	}
	if rc.CheckerSize > largeCheckerSize {
		result.AddWarning("render.checker_size", fmt.Sprintf("unusually large value %d", rc.CheckerSize))
	}
	if rc.JoinWarnInterval <= 0 {
		result.AddError("render.join_warn_interval", fmt.Sprintf("must be positive, got %v", rc.JoinWarnInterval))
	}
}

func (v *Validator) validateInput(ic *InputConfig, result *ValidationResult) {
	if ic.MoveThreshold < 0 {
		result.AddError("input.move_threshold", fmt.Sprintf("must be non-negative, got %g", ic.MoveThreshold))
	}
	if ic.WheelZoomStep <= 0 || ic.WheelZoomStep > 1 {
		result.AddError("input.wheel_zoom_step", fmt.Sprintf("must be in (0, 1], got %g", ic.WheelZoomStep))
	}
}

func (v *Validator) validateWindow(wc *WindowConfig, result *ValidationResult) {
	if wc.Width <= 0 {
		result.AddError("window.width", fmt.Sprintf("must be positive, got %d", wc.Width))
	}
	if wc.Height <= 0 {
		result.AddError("window.height", fmt.Sprintf("must be positive, got %d", wc.Height))
	}
	if wc.Width > maxDimension || wc.Height > maxDimension {
		result.AddWarning("window", fmt.Sprintf("unusually large size %dx%d", wc.Width, wc.Height))
	}
	if wc.Backend > BackendHeadless || wc.Backend < BackendEbiten {
		result.AddError("window.backend", fmt.Sprintf("unknown backend: %d", wc.Backend))
	}
}

func (v *Validator) validateExport(ec *ExportConfig, result *ValidationResult) {
	if ec.Path == "" {
		return
	}
	switch strings.ToLower(filepath.Ext(ec.Path)) {
	case ".png", ".pdf":
	default:
		result.AddError("export.path", fmt.Sprintf("unsupported extension in %q (want .png or .pdf)", ec.Path))
	}
}

// ValidateConfig validates cfg and returns an error if it is invalid.
func ValidateConfig(cfg *Config) error {
	return NewValidator().Validate(cfg).Error()
}

// ValidateConfigStrict validates cfg treating unreadable input files as errors.
func ValidateConfigStrict(cfg *Config) error {
	return NewValidator().WithStrictMode(true).Validate(cfg).Error()
}
