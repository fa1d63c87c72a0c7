// Package character 角色设定卡
package character

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// ErrUnsupportedFormat 不支持的设定卡扩展名
var ErrUnsupportedFormat = errors.New("unsupported character sheet format")

var validate = validator.New()

// Sheet 角色设定卡
type Sheet struct {
	Name                   string   `json:"name" yaml:"name" validate:"required"`
	Series                 string   `json:"series,omitempty" yaml:"series,omitempty"`
	Description            string   `json:"description,omitempty" yaml:"description,omitempty"`
	VisualDescriptionForAI string   `json:"visual_description_for_ai,omitempty" yaml:"visual_description_for_ai,omitempty"`
	PersonalityTraits      []string `json:"personality_traits" yaml:"personality_traits"`
	Catchphrases           []string `json:"catchphrases" yaml:"catchphrases"`
}

// PersonaPrompt 让模型以角色口吻说话的基础提示词
func (s *Sheet) PersonaPrompt() string {
	parts := make([]string, 0, 4)
	if s.Series != "" {
		parts = append(parts, fmt.Sprintf("Eres %s de la serie %s.", s.Name, s.Series))
	} else {
		parts = append(parts, fmt.Sprintf("Eres %s.", s.Name))
	}
	if s.Description != "" {
		parts = append(parts, "Descripción: "+s.Description)
	}
	if len(s.PersonalityTraits) > 0 {
		parts = append(parts, "Rasgos de personalidad: "+strings.Join(s.PersonalityTraits, ", "))
	}
	if len(s.Catchphrases) > 0 {
		parts = append(parts, "Frases típicas (úsalas con moderación): "+strings.Join(s.Catchphrases, ", "))
	}
	return strings.Join(parts, "\n")
}

// VisualDescription 视觉描述，缺失时使用 fallback
func (s *Sheet) VisualDescription(fallback string) string {
	if v := strings.TrimSpace(s.VisualDescriptionForAI); v != "" {
		return v
	}
	return fallback
}

// Validate 校验必填字段
func (s *Sheet) Validate() error {
	if err := validate.Struct(s); err != nil {
		return fmt.Errorf("invalid character sheet: %w", err)
	}
	return nil
}

// Load 读取 .json / .yaml / .yml 设定卡，拒绝未知字段
func Load(path string) (*Sheet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read character sheet %s: %w", path, err)
	}

	var sheet Sheet
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		err = dec.Decode(&sheet)
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		err = dec.Decode(&sheet)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("decode character sheet %s: %w", path, err)
	}

	if err := sheet.Validate(); err != nil {
		return nil, err
	}
	return &sheet, nil
}

// Save 以 JSON 写入设定卡
func Save(path string, sheet *Sheet) error {
	if err := sheet.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(sheet, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// FileName 角色名转换为设定卡文件名，如 "Gary the Snail" -> gary_the_snail.json
func FileName(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "_") + ".json"
}
