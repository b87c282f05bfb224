package content

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Kind selects which generator a project feeds.
type Kind string

const (
	KindChat      Kind = "chat"
	KindExplainer Kind = "explainer"
)

// Project is the complete authored input of one video.
type Project struct {
	Version     string       `yaml:"version" json:"version"`
	Kind        Kind         `yaml:"kind" json:"kind"`
	Title       string       `yaml:"title,omitempty" json:"title,omitempty"`
	Platform    string       `yaml:"platform,omitempty" json:"platform,omitempty"`
	DisplayMode string       `yaml:"displayMode,omitempty" json:"displayMode,omitempty"`
	Contact     Contact      `yaml:"contact,omitempty" json:"contact,omitempty"`
	Messages    []Message    `yaml:"messages,omitempty" json:"messages,omitempty"`
	Sections    []Section    `yaml:"sections,omitempty" json:"sections,omitempty"`
	Background  Background   `yaml:"background,omitempty" json:"background,omitempty"`
	VisualStyle *VisualStyle `yaml:"visualStyle,omitempty" json:"visualStyle,omitempty"`
}

// Style returns the project-level effect stack.
func (p *Project) Style() VisualStyle {
	if p.VisualStyle == nil {
		return VisualStyle{}
	}
	return *p.VisualStyle
}

// ReadProject loads a project from YAML (.yaml/.yml) or JSON (.json).
func ReadProject(path string) (*Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return DecodeProject(data, filepath.Ext(path))
}

// DecodeProject parses data according to the file extension.
func DecodeProject(data []byte, ext string) (*Project, error) {
	var p Project
	switch strings.ToLower(ext) {
	case ".json":
		if err := json.NewDecoder(bytes.NewReader(data)).Decode(&p); err != nil {
			return nil, fmt.Errorf("decode json project: %w", err)
		}
	case ".yaml", ".yml", "":
		if err := yaml.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("decode yaml project: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported project format %q", ext)
	}
	return &p, nil
}

// WriteProject saves a project, choosing the encoding by extension.
func WriteProject(p *Project, path string) error {
	var (
		data []byte
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		data, err = json.MarshalIndent(p, "", "  ")
	default:
		data, err = yaml.Marshal(p)
	}
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
