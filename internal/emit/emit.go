// Package emit hands finished models to their consumers: model files, a
// stream, or an external generator plugin.
package emit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"go.yaml.in/yaml/v4"

	"github.com/kolah/apimodel/internal/config"
	"github.com/kolah/apimodel/internal/definition"
)

type Emitter interface {
	Emit(ctx context.Context, m *definition.Model) error
}

type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// New picks the emitter for the output settings: a plugin when one is named,
// a stream on stdout for dry runs, model files otherwise.
func New(cfg config.OutputConfig, stdout io.Writer) Emitter {
	format := Format(cfg.Format)
	switch {
	case cfg.Plugin != "":
		return &Plugin{Name: cfg.Plugin, OutputDir: cfg.Dir, Stdout: stdout}
	case cfg.DryRun:
		return &Stream{W: stdout, Format: format}
	}
	return &Writer{Dir: cfg.Dir, Format: format}
}

// Encode serializes m. An empty format means YAML.
func Encode(m *definition.Model, format Format) ([]byte, error) {
	switch format {
	case FormatJSON:
		out, err := json.MarshalIndent(m, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("encoding model as json: %w", err)
		}
		return append(out, '\n'), nil
	case FormatYAML, "":
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(m); err != nil {
			return nil, fmt.Errorf("encoding model as yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("encoding model as yaml: %w", err)
		}
		return buf.Bytes(), nil
	}
	return nil, fmt.Errorf("unknown format: %s", format)
}

// FileName derives the model file name from the source document:
// "specs/shop.yaml" -> "shop.model.json".
func FileName(source string, format Format) string {
	base := filepath.Base(source)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if base == "" || base == "." || base == string(filepath.Separator) {
		base = "api"
	}
	if format == "" {
		format = FormatYAML
	}
	return base + ".model." + string(format)
}

// Writer writes one model file per document into Dir.
type Writer struct {
	Dir    string
	Format Format
}

// Path returns where the model for m is written.
func (w *Writer) Path(m *definition.Model) string {
	return filepath.Join(w.Dir, FileName(m.Source, w.Format))
}

func (w *Writer) Emit(_ context.Context, m *definition.Model) error {
	content, err := Encode(m, w.Format)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(w.Dir, 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	path := w.Path(m)
	if err := os.WriteFile(path, content, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// Stream writes models to W, YAML models as separate documents.
type Stream struct {
	W      io.Writer
	Format Format
}

func (s *Stream) Emit(_ context.Context, m *definition.Model) error {
	content, err := Encode(m, s.Format)
	if err != nil {
		return err
	}
	if s.Format != FormatJSON {
		content = append([]byte("---\n"), content...)
	}
	if _, err := s.W.Write(content); err != nil {
		return fmt.Errorf("writing model: %w", err)
	}
	return nil
}

// PluginPrefix is prepended to the plugin name to find its executable.
const PluginPrefix = "apimodel-"

// Plugin runs apimodel-<Name> from PATH with the JSON model on stdin and
// APIMODEL_OUTPUT and APIMODEL_SOURCE in its environment.
type Plugin struct {
	Name      string
	OutputDir string
	Stdout    io.Writer
	Stderr    io.Writer
}

func (p *Plugin) Emit(ctx context.Context, m *definition.Model) error {
	content, err := Encode(m, FormatJSON)
	if err != nil {
		return err
	}

	cmd := exec.CommandContext(ctx, PluginPrefix+p.Name)
	cmd.Env = append(
		os.Environ(),
		"APIMODEL_OUTPUT="+p.OutputDir,
		"APIMODEL_SOURCE="+m.Source,
	)
	cmd.Stdin = bytes.NewReader(content)
	cmd.Stdout = p.Stdout
	if cmd.Stdout == nil {
		cmd.Stdout = os.Stdout
	}
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if p.Stderr != nil {
		cmd.Stderr = io.MultiWriter(p.Stderr, &stderr)
	}

	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("running plugin %s: %w: %s", p.Name, err, msg)
		}
		return fmt.Errorf("running plugin %s: %w", p.Name, err)
	}
	return nil
}
