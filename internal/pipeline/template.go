package pipeline

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/Masterminds/sprig/v3"
)

// renderParam evaluates value through text/template with sprig's function
// map against ctx when value is a string containing "{{"; any other shape
// (or a string with no template markers) passes through unchanged. This is
// the stage-to-stage parameter templating named in SPEC_FULL §2.1 — a
// stage's input parameters may reference "{{ .prev.field }}"-style
// expressions, mirroring the teacher's sprig-backed argument templating in
// internal/template/engine.go, generalized from ServiceClass arguments to
// pipeline stage parameters.
func renderParam(value any, ctx map[string]any) (any, error) {
	s, ok := value.(string)
	if !ok || !containsTemplateMarker(s) {
		return value, nil
	}
	tmpl, err := template.New("stage-param").Funcs(sprig.FuncMap()).Parse(s)
	if err != nil {
		return nil, fmt.Errorf("pipeline: parsing stage parameter template %q: %w", s, err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, ctx); err != nil {
		return nil, fmt.Errorf("pipeline: evaluating stage parameter template %q: %w", s, err)
	}
	return buf.String(), nil
}

func containsTemplateMarker(s string) bool {
	for i := 0; i+1 < len(s); i++ {
		if s[i] == '{' && s[i+1] == '{' {
			return true
		}
	}
	return false
}

// RenderParams evaluates every value in params against ctx, returning a new
// map with templated values substituted. ctx conventionally carries a
// "prev" key holding the previous stage's output, per stage spec contract.
func RenderParams(params map[string]any, ctx map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(params))
	for k, v := range params {
		rendered, err := renderParam(v, ctx)
		if err != nil {
			return nil, err
		}
		out[k] = rendered
	}
	return out, nil
}
