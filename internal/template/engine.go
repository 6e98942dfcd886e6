package template

import (
	"bytes"
	"fmt"
	"strings"
	"sync"
	"text/template"

	"github.com/Masterminds/sprig/v3"
)

// Engine renders response templates. Strings are evaluated with text/template
// and the sprig function library; maps and slices are rendered recursively.
// Parsed templates are cached, so an Engine is cheap to share between
// concurrent deliveries.
type Engine struct {
	funcs template.FuncMap
	cache sync.Map // template source -> *template.Template
}

// New creates a new template engine
func New() *Engine {
	return &Engine{
		funcs: sprig.TxtFuncMap(),
	}
}

// Replace renders every template found in value against context. Values that
// are not strings, maps or slices are returned as-is. A template referencing a
// key missing from context is an error.
func (e *Engine) Replace(value interface{}, context map[string]interface{}) (interface{}, error) {
	switch v := value.(type) {
	case string:
		return e.replaceString(v, context)
	case map[string]interface{}:
		return e.replaceMap(v, context)
	case []interface{}:
		return e.replaceSlice(v, context)
	default:
		return value, nil
	}
}

// ReplaceString renders a single template string.
func (e *Engine) ReplaceString(text string, context map[string]interface{}) (string, error) {
	return e.replaceString(text, context)
}

func (e *Engine) replaceString(text string, context map[string]interface{}) (string, error) {
	if !strings.Contains(text, "{{") {
		return text, nil
	}

	tmpl, err := e.parse(text)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, context); err != nil {
		return "", fmt.Errorf("failed to render template: %w", err)
	}
	return buf.String(), nil
}

func (e *Engine) parse(text string) (*template.Template, error) {
	if cached, ok := e.cache.Load(text); ok {
		return cached.(*template.Template), nil
	}

	tmpl, err := template.New("response").
		Funcs(e.funcs).
		Option("missingkey=error").
		Parse(text)
	if err != nil {
		return nil, fmt.Errorf("failed to parse template: %w", err)
	}

	actual, _ := e.cache.LoadOrStore(text, tmpl)
	return actual.(*template.Template), nil
}

// replaceMap recursively replaces templates in a map
func (e *Engine) replaceMap(m map[string]interface{}, context map[string]interface{}) (map[string]interface{}, error) {
	result := make(map[string]interface{}, len(m))

	for key, value := range m {
		replacedValue, err := e.Replace(value, context)
		if err != nil {
			return nil, fmt.Errorf("error in key '%s': %w", key, err)
		}
		result[key] = replacedValue
	}

	return result, nil
}

// replaceSlice recursively replaces templates in a slice
func (e *Engine) replaceSlice(s []interface{}, context map[string]interface{}) ([]interface{}, error) {
	result := make([]interface{}, len(s))

	for i, value := range s {
		replacedValue, err := e.Replace(value, context)
		if err != nil {
			return nil, fmt.Errorf("error at index %d: %w", i, err)
		}
		result[i] = replacedValue
	}

	return result, nil
}

// Validate parses every template in value without executing it, so broken
// templates are reported when expectations are loaded rather than when the
// first message arrives.
func (e *Engine) Validate(value interface{}) error {
	switch v := value.(type) {
	case string:
		if strings.Contains(v, "{{") {
			_, err := e.parse(v)
			return err
		}
	case map[string]interface{}:
		for key, val := range v {
			if err := e.Validate(val); err != nil {
				return fmt.Errorf("error in key '%s': %w", key, err)
			}
		}
	case []interface{}:
		for i, val := range v {
			if err := e.Validate(val); err != nil {
				return fmt.Errorf("error at index %d: %w", i, err)
			}
		}
	}
	return nil
}
