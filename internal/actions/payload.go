package actions

import (
	"fmt"
	"math"
	"strconv"

	"github.com/joeycumines/gridedit/internal/editor"
)

// Payloads arrive either as Go values from the input layer or as plain
// maps from scripts, where numbers may be any of Go's numeric kinds.

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	}
	return 0, false
}

func integer(v any) (int, bool) {
	f, ok := number(v)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return int(f), true
}

// field returns payload[key] for map payloads, or payload itself.
func field(payload any, key string) any {
	if m, ok := payload.(map[string]any); ok {
		return m[key]
	}
	return payload
}

func intField(payload any, key string) (int, bool) {
	return integer(field(payload, key))
}

// stringField treats a nil value as the empty string.
func stringField(payload any, key string) (string, bool) {
	switch v := field(payload, key).(type) {
	case nil:
		return "", true
	case string:
		return v, true
	case fmt.Stringer:
		return v.String(), true
	}
	return "", false
}

func point(v any) (editor.Point, bool) {
	switch p := v.(type) {
	case editor.Point:
		return p, true
	case *editor.Point:
		if p != nil {
			return *p, true
		}
	case map[string]any:
		x, okX := integer(p["x"])
		y, okY := integer(p["y"])
		if okX && okY {
			return editor.Point{X: x, Y: y}, true
		}
	}
	return editor.Point{}, false
}

func startOptions(payload any) (editor.StartOptions, error) {
	switch p := payload.(type) {
	case nil:
		return editor.StartOptions{}, nil
	case editor.StartOptions:
		return p, nil
	case *editor.StartOptions:
		if p == nil {
			return editor.StartOptions{}, nil
		}
		return *p, nil
	case map[string]any:
		var opts editor.StartOptions
		if v, ok := p["initial"]; ok && v != nil {
			s, ok := v.(string)
			if !ok {
				return opts, fmt.Errorf("%w: edit.start initial must be a string", ErrInvalidPayload)
			}
			opts.Initial = &s
		}
		if v, ok := p["pointer"]; ok && v != nil {
			pt, ok := point(v)
			if !ok {
				return opts, fmt.Errorf("%w: edit.start pointer must have x and y", ErrInvalidPayload)
			}
			opts.Pointer = &pt
		}
		return opts, nil
	}
	return editor.StartOptions{}, fmt.Errorf("%w: edit.start got %T", ErrInvalidPayload, payload)
}

// delta decodes an edit.commit move. Nil means stay on the cell.
func delta(payload any) (*editor.Delta, error) {
	switch p := payload.(type) {
	case nil:
		return nil, nil
	case editor.Delta:
		return &p, nil
	case *editor.Delta:
		return p, nil
	case map[string]any:
		if m, ok := p["move"]; ok {
			return delta(m)
		}
		dr, _ := integer(p["dr"])
		dc, _ := integer(p["dc"])
		return &editor.Delta{DR: dr, DC: dc}, nil
	}
	return nil, fmt.Errorf("%w: edit.commit got %T", ErrInvalidPayload, payload)
}

func sortRequest(payload any, active int) (SortRequest, error) {
	switch p := payload.(type) {
	case nil:
		return SortRequest{Col: active}, nil
	case SortRequest:
		return p, nil
	case *SortRequest:
		if p != nil {
			return *p, nil
		}
		return SortRequest{Col: active}, nil
	case map[string]any:
		req := SortRequest{Col: active}
		if v, ok := p["col"]; ok {
			c, ok := integer(v)
			if !ok {
				return req, fmt.Errorf("%w: view.sort col must be a number", ErrInvalidPayload)
			}
			req.Col = c
		}
		req.Desc, _ = p["desc"].(bool)
		return req, nil
	}
	return SortRequest{}, fmt.Errorf("%w: view.sort got %T", ErrInvalidPayload, payload)
}

func filterRequest(payload any) (FilterRequest, error) {
	switch p := payload.(type) {
	case nil:
		return FilterRequest{Col: -1}, nil
	case string:
		return FilterRequest{Col: -1, Query: p}, nil
	case FilterRequest:
		return p, nil
	case *FilterRequest:
		if p != nil {
			return *p, nil
		}
		return FilterRequest{Col: -1}, nil
	case map[string]any:
		req := FilterRequest{Col: -1}
		if v, ok := p["col"]; ok && v != nil {
			c, ok := integer(v)
			if !ok {
				return req, fmt.Errorf("%w: view.filter col must be a number", ErrInvalidPayload)
			}
			req.Col = c
		}
		req.Query, _ = p["query"].(string)
		req.Expr, _ = p["expr"].(string)
		return req, nil
	}
	return FilterRequest{}, fmt.Errorf("%w: view.filter got %T", ErrInvalidPayload, payload)
}
