package llm

import (
	"reflect"
	"strings"
)

// SchemaFromType builds a JSON schema from a Go struct via reflection and
// `json` tags (spec.md §9: "declare each response shape as a
// typed record and generate its schema at build time"). Nested struct types
// are registered once under "$defs" and referenced via "$ref", and the root
// type is wrapped in a single-member "allOf" — exactly the shape Normalize
// exists to flatten.
func SchemaFromType(v any) map[string]any {
	t := reflect.TypeOf(v)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	defs := map[string]any{}
	rootName := t.Name()
	if rootName == "" {
		rootName = "Root"
	}
	buildStructDef(t, defs, map[string]bool{})

	return map[string]any{
		"$defs": defs,
		"allOf": []any{
			map[string]any{"$ref": "#/$defs/" + rootName},
		},
	}
}

func buildStructDef(t reflect.Type, defs map[string]any, seen map[string]bool) {
	name := t.Name()
	if name == "" || seen[name] {
		return
	}
	seen[name] = true

	properties := map[string]any{}
	var required []string

	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		fieldName, omit := jsonFieldName(f)
		if omit {
			continue
		}
		properties[fieldName] = fieldSchema(f.Type, defs, seen)
		required = append(required, fieldName)
	}

	defs[name] = map[string]any{
		"type":                 "object",
		"properties":           properties,
		"required":             required,
		"additionalProperties": false,
	}
}

func fieldSchema(t reflect.Type, defs map[string]any, seen map[string]bool) map[string]any {
	switch t.Kind() {
	case reflect.Ptr:
		return fieldSchema(t.Elem(), defs, seen)
	case reflect.String:
		return map[string]any{"type": "string"}
	case reflect.Bool:
		return map[string]any{"type": "boolean"}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return map[string]any{"type": "integer"}
	case reflect.Float32, reflect.Float64:
		return map[string]any{"type": "number"}
	case reflect.Slice, reflect.Array:
		return map[string]any{
			"type":  "array",
			"items": fieldSchema(t.Elem(), defs, seen),
		}
	case reflect.Struct:
		buildStructDef(t, defs, seen)
		return map[string]any{"$ref": "#/$defs/" + t.Name()}
	case reflect.Map:
		return map[string]any{"type": "object"}
	default:
		return map[string]any{"type": "string"}
	}
}

// jsonFieldName resolves the field's JSON name from its `json` tag,
// reporting omit=true for "-".
func jsonFieldName(f reflect.StructField) (name string, omit bool) {
	tag := f.Tag.Get("json")
	if tag == "" {
		return f.Name, false
	}
	parts := strings.Split(tag, ",")
	if parts[0] == "-" {
		return "", true
	}
	if parts[0] == "" {
		return f.Name, false
	}
	return parts[0], false
}

// Normalize applies the three normalizations spec.md §4.3 requires before a
// schema may be sent as response_format.json_schema.schema:
//
//  1. inline every internal $ref against the schema's own $defs, then drop
//     $defs entirely;
//  2. collapse allOf blocks of length 1 to their single member;
//  3. on every object node, set additionalProperties=false and required to
//     the exact list of declared property names.
func Normalize(schema map[string]any) map[string]any {
	defs, _ := schema["$defs"].(map[string]any)

	inlined := inlineRefs(schema, defs, map[string]bool{})
	delete(inlined, "$defs")

	collapsed := collapseAllOf(inlined)
	out, _ := collapsed.(map[string]any)
	if out == nil {
		out = map[string]any{}
	}
	enforceStrictObjects(out)
	return out
}

func inlineRefs(node any, defs map[string]any, stack map[string]bool) map[string]any {
	m, ok := node.(map[string]any)
	if !ok {
		return map[string]any{}
	}

	if ref, ok := m["$ref"].(string); ok {
		name := strings.TrimPrefix(ref, "#/$defs/")
		if stack[name] {
			// Self-recursive schema: no cycle support needed for this
			// domain's response shapes; fall back to an empty object.
			return map[string]any{"type": "object"}
		}
		target, ok := defs[name].(map[string]any)
		if !ok {
			return map[string]any{}
		}
		nextStack := map[string]bool{}
		for k, v := range stack {
			nextStack[k] = v
		}
		nextStack[name] = true
		return inlineRefsInPlace(deepCopyMap(target), defs, nextStack)
	}

	return inlineRefsInPlace(deepCopyMap(m), defs, stack)
}

func inlineRefsInPlace(m map[string]any, defs map[string]any, stack map[string]bool) map[string]any {
	for k, v := range m {
		switch val := v.(type) {
		case map[string]any:
			if _, hasRef := val["$ref"]; hasRef {
				m[k] = inlineRefs(val, defs, stack)
			} else {
				m[k] = inlineRefsInPlace(val, defs, stack)
			}
		case []any:
			m[k] = inlineRefsInSlice(val, defs, stack)
		}
	}
	return m
}

func inlineRefsInSlice(items []any, defs map[string]any, stack map[string]bool) []any {
	out := make([]any, len(items))
	for i, item := range items {
		if m, ok := item.(map[string]any); ok {
			out[i] = inlineRefs(m, defs, stack)
		} else {
			out[i] = item
		}
	}
	return out
}

func deepCopyMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		switch val := v.(type) {
		case map[string]any:
			out[k] = deepCopyMap(val)
		case []any:
			cp := make([]any, len(val))
			copy(cp, val)
			out[k] = cp
		default:
			out[k] = v
		}
	}
	return out
}

// collapseAllOf walks the tree collapsing every {"allOf": [single]} node to
// that single member (merged with any sibling keys, which takes priority).
func collapseAllOf(node any) any {
	switch v := node.(type) {
	case map[string]any:
		for k, child := range v {
			v[k] = collapseAllOf(child)
		}
		if all, ok := v["allOf"].([]any); ok && len(all) == 1 {
			member, _ := all[0].(map[string]any)
			merged := map[string]any{}
			for k, val := range member {
				merged[k] = val
			}
			for k, val := range v {
				if k == "allOf" {
					continue
				}
				merged[k] = val
			}
			return merged
		}
		return v
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = collapseAllOf(item)
		}
		return out
	default:
		return node
	}
}

// enforceStrictObjects walks the tree setting additionalProperties=false
// and required=<all declared properties> on every object node.
func enforceStrictObjects(node any) {
	m, ok := node.(map[string]any)
	if !ok {
		if s, ok := node.([]any); ok {
			for _, item := range s {
				enforceStrictObjects(item)
			}
		}
		return
	}

	if props, ok := m["properties"].(map[string]any); ok {
		names := make([]any, 0, len(props))
		for name := range props {
			names = append(names, name)
		}
		m["required"] = names
		m["additionalProperties"] = false
		for _, child := range props {
			enforceStrictObjects(child)
		}
	}

	if items, ok := m["items"]; ok {
		enforceStrictObjects(items)
	}
}
