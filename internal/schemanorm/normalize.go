// Package schemanorm rewrites JSON-Schema tool parameters before they are
// sent upstream (spec §4.3, C4): stripping metadata keywords the teacher's
// vendor wrappers do not forward, inlining $ref, turning const into enum,
// and placeholder-filling empty schemas.
package schemanorm

// allowList are the keywords that survive normalization; everything else is
// a meta-keyword the spec requires stripping (recursively) before emission.
var allowList = map[string]bool{
	"type":                 true,
	"properties":           true,
	"required":             true,
	"description":          true,
	"enum":                 true,
	"items":                true,
	"additionalProperties": true,
	"anyOf":                true,
	"oneOf":                true,
	"allOf":                true,
}

// Options tunes normalization for the target vendor.
type Options struct {
	// GeminiAnyOf renames "anyOf" to "any_of" (snake_case), required only by
	// the Gemini/Antigravity emitter (spec §4.3).
	GeminiAnyOf bool

	// FormatWhitelist allows specific "format" values to pass through
	// un-stripped for vendors that honor them (spec note: "format" is
	// stripped "unless whitelisted per upstream").
	FormatWhitelist map[string]bool
}

// Normalize rewrites a tool parameters schema per spec §4.3. It is pure and
// idempotent: Normalize(Normalize(x)) == Normalize(x).
func Normalize(schema map[string]interface{}, opts Options) map[string]interface{} {
	defs := collectDefs(schema)
	rewritten := normalizeValue(schema, defs, opts, map[string]bool{})
	out, ok := rewritten.(map[string]interface{})
	if !ok || len(out) == 0 {
		return map[string]interface{}{"type": "object"}
	}
	return out
}

// collectDefs gathers "$defs" and "definitions" maps for $ref resolution,
// so inlining can happen without a second pass over the document.
func collectDefs(schema map[string]interface{}) map[string]interface{} {
	defs := map[string]interface{}{}
	for _, key := range []string{"$defs", "definitions"} {
		if m, ok := schema[key].(map[string]interface{}); ok {
			for k, v := range m {
				defs[k] = v
			}
		}
	}
	return defs
}

func normalizeValue(v interface{}, defs map[string]interface{}, opts Options, onPath map[string]bool) interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		return normalizeObject(val, defs, opts, onPath)
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, e := range val {
			out[i] = normalizeValue(e, defs, opts, onPath)
		}
		return out
	default:
		return v
	}
}

func normalizeObject(schema map[string]interface{}, defs map[string]interface{}, opts Options, onPath map[string]bool) map[string]interface{} {
	// $ref inlining: resolve #/$defs/* and #/definitions/*, unfolding a
	// cyclic path at most once.
	if ref, ok := schema["$ref"].(string); ok {
		name := refName(ref)
		if target, ok := defs[name]; ok && !onPath[name] {
			if targetObj, ok := target.(map[string]interface{}); ok {
				nextPath := copyPathSet(onPath)
				nextPath[name] = true
				return normalizeObject(targetObj, defs, opts, nextPath)
			}
		}
		// Cycle or unresolved ref: fall back to an empty-object placeholder
		// rather than looping forever.
		return map[string]interface{}{"type": "object"}
	}

	out := map[string]interface{}{}

	// const -> enum
	if constVal, ok := schema["const"]; ok {
		out["enum"] = []interface{}{constVal}
	}

	for key, v := range schema {
		if key == "$defs" || key == "definitions" || key == "const" {
			continue
		}
		if !allowList[key] {
			if key == "format" && opts.FormatWhitelist[formatValue(v)] {
				out["format"] = v
				continue
			}
			continue // strip meta-keyword ($schema, $id, title, default, examples, format, ...)
		}

		switch key {
		case "properties":
			if props, ok := v.(map[string]interface{}); ok {
				rewritten := map[string]interface{}{}
				for pk, pv := range props {
					rewritten[pk] = normalizeValue(pv, defs, opts, onPath)
				}
				out["properties"] = rewritten
			}
		case "items":
			out["items"] = normalizeValue(v, defs, opts, onPath)
		case "additionalProperties":
			if asSchema, ok := v.(map[string]interface{}); ok {
				out["additionalProperties"] = normalizeValue(asSchema, defs, opts, onPath)
			} else {
				out["additionalProperties"] = v
			}
		case "anyOf", "oneOf", "allOf":
			if list, ok := v.([]interface{}); ok {
				rewritten := make([]interface{}, len(list))
				for i, e := range list {
					rewritten[i] = normalizeValue(e, defs, opts, onPath)
				}
				outKey := key
				if opts.GeminiAnyOf && key == "anyOf" {
					outKey = "any_of"
				}
				out[outKey] = rewritten
				continue
			}
		default:
			out[key] = v
		}
	}

	if len(out) == 0 {
		return map[string]interface{}{"type": "object"}
	}
	return out
}

func refName(ref string) string {
	for _, prefix := range []string{"#/$defs/", "#/definitions/"} {
		if len(ref) > len(prefix) && ref[:len(prefix)] == prefix {
			return ref[len(prefix):]
		}
	}
	return ref
}

func formatValue(v interface{}) string {
	s, _ := v.(string)
	return s
}

func copyPathSet(in map[string]bool) map[string]bool {
	out := make(map[string]bool, len(in)+1)
	for k := range in {
		out[k] = true
	}
	return out
}
