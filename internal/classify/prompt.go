package classify

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/invopop/jsonschema"
)

// ResponseSchema returns the JSON schema of the expected answer with the
// vocabularies attached as enums.
func ResponseSchema(tags, types []string) *jsonschema.Schema {
	r := jsonschema.Reflector{Anonymous: true, DoNotReference: true}
	schema := r.ReflectFromType(reflect.TypeOf(Result{}))
	schema.Version = ""

	if p, ok := schema.Properties.Get("tags"); ok && p.Items != nil {
		p.Items.Enum = toAny(tags)
	}
	if p, ok := schema.Properties.Get("type"); ok {
		p.Enum = toAny(types)
	}
	return schema
}

func toAny(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

// BuildPrompt renders the instruction for req. Without a description the
// model is told to look the title up on the web.
func BuildPrompt(req Request) (string, error) {
	schema, err := json.MarshalIndent(ResponseSchema(req.Tags, req.Types), "", "  ")
	if err != nil {
		return "", fmt.Errorf("render response schema: %w", err)
	}

	var b strings.Builder
	if req.SearchAssisted() {
		b.WriteString("No description is available for the book below. Search the web by its title to learn what it is about, then perform two tasks.\n")
	} else {
		b.WriteString("Analyse the book description below and perform two tasks.\n")
	}
	b.WriteString("1. From the allowed tags, choose between zero and two tags most relevant to the book.\n")
	b.WriteString("2. From the allowed types, choose exactly one type that best fits the book.\n")
	b.WriteString("Answer with a single JSON object and nothing else, matching this schema:\n")
	b.Write(schema)
	b.WriteString("\nIf no tag fits, answer with an empty \"tags\" list.\n\n")

	b.WriteString("--- START OF DATA ---\n")
	fmt.Fprintf(&b, "[Title]\n%s\n", req.Title)
	if req.SearchAssisted() {
		b.WriteString("[Description]\nNot provided. Search the web.\n")
	} else {
		fmt.Fprintf(&b, "[Description]\n%s\n", req.Description)
	}
	fmt.Fprintf(&b, "[Allowed tags]\n%s\n", strings.Join(req.Tags, ", "))
	fmt.Fprintf(&b, "[Allowed types]\n%s\n", strings.Join(req.Types, ", "))
	b.WriteString("--- END OF DATA ---\n")
	return b.String(), nil
}
