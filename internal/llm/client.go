package llm

import (
	"context"
)

// Caller issues one structured-generation call against a backend.
type Caller interface {
	Generate(ctx context.Context, req Request) (Response, error)
}

// HarmCategory names a safety category whose threshold is relaxed to
// block-only-high for a request. Only the native protocol honors it.
type HarmCategory string

// Safety categories understood by the native backend.
const (
	HarmDangerousContent HarmCategory = "dangerous_content"
	HarmHarassment       HarmCategory = "harassment"
	HarmHateSpeech       HarmCategory = "hate_speech"
	HarmSexuallyExplicit HarmCategory = "sexually_explicit"
)

// Request is one structured-generation call.
type Request struct {
	Schema            *Schema
	Prompt            string
	SystemInstruction string
	Safety            []HarmCategory
	MaxOutputTokens   int
	JSON              bool
}

// Response contains the raw text and usage metering of one call.
type Response struct {
	Text       string
	TokensUsed int
	Status     int
}

// SchemaType is the JSON type of a response schema node.
type SchemaType string

// Schema node types.
const (
	TypeObject SchemaType = "object"
	TypeArray  SchemaType = "array"
	TypeString SchemaType = "string"
	TypeNumber SchemaType = "number"
)

// Schema describes the expected response shape for schema-constrained output.
type Schema struct {
	Items       *Schema
	Properties  map[string]*Schema
	Type        SchemaType
	Description string
}

// ArrayOf returns an array schema of objects with the given properties.
func ArrayOf(properties map[string]*Schema) *Schema {
	return &Schema{
		Type:  TypeArray,
		Items: &Schema{Type: TypeObject, Properties: properties},
	}
}
