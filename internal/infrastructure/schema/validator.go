package schema

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/grocerlist/usdaimport/internal/domain"
	"github.com/xeipuuv/gojsonschema"
)

// GroceryItemSchema is the published JSON Schema for catalogue items
//
//go:embed grocery-item.schema.json
var GroceryItemSchema []byte

// Validator checks grocery items against a compiled JSON Schema
type Validator struct {
	schema *gojsonschema.Schema
}

// NewValidator compiles the embedded schema
func NewValidator() (*Validator, error) {
	return compile(GroceryItemSchema)
}

// NewValidatorFromFile compiles the schema at path. An empty path selects
// the embedded schema.
func NewValidatorFromFile(path string) (*Validator, error) {
	if path == "" {
		return NewValidator()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schema: %w", err)
	}
	return compile(data)
}

func compile(document []byte) (*Validator, error) {
	s, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(document))
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return &Validator{schema: s}, nil
}

// Validate returns nil when item conforms to the schema, otherwise an error
// wrapping domain.ErrInvalidItem that lists every violation
func (v *Validator) Validate(item *domain.GroceryItem) error {
	if item == nil {
		return fmt.Errorf("%w: nil item", domain.ErrInvalidItem)
	}
	return v.ValidateDocument(item)
}

// ValidateDocument validates an arbitrary Go value (decoded JSON included)
func (v *Validator) ValidateDocument(document any) error {
	result, err := v.schema.Validate(gojsonschema.NewGoLoader(document))
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidItem, err)
	}
	if result.Valid() {
		return nil
	}

	problems := make([]string, 0, len(result.Errors()))
	for _, re := range result.Errors() {
		problems = append(problems, re.String())
	}
	return fmt.Errorf("%w: %s", domain.ErrInvalidItem, strings.Join(problems, "; "))
}
