package server

import (
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

// txSchema validates transaction submissions before they reach the core,
// so admission only ever sees structurally sound input.
const txSchema = `{
  "type": "object",
  "required": ["sender", "type"],
  "properties": {
    "sender":    {"type": "string", "minLength": 1},
    "recipient": {"type": "string"},
    "amount":    {"type": "number", "minimum": 0},
    "fee":       {"type": "number", "minimum": 0},
    "type":      {"type": "string", "enum": ["transfer", "stake", "unstake", "swap"]},
    "signature": {"type": "string"},
    "payload": {
      "type": "object",
      "properties": {
        "swap": {
          "type": "object",
          "required": ["tokenIn", "tokenOut", "amountIn"],
          "properties": {
            "tokenIn":  {"type": "string", "minLength": 1},
            "tokenOut": {"type": "string", "minLength": 1},
            "amountIn": {"type": "number", "minimum": 0}
          }
        }
      }
    }
  }
}`

var txSchemaLoader = gojsonschema.NewStringLoader(txSchema)

// validateTxBody checks a raw submission body against the schema and
// returns a single explanatory error listing every violation.
func validateTxBody(body []byte) error {
	result, err := gojsonschema.Validate(txSchemaLoader, gojsonschema.NewBytesLoader(body))
	if err != nil {
		return fmt.Errorf("malformed transaction body: %w", err)
	}
	if result.Valid() {
		return nil
	}
	msg := "invalid transaction body:"
	for _, desc := range result.Errors() {
		msg += " " + desc.String() + ";"
	}
	return fmt.Errorf("%s", msg)
}
