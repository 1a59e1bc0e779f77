package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// EncodeDocument writes quotes as an indented JSON array.
// A nil slice is written as [] so the output always round-trips.
func EncodeDocument(w io.Writer, quotes []Quote) error {
	if quotes == nil {
		quotes = []Quote{}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	if err := enc.Encode(quotes); err != nil {
		return fmt.Errorf("encoding quotes: %w", err)
	}

	return nil
}

// MarshalQuotes is EncodeDocument into a compact byte slice, the form stored in a slot.
func MarshalQuotes(quotes []Quote) ([]byte, error) {
	if quotes == nil {
		quotes = []Quote{}
	}

	data, err := json.Marshal(quotes)
	if err != nil {
		return nil, fmt.Errorf("encoding quotes: %w", err)
	}

	return data, nil
}

// DecodeDocument parses a JSON array of quote records read from r.
// Anything that is not an array of objects fails with a MalformedDocumentError
// naming source. Records are accepted on shape alone: missing fields decode
// as empty strings.
func DecodeDocument(r io.Reader, source string) ([]Quote, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading %s document: %w", source, err)
	}

	return UnmarshalQuotes(data, source)
}

// UnmarshalQuotes is DecodeDocument over an in-memory payload.
func UnmarshalQuotes(data []byte, source string) ([]Quote, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, NewMalformedDocumentError(source, fmt.Errorf("expected a JSON array"))
	}

	var quotes []Quote
	if err := json.Unmarshal(trimmed, &quotes); err != nil {
		return nil, NewMalformedDocumentError(source, err)
	}

	if quotes == nil {
		quotes = []Quote{}
	}

	return quotes, nil
}
