// Package http provides HTTP server and handler implementations.
//
// This file implements utilities for parsing and validating HTTP request data.
// Transaction submissions may arrive as JSON or form-encoded bodies; budget
// updates must be a JSON object.

package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"fintrack/internal/core"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

var (
	errInvalidBody  = errors.New("invalid request body")
	errInvalidLimit = errors.New("invalid limit")
)

// RequestBodyParser handles different content types for request body parsing.
// It supports both JSON and form-encoded data.
type RequestBodyParser struct {
	body        []byte
	contentType string
	jsonData    map[string]any
	formData    url.Values
	parsed      bool
	err         error
}

// NewRequestBodyParser creates a parser for the given request.
// It reads the body once and stores it for subsequent parsing.
func NewRequestBodyParser(r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{
		contentType: r.Header.Get("Content-Type"),
	}
	if r.Body == nil {
		return p
	}

	p.body, p.err = io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if p.err == nil && len(p.body) > maxBodyBytes {
		p.err = fmt.Errorf("%w: body exceeds %d bytes", errInvalidBody, maxBodyBytes)
	}
	return p
}

// Parse attempts to parse the body as JSON or form data. An empty body parses
// to no fields.
func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true

	if p.err != nil {
		return p.err
	}

	trimmed := bytes.TrimSpace(p.body)
	if len(trimmed) == 0 {
		p.formData = url.Values{}
		return nil
	}

	if trimmed[0] == '{' || strings.HasPrefix(p.contentType, "application/json") {
		dec := json.NewDecoder(bytes.NewReader(trimmed))
		dec.UseNumber()
		if err := dec.Decode(&p.jsonData); err != nil || p.jsonData == nil {
			p.err = fmt.Errorf("%w: expected a JSON object", errInvalidBody)
			return p.err
		}
		return nil
	}

	p.formData, p.err = url.ParseQuery(string(trimmed))
	if p.err != nil {
		p.err = fmt.Errorf("%w: %v", errInvalidBody, p.err)
	}
	return p.err
}

// Lookup returns a field as a string and whether it was present. JSON null
// counts as absent.
func (p *RequestBodyParser) Lookup(key string) (string, bool) {
	if p.jsonData != nil {
		val, ok := p.jsonData[key]
		if !ok || val == nil {
			return "", false
		}
		return stringValue(val), true
	}
	if p.formData != nil {
		if _, ok := p.formData[key]; ok {
			return p.formData.Get(key), true
		}
	}
	return "", false
}

// Optional returns a pointer to the field value, or nil when absent.
func (p *RequestBodyParser) Optional(key string) *string {
	v, ok := p.Lookup(key)
	if !ok {
		return nil
	}
	return &v
}

// stringValue converts a decoded JSON value to string. Objects and arrays
// become empty strings so they fail validation.
func stringValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case json.Number:
		return val.String()
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// transactionInput maps the parsed body onto the normalizer input.
func (p *RequestBodyParser) transactionInput() core.TransactionInput {
	in := core.TransactionInput{
		Amount:   p.Optional("amount"),
		Date:     p.Optional("date"),
		Type:     p.Optional("type"),
		Category: p.Optional("category"),
	}
	if d := p.Optional("description"); d != nil {
		clean := sanitizeInput(*d)
		in.Description = &clean
	}
	return in
}

// parseBudgetPatch decodes a partial budget. The body must be a JSON object;
// unknown categories are ignored and a known category with a non-numeric or
// negative value rejects the whole patch.
func parseBudgetPatch(body []byte) (core.Budget, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, core.ErrMalformedRequest
	}

	var raw map[string]any
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return nil, core.ErrMalformedRequest
	}

	patch := make(core.Budget, len(raw))
	for key, val := range raw {
		c := core.Category(key)
		if !c.IsValid() {
			continue
		}
		n, ok := val.(json.Number)
		if !ok {
			return nil, fmt.Errorf("%w: %s is not a number", core.ErrMalformedRequest, key)
		}
		m, err := core.ParseMoney(n.String())
		if err != nil || m.IsNegative() {
			return nil, fmt.Errorf("%w: %s must be a non-negative number", core.ErrMalformedRequest, key)
		}
		patch[c] = m
	}
	return patch, nil
}

// parseLimit reads an optional positive ?limit= query parameter.
func parseLimit(query url.Values, max int) (int, error) {
	v := strings.TrimSpace(query.Get("limit"))
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 || n > max {
		return 0, fmt.Errorf("%w: must be between 1 and %d", errInvalidLimit, max)
	}
	return n, nil
}

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}
