// Package datauri encodes and decodes image payloads as RFC 2397 data URIs.
// It wraps the dataurl library so callers see a small bytes-in/bytes-out API.
package datauri

import (
	"errors"
	"fmt"
	"strings"

	"github.com/vincent-petithory/dataurl"
)

// ErrInvalidURI indicates the input is not a well-formed data URI.
var ErrInvalidURI = errors.New("invalid data URI")

// Defaults applied when Encode is called with empty arguments.
const (
	DefaultPrefix  = "image"
	DefaultSubtype = "jpeg"
)

const scheme = "data:"

// Encode returns data as a base64 data URI with media type image/<subtype>.
// An empty subtype falls back to DefaultSubtype.
func Encode(data []byte, subtype string) string {
	return EncodeWithPrefix(data, DefaultPrefix, subtype)
}

// EncodeWithPrefix returns data as a base64 data URI with media type <prefix>/<subtype>.
func EncodeWithPrefix(data []byte, prefix, subtype string) string {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	if subtype == "" {
		subtype = DefaultSubtype
	}
	return dataurl.New(data, prefix+"/"+subtype).String()
}

// Decode returns the payload of a data URI.
// Both base64 and percent-encoded payloads are accepted.
func Decode(uri string) ([]byte, error) {
	du, err := parse(uri)
	if err != nil {
		return nil, err
	}
	return du.Data, nil
}

// MediaType returns the "type/subtype" declared by a data URI.
func MediaType(uri string) (string, error) {
	du, err := parse(uri)
	if err != nil {
		return "", err
	}
	return du.MediaType.ContentType(), nil
}

// IsDataURI reports whether s uses the data: scheme. It does not validate the payload.
func IsDataURI(s string) bool {
	return len(s) >= len(scheme) && strings.EqualFold(s[:len(scheme)], scheme)
}

func parse(uri string) (*dataurl.DataURL, error) {
	if !IsDataURI(uri) {
		return nil, fmt.Errorf("%w: missing %q scheme", ErrInvalidURI, scheme)
	}
	du, err := dataurl.DecodeString(strings.TrimSpace(uri))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidURI, err)
	}
	return du, nil
}
