package datauri

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestDecode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		uri     string
		want    []byte
		wantErr error
	}{
		{
			name: "base64 png payload",
			uri:  "data:image/png;base64,QQ==",
			want: []byte{0x41},
		},
		{
			name: "percent-encoded payload",
			uri:  "data:text/plain,hello%20world",
			want: []byte("hello world"),
		},
		{
			name: "surrounding whitespace is ignored",
			uri:  "data:image/png;base64,QUJD  ",
			want: []byte("ABC"),
		},
		{
			name:    "missing scheme",
			uri:     "image/png;base64,QQ==",
			wantErr: ErrInvalidURI,
		},
		{
			name:    "missing comma",
			uri:     "data:image/png;base64",
			wantErr: ErrInvalidURI,
		},
		{
			name:    "corrupt base64",
			uri:     "data:image/png;base64,@@@",
			wantErr: ErrInvalidURI,
		},
		{
			name:    "empty string",
			uri:     "",
			wantErr: ErrInvalidURI,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := Decode(tt.uri)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Decode(%q) error = %v, want %v", tt.uri, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Decode(%q) unexpected error: %v", tt.uri, err)
			}
			if !bytes.Equal(got, tt.want) {
				t.Errorf("Decode(%q) = %v, want %v", tt.uri, got, tt.want)
			}
		})
	}
}

func TestEncode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		data       []byte
		subtype    string
		wantPrefix string
	}{
		{
			name:       "png subtype",
			data:       []byte{0x41},
			subtype:    "png",
			wantPrefix: "data:image/png;base64,",
		},
		{
			name:       "empty subtype defaults to jpeg",
			data:       []byte{0xff, 0xd8},
			subtype:    "",
			wantPrefix: "data:image/jpeg;base64,",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := Encode(tt.data, tt.subtype)
			if !strings.HasPrefix(got, tt.wantPrefix) {
				t.Fatalf("Encode() = %q, want prefix %q", got, tt.wantPrefix)
			}

			back, err := Decode(got)
			if err != nil {
				t.Fatalf("Decode(Encode()) error: %v", err)
			}
			if !bytes.Equal(back, tt.data) {
				t.Errorf("Decode(Encode()) = %v, want %v", back, tt.data)
			}
		})
	}
}

func TestEncodeWithPrefix(t *testing.T) {
	t.Parallel()

	got := EncodeWithPrefix([]byte("x"), "application", "octet-stream")
	if !strings.HasPrefix(got, "data:application/octet-stream;base64,") {
		t.Errorf("EncodeWithPrefix() = %q", got)
	}
}

func TestMediaType(t *testing.T) {
	t.Parallel()

	got, err := MediaType("data:image/png;base64,QQ==")
	if err != nil {
		t.Fatalf("MediaType() error: %v", err)
	}
	if got != "image/png" {
		t.Errorf("MediaType() = %q, want %q", got, "image/png")
	}

	if _, err := MediaType("nope"); !errors.Is(err, ErrInvalidURI) {
		t.Errorf("MediaType(nope) error = %v, want ErrInvalidURI", err)
	}
}

func TestIsDataURI(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want bool
	}{
		{"data:image/png;base64,QQ==", true},
		{"DATA:image/png;base64,QQ==", true},
		{"tmp/tmp0.png", false},
		{"https://example.com/a.png", false},
		{"data", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := IsDataURI(tt.in); got != tt.want {
			t.Errorf("IsDataURI(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
