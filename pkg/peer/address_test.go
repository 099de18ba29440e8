package peer

import (
	"errors"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Address
		wantErr error
	}{
		{
			name:  "valid address",
			input: "76561198012345678",
			want:  Address(76561198012345678),
		},
		{
			name:  "small address",
			input: "1",
			want:  Address(1),
		},
		{
			name:  "max uint64",
			input: "18446744073709551615",
			want:  Address(18446744073709551615),
		},
		{
			name:    "empty",
			input:   "",
			wantErr: ErrEmptyAddress,
		},
		{
			name:    "zero",
			input:   "0",
			wantErr: ErrMalformedAddress,
		},
		{
			name:    "not a number",
			input:   "peer-one",
			wantErr: ErrMalformedAddress,
		},
		{
			name:    "negative",
			input:   "-42",
			wantErr: ErrMalformedAddress,
		},
		{
			name:    "overflow",
			input:   "18446744073709551616",
			wantErr: ErrMalformedAddress,
		},
		{
			name:    "trailing garbage",
			input:   "1234x",
			wantErr: ErrMalformedAddress,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Parse(%q) error = %v, want %v", tt.input, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse(%q) failed: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("Parse(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestAddressRoundTrip(t *testing.T) {
	addr := Address(76561198012345678)
	got, err := Parse(addr.String())
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if got != addr {
		t.Errorf("round trip = %v, want %v", got, addr)
	}
}

func TestAddressIsValid(t *testing.T) {
	if Address(0).IsValid() {
		t.Error("zero address should be invalid")
	}
	if !Address(1).IsValid() {
		t.Error("non-zero address should be valid")
	}
}

func TestEndpoint(t *testing.T) {
	ep := NewEndpoint(Address(42))

	if ep.Network() != "seam" {
		t.Errorf("Network() = %q, want %q", ep.Network(), "seam")
	}
	if ep.String() != "42" {
		t.Errorf("String() = %q, want %q", ep.String(), "42")
	}
	if ep.Peer() != Address(42) {
		t.Errorf("Peer() = %v, want 42", ep.Peer())
	}
}
