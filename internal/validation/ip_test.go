package validation

import (
	"errors"
	"testing"
)

func TestIsValidIP(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{input: "1.1.1.1", want: true},
		{input: " 10.0.0.1 ", want: true},
		{input: "2606:4700:4700::1111", want: true},
		{input: "::1", want: true},
		{input: "::ffff:192.0.2.1", want: true},
		{input: "fe80::1%eth0", want: true},
		{input: "", want: false},
		{input: "   ", want: false},
		{input: "256.1.1.1", want: false},
		{input: "1.1.1", want: false},
		{input: "10.0.0.0/8", want: false},
		{input: "example.com", want: false},
		{input: "2606:4700:::1111", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := IsValidIP(tt.input); got != tt.want {
				t.Fatalf("IsValidIP(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestCanonicalIP(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr error
	}{
		{name: "ipv4", input: "192.0.2.10", want: "192.0.2.10"},
		{name: "ipv4 padded", input: "  192.0.2.10\t", want: "192.0.2.10"},
		{name: "ipv6 expanded", input: "2606:4700:4700:0:0:0:0:1111", want: "2606:4700:4700::1111"},
		{name: "ipv6 leading zeros", input: "2001:0db8:0000:0000:0000:ff00:0042:8329", want: "2001:db8::ff00:42:8329"},
		{name: "ipv6 uppercase", input: "2001:DB8::A", want: "2001:db8::a"},
		{name: "ipv6 longest run", input: "2001:db8:0:0:1:0:0:1", want: "2001:db8::1:0:0:1"},
		{name: "ipv4 mapped", input: "0:0:0:0:0:ffff:c000:0201", want: "::ffff:192.0.2.1"},
		{name: "empty", input: "", wantErr: ErrIPEmpty},
		{name: "invalid", input: "not-an-ip", wantErr: ErrIPInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CanonicalIP(tt.input)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("CanonicalIP(%q) error = %v, want %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Fatalf("CanonicalIP(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func BenchmarkCanonicalIPv6(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := CanonicalIP("2606:4700:4700:0:0:0:0:1111"); err != nil {
			b.Fatalf("CanonicalIP() error = %v", err)
		}
	}
}

func TestIsIPv4(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{input: "192.0.2.1", want: true},
		{input: "::ffff:192.0.2.1", want: false},
		{input: "2001:db8::1", want: false},
		{input: "bogus", want: false},
	}
	for _, tt := range tests {
		if got := IsIPv4(tt.input); got != tt.want {
			t.Fatalf("IsIPv4(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}
