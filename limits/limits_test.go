package limits

import (
	"errors"
	"strings"
	"testing"
)

// TestMaxPacketSizeMatchesUDP verifies that MaxPacketSize is the IPv4 UDP payload limit
func TestMaxPacketSizeMatchesUDP(t *testing.T) {
	if MaxPacketSize != 65535-8-20 {
		t.Errorf("MaxPacketSize = %d, want %d", MaxPacketSize, 65535-8-20)
	}
}

func TestValidatePacketSize(t *testing.T) {
	tests := []struct {
		name    string
		size    int
		max     int
		wantErr error
	}{
		{"empty", 0, 16, ErrPacketEmpty},
		{"at limit", 16, 16, nil},
		{"over limit", 17, 16, ErrPacketTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePacketSize(make([]byte, tt.size), tt.max)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidatePacketSize(%d, %d) = %v, want %v", tt.size, tt.max, err, tt.wantErr)
			}
		})
	}

	if err := ValidatePacket(make([]byte, MaxPacketSize+1)); !errors.Is(err, ErrPacketTooLarge) {
		t.Errorf("ValidatePacket over MaxPacketSize = %v, want ErrPacketTooLarge", err)
	}
}

func TestValidateAddress(t *testing.T) {
	valid := []string{"/a", "/test/alive/", "/fader/1"}
	for _, addr := range valid {
		if err := ValidateAddress(addr); err != nil {
			t.Errorf("ValidateAddress(%q) = %v, want nil", addr, err)
		}
	}

	invalid := []string{"", "a/b", "/with space", "/" + strings.Repeat("x", MaxAddressLength)}
	for _, addr := range invalid {
		if err := ValidateAddress(addr); !errors.Is(err, ErrInvalidAddress) {
			t.Errorf("ValidateAddress(%q) = %v, want ErrInvalidAddress", addr, err)
		}
	}
}

func TestValidatePort(t *testing.T) {
	for _, p := range []int{1, 8000, 65535} {
		if err := ValidatePort(p); err != nil {
			t.Errorf("ValidatePort(%d) = %v", p, err)
		}
	}
	for _, p := range []int{0, -1, 65536} {
		if err := ValidatePort(p); !errors.Is(err, ErrInvalidPort) {
			t.Errorf("ValidatePort(%d) = %v, want ErrInvalidPort", p, err)
		}
	}
}

func TestValidateLogLength(t *testing.T) {
	if err := ValidateLogLength(DefaultLogLength); err != nil {
		t.Errorf("default log length rejected: %v", err)
	}
	if err := ValidateLogLength(0); err == nil {
		t.Error("expected error for zero log length")
	}
	if err := ValidateLogLength(MaxLogLength + 1); err == nil {
		t.Error("expected error above MaxLogLength")
	}
}
