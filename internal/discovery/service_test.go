package discovery

import "testing"

func TestService_String(t *testing.T) {
	svc := &Service{
		Instance: "bench-1",
		Hostname: "bench-1.local.",
		IP:       "192.168.4.16",
		Port:     8716,
	}

	expected := "bench-1 (bench-1.local.) at 192.168.4.16:8716"
	if svc.String() != expected {
		t.Errorf("Service.String() = %v, want %v", svc.String(), expected)
	}
}

func TestService_URL(t *testing.T) {
	tests := []struct {
		name     string
		svc      *Service
		expected string
	}{
		{
			name:     "advertised path",
			svc:      &Service{IP: "192.168.4.16", Port: 8716, Path: "/decode"},
			expected: "ws://192.168.4.16:8716/decode",
		},
		{
			name:     "custom path",
			svc:      &Service{IP: "10.0.0.5", Port: 9000, Path: "/v2/decode"},
			expected: "ws://10.0.0.5:9000/v2/decode",
		},
		{
			name:     "no path",
			svc:      &Service{IP: "10.0.0.5", Port: 9000},
			expected: "ws://10.0.0.5:9000/decode",
		},
		{
			name:     "secure",
			svc:      &Service{IP: "10.0.0.5", Port: 8443, Path: "/decode", Secure: true},
			expected: "wss://10.0.0.5:8443/decode",
		},
		{
			name:     "IPv6",
			svc:      &Service{IP: "fe80::1", Port: 8716, Path: "/decode"},
			expected: "ws://[fe80::1]:8716/decode",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.svc.URL(); got != tt.expected {
				t.Errorf("Service.URL() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestService_GetMetadata_NilMap(t *testing.T) {
	svc := &Service{}
	if got := svc.GetMetadata("path"); got != "" {
		t.Errorf("GetMetadata() on nil map = %q, want empty string", got)
	}
}
