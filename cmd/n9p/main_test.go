package main

import "testing"

func TestDialAddr(t *testing.T) {
	tests := []struct {
		addr        string
		wantNetwork string
		wantAddress string
		wantErr     bool
	}{
		{"tcp!localhost!5640", "tcp", "localhost:5640", false},
		{"tcp!0.0.0.0!564", "tcp", "0.0.0.0:564", false},
		{"unix!/var/run/n9p.sock!0", "unix", "/var/run/n9p.sock", false},
		{":5640", "tcp", ":5640", false},
		{"sctp!host!1", "", "", true},
		{"tcp!onlyhost", "", "", true},
	}

	for _, tc := range tests {
		t.Run(tc.addr, func(t *testing.T) {
			network, address, err := dialAddr(tc.addr)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("dialAddr(%q) expected an error", tc.addr)
				}
				return
			}
			if err != nil {
				t.Fatalf("dialAddr(%q): %v", tc.addr, err)
			}
			if network != tc.wantNetwork || address != tc.wantAddress {
				t.Fatalf("dialAddr(%q) = (%q, %q), want (%q, %q)", tc.addr, network, address, tc.wantNetwork, tc.wantAddress)
			}
		})
	}
}
