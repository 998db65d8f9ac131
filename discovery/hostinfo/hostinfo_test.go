package hostinfo

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/kbukum/localdiscovery/logger"
)

func TestSystemHostname(t *testing.T) {
	tests := []struct {
		name    string
		sys     System
		want    string
		wantErr string
	}{
		{
			name: "resolvable",
			sys: System{
				ReadHostname: func() (string, error) { return "box-1", nil },
				LookupHost:   func(context.Context, string) ([]string, error) { return []string{"10.0.0.5"}, nil },
			},
			want: "box-1",
		},
		{
			name: "hostname read fails",
			sys: System{
				ReadHostname: func() (string, error) { return "", fmt.Errorf("uts unavailable") },
			},
			wantErr: "read hostname",
		},
		{
			name: "empty hostname",
			sys: System{
				ReadHostname: func() (string, error) { return "", nil },
			},
			wantErr: "empty",
		},
		{
			name: "lookup fails",
			sys: System{
				ReadHostname: func() (string, error) { return "box-1", nil },
				LookupHost:   func(context.Context, string) ([]string, error) { return nil, fmt.Errorf("no such host") },
			},
			wantErr: "lookup box-1",
		},
		{
			name: "no addresses",
			sys: System{
				ReadHostname: func() (string, error) { return "box-1", nil },
				LookupHost:   func(context.Context, string) ([]string, error) { return nil, nil },
			},
			wantErr: "no addresses",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := tc.sys.Hostname(context.Background())
			if tc.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
					t.Fatalf("expected error containing %q, got %v", tc.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Errorf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestResolveOrDefault(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		r := ResolverFunc(func(context.Context) (string, error) { return "box-1", nil })
		if got := ResolveOrDefault(context.Background(), r, logger.NewNop()); got != "box-1" {
			t.Errorf("expected box-1, got %q", got)
		}
	})

	t.Run("failure falls back and logs", func(t *testing.T) {
		var buf bytes.Buffer
		log := logger.NewWithWriter(&logger.Config{Level: "info", Format: logger.FormatJSON}, "svc", &buf)
		r := ResolverFunc(func(context.Context) (string, error) { return "", fmt.Errorf("no such host") })

		if got := ResolveOrDefault(context.Background(), r, log); got != DefaultHost {
			t.Errorf("expected %q, got %q", DefaultHost, got)
		}
		out := buf.String()
		if !strings.Contains(out, "HOST_RESOLUTION_FAILED") || !strings.Contains(out, "no such host") {
			t.Errorf("expected failure to be logged, got %s", out)
		}
	})

	t.Run("empty name falls back", func(t *testing.T) {
		r := ResolverFunc(func(context.Context) (string, error) { return "", nil })
		if got := ResolveOrDefault(context.Background(), r, logger.NewNop()); got != DefaultHost {
			t.Errorf("expected %q, got %q", DefaultHost, got)
		}
	})
}
