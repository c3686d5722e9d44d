package vm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "https://example.com", want: "https://example.com"},
		{in: "  http://example.com/a?b=c  ", want: "http://example.com/a?b=c"},
		{in: "example.com", want: "https://example.com"},
		{in: "HTTPS://Example.com", want: "https://Example.com"},
		{in: "example.com/?next=https://foo.com", want: "https://example.com/?next=https://foo.com"},
		{in: "example.com/login?r=http://a.b", want: "https://example.com/login?r=http://a.b"},
		{in: "localhost:8080/app", want: "https://localhost:8080/app"},
		{in: "", wantErr: true},
		{in: "   ", wantErr: true},
		{in: "ftp://example.com", wantErr: true},
		{in: "file:///etc/passwd", wantErr: true},
		{in: "javascript:alert(1)", wantErr: true},
		{in: "https://", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := NormalizeURL(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidURL)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
