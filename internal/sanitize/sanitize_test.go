package sanitize_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/edgard/crmbot/internal/sanitize"
)

func TestPolicy_Text(t *testing.T) {
	t.Parallel()

	p := sanitize.NewPlainTextPolicy()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "   ", ""},
		{"plain", "call the client", "call the client"},
		{"markdown emphasis", "call **Acme** _today_", "call Acme today"},
		{"html tags", "<b>call</b> back", "call back"},
		{"entities", "Q&A with Smith & Co", "Q&A with Smith & Co"},
		{"link", "[invoice](https://example.com/42)", "invoice"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, p.Text(tt.in))
		})
	}
}
