package email

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildMessage(t *testing.T) {
	tests := []struct {
		name    string
		from    string
		msg     Message
		wantErr string
	}{
		{"missing from", "", Message{To: []string{"a@b.co"}, Subject: "s", TextBody: "t"}, "from is required"},
		{"missing recipient", "x@y.co", Message{To: []string{"  "}, Subject: "s", TextBody: "t"}, "recipient"},
		{"missing subject", "x@y.co", Message{To: []string{"a@b.co"}, TextBody: "t"}, "subject is required"},
		{"missing body", "x@y.co", Message{To: []string{"a@b.co"}, Subject: "s"}, "TextBody or HTMLBody"},
		{"valid multipart", "x@y.co", Message{To: []string{"a@b.co"}, Subject: "s", TextBody: "t", HTMLBody: "<p>t</p>"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := buildMessage(tt.from, tt.msg)
			if tt.wantErr == "" {
				require.NoError(t, err)
				assert.Equal(t, []string{"a@b.co"}, m.GetHeader("To"))
				return
			}
			var invalid ErrInvalidMessage
			require.True(t, errors.As(err, &invalid))
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestSend_Disabled(t *testing.T) {
	c := New(DefaultConfig())
	err := c.Send(context.Background(), Message{})
	assert.ErrorIs(t, err, ErrDisabled{})
}

func TestLoadConfig(t *testing.T) {
	t.Setenv(EnvSMTPHost, "smtp.example.com")
	t.Setenv(EnvSMTPPort, "465")
	t.Setenv(EnvSMTPSSL, "true")
	t.Setenv(EnvSMTPTimeout, "10s")
	t.Setenv(EnvAdminEmail, "ops@example.com")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.True(t, cfg.Enabled)
	assert.Equal(t, 465, cfg.SMTPPort)
	assert.True(t, cfg.SMTPSSL)
	assert.Equal(t, 10*time.Second, cfg.SMTPTimeout)
}

func TestLoadConfig_RequiresAdminWhenEnabled(t *testing.T) {
	t.Setenv(EnvSMTPHost, "smtp.example.com")
	t.Setenv(EnvAdminEmail, "")

	_, err := LoadConfig()
	assert.ErrorContains(t, err, EnvAdminEmail)
}

func TestLoadConfig_DisabledWithoutHost(t *testing.T) {
	t.Setenv(EnvSMTPHost, "")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.False(t, cfg.Enabled)
}
