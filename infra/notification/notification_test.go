package notification

import (
	"context"
	"errors"
	"net"
	"net/smtp"
	"testing"
	"time"

	"github.com/demonyhq/demony/pkg/config"
	"github.com/demonyhq/demony/pkg/notification"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogNotifier_RecordsMessages(t *testing.T) {
	n := NewLogNotifier(nil)
	to := notification.Recipient{Email: "ama@example.com", Name: "Ama"}
	require.NoError(t, n.Send(context.Background(), notification.TemplateDepositCompleted, to, map[string]any{"amount": "GHS 200.00"}))

	sent := n.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, notification.TemplateDepositCompleted, sent[0].Template)
	assert.Equal(t, "ama@example.com", sent[0].To.Email)
}

func TestSMTPNotifier_Send(t *testing.T) {
	n, err := NewSMTPNotifier(&config.SMTP{Host: "smtp.example.com", Port: 587, From: "Demony <no-reply@demony.app>"}, nil)
	require.NoError(t, err)

	var gotAddr, gotFrom string
	var gotMsg []byte
	n.send = func(_ context.Context, addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr = addr
		gotFrom = from
		gotMsg = msg
		assert.Equal(t, []string{"kofi@example.com"}, to)
		return nil
	}

	err = n.Send(context.Background(), notification.TemplateProfitDistributed,
		notification.Recipient{Email: "kofi@example.com", Name: "Kofi"},
		map[string]any{"project": "Cassava Farm", "amount": "GHS 160.00"})
	require.NoError(t, err)
	assert.Equal(t, "smtp.example.com:587", gotAddr)
	assert.Equal(t, "no-reply@demony.app", gotFrom)
	assert.Contains(t, string(gotMsg), "Subject: You received a profit share")
	assert.Contains(t, string(gotMsg), "amount: GHS 160.00\r\nproject: Cassava Farm")
}

func TestSMTPNotifier_Errors(t *testing.T) {
	_, err := NewSMTPNotifier(&config.SMTP{}, nil)
	require.Error(t, err)

	n, err := NewSMTPNotifier(&config.SMTP{Host: "localhost", Port: 25}, nil)
	require.NoError(t, err)
	n.send = func(context.Context, string, smtp.Auth, string, []string, []byte) error { return errors.New("refused") }

	err = n.Send(context.Background(), notification.TemplateKYCReviewed, notification.Recipient{Email: "a@b.co"}, nil)
	assert.ErrorContains(t, err, "refused")

	err = n.Send(context.Background(), notification.TemplateKYCReviewed, notification.Recipient{}, nil)
	assert.Error(t, err)
}

// silentServer accepts connections and never sends the SMTP greeting.
func silentServer(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	done := make(chan struct{})
	t.Cleanup(func() {
		close(done)
		_ = ln.Close()
	})
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go func() {
				<-done
				_ = conn.Close()
			}()
		}
	}()
	return ln.Addr().(*net.TCPAddr).Port
}

func TestSMTPNotifier_StalledServerTimesOut(t *testing.T) {
	port := silentServer(t)
	n, err := NewSMTPNotifier(&config.SMTP{Host: "127.0.0.1", Port: port, From: "no-reply@demony.app", Timeout: 200 * time.Millisecond}, nil)
	require.NoError(t, err)

	start := time.Now()
	err = n.Send(context.Background(), notification.TemplateDepositCompleted, notification.Recipient{Email: "ama@example.com"}, nil)
	require.Error(t, err)
	assert.Less(t, time.Since(start), 3*time.Second)
}

func TestSMTPNotifier_CancelledContextAbortsSession(t *testing.T) {
	port := silentServer(t)
	n, err := NewSMTPNotifier(&config.SMTP{Host: "127.0.0.1", Port: port, Timeout: time.Minute}, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()
	start := time.Now()
	err = n.Send(ctx, notification.TemplateKYCReviewed, notification.Recipient{Email: "kofi@example.com"}, nil)
	require.Error(t, err)
	assert.Less(t, time.Since(start), 3*time.Second)
}
