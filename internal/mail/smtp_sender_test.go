package mail_test

import (
	"bufio"
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"math/big"
	"net"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"go-leave/internal/mail"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSMTP speaks just enough SMTP to accept one message, offering STARTTLS
// until the session is upgraded.
type fakeSMTP struct {
	ln   net.Listener
	cert tls.Certificate

	mu       sync.Mutex
	upgraded bool
	tlsAtTx  bool
	from     string
	rcpt     string
	data     string
	done     chan struct{}
}

func newFakeSMTP(t *testing.T) (*fakeSMTP, *x509.CertPool) {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	tmpl := &x509.Certificate{
		SerialNumber:          big.NewInt(1),
		Subject:               pkix.Name{CommonName: "127.0.0.1"},
		IPAddresses:           []net.IP{net.ParseIP("127.0.0.1")},
		NotBefore:             time.Now().Add(-time.Hour),
		NotAfter:              time.Now().Add(time.Hour),
		KeyUsage:              x509.KeyUsageDigitalSignature | x509.KeyUsageCertSign,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		BasicConstraintsValid: true,
		IsCA:                  true,
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	require.NoError(t, err)
	parsed, err := x509.ParseCertificate(der)
	require.NoError(t, err)
	pool := x509.NewCertPool()
	pool.AddCert(parsed)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })

	f := &fakeSMTP{
		ln:   ln,
		cert: tls.Certificate{Certificate: [][]byte{der}, PrivateKey: key},
		done: make(chan struct{}),
	}
	go f.serve()
	return f, pool
}

func (f *fakeSMTP) port() int {
	return f.ln.Addr().(*net.TCPAddr).Port
}

func (f *fakeSMTP) serve() {
	defer close(f.done)
	conn, err := f.ln.Accept()
	if err != nil {
		return
	}
	defer func() { _ = conn.Close() }()

	rw := bufio.NewReadWriter(bufio.NewReader(conn), bufio.NewWriter(conn))
	reply := func(lines ...string) {
		for _, l := range lines {
			_, _ = rw.WriteString(l + "\r\n")
		}
		_ = rw.Flush()
	}

	reply("220 fake ESMTP")
	for {
		line, err := rw.ReadString('\n')
		if err != nil {
			return
		}
		line = strings.TrimRight(line, "\r\n")
		verb := strings.ToUpper(strings.SplitN(line, " ", 2)[0])

		switch verb {
		case "EHLO", "HELO":
			f.mu.Lock()
			upgraded := f.upgraded
			f.mu.Unlock()
			if upgraded {
				reply("250-fake", "250 8BITMIME")
			} else {
				reply("250-fake", "250-8BITMIME", "250 STARTTLS")
			}
		case "STARTTLS":
			reply("220 ready")
			tlsConn := tls.Server(conn, &tls.Config{Certificates: []tls.Certificate{f.cert}})
			if err := tlsConn.Handshake(); err != nil {
				return
			}
			conn = tlsConn
			rw = bufio.NewReadWriter(bufio.NewReader(conn), bufio.NewWriter(conn))
			f.mu.Lock()
			f.upgraded = true
			f.mu.Unlock()
		case "MAIL":
			f.mu.Lock()
			f.from = line
			f.tlsAtTx = f.upgraded
			f.mu.Unlock()
			reply("250 ok")
		case "RCPT":
			f.mu.Lock()
			f.rcpt = line
			f.mu.Unlock()
			reply("250 ok")
		case "DATA":
			reply("354 go ahead")
			var body strings.Builder
			for {
				l, err := rw.ReadString('\n')
				if err != nil {
					return
				}
				if l == ".\r\n" {
					break
				}
				body.WriteString(l)
			}
			f.mu.Lock()
			f.data = body.String()
			f.mu.Unlock()
			reply("250 queued")
		case "QUIT":
			reply("221 bye")
			return
		default:
			reply("250 ok")
		}
	}
}

func TestSMTPSender_SendOverSTARTTLS(t *testing.T) {
	server, pool := newFakeSMTP(t)
	sender := mail.NewSMTPSender(mail.SMTPConfig{
		Host:      "127.0.0.1",
		Port:      server.port(),
		TLSConfig: &tls.Config{ServerName: "127.0.0.1", RootCAs: pool, MinVersion: tls.VersionTLS12},
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err := sender.Send(ctx, mail.Message{
		From:    "hr@example.com",
		To:      "jane@example.com",
		Subject: "Leave approved",
		Text:    "Your leave was approved.",
		HTML:    "<p>approved</p>",
	})
	require.NoError(t, err)

	select {
	case <-server.done:
	case <-time.After(5 * time.Second):
		t.Fatal("smtp session did not finish")
	}

	server.mu.Lock()
	defer server.mu.Unlock()
	assert.True(t, server.tlsAtTx, "message must be sent after STARTTLS")
	assert.Contains(t, server.from, "<hr@example.com>")
	assert.Contains(t, server.rcpt, "<jane@example.com>")
	assert.Contains(t, server.data, "Subject: Leave approved")
	assert.Contains(t, server.data, "multipart/alternative")
	assert.Contains(t, server.data, "Your leave was approved.")
	assert.Contains(t, server.data, "<p>approved</p>")
}

func TestSMTPSender_RequiresRecipient(t *testing.T) {
	sender := mail.NewSMTPSender(mail.SMTPConfig{Host: "127.0.0.1", Port: 1})

	err := sender.Send(context.Background(), mail.Message{From: "hr@example.com"})

	assert.ErrorIs(t, err, mail.ErrNoRecipient)
}

func TestSMTPSender_UnreachableServer(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port, _ := strconv.Atoi(strings.TrimPrefix(ln.Addr().String(), "127.0.0.1:"))
	require.NoError(t, ln.Close())

	sender := mail.NewSMTPSender(mail.SMTPConfig{Host: "127.0.0.1", Port: port})
	err = sender.Send(context.Background(), mail.Message{From: "hr@example.com", To: "jane@example.com", Text: "x"})

	assert.Error(t, err)
}
