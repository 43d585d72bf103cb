// Package smtpprobe opens a single plaintext SMTP session to a mail
// exchanger and asks, via RCPT TO, whether it would accept an address.
// No message body is ever transmitted. The session is closed with a
// best-effort QUIT on every exit path.
package smtpprobe

import (
	"bufio"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"
)

// DialFunc is injectable for testing. Defaults to net.DialTimeout.
type DialFunc func(network, address string, timeout time.Duration) (net.Conn, error)

// Config configures the probe client.
type Config struct {
	// HeloDomain is the domain sent in the HELO command. Default: "localhost"
	HeloDomain string
	// Port is the SMTP port. Default: "25"
	Port string
	// Timeout bounds the connect and the whole command exchange. Default: 10s
	Timeout time.Duration
	// Dial is injectable for testing. Defaults to net.DialTimeout.
	Dial DialFunc
}

// Client performs one-shot RCPT probes. It holds no connections
// between calls; every probe is a fresh session.
type Client struct {
	cfg Config
}

// New creates a probe client, filling in defaults for unset values.
func New(cfg Config) *Client {
	if cfg.HeloDomain == "" {
		cfg.HeloDomain = "localhost"
	}
	if cfg.Port == "" {
		cfg.Port = "25"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.Dial == nil {
		cfg.Dial = net.DialTimeout
	}
	return &Client{cfg: cfg}
}

// TransportError reports a failure of the SMTP dialog itself: the
// connection could not be opened, broke mid-exchange, or the server
// refused the dialog before the recipient question was asked.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("smtp %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// CheckRCPT connects to mxHost and performs, strictly in order:
// banner, HELO, MAIL FROM:<from>, RCPT TO:<to>. It returns the RCPT
// reply code and the server's response text, whatever the code; a
// non-250 reply is a normal protocol exchange, not an error. The
// connection is closed (QUIT, best effort) before returning.
func (c *Client) CheckRCPT(mxHost, from, to string) (code int, response string, err error) {
	address := net.JoinHostPort(mxHost, c.cfg.Port)
	netConn, err := c.cfg.Dial("tcp", address, c.cfg.Timeout)
	if err != nil {
		return 0, "", &TransportError{Op: "connect " + address, Err: err}
	}

	s := &session{
		conn:   netConn,
		reader: bufio.NewReader(netConn),
		writer: bufio.NewWriter(netConn),
	}
	defer s.close()

	if err := netConn.SetDeadline(time.Now().Add(c.cfg.Timeout)); err != nil {
		return 0, "", &TransportError{Op: "set deadline", Err: err}
	}

	// Banner
	bannerCode, bannerMsg, err := readResponse(s.reader)
	if err != nil {
		return 0, "", err
	}
	if bannerCode >= 400 {
		return 0, "", &TransportError{Op: "greeting", Err: fmt.Errorf("server refused connection: %s", bannerMsg)}
	}

	// HELO
	heloCode, heloMsg, err := s.command(fmt.Sprintf("HELO %s\r\n", c.cfg.HeloDomain))
	if err != nil {
		return 0, "", err
	}
	if heloCode >= 400 {
		return 0, "", &TransportError{Op: "helo", Err: fmt.Errorf("HELO rejected: %s", heloMsg)}
	}

	// MAIL FROM
	mailCode, mailMsg, err := s.command(fmt.Sprintf("MAIL FROM:<%s>\r\n", from))
	if err != nil {
		return 0, "", err
	}
	if mailCode >= 400 {
		// The transaction itself was refused; the recipient question
		// was never asked.
		return 0, "", &TransportError{Op: "mail from", Err: fmt.Errorf("MAIL FROM rejected: %s", mailMsg)}
	}

	// RCPT TO carries the answer of interest.
	return s.command(fmt.Sprintf("RCPT TO:<%s>\r\n", to))
}

type session struct {
	conn   net.Conn
	reader *bufio.Reader
	writer *bufio.Writer
}

// command sends one SMTP command and reads the response.
func (s *session) command(cmd string) (int, string, error) {
	if _, err := s.writer.WriteString(cmd); err != nil {
		return 0, "", &TransportError{Op: "write", Err: err}
	}
	if err := s.writer.Flush(); err != nil {
		return 0, "", &TransportError{Op: "write", Err: err}
	}
	return readResponse(s.reader)
}

// close sends a best-effort QUIT and closes the connection.
func (s *session) close() {
	_ = s.conn.SetDeadline(time.Now().Add(2 * time.Second))
	_, _ = s.writer.WriteString("QUIT\r\n")
	_ = s.writer.Flush()
	_ = s.conn.Close()
}

// readResponse reads a (possibly multi-line) SMTP response. Both read
// failures and replies that cannot be parsed are transport errors: an
// unparsable reply is a protocol violation.
func readResponse(r *bufio.Reader) (code int, full string, err error) {
	var lines []string
	for {
		line, readErr := r.ReadString('\n')
		if readErr != nil {
			return 0, "", &TransportError{Op: "read", Err: readErr}
		}
		line = strings.TrimRight(line, "\r\n")
		if len(line) < 3 {
			return 0, "", &TransportError{Op: "response", Err: errors.New("malformed SMTP response: line too short")}
		}
		lines = append(lines, line)
		// If the 4th character is not '-', this is the last line.
		if len(line) < 4 || line[3] != '-' {
			break
		}
	}

	lastLine := lines[len(lines)-1]
	if _, err := fmt.Sscanf(lastLine[:3], "%d", &code); err != nil {
		return 0, "", &TransportError{Op: "response", Err: fmt.Errorf("malformed SMTP response code %q", lastLine[:3])}
	}
	return code, strings.Join(lines, " | "), nil
}
