package game

import (
	"bufio"
	"bytes"
	"net"
	"sync"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

const (
	telnetIAC  byte = 255
	telnetDONT byte = 254
	telnetDO   byte = 253
	telnetWONT byte = 252
	telnetWILL byte = 251
	telnetSB   byte = 250
	telnetSE   byte = 240
)

const (
	telnetOptEcho       byte = 1
	telnetOptSuppressGA byte = 3
	telnetOptWindowSize byte = 31
	telnetOptLineMode   byte = 34
)

// maxTelnetLine caps a single input line; longer lines are delivered as
// several consecutive fragments.
const maxTelnetLine = 64 << 10

// TelnetConn speaks a minimal telnet dialect over a raw TCP connection:
// option negotiation is answered, window size is tracked, and input that is
// not valid UTF-8 is read as Latin-1.
type TelnetConn struct {
	conn   net.Conn
	reader *bufio.Reader
	mu     sync.Mutex
	width  int
	// carry holds the bytes of a split character that open the next fragment.
	carry []byte
}

// NewTelnetConn negotiates options on conn and returns the wrapped session.
func NewTelnetConn(conn net.Conn) *TelnetConn {
	c := &TelnetConn{
		conn:   conn,
		reader: bufio.NewReader(conn),
		width:  80,
	}
	_ = c.writeCommand(telnetWILL, telnetOptSuppressGA)
	_ = c.writeCommand(telnetWONT, telnetOptEcho)
	_ = c.writeCommand(telnetDONT, telnetOptLineMode)
	_ = c.writeCommand(telnetDO, telnetOptWindowSize)
	return c
}

func (c *TelnetConn) writeCommand(cmd, opt byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, err := c.conn.Write([]byte{telnetIAC, cmd, opt})
	return err
}

// WriteString sends msg with bare newlines expanded and IAC bytes escaped.
func (c *TelnetConn) WriteString(msg string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, err := c.conn.Write(translateForTelnet(msg))
	return err
}

func translateForTelnet(msg string) []byte {
	var buf bytes.Buffer
	var prev byte
	for i := 0; i < len(msg); i++ {
		b := msg[i]
		switch b {
		case '\n':
			if prev != '\r' {
				buf.WriteByte('\r')
			}
			buf.WriteByte('\n')
		case telnetIAC:
			buf.WriteByte(telnetIAC)
			buf.WriteByte(telnetIAC)
		default:
			buf.WriteByte(b)
		}
		prev = b
	}
	return buf.Bytes()
}

// ReadLine returns the next line typed by the client without its
// terminator.
func (c *TelnetConn) ReadLine() (string, error) {
	var buf bytes.Buffer
	buf.Write(c.carry)
	c.carry = nil
	for {
		b, err := c.reader.ReadByte()
		if err != nil {
			return "", err
		}
		switch b {
		case '\r':
			if next, err := c.reader.Peek(1); err == nil && (next[0] == '\n' || next[0] == 0) {
				_, _ = c.reader.ReadByte()
			}
			return decodeLine(buf.Bytes()), nil
		case '\n':
			return decodeLine(buf.Bytes()), nil
		case 0x08, 0x7f:
			if n := buf.Len(); n > 0 {
				buf.Truncate(n - 1)
			}
		case 0x00:
		case telnetIAC:
			if err := c.handleIAC(&buf); err != nil {
				return "", err
			}
		default:
			buf.WriteByte(b)
			if buf.Len() >= maxTelnetLine {
				return c.fragment(buf.Bytes()), nil
			}
		}
	}
}

// fragment returns the leading complete characters of an oversized line and
// keeps the rest for the next read.
func (c *TelnetConn) fragment(raw []byte) string {
	cut := runePrefix(raw)
	c.carry = append([]byte(nil), raw[cut:]...)
	return decodeLine(raw[:cut])
}

// decodeLine interprets raw as UTF-8, falling back to Latin-1 for clients
// that do not speak UTF-8.
func decodeLine(raw []byte) string {
	if utf8.Valid(raw) {
		return string(raw)
	}
	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(raw)
	if err != nil {
		return string(bytes.ToValidUTF8(raw, nil))
	}
	return string(decoded)
}

func (c *TelnetConn) handleIAC(buf *bytes.Buffer) error {
	cmd, err := c.reader.ReadByte()
	if err != nil {
		return err
	}
	switch cmd {
	case telnetIAC:
		buf.WriteByte(telnetIAC)
	case telnetDO, telnetDONT, telnetWILL, telnetWONT:
		opt, err := c.reader.ReadByte()
		if err != nil {
			return err
		}
		c.negotiate(cmd, opt)
	case telnetSB:
		return c.handleSubnegotiation()
	}
	return nil
}

func (c *TelnetConn) negotiate(cmd, opt byte) {
	switch cmd {
	case telnetDO:
		if opt == telnetOptSuppressGA {
			_ = c.writeCommand(telnetWILL, opt)
		} else {
			_ = c.writeCommand(telnetWONT, opt)
		}
	case telnetDONT:
		_ = c.writeCommand(telnetWONT, opt)
	case telnetWILL:
		if opt == telnetOptWindowSize {
			return
		}
		_ = c.writeCommand(telnetDONT, opt)
	case telnetWONT:
		_ = c.writeCommand(telnetDONT, opt)
	}
}

func (c *TelnetConn) handleSubnegotiation() error {
	opt, err := c.reader.ReadByte()
	if err != nil {
		return err
	}
	payload := make([]byte, 0, 16)
	for {
		b, err := c.reader.ReadByte()
		if err != nil {
			return err
		}
		if b != telnetIAC {
			payload = append(payload, b)
			continue
		}
		esc, err := c.reader.ReadByte()
		if err != nil {
			return err
		}
		if esc == telnetSE {
			break
		}
		if esc == telnetIAC {
			payload = append(payload, telnetIAC)
		}
	}
	if opt == telnetOptWindowSize && len(payload) >= 4 {
		if width := int(payload[0])<<8 | int(payload[1]); width > 0 {
			c.mu.Lock()
			c.width = width
			c.mu.Unlock()
		}
	}
	return nil
}

// Width is the last window width the client reported.
func (c *TelnetConn) Width() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.width
}

// Close closes the underlying connection.
func (c *TelnetConn) Close() error {
	return c.conn.Close()
}
