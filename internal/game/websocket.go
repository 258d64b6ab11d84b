package game

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(_ *http.Request) bool { return true },
}

// defaultMessageLimit is the fragment size used when no limit is configured.
const defaultMessageLimit = 4096

// wsConn carries one line of input per text message. Messages longer than
// limit are handed over as consecutive fragments of at most limit bytes.
// Output messages are sent as text frames.
type wsConn struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
	limit   int

	// message is the text message being read, nil between messages.
	message io.Reader
	// split is set once the current message has produced a fragment.
	split bool
	carry []byte
}

func (c *wsConn) ReadLine() (string, error) {
	for {
		if c.message == nil {
			kind, r, err := c.conn.NextReader()
			if err != nil {
				return "", err
			}
			if kind != websocket.TextMessage {
				continue
			}
			c.message, c.split, c.carry = r, false, nil
		}

		buf := make([]byte, c.limit)
		n := copy(buf, c.carry)
		c.carry = nil
		read, err := io.ReadFull(c.message, buf[n:])
		n += read
		switch {
		case err == nil:
			cut := runePrefix(buf[:n])
			if cut == 0 {
				cut = n
			}
			c.carry = append([]byte(nil), buf[cut:n]...)
			c.split = true
			return string(buf[:cut]), nil
		case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
			c.message = nil
			if n == 0 && c.split {
				continue
			}
			return strings.TrimRight(string(buf[:n]), "\r\n"), nil
		default:
			c.message = nil
			return "", err
		}
	}
}

func (c *wsConn) WriteString(msg string) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, []byte(msg))
}

func (c *wsConn) Width() int { return 0 }

func (c *wsConn) Close() error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	return c.conn.Close()
}

// WebSocketHandler upgrades requests and serves each connection like a
// telnet client. Messages above messageLimit bytes reach the session as
// several lines.
func WebSocketHandler(h *Hub, dispatch Dispatcher, messageLimit int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			h.logger.Warn("websocket upgrade failed", zap.String("remote", r.RemoteAddr), zap.Error(err))
			return
		}
		if messageLimit <= 0 {
			messageLimit = defaultMessageLimit
		}
		serveConn(r.Context(), h, &wsConn{conn: conn, limit: messageLimit}, dispatch, r.RemoteAddr)
	}
}
