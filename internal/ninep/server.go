package ninep

import (
	"context"
	"net"
	"sync"

	"github.com/rs/xid"
	"github.com/sirupsen/logrus"
)

// Server accepts 9P2000.L connections and dispatches each to Backend.
// One Backend instance is shared across connections; per-connection
// state (the fid table) lives in a fresh Dispatcher per accepted
// conn. One read loop per connection, one goroutine per decoded
// request, replies serialized through a single writer mutex.
type Server[Aux any] struct {
	Backend Backend[Aux]
	Logger  logrus.FieldLogger
	Metrics *Metrics

	// Msize is the server's own ceiling on negotiated frame size.
	// Defaults to MaxMessageSize when zero.
	Msize uint32
}

// NewServer creates a server over backend, with a logger that emits
// warnings and above; callers typically replace Logger before calling
// Serve.
func NewServer[Aux any](backend Backend[Aux]) *Server[Aux] {
	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)
	return &Server[Aux]{Backend: backend, Logger: logger, Msize: MaxMessageSize}
}

// Serve accepts connections on ln until ctx is cancelled or Accept
// fails fatally.
func (s *Server[Aux]) Serve(ctx context.Context, ln net.Listener) error {
	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	var wg sync.WaitGroup
	for {
		conn, err := ln.Accept()
		if err != nil {
			wg.Wait()
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
				return err
			}
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.handleConn(ctx, conn)
		}()
	}
}

func (s *Server[Aux]) handleConn(ctx context.Context, conn net.Conn) {
	connID := xid.New().String()
	logger := s.Logger.WithField("conn", connID)
	defer conn.Close()

	msize := s.Msize
	if msize == 0 {
		msize = MaxMessageSize
	}

	if s.Metrics != nil {
		s.Metrics.Add(conn, connID)
		defer s.Metrics.Remove(conn)
	}

	dec := NewDecoder(conn, msize)
	enc := NewEncoder(conn, msize)
	var writeMu sync.Mutex
	dispatcher := NewDispatcher[Aux](s.Backend)

	logger.Info("connection accepted")

	var wg sync.WaitGroup
	for {
		msgType, tag, payload, err := dec.ReadMessage()
		if err != nil {
			logger.WithError(err).Debug("read loop stopped")
			break
		}
		body := append([]byte(nil), payload...)

		logger.WithFields(logrus.Fields{"tag": tag, "msgtype": MessageName(msgType)}).Debug("request")

		wg.Add(1)
		go func(msgType uint8, tag uint16, body []byte) {
			defer wg.Done()
			s.serveOne(ctx, dispatcher, dec, logger, &writeMu, enc, msgType, tag, body, conn)
		}(msgType, tag, body)
	}
	wg.Wait()
	logger.Info("connection closed")
}

func (s *Server[Aux]) serveOne(
	ctx context.Context,
	dispatcher *Dispatcher[Aux],
	dec *Decoder,
	logger logrus.FieldLogger,
	writeMu *sync.Mutex,
	enc *Encoder,
	msgType uint8, tag uint16, payload []byte,
	conn net.Conn,
) {
	reply, err := dispatcher.Dispatch(ctx, msgType, tag, payload)
	if err != nil {
		logger.WithError(err).Warn("protocol error; closing connection")
		conn.Close()
		return
	}

	if rv, ok := reply.(*RversionMsg); ok {
		dec.SetMsize(rv.Msize)
	}

	buf := make([]byte, MaxMessageSize)
	n := reply.Encode(buf)

	writeMu.Lock()
	werr := enc.WriteMessage(reply.Type(), tag, buf[:n])
	writeMu.Unlock()

	if werr != nil {
		logger.WithError(werr).Warn("write error")
	} else {
		logger.WithFields(logrus.Fields{"tag": tag, "msgtype": MessageName(reply.Type())}).Debug("reply")
	}
}
