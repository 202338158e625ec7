package server

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net"
	"time"
)

// TCPServer speaks the one-shot protocol: per accepted connection it reads a
// single JSON request, writes a single JSON response and closes. Connections
// are independent; a fault on one is logged and ends only that one.
type TCPServer struct {
	Addr        string
	Dispatcher  *Dispatcher
	ReadTimeout time.Duration
}

func (s *TCPServer) Listen() (net.Listener, error) {
	return net.Listen("tcp", s.Addr)
}

// Serve accepts until ctx is cancelled (the listener is closed to unblock
// Accept). Handlers run in their own goroutines so accepting never stalls.
func (s *TCPServer) Serve(ctx context.Context, ln net.Listener) error {
	go func() {
		<-ctx.Done()
		_ = ln.Close()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return nil
			default:
			}
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			log.Printf("accept: %v", err)
			continue
		}
		go s.handle(ctx, conn)
	}
}

func (s *TCPServer) handle(ctx context.Context, conn net.Conn) {
	defer conn.Close()

	if s.ReadTimeout > 0 {
		_ = conn.SetReadDeadline(time.Now().Add(s.ReadTimeout))
	}

	var req Request
	if err := json.NewDecoder(conn).Decode(&req); err != nil {
		log.Printf("bad request from %s: %v", conn.RemoteAddr(), err)
		s.write(conn, Fail("Invalid request format"))
		return
	}

	s.write(conn, s.Dispatcher.Dispatch(ctx, req))
}

func (s *TCPServer) write(conn net.Conn, resp Response) {
	if s.ReadTimeout > 0 {
		_ = conn.SetWriteDeadline(time.Now().Add(s.ReadTimeout))
	}
	if err := json.NewEncoder(conn).Encode(resp); err != nil {
		log.Printf("write to %s: %v", conn.RemoteAddr(), err)
	}
}
