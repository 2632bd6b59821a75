package connectionhub

import (
	"context"
	"time"

	"github.com/gofiber/contrib/websocket"
	log "github.com/sirupsen/logrus"
)

const sendBuffer = 64

type clientSession struct {
	conn *websocket.Conn

	// Outbound messages, buffered.
	sendCh chan any
	ctx    context.Context
	stop   func()
}

func newSession(conn *websocket.Conn) *clientSession {
	ctx, cancelFn := context.WithCancel(context.Background())
	sess := &clientSession{
		conn:   conn,
		sendCh: make(chan any, sendBuffer),
		ctx:    ctx,
		stop:   cancelFn,
	}
	go sess.startSend()
	return sess
}

func (s *clientSession) enqueue(msg any) bool {
	select {
	case <-s.ctx.Done():
		return false
	case s.sendCh <- msg:
		return true
	default:
		return false
	}
}

func (s *clientSession) startSend() {
	for {
		select {
		case <-s.ctx.Done():
			s.close()
			return
		case msg := <-s.sendCh:
			if err := s.send(msg); err != nil {
				log.WithError(err).Error("unable to send ws message")
			}
		}
	}
}

func (s *clientSession) send(msg any) error {
	if s.conn == nil || s.conn.Conn == nil {
		return nil
	}
	return s.conn.WriteJSON(msg)
}

func (s *clientSession) close() {
	if s.conn == nil || s.conn.Conn == nil {
		return
	}
	err := s.conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
	if err != nil {
		log.WithError(err).Debug("unable to send close frame")
	}
}
