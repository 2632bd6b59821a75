package connectionhub

import (
	"sync"
	"time"

	"github.com/gofiber/contrib/websocket"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
	pushdatastore "task-approval-backend/lib/notify/push-data-store"
	wsmodels "task-approval-backend/models/ws"
)

const timeFormat = "02.01.2006 15:04:05"

type Provider interface {
	AddClient(userID string, conn *websocket.Conn)
	DeleteClient(userID string, conn *websocket.Conn)
	// SendMessage returns false when the user has no live session or its buffer is full.
	SendMessage(msg wsmodels.ServerMessage) bool
	IsConnected(userID string) bool
}

var Instance Provider

func Init(tx *gorm.DB) {
	Instance = NewHub(pushdatastore.NewInstance(tx))
}

func NewHub(store pushdatastore.Provider) Provider {
	return &impl{
		clients: map[string]*clientSession{},
		store:   store,
	}
}

type impl struct {
	mu      sync.RWMutex
	clients map[string]*clientSession //map[userID]
	store   pushdatastore.Provider
}

// DeleteClient drops the session only if it still belongs to conn, a newer connection of the same user stays.
func (i *impl) DeleteClient(userID string, conn *websocket.Conn) {
	i.mu.Lock()
	sess, ok := i.clients[userID]
	if ok && sess.conn == conn {
		delete(i.clients, userID)
	}
	i.mu.Unlock()
	if ok && sess.conn == conn {
		sess.stop()
	}
}

func (i *impl) AddClient(userID string, conn *websocket.Conn) {
	i.mu.Lock()
	oldSess, ok := i.clients[userID]
	i.clients[userID] = newSession(conn)
	i.mu.Unlock()
	if ok {
		oldSess.stop()
	}
	go i.sendDelayedMessages(userID)
}

func (i *impl) SendMessage(msg wsmodels.ServerMessage) bool {
	i.mu.RLock()
	sess, ok := i.clients[msg.ToUserID]
	i.mu.RUnlock()
	if !ok {
		return false
	}
	return sess.enqueue(msg)
}

func (i *impl) IsConnected(userID string) bool {
	i.mu.RLock()
	defer i.mu.RUnlock()
	sess, ok := i.clients[userID]
	return ok && sess.conn != nil && sess.conn.Conn != nil
}

func (i *impl) sendDelayedMessages(userID string) {
	logger := log.WithField("user_id", userID)
	list, err := i.store.List(userID)
	if err != nil {
		logger.WithError(err).Error("unable to load undelivered events")
		return
	}
	sentIDs := []string{}
	for _, item := range list {
		msg := wsmodels.ServerMessage{
			ToUserID: userID,
			Time:     item.CreatedAt.Format(timeFormat),
			Code:     string(item.Code),
			TaskID:   item.TaskID,
			Status:   item.Status,
			Title:    item.Title,
			Msg:      item.Msg,
		}
		if !i.SendMessage(msg) {
			break
		}
		sentIDs = append(sentIDs, item.ID)
	}
	if err = i.store.Delete(sentIDs); err != nil {
		logger.WithError(err).Error("unable to delete delivered events")
	}
}

func FormatTime(t time.Time) string {
	return t.Format(timeFormat)
}
