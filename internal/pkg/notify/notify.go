// Package notify 负责站内通知扇出与邮件发送。
package notify

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/OkontaEhis/myhitmeup-backend/internal/docstore"
	"github.com/OkontaEhis/myhitmeup-backend/internal/pkg/metrics"
	"github.com/OkontaEhis/myhitmeup-backend/internal/pkg/queue"
)

// Notification types.
const (
	TypeTagged     = "TAGGED"
	TypeNewMessage = "NEW_MESSAGE"
	TypeNewBid     = "NEW_BID"
)

// NotificationWriter 持久化站内通知。
type NotificationWriter interface {
	CreateNotification(ctx context.Context, n *docstore.Notification) error
}

// Submitter 接收后台任务。
type Submitter interface {
	Submit(name string, job queue.Job) bool
}

// Dispatcher 把站内通知交给任务池异步写入，不阻塞请求。
type Dispatcher struct {
	store  NotificationWriter
	pool   Submitter
	logger *slog.Logger
}

// NewDispatcher 创建通知分发器。
func NewDispatcher(store NotificationWriter, pool Submitter, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{store: store, pool: pool, logger: logger}
}

// Notify 为每个接收者排入一条通知，返回成功排队的数量。
func (d *Dispatcher) Notify(kind, message string, data map[string]any, userIDs ...string) int {
	queued := 0
	for _, uid := range userIDs {
		if uid == "" {
			continue
		}
		n := &docstore.Notification{
			UserID:  uid,
			Type:    kind,
			Message: message,
			Data:    data,
		}
		ok := d.pool.Submit("notify:"+kind, func(ctx context.Context) error {
			if err := d.store.CreateNotification(ctx, n); err != nil {
				metrics.NotificationJobsTotal.WithLabelValues("failed").Inc()
				return fmt.Errorf("create notification for %s: %w", n.UserID, err)
			}
			metrics.NotificationJobsTotal.WithLabelValues("delivered").Inc()
			return nil
		})
		if !ok {
			metrics.NotificationJobsTotal.WithLabelValues("dropped").Inc()
			d.logger.Warn("notification dropped", slog.String("type", kind), slog.String("user_id", uid))
			continue
		}
		queued++
	}
	return queued
}
