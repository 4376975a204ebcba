package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"
	"unicode/utf8"

	"politicianfinder/internal/model"
	"politicianfinder/internal/repository"
	"politicianfinder/internal/util"
)

type NotificationService interface {
	SendCommentReplyNotification(receiverID, senderID, senderName, commentID, postID, content string) error
	SendPostCommentNotification(receiverID, senderID, senderName, commentID, postID, content string) error
	SendReportReadyNotification(receiverID, reportID, politicianName string) error
	GetNotificationsByUserID(userID string, limit, offset int) ([]*model.Notification, error)
	GetUnreadNotifications(userID string) ([]*model.Notification, error)
	GetUnreadCount(userID string) (int64, error)
	MarkAsRead(notificationID, userID string) error
	MarkAllAsRead(userID string) error
	DeleteNotification(notificationID, userID string) error
	BroadcastAnnouncement(title, message string) error
	SetWSHub(hub RealtimePusher)
}

// RealtimePusher is the WebSocket hub surface the service pushes
// through.
type RealtimePusher interface {
	BroadcastToUser(userID string, payload map[string]interface{})
	BroadcastToAll(payload map[string]interface{})
}

type notificationService struct {
	notifRepo repository.NotificationRepository
	rabbitMQ  *util.RabbitMQClient
	wsHub     RealtimePusher
}

// NotificationMessage is the RabbitMQ payload for async fan-out.
type NotificationMessage struct {
	UserID    string                 `json:"user_id"`
	Type      string                 `json:"type"`
	Title     string                 `json:"title"`
	Message   string                 `json:"message"`
	Data      map[string]interface{} `json:"data,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

const (
	NotificationQueueName  = "notification_queue"
	NotificationExchange   = "notification_exchange"
	NotificationRoutingKey = "notification"
)

func NewNotificationService(notifRepo repository.NotificationRepository, rabbitMQ *util.RabbitMQClient) NotificationService {
	return &notificationService{
		notifRepo: notifRepo,
		rabbitMQ:  rabbitMQ,
	}
}

// SetWSHub sets the WebSocket hub for realtime push.
func (s *notificationService) SetWSHub(hub RealtimePusher) {
	s.wsHub = hub
}

// BroadcastAnnouncement pushes a site-wide announcement to every
// connected client. Announcements are realtime only and are not
// persisted per user.
func (s *notificationService) BroadcastAnnouncement(title, message string) error {
	if s.wsHub == nil {
		return errors.New("realtime push is not available")
	}
	s.wsHub.BroadcastToAll(map[string]interface{}{
		"type":       "announcement",
		"title":      title,
		"message":    message,
		"created_at": time.Now().Format(time.RFC3339),
	})
	return nil
}

// sendNotification persists the notification, publishes it to RabbitMQ
// and pushes it over WebSocket when a hub is attached.
func (s *notificationService) sendNotification(
	userID, notifType, title, message string,
	data map[string]interface{},
) error {
	notification := &model.Notification{
		UserID:  userID,
		Type:    notifType,
		Title:   title,
		Message: message,
		IsRead:  false,
	}

	if data != nil {
		if senderID, ok := data["sender_id"].(string); ok {
			notification.SenderID = &senderID
		}
		if targetID, ok := data["target_id"].(string); ok {
			notification.TargetID = &targetID
		}
		if dataJSON, err := json.Marshal(data); err == nil {
			notification.Data = string(dataJSON)
		}
	}

	if err := s.notifRepo.Create(notification); err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}

	if s.rabbitMQ != nil {
		msg := NotificationMessage{
			UserID:    userID,
			Type:      notifType,
			Title:     title,
			Message:   message,
			Data:      data,
			Timestamp: time.Now(),
		}
		if msgJSON, err := json.Marshal(msg); err == nil {
			if err := s.rabbitMQ.Publish(NotificationExchange, NotificationRoutingKey, msgJSON); err != nil {
				// Notification is already persisted; async fan-out failure
				// is not fatal.
				log.Printf("Failed to publish notification to RabbitMQ: %v", err)
			}
		}
	}

	if s.wsHub != nil {
		wsPayload := map[string]interface{}{
			"id":         notification.ID,
			"user_id":    notification.UserID,
			"type":       notification.Type,
			"title":      notification.Title,
			"message":    notification.Message,
			"is_read":    notification.IsRead,
			"created_at": notification.CreatedAt.Format(time.RFC3339),
		}
		if notification.SenderID != nil {
			wsPayload["sender_id"] = *notification.SenderID
		}
		if notification.TargetID != nil {
			wsPayload["target_id"] = *notification.TargetID
		}
		s.wsHub.BroadcastToUser(userID, wsPayload)
	}

	return nil
}

// SendCommentReplyNotification notifies the parent comment's author
// about a new reply.
func (s *notificationService) SendCommentReplyNotification(
	receiverID, senderID, senderName, commentID, postID, content string,
) error {
	title := "New Reply"
	message := fmt.Sprintf("%s replied to your comment", senderName)
	data := map[string]interface{}{
		"target_id":   commentID,
		"post_id":     postID,
		"sender_id":   senderID,
		"sender_name": senderName,
		"preview":     truncate(content, 120),
	}

	return s.sendNotification(receiverID, model.NotificationTypeCommentReply, title, message, data)
}

// SendPostCommentNotification notifies the post author about a new
// top-level comment.
func (s *notificationService) SendPostCommentNotification(
	receiverID, senderID, senderName, commentID, postID, content string,
) error {
	title := "New Comment"
	message := fmt.Sprintf("%s commented on your post", senderName)
	data := map[string]interface{}{
		"target_id":   commentID,
		"post_id":     postID,
		"sender_id":   senderID,
		"sender_name": senderName,
		"preview":     truncate(content, 120),
	}

	return s.sendNotification(receiverID, model.NotificationTypePostComment, title, message, data)
}

// SendReportReadyNotification notifies a buyer that their purchased
// report has been generated.
func (s *notificationService) SendReportReadyNotification(receiverID, reportID, politicianName string) error {
	title := "Report Ready"
	message := fmt.Sprintf("Your evaluation report for %s is ready", politicianName)
	data := map[string]interface{}{
		"target_id":       reportID,
		"politician_name": politicianName,
	}

	return s.sendNotification(receiverID, model.NotificationTypeReportReady, title, message, data)
}

// GetNotificationsByUserID gets notifications for a user with pagination.
func (s *notificationService) GetNotificationsByUserID(userID string, limit, offset int) ([]*model.Notification, error) {
	return s.notifRepo.FindByUserID(userID, limit, offset)
}

// GetUnreadNotifications gets unread notifications for a user.
func (s *notificationService) GetUnreadNotifications(userID string) ([]*model.Notification, error) {
	return s.notifRepo.FindUnreadByUserID(userID)
}

// GetUnreadCount gets the unread notification count for a user.
func (s *notificationService) GetUnreadCount(userID string) (int64, error) {
	return s.notifRepo.CountUnreadByUserID(userID)
}

// MarkAsRead marks a notification as read.
func (s *notificationService) MarkAsRead(notificationID, userID string) error {
	notification, err := s.notifRepo.FindByID(notificationID)
	if err != nil {
		return errors.New("notification not found")
	}
	if notification.UserID != userID {
		return errors.New("unauthorized: you can only mark your own notifications as read")
	}
	return s.notifRepo.MarkAsRead(notificationID)
}

// MarkAllAsRead marks all notifications as read for a user.
func (s *notificationService) MarkAllAsRead(userID string) error {
	return s.notifRepo.MarkAllAsRead(userID)
}

// DeleteNotification deletes a notification.
func (s *notificationService) DeleteNotification(notificationID, userID string) error {
	notification, err := s.notifRepo.FindByID(notificationID)
	if err != nil {
		return errors.New("notification not found")
	}
	if notification.UserID != userID {
		return errors.New("unauthorized: you can only delete your own notifications")
	}
	return s.notifRepo.Delete(notificationID)
}

// truncate shortens a preview to max runes without splitting a
// multi-byte character.
func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max]) + "..."
}
