package websocket

import (
	"log"
	"sync"
	"time"

	"github.com/bkoskei/classroom_exams/database"
	"github.com/gofiber/contrib/websocket"
	"github.com/google/uuid"
)

type Client struct {
	UserID uuid.UUID
	Conn   *websocket.Conn
}

// AttemptEvent is pushed to the exam's teacher whenever a student attempt
// starts or reaches a terminal state.
type AttemptEvent struct {
	ExamID        uuid.UUID `json:"exam_id"`
	ExamTitle     string    `json:"exam_title"`
	AttemptID     uuid.UUID `json:"attempt_id"`
	StudentID     uuid.UUID `json:"student_id"`
	StudentName   string    `json:"student_name"`
	AttemptNumber int       `json:"attempt_number"`
	Status        string    `json:"status"`
	Percentage    *float64  `json:"percentage,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}

var clients = make(map[uuid.UUID]*websocket.Conn)
var clientsMu sync.RWMutex
var Register = make(chan *Client)
var Unregister = make(chan *Client)
var Broadcast = make(chan *AttemptEvent, 64)

// Notify enqueues an event without blocking the request path; if the hub
// is saturated the event is dropped.
func Notify(event *AttemptEvent) {
	select {
	case Broadcast <- event:
	default:
		log.Printf("Monitor hub full, dropping event for exam %s", event.ExamID)
	}
}

func RunHub() {
	for {
		select {
		case client := <-Register:
			log.Printf("Monitor client registered: %s", client.UserID)
			clientsMu.Lock()
			clients[client.UserID] = client.Conn
			clientsMu.Unlock()
		case client := <-Unregister:
			log.Printf("Monitor client unregistered: %s", client.UserID)
			clientsMu.Lock()
			if conn, ok := clients[client.UserID]; ok && conn == client.Conn {
				delete(clients, client.UserID)
			}
			clientsMu.Unlock()
		case event := <-Broadcast:
			var teacherID uuid.UUID
			err := database.DB.
				Table("exams").
				Where("id = ?", event.ExamID).
				Pluck("teacher_id", &teacherID).Error
			if err != nil {
				log.Printf("Error fetching teacher for exam %s: %v", event.ExamID, err)
				continue
			}

			clientsMu.RLock()
			conn, ok := clients[teacherID]
			clientsMu.RUnlock()
			if !ok {
				continue
			}

			if err := conn.WriteJSON(event); err != nil {
				log.Printf("Error sending event to teacher %s: %v", teacherID, err)
				conn.Close()
				clientsMu.Lock()
				delete(clients, teacherID)
				clientsMu.Unlock()
			}
		}
	}
}
