package service

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/tieubaoca/docsum-be/types"
)

type WebSocketService struct {
	summaryService *SummaryService
	upgrader       websocket.Upgrader
}

func NewWebSocketService(summaryService *SummaryService) *WebSocketService {
	return &WebSocketService{
		summaryService: summaryService,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // Allow all origins (adjust for production)
			},
		},
	}
}

// HandleSummarize serves a websocket connection that accepts summarize
// requests and streams back a processing notice followed by the result.
func (s *WebSocketService) HandleSummarize(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("Upgrade error:", err)
		return
	}
	defer conn.Close()

	// Set connection properties
	conn.SetReadLimit(2 * 1024 * 1024) // large documents arrive inline
	conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	for {
		_, p, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket read error: %v", err)
			}
			return
		}
		// Summarization can take minutes on chunked documents
		conn.SetReadDeadline(time.Now().Add(10 * time.Minute))

		var req types.WebsocketRequest
		if err := json.Unmarshal(p, &req); err != nil {
			log.Println("Unmarshal error:", err)
			s.writeError(conn, "Error processing message")
			continue
		}

		switch req.Type {
		case types.TypeWebsocketSummarize:
			processing := types.WebSocketResponse{
				Type: types.TypeWebsocketProcessing,
				Payload: types.ProcessingStatus{
					Status:  "processing",
					Stage:   "summarizing",
					Message: "Đang tóm tắt văn bản",
				},
			}
			if err := conn.WriteJSON(processing); err != nil {
				log.Println("Write error:", err)
				continue
			}

			result, err := s.summaryService.SummarizeText(ctx, req.Payload)
			if err != nil {
				log.Println("Summarization error:", err)
				s.writeError(conn, err.Error())
				continue
			}
			res := types.WebSocketResponse{
				Type:    types.TypeWebsocketResult,
				Payload: result,
			}
			if err := conn.WriteJSON(res); err != nil {
				log.Println("Write error:", err)
				continue
			}
		case types.TypeWebsocketPing:
			pongRes := types.WebSocketResponse{
				Type:    types.TypeWebsocketPong,
				Payload: nil,
			}
			if err := conn.WriteJSON(pongRes); err != nil {
				log.Println("Write error:", err)
			}
		default:
			log.Println("Invalid message type")
		}
	}
}

func (s *WebSocketService) writeError(conn *websocket.Conn, message string) {
	res := types.WebSocketResponse{
		Type:    types.TypeWebsocketError,
		Payload: map[string]string{"message": message},
	}
	if err := conn.WriteJSON(res); err != nil {
		log.Println("Write error:", err)
	}
}

func (s *WebSocketService) Health() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
}
