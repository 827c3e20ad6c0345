package types

const (
	TypeWebsocketPing       = "ping"
	TypeWebsocketPong       = "pong"
	TypeWebsocketSummarize  = "summarize"
	TypeWebsocketProcessing = "processing"
	TypeWebsocketResult     = "result"
	TypeWebsocketError      = "error"
)

type WebsocketRequest struct {
	Type    string               `json:"type"`
	Payload SummarizeTextRequest `json:"payload"`
}

type WebSocketResponse struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}
