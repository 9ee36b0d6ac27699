package emotionHandler

import (
	"EmotionAnalyzer/internal/entity"
	"EmotionAnalyzer/internal/middleware"
	contextPkg "EmotionAnalyzer/pkg/context"
	"EmotionAnalyzer/pkg/response"
	"errors"
	"time"

	"github.com/gofiber/websocket/v2"
	"golang.org/x/net/context"
)

const backendLocal = "detector_backend"

func (h *EmotionHandler) handleWebSocket(c *websocket.Conn) {
	requestID, _ := c.Locals(middleware.RequestIDKey).(string)
	backend, _ := c.Locals(backendLocal).(entity.DetectorBackend)

	h.log.WithField("request_id", requestID).Info("Emotion WebSocket client connected")
	defer h.log.WithField("request_id", requestID).Info("Emotion WebSocket client disconnected")

	c.SetPingHandler(func(data string) error {
		if err := c.WriteControl(websocket.PongMessage, []byte(data), time.Now().Add(5*time.Second)); err != nil {
			h.log.Errorf("Error sending pong: %v", err)
		}
		return nil
	})

	maxReadTimeout := 60 * time.Second

	for {
		if err := c.SetReadDeadline(time.Now().Add(maxReadTimeout)); err != nil {
			h.log.Errorf("Error setting read deadline: %v", err)
			break
		}

		messageType, message, err := c.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Errorf("Emotion WebSocket error: %v", err)
			}
			break
		}

		if messageType != websocket.BinaryMessage {
			h.log.Warnf("Received unexpected message type: %d", messageType)
			if err := c.WriteJSON(wsError(errors.New("expected binary image frame"))); err != nil {
				break
			}
			continue
		}

		result, err := h.analyzeFrame(requestID, message, backend)
		if err != nil {
			h.log.WithField("request_id", requestID).Warnf("Error processing frame: %v", err)
			if writeErr := c.WriteJSON(wsError(err)); writeErr != nil {
				h.log.Errorf("Error sending error response: %v", writeErr)
				break
			}
			continue
		}

		if err := c.SetWriteDeadline(time.Now().Add(10 * time.Second)); err != nil {
			h.log.Errorf("Error setting write deadline: %v", err)
			break
		}

		if err := c.WriteJSON(result); err != nil {
			h.log.Errorf("Error writing JSON response: %v", err)
			break
		}

		if err := c.SetWriteDeadline(time.Time{}); err != nil {
			h.log.Errorf("Error resetting write deadline: %v", err)
			break
		}
	}
}

func (h *EmotionHandler) analyzeFrame(requestID string, frame []byte, backend entity.DetectorBackend) (any, error) {
	ctx, cancel := context.WithTimeout(contextPkg.WithRequestID(context.Background(), requestID), h.timeout)
	defer cancel()

	return h.emotionService.AnalyzeFrame(ctx, frame, backend)
}

func wsError(err error) map[string]string {
	body := map[string]string{"error": err.Error()}

	var respErr *response.Error
	if errors.As(err, &respErr) && respErr.Tag != "" {
		body["code"] = respErr.Tag
	}

	return body
}
