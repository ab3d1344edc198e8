package middleware

import (
	"encoding/json"
	"log"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"

	"GasTrack/Models"
)

// LogData is one request log line.
type LogData struct {
	Timestamp time.Time     `json:"timestamp"`
	Method    string        `json:"method"`
	Path      string        `json:"path"`
	Status    int           `json:"status"`
	Latency   time.Duration `json:"latency"`
	IP        string        `json:"ip"`
	UserID    interface{}   `json:"user_id,omitempty"`
	Error     string        `json:"error,omitempty"`
}

// RequestLogger logs every request to the console and appends a JSON line to
// logs/requests.log.
func RequestLogger() fiber.Handler {
	if err := os.MkdirAll("logs", 0755); err != nil {
		log.Printf("Error creating logs directory: %v", err)
	}

	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		data := LogData{
			Timestamp: start,
			Method:    c.Method(),
			Path:      c.Path(),
			Status:    c.Response().StatusCode(),
			Latency:   time.Since(start),
			IP:        c.IP(),
		}
		if user, ok := c.Locals("user").(Models.User); ok {
			data.UserID = user.ID
		}
		if err != nil {
			data.Error = err.Error()
		}

		log.Printf("%s %s %d %v", data.Method, data.Path, data.Status, data.Latency)

		if file, ferr := os.OpenFile("logs/requests.log", os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666); ferr == nil {
			if line, merr := json.Marshal(data); merr == nil {
				file.Write(append(line, '\n'))
			}
			file.Close()
		}

		return err
	}
}
