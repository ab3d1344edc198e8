package Controllers

import (
	"encoding/json"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"GasTrack/middleware"
)

// GetLogs returns request log lines for a date range, newest first.
func GetLogs(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	pageSize, _ := strconv.Atoi(c.Query("page_size", "50"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 1000 {
		pageSize = 50
	}

	dateFrom, dateTo, err := logDateRange(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	logs, err := readRequestLog(dateFrom, dateTo)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to read logs"})
	}

	if pathFilter := c.Query("path"); pathFilter != "" {
		var filtered []middleware.LogData
		for _, entry := range logs {
			if strings.Contains(strings.ToLower(entry.Path), strings.ToLower(pathFilter)) {
				filtered = append(filtered, entry)
			}
		}
		logs = filtered
	}
	if methodFilter := c.Query("method"); methodFilter != "" {
		var filtered []middleware.LogData
		for _, entry := range logs {
			if strings.EqualFold(entry.Method, methodFilter) {
				filtered = append(filtered, entry)
			}
		}
		logs = filtered
	}

	sort.Slice(logs, func(i, j int) bool {
		return logs[i].Timestamp.After(logs[j].Timestamp)
	})

	total := len(logs)
	start := (page - 1) * pageSize
	end := start + pageSize
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	return c.JSON(fiber.Map{
		"logs":        logs[start:end],
		"total_logs":  total,
		"page":        page,
		"page_size":   pageSize,
		"total_pages": (total + pageSize - 1) / pageSize,
		"date_from":   dateFrom,
		"date_to":     dateTo,
	})
}

// GetLogStats summarizes request traffic for a date range.
func GetLogStats(c *fiber.Ctx) error {
	dateFrom, dateTo, err := logDateRange(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	logs, err := readRequestLog(dateFrom, dateTo)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to read logs"})
	}

	var successful, failed int
	var totalLatency time.Duration
	methodStats := make(map[string]int)
	statusStats := make(map[int]int)

	for _, entry := range logs {
		if entry.Status >= 200 && entry.Status < 300 {
			successful++
		} else if entry.Status >= 400 {
			failed++
		}
		totalLatency += entry.Latency
		methodStats[entry.Method]++
		statusStats[entry.Status]++
	}

	avgLatency := time.Duration(0)
	if len(logs) > 0 {
		avgLatency = totalLatency / time.Duration(len(logs))
	}

	return c.JSON(fiber.Map{
		"total_requests":      len(logs),
		"successful_requests": successful,
		"error_requests":      failed,
		"avg_latency_ms":      float64(avgLatency.Microseconds()) / 1000.0,
		"method_stats":        methodStats,
		"status_stats":        statusStats,
		"date_from":           dateFrom,
		"date_to":             dateTo,
	})
}

// logDateRange parses date_from/date_to query params, defaulting to today.
func logDateRange(c *fiber.Ctx) (time.Time, time.Time, error) {
	now := time.Now()
	dateFrom := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	dateTo := now

	if from := c.Query("date_from"); from != "" {
		parsed, err := time.Parse("2006-01-02", from)
		if err != nil {
			return dateFrom, dateTo, fiber.NewError(fiber.StatusBadRequest, "Invalid date_from format. Use YYYY-MM-DD")
		}
		dateFrom = parsed
	}
	if to := c.Query("date_to"); to != "" {
		parsed, err := time.Parse("2006-01-02", to)
		if err != nil {
			return dateFrom, dateTo, fiber.NewError(fiber.StatusBadRequest, "Invalid date_to format. Use YYYY-MM-DD")
		}
		dateTo = time.Date(parsed.Year(), parsed.Month(), parsed.Day(), 23, 59, 59, 999999999, parsed.Location())
	}
	return dateFrom, dateTo, nil
}

func readRequestLog(dateFrom, dateTo time.Time) ([]middleware.LogData, error) {
	content, err := os.ReadFile("logs/requests.log")
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var logs []middleware.LogData
	for _, line := range strings.Split(string(content), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		var entry middleware.LogData
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			// Skip invalid JSON lines
			continue
		}
		if entry.Timestamp.After(dateFrom) && entry.Timestamp.Before(dateTo) {
			logs = append(logs, entry)
		}
	}
	return logs, nil
}
