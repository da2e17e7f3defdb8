package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

func SendJSON(w http.ResponseWriter, status int, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return err
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err = w.Write(payload)
	return err
}

func sendJSONOrLog(w http.ResponseWriter, logger *slog.Logger, v any) {
	sendStatusJSONOrLog(w, logger, http.StatusOK, v)
}

func sendStatusJSONOrLog(w http.ResponseWriter, logger *slog.Logger, status int, v any) {
	if err := SendJSON(w, status, v); err != nil {
		logger.Error(
			"unable to send response",
			slog.Any("response", v),
			slog.Any("error", err),
		)
	}
}

func sendErrorOrLog(w http.ResponseWriter, logger *slog.Logger, status int, err error) {
	sendStatusJSONOrLog(w, logger, status, wrapError(err))
}

func internalError(w http.ResponseWriter, logger *slog.Logger, msg string, err error) {
	w.WriteHeader(http.StatusInternalServerError)
	logger.Error(msg, slog.Any("error", err))
}

func wrapError(err error) map[string]string {
	return map[string]string{
		"error": err.Error(),
	}
}
