package logging

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"github.com/carson-networks/book-server/internal/metrics"
)

// HandlerFunc is a handler that writes its own response and reports failures
// to the wrapper for logging.
type HandlerFunc func(http.ResponseWriter, *http.Request, *LogData) error

// LoggingWrapper gives every request a fresh LogData, reachable from the
// request context through GetLogData, and logs and measures the outcome.
func LoggingWrapper(
	loggingName string,
	log *logrus.Logger,
	m *metrics.Metrics,
	handler HandlerFunc,
) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		log.Debugf("Handler.%v.Start", loggingName)

		logData := NewLogData(log)
		if requestID := middleware.GetReqID(req.Context()); requestID != "" {
			logData.AddData("requestID", requestID)
		}
		req = req.WithContext(WithLogData(req.Context(), logData))
		ww := middleware.NewWrapResponseWriter(w, req.ProtoMajor)

		start := time.Now()
		endTimer := logData.AddTiming("duration")
		err := handler(ww, req, logData)
		endTimer()

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.ObserveRequest(loggingName, status, time.Since(start))
		logData.AddData("status", status)

		if err != nil {
			entry := logData.Log().WithError(err)
			if status >= http.StatusInternalServerError {
				entry.Errorf("Handler.%v.Error", loggingName)
			} else {
				entry.Warnf("Handler.%v.Error", loggingName)
			}
			return
		}

		logData.Log().Infof("Handler.%v.Complete", loggingName)
	}
}
