package http

import (
	"net/http"
	"time"

	"github.com/outlaydev/outlay/internal/outlay/store"
	"github.com/outlaydev/outlay/pkg/httpx"
	"github.com/outlaydev/outlay/pkg/jwtx"
	"github.com/outlaydev/outlay/pkg/outlaysdk"
)

// ReadyzHandler godoc
//
//	@Summary		Readiness Check Endpoint
//	@Description	Readiness probe endpoint returning service health status and checks for critical dependencies
//	@Description	Includes uptime, version, and status of the database and token signer
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	outlaysdk.HealthResponse	"status, uptime, version, checks"
//	@Failure		503	{object}	outlaysdk.HealthResponse	"status, uptime, version, checks - service not ready"
//	@Router			/readyz [get].
func ReadyzHandler(
	startTime time.Time,
	version string,
	st store.Store,
	signer *jwtx.Signer,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := &outlaysdk.HealthChecks{
			Database: "ok",
			Signer:   "ok",
		}
		overallStatus := "ok"
		statusCode := http.StatusOK

		// Check database connectivity
		if err := st.Ping(r.Context()); err != nil {
			checks.Database = "error: " + err.Error()
			overallStatus = "degraded"
			statusCode = http.StatusServiceUnavailable
		}

		// Check the token signer has a key loaded
		if !signer.IsReady() {
			checks.Signer = "error: no key loaded"
			overallStatus = "degraded"
			statusCode = http.StatusServiceUnavailable
		}

		response := outlaysdk.HealthResponse{
			Status:  overallStatus,
			Uptime:  time.Since(startTime).String(),
			Version: version,
			Checks:  checks,
		}
		httpx.WriteJSON(w, statusCode, response)
	}
}
