package middleware

import (
	"math"

	"github.com/gin-gonic/gin"
	"github.com/kimshinchol/nnponline-sub000/internal/database"
	apierrors "github.com/kimshinchol/nnponline-sub000/internal/errors"
)

// DBHealth probes database connectivity before each request and records
// request activity for the idle watchdog. While the circuit breaker is open
// requests are rejected with 503 without touching the pool.
func DBHealth(sup *database.Supervisor, ping func() error) gin.HandlerFunc {
	return func(c *gin.Context) {
		sup.RecordActivity()

		if !sup.Allow() {
			apierrors.ServiceUnavailable(c, "Database temporarily unavailable", retryAfterSeconds(sup))
			c.Abort()
			return
		}

		if err := ping(); err != nil {
			sup.ReportFailure()
			apierrors.ServiceUnavailable(c, "Database temporarily unavailable", retryAfterSeconds(sup))
			c.Abort()
			return
		}

		sup.ReportSuccess()
		c.Next()
	}
}

func retryAfterSeconds(sup *database.Supervisor) int {
	return int(math.Ceil(sup.RetryAfter().Seconds()))
}
