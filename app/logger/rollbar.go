package logger

import (
	"log"
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/rollbar/rollbar-go"
	"github.com/rollbar/rollbar-go/errors"
)

var enabled bool

// Setup configures Rollbar reporting. An empty token leaves reporting disabled
// and errors are only written to the standard log.
func Setup(token, environment, codeVersion string) {
	enabled = token != ""
	rollbar.SetEnabled(enabled)
	if !enabled {
		log.Println("[ROLLBAR] no token configured, reporting disabled")
		return
	}
	host, _ := os.Hostname()
	rollbar.SetToken(token)
	rollbar.SetEnvironment(environment)
	rollbar.SetServerHost(host)
	rollbar.SetCodeVersion(codeVersion)
	rollbar.SetStackTracer(errors.StackTracer)
	log.Printf("[ROLLBAR] reporting enabled (environment=%s)", environment)
}

// Error logs err and reports it to Rollbar with the given extras
func Error(msg string, err error, extras map[string]interface{}) {
	log.Printf("[ERROR] %s: %+v", msg, err)
	if !enabled {
		return
	}
	if extras == nil {
		extras = map[string]interface{}{}
	}
	extras["message"] = msg
	rollbar.Error(err, extras)
}

// RequestError reports a failed request with its method, path and caller
func RequestError(c *fiber.Ctx, err error) {
	extras := map[string]interface{}{
		"method": c.Method(),
		"path":   c.Path(),
	}
	if id, ok := c.Locals("user_id").(string); ok {
		extras["user_id"] = id
	}
	Error("request failed", err, extras)
}

// Close flushes queued reports
func Close() {
	if enabled {
		rollbar.Wait()
	}
}
