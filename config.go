package lmwire

import (
	"net/http"
	"os"
)

// Environment variables consulted once at client construction. Both are
// optional, and an empty value is treated the same as an unset one.
const (
	envAPIToken = "LMSTUDIO_API_TOKEN"
	envXAPIKey  = "LMSTUDIO_X_API_KEY"
)

// envConfig is the process environment snapshot taken when a client is
// constructed. Nothing below the client facade reads the environment.
type envConfig struct {
	apiToken string
	xAPIKey  string
}

func loadEnvConfig() envConfig {
	return envConfig{
		apiToken: os.Getenv(envAPIToken),
		xAPIKey:  os.Getenv(envXAPIKey),
	}
}

// assembleHeaders merges the handshake header layers, lowest precedence
// first: environment-derived X-API-Key, then the explicit header map,
// then the X-API-Key shortcut. Later layers win on key collision. The
// result is never nil.
func assembleHeaders(envKey string, headers map[string]string, xAPIKey string) map[string]string {
	merged := make(map[string]string, len(headers)+1)
	if envKey != "" {
		merged["X-API-Key"] = envKey
	}
	for k, v := range headers {
		merged[k] = v
	}
	if xAPIKey != "" {
		merged["X-API-Key"] = xAPIKey
	}
	return merged
}

// httpHeader converts the assembled header map into the http.Header
// attached to the websocket handshake request.
func httpHeader(headers map[string]string) http.Header {
	h := http.Header{}
	for k, v := range headers {
		h.Set(k, v)
	}
	return h
}
