package api

import (
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// secretFields are JSON keys whose values must never reach the logs.
var secretFields = []string{
	"access_key",
	"secret_key",
	"password",
	"token",
}

// ScrubSecrets replaces secret-bearing fields in a JSON document with a
// placeholder so request bodies can be logged at debug level. Non-JSON
// input is returned unchanged.
func ScrubSecrets(body string) string {
	if !gjson.Valid(body) {
		return body
	}
	for _, field := range secretFields {
		if gjson.Get(body, field).Exists() {
			if scrubbed, err := sjson.Set(body, field, "[redacted]"); err == nil {
				body = scrubbed
			}
		}
	}
	return body
}
