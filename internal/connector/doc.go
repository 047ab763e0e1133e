/*
Package connector talks to the MODX manager connector API.

Every call is a form-encoded POST carrying the action name and the
HTTP_MODAUTH token. The stored session cookie and token travel as the Cookie
and modAuth headers. Responses are JSON envelopes:

	{"success": true, "results": [...], "object": {...}, "data": [{"id": "name", "msg": "..."}]}

# Session rotation

Whenever a response sets the session cookie (PHPSESSID by default), the
stored cookie is replaced and the store persisted, whatever the status or
the envelope's success flag. Responses without Set-Cookie leave it alone.

# Failures

	ErrNoServerConfigured  no server address stored
	ErrUnauthorized        HTTP 401, or success=false with object.code 401
	*APIError              success=false; Message is data[0].msg or message
	*HTTPError             any other non-2xx status

Transport errors, decode failures and an open circuit are returned wrapped
and count as unknown errors. Requests are never retried.
*/
package connector
