package httpapi

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"go.uber.org/zap"

	"github.com/yourorg/listings-api/internal/events"
	"github.com/yourorg/listings-api/internal/upstream"
)

const (
	maxWebhookBody = 1 << 20

	HeaderWordPressToken = "X-Webhook-Token"
	HeaderWCSignature    = "X-WC-Webhook-Signature"
	HeaderWCTopic        = "X-WC-Webhook-Topic"
)

type WebhooksDeps struct {
	Events            events.Publisher
	WordPressToken    string
	WooCommerceSecret string
	Log               *zap.Logger
}

// wordpressHook accepts the common shapes WordPress webhook plugins send.
type wordpressHook struct {
	ID       upstream.Number `json:"id"`
	PostID   upstream.Number `json:"post_id"`
	Resource upstream.String `json:"resource"`
	PostType upstream.String `json:"post_type"`
	Taxonomy upstream.String `json:"taxonomy"`
	Action   upstream.String `json:"action"`
}

type wooHook struct {
	ID upstream.Number `json:"id"`
}

func RegisterWebhooks(r chi.Router, d WebhooksDeps) {
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	r.Route("/webhooks", func(r chi.Router) {
		r.Post("/wordpress", func(w http.ResponseWriter, req *http.Request) {
			if d.WordPressToken == "" {
				WriteError(w, req, http.StatusServiceUnavailable, "webhooks_disabled", "WP_WEBHOOK_TOKEN is not configured")
				return
			}
			got := req.Header.Get(HeaderWordPressToken)
			if subtle.ConstantTimeCompare([]byte(got), []byte(d.WordPressToken)) != 1 {
				WriteError(w, req, http.StatusUnauthorized, "invalid_token", "")
				return
			}
			body, err := upstream.ReadAllLimit(req.Body, maxWebhookBody)
			if err != nil {
				WriteError(w, req, http.StatusRequestEntityTooLarge, "payload_too_large", err.Error())
				return
			}
			var hook wordpressHook
			if err := json.NewDecoder(bytes.NewReader(body)).Decode(&hook); err != nil {
				WriteError(w, req, http.StatusBadRequest, "invalid_json", err.Error())
				return
			}
			evt := events.CatalogChanged{
				Source:   events.SourceWordPress,
				Resource: firstOf(string(hook.Resource), string(hook.Taxonomy), string(hook.PostType), "post"),
				ID:       int64(hook.ID),
				Action:   firstOf(string(hook.Action), "updated"),
				At:       time.Now().UTC(),
			}
			if evt.ID <= 0 {
				evt.ID = int64(hook.PostID)
			}
			publish(w, req, d, evt)
		})

		r.Post("/woocommerce", func(w http.ResponseWriter, req *http.Request) {
			if d.WooCommerceSecret == "" {
				WriteError(w, req, http.StatusServiceUnavailable, "webhooks_disabled", "WC_WEBHOOK_SECRET is not configured")
				return
			}
			body, err := upstream.ReadAllLimit(req.Body, maxWebhookBody)
			if err != nil {
				WriteError(w, req, http.StatusRequestEntityTooLarge, "payload_too_large", err.Error())
				return
			}
			topic := req.Header.Get(HeaderWCTopic)
			if topic == "" && isWooPing(body) {
				// delivery ping sent unsigned when the webhook is created
				render.JSON(w, req, map[string]any{"ok": true, "ping": true})
				return
			}
			if !ValidWooSignature(body, req.Header.Get(HeaderWCSignature), d.WooCommerceSecret) {
				WriteError(w, req, http.StatusUnauthorized, "invalid_signature", "")
				return
			}
			if topic == "" {
				render.JSON(w, req, map[string]any{"ok": true, "ping": true})
				return
			}
			var hook wooHook
			if err := json.NewDecoder(bytes.NewReader(body)).Decode(&hook); err != nil {
				WriteError(w, req, http.StatusBadRequest, "invalid_json", err.Error())
				return
			}
			resource, action, _ := strings.Cut(topic, ".")
			publish(w, req, d, events.CatalogChanged{
				Source:   events.SourceWooCommerce,
				Resource: resource,
				ID:       int64(hook.ID),
				Action:   action,
				At:       time.Now().UTC(),
			})
		})
	})
}

func publish(w http.ResponseWriter, req *http.Request, d WebhooksDeps, evt events.CatalogChanged) {
	queued := d.Events.PublishCatalogChanged(req.Context(), evt)
	if !queued {
		d.Log.Warn("catalog event dropped", zap.String("source", evt.Source), zap.String("resource", evt.Resource), zap.Int64("id", evt.ID))
	}
	render.Status(req, http.StatusAccepted)
	render.JSON(w, req, map[string]any{"ok": true, "queued": queued, "event": evt})
}

// ValidWooSignature checks WooCommerce's base64 HMAC-SHA256 of the raw body.
func ValidWooSignature(body []byte, signature, secret string) bool {
	want, err := base64.StdEncoding.DecodeString(strings.TrimSpace(signature))
	if err != nil || len(want) == 0 {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hmac.Equal(mac.Sum(nil), want)
}

// isWooPing reports whether body is the form-encoded webhook_id=<n> that
// WooCommerce posts to verify a new delivery URL.
func isWooPing(body []byte) bool {
	v, err := url.ParseQuery(strings.TrimSpace(string(body)))
	if err != nil || len(v) != 1 {
		return false
	}
	id, err := strconv.ParseInt(v.Get("webhook_id"), 10, 64)
	return err == nil && id > 0
}

func firstOf(vals ...string) string {
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
