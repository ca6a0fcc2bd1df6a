package webclient

import (
	"net/http"
	"testing"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/network"
)

func documentEvent(frame cdp.FrameID, typ network.ResourceType, status int64) *network.EventResponseReceived {
	return &network.EventResponseReceived{
		FrameID: frame,
		Type:    typ,
		Response: &network.Response{
			Status:  status,
			Headers: network.Headers{"X-Frame": string(frame)},
		},
	}
}

func TestDocumentRecorder_IgnoresIframesAndSubresources(t *testing.T) {
	t.Parallel()
	const top = cdp.FrameID("MAIN")
	rec := &documentRecorder{headers: http.Header{}}

	rec.observe(documentEvent(top, network.ResourceTypeDocument, 503), top)
	rec.observe(documentEvent(top, network.ResourceTypeDocument, 200), top)
	rec.observe(documentEvent("IFRAME", network.ResourceTypeDocument, 404), top)
	rec.observe(documentEvent(top, network.ResourceTypeScript, 500), top)
	rec.observe(&network.EventResponseReceived{FrameID: top, Type: network.ResourceTypeDocument}, top)

	status, headers := rec.last()
	if status != 200 {
		t.Errorf("expected main document status 200, got %d", status)
	}
	if got := headers.Get("X-Frame"); got != "MAIN" {
		t.Errorf("expected headers from main frame, got %q", got)
	}
}

func TestExtraHeaders_Omit(t *testing.T) {
	t.Parallel()
	h := http.Header{}
	h.Set("User-Agent", "ua")
	h.Set("Content-Type", "application/json")
	h.Set("X-Trace", "1")
	h.Add("Accept", "text/html")
	h.Add("Accept", "application/json")

	all := extraHeaders(h)
	if _, ok := all["User-Agent"]; ok {
		t.Error("User-Agent must not be sent as an extra header")
	}
	if all["Content-Type"] != "application/json" {
		t.Errorf("expected Content-Type kept, got %v", all["Content-Type"])
	}
	if all["Accept"] != "text/html, application/json" {
		t.Errorf("expected joined Accept, got %v", all["Accept"])
	}

	nav := extraHeaders(h, "content-type")
	if _, ok := nav["Content-Type"]; ok {
		t.Error("expected Content-Type omitted from navigation headers")
	}
	if nav["X-Trace"] != "1" {
		t.Errorf("expected X-Trace kept, got %v", nav["X-Trace"])
	}
}
