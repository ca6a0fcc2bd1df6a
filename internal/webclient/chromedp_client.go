package webclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"

	"github.com/raysh454/cfscrape/internal/logging"
	"github.com/raysh454/cfscrape/internal/utils"
)

// ErrNilRequest is returned by Do when req is nil.
var ErrNilRequest = errors.New("webclient: request cannot be nil")

// ErrBrowserNotFound is returned when no Chrome or Chromium executable is available.
var ErrBrowserNotFound = errors.New("webclient: no chrome executable found")

// browserNames are looked up on PATH when CHROME_PATH is unset.
var browserNames = []string{
	"google-chrome",
	"google-chrome-stable",
	"chromium",
	"chromium-browser",
	"chrome",
	"headless-shell",
	"headless_shell",
	"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
}

// challengeTitles are document titles served by anti-bot interstitials.
var challengeTitles = []string{
	"just a moment",
	"attention required",
	"please wait",
	"checking your browser",
	"ddos-guard",
}

const (
	defaultIdleAfter     = 500 * time.Millisecond
	challengePollEvery   = 250 * time.Millisecond
	chromedpUserAgentKey = "User-Agent"
)

// ChromedpClient drives a headless Chrome so that JavaScript challenges on
// the target run to completion before the page is read. It keeps no
// transport defaults: timeout and proxy come with each Request.
type ChromedpClient struct {
	execPath  string
	idleAfter time.Duration
	opts      []chromedp.ExecAllocatorOption
	logger    logging.Logger
}

var _ WebClient = (*ChromedpClient)(nil)

// NewChromedpClient locates a browser executable. No browser is started until Do.
func NewChromedpClient(logger logging.Logger, opts ...chromedp.ExecAllocatorOption) (*ChromedpClient, error) {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	componentLogger := logger.With(logging.String("backend", string(ClientChromedp)))

	execPath, err := lookupBrowser()
	if err != nil {
		return nil, err
	}

	componentLogger.Debug("created chromedp webclient", logging.String("exec_path", execPath))

	return &ChromedpClient{
		execPath:  execPath,
		idleAfter: defaultIdleAfter,
		opts:      opts,
		logger:    componentLogger,
	}, nil
}

func lookupBrowser() (string, error) {
	if p := strings.TrimSpace(os.Getenv("CHROME_PATH")); p != "" {
		if _, err := os.Stat(p); err != nil {
			return "", fmt.Errorf("%w: CHROME_PATH %q: %v", ErrBrowserNotFound, p, err)
		}
		return p, nil
	}
	for _, name := range browserNames {
		if p, err := exec.LookPath(name); err == nil {
			return p, nil
		}
	}
	return "", ErrBrowserNotFound
}

// ExecPath returns the browser executable the client will launch.
func (cdc *ChromedpClient) ExecPath() string {
	return cdc.execPath
}

// Do supports GET and POST only.
func (cdc *ChromedpClient) Do(ctx context.Context, req *Request) (*Response, error) {
	if req == nil {
		return nil, ErrNilRequest
	}
	method := strings.ToUpper(req.Method)
	if method != http.MethodGet && method != http.MethodPost {
		return nil, fmt.Errorf("chromedp: method %s not supported", method)
	}

	target, err := url.Parse(req.URL)
	if err != nil {
		return nil, fmt.Errorf("parse url: %w", err)
	}

	timeout := req.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, cdc.allocatorOptions(req, target.Scheme)...)
	defer cancelAlloc()
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	cdc.logger.Debug("sending browser request",
		logging.String("method", method),
		logging.String("url", req.URL))

	doc := listenDocument(browserCtx)
	idle := waitNetworkIdle(browserCtx, cdc.idleAfter)

	var resp *Response
	if method == http.MethodGet {
		resp, err = cdc.get(browserCtx, req, doc, idle)
	} else {
		resp, err = cdc.post(browserCtx, req, idle)
	}
	if err != nil {
		cdc.logger.Warn("browser request failed",
			logging.String("method", method),
			logging.String("url", req.URL),
			logging.Err(err))
		return nil, err
	}
	resp.Request = req
	resp.FetchedAt = time.Now()
	return resp, nil
}

func (cdc *ChromedpClient) allocatorOptions(req *Request, scheme string) []chromedp.ExecAllocatorOption {
	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	opts = append(opts, chromedp.ExecPath(cdc.execPath))
	if ua := req.Headers.Get(chromedpUserAgentKey); ua != "" {
		opts = append(opts, chromedp.UserAgent(ua))
	}
	if p := ProxyFor(req.Proxies, scheme); p != "" {
		opts = append(opts, chromedp.ProxyServer(p))
	}
	return append(opts, cdc.opts...)
}

func (cdc *ChromedpClient) get(ctx context.Context, req *Request, doc *documentRecorder, idle *idleWaiter) (*Response, error) {
	var html string
	err := chromedp.Run(ctx,
		network.Enable(),
		network.SetExtraHTTPHeaders(extraHeaders(req.Headers)),
		chromedp.Navigate(req.URL),
		waitIdle(idle),
		waitChallenge(),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		return nil, fmt.Errorf("chromedp get: %w", err)
	}

	status, headers := doc.last()
	return &Response{
		Body:       []byte(html),
		Headers:    headers,
		StatusCode: status,
	}, nil
}

// fetchResult is what the in-page fetch script resolves to.
type fetchResult struct {
	Status  int               `json:"status"`
	Headers map[string]string `json:"headers"`
	Body    string            `json:"body"`
}

const fetchScript = `(async () => {
	const r = await fetch(%s, {method: "POST", headers: %s, body: %s, credentials: "include"});
	const headers = {};
	r.headers.forEach((v, k) => { headers[k] = v; });
	return {status: r.status, headers: headers, body: await r.text()};
})()`

// post clears any challenge on the origin first, then issues the POST from
// inside the page so the clearance cookies ride along.
func (cdc *ChromedpClient) post(ctx context.Context, req *Request, idle *idleWaiter) (*Response, error) {
	origin, err := utils.Origin(req.URL)
	if err != nil {
		return nil, err
	}

	script, err := buildFetchScript(req)
	if err != nil {
		return nil, err
	}

	// The navigation is a GET; the body headers only belong on the fetch.
	var result fetchResult
	err = chromedp.Run(ctx,
		network.Enable(),
		network.SetExtraHTTPHeaders(extraHeaders(req.Headers, "Content-Type", "Content-Length")),
		chromedp.Navigate(origin),
		waitIdle(idle),
		waitChallenge(),
		chromedp.Evaluate(script, &result, func(p *runtime.EvaluateParams) *runtime.EvaluateParams {
			return p.WithAwaitPromise(true)
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("chromedp post: %w", err)
	}

	headers := http.Header{}
	for k, v := range result.Headers {
		headers.Set(k, v)
	}
	return &Response{
		Body:       []byte(result.Body),
		Headers:    headers,
		StatusCode: result.Status,
	}, nil
}

func buildFetchScript(req *Request) (string, error) {
	flat := map[string]string{}
	for k, vs := range req.Headers {
		if http.CanonicalHeaderKey(k) == chromedpUserAgentKey {
			continue
		}
		flat[k] = strings.Join(vs, ", ")
	}

	urlJSON, err := json.Marshal(req.URL)
	if err != nil {
		return "", fmt.Errorf("encode url: %w", err)
	}
	headersJSON, err := json.Marshal(flat)
	if err != nil {
		return "", fmt.Errorf("encode headers: %w", err)
	}
	bodyJSON := []byte("null")
	if len(req.Body) > 0 {
		if bodyJSON, err = json.Marshal(string(req.Body)); err != nil {
			return "", fmt.Errorf("encode body: %w", err)
		}
	}
	return fmt.Sprintf(fetchScript, urlJSON, headersJSON, bodyJSON), nil
}

// extraHeaders converts request headers for network.SetExtraHTTPHeaders,
// leaving out the omit keys. User-Agent is applied through the allocator
// flag instead.
func extraHeaders(h http.Header, omit ...string) network.Headers {
	skip := map[string]bool{chromedpUserAgentKey: true}
	for _, k := range omit {
		skip[http.CanonicalHeaderKey(k)] = true
	}
	out := network.Headers{}
	for k, vs := range h {
		if skip[http.CanonicalHeaderKey(k)] {
			continue
		}
		out[k] = strings.Join(vs, ", ")
	}
	return out
}

func (cdc *ChromedpClient) Close() error {
	cdc.logger.Debug("closing chromedp webclient")
	return nil
}

// documentRecorder keeps the status of the latest main-frame document response.
type documentRecorder struct {
	mu      sync.Mutex
	status  int
	headers http.Header
}

func listenDocument(ctx context.Context) *documentRecorder {
	rec := &documentRecorder{headers: http.Header{}}
	chromedp.ListenTarget(ctx, func(ev any) {
		e, ok := ev.(*network.EventResponseReceived)
		if !ok {
			return
		}
		c := chromedp.FromContext(ctx)
		if c == nil || c.Target == nil {
			return
		}
		// A page target's main frame shares the target's id.
		rec.observe(e, cdp.FrameID(c.Target.TargetID))
	})
	return rec
}

// observe records e if it is a document response of mainFrame.
// Iframe documents and subresources are ignored.
func (r *documentRecorder) observe(e *network.EventResponseReceived, mainFrame cdp.FrameID) {
	if e.Type != network.ResourceTypeDocument || e.Response == nil || e.FrameID != mainFrame {
		return
	}
	headers := http.Header{}
	for k, v := range e.Response.Headers {
		headers.Set(k, fmt.Sprint(v))
	}
	r.mu.Lock()
	r.status = int(e.Response.Status)
	r.headers = headers
	r.mu.Unlock()
}

func (r *documentRecorder) last() (int, http.Header) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status, r.headers
}

// idleWaiter tracks in-flight requests of a browser target.
type idleWaiter struct {
	idleAfter time.Duration
	done      chan struct{}

	mu       sync.Mutex
	inFlight map[network.RequestID]struct{}
	timer    *time.Timer
	once     sync.Once
}

// waitNetworkIdle starts tracking requests on ctx's target. The waiter
// reports idle once no request has been in flight for idleAfter.
func waitNetworkIdle(ctx context.Context, idleAfter time.Duration) *idleWaiter {
	w := &idleWaiter{
		idleAfter: idleAfter,
		done:      make(chan struct{}),
		inFlight:  map[network.RequestID]struct{}{},
	}

	chromedp.ListenTarget(ctx, func(ev any) {
		w.mu.Lock()
		defer w.mu.Unlock()
		switch e := ev.(type) {
		case *network.EventRequestWillBeSent:
			w.inFlight[e.RequestID] = struct{}{}
			if w.timer != nil {
				w.timer.Stop()
			}
		case *network.EventLoadingFinished:
			w.finish(e.RequestID)
		case *network.EventLoadingFailed:
			w.finish(e.RequestID)
		}
	})

	return w
}

// finish must be called with mu held.
func (w *idleWaiter) finish(id network.RequestID) {
	delete(w.inFlight, id)
	if len(w.inFlight) == 0 {
		w.startTimer()
	}
}

// startTimer must be called with mu held.
func (w *idleWaiter) startTimer() {
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.idleAfter, func() {
		w.mu.Lock()
		n := len(w.inFlight)
		w.mu.Unlock()
		if n == 0 {
			w.once.Do(func() { close(w.done) })
		}
	})
}

// arm covers pages that were already quiet when waiting began.
func (w *idleWaiter) arm() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.inFlight) == 0 {
		w.startTimer()
	}
}

func waitIdle(w *idleWaiter) chromedp.ActionFunc {
	return func(ctx context.Context) error {
		w.arm()
		select {
		case <-w.done:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// waitChallenge polls the document title until it no longer looks like an
// interstitial. The challenge script reloads the page itself.
func waitChallenge() chromedp.ActionFunc {
	return func(ctx context.Context) error {
		for {
			var title string
			if err := chromedp.Title(&title).Do(ctx); err != nil {
				return err
			}
			if !IsChallengeTitle(title) {
				return chromedp.WaitReady("body", chromedp.ByQuery).Do(ctx)
			}
			select {
			case <-time.After(challengePollEvery):
			case <-ctx.Done():
				return fmt.Errorf("challenge not cleared: %w", ctx.Err())
			}
		}
	}
}

// IsChallengeTitle reports whether title belongs to a known anti-bot interstitial.
func IsChallengeTitle(title string) bool {
	t := strings.ToLower(title)
	for _, c := range challengeTitles {
		if strings.Contains(t, c) {
			return true
		}
	}
	return false
}
