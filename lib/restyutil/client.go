package restyutil

import (
	"context"
	"time"

	"hellchannel/internal/components/telemetry"
	"hellchannel/internal/fetcherr"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
)

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36"

type ClientOptions struct {
	Timeout          time.Duration
	UserAgent        string
	CloudflareBypass bool
	// DumpDir, when set, receives a text dump of every response.
	DumpDir string
}

// NewClient creates a resty client with a bounded timeout that reports its
// requests to tel.
func NewClient(opts ClientOptions, tel telemetry.API) *resty.Client {
	client := resty.New()
	if opts.Timeout > 0 {
		client.SetTimeout(opts.Timeout)
	}

	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	client.SetHeader("user-agent", userAgent)

	if opts.CloudflareBypass {
		client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)
	}

	telemetry.InstrumentResty(client, tel)
	if opts.DumpDir != "" {
		DumpResponses(client, NewFilesystemOutput(opts.DumpDir, tel))
	}
	return client
}

// Get performs a GET request and classifies any failure as a *fetcherr.Error:
// transport errors and timeouts are Network, non-2xx responses are HttpStatus.
func Get(ctx context.Context, req *resty.Request, op, link string) (*resty.Response, error) {
	res, err := req.SetContext(ctx).Get(link)
	if err != nil {
		return nil, classifyTransport(op, err)
	}
	if res.IsError() {
		return res, fetcherr.Status(op, res.StatusCode())
	}
	return res, nil
}

// Put is Get but for a PUT with the given body.
func Put(ctx context.Context, req *resty.Request, op, link string, body any) (*resty.Response, error) {
	res, err := req.SetContext(ctx).SetBody(body).Put(link)
	if err != nil {
		return nil, classifyTransport(op, err)
	}
	if res.IsError() {
		return res, fetcherr.Status(op, res.StatusCode())
	}
	return res, nil
}

// resty only returns an error without a response when the server could not be
// reached or the context expired
func classifyTransport(op string, err error) error {
	return fetcherr.New(fetcherr.Network, op, err)
}
