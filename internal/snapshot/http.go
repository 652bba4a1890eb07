package snapshot

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"hellchannel/internal/components/telemetry"
	"hellchannel/internal/drops"
	"hellchannel/internal/fetcherr"
	"hellchannel/lib/restyutil"

	"github.com/go-resty/resty/v2"
)

// HTTPStore reads the snapshot from a URL (ex. a raw file on a git host)
// and publishes by PUT to the same URL when a token is configured.
type HTTPStore struct {
	link  string
	token string
	http  *resty.Client
}

func NewHTTPStore(link, token string, timeout time.Duration, tel telemetry.API) HTTPStore {
	tel = telemetry.NewScopedAPI("snapshot_http", tel)
	client := restyutil.NewClient(restyutil.ClientOptions{Timeout: timeout}, tel)
	if token != "" {
		client.SetAuthToken(token)
	}
	return HTTPStore{link: link, token: token, http: client}
}

func (s HTTPStore) Name() string {
	return fmt.Sprintf("http(%s)", s.link)
}

func (s HTTPStore) Publish(ctx context.Context, events []drops.DropEvent) error {
	if s.token == "" {
		return fmt.Errorf("%s: read only, no token configured", s.Name())
	}
	data, err := Encode(events)
	if err != nil {
		return err
	}
	_, err = restyutil.Put(
		ctx,
		s.http.R().SetHeader("content-type", "application/json; charset=utf-8"),
		fmt.Sprintf("%s.publish", s.Name()),
		s.link,
		data,
	)
	return err
}

func (s HTTPStore) FetchLatest(ctx context.Context) ([]drops.RawRecord, error) {
	op := fmt.Sprintf("%s.fetch-latest", s.Name())

	res, err := restyutil.Get(ctx, s.http.R(), op, s.link)
	if err != nil {
		if fetcherr.Is(err, fetcherr.HttpStatus) && res != nil && res.StatusCode() == http.StatusNotFound {
			return nil, fetcherr.New(fetcherr.NotFound, op, err)
		}
		return nil, err
	}
	return Decode(op, res.Body())
}
