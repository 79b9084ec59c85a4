package stac

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/jinzhu/copier"

	log "github.com/sirupsen/logrus"
)

// DefaultEndpoint is the Microsoft Planetary Computer STAC API root.
const DefaultEndpoint = "https://planetarycomputer.microsoft.com/api/stac/v1"

var (
	client *retryablehttp.Client
	once   sync.Once
)

func stacHTTP() *retryablehttp.Client {
	once.Do(func() {
		client = retryablehttp.NewClient()
		client.Logger = nil
		if log.GetLevel() >= log.DebugLevel {
			client.Logger = log.StandardLogger()
		}
		client.ErrorHandler = retryablehttp.PassthroughErrorHandler
	})
	return client
}

// AuthError indicates a missing or rejected access token.
type AuthError struct {
	Reason string
}

func (e *AuthError) Error() string {
	return "catalog auth: " + e.Reason
}

// ErrNoResults is returned when a collection search matches nothing in
// the window.
var ErrNoResults = errors.New("no matching scenes in collection")

type Client struct {
	Endpoint string
	Token    string
}

func NewClient(token string) (*Client, error) {
	if token == "" {
		return nil, &AuthError{Reason: "SAS token required (set PC_SAS_TOKEN or pass -token)"}
	}
	return &Client{Endpoint: DefaultEndpoint, Token: token}, nil
}

// Search queries the STAC /search endpoint. Returned items have their
// asset hrefs signed with the client token.
func (c *Client) Search(ctx context.Context, req *SearchRequest) (*SearchResponse, error) {
	j, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	log.Debugf("Making STAC request %q", string(j))

	r, err := retryablehttp.NewRequest("POST", c.Endpoint+"/search", bytes.NewBuffer(j))
	if err != nil {
		return nil, err
	}
	r.Header.Set("Content-Type", "application/json")

	res, err := stacHTTP().Do(r.WithContext(ctx))
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	switch {
	case res.StatusCode == http.StatusUnauthorized || res.StatusCode == http.StatusForbidden:
		return nil, &AuthError{Reason: fmt.Sprintf("catalog rejected token: %v", res.Status)}
	case res.StatusCode != http.StatusOK:
		buf := new(strings.Builder)
		io.Copy(buf, res.Body)
		return nil, fmt.Errorf("stac search %v: %q", res.Status, buf.String())
	}

	resp := &SearchResponse{}
	if err := json.NewDecoder(res.Body).Decode(resp); err != nil {
		return nil, err
	}
	if len(resp.Features) == 0 {
		return nil, ErrNoResults
	}
	for i, it := range resp.Features {
		resp.Features[i] = c.SignItem(it)
	}
	return resp, nil
}

// SignItem returns a copy of the item with the SAS token appended to
// every asset href. The input item is left untouched.
func (c *Client) SignItem(item *Item) *Item {
	signed := &Item{}
	if err := copier.CopyWithOption(signed, item, copier.Option{DeepCopy: true}); err != nil {
		log.Errorf("item copy: %v", err)
		return item
	}
	for _, a := range signed.Assets {
		a.Href = SignHref(a.Href, c.Token)
	}
	return signed
}

// SignHref appends the SAS token to an asset URL as query parameters.
func SignHref(href, token string) string {
	if token == "" {
		return href
	}
	sep := "?"
	if strings.Contains(href, "?") {
		sep = "&"
	}
	return href + sep + token
}
