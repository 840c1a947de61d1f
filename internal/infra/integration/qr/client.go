// Package qr fetches QR code images from the two external generators the
// emails and namecards use: the PayNow QR service and a generic QR API.
package qr

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const maxImageBytes = 1 << 20

type Image struct {
	Data        []byte
	ContentType string
}

type Client struct {
	payNowURL string
	payNowKey string
	qrURL     string
	http      *http.Client
}

func NewClient(payNowURL, payNowKey, qrURL string) *Client {
	return &Client{
		payNowURL: payNowURL,
		payNowKey: payNowKey,
		qrURL:     qrURL,
		http:      &http.Client{Timeout: 10 * time.Second},
	}
}

// PayNow requests a PayNow QR for the given amount, bank reference and
// recipient mobile.
func (c *Client) PayNow(ctx context.Context, amount, ref, mobile string) (Image, error) {
	q := url.Values{}
	q.Set("amount", amount)
	q.Set("ref", ref)
	q.Set("mobile", mobile)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.payNowURL+"?"+q.Encode(), nil)
	if err != nil {
		return Image{}, err
	}
	if c.payNowKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.payNowKey)
	}

	return c.fetch(req, "paynow qr")
}

// Code renders arbitrary data (a URL, a mailto:) as an SVG QR code.
func (c *Client) Code(ctx context.Context, data string, size int) (Image, error) {
	q := url.Values{}
	q.Set("size", fmt.Sprintf("%dx%d", size, size))
	q.Set("data", data)
	q.Set("format", "svg")
	q.Set("margin", "0")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.qrURL+"?"+q.Encode(), nil)
	if err != nil {
		return Image{}, err
	}

	return c.fetch(req, "qr code")
}

func (c *Client) fetch(req *http.Request, what string) (Image, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return Image{}, fmt.Errorf("%s request failed: %w", what, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Image{}, fmt.Errorf("%s generation failed (status %d)", what, resp.StatusCode)
	}

	contentType := resp.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		return Image{}, fmt.Errorf("%s generation returned %q, expected an image", what, contentType)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
	if err != nil {
		return Image{}, fmt.Errorf("failed to read %s: %w", what, err)
	}
	if len(data) == 0 {
		return Image{}, fmt.Errorf("%s generation returned an empty body", what)
	}

	ct, _, _ := strings.Cut(contentType, ";")
	return Image{Data: data, ContentType: ct}, nil
}
