/*
 * Copyright 2021-2022 by Nedim Sabic Sabic
 * https://www.fibratus.io
 * All Rights Reserved.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package rest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rabbitstack/objexp/pkg/api"
	"github.com/rabbitstack/objexp/pkg/util/version"
)

type opts struct {
	addr        string
	uri         string
	query       string
	contentType string
	timeout     time.Duration
	retry       time.Duration
}

// Option represents the option for the HTTP client.
type Option func(o *opts)

// WithTransport sets the address of the API server. Addresses prefixed
// with npipe:/// are dialed through the named pipe.
func WithTransport(addr string) Option {
	return func(o *opts) {
		o.addr = addr
	}
}

// WithURI initializes the URI where the request is sent.
func WithURI(uri string) Option {
	return func(o *opts) {
		o.uri = uri
	}
}

// WithQuery sets the encoded query string of the request.
func WithQuery(query string) Option {
	return func(o *opts) {
		o.query = query
	}
}

// WithContentType sets the content type header for the HTTP requests.
func WithContentType(contentType string) Option {
	return func(o *opts) {
		o.contentType = contentType
	}
}

// WithTimeout sets the request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(o *opts) {
		o.timeout = timeout
	}
}

// WithRetry retries the requests that fail to reach the server with exponential
// backoff until the given time elapses. Error responses are never retried.
func WithRetry(maxElapsed time.Duration) Option {
	return func(o *opts) {
		o.retry = maxElapsed
	}
}

// Get performs the GET request.
func Get(opts ...Option) ([]byte, error) {
	return request(http.MethodGet, opts...)
}

// Post performs the POST request with an empty body.
func Post(opts ...Option) ([]byte, error) {
	return request(http.MethodPost, opts...)
}

func request(method string, options ...Option) ([]byte, error) {
	var opts opts
	for _, opt := range options {
		opt(&opts)
	}

	if opts.addr == "" {
		return nil, errors.New("transport is not initialized")
	}

	timeout := opts.timeout
	if timeout == 0 {
		timeout = time.Second * 10
	}

	contentType := opts.contentType
	if contentType == "" {
		contentType = "application/json"
	}

	transport := &http.Transport{DialContext: (&net.Dialer{}).DialContext}
	if api.IsPipe(opts.addr) {
		transport = &http.Transport{DialContext: api.DialPipe(opts.addr)}
	}
	defer transport.CloseIdleConnections()

	client := http.Client{
		Transport: transport,
		Timeout:   timeout,
	}

	addr := strings.TrimPrefix(opts.addr, `npipe:///`)
	url := "http://" + path.Join(addr, opts.uri)
	if opts.query != "" {
		url += "?" + opts.query
	}

	if opts.retry <= 0 {
		return do(&client, method, url, contentType, timeout)
	}

	var body []byte
	op := func() error {
		var err error
		body, err = do(&client, method, url, contentType, timeout)
		var status *statusError
		if errors.As(err, &status) {
			return backoff.Permanent(err)
		}
		return err
	}
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = time.Millisecond * 200
	b.MaxElapsedTime = opts.retry
	if err := backoff.Retry(op, b); err != nil {
		return nil, err
	}
	return body, nil
}

// statusError is returned for the responses with the error status code.
type statusError struct {
	method string
	uri    string
	status string
	body   string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("%s %s: %s: %s", e.method, e.uri, e.status, e.body)
}

func do(client *http.Client, method, url, contentType string, timeout time.Duration) ([]byte, error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Add("Content-Type", contentType)
	req.Header.Set("User-Agent", version.ProductToken())
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, &statusError{method: method, uri: req.URL.Path, status: resp.Status, body: strings.TrimSpace(string(body))}
	}
	return body, nil
}
