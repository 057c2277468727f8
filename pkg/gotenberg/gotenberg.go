// Package gotenberg converts HTML documents to PDF through a Gotenberg server.
package gotenberg

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

var (
	ErrMissingURL      = errors.New("gotenberg: url is required")
	ErrConversion      = errors.New("gotenberg: conversion failed")
	ErrEmptyDocument   = errors.New("gotenberg: empty html document")
	ErrUnexpectedReply = errors.New("gotenberg: unexpected response")
)

const (
	convertPath    = "/forms/chromium/convert/html"
	defaultTimeout = 60 * time.Second
	// Error bodies are truncated to this size in returned errors.
	maxErrorBody = 1 << 10
)

// Config points the client at a Gotenberg instance.
type Config struct {
	URL     string        `yaml:"url"`
	Timeout time.Duration `yaml:"timeout"`
	// Paper size in inches; zero keeps Gotenberg's Letter default.
	PaperWidth  float64 `yaml:"paper_width"`
	PaperHeight float64 `yaml:"paper_height"`
}

// Client calls the Chromium HTML route.
type Client struct {
	http *http.Client
	cfg  Config
}

// New returns a client using its own http.Client with cfg.Timeout.
func New(cfg Config) (*Client, error) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	return NewWithHTTPClient(&http.Client{Timeout: cfg.Timeout}, cfg)
}

// NewWithHTTPClient returns a client sending requests through hc.
func NewWithHTTPClient(hc *http.Client, cfg Config) (*Client, error) {
	cfg.URL = strings.TrimRight(strings.TrimSpace(cfg.URL), "/")
	if cfg.URL == "" {
		return nil, ErrMissingURL
	}
	return &Client{http: hc, cfg: cfg}, nil
}

// Convert renders html to PDF. name becomes the output file name reported
// by Gotenberg and appears in its logs.
func (c *Client) Convert(ctx context.Context, name string, html []byte) ([]byte, error) {
	if len(bytes.TrimSpace(html)) == 0 {
		return nil, ErrEmptyDocument
	}

	body, contentType, err := c.form(html)
	if err != nil {
		return nil, errors.Join(ErrConversion, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.URL+convertPath, body)
	if err != nil {
		return nil, errors.Join(ErrConversion, err)
	}
	req.Header.Set("Content-Type", contentType)
	if name != "" {
		req.Header.Set("Gotenberg-Output-Filename", name)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Join(ErrConversion, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, fmt.Errorf("%w: status %d: %s", ErrConversion, resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	pdf, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Join(ErrConversion, err)
	}
	if !bytes.HasPrefix(pdf, []byte("%PDF")) {
		return nil, fmt.Errorf("%w: body is not a pdf", ErrUnexpectedReply)
	}
	return pdf, nil
}

func (c *Client) form(html []byte) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	// Gotenberg requires the entry document to be named index.html.
	part, err := w.CreateFormFile("files", "index.html")
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(html); err != nil {
		return nil, "", err
	}

	fields := map[string]float64{
		"paperWidth":  c.cfg.PaperWidth,
		"paperHeight": c.cfg.PaperHeight,
	}
	for key, v := range fields {
		if v <= 0 {
			continue
		}
		if err := w.WriteField(key, fmt.Sprintf("%g", v)); err != nil {
			return nil, "", err
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}

// Healthcheck calls Gotenberg's /health route.
func (c *Client) Healthcheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.URL+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: health status %d", ErrUnexpectedReply, resp.StatusCode)
	}
	return nil
}
