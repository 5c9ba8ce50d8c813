package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"ytscribe/internal/config"
	"ytscribe/internal/model"
	"ytscribe/internal/resolver"
	"ytscribe/internal/upstream/youtube"

	"github.com/joho/godotenv"
)

// ytscribe fetches one transcript and prints it to stdout. By default it
// scrapes YouTube directly; with -server it asks a running ytscribe-api
// instance instead.
func main() {
	server := flag.String("server", "", "base URL of a ytscribe-api instance to query instead of scraping directly")
	timeout := flag.Duration("timeout", 30*time.Second, "overall timeout for the lookup")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: ytscribe [flags] <video-id-or-url>\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	_ = godotenv.Load()

	videoID := youtube.ExtractVideoID(flag.Arg(0))
	if videoID == "" {
		fmt.Fprintf(os.Stderr, "error: %q does not look like a YouTube video id or URL\n", flag.Arg(0))
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	var (
		transcript string
		err        error
	)
	if *server != "" {
		transcript, err = fetchViaServer(ctx, *server, videoID)
	} else {
		transcript, err = fetchDirect(ctx, videoID)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(transcript)
}

func fetchDirect(ctx context.Context, videoID string) (string, error) {
	cfg, err := config.Load()
	if err != nil {
		return "", fmt.Errorf("load config: %w", err)
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if username, password, ok := cfg.ProxyCredentials(); ok {
		transport.Proxy = http.ProxyURL(youtube.WebshareProxyURL(username, password))
	}
	httpClient := &http.Client{Timeout: cfg.RequestTimeout, Transport: transport}

	return resolver.New(youtube.New(httpClient)).Resolve(ctx, videoID)
}

func fetchViaServer(ctx context.Context, baseURL, videoID string) (string, error) {
	payload, err := json.Marshal(model.TranscriptRequest{VideoID: videoID})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	url := strings.TrimRight(baseURL, "/") + "/get_transcript"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr model.ErrorResponse
		if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Detail != "" {
			return "", fmt.Errorf("transcript service: %s", apiErr.Detail)
		}
		return "", fmt.Errorf("transcript service returned status %d", resp.StatusCode)
	}

	var result model.TranscriptResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}
	return result.Transcript, nil
}
