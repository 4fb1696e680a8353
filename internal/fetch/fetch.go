// Package fetch bulk-downloads published MRFs: read the links CSV, pull
// every file through a shared rate limit with retries, and leave a
// download log beside the results.
package fetch

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"math/rand/v2"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

const (
	defaultUserAgent = "Mozilla/5.0 (compatible; mrfingest/1.0)"
	maxBackoff       = 30 * time.Second
)

// Options configures a Fetcher. Zero values take the defaults.
type Options struct {
	OutDir     string
	Workers    int
	RateLimit  float64 // downloads per second across all workers
	MaxRetries int
	RetryDelay time.Duration // base backoff, doubled per attempt
	UserAgent  string
	Timeout    time.Duration
}

// Result records one download attempt for the log.
type Result struct {
	Hospital string
	URL      string
	Success  bool
	Filename string // relative to OutDir
	Size     int64
	Error    string
}

// Summary aggregates a whole run.
type Summary struct {
	Attempted  int
	Succeeded  int
	Failed     int
	TotalBytes int64
}

type Fetcher struct {
	client  *http.Client
	limiter *rate.Limiter
	opts    Options
	log     zerolog.Logger
}

func New(opts Options, log zerolog.Logger) *Fetcher {
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 2
	}
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = 3
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = time.Second
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 2 * time.Minute
	}
	if opts.UserAgent == "" {
		opts.UserAgent = defaultUserAgent
	}
	return &Fetcher{
		client:  &http.Client{Timeout: opts.Timeout},
		limiter: rate.NewLimiter(rate.Limit(opts.RateLimit), max(1, int(opts.RateLimit))),
		opts:    opts,
		log:     log,
	}
}

// Run downloads every link into OutDir/<region>/ and writes
// download_log.csv. Individual failures are recorded, never fatal; only
// context cancellation stops the batch.
func (f *Fetcher) Run(ctx context.Context, links []Link) (*Summary, error) {
	if err := os.MkdirAll(f.opts.OutDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	f.log.Info().
		Int("links", len(links)).
		Int("workers", f.opts.Workers).
		Float64("rate_limit", f.opts.RateLimit).
		Msg("starting downloads")

	results := make([]Result, len(links))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.opts.Workers)
	for i, link := range links {
		g.Go(func() error {
			results[i] = f.download(gctx, link)
			return gctx.Err()
		})
	}
	err := g.Wait()

	var sum Summary
	for _, res := range results {
		sum.Attempted++
		if res.Success {
			sum.Succeeded++
			sum.TotalBytes += res.Size
		} else {
			sum.Failed++
		}
	}

	if logErr := f.writeLog(results); logErr != nil {
		f.log.Warn().Err(logErr).Msg("write download log failed")
	}

	f.log.Info().
		Int("succeeded", sum.Succeeded).
		Int("failed", sum.Failed).
		Int64("total_bytes", sum.TotalBytes).
		Msg("downloads complete")
	return &sum, err
}

// download runs the retry loop for one link. HTTP 429 and 5xx retry
// with backoff; other 4xx fail immediately because a repeat will not
// change the answer.
func (f *Fetcher) download(ctx context.Context, link Link) Result {
	res := Result{Hospital: link.HospitalName, URL: link.URL}

	regionDir := filepath.Join(f.opts.OutDir, sanitizeName(link.Region))
	if err := os.MkdirAll(regionDir, 0o755); err != nil {
		res.Error = err.Error()
		return res
	}

	var lastErr error
	for attempt := 0; attempt < f.opts.MaxRetries; attempt++ {
		if attempt > 0 && !f.backoff(ctx, attempt-1) {
			break
		}
		if err := f.limiter.Wait(ctx); err != nil {
			lastErr = err
			break
		}

		size, name, retryable, err := f.tryDownload(ctx, link, regionDir)
		if err == nil {
			res.Success = true
			res.Filename = name
			res.Size = size
			f.log.Info().
				Str("hospital", link.HospitalName).
				Str("file", name).
				Int64("bytes", size).
				Msg("downloaded")
			return res
		}
		lastErr = err
		if !retryable {
			break
		}
		f.log.Warn().Err(err).
			Str("hospital", link.HospitalName).
			Int("attempt", attempt+1).
			Msg("download failed, retrying")
	}

	res.Error = lastErr.Error()
	f.log.Error().Err(lastErr).
		Str("hospital", link.HospitalName).
		Str("url", link.URL).
		Msg("download failed")
	return res
}

func (f *Fetcher) tryDownload(ctx context.Context, link Link, regionDir string) (size int64, name string, retryable bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link.URL, nil)
	if err != nil {
		return 0, "", false, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", f.opts.UserAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return 0, "", true, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return 0, "", true, fmt.Errorf("http %d from %s", resp.StatusCode, link.URL)
	default:
		return 0, "", false, fmt.Errorf("http %d from %s", resp.StatusCode, link.URL)
	}

	ext := extFromResponse(resp, extFromURL(link.URL, link.FileType))
	out, name, err := createUnique(regionDir, sanitizeName(link.HospitalName), ext)
	if err != nil {
		return 0, "", false, err
	}

	n, err := io.Copy(out, resp.Body)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		// A half-written file is worse than none.
		os.Remove(filepath.Join(f.opts.OutDir, name))
		return 0, "", true, fmt.Errorf("write %s: %w", name, err)
	}
	return n, name, false, nil
}

// createUnique opens a new file for the hospital, suffixing _1, _2 ...
// when an earlier download already took the name. O_EXCL keeps two
// workers off the same file.
func createUnique(dir, base, ext string) (*os.File, string, error) {
	name := base + ext
	for counter := 1; ; counter++ {
		f, err := os.OpenFile(filepath.Join(dir, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err == nil {
			return f, filepath.Join(filepath.Base(dir), name), nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return nil, "", fmt.Errorf("create %s: %w", name, err)
		}
		name = fmt.Sprintf("%s_%d%s", base, counter, ext)
	}
}

// backoff sleeps exponentially with jitter. Returns false when the
// context dies first.
func (f *Fetcher) backoff(ctx context.Context, attempt int) bool {
	d := time.Duration(float64(f.opts.RetryDelay) * math.Pow(2, float64(attempt)))
	if d > maxBackoff {
		d = maxBackoff
	}
	d += time.Duration(rand.Int64N(int64(d)/2 + 1))

	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

var (
	unsafeChars  = regexp.MustCompile(`[<>:"/\\|?*]`)
	spaceRun     = regexp.MustCompile(`\s+`)
	nonFileChars = regexp.MustCompile(`[^\w\-.]`)
)

// sanitizeName converts a hospital or region name into a safe filename.
func sanitizeName(name string) string {
	name = unsafeChars.ReplaceAllString(name, "")
	name = spaceRun.ReplaceAllString(name, "_")
	name = nonFileChars.ReplaceAllString(name, "")
	name = strings.ToLower(name)
	if len(name) > 100 {
		name = name[:100]
	}
	if name == "" {
		return "unnamed"
	}
	return name
}

var urlExts = []string{".csv", ".json", ".zip", ".xlsx", ".xml"}

// extFromURL guesses the extension from the URL path, then the links
// file_type column. API endpoints and unknown types default to .json.
func extFromURL(rawURL, fileType string) string {
	if u, err := url.Parse(rawURL); err == nil {
		p := strings.ToLower(u.Path)
		if unescaped, err := url.PathUnescape(p); err == nil {
			p = unescaped
		}
		for _, ext := range urlExts {
			if strings.HasSuffix(p, ext) {
				return ext
			}
		}
	}

	ft := strings.ToLower(fileType)
	switch {
	case strings.Contains(ft, "csv"):
		return ".csv"
	case strings.Contains(ft, "json"):
		return ".json"
	case strings.Contains(ft, "zip"):
		return ".zip"
	case strings.Contains(ft, "api"):
		return ".json"
	}
	return ".json"
}

// extFromResponse refines the guess once the server has answered, from
// Content-Type and then the Content-Disposition filename.
func extFromResponse(resp *http.Response, fallback string) string {
	ct := strings.ToLower(resp.Header.Get("Content-Type"))
	switch {
	case strings.Contains(ct, "csv"):
		return ".csv"
	case strings.Contains(ct, "json"):
		return ".json"
	case strings.Contains(ct, "zip"):
		return ".zip"
	case strings.Contains(ct, "excel"), strings.Contains(ct, "spreadsheet"):
		return ".xlsx"
	case strings.Contains(ct, "xml"):
		return ".xml"
	}

	if _, params, err := mime.ParseMediaType(resp.Header.Get("Content-Disposition")); err == nil {
		if ext := filepath.Ext(params["filename"]); ext != "" {
			return strings.ToLower(ext)
		}
	}
	return fallback
}

// writeLog drops download_log.csv into OutDir, one row per attempted
// link.
func (f *Fetcher) writeLog(results []Result) error {
	out, err := os.Create(filepath.Join(f.opts.OutDir, "download_log.csv"))
	if err != nil {
		return err
	}

	w := csv.NewWriter(out)
	w.Write([]string{"hospital", "url", "success", "filename", "size", "error"})
	for _, res := range results {
		w.Write([]string{
			res.Hospital,
			res.URL,
			strconv.FormatBool(res.Success),
			res.Filename,
			strconv.FormatInt(res.Size, 10),
			res.Error,
		})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
