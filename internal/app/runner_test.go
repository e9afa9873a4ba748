package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pyblog-news-parser/internal/browser"
	"pyblog-news-parser/internal/config"
	"pyblog-news-parser/internal/export"
	"pyblog-news-parser/internal/observability"
	"pyblog-news-parser/internal/scraper"
)

const (
	desktopLanding = "https://blog.python.org/"
	mobileLanding  = "https://pythoninsider.blogspot.com/?m=1"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	dir := t.TempDir()
	cfg.Pagination.SettleDelayMS = 0
	cfg.Navigation.ScrollSettleMS = 0
	cfg.Navigation.WaitTimeoutS = 1
	cfg.Output.CSVPath = filepath.Join(dir, "python_blog_news.csv")
	cfg.Output.ScreenshotPath = filepath.Join(dir, "error_screenshot.png")
	return &cfg
}

type recordingSink struct {
	calls   int
	records []scraper.PostRecord
	err     error
	panics  bool
}

func (s *recordingSink) Name() string { return "recording" }

func (s *recordingSink) Export(ctx context.Context, records []scraper.PostRecord) error {
	s.calls++
	if s.panics {
		panic("sink exploded")
	}
	s.records = records
	return s.err
}

func newTestRunner(cfg *config.Config, sess *fakeSession, sinks ...export.Sink) *Runner {
	all := append([]export.Sink{export.NewCSVSink(cfg.Output.CSVPath)}, sinks...)
	return NewRunner(
		cfg,
		observability.NewNopLogger(),
		sess.opener(),
		scraper.DefaultProfiles(),
		all,
		export.NewTransfer(cfg.Output.TransferDir),
	)
}

func desktopNext() browser.Locator { return scraper.DefaultProfiles().Desktop.NextPage }

func TestRunDesktopSinglePage(t *testing.T) {
	cfg := testConfig(t)
	sess := newFakeSession(cfg, desktopLanding, desktopNext(),
		desktopListing(
			group("Tuesday, October 14, 2025", "Python 3.14.0 is out!", "Python 3.13.9 is now available"),
			group("Thursday, October 9, 2025", "Python 3.14.0rc3 is go!", "Python 3.12.12 security release"),
		),
	)
	sink := &recordingSink{}

	res, err := newTestRunner(cfg, sess, sink).Run(context.Background())
	require.NoError(t, err)

	want := []scraper.PostRecord{
		{Date: "Tuesday, October 14, 2025", Title: "Python 3.14.0 is out!"},
		{Date: "Tuesday, October 14, 2025", Title: "Python 3.13.9 is now available"},
		{Date: "Thursday, October 9, 2025", Title: "Python 3.14.0rc3 is go!"},
		{Date: "Thursday, October 9, 2025", Title: "Python 3.12.12 security release"},
	}
	assert.Equal(t, want, res.Records)
	assert.Equal(t, want, sink.records)
	assert.Equal(t, scraper.VariantDesktop, res.Variant)
	assert.Equal(t, desktopLanding, res.LandingURL)
	assert.Equal(t, 1, res.Stats.TotalPages)

	assert.Equal(t, 1, sess.closeCount)
	assert.Empty(t, sess.screenshots)
	assert.Equal(t, []string{cfg.Output.CSVPath}, res.Artifacts)

	data, err := os.ReadFile(cfg.Output.CSVPath)
	require.NoError(t, err)
	assert.Equal(t, "\xEF\xBB\xBFpost date,title\n"+
		"\"Tuesday, October 14, 2025\",Python 3.14.0 is out!\n"+
		"\"Tuesday, October 14, 2025\",Python 3.13.9 is now available\n"+
		"\"Thursday, October 9, 2025\",Python 3.14.0rc3 is go!\n"+
		"\"Thursday, October 9, 2025\",Python 3.12.12 security release\n",
		string(data))
}

func TestRunStopsOnPageWithoutNewRecords(t *testing.T) {
	cfg := testConfig(t)
	sess := newFakeSession(cfg, desktopLanding, desktopNext(),
		desktopListing(group("Oct 14, 2025", "A", "B")),
		desktopListing(group("Oct 14, 2025", "A", "B")),
		desktopListing(group("Oct 1, 2025", "C")),
	)

	res, err := newTestRunner(cfg, sess).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []scraper.PostRecord{
		{Date: "Oct 14, 2025", Title: "A"},
		{Date: "Oct 14, 2025", Title: "B"},
	}, res.Records)
	assert.Equal(t, 2, sess.htmlCalls, "third page must not be read")
	assert.Equal(t, 2, res.Stats.TotalPages)
	assert.Contains(t, res.Stats.StoppedReason, "no new records")
}

func TestRunEmptyFirstPageContinues(t *testing.T) {
	cfg := testConfig(t)
	sess := newFakeSession(cfg, desktopLanding, desktopNext(),
		desktopListing(),
		desktopListing(group("Oct 14, 2025", "A")),
		desktopListing(group("Oct 14, 2025", "A")),
	)

	res, err := newTestRunner(cfg, sess).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []scraper.PostRecord{{Date: "Oct 14, 2025", Title: "A"}}, res.Records)
	assert.Equal(t, 3, sess.htmlCalls)
}

func TestRunDeduplicatesAcrossPages(t *testing.T) {
	cfg := testConfig(t)
	sess := newFakeSession(cfg, desktopLanding, desktopNext(),
		desktopListing(group("Oct 14, 2025", "A", "B")),
		desktopListing(group("Oct 10, 2025", "B", "C")),
	)

	res, err := newTestRunner(cfg, sess).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []scraper.PostRecord{
		{Date: "Oct 14, 2025", Title: "A"},
		{Date: "Oct 14, 2025", Title: "B"},
		{Date: "Oct 10, 2025", Title: "C"},
	}, res.Records)
	assert.Contains(t, res.Stats.StoppedReason, "no next page")
}

func TestRunRespectsPageCap(t *testing.T) {
	cfg := testConfig(t)
	var pages []string
	for i := 0; i < 12; i++ {
		pages = append(pages, desktopListing(group("Oct 1, 2025", fmt.Sprintf("Post %d", i))))
	}
	sess := newFakeSession(cfg, desktopLanding, desktopNext(), pages...)

	res, err := newTestRunner(cfg, sess).Run(context.Background())
	require.NoError(t, err)

	assert.Len(t, res.Records, 10)
	assert.Equal(t, 10, sess.htmlCalls)
	assert.Equal(t, 10, res.Stats.TotalPages)
	assert.Contains(t, res.Stats.StoppedReason, "max pages")
}

func TestRunNextPageErrorIsNormalStop(t *testing.T) {
	cfg := testConfig(t)
	sess := newFakeSession(cfg, desktopLanding, desktopNext(),
		desktopListing(group("Oct 14, 2025", "A")),
		desktopListing(group("Oct 10, 2025", "B")),
	)
	sess.nextErr = errors.New("element is covered by another element")

	res, err := newTestRunner(cfg, sess).Run(context.Background())
	require.NoError(t, err)

	assert.Len(t, res.Records, 1)
	assert.Empty(t, sess.screenshots)
	assert.Equal(t, 1, sess.closeCount)
}

func TestRunMobileVariant(t *testing.T) {
	cfg := testConfig(t)
	sess := newFakeSession(cfg, mobileLanding, scraper.DefaultProfiles().Mobile.NextPage,
		mobileListing(group("Oct 14, 2025", "Python 3.14.0 is out!", "")),
		mobileListing(group("Oct 9, 2025", "Python 3.14.0rc3 is go!")),
	)

	res, err := newTestRunner(cfg, sess).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, scraper.VariantMobile, res.Variant)
	assert.Equal(t, []scraper.PostRecord{
		{Date: "Oct 14, 2025", Title: "Python 3.14.0 is out!"},
		{Date: "Oct 9, 2025", Title: "Python 3.14.0rc3 is go!"},
	}, res.Records)
	assert.Contains(t, sess.activations, "id=blog-pager-older-link")
}

func TestRunUnknownDateFallback(t *testing.T) {
	cfg := testConfig(t)
	sess := newFakeSession(cfg, desktopLanding, desktopNext(),
		desktopListing(group("", "Undated post")),
	)

	res, err := newTestRunner(cfg, sess).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []scraper.PostRecord{{Date: cfg.Output.UnknownDate, Title: "Undated post"}}, res.Records)
}

func TestRunNoRecordsSkipsSinks(t *testing.T) {
	cfg := testConfig(t)
	sess := newFakeSession(cfg, desktopLanding, desktopNext(),
		desktopListing(),
		desktopListing(),
	)
	sink := &recordingSink{}

	res, err := newTestRunner(cfg, sess, sink).Run(context.Background())
	require.NoError(t, err)

	assert.Empty(t, res.Records)
	assert.Equal(t, 0, sink.calls)
	assert.NoFileExists(t, cfg.Output.CSVPath)
	assert.Empty(t, sess.screenshots)
	assert.Equal(t, 1, sess.closeCount)
}

func TestRunNavigationTimeout(t *testing.T) {
	cfg := testConfig(t)
	sess := newFakeSession(cfg, desktopLanding, desktopNext(), desktopListing(group("Oct 1, 2025", "A")))
	sess.missing[browser.XPath(cfg.Navigation.NewsLinkXPath).String()] = true
	sink := &recordingSink{}

	_, err := newTestRunner(cfg, sess, sink).Run(context.Background())
	require.Error(t, err)

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Contains(t, err.Error(), "news link")
	assert.Equal(t, 1, sess.closeCount)
	assert.Equal(t, []string{cfg.Output.ScreenshotPath}, sess.screenshots)
	assert.Equal(t, 0, sink.calls)
	assert.NoFileExists(t, cfg.Output.CSVPath)
}

func TestRunLandingNotBlogDomain(t *testing.T) {
	cfg := testConfig(t)
	sess := newFakeSession(cfg, "https://www.python.org/community/", desktopNext(), desktopListing())

	_, err := newTestRunner(cfg, sess).Run(context.Background())
	require.Error(t, err)

	assert.Contains(t, err.Error(), "blog landing")
	assert.Equal(t, 1, sess.closeCount)
	assert.Len(t, sess.screenshots, 1)
}

func TestRunContainerTimeoutIsFatal(t *testing.T) {
	cfg := testConfig(t)
	sess := newFakeSession(cfg, desktopLanding, desktopNext(),
		desktopListing(group("Oct 14, 2025", "A")),
		"",
	)

	_, err := newTestRunner(cfg, sess).Run(context.Background())
	require.Error(t, err)

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Contains(t, err.Error(), "page 2")
	assert.Equal(t, 1, sess.closeCount)
	assert.Len(t, sess.screenshots, 1)
	assert.NoFileExists(t, cfg.Output.CSVPath)
}

func TestRunSinkErrorIsFatal(t *testing.T) {
	cfg := testConfig(t)
	sess := newFakeSession(cfg, desktopLanding, desktopNext(), desktopListing(group("Oct 1, 2025", "A")))
	sink := &recordingSink{err: errors.New("disk full")}

	_, err := newTestRunner(cfg, sess, sink).Run(context.Background())
	require.Error(t, err)

	assert.Contains(t, err.Error(), "export to recording")
	assert.Equal(t, 1, sess.closeCount)
	assert.Len(t, sess.screenshots, 1)
}

func TestRunPanicReleasesSession(t *testing.T) {
	cfg := testConfig(t)
	sess := newFakeSession(cfg, desktopLanding, desktopNext(), desktopListing(group("Oct 1, 2025", "A")))
	sink := &recordingSink{panics: true}

	_, err := newTestRunner(cfg, sess, sink).Run(context.Background())
	require.Error(t, err)

	assert.Contains(t, err.Error(), "panic")
	assert.Equal(t, 1, sess.closeCount)
	assert.Len(t, sess.screenshots, 1)
}

func TestRunOpenError(t *testing.T) {
	cfg := testConfig(t)
	r := NewRunner(cfg, observability.NewNopLogger(),
		func(ctx context.Context) (browser.Session, error) { return nil, errors.New("chrome not found") },
		scraper.DefaultProfiles(), nil, export.NewTransfer(""),
	)

	_, err := r.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chrome not found")
}

func TestRunCancelledContext(t *testing.T) {
	cfg := testConfig(t)
	sess := newFakeSession(cfg, desktopLanding, desktopNext(), desktopListing(group("Oct 1, 2025", "A")))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestRunner(cfg, sess).Run(ctx)
	require.Error(t, err)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, sess.closeCount)
}

func TestRunTransfersArtifacts(t *testing.T) {
	cfg := testConfig(t)
	cfg.Output.TransferDir = filepath.Join(t.TempDir(), "outbox")
	sess := newFakeSession(cfg, desktopLanding, desktopNext(), desktopListing(group("Oct 1, 2025", "A")))

	_, err := newTestRunner(cfg, sess).Run(context.Background())
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(cfg.Output.TransferDir, filepath.Base(cfg.Output.CSVPath)))
}

func TestRunTransfersScreenshotOnFailure(t *testing.T) {
	cfg := testConfig(t)
	cfg.Output.TransferDir = filepath.Join(t.TempDir(), "outbox")
	sess := newFakeSession(cfg, desktopLanding, desktopNext(), "")

	_, err := newTestRunner(cfg, sess).Run(context.Background())
	require.Error(t, err)

	assert.FileExists(t, filepath.Join(cfg.Output.TransferDir, filepath.Base(cfg.Output.ScreenshotPath)))
}

func TestMatchesAnyDomain(t *testing.T) {
	domains := []string{"blog.python.org", "pythoninsider.blogspot.com"}

	assert.True(t, matchesAnyDomain("https://blog.python.org/", domains))
	assert.True(t, matchesAnyDomain("https://pythoninsider.blogspot.com/?m=1", domains))
	assert.False(t, matchesAnyDomain("https://www.python.org/blogs/", domains))
	assert.False(t, matchesAnyDomain("https://example.com/", []string{""}))
}
