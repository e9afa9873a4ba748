package browser

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocatorValidate(t *testing.T) {
	tests := []struct {
		loc     Locator
		wantErr bool
	}{
		{XPath(`//*[@id="news"]/a`), false},
		{CSS("a.older-posts"), false},
		{ID("blog-pager-older-link"), false},
		{Locator{By: "name", Value: "x"}, true},
		{Locator{By: ByCSS}, true},
	}

	for _, tt := range tests {
		err := tt.loc.Validate()
		if tt.wantErr {
			assert.Error(t, err, tt.loc.String())
		} else {
			assert.NoError(t, err, tt.loc.String())
		}
	}
}

func TestLocatorCSSSelector(t *testing.T) {
	assert.Equal(t, "#blog-pager-older-link", ID("blog-pager-older-link").cssSelector())
	assert.Equal(t, "a.older-posts", CSS("a.older-posts").cssSelector())
}

func TestNewOpenerUnknownEngine(t *testing.T) {
	_, err := NewOpener("selenium", Options{})
	assert.Error(t, err)

	for _, engine := range []string{"", EngineRod, EnginePlaywright} {
		opener, err := NewOpener(engine, Options{})
		require.NoError(t, err)
		assert.NotNil(t, opener)
	}
}

func TestPollURL(t *testing.T) {
	urls := []string{"https://www.python.org/", "https://www.python.org/blogs/"}
	calls := 0
	current := func() (string, error) {
		u := urls[calls]
		if calls < len(urls)-1 {
			calls++
		}
		return u, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	err := pollURL(ctx, current, func(u string) bool { return u == "https://www.python.org/blogs/" })
	assert.NoError(t, err)
}

func TestPollURLTimeout(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := pollURL(ctx,
		func() (string, error) { return "https://www.python.org/", nil },
		func(string) bool { return false },
	)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.Contains(t, err.Error(), "https://www.python.org/")
}

func TestRemaining(t *testing.T) {
	assert.Equal(t, time.Minute, remaining(context.Background(), time.Minute))

	ctx, cancel := context.WithTimeout(context.Background(), time.Hour)
	defer cancel()
	assert.Greater(t, remaining(ctx, time.Second), 59*time.Minute)
}
