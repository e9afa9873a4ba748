package browser

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrNotFound возвращается, когда элемент по локатору отсутствует на странице
var ErrNotFound = errors.New("element not found")

// By: способ поиска элемента
type By string

const (
	ByXPath By = "xpath"
	ByCSS   By = "css"
	ByID    By = "id"
)

type Locator struct {
	By    By     `yaml:"by"`
	Value string `yaml:"value"`
}

func XPath(expr string) Locator { return Locator{By: ByXPath, Value: expr} }
func CSS(sel string) Locator    { return Locator{By: ByCSS, Value: sel} }
func ID(id string) Locator      { return Locator{By: ByID, Value: id} }

func (l Locator) String() string {
	return fmt.Sprintf("%s=%s", l.By, l.Value)
}

// Validate проверяет, что локатор заполнен и тип известен
func (l Locator) Validate() error {
	if l.Value == "" {
		return fmt.Errorf("locator value is empty")
	}
	switch l.By {
	case ByXPath, ByCSS, ByID:
		return nil
	default:
		return fmt.Errorf("unsupported locator type: %q", l.By)
	}
}

// cssSelector переводит ID/CSS локатор в CSS селектор
func (l Locator) cssSelector() string {
	if l.By == ByID {
		return "#" + l.Value
	}
	return l.Value
}

// ActivateOptions управляет тем, как элемент "нажимается".
// Force: клик на уровне скрипта (element.click()), обходит перекрывающие оверлеи.
type ActivateOptions struct {
	Force          bool
	ScrollIntoView bool
	Settle         time.Duration
}

// Session: одна живая сессия браузера на весь прогон
type Session interface {
	Navigate(ctx context.Context, url string) error
	URL(ctx context.Context) (string, error)
	Title(ctx context.Context) (string, error)
	HTML(ctx context.Context) (string, error)

	// WaitFor блокирует до появления элемента в DOM или до отмены ctx
	WaitFor(ctx context.Context, loc Locator) error
	// WaitURL блокирует, пока текущий URL не удовлетворит предикату
	WaitURL(ctx context.Context, match func(string) bool) error
	// Activate ищет элемент без ожидания и возвращает ErrNotFound, если его нет
	Activate(ctx context.Context, loc Locator, opts ActivateOptions) error

	Screenshot(ctx context.Context, path string) error
	Close() error
}

// Options: параметры запуска браузера
type Options struct {
	Headless     bool
	ChromePath   string
	WindowWidth  int
	WindowHeight int
	UserAgent    string
	NoSandbox    bool
	ExtraFlags   []string
}

// Opener создаёт новую сессию
type Opener func(ctx context.Context) (Session, error)

const (
	EngineRod        = "rod"
	EnginePlaywright = "playwright"
)

// NewOpener выбирает движок по имени
func NewOpener(engine string, opts Options) (Opener, error) {
	switch engine {
	case "", EngineRod:
		return func(ctx context.Context) (Session, error) {
			return OpenRod(ctx, opts)
		}, nil
	case EnginePlaywright:
		return func(ctx context.Context) (Session, error) {
			return OpenPlaywright(ctx, opts)
		}, nil
	default:
		return nil, fmt.Errorf("unsupported browser engine: %s", engine)
	}
}
