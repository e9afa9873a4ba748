package scraper

import "pyblog-news-parser/internal/browser"

// PostRecord: одна пара (дата, заголовок). Заголовок служит ключом дедупликации.
type PostRecord struct {
	Date  string
	Title string
}

// Variant: вариант вёрстки блога
type Variant int

const (
	VariantDesktop Variant = iota
	VariantMobile
)

func (v Variant) String() string {
	if v == VariantMobile {
		return "mobile"
	}
	return "desktop"
}

// Profile: набор селекторов для одного варианта вёрстки
type Profile struct {
	ListContainer string          `yaml:"list_container"`
	DateGroups    string          `yaml:"date_groups"`
	DateLabel     string          `yaml:"date_label"`
	Entries       string          `yaml:"entries"`
	Title         string          `yaml:"title"`
	NextPage      browser.Locator `yaml:"next_page"`
}

// Profiles: по профилю на каждый вариант
type Profiles struct {
	Desktop Profile `yaml:"desktop"`
	Mobile  Profile `yaml:"mobile"`
}

// For выбирает профиль один раз на прогон
func (p Profiles) For(v Variant) Profile {
	if v == VariantMobile {
		return p.Mobile
	}
	return p.Desktop
}

// DefaultProfiles: вёрстка Blogger для blog.python.org / pythoninsider.blogspot.com
func DefaultProfiles() Profiles {
	return Profiles{
		Desktop: Profile{
			ListContainer: ".blog-posts",
			DateGroups:    ".blog-posts > div.date-outer",
			DateLabel:     "h2.date-header span",
			Entries:       "div.post-outer",
			Title:         "h3.post-title a",
			NextPage:      browser.CSS("a.older-posts"),
		},
		Mobile: Profile{
			ListContainer: ".blog-posts",
			DateGroups:    ".blog-posts > div.date-posts",
			DateLabel:     "div.date-header span",
			Entries:       "div.mobile-post-outer",
			Title:         "a > h3.post-title",
			NextPage:      browser.ID("blog-pager-older-link"),
		},
	}
}
