// Package i18n loads the embedded message catalogs used to label calendar views.
package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

//go:embed locales/*.yaml
var localeFS embed.FS

const DefaultLocale = "en"

type Locale struct {
	Tag           string   `yaml:"locale"`
	Months        []string `yaml:"months"`
	MonthsShort   []string `yaml:"months_short"`
	WeekdaysShort []string `yaml:"weekdays_short"`
	TooltipFormat string   `yaml:"tooltip"`
	SummaryFormat string   `yaml:"summary"`
	TitleFormat   string   `yaml:"month_title"`
}

func (l *Locale) validate() error {
	switch {
	case l.Tag == "":
		return fmt.Errorf("missing locale tag")
	case len(l.Months) != 12 || len(l.MonthsShort) != 12:
		return fmt.Errorf("locale %s: expected 12 month names", l.Tag)
	case len(l.WeekdaysShort) != 7:
		return fmt.Errorf("locale %s: expected 7 weekday names", l.Tag)
	case l.TooltipFormat == "" || l.SummaryFormat == "" || l.TitleFormat == "":
		return fmt.Errorf("locale %s: missing message formats", l.Tag)
	}
	return nil
}

func (l *Locale) MonthName(m time.Month) string {
	return l.Months[m-1]
}

func (l *Locale) ShortMonth(m time.Month) string {
	return l.MonthsShort[m-1]
}

// Weekdays returns short weekday names, Sunday first.
func (l *Locale) Weekdays() []string {
	out := make([]string, len(l.WeekdaysShort))
	copy(out, l.WeekdaysShort)
	return out
}

// Tooltip renders the hover text of a day cell, e.g. "March 15, 2024: 2 completions".
func (l *Locale) Tooltip(day time.Time, count int) string {
	return strings.NewReplacer(
		"{month}", l.MonthName(day.Month()),
		"{day}", strconv.Itoa(day.Day()),
		"{year}", strconv.Itoa(day.Year()),
		"{count}", strconv.Itoa(count),
	).Replace(l.TooltipFormat)
}

func (l *Locale) Summary(total int) string {
	return strings.ReplaceAll(l.SummaryFormat, "{count}", strconv.Itoa(total))
}

func (l *Locale) MonthTitle(year int, m time.Month) string {
	return strings.NewReplacer(
		"{month}", l.MonthName(m),
		"{year}", strconv.Itoa(year),
	).Replace(l.TitleFormat)
}

type Catalog struct {
	locales []*Locale
	byTag   map[string]*Locale
	matcher language.Matcher
}

// Load parses every embedded catalog. The fallback locale is matched first.
func Load(fallback string) (*Catalog, error) {
	files, err := fs.Glob(localeFS, "locales/*.yaml")
	if err != nil {
		return nil, err
	}

	c := &Catalog{byTag: make(map[string]*Locale)}

	for _, name := range files {
		raw, err := localeFS.ReadFile(name)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}

		var loc Locale
		if err := yaml.Unmarshal(raw, &loc); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path.Base(name), err)
		}
		if err := loc.validate(); err != nil {
			return nil, err
		}

		if loc.Tag == fallback {
			c.locales = append([]*Locale{&loc}, c.locales...)
		} else {
			c.locales = append(c.locales, &loc)
		}
		c.byTag[loc.Tag] = &loc
	}

	if _, ok := c.byTag[fallback]; !ok {
		return nil, fmt.Errorf("fallback locale %q not found", fallback)
	}

	tags := make([]language.Tag, len(c.locales))
	for i, l := range c.locales {
		tags[i] = language.Make(l.Tag)
	}
	c.matcher = language.NewMatcher(tags)

	return c, nil
}

func MustLoad(fallback string) *Catalog {
	c, err := Load(fallback)
	if err != nil {
		panic(err)
	}
	return c
}

// Match picks the best catalog for an Accept-Language value or a bare tag.
func (c *Catalog) Match(accept string) *Locale {
	if l, ok := c.byTag[strings.ToLower(strings.TrimSpace(accept))]; ok {
		return l
	}

	prefs, _, err := language.ParseAcceptLanguage(accept)
	if err != nil || len(prefs) == 0 {
		return c.Fallback()
	}

	_, idx, conf := c.matcher.Match(prefs...)
	if conf == language.No {
		return c.Fallback()
	}
	return c.locales[idx]
}

func (c *Catalog) Fallback() *Locale {
	return c.locales[0]
}

func (c *Catalog) Tags() []string {
	out := make([]string, 0, len(c.locales))
	for _, l := range c.locales {
		out = append(out, l.Tag)
	}
	return out
}
