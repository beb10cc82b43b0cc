package content

import (
	"bufio"
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/adrg/frontmatter"

	"github.com/scubides/homepage/i18n"
	"github.com/scubides/homepage/model"
)

// MaxMisses is how many consecutive absent ids end a discovery probe.
const MaxMisses = 3

// idPrefix returns the probe prefix for t ("post1", "project1", ...).
func idPrefix(t model.ContentType) (string, error) {
	switch t {
	case model.Blog:
		return "post", nil
	case model.Project:
		return "project", nil
	}
	return "", fmt.Errorf("%w: %q cannot be discovered", ErrUnknownType, t)
}

type frontMatter struct {
	Title       string   `yaml:"title"`
	Date        string   `yaml:"date"`
	Tags        []string `yaml:"tags"`
	Description string   `yaml:"description"`
}

// Discover probes {prefix}1, {prefix}2, ... for both language variants and
// returns the items where both exist, newest (highest number) first.
// Probing stops after MaxMisses consecutive misses. Items missing either
// translation are left out.
func Discover(ctx context.Context, f Fetcher, t model.ContentType) ([]model.ContentMetadata, error) {
	prefix, err := idPrefix(t)
	if err != nil {
		return nil, err
	}
	type found struct {
		n    int
		meta model.ContentMetadata
	}
	var items []found
	misses := 0
	for n := 1; misses < MaxMisses; n++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		id := prefix + strconv.Itoa(n)
		baseURL := t.BaseURL(id)
		en, errEN := f.Fetch(ctx, i18n.LocalizedURL(baseURL, i18n.English))
		es, errES := f.Fetch(ctx, i18n.LocalizedURL(baseURL, i18n.Spanish))
		if errEN != nil || errES != nil {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			misses++
			continue
		}
		misses = 0
		items = append(items, found{n: n, meta: describe(id, baseURL, en, es)})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].n > items[j].n })
	out := make([]model.ContentMetadata, len(items))
	for i, it := range items {
		out[i] = it.meta
	}
	return out, nil
}

func describe(id, url, en, es string) model.ContentMetadata {
	fmEN := parseFrontMatter(en)
	fmES := parseFrontMatter(es)
	m := model.ContentMetadata{
		ID:  id,
		URL: url,
		Title: map[i18n.Lang]string{
			i18n.English: firstNonEmpty(fmEN.Title, firstHeading(en), id),
			i18n.Spanish: firstNonEmpty(fmES.Title, firstHeading(es), id),
		},
		Date: firstNonEmpty(fmEN.Date, fmES.Date),
		Tags: fmEN.Tags,
	}
	if fmEN.Description != "" || fmES.Description != "" {
		m.Description = map[i18n.Lang]string{
			i18n.English: fmEN.Description,
			i18n.Spanish: fmES.Description,
		}
	}
	return m
}

func parseFrontMatter(md string) frontMatter {
	var fm frontMatter
	if _, err := frontmatter.Parse(strings.NewReader(md), &fm); err != nil {
		return frontMatter{}
	}
	return fm
}

// firstHeading returns the text of the first "# " line of md.
func firstHeading(md string) string {
	sc := bufio.NewScanner(strings.NewReader(md))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if strings.HasPrefix(line, "# ") {
			return strings.TrimSpace(line[2:])
		}
	}
	return ""
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

// stripFrontMatter drops a leading front matter block from md.
func stripFrontMatter(md string) string {
	var fm frontMatter
	rest, err := frontmatter.Parse(strings.NewReader(md), &fm)
	if err != nil {
		return md
	}
	return string(rest)
}
