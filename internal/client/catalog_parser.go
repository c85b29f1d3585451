package client

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"bricklink/cattree/internal/domain"

	"github.com/PuerkitoBio/goquery"
	log "github.com/sirupsen/logrus"
)

var ErrNoCategories = errors.New("no categories found")

var (
	catStringRegex = regexp.MustCompile(`catString=([0-9.]+)`)
	catTypeRegex   = regexp.MustCompile(`catType=([A-Za-z])`)
	countRegex     = regexp.MustCompile(`\((\d+)\)`)
)

type catalogParser struct {
	baseURL string
}

func newCatalogParser(baseURL string) *catalogParser {
	return &catalogParser{
		baseURL: baseURL,
	}
}

// ParseCategoryTree extracts every category link of a catalogTree.asp page.
// Links look like catalogList.asp?catType=B&catString=332.124 and are
// usually followed by the item count in parentheses.
func (p *catalogParser) ParseCategoryTree(html string, categoryType domain.CategoryType) (domain.Categories, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	seen := make(map[string]bool)
	categories := make(domain.Categories, 0)

	doc.Find("a[href*='catalogList.asp']").Each(func(i int, link *goquery.Selection) {
		href, exists := link.Attr("href")
		if !exists {
			return
		}

		matches := catStringRegex.FindStringSubmatch(href)
		if len(matches) < 2 {
			return
		}
		if t := catTypeRegex.FindStringSubmatch(href); len(t) > 1 && !strings.EqualFold(t[1], categoryType.String()) {
			return
		}

		name := strings.Join(strings.Fields(link.Text()), " ")
		if name == "" {
			return
		}

		category, err := domain.NewCategory(categoryType, matches[1], name)
		if err != nil {
			log.Debugf("Skipping category link %s: %v", href, err)
			return
		}
		if seen[category.Path] {
			return
		}
		seen[category.Path] = true

		category.URL = p.absoluteURL(href)
		category.Count = countAfter(link)
		category.Position = len(categories)
		categories = append(categories, category)
	})

	if len(categories) == 0 {
		log.Warnf("No category links found - page might be empty or error")
		return nil, ErrNoCategories
	}

	log.Debugf("Extracted %d categories from catalog tree", len(categories))
	return categories, nil
}

func (p *catalogParser) absoluteURL(href string) string {
	switch {
	case strings.HasPrefix(href, "http"):
		return href
	case strings.HasPrefix(href, "//"):
		return "https:" + href
	case strings.HasPrefix(href, "/"):
		return p.baseURL + href
	default:
		return p.baseURL + "/" + href
	}
}

// countAfter reads the "(N)" that trails a category link, either as bare
// text or wrapped in an element such as <font>.
func countAfter(link *goquery.Selection) int {
	var text strings.Builder
	after := false
	link.Parent().Contents().EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if !after {
			after = s.Nodes[0] == link.Nodes[0]
			return true
		}
		switch goquery.NodeName(s) {
		case "a", "br", "ul", "table", "div":
			return false
		}
		text.WriteString(s.Text())
		return true
	})
	matches := countRegex.FindStringSubmatch(text.String())
	if len(matches) < 2 {
		return 0
	}
	n, err := strconv.Atoi(matches[1])
	if err != nil {
		return 0
	}
	return n
}
