package page

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// headingKeywords identifies the updates table heading across localized
// editions of the page. Matching is a case-insensitive substring check.
// Locales whose heading uses a script not covered here are handled by the
// first-heading fallback in findUpdatesTable.
var headingKeywords = []string{
	// English and other Germanic
	"security update",
	"security release",
	"sicherheitsupdate",
	"beveiligingsupdate",
	"sikkerhedsopdatering",
	"säkerhetsuppdatering",
	"sikkerhetsoppdatering",
	// Romance
	"actualizaciones de seguridad",
	"mises à jour de sécurité",
	"aggiornamenti di sicurezza",
	"atualizações de segurança",
	"actualitzacions de seguretat",
	// Cyrillic
	"обновления безопасности",
	"оновлення безпеки",
	"актуализации на сигурността",
	// Misc
	"aktualizacje zabezpieczeń",
	"güvenlik güncellemeleri",
	"セキュリティアップデート",
	"安全性更新",
	"보안 업데이트",
}

type Extractor struct{}

func NewExtractor() *Extractor {
	return &Extractor{}
}

// Run parses HTML and extracts the update rows from the table that follows
// the updates heading. A page without a matching heading or table yields an
// empty slice, not an error: it means nothing to report this cycle.
func (e *Extractor) Run(data []byte, baseURL string) ([]Row, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse base URL: %w", err)
	}

	table := findUpdatesTable(doc)
	if table == nil {
		return []Row{}, nil
	}

	rows := []Row{}
	table.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		// Header rows carry th cells.
		if tr.Find("th").Length() > 0 {
			return
		}

		cells := tr.Find("td")
		if cells.Length() < 3 {
			return
		}

		nameCell := cells.Eq(0)
		name := collapseWhitespace(nameCell.Text())
		if name == "" {
			return
		}

		row := Row{
			Name:   name,
			Target: collapseWhitespace(cells.Eq(1).Text()),
			Date:   collapseWhitespace(cells.Eq(2).Text()),
		}

		if href, ok := nameCell.Find("a").First().Attr("href"); ok && href != "" {
			row.URL = resolveLink(base, href)
		}

		rows = append(rows, row)
	})

	return rows, nil
}

// findUpdatesTable walks headings and tables in document order, picks the
// first heading matching the keyword set (or the first heading at all when
// no keyword matches, for locales outside the lexicon) and returns the next
// table after it. The table does not have to be a sibling of the heading.
func findUpdatesTable(doc *goquery.Document) *goquery.Selection {
	var order []*goquery.Selection
	doc.Find("h1, h2, h3, table").Each(func(_ int, s *goquery.Selection) {
		order = append(order, s)
	})

	headingIdx := -1
	firstHeading := -1
	for i, s := range order {
		if goquery.NodeName(s) == "table" {
			continue
		}
		if firstHeading == -1 {
			firstHeading = i
		}
		text := strings.ToLower(s.Text())
		for _, kw := range headingKeywords {
			if strings.Contains(text, kw) {
				headingIdx = i
				break
			}
		}
		if headingIdx != -1 {
			break
		}
	}

	if headingIdx == -1 {
		headingIdx = firstHeading
	}
	if headingIdx == -1 {
		return nil
	}

	for _, s := range order[headingIdx+1:] {
		if goquery.NodeName(s) == "table" {
			return s
		}
	}

	return nil
}

func resolveLink(base *url.URL, href string) string {
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return ""
	}
	return base.ResolveReference(ref).String()
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
