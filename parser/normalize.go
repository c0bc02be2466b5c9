package parser

import (
	"math"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/aluiziolira/go-equipment-catalog/models"
)

const (
	brandParam        = "бренд"
	productivityParam = "производительность"
	maxExtraParams    = 3
)

// splitParams extracts the brand, the productivity param and up to three
// remaining params for the summary card.
func splitParams(params []models.Param) (string, *models.Param, []models.Param) {
	var brand string
	skip := make(map[string]struct{})
	for _, p := range params {
		if strings.ToLower(p.Name) == brandParam {
			if brand == "" {
				brand = p.Value
			}
			skip[p.Name] = struct{}{}
		}
	}

	var productivity *models.Param
	for _, p := range params {
		if strings.Contains(strings.ToLower(p.Name), productivityParam) {
			found := p
			productivity = &found
			skip[p.Name] = struct{}{}
			break
		}
	}

	extra := make([]models.Param, 0, maxExtraParams)
	for _, p := range params {
		if len(extra) >= maxExtraParams {
			break
		}
		if _, ok := skip[p.Name]; ok {
			continue
		}
		extra = append(extra, p)
	}
	return brand, productivity, extra
}

// FormatPrice renders the integer part grouped by thousands, e.g. "1 250 000 ₽".
// A zero price has no display form.
func FormatPrice(price float64) string {
	if price == 0 {
		return ""
	}
	return groupThousands(int64(math.Trunc(price))) + " ₽"
}

func groupThousands(n int64) string {
	sign := ""
	if n < 0 {
		sign = "-"
		n = -n
	}
	digits := strconv.FormatInt(n, 10)
	var b strings.Builder
	b.WriteString(sign)
	lead := len(digits) % 3
	if lead == 0 {
		lead = 3
	}
	b.WriteString(digits[:lead])
	for i := lead; i < len(digits); i += 3 {
		b.WriteByte(' ')
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

// DescriptionText reduces an HTML description to plain text lines.
func DescriptionText(html string) []string {
	html = strings.TrimSpace(html)
	if html == "" {
		return nil
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return []string{html}
	}
	doc.Find("br").ReplaceWithHtml("\n")
	doc.Find("p, li, div, h1, h2, h3, h4, tr").AppendHtml("\n")

	var lines []string
	for _, line := range strings.Split(doc.Text(), "\n") {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
