package naver

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/wonny/esgproxy/backend/internal/contracts"
)

const (
	// 억원 → 원
	eok = 1e8
	// cop_analysis: 첫 3열이 최근 연간 실적 (4열은 추정치)
	annualActualColumns = 3
)

// FetchFundamentals scrapes market cap and the annual financial summary from the item page
// ⭐ SSOT: Naver 재무 요약 스크래핑은 이 함수에서만
func (c *Client) FetchFundamentals(ctx context.Context, code string) (*contracts.Fundamentals, error) {
	html, err := c.fetchHTML(ctx, "/item/main.naver", url.Values{"code": {code}})
	if err != nil {
		return nil, err
	}

	f, err := parseFundamentals(html)
	if err != nil {
		return nil, fmt.Errorf("stock %s: %w", code, err)
	}

	c.logger.WithFields(map[string]interface{}{
		"stock_code": code,
		"market_cap": f.MarketCap,
		"debt_ratio": f.DebtRatio,
	}).Debug("Fetched fundamentals")
	return f, nil
}

// parseFundamentals reads the item main page
// Total debt is derived as 부채비율 × 자본총계, with 자본총계 = BPS × 상장주식수.
func parseFundamentals(html string) (*contracts.Fundamentals, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse HTML: %w", err)
	}

	marketCapEok := parseKoreanAmount(doc.Find("#_market_sum").First().Text())
	if marketCapEok <= 0 {
		return nil, fmt.Errorf("%w: market cap not found", contracts.ErrFundamentalsUnavailable)
	}

	var shares float64
	doc.Find("th").EachWithBreak(func(_ int, th *goquery.Selection) bool {
		if strings.TrimSpace(th.Text()) == "상장주식수" {
			shares = parseNumber(th.Next().Text())
			return false
		}
		return true
	})

	rows := map[string]float64{}
	doc.Find("div.cop_analysis table tbody tr").Each(func(_ int, row *goquery.Selection) {
		label := strings.TrimSpace(row.Find("th").First().Text())
		if label == "" {
			return
		}
		cells := row.Find("td")
		var latest float64
		found := false
		for i := 0; i < annualActualColumns && i < cells.Length(); i++ {
			text := strings.TrimSpace(cells.Eq(i).Text())
			if text == "" || text == "-" {
				continue
			}
			latest = parseNumber(text)
			found = true
		}
		if found {
			rows[label] = latest
		}
	})

	f := &contracts.Fundamentals{
		MarketCap: marketCapEok * eok,
		Revenue:   rows["매출액"] * eok,
		NetIncome: rows["당기순이익"] * eok,
	}
	if f.Revenue != 0 {
		f.ProfitMargin = f.NetIncome / f.Revenue
	}

	equity := rows["BPS(원)"] * shares
	if debtPct, ok := rows["부채비율"]; ok && equity > 0 {
		f.TotalDebt = debtPct / 100 * equity
		f.DebtRatio = f.TotalDebt / f.MarketCap
	}
	return f, nil
}

// parseKoreanAmount parses "395조 4,167" (억 units) into 3954167
func parseKoreanAmount(s string) float64 {
	s = strings.Join(strings.Fields(s), "")
	if s == "" {
		return 0
	}
	var total float64
	if idx := strings.Index(s, "조"); idx >= 0 {
		total += parseNumber(s[:idx]) * 10000
		s = s[idx+len("조"):]
	}
	return total + parseNumber(s)
}

// parseNumber parses "1,234.5", "-12" or "+3" and returns 0 for blanks
func parseNumber(s string) float64 {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, "+", "")
	if s == "" || s == "-" {
		return 0
	}
	n, _ := strconv.ParseFloat(s, 64)
	return n
}
