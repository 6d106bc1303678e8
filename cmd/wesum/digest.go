// cmd/wesum/digest.go
package main

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

const digestSeparator = "━━━━━━━━━━━━━━━━━━━━━━"

// Digest is the combined rendering of one run: a full markdown document plus
// a short companion card pointing at it.
type Digest struct {
	Title string
	Body  string
	Stats RunStats
}

// ComposeDigest sorts, groups and renders the processed articles into one
// outbound document. Articles sort by publish time descending; entries
// without a parseable time sort last.
func ComposeDigest(titlePrefix string, articles []Article, now time.Time) Digest {
	sorted := make([]Article, len(articles))
	copy(sorted, articles)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].PublishedAt.After(sorted[j].PublishedAt)
	})

	stats := countStats(sorted)

	var b strings.Builder
	fmt.Fprintf(&b, "📰 本次更新：共 %d 篇文章\n", len(sorted))
	fmt.Fprintf(&b, "🕐 更新时间：%s\n\n", now.Format(TimeFormatDigest))
	b.WriteString(digestSeparator + "\n\n")

	for i, a := range sorted {
		writeArticleSection(&b, i+1, a)
	}

	fmt.Fprintf(&b, "📊 数据统计：\n")
	fmt.Fprintf(&b, "• 正常文章：%d 篇\n", stats.Normal)
	fmt.Fprintf(&b, "• 轻度推广：%d 篇\n", stats.Light)
	fmt.Fprintf(&b, "• 干扰内容：%d 篇\n", stats.Noise)
	fmt.Fprintf(&b, "• 公关内容：%d 篇\n", stats.PR)

	return Digest{
		Title: fmt.Sprintf("%s 公众号摘要汇总（%d篇）", titlePrefix, len(sorted)),
		Body:  b.String(),
		Stats: stats,
	}
}

// writeArticleSection renders one article: heading, tag line, banner for
// noise/pr, summary body and the link back.
func writeArticleSection(b *strings.Builder, index int, a Article) {
	heading := a.Title
	if a.SourceName != "" {
		heading = fmt.Sprintf("【%s】%s", a.SourceName, a.Title)
	}
	fmt.Fprintf(b, "### %d. %s%s\n", index, heading, FormatPublished(a.PublishedAt))

	if len(a.Categories) > 0 {
		fmt.Fprintf(b, "🏷️ %s\n\n", strings.Join(a.Categories, "、"))
	}

	switch a.NoiseLevel {
	case NoiseHeavy:
		fmt.Fprintf(b, "⚠️ 本文识别为【%s】类型，仅推送关键要点：\n\n", noiseTypeName(a.NoiseType))
	case NoisePR:
		fmt.Fprintf(b, "⚠️ 本文识别为【%s】类型，仅推送关键要点：\n\n", a.NoiseType)
	}

	summary := a.Summary
	if summary == "" {
		summary = "无总结"
	}
	fmt.Fprintf(b, "%s\n\n", summary)
	fmt.Fprintf(b, "🔗 [查看原文](%s)\n\n", a.Link)
	b.WriteString(digestSeparator + "\n\n")
}

// ComposeCard renders the short companion notification. When the full
// digest was archived, the card carries its URL; callers fall back to the
// full body when no archive is available.
func ComposeCard(d Digest, archiveURL string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📰 本次更新：共 %d 篇文章（正常 %d / 轻度 %d / 干扰 %d / 公关 %d）\n",
		d.Stats.Total(), d.Stats.Normal, d.Stats.Light, d.Stats.Noise, d.Stats.PR)
	if archiveURL != "" {
		fmt.Fprintf(&b, "\n🔗 [查看完整摘要](%s)\n", archiveURL)
	}
	return b.String()
}

// ComposeEmptyNotice renders the "no new articles" notification sent when a
// run outside quiet hours finds nothing.
func ComposeEmptyNotice(titlePrefix string, now time.Time) (title, body string) {
	title = fmt.Sprintf("%s 暂无新文章", titlePrefix)
	body = fmt.Sprintf("🕐 %s 检查完成，时间窗口内没有新的公众号文章。", now.Format(TimeFormatDigest))
	return title, body
}

func countStats(articles []Article) RunStats {
	var stats RunStats
	for _, a := range articles {
		switch a.NoiseLevel {
		case NoiseLight:
			stats.Light++
		case NoiseHeavy:
			stats.Noise++
		case NoisePR:
			stats.PR++
		default:
			stats.Normal++
		}
	}
	return stats
}
