// cmd/wesum/summarizer.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"
)

// Summarizer turns articles into summaries and topic tags via an
// OpenAI-compatible chat completion endpoint (DashScope compatible mode by
// default). One blocking call per article, rate limited.
type Summarizer struct {
	client  *openai.Client
	model   string
	limiter *rate.Limiter
}

// NewSummarizer builds a summarizer from the AI config section.
func NewSummarizer(cfg *Config) *Summarizer {
	clientConfig := openai.DefaultConfig(cfg.AI.APIKey)
	if cfg.AI.BaseURL != "" {
		clientConfig.BaseURL = cfg.AI.BaseURL
	}
	clientConfig.HTTPClient = &http.Client{Timeout: GenerationTimeout}

	return &Summarizer{
		client:  openai.NewClientWithConfig(clientConfig),
		model:   cfg.AI.Model,
		limiter: rate.NewLimiter(rate.Every(GenerationInterval), 1),
	}
}

// Summarize fills in the article's Summary and Categories. The noise level
// set by the classifier picks the prompt: none/light get the full structured
// summary, noise/pr get abbreviated bullets. API failures never propagate;
// the article gets a sentinel summary embedding the error so the rest of the
// batch continues.
func (s *Summarizer) Summarize(ctx context.Context, a *Article) {
	var prompt string
	var maxTokens int
	if a.NoiseLevel == NoiseHeavy || a.NoiseLevel == NoisePR {
		prompt = buildBriefPrompt(a)
		maxTokens = BriefSummaryTokens
	} else {
		prompt = buildFullPrompt(a)
		maxTokens = FullSummaryTokens
	}

	text, err := s.complete(ctx, prompt, maxTokens)
	if err != nil {
		Log().Warnf("summary for %q failed: %v", a.Title, err)
		a.Summary = fmt.Sprintf("生成总结失败: %v", err)
		a.Categories = nil
		return
	}
	a.Summary, a.Categories = ParseModelReply(text)
}

func (s *Summarizer) complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return "", err
	}

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:   maxTokens,
		Temperature: 0.3,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty completion response")
	}
	return resp.Choices[0].Message.Content, nil
}

// buildFullPrompt requests a structured ~500-character summary with 3-5
// topic tags for regular articles.
func buildFullPrompt(a *Article) string {
	return fmt.Sprintf(`请将以下公众号文章生成总结，要求：

【标签】
1. 输出3-5个分类标签（关键词）
2. 使用简洁的中文词汇（2-4个字）
3. 标签之间用顿号、分隔
4. 标签应该反映文章的核心主题（如：科技、互联网、商业分析等）

【总结】
1. 提炼文章核心观点和关键数据
2. 控制在500字以内
3. 使用简洁的语言
4. 分段清晰，每段一个要点
5. 突出文章的价值和亮点

文章标题：%s

公众号：%s

文章内容：
%s

请按以下格式输出：

【标签】标签1、标签2、标签3

【总结】
总结内容...
`, a.Title, a.SourceName, TruncateRunes(a.Body, FullPromptCeiling))
}

// bulletRequirements templates the required bullet fields per noise type.
// New noise types only need a new entry here.
var bulletRequirements = map[string]string{
	"招聘":   "- 招聘公司\n- 招聘岗位\n- 薪资范围\n- 工作地点\n- 岗位要求",
	"带货":   "- 产品名称\n- 产品价格\n- 优惠信息\n- 购买方式\n- 活动时间",
	"广告":   "- 品牌/产品\n- 核心信息\n- 推广内容",
	"课程":   "- 课程名称\n- 讲师/机构\n- 课程价格\n- 课程时长\n- 报名方式",
	"社群":   "- 社群名称\n- 社群类型\n- 加入方式\n- 费用信息",
	"活动推广": "- 活动名称\n- 活动时间\n- 活动地点\n- 票价信息\n- 报名方式",
	"融资":   "- 融资公司\n- 融资轮次\n- 融资金额\n- 投资方\n- 公司估值",
	"公关":   "- 公司/品牌\n- 核心信息\n- 发布时间\n- 相关数据",
}

// buildBriefPrompt requests 3-5 short bullets for promotional or PR
// articles, with the required fields templated by noise type.
func buildBriefPrompt(a *Article) string {
	requirements, ok := bulletRequirements[a.NoiseType]
	if !ok {
		requirements = "- 要点1\n- 要点2\n- 要点3"
	}

	return fmt.Sprintf(`请将以下公众号文章提取为关键要点和分类标签，要求：

【标签】
根据文章内容，给出3-5个分类标签（如：电商、购物、职场、教育等），用顿号、分隔

【总结】
提炼3-5个关键要点，要求：
1. 每个要点不超过15字
2. 严格控制在100字以内
3. 必须包含以下信息：
%s

文章标题：%s

文章内容：
%s

请按以下格式输出：

【标签】分类1、分类2、分类3

【总结】
• 要点1
• 要点2
• 要点3`, requirements, a.Title, TruncateRunes(a.Body, BriefPromptCeiling))
}

const (
	tagMarker     = "【标签】"
	summaryMarker = "【总结】"
)

var tagSeparator = regexp.MustCompile(`[、,，\s]+`)

// ParseModelReply extracts the tag list and summary body from a raw model
// reply. The tag section runs from 【标签】 to 【总结】 or the end of the
// line; tags split on full/half-width commas, middle dots and whitespace,
// deduplicated, capped at MaxCategories. The summary is everything after
// 【总结】. When that marker is missing the tag line is stripped from the
// reply and the remainder is used. Malformed replies are common and must
// still produce a best-effort result.
func ParseModelReply(text string) (summary string, categories []string) {
	summary = strings.TrimSpace(text)

	tagStart := strings.Index(text, tagMarker)
	if tagStart >= 0 {
		tail := text[tagStart+len(tagMarker):]
		end := len(tail)
		if i := strings.Index(tail, summaryMarker); i >= 0 && i < end {
			end = i
		}
		if i := strings.IndexByte(tail, '\n'); i >= 0 && i < end {
			end = i
		}
		categories = splitTags(tail[:end])
	}

	if i := strings.Index(text, summaryMarker); i >= 0 {
		summary = strings.TrimSpace(text[i+len(summaryMarker):])
		return summary, categories
	}

	if tagStart >= 0 {
		// No summary marker: drop the tag line, keep the rest.
		tail := text[tagStart:]
		lineEnd := strings.IndexByte(tail, '\n')
		if lineEnd < 0 {
			summary = strings.TrimSpace(text[:tagStart])
		} else {
			summary = strings.TrimSpace(text[:tagStart] + tail[lineEnd+1:])
		}
	}
	return summary, categories
}

// splitTags normalizes a raw tag segment into a deduplicated, capped list.
// Order of first appearance is preserved so results are deterministic.
func splitTags(segment string) []string {
	parts := tagSeparator.Split(strings.TrimSpace(segment), -1)
	seen := make(map[string]struct{}, len(parts))
	var tags []string
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		tags = append(tags, p)
		if len(tags) == MaxCategories {
			break
		}
	}
	return tags
}
